package models

import (
	"errors"
	"net/url"
	"strings"
)

// ErrInvalidURL is returned for empty, relative or non-http(s) URLs.
var ErrInvalidURL = errors.New("invalid url")

// Result is a fetched page before any text extraction.
type Result struct {
	URL         string `json:"url"`
	FinalURL    string `json:"final_url"`
	Status      int    `json:"status"`
	ContentType string `json:"content_type"`
	HTML        string `json:"-"`
	RenderMS    int    `json:"render_ms"`
}

// ParseTarget validates raw as an absolute http(s) URL.
func ParseTarget(raw string) (*url.URL, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, ErrInvalidURL
	}
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" || (u.Scheme != "http" && u.Scheme != "https") {
		return nil, ErrInvalidURL
	}
	return u, nil
}
