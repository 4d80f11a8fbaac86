package web_fetch

import (
	"context"
	"fmt"
	"time"

	"github.com/mohammad-safakhou/chatfusion/tools/web_fetch/chromedp"
	"github.com/mohammad-safakhou/chatfusion/tools/web_fetch/httpget"
	"github.com/mohammad-safakhou/chatfusion/tools/web_fetch/models"
)

const (
	DefaultTimeout   = 15 * time.Second
	DefaultMaxBytes  = 5 << 20
	DefaultUserAgent = "ChatFusionBot/1.0"
)

// WebFetcher retrieves the HTML of a page.
type WebFetcher interface {
	Exec(ctx context.Context, url string) (models.Result, error)
}

type FetcherType string

const (
	HTTPFetcherType     FetcherType = "http"
	ChromedpFetcherType FetcherType = "chromedp"
)

// Options configures a fetcher. Zero values fall back to the defaults above.
type Options struct {
	Timeout   time.Duration
	UserAgent string
	MaxBytes  int64
}

func NewWebFetcher(fetcherType FetcherType, opts Options) (WebFetcher, error) {
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultTimeout
	}
	if opts.UserAgent == "" {
		opts.UserAgent = DefaultUserAgent
	}
	if opts.MaxBytes <= 0 {
		opts.MaxBytes = DefaultMaxBytes
	}

	switch fetcherType {
	case HTTPFetcherType, "":
		return httpget.New(opts.Timeout, opts.UserAgent, opts.MaxBytes), nil
	case ChromedpFetcherType:
		return &chromedp.Fetch{Timeout: opts.Timeout, UserAgent: opts.UserAgent}, nil
	default:
		return nil, fmt.Errorf("unsupported fetcher type %q", fetcherType)
	}
}
