package httpget

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/mohammad-safakhou/chatfusion/internal/helpers"
	"github.com/mohammad-safakhou/chatfusion/tools/web_fetch/models"
)

// Fetch downloads pages with a plain HTTP GET.
type Fetch struct {
	UserAgent string
	MaxBytes  int64
	Client    *http.Client
}

func New(timeout time.Duration, userAgent string, maxBytes int64) *Fetch {
	return &Fetch{
		UserAgent: userAgent,
		MaxBytes:  maxBytes,
		Client:    &http.Client{Timeout: timeout},
	}
}

func (f *Fetch) Exec(ctx context.Context, rawURL string) (models.Result, error) {
	target, err := models.ParseTarget(rawURL)
	if err != nil {
		return models.Result{URL: rawURL}, err
	}
	t0 := time.Now()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target.String(), nil)
	if err != nil {
		return models.Result{URL: rawURL}, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", f.UserAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml;q=0.9,*/*;q=0.8")

	resp, err := f.Client.Do(req)
	if err != nil {
		return models.Result{URL: rawURL, RenderMS: elapsedMS(t0)}, fmt.Errorf("failed to fetch %s: %w", rawURL, err)
	}
	body, err := helpers.ReadAllAndClose(resp.Body, f.MaxBytes)
	res := models.Result{
		URL:         rawURL,
		FinalURL:    resp.Request.URL.String(),
		Status:      resp.StatusCode,
		ContentType: resp.Header.Get("Content-Type"),
		RenderMS:    elapsedMS(t0),
	}
	if err != nil {
		return res, fmt.Errorf("failed to read body of %s: %w", rawURL, err)
	}
	if resp.StatusCode >= http.StatusBadRequest {
		return res, fmt.Errorf("fetch %s: status %d", rawURL, resp.StatusCode)
	}
	res.HTML = string(body)
	return res, nil
}

func elapsedMS(t0 time.Time) int {
	return int(time.Since(t0) / time.Millisecond)
}
