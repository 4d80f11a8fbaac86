package chromedp

import (
	"context"
	"fmt"
	"time"

	"github.com/chromedp/chromedp"
	"github.com/mohammad-safakhou/chatfusion/tools/web_fetch/models"
)

// Fetch renders pages in headless Chrome so that client-side content is
// present in the returned HTML.
type Fetch struct {
	Timeout   time.Duration
	UserAgent string
}

func (f *Fetch) Exec(ctx context.Context, rawURL string) (models.Result, error) {
	target, err := models.ParseTarget(rawURL)
	if err != nil {
		return models.Result{URL: rawURL}, err
	}

	ctx, cancel := context.WithTimeout(ctx, f.Timeout)
	defer cancel()
	t0 := time.Now()

	html, finalURL, err := f.render(ctx, target.String())
	renderMS := int(time.Since(t0) / time.Millisecond)
	if err != nil {
		return models.Result{URL: rawURL, Status: 599, RenderMS: renderMS}, fmt.Errorf("render %s: %w", rawURL, err)
	}

	return models.Result{
		URL:         rawURL,
		FinalURL:    finalURL,
		Status:      200,
		ContentType: "text/html",
		HTML:        html,
		RenderMS:    renderMS,
	}, nil
}

func (f *Fetch) render(ctx context.Context, url string) (string, string, error) {
	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", true),
		chromedp.UserAgent(f.UserAgent),
	)
	actx, cancelAlloc := chromedp.NewExecAllocator(ctx, opts...)
	defer cancelAlloc()
	bctx, cancelBrowser := chromedp.NewContext(actx)
	defer cancelBrowser()

	var html, finalURL string
	err := chromedp.Run(bctx,
		chromedp.Navigate(url),
		chromedp.WaitReady("body", chromedp.ByQuery),
		chromedp.OuterHTML("html", &html, chromedp.ByQuery),
		chromedp.Location(&finalURL),
	)
	return html, finalURL, err
}
