package scrape

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"time"

	"github.com/mohammad-safakhou/chatfusion/config"
	"github.com/mohammad-safakhou/chatfusion/internal/helpers"
	"github.com/mohammad-safakhou/chatfusion/internal/logger"
	"github.com/mohammad-safakhou/chatfusion/repository"
	"github.com/mohammad-safakhou/chatfusion/tools/web_fetch"
)

// ErrHostNotPermitted is returned when the scrape policy rejects a URL's host.
var ErrHostNotPermitted = errors.New("host not permitted by scrape policy")

// CacheKeyPrefix namespaces cached pages in a shared cache.
const CacheKeyPrefix = "scrape:"

// Observer receives the outcome of every scrape ("ok", "cached", "error",
// "denied").
type Observer func(outcome string)

type Options struct {
	Mode     Mode
	MaxChars int
	Policy   config.ScrapePolicyConfig
	Cache    repository.CacheRepository
	CacheTTL time.Duration
	Logger   logger.Logger
	Observe  Observer
}

// Scraper fetches a URL and reduces it to a Page.
type Scraper struct {
	fetcher web_fetch.WebFetcher
	opts    Options
	log     logger.Logger
}

func New(fetcher web_fetch.WebFetcher, opts Options) *Scraper {
	if opts.MaxChars <= 0 {
		opts.MaxChars = DefaultMaxChars
	}
	if opts.Mode == "" {
		opts.Mode = ModeText
	}
	log := opts.Logger
	if log == nil {
		log = logger.NewNop()
	}
	return &Scraper{fetcher: fetcher, opts: opts, log: log.With(logger.String("component", "scraper"))}
}

// NewFromConfig builds the fetcher named in cfg and wraps it in a Scraper.
// cache may be nil.
func NewFromConfig(cfg config.ScraperConfig, cache repository.CacheRepository, log logger.Logger, observe Observer) (*Scraper, error) {
	fetcher, err := web_fetch.NewWebFetcher(web_fetch.FetcherType(cfg.Fetcher), web_fetch.Options{
		Timeout:   cfg.Timeout,
		UserAgent: cfg.UserAgent,
	})
	if err != nil {
		return nil, err
	}
	return New(fetcher, Options{
		Mode:     Mode(cfg.Mode),
		MaxChars: cfg.MaxChars,
		Policy:   cfg.Policy,
		Cache:    cache,
		CacheTTL: cfg.CacheTTL,
		Logger:   log,
		Observe:  observe,
	}), nil
}

// Scrape fetches rawURL and extracts its text. On failure the returned Page
// carries the error message as well.
func (s *Scraper) Scrape(ctx context.Context, rawURL string) (Page, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		s.observe("error")
		return Page{URL: rawURL, Error: err.Error()}, fmt.Errorf("parse url: %w", err)
	}
	if !s.opts.Policy.Permits(u.Host) {
		s.observe("denied")
		return Page{URL: rawURL, Error: ErrHostNotPermitted.Error()}, fmt.Errorf("scrape %s: %w", rawURL, ErrHostNotPermitted)
	}

	key := s.cacheKey(rawURL)
	if page, ok := s.fromCache(ctx, key); ok {
		s.observe("cached")
		return page, nil
	}

	res, err := s.fetcher.Exec(ctx, rawURL)
	if err != nil {
		s.log.Warn("fetch failed", logger.String("url", rawURL), logger.Error(err))
		s.observe("error")
		return Page{URL: rawURL, Error: err.Error()}, fmt.Errorf("scrape %s: %w", rawURL, err)
	}

	page, err := Extract(rawURL, res.HTML, s.opts.Mode, s.opts.MaxChars)
	if err != nil {
		s.observe("error")
		return page, fmt.Errorf("scrape %s: %w", rawURL, err)
	}
	s.log.Debug("scraped page",
		logger.String("url", rawURL),
		logger.Int("status", res.Status),
		logger.Int("render_ms", res.RenderMS),
		logger.Int("content_len", len(page.Content)),
	)
	s.toCache(ctx, key, page)
	s.observe("ok")
	return page, nil
}

func (s *Scraper) observe(outcome string) {
	if s.opts.Observe != nil {
		s.opts.Observe(outcome)
	}
}

func (s *Scraper) cacheEnabled() bool {
	return s.opts.Cache != nil && s.opts.CacheTTL > 0
}

func (s *Scraper) cacheKey(rawURL string) string {
	if !s.cacheEnabled() {
		return ""
	}
	fp, err := helpers.URLFingerprint(rawURL)
	if err != nil {
		return ""
	}
	return string(s.opts.Mode) + ":" + fp
}

func (s *Scraper) fromCache(ctx context.Context, key string) (Page, bool) {
	if key == "" {
		return Page{}, false
	}
	var page Page
	found, err := s.opts.Cache.Get(ctx, key, &page)
	if err != nil {
		s.log.Warn("scrape cache read failed", logger.String("key", key), logger.Error(err))
		return Page{}, false
	}
	return page, found
}

func (s *Scraper) toCache(ctx context.Context, key string, page Page) {
	if key == "" {
		return
	}
	if err := s.opts.Cache.Set(ctx, key, page, s.opts.CacheTTL); err != nil {
		s.log.Warn("scrape cache write failed", logger.String("key", key), logger.Error(err))
	}
}
