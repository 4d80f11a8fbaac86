package scrape

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/alicebob/miniredis/v2"
	"github.com/mohammad-safakhou/chatfusion/config"
	"github.com/mohammad-safakhou/chatfusion/repository"
	"github.com/mohammad-safakhou/chatfusion/tools/web_fetch"
	"github.com/mohammad-safakhou/chatfusion/tools/web_fetch/models"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const samplePage = `<html>
<head>
  <title>  Sample   Page </title>
  <meta name="description" content="A page used in tests">
  <script>var secret = "do not include";</script>
  <style>body { color: red; }</style>
</head>
<body>
  <h1>Main Heading</h1>
  <h2>Sub One</h2><h2>Sub Two</h2>
  <p>First paragraph.</p>
  <p>Second
     paragraph.</p>
  <ul><li>item a</li><li>item b</li></ul>
  <a href="/about">About us</a>
  <img alt="logo" src="/logo.png">
  <noscript>enable javascript</noscript>
  <iframe src="https://ads.example.com"></iframe>
</body>
</html>`

type stubFetcher struct {
	html  string
	err   error
	calls int
}

func (f *stubFetcher) Exec(_ context.Context, url string) (models.Result, error) {
	f.calls++
	if f.err != nil {
		return models.Result{URL: url}, f.err
	}
	return models.Result{URL: url, FinalURL: url, Status: 200, HTML: f.html}, nil
}

func TestExtractText(t *testing.T) {
	page, err := Extract("https://example.com", samplePage, ModeText, 0)
	require.NoError(t, err)

	assert.Equal(t, "Sample Page", page.Title)
	assert.Equal(t, "A page used in tests", page.MetaDescription)
	assert.Equal(t, "Main Heading", page.Headings.H1)
	assert.Equal(t, "Sub One Sub Two", page.Headings.H2)
	assert.Equal(t, "First paragraph. Second paragraph.", page.Paragraphs)
	assert.Equal(t, "item a item b", page.ListItems)
	assert.Equal(t, []Link{{Text: "About us", Href: "/about"}}, page.Links)
	assert.Equal(t, []Image{{Alt: "logo", Src: "/logo.png"}}, page.Images)

	assert.True(t, strings.HasPrefix(page.Content, "Sample Page A page used in tests Main Heading"))
	assert.NotContains(t, page.Content, "do not include")
	assert.NotContains(t, page.Content, "color: red")
	assert.NotContains(t, page.Content, "enable javascript")
	assert.NotContains(t, page.Content, "  ")
}

func TestExtractStripsMarkupFromTitleAndAttributes(t *testing.T) {
	html := `<html><head>
  <title>Tom &amp; Jerry &lt;b&gt;live&lt;/b&gt;</title>
  <meta name="description" content="&lt;script&gt;alert(1)&lt;/script&gt;Fresh &lt;em&gt;news&lt;/em&gt;">
</head><body><img alt="&lt;i&gt;cat&lt;/i&gt;" src="/c.png"><p>body</p></body></html>`

	page, err := Extract("https://example.com", html, ModeText, 0)
	require.NoError(t, err)

	assert.Equal(t, "Tom & Jerry live", page.Title)
	assert.Equal(t, "Fresh news", page.MetaDescription)
	assert.Equal(t, []Image{{Alt: "cat", Src: "/c.png"}}, page.Images)
	assert.NotContains(t, page.Content, "alert(1)")
	assert.True(t, strings.HasPrefix(page.Content, "Tom & Jerry live Fresh news"))
}

func TestExtractDefaultsTitle(t *testing.T) {
	page, err := Extract("https://example.com", "<html><body><p>hi</p></body></html>", ModeText, 0)
	require.NoError(t, err)
	assert.Equal(t, "No Title", page.Title)
	assert.Empty(t, page.Links)
	assert.NotNil(t, page.Links)
}

func TestExtractCapsContent(t *testing.T) {
	long := "<html><body><p>" + strings.Repeat("héllo wörld ", 3000) + "</p></body></html>"

	page, err := Extract("https://example.com", long, ModeText, 0)
	require.NoError(t, err)
	assert.Equal(t, DefaultMaxChars, utf8.RuneCountInString(page.Content))

	page, err = Extract("https://example.com", long, ModeText, 50)
	require.NoError(t, err)
	assert.LessOrEqual(t, utf8.RuneCountInString(page.Content), 50)
	assert.True(t, utf8.ValidString(page.Content))
}

func TestExtractMarkdown(t *testing.T) {
	article := `<html><head><title>Guide</title></head><body>
<nav><a href="/">Home</a></nav>
<article>
<h1>Guide</h1>
<p>` + strings.Repeat("Readable article text with <strong>bold</strong> words. ", 20) + `</p>
<p>` + strings.Repeat("Another paragraph that keeps readability interested. ", 20) + `</p>
</article>
</body></html>`

	page, err := Extract("https://example.com/guide", article, ModeMarkdown, 0)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(page.Content, "Guide\n\n"), "content: %q", page.Content)
	assert.Contains(t, page.Content, "**bold**")
}

func TestScrapeOverHTTP(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(samplePage))
	}))
	defer srv.Close()

	s, err := NewFromConfig(config.ScraperConfig{Fetcher: "http", Mode: "text", Timeout: 5 * time.Second, MaxChars: 10000}, nil, nil, nil)
	require.NoError(t, err)

	page, err := s.Scrape(context.Background(), srv.URL)
	require.NoError(t, err)
	assert.Equal(t, srv.URL, page.URL)
	assert.Equal(t, "Sample Page", page.Title)
	assert.Empty(t, page.Error)
}

func TestScrapeFetchError(t *testing.T) {
	boom := errors.New("connection refused")
	var outcomes []string
	s := New(&stubFetcher{err: boom}, Options{Observe: func(o string) { outcomes = append(outcomes, o) }})

	page, err := s.Scrape(context.Background(), "https://example.com")
	require.ErrorIs(t, err, boom)
	assert.Equal(t, "connection refused", page.Error)
	assert.Empty(t, page.Content)
	assert.Equal(t, []string{"error"}, outcomes)
}

func TestScrapePolicyDenies(t *testing.T) {
	f := &stubFetcher{html: samplePage}
	s := New(f, Options{Policy: config.ScrapePolicyConfig{Disallow: []string{"internal.example"}}.Normalize()})

	_, err := s.Scrape(context.Background(), "https://api.internal.example:8443/x")
	require.ErrorIs(t, err, ErrHostNotPermitted)
	assert.Equal(t, 0, f.calls)
}

func newCache(t *testing.T) (repository.CacheRepository, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	cache, err := repository.NewCacheRepository(repository.RepoTypeRedis, rdb, CacheKeyPrefix)
	require.NoError(t, err)
	return cache, mr
}

func TestScrapeUsesCache(t *testing.T) {
	cache, mr := newCache(t)

	f := &stubFetcher{html: samplePage}
	var outcomes []string
	s := New(f, Options{
		Cache:    cache,
		CacheTTL: time.Minute,
		Observe:  func(o string) { outcomes = append(outcomes, o) },
	})

	first, err := s.Scrape(context.Background(), "https://Example.com/a?utm_source=x")
	require.NoError(t, err)
	second, err := s.Scrape(context.Background(), "https://example.com/a")
	require.NoError(t, err)

	assert.Equal(t, 1, f.calls)
	assert.Equal(t, first.Content, second.Content)
	assert.Equal(t, []string{"ok", "cached"}, outcomes)

	keys := mr.Keys()
	require.Len(t, keys, 1)
	assert.True(t, strings.HasPrefix(keys[0], "scrape:text:"))
	assert.Equal(t, time.Minute, mr.TTL(keys[0]))
}

func TestScrapeCacheDisabledWithoutTTL(t *testing.T) {
	cache, mr := newCache(t)

	f := &stubFetcher{html: samplePage}
	s := New(f, Options{Cache: cache})
	for i := 0; i < 2; i++ {
		_, err := s.Scrape(context.Background(), "https://example.com")
		require.NoError(t, err)
	}
	assert.Equal(t, 2, f.calls)
	assert.Empty(t, mr.Keys())
}

var _ web_fetch.WebFetcher = (*stubFetcher)(nil)
