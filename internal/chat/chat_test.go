package chat

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/mohammad-safakhou/chatfusion/config"
	"github.com/mohammad-safakhou/chatfusion/provider"
	"github.com/mohammad-safakhou/chatfusion/tools/scrape"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeScraper struct {
	page  scrape.Page
	err   error
	calls []string
}

func (f *fakeScraper) Scrape(_ context.Context, url string) (scrape.Page, error) {
	f.calls = append(f.calls, url)
	return f.page, f.err
}

type fakeProvider struct {
	replies []string
	err     error
	reqs    []provider.CompletionRequest
}

func (f *fakeProvider) Complete(_ context.Context, req provider.CompletionRequest) (string, error) {
	f.reqs = append(f.reqs, req)
	if f.err != nil {
		return "", f.err
	}
	if len(f.replies) == 0 {
		return "", nil
	}
	out := f.replies[0]
	f.replies = f.replies[1:]
	return out, nil
}

func boolPtr(b bool) *bool { return &b }

func TestExtractURLs(t *testing.T) {
	assert.Equal(t, []string{}, ExtractURLs("no links here"))
	assert.Equal(t, []string{}, ExtractURLs("ftp://files.example.com"))
	assert.Equal(t, []string{"https://example.com/a?b=1"}, ExtractURLs("see https://example.com/a?b=1 and more"))
	assert.Equal(t, []string{"http://www.one.org"}, ExtractURLs("two http://www.one.org then https://two.io"))
}

func TestBuildPromptWithoutURL(t *testing.T) {
	sc := &fakeScraper{}
	svc := NewService(sc, &fakeProvider{}, Options{})

	prompt, source, err := svc.BuildPrompt(context.Background(), "   what is go?  \n")
	require.NoError(t, err)
	assert.Equal(t, "what is go?", prompt)
	assert.Empty(t, source)
	assert.Empty(t, sc.calls)
}

func TestBuildPromptAppendsScrapedContent(t *testing.T) {
	long := strings.Repeat("x", 20000)
	page, err := scrape.Extract("https://example.com", "<html><body><p>"+long+"</p></body></html>", scrape.ModeText, 0)
	require.NoError(t, err)
	sc := &fakeScraper{page: page}
	svc := NewService(sc, &fakeProvider{}, Options{})

	query := " summarise https://example.com please "
	prompt, source, err := svc.BuildPrompt(context.Background(), query)
	require.NoError(t, err)
	assert.Equal(t, []string{"https://example.com"}, sc.calls)
	assert.Equal(t, "https://example.com", source)

	trimmed := strings.TrimSpace(query)
	require.True(t, strings.HasPrefix(prompt, trimmed+"\n\n"))
	appended := strings.TrimPrefix(prompt, trimmed+"\n\n")
	assert.LessOrEqual(t, utf8.RuneCountInString(appended), 10000)
	assert.Equal(t, page.Content, appended)
}

func TestBuildPromptScrapeError(t *testing.T) {
	boom := errors.New("dial tcp: refused")
	svc := NewService(&fakeScraper{err: boom}, &fakeProvider{}, Options{})
	_, _, err := svc.BuildPrompt(context.Background(), "read https://example.com")
	require.ErrorIs(t, err, boom)
}

func TestBuildPromptEmptyQuery(t *testing.T) {
	svc := NewService(&fakeScraper{}, &fakeProvider{}, Options{})
	_, _, err := svc.BuildPrompt(context.Background(), " \t ")
	require.ErrorIs(t, err, ErrEmptyQuery)
}

func TestAnswerSendsSystemPrompt(t *testing.T) {
	p := &fakeProvider{replies: []string{"## Answer"}}
	svc := NewService(&fakeScraper{}, p, Options{Temperature: 0.3, MaxTokens: 256})

	ans, err := svc.Answer(context.Background(), Request{Query: " hi ", Model: "llama-3.1-8b-instant"})
	require.NoError(t, err)
	assert.Equal(t, "## Answer", ans.Text)
	assert.Equal(t, "llama-3.1-8b-instant", ans.Model)
	assert.False(t, ans.Formatted)

	require.Len(t, p.reqs, 1)
	req := p.reqs[0]
	assert.Equal(t, "llama-3.1-8b-instant", req.Model)
	assert.Equal(t, float32(0.3), req.Temperature)
	assert.Equal(t, 256, req.MaxTokens)
	assert.Equal(t, []provider.Message{
		{Role: provider.RoleSystem, Content: config.DefaultSystemPrompt},
		{Role: provider.RoleUser, Content: "hi"},
	}, req.Messages)
}

func TestAnswerUnknownModelFallsBack(t *testing.T) {
	p := &fakeProvider{replies: []string{"ok"}}
	svc := NewService(&fakeScraper{}, p, Options{})

	ans, err := svc.Answer(context.Background(), Request{Query: "hi", Model: "gpt-unknown"})
	require.NoError(t, err)
	assert.Equal(t, config.DefaultModel, ans.Model)
	assert.Equal(t, config.DefaultModel, p.reqs[0].Model)
}

func TestAnswerFormatPass(t *testing.T) {
	formatted := "```markdown\n# Title\n\nSame line\nSame line\n\n\n\nOther line\n```"
	p := &fakeProvider{replies: []string{"raw answer", formatted}}
	var stages []string
	svc := NewService(&fakeScraper{}, p, Options{
		FormatEnabled: true,
		Observe:       func(stage string, _ time.Duration, _ error) { stages = append(stages, stage) },
	})

	ans, err := svc.Answer(context.Background(), Request{Query: "hi"})
	require.NoError(t, err)
	assert.True(t, ans.Formatted)
	assert.Equal(t, "# Title\n\nSame line\n\nOther line", ans.Text)
	assert.Equal(t, []string{"answer", "format"}, stages)

	require.Len(t, p.reqs, 2)
	assert.Equal(t, config.DefaultFormatPrompt, p.reqs[1].Messages[0].Content)
	assert.Equal(t, "raw answer", p.reqs[1].Messages[1].Content)
	assert.Equal(t, config.DefaultModel, p.reqs[1].Model)
}

func TestAnswerRequestOverridesFormat(t *testing.T) {
	p := &fakeProvider{replies: []string{"raw"}}
	svc := NewService(&fakeScraper{}, p, Options{FormatEnabled: true})

	ans, err := svc.Answer(context.Background(), Request{Query: "hi", Format: boolPtr(false)})
	require.NoError(t, err)
	assert.Equal(t, "raw", ans.Text)
	assert.Len(t, p.reqs, 1)
}

func TestAnswerProviderError(t *testing.T) {
	boom := errors.New("upstream 503")
	var gotErr error
	svc := NewService(&fakeScraper{}, &fakeProvider{err: boom}, Options{
		Observe: func(_ string, _ time.Duration, err error) { gotErr = err },
	})

	_, err := svc.Answer(context.Background(), Request{Query: "hi"})
	require.ErrorIs(t, err, boom)
	assert.ErrorIs(t, gotErr, boom)
}

func TestOptionsFromConfig(t *testing.T) {
	opts := OptionsFromConfig(config.LLMConfig{DefaultModel: "mixtral-8x7b-32768", FormatEnabled: true, Temperature: 0.2}, nil, nil)
	assert.Equal(t, "mixtral-8x7b-32768", opts.DefaultModel)
	assert.True(t, opts.FormatEnabled)
	assert.Equal(t, float32(0.2), opts.Temperature)
}
