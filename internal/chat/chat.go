// Package chat turns a user query into a completion: it scrapes the first
// URL in the query, prompts the model and optionally runs a Markdown
// formatting pass over the answer.
package chat

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/mohammad-safakhou/chatfusion/config"
	"github.com/mohammad-safakhou/chatfusion/internal/helpers"
	"github.com/mohammad-safakhou/chatfusion/internal/logger"
	"github.com/mohammad-safakhou/chatfusion/provider"
	"github.com/mohammad-safakhou/chatfusion/tools/scrape"
)

// ErrEmptyQuery is returned when the query is missing or only whitespace.
var ErrEmptyQuery = errors.New("missing required parameter: query")

// Scraper reduces a URL to page text.
type Scraper interface {
	Scrape(ctx context.Context, url string) (scrape.Page, error)
}

// Observer is told how long each completion stage ("answer", "format")
// took and whether it failed.
type Observer func(stage string, elapsed time.Duration, err error)

type Options struct {
	DefaultModel  string
	FormatModel   string
	FormatEnabled bool
	Temperature   float32
	MaxTokens     int
	SystemPrompt  string
	FormatPrompt  string
	Logger        logger.Logger
	Observe       Observer
}

// OptionsFromConfig maps the llm config section onto pipeline options.
func OptionsFromConfig(cfg config.LLMConfig, log logger.Logger, observe Observer) Options {
	return Options{
		DefaultModel:  cfg.DefaultModel,
		FormatModel:   cfg.FormatModel,
		FormatEnabled: cfg.FormatEnabled,
		Temperature:   cfg.Temperature,
		MaxTokens:     cfg.MaxTokens,
		SystemPrompt:  cfg.SystemPrompt,
		FormatPrompt:  cfg.FormatPrompt,
		Logger:        log,
		Observe:       observe,
	}
}

type Request struct {
	Query  string
	Model  string
	// Format overrides the configured formatting pass when set.
	Format *bool
}

type Answer struct {
	Text      string
	Model     string
	SourceURL string
	Formatted bool
}

type Service struct {
	scraper  Scraper
	provider provider.Provider
	opts     Options
	log      logger.Logger
}

func NewService(scraper Scraper, p provider.Provider, opts Options) *Service {
	if opts.DefaultModel == "" {
		opts.DefaultModel = config.DefaultModel
	}
	if opts.SystemPrompt == "" {
		opts.SystemPrompt = config.DefaultSystemPrompt
	}
	if opts.FormatPrompt == "" {
		opts.FormatPrompt = config.DefaultFormatPrompt
	}
	log := opts.Logger
	if log == nil {
		log = logger.NewNop()
	}
	return &Service{scraper: scraper, provider: p, opts: opts, log: log.With(logger.String("component", "chat"))}
}

// BuildPrompt trims query and, when it contains a URL, appends the scraped
// page content. It also returns the scraped URL, if any.
func (s *Service) BuildPrompt(ctx context.Context, query string) (string, string, error) {
	text := strings.TrimSpace(query)
	if text == "" {
		return "", "", ErrEmptyQuery
	}
	urls := ExtractURLs(text)
	if len(urls) == 0 {
		return text, "", nil
	}

	page, err := s.scraper.Scrape(ctx, urls[0])
	if err != nil {
		s.log.Error("scrape failed", logger.String("url", urls[0]), logger.Error(err))
		return "", urls[0], fmt.Errorf("scrape %s: %w", urls[0], err)
	}
	if page.Content == "" {
		return text, urls[0], nil
	}
	return text + "\n\n" + page.Content, urls[0], nil
}

// Answer runs the full pipeline for one query.
func (s *Service) Answer(ctx context.Context, req Request) (Answer, error) {
	prompt, source, err := s.BuildPrompt(ctx, req.Query)
	if err != nil {
		return Answer{}, err
	}
	model := config.ResolveModel(strings.TrimSpace(req.Model), s.opts.DefaultModel)

	text, err := s.complete(ctx, "answer", model, s.opts.SystemPrompt, prompt)
	if err != nil {
		return Answer{}, err
	}
	ans := Answer{Text: text, Model: model, SourceURL: source}

	format := s.opts.FormatEnabled
	if req.Format != nil {
		format = *req.Format
	}
	if !format || strings.TrimSpace(text) == "" {
		return ans, nil
	}

	formatModel := config.ResolveModel(s.opts.FormatModel, model)
	formatted, err := s.complete(ctx, "format", formatModel, s.opts.FormatPrompt, text)
	if err != nil {
		return Answer{}, err
	}
	ans.Text = helpers.DedupLines(helpers.UnwrapMarkdownFence(formatted))
	ans.Formatted = true
	return ans, nil
}

func (s *Service) complete(ctx context.Context, stage, model, system, user string) (string, error) {
	t0 := time.Now()
	messages := []provider.Message{
		{Role: provider.RoleSystem, Content: system},
		{Role: provider.RoleUser, Content: user},
	}
	out, err := s.provider.Complete(ctx, provider.CompletionRequest{
		Model:       model,
		Messages:    messages,
		Temperature: s.opts.Temperature,
		MaxTokens:   s.opts.MaxTokens,
	})
	elapsed := time.Since(t0)
	if s.opts.Observe != nil {
		s.opts.Observe(stage, elapsed, err)
	}
	if err != nil {
		s.log.Error("completion failed", logger.String("stage", stage), logger.String("model", model), logger.Error(err))
		return "", fmt.Errorf("%s completion: %w", stage, err)
	}
	s.log.Debug("completion done", logger.String("stage", stage), logger.String("model", model), logger.Duration("elapsed", elapsed))
	return out, nil
}
