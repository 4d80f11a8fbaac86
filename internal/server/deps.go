package server

import (
	"github.com/mohammad-safakhou/chatfusion/config"
	"github.com/mohammad-safakhou/chatfusion/internal/chat"
	"github.com/mohammad-safakhou/chatfusion/internal/logger"
	"github.com/mohammad-safakhou/chatfusion/internal/metrics"
	"github.com/mohammad-safakhou/chatfusion/provider"
	"github.com/mohammad-safakhou/chatfusion/repository"
	"github.com/mohammad-safakhou/chatfusion/tools/scrape"
	"github.com/redis/go-redis/v9"
)

// NewChatService builds the scrape-and-prompt pipeline. rdb backs the
// scrape cache and may be nil, as may m.
func NewChatService(cfg *config.Config, rdb *redis.Client, log logger.Logger, m *metrics.Metrics) (*chat.Service, error) {
	p, err := provider.NewProvider(cfg.LLM)
	if err != nil {
		return nil, err
	}
	var (
		observeScrape     scrape.Observer
		observeCompletion chat.Observer
	)
	if m != nil {
		observeScrape = m.ObserveScrape
		observeCompletion = m.ObserveCompletion
	}
	var cache repository.CacheRepository
	if rdb != nil && cfg.Scraper.CacheTTL > 0 {
		if cache, err = repository.NewCacheRepository(repository.RepoTypeRedis, rdb, scrape.CacheKeyPrefix); err != nil {
			return nil, err
		}
	}
	sc, err := scrape.NewFromConfig(cfg.Scraper, cache, log, observeScrape)
	if err != nil {
		return nil, err
	}
	return chat.NewService(sc, p, chat.OptionsFromConfig(cfg.LLM, log, observeCompletion)), nil
}
