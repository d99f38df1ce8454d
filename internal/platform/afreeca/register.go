package afreeca

import (
	"comment-ranker/internal/config"
	"comment-ranker/internal/crawler"
	"comment-ranker/internal/platform"
)

func init() {
	platform.Register(platformName, []string{"afreecatv", "soop"}, func(cfg config.Config) crawler.Runner {
		return NewCrawlerFromConfig(cfg)
	})
}
