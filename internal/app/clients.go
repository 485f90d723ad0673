package app

import (
	"fmt"
	"strings"

	"github.com/yungbote/qubitgyan-student/internal/clients/lms"
	"github.com/yungbote/qubitgyan-student/internal/clients/redis"
	"github.com/yungbote/qubitgyan-student/internal/observability"
	"github.com/yungbote/qubitgyan-student/internal/platform/logger"
)

type Clients struct {
	LMS       *lms.Client
	TreeCache redis.TreeCache
}

func wireClients(log *logger.Logger, cfg Config, metrics *observability.Metrics) (Clients, error) {
	log.Info("Wiring clients...")

	// LMS
	client, err := lms.New(lms.Options{
		BaseURL:    cfg.LMS.BaseURL,
		Timeout:    cfg.LMS.Timeout.Std(),
		MaxRetries: cfg.LMS.MaxRetries,
		Log:        log,
		Observer:   metrics,
	})
	if err != nil {
		return Clients{}, fmt.Errorf("init lms client: %w", err)
	}

	// Redis
	var cache redis.TreeCache
	if strings.TrimSpace(cfg.Redis.Addr) != "" {
		c, err := redis.NewTreeCache(log, redis.Options{
			Addr:      cfg.Redis.Addr,
			Password:  cfg.Redis.Password,
			DB:        cfg.Redis.DB,
			KeyPrefix: cfg.Redis.KeyPrefix,
			TTL:       cfg.Redis.TreeTTL.Std(),
		})
		if err != nil {
			return Clients{}, fmt.Errorf("init redis tree cache: %w", err)
		}
		cache = c
	}

	return Clients{LMS: client, TreeCache: cache}, nil
}

func (c Clients) Close() {
	if c.TreeCache != nil {
		_ = c.TreeCache.Close()
	}
}
