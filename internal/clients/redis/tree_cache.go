package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/yungbote/qubitgyan-student/internal/domain/learning"
	"github.com/yungbote/qubitgyan-student/internal/platform/logger"
)

const (
	defaultKeyPrefix = "qg:"
	treeKey          = "tree:nodes"
	invalidateChan   = "tree:invalidate"
)

// TreeCache shares the flat node list between gateway replicas so a cold
// workspace does not have to hit GET /nodes/ again. It is an optimization
// only; every miss or error falls back to the LMS API.
type TreeCache interface {
	Load(ctx context.Context) ([]learning.KnowledgeNode, bool, error)
	Store(ctx context.Context, nodes []learning.KnowledgeNode) error
	Invalidate(ctx context.Context) error
	// Subscribe calls onInvalidate whenever any replica invalidates the tree.
	// It blocks until ctx is done.
	Subscribe(ctx context.Context, onInvalidate func()) error
	Close() error
}

type Options struct {
	Addr      string
	Password  string
	DB        int
	KeyPrefix string
	TTL       time.Duration
}

type treeCache struct {
	log    *logger.Logger
	rdb    goredis.UniversalClient
	prefix string
	ttl    time.Duration
}

func NewTreeCache(log *logger.Logger, opts Options) (TreeCache, error) {
	if log == nil {
		return nil, fmt.Errorf("logger required")
	}
	addr := strings.TrimSpace(opts.Addr)
	if addr == "" {
		return nil, fmt.Errorf("missing redis addr")
	}
	rdb := goredis.NewClient(&goredis.Options{
		Addr:        addr,
		Password:    opts.Password,
		DB:          opts.DB,
		DialTimeout: 5 * time.Second,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	return newTreeCache(log, rdb, opts), nil
}

func newTreeCache(log *logger.Logger, rdb goredis.UniversalClient, opts Options) *treeCache {
	prefix := opts.KeyPrefix
	if prefix == "" {
		prefix = defaultKeyPrefix
	}
	ttl := opts.TTL
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}
	return &treeCache{
		log:    log.With("service", "RedisTreeCache"),
		rdb:    rdb,
		prefix: prefix,
		ttl:    ttl,
	}
}

func (c *treeCache) key(name string) string { return c.prefix + name }

func (c *treeCache) Load(ctx context.Context) ([]learning.KnowledgeNode, bool, error) {
	raw, err := c.rdb.Get(ctx, c.key(treeKey)).Bytes()
	if errors.Is(err, goredis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("redis get tree: %w", err)
	}
	var nodes []learning.KnowledgeNode
	if err := json.Unmarshal(raw, &nodes); err != nil {
		// A corrupt entry is treated as a miss and removed.
		c.log.Warn("discarding unreadable cached tree", "error", err)
		_ = c.rdb.Del(ctx, c.key(treeKey)).Err()
		return nil, false, nil
	}
	return nodes, true, nil
}

func (c *treeCache) Store(ctx context.Context, nodes []learning.KnowledgeNode) error {
	raw, err := json.Marshal(nodes)
	if err != nil {
		return err
	}
	if err := c.rdb.Set(ctx, c.key(treeKey), raw, c.ttl).Err(); err != nil {
		return fmt.Errorf("redis set tree: %w", err)
	}
	return nil
}

func (c *treeCache) Invalidate(ctx context.Context) error {
	if err := c.rdb.Del(ctx, c.key(treeKey)).Err(); err != nil {
		return fmt.Errorf("redis del tree: %w", err)
	}
	return c.rdb.Publish(ctx, c.key(invalidateChan), "1").Err()
}

func (c *treeCache) Subscribe(ctx context.Context, onInvalidate func()) error {
	sub := c.rdb.Subscribe(ctx, c.key(invalidateChan))
	defer sub.Close()

	if _, err := sub.Receive(ctx); err != nil {
		return fmt.Errorf("redis subscribe: %w", err)
	}
	ch := sub.Channel()
	for {
		select {
		case <-ctx.Done():
			return nil
		case _, ok := <-ch:
			if !ok {
				return nil
			}
			if onInvalidate != nil {
				onInvalidate()
			}
		}
	}
}

func (c *treeCache) Close() error { return c.rdb.Close() }
