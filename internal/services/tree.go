package services

import (
	"context"
	"fmt"
	"sync"

	"go.opentelemetry.io/otel/attribute"
	"golang.org/x/sync/singleflight"

	"github.com/yungbote/qubitgyan-student/internal/clients/redis"
	"github.com/yungbote/qubitgyan-student/internal/learning/tree"
	"github.com/yungbote/qubitgyan-student/internal/observability"
	"github.com/yungbote/qubitgyan-student/internal/platform/logger"
)

// TreeService is the page-scoped cache of one learner's knowledge tree.
type TreeService interface {
	// Arena returns the cached arena, fetching it on first use. Failures are
	// logged and yield an empty, uncached arena.
	Arena(ctx context.Context) *tree.Arena
	// Load is the strict variant of Arena.
	Load(ctx context.Context) (*tree.Arena, error)
	// Invalidate drops the cached arena so the next call refetches.
	Invalidate()
}

type treeService struct {
	log     *logger.Logger
	api     NodeAPI
	shared  redis.TreeCache
	metrics *observability.Metrics

	mu    sync.RWMutex
	arena *tree.Arena
	sf    singleflight.Group
}

// NewTreeService builds a tree cache. shared and metrics may be nil.
func NewTreeService(log *logger.Logger, api NodeAPI, shared redis.TreeCache, metrics *observability.Metrics) TreeService {
	return &treeService{
		log:     log.With("service", "TreeService"),
		api:     api,
		shared:  shared,
		metrics: metrics,
	}
}

func (s *treeService) Arena(ctx context.Context) *tree.Arena {
	a, err := s.Load(ctx)
	if err != nil {
		s.log.Warn("tree fetch failed; serving empty tree", "error", err)
		return tree.Empty()
	}
	return a
}

func (s *treeService) Load(ctx context.Context) (*tree.Arena, error) {
	s.mu.RLock()
	a := s.arena
	s.mu.RUnlock()
	if a != nil {
		return a, nil
	}

	// One fetch-and-flatten pass at a time.
	v, err, _ := s.sf.Do("tree", func() (any, error) {
		s.mu.RLock()
		cached := s.arena
		s.mu.RUnlock()
		if cached != nil {
			return cached, nil
		}
		built, err := s.fetch(ctx)
		if err != nil {
			return nil, err
		}
		s.mu.Lock()
		s.arena = built
		s.mu.Unlock()
		return built, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*tree.Arena), nil
}

func (s *treeService) fetch(ctx context.Context) (*tree.Arena, error) {
	ctx, span := observability.StartSpan(ctx, "tree.load")
	defer span.End()

	if s.shared != nil {
		nodes, ok, err := s.shared.Load(ctx)
		if err != nil {
			s.log.Debug("shared tree cache unavailable", "error", err)
		} else if ok {
			s.metrics.IncTreeLoad("shared_cache")
			span.SetAttributes(attribute.String("tree.source", "shared_cache"), attribute.Int("tree.nodes", len(nodes)))
			return tree.NewArena(nodes), nil
		}
	}
	forest, err := s.api.ListNodes(ctx)
	if err != nil {
		s.metrics.IncTreeLoad("failed")
		span.RecordError(err)
		return nil, fmt.Errorf("fetch tree: %w", err)
	}
	a := tree.NewArena(forest)
	s.metrics.IncTreeLoad("lms")
	span.SetAttributes(attribute.String("tree.source", "lms"), attribute.Int("tree.nodes", a.Len()))
	if s.shared != nil && a.Len() > 0 {
		if err := s.shared.Store(ctx, a.Nodes()); err != nil {
			s.log.Debug("shared tree cache store failed", "error", err)
		}
	}
	s.log.Debug("tree loaded", "nodes", a.Len())
	return a, nil
}

func (s *treeService) Invalidate() {
	s.mu.Lock()
	s.arena = nil
	s.mu.Unlock()
}
