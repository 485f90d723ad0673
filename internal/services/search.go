package services

import (
	"context"

	"github.com/yungbote/qubitgyan-student/internal/domain/learning"
	"github.com/yungbote/qubitgyan-student/internal/learning/search"
	"github.com/yungbote/qubitgyan-student/internal/platform/logger"
)

type SearchService interface {
	// Index rebuilds the whole index from the workspace tree.
	Index(ctx context.Context, ws *Workspace) []learning.SearchNode
	Query(ctx context.Context, ws *Workspace, q string, limit int) []learning.SearchNode
}

type searchService struct {
	log *logger.Logger
}

func NewSearchService(log *logger.Logger) SearchService {
	return &searchService{log: log.With("service", "SearchService")}
}

func (s *searchService) Index(ctx context.Context, ws *Workspace) []learning.SearchNode {
	return search.Build(ws.Tree.Arena(ctx))
}

func (s *searchService) Query(ctx context.Context, ws *Workspace, q string, limit int) []learning.SearchNode {
	return search.Query(s.Index(ctx, ws), q, limit)
}
