package services

import (
	"context"

	"github.com/yungbote/qubitgyan-student/internal/domain/learning"
	"github.com/yungbote/qubitgyan-student/internal/platform/logger"
)

// ResourceService reads node resources. Resources are never cached: each call
// goes to the API.
type ResourceService interface {
	ResourcesForNode(ctx context.Context, nodeID int64) []learning.Resource
}

type resourceService struct {
	log *logger.Logger
	api ResourceAPI
}

func NewResourceService(log *logger.Logger, api ResourceAPI) ResourceService {
	return &resourceService{log: log.With("service", "ResourceService"), api: api}
}

func (s *resourceService) ResourcesForNode(ctx context.Context, nodeID int64) []learning.Resource {
	rs, err := s.api.ListResources(ctx, nodeID)
	if err != nil {
		s.log.Warn("resource fetch failed; serving empty list", "node_id", nodeID, "error", err)
		return []learning.Resource{}
	}
	out := make([]learning.Resource, len(rs))
	copy(out, rs)
	learning.SortResources(out)
	return out
}
