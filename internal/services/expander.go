package services

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/sync/singleflight"

	"github.com/yungbote/qubitgyan-student/internal/domain/learning"
	"github.com/yungbote/qubitgyan-student/internal/learning/tree"
	"github.com/yungbote/qubitgyan-student/internal/observability"
	"github.com/yungbote/qubitgyan-student/internal/platform/logger"
)

var ErrNodeNotFound = errors.New("node not found")

// Expander lazily loads the children of tree nodes. A node's children are
// fetched at most once per arena; concurrent expansions share one request.
type Expander struct {
	log     *logger.Logger
	api     NodeAPI
	metrics *observability.Metrics
	sf      singleflight.Group
}

func NewExpander(log *logger.Logger, api NodeAPI, metrics *observability.Metrics) *Expander {
	return &Expander{log: log.With("service", "Expander"), api: api, metrics: metrics}
}

// Expansion is the result of expanding one node.
type Expansion struct {
	Children []learning.KnowledgeNode `json:"children"`
	// Loaded is false when the fetch failed and Children is a fail-soft empty list.
	Loaded bool `json:"loaded"`
}

func (e *Expander) Expand(ctx context.Context, a *tree.Arena, nodeID int64) (Expansion, error) {
	n, ok := a.Node(nodeID)
	if !ok {
		return Expansion{Children: []learning.KnowledgeNode{}}, ErrNodeNotFound
	}
	if a.ChildrenLoaded(nodeID) {
		e.metrics.IncExpansion("cached")
		return Expansion{Children: a.Children(nodeID), Loaded: true}, nil
	}
	if !n.Expandable && !n.NodeType.IsContainer() {
		e.metrics.IncExpansion("leaf")
		return Expansion{Children: []learning.KnowledgeNode{}, Loaded: true}, nil
	}

	// Flights are per arena: after Invalidate a caller holding the new arena
	// must not join a fetch that attaches to the old one.
	_, err, _ := e.sf.Do(fmt.Sprintf("%p:%d", a, nodeID), func() (any, error) {
		if a.ChildrenLoaded(nodeID) {
			return nil, nil
		}
		kids, err := e.api.ListChildren(ctx, nodeID)
		if err != nil {
			return nil, fmt.Errorf("fetch children of %d: %w", nodeID, err)
		}
		a.Attach(nodeID, kids)
		e.metrics.IncExpansion("fetched")
		return nil, nil
	})
	if err != nil {
		e.metrics.IncExpansion("failed")
		e.log.Warn("lazy expansion failed", "node_id", nodeID, "error", err)
		return Expansion{Children: []learning.KnowledgeNode{}}, err
	}
	return Expansion{Children: a.Children(nodeID), Loaded: true}, nil
}
