package services

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"golang.org/x/sync/errgroup"

	"github.com/yungbote/qubitgyan-student/internal/domain/learning"
	"github.com/yungbote/qubitgyan-student/internal/learning/progress"
	"github.com/yungbote/qubitgyan-student/internal/learning/tree"
	"github.com/yungbote/qubitgyan-student/internal/observability"
	"github.com/yungbote/qubitgyan-student/internal/platform/logger"
)

const resourceFanOut = 8

type ProgressService interface {
	// CompletedSet is the learner's completed resource ids, server records
	// plus any optimistic local completions. Fetch failure yields the overlay only.
	CompletedSet(ctx context.Context, ws *Workspace) map[int64]struct{}
	CourseProgress(ctx context.Context, ws *Workspace, rootNodeID int64) (learning.CourseProgress, error)
	Summary(ctx context.Context, ws *Workspace) learning.ProgressSummary
	// MarkCompleted applies the completion locally, records it upstream and
	// reverts the local change if the upstream call fails.
	MarkCompleted(ctx context.Context, ws *Workspace, in learning.ProgressInput) (*learning.StudentProgress, error)
	// ResourcesWithCompletion is ResourcesForNode with is_completed merged in.
	ResourcesWithCompletion(ctx context.Context, ws *Workspace, nodeID int64) []learning.Resource
}

type progressService struct {
	log       *logger.Logger
	api       ProgressAPI
	resources ResourceService
	loc       *time.Location
}

func NewProgressService(log *logger.Logger, api ProgressAPI, resources ResourceService, loc *time.Location) ProgressService {
	if loc == nil {
		loc = time.UTC
	}
	return &progressService{
		log:       log.With("service", "ProgressService"),
		api:       api,
		resources: resources,
		loc:       loc,
	}
}

func (s *progressService) records(ctx context.Context) []learning.StudentProgress {
	recs, err := s.api.ListProgress(ctx)
	if err != nil {
		s.log.Warn("progress fetch failed; treating as no progress", "error", err)
		return nil
	}
	return recs
}

func (s *progressService) CompletedSet(ctx context.Context, ws *Workspace) map[int64]struct{} {
	set := progress.CompletedSet(s.records(ctx))
	if ws != nil {
		set = ws.overlayCompleted(set)
	}
	return set
}

func (s *progressService) CourseProgress(ctx context.Context, ws *Workspace, rootNodeID int64) (learning.CourseProgress, error) {
	ctx, span := observability.StartSpan(ctx, "progress.course", attribute.Int64("node.root_id", rootNodeID))
	defer span.End()

	a := tree.Empty()
	if ws != nil {
		a = ws.Tree.Arena(ctx)
	}
	nodes := s.resourceNodes(a, rootNodeID)
	span.SetAttributes(attribute.Int("progress.resource_nodes", len(nodes)))

	perNode := make([][]learning.Resource, len(nodes))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(resourceFanOut)
	for i, nodeID := range nodes {
		g.Go(func() error {
			perNode[i] = s.resources.ResourcesForNode(gctx, nodeID)
			return gctx.Err()
		})
	}
	// The completed set is independent of the resource fan-out.
	var completed map[int64]struct{}
	g.Go(func() error {
		completed = s.CompletedSet(gctx, ws)
		return gctx.Err()
	})
	if err := g.Wait(); err != nil {
		return learning.CourseProgress{}, fmt.Errorf("course progress for %d: %w", rootNodeID, err)
	}

	var all []learning.Resource
	for _, rs := range perNode {
		all = append(all, rs...)
	}
	cp := progress.Tally(all, completed)
	cp.RootNodeID = learning.ParentRef(rootNodeID)
	return cp, nil
}

// resourceNodes lists the nodes whose resources count toward a course rooted
// at rootNodeID: the root when it carries resources, then every study
// descendant that does.
func (s *progressService) resourceNodes(a *tree.Arena, rootNodeID int64) []int64 {
	var ids []int64
	if root, ok := a.Node(rootNodeID); ok && root.ResourceCount > 0 {
		ids = append(ids, rootNodeID)
	}
	for _, n := range a.StudyDescendants(rootNodeID) {
		if n.ResourceCount > 0 {
			ids = append(ids, n.ID)
		}
	}
	return ids
}

func (s *progressService) Summary(ctx context.Context, ws *Workspace) learning.ProgressSummary {
	recs := s.records(ctx)
	sum := progress.Summarize(recs, s.loc)
	if ws != nil {
		sum.CompletedResourceIDs = progress.SortedIDs(ws.overlayCompleted(progress.CompletedSet(recs)))
	}
	return sum
}

func (s *progressService) MarkCompleted(ctx context.Context, ws *Workspace, in learning.ProgressInput) (*learning.StudentProgress, error) {
	if in.Resource <= 0 {
		return nil, invalidf("resource id required")
	}
	undo := func() {}
	if ws != nil {
		undo = ws.setCompleted(in.Resource, in.IsCompleted)
	}
	rec, err := s.api.RecordProgress(ctx, in)
	if err != nil {
		undo()
		s.log.Warn("progress update failed; reverted local state", "resource_id", in.Resource, "error", err)
		return nil, err
	}
	return rec, nil
}

func (s *progressService) ResourcesWithCompletion(ctx context.Context, ws *Workspace, nodeID int64) []learning.Resource {
	var (
		rs        []learning.Resource
		completed map[int64]struct{}
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		rs = s.resources.ResourcesForNode(gctx, nodeID)
		return nil
	})
	g.Go(func() error {
		completed = s.CompletedSet(gctx, ws)
		return nil
	})
	_ = g.Wait()
	return progress.ApplyCompletion(rs, completed)
}
