package services

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/yungbote/qubitgyan-student/internal/domain/learning"
	"github.com/yungbote/qubitgyan-student/internal/platform/logger"
)

type CourseService interface {
	ListCourses(ctx context.Context, ws *Workspace) []learning.Course
	ListMyCourses(ctx context.Context, ws *Workspace) []learning.Course
	// Enroll marks the course enrolled locally first and reverts on failure.
	Enroll(ctx context.Context, ws *Workspace, courseID int64) (*learning.EnrollResult, error)
	// CourseProgress resolves the course's root node and aggregates it. A
	// course without a root node reports zero progress.
	CourseProgress(ctx context.Context, ws *Workspace, courseID int64) (learning.CourseProgress, error)
	// Domains lists the dashboard tiles with their subject counts.
	Domains(ctx context.Context, ws *Workspace) []learning.DomainCard
}

type courseService struct {
	log      *logger.Logger
	api      CourseAPI
	progress ProgressService
}

func NewCourseService(log *logger.Logger, api CourseAPI, progress ProgressService) CourseService {
	return &courseService{
		log:      log.With("service", "CourseService"),
		api:      api,
		progress: progress,
	}
}

func (s *courseService) ListCourses(ctx context.Context, ws *Workspace) []learning.Course {
	cs, err := s.api.ListCourses(ctx)
	if err != nil {
		s.log.Warn("course list failed; serving empty list", "error", err)
		return []learning.Course{}
	}
	return ws.overlayEnrolled(cs)
}

func (s *courseService) ListMyCourses(ctx context.Context, ws *Workspace) []learning.Course {
	cs, err := s.api.ListMyCourses(ctx)
	if err != nil {
		s.log.Warn("my courses failed; serving empty list", "error", err)
		return []learning.Course{}
	}
	out := ws.overlayEnrolled(cs)
	for i := range out {
		out[i].IsEnrolled = true
	}
	return out
}

func (s *courseService) Enroll(ctx context.Context, ws *Workspace, courseID int64) (*learning.EnrollResult, error) {
	if courseID <= 0 {
		return nil, invalidf("course id required")
	}
	undo := ws.setEnrolled(courseID, true)
	res, err := s.api.Enroll(ctx, courseID)
	if err != nil {
		undo()
		s.log.Warn("enroll failed; reverted local state", "course_id", courseID, "error", err)
		return nil, err
	}
	return res, nil
}

func (s *courseService) CourseProgress(ctx context.Context, ws *Workspace, courseID int64) (learning.CourseProgress, error) {
	var course *learning.Course
	for _, c := range s.ListCourses(ctx, ws) {
		if c.ID == courseID {
			course = &c
			break
		}
	}
	if course == nil || course.RootNode == nil {
		return learning.CourseProgress{}, nil
	}
	return s.progress.CourseProgress(ctx, ws, *course.RootNode)
}

func (s *courseService) Domains(ctx context.Context, ws *Workspace) []learning.DomainCard {
	a := ws.Tree.Arena(ctx)
	domains := a.Domains()
	cards := make([]learning.DomainCard, len(domains))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(resourceFanOut)
	for i, d := range domains {
		cards[i].Domain = d
		g.Go(func() error {
			exp, err := ws.Expander.Expand(gctx, a, d.ID)
			if err != nil {
				return nil
			}
			cards[i].SubjectCount = len(exp.Children)
			return nil
		})
	}
	_ = g.Wait()
	return cards
}
