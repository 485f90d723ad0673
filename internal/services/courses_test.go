package services

import (
	"context"
	"testing"

	"github.com/yungbote/qubitgyan-student/internal/domain/learning"
	"github.com/yungbote/qubitgyan-student/internal/platform/logger"
)

func newTestCourses(f *fakeLMS) CourseService {
	return NewCourseService(logger.NewNop(), f, newTestProgress(f))
}

func TestEnrollOptimisticWithCompensation(t *testing.T) {
	f := scenarioLMS()
	f.courses = []learning.Course{{ID: 5, Title: "Physics Foundations", RootNode: learning.ParentRef(2)}}
	ws := newTestSessions(f).Get("42")
	svc := newTestCourses(f)
	ctx := context.Background()

	f.enrollErr = errUpstream
	if _, err := svc.Enroll(ctx, ws, 5); err == nil {
		t.Fatalf("Enroll: expected upstream error")
	}
	if svc.ListCourses(ctx, ws)[0].IsEnrolled {
		t.Fatalf("ListCourses: failed enrollment must be reverted")
	}

	f.enrollErr = nil
	res, err := svc.Enroll(ctx, ws, 5)
	if err != nil {
		t.Fatalf("Enroll: %v", err)
	}
	if res.Status != "enrolled" {
		t.Fatalf("Enroll status: got %q", res.Status)
	}
	if !svc.ListCourses(ctx, ws)[0].IsEnrolled {
		t.Fatalf("ListCourses: expected enrolled after success")
	}
	if calls := f.enrollCalls.Load(); calls != 2 {
		t.Fatalf("Enroll calls: want=2 got=%d", calls)
	}
}

func TestCourseProgressViaRootNode(t *testing.T) {
	f := scenarioLMS()
	f.courses = []learning.Course{
		{ID: 5, RootNode: learning.ParentRef(2)},
		{ID: 6},
	}
	ws := newTestSessions(f).Get("42")
	svc := newTestCourses(f)
	ctx := context.Background()

	got, err := svc.CourseProgress(ctx, ws, 5)
	if err != nil {
		t.Fatalf("CourseProgress: %v", err)
	}
	if got.Percent != 50 || got.RootNodeID == nil || *got.RootNodeID != 2 {
		t.Fatalf("CourseProgress: got %+v", got)
	}

	none, err := svc.CourseProgress(ctx, ws, 6)
	if err != nil || none.Total != 0 || none.Percent != 0 {
		t.Fatalf("CourseProgress without root: got %+v err=%v", none, err)
	}
}

func TestDomainsCountSubjects(t *testing.T) {
	f := scenarioLMS()
	p := learning.ParentRef
	f.forest = append(f.forest, learning.KnowledgeNode{ID: 8, Name: "Maths", NodeType: learning.NodeTypeDomain, Order: 2})
	f.children[8] = []learning.KnowledgeNode{
		{ID: 81, NodeType: learning.NodeTypeSubject, Parent: p(8)},
		{ID: 82, NodeType: learning.NodeTypeSubject, Parent: p(8)},
	}
	ws := newTestSessions(f).Get("42")

	cards := newTestCourses(f).Domains(context.Background(), ws)
	if len(cards) != 2 {
		t.Fatalf("Domains: want=2 got=%d", len(cards))
	}
	if cards[0].Domain.ID != 1 || cards[0].SubjectCount != 1 {
		t.Fatalf("Physics card: got %+v", cards[0])
	}
	if cards[1].Domain.ID != 8 || cards[1].SubjectCount != 2 {
		t.Fatalf("Maths card: got %+v", cards[1])
	}
	// Physics children were already in the tree; only Maths was fetched.
	if calls := f.childCalls.Load(); calls != 1 {
		t.Fatalf("ListChildren calls: want=1 got=%d", calls)
	}
}
