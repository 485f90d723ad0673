package services

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/yungbote/qubitgyan-student/internal/domain/learning"
)

func TestSelectionLateArrivalIsDiscarded(t *testing.T) {
	f := scenarioLMS()
	f.resources[2] = []learning.Resource{{ID: 20, Node: 2}}
	f.resourceDelay[3] = 50 * time.Millisecond
	ws := newTestSessions(f).Get("42")
	svc := newTestProgress(f)
	ctx := context.Background()

	var wg sync.WaitGroup
	slow := ws.BeginSelection(3)
	wg.Add(1)
	go func() {
		defer wg.Done()
		rs := svc.ResourcesWithCompletion(ctx, ws, 3)
		if ws.ApplySelection(slow, rs) {
			t.Errorf("slow selection should have been superseded")
		}
	}()

	fast := ws.BeginSelection(2)
	if !ws.ApplySelection(fast, svc.ResourcesWithCompletion(ctx, ws, 2)) {
		t.Fatalf("current selection rejected")
	}
	wg.Wait()

	sel := ws.Selection()
	if sel.NodeID != 2 || !sel.Loaded || len(sel.Resources) != 1 || sel.Resources[0].ID != 20 {
		t.Fatalf("selection: want node 2 with resource 20 got %+v", sel)
	}
}

func TestSessionsReuseAndExpire(t *testing.T) {
	f := scenarioLMS()
	s := newTestSessions(f)
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return now }

	a := s.Get("42")
	if s.Get("42") != a {
		t.Fatalf("Get: expected the same workspace for the same learner")
	}
	b := s.Get("7")
	if a == b || a.Tree == b.Tree {
		t.Fatalf("Get: learners must not share a workspace or tree cache")
	}

	now = now.Add(45 * time.Second)
	s.Get("7")
	now = now.Add(30 * time.Second)
	if removed := s.Sweep(); removed != 1 {
		t.Fatalf("Sweep: want=1 removed got=%d", removed)
	}
	if s.Len() != 1 {
		t.Fatalf("Len after sweep: want=1 got=%d", s.Len())
	}

	s.Drop("7")
	if s.Len() != 0 {
		t.Fatalf("Len after Drop: want=0 got=%d", s.Len())
	}
}

func TestSessionsInvalidateAll(t *testing.T) {
	f := scenarioLMS()
	s := newTestSessions(f)
	ctx := context.Background()
	s.Get("1").Tree.Arena(ctx)
	s.Get("2").Tree.Arena(ctx)

	s.InvalidateAll()
	s.Get("1").Tree.Arena(ctx)
	if got := f.nodeCalls.Load(); got != 3 {
		t.Fatalf("ListNodes calls: want=3 got=%d", got)
	}
}

func TestSessionsRunStopsWithContext(t *testing.T) {
	s := newTestSessions(scenarioLMS())
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		s.Run(ctx)
		close(done)
	}()
	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatalf("Run did not return after cancel")
	}
}
