package services

import (
	"context"
	"sync"
	"time"

	"github.com/yungbote/qubitgyan-student/internal/domain/learning"
	"github.com/yungbote/qubitgyan-student/internal/observability"
	"github.com/yungbote/qubitgyan-student/internal/platform/logger"
)

// Selection is the node whose resources the viewer is showing.
type Selection struct {
	Ticket    uint64              `json:"ticket"`
	NodeID    int64               `json:"node_id"`
	Loaded    bool                `json:"loaded"`
	Resources []learning.Resource `json:"resources"`
}

// Workspace is the per-learner equivalent of one open page: its own tree
// cache, lazy expansion state, current selection and optimistic overlays.
type Workspace struct {
	LearnerID string
	Tree      TreeService
	Expander  *Expander

	mu        sync.Mutex
	ticket    uint64
	selection Selection
	completed map[int64]bool
	enrolled  map[int64]bool
	lastSeen  time.Time
}

func newWorkspace(learnerID string, t TreeService, e *Expander, now time.Time) *Workspace {
	return &Workspace{
		LearnerID: learnerID,
		Tree:      t,
		Expander:  e,
		completed: map[int64]bool{},
		enrolled:  map[int64]bool{},
		lastSeen:  now,
	}
}

// BeginSelection makes nodeID the active selection and returns its ticket.
// Any earlier ticket is superseded.
func (w *Workspace) BeginSelection(nodeID int64) uint64 {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.ticket++
	w.selection = Selection{Ticket: w.ticket, NodeID: nodeID, Resources: []learning.Resource{}}
	return w.ticket
}

// ApplySelection stores resources for ticket. It reports false, and changes
// nothing, when a newer selection has started since.
func (w *Workspace) ApplySelection(ticket uint64, resources []learning.Resource) bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	if ticket != w.ticket {
		return false
	}
	if resources == nil {
		resources = []learning.Resource{}
	}
	w.selection.Resources = resources
	w.selection.Loaded = true
	return true
}

func (w *Workspace) Selection() Selection {
	w.mu.Lock()
	defer w.mu.Unlock()
	sel := w.selection
	sel.Resources = append([]learning.Resource(nil), sel.Resources...)
	return sel
}

// setCompleted records an optimistic completion and returns the undo.
func (w *Workspace) setCompleted(resourceID int64, done bool) (undo func()) {
	w.mu.Lock()
	defer w.mu.Unlock()
	prev, had := w.completed[resourceID]
	shown, inSelection := w.selectionFlagLocked(resourceID)
	w.completed[resourceID] = done
	w.patchSelectionLocked(resourceID, done)
	return func() {
		w.mu.Lock()
		defer w.mu.Unlock()
		if had {
			w.completed[resourceID] = prev
		} else {
			delete(w.completed, resourceID)
		}
		if inSelection {
			w.patchSelectionLocked(resourceID, shown)
		}
	}
}

func (w *Workspace) selectionFlagLocked(resourceID int64) (bool, bool) {
	for _, r := range w.selection.Resources {
		if r.ID == resourceID {
			return r.IsCompleted, true
		}
	}
	return false, false
}

func (w *Workspace) patchSelectionLocked(resourceID int64, done bool) {
	for i := range w.selection.Resources {
		if w.selection.Resources[i].ID == resourceID {
			w.selection.Resources[i].IsCompleted = done
		}
	}
}

// overlayCompleted applies local completions on top of a server-derived set.
func (w *Workspace) overlayCompleted(set map[int64]struct{}) map[int64]struct{} {
	w.mu.Lock()
	defer w.mu.Unlock()
	for id, done := range w.completed {
		if done {
			set[id] = struct{}{}
		} else {
			delete(set, id)
		}
	}
	return set
}

func (w *Workspace) setEnrolled(courseID int64, enrolled bool) (undo func()) {
	w.mu.Lock()
	defer w.mu.Unlock()
	prev, had := w.enrolled[courseID]
	w.enrolled[courseID] = enrolled
	return func() {
		w.mu.Lock()
		defer w.mu.Unlock()
		if had {
			w.enrolled[courseID] = prev
		} else {
			delete(w.enrolled, courseID)
		}
	}
}

func (w *Workspace) overlayEnrolled(courses []learning.Course) []learning.Course {
	w.mu.Lock()
	defer w.mu.Unlock()
	out := make([]learning.Course, len(courses))
	for i, c := range courses {
		if v, ok := w.enrolled[c.ID]; ok {
			c.IsEnrolled = v
		}
		out[i] = c
	}
	return out
}

func (w *Workspace) touch(now time.Time) {
	w.mu.Lock()
	w.lastSeen = now
	w.mu.Unlock()
}

func (w *Workspace) idleSince() time.Time {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.lastSeen
}

// Sessions owns one Workspace per learner and expires idle ones.
type Sessions struct {
	log     *logger.Logger
	api     NodeAPI
	newTree TreeServiceFactory
	idle    time.Duration
	now     func() time.Time
	metrics *observability.Metrics

	mu         sync.Mutex
	workspaces map[string]*Workspace
}

// TreeServiceFactory builds the tree cache for a new workspace.
type TreeServiceFactory func() TreeService

func NewSessions(log *logger.Logger, api NodeAPI, newTree TreeServiceFactory, idle time.Duration, metrics *observability.Metrics) *Sessions {
	if idle <= 0 {
		idle = 30 * time.Minute
	}
	return &Sessions{
		log:        log.With("service", "Sessions"),
		api:        api,
		newTree:    newTree,
		idle:       idle,
		now:        time.Now,
		metrics:    metrics,
		workspaces: map[string]*Workspace{},
	}
}

// Get returns the learner's workspace, creating it on first use.
func (s *Sessions) Get(learnerID string) *Workspace {
	now := s.now()
	s.mu.Lock()
	defer s.mu.Unlock()
	if ws, ok := s.workspaces[learnerID]; ok {
		ws.touch(now)
		return ws
	}
	ws := newWorkspace(learnerID, s.newTree(), NewExpander(s.log, s.api, s.metrics), now)
	s.workspaces[learnerID] = ws
	s.metrics.SetWorkspaces(len(s.workspaces))
	s.log.Debug("workspace opened", "learner_id", learnerID)
	return ws
}

// Drop discards the learner's workspace, e.g. on logout.
func (s *Sessions) Drop(learnerID string) {
	s.mu.Lock()
	delete(s.workspaces, learnerID)
	s.metrics.SetWorkspaces(len(s.workspaces))
	s.mu.Unlock()
}

// InvalidateAll drops every cached tree; used when another replica reports a
// tree change.
func (s *Sessions) InvalidateAll() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, ws := range s.workspaces {
		ws.Tree.Invalidate()
	}
}

func (s *Sessions) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.workspaces)
}

// Sweep removes workspaces idle for longer than the configured timeout.
func (s *Sessions) Sweep() int {
	cutoff := s.now().Add(-s.idle)
	s.mu.Lock()
	defer s.mu.Unlock()
	removed := 0
	for id, ws := range s.workspaces {
		if ws.idleSince().Before(cutoff) {
			delete(s.workspaces, id)
			removed++
		}
	}
	s.metrics.SetWorkspaces(len(s.workspaces))
	return removed
}

// Run sweeps periodically until ctx is done.
func (s *Sessions) Run(ctx context.Context) {
	interval := s.idle / 2
	if interval < time.Second {
		interval = time.Second
	}
	t := time.NewTicker(interval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			if n := s.Sweep(); n > 0 {
				s.log.Debug("expired idle workspaces", "count", n)
			}
		}
	}
}
