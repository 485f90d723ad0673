package services

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/yungbote/qubitgyan-student/internal/domain/learning"
	"github.com/yungbote/qubitgyan-student/internal/domain/student"
)

var errUpstream = errors.New("upstream down")

// fakeLMS is an in-memory LMS with call counters.
type fakeLMS struct {
	mu sync.Mutex

	forest    []learning.KnowledgeNode
	children  map[int64][]learning.KnowledgeNode
	resources map[int64][]learning.Resource
	progress  []learning.StudentProgress
	courses   []learning.Course
	mine      []learning.Course
	notes     []student.Notification

	nodesErr    error
	childrenErr error
	progressErr error
	recordErr   error
	enrollErr   error

	// childrenDelay holds ListChildren so concurrent callers overlap.
	childrenDelay time.Duration
	// childrenHook runs with the call number before ListChildren answers.
	childrenHook func(call int32)
	// resourceDelay is consulted per node before answering ListResources.
	resourceDelay map[int64]time.Duration

	nodeCalls     atomic.Int32
	childCalls    atomic.Int32
	resourceCalls atomic.Int32
	recordCalls   atomic.Int32
	enrollCalls   atomic.Int32
	markAllCalls  atomic.Int32
}

func newFakeLMS() *fakeLMS {
	return &fakeLMS{
		children:      map[int64][]learning.KnowledgeNode{},
		resources:     map[int64][]learning.Resource{},
		resourceDelay: map[int64]time.Duration{},
	}
}

func (f *fakeLMS) ListNodes(ctx context.Context) ([]learning.KnowledgeNode, error) {
	f.nodeCalls.Add(1)
	if f.nodesErr != nil {
		return nil, f.nodesErr
	}
	return f.forest, nil
}

func (f *fakeLMS) ListChildren(ctx context.Context, parentID int64) ([]learning.KnowledgeNode, error) {
	call := f.childCalls.Add(1)
	if f.childrenHook != nil {
		f.childrenHook(call)
	}
	if f.childrenDelay > 0 {
		time.Sleep(f.childrenDelay)
	}
	if f.childrenErr != nil {
		return nil, f.childrenErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]learning.KnowledgeNode(nil), f.children[parentID]...), nil
}

func (f *fakeLMS) ListResources(ctx context.Context, nodeID int64) ([]learning.Resource, error) {
	f.resourceCalls.Add(1)
	if d := f.resourceDelay[nodeID]; d > 0 {
		select {
		case <-time.After(d):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	rs, ok := f.resources[nodeID]
	if !ok {
		return nil, errUpstream
	}
	return append([]learning.Resource(nil), rs...), nil
}

func (f *fakeLMS) ListProgress(ctx context.Context) ([]learning.StudentProgress, error) {
	if f.progressErr != nil {
		return nil, f.progressErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]learning.StudentProgress(nil), f.progress...), nil
}

func (f *fakeLMS) RecordProgress(ctx context.Context, in learning.ProgressInput) (*learning.StudentProgress, error) {
	f.recordCalls.Add(1)
	if f.recordErr != nil {
		return nil, f.recordErr
	}
	f.mu.Lock()
	rec := learning.StudentProgress{ID: int64(len(f.progress) + 1), Resource: in.Resource, IsCompleted: in.IsCompleted, LastAccessed: "2024-05-01T10:00:00Z"}
	f.progress = append(f.progress, rec)
	f.mu.Unlock()
	return &rec, nil
}

func (f *fakeLMS) ListCourses(ctx context.Context) ([]learning.Course, error) { return f.courses, nil }

func (f *fakeLMS) ListMyCourses(ctx context.Context) ([]learning.Course, error) { return f.mine, nil }

func (f *fakeLMS) Enroll(ctx context.Context, courseID int64) (*learning.EnrollResult, error) {
	f.enrollCalls.Add(1)
	if f.enrollErr != nil {
		return nil, f.enrollErr
	}
	return &learning.EnrollResult{Status: "enrolled"}, nil
}

func (f *fakeLMS) ObtainToken(ctx context.Context, creds student.Credentials) (*student.TokenPair, error) {
	return &student.TokenPair{Access: "access-" + creds.Username}, nil
}

func (f *fakeLMS) Me(ctx context.Context) (*student.User, error) {
	return &student.User{ID: 42, Username: "asha"}, nil
}

func (f *fakeLMS) SubmitAdmission(ctx context.Context, in student.Admission) (map[string]any, error) {
	return map[string]any{"status": "received"}, nil
}

func (f *fakeLMS) ChangePassword(ctx context.Context, in student.PasswordChange) error { return nil }

func (f *fakeLMS) Profile(ctx context.Context) (*student.Profile, error) {
	return &student.Profile{Username: "asha"}, nil
}

func (f *fakeLMS) Gamification(ctx context.Context) (*student.Gamification, error) {
	return &student.Gamification{CurrentStreak: 3}, nil
}

func (f *fakeLMS) PingActivity(ctx context.Context, minutes int) error { return nil }

func (f *fakeLMS) ListNotifications(ctx context.Context) ([]student.Notification, error) {
	return f.notes, nil
}

func (f *fakeLMS) UnreadNotificationCount(ctx context.Context) (int, error) { return 0, nil }

func (f *fakeLMS) MarkAllNotificationsRead(ctx context.Context) error {
	f.markAllCalls.Add(1)
	return nil
}

func (f *fakeLMS) ListBookmarks(ctx context.Context) ([]student.Bookmark, error) { return nil, nil }

func (f *fakeLMS) AddBookmark(ctx context.Context, resourceID int64) (*student.Bookmark, error) {
	return &student.Bookmark{ID: 1, Resource: resourceID}, nil
}

func (f *fakeLMS) RemoveBookmark(ctx context.Context, id int64) error { return nil }

func (f *fakeLMS) GetQuiz(ctx context.Context, id int64) (*student.Quiz, error) {
	return &student.Quiz{ID: id}, nil
}

func (f *fakeLMS) SubmitQuizAttempt(ctx context.Context, in student.QuizSubmission) (*student.QuizAttempt, error) {
	return &student.QuizAttempt{ID: 1, Quiz: in.QuizID, IsCompleted: true}, nil
}

func (f *fakeLMS) ListQuizAttempts(ctx context.Context) ([]student.QuizAttempt, error) { return nil, nil }

var _ LMS = (*fakeLMS)(nil)

// scenarioLMS is the DOMAIN → SUBJECT → TOPIC example with two resources, one completed.
func scenarioLMS() *fakeLMS {
	f := newFakeLMS()
	p := learning.ParentRef
	f.forest = []learning.KnowledgeNode{
		{ID: 1, Name: "Physics", NodeType: learning.NodeTypeDomain},
		{ID: 2, Name: "Mechanics", NodeType: learning.NodeTypeSubject, Parent: p(1)},
		{ID: 3, Name: "Kinematics", NodeType: learning.NodeTypeTopic, Parent: p(2), ResourceCount: 2},
	}
	f.resources[3] = []learning.Resource{{ID: 10, Node: 3}, {ID: 11, Node: 3}}
	f.progress = []learning.StudentProgress{{ID: 1, Resource: 10, IsCompleted: true, LastAccessed: "2024-05-01T09:00:00Z"}}
	return f
}
