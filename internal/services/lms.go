package services

import (
	"context"

	"github.com/yungbote/qubitgyan-student/internal/domain/learning"
	"github.com/yungbote/qubitgyan-student/internal/domain/student"
)

// NodeAPI is the slice of the LMS client the tree needs. *lms.Client
// satisfies every interface in this file.
type NodeAPI interface {
	ListNodes(ctx context.Context) ([]learning.KnowledgeNode, error)
	ListChildren(ctx context.Context, parentID int64) ([]learning.KnowledgeNode, error)
}

type ResourceAPI interface {
	ListResources(ctx context.Context, nodeID int64) ([]learning.Resource, error)
}

type ProgressAPI interface {
	ListProgress(ctx context.Context) ([]learning.StudentProgress, error)
	RecordProgress(ctx context.Context, in learning.ProgressInput) (*learning.StudentProgress, error)
}

type CourseAPI interface {
	ListCourses(ctx context.Context) ([]learning.Course, error)
	ListMyCourses(ctx context.Context) ([]learning.Course, error)
	Enroll(ctx context.Context, courseID int64) (*learning.EnrollResult, error)
}

type AccountAPI interface {
	ObtainToken(ctx context.Context, creds student.Credentials) (*student.TokenPair, error)
	Me(ctx context.Context) (*student.User, error)
	SubmitAdmission(ctx context.Context, in student.Admission) (map[string]any, error)
	ChangePassword(ctx context.Context, in student.PasswordChange) error
	Profile(ctx context.Context) (*student.Profile, error)
	Gamification(ctx context.Context) (*student.Gamification, error)
	PingActivity(ctx context.Context, minutes int) error
}

type EngagementAPI interface {
	ListNotifications(ctx context.Context) ([]student.Notification, error)
	UnreadNotificationCount(ctx context.Context) (int, error)
	MarkAllNotificationsRead(ctx context.Context) error
	ListBookmarks(ctx context.Context) ([]student.Bookmark, error)
	AddBookmark(ctx context.Context, resourceID int64) (*student.Bookmark, error)
	RemoveBookmark(ctx context.Context, id int64) error
	GetQuiz(ctx context.Context, id int64) (*student.Quiz, error)
	SubmitQuizAttempt(ctx context.Context, in student.QuizSubmission) (*student.QuizAttempt, error)
	ListQuizAttempts(ctx context.Context) ([]student.QuizAttempt, error)
}

// LMS is everything the gateway calls upstream.
type LMS interface {
	NodeAPI
	ResourceAPI
	ProgressAPI
	CourseAPI
	AccountAPI
	EngagementAPI
}
