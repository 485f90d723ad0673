package services

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/yungbote/qubitgyan-student/internal/data/localstate"
	"github.com/yungbote/qubitgyan-student/internal/domain/student"
	"github.com/yungbote/qubitgyan-student/internal/platform/logger"
)

// StudentService covers the account, engagement and local-state endpoints that
// need little more than a pass-through to the LMS.
type StudentService interface {
	Login(ctx context.Context, creds student.Credentials) (*student.TokenPair, error)
	Me(ctx context.Context) (*student.User, error)
	SubmitAdmission(ctx context.Context, in student.Admission) (map[string]any, error)
	ChangePassword(ctx context.Context, in student.PasswordChange) error
	Profile(ctx context.Context) (*student.Profile, error)
	Gamification(ctx context.Context) (*student.Gamification, error)
	Ping(ctx context.Context, minutes int) error

	Notifications(ctx context.Context, learnerID string) (NotificationFeed, error)
	MarkNotificationRead(ctx context.Context, learnerID string, id int64) error
	MarkAllNotificationsRead(ctx context.Context, learnerID string) error

	Bookmarks(ctx context.Context) ([]student.Bookmark, error)
	AddBookmark(ctx context.Context, resourceID int64) (*student.Bookmark, error)
	RemoveBookmark(ctx context.Context, id int64) error

	Quiz(ctx context.Context, id int64) (*student.Quiz, error)
	SubmitQuiz(ctx context.Context, in student.QuizSubmission) (*student.QuizAttempt, error)
	QuizAttempts(ctx context.Context) ([]student.QuizAttempt, error)

	Resume(ctx context.Context, learnerID string, resourceID int64) (*localstate.ResumeMarker, error)
	SaveResume(ctx context.Context, learnerID string, resourceID int64, nodeID *int64, position json.RawMessage) (*localstate.ResumeMarker, error)
}

type NotificationFeed struct {
	Items       []student.Notification `json:"items"`
	UnreadCount int                    `json:"unread_count"`
}

// Max minutes a single activity ping may report.
const maxPingMinutes = 60

type studentService struct {
	log     *logger.Logger
	account AccountAPI
	engage  EngagementAPI
	reads   localstate.ReadMarkRepo
	resume  localstate.ResumeRepo
}

func NewStudentService(log *logger.Logger, account AccountAPI, engage EngagementAPI, reads localstate.ReadMarkRepo, resume localstate.ResumeRepo) StudentService {
	return &studentService{
		log:     log.With("service", "StudentService"),
		account: account,
		engage:  engage,
		reads:   reads,
		resume:  resume,
	}
}

func (s *studentService) Login(ctx context.Context, creds student.Credentials) (*student.TokenPair, error) {
	creds.Username = strings.TrimSpace(creds.Username)
	if creds.Username == "" || creds.Password == "" {
		return nil, invalidf("username and password required")
	}
	return s.account.ObtainToken(ctx, creds)
}

func (s *studentService) Me(ctx context.Context) (*student.User, error) { return s.account.Me(ctx) }

func (s *studentService) SubmitAdmission(ctx context.Context, in student.Admission) (map[string]any, error) {
	if strings.TrimSpace(in.StudentFirstName) == "" || strings.TrimSpace(in.Phone) == "" {
		return nil, invalidf("student first name and phone required")
	}
	return s.account.SubmitAdmission(ctx, in)
}

func (s *studentService) ChangePassword(ctx context.Context, in student.PasswordChange) error {
	if in.OldPassword == "" || in.NewPassword == "" {
		return invalidf("old and new password required")
	}
	if in.OldPassword == in.NewPassword {
		return invalidf("new password must differ from the old one")
	}
	return s.account.ChangePassword(ctx, in)
}

func (s *studentService) Profile(ctx context.Context) (*student.Profile, error) {
	return s.account.Profile(ctx)
}

func (s *studentService) Gamification(ctx context.Context) (*student.Gamification, error) {
	return s.account.Gamification(ctx)
}

func (s *studentService) Ping(ctx context.Context, minutes int) error {
	if minutes <= 0 {
		minutes = 1
	}
	if minutes > maxPingMinutes {
		minutes = maxPingMinutes
	}
	return s.account.PingActivity(ctx, minutes)
}

func (s *studentService) Notifications(ctx context.Context, learnerID string) (NotificationFeed, error) {
	items, err := s.engage.ListNotifications(ctx)
	if err != nil {
		return NotificationFeed{Items: []student.Notification{}}, err
	}
	read := map[int64]struct{}{}
	if s.reads != nil && learnerID != "" {
		if set, err := s.reads.ReadSet(ctx, learnerID); err != nil {
			s.log.Warn("local read marks unavailable", "error", err)
		} else {
			read = set
		}
	}
	feed := NotificationFeed{Items: make([]student.Notification, 0, len(items))}
	for _, n := range items {
		if _, ok := read[n.ID]; ok {
			n.IsRead = true
		}
		if !n.IsRead {
			feed.UnreadCount++
		}
		feed.Items = append(feed.Items, n)
	}
	return feed, nil
}

func (s *studentService) MarkNotificationRead(ctx context.Context, learnerID string, id int64) error {
	if s.reads == nil {
		return fmt.Errorf("local state not configured")
	}
	return s.reads.MarkRead(ctx, learnerID, id)
}

func (s *studentService) MarkAllNotificationsRead(ctx context.Context, learnerID string) error {
	feed, err := s.Notifications(ctx, learnerID)
	if err != nil {
		return err
	}
	if s.reads != nil {
		ids := make([]int64, 0, len(feed.Items))
		for _, n := range feed.Items {
			ids = append(ids, n.ID)
		}
		if err := s.reads.MarkRead(ctx, learnerID, ids...); err != nil {
			return err
		}
	}
	return s.engage.MarkAllNotificationsRead(ctx)
}

func (s *studentService) Bookmarks(ctx context.Context) ([]student.Bookmark, error) {
	return s.engage.ListBookmarks(ctx)
}

func (s *studentService) AddBookmark(ctx context.Context, resourceID int64) (*student.Bookmark, error) {
	if resourceID <= 0 {
		return nil, invalidf("resource id required")
	}
	return s.engage.AddBookmark(ctx, resourceID)
}

func (s *studentService) RemoveBookmark(ctx context.Context, id int64) error {
	return s.engage.RemoveBookmark(ctx, id)
}

func (s *studentService) Quiz(ctx context.Context, id int64) (*student.Quiz, error) {
	return s.engage.GetQuiz(ctx, id)
}

func (s *studentService) SubmitQuiz(ctx context.Context, in student.QuizSubmission) (*student.QuizAttempt, error) {
	if in.QuizID <= 0 {
		return nil, invalidf("quiz id required")
	}
	seen := map[int64]bool{}
	for _, a := range in.Answers {
		if seen[a.QuestionID] {
			return nil, invalidf("question %d answered twice", a.QuestionID)
		}
		seen[a.QuestionID] = true
	}
	return s.engage.SubmitQuizAttempt(ctx, in)
}

func (s *studentService) QuizAttempts(ctx context.Context) ([]student.QuizAttempt, error) {
	return s.engage.ListQuizAttempts(ctx)
}

func (s *studentService) Resume(ctx context.Context, learnerID string, resourceID int64) (*localstate.ResumeMarker, error) {
	if s.resume == nil {
		return nil, nil
	}
	return s.resume.Get(ctx, learnerID, resourceID)
}

func (s *studentService) SaveResume(ctx context.Context, learnerID string, resourceID int64, nodeID *int64, position json.RawMessage) (*localstate.ResumeMarker, error) {
	if s.resume == nil {
		return nil, fmt.Errorf("local state not configured")
	}
	return s.resume.Upsert(ctx, learnerID, resourceID, nodeID, position)
}
