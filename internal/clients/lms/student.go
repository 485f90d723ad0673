package lms

import (
	"context"
	"fmt"
	"net/http"
	"strconv"

	"github.com/yungbote/qubitgyan-student/internal/domain/learning"
	"github.com/yungbote/qubitgyan-student/internal/domain/student"
)

func (c *Client) ObtainToken(ctx context.Context, creds student.Credentials) (*student.TokenPair, error) {
	var out student.TokenPair
	if err := c.doJSON(ctx, http.MethodPost, "/token/", creds, &out); err != nil {
		return nil, fmt.Errorf("obtain token: %w", err)
	}
	if out.Access == "" {
		return nil, fmt.Errorf("obtain token: empty access token")
	}
	return &out, nil
}

func (c *Client) Me(ctx context.Context) (*student.User, error) {
	var out student.User
	if err := c.doJSON(ctx, http.MethodGet, "/users/me/", nil, &out); err != nil {
		return nil, fmt.Errorf("current user: %w", err)
	}
	return &out, nil
}

func (c *Client) SubmitAdmission(ctx context.Context, in student.Admission) (map[string]any, error) {
	out := map[string]any{}
	if err := c.doJSON(ctx, http.MethodPost, "/public/admissions/", in, &out); err != nil {
		return nil, fmt.Errorf("submit admission: %w", err)
	}
	return out, nil
}

func (c *Client) ChangePassword(ctx context.Context, in student.PasswordChange) error {
	if err := c.doJSON(ctx, http.MethodPut, "/public/change-password/", in, nil); err != nil {
		return fmt.Errorf("change password: %w", err)
	}
	return nil
}

func (c *Client) Profile(ctx context.Context) (*student.Profile, error) {
	var out student.Profile
	if err := c.doJSON(ctx, http.MethodGet, "/public/my-profile/", nil, &out); err != nil {
		return nil, fmt.Errorf("profile: %w", err)
	}
	return &out, nil
}

func (c *Client) Gamification(ctx context.Context) (*student.Gamification, error) {
	var out student.Gamification
	if err := c.doJSON(ctx, http.MethodGet, "/public/gamification/", nil, &out); err != nil {
		return nil, fmt.Errorf("gamification: %w", err)
	}
	return &out, nil
}

// PingActivity reports minutes of visible activity for the learning-time counter.
func (c *Client) PingActivity(ctx context.Context, minutes int) error {
	body := map[string]int{"minutes": minutes}
	if err := c.doJSON(ctx, http.MethodPost, "/public/gamification/ping/", body, nil); err != nil {
		return fmt.Errorf("activity ping: %w", err)
	}
	return nil
}

func (c *Client) ListCourses(ctx context.Context) ([]learning.Course, error) {
	raw, err := c.getRaw(ctx, "/public/courses/")
	if err != nil {
		return nil, fmt.Errorf("list courses: %w", err)
	}
	return ExtractList[learning.Course](raw), nil
}

func (c *Client) ListMyCourses(ctx context.Context) ([]learning.Course, error) {
	raw, err := c.getRaw(ctx, "/public/courses/my_courses/")
	if err != nil {
		return nil, fmt.Errorf("list my courses: %w", err)
	}
	return ExtractList[learning.Course](raw), nil
}

func (c *Client) Enroll(ctx context.Context, courseID int64) (*learning.EnrollResult, error) {
	var out learning.EnrollResult
	path := "/public/courses/" + strconv.FormatInt(courseID, 10) + "/enroll/"
	if err := c.doJSON(ctx, http.MethodPost, path, nil, &out); err != nil {
		return nil, fmt.Errorf("enroll in course %d: %w", courseID, err)
	}
	return &out, nil
}

func (c *Client) ListNotifications(ctx context.Context) ([]student.Notification, error) {
	raw, err := c.getRaw(ctx, "/public/notifications/")
	if err != nil {
		return nil, fmt.Errorf("list notifications: %w", err)
	}
	return ExtractList[student.Notification](raw), nil
}

func (c *Client) UnreadNotificationCount(ctx context.Context) (int, error) {
	var out struct {
		UnreadCount int `json:"unread_count"`
	}
	if err := c.doJSON(ctx, http.MethodGet, "/public/notifications/unread_count/", nil, &out); err != nil {
		return 0, fmt.Errorf("unread notification count: %w", err)
	}
	return out.UnreadCount, nil
}

func (c *Client) MarkAllNotificationsRead(ctx context.Context) error {
	if err := c.doJSON(ctx, http.MethodPost, "/public/notifications/mark_all_read/", nil, nil); err != nil {
		return fmt.Errorf("mark all notifications read: %w", err)
	}
	return nil
}

func (c *Client) ListBookmarks(ctx context.Context) ([]student.Bookmark, error) {
	raw, err := c.getRaw(ctx, "/public/bookmarks/")
	if err != nil {
		return nil, fmt.Errorf("list bookmarks: %w", err)
	}
	return ExtractList[student.Bookmark](raw), nil
}

func (c *Client) AddBookmark(ctx context.Context, resourceID int64) (*student.Bookmark, error) {
	var out student.Bookmark
	if err := c.doJSON(ctx, http.MethodPost, "/public/bookmarks/", map[string]int64{"resource": resourceID}, &out); err != nil {
		return nil, fmt.Errorf("add bookmark for resource %d: %w", resourceID, err)
	}
	return &out, nil
}

func (c *Client) RemoveBookmark(ctx context.Context, id int64) error {
	if err := c.doJSON(ctx, http.MethodDelete, "/public/bookmarks/"+strconv.FormatInt(id, 10)+"/", nil, nil); err != nil {
		return fmt.Errorf("remove bookmark %d: %w", id, err)
	}
	return nil
}

func (c *Client) GetQuiz(ctx context.Context, id int64) (*student.Quiz, error) {
	var out student.Quiz
	if err := c.doJSON(ctx, http.MethodGet, "/public/quizzes/"+strconv.FormatInt(id, 10)+"/", nil, &out); err != nil {
		return nil, fmt.Errorf("get quiz %d: %w", id, err)
	}
	return &out, nil
}

func (c *Client) SubmitQuizAttempt(ctx context.Context, in student.QuizSubmission) (*student.QuizAttempt, error) {
	var out student.QuizAttempt
	if err := c.doJSON(ctx, http.MethodPost, "/public/quiz-attempts/submit/", in, &out); err != nil {
		return nil, fmt.Errorf("submit quiz %d: %w", in.QuizID, err)
	}
	return &out, nil
}

func (c *Client) ListQuizAttempts(ctx context.Context) ([]student.QuizAttempt, error) {
	raw, err := c.getRaw(ctx, "/public/quiz-attempts/")
	if err != nil {
		return nil, fmt.Errorf("list quiz attempts: %w", err)
	}
	return ExtractList[student.QuizAttempt](raw), nil
}
