package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/yungbote/qubitgyan-student/internal/domain/student"
	"github.com/yungbote/qubitgyan-student/internal/http/response"
	"github.com/yungbote/qubitgyan-student/internal/platform/logger"
	"github.com/yungbote/qubitgyan-student/internal/services"
)

// StudentHandler serves the profile, notification, bookmark and quiz pages.
type StudentHandler struct {
	log     *logger.Logger
	student services.StudentService
}

func NewStudentHandler(log *logger.Logger, studentService services.StudentService) *StudentHandler {
	return &StudentHandler{log: log.With("handler", "StudentHandler"), student: studentService}
}

func (h *StudentHandler) Profile(c *gin.Context) {
	p, err := h.student.Profile(c.Request.Context())
	if err != nil {
		fail(c, h.log, "Profile", "load_profile_failed", err)
		return
	}
	response.RespondOK(c, gin.H{"profile": p})
}

func (h *StudentHandler) Gamification(c *gin.Context) {
	g, err := h.student.Gamification(c.Request.Context())
	if err != nil {
		fail(c, h.log, "Gamification", "load_gamification_failed", err)
		return
	}
	response.RespondOK(c, g)
}

func (h *StudentHandler) Ping(c *gin.Context) {
	var req struct {
		Minutes int `json:"minutes"`
	}
	if c.Request.ContentLength != 0 && !bindJSON(c, &req) {
		return
	}
	if err := h.student.Ping(c.Request.Context(), req.Minutes); err != nil {
		fail(c, h.log, "Ping", "ping_failed", err)
		return
	}
	response.RespondOK(c, gin.H{"ok": true})
}

func (h *StudentHandler) Notifications(c *gin.Context) {
	learner, ok := learnerID(c)
	if !ok {
		return
	}
	feed, err := h.student.Notifications(c.Request.Context(), learner)
	if err != nil {
		fail(c, h.log, "Notifications", "load_notifications_failed", err)
		return
	}
	response.RespondOK(c, feed)
}

func (h *StudentHandler) MarkNotificationRead(c *gin.Context) {
	learner, ok := learnerID(c)
	if !ok {
		return
	}
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	if err := h.student.MarkNotificationRead(c.Request.Context(), learner, id); err != nil {
		fail(c, h.log, "MarkNotificationRead", "mark_read_failed", err)
		return
	}
	response.RespondOK(c, gin.H{"ok": true})
}

func (h *StudentHandler) MarkAllNotificationsRead(c *gin.Context) {
	learner, ok := learnerID(c)
	if !ok {
		return
	}
	if err := h.student.MarkAllNotificationsRead(c.Request.Context(), learner); err != nil {
		fail(c, h.log, "MarkAllNotificationsRead", "mark_read_failed", err)
		return
	}
	response.RespondOK(c, gin.H{"ok": true})
}

func (h *StudentHandler) Bookmarks(c *gin.Context) {
	bs, err := h.student.Bookmarks(c.Request.Context())
	if err != nil {
		fail(c, h.log, "Bookmarks", "load_bookmarks_failed", err)
		return
	}
	response.RespondOK(c, gin.H{"bookmarks": bs})
}

func (h *StudentHandler) AddBookmark(c *gin.Context) {
	var req struct {
		Resource int64 `json:"resource"`
	}
	if !bindJSON(c, &req) {
		return
	}
	b, err := h.student.AddBookmark(c.Request.Context(), req.Resource)
	if err != nil {
		fail(c, h.log, "AddBookmark", "add_bookmark_failed", err)
		return
	}
	response.RespondCreated(c, gin.H{"bookmark": b})
}

func (h *StudentHandler) RemoveBookmark(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	if err := h.student.RemoveBookmark(c.Request.Context(), id); err != nil {
		fail(c, h.log, "RemoveBookmark", "remove_bookmark_failed", err)
		return
	}
	response.RespondOK(c, gin.H{"ok": true})
}

func (h *StudentHandler) Quiz(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	q, err := h.student.Quiz(c.Request.Context(), id)
	if err != nil {
		fail(c, h.log, "Quiz", "load_quiz_failed", err)
		return
	}
	response.RespondOK(c, gin.H{"quiz": q})
}

func (h *StudentHandler) SubmitQuiz(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	var req struct {
		Answers []student.QuizAnswer `json:"answers"`
	}
	if !bindJSON(c, &req) {
		return
	}
	attempt, err := h.student.SubmitQuiz(c.Request.Context(), student.QuizSubmission{QuizID: id, Answers: req.Answers})
	if err != nil {
		fail(c, h.log, "SubmitQuiz", "submit_quiz_failed", err)
		return
	}
	response.RespondCreated(c, gin.H{"attempt": attempt})
}

func (h *StudentHandler) QuizAttempts(c *gin.Context) {
	attempts, err := h.student.QuizAttempts(c.Request.Context())
	if err != nil {
		fail(c, h.log, "QuizAttempts", "load_attempts_failed", err)
		return
	}
	response.RespondOK(c, gin.H{"attempts": attempts})
}
