package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/yungbote/qubitgyan-student/internal/domain/student"
	"github.com/yungbote/qubitgyan-student/internal/http/response"
	"github.com/yungbote/qubitgyan-student/internal/platform/logger"
	"github.com/yungbote/qubitgyan-student/internal/services"
)

type AuthHandler struct {
	log     *logger.Logger
	student services.StudentService
}

func NewAuthHandler(log *logger.Logger, studentService services.StudentService) *AuthHandler {
	return &AuthHandler{log: log.With("handler", "AuthHandler"), student: studentService}
}

func (h *AuthHandler) Login(c *gin.Context) {
	var req student.Credentials
	if !bindJSON(c, &req) {
		return
	}
	pair, err := h.student.Login(c.Request.Context(), req)
	if err != nil {
		fail(c, h.log, "Login", "login_failed", err)
		return
	}
	response.RespondOK(c, gin.H{"access": pair.Access})
}

func (h *AuthHandler) SubmitAdmission(c *gin.Context) {
	var req student.Admission
	if !bindJSON(c, &req) {
		return
	}
	out, err := h.student.SubmitAdmission(c.Request.Context(), req)
	if err != nil {
		fail(c, h.log, "SubmitAdmission", "admission_failed", err)
		return
	}
	response.RespondCreated(c, out)
}

func (h *AuthHandler) Me(c *gin.Context) {
	me, err := h.student.Me(c.Request.Context())
	if err != nil {
		fail(c, h.log, "Me", "load_user_failed", err)
		return
	}
	response.RespondOK(c, gin.H{"user": me})
}

func (h *AuthHandler) ChangePassword(c *gin.Context) {
	var req student.PasswordChange
	if !bindJSON(c, &req) {
		return
	}
	if err := h.student.ChangePassword(c.Request.Context(), req); err != nil {
		fail(c, h.log, "ChangePassword", "change_password_failed", err)
		return
	}
	response.RespondOK(c, gin.H{"ok": true})
}
