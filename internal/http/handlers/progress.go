package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/yungbote/qubitgyan-student/internal/domain/learning"
	"github.com/yungbote/qubitgyan-student/internal/http/response"
	"github.com/yungbote/qubitgyan-student/internal/platform/logger"
	"github.com/yungbote/qubitgyan-student/internal/services"
)

type ProgressHandler struct {
	log      *logger.Logger
	progress services.ProgressService
}

func NewProgressHandler(log *logger.Logger, progress services.ProgressService) *ProgressHandler {
	return &ProgressHandler{log: log.With("handler", "ProgressHandler"), progress: progress}
}

func (h *ProgressHandler) Summary(c *gin.Context) {
	ws, ok := workspace(c)
	if !ok {
		return
	}
	response.RespondOK(c, h.progress.Summary(c.Request.Context(), ws))
}

func (h *ProgressHandler) CourseProgress(c *gin.Context) {
	ws, ok := workspace(c)
	if !ok {
		return
	}
	rootID, ok := idParam(c, "rootId")
	if !ok {
		return
	}
	cp, err := h.progress.CourseProgress(c.Request.Context(), ws, rootID)
	if err != nil {
		fail(c, h.log, "CourseProgress", "course_progress_failed", err)
		return
	}
	response.RespondOK(c, cp)
}

func (h *ProgressHandler) MarkCompleted(c *gin.Context) {
	ws, ok := workspace(c)
	if !ok {
		return
	}
	var req learning.ProgressInput
	if !bindJSON(c, &req) {
		return
	}
	rec, err := h.progress.MarkCompleted(c.Request.Context(), ws, req)
	if err != nil {
		fail(c, h.log, "MarkCompleted", "record_progress_failed", err)
		return
	}
	response.RespondOK(c, gin.H{"progress": rec})
}
