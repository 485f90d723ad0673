package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/yungbote/qubitgyan-student/internal/http/response"
	"github.com/yungbote/qubitgyan-student/internal/platform/logger"
	"github.com/yungbote/qubitgyan-student/internal/services"
)

type CourseHandler struct {
	log     *logger.Logger
	courses services.CourseService
}

func NewCourseHandler(log *logger.Logger, courses services.CourseService) *CourseHandler {
	return &CourseHandler{
		log:     log.With("handler", "CourseHandler"),
		courses: courses,
	}
}

func (h *CourseHandler) ListCourses(c *gin.Context) {
	ws, ok := workspace(c)
	if !ok {
		return
	}
	response.RespondOK(c, gin.H{"courses": h.courses.ListCourses(c.Request.Context(), ws)})
}

func (h *CourseHandler) ListMyCourses(c *gin.Context) {
	ws, ok := workspace(c)
	if !ok {
		return
	}
	response.RespondOK(c, gin.H{"courses": h.courses.ListMyCourses(c.Request.Context(), ws)})
}

func (h *CourseHandler) Enroll(c *gin.Context) {
	ws, ok := workspace(c)
	if !ok {
		return
	}
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	res, err := h.courses.Enroll(c.Request.Context(), ws, id)
	if err != nil {
		fail(c, h.log, "Enroll", "enroll_failed", err)
		return
	}
	response.RespondOK(c, res)
}

func (h *CourseHandler) CourseProgress(c *gin.Context) {
	ws, ok := workspace(c)
	if !ok {
		return
	}
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	cp, err := h.courses.CourseProgress(c.Request.Context(), ws, id)
	if err != nil {
		fail(c, h.log, "CourseProgress", "course_progress_failed", err)
		return
	}
	response.RespondOK(c, cp)
}

func (h *CourseHandler) Dashboard(c *gin.Context) {
	ws, ok := workspace(c)
	if !ok {
		return
	}
	response.RespondOK(c, gin.H{"domains": h.courses.Domains(c.Request.Context(), ws)})
}
