package handlers

import (
	"encoding/json"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/qubitgyan-student/internal/http/response"
	"github.com/yungbote/qubitgyan-student/internal/platform/logger"
	"github.com/yungbote/qubitgyan-student/internal/services"
)

type ResumeHandler struct {
	log     *logger.Logger
	student services.StudentService
}

func NewResumeHandler(log *logger.Logger, studentService services.StudentService) *ResumeHandler {
	return &ResumeHandler{log: log.With("handler", "ResumeHandler"), student: studentService}
}

// Get answers {"resume": null} when nothing was saved for the resource.
func (h *ResumeHandler) Get(c *gin.Context) {
	learner, ok := learnerID(c)
	if !ok {
		return
	}
	resourceID, ok := idParam(c, "resourceId")
	if !ok {
		return
	}
	m, err := h.student.Resume(c.Request.Context(), learner, resourceID)
	if err != nil {
		fail(c, h.log, "GetResume", "load_resume_failed", err)
		return
	}
	response.RespondOK(c, gin.H{"resume": m})
}

func (h *ResumeHandler) Put(c *gin.Context) {
	learner, ok := learnerID(c)
	if !ok {
		return
	}
	resourceID, ok := idParam(c, "resourceId")
	if !ok {
		return
	}
	var req struct {
		NodeID   *int64          `json:"node_id"`
		Position json.RawMessage `json:"position"`
	}
	if !bindJSON(c, &req) {
		return
	}
	m, err := h.student.SaveResume(c.Request.Context(), learner, resourceID, req.NodeID, req.Position)
	if err != nil {
		fail(c, h.log, "SaveResume", "save_resume_failed", err)
		return
	}
	response.RespondOK(c, gin.H{"resume": m})
}
