package handlers

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/qubitgyan-student/internal/http/response"
	"github.com/yungbote/qubitgyan-student/internal/platform/logger"
	"github.com/yungbote/qubitgyan-student/internal/services"
)

type SearchHandler struct {
	log    *logger.Logger
	search services.SearchService
}

func NewSearchHandler(log *logger.Logger, search services.SearchService) *SearchHandler {
	return &SearchHandler{log: log.With("handler", "SearchHandler"), search: search}
}

func (h *SearchHandler) Search(c *gin.Context) {
	ws, ok := workspace(c)
	if !ok {
		return
	}
	limit, _ := strconv.Atoi(c.Query("limit"))
	results := h.search.Query(c.Request.Context(), ws, c.Query("q"), limit)
	response.RespondOK(c, gin.H{"results": results})
}
