package handlers

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/qubitgyan-student/internal/clients/redis"
	"github.com/yungbote/qubitgyan-student/internal/http/response"
	"github.com/yungbote/qubitgyan-student/internal/learning/tree"
	"github.com/yungbote/qubitgyan-student/internal/platform/logger"
	"github.com/yungbote/qubitgyan-student/internal/services"
)

type TreeHandler struct {
	log      *logger.Logger
	progress services.ProgressService
	shared   redis.TreeCache
}

// NewTreeHandler serves the knowledge tree views. shared may be nil.
func NewTreeHandler(log *logger.Logger, progress services.ProgressService, shared redis.TreeCache) *TreeHandler {
	return &TreeHandler{
		log:      log.With("handler", "TreeHandler"),
		progress: progress,
		shared:   shared,
	}
}

func (h *TreeHandler) GetTree(c *gin.Context) {
	ws, ok := workspace(c)
	if !ok {
		return
	}
	a := ws.Tree.Arena(c.Request.Context())
	response.RespondOK(c, gin.H{
		"forest": a.Forest(),
		"nodes":  a.Nodes(),
		"count":  a.Len(),
	})
}

// Invalidate drops this learner's cached tree. With a shared cache configured
// the entry is cleared for every replica too.
func (h *TreeHandler) Invalidate(c *gin.Context) {
	ws, ok := workspace(c)
	if !ok {
		return
	}
	ws.Tree.Invalidate()
	if h.shared != nil {
		if err := h.shared.Invalidate(c.Request.Context()); err != nil {
			h.log.Warn("shared tree invalidation failed", "error", err)
		}
	}
	response.RespondOK(c, gin.H{"ok": true})
}

func (h *TreeHandler) Ancestors(c *gin.Context) {
	ws, ok := workspace(c)
	if !ok {
		return
	}
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	chain := ws.Tree.Arena(c.Request.Context()).AncestorChain(id)
	domain, subject := tree.Classify(chain)
	response.RespondOK(c, gin.H{
		"chain":   chain,
		"domain":  domain,
		"subject": subject,
	})
}

// Children lazily expands a node. An upstream failure still answers 200 with
// loaded=false so the client can retry on the next expand.
func (h *TreeHandler) Children(c *gin.Context) {
	ws, ok := workspace(c)
	if !ok {
		return
	}
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	ctx := c.Request.Context()
	exp, err := ws.Expander.Expand(ctx, ws.Tree.Arena(ctx), id)
	if errors.Is(err, services.ErrNodeNotFound) {
		fail(c, h.log, "Children", "node_not_found", err)
		return
	}
	response.RespondOK(c, exp)
}

func (h *TreeHandler) Descendants(c *gin.Context) {
	ws, ok := workspace(c)
	if !ok {
		return
	}
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	nodes := ws.Tree.Arena(c.Request.Context()).StudyDescendants(id)
	response.RespondOK(c, gin.H{"nodes": nodes})
}

func (h *TreeHandler) Resources(c *gin.Context) {
	ws, ok := workspace(c)
	if !ok {
		return
	}
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	rs := h.progress.ResourcesWithCompletion(c.Request.Context(), ws, id)
	response.RespondOK(c, gin.H{"resources": rs})
}

// Select makes the node the active selection and loads its resources. When a
// newer selection starts while this one is loading, the result is dropped and
// the reply carries the newer selection with superseded=true.
func (h *TreeHandler) Select(c *gin.Context) {
	ws, ok := workspace(c)
	if !ok {
		return
	}
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	ticket := ws.BeginSelection(id)
	rs := h.progress.ResourcesWithCompletion(c.Request.Context(), ws, id)
	applied := ws.ApplySelection(ticket, rs)
	response.RespondOK(c, gin.H{
		"selection":  ws.Selection(),
		"superseded": !applied,
	})
}

func (h *TreeHandler) Workspace(c *gin.Context) {
	ws, ok := workspace(c)
	if !ok {
		return
	}
	response.RespondOK(c, gin.H{
		"learner_id": ws.LearnerID,
		"selection":  ws.Selection(),
	})
}
