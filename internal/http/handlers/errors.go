package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/qubitgyan-student/internal/clients/lms"
	"github.com/yungbote/qubitgyan-student/internal/http/middleware"
	"github.com/yungbote/qubitgyan-student/internal/http/response"
	"github.com/yungbote/qubitgyan-student/internal/platform/apierr"
	"github.com/yungbote/qubitgyan-student/internal/platform/ctxutil"
	"github.com/yungbote/qubitgyan-student/internal/platform/logger"
	"github.com/yungbote/qubitgyan-student/internal/services"
)

// toAPIError maps service and upstream failures onto gateway statuses.
// Upstream 4xx replies keep their status; everything else from the LMS is a 502.
func toAPIError(err error, fallback string) *apierr.Error {
	var ae *apierr.Error
	switch {
	case err == nil:
		return nil
	case errors.As(err, &ae):
		return ae
	case errors.Is(err, services.ErrInvalidInput):
		return apierr.BadRequest("invalid_request", err)
	case errors.Is(err, services.ErrNodeNotFound):
		return apierr.New(http.StatusNotFound, "node_not_found", err)
	case errors.Is(err, lms.ErrUnauthorized), errors.Is(err, lms.ErrNoToken):
		return apierr.Unauthorized(err)
	case errors.Is(err, lms.ErrResponseTooLarge):
		return apierr.Upstream(fallback, err)
	}
	if status := lms.StatusOf(err); status != 0 {
		if status >= 400 && status < 500 {
			return apierr.New(status, fallback, err)
		}
		return apierr.Upstream(fallback, err)
	}
	return apierr.New(http.StatusInternalServerError, fallback, err)
}

func fail(c *gin.Context, log *logger.Logger, op string, fallback string, err error) {
	ae := toAPIError(err, fallback)
	reqLog := log.ForRequest(c.Request.Context())
	if ae.Status >= http.StatusInternalServerError {
		reqLog.Error(op+" failed", "error", err)
	} else {
		reqLog.Debug(op+" rejected", "error", err, "status", ae.Status)
	}
	response.RespondAPIError(c, ae)
}

func idParam(c *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		response.RespondError(c, http.StatusBadRequest, "invalid_"+name, errors.New(name+" must be a positive integer"))
		return 0, false
	}
	return id, true
}

func workspace(c *gin.Context) (*services.Workspace, bool) {
	ws := middleware.WorkspaceFrom(c)
	if ws == nil {
		response.RespondError(c, http.StatusUnauthorized, "unauthorized", nil)
		return nil, false
	}
	return ws, true
}

func learnerID(c *gin.Context) (string, bool) {
	ld := ctxutil.GetLearnerData(c.Request.Context())
	if ld == nil || ld.LearnerID == "" {
		response.RespondError(c, http.StatusUnauthorized, "unauthorized", nil)
		return "", false
	}
	return ld.LearnerID, true
}

func bindJSON(c *gin.Context, dst any) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return false
	}
	return true
}
