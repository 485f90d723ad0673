package response

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/qubitgyan-student/internal/platform/apierr"
)

type APIError struct {
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
}

type ErrorEnvelope struct {
	Error APIError `json:"error"`
}

func RespondError(c *gin.Context, status int, code string, err error) {
	msg := "unknown error"
	if err != nil {
		msg = err.Error()
	}
	c.JSON(status, ErrorEnvelope{
		Error: APIError{
			Message: msg,
			Code:    code,
		},
	})
}

// RespondAPIError writes ae with its own status and code.
func RespondAPIError(c *gin.Context, ae *apierr.Error) {
	if ae == nil {
		RespondError(c, http.StatusInternalServerError, "internal", nil)
		return
	}
	status := ae.Status
	if status == 0 {
		status = http.StatusInternalServerError
	}
	RespondError(c, status, ae.Code, ae.Err)
}

func RespondOK(c *gin.Context, payload any) {
	c.JSON(http.StatusOK, payload)
}

func RespondCreated(c *gin.Context, payload any) {
	c.JSON(http.StatusCreated, payload)
}
