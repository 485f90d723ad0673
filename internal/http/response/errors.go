package response

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// AbortUnauthorized stops the chain with a 401 envelope.
func AbortUnauthorized(c *gin.Context, msg string) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, ErrorEnvelope{
		Error: APIError{Message: msg, Code: "unauthorized"},
	})
}
