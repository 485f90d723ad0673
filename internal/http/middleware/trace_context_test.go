package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/qubitgyan-student/internal/platform/ctxutil"
)

func TestAttachTraceContext(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(AttachTraceContext())
	var seen *ctxutil.TraceData
	r.GET("/x", func(c *gin.Context) {
		seen = ctxutil.GetTraceData(c.Request.Context())
		c.Status(http.StatusNoContent)
	})

	req := httptest.NewRequest(http.MethodGet, "/x", nil)
	req.Header.Set(HeaderRequestID, "req-1")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	if seen == nil {
		t.Fatalf("trace data not attached")
	}
	if seen.RequestID != "req-1" {
		t.Fatalf("request id: want=%q got=%q", "req-1", seen.RequestID)
	}
	if seen.TraceID == "" {
		t.Fatalf("trace id not generated")
	}
	if got := rec.Header().Get(HeaderRequestID); got != "req-1" {
		t.Fatalf("echoed request id: want=%q got=%q", "req-1", got)
	}
	if got := rec.Header().Get(HeaderTraceID); got != seen.TraceID {
		t.Fatalf("echoed trace id: want=%q got=%q", seen.TraceID, got)
	}
}
