package logger

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/yungbote/qubitgyan-student/internal/platform/ctxutil"
)

func observed(r *redactor) (*Logger, *observer.ObservedLogs) {
	core, logs := observer.New(zapcore.DebugLevel)
	return newLogger(zap.New(core), r), logs
}

func TestRedactsCredentialsAndContactDetails(t *testing.T) {
	log, logs := observed(&redactor{enabled: true})
	log.Info("admission",
		"guardian_phone", "+91 98765 43210",
		"Email", "asha@example.test",
		"password", "pw",
		"detail", "Bearer eyJhbGciOiJIUzI1NiJ9.eyJ1c2VyX2lkIjo0Mn0.sig",
		"payload", map[string]interface{}{"access": "a", "class_grade": "10"},
		"node_id", 4,
	)
	require.Equal(t, 1, logs.Len())
	fields := logs.All()[0].ContextMap()
	assert.Equal(t, redacted, fields["guardian_phone"])
	assert.Equal(t, redacted, fields["Email"])
	assert.Equal(t, redacted, fields["password"])
	assert.Equal(t, redacted, fields["detail"])
	assert.Equal(t, map[string]interface{}{"access": redacted, "class_grade": "10"}, fields["payload"])
	assert.EqualValues(t, 4, fields["node_id"])
}

func TestHashesLearnerIDs(t *testing.T) {
	log, logs := observed(&redactor{enabled: true, salt: "s"})
	log.With("learner_id", "42").Info("one")
	log.Info("two", "learner_id", "42", "username", "asha")

	first := logs.All()[0].ContextMap()["learner_id"]
	second := logs.All()[1].ContextMap()
	assert.Equal(t, first, second["learner_id"])
	assert.Regexp(t, `^hash:[0-9a-f]{12}$`, first)
	assert.NotEqual(t, "asha", second["username"])
}

func TestRedactionCanBeDisabled(t *testing.T) {
	log, logs := observed(&redactor{enabled: false})
	log.Info("raw", "password", "pw")
	assert.Equal(t, "pw", logs.All()[0].ContextMap()["password"])
}

func TestForRequestCarriesRequestScope(t *testing.T) {
	log, logs := observed(&redactor{enabled: true})
	ctx := ctxutil.WithTraceData(context.Background(), &ctxutil.TraceData{TraceID: "t-1", RequestID: "r-1"})
	ctx = ctxutil.WithLearnerData(ctx, &ctxutil.LearnerData{AccessToken: "secret", LearnerID: "42"})

	log.ForRequest(ctx).Warn("upstream slow")
	fields := logs.All()[0].ContextMap()
	assert.Equal(t, "t-1", fields["trace_id"])
	assert.Equal(t, "r-1", fields["request_id"])
	assert.Regexp(t, `^hash:`, fields["learner_id"])

	assert.Same(t, log, log.ForRequest(context.Background()))
}

func TestNewRejectsUnknownLevel(t *testing.T) {
	_, err := New("production", WithLevel("loud"))
	require.Error(t, err)

	l, err := New("development", WithLevel("warn"), WithService("qubitgyan-student"))
	require.NoError(t, err)
	assert.False(t, l.SugaredLogger.Desugar().Core().Enabled(zapcore.InfoLevel))
}
