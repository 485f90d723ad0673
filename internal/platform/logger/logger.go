package logger

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/yungbote/qubitgyan-student/internal/platform/ctxutil"
)

// Logger is the gateway's key/value logger. Values are passed through a
// redactor before they reach zap, so learner contact details and LMS tokens
// never land in the log stream.
type Logger struct {
	SugaredLogger *zap.SugaredLogger
	redact        *redactor
}

type Option func(*options)

type options struct {
	level   string
	service string
}

// WithLevel overrides the level picked by mode ("debug", "info", "warn", "error").
func WithLevel(level string) Option {
	return func(o *options) { o.level = strings.TrimSpace(level) }
}

// WithService stamps every entry with a service field.
func WithService(name string) Option {
	return func(o *options) { o.service = strings.TrimSpace(name) }
}

// New builds a zap-backed logger. "prod"/"production" selects JSON output,
// anything else the human readable development encoder. LOG_LEVEL overrides
// the mode's default level.
func New(mode string, opts ...Option) (*Logger, error) {
	o := options{level: os.Getenv("LOG_LEVEL")}
	for _, opt := range opts {
		opt(&o)
	}

	var cfg zap.Config
	switch strings.ToLower(strings.TrimSpace(mode)) {
	case "prod", "production":
		cfg = zap.NewProductionConfig()
		cfg.Level = zap.NewAtomicLevelAt(zap.InfoLevel)
	default:
		cfg = zap.NewDevelopmentConfig()
		cfg.Level = zap.NewAtomicLevelAt(zap.DebugLevel)
	}
	if o.level != "" {
		lvl, err := zapcore.ParseLevel(o.level)
		if err != nil {
			return nil, fmt.Errorf("log level %q: %w", o.level, err)
		}
		cfg.Level = zap.NewAtomicLevelAt(lvl)
	}
	zapLogger, err := cfg.Build()
	if err != nil {
		return nil, err
	}
	l := newLogger(zapLogger, redactorFromEnv())
	if o.service != "" {
		l = l.With("service_name", o.service)
	}
	return l, nil
}

// NewNop returns a logger that discards everything. Used by tests and by
// components constructed without a logger.
func NewNop() *Logger {
	return newLogger(zap.NewNop(), &redactor{})
}

func newLogger(z *zap.Logger, r *redactor) *Logger {
	return &Logger{SugaredLogger: z.Sugar(), redact: r}
}

func (l *Logger) Sync() {
	_ = l.SugaredLogger.Sync()
}

func (l *Logger) Debug(msg string, keysAndValues ...interface{}) {
	l.SugaredLogger.Debugw(msg, l.redact.kvs(keysAndValues)...)
}
func (l *Logger) Info(msg string, keysAndValues ...interface{}) {
	l.SugaredLogger.Infow(msg, l.redact.kvs(keysAndValues)...)
}
func (l *Logger) Warn(msg string, keysAndValues ...interface{}) {
	l.SugaredLogger.Warnw(msg, l.redact.kvs(keysAndValues)...)
}
func (l *Logger) Error(msg string, keysAndValues ...interface{}) {
	l.SugaredLogger.Errorw(msg, l.redact.kvs(keysAndValues)...)
}
func (l *Logger) Fatal(msg string, keysAndValues ...interface{}) {
	l.SugaredLogger.Fatalw(msg, l.redact.kvs(keysAndValues)...)
}
func (l *Logger) With(keysAndValues ...interface{}) *Logger {
	return &Logger{SugaredLogger: l.SugaredLogger.With(l.redact.kvs(keysAndValues)...), redact: l.redact}
}

// ForRequest scopes the logger to the inbound request in ctx: trace and request
// ids plus the (hashed) learner id when the auth middleware attached one.
func (l *Logger) ForRequest(ctx context.Context) *Logger {
	var kv []interface{}
	if td := ctxutil.GetTraceData(ctx); td != nil {
		if td.TraceID != "" {
			kv = append(kv, "trace_id", td.TraceID)
		}
		if td.RequestID != "" {
			kv = append(kv, "request_id", td.RequestID)
		}
	}
	if ld := ctxutil.GetLearnerData(ctx); ld != nil && ld.LearnerID != "" {
		kv = append(kv, "learner_id", ld.LearnerID)
	}
	if len(kv) == 0 {
		return l
	}
	return l.With(kv...)
}

// Admission and login payloads carry guardian contact details and credentials;
// learner ids and usernames are kept joinable but not readable.
var (
	redactFragments = []string{
		"token", "access", "refresh", "authorization", "password", "secret",
		"signing_key", "phone", "email", "guardian", "address",
	}
	hashFragments = []string{"learner", "user_id", "username"}
)

const redacted = "[REDACTED]"

type redactor struct {
	enabled bool
	salt    string
}

func redactorFromEnv() *redactor {
	r := &redactor{enabled: true, salt: strings.TrimSpace(os.Getenv("LOG_HASH_SALT"))}
	switch strings.TrimSpace(strings.ToLower(os.Getenv("LOG_REDACTION_ENABLED"))) {
	case "0", "false", "no", "off":
		r.enabled = false
	}
	return r
}

func (r *redactor) kvs(kv []interface{}) []interface{} {
	if r == nil || !r.enabled || len(kv) == 0 {
		return kv
	}
	out := make([]interface{}, 0, len(kv))
	for i := 0; i < len(kv); i += 2 {
		if i == len(kv)-1 {
			out = append(out, kv[i])
			break
		}
		name := toString(kv[i])
		out = append(out, name, r.value(normKey(name), kv[i+1]))
	}
	return out
}

func (r *redactor) value(key string, val interface{}) interface{} {
	switch {
	case key != "" && containsAny(key, redactFragments):
		return redacted
	case key != "" && containsAny(key, hashFragments):
		return r.hash(val)
	}
	switch v := val.(type) {
	case map[string]interface{}:
		out := make(map[string]interface{}, len(v))
		for k, inner := range v {
			out[k] = r.value(normKey(k), inner)
		}
		return out
	case []interface{}:
		out := make([]interface{}, 0, len(v))
		for _, inner := range v {
			out = append(out, r.value("", inner))
		}
		return out
	case string:
		if looksLikeCredential(v) {
			return redacted
		}
		return v
	default:
		return val
	}
}

func (r *redactor) hash(val interface{}) string {
	raw := toString(val)
	if raw == "" {
		return ""
	}
	h := sha256.New()
	if r.salt != "" {
		_, _ = h.Write([]byte(r.salt))
	}
	_, _ = h.Write([]byte(raw))
	return "hash:" + hex.EncodeToString(h.Sum(nil))[:12]
}

func normKey(k string) string {
	return strings.TrimSpace(strings.ToLower(k))
}

func containsAny(key string, frags []string) bool {
	for _, f := range frags {
		if strings.Contains(key, f) {
			return true
		}
	}
	return false
}

// looksLikeCredential catches bearer headers and bare JWTs logged under a
// neutral key, e.g. an upstream error body echoing the token.
func looksLikeCredential(s string) bool {
	s = strings.TrimSpace(s)
	if len(s) > 7 && strings.EqualFold(s[:7], "bearer ") {
		return true
	}
	parts := strings.Split(s, ".")
	return len(parts) == 3 && len(parts[0]) > 10 && len(parts[1]) > 10
}

func toString(v interface{}) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case []byte:
		return string(t)
	default:
		return strings.TrimSpace(fmt.Sprint(v))
	}
}
