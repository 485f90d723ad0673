package ctxutil

import "context"

type learnerDataKey struct{}

// LearnerData is attached by the auth middleware once a bearer token has been
// accepted. AccessToken is forwarded verbatim to the LMS API.
type LearnerData struct {
	AccessToken string
	LearnerID   string
}

func WithLearnerData(ctx context.Context, ld *LearnerData) context.Context {
	return context.WithValue(ctx, learnerDataKey{}, ld)
}

func GetLearnerData(ctx context.Context) *LearnerData {
	if ld, ok := ctx.Value(learnerDataKey{}).(*LearnerData); ok {
		return ld
	}
	return nil
}

// WithAccessToken is a shortcut for callers (CLI, tests) that only carry a token.
func WithAccessToken(ctx context.Context, token string) context.Context {
	return WithLearnerData(ctx, &LearnerData{AccessToken: token})
}

func AccessToken(ctx context.Context) string {
	if ld := GetLearnerData(ctx); ld != nil {
		return ld.AccessToken
	}
	return ""
}
