package lms

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yungbote/qubitgyan-student/internal/domain/learning"
	"github.com/yungbote/qubitgyan-student/internal/platform/ctxutil"
)

func newTestClient(t *testing.T, h http.Handler) *Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	c, err := New(Options{BaseURL: srv.URL + "/", Timeout: 2 * time.Second, MaxRetries: 2, HTTPClient: srv.Client()})
	require.NoError(t, err)
	return c
}

func TestNewRequiresBaseURL(t *testing.T) {
	_, err := New(Options{})
	require.Error(t, err)
}

func TestBearerFromContextWinsOverTokenSource(t *testing.T) {
	var got atomic.Value
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got.Store(r.Header.Get("Authorization"))
		_, _ = w.Write([]byte(`[]`))
	}))
	c.tokens = StaticToken("from-source")

	_, err := c.ListNodes(ctxutil.WithAccessToken(context.Background(), "from-ctx"))
	require.NoError(t, err)
	require.Equal(t, "Bearer from-ctx", got.Load())

	_, err = c.ListNodes(context.Background())
	require.NoError(t, err)
	require.Equal(t, "Bearer from-source", got.Load())
}

func TestListResourcesSortsStably(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/resources/", r.URL.Path)
		assert.Equal(t, "3", r.URL.Query().Get("node"))
		_, _ = w.Write([]byte(`{"results":[
			{"id":12,"node":3,"order":2},
			{"id":10,"node":3,"order":1},
			{"id":13,"node":3},
			{"id":11,"node":3,"order":1}
		]}`))
	}))

	first, err := c.ListResources(context.Background(), 3)
	require.NoError(t, err)
	second, err := c.ListResources(context.Background(), 3)
	require.NoError(t, err)

	ids := func(rs []learning.Resource) []int64 {
		out := make([]int64, 0, len(rs))
		for _, r := range rs {
			out = append(out, r.ID)
		}
		return out
	}
	require.Equal(t, []int64{13, 10, 11, 12}, ids(first))
	require.Equal(t, ids(first), ids(second))
}

func TestListChildrenFiltersByParent(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`[
			{"id":5,"parent":2,"order":2},
			{"id":4,"parent":2,"order":1},
			{"id":9,"parent":7,"order":0},
			{"id":1,"parent":null}
		]`))
	}))
	got, err := c.ListChildren(context.Background(), 2)
	require.NoError(t, err)
	require.Len(t, got, 2)
	require.Equal(t, int64(4), got[0].ID)
	require.Equal(t, int64(5), got[1].ID)
}

func TestRetriesServerErrorsOnGet(t *testing.T) {
	var calls int32
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) < 3 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		_, _ = w.Write([]byte(`[{"id":1}]`))
	}))
	nodes, err := c.ListNodes(context.Background())
	require.NoError(t, err)
	require.Len(t, nodes, 1)
	require.Equal(t, int32(3), atomic.LoadInt32(&calls))
}

func TestOversizedReplyIsAnError(t *testing.T) {
	var calls int32
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		item := []byte(`{"id":1,"name":"` + strings.Repeat("x", 1000) + `"},`)
		_, _ = w.Write([]byte("["))
		for written := 0; written <= maxResponseBytes; written += len(item) {
			_, _ = w.Write(item)
		}
		_, _ = w.Write([]byte(`{"id":2}]`))
	}))
	nodes, err := c.ListNodes(context.Background())
	require.ErrorIs(t, err, ErrResponseTooLarge)
	require.Nil(t, nodes)
	require.Equal(t, int32(1), atomic.LoadInt32(&calls))
}

func TestReplyAtCapIsDecoded(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body := `[{"id":1,"name":"` + strings.Repeat("x", maxResponseBytes-len(`[{"id":1,"name":""}]`)) + `"}]`
		_, _ = w.Write([]byte(body))
	}))
	nodes, err := c.ListNodes(context.Background())
	require.NoError(t, err)
	require.Len(t, nodes, 1)
}

func TestPostIsNotRetried(t *testing.T) {
	var calls int32
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	_, err := c.RecordProgress(context.Background(), learning.ProgressInput{Resource: 10, IsCompleted: true})
	require.Error(t, err)
	require.Equal(t, int32(1), atomic.LoadInt32(&calls))
	require.Equal(t, http.StatusServiceUnavailable, StatusOf(err))
}

func TestUnauthorizedIsRecognizable(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"detail":"Given token not valid for any token type"}`))
	}))
	_, err := c.ListProgress(context.Background())
	require.Error(t, err)
	require.True(t, errors.Is(err, ErrUnauthorized))

	var he *HTTPError
	require.True(t, errors.As(err, &he))
	require.Equal(t, "Given token not valid for any token type", he.Detail)
}

func TestRecordProgressBody(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		var in map[string]any
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&in))
		assert.Equal(t, float64(10), in["resource"])
		assert.Equal(t, true, in["is_completed"])
		assert.Equal(t, float64(3), in["node"])
		_, _ = w.Write([]byte(`{"id":99,"resource":10,"is_completed":true,"last_accessed":"2024-05-01T10:00:00Z"}`))
	}))
	node := int64(3)
	rec, err := c.RecordProgress(context.Background(), learning.ProgressInput{Resource: 10, IsCompleted: true, Node: &node})
	require.NoError(t, err)
	require.Equal(t, int64(99), rec.ID)
}

type recordingObserver struct {
	statuses []int
}

func (o *recordingObserver) ObserveUpstream(method string, status int, dur time.Duration) {
	o.statuses = append(o.statuses, status)
}

func TestMalformedListIsEmptyNotError(t *testing.T) {
	obs := &recordingObserver{}
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"results": [ {"id": 1,`))
	}))
	c.observer = obs

	nodes, err := c.ListNodes(context.Background())
	require.NoError(t, err)
	require.NotNil(t, nodes)
	require.Empty(t, nodes)
	require.Equal(t, []int{200}, obs.statuses)
}
