package transport

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dErrors "moviesnow/pkg/domain-errors"
)

type staticTokens string

func (s staticTokens) AccessToken() string { return string(s) }

func newTestClient(t *testing.T, url string, opts ...Option) *Client {
	t.Helper()
	opts = append([]Option{WithRetryWait(time.Millisecond)}, opts...)
	c, err := New(url, opts...)
	require.NoError(t, err)
	return c
}

func TestDo_RetriesNetworkFailure(t *testing.T) {
	// A closed port produces a connection error with no HTTP status.
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close()

	var calls atomic.Int32
	c := newTestClient(t, srv.URL)
	c.http = &http.Client{
		Transport: roundTripFunc(func(r *http.Request) (*http.Response, error) {
			calls.Add(1)
			return nil, context.DeadlineExceeded
		}),
	}

	err := c.Do(context.Background(), Request{Op: "test.op", Method: http.MethodGet, Path: "/x", Idempotent: true}, nil)
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeNetwork))
	assert.Equal(t, int32(3), calls.Load(), "initial attempt plus two retries")
}

type roundTripFunc func(*http.Request) (*http.Response, error)

func (f roundTripFunc) RoundTrip(r *http.Request) (*http.Response, error) { return f(r) }

func TestDo_Retries503ToBoundThenSurfaces(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	c := newTestClient(t, srv.URL)
	err := c.Do(context.Background(), Request{Op: "test.op", Method: http.MethodGet, Path: "/x", Idempotent: true}, nil)
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeUnavailable))
	assert.Equal(t, int32(3), calls.Load())
}

func TestDo_DoesNotRetry429(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte(`{"error":"rate_limited","error_description":"slow down","retry_after":30}`))
	}))
	defer srv.Close()

	c := newTestClient(t, srv.URL)
	err := c.Do(context.Background(), Request{Op: "test.op", Method: http.MethodPost, Path: "/x"}, nil)
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeRateLimited))
	assert.Contains(t, err.Error(), "retry after 30s")
	assert.Equal(t, int32(1), calls.Load(), "rate limiting must not be retried")
}

func TestDo_DoesNotRetry4xx(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error":"bad_request","error_description":"nope"}`))
	}))
	defer srv.Close()

	c := newTestClient(t, srv.URL)
	err := c.Do(context.Background(), Request{Op: "test.op", Method: http.MethodPost, Path: "/x"}, nil)
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeBadRequest))
	assert.Equal(t, int32(1), calls.Load())
}

func TestDo_IdempotencyKeyStableAcrossRetriesFreshAcrossSubmissions(t *testing.T) {
	var keys []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		keys = append(keys, r.Header.Get("Idempotency-Key"))
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	c := newTestClient(t, srv.URL, WithMaxRetries(1))
	req := Request{Op: "test.op", Method: http.MethodPost, Path: "/x"}

	_ = c.Do(context.Background(), req, nil)
	_ = c.Do(context.Background(), req, nil)

	require.Len(t, keys, 4)
	assert.NotEmpty(t, keys[0])
	assert.Equal(t, keys[0], keys[1], "same key across automatic retries")
	assert.Equal(t, keys[2], keys[3])
	assert.NotEqual(t, keys[0], keys[2], "fresh key per user-initiated submission")
}

func TestDo_NoIdempotencyKeyOnIdempotentRequests(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Empty(t, r.Header.Get("Idempotency-Key"))
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	c := newTestClient(t, srv.URL)
	require.NoError(t, c.Do(context.Background(), Request{Op: "test.op", Method: http.MethodGet, Path: "/x", Idempotent: true}, nil))
}

func TestDo_StepUpSignal(t *testing.T) {
	t.Run("via error code", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusForbidden)
			_, _ = w.Write([]byte(`{"error":"reauth_required","error_description":"reauthentication required"}`))
		}))
		defer srv.Close()

		c := newTestClient(t, srv.URL)
		err := c.Do(context.Background(), Request{Op: "test.op", Method: http.MethodPost, Path: "/x"}, nil)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeStepUpRequired))
	})

	t.Run("via header", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("X-Reauth-Required", "1")
			w.WriteHeader(http.StatusUnauthorized)
		}))
		defer srv.Close()

		c := newTestClient(t, srv.URL)
		err := c.Do(context.Background(), Request{Op: "test.op", Method: http.MethodPost, Path: "/x"}, nil)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeStepUpRequired))
	})
}

func TestDo_BearerAndReauthHeaders(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer at-1", r.Header.Get("Authorization"))
		assert.Equal(t, "grant-1", r.Header.Get("X-Reauth-Token"))
		assert.NotEmpty(t, r.Header.Get("X-Request-ID"))
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	c := newTestClient(t, srv.URL, WithTokenSource(staticTokens("at-1")))
	var out struct{}
	err := c.Do(context.Background(), Request{
		Op: "test.op", Method: http.MethodPost, Path: "/x", ReauthToken: "grant-1",
	}, &out)
	require.NoError(t, err)
}

func TestDo_EmptyBodyIsAcceptableAck(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	c := newTestClient(t, srv.URL)
	var ack struct {
		Message string `json:"message"`
	}
	require.NoError(t, c.Do(context.Background(), Request{Op: "test.op", Method: http.MethodPost, Path: "/x"}, &ack))
	assert.Empty(t, ack.Message)
}

func TestDo_SurfacesRequestID(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusConflict)
		_, _ = w.Write([]byte(`{"error":"conflict","error_description":"busy","request_id":"req-9"}`))
	}))
	defer srv.Close()

	c := newTestClient(t, srv.URL)
	err := c.Do(context.Background(), Request{Op: "test.op", Method: http.MethodPost, Path: "/x"}, nil)
	require.Error(t, err)
	assert.Equal(t, "req-9", dErrors.RequestIDOf(err))
}

func TestDo_BreakerSuppressesRetriesWhenOpen(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	c := newTestClient(t, srv.URL)
	req := Request{Op: "test.op", Method: http.MethodGet, Path: "/x", Idempotent: true}

	// Drive the breaker open with failing logical requests.
	for i := 0; i < 5; i++ {
		_ = c.Do(context.Background(), req, nil)
	}
	require.True(t, c.breaker.IsOpen())

	calls.Store(0)
	_ = c.Do(context.Background(), req, nil)
	assert.Equal(t, int32(1), calls.Load(), "open breaker probes once, without retries")
}
