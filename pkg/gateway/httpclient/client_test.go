package httpclient

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewAuthorizedSendsBearerToken(t *testing.T) {
	var got atomic.Value
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got.Store(r.Header.Get("Authorization"))
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	resp, err := NewAuthorized(time.Second, "s3cret").Get(srv.URL)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, "Bearer s3cret", got.Load())

	resp, err = NewAuthorized(time.Second, "").Get(srv.URL)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, "", got.Load())
}

func TestRetryStopsOnPermanentError(t *testing.T) {
	calls := 0
	err := Retry(context.Background(), 3, time.Millisecond, func() error {
		calls++
		return &StatusError{Service: "analysis", Code: http.StatusBadRequest}
	})
	assert.Error(t, err)
	assert.Equal(t, 1, calls)
}

func TestRetryRetriesServerErrors(t *testing.T) {
	calls := 0
	err := Retry(context.Background(), 3, time.Millisecond, func() error {
		calls++
		if calls < 3 {
			return &StatusError{Service: "chat", Code: http.StatusBadGateway}
		}
		return nil
	})
	assert.NoError(t, err)
	assert.Equal(t, 3, calls)
}

func TestRetryHonoursCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := Retry(ctx, 3, time.Millisecond, func() error { return nil })
	assert.ErrorIs(t, err, context.Canceled)
}

func TestIsRetriable(t *testing.T) {
	assert.True(t, IsRetriable(&StatusError{Code: http.StatusTooManyRequests}))
	assert.True(t, IsRetriable(context.DeadlineExceeded))
	assert.False(t, IsRetriable(&StatusError{Code: http.StatusNotFound}))
	assert.False(t, IsRetriable(errors.New("boom")))
}
