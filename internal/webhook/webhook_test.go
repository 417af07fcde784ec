// File: internal/webhook/webhook_test.go
package webhook

import (
	"context"
	stdjson "encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"go.uber.org/zap"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m,
		// The http.Client transport keeps idle connections in the background.
		goleak.IgnoreTopFunction("net/http.(*persistConn).readLoop"),
		goleak.IgnoreTopFunction("net/http.(*persistConn).writeLoop"),
	)
}

func TestSendDeliversJSON(t *testing.T) {
	var got atomic.Value
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "application/json", r.Header.Get("Content-Type"))
		body, _ := io.ReadAll(r.Body)
		got.Store(body)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	c := New(zap.NewNop(), srv.URL, 10*time.Millisecond)
	err := c.Send(context.Background(), map[string]string{"finding": "unlocked", "password": "hunter2"})
	require.NoError(t, err)

	var payload map[string]string
	require.NoError(t, stdjson.Unmarshal(got.Load().([]byte), &payload))
	assert.Equal(t, "hunter2", payload["password"])
}

func TestSendRejectsErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusForbidden)
	}))
	defer srv.Close()

	c := New(zap.NewNop(), srv.URL, 10*time.Millisecond)
	err := c.Send(context.Background(), "payload")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "403")
}

func TestPollReturnsFirstData(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Empty twice, then deliver.
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusOK)
			return
		}
		_, _ = w.Write([]byte("confirmation-code-1234"))
	}))
	defer srv.Close()

	c := New(zap.NewNop(), srv.URL, 10*time.Millisecond)
	data, err := c.Poll(context.Background(), 2*time.Second)
	require.NoError(t, err)
	assert.Equal(t, "confirmation-code-1234", string(data))
	assert.GreaterOrEqual(t, calls.Load(), int32(3))
}

func TestPollTimesOut(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK) // always empty
	}))
	defer srv.Close()

	c := New(zap.NewNop(), srv.URL, 10*time.Millisecond)
	_, err := c.Poll(context.Background(), 60*time.Millisecond)

	var te *TimeoutError
	require.ErrorAs(t, err, &te)
	assert.Equal(t, srv.URL, te.Endpoint)
}

func TestPollHonorsCallerCancellation(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(30 * time.Millisecond)
		cancel()
	}()

	c := New(zap.NewNop(), srv.URL, 10*time.Millisecond)
	_, err := c.Poll(ctx, time.Minute)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestPollSurvivesServerErrors(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 2 {
			http.Error(w, "transient", http.StatusBadGateway)
			return
		}
		_, _ = w.Write([]byte("data"))
	}))
	defer srv.Close()

	c := New(zap.NewNop(), srv.URL, 10*time.Millisecond)
	data, err := c.Poll(context.Background(), 2*time.Second)
	require.NoError(t, err)
	assert.Equal(t, "data", string(data))
}
