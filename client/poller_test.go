package client

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func resultServer(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return New(srv.URL, WithRetryPolicy(0, time.Millisecond))
}

func analyzingAfter(completedAfter int32) http.HandlerFunc {
	var polls int32
	return func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&polls, 1) <= completedAfter {
			w.WriteHeader(http.StatusAccepted)
			json.NewEncoder(w).Encode(map[string]string{"session_id": "s1", "status": "analyzing"})
			return
		}
		json.NewEncoder(w).Encode(map[string]interface{}{
			"session_id": "s1", "status": "completed", "dday": 3,
		})
	}
}

// waitEvent reads events until one of the wanted kind shows up.
func waitEvent(t *testing.T, events <-chan Event, kind EventKind) Event {
	t.Helper()
	deadline := time.After(2 * time.Second)
	for {
		select {
		case ev, ok := <-events:
			if !ok {
				t.Fatalf("events closed before kind %d", kind)
			}
			if ev.Kind == kind {
				return ev
			}
		case <-deadline:
			t.Fatalf("timed out waiting for event kind %d", kind)
		}
	}
}

func waitClosed(t *testing.T, events <-chan Event) {
	t.Helper()
	deadline := time.After(2 * time.Second)
	for {
		select {
		case _, ok := <-events:
			if !ok {
				return
			}
		case <-deadline:
			t.Fatal("events channel never closed")
		}
	}
}

func TestPollerDeliversVerdictOnce(t *testing.T) {
	c := resultServer(t, analyzingAfter(2))
	p := NewPoller(c, "s1", PollerConfig{Interval: 10 * time.Millisecond})
	p.Start()
	defer p.Stop()

	ev := waitEvent(t, p.Events(), EventDelivered)
	require.NotNil(t, ev.Result)
	require.NotNil(t, ev.Result.DDay)
	assert.Equal(t, 3, *ev.Result.DDay)

	// Delivery is terminal: the stream closes, nothing further arrives.
	waitClosed(t, p.Events())
	assert.Equal(t, StateDelivered, p.State())
}

func TestPollerNoSessionRedirects(t *testing.T) {
	c := resultServer(t, analyzingAfter(0))
	p := NewPoller(c, "", PollerConfig{Interval: 10 * time.Millisecond})
	p.Start()
	defer p.Stop()

	waitEvent(t, p.Events(), EventRedirected)
	waitClosed(t, p.Events())
	assert.Equal(t, StateRedirected, p.State())
}

func TestPollerErrorStatusIsTerminal(t *testing.T) {
	c := resultServer(t, func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]string{"session_id": "s1", "status": "error"})
	})
	p := NewPoller(c, "s1", PollerConfig{Interval: 10 * time.Millisecond})
	p.Start()
	defer p.Stop()

	waitEvent(t, p.Events(), EventFailed)
	waitClosed(t, p.Events())
	assert.Equal(t, StateFailed, p.State())
}

func TestPollerSwallowsTransportErrors(t *testing.T) {
	var polls int32
	c := resultServer(t, func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&polls, 1) <= 3 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		json.NewEncoder(w).Encode(map[string]interface{}{
			"session_id": "s1", "status": "completed", "dday": 1,
		})
	})
	p := NewPoller(c, "s1", PollerConfig{Interval: 10 * time.Millisecond})
	p.Start()
	defer p.Stop()

	// Failed polls neither advance nor abort the state machine.
	waitEvent(t, p.Events(), EventDelivered)
	assert.Equal(t, StateDelivered, p.State())
}

func TestPollerTimeoutIsAdvisoryOnly(t *testing.T) {
	// Completion lands well after the advisory timeout fires.
	c := resultServer(t, analyzingAfter(8))
	p := NewPoller(c, "s1", PollerConfig{
		Interval: 10 * time.Millisecond,
		Timeout:  25 * time.Millisecond,
	})
	p.Start()
	defer p.Stop()

	waitEvent(t, p.Events(), EventStillWorking)
	assert.True(t, p.TimedOut())
	assert.Equal(t, StatePolling, p.State(), "timeout must not stop polling")

	// Delivery still happens after the timeout.
	waitEvent(t, p.Events(), EventDelivered)
	assert.Equal(t, StateDelivered, p.State())
	assert.True(t, p.TimedOut())
}

func TestPollerRotatesMessages(t *testing.T) {
	c := resultServer(t, analyzingAfter(1000)) // never completes
	p := NewPoller(c, "s1", PollerConfig{
		Interval:        50 * time.Millisecond,
		MessageInterval: 5 * time.Millisecond,
		Messages:        []string{"one", "two", "three"},
	})
	p.Start()

	first := waitEvent(t, p.Events(), EventMessage)
	second := waitEvent(t, p.Events(), EventMessage)
	assert.NotEqual(t, first.Message, second.Message)

	p.Stop()
	waitClosed(t, p.Events())
}

func TestPollerStopTearsDownFromAnyState(t *testing.T) {
	c := resultServer(t, analyzingAfter(1000))
	p := NewPoller(c, "s1", PollerConfig{Interval: 10 * time.Millisecond})
	p.Start()

	time.Sleep(25 * time.Millisecond)
	p.Stop() // must release all timers and close the stream
	waitClosed(t, p.Events())
}
