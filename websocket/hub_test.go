package websocket

import (
	"fmt"
	"testing"
	"time"

	"tubegrab/types"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestHub() *hub {
	h := NewHub().(*hub)
	go h.Run()
	return h
}

// testClient builds an observer with a chosen buffer size, without any
// underlying connection; delivery goes to the send channel the write pump
// would normally drain.
func testClient(jobID string, buffer int) *Client {
	return &Client{
		send:  make(chan types.ProgressMessage, buffer),
		jobID: jobID,
	}
}

func register(t *testing.T, h *hub, c *Client) {
	t.Helper()
	h.RegisterClient(c)
	// Registration goes through the run loop; wait for it to land.
	deadline := time.Now().Add(time.Second)
	for time.Now().Before(deadline) {
		h.mu.Lock()
		_, ok := h.clients[c.jobID][c]
		h.mu.Unlock()
		if ok {
			return
		}
		time.Sleep(time.Millisecond)
	}
	t.Fatalf("client for job %s never registered", c.jobID)
}

func receive(t *testing.T, c *Client) types.ProgressMessage {
	t.Helper()
	select {
	case msg, ok := <-c.send:
		require.True(t, ok, "send channel closed unexpectedly")
		return msg
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for message")
		return types.ProgressMessage{}
	}
}

func message(jobID string, percent float64) types.ProgressMessage {
	return types.ProgressMessage{
		JobID:     jobID,
		Type:      "progress",
		Status:    types.JobStatusDownloading,
		Percent:   percent,
		Timestamp: time.Now(),
	}
}

func TestHubDeliversToJobObserver(t *testing.T) {
	h := newTestHub()
	c := testClient("job-1", 16)
	register(t, h, c)

	h.Publish(message("job-1", 37))

	got := receive(t, c)
	assert.Equal(t, "job-1", got.JobID)
	assert.Equal(t, 37.0, got.Percent)
}

func TestHubPreservesPublishOrderPerObserver(t *testing.T) {
	h := newTestHub()
	c := testClient("job-1", 64)
	register(t, h, c)

	for i := 1; i <= 20; i++ {
		h.Publish(message("job-1", float64(i*5)))
	}

	for i := 1; i <= 20; i++ {
		got := receive(t, c)
		assert.Equal(t, float64(i*5), got.Percent, "messages must arrive in publish order")
	}
}

func TestHubAllObserverSeesEveryJob(t *testing.T) {
	h := newTestHub()
	c := testClient("all", 16)
	register(t, h, c)

	h.Publish(message("job-1", 10))
	h.Publish(message("job-2", 20))

	first := receive(t, c)
	second := receive(t, c)
	assert.Equal(t, "job-1", first.JobID)
	assert.Equal(t, "job-2", second.JobID)
}

func TestHubNoReplayForLateJoiners(t *testing.T) {
	h := newTestHub()

	h.Publish(message("job-1", 10))
	h.Publish(message("job-1", 20))

	// Give the run loop time to drain the intake channel before joining.
	time.Sleep(50 * time.Millisecond)

	late := testClient("job-1", 16)
	register(t, h, late)

	select {
	case msg := <-late.send:
		t.Fatalf("late joiner replayed event: %+v", msg)
	case <-time.After(100 * time.Millisecond):
	}

	// Only events published after registration arrive
	h.Publish(message("job-1", 30))
	got := receive(t, late)
	assert.Equal(t, 30.0, got.Percent)
}

func TestHubSlowObserverIsIsolated(t *testing.T) {
	h := newTestHub()

	slow := testClient("job-1", 1)
	healthy := testClient("job-1", 64)
	register(t, h, slow)
	register(t, h, healthy)

	// The slow observer never drains; its single-slot buffer fills on the
	// first event and overflows on the second.
	for i := 1; i <= 10; i++ {
		h.Publish(message("job-1", float64(i*10)))
	}

	// The healthy observer still gets the full stream in order.
	for i := 1; i <= 10; i++ {
		got := receive(t, healthy)
		assert.Equal(t, float64(i*10), got.Percent)
	}

	// The slow observer was dropped: its channel ends up closed after the
	// one buffered message.
	first, ok := <-slow.send
	require.True(t, ok)
	assert.Equal(t, 10.0, first.Percent)
	_, ok = <-slow.send
	assert.False(t, ok, "slow observer's channel should be closed")
}

func TestHubUnregisterIsIdempotent(t *testing.T) {
	h := newTestHub()
	c := testClient("job-1", 16)
	register(t, h, c)

	h.UnregisterClient(c)
	h.UnregisterClient(c)

	// The hub still works afterwards
	survivor := testClient("job-1", 16)
	register(t, h, survivor)
	h.Publish(message("job-1", 42))
	got := receive(t, survivor)
	assert.Equal(t, 42.0, got.Percent)
}

func TestHubManyObserversOneJob(t *testing.T) {
	h := newTestHub()

	observers := make([]*Client, 8)
	for i := range observers {
		observers[i] = testClient("job-1", 16)
		register(t, h, observers[i])
	}

	h.Publish(message("job-1", 55))

	for i, c := range observers {
		got := receive(t, c)
		assert.Equal(t, 55.0, got.Percent, fmt.Sprintf("observer %d", i))
	}
}
