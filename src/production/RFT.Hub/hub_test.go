package hub

import (
	"context"
	"testing"
	"time"

	logger "gitlab.com/maplesense1/rft.asset_tracker/src/production/RFT.Logger"
	rftmodels "gitlab.com/maplesense1/rft.asset_tracker/src/production/RFT.Models"
)

// setupHub creates and starts a hub whose Run loop stops with the test.
func setupHub(t *testing.T) *Hub {
	t.Helper()
	h := NewHub(logger.NewNop())
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	go func() { _ = h.Run(ctx) }()
	return h
}

// newTestClient creates an observer with the given queue capacity and no
// underlying connection.
func newTestClient(h *Hub, capacity int) *Client {
	return &Client{
		id:   clientIDCounter.Add(1),
		hub:  h,
		send: make(chan Message, capacity),
	}
}

func registerClient(t *testing.T, h *Hub, c *Client) {
	t.Helper()
	h.Register <- c
	waitFor(t, func() bool { return h.ClientCount() > 0 })
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("condition not met within 2s")
}

func testEvent(tag string) rftmodels.ScanEvent {
	return rftmodels.ScanEvent{
		TagID:     tag,
		Location:  "Office",
		Timestamp: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
		AssetName: "Laptop",
		AssetType: "Electronics",
	}
}

func receive(t *testing.T, c *Client) Message {
	t.Helper()
	select {
	case msg, ok := <-c.send:
		if !ok {
			t.Fatal("send channel closed while waiting for message")
		}
		return msg
	case <-time.After(2 * time.Second):
		t.Fatal("no message within 2s")
	}
	return Message{}
}

func TestNewHub(t *testing.T) {
	h := NewHub(logger.NewNop())
	if h.clients == nil || h.broadcast == nil || h.Register == nil || h.Unregister == nil {
		t.Fatal("hub channels not initialized")
	}
	if h.ClientCount() != 0 {
		t.Errorf("new hub has %d clients, want 0", h.ClientCount())
	}
}

func TestPublishDeliversToAllObservers(t *testing.T) {
	h := setupHub(t)
	a := newTestClient(h, 16)
	b := newTestClient(h, 16)
	h.Register <- a
	h.Register <- b
	waitFor(t, func() bool { return h.ClientCount() == 2 })

	h.PublishSighting(testEvent("RF001"))

	for _, c := range []*Client{a, b} {
		msg := receive(t, c)
		if msg.Type != MessageTypeScan {
			t.Errorf("message type = %q, want %q", msg.Type, MessageTypeScan)
		}
	}
}

func TestDeliveryOrderMatchesPublishOrder(t *testing.T) {
	h := setupHub(t)
	c := newTestClient(h, 16)
	registerClient(t, h, c)

	tags := []string{"RF001", "RF002", "RF003"}
	for _, tag := range tags {
		h.PublishSighting(testEvent(tag))
	}

	for _, want := range tags {
		msg := receive(t, c)
		event, ok := msg.Data.(rftmodels.ScanEvent)
		if !ok {
			t.Fatalf("unexpected payload %T", msg.Data)
		}
		if event.TagID != want {
			t.Errorf("received %s, want %s", event.TagID, want)
		}
	}
}

func TestSlowObserverDroppedWithoutStallingOthers(t *testing.T) {
	h := setupHub(t)
	slow := newTestClient(h, 1)
	healthy := newTestClient(h, 16)
	h.Register <- slow
	h.Register <- healthy
	waitFor(t, func() bool { return h.ClientCount() == 2 })

	// The slow observer never drains: its single-slot queue fills on the
	// first event and overflows on the second.
	h.PublishSighting(testEvent("RF001"))
	h.PublishSighting(testEvent("RF002"))
	h.PublishSighting(testEvent("RF003"))

	waitFor(t, func() bool { return h.ClientCount() == 1 })

	for _, want := range []string{"RF001", "RF002", "RF003"} {
		msg := receive(t, healthy)
		event := msg.Data.(rftmodels.ScanEvent)
		if event.TagID != want {
			t.Errorf("healthy observer received %s, want %s", event.TagID, want)
		}
	}
}

func TestUnregisterIsIdempotent(t *testing.T) {
	h := setupHub(t)
	c := newTestClient(h, 16)
	registerClient(t, h, c)

	h.Unregister <- c
	h.Unregister <- c
	waitFor(t, func() bool { return h.ClientCount() == 0 })

	// The queue is closed exactly once; publishing afterwards must not panic.
	h.PublishSighting(testEvent("RF001"))
	time.Sleep(20 * time.Millisecond)
}

func TestPublishTransition(t *testing.T) {
	h := setupHub(t)
	c := newTestClient(h, 16)
	registerClient(t, h, c)

	h.PublishTransition(rftmodels.Transition{
		AssetID:   1,
		TagID:     "RF001",
		OldStatus: rftmodels.StatusActive,
		NewStatus: rftmodels.StatusIdle,
	})

	msg := receive(t, c)
	if msg.Type != MessageTypeStatusChange {
		t.Errorf("message type = %q, want %q", msg.Type, MessageTypeStatusChange)
	}
	transition := msg.Data.(rftmodels.Transition)
	if transition.NewStatus != rftmodels.StatusIdle {
		t.Errorf("transition = %+v, want active->idle", transition)
	}
}

func TestPublishNeverBlocksWithoutRunLoop(t *testing.T) {
	// No Run loop draining the broadcast channel: publish must still return.
	h := NewHub(logger.NewNop())

	done := make(chan struct{})
	go func() {
		for i := 0; i < 1000; i++ {
			h.PublishSighting(testEvent("RF001"))
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("publish blocked the caller")
	}
}

func TestRunClosesObserversOnShutdown(t *testing.T) {
	h := NewHub(logger.NewNop())
	ctx, cancel := context.WithCancel(context.Background())
	runDone := make(chan error, 1)
	go func() { runDone <- h.Run(ctx) }()

	c := newTestClient(h, 16)
	registerClient(t, h, c)

	cancel()
	select {
	case err := <-runDone:
		if err != context.Canceled {
			t.Errorf("Run returned %v, want context.Canceled", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not return after cancel")
	}

	if _, ok := <-c.send; ok {
		// Drain until close.
		for range c.send {
		}
	}
	if h.ClientCount() != 0 {
		t.Errorf("clients remaining after shutdown = %d, want 0", h.ClientCount())
	}
}
