package websocket

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/heroual/MTSAV/internal/config"
	"github.com/heroual/MTSAV/internal/types"
	"github.com/rs/zerolog"
	"go.uber.org/goleak"
)

// fakeSnapshots echoes the filters back and counts calls
type fakeSnapshots struct {
	mu    sync.Mutex
	calls int
}

func (f *fakeSnapshots) Snapshot(fs types.FilterState) (*types.Snapshot, error) {
	f.mu.Lock()
	f.calls++
	f.mu.Unlock()
	if fs.SearchQuery == "fail" {
		return nil, errors.New("snapshot failed")
	}
	return &types.Snapshot{Filters: fs, FilteredTotal: len(fs.Produit)}, nil
}

func (f *fakeSnapshots) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

func startHub(t *testing.T, snaps Snapshotter) (*Hub, func()) {
	t.Helper()
	hub := NewHub(snaps, zerolog.New(&bytes.Buffer{}))
	ctx, cancel := context.WithCancel(context.Background())
	stopped := make(chan struct{})
	go func() {
		hub.Run(ctx)
		close(stopped)
	}()
	return hub, func() {
		cancel()
		<-stopped
	}
}

func testClient(hub *Hub, id string, fs types.FilterState, buffer int) *Client {
	return &Client{
		id:      id,
		hub:     hub,
		send:    make(chan []byte, buffer),
		filters: fs,
	}
}

func readMessage(t *testing.T, ch <-chan []byte) types.ServerMessage {
	t.Helper()
	select {
	case data, ok := <-ch:
		if !ok {
			t.Fatal("send channel closed")
		}
		var msg types.ServerMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			t.Fatalf("invalid message %s: %v", data, err)
		}
		return msg
	case <-time.After(time.Second):
		t.Fatal("no message received")
	}
	return types.ServerMessage{}
}

func snapshotOf(t *testing.T, msg types.ServerMessage) types.Snapshot {
	t.Helper()
	if msg.Type != types.MsgTypeSnapshot {
		t.Fatalf("expected snapshot message, got %q (%s)", msg.Type, msg.Err)
	}
	var snap types.Snapshot
	if err := json.Unmarshal(msg.Data, &snap); err != nil {
		t.Fatalf("invalid snapshot: %v", err)
	}
	return snap
}

func TestNewHub(t *testing.T) {
	hub := NewHub(&fakeSnapshots{}, zerolog.New(&bytes.Buffer{}))

	if hub.clients == nil {
		t.Error("expected clients map to be initialized")
	}
	if hub.register == nil || hub.unregister == nil {
		t.Error("expected register channels to be initialized")
	}
	if hub.ClientCount() != 0 {
		t.Errorf("expected 0 clients, got %d", hub.ClientCount())
	}
}

func TestHubRegisterSendsInitialSnapshot(t *testing.T) {
	defer goleak.VerifyNone(t)
	hub, stop := startHub(t, &fakeSnapshots{})
	defer stop()

	client := testClient(hub, "c1", types.FilterState{Produit: []string{"ADSL"}}, 4)
	hub.register <- client

	snap := snapshotOf(t, readMessage(t, client.send))
	if snap.FilteredTotal != 1 {
		t.Errorf("expected snapshot for the client's filters, got %+v", snap)
	}
	if hub.ClientCount() != 1 {
		t.Errorf("expected 1 client, got %d", hub.ClientCount())
	}

	hub.unregister <- client
	if _, ok := <-client.send; ok {
		t.Error("expected send channel to be closed on unregister")
	}
	if hub.ClientCount() != 0 {
		t.Errorf("expected 0 clients after unregister, got %d", hub.ClientCount())
	}
}

func TestHubRefreshUsesEachClientsFilters(t *testing.T) {
	defer goleak.VerifyNone(t)
	snaps := &fakeSnapshots{}
	hub, stop := startHub(t, snaps)
	defer stop()

	one := types.FilterState{Produit: []string{"ADSL"}}
	two := types.FilterState{Produit: []string{"ADSL", "FTTH"}}
	clients := []*Client{
		testClient(hub, "a", one, 4),
		testClient(hub, "b", two, 4),
		testClient(hub, "c", two, 4),
	}
	for _, c := range clients {
		hub.register <- c
		readMessage(t, c.send) // initial snapshot
	}

	before := snaps.count()
	if sent := hub.Refresh(); sent != 3 {
		t.Fatalf("expected 3 snapshots sent, got %d", sent)
	}
	if calls := snaps.count() - before; calls != 2 {
		t.Errorf("expected identical filters to share one snapshot, got %d computations", calls)
	}

	want := []int{1, 2, 2}
	for i, c := range clients {
		snap := snapshotOf(t, readMessage(t, c.send))
		if snap.FilteredTotal != want[i] {
			t.Errorf("client %s: expected total %d, got %d", c.id, want[i], snap.FilteredTotal)
		}
	}
}

func TestHubDropsSlowClient(t *testing.T) {
	defer goleak.VerifyNone(t)
	hub, stop := startHub(t, &fakeSnapshots{})
	defer stop()

	// unbuffered and never read: the initial snapshot cannot be queued
	client := testClient(hub, "slow", types.FilterState{}, 0)
	hub.register <- client

	deadline := time.Now().Add(time.Second)
	for hub.ClientCount() != 0 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	if hub.ClientCount() != 0 {
		t.Fatalf("expected slow client to be dropped")
	}
	if _, ok := <-client.send; ok {
		t.Error("expected send channel to be closed")
	}
}

func TestHubSnapshotError(t *testing.T) {
	defer goleak.VerifyNone(t)
	hub, stop := startHub(t, &fakeSnapshots{})
	defer stop()

	client := testClient(hub, "c1", types.FilterState{SearchQuery: "fail"}, 4)
	hub.register <- client

	msg := readMessage(t, client.send)
	if msg.Type != types.MsgTypeError || msg.Err == "" {
		t.Errorf("expected error message, got %+v", msg)
	}
}

func TestHubRunStopsOnCancel(t *testing.T) {
	defer goleak.VerifyNone(t)
	hub, stop := startHub(t, &fakeSnapshots{})

	client := testClient(hub, "c1", types.FilterState{}, 4)
	hub.register <- client
	readMessage(t, client.send)

	stop()

	if _, ok := <-client.send; ok {
		t.Error("expected send channel to be closed when the hub stops")
	}
	if hub.SendTo(client) {
		t.Error("expected no delivery after the hub stopped")
	}
}

func TestHandlerFilterRoundTrip(t *testing.T) {
	hub, stop := startHub(t, &fakeSnapshots{})
	defer stop()

	cfg := &config.Config{
		AllowedOrigins: []string{"http://localhost:5173"},
		PongWait:       time.Minute,
		PingPeriod:     54 * time.Second,
		WriteWait:      10 * time.Second,
		MaxMessageSize: 4096,
	}
	server := httptest.NewServer(NewHandler(hub, cfg, zerolog.New(&bytes.Buffer{})))
	defer server.Close()

	url := "ws" + strings.TrimPrefix(server.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial failed: %v", err)
	}
	defer conn.Close()

	read := func() types.ServerMessage {
		conn.SetReadDeadline(time.Now().Add(time.Second))
		var msg types.ServerMessage
		if err := conn.ReadJSON(&msg); err != nil {
			t.Fatalf("read failed: %v", err)
		}
		return msg
	}

	initial := snapshotOf(t, read())
	if initial.Filters.StatusSLA != types.SLAAll {
		t.Errorf("expected default filters, got %+v", initial.Filters)
	}

	err = conn.WriteJSON(types.ClientMessage{
		Type:    types.MsgTypeFilters,
		Filters: types.FilterState{Produit: []string{"ADSL", "RTC"}, StatusSLA: types.SLAExceeded},
	})
	if err != nil {
		t.Fatalf("write failed: %v", err)
	}
	updated := snapshotOf(t, read())
	if updated.FilteredTotal != 2 || updated.Filters.StatusSLA != types.SLAExceeded {
		t.Errorf("expected snapshot for the new filters, got %+v", updated)
	}

	if err := conn.WriteJSON(map[string]interface{}{"type": "filters", "filters": map[string]string{"statusSla": "late"}}); err != nil {
		t.Fatalf("write failed: %v", err)
	}
	if msg := read(); msg.Type != types.MsgTypeError {
		t.Errorf("expected error for invalid filters, got %+v", msg)
	}
}

func TestCheckOrigin(t *testing.T) {
	h := NewHandler(nil, &config.Config{AllowedOrigins: []string{"http://localhost:5173"}}, zerolog.New(&bytes.Buffer{}))

	tests := []struct {
		origin string
		want   bool
	}{
		{"", true},
		{"http://localhost:5173", true},
		{"http://example.com", true}, // same host as the request
		{"http://evil.test", false},
	}

	for _, tt := range tests {
		t.Run(tt.origin, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "http://example.com/ws", nil)
			if tt.origin != "" {
				req.Header.Set("Origin", tt.origin)
			}
			if got := h.checkOrigin(req); got != tt.want {
				t.Errorf("checkOrigin(%q) = %v, want %v", tt.origin, got, tt.want)
			}
		})
	}
}
