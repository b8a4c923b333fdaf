package main

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
)

// ---------- helpers ----------

// startTestRelay spins up an httptest.Server with a Hub and returns
// the server, its WebSocket URL, and a cleanup func.
func startTestRelay(t *testing.T) (*httptest.Server, *Hub, string, func()) {
	t.Helper()

	hub := NewHub()
	go hub.Run()

	srv := httptest.NewServer(SetupRoutes(hub))
	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws"

	return srv, hub, wsURL, func() {
		hub.Stop()
		srv.Close()
	}
}

func dialBus(t *testing.T, wsURL string) *WSBus {
	t.Helper()
	b, err := DialWSBus(wsURL)
	if err != nil {
		t.Fatalf("dial relay: %v", err)
	}
	return b
}

func waitPeers(t *testing.T, hub *Hub, n int) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for hub.PeerCount() != n {
		if time.Now().After(deadline) {
			t.Fatalf("expected %d peers, have %d", n, hub.PeerCount())
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func recvFrame(t *testing.T, b Bus, timeout time.Duration) ([]byte, bool) {
	t.Helper()
	select {
	case f, ok := <-b.Frames():
		return f, ok
	case <-time.After(timeout):
		return nil, false
	}
}

// ---------- tests ----------

func TestRelayFansOutToOtherPeers(t *testing.T) {
	_, hub, wsURL, cleanup := startTestRelay(t)
	defer cleanup()

	a := dialBus(t, wsURL)
	defer a.Close()
	b := dialBus(t, wsURL)
	defer b.Close()
	c := dialBus(t, wsURL)
	defer c.Close()
	waitPeers(t, hub, 3)

	frame := mustEncode(t, MsgPlayerDeath, DeathMsg{ID: "a"})
	if err := a.Send(frame); err != nil {
		t.Fatalf("send: %v", err)
	}

	for name, peer := range map[string]*WSBus{"b": b, "c": c} {
		got, ok := recvFrame(t, peer, 2*time.Second)
		if !ok {
			t.Fatalf("%s received nothing", name)
		}
		env, err := DecodeEnvelope(got)
		if err != nil || env.T != MsgPlayerDeath {
			t.Errorf("%s got unexpected frame %x (%v)", name, got, err)
		}
	}
	if got, ok := recvFrame(t, a, 100*time.Millisecond); ok {
		t.Errorf("sender received its own frame %x", got)
	}
}

func TestRelayIgnoresTextFrames(t *testing.T) {
	_, hub, wsURL, cleanup := startTestRelay(t)
	defer cleanup()

	raw, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer raw.Close()
	b := dialBus(t, wsURL)
	defer b.Close()
	waitPeers(t, hub, 2)

	raw.WriteMessage(websocket.TextMessage, []byte(`{"t":"PLAYER_UPDATE"}`))
	if got, ok := recvFrame(t, b, 150*time.Millisecond); ok {
		t.Errorf("text frame should not be relayed, got %q", got)
	}
}

func TestEnginesOverRelay(t *testing.T) {
	_, hub, wsURL, cleanup := startTestRelay(t)
	defer cleanup()

	busA, err := OpenBus(wsURL, BusOptions{})
	if err != nil {
		t.Fatalf("open bus: %v", err)
	}
	busB, err := OpenBus(wsURL, BusOptions{})
	if err != nil {
		t.Fatalf("open bus: %v", err)
	}
	a := newTestEngine(t, busA, nil, nil)
	defer a.Stop()
	b, err := NewEngine(EngineOptions{ID: "other", Name: "Other", Team: TeamRed, Bus: busB, Seed: 3})
	if err != nil {
		t.Fatal(err)
	}
	defer b.Stop()
	waitPeers(t, hub, 2)

	now := t0
	deadline := time.Now().Add(3 * time.Second)
	for {
		now = now.Add(16 * time.Millisecond)
		a.Tick(now)
		b.Tick(now)
		if len(a.Snapshot().Remote) == 1 && len(b.Snapshot().Remote) == 1 {
			break
		}
		if time.Now().After(deadline) {
			t.Fatalf("engines never saw each other: a=%d b=%d", len(a.Snapshot().Remote), len(b.Snapshot().Remote))
		}
		time.Sleep(10 * time.Millisecond)
	}
}

func TestRelayStatsEndpoint(t *testing.T) {
	srv, hub, wsURL, cleanup := startTestRelay(t)
	defer cleanup()

	a := dialBus(t, wsURL)
	defer a.Close()
	b := dialBus(t, wsURL)
	defer b.Close()
	waitPeers(t, hub, 2)

	a.Send(mustEncode(t, MsgPlayerDeath, DeathMsg{ID: "a"}))
	if _, ok := recvFrame(t, b, 2*time.Second); !ok {
		t.Fatal("frame not relayed")
	}

	resp, err := http.Get(srv.URL + "/stats")
	if err != nil {
		t.Fatalf("GET /stats: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	var stats RelayStats
	if err := json.NewDecoder(resp.Body).Decode(&stats); err != nil {
		t.Fatalf("decode stats: %v", err)
	}
	if stats.Peers != 2 || stats.Conns != 2 {
		t.Errorf("expected 2 peers and conns, got %+v", stats)
	}
	if stats.Relayed < 1 {
		t.Errorf("expected at least one relayed frame, got %+v", stats)
	}
}

func TestRelayConnectionLimitPerIP(t *testing.T) {
	_, hub, wsURL, cleanup := startTestRelay(t)
	defer cleanup()

	var conns []*websocket.Conn
	defer func() {
		for _, c := range conns {
			c.Close()
		}
	}()
	for i := 0; i < maxConnsPerIP; i++ {
		c, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
		if err != nil {
			t.Fatalf("dial %d: %v", i, err)
		}
		conns = append(conns, c)
	}
	waitPeers(t, hub, maxConnsPerIP)

	_, resp, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err == nil {
		t.Fatal("expected connection over the per-IP limit to be refused")
	}
	if resp == nil || resp.StatusCode != http.StatusServiceUnavailable {
		t.Errorf("expected 503, got %v", resp)
	}
}

func TestRelayBusClosedByHubStop(t *testing.T) {
	_, hub, wsURL, cleanup := startTestRelay(t)
	defer cleanup()

	b := dialBus(t, wsURL)
	defer b.Close()
	waitPeers(t, hub, 1)

	hub.Stop()
	deadline := time.After(2 * time.Second)
	for {
		select {
		case _, ok := <-b.Frames():
			if !ok {
				return
			}
		case <-deadline:
			t.Fatal("frames channel not closed after the relay went away")
		}
	}
}

func TestJoinURL(t *testing.T) {
	if got := JoinURL("example.com:8080"); got != "ws://example.com:8080/ws" {
		t.Errorf("unexpected join url %q", got)
	}
	var sb strings.Builder
	if err := PrintJoinQR(&sb, JoinURL("localhost:8080")); err != nil {
		t.Fatalf("PrintJoinQR: %v", err)
	}
	if !strings.Contains(sb.String(), "ws://localhost:8080/ws") {
		t.Error("QR output should include the join URL")
	}
}
