package main

import (
	"sync"
	"sync/atomic"
)

const (
	maxConnsPerIP = 16
	maxTotalConns = 1000
)

type relayFrame struct {
	from *Peer
	data []byte
}

// Hub fans every frame from one peer out to all other peers. It keeps no
// match state and never inspects frames.
type Hub struct {
	mu         sync.RWMutex
	peers      map[*Peer]bool
	register   chan *Peer
	unregister chan *Peer
	broadcast  chan relayFrame
	done       chan struct{}
	stopOnce   sync.Once

	// Connection limiting (mutex-protected, accessed from HTTP handlers)
	connMu     sync.Mutex
	ipConns    map[string]int
	totalConns int

	relayed atomic.Uint64
	dropped atomic.Uint64
}

// NewHub creates a new Hub
func NewHub() *Hub {
	return &Hub{
		peers:      make(map[*Peer]bool),
		register:   make(chan *Peer, 64),
		unregister: make(chan *Peer, 64),
		broadcast:  make(chan relayFrame, 1024),
		done:       make(chan struct{}),
		ipConns:    make(map[string]int),
	}
}

func (h *Hub) CanAccept(ip string) bool {
	h.connMu.Lock()
	defer h.connMu.Unlock()
	if h.totalConns >= maxTotalConns {
		return false
	}
	if h.ipConns[ip] >= maxConnsPerIP {
		return false
	}
	return true
}

func (h *Hub) TrackConnect(ip string) {
	h.connMu.Lock()
	defer h.connMu.Unlock()
	h.ipConns[ip]++
	h.totalConns++
}

func (h *Hub) TrackDisconnect(ip string) {
	h.connMu.Lock()
	defer h.connMu.Unlock()
	h.ipConns[ip]--
	if h.ipConns[ip] <= 0 {
		delete(h.ipConns, ip)
	}
	h.totalConns--
}

// Run processes register, unregister and broadcast events until Stop
func (h *Hub) Run() {
	for {
		select {
		case p := <-h.register:
			h.mu.Lock()
			h.peers[p] = true
			h.mu.Unlock()

		case p := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.peers[p]; ok {
				delete(h.peers, p)
				close(p.send)
			}
			h.mu.Unlock()

		case f := <-h.broadcast:
			h.fanout(f)

		case <-h.done:
			h.mu.Lock()
			for p := range h.peers {
				delete(h.peers, p)
				close(p.send)
			}
			h.mu.Unlock()
			return
		}
	}
}

func (h *Hub) fanout(f relayFrame) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for p := range h.peers {
		if p == f.from {
			continue
		}
		select {
		case p.send <- f.data:
			h.relayed.Add(1)
		default:
			// Peer too slow, drop frame
			h.dropped.Add(1)
		}
	}
}

// Register adds a peer unless the hub has stopped
func (h *Hub) Register(p *Peer) bool {
	select {
	case h.register <- p:
		return true
	case <-h.done:
		return false
	}
}

// Unregister removes a peer and closes its send queue
func (h *Hub) Unregister(p *Peer) {
	select {
	case h.unregister <- p:
	case <-h.done:
	}
}

// Publish queues a frame from a peer for fan-out
func (h *Hub) Publish(from *Peer, data []byte) {
	select {
	case h.broadcast <- relayFrame{from: from, data: data}:
	case <-h.done:
	}
}

// Stop ends Run and disconnects every peer
func (h *Hub) Stop() {
	h.stopOnce.Do(func() { close(h.done) })
}

// PeerCount returns the number of registered peers
func (h *Hub) PeerCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.peers)
}

// TotalConns returns the tracked connection count
func (h *Hub) TotalConns() int {
	h.connMu.Lock()
	defer h.connMu.Unlock()
	return h.totalConns
}

// RelayStats is served on /stats
type RelayStats struct {
	Peers   int    `json:"peers"`
	Conns   int    `json:"conns"`
	Relayed uint64 `json:"relayed"`
	Dropped uint64 `json:"dropped"`
}

// Stats returns a point-in-time view of the hub's counters
func (h *Hub) Stats() RelayStats {
	return RelayStats{
		Peers:   h.PeerCount(),
		Conns:   h.TotalConns(),
		Relayed: h.relayed.Load(),
		Dropped: h.dropped.Load(),
	}
}
