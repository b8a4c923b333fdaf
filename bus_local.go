package main

import "sync"

// LocalHub fans frames out between peers in the same process
type LocalHub struct {
	mu    sync.Mutex
	peers map[*LocalBus]struct{}
}

// NewLocalHub creates an empty hub
func NewLocalHub() *LocalHub {
	return &LocalHub{peers: make(map[*LocalBus]struct{})}
}

// Join attaches a new peer end to the hub
func (h *LocalHub) Join() *LocalBus {
	b := &LocalBus{hub: h, frames: make(chan []byte, busBufSize)}
	h.mu.Lock()
	h.peers[b] = struct{}{}
	h.mu.Unlock()
	return b
}

func (h *LocalHub) fanout(from *LocalBus, frame []byte) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for p := range h.peers {
		if p == from {
			continue
		}
		cp := make([]byte, len(frame))
		copy(cp, frame)
		select {
		case p.frames <- cp:
		default:
			// Peer too slow, drop frame
		}
	}
}

// LocalBus is one peer's end of a LocalHub
type LocalBus struct {
	hub    *LocalHub
	frames chan []byte
	once   sync.Once
	closed bool // guarded by hub.mu
}

// Send delivers frame to every other peer on the hub
func (b *LocalBus) Send(frame []byte) error {
	b.hub.mu.Lock()
	closed := b.closed
	b.hub.mu.Unlock()
	if closed {
		return ErrBusClosed
	}
	b.hub.fanout(b, frame)
	return nil
}

// Frames returns frames sent by other peers
func (b *LocalBus) Frames() <-chan []byte {
	return b.frames
}

// Close detaches from the hub
func (b *LocalBus) Close() error {
	b.once.Do(func() {
		b.hub.mu.Lock()
		b.closed = true
		delete(b.hub.peers, b)
		close(b.frames)
		b.hub.mu.Unlock()
	})
	return nil
}
