package main

import (
	"fmt"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/nats-io/nats.go"
)

// DefaultSubject is the NATS subject peers share when none is configured
const DefaultSubject = "tank-arena.match"

// NATSBus uses core NATS publish/subscribe as the broadcast channel. Core NATS is
// at-most-once, which is the delivery the protocol is built for.
type NATSBus struct {
	nc      *nats.Conn
	sub     *nats.Subscription
	subject string
	frames  chan []byte

	mu     sync.Mutex
	closed bool
	once   sync.Once
}

// DialNATSBus connects to a NATS server and subscribes to the match subject.
// NoEcho keeps a peer from receiving its own frames.
func DialNATSBus(url string, opts BusOptions) (*NATSBus, error) {
	subject := opts.Subject
	if subject == "" {
		subject = DefaultSubject
	}
	nc, err := nats.Connect(url,
		nats.Name(opts.Name),
		nats.NoEcho(),
		nats.MaxReconnects(-1),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			if err != nil {
				log.Warn("bus: nats disconnected", "err", err)
			}
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("connect nats %s: %w", url, err)
	}
	b := &NATSBus{
		nc:      nc,
		subject: subject,
		frames:  make(chan []byte, busBufSize),
	}
	sub, err := nc.Subscribe(subject, func(m *nats.Msg) {
		b.deliver(m.Data)
	})
	if err != nil {
		nc.Close()
		return nil, fmt.Errorf("subscribe %s: %w", subject, err)
	}
	// Make sure the server has the subscription before anyone publishes to us
	if err := nc.Flush(); err != nil {
		nc.Close()
		return nil, fmt.Errorf("subscribe %s: %w", subject, err)
	}
	b.sub = sub
	return b, nil
}

func (b *NATSBus) deliver(data []byte) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return
	}
	select {
	case b.frames <- data:
	default:
	}
}

// Send publishes a frame on the match subject
func (b *NATSBus) Send(frame []byte) error {
	b.mu.Lock()
	closed := b.closed
	b.mu.Unlock()
	if closed {
		return ErrBusClosed
	}
	return b.nc.Publish(b.subject, frame)
}

// Frames returns frames published by other peers
func (b *NATSBus) Frames() <-chan []byte {
	return b.frames
}

// Close unsubscribes and closes the connection
func (b *NATSBus) Close() error {
	b.once.Do(func() {
		b.mu.Lock()
		b.closed = true
		b.mu.Unlock()
		b.sub.Unsubscribe()
		b.nc.Close()
		close(b.frames)
	})
	return nil
}
