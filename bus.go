package main

import (
	"errors"
	"fmt"
	"net/url"
)

const busBufSize = 256

// ErrBusClosed is returned by Send after Close
var ErrBusClosed = errors.New("bus closed")

// Bus is one peer's end of a best-effort broadcast channel. Send never blocks and
// may drop frames; Frames delivers frames from other peers only, in no guaranteed
// order. Close is idempotent and closes the Frames channel.
type Bus interface {
	Send(frame []byte) error
	Frames() <-chan []byte
	Close() error
}

// BusOptions configures OpenBus
type BusOptions struct {
	Subject string // NATS subject
	Name    string // peer name reported to the transport
}

// OpenBus connects to the bus described by rawURL:
// "local" or "" for a private in-process bus, ws:// or wss:// for a relay,
// nats:// for a NATS server.
func OpenBus(rawURL string, opts BusOptions) (Bus, error) {
	if rawURL == "" || rawURL == "local" {
		return NewLocalHub().Join(), nil
	}
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("parse bus url: %w", err)
	}
	switch u.Scheme {
	case "ws", "wss":
		b, err := DialWSBus(rawURL)
		if err != nil {
			return nil, err
		}
		return b, nil
	case "nats", "tls":
		b, err := DialNATSBus(rawURL, opts)
		if err != nil {
			return nil, err
		}
		return b, nil
	}
	return nil, fmt.Errorf("unsupported bus scheme %q", u.Scheme)
}
