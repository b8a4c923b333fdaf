package main

import (
	"errors"
	"testing"
)

func TestLocalHubFanout(t *testing.T) {
	hub := NewLocalHub()
	a, b, c := hub.Join(), hub.Join(), hub.Join()
	defer a.Close()
	defer b.Close()
	defer c.Close()

	if err := a.Send([]byte("hello")); err != nil {
		t.Fatalf("send: %v", err)
	}
	for name, bus := range map[string]*LocalBus{"b": b, "c": c} {
		select {
		case f := <-bus.Frames():
			if string(f) != "hello" {
				t.Errorf("%s got %q", name, f)
			}
		default:
			t.Errorf("%s received nothing", name)
		}
	}
	select {
	case f := <-a.Frames():
		t.Errorf("sender received its own frame %q", f)
	default:
	}
}

func TestLocalHubCopiesFrames(t *testing.T) {
	hub := NewLocalHub()
	a, b := hub.Join(), hub.Join()
	frame := []byte("abc")
	a.Send(frame)
	frame[0] = 'x'
	if got := <-b.Frames(); string(got) != "abc" {
		t.Errorf("receiver saw sender's later write: %q", got)
	}
}

func TestLocalBusDropsWhenFull(t *testing.T) {
	hub := NewLocalHub()
	a, b := hub.Join(), hub.Join()
	for i := 0; i < busBufSize+10; i++ {
		if err := a.Send([]byte{byte(i)}); err != nil {
			t.Fatalf("send should never fail while open: %v", err)
		}
	}
	if n := len(b.Frames()); n != busBufSize {
		t.Errorf("expected %d buffered frames, got %d", busBufSize, n)
	}
}

func TestLocalBusClose(t *testing.T) {
	hub := NewLocalHub()
	a, b := hub.Join(), hub.Join()

	if err := a.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	if err := a.Close(); err != nil {
		t.Fatalf("second close: %v", err)
	}
	if err := a.Send([]byte("x")); !errors.Is(err, ErrBusClosed) {
		t.Errorf("expected ErrBusClosed, got %v", err)
	}
	if _, ok := <-a.Frames(); ok {
		t.Error("frames channel should be closed")
	}

	// The closed peer no longer receives
	if err := b.Send([]byte("y")); err != nil {
		t.Fatalf("send: %v", err)
	}
}

func TestOpenBus(t *testing.T) {
	bus, err := OpenBus("local", BusOptions{})
	if err != nil {
		t.Fatalf("open local: %v", err)
	}
	bus.Close()

	if _, err := OpenBus("carrier-pigeon://roof", BusOptions{}); err == nil {
		t.Error("expected error for unsupported scheme")
	}
}
