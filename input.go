package main

import "sync"

// Key is a directional movement key
type Key uint8

const (
	KeyUp Key = 1 << iota
	KeyDown
	KeyLeft
	KeyRight
)

// KeySet is the set of currently held movement keys
type KeySet uint8

// Keys builds a KeySet from individual keys
func Keys(keys ...Key) KeySet {
	var s KeySet
	for _, k := range keys {
		s |= KeySet(k)
	}
	return s
}

// Has reports whether k is held
func (s KeySet) Has(k Key) bool {
	return s&KeySet(k) != 0
}

// Direction is the raw (unnormalized) movement vector of the held keys
func (s KeySet) Direction() Vector {
	var d Vector
	if s.Has(KeyUp) {
		d.Y--
	}
	if s.Has(KeyDown) {
		d.Y++
	}
	if s.Has(KeyLeft) {
		d.X--
	}
	if s.Has(KeyRight) {
		d.X++
	}
	return d
}

// Input is the intent sampled once per tick
type Input struct {
	Keys    KeySet
	Pointer Vector // screen space
	Screen  Vector // screen size; the local tank sits at its center
	Fire    bool
}

// DefaultScreen is used when an input source reports no screen size
var DefaultScreen = Vector{1280, 720}

// AimAngle returns the angle from the screen center to the pointer
func (in Input) AimAngle() float64 {
	screen := in.Screen
	if screen.IsZero() {
		screen = DefaultScreen
	}
	return in.Pointer.Sub(screen.Scale(0.5)).Angle()
}

// InputSource is polled by the engine once per tick
type InputSource interface {
	Sample() Input
}

// HeldInput is an InputSource whose state is set by the caller, e.g. a
// presentation layer translating its own events. Safe for concurrent use.
type HeldInput struct {
	mu sync.Mutex
	in Input
}

// Set replaces the held input
func (h *HeldInput) Set(in Input) {
	h.mu.Lock()
	h.in = in
	h.mu.Unlock()
}

// Sample returns the held input
func (h *HeldInput) Sample() Input {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.in
}
