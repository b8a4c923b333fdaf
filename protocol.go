package main

import (
	"errors"
	"fmt"

	"github.com/vmihailenco/msgpack/v5"
)

// Replication message kinds
const (
	MsgPlayerUpdate = "PLAYER_UPDATE" // full locally owned tank, every tick
	MsgPlayerFire   = "PLAYER_FIRE"   // one bullet, once per shot
	MsgPlayerDeath  = "PLAYER_DEATH"  // locally owned tank died
	MsgPlayerChat   = "PLAYER_CHAT"   // team chat line
)

// Envelope wraps every bus frame with its kind
type Envelope struct {
	T string             `msgpack:"t"`
	D msgpack.RawMessage `msgpack:"d,omitempty"`
}

// DeathMsg announces a tank's death. KillerID and Bounty are optional kill credit.
type DeathMsg struct {
	ID       string `msgpack:"id"`
	KillerID string `msgpack:"k,omitempty"`
	Bounty   int    `msgpack:"b,omitempty"`
}

var errEmptyFrame = errors.New("empty frame")

// Encode packs a payload into a msgpack envelope frame
func Encode(t string, payload any) ([]byte, error) {
	if t == "" {
		return nil, fmt.Errorf("encode: empty message type")
	}
	d, err := msgpack.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("encode %s: %w", t, err)
	}
	return msgpack.Marshal(Envelope{T: t, D: d})
}

// DecodeEnvelope unpacks the outer frame without touching the payload
func DecodeEnvelope(b []byte) (Envelope, error) {
	if len(b) == 0 {
		return Envelope{}, errEmptyFrame
	}
	var env Envelope
	if err := msgpack.Unmarshal(b, &env); err != nil {
		return Envelope{}, fmt.Errorf("decode envelope: %w", err)
	}
	return env, nil
}

// DecodePayload unpacks an envelope's payload into T
func DecodePayload[T any](env Envelope) (T, error) {
	var out T
	if len(env.D) == 0 {
		return out, fmt.Errorf("empty payload for type %q", env.T)
	}
	err := msgpack.Unmarshal(env.D, &out)
	return out, err
}
