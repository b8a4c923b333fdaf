package main

import (
	"errors"
	"sync/atomic"

	"github.com/charmbracelet/log"
)

// Replicator emits the locally owned tank's events on a bus and applies
// remote events to a World. There is no catch-up: a peer that joins mid-match
// sees no remote tank until that tank's next PLAYER_UPDATE arrives, and a
// dropped PLAYER_DEATH leaves a stale entry until the bus is reopened.
type Replicator struct {
	bus Bus

	sent    atomic.Uint64
	dropped atomic.Uint64
}

// IngestResult summarizes one drain of the bus
type IngestResult struct {
	Applied int  // frames that changed the world
	Ignored int  // echoes, unknown kinds, undecodable frames
	Bounty  int  // kill credit owed to the local tank
	Closed  bool // the bus has no more frames
}

// NewReplicator wraps a bus
func NewReplicator(bus Bus) *Replicator {
	return &Replicator{bus: bus}
}

// BroadcastUpdate publishes the full state of the locally owned tank
func (r *Replicator) BroadcastUpdate(t Tank) {
	r.send(MsgPlayerUpdate, t)
}

// BroadcastFire publishes one bullet
func (r *Replicator) BroadcastFire(b Bullet) {
	r.send(MsgPlayerFire, b)
}

// BroadcastDeath publishes the death of tank id. killerID may be empty.
func (r *Replicator) BroadcastDeath(id, killerID string, bounty int) {
	r.send(MsgPlayerDeath, DeathMsg{ID: id, KillerID: killerID, Bounty: bounty})
}

// BroadcastChat publishes a team chat line. System entries stay local.
func (r *Replicator) BroadcastChat(e ChatEntry) {
	if e.IsSystem() {
		return
	}
	r.send(MsgPlayerChat, e)
}

func (r *Replicator) send(kind string, payload any) {
	frame, err := Encode(kind, payload)
	if err != nil {
		r.dropped.Add(1)
		return
	}
	if err := r.bus.Send(frame); err != nil {
		r.dropped.Add(1)
		return
	}
	r.sent.Add(1)
}

// Stats returns the number of frames sent and dropped so far
func (r *Replicator) Stats() (sent, dropped uint64) {
	return r.sent.Load(), r.dropped.Load()
}

// Ingest drains every frame currently buffered on the bus into w without blocking
func (r *Replicator) Ingest(w *World) IngestResult {
	var res IngestResult
	frames := r.bus.Frames()
	for {
		select {
		case frame, ok := <-frames:
			if !ok {
				res.Closed = true
				return res
			}
			bounty, err := ApplyFrame(w, frame)
			if err != nil {
				if !errors.Is(err, errIgnored) {
					log.Debug("replication: bad frame", "len", len(frame), "err", err)
				}
				res.Ignored++
				continue
			}
			res.Applied++
			res.Bounty += bounty
		default:
			return res
		}
	}
}

// Close releases the bus
func (r *Replicator) Close() error {
	return r.bus.Close()
}

var errIgnored = errors.New("frame ignored")

// ApplyFrame applies one remote frame to w and returns any kill bounty owed to
// the local tank. The local tank is never touched except through that bounty.
func ApplyFrame(w *World, frame []byte) (int, error) {
	env, err := DecodeEnvelope(frame)
	if err != nil {
		return 0, err
	}
	switch env.T {
	case MsgPlayerUpdate:
		t, err := DecodePayload[Tank](env)
		if err != nil {
			return 0, err
		}
		if t.ID == "" || t.ID == w.Local.ID {
			return 0, errIgnored
		}
		w.Remote[t.ID] = &t
		return 0, nil

	case MsgPlayerFire:
		b, err := DecodePayload[Bullet](env)
		if err != nil {
			return 0, err
		}
		if b.OwnerID == w.Local.ID {
			return 0, errIgnored
		}
		w.Bullets = append(w.Bullets, b)
		return 0, nil

	case MsgPlayerDeath:
		d, err := DecodePayload[DeathMsg](env)
		if err != nil {
			return 0, err
		}
		if d.ID == w.Local.ID {
			return 0, errIgnored
		}
		delete(w.Remote, d.ID)
		if d.KillerID != "" && d.KillerID == w.Local.ID && d.Bounty > 0 {
			return d.Bounty, nil
		}
		return 0, nil

	case MsgPlayerChat:
		e, err := DecodePayload[ChatEntry](env)
		if err != nil {
			return 0, err
		}
		if e.IsSystem() || e.Team != w.Local.Team {
			return 0, errIgnored
		}
		w.Chat.Append(e)
		return 0, nil
	}
	return 0, errIgnored
}
