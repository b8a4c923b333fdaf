package main

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"strings"
	"sync"
	"sync/atomic"
	"time"
	"unicode/utf8"

	"github.com/charmbracelet/log"
)

const (
	DefaultTickRate = 60  // ticks per second
	MaxTickDelta    = 0.1 // seconds; longer stalls are clamped
	maxChatText     = 200
)

// ErrNoBus is returned by NewEngine when no replication bus is supplied
var ErrNoBus = errors.New("engine: no replication bus")

// Recorder receives match telemetry. Implementations must not block.
type Recorder interface {
	Record(kind string, fields map[string]any)
}

// EngineOptions configures one simulation instance
type EngineOptions struct {
	ID         string // local tank id; generated when empty
	Name       string
	Team       Team
	Layout     []MapObject // empty falls back to DefaultArena
	Bus        Bus
	Input      InputSource
	OnMatchEnd func(score int)
	Recorder   Recorder
	Seed       uint64 // 0 picks a random seed
	TickRate   int
}

// Engine runs the fixed-order simulation of one locally owned tank
type Engine struct {
	mu         sync.Mutex
	world      *World
	repl       *Replicator
	input      InputSource
	onMatchEnd func(score int)
	rec        Recorder
	tickRate   int

	tick     uint64
	last     time.Time
	screen   Vector
	ended    bool
	stopped  bool
	offline  bool
	earnedXP int
	killedBy string

	snap     atomic.Pointer[Snapshot]
	stopCh   chan struct{}
	stopOnce sync.Once
}

// NewEngine builds the world and spawns the local tank. A missing bus is a
// construction failure.
func NewEngine(opts EngineOptions) (*Engine, error) {
	if opts.Bus == nil {
		return nil, ErrNoBus
	}
	id := opts.ID
	if id == "" {
		id = GenerateUUID()
	}
	name := strings.TrimSpace(opts.Name)
	if name == "" {
		name = "Tank-" + id[:min(4, len(id))]
	}
	seed := opts.Seed
	if seed == 0 {
		seed = rand.Uint64()
	}
	rng := rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))

	layout := opts.Layout
	if len(layout) == 0 {
		layout = DefaultArena()
	}
	team := opts.Team
	if team == "" {
		team = TeamNone
	}
	local := NewTank(id, name, team, SpawnPosition(team, layout, rng))

	input := opts.Input
	if input == nil {
		input = &HeldInput{}
	}
	rate := opts.TickRate
	if rate <= 0 {
		rate = DefaultTickRate
	}

	e := &Engine{
		world:      NewWorld(local, layout, rng),
		repl:       NewReplicator(opts.Bus),
		input:      input,
		onMatchEnd: opts.OnMatchEnd,
		rec:        opts.Recorder,
		tickRate:   rate,
		screen:     DefaultScreen,
		stopCh:     make(chan struct{}),
	}
	e.world.UpdateCamera(e.screen)
	e.publish()
	e.record(EvtMatchStart, map[string]any{"tank": id, "team": string(team)})
	return e, nil
}

// Run ticks the engine until ctx is cancelled or Stop is called
func (e *Engine) Run(ctx context.Context) error {
	ticker := time.NewTicker(time.Second / time.Duration(e.tickRate))
	defer ticker.Stop()

	local := e.Snapshot().Local
	log.Info("engine: running", "name", local.Name, "id", local.ID, "team", local.Team, "hz", e.tickRate)

	for {
		select {
		case now := <-ticker.C:
			e.Tick(now)
		case <-ctx.Done():
			e.Stop()
			return ctx.Err()
		case <-e.stopCh:
			return nil
		}
	}
}

// Stop halts ticking and closes the bus. Safe to call more than once.
func (e *Engine) Stop() {
	e.stopOnce.Do(func() {
		close(e.stopCh)
		e.mu.Lock()
		e.stopped = true
		e.mu.Unlock()
		if err := e.repl.Close(); err != nil {
			log.Warn("engine: close bus", "err", err)
		}
		sent, dropped := e.repl.Stats()
		log.Info("engine: stopped", "ticks", e.Snapshot().Tick, "sent", sent, "dropped", dropped)
	})
}

// Done is closed once the engine has been stopped
func (e *Engine) Done() <-chan struct{} {
	return e.stopCh
}

// Tick advances the simulation to now. The match-end callback runs after the
// engine lock is released.
func (e *Engine) Tick(now time.Time) {
	e.mu.Lock()
	ended := e.step(now)
	e.mu.Unlock()

	if ended != nil {
		ended()
	}
}

func (e *Engine) step(now time.Time) func() {
	if e.stopped {
		return nil
	}
	dt := 0.0
	if !e.last.IsZero() {
		dt = Clamp(now.Sub(e.last).Seconds(), 0, MaxTickDelta)
	}
	e.last = now
	e.tick++

	w := e.world
	local := &w.Local

	// Remote frames queued since the last tick
	in := e.repl.Ingest(w)
	if in.Closed && !e.offline {
		e.offline = true
		log.Warn("engine: bus closed, no more remote frames", "tick", e.tick)
	}
	if in.Bounty > 0 && !e.ended {
		e.record(EvtKill, map[string]any{"bounty": in.Bounty})
		e.systemChat(fmt.Sprintf("Kill confirmed (+%d XP)", in.Bounty))
		e.gainXP(in.Bounty)
	}
	if e.ended {
		// Remote bullets keep flying and expiring for the spectator view
		UpdateBullets(w, dt)
		w.SpinShapes()
		w.UpdateCamera(e.screen)
		e.publish()
		return nil
	}

	intent := e.input.Sample()
	if !intent.Screen.IsZero() {
		e.screen = intent.Screen
	}

	Move(local, intent.Keys, w.Obstacles(), dt)

	local.Angle = intent.AimAngle()
	nowMs := now.UnixMilli()
	if CanFire(local, intent.Fire, nowMs) {
		b := Fire(local, nowMs)
		w.Bullets = append(w.Bullets, b)
		e.repl.BroadcastFire(b)
	}

	res := UpdateBullets(w, dt)
	if res.XP > 0 {
		local.Score += res.XP
		e.gainXP(res.XP)
	}

	var ended func()
	if res.Killed {
		ended = e.endMatch(res.KillerID)
	} else {
		local.Regenerate(dt)
	}

	w.SpinShapes()
	w.UpdateCamera(e.screen)

	if !e.ended {
		e.repl.BroadcastUpdate(*local)
	}
	e.publish()
	return ended
}

// endMatch announces the local tank's death and returns the callback to run
func (e *Engine) endMatch(killerID string) func() {
	e.ended = true
	e.killedBy = killerID
	local := e.world.Local

	e.repl.BroadcastDeath(local.ID, killerID, KillBounty(&local))
	e.record(EvtDeath, map[string]any{"killer": killerID, "score": local.Score, "level": local.Level})
	e.record(EvtMatchEnd, map[string]any{"score": local.Score, "xp": e.earnedXP, "class": string(local.Class)})
	log.Info("engine: tank destroyed", "name", local.Name, "killer", killerID, "score", local.Score)

	cb := e.onMatchEnd
	if cb == nil {
		return nil
	}
	score := local.Score
	return func() { cb(score) }
}

func (e *Engine) gainXP(amount int) {
	t, facts := AwardXP(e.world.Local, amount)
	e.world.Local = t
	e.earnedXP += amount
	e.applyFacts(facts)
}

// applyFacts turns progression facts into telemetry and system chat
func (e *Engine) applyFacts(facts []Fact) {
	for _, f := range facts {
		switch f.Kind {
		case FactLevelUp:
			e.record(EvtLevelUp, map[string]any{"level": f.Level})
			if f.Level == EvolutionLevel && len(OfferedEvolutions(e.world.Local)) > 0 {
				e.systemChat(fmt.Sprintf("Level %d: evolution available", f.Level))
			} else if f.Level%5 == 0 {
				e.systemChat(fmt.Sprintf("Reached level %d", f.Level))
			}
		case FactStatUpgraded:
			e.record(EvtStatUpgrade, map[string]any{"stat": string(f.Stat), "level": f.Level})
		case FactEvolved:
			e.record(EvtEvolve, map[string]any{"class": string(f.Class), "level": f.Level})
			e.systemChat(fmt.Sprintf("Evolved into %s", f.Class))
			log.Info("engine: evolved", "name", e.world.Local.Name, "class", f.Class)
		}
	}
}

func (e *Engine) systemChat(text string) {
	e.world.Chat.Append(ChatEntry{ID: GenerateID(6), Sender: "System", Text: text, Team: TeamNone})
}

func (e *Engine) record(kind string, fields map[string]any) {
	if e.rec != nil {
		e.rec.Record(kind, fields)
	}
}

// UpgradeStat spends one stat point. It reports false when nothing changed.
func (e *Engine) UpgradeStat(k StatKey) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.ended || e.stopped {
		return false
	}
	t, facts := UpgradeStat(e.world.Local, k)
	if len(facts) == 0 {
		return false
	}
	e.world.Local = t
	e.applyFacts(facts)
	e.publish()
	return true
}

// Evolve switches to c if c is currently offered
func (e *Engine) Evolve(c TankClass) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.ended || e.stopped {
		return false
	}
	offered := false
	for _, o := range OfferedEvolutions(e.world.Local) {
		if o == c {
			offered = true
			break
		}
	}
	if !offered {
		return false
	}
	t, facts := Evolve(e.world.Local, c)
	e.world.Local = t
	e.applyFacts(facts)
	e.publish()
	return true
}

// AvailableEvolutions lists the classes the local tank may evolve into now
func (e *Engine) AvailableEvolutions() []TankClass {
	e.mu.Lock()
	defer e.mu.Unlock()
	return OfferedEvolutions(e.world.Local)
}

// AddChatMessage appends a chat line and replicates it to the sender's team.
// Team NONE makes it a local system line.
func (e *Engine) AddChatMessage(sender, text string, team Team) {
	text = strings.TrimSpace(text)
	if text == "" {
		return
	}
	if len(text) > maxChatText {
		cut := maxChatText
		for cut > 0 && !utf8.RuneStart(text[cut]) {
			cut--
		}
		text = text[:cut]
	}
	entry := ChatEntry{ID: GenerateID(6), Sender: sender, Text: text, Team: team}

	e.mu.Lock()
	defer e.mu.Unlock()
	if e.stopped {
		return
	}
	e.world.Chat.Append(entry)
	e.repl.BroadcastChat(entry)
	e.publish()
}

// EarnedXP returns the XP gained during this match
func (e *Engine) EarnedXP() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.earnedXP
}

// Ended reports whether the local tank has died
func (e *Engine) Ended() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.ended
}

// Snapshot returns the most recently published snapshot
func (e *Engine) Snapshot() *Snapshot {
	return e.snap.Load()
}

// Leaderboard returns the top tanks by score from the latest snapshot
func (e *Engine) Leaderboard() []LeaderboardEntry {
	return e.Snapshot().Leaderboard
}

// TeamScores returns the summed score per team from the latest snapshot
func (e *Engine) TeamScores() map[Team]int {
	return e.Snapshot().TeamScores
}

func (e *Engine) publish() {
	s := buildSnapshot(e.world)
	s.Tick = e.tick
	s.Ended = e.ended
	s.KilledBy = e.killedBy
	s.Offline = e.offline
	e.snap.Store(s)
}
