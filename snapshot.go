package main

import (
	"cmp"
	"slices"
)

// LeaderboardSize is the number of tanks ranked in a snapshot
const LeaderboardSize = 10

// LeaderboardEntry is one ranked tank
type LeaderboardEntry struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Team  Team   `json:"team"`
	Score int    `json:"score"`
	Level int    `json:"level"`
	Local bool   `json:"local,omitempty"`
}

// Snapshot is a read-only copy of the world published after every tick.
// Nothing in it aliases engine state.
type Snapshot struct {
	Tick        uint64             `json:"tick"`
	Local       Tank               `json:"local"`
	Remote      []Tank             `json:"remote"` // sorted by id
	Shapes      []Shape            `json:"shapes"`
	Bullets     []Bullet           `json:"bullets"`
	Arena       []MapObject        `json:"arena"`
	Camera      Vector             `json:"camera"`
	Leaderboard []LeaderboardEntry `json:"leaderboard"`
	TeamScores  map[Team]int       `json:"teamScores"`
	Evolutions  []TankClass        `json:"evolutions,omitempty"`
	Chat        []ChatEntry        `json:"chat"`
	Ended       bool               `json:"ended"`
	KilledBy    string             `json:"killedBy,omitempty"`
	Offline     bool               `json:"offline,omitempty"` // the bus closed under the engine
}

func buildSnapshot(w *World) *Snapshot {
	remote := make([]Tank, 0, len(w.Remote))
	for _, t := range w.Remote {
		remote = append(remote, *t)
	}
	slices.SortFunc(remote, func(a, b Tank) int { return cmp.Compare(a.ID, b.ID) })

	return &Snapshot{
		Local:       w.Local,
		Remote:      remote,
		Shapes:      slices.Clone(w.Shapes),
		Bullets:     slices.Clone(w.Bullets),
		Arena:       w.Arena,
		Camera:      w.Camera,
		Leaderboard: Leaderboard(w.Local, remote),
		TeamScores:  TeamScores(w.Local, remote),
		Evolutions:  OfferedEvolutions(w.Local),
		Chat:        w.Chat.Entries(),
	}
}

// Leaderboard ranks the local tank and the remote tanks by score, descending.
// Ties keep input order: the local tank first, then remote in the order given.
func Leaderboard(local Tank, remote []Tank) []LeaderboardEntry {
	out := make([]LeaderboardEntry, 0, len(remote)+1)
	out = append(out, leaderboardEntry(local, true))
	for _, t := range remote {
		out = append(out, leaderboardEntry(t, false))
	}
	slices.SortStableFunc(out, func(a, b LeaderboardEntry) int { return cmp.Compare(b.Score, a.Score) })
	if len(out) > LeaderboardSize {
		out = out[:LeaderboardSize]
	}
	return out
}

func leaderboardEntry(t Tank, local bool) LeaderboardEntry {
	return LeaderboardEntry{ID: t.ID, Name: t.Name, Team: t.Team, Score: t.Score, Level: t.Level, Local: local}
}

// TeamScores sums scores per team over the local and remote tanks. Tanks
// without a team are left out.
func TeamScores(local Tank, remote []Tank) map[Team]int {
	scores := map[Team]int{TeamBlue: 0, TeamRed: 0}
	add := func(t Tank) {
		if t.Team != TeamNone && t.Team != "" {
			scores[t.Team] += t.Score
		}
	}
	add(local)
	for _, t := range remote {
		add(t)
	}
	return scores
}
