package main

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/charmbracelet/log"
)

// Match telemetry event types
const (
	EvtMatchStart  = "match_start"
	EvtMatchEnd    = "match_end"
	EvtKill        = "kill"
	EvtDeath       = "death"
	EvtLevelUp     = "level_up"
	EvtStatUpgrade = "stat_upgrade"
	EvtEvolve      = "evolve"
)

// MatchEvent is a single recorded event
type MatchEvent struct {
	Type      string
	AccountID int64
	MatchID   string
	Data      string // JSON fields (optional)
	Timestamp time.Time
}

// Analytics writes match events to the database in batches from a
// background goroutine
type Analytics struct {
	db       *DB
	events   chan MatchEvent
	stop     chan struct{}
	stopOnce sync.Once
	wg       sync.WaitGroup
}

// NewAnalytics creates and starts the background writer
func NewAnalytics(db *DB) *Analytics {
	a := &Analytics{
		db:     db,
		events: make(chan MatchEvent, 1024),
		stop:   make(chan struct{}),
	}
	a.wg.Add(1)
	go a.writer()
	return a
}

// Track enqueues an event without blocking
func (a *Analytics) Track(evtType string, accountID int64, matchID string, data string) {
	select {
	case a.events <- MatchEvent{
		Type:      evtType,
		AccountID: accountID,
		MatchID:   matchID,
		Data:      data,
		Timestamp: time.Now().UTC(),
	}:
	default:
		// Channel full, drop rather than stall the tick
	}
}

// ForMatch returns a Recorder that tags every event with the account and match
func (a *Analytics) ForMatch(accountID int64, matchID string) *MatchRecorder {
	return &MatchRecorder{a: a, accountID: accountID, matchID: matchID}
}

// Stop flushes pending events and shuts the writer down
func (a *Analytics) Stop() {
	a.stopOnce.Do(func() {
		close(a.stop)
		a.wg.Wait()
	})
}

const (
	analyticsBatch    = 50
	analyticsInterval = 5 * time.Second
)

// writer collects events and persists them when the batch fills, on a timer,
// and once more on stop
func (a *Analytics) writer() {
	defer a.wg.Done()

	ticker := time.NewTicker(analyticsInterval)
	defer ticker.Stop()

	var pending []MatchEvent
	persist := func(reason string) {
		if len(pending) == 0 {
			return
		}
		n, err := a.flush(pending)
		if err != nil {
			log.Error("analytics: flush", "reason", reason, "events", len(pending), "written", n, "err", err)
		} else {
			log.Debug("analytics: flushed", "reason", reason, "events", n)
		}
		pending = pending[:0]
	}

	for {
		select {
		case evt := <-a.events:
			if pending = append(pending, evt); len(pending) >= analyticsBatch {
				persist("batch")
			}
		case <-ticker.C:
			persist("timer")
		case <-a.stop:
			for len(a.events) > 0 {
				pending = append(pending, <-a.events)
			}
			persist("stop")
			return
		}
	}
}

// flush inserts events in one transaction and returns how many rows landed.
// A failing row is skipped and reported without aborting the rest.
func (a *Analytics) flush(events []MatchEvent) (int, error) {
	if a.db == nil || len(events) == 0 {
		return 0, nil
	}
	tx, err := a.db.conn.Begin()
	if err != nil {
		return 0, fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(`INSERT INTO match_events (event_type, account_id, match_id, data, created_at) VALUES (?, ?, ?, ?, ?)`)
	if err != nil {
		return 0, fmt.Errorf("prepare: %w", err)
	}
	defer stmt.Close()

	var written int
	var errs []error
	for _, evt := range events {
		_, err := stmt.Exec(evt.Type,
			sql.NullInt64{Int64: evt.AccountID, Valid: evt.AccountID > 0},
			sql.NullString{String: evt.MatchID, Valid: evt.MatchID != ""},
			sql.NullString{String: evt.Data, Valid: evt.Data != ""},
			evt.Timestamp.Format(time.RFC3339))
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", evt.Type, err))
			continue
		}
		written++
	}
	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit: %w", err)
	}
	return written, errors.Join(errs...)
}

// EventCounts returns counts of each event type for one match
func (a *Analytics) EventCounts(matchID string) (map[string]int, error) {
	if a.db == nil {
		return nil, nil
	}
	rows, err := a.db.conn.Query(`
		SELECT event_type, COUNT(*) FROM match_events
		WHERE match_id = ?
		GROUP BY event_type`, matchID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := make(map[string]int)
	for rows.Next() {
		var evtType string
		var count int
		if err := rows.Scan(&evtType, &count); err != nil {
			continue
		}
		result[evtType] = count
	}
	return result, rows.Err()
}

// MatchRecorder implements Recorder for one match
type MatchRecorder struct {
	a         *Analytics
	accountID int64
	matchID   string
}

// Record encodes fields as JSON and tracks the event
func (m *MatchRecorder) Record(kind string, fields map[string]any) {
	data := ""
	if len(fields) > 0 {
		if b, err := json.Marshal(fields); err == nil {
			data = string(b)
		}
	}
	m.a.Track(kind, m.accountID, m.matchID, data)
}

// MatchSummary is what gets reported once a match is over
type MatchSummary struct {
	Events     map[string]int
	HighScores []HighScore
}

// Summarize flushes pending events and reads back the match's event counts
// and the top of the all-time score table. The writer is stopped.
func (a *Analytics) Summarize(matchID string, top int) (MatchSummary, error) {
	a.Stop()
	var sum MatchSummary
	if a.db == nil {
		return sum, nil
	}
	counts, err := a.EventCounts(matchID)
	if err != nil {
		return sum, fmt.Errorf("event counts: %w", err)
	}
	sum.Events = counts
	scores, err := a.db.GetHighScores(top)
	if err != nil {
		return sum, fmt.Errorf("high scores: %w", err)
	}
	sum.HighScores = scores
	return sum, nil
}
