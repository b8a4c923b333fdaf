package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/charmbracelet/log"
)

func main() {
	LoadEnvFile(".env")

	cmd, args := "play", os.Args[1:]
	if len(args) > 0 && !strings.HasPrefix(args[0], "-") {
		cmd, args = args[0], args[1:]
	}

	cfg, err := LoadConfig(cmd, args, os.Getenv)
	if errors.Is(err, flag.ErrHelp) {
		return
	}
	if err != nil {
		log.Fatal("config", "err", err)
	}
	lvl, _ := log.ParseLevel(cfg.LogLevel)
	log.SetLevel(lvl)
	log.SetReportTimestamp(true)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	switch cmd {
	case "play":
		err = runPlay(ctx, cfg)
	case "relay":
		err = runRelay(ctx, cfg)
	default:
		log.Fatal("unknown command (want play or relay)", "cmd", cmd)
	}
	if err != nil && !errors.Is(err, context.Canceled) {
		log.Fatal(cmd, "err", err)
	}
}

// runPlay runs one autopilot peer until its tank dies or the process is interrupted
func runPlay(ctx context.Context, cfg Config) error {
	layout, err := LoadArena(cfg.Layout)
	if err != nil {
		return err
	}

	sess := Guest(cfg.Name)
	var rec Recorder
	var analytics *Analytics
	matchID := GenerateUUID()
	if cfg.DBPath != "" {
		db, err := OpenDB(cfg.DBPath)
		if err != nil {
			return err
		}
		defer db.Close()

		analytics = NewAnalytics(db)
		defer analytics.Stop()

		sess, err = NewAccounts(db).Open(cfg.Name, cfg.Password, cfg.TokenPath)
		if err != nil {
			return fmt.Errorf("session: %w", err)
		}
		if p, err := sess.Progress(); err == nil && p != nil {
			log.Info("Signed in", "name", sess.Name, "level", p.Level, "xp", p.TotalXP, "best", p.TopScore)
		}
		rec = analytics.ForMatch(sess.AccountID, matchID)
	}

	bus, err := OpenBus(cfg.BusURL, BusOptions{Subject: cfg.Subject, Name: sess.Name})
	if err != nil {
		return fmt.Errorf("open bus: %w", err)
	}

	pilot := NewAutopilot(DefaultScreen)
	ended := make(chan int, 1)
	e, err := NewEngine(EngineOptions{
		Name:       sess.Name,
		Team:       cfg.Team,
		Layout:     layout,
		Bus:        bus,
		Input:      pilot,
		Recorder:   rec,
		Seed:       cfg.Seed,
		TickRate:   cfg.TickRate,
		OnMatchEnd: func(score int) { ended <- score },
	})
	if err != nil {
		bus.Close()
		return err
	}
	pilot.Attach(e.Snapshot)

	runErr := make(chan error, 1)
	go func() { runErr <- e.Run(ctx) }()
	go pilotLoop(e, pilot)

	var score int
	select {
	case score = <-ended:
		e.Stop()
		<-runErr
	case err = <-runErr:
		score = e.Snapshot().Local.Score
	}

	xp := e.EarnedXP()
	log.Info("Match over", "score", score, "xp", xp)
	p, serr := sess.SaveProgress(xp, score)
	if serr != nil {
		log.Error("save progress", "err", serr)
	} else if p != nil {
		log.Info("Account progress", "name", sess.Name, "level", p.Level, "xp", p.TotalXP, "best", p.TopScore)
	}
	if analytics != nil {
		reportMatch(analytics, matchID)
	}
	return err
}

// reportMatch logs the match's recorded events and the all-time high scores
func reportMatch(a *Analytics, matchID string) {
	sum, err := a.Summarize(matchID, 5)
	if err != nil {
		log.Warn("match summary", "err", err)
		return
	}
	log.Info("Match events", "match", matchID, "kills", sum.Events[EvtKill], "levels", sum.Events[EvtLevelUp], "evolutions", sum.Events[EvtEvolve])
	for _, h := range sum.HighScores {
		log.Info("High score", "rank", h.Rank, "name", h.Username, "best", h.TopScore, "level", h.Level)
	}
}

// pilotLoop spends stat points and logs status until the engine stops
func pilotLoop(e *Engine, pilot *Autopilot) {
	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()
	var n int
	for {
		select {
		case <-ticker.C:
			pilot.Spend(e)
			n++
			if n%10 == 0 {
				s := e.Snapshot()
				log.Info("engine: status", "level", s.Local.Level, "class", s.Local.Class, "score", s.Local.Score,
					"hp", fmt.Sprintf("%.0f/%.0f", s.Local.HP, s.Local.MaxHP), "remote", len(s.Remote))
			}
		case <-e.Done():
			return
		}
	}
}

// runRelay serves the WebSocket fan-out bus until interrupted
func runRelay(ctx context.Context, cfg Config) error {
	hub := NewHub()
	go hub.Run()
	defer hub.Stop()

	server := &http.Server{Addr: cfg.Addr, Handler: SetupRoutes(hub)}

	public := cfg.PublicURL
	if public == "" {
		public = cfg.Addr
		if strings.HasPrefix(public, ":") {
			public = "localhost" + public
		}
	}
	if cfg.QR {
		if err := PrintJoinQR(os.Stdout, JoinURL(public)); err != nil {
			log.Warn("relay: join QR", "err", err)
		}
	}

	errc := make(chan error, 1)
	go func() {
		log.Info("relay: listening", "addr", cfg.Addr)
		if err := server.ListenAndServe(); err != http.ErrServerClosed {
			errc <- err
		}
	}()

	select {
	case <-ctx.Done():
	case err := <-errc:
		return err
	}
	log.Info("relay: shutting down")
	return server.Close()
}
