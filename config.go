package main

import (
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"strconv"

	"github.com/charmbracelet/log"
	"github.com/joho/godotenv"
)

// Config holds settings for both the play and relay commands
type Config struct {
	Name      string
	Password  string
	Team      Team
	BusURL    string
	Subject   string
	DBPath    string
	TokenPath string
	Layout    string
	TickRate  int
	Seed      uint64
	Addr      string // relay listen address
	PublicURL string // relay host:port advertised in the join QR
	QR        bool
	LogLevel  string
}

// DefaultConfig returns built-in defaults
func DefaultConfig() Config {
	return Config{
		Team:      TeamBlue,
		BusURL:    "local",
		Subject:   DefaultSubject,
		DBPath:    "tank-arena.db",
		TokenPath: ".tank-arena-session",
		TickRate:  DefaultTickRate,
		Addr:      ":8080",
		QR:        true,
		LogLevel:  "info",
	}
}

// LoadEnvFile loads a .env file into the process environment if present.
// Variables already set are left alone.
func LoadEnvFile(path string) {
	if err := godotenv.Load(path); err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			log.Warn("config: could not load env file", "path", path, "err", err)
		}
		return
	}
	log.Info("config: loaded env file", "path", path)
}

// applyEnv overrides cfg from ARENA_* variables
func (c *Config) applyEnv(getenv func(string) string) error {
	str := func(key string, dst *string) {
		if v := getenv(key); v != "" {
			*dst = v
		}
	}
	str("ARENA_NAME", &c.Name)
	str("ARENA_PASSWORD", &c.Password)
	str("ARENA_BUS", &c.BusURL)
	str("ARENA_SUBJECT", &c.Subject)
	str("ARENA_DB", &c.DBPath)
	str("ARENA_TOKEN", &c.TokenPath)
	str("ARENA_LAYOUT", &c.Layout)
	str("ARENA_ADDR", &c.Addr)
	str("ARENA_PUBLIC_URL", &c.PublicURL)
	str("ARENA_LOG_LEVEL", &c.LogLevel)

	if v := getenv("ARENA_TEAM"); v != "" {
		c.Team = ParseTeam(v)
	}
	if v := getenv("ARENA_TICK_RATE"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("ARENA_TICK_RATE: %w", err)
		}
		c.TickRate = n
	}
	if v := getenv("ARENA_SEED"); v != "" {
		n, err := strconv.ParseUint(v, 10, 64)
		if err != nil {
			return fmt.Errorf("ARENA_SEED: %w", err)
		}
		c.Seed = n
	}
	if v := getenv("ARENA_QR"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("ARENA_QR: %w", err)
		}
		c.QR = b
	}
	return nil
}

// LoadConfig layers defaults, environment and command-line flags, in that order
func LoadConfig(name string, args []string, getenv func(string) string) (Config, error) {
	cfg := DefaultConfig()
	if err := cfg.applyEnv(getenv); err != nil {
		return cfg, err
	}

	fl := flag.NewFlagSet(name, flag.ContinueOnError)
	fl.StringVar(&cfg.Name, "name", cfg.Name, "Display name (also the account name)")
	fl.StringVar(&cfg.Password, "password", cfg.Password, "Account password (optional)")
	team := fl.String("team", string(cfg.Team), "Team: BLUE, RED or NONE")
	fl.StringVar(&cfg.BusURL, "bus", cfg.BusURL, "Replication bus: local, ws://host/ws or nats://host:4222")
	fl.StringVar(&cfg.Subject, "subject", cfg.Subject, "NATS subject shared by a match")
	fl.StringVar(&cfg.DBPath, "db", cfg.DBPath, "SQLite database path (empty disables accounts)")
	fl.StringVar(&cfg.TokenPath, "token", cfg.TokenPath, "File holding the saved session token")
	fl.StringVar(&cfg.Layout, "layout", cfg.Layout, "Arena layout JSON file (default layout if empty)")
	fl.IntVar(&cfg.TickRate, "tick-rate", cfg.TickRate, "Simulation ticks per second")
	fl.Uint64Var(&cfg.Seed, "seed", cfg.Seed, "RNG seed (0 for random)")
	fl.StringVar(&cfg.Addr, "addr", cfg.Addr, "Relay HTTP listen address")
	fl.StringVar(&cfg.PublicURL, "public", cfg.PublicURL, "Relay host:port advertised to peers")
	fl.BoolVar(&cfg.QR, "qr", cfg.QR, "Print a QR code of the relay join URL")
	fl.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "Log level: debug, info, warn or error")
	if err := fl.Parse(args); err != nil {
		return cfg, err
	}
	cfg.Team = ParseTeam(*team)

	if cfg.TickRate <= 0 || cfg.TickRate > 240 {
		return cfg, fmt.Errorf("tick rate %d out of range 1-240", cfg.TickRate)
	}
	if _, err := log.ParseLevel(cfg.LogLevel); err != nil {
		return cfg, fmt.Errorf("log level: %w", err)
	}
	return cfg, nil
}

