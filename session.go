package main

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

const (
	jwtExpiry        = 30 * 24 * time.Hour
	bcryptCost       = 12
	minPasswordLen   = 4
	minUsernameLen   = 2
	maxUsernameLen   = 16
	loginRateWindow  = 60 * time.Second
	maxLoginAttempts = 10
)

var (
	ErrUserExists         = errors.New("username already taken")
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrRateLimited        = errors.New("too many login attempts, try again later")
)

// Accounts issues sessions backed by the account store
type Accounts struct {
	db        *DB
	jwtSecret []byte
	cost      int

	rateMu  sync.Mutex
	rateMap map[string]*rateEntry
}

type rateEntry struct {
	Count   int
	ResetAt time.Time
}

// NewAccounts creates the account service. The signing secret is kept in the
// settings table so tokens survive restarts.
func NewAccounts(db *DB) *Accounts {
	return &Accounts{
		db:        db,
		jwtSecret: loadOrCreateSecret(db),
		cost:      bcryptCost,
		rateMap:   make(map[string]*rateEntry),
	}
}

func loadOrCreateSecret(db *DB) []byte {
	if db != nil {
		if h := db.GetSetting("jwt_secret"); h != "" {
			if b, err := hex.DecodeString(h); err == nil && len(b) == 32 {
				return b
			}
		}
	}
	secret := make([]byte, 32)
	if _, err := rand.Read(secret); err != nil {
		panic("failed to generate JWT secret: " + err.Error())
	}
	if db != nil {
		if err := db.SetSetting("jwt_secret", hex.EncodeToString(secret)); err != nil {
			log.Warn("session: could not persist JWT secret", "err", err)
		}
	}
	return secret
}

// Session is the handle the engine's caller holds for one player. A guest
// session has no account and saves nothing.
type Session struct {
	AccountID int64
	Name      string
	Token     string

	accounts *Accounts
}

// Guest returns a session that is never persisted
func Guest(name string) *Session {
	name = strings.TrimSpace(name)
	if name == "" {
		name = GenerateGuestName()
	}
	return &Session{Name: name}
}

// IsGuest reports whether the session has no backing account
func (s *Session) IsGuest() bool {
	return s.accounts == nil || s.AccountID == 0
}

// SaveProgress records a finished match. Guests return nil, nil.
func (s *Session) SaveProgress(xpEarned, score int) (*ProgressRow, error) {
	if s.IsGuest() {
		return nil, nil
	}
	p, err := s.accounts.db.AddMatchResult(s.AccountID, xpEarned, score)
	if err != nil {
		return nil, fmt.Errorf("save progress for %s: %w", s.Name, err)
	}
	return p, nil
}

// Progress returns the stored aggregate progress. Guests return nil, nil.
func (s *Session) Progress() (*ProgressRow, error) {
	if s.IsGuest() {
		return nil, nil
	}
	return s.accounts.db.GetProgress(s.AccountID)
}

// Register creates an account. An empty password makes a passwordless account.
func (a *Accounts) Register(username, password string) (*Session, error) {
	username = strings.TrimSpace(username)
	if len(username) < minUsernameLen || len(username) > maxUsernameLen {
		return nil, fmt.Errorf("username must be %d-%d characters", minUsernameLen, maxUsernameLen)
	}
	if password != "" && len(password) < minPasswordLen {
		return nil, fmt.Errorf("password must be at least %d characters", minPasswordLen)
	}

	exists, err := a.db.UsernameExists(username)
	if err != nil {
		return nil, fmt.Errorf("register %s: %w", username, err)
	}
	if exists {
		return nil, ErrUserExists
	}

	hash := ""
	if password != "" {
		h, err := bcrypt.GenerateFromPassword([]byte(password), a.cost)
		if err != nil {
			return nil, fmt.Errorf("register %s: %w", username, err)
		}
		hash = string(h)
	}

	id, err := a.db.CreateAccount(username, hash)
	if err != nil {
		return nil, fmt.Errorf("register %s: %w", username, err)
	}
	return a.issue(id, username)
}

// Login checks the password and returns a fresh session
func (a *Accounts) Login(username, password string) (*Session, error) {
	username = strings.TrimSpace(username)
	if !a.checkRate(username) {
		return nil, ErrRateLimited
	}

	acct, err := a.db.GetAccountByUsername(username)
	if err != nil {
		return nil, fmt.Errorf("login %s: %w", username, err)
	}
	if acct == nil {
		return nil, ErrInvalidCredentials
	}
	if acct.PassHash == "" {
		if password != "" {
			return nil, ErrInvalidCredentials
		}
	} else if err := bcrypt.CompareHashAndPassword([]byte(acct.PassHash), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}
	return a.issue(acct.ID, acct.Username)
}

// Resume restores a session from a previously issued token
func (a *Accounts) Resume(tokenStr string) (*Session, error) {
	token, err := jwt.Parse(tokenStr, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method")
		}
		return a.jwtSecret, nil
	})
	if err != nil {
		return nil, fmt.Errorf("resume session: %w", err)
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return nil, fmt.Errorf("resume session: invalid token")
	}
	aidFloat, ok := claims["aid"].(float64)
	if !ok {
		return nil, fmt.Errorf("resume session: invalid token claims")
	}
	username, ok := claims["usr"].(string)
	if !ok {
		return nil, fmt.Errorf("resume session: invalid token claims")
	}
	return &Session{AccountID: int64(aidFloat), Name: username, Token: tokenStr, accounts: a}, nil
}

// Open resumes the session saved at tokenPath when it belongs to username,
// otherwise logs in, registering the account on first use. The new token is
// written back to tokenPath.
func (a *Accounts) Open(username, password, tokenPath string) (*Session, error) {
	if tokenPath != "" {
		if data, err := os.ReadFile(tokenPath); err == nil {
			s, err := a.Resume(strings.TrimSpace(string(data)))
			if err == nil && (username == "" || s.Name == username) {
				return s, nil
			}
		}
	}
	if username == "" {
		return nil, fmt.Errorf("open session: no saved session and no name given")
	}

	s, err := a.Login(username, password)
	if errors.Is(err, ErrInvalidCredentials) {
		exists, xerr := a.db.UsernameExists(username)
		if xerr == nil && !exists {
			s, err = a.Register(username, password)
		}
	}
	if err != nil {
		return nil, err
	}

	if tokenPath != "" {
		if err := os.WriteFile(tokenPath, []byte(s.Token+"\n"), 0o600); err != nil {
			log.Warn("session: could not save token", "path", tokenPath, "err", err)
		}
	}
	return s, nil
}

func (a *Accounts) issue(accountID int64, username string) (*Session, error) {
	claims := jwt.MapClaims{
		"aid": accountID,
		"usr": username,
		"exp": time.Now().Add(jwtExpiry).Unix(),
		"iat": time.Now().Unix(),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(a.jwtSecret)
	if err != nil {
		return nil, fmt.Errorf("sign token: %w", err)
	}
	return &Session{AccountID: accountID, Name: username, Token: token, accounts: a}, nil
}

func (a *Accounts) checkRate(key string) bool {
	a.rateMu.Lock()
	defer a.rateMu.Unlock()

	now := time.Now()
	entry, ok := a.rateMap[key]
	if !ok || now.After(entry.ResetAt) {
		a.rateMap[key] = &rateEntry{Count: 1, ResetAt: now.Add(loginRateWindow)}
		return true
	}
	entry.Count++
	return entry.Count <= maxLoginAttempts
}

// GenerateGuestName creates a name like "Guest_a3f2c1"
func GenerateGuestName() string {
	return "Guest_" + GenerateID(3)
}
