package session

import (
	"context"
	"errors"
	"sync"
	"time"

	"genzfits/internal/models"
	"genzfits/internal/utils"

	"github.com/google/uuid"
)

// CookieName is the cookie carrying the signed session token.
const CookieName = "GENZFITS_SESSION"

var ErrNoSession = errors.New("session not found")

// Session is a snapshot of an active session.
type Session struct {
	ID             string
	Token          string
	User           models.User
	CreatedAt      time.Time
	LastAccessedAt time.Time
}

type entry struct {
	token          string
	user           models.User
	createdAt      time.Time
	lastAccessedAt time.Time
}

// Store maps session IDs to users. A session expires once it has not been
// resolved for longer than the TTL.
type Store struct {
	mu       sync.RWMutex
	sessions map[string]*entry
	signer   *utils.TokenSigner
	ttl      time.Duration
	now      func() time.Time
}

func NewStore(signer *utils.TokenSigner, ttl time.Duration) *Store {
	return &Store{
		sessions: make(map[string]*entry),
		signer:   signer,
		ttl:      ttl,
		now:      time.Now,
	}
}

func (s *Store) TTL() time.Duration {
	return s.ttl
}

// Create opens a session bound to user and returns it with its signed token.
func (s *Store) Create(user models.User) (Session, error) {
	now := s.now()
	id := uuid.NewString()

	token, err := s.signer.Sign(id, now)
	if err != nil {
		return Session{}, err
	}

	e := &entry{token: token, user: user, createdAt: now, lastAccessedAt: now}

	s.mu.Lock()
	s.sessions[id] = e
	s.mu.Unlock()

	return e.snapshot(id), nil
}

// Resolve returns the live session named by token and extends its lifetime.
func (s *Store) Resolve(token string) (Session, error) {
	id, err := s.signer.Parse(token)
	if err != nil {
		return Session{}, ErrNoSession
	}

	now := s.now()

	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.sessions[id]
	if !ok {
		return Session{}, ErrNoSession
	}
	if s.expired(e, now) {
		delete(s.sessions, id)
		return Session{}, ErrNoSession
	}

	e.lastAccessedAt = now
	return e.snapshot(id), nil
}

// Invalidate ends the session named by token. Unknown tokens are ignored.
func (s *Store) Invalidate(token string) {
	id, err := s.signer.Parse(token)
	if err != nil {
		return
	}

	s.mu.Lock()
	delete(s.sessions, id)
	s.mu.Unlock()
}

// InvalidateUser ends every session bound to userID and returns how many were removed.
func (s *Store) InvalidateUser(userID int64) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	removed := 0
	for id, e := range s.sessions {
		if e.user.ID == userID {
			delete(s.sessions, id)
			removed++
		}
	}
	return removed
}

// Sweep drops expired sessions and returns how many were removed.
func (s *Store) Sweep() int {
	now := s.now()

	s.mu.Lock()
	defer s.mu.Unlock()

	removed := 0
	for id, e := range s.sessions {
		if s.expired(e, now) {
			delete(s.sessions, id)
			removed++
		}
	}
	return removed
}

// Len returns the number of stored sessions, expired ones included until swept.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}

// Start sweeps expired sessions every interval until ctx is cancelled.
// onSweep, when non-nil, receives the number of removed sessions.
func (s *Store) Start(ctx context.Context, interval time.Duration, onSweep func(removed int)) {
	ticker := time.NewTicker(interval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				removed := s.Sweep()
				if onSweep != nil {
					onSweep(removed)
				}
			}
		}
	}()
}

func (s *Store) expired(e *entry, now time.Time) bool {
	return now.Sub(e.lastAccessedAt) > s.ttl
}

func (e *entry) snapshot(id string) Session {
	return Session{
		ID:             id,
		Token:          e.token,
		User:           e.user,
		CreatedAt:      e.createdAt,
		LastAccessedAt: e.lastAccessedAt,
	}
}
