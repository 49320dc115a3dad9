package credential

import (
	"strings"
	"sync"
	"time"
)

// ValidityMargin is the safety window subtracted from the token expiry: a
// token expiring within the margin is treated as already invalid so that an
// upstream call never departs with a token about to lapse in flight.
const ValidityMargin = 60 * time.Second

// Credential is a point-in-time snapshot of the stored tokens. AccessToken
// and ExpiresAt are absent until the first successful refresh.
type Credential struct {
	AccessToken  string
	ExpiresAt    time.Time
	RefreshToken string
}

// Store holds the bearer token shared by all upstream calls. It is a pure
// state holder: only the token refresher mutates it, and always through
// Replace.
type Store struct {
	mu  sync.RWMutex
	cur Credential
	now func() time.Time
}

// NewStore seeds a store with the long-lived refresh token. The access token
// starts absent; the first authenticated call triggers a refresh.
func NewStore(refreshToken string) *Store {
	return &Store{
		cur: Credential{RefreshToken: strings.TrimSpace(refreshToken)},
		now: time.Now,
	}
}

// Valid reports whether the stored access token exists and its expiry is
// more than ValidityMargin in the future.
func (s *Store) Valid() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.cur.AccessToken == "" || s.cur.ExpiresAt.IsZero() {
		return false
	}
	return s.cur.ExpiresAt.After(s.now().Add(ValidityMargin))
}

func (s *Store) Snapshot() Credential {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cur
}

// HasRefreshToken reports whether a refresh credential is configured at all.
// Callers use this to decide if auth escalation is even possible.
func (s *Store) HasRefreshToken() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cur.RefreshToken != ""
}

// Replace installs a new access token and expiry in one step. The refresh
// token is replaced only when the provider rotated it (newRefreshToken
// non-empty); it is never cleared.
func (s *Store) Replace(accessToken string, expiresAt time.Time, newRefreshToken string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.cur.AccessToken = accessToken
	s.cur.ExpiresAt = expiresAt
	if rotated := strings.TrimSpace(newRefreshToken); rotated != "" {
		s.cur.RefreshToken = rotated
	}
}
