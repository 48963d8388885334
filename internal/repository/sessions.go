package repository

import (
	"context"
	"errors"
	"time"

	"github.com/Jeomhps/projet-IAC/reservations-api/internal/models"
	"github.com/Jeomhps/projet-IAC/reservations-api/internal/store"
)

// TokenIssuer mints the string handed to clients at login. The string is also
// the session record id, so it must be unique.
type TokenIssuer interface {
	Issue(userName string, issuedAt time.Time, expiresAt *time.Time) (string, error)
}

// IDIssuer hands out opaque tokens taken from an id generator.
type IDIssuer struct {
	IDs store.IDGenerator
}

func (i IDIssuer) Issue(string, time.Time, *time.Time) (string, error) {
	return i.IDs.NewID(), nil
}

// SessionStore keeps issued session tokens.
type SessionStore struct {
	sessions *store.Repository[models.SessionToken, *models.SessionToken]
	issuer   TokenIssuer
	ttl      time.Duration
	now      func() time.Time
}

type SessionOption func(*SessionStore)

// WithIssuer replaces the default opaque token issuer.
func WithIssuer(issuer TokenIssuer) SessionOption {
	return func(s *SessionStore) { s.issuer = issuer }
}

// WithTTL makes tokens expire ttl after login. Zero disables expiry.
func WithTTL(ttl time.Duration) SessionOption {
	return func(s *SessionStore) { s.ttl = ttl }
}

func WithClock(now func() time.Time) SessionOption {
	return func(s *SessionStore) { s.now = now }
}

func NewSessionStore(engine store.Engine, ids store.IDGenerator, opts ...SessionOption) *SessionStore {
	if ids == nil {
		ids = store.RandomIDs{}
	}
	s := &SessionStore{
		sessions: store.NewRepository[models.SessionToken](engine, sessionsCollection, ids),
		issuer:   IDIssuer{IDs: ids},
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// GenerateToken records a new session for userName and returns its token.
func (s *SessionStore) GenerateToken(ctx context.Context, userName string) (string, error) {
	now := s.now().UTC()
	sess := models.SessionToken{UserName: userName, CreatedAt: now}
	if s.ttl > 0 {
		exp := now.Add(s.ttl)
		sess.ExpiresAt = &exp
	}
	tok, err := s.issuer.Issue(userName, now, sess.ExpiresAt)
	if err != nil {
		return "", err
	}
	sess.ID = tok
	return s.sessions.Insert(ctx, sess)
}

// IsValidToken reports whether token names a stored, unexpired session.
func (s *SessionStore) IsValidToken(ctx context.Context, token string) (bool, error) {
	_, ok, err := s.TokenUser(ctx, token)
	return ok, err
}

// TokenUser returns the userName of the stored, unexpired session named by
// token. ok is false for unknown or expired tokens.
func (s *SessionStore) TokenUser(ctx context.Context, token string) (string, bool, error) {
	if token == "" {
		return "", false, nil
	}
	sess, err := s.sessions.Get(ctx, token)
	if errors.Is(err, store.ErrNotFound) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	if sess.Expired(s.now()) {
		return "", false, nil
	}
	return sess.UserName, true, nil
}

// InvalidateToken removes the session. Unknown tokens are ignored.
func (s *SessionStore) InvalidateToken(ctx context.Context, token string) error {
	return s.sessions.Delete(ctx, token)
}

// SweepExpired removes sessions whose expiry is at or before now and returns how
// many were removed.
func (s *SessionStore) SweepExpired(ctx context.Context, now time.Time) (int, error) {
	all, err := s.sessions.List(ctx)
	if err != nil {
		return 0, err
	}
	n := 0
	for _, sess := range all {
		if !sess.Expired(now) {
			continue
		}
		if err := s.sessions.Delete(ctx, sess.ID); err != nil {
			return n, err
		}
		n++
	}
	return n, nil
}
