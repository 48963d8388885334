// Package auth implements registration, login, logout and token validation on
// top of the credential and session stores.
package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/Jeomhps/projet-IAC/reservations-api/internal/metrics"
	"github.com/Jeomhps/projet-IAC/reservations-api/internal/models"
	"github.com/Jeomhps/projet-IAC/reservations-api/internal/password"
	"github.com/Jeomhps/projet-IAC/reservations-api/internal/store"
)

// Credentials is the part of the credential store the authorizer needs.
type Credentials interface {
	AddUser(ctx context.Context, acc models.Account) (string, error)
	GetUserByUserName(ctx context.Context, userName string) (models.Account, error)
}

// Sessions is the part of the session store the authorizer needs.
type Sessions interface {
	GenerateToken(ctx context.Context, userName string) (string, error)
	TokenUser(ctx context.Context, token string) (string, bool, error)
	InvalidateToken(ctx context.Context, token string) error
}

// PolicyError is returned by RegisterUser when password policy enforcement is
// on and the password breaks at least one rule.
type PolicyError struct {
	Reasons []password.ErrorKind
}

func (e *PolicyError) Error() string {
	parts := make([]string, len(e.Reasons))
	for i, r := range e.Reasons {
		parts[i] = string(r)
	}
	return "password does not meet policy: " + strings.Join(parts, ", ")
}

type Authorizer struct {
	credentials Credentials
	sessions    Sessions
	hasher      Hasher
	enforce     bool
	logger      *slog.Logger
	metrics     *metrics.Registry
	jwt         *JWTIssuer
}

type Option func(*Authorizer)

func WithHasher(h Hasher) Option {
	return func(a *Authorizer) { a.hasher = h }
}

// WithPasswordPolicy makes RegisterUser reject passwords that fail password.CheckPassword.
func WithPasswordPolicy(enforce bool) Option {
	return func(a *Authorizer) { a.enforce = enforce }
}

func WithLogger(l *slog.Logger) Option {
	return func(a *Authorizer) { a.logger = l }
}

func WithMetrics(m *metrics.Registry) Option {
	return func(a *Authorizer) { a.metrics = m }
}

// WithJWTVerification rejects tokens whose signature or claims do not verify
// before the session store is consulted.
func WithJWTVerification(j *JWTIssuer) Option {
	return func(a *Authorizer) { a.jwt = j }
}

func NewAuthorizer(credentials Credentials, sessions Sessions, opts ...Option) *Authorizer {
	a := &Authorizer{
		credentials: credentials,
		sessions:    sessions,
		hasher:      BcryptHasher{},
		logger:      slog.Default(),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// RegisterUser stores acc with its password hashed and returns the new id.
func (a *Authorizer) RegisterUser(ctx context.Context, acc models.Account) (string, error) {
	if a.enforce {
		if res := password.CheckPassword(acc.Password); !res.Valid {
			return "", &PolicyError{Reasons: res.Reasons}
		}
	}
	return a.register(ctx, acc)
}

func (a *Authorizer) register(ctx context.Context, acc models.Account) (string, error) {
	hash, err := a.hasher.Hash(acc.Password)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	acc.ID = ""
	acc.Password = hash
	id, err := a.credentials.AddUser(ctx, acc)
	if err != nil {
		return "", err
	}
	a.logger.Info("account registered", "user", acc.UserName, "id", id)
	return id, nil
}

// Login returns a new session token, or "" with a nil error when the userName is
// unknown or the password does not match.
func (a *Authorizer) Login(ctx context.Context, userName, pass string) (string, error) {
	acc, err := a.credentials.GetUserByUserName(ctx, userName)
	if errors.Is(err, store.ErrNotFound) {
		a.metrics.ObserveLogin("rejected")
		return "", nil
	}
	if err != nil {
		a.metrics.ObserveLogin("error")
		return "", err
	}
	if !a.hasher.Compare(acc.Password, pass) {
		a.metrics.ObserveLogin("rejected")
		return "", nil
	}
	tok, err := a.sessions.GenerateToken(ctx, acc.UserName)
	if err != nil {
		a.metrics.ObserveLogin("error")
		return "", err
	}
	a.metrics.ObserveLogin("success")
	return tok, nil
}

// Logout invalidates token. Unknown tokens are not an error.
func (a *Authorizer) Logout(ctx context.Context, token string) error {
	return a.sessions.InvalidateToken(ctx, token)
}

func (a *Authorizer) ValidateToken(ctx context.Context, token string) (bool, error) {
	_, ok, err := a.TokenUser(ctx, token)
	return ok, err
}

// TokenUser resolves a valid token to the userName it was issued for.
func (a *Authorizer) TokenUser(ctx context.Context, token string) (string, bool, error) {
	if a.jwt != nil {
		if _, err := a.jwt.Parse(token); err != nil {
			return "", false, nil
		}
	}
	return a.sessions.TokenUser(ctx, token)
}

// EnsureAdmin registers the default admin account when no account with that
// userName exists yet. The password must pass password.CheckAdminPassword.
func (a *Authorizer) EnsureAdmin(ctx context.Context, userName, pass string) (bool, error) {
	if userName == "" || pass == "" {
		return false, nil
	}
	if res := password.CheckAdminPassword(pass); !res.Valid {
		return false, &PolicyError{Reasons: res.Reasons}
	}
	_, err := a.credentials.GetUserByUserName(ctx, userName)
	if err == nil {
		return false, nil
	}
	if !errors.Is(err, store.ErrNotFound) {
		return false, err
	}
	if _, err := a.register(ctx, models.Account{UserName: userName, Password: pass}); err != nil {
		return false, err
	}
	return true, nil
}
