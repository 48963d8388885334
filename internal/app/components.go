// Package app assembles the stores, authorizer and HTTP server from
// configuration and exposes them as CLI commands.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/Jeomhps/projet-IAC/reservations-api/internal/auth"
	"github.com/Jeomhps/projet-IAC/reservations-api/internal/config"
	"github.com/Jeomhps/projet-IAC/reservations-api/internal/db"
	"github.com/Jeomhps/projet-IAC/reservations-api/internal/metrics"
	"github.com/Jeomhps/projet-IAC/reservations-api/internal/repository"
	"github.com/Jeomhps/projet-IAC/reservations-api/internal/store"
	"github.com/Jeomhps/projet-IAC/reservations-api/internal/sweeper"
)

// sweepLockName is the MySQL named lock held while sweeping sessions.
const sweepLockName = "reservations-session-sweep"

// Components is everything a command may need. Close releases the engine.
type Components struct {
	Engine       store.Engine
	Sessions     *repository.SessionStore
	Reservations *repository.ReservationStore
	Authorizer   *auth.Authorizer
	Metrics      *metrics.Registry
}

// Sweeper returns the session sweeper for cfg. On MySQL the sweep runs under
// a named lock so replicas do not race.
func (c *Components) Sweeper(cfg config.Config, logger *slog.Logger) sweeper.Sweeper {
	sw := sweeper.Sweeper{
		Sessions: c.Sessions,
		Interval: cfg.Auth.SweepInterval,
		Logger:   logger,
		Metrics:  c.Metrics,
	}
	if d, ok := c.Engine.(*db.DB); ok {
		sw.Locker = db.SweepLock{DB: d, Name: sweepLockName}
	}
	return sw
}

func (c *Components) Close() error {
	return c.Engine.Close()
}

// OpenEngine opens the storage backend named by cfg.Storage.Backend.
func OpenEngine(ctx context.Context, cfg config.Config, logger *slog.Logger) (store.Engine, error) {
	switch cfg.Storage.Backend {
	case config.BackendMemory:
		return store.NewMemoryEngine(), nil
	case config.BackendBadger:
		return store.NewBadgerEngine(store.BadgerConfig{Dir: cfg.Storage.DataDir}, logger)
	case config.BackendMySQL:
		d, err := db.Open(cfg.DSN())
		if err != nil {
			return nil, fmt.Errorf("db: %w", err)
		}
		if err := db.EnsureSchema(ctx, d); err != nil {
			_ = d.Close()
			return nil, fmt.Errorf("ensure schema: %w", err)
		}
		return d, nil
	}
	return nil, fmt.Errorf("unknown storage backend %q", cfg.Storage.Backend)
}

// Build wires the stores and the authorizer on top of engine.
func Build(cfg config.Config, engine store.Engine, logger *slog.Logger) (*Components, error) {
	m := metrics.NewRegistry()
	ids := store.RandomIDs{}

	sessOpts := []repository.SessionOption{repository.WithTTL(cfg.Auth.SessionTTL)}
	authOpts := []auth.Option{
		auth.WithHasher(auth.BcryptHasher{Cost: cfg.Auth.BcryptCost}),
		auth.WithPasswordPolicy(cfg.Auth.EnforcePasswordPolicy),
		auth.WithLogger(logger),
		auth.WithMetrics(m),
	}
	if cfg.Auth.TokenFormat == config.TokenJWT {
		issuer, err := auth.NewJWTIssuer(cfg.Auth.JWTSecret)
		if err != nil {
			return nil, err
		}
		sessOpts = append(sessOpts, repository.WithIssuer(issuer))
		authOpts = append(authOpts, auth.WithJWTVerification(issuer))
	}

	sessions := repository.NewSessionStore(engine, ids, sessOpts...)
	a := auth.NewAuthorizer(repository.NewCredentialStore(engine, ids), sessions, authOpts...)

	return &Components{
		Engine:       engine,
		Sessions:     sessions,
		Reservations: repository.NewReservationStore(engine, ids),
		Authorizer:   a,
		Metrics:      m,
	}, nil
}

// SeedAdmin registers the configured default admin. A password that fails the
// admin policy is logged and skipped.
func SeedAdmin(ctx context.Context, cfg config.Config, a *auth.Authorizer, logger *slog.Logger) error {
	created, err := a.EnsureAdmin(ctx, cfg.Auth.AdminDefaultUser, cfg.Auth.AdminDefaultPass)
	var perr *auth.PolicyError
	if errors.As(err, &perr) {
		logger.Warn("default admin not created", "user", cfg.Auth.AdminDefaultUser, "reasons", perr.Reasons)
		return nil
	}
	if err != nil {
		return fmt.Errorf("ensure default admin: %w", err)
	}
	if created {
		logger.Info("default admin created", "user", cfg.Auth.AdminDefaultUser)
	}
	return nil
}
