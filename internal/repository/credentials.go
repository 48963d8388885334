// Package repository provides the typed stores behind the authorizer and the
// reservation handlers. Each store owns one collection of a store.Engine.
package repository

import (
	"context"

	"github.com/Jeomhps/projet-IAC/reservations-api/internal/models"
	"github.com/Jeomhps/projet-IAC/reservations-api/internal/store"
)

const (
	accountsCollection     = "accounts"
	sessionsCollection     = "sessions"
	reservationsCollection = "reservations"
)

// CredentialStore keeps registered accounts.
type CredentialStore struct {
	accounts *store.Repository[models.Account, *models.Account]
}

func NewCredentialStore(engine store.Engine, ids store.IDGenerator) *CredentialStore {
	return &CredentialStore{accounts: store.NewRepository[models.Account](engine, accountsCollection, ids)}
}

// AddUser stores acc and returns its new id.
func (s *CredentialStore) AddUser(ctx context.Context, acc models.Account) (string, error) {
	return s.accounts.Insert(ctx, acc)
}

// GetUserByID returns store.ErrNotFound for unknown ids.
func (s *CredentialStore) GetUserByID(ctx context.Context, id string) (models.Account, error) {
	return s.accounts.Get(ctx, id)
}

// GetUserByUserName returns the first account registered under userName.
func (s *CredentialStore) GetUserByUserName(ctx context.Context, userName string) (models.Account, error) {
	return s.accounts.FindFirst(ctx, func(a models.Account) bool { return a.UserName == userName })
}
