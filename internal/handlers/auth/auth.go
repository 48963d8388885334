// Package auth provides the /register and /login handlers.
package auth

import (
	"context"
	"log/slog"

	"github.com/Jeomhps/projet-IAC/reservations-api/internal/models"
)

// Each handler lives in its own file and only reacts to POST.

const msgCredentialsRequired = "userName and password required"

// Authorizer is what the handlers need from auth.Authorizer.
type Authorizer interface {
	RegisterUser(ctx context.Context, acc models.Account) (string, error)
	Login(ctx context.Context, userName, password string) (string, error)
}

// RegisterHandler serves /register.
type RegisterHandler struct {
	authorizer Authorizer
	logger     *slog.Logger
}

func NewRegister(a Authorizer, logger *slog.Logger) *RegisterHandler {
	return &RegisterHandler{authorizer: a, logger: logger}
}

// LoginHandler serves /login.
type LoginHandler struct {
	authorizer Authorizer
	logger     *slog.Logger
}

func NewLogin(a Authorizer, logger *slog.Logger) *LoginHandler {
	return &LoginHandler{authorizer: a, logger: logger}
}
