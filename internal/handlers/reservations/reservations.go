// Package reservations provides the bearer-protected /reservation handler.
package reservations

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Jeomhps/projet-IAC/reservations-api/internal/handlers/common"
	"github.com/Jeomhps/projet-IAC/reservations-api/internal/middleware"
	"github.com/Jeomhps/projet-IAC/reservations-api/internal/models"
)

// This file defines the handler type, the method switch and the token check.
// The methods are implemented in dedicated files:
// - get.go:    Handler.get (single record or "all")
// - create.go: Handler.create
// - update.go: Handler.update
// - delete.go: Handler.delete

const (
	msgIncomplete    = "Incomplete reservation!"
	msgMissingID     = "Please provide an ID!"
	msgInvalidFields = "Please provide valid fields to update!"
)

// TokenValidator resolves bearer tokens to the user they were issued for.
type TokenValidator interface {
	TokenUser(ctx context.Context, token string) (user string, ok bool, err error)
}

// Store is what the handler needs from repository.ReservationStore.
type Store interface {
	Create(ctx context.Context, r models.Reservation) (string, error)
	Get(ctx context.Context, id string) (models.Reservation, error)
	List(ctx context.Context) ([]models.Reservation, error)
	Update(ctx context.Context, id, field, value string) error
	Delete(ctx context.Context, id string) error
}

// Handler serves /reservation and /reservation/{id}.
type Handler struct {
	tokens TokenValidator
	store  Store
	logger *slog.Logger
}

func New(tokens TokenValidator, store Store, logger *slog.Logger) *Handler {
	return &Handler{tokens: tokens, store: store, logger: logger}
}

// HandleRequest ignores unsupported methods, then requires a valid token and
// dispatches on the method.
func (h *Handler) HandleRequest(c *gin.Context) {
	if !common.IsSupportedMethod(c.Request.Method) {
		return
	}
	if !h.authorize(c) {
		return
	}

	switch c.Request.Method {
	case http.MethodPost:
		h.create(c)
	case http.MethodGet:
		h.get(c)
	case http.MethodPut:
		h.update(c)
	case http.MethodDelete:
		h.delete(c)
	}
}

func (h *Handler) authorize(c *gin.Context) bool {
	token := common.BearerToken(c)
	if token == "" {
		common.Message(c, http.StatusUnauthorized, common.MsgUnauthorized)
		return false
	}
	user, ok, err := h.tokens.TokenUser(c.Request.Context(), token)
	if err != nil {
		common.InternalError(c, h.logger, "validate token", err)
		return false
	}
	if !ok {
		common.Message(c, http.StatusUnauthorized, common.MsgUnauthorized)
		return false
	}
	c.Set(middleware.KeyUser, user)
	return true
}

func notFound(c *gin.Context, id string) {
	common.Message(c, http.StatusNotFound, "Reservation with id "+id+" not found")
}
