// Package handlers wires the resource handlers into a gin engine.
package handlers

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Jeomhps/projet-IAC/reservations-api/internal/handlers/auth"
	"github.com/Jeomhps/projet-IAC/reservations-api/internal/handlers/reservations"
	"github.com/Jeomhps/projet-IAC/reservations-api/internal/metrics"
	"github.com/Jeomhps/projet-IAC/reservations-api/internal/middleware"
)

// RequestHandler is implemented by every resource handler. It routes on the
// HTTP method itself and writes at most one response.
type RequestHandler interface {
	HandleRequest(c *gin.Context)
}

// Authorizer is the subset of auth.Authorizer the handlers use.
type Authorizer interface {
	auth.Authorizer
	reservations.TokenValidator
}

type Deps struct {
	Authorizer   Authorizer
	Reservations reservations.Store
	Metrics      *metrics.Registry
	Logger       *slog.Logger
}

// NewRouter builds the engine serving /register, /login, /reservation and
// /reservation/{id}, plus /healthz and /metrics.
func NewRouter(d Deps) *gin.Engine {
	logger := d.Logger
	if logger == nil {
		logger = slog.Default()
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.RequestLogger(logger))
	if d.Metrics != nil {
		r.Use(middleware.Metrics(d.Metrics))
	}

	resH := reservations.New(d.Authorizer, d.Reservations, logger)
	routes := []struct {
		path    string
		handler RequestHandler
	}{
		{"/register", auth.NewRegister(d.Authorizer, logger)},
		{"/login", auth.NewLogin(d.Authorizer, logger)},
		{"/reservation", resH},
		{"/reservation/*id", resH},
	}
	for _, rt := range routes {
		r.Any(rt.path, rt.handler.HandleRequest)
	}

	r.GET("/healthz", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"status": "ok"}) })
	if d.Metrics != nil {
		r.GET("/metrics", gin.WrapH(d.Metrics.Handler()))
	}
	return r
}
