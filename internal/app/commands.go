package app

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/urfave/cli/v2"

	"github.com/Jeomhps/projet-IAC/reservations-api/internal/config"
	"github.com/Jeomhps/projet-IAC/reservations-api/internal/handlers"
	"github.com/Jeomhps/projet-IAC/reservations-api/internal/logging"
	"github.com/Jeomhps/projet-IAC/reservations-api/internal/password"
	"github.com/Jeomhps/projet-IAC/reservations-api/internal/seed"
)

// New returns the CLI application. serve is the default command.
func New() *cli.App {
	return &cli.App{
		Name:  "reservations-api",
		Usage: "authenticated reservation service",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "path to a YAML config file",
				EnvVars: []string{"RESERVATIONS_CONFIG"},
			},
		},
		Action: serve,
		Commands: []*cli.Command{
			{
				Name:   "serve",
				Usage:  "run the HTTP server",
				Action: serve,
			},
			{
				Name:      "seed",
				Usage:     "register accounts and create reservations from a YAML file",
				ArgsUsage: "--file seed.yml",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "file", Aliases: []string{"f"}, Required: true},
				},
				Action: seedCmd,
			},
			{
				Name:      "revoke-token",
				Usage:     "invalidate a session token",
				ArgsUsage: "<token>",
				Action:    revokeToken,
			},
			{
				Name:      "check-password",
				Usage:     "evaluate a password against the policy",
				ArgsUsage: "<password>",
				Flags: []cli.Flag{
					&cli.BoolFlag{Name: "admin", Usage: "apply the admin rules"},
				},
				Action: checkPassword,
			},
		},
	}
}

func load(c *cli.Context) (config.Config, *slog.Logger, error) {
	cfg, err := config.Load(c.String("config"))
	if err != nil {
		return cfg, nil, err
	}
	logger := logging.New(logging.Config{Level: cfg.Log.Level, Format: cfg.Log.Format})
	return cfg, logger, nil
}

func open(ctx context.Context, cfg config.Config, logger *slog.Logger) (*Components, error) {
	engine, err := OpenEngine(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}
	comps, err := Build(cfg, engine, logger)
	if err != nil {
		_ = engine.Close()
		return nil, err
	}
	return comps, nil
}

func serve(c *cli.Context) error {
	cfg, logger, err := load(c)
	if err != nil {
		return err
	}
	logger.Info("configuration loaded", "config", cfg.String())

	ctx, cancel := signal.NotifyContext(c.Context, syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	comps, err := open(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer comps.Close()

	if err := SeedAdmin(ctx, cfg, comps.Authorizer, logger); err != nil {
		logger.Error("seed admin", "error", err)
	}

	if cfg.Auth.SessionTTL > 0 {
		go comps.Sweeper(cfg, logger).Run(ctx)
	}

	gin.SetMode(gin.ReleaseMode)
	router := handlers.NewRouter(handlers.Deps{
		Authorizer:   comps.Authorizer,
		Reservations: comps.Reservations,
		Metrics:      comps.Metrics,
		Logger:       logger,
	})
	srv := &http.Server{Addr: cfg.Server.Addr, Handler: router}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("listening", "addr", cfg.Server.Addr, "backend", cfg.Storage.Backend)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, stop := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer stop()
	return srv.Shutdown(shutdownCtx)
}

func seedCmd(c *cli.Context) error {
	cfg, logger, err := load(c)
	if err != nil {
		return err
	}
	if cfg.Storage.Backend == config.BackendMemory {
		logger.Warn("seeding the memory backend has no lasting effect")
	}
	f, err := seed.Load(c.String("file"))
	if err != nil {
		return err
	}
	comps, err := open(c.Context, cfg, logger)
	if err != nil {
		return err
	}
	defer comps.Close()

	rep := seed.Apply(c.Context, f, comps.Authorizer, comps.Reservations, c.App.Writer)
	fmt.Fprintf(c.App.Writer, "accounts=%d reservations=%d skipped=%d failed=%d\n",
		rep.Accounts, rep.Reservations, rep.Skipped, rep.Failed)
	if rep.Failed > 0 {
		return cli.Exit("some entries failed", 2)
	}
	return nil
}

func revokeToken(c *cli.Context) error {
	token := c.Args().First()
	if token == "" {
		return cli.Exit("token argument required", 1)
	}
	cfg, logger, err := load(c)
	if err != nil {
		return err
	}
	comps, err := open(c.Context, cfg, logger)
	if err != nil {
		return err
	}
	defer comps.Close()

	if err := comps.Authorizer.Logout(c.Context, token); err != nil {
		return err
	}
	fmt.Fprintln(c.App.Writer, "revoked")
	return nil
}

func checkPassword(c *cli.Context) error {
	candidate := c.Args().First()
	res := password.CheckPassword(candidate)
	if c.Bool("admin") {
		res = password.CheckAdminPassword(candidate)
	}
	b, err := json.Marshal(res)
	if err != nil {
		return err
	}
	fmt.Fprintln(c.App.Writer, string(b))
	if !res.Valid {
		return cli.Exit("", 1)
	}
	return nil
}
