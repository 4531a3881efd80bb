// Command healthctl is a terminal client for the HealthTrack API.
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"

	"github.com/healthtrack/healthtrack/internal/client/api"
	"github.com/healthtrack/healthtrack/internal/client/authbridge"
	"github.com/healthtrack/healthtrack/internal/client/cli"
	"github.com/healthtrack/healthtrack/internal/client/config"
	"github.com/healthtrack/healthtrack/internal/client/kv"
	"github.com/healthtrack/healthtrack/internal/client/session"
	"github.com/healthtrack/healthtrack/pkg/logger"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	code, err := run(ctx, os.Args[1:])
	stop()
	if err != nil {
		fmt.Fprintln(os.Stderr, "healthctl:", err)
	}
	os.Exit(code)
}

func run(ctx context.Context, args []string) (int, error) {
	cfg, err := config.Load(ctx)
	if err != nil {
		return 1, err
	}
	log := logger.New(logger.Options{Level: cfg.LogLevel, Pretty: true, Output: os.Stderr, Service: "healthctl"})

	if err := os.MkdirAll(filepath.Dir(cfg.SessionDB), 0o700); err != nil {
		return 1, fmt.Errorf("create session dir: %w", err)
	}
	db, err := kv.Open(ctx, cfg.SessionDB)
	if err != nil {
		return 1, err
	}
	defer db.Close()

	store := session.NewStore(kv.NewStore(db), logger.Component(log, "session"))
	bridge := authbridge.New()

	var doer api.Doer = &http.Client{Timeout: cfg.Timeout}
	if cfg.RetryAttempts > 0 {
		doer = api.NewRetryDoer(doer, cfg.RetryAttempts, cfg.RetryBase)
	}
	client := api.New(cfg.APIURL, store,
		api.WithDoer(doer),
		api.WithUnauthorizedHandler(bridge.Signal),
		api.WithLogger(logger.Component(log, "api")),
	)

	app := cli.New(client, store, bridge, authbridge.DefaultLogoutDelay, cli.WithLogger(log))
	return app.Run(ctx, args), nil
}
