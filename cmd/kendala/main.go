// Package main is the entry point for the kendala CLI.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"

	"github.com/kendala/planner/internal/cli"
	"github.com/kendala/planner/internal/client"
	"github.com/kendala/planner/internal/config"
	"github.com/kendala/planner/internal/localcache"
	"github.com/kendala/planner/internal/logger"
	"github.com/kendala/planner/internal/session"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.LoadClient()
	if err != nil {
		return err
	}

	log, logFile, err := logger.New(logger.Config{Debug: cfg.Debug, DataDir: cfg.DataDir})
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer logFile.Close()

	cache, err := localcache.Open(filepath.Join(cfg.DataDir, localcache.FileName))
	if err != nil {
		return err
	}
	defer cache.Close()

	sess, err := session.NewManager(session.KeyringKeeper{})
	if err != nil {
		return err
	}

	app := &cli.App{
		Remote:  client.New(cfg.APIURL, client.WithLogger(log)),
		Session: sess,
		Cache:   cache,
		Log:     log,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	return cli.NewRootCmd(app).ExecuteContext(ctx)
}
