package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
	"go.uber.org/zap"

	"github.com/goliatone/go-paramform"
	"github.com/goliatone/go-paramform/pkg/config"
	"github.com/goliatone/go-paramform/pkg/logging"
)

const shutdownTimeout = 5 * time.Second

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	os.Exit(run(ctx, os.Args[1:], os.Stderr))
}

func run(ctx context.Context, args []string, stderr io.Writer) int {
	cfg, err := parseArgs(args, stderr)
	if errors.Is(err, pflag.ErrHelp) {
		return 0
	}
	if err != nil {
		fmt.Fprintf(stderr, "paramserver: %v\n", err)
		return 2
	}

	logger := logging.New(cfg.Log)
	defer func() { _ = logger.Sync() }()

	srv, store, err := paramform.NewServer(cfg, logger)
	if err != nil {
		fmt.Fprintf(stderr, "paramserver: %v\n", err)
		return 1
	}
	logger.Info("parameter server starting",
		zap.String("addr", cfg.Server.Addr),
		zap.Int("parameters", len(store.Names())))

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start(cfg.Server.Addr)
	}()

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("parameter server stopped", zap.Error(err))
			return 1
		}
		return 0
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("parameter server shutdown failed", zap.Error(err))
		return 1
	}
	logger.Info("parameter server stopped")
	return 0
}

func parseArgs(args []string, stderr io.Writer) (config.Config, error) {
	var (
		configPath string
		envFile    string
		addr       string
		seed       string
		bodyLimit  string
	)
	fset := pflag.NewFlagSet("paramserver", pflag.ContinueOnError)
	fset.SetOutput(stderr)
	fset.Usage = func() {
		fmt.Fprintf(stderr, "Usage: %s [flags]\n\nServe parameters over HTTP from an in-memory store.\n\n", filepath.Base(os.Args[0]))
		fset.PrintDefaults()
	}
	fset.StringVarP(&configPath, "config", "c", "", "config file (yaml or json)")
	fset.StringVar(&envFile, "env-file", ".env", "dotenv file loaded before reading the environment")
	fset.StringVarP(&addr, "addr", "a", "", "listen address")
	fset.StringVarP(&seed, "seed", "s", "", "parameter file loaded into the store at start")
	fset.StringVar(&bodyLimit, "body-limit", "", "maximum request body size (e.g. 4M)")
	if err := fset.Parse(args); err != nil {
		return config.Config{}, err
	}

	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return config.Config{}, fmt.Errorf("load %s: %w", envFile, err)
		}
	}
	cfg, err := config.Load(configPath)
	if err != nil {
		return config.Config{}, err
	}
	if fset.Changed("addr") {
		cfg.Server.Addr = addr
	}
	if fset.Changed("seed") {
		cfg.Server.Seed = seed
	}
	if fset.Changed("body-limit") {
		cfg.Server.BodyLimit = bodyLimit
	}
	if cfg.Server.Addr == "" {
		return config.Config{}, errors.New("listen address is required")
	}
	return cfg, nil
}
