// Package main starts the CapTrack development backend: an in-memory
// stand-in for the real capstone service, useful for running the client
// and its integration tests without network access to the school server.
package main

import (
	"cmp"
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/jcarandang/captrack/internal/config"
	"github.com/jcarandang/captrack/internal/devserver"
	"github.com/jcarandang/captrack/internal/logger"
)

var (
	// version holds the build version set via ldflags.
	version string
	// buildDate holds the build timestamp set via ldflags.
	buildDate string
)

func main() {
	options := config.Parse()

	// Print build metadata (or "N/A" if unset).
	fmt.Printf("Build version: %s\n", cmp.Or(version, "N/A"))
	fmt.Printf("Build date: %s\n", cmp.Or(buildDate, "N/A"))

	zl, err := logger.New(options.LogLevel)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	defer zl.Sync()

	// Fresh signing secret per run; tokens do not survive a restart, which
	// is exactly the expiry path the client needs to handle.
	secret := make([]byte, 32)
	if _, err := rand.Read(secret); err != nil {
		zl.Fatal("failed to generate signing secret", zap.Error(err))
	}

	store := devserver.NewStore()
	store.Seed()

	handler := &devserver.Handler{Store: store, Secret: secret}
	srv := &http.Server{
		Addr:    options.Addr,
		Handler: devserver.NewRouter(handler, zl),
	}

	go func() {
		zl.Info("dev server listening", zap.String("addr", options.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zl.Fatal("server failed", zap.Error(err))
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		zl.Error("shutdown failed", zap.Error(err))
	}
}
