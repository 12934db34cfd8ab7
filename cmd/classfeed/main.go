package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "golang.org/x/crypto/x509roots/fallback" // Embed CA certs for scratch container
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/ericfisherdev/classfeed/internal/adapter/driven/classroom"
	sqliteadapter "github.com/ericfisherdev/classfeed/internal/adapter/driven/sqlite"
	"github.com/ericfisherdev/classfeed/internal/adapter/driving/cli"
	httphandler "github.com/ericfisherdev/classfeed/internal/adapter/driving/http"
	"github.com/ericfisherdev/classfeed/internal/application"
	"github.com/ericfisherdev/classfeed/internal/config"
)

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	// 1. Load configuration (fail fast on malformed values).
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, "classfeed:", err)
		return 1
	}

	// 2. Logging: warnings only on stderr unless --verbose or serve raise it.
	level := new(slog.LevelVar)
	level.Set(slog.LevelWarn)
	logOut, closeLog := logWriter(cfg)
	defer closeLog()
	slog.SetDefault(slog.New(slog.NewTextHandler(logOut, &slog.HandlerOptions{Level: level})))

	for _, w := range cfg.Warnings() {
		slog.Warn("configuration warning", "detail", w)
	}

	// 3. Setup signal-based context (SIGINT, SIGTERM).
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 4. Open database (dual reader/writer with WAL mode) and migrate.
	db, err := sqliteadapter.NewDB(ctx, cfg.DBPath)
	if err != nil {
		slog.Error("open database", "error", err)
		return 1
	}
	defer func() {
		if closeErr := db.Close(); closeErr != nil {
			slog.Error("error closing database", "error", closeErr)
		}
	}()
	if err := sqliteadapter.RunMigrations(db.Writer); err != nil {
		slog.Error("run migrations", "error", err)
		return 1
	}

	// 5. Wire adapters and services. Sign-in goes through an unauthenticated
	// client; everything else carries the session's token.
	secretStore := sqliteadapter.NewSecretRepo(db, cfg.SecretKey)
	profileStore := sqliteadapter.NewProfileRepo(db)

	authClient := classroom.NewClient(cfg.BaseURL, cfg.APIKey, nil, cfg.RequestTimeout)
	session := application.NewSessionService(authClient, secretStore, profileStore)
	apiClient := classroom.NewClient(cfg.BaseURL, cfg.APIKey, session, cfg.RequestTimeout)

	feed := application.NewFeedService(apiClient, session)
	classmates := application.NewClassmateService(apiClient)

	// 6. Restore a persisted session, if any.
	if err := session.Restore(ctx); err != nil {
		slog.Warn("could not restore session", "error", err)
	}

	app := &cli.App{
		Session:    session,
		Feed:       feed,
		Classmates: classmates,
		LogLevel:   level,
		Serve: func(ctx context.Context) error {
			if level.Level() > slog.LevelInfo {
				level.Set(slog.LevelInfo)
			}
			if cfg.FeedRefresh > 0 {
				go application.NewFeedRefresher(feed, cfg.FeedRefresh).Start(ctx)
			}
			h := httphandler.NewHandler(session, feed, classmates, slog.Default())
			return serve(ctx, cfg.ListenAddr, httphandler.NewServeMux(h, slog.Default()))
		},
	}

	return cli.Execute(ctx, app, args)
}

// logWriter returns stderr, or a rotating file when CLASSFEED_LOG_FILE is set.
func logWriter(cfg *config.Config) (io.Writer, func()) {
	if cfg.LogFile == "" {
		return os.Stderr, func() {}
	}

	lj := &lumberjack.Logger{
		Filename:   cfg.LogFile,
		MaxSize:    10, // megabytes
		MaxBackups: 3,
		MaxAge:     28, // days
		Compress:   true,
	}
	return lj, func() { _ = lj.Close() }
}

// serve runs the local HTTP API until ctx is cancelled, then drains it.
func serve(ctx context.Context, addr string, handler http.Handler) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("http server starting", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	case <-ctx.Done():
	}
	slog.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("http server shutdown: %w", err)
	}

	slog.Info("shutdown complete")
	return nil
}
