package main

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/MyNameIsWhaaat/replythread/internal/config"
	threadhttp "github.com/MyNameIsWhaaat/replythread/internal/thread/handler/http"
	"github.com/MyNameIsWhaaat/replythread/internal/thread/identity"
	"github.com/MyNameIsWhaaat/replythread/internal/thread/service"
	"github.com/MyNameIsWhaaat/replythread/internal/thread/storage"
	"github.com/MyNameIsWhaaat/replythread/internal/thread/storage/inmemory"
	"github.com/MyNameIsWhaaat/replythread/internal/thread/storage/postgres"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run() error {
	_ = godotenv.Load()
	cfg := config.Load()

	logger := zapLogger(os.Stdout)
	defer func() {
		_ = logger.Sync()
	}()

	var repo storage.Repository
	if cfg.DatabaseURL != "" {
		pg, err := postgres.Open(cfg.DatabaseURL)
		if err != nil {
			return fmt.Errorf("connect postgres: %w", err)
		}
		repo = pg
		logger.Info("using postgres storage")
	} else {
		repo = inmemory.New()
		logger.Info("using in-memory storage")
	}
	defer repo.Close()

	var idp identity.Provider
	if cfg.RedisURL != "" {
		sessions, err := identity.NewSessionStore(cfg.RedisURL)
		if err != nil {
			return fmt.Errorf("connect redis: %w", err)
		}
		defer sessions.Close()
		idp = sessions
		logger.Info("using redis session identity")
	} else {
		idp = identity.Static{AuthorID: cfg.DevAuthorID}
		logger.Info("using static dev identity", zap.String("author_id", cfg.DevAuthorID))
	}

	svc := service.New(repo, idp, logger)
	h := threadhttp.New(svc, logger)

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           h.Routes(),
		IdleTimeout:       3 * time.Minute,
		ReadHeaderTimeout: time.Minute,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server started", zap.String("address", srv.Addr))
		if err := srv.ListenAndServe(); err != http.ErrServerClosed {
			errCh <- err
			return
		}
		errCh <- nil
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	select {
	case sig := <-stop:
		logger.Warn("got signal, shutting down", zap.String("signal", sig.String()))
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return err
		}
		return <-errCh
	case err := <-errCh:
		return err
	}
}

var encoderCfg = zapcore.EncoderConfig{
	MessageKey: "msg",
	NameKey:    "name",

	LevelKey:    "level",
	EncodeLevel: zapcore.CapitalLevelEncoder,

	CallerKey:    "caller",
	EncodeCaller: zapcore.ShortCallerEncoder,

	TimeKey:    "time",
	EncodeTime: zapcore.RFC3339TimeEncoder,
}

func zapLogger(w io.Writer) *zap.Logger {
	return zap.New(
		zapcore.NewCore(
			zapcore.NewJSONEncoder(encoderCfg),
			zapcore.Lock(zapcore.AddSync(w)),
			zapcore.InfoLevel,
		),
		zap.AddCaller(),
	)
}
