package main

import (
	"context"
	"errors"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/taskdog/taskdog/internal/broadcast"
	"github.com/taskdog/taskdog/internal/calendar"
	"github.com/taskdog/taskdog/internal/config"
	"github.com/taskdog/taskdog/internal/holiday"
	"github.com/taskdog/taskdog/internal/logger"
	"github.com/taskdog/taskdog/internal/notes"
	"github.com/taskdog/taskdog/internal/server"
	"github.com/taskdog/taskdog/internal/taskdog"
)

func newServeCommand() *cobra.Command {
	var host string
	var port int

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP/WS server",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(cfgFile)
			if err != nil {
				return err
			}
			if host != "" {
				cfg.ServerHost = host
			}
			if port != 0 {
				cfg.ServerPort = port
			}

			log := newLoggerFromConfig(cfg)
			ctx := logger.WithLogger(cmd.Context(), log)

			core, closeRepo, err := buildService(ctx, cfg)
			if err != nil {
				return err
			}
			defer closeRepo()

			srv := server.New(core, cfg.CORSOrigins)
			addr := net.JoinHostPort(cfg.ServerHost, strconv.Itoa(cfg.ServerPort))
			httpServer := &http.Server{Addr: addr, Handler: srv}

			logger.Info(ctx, "starting server", "addr", addr, "storage", cfg.Storage)

			errCh := make(chan error, 1)
			go func() {
				if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					errCh <- err
				}
			}()

			sigCtx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			select {
			case err := <-errCh:
				return err
			case <-sigCtx.Done():
				logger.Info(ctx, "shutting down")
				shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
				defer cancel()
				return httpServer.Shutdown(shutdownCtx)
			}
		},
	}
	cmd.Flags().StringVar(&host, "host", "", "override server_host")
	cmd.Flags().IntVar(&port, "port", 0, "override server_port")
	return cmd
}

// buildService wires config into a runnable taskdog.Service: the
// storage driver, the notes store, an optional holiday checker
// refreshed on cfg.HolidayRefreshCron, and the broadcaster.
func buildService(ctx context.Context, cfg *config.Config) (*taskdog.Service, func() error, error) {
	repo, closeRepo, err := openRepository(ctx, cfg)
	if err != nil {
		return nil, nil, err
	}
	if closeRepo == nil {
		closeRepo = func() error { return nil }
	}

	if err := os.MkdirAll(cfg.DataDir, 0o755); err != nil {
		return nil, nil, err
	}
	notesStore, err := notes.NewStore(notesDirFor(cfg))
	if err != nil {
		return nil, closeRepo, err
	}

	var checker calendar.HolidayChecker
	hc, err := holiday.NewChecker(holiday.StaticSource{})
	if err != nil {
		return nil, closeRepo, err
	}
	if cfg.HolidayRefreshCron != "" {
		if _, err := hc.StartPeriodicRefresh(cfg.HolidayRefreshCron, func(err error) {
			logger.Error(ctx, "holiday refresh failed", "error", err)
		}); err != nil {
			return nil, closeRepo, err
		}
	}
	checker = hc

	bus := broadcast.New()
	core := taskdog.New(repo, notesStore, checker, bus, cfg, time.Now)
	return core, closeRepo, nil
}

func notesDirFor(cfg *config.Config) string {
	if cfg.NotesDir == "" {
		return cfg.DataDir
	}
	if os.IsPathSeparator(cfg.NotesDir[0]) {
		return cfg.NotesDir
	}
	return cfg.DataDir + string(os.PathSeparator) + cfg.NotesDir
}

func newLoggerFromConfig(cfg *config.Config) logger.Logger {
	opts := []logger.Option{logger.WithFormat(cfg.LogFormat)}
	if cfg.LogDebug {
		opts = append(opts, logger.WithDebug())
	}
	if cfg.LogFile != "" {
		opts = append(opts, logger.WithRotatingLogFile(cfg.LogFile, 50))
	}
	return logger.NewLogger(opts...)
}
