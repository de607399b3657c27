package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/spf13/cobra"

	"github.com/hangyu-feng/myplan-calendar/internal/extract"
	appLog "github.com/hangyu-feng/myplan-calendar/internal/log"
	"github.com/hangyu-feng/myplan-calendar/internal/session"
	"github.com/hangyu-feng/myplan-calendar/internal/source"
	"github.com/hangyu-feng/myplan-calendar/internal/web"
)

func newServeCmd(a *app) *cobra.Command {
	var listen string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the calendar API and viewer, rebuilding on the refresh schedule",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			// CLI --listen overrides config file listen if provided.
			if listen != "" {
				a.cfg.Listen = listen
			}
			return a.serve(cmd.Context())
		},
	}
	cmd.Flags().StringVar(&listen, "listen", "", "HTTP listen address (overrides config if set)")
	return cmd
}

func (a *app) serve(parent context.Context) error {
	if parent == nil {
		parent = context.Background()
	}
	appLog.Info("myplancal starting", "version", version, "listen", a.cfg.Listen, "source", a.cfg.Source.Kind)

	// Root context with cancellation on SIGINT/SIGTERM.
	ctx, stop := signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
	defer stop()

	src, err := source.New(a.cfg.Source)
	if err != nil {
		return err
	}
	sessions := session.NewManager(a.cfg.PopoverWidth, nil)
	srv := web.NewServer(a.cfg, src, sessions)

	refresh := func() {
		if _, err := srv.Reload(ctx); err != nil {
			if errors.Is(err, extract.ErrNoCourses) {
				appLog.Warn("refresh found no courses; keeping current calendar")
				return
			}
			appLog.Error("refresh failed", err)
		}
	}

	// Initial build so the first request is served immediately.
	refresh()

	c := cron.New()
	if _, err := c.AddFunc(a.cfg.RefreshCron, refresh); err != nil {
		appLog.Error("invalid refresh schedule", err, "refresh", a.cfg.RefreshCron)
		return err
	}
	c.Start()
	defer func() {
		<-c.Stop().Done()
	}()

	httpSrv := &http.Server{
		Addr:              a.cfg.Listen,
		Handler:           srv.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		appLog.Info("starting HTTP server", "listen", "http://"+a.cfg.Listen)
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			appLog.Error("HTTP server failed", err)
			return err
		}
	case <-ctx.Done():
		appLog.Info("signal received, shutting down")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		appLog.Error("HTTP shutdown failed", err)
	}
	sessions.Close()
	appLog.Info("myplancal exiting")
	return nil
}
