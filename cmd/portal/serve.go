package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"complaintportal/internal/handler"
	"complaintportal/internal/pkg/logx"
)

const shutdownTimeout = 5 * time.Second

func newServeCmd(app *cliApp) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the local portal HTTP server.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return app.serve(cmd.Context())
		},
	}
}

func (a *cliApp) serve(ctx context.Context) error {
	rt, err := openRuntime(ctx, a.cfg)
	if err != nil {
		return err
	}
	defer rt.Close()

	deps := &handler.AppDeps{
		Config:     a.cfg,
		Session:    rt.store,
		Complaints: rt.client,
	}

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", a.cfg.Port),
		Handler:      handler.Router(ctx, deps),
		ReadTimeout:  5 * time.Second,
		WriteTimeout: a.cfg.RequestTimeout + 5*time.Second,
		IdleTimeout:  120 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)

	// The portal answers while the session loads; gated routes report loading until then.
	g.Go(func() error {
		if err := rt.store.Initialize(gctx); err != nil {
			logx.Warn("Serving without a restored session", "error", err.Error())
		}
		return nil
	})

	g.Go(func() error {
		logx.Info("Complaint portal starting", "addr", "http://localhost"+server.Addr, "api_url", a.cfg.APIURL, "storage", a.cfg.Storage)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("listen: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		logx.Info("Received shutdown signal. Starting graceful shutdown...")

		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(gctx), shutdownTimeout)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown: %w", err)
		}
		logx.Info("Server gracefully stopped.")
		return nil
	})

	return g.Wait()
}
