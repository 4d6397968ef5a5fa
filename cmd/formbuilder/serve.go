package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/goliatone/go-formbuilder/internal/server"
	"github.com/goliatone/go-formbuilder/pkg/render"
)

func newServeCmd(a *app) *cobra.Command {
	var (
		addr string
		save bool
	)
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the designer API, the event stream and the HTML preview",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if addr != "" {
				a.cfg.HTTP.Addr = addr
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return a.serve(ctx, save)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default from http.addr)")
	cmd.Flags().BoolVar(&save, "save", false, "write the canvas back to the form file on shutdown")
	return cmd
}

func (a *app) serve(ctx context.Context, save bool) error {
	b, err := a.newBuilder(ctx, false)
	if err != nil {
		return err
	}

	options := []server.Option{
		server.WithLogger(a.logger),
		server.WithEvaluator(b.Evaluator()),
		server.WithLocale(a.cfg.Designer.Locale),
		server.WithEventBuffer(a.cfg.HTTP.EventBuffer),
	}
	engine, err := a.engine()
	if err != nil {
		return err
	}
	if engine != nil {
		html, err := render.NewHTML(b.Evaluator(), render.WithEngine(engine), render.WithLogger(a.logger))
		if err != nil {
			return err
		}
		options = append(options, server.WithHTMLRenderer(html))
	}
	api, err := server.New(b.Store(), options...)
	if err != nil {
		return err
	}

	srv := &http.Server{
		Addr:         a.cfg.HTTP.Addr,
		Handler:      api.Routes(),
		ReadTimeout:  time.Duration(a.cfg.HTTP.ReadTimeoutSec) * time.Second,
		WriteTimeout: time.Duration(a.cfg.HTTP.WriteTimeoutSec) * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		a.logger.Info("starting HTTP server", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		api.Close()
		return err
	case <-ctx.Done():
	}
	a.logger.Info("received shutdown signal")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Duration(a.cfg.HTTP.ShutdownSec)*time.Second)
	defer cancel()

	// websocket connections are hijacked, so Shutdown does not wait for them
	api.Close()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		a.logger.Error("error during shutdown", zap.Error(err))
	}

	if save && a.cfg.Designer.FormFile != "" {
		if err := b.Save(a.cfg.Designer.FormFile); err != nil {
			return err
		}
	}
	a.logger.Info("server stopped gracefully")
	return nil
}
