package main

import (
	"context"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/campus-tools/results-viewer/internal/api"
	"github.com/campus-tools/results-viewer/internal/config"
	"github.com/campus-tools/results-viewer/internal/dataset"
	"github.com/campus-tools/results-viewer/internal/query"
)

var servePort int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the results HTTP server",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		if err := cfg.Validate("serve"); err != nil {
			return err
		}
		policy, err := cfg.Results.Policy()
		if err != nil {
			return err
		}

		// A workbook that cannot be loaded at startup is fatal in every mode.
		src, closeSrc, err := buildSource(ctx, cfg.Workbook, dataset.OptionsFromPolicy(cfg.Workbook.Path, policy))
		if err != nil {
			return eris.Wrap(err, "serve: load workbook")
		}
		defer closeSrc()

		svc := query.NewService(src, policy)
		mux := buildMux(svc, cfg.Server)

		return startServer(ctx, mux, resolvePort(servePort, cfg.Server.Port))
	},
}

// buildSource picks the dataset source for the configured workbook mode.
func buildSource(ctx context.Context, wb config.WorkbookConfig, opts dataset.Options) (dataset.Source, func(), error) {
	noop := func() {}
	switch wb.Mode {
	case config.ModeReload:
		// Load once so a missing or corrupt file still fails fast.
		if _, err := dataset.Load(opts); err != nil {
			return nil, noop, err
		}
		return dataset.NewReloading(opts), noop, nil
	case config.ModeWatch:
		w, err := dataset.NewWatching(ctx, opts)
		if err != nil {
			return nil, noop, err
		}
		return w, func() { _ = w.Close() }, nil
	default:
		s, err := dataset.LoadStatic(opts)
		if err != nil {
			return nil, noop, err
		}
		return s, noop, nil
	}
}

func buildMux(svc *query.Service, sc config.ServerConfig) http.Handler {
	return api.NewRouter(svc, api.Options{
		AllowedOrigins: sc.AllowedOrigins,
		RateLimit:      sc.RateLimit,
		RateBurst:      sc.RateBurst,
	})
}

func resolvePort(flagPort, cfgPort int) int {
	if flagPort != 0 {
		return flagPort
	}
	return cfgPort
}

// startServer serves h on port until ctx is cancelled, then shuts down gracefully.
func startServer(ctx context.Context, h http.Handler, port int) error {
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", port),
		Handler:           h,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Graceful shutdown
	go func() {
		<-ctx.Done()
		zap.L().Info("shutting down server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			zap.L().Warn("server shutdown", zap.Error(err))
		}
	}()

	zap.L().Info("starting server", zap.Int("port", port))
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return eris.Wrap(err, "server listen")
	}

	return nil
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "server port (default from config)")
	rootCmd.AddCommand(serveCmd)
}
