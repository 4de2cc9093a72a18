package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/cuemby/hoconnect/pkg/config"
	"github.com/cuemby/hoconnect/pkg/log"
	"github.com/cuemby/hoconnect/pkg/metrics"
	"github.com/cuemby/hoconnect/pkg/storage"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve metrics and health endpoints",
	Long: `Run an observer instance and serve /metrics, /health, /ready and /live.
The instance follows every change signal, so the presence and ledger
gauges track the shared state.`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().String("addr", "", "Listen address (default from config)")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	addr, _ := cmd.Flags().GetString("addr")
	if addr == "" {
		addr = cfg.Metrics.Addr
	}
	logger := log.WithComponent("serve")

	metrics.SetVersion(Version)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	b, err := openBackend(ctx, cfg)
	if err != nil {
		return err
	}
	defer b.Close()

	metrics.RegisterComponent(metrics.ComponentStore, true, cfg.Store.Backend)
	metrics.RegisterComponent(metrics.ComponentBus, true, cfg.Bus.Transport)
	if cfg.Assistant.APIKey != "" {
		metrics.RegisterComponent(metrics.ComponentGenerator, true, "configured")
	}

	inst, err := openInstance(b, cfg, "")
	if err != nil {
		return err
	}
	defer inst.Close()

	collector := metrics.NewCollector(inst, cfg.Metrics.Interval)
	collector.Start()
	defer collector.Stop()

	go probeBackend(ctx, b, cfg)

	server := &http.Server{
		Addr:              addr,
		Handler:           metrics.NewServeMux(),
		ReadHeaderTimeout: 5 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("metrics server error: %v", err)
		}
	}()

	fmt.Printf("✓ Serving metrics and health on %s\n", addr)
	fmt.Printf("  Instance: %s\n", inst.ID())
	fmt.Println("Press Ctrl+C to stop.")

	sigDone := make(chan struct{})
	go func() {
		waitForSignal()
		close(sigDone)
	}()

	select {
	case <-sigDone:
		fmt.Println("\nShutting down...")
	case err := <-errCh:
		logger.Error().Err(err).Msg("Server failed")
		return err
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("failed to shutdown: %v", err)
	}

	fmt.Println("✓ Shutdown complete")
	return nil
}

// probeBackend keeps the store and bus health components current
func probeBackend(ctx context.Context, b *backend, cfg *config.Config) {
	ticker := time.NewTicker(cfg.Metrics.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}

		if _, err := b.store.Get(storage.KeyEmployees); err != nil && !errors.Is(err, storage.ErrNotFound) {
			metrics.UpdateComponent(metrics.ComponentStore, false, err.Error())
		} else {
			metrics.UpdateComponent(metrics.ComponentStore, true, cfg.Store.Backend)
		}

		if b.rdb != nil && cfg.Bus.Transport == config.BusRedis {
			pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
			err := b.rdb.Ping(pingCtx).Err()
			cancel()
			if err != nil {
				metrics.UpdateComponent(metrics.ComponentBus, false, err.Error())
				continue
			}
			metrics.UpdateComponent(metrics.ComponentBus, true, cfg.Bus.Transport)
		}
	}
}
