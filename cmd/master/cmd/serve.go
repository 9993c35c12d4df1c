package cmd

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/lapla-cogito/kago/pkg/agentclient"
	"github.com/lapla-cogito/kago/pkg/config"
	"github.com/lapla-cogito/kago/pkg/logging"
	"github.com/lapla-cogito/kago/pkg/masterapi"
	"github.com/lapla-cogito/kago/pkg/metrics"
	"github.com/lapla-cogito/kago/pkg/reconciler"
	"github.com/lapla-cogito/kago/pkg/scheduler"
	"github.com/lapla-cogito/kago/pkg/store"
)

// newServeCmd implements `kago-master serve`: wires the store, scheduler,
// reconciler, and HTTP API together and runs until SIGINT/SIGTERM, the
// same shutdown-on-signal shape contrib/gomaxprocs-webhook/cmd/serve.go
// uses via its manager's graceful stop, adapted here to a plain
// http.Server + context cancellation since this process has no
// controller-runtime manager.
func newServeCmd() *cobra.Command {
	v := viper.New()
	c := &cobra.Command{
		Use:   "serve",
		Short: "Run the master control-plane process",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.LoadMaster(v)
			if err != nil {
				return fmt.Errorf("loading config: %w", err)
			}
			return runServe(cmd.Context(), cfg)
		},
	}
	if err := config.BindMasterFlags(c.Flags(), v); err != nil {
		panic(err)
	}
	return c
}

func runServe(ctx context.Context, cfg config.Master) error {
	log, err := logging.New(cfg.LogDev, cfg.LogLevel)
	if err != nil {
		return fmt.Errorf("constructing logger: %w", err)
	}

	s := store.New()
	agentClient := agentclient.New()
	sched := scheduler.New(s, agentClient, scheduler.StrategyByName(cfg.Strategy), log)
	rec := reconciler.New(s, sched, agentClient, cfg.HeartbeatTimeout, log)

	m := metrics.NewMaster()
	sched.SetDecisionsMetric(m.SchedulerDecisions)
	rec.SetReconcileDurationMetric(m.ReconcileDuration)

	router := masterapi.NewRouter(s, rec, m, log)
	httpServer := &http.Server{Addr: cfg.ListenAddr, Handler: router}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	go rec.Run(ctx, cfg.TickInterval)

	serveErrs := make(chan error, 1)
	go func() {
		log.Info("master listening", "addr", cfg.ListenAddr)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serveErrs <- err
		}
	}()

	select {
	case <-ctx.Done():
		log.Info("shutting down")
	case err := <-serveErrs:
		return fmt.Errorf("http server: %w", err)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return httpServer.Shutdown(shutdownCtx)
}
