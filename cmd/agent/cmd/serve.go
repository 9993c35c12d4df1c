package cmd

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/go-logr/logr"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/lapla-cogito/kago/pkg/agent"
	"github.com/lapla-cogito/kago/pkg/agentapi"
	"github.com/lapla-cogito/kago/pkg/config"
	"github.com/lapla-cogito/kago/pkg/logging"
	"github.com/lapla-cogito/kago/pkg/masterclient"
	"github.com/lapla-cogito/kago/pkg/metrics"
	krt "github.com/lapla-cogito/kago/pkg/runtime"
	"github.com/lapla-cogito/kago/pkg/runtime/docker"
	"github.com/lapla-cogito/kago/pkg/runtime/fake"
)

// newServeCmd implements `kago-agent serve`: connects to a container
// runtime, registers with the master (retrying indefinitely per spec.md
// §4.4), then runs the heartbeat loop and this node's HTTP facade until
// SIGINT/SIGTERM.
func newServeCmd() *cobra.Command {
	v := viper.New()
	c := &cobra.Command{
		Use:   "serve",
		Short: "Run the node agent process",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.LoadAgent(v)
			if err != nil {
				return fmt.Errorf("loading config: %w", err)
			}
			return runServe(cmd.Context(), cfg)
		},
	}
	if err := config.BindAgentFlags(c.Flags(), v); err != nil {
		panic(err)
	}
	return c
}

func runServe(ctx context.Context, cfg config.Agent) error {
	log, err := logging.New(cfg.LogDev, cfg.LogLevel)
	if err != nil {
		return fmt.Errorf("constructing logger: %w", err)
	}

	rt, err := buildRuntime(ctx, cfg.Runtime, log)
	if err != nil {
		return fmt.Errorf("connecting to container runtime: %w", err)
	}

	state := agent.NewState(cfg.NodeName, cfg.Capacity(), rt, log)

	m := metrics.NewAgent()
	state.SetHeartbeatsMetric(m.HeartbeatsSent)

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	mc := masterclient.New(cfg.MasterEndpoint)
	advertiseAddr, advertisePort, err := advertiseAddress(cfg)
	if err != nil {
		return err
	}
	if err := state.Register(ctx, mc, advertiseAddr, advertisePort); err != nil {
		return fmt.Errorf("registering with master: %w", err)
	}

	go state.RunHeartbeatLoop(ctx, mc, cfg.HeartbeatInterval)

	router := agentapi.NewRouter(state, log)
	httpServer := &http.Server{Addr: cfg.ListenAddr, Handler: router}

	serveErrs := make(chan error, 1)
	go func() {
		log.Info("agent listening", "addr", cfg.ListenAddr, "node", cfg.NodeName)
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

// buildRuntime selects the docker-backed runtime or the in-memory fake,
// per --runtime (spec.md §4.4's Runtime abstraction; the fake exists for
// local/dev use without a docker daemon).
func buildRuntime(ctx context.Context, name string, log logr.Logger) (krt.Runtime, error) {
	switch name {
	case "fake":
		return fake.New(), nil
	case "docker", "":
		return docker.New(ctx, log)
	default:
		return nil, fmt.Errorf("unknown runtime %q, want \"docker\" or \"fake\"", name)
	}
}

// advertiseAddress resolves the host/port this agent reports to the
// master at registration: an explicit --advertise-addr host combined with
// --listen-addr's port, or --listen-addr's own host:port if
// --advertise-addr is unset.
func advertiseAddress(cfg config.Agent) (string, int, error) {
	_, portStr, err := net.SplitHostPort(cfg.ListenAddr)
	if err != nil {
		return "", 0, fmt.Errorf("parsing --listen-addr %q: %w", cfg.ListenAddr, err)
	}
	port, err := strconv.Atoi(portStr)
	if err != nil {
		return "", 0, fmt.Errorf("parsing port from --listen-addr %q: %w", cfg.ListenAddr, err)
	}

	if cfg.AdvertiseAddr != "" {
		return cfg.AdvertiseAddr, port, nil
	}
	host, _, err := net.SplitHostPort(cfg.ListenAddr)
	if err != nil || host == "" {
		return "localhost", port, nil
	}
	return host, port, nil
}
