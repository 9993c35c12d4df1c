// Package config binds the master and agent process configuration:
// cobra/pflag flags bound into viper, so values can equally come from
// flags, environment variables, or a config file.
//
// Grounded on contrib/gomaxprocs-webhook/cmd/serve.go's flag set
// (metrics-bind-address, health-probe-bind-address, port, config-path,
// log-dev, log-level), generalized from direct pflag binding to viper's
// pflag.BindPFlag so the same field can be set by flag, env var (KAGO_*)
// or config file -- the teacher's own spf13/viper dependency is otherwise
// unused anywhere in the pack we read, so this is the one component that
// exercises it.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	v1 "github.com/lapla-cogito/kago/pkg/apis/v1"
)

// Master holds the master process's tunables (spec.md §5).
type Master struct {
	ListenAddr       string        `mapstructure:"listen-addr"`
	TickInterval     time.Duration `mapstructure:"tick-interval"`
	HeartbeatTimeout time.Duration `mapstructure:"heartbeat-timeout"`
	Strategy         string        `mapstructure:"scheduler-strategy"`
	LogDev           bool          `mapstructure:"log-dev"`
	LogLevel         int           `mapstructure:"log-level"`
}

// Agent holds the node agent process's tunables (spec.md §5).
type Agent struct {
	ListenAddr        string        `mapstructure:"listen-addr"`
	AdvertiseAddr     string        `mapstructure:"advertise-addr"`
	NodeName          string        `mapstructure:"node-name"`
	MasterEndpoint    string        `mapstructure:"master-endpoint"`
	HeartbeatInterval time.Duration `mapstructure:"heartbeat-interval"`
	Runtime           string        `mapstructure:"runtime"`
	CPUMillisCapacity uint32        `mapstructure:"capacity-cpu-millis"`
	MemoryMBCapacity  uint32        `mapstructure:"capacity-memory-mb"`
	LogDev            bool          `mapstructure:"log-dev"`
	LogLevel          int           `mapstructure:"log-level"`
}

// Capacity returns the agent's advertised node capacity as a Resources value.
func (a Agent) Capacity() v1.Resources {
	return v1.Resources{CPUMillis: a.CPUMillisCapacity, MemoryMB: a.MemoryMBCapacity}
}

// BindMasterFlags registers the master's flags on fs and binds them into v,
// with KAGO_ prefixed environment variable overrides.
func BindMasterFlags(fs *pflag.FlagSet, v *viper.Viper) error {
	fs.String("listen-addr", ":8080", "address the master HTTP API listens on")
	fs.Duration("tick-interval", 5*time.Second, "reconcile loop tick interval")
	fs.Duration("heartbeat-timeout", 30*time.Second, "node liveness timeout")
	fs.String("scheduler-strategy", "firstfit", "placement strategy: firstfit, bestfit, leastallocated, balanced")
	fs.Bool("log-dev", false, "use a human-readable development logger")
	fs.Int("log-level", 0, "logging verbosity (0 = info, higher is more verbose)")
	return bindAndLoad(fs, v)
}

// BindAgentFlags registers the agent's flags on fs and binds them into v,
// with KAGO_ prefixed environment variable overrides.
func BindAgentFlags(fs *pflag.FlagSet, v *viper.Viper) error {
	fs.String("listen-addr", ":9090", "address the agent HTTP API listens on")
	fs.String("advertise-addr", "", "address the master should use to reach this agent (defaults to listen-addr's host)")
	fs.String("node-name", "", "this node's name, must be unique across the cluster")
	fs.String("master-endpoint", "http://localhost:8080", "master API base URL")
	fs.Duration("heartbeat-interval", 5*time.Second, "heartbeat send interval")
	fs.String("runtime", "docker", "container runtime backend: docker or fake")
	fs.Uint32("capacity-cpu-millis", 2000, "advertised CPU capacity in millicores")
	fs.Uint32("capacity-memory-mb", 2048, "advertised memory capacity in MB")
	fs.Bool("log-dev", false, "use a human-readable development logger")
	fs.Int("log-level", 0, "logging verbosity (0 = info, higher is more verbose)")
	return bindAndLoad(fs, v)
}

func bindAndLoad(fs *pflag.FlagSet, v *viper.Viper) error {
	if err := v.BindPFlags(fs); err != nil {
		return fmt.Errorf("binding flags: %w", err)
	}
	v.SetEnvPrefix("kago")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()
	return nil
}

// LoadMaster unmarshals v into a Master config after BindMasterFlags.
func LoadMaster(v *viper.Viper) (Master, error) {
	var c Master
	if err := v.Unmarshal(&c); err != nil {
		return Master{}, fmt.Errorf("unmarshaling master config: %w", err)
	}
	return c, nil
}

// LoadAgent unmarshals v into an Agent config after BindAgentFlags.
func LoadAgent(v *viper.Viper) (Agent, error) {
	var c Agent
	if err := v.Unmarshal(&c); err != nil {
		return Agent{}, fmt.Errorf("unmarshaling agent config: %w", err)
	}
	if c.NodeName == "" {
		return Agent{}, fmt.Errorf("node-name is required")
	}
	return c, nil
}
