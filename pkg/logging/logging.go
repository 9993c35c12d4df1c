// Package logging constructs the shared zap/logr logger used by both the
// master and the agent process entrypoints.
//
// The teacher's own cobra commands (contrib/gomaxprocs-webhook/cmd/root.go)
// build their logger via controller-runtime's sigs.k8s.io/controller-runtime/pkg/log/zap,
// which is not a dependency of this module. The shape is kept -- a
// dev/production switch plus a verbosity level, constructed once in the
// root command and threaded down -- built directly on go.uber.org/zap and
// adapted to logr via go-logr/zapr instead.
package logging

import (
	"fmt"

	"github.com/go-logr/logr"
	"github.com/go-logr/zapr"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// New builds a logr.Logger backed by zap. dev selects a human-readable
// console encoder with DebugLevel enabled; otherwise a JSON encoder is used
// at the given level (0 = info, >0 = more verbose, following logr's
// V-level convention of larger-is-more-verbose, mapped onto zap's
// smaller-is-more-verbose levels by negation).
func New(dev bool, level int) (logr.Logger, error) {
	var cfg zap.Config
	if dev {
		cfg = zap.NewDevelopmentConfig()
		cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	} else {
		cfg = zap.NewProductionConfig()
		cfg.EncoderConfig.EncodeTime = zapcore.RFC3339TimeEncoder
		cfg.Level = zap.NewAtomicLevelAt(zapcore.Level(-level))
	}

	zl, err := cfg.Build()
	if err != nil {
		return logr.Logger{}, fmt.Errorf("building zap logger: %w", err)
	}
	return zapr.NewLogger(zl), nil
}

// Must is New but panics on error, for use in places (package-level
// fallback loggers) where there is no sane error path.
func Must(dev bool, level int) logr.Logger {
	l, err := New(dev, level)
	if err != nil {
		panic(err)
	}
	return l
}
