// Package config holds the ledgerstatusd daemon configuration and its
// command line flags.
package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/pflag"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/blockberries/ledgerstatus/ledger"
	"github.com/blockberries/ledgerstatus/rest"
)

const (
	HTTPAddrKey          = "http-addr"
	GRPCAddrKey          = "grpc-addr"
	PoolSizeKey          = "pool-size"
	AllowedOriginsKey    = "allowed-origins"
	AllowedHostsKey      = "allowed-hosts"
	ShutdownTimeoutKey   = "shutdown-timeout"
	ReadTimeoutKey       = "http-read-timeout"
	ReadHeaderTimeoutKey = "http-read-header-timeout"
	WriteTimeoutKey      = "http-write-timeout"
	IdleTimeoutKey       = "http-idle-timeout"
	LogLevelKey          = "log-level"
	LogFormatKey         = "log-format"
	SeedFileKey          = "seed-file"
)

const (
	LogFormatJSON    = "json"
	LogFormatConsole = "console"
)

var (
	errNoListener       = errors.New("at least one of --http-addr and --grpc-addr is required")
	errBadPoolSize      = errors.New("pool size must be positive")
	errBadTimeout       = errors.New("shutdown timeout must be positive")
	errUnknownLogFormat = errors.New("unknown log format")
)

func AddFlags(flags *pflag.FlagSet) {
	flags.String(HTTPAddrKey, "127.0.0.1:9984", "Address to serve the HTTP API on (empty disables it)")
	flags.String(GRPCAddrKey, "127.0.0.1:9985", "Address to serve the gRPC API on (empty disables it)")
	flags.Int(PoolSizeKey, ledger.DefaultPoolSize, "Maximum number of concurrent ledger connections")
	flags.StringSlice(AllowedOriginsKey, []string{"*"}, "Origins allowed to make cross-origin requests")
	flags.StringSlice(AllowedHostsKey, []string{"localhost"}, "Host names the HTTP API answers to; \"*\" allows all")
	flags.Duration(ShutdownTimeoutKey, 10*time.Second, "Maximum time to wait for in-flight requests on shutdown")
	flags.Duration(ReadTimeoutKey, 30*time.Second, "HTTP read timeout")
	flags.Duration(ReadHeaderTimeoutKey, 30*time.Second, "HTTP read header timeout")
	flags.Duration(WriteTimeoutKey, 30*time.Second, "HTTP write timeout")
	flags.Duration(IdleTimeoutKey, 120*time.Second, "HTTP idle timeout")
	flags.String(LogLevelKey, "info", "Log level (debug, info, warn, error)")
	flags.String(LogFormatKey, LogFormatJSON, "Log format (json, console)")
	flags.String(SeedFileKey, "", "JSON file to seed the in-memory ledger from")
}

type Config struct {
	HTTPAddr        string
	GRPCAddr        string
	PoolSize        int
	AllowedOrigins  []string
	AllowedHosts    []string
	ShutdownTimeout time.Duration
	HTTP            rest.HTTPConfig
	LogLevel        zapcore.Level
	LogFormat       string
	SeedFile        string
}

func ParseFlags(flags *pflag.FlagSet, args []string) (*Config, error) {
	if err := flags.Parse(args); err != nil {
		return nil, err
	}

	var (
		c   Config
		err error
	)
	if c.HTTPAddr, err = flags.GetString(HTTPAddrKey); err != nil {
		return nil, err
	}
	if c.GRPCAddr, err = flags.GetString(GRPCAddrKey); err != nil {
		return nil, err
	}
	if c.PoolSize, err = flags.GetInt(PoolSizeKey); err != nil {
		return nil, err
	}
	if c.AllowedOrigins, err = flags.GetStringSlice(AllowedOriginsKey); err != nil {
		return nil, err
	}
	if c.AllowedHosts, err = flags.GetStringSlice(AllowedHostsKey); err != nil {
		return nil, err
	}
	if c.ShutdownTimeout, err = flags.GetDuration(ShutdownTimeoutKey); err != nil {
		return nil, err
	}
	if c.HTTP.ReadTimeout, err = flags.GetDuration(ReadTimeoutKey); err != nil {
		return nil, err
	}
	if c.HTTP.ReadHeaderTimeout, err = flags.GetDuration(ReadHeaderTimeoutKey); err != nil {
		return nil, err
	}
	if c.HTTP.WriteTimeout, err = flags.GetDuration(WriteTimeoutKey); err != nil {
		return nil, err
	}
	if c.HTTP.IdleTimeout, err = flags.GetDuration(IdleTimeoutKey); err != nil {
		return nil, err
	}

	level, err := flags.GetString(LogLevelKey)
	if err != nil {
		return nil, err
	}
	if c.LogLevel, err = zapcore.ParseLevel(level); err != nil {
		return nil, fmt.Errorf("--%s: %w", LogLevelKey, err)
	}
	if c.LogFormat, err = flags.GetString(LogFormatKey); err != nil {
		return nil, err
	}
	if c.SeedFile, err = flags.GetString(SeedFileKey); err != nil {
		return nil, err
	}

	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

// Validate reports the first inconsistency in c.
func (c *Config) Validate() error {
	switch {
	case c.HTTPAddr == "" && c.GRPCAddr == "":
		return errNoListener
	case c.PoolSize < 1:
		return fmt.Errorf("%w: %d", errBadPoolSize, c.PoolSize)
	case c.ShutdownTimeout <= 0:
		return fmt.Errorf("%w: %s", errBadTimeout, c.ShutdownTimeout)
	case c.LogFormat != LogFormatJSON && c.LogFormat != LogFormatConsole:
		return fmt.Errorf("%w: %q", errUnknownLogFormat, c.LogFormat)
	}
	return nil
}

// NewLogger builds the daemon logger from the log level and format.
func (c *Config) NewLogger() (*zap.Logger, error) {
	var zc zap.Config
	if c.LogFormat == LogFormatConsole {
		zc = zap.NewDevelopmentConfig()
	} else {
		zc = zap.NewProductionConfig()
	}
	zc.Level = zap.NewAtomicLevelAt(c.LogLevel)
	return zc.Build()
}
