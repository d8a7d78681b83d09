package plugin

import (
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/justyntemme/dod250go/pkg/framework/debug"
)

// Config holds the defaults every new instance starts from
type Config struct {
	// DryBypass lets the unprocessed input through while bypassed instead
	// of muting it
	DryBypass bool

	// Logger receives lifecycle records. Nil selects the debug package's
	// default logger.
	Logger *logrus.Entry
}

var (
	globalConfig   Config
	globalConfigMu sync.RWMutex
)

// SetConfig sets the defaults for instances created afterwards
func SetConfig(cfg Config) {
	globalConfigMu.Lock()
	defer globalConfigMu.Unlock()
	globalConfig = cfg
}

// CurrentConfig returns the defaults new instances start from
func CurrentConfig() Config {
	globalConfigMu.RLock()
	defer globalConfigMu.RUnlock()
	return globalConfig
}

// Option overrides the defaults for one instance
type Option func(*Config)

// WithDryBypass passes the dry input through while bypassed
func WithDryBypass() Option {
	return func(c *Config) {
		c.DryBypass = true
	}
}

// WithLogger sets the lifecycle logger
func WithLogger(logger *logrus.Entry) Option {
	return func(c *Config) {
		c.Logger = logger
	}
}

func resolveConfig(opts []Option) Config {
	cfg := CurrentConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.Logger == nil {
		cfg.Logger = debug.Default().Entry()
	}
	return cfg
}
