// Package app assembles a main World and a render World behind a
// two-stage per-frame lifecycle: simulation systems run against the
// main World, an extract phase copies the data the render World needs,
// and render-graph systems run against the render World. The phases of
// one frame run one after another on the calling goroutine.
package app

import "go.uber.org/zap"

// Validation selects how strictly the GPU device layer validates API
// usage: 0 disables validation, 1 enables standard validation, 2 adds
// GPU-assisted/extra validation at a performance cost.
type Validation int

const (
	ValidationOff Validation = iota
	ValidationStandard
	ValidationExtra
)

// Config bundles App construction knobs. The zero value is usable: it
// runs with validation off and a no-op logger.
type Config struct {
	Validation Validation
	Logger     *zap.Logger
	Workers    int
}

// Option configures a Config when it is passed to New.
type Option func(*Config)

// WithValidation sets Config.Validation. The App records the level; it
// does not pass it to the rendergraph Device.
func WithValidation(v Validation) Option {
	return func(c *Config) { c.Validation = v }
}

// WithLogger plugs an external zap.Logger; nil is ignored.
func WithLogger(l *zap.Logger) Option {
	return func(c *Config) {
		if l != nil {
			c.Logger = l
		}
	}
}

// WithWorkers sets the schedule dispatcher's worker pool size.
func WithWorkers(n int) Option {
	return func(c *Config) { c.Workers = n }
}

func defaultConfig() Config {
	return Config{Validation: ValidationOff, Logger: zap.NewNop(), Workers: 0}
}
