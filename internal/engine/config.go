package engine

import (
	_ "embed"
	"fmt"
	"log/slog"
	"os"
	"time"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"cuelang.org/go/cue/errors"
)

//go:embed config.cue
var configSchema string

// Config is the file form of the engine options.
type Config struct {
	MinHz            float64 `json:"min_hz"`
	MaxHz            float64 `json:"max_hz"`
	FixedStep        string  `json:"fixed_step"`
	MaxCycles        uint64  `json:"max_cycles"`
	MaxTicksPerCycle int     `json:"max_ticks_per_cycle"`
	LogLevel         string  `json:"log_level"`
}

// DefaultConfig returns the configuration an empty file produces.
func DefaultConfig() Config {
	return Config{MaxTicksPerCycle: 1, LogLevel: "info"}
}

// LoadConfig reads a CUE file and decodes it into a Config.
func LoadConfig(path string) (Config, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read config: %w", err)
	}
	return ParseConfig(src, path)
}

// ParseConfig unifies src with the #Config schema, requires the result to be
// concrete, and decodes it. filename is used in error messages only.
func ParseConfig(src []byte, filename string) (Config, error) {
	ctx := cuecontext.New()

	schema := ctx.CompileString(configSchema, cue.Filename("config.cue"))
	if err := schema.Err(); err != nil {
		return Config{}, fmt.Errorf("compile config schema: %w", err)
	}

	user := ctx.CompileBytes(src, cue.Filename(filename))
	if err := user.Err(); err != nil {
		return Config{}, configError(filename, err)
	}

	v := schema.LookupPath(cue.ParsePath("#Config")).Unify(user)
	if err := v.Validate(cue.Concrete(true)); err != nil {
		return Config{}, configError(filename, err)
	}

	var cfg Config
	if err := v.Decode(&cfg); err != nil {
		return Config{}, configError(filename, err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// configError flattens CUE's multi-error into one INVALID_CONFIG error.
func configError(filename string, err error) error {
	re := NewInvalidConfigError("%s: %s", filename, errors.Details(err, nil))
	re.Err = err
	return re
}

// Validate checks the constraints the schema cannot express.
func (c Config) Validate() error {
	if _, err := c.step(); err != nil {
		return err
	}
	if c.MinHz > 0 && c.MaxHz > 0 && c.MinHz > c.MaxHz {
		return NewInvalidConfigError("min_hz %g exceeds max_hz %g", c.MinHz, c.MaxHz)
	}
	if _, err := ParseLogLevel(c.LogLevel); err != nil {
		return err
	}
	return nil
}

func (c Config) step() (time.Duration, error) {
	if c.FixedStep == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(c.FixedStep)
	if err != nil {
		return 0, NewInvalidConfigError("fixed_step %q: %v", c.FixedStep, err)
	}
	if d < 0 {
		return 0, NewInvalidConfigError("fixed_step %s is negative", d)
	}
	return d, nil
}

// Options converts the config into engine options. Call Validate first; an
// unparsable fixed step is ignored here.
func (c Config) Options() []Option {
	step, _ := c.step()
	opts := []Option{
		WithFixedStep(step),
		WithMaxCycles(c.MaxCycles),
		WithMaxTicksPerCycle(c.MaxTicksPerCycle),
	}
	if c.MinHz > 0 || c.MaxHz > 0 {
		opts = append(opts, WithRateLimits(c.MinHz, c.MaxHz))
	}
	return opts
}

// ParseLogLevel maps a config log level to a slog level. The empty string
// is Info.
func ParseLogLevel(s string) (slog.Level, error) {
	switch s {
	case "debug":
		return slog.LevelDebug, nil
	case "", "info":
		return slog.LevelInfo, nil
	case "warn":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	}
	return 0, NewInvalidConfigError("unknown log level %q", s)
}
