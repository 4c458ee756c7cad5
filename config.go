package classloader

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/yaml.v3"
)

// Environment variables read by LoadConfig.
const (
	EnvMaxDepth       = "CLASSLOADER_MAX_DEPTH"
	EnvCycleDetection = "CLASSLOADER_CYCLE_DETECTION"
	EnvLogLevel       = "CLASSLOADER_LOG_LEVEL"
)

// Config is the file or environment form of the resolver options.
type Config struct {
	MaxDepth       int            `yaml:"max_depth"`
	CycleDetection CycleDetection `yaml:"cycle_detection"`

	// LogLevel enables a production zap logger at the given level. Empty
	// keeps the no-op logger.
	LogLevel string `yaml:"log_level"`
}

// DefaultConfig returns the configuration matching New without options.
func DefaultConfig() Config {
	return Config{
		MaxDepth:       DefaultMaxDepth,
		CycleDetection: RootOnly,
	}
}

// LoadConfig reads configuration from .env files and the process
// environment; process variables take precedence. Without arguments ".env" is
// read if present.
func LoadConfig(envFiles ...string) (Config, error) {
	files := envFiles
	optional := len(files) == 0
	if optional {
		files = []string{".env"}
	}

	values, err := godotenv.Read(files...)
	if err != nil {
		if !optional || !errors.Is(err, fs.ErrNotExist) {
			return Config{}, fmt.Errorf("read env files: %w", err)
		}
		values = map[string]string{}
	}

	lookup := func(key string) string {
		if v, ok := os.LookupEnv(key); ok {
			return v
		}
		return values[key]
	}

	cfg := DefaultConfig()

	if v := lookup(EnvMaxDepth); v != "" {
		depth, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return Config{}, fmt.Errorf("%s: %w", EnvMaxDepth, err)
		}
		cfg.MaxDepth = depth
	}

	if v := lookup(EnvCycleDetection); v != "" {
		if err := cfg.CycleDetection.UnmarshalText([]byte(v)); err != nil {
			return Config{}, fmt.Errorf("%s: %w", EnvCycleDetection, err)
		}
	}

	cfg.LogLevel = lookup(EnvLogLevel)

	return cfg, nil
}

// LoadConfigFile reads configuration from a YAML file. Missing keys keep
// their defaults.
func LoadConfigFile(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, err
	}

	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("parse %s: %w", path, err)
	}

	return cfg, nil
}

// Options converts the configuration into resolver options.
func (c Config) Options() ([]Option, error) {
	opts := []Option{
		WithMaxDepth(c.MaxDepth),
		WithCycleDetection(c.CycleDetection),
	}

	if c.LogLevel != "" {
		level, err := zapcore.ParseLevel(c.LogLevel)
		if err != nil {
			return nil, err
		}

		zc := zap.NewProductionConfig()
		zc.Level = zap.NewAtomicLevelAt(level)
		logger, err := zc.Build()
		if err != nil {
			return nil, fmt.Errorf("build logger: %w", err)
		}
		opts = append(opts, WithLogger(logger))
	}

	return opts, nil
}

// MarshalText implements encoding.TextMarshaler.
func (m CycleDetection) MarshalText() ([]byte, error) {
	return []byte(m.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (m *CycleDetection) UnmarshalText(text []byte) error {
	switch strings.ToLower(strings.TrimSpace(string(text))) {
	case "rootonly", "root-only", "root":
		*m = RootOnly
	case "fullchain", "full-chain", "full", "strict":
		*m = FullChain
	default:
		return fmt.Errorf("invalid cycle detection mode: %q", string(text))
	}
	return nil
}
