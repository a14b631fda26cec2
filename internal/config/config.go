// Package config loads cardrun settings from defaults, an optional YAML
// file, a .env file and CARDRUN_* environment variables, in that order.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	envPrefix = "CARDRUN_"

	// EnvConfigFile names the YAML file to read, if any.
	EnvConfigFile = envPrefix + "CONFIG"
)

// ErrInvalid is wrapped by every validation failure.
var ErrInvalid = errors.New("invalid configuration")

// Config holds settings shared by the cardrun and cardsim binaries.
type Config struct {
	// Seed for random number generation. 0 picks a time-based seed.
	Seed                  int64         `yaml:"seed"`
	DataDir               string        `yaml:"data_dir" validate:"required"`
	LogLevel              string        `yaml:"log_level" validate:"oneof=debug info warn error"`
	LogFormat             string        `yaml:"log_format" validate:"oneof=console json"`
	PacingDelay           time.Duration `yaml:"pacing_delay" validate:"gte=0"`
	MaxGenerationAttempts int           `yaml:"max_generation_attempts" validate:"gte=1"`
	TelemetryEnabled      bool          `yaml:"telemetry_enabled"`
	MetricsAddr           string        `yaml:"metrics_addr" validate:"omitempty,hostname_port"`
	SimRuns               int           `yaml:"sim_runs" validate:"gte=1"`
	StartingGold          int           `yaml:"starting_gold" validate:"gte=0"`
}

// Default returns the built-in settings.
func Default() Config {
	return Config{
		DataDir:               defaultDataDir(),
		LogLevel:              "info",
		LogFormat:             "console",
		PacingDelay:           600 * time.Millisecond,
		MaxGenerationAttempts: 1000,
		TelemetryEnabled:      true,
		SimRuns:               100,
	}
}

func defaultDataDir() string {
	if dir, err := os.UserConfigDir(); err == nil {
		return filepath.Join(dir, "cardrun")
	}
	return ".cardrun"
}

// Load builds the configuration. envFiles are passed to godotenv; with none
// it reads ./.env. Missing .env files are not an error, and variables
// already set in the process environment win over them.
func Load(envFiles ...string) (Config, error) {
	cfg := Default()

	if err := godotenv.Load(envFiles...); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return cfg, fmt.Errorf("load env file: %w", err)
	}

	if path := os.Getenv(EnvConfigFile); path != "" {
		if err := cfg.mergeFile(path); err != nil {
			return cfg, err
		}
	}

	if err := cfg.mergeEnv(os.LookupEnv); err != nil {
		return cfg, err
	}

	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// mergeFile overlays the YAML file at path onto cfg.
func (c *Config) mergeFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("parse config file %s: %w", path, err)
	}
	return nil
}

// mergeEnv overlays CARDRUN_* variables onto cfg.
func (c *Config) mergeEnv(lookup func(string) (string, bool)) error {
	var errs []error
	str := func(key string, dst *string) {
		if v, ok := lookup(envPrefix + key); ok {
			*dst = v
		}
	}
	num := func(key string, dst *int) {
		if v, ok := lookup(envPrefix + key); ok {
			n, err := strconv.Atoi(strings.TrimSpace(v))
			if err != nil {
				errs = append(errs, fmt.Errorf("%s%s: %w", envPrefix, key, err))
				return
			}
			*dst = n
		}
	}

	if v, ok := lookup(envPrefix + "SEED"); ok {
		seed, err := strconv.ParseInt(strings.TrimSpace(v), 10, 64)
		if err != nil {
			errs = append(errs, fmt.Errorf("%sSEED: %w", envPrefix, err))
		} else {
			c.Seed = seed
		}
	}
	str("DATA_DIR", &c.DataDir)
	str("LOG_LEVEL", &c.LogLevel)
	str("LOG_FORMAT", &c.LogFormat)
	str("METRICS_ADDR", &c.MetricsAddr)
	num("MAX_GENERATION_ATTEMPTS", &c.MaxGenerationAttempts)
	num("SIM_RUNS", &c.SimRuns)
	num("STARTING_GOLD", &c.StartingGold)

	if v, ok := lookup(envPrefix + "PACING_DELAY"); ok {
		d, err := time.ParseDuration(strings.TrimSpace(v))
		if err != nil {
			errs = append(errs, fmt.Errorf("%sPACING_DELAY: %w", envPrefix, err))
		} else {
			c.PacingDelay = d
		}
	}
	if v, ok := lookup(envPrefix + "TELEMETRY_ENABLED"); ok {
		b, err := strconv.ParseBool(strings.TrimSpace(v))
		if err != nil {
			errs = append(errs, fmt.Errorf("%sTELEMETRY_ENABLED: %w", envPrefix, err))
		} else {
			c.TelemetryEnabled = b
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("%w: %w", ErrInvalid, errors.Join(errs...))
	}
	return nil
}

var validate = validator.New()

// Validate checks field constraints and reports every violation at once.
func (c Config) Validate() error {
	err := validate.Struct(c)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return fmt.Errorf("%w: %w", ErrInvalid, err)
	}
	msgs := make([]string, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		msgs = append(msgs, formatFieldError(fe))
	}
	return fmt.Errorf("%w: %s", ErrInvalid, strings.Join(msgs, "; "))
}

func formatFieldError(fe validator.FieldError) string {
	field := strings.ToLower(fe.Field())
	switch fe.Tag() {
	case "required":
		return field + " is required"
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", field, fe.Param())
	case "gte":
		return fmt.Sprintf("%s must be at least %s", field, fe.Param())
	case "hostname_port":
		return field + " must be host:port"
	default:
		return field + " is invalid"
	}
}
