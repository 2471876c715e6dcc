// Package config loads and validates experiment configurations from YAML
// files and environment variables.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"

	"github.com/sarchlab/kishu/random"
)

// Queue names accepted by the "queue" field.
const (
	QueueHeap      = "heap"
	QueueInsertion = "insertion"
)

// MonitorConfig controls the monitoring server of a run.
type MonitorConfig struct {
	Enabled     bool `yaml:"enabled"`
	Port        int  `yaml:"port"`
	OpenBrowser bool `yaml:"open_browser"`
}

// RecordingConfig controls the recording database of a run.
type RecordingConfig struct {
	Enabled bool   `yaml:"enabled"`
	Path    string `yaml:"path"`
}

// Config describes one experiment.
type Config struct {
	Name         string  `yaml:"name"`
	Length       float64 `yaml:"length"`
	Seed         int64   `yaml:"seed"`
	SeedPolicy   string  `yaml:"seed_policy"`
	Queue        string  `yaml:"queue"`
	LogLevel     string  `yaml:"log_level"`
	Replications int     `yaml:"replications"`
	Parallelism  int     `yaml:"parallelism"`

	Streams map[string]random.StreamSpec `yaml:"streams"`

	Monitor   MonitorConfig   `yaml:"monitor"`
	Recording RecordingConfig `yaml:"recording"`
}

// Default returns the configuration used when a field is not given.
func Default() Config {
	return Config{
		Name:         "experiment",
		SeedPolicy:   "derived",
		Queue:        QueueHeap,
		LogLevel:     "info",
		Replications: 1,
		Parallelism:  1,
	}
}

// Load reads the configuration file at path, applies KISHU_* environment
// overrides, and validates the result.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("reading config: %w", err)
	}

	return Parse(data)
}

// Parse behaves like Load on already-read file content.
func Parse(data []byte) (Config, error) {
	cfg := Default()

	// Unknown fields are rejected so that typos fail loudly instead of
	// silently falling back to defaults.
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)

	err := decoder.Decode(&cfg)
	if err != nil && !errors.Is(err, io.EOF) {
		return Config{}, fmt.Errorf("parsing config: %w", err)
	}

	if err := cfg.applyEnv(); err != nil {
		return Config{}, err
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

func (c *Config) applyEnv() error {
	var err error

	c.Name = envStr("KISHU_NAME", c.Name)
	c.SeedPolicy = envStr("KISHU_SEED_POLICY", c.SeedPolicy)
	c.Queue = envStr("KISHU_QUEUE", c.Queue)
	c.LogLevel = envStr("KISHU_LOG_LEVEL", c.LogLevel)
	c.Recording.Path = envStr("KISHU_RECORDING_PATH", c.Recording.Path)

	if c.Length, err = envFloat("KISHU_LENGTH", c.Length); err != nil {
		return err
	}

	if c.Seed, err = envInt64("KISHU_SEED", c.Seed); err != nil {
		return err
	}

	if c.Replications, err = envInt(
		"KISHU_REPLICATIONS", c.Replications); err != nil {
		return err
	}

	if c.Parallelism, err = envInt(
		"KISHU_PARALLELISM", c.Parallelism); err != nil {
		return err
	}

	if c.Monitor.Enabled, err = envBool(
		"KISHU_MONITOR", c.Monitor.Enabled); err != nil {
		return err
	}

	if c.Monitor.Port, err = envInt(
		"KISHU_MONITOR_PORT", c.Monitor.Port); err != nil {
		return err
	}

	if c.Recording.Enabled, err = envBool(
		"KISHU_RECORDING", c.Recording.Enabled); err != nil {
		return err
	}

	return nil
}

// Validate checks that the configuration describes a runnable experiment.
func (c Config) Validate() error {
	if c.Length < 0 {
		return fmt.Errorf("config: length cannot be negative")
	}

	if c.Queue != QueueHeap && c.Queue != QueueInsertion {
		return fmt.Errorf("config: unknown queue %q, "+
			"allowed values are %q and %q", c.Queue, QueueHeap, QueueInsertion)
	}

	if _, err := random.ParseSeedPolicy(c.SeedPolicy); err != nil {
		return fmt.Errorf("config: %w", err)
	}

	if c.LogLevel != "" {
		if _, err := logrus.ParseLevel(c.LogLevel); err != nil {
			return fmt.Errorf("config: %w", err)
		}
	}

	if c.Replications < 1 {
		return fmt.Errorf("config: replications must be positive")
	}

	if c.Parallelism < 0 {
		return fmt.Errorf("config: parallelism cannot be negative")
	}

	return nil
}

func envStr(key, defaultVal string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}

	return defaultVal
}

func envInt(key string, defaultVal int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal, nil
	}

	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%s=%q is not a valid integer", key, v)
	}

	return n, nil
}

func envInt64(key string, defaultVal int64) (int64, error) {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal, nil
	}

	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%s=%q is not a valid integer", key, v)
	}

	return n, nil
}

func envFloat(key string, defaultVal float64) (float64, error) {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal, nil
	}

	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, fmt.Errorf("%s=%q is not a valid number", key, v)
	}

	return f, nil
}

func envBool(key string, defaultVal bool) (bool, error) {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal, nil
	}

	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, fmt.Errorf("%s=%q is not a valid boolean", key, v)
	}

	return b, nil
}
