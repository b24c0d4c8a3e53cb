package config

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"net"
	"os"
	"path/filepath"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/renameio/v2"
	"go.uber.org/multierr"
	"go.uber.org/zap/zapcore"
	"gopkg.in/yaml.v3"

	"github.com/sambigeara/permcalc/pkg/perm"
)

const (
	configFileName = "config.yaml"
	directoryPerm  = 0o700
	configFilePerm = 0o600

	minimumSampleInterval = time.Second
	maximumThresholdPct   = 100.0
	chmodLiteralLen       = 4

	envListen      = "PERMCALC_LISTEN"
	envEnvironment = "PERMCALC_ENVIRONMENT"
	envLogLevel    = "PERMCALC_LOG_LEVEL"
)

const (
	DefaultListen         = ":5000"
	DefaultSocket         = "permcalc.sock"
	DefaultSocketMode     = "rw-rw----"
	DefaultLogLevel       = "info"
	DefaultEnvironment    = "production"
	DefaultMemoryPercent  = 90.0
	DefaultDiskPercent    = 95.0
	DefaultSampleInterval = 15 * time.Second
	DefaultDiskPath       = "/"
)

type HTTP struct {
	Listen string `yaml:"listen,omitempty"`
}

type Health struct {
	Socket     string `yaml:"socket,omitempty"`
	SocketMode string `yaml:"socketMode,omitempty"`
}

type Log struct {
	Level string `yaml:"level,omitempty"`
}

type Thresholds struct {
	MemoryPercent float64 `yaml:"memoryPercent"`
	DiskPercent   float64 `yaml:"diskPercent"`
}

type Sampling struct {
	Interval time.Duration `yaml:"interval,omitempty"`
	DiskPath string        `yaml:"diskPath,omitempty"`
}

type Config struct {
	HTTP        HTTP       `yaml:"http,omitempty"`
	Health      Health     `yaml:"health,omitempty"`
	Log         Log        `yaml:"log,omitempty"`
	Environment string     `yaml:"environment,omitempty"`
	Thresholds  Thresholds `yaml:"thresholds"`
	Sampling    Sampling   `yaml:"sampling,omitempty"`
}

// Default returns a config with every field populated.
func Default() *Config {
	cfg := &Config{
		Thresholds: Thresholds{
			MemoryPercent: DefaultMemoryPercent,
			DiskPercent:   DefaultDiskPercent,
		},
	}
	cfg.applyDefaults()
	return cfg
}

// applyDefaults fills fields whose zero value is never meaningful. Thresholds
// are left alone since 0 is a valid setting; they default through Default.

func (c *Config) applyDefaults() {
	if c.HTTP.Listen == "" {
		c.HTTP.Listen = DefaultListen
	}
	if c.Health.Socket == "" {
		c.Health.Socket = DefaultSocket
	}
	if c.Health.SocketMode == "" {
		c.Health.SocketMode = DefaultSocketMode
	}
	if c.Log.Level == "" {
		c.Log.Level = DefaultLogLevel
	}
	if c.Environment == "" {
		c.Environment = DefaultEnvironment
	}
	if c.Sampling.Interval == 0 {
		c.Sampling.Interval = DefaultSampleInterval
	}
	if c.Sampling.DiskPath == "" {
		c.Sampling.DiskPath = DefaultDiskPath
	}
}

// ApplyEnv overrides fields from PERMCALC_* environment variables.
func (c *Config) ApplyEnv() {
	if v, ok := os.LookupEnv(envListen); ok && v != "" {
		c.HTTP.Listen = v
	}
	if v, ok := os.LookupEnv(envEnvironment); ok && v != "" {
		c.Environment = v
	}
	if v, ok := os.LookupEnv(envLogLevel); ok && v != "" {
		c.Log.Level = v
	}
}

// SocketPath resolves the health socket against dir unless it is absolute.
func (c *Config) SocketPath(dir string) string {
	if filepath.IsAbs(c.Health.Socket) {
		return c.Health.Socket
	}
	return filepath.Join(dir, c.Health.Socket)
}

// SocketFileMode parses Health.SocketMode, which may be written in octal
// ("660"), as a chmod literal ("0660") or in symbolic form ("rw-rw----").
func (c *Config) SocketFileMode() (fs.FileMode, error) {
	mode := c.Health.SocketMode
	if utf8.RuneCountInString(mode) == chmodLiteralLen && strings.HasPrefix(mode, "0") {
		mode = mode[1:]
	}
	m, _, err := perm.Parse(mode)
	if err != nil {
		return 0, fmt.Errorf("health.socketMode: %w", err)
	}
	return m.FileMode(), nil
}

// Validate reports every problem at once.
func (c *Config) Validate() error {
	var err error
	if _, _, splitErr := net.SplitHostPort(c.HTTP.Listen); splitErr != nil {
		err = multierr.Append(err, fmt.Errorf("http.listen: %w", splitErr))
	}
	if _, modeErr := c.SocketFileMode(); modeErr != nil {
		err = multierr.Append(err, modeErr)
	}
	if _, lvlErr := zapcore.ParseLevel(c.Log.Level); lvlErr != nil {
		err = multierr.Append(err, fmt.Errorf("log.level: %w", lvlErr))
	}
	if p := c.Thresholds.MemoryPercent; p < 0 || p > maximumThresholdPct {
		err = multierr.Append(err, fmt.Errorf("thresholds.memoryPercent must be within 0-100, got %v", p))
	}
	if p := c.Thresholds.DiskPercent; p < 0 || p > maximumThresholdPct {
		err = multierr.Append(err, fmt.Errorf("thresholds.diskPercent must be within 0-100, got %v", p))
	}
	if c.Sampling.Interval < minimumSampleInterval {
		err = multierr.Append(err, fmt.Errorf("sampling.interval must be >= %s", minimumSampleInterval))
	}
	return err
}

// Path is where Load and Save keep the config for dir.
func Path(dir string) string { return filepath.Join(dir, configFileName) }

// Load reads the config for dir over the defaults. It does not validate, so
// that environment and flag overrides can be applied before Validate.
func Load(dir string) (*Config, error) {
	path := Path(dir)
	raw, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Default(), nil
		}
		return nil, fmt.Errorf("read config: %w", err)
	}

	cfg := Default()
	if len(bytes.TrimSpace(raw)) != 0 {
		if err := yaml.Unmarshal(raw, cfg); err != nil {
			return nil, fmt.Errorf("unmarshal config %s: %w", path, err)
		}
	}
	cfg.applyDefaults()
	return cfg, nil
}

func Save(dir string, cfg *Config) error {
	if cfg == nil {
		cfg = Default()
	}
	cfg.applyDefaults()

	if err := cfg.Validate(); err != nil {
		return err
	}

	if err := os.MkdirAll(dir, directoryPerm); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}

	encoded, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}

	if err := renameio.WriteFile(Path(dir), encoded, configFilePerm); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}
