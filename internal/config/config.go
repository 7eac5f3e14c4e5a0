package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds every parameter of the kitchen display process.
type Config struct {
	Display  DisplayConfig  `yaml:"display"`
	Database DatabaseConfig `yaml:"database"`
	RabbitMQ RabbitMQConfig `yaml:"rabbitmq"`
	Redis    RedisConfig    `yaml:"redis"`
	HTTP     HTTPConfig     `yaml:"http"`
	Log      LogConfig      `yaml:"log"`
}

// DisplayConfig describes the board itself: grid size and every timing
// constant of the order lifecycle.
type DisplayConfig struct {
	Name                string        `yaml:"name"`
	WindowSize          int           `yaml:"window_size"`
	TickInterval        time.Duration `yaml:"tick_interval"`
	GracePeriod         time.Duration `yaml:"grace_period"`
	QuickReduceWindow   time.Duration `yaml:"quick_reduce_window"`
	DefaultDuration     time.Duration `yaml:"default_duration"`
	AlmostDoneThreshold time.Duration `yaml:"almost_done_threshold"`
	QuickReduceDuration time.Duration `yaml:"quick_reduce_duration"`
	ResetDuration       time.Duration `yaml:"reset_duration"`
	OutboxSize          int           `yaml:"outbox_size"`
}

type DatabaseConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	Database string `yaml:"database"`
	SSLMode  string `yaml:"sslmode"`
	MaxConns int32  `yaml:"max_conns"`
}

type RabbitMQConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	VHost    string `yaml:"vhost"`
	UseTLS   bool   `yaml:"use_tls"`
	Prefetch int    `yaml:"prefetch"`
}

// RedisConfig is optional: an empty Addr disables the board notificator.
type RedisConfig struct {
	Addr     string        `yaml:"addr"`
	Password string        `yaml:"password"`
	DB       int           `yaml:"db"`
	TTL      time.Duration `yaml:"ttl"`
}

type HTTPConfig struct {
	Port int `yaml:"port"`
}

type LogConfig struct {
	Level string `yaml:"level"`
}

// Default returns a Config filled with the stock kitchen timings.
func Default() Config {
	return Config{
		Display: DisplayConfig{
			Name:                "kitchen",
			WindowSize:          6,
			TickInterval:        time.Second,
			GracePeriod:         300 * time.Millisecond,
			QuickReduceWindow:   300 * time.Millisecond,
			DefaultDuration:     15 * time.Minute,
			AlmostDoneThreshold: 5 * time.Minute,
			QuickReduceDuration: 5 * time.Minute,
			ResetDuration:       15 * time.Minute,
			OutboxSize:          256,
		},
		Database: DatabaseConfig{Port: 5432, SSLMode: "disable", MaxConns: 10},
		RabbitMQ: RabbitMQConfig{Port: 5672, VHost: "/", Prefetch: 16},
		Redis:    RedisConfig{TTL: time.Minute},
		HTTP:     HTTPConfig{Port: 3005},
		Log:      LogConfig{Level: "info"},
	}
}

// LoadConfig reads the YAML file at path on top of Default and validates it.
func LoadConfig(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("couldn't open the file for the configuration: %w", err)
	}
	return Parse(b)
}

// Parse decodes raw YAML on top of Default and validates the result.
func Parse(b []byte) (*Config, error) {
	cfg := Default()
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return nil, fmt.Errorf("error reading config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate rejects values the board cannot run with. Connection sections
// are checked by the caller that actually dials them.
func (c *Config) Validate() error {
	d := c.Display
	switch {
	case d.Name == "":
		return errors.New("invalid config: display.name is empty")
	case d.WindowSize <= 0:
		return fmt.Errorf("invalid config: display.window_size must be positive, got %d", d.WindowSize)
	case d.TickInterval <= 0:
		return errors.New("invalid config: display.tick_interval must be positive")
	case d.GracePeriod <= 0:
		return errors.New("invalid config: display.grace_period must be positive")
	case d.QuickReduceWindow < 0:
		return errors.New("invalid config: display.quick_reduce_window is negative")
	case d.DefaultDuration < time.Second, d.QuickReduceDuration < time.Second, d.ResetDuration < time.Second:
		return errors.New("invalid config: order durations must be at least one second")
	case d.OutboxSize <= 0:
		return errors.New("invalid config: display.outbox_size must be positive")
	}
	return nil
}

// DatabaseEnabled reports whether a bulk-load database is configured.
func (c *Config) DatabaseEnabled() bool {
	return c.Database.Host != "" && c.Database.User != "" && c.Database.Database != ""
}

// RabbitEnabled reports whether an order source broker is configured.
func (c *Config) RabbitEnabled() bool {
	return c.RabbitMQ.Host != "" && c.RabbitMQ.User != ""
}

func FindConfig() (string, error) {
	candidates := []string{"config.yaml", "deploy/config.example.yaml"}
	for _, p := range candidates {
		if _, err := os.Stat(p); err == nil {
			return p, nil
		}
	}
	return "", fs.ErrNotExist
}
