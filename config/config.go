package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"
)

const envPrefix = "SKYSAILOR"

type Config struct {
	App      AppConfig      `yaml:"app" envconfig:"APP"`
	HTTP     HTTPConfig     `yaml:"http" envconfig:"HTTP"`
	GRPC     GRPCConfig     `yaml:"grpc" envconfig:"GRPC"`
	Database DatabaseConfig `yaml:"database" envconfig:"DATABASE"`
	Redis    RedisConfig    `yaml:"redis" envconfig:"REDIS"`
	Kafka    KafkaConfig    `yaml:"kafka" envconfig:"KAFKA"`
	NATS     NATSConfig     `yaml:"nats" envconfig:"NATS"`
	Local    LocalConfig    `yaml:"local" envconfig:"LOCAL"`
	JWT      JWTConfig      `yaml:"jwt" envconfig:"JWT"`
	Booking  BookingConfig  `yaml:"booking" envconfig:"BOOKING"`
	Search   SearchConfig   `yaml:"search" envconfig:"SEARCH"`
	Notify   NotifyConfig   `yaml:"notify" envconfig:"NOTIFY"`
	Worker   WorkerConfig   `yaml:"worker" envconfig:"WORKER"`
}

type AppConfig struct {
	Name     string `yaml:"name" split_words:"true"`
	Env      string `yaml:"env" split_words:"true"`
	LogLevel string `yaml:"log_level" split_words:"true"`
}

func (a AppConfig) IsDevelopment() bool {
	return a.Env == "" || a.Env == "development" || a.Env == "local"
}

type HTTPConfig struct {
	Address    string `yaml:"address" split_words:"true"`
	SwaggerDir string `yaml:"swagger_dir" split_words:"true"`
}

type GRPCConfig struct {
	Address string `yaml:"address" split_words:"true"`
}

type DatabaseConfig struct {
	Host     string `yaml:"host" split_words:"true"`
	Port     int    `yaml:"port" split_words:"true"`
	User     string `yaml:"user" split_words:"true"`
	Password string `yaml:"password" split_words:"true"`
	Name     string `yaml:"name" split_words:"true"`
	SSLMode  string `yaml:"ssl_mode" split_words:"true"`
}

func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s", d.Host, d.Port, d.User, d.Password, d.Name, d.SSLMode)
}

// URL is the postgres:// form golang-migrate expects.
func (d DatabaseConfig) URL() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s", d.User, d.Password, d.Host, d.Port, d.Name, d.SSLMode)
}

type RedisConfig struct {
	Addr     string `yaml:"addr" split_words:"true"`
	Password string `yaml:"password" split_words:"true"`
	DB       int    `yaml:"db" split_words:"true"`
}

type KafkaConfig struct {
	Brokers            []string `yaml:"brokers" split_words:"true"`
	BookingEventsTopic string   `yaml:"booking_events_topic" split_words:"true"`
	GroupID            string   `yaml:"group_id" split_words:"true"`
}

type NATSConfig struct {
	URL           string `yaml:"url" split_words:"true"`
	SubjectPrefix string `yaml:"subject_prefix" split_words:"true"`
}

type LocalConfig struct {
	// Dir is the badger directory; empty keeps the cache in memory.
	Dir string `yaml:"dir" split_words:"true"`
}

type JWTConfig struct {
	Secret              string `yaml:"secret" split_words:"true"`
	Issuer              string `yaml:"issuer" split_words:"true"`
	AccessExpireMinutes int    `yaml:"access_expire_minutes" split_words:"true"`
}

type BookingConfig struct {
	MaxAttempts            int `yaml:"max_attempts" split_words:"true"`
	FlightsCacheTTLSeconds int `yaml:"flights_cache_ttl_seconds" split_words:"true"`
}

type SearchConfig struct {
	WindowDays int `yaml:"window_days" split_words:"true"`
}

type NotifyConfig struct {
	Timezone string `yaml:"timezone" split_words:"true"`
	From     string `yaml:"from" split_words:"true"`
}

// Location resolves Timezone, falling back to the process local zone.
func (n NotifyConfig) Location() (*time.Location, error) {
	if n.Timezone == "" || n.Timezone == "Local" {
		return time.Local, nil
	}
	return time.LoadLocation(n.Timezone)
}

type WorkerConfig struct {
	DispatchIntervalSeconds int `yaml:"dispatch_interval_seconds" split_words:"true"`
}

func (c *Config) FlightsCacheTTL() time.Duration {
	return time.Duration(c.Booking.FlightsCacheTTLSeconds) * time.Second
}

func (c *Config) DispatchInterval() time.Duration {
	return time.Duration(c.Worker.DispatchIntervalSeconds) * time.Second
}

func (c *Config) applyDefaults() {
	if c.App.Name == "" {
		c.App.Name = "skysailor"
	}
	if c.App.LogLevel == "" {
		c.App.LogLevel = "info"
	}
	if c.HTTP.Address == "" {
		c.HTTP.Address = ":8080"
	}
	if c.GRPC.Address == "" {
		c.GRPC.Address = ":9090"
	}
	if c.NATS.URL == "" {
		c.NATS.URL = "nats://localhost:4222"
	}
	if c.NATS.SubjectPrefix == "" {
		c.NATS.SubjectPrefix = "skysailor"
	}
	if c.Kafka.BookingEventsTopic == "" {
		c.Kafka.BookingEventsTopic = "booking-events"
	}
	if c.Kafka.GroupID == "" {
		c.Kafka.GroupID = "skysailor-worker"
	}
	if c.JWT.Secret == "" && c.App.IsDevelopment() {
		c.JWT.Secret = "skysailor-dev-secret"
	}
	if c.JWT.Issuer == "" {
		c.JWT.Issuer = c.App.Name
	}
	if c.JWT.AccessExpireMinutes == 0 {
		c.JWT.AccessExpireMinutes = 60
	}
	if c.Booking.MaxAttempts <= 0 {
		c.Booking.MaxAttempts = 5
	}
	if c.Booking.FlightsCacheTTLSeconds == 0 {
		c.Booking.FlightsCacheTTLSeconds = 60
	}
	if c.Search.WindowDays <= 0 {
		c.Search.WindowDays = 3
	}
	if c.Notify.From == "" {
		c.Notify.From = "noreply@skysailor.app"
	}
	if c.Worker.DispatchIntervalSeconds <= 0 {
		c.Worker.DispatchIntervalSeconds = 30
	}
}

// LoadConfig reads the YAML file at path (a missing file is not an error),
// overlays SKYSAILOR_* environment variables, optionally seeded from .env, and
// fills defaults.
func LoadConfig(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}

	var cfg Config
	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config: %w", err)
		}
	case errors.Is(err, fs.ErrNotExist):
	default:
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	if err := envconfig.Process(envPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("failed to process environment: %w", err)
	}

	cfg.applyDefaults()
	return &cfg, nil
}
