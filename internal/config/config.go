package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/kelseyhightower/envconfig"

	"github.com/m04kA/SMC-CourtBookingService/internal/domain"
	"github.com/m04kA/SMC-CourtBookingService/pkg/types"
	"github.com/m04kA/SMC-CourtBookingService/pkg/tzclock"
)

// ErrInvalidConfig возвращается, если конфигурация не прошла проверку
var ErrInvalidConfig = errors.New("config: invalid configuration")

// Config конфигурация сервиса
type Config struct {
	Server       ServerConfig       `toml:"server"`
	Database     DatabaseConfig     `toml:"database"`
	Logs         LogsConfig         `toml:"logs"`
	Metrics      MetricsConfig      `toml:"metrics"`
	Tracing      TracingConfig      `toml:"tracing"`
	Redis        RedisConfig        `toml:"redis"`
	Session      SessionConfig      `toml:"session"`
	Business     BusinessConfig     `toml:"business"`
	Cancellation CancellationConfig `toml:"cancellation"`
	WhatsApp     WhatsAppConfig     `toml:"whatsapp"`
	RateLimit    RateLimitConfig    `toml:"ratelimit"`
	Events       EventsConfig       `toml:"events"`
}

type ServerConfig struct {
	HTTPPort        int `toml:"http_port"`
	ReadTimeout     int `toml:"read_timeout"`     // секунды
	WriteTimeout    int `toml:"write_timeout"`    // секунды
	IdleTimeout     int `toml:"idle_timeout"`     // секунды
	ShutdownTimeout int `toml:"shutdown_timeout"` // секунды
}

type DatabaseConfig struct {
	Host            string `toml:"host"`
	Port            int    `toml:"port"`
	User            string `toml:"user"`
	Password        string `toml:"password"`
	DBName          string `toml:"dbname"`
	SSLMode         string `toml:"sslmode"`
	MaxOpenConns    int    `toml:"max_open_conns"`
	MaxIdleConns    int    `toml:"max_idle_conns"`
	ConnMaxLifetime int    `toml:"conn_max_lifetime"` // секунды
}

// DSN строка подключения для lib/pq
func (c DatabaseConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.DBName, c.SSLMode)
}

type LogsConfig struct {
	File  string `toml:"file"`
	Level string `toml:"level"`
}

type MetricsConfig struct {
	Enabled     bool   `toml:"enabled"`
	Path        string `toml:"path"`
	ServiceName string `toml:"service_name"`
}

type TracingConfig struct {
	Enabled     bool   `toml:"enabled"`
	Endpoint    string `toml:"endpoint"` // host:port OTLP gRPC
	Environment string `toml:"environment"`
}

type RedisConfig struct {
	Enabled  bool   `toml:"enabled"`
	Addr     string `toml:"addr"`
	Password string `toml:"password"`
	DB       int    `toml:"db"`
}

type SessionConfig struct {
	TTLMinutes      int `toml:"ttl_minutes"`
	JanitorInterval int `toml:"janitor_interval"` // секунды, только для in-memory
}

// TTL время жизни сессии диалога
func (c SessionConfig) TTL() time.Duration {
	return time.Duration(c.TTLMinutes) * time.Minute
}

type BusinessConfig struct {
	Timezone    string  `toml:"timezone"`
	Open        string  `toml:"open"`  // HH:MM
	Close       string  `toml:"close"` // HH:MM
	SlotMinutes int     `toml:"slot_minutes"`
	Courts      []int64 `toml:"courts"` // корты, предлагаемые в чате
}

// Hours сетка слотов
func (c BusinessConfig) Hours() domain.BusinessHours {
	return domain.BusinessHours{
		Open:        types.TimeString(c.Open),
		Close:       types.TimeString(c.Close),
		SlotMinutes: c.SlotMinutes,
	}
}

type CancellationConfig struct {
	GraceMinutes     int  `toml:"grace_minutes"`
	Idempotent       bool `toml:"idempotent"`
	AllowInsideGrace bool `toml:"allow_inside_grace"`
}

type WhatsAppConfig struct {
	Enabled       bool   `toml:"enabled"`
	APIURL        string `toml:"api_url"`
	PhoneNumberID string `toml:"phone_number_id"`
	Token         string `toml:"token"`
	VerifyToken   string `toml:"verify_token"`
	AppSecret     string `toml:"app_secret"`
	Timeout       int    `toml:"timeout"` // секунды
	ListsEnabled  bool   `toml:"lists_enabled"`
}

type RateLimitConfig struct {
	PerMinute int `toml:"per_minute"`
	Burst     int `toml:"burst"`
	IdleTTL   int `toml:"idle_ttl"` // секунды
}

type EventsConfig struct {
	Enabled  bool   `toml:"enabled"`
	URL      string `toml:"url"`
	Exchange string `toml:"exchange"`
}

// secrets переопределяются из окружения с префиксом COURTS_
type secrets struct {
	DBPassword          string `envconfig:"DB_PASSWORD"`
	WhatsAppToken       string `envconfig:"WHATSAPP_TOKEN"`
	WhatsAppVerifyToken string `envconfig:"WHATSAPP_VERIFY_TOKEN"`
	WhatsAppAppSecret   string `envconfig:"WHATSAPP_APP_SECRET"`
	RedisPassword       string `envconfig:"REDIS_PASSWORD"`
	AMQPURL             string `envconfig:"AMQP_URL"`
}

const envPrefix = "COURTS"

// Default конфигурация по умолчанию
func Default() *Config {
	hours := domain.DefaultBusinessHours()
	return &Config{
		Server: ServerConfig{
			HTTPPort:        8080,
			ReadTimeout:     15,
			WriteTimeout:    15,
			IdleTimeout:     60,
			ShutdownTimeout: 10,
		},
		Database: DatabaseConfig{
			Host:            "localhost",
			Port:            5432,
			User:            "postgres",
			DBName:          "courts",
			SSLMode:         "disable",
			MaxOpenConns:    25,
			MaxIdleConns:    5,
			ConnMaxLifetime: 300,
		},
		Logs: LogsConfig{Level: "info"},
		Metrics: MetricsConfig{
			Path:        "/metrics",
			ServiceName: "court-booking-service",
		},
		Tracing: TracingConfig{
			Endpoint:    "localhost:4317",
			Environment: "development",
		},
		Redis:   RedisConfig{Addr: "localhost:6379"},
		Session: SessionConfig{TTLMinutes: 30, JanitorInterval: 60},
		Business: BusinessConfig{
			Timezone:    tzclock.DefaultZone,
			Open:        hours.Open.String(),
			Close:       hours.Close.String(),
			SlotMinutes: hours.SlotMinutes,
			Courts:      []int64{1, 2, 3},
		},
		Cancellation: CancellationConfig{
			GraceMinutes: domain.DefaultGraceMinutes,
			Idempotent:   true,
		},
		WhatsApp: WhatsAppConfig{
			APIURL:  "https://graph.facebook.com/v20.0",
			Timeout: 10,
		},
		RateLimit: RateLimitConfig{PerMinute: 30, Burst: 10, IdleTTL: 600},
		Events:    EventsConfig{Exchange: "courts.events"},
	}
}

// Load читает TOML файл поверх значений по умолчанию, затем секреты из окружения
func Load(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: read %s: %w", path, err)
	}
	if _, err := toml.Decode(string(data), cfg); err != nil {
		return nil, fmt.Errorf("config: decode %s: %w", path, err)
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() error {
	var s secrets
	if err := envconfig.Process(envPrefix, &s); err != nil {
		return fmt.Errorf("config: env: %w", err)
	}

	override := func(dst *string, v string) {
		if v != "" {
			*dst = v
		}
	}
	override(&c.Database.Password, s.DBPassword)
	override(&c.WhatsApp.Token, s.WhatsAppToken)
	override(&c.WhatsApp.VerifyToken, s.WhatsAppVerifyToken)
	override(&c.WhatsApp.AppSecret, s.WhatsAppAppSecret)
	override(&c.Redis.Password, s.RedisPassword)
	override(&c.Events.URL, s.AMQPURL)
	return nil
}

// Validate проверяет согласованность настроек
func (c *Config) Validate() error {
	if c.Server.HTTPPort <= 0 || c.Server.HTTPPort > 65535 {
		return fmt.Errorf("%w: server.http_port %d", ErrInvalidConfig, c.Server.HTTPPort)
	}
	if _, err := time.LoadLocation(c.Business.Timezone); err != nil {
		return fmt.Errorf("%w: business.timezone %q: %v", ErrInvalidConfig, c.Business.Timezone, err)
	}
	if err := c.Business.Hours().Validate(); err != nil {
		return fmt.Errorf("%w: business: %v", ErrInvalidConfig, err)
	}
	if len(c.Business.Courts) == 0 || len(c.Business.Courts) > 3 {
		return fmt.Errorf("%w: business.courts must list 1 to 3 courts", ErrInvalidConfig)
	}
	if c.Cancellation.GraceMinutes < 0 {
		return fmt.Errorf("%w: cancellation.grace_minutes must be >= 0", ErrInvalidConfig)
	}
	if c.Session.TTLMinutes <= 0 {
		return fmt.Errorf("%w: session.ttl_minutes must be > 0", ErrInvalidConfig)
	}
	if c.Session.JanitorInterval <= 0 {
		return fmt.Errorf("%w: session.janitor_interval must be > 0", ErrInvalidConfig)
	}
	if c.RateLimit.PerMinute <= 0 || c.RateLimit.Burst <= 0 {
		return fmt.Errorf("%w: ratelimit.per_minute and ratelimit.burst must be > 0", ErrInvalidConfig)
	}
	if c.WhatsApp.Enabled {
		if c.WhatsApp.PhoneNumberID == "" || c.WhatsApp.Token == "" {
			return fmt.Errorf("%w: whatsapp.phone_number_id and token are required", ErrInvalidConfig)
		}
		if c.WhatsApp.VerifyToken == "" {
			return fmt.Errorf("%w: whatsapp.verify_token is required", ErrInvalidConfig)
		}
	}
	if c.Events.Enabled && c.Events.URL == "" {
		return fmt.Errorf("%w: events.url is required when events are enabled", ErrInvalidConfig)
	}
	return nil
}
