// config реализует конфигурацию comments-service и commentctl: загрузка из YAML/ENV
// с предсказуемым приоритетом.
package config

import (
	"fmt"
	"net"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

// Config — корневая конфигурация сервиса.
// Приоритет источников:
//  1. явный путь, переданный в MustLoad/Load;
//  2. переменная окружения CONFIG_PATH;
//  3. файл ./local.yaml из рабочей директории;
//  4. переменные окружения.
type Config struct {
	Env      string        `yaml:"env" env:"ENV" env-default:"local"`
	HTTP     HTTPConfig    `yaml:"http"`
	Metrics  MetricsConfig `yaml:"metrics"`
	DB       DBConfig      `yaml:"db"`
	Redis    RedisConfig   `yaml:"redis"`
	Auth     AuthConfig    `yaml:"auth"`
	Limits   LimitsConfig  `yaml:"limits"`
	Timeouts TimeoutConfig `yaml:"timeouts"`
}

// TimeoutConfig — сервисные таймауты (общий дедлайн обработки запроса).
type TimeoutConfig struct {
	Service time.Duration `yaml:"service" env:"SERVICE_TIMEOUT" env-default:"5s"`
}

// HTTPConfig — публичный REST API комментариев.
type HTTPConfig struct {
	Host string `yaml:"host" env:"HTTP_HOST" env-default:"0.0.0.0"`
	Port string `yaml:"port" env:"HTTP_PORT" env-default:"50090"`
	// Префикс маршрутов API; пустая строка монтирует их в корень.
	BasePath string `yaml:"base_path" env:"HTTP_BASE_PATH" env-default:"/api"`
}

// Addr возвращает адрес в формате host:port.
func (h HTTPConfig) Addr() string {
	return net.JoinHostPort(h.Host, h.Port)
}

// MetricsConfig — отдельный HTTP для health/metrics.
type MetricsConfig struct {
	Host string `yaml:"host" env:"METRICS_HOST" env-default:"0.0.0.0"`
	Port string `yaml:"port" env:"METRICS_PORT" env-default:"50085"`
}

// Addr возвращает адрес в формате host:port.
func (m MetricsConfig) Addr() string {
	return net.JoinHostPort(m.Host, m.Port)
}

// DBConfig — настройки подключения к MongoDB.
type DBConfig struct {
	URL string `yaml:"url" env:"DATABASE_URL" env-required:"true"`
}

// RedisConfig — кэш списков комментариев. Пустой Addr выключает кэш.
type RedisConfig struct {
	Addr     string        `yaml:"addr"     env:"REDIS_ADDR"`
	Password string        `yaml:"password" env:"REDIS_PASSWORD"`
	DB       int           `yaml:"db"       env:"REDIS_DB"  env-default:"0"`
	TTL      time.Duration `yaml:"ttl"      env:"REDIS_TTL" env-default:"30s"`
}

// Enabled — включён ли кэш.
func (r RedisConfig) Enabled() bool {
	return strings.TrimSpace(r.Addr) != ""
}

// AuthConfig — проверка bearer-токенов (HS256).
type AuthConfig struct {
	Secret string `yaml:"secret" env:"AUTH_SECRET" env-required:"true"`
	Issuer string `yaml:"issuer" env:"AUTH_ISSUER" env-default:"bragboard"`
	// Роли, которым разрешено править и удалять чужие комментарии.
	ModeratorRoles []string `yaml:"moderator_roles" env:"AUTH_MODERATOR_ROLES" env-separator:"," env-default:"admin,moderator"`
}

// LimitsConfig — лимиты на содержимое.
type LimitsConfig struct {
	// Максимальная длина комментария в символах (рунах).
	MaxContent int `yaml:"max_content" env:"MAX_CONTENT" env-default:"2000"`
}

// MustLoad — обёртка над Load с panic при ошибке.
func MustLoad(path string) *Config {
	cfg, err := Load(path)
	if err != nil {
		panic(err)
	}

	return cfg
}

// Load загружает конфигурацию сервиса по приоритету:
// 1) явный путь; 2) CONFIG_PATH; 3) ./local.yaml; 4) ENV.
func Load(path string) (*Config, error) {
	var cfg Config
	if err := read(&cfg, path, "CONFIG_PATH", "local.yaml"); err != nil {
		return nil, err
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// validate — базовая валидация значений.
func (c *Config) validate() error {
	if c.DB.URL == "" {
		return fmt.Errorf("db.url is required")
	}

	if strings.TrimSpace(c.Auth.Secret) == "" {
		return fmt.Errorf("auth.secret is required")
	}

	if len(c.Auth.Secret) < 16 {
		return fmt.Errorf("auth.secret must be at least 16 bytes")
	}

	if len(c.Auth.ModeratorRoles) == 0 {
		return fmt.Errorf("auth.moderator_roles must not be empty")
	}

	if c.Limits.MaxContent <= 0 {
		return fmt.Errorf("limits.max_content must be > 0")
	}

	if c.Timeouts.Service <= 0 {
		return fmt.Errorf("timeouts.service must be > 0")
	}

	if bp := c.HTTP.BasePath; bp != "" && (!strings.HasPrefix(bp, "/") || strings.HasSuffix(bp, "/")) {
		return fmt.Errorf("http.base_path must start with '/' and must not end with '/'")
	}

	if c.Redis.Enabled() && c.Redis.TTL <= 0 {
		return fmt.Errorf("redis.ttl must be > 0")
	}

	return nil
}

// read — общий порядок загрузки для сервиса и клиента.
// После чтения файла накладываем ENV-переменные поверх значений из YAML.
func read(cfg any, path, pathEnv, localFile string) error {
	// чтение файла + overlay ENV.
	tryRead := func(p string) error {
		if _, err := os.Stat(p); err != nil {
			return fmt.Errorf("config file %q stat failed: %w", p, err)
		}

		if err := cleanenv.ReadConfig(p, cfg); err != nil {
			return fmt.Errorf("failed to read config: %w", err)
		}

		if err := cleanenv.ReadEnv(cfg); err != nil {
			return fmt.Errorf("failed to overlay env: %w", err)
		}

		return nil
	}

	// 1) Явный путь.
	if path != "" {
		return tryRead(path)
	}

	// 2) Путь из окружения.
	if envPath := os.Getenv(pathEnv); envPath != "" {
		return tryRead(envPath)
	}

	// 3) Локальный файл.
	if _, err := os.Stat(localFile); err == nil {
		return tryRead(localFile)
	}

	// 4) Только ENV.
	if err := cleanenv.ReadEnv(cfg); err != nil {
		return fmt.Errorf("config not found: provide --config, %s, %s or env vars: %w", pathEnv, localFile, err)
	}

	return nil
}

// validBaseURL проверяет абсолютный http(s) URL.
func validBaseURL(raw string) error {
	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("base_url: %w", err)
	}

	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("base_url must be http(s), got %q", raw)
	}

	if u.Host == "" {
		return fmt.Errorf("base_url must contain host")
	}

	return nil
}
