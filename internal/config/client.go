package config

import (
	"fmt"
	"time"
)

// ClientConfig — конфигурация commentctl.
// Приоритет источников: --config, COMMENTCTL_CONFIG, ./commentctl.yaml, ENV.
type ClientConfig struct {
	Env        string       `yaml:"env"         env:"ENV"                  env-default:"local"`
	BaseURL    string       `yaml:"base_url"    env:"COMMENTS_BASE_URL"    env-default:"http://127.0.0.1:50090/api"`
	Token      string       `yaml:"token"       env:"COMMENTS_TOKEN"`
	DateLayout string       `yaml:"date_layout" env:"COMMENTS_DATE_LAYOUT" env-default:"1/2/2006"`
	Timeouts   ClientTiming `yaml:"timeouts"`
	Retry      RetryConfig  `yaml:"retry"`
}

// ClientTiming — таймаут одного HTTP-запроса.
type ClientTiming struct {
	Request time.Duration `yaml:"request" env:"COMMENTS_REQUEST_TIMEOUT" env-default:"10s"`
}

// RetryConfig — повторы идемпотентных запросов при 502/503/504 и сетевых ошибках.
type RetryConfig struct {
	Count   int           `yaml:"count"   env:"COMMENTS_RETRY_COUNT"   env-default:"2"`
	Backoff time.Duration `yaml:"backoff" env:"COMMENTS_RETRY_BACKOFF" env-default:"200ms"`
}

// LoadClient загружает конфигурацию клиента.
func LoadClient(path string) (*ClientConfig, error) {
	var cfg ClientConfig
	if err := read(&cfg, path, "COMMENTCTL_CONFIG", "commentctl.yaml"); err != nil {
		return nil, err
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func (c *ClientConfig) validate() error {
	if err := validBaseURL(c.BaseURL); err != nil {
		return err
	}

	if c.Timeouts.Request <= 0 {
		return fmt.Errorf("timeouts.request must be > 0")
	}

	if c.Retry.Count < 0 || c.Retry.Count > 10 {
		return fmt.Errorf("retry.count must be within [0, 10]")
	}

	if c.Retry.Count > 0 && c.Retry.Backoff <= 0 {
		return fmt.Errorf("retry.backoff must be > 0 when retries are enabled")
	}

	return nil
}
