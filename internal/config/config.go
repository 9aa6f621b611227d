// config предоставляет структуру конфигурации каталога игр
// и функции загрузки из YAML/ENV с предсказуемым приоритетом.
package config

import (
	"fmt"
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

// Окружения для выбора логгера.
const (
	EnvLocal = "local"
	EnvDev   = "dev"
	EnvProd  = "prod"
)

// Бэкенды хранилища истории поиска.
const (
	BackendFile   = "file"
	BackendRedis  = "redis"
	BackendBadger = "badger"
	BackendMemory = "memory"
)

// Config — корневая конфигурация.
// Приоритет источников:
//  1. явный путь, переданный в MustLoad/Load;
//  2. переменная окружения CONFIG_PATH;
//  3. файл ./local.yaml из рабочей директории;
//  4. переменные окружения.
type Config struct {
	Env      string        `yaml:"env" env:"ENV" env-default:"local"`
	RAWG     RAWGConfig    `yaml:"rawg"`
	Timeouts TimeoutConfig `yaml:"timeouts"`
	History  HistoryConfig `yaml:"history"`
	Metrics  MetricsConfig `yaml:"metrics"`
}

// RAWGConfig — доступ к API каталога.
type RAWGConfig struct {
	BaseURL string `yaml:"base_url" env:"RAWG_BASE_URL" env-default:"https://api.rawg.io/api"`
	APIKey  string `yaml:"api_key"  env:"RAWG_API_KEY"  env-required:"true"`
	// Locale передаётся параметром locale в локализуемые выдачи.
	Locale   string `yaml:"locale"    env:"RAWG_LOCALE"    env-default:"es"`
	PageSize int    `yaml:"page_size" env:"RAWG_PAGE_SIZE" env-default:"20"`
	// RPS — клиентский лимит запросов в секунду (0 — без лимита).
	RPS   float64 `yaml:"rps"   env:"RAWG_RPS"   env-default:"5"`
	Burst int     `yaml:"burst" env:"RAWG_BURST" env-default:"2"`
}

// TimeoutConfig — таймауты.
type TimeoutConfig struct {
	// Request — таймаут одного HTTP-запроса к каталогу.
	Request time.Duration `yaml:"request" env:"REQUEST_TIMEOUT" env-default:"15s"`
}

// HistoryConfig — где хранится история поиска.
type HistoryConfig struct {
	Backend  string `yaml:"backend"   env:"HISTORY_BACKEND"   env-default:"file"`
	Path     string `yaml:"path"      env:"HISTORY_PATH"      env-default:".catalog"`
	RedisURL string `yaml:"redis_url" env:"HISTORY_REDIS_URL"`
	Key      string `yaml:"key"       env:"HISTORY_KEY"       env-default:"searchHistory"`
}

// MetricsConfig — экспорт метрик Prometheus.
type MetricsConfig struct {
	// Addr — адрес HTTP-листенера /metrics (пусто — метрики не публикуются).
	Addr string `yaml:"addr" env:"METRICS_ADDR"`
}

// MustLoad — обёртка над Load с panic при ошибке.
func MustLoad(path string) *Config {
	cfg, err := Load(path)
	if err != nil {
		panic(err)
	}
	return cfg
}

// Load загружает конфигурацию по приоритету:
// 1) явный путь; 2) CONFIG_PATH; 3) ./local.yaml; 4) ENV.
func Load(path string) (*Config, error) {
	var cfg Config

	tryRead := func(p string) (*Config, error) {
		if _, err := os.Stat(p); err != nil {
			return nil, fmt.Errorf("config file does not exist: %s", p)
		}
		if err := cleanenv.ReadConfig(p, &cfg); err != nil {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
		return &cfg, nil
	}

	var (
		c   *Config
		err error
	)

	switch envPath := os.Getenv("CONFIG_PATH"); {
	case path != "":
		c, err = tryRead(path)
	case envPath != "":
		c, err = tryRead(envPath)
	default:
		if _, statErr := os.Stat("local.yaml"); statErr == nil {
			if err := cleanenv.ReadConfig("local.yaml", &cfg); err != nil {
				return nil, fmt.Errorf("failed to read local.yaml: %w", err)
			}
			c = &cfg
			break
		}
		if err := cleanenv.ReadEnv(&cfg); err != nil {
			return nil, fmt.Errorf("config not found: provide --config, CONFIG_PATH, local.yaml or env vars: %w", err)
		}
		c = &cfg
	}
	if err != nil {
		return nil, err
	}

	if err := c.validate(); err != nil {
		return nil, err
	}
	return c, nil
}

// validate — базовая валидация значений.
func (c *Config) validate() error {
	switch c.Env {
	case EnvLocal, EnvDev, EnvProd:
	default:
		return fmt.Errorf("env must be one of local, dev, prod")
	}
	if c.RAWG.APIKey == "" {
		return fmt.Errorf("rawg.api_key is required")
	}
	if c.RAWG.PageSize < 1 || c.RAWG.PageSize > 40 {
		return fmt.Errorf("rawg.page_size must be in [1, 40]")
	}
	if c.RAWG.RPS < 0 {
		return fmt.Errorf("rawg.rps must be >= 0")
	}
	if c.Timeouts.Request <= 0 {
		return fmt.Errorf("timeouts.request must be > 0")
	}

	switch c.History.Backend {
	case BackendFile, BackendBadger:
		if c.History.Path == "" {
			return fmt.Errorf("history.path is required for backend %s", c.History.Backend)
		}
	case BackendRedis:
		if c.History.RedisURL == "" {
			return fmt.Errorf("history.redis_url is required for backend redis")
		}
	case BackendMemory:
	default:
		return fmt.Errorf("history.backend must be one of file, redis, badger, memory")
	}
	if c.History.Key == "" {
		return fmt.Errorf("history.key must not be empty")
	}
	return nil
}
