package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"
)

const (
	DriverSQLite   = "sqlite3"
	DriverPostgres = "pgx"
)

type Config struct {
	LogLevel string `yaml:"log_level" env:"LOG_LEVEL" env-default:"INFO"`

	DBDriver   string `yaml:"db_driver" env:"DB_DRIVER" env-default:"sqlite3"`
	DBPath     string `yaml:"db_path" env:"DB_PATH" env-default:"projects.db"`
	DBHost     string `yaml:"db_host" env:"DB_HOST" env-default:"localhost"`
	DBPort     string `yaml:"db_port" env:"DB_PORT" env-default:"5432"`
	DBUser     string `yaml:"db_username" env:"DB_USERNAME" env-default:"postgres"`
	DBPassword string `yaml:"db_password" env:"DB_PASSWORD" env-default:"postgres"`
	DBName     string `yaml:"db_database" env:"DB_DATABASE" env-default:"airdrops"`
	DBSSLMode  string `yaml:"db_sslmode" env:"DB_SSLMODE" env-default:"disable"`

	DataFile string `yaml:"projects_json" env:"PROJECTS_JSON" env-default:"data/projects.json"`

	OpenAIKey      string        `yaml:"openai_api_key" env:"OPENAI_API_KEY"`
	OpenAIBaseURL  string        `yaml:"openai_base_url" env:"OPENAI_BASE_URL"`
	Model          string        `yaml:"openai_model" env:"OPENAI_MODEL" env-default:"gpt-4o"`
	Temperature    float32       `yaml:"openai_temperature" env:"OPENAI_TEMPERATURE" env-default:"0.8"`
	RequestTimeout time.Duration `yaml:"openai_timeout" env:"OPENAI_TIMEOUT" env-default:"60s"`

	HTTPPort   string `yaml:"http_port" env:"HTTP_PORT" env-default:"3000"`
	ReloadCron string `yaml:"reload_cron" env:"RELOAD_CRON"`

	TelegramToken string `yaml:"telegram_bot_token" env:"TELEGRAM_BOT_TOKEN"`
}

// Load reads .env into the process environment, then fills Config from the
// YAML file at path. A missing file falls back to environment variables only.
func Load(path string) (Config, error) {
	_ = godotenv.Load()

	var cfg Config
	if path == "" {
		if err := cleanenv.ReadEnv(&cfg); err != nil {
			return cfg, fmt.Errorf("read env: %w", err)
		}
		return cfg, cfg.Validate()
	}

	if err := cleanenv.ReadConfig(path, &cfg); err != nil {
		var pe *os.PathError
		if !errors.As(err, &pe) {
			return cfg, fmt.Errorf("read config %q: %w", path, err)
		}
		if err := cleanenv.ReadEnv(&cfg); err != nil {
			return cfg, fmt.Errorf("read env: %w", err)
		}
	}

	return cfg, cfg.Validate()
}

func (c Config) Validate() error {
	switch c.DBDriver {
	case DriverSQLite:
		if c.DBPath == "" {
			return errors.New("missing DB_PATH for sqlite3 driver")
		}
	case DriverPostgres:
		if c.DBHost == "" || c.DBUser == "" || c.DBName == "" {
			return errors.New("missing database configuration")
		}
	default:
		return fmt.Errorf("unsupported DB_DRIVER %q", c.DBDriver)
	}

	if c.DataFile == "" {
		return errors.New("missing PROJECTS_JSON")
	}
	return nil
}

// RequireModel reports whether the remote model can be called at all.
func (c Config) RequireModel() error {
	if c.OpenAIKey == "" {
		return errors.New("missing OPENAI_API_KEY")
	}
	return nil
}

func (c Config) PostgresDSN() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=%s", c.DBUser, c.DBPassword, c.DBHost, c.DBPort, c.DBName, c.DBSSLMode)
}

func (c Config) SQLiteDSN() string {
	return fmt.Sprintf("file:%s?_foreign_keys=on", c.DBPath)
}

// DSN returns the data source name for the configured driver.
func (c Config) DSN() string {
	if c.DBDriver == DriverPostgres {
		return c.PostgresDSN()
	}
	return c.SQLiteDSN()
}
