package initializers

import (
	"fmt"
	"log"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

type Config struct {
	DBURL         string        `env:"DB_URL,required,notEmpty"`
	Port          string        `env:"PORT" envDefault:"8080"`
	LogLevel      string        `env:"LOG_LEVEL" envDefault:"info"`
	SessionTTL    time.Duration `env:"SESSION_TTL" envDefault:"30m"`
	AllowOrigins  []string      `env:"CORS_ALLOW_ORIGINS" envSeparator:"," envDefault:"*"`
	RunMigrations bool          `env:"RUN_MIGRATIONS" envDefault:"true"`

	ResendAPIKey    string `env:"RESEND_API_KEY"`
	ResendFromEmail string `env:"RESEND_FROM_EMAIL"`
	PastoralEmail   string `env:"PASTORAL_EMAIL"`

	FirebaseServiceAccountPath string `env:"FIREBASE_SERVICE_ACCOUNT_PATH"`
	PastoralPushTopic          string `env:"PASTORAL_PUSH_TOPIC"`
}

var Env Config

// LoadEnv reads .env when present and parses the process environment into Env.
func LoadEnv() error {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using process environment")
	}

	cfg, err := ParseConfig()
	if err != nil {
		return err
	}
	Env = cfg
	return nil
}

func ParseConfig() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	if cfg.SessionTTL <= 0 {
		return Config{}, fmt.Errorf("SESSION_TTL must be positive, got %s", cfg.SessionTTL)
	}
	return cfg, nil
}
