package config

import (
	"fmt"
	"log"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	envPort      = "PORT"
	envDBURL     = "DB_URL"
	envJWTSecret = "JWT_SECRET"

	defaultPort         = "8080"
	defaultAppURL       = "http://localhost:5173"
	defaultModel        = "gpt-4o-mini"
	defaultGradingModel = "gpt-4o"
)

type Config struct {
	Port       string `mapstructure:"PORT"`
	DBURL      string `mapstructure:"DB_URL"`
	JWTSecret  string `mapstructure:"JWT_SECRET"`
	CORSOrigin string `mapstructure:"CORS_ORIGIN"`
	AppURL     string `mapstructure:"APP_URL"`
	AppEnv     string `mapstructure:"APP_ENV"`

	StripeSecretKey     string `mapstructure:"STRIPE_SECRET_KEY"`
	StripeWebhookSecret string `mapstructure:"STRIPE_WEBHOOK_SECRET"`

	OpenAIAPIKey       string `mapstructure:"OPENAI_API_KEY"`
	OpenAIBaseURL      string `mapstructure:"OPENAI_BASE_URL"`
	OpenAIModel        string `mapstructure:"OPENAI_MODEL"`
	OpenAIGradingModel string `mapstructure:"OPENAI_GRADING_MODEL"`

	SendgridAPIKey string `mapstructure:"SENDGRID_API_KEY"`
	MailFrom       string `mapstructure:"MAIL_FROM"`

	GoogleClientID         string `mapstructure:"GOOGLE_CLIENT_ID"`
	GoogleClientSecret     string `mapstructure:"GOOGLE_CLIENT_SECRET"`
	GoogleRedirectURL      string `mapstructure:"GOOGLE_REDIRECT_URL"`
	GoogleFrontendRedirect string `mapstructure:"GOOGLE_FRONTEND_REDIRECT"`
}

var keys = []string{
	envPort, envDBURL, envJWTSecret, "CORS_ORIGIN", "APP_URL", "APP_ENV",
	"STRIPE_SECRET_KEY", "STRIPE_WEBHOOK_SECRET",
	"OPENAI_API_KEY", "OPENAI_BASE_URL", "OPENAI_MODEL", "OPENAI_GRADING_MODEL",
	"SENDGRID_API_KEY", "MAIL_FROM",
	"GOOGLE_CLIENT_ID", "GOOGLE_CLIENT_SECRET", "GOOGLE_REDIRECT_URL", "GOOGLE_FRONTEND_REDIRECT",
}

// LoadEnv loads a local .env file into the process environment if one exists.
func LoadEnv() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found. Using system environment variables.")
	}
}

// Load reads configuration from the environment. DB_URL and JWT_SECRET are required.
func Load() (Config, error) {
	v := viper.New()
	v.SetDefault(envPort, defaultPort)
	v.SetDefault("APP_URL", defaultAppURL)
	v.SetDefault("OPENAI_MODEL", defaultModel)
	v.SetDefault("OPENAI_GRADING_MODEL", defaultGradingModel)
	v.AutomaticEnv()

	for _, k := range keys {
		_ = v.BindEnv(k)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("config: unmarshal: %w", err)
	}

	if strings.TrimSpace(cfg.DBURL) == "" {
		return Config{}, fmt.Errorf("config: missing required environment variable: %s", envDBURL)
	}
	if strings.TrimSpace(cfg.JWTSecret) == "" {
		return Config{}, fmt.Errorf("config: missing required environment variable: %s", envJWTSecret)
	}
	cfg.AppURL = strings.TrimRight(cfg.AppURL, "/")

	return cfg, nil
}

// IsProduction reports whether upstream error details must be hidden from clients.
func (c Config) IsProduction() bool {
	return strings.EqualFold(c.AppEnv, "production")
}
