package config

import (
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

const defaultJWTSecret = "default-secret-key-change-in-production"

type Config struct {
	Env      string `envconfig:"APP_ENV" default:"development"`
	Port     string `envconfig:"PORT" default:"8080"`
	LogLevel string `envconfig:"LOG_LEVEL" default:"info"`

	DBUrl string `envconfig:"DB_URL"`

	JWTSecret    string        `envconfig:"JWT_SECRET"`
	JWTExpiresIn time.Duration `envconfig:"JWT_EXPIRES_IN" default:"24h"`

	PaystackSecretKey   string `envconfig:"PAYSTACK_SECRET_KEY"`
	PaystackBaseURL     string `envconfig:"PAYSTACK_BASE_URL" default:"https://api.paystack.co"`
	PaystackCallbackURL string `envconfig:"PAYSTACK_CALLBACK_URL"`
	FrontendSuccessURL  string `envconfig:"FRONTEND_SUCCESS_URL"`

	Mail Mail

	RabbitURL     string `envconfig:"RABBIT_URL"`
	OrderExchange string `envconfig:"ORDER_EXCHANGE" default:"storefront.orders"`

	RateLimitRPS   float64 `envconfig:"RATE_LIMIT_RPS" default:"10"`
	RateLimitBurst int     `envconfig:"RATE_LIMIT_BURST" default:"20"`
}

type Mail struct {
	Provider  string `envconfig:"EMAIL_PROVIDER" default:"gmail"`
	GmailUser string `envconfig:"GMAIL_USER"`
	GmailPass string `envconfig:"GMAIL_PASS"`
	SMTPHost  string `envconfig:"SMTP_HOST"`
	SMTPPort  int    `envconfig:"SMTP_PORT" default:"587"`
	SMTPUser  string `envconfig:"SMTP_USER"`
	SMTPPass  string `envconfig:"SMTP_PASS"`
	From      string `envconfig:"EMAIL_FROM" default:"noreply@ecommerce.com"`
	FromName  string `envconfig:"EMAIL_FROM_NAME" default:"E-commerce Store"`
}

// Enabled reports whether enough credentials are present to send mail.
func (m Mail) Enabled() bool {
	if m.Provider == "gmail" {
		return m.GmailUser != "" && m.GmailPass != ""
	}
	return m.SMTPHost != ""
}

// LoadConfig reads .env (if present) and then the process environment.
func LoadConfig() (Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Println(".env file not found, using environment and defaults")
	}

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return Config{}, fmt.Errorf("load config: %w", err)
	}
	if err := cfg.applyDefaults(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c *Config) applyDefaults() error {
	if c.JWTSecret == "" {
		if c.IsProduction() {
			return errors.New("JWT_SECRET is required in production")
		}
		c.JWTSecret = defaultJWTSecret
	}
	return nil
}

func (c Config) IsProduction() bool {
	return strings.EqualFold(c.Env, "production")
}

// UsingDefaultJWTSecret is true when no JWT_SECRET was supplied.
func (c Config) UsingDefaultJWTSecret() bool {
	return c.JWTSecret == defaultJWTSecret
}

// CallbackURL is where Paystack redirects the payer after checkout. An
// explicit PAYSTACK_CALLBACK_URL wins; otherwise it is derived from the
// frontend success page's origin.
func (c Config) CallbackURL() string {
	if c.PaystackCallbackURL != "" {
		return c.PaystackCallbackURL
	}
	if c.FrontendSuccessURL == "" {
		return ""
	}
	base := strings.TrimSuffix(c.FrontendSuccessURL, "/success.html")
	return strings.TrimSuffix(base, "/") + "/checkout/success"
}
