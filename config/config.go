package config

import (
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

const (
	CommitModeTransactional = "transactional"
	CommitModeSequential    = "sequential"
)

type Config struct {
	Port        string   `env:"PORT" envDefault:"8080"`
	DBURL       string   `env:"DB_URL,required"`
	JWTSecret   string   `env:"JWT_SECRET,required"`
	CORSOrigins []string `env:"CORS_ORIGINS" envDefault:"*" envSeparator:","`

	Razorpay Razorpay

	WelcomeBonus        int64  `env:"WELCOME_BONUS" envDefault:"100"`
	CommitMode          string `env:"COMMIT_MODE" envDefault:"transactional"`
	RequireSessionMatch bool   `env:"REQUIRE_SESSION_MATCH" envDefault:"true"`

	RateLimitRPS   float64 `env:"RATE_LIMIT_RPS" envDefault:"5"`
	RateLimitBurst int     `env:"RATE_LIMIT_BURST" envDefault:"10"`

	GoogleClientID         string `env:"GOOGLE_CLIENT_ID"`
	GoogleClientSecret     string `env:"GOOGLE_CLIENT_SECRET"`
	GoogleRedirectURL      string `env:"GOOGLE_REDIRECT_URL"`
	GoogleFrontendRedirect string `env:"GOOGLE_FRONTEND_REDIRECT"`
}

// Razorpay holds both credential environments. Either pair may be absent,
// but a pair must never be half configured.
type Razorpay struct {
	APIURL        string        `env:"RAZORPAY_API_URL" envDefault:"https://api.razorpay.com/v1"`
	Timeout       time.Duration `env:"GATEWAY_TIMEOUT" envDefault:"10s"`
	TestKeyID     string        `env:"RAZORPAY_TEST_KEY_ID"`
	TestKeySecret string        `env:"RAZORPAY_TEST_KEY_SECRET"`
	LiveKeyID     string        `env:"RAZORPAY_LIVE_KEY_ID"`
	LiveKeySecret string        `env:"RAZORPAY_LIVE_KEY_SECRET"`
}

// Load reads .env (if present) and the process environment once.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found. Using system environment variables.")
	}
	return Parse(env.Options{})
}

// Parse is Load without the .env side effect; opts lets tests supply an
// explicit environment map.
func Parse(opts env.Options) (*Config, error) {
	var cfg Config
	if err := env.ParseWithOptions(&cfg, opts); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) Validate() error {
	r := c.Razorpay
	if (r.TestKeyID == "") != (r.TestKeySecret == "") {
		return errors.New("RAZORPAY_TEST_KEY_ID and RAZORPAY_TEST_KEY_SECRET must be set together")
	}
	if (r.LiveKeyID == "") != (r.LiveKeySecret == "") {
		return errors.New("RAZORPAY_LIVE_KEY_ID and RAZORPAY_LIVE_KEY_SECRET must be set together")
	}
	if r.TestKeyID == "" && r.LiveKeyID == "" {
		return errors.New("no Razorpay credentials configured (test or live)")
	}
	if r.Timeout <= 0 {
		return errors.New("GATEWAY_TIMEOUT must be positive")
	}

	switch c.CommitMode {
	case CommitModeTransactional, CommitModeSequential:
	default:
		return fmt.Errorf("unknown COMMIT_MODE %q", c.CommitMode)
	}

	if c.WelcomeBonus < 0 {
		return errors.New("WELCOME_BONUS must not be negative")
	}
	return nil
}

// GoogleEnabled reports whether Google sign-in routes should be mounted.
func (c *Config) GoogleEnabled() bool {
	return c.GoogleClientID != "" && c.GoogleClientSecret != "" && c.GoogleRedirectURL != ""
}
