package config

import (
	"log"
	"os"
	"strconv"

	"gopkg.in/yaml.v2"
)

type Config struct {
	Server struct {
		Host string `yaml:"host"`
		Port int    `yaml:"port"`
		Env  string `yaml:"env"`
	} `yaml:"server"`

	Database struct {
		DSN string `yaml:"url"`
	} `yaml:"database"`

	JWT struct {
		Secret string `yaml:"secret"`
		TTL    int    `yaml:"ttl"` // minutes
	} `yaml:"jwt"`

	Redis struct {
		Addr     string `yaml:"addr"` // empty disables the cache tier
		Password string `yaml:"password"`
		DB       int    `yaml:"db"`
	} `yaml:"redis"`

	Storage struct {
		Type     string `yaml:"type"`      // local
		BasePath string `yaml:"base_path"` // for local storage
		BaseURL  string `yaml:"base_url"`  // public URL base
	} `yaml:"storage"`

	Payment struct {
		ActivationFeeCents int64 `yaml:"activation_fee_cents"`
		GatewayDelayMs     int   `yaml:"gateway_delay_ms"` // simulator latency
		TierProCents       int64 `yaml:"tier_pro_cents"`
		TierEliteCents     int64 `yaml:"tier_elite_cents"`
		// CallbackSecret authenticates the provider's settlement webhook.
		// Empty disables the HTTP webhook route entirely.
		CallbackSecret string `yaml:"callback_secret"`
	} `yaml:"payment"`

	Email struct {
		SMTPHost     string `yaml:"smtp_host"`
		SMTPPort     int    `yaml:"smtp_port"`
		SMTPUsername string `yaml:"smtp_user"`
		SMTPPassword string `yaml:"smtp_password"`
		FromEmail    string `yaml:"from_email"`
		FromName     string `yaml:"from_name"`
	} `yaml:"email"`

	Admin struct {
		Emails []string `yaml:"emails"` // seeded into admin_grants at boot
	} `yaml:"admin"`

	Workers struct {
		ReconcileIntervalSec int `yaml:"reconcile_interval_sec"`
		BidCountIntervalSec  int `yaml:"bid_count_interval_sec"`
		DeadlineSweepSec     int `yaml:"deadline_sweep_sec"`
	} `yaml:"workers"`
}

var AppConfig *Config

func LoadConfig() {
	var cfg Config

	dbURL := os.Getenv("DATABASE_URL")

	if dbURL == "" {
		configPath := os.Getenv("CONFIG_PATH")
		if configPath == "" {
			configPath = "config/config.yaml"
		}

		f, err := os.Open(configPath)
		if err != nil {
			log.Fatalf("Failed to open config file at %s: %v", configPath, err)
		}
		defer f.Close()

		decoder := yaml.NewDecoder(f)
		if err := decoder.Decode(&cfg); err != nil {
			log.Fatalf("Failed to parse config file at %s: %v", configPath, err)
		}

		applyDefaults(&cfg)
		AppConfig = &cfg
		return
	}

	// Environment-variable mode (tests, containers).
	cfg.Database.DSN = dbURL
	cfg.Server.Env = os.Getenv("SERVER_ENV")
	cfg.Server.Port, _ = strconv.Atoi(os.Getenv("SERVER_PORT"))
	cfg.JWT.Secret = os.Getenv("JWT_SECRET")
	cfg.JWT.TTL = 60
	cfg.Payment.CallbackSecret = os.Getenv("PAYMENT_CALLBACK_SECRET")
	cfg.Redis.Addr = os.Getenv("REDIS_ADDR")

	cfg.Storage.Type = "local"
	cfg.Storage.BasePath = "./uploads"
	cfg.Storage.BaseURL = "/api/v1/files"

	applyDefaults(&cfg)
	AppConfig = &cfg
}

func applyDefaults(cfg *Config) {
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8080
	}
	if cfg.Payment.ActivationFeeCents == 0 {
		cfg.Payment.ActivationFeeCents = 50000 // KES 500
	}
	if cfg.Payment.GatewayDelayMs == 0 {
		cfg.Payment.GatewayDelayMs = 2000
	}
	if cfg.Payment.TierProCents == 0 {
		cfg.Payment.TierProCents = 80000
	}
	if cfg.Payment.TierEliteCents == 0 {
		cfg.Payment.TierEliteCents = 150000
	}
	if cfg.Workers.ReconcileIntervalSec == 0 {
		cfg.Workers.ReconcileIntervalSec = 30
	}
	if cfg.Workers.BidCountIntervalSec == 0 {
		cfg.Workers.BidCountIntervalSec = 15
	}
	if cfg.Workers.DeadlineSweepSec == 0 {
		cfg.Workers.DeadlineSweepSec = 3600
	}
	if cfg.Storage.Type == "" {
		cfg.Storage.Type = "local"
	}
}

func GetConfig() *Config {
	if AppConfig == nil {
		LoadConfig()
	}
	return AppConfig
}
