package config

import (
	"fmt"
	"os"
	"time"

	"github.com/distinctmentorship/payments/internal/service"
	"github.com/distinctmentorship/payments/pkg/mpesa"
	"github.com/distinctmentorship/payments/pkg/mq"
	"github.com/distinctmentorship/payments/pkg/mysql"
	"github.com/distinctmentorship/payments/pkg/paystack"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	API      API                  `mapstructure:"api"`
	Metrics  Metrics              `mapstructure:"metrics"`
	Database mysql.Config         `mapstructure:"database"`
	Mpesa    mpesa.Config         `mapstructure:"mpesa"`
	Paystack paystack.Config      `mapstructure:"paystack"`
	MQ       mq.Config            `mapstructure:"mq"`
	Poller   service.PollerConfig `mapstructure:"poller"`
	Payments Payments             `mapstructure:"payments"`
	Cache    Cache                `mapstructure:"cache"`
}

type API struct {
	Port string `mapstructure:"port"`
}

type Metrics struct {
	Port string `mapstructure:"port"`
}

type Payments struct {
	DefaultProvider string `mapstructure:"default_provider"`
}

type Cache struct {
	TTL time.Duration `mapstructure:"ttl"`
}

func Load() (cfg *Config, err error) {
	// Secrets come from the environment; a local .env is a convenience.
	godotenv.Load()

	viper.SetConfigName("config")
	viper.SetConfigType("yml")
	viper.AddConfigPath("./config")

	err = viper.ReadInConfig()
	if err != nil {
		return cfg, fmt.Errorf("failed to load config: %w", err)
	}

	err = viper.Unmarshal(&cfg)
	if err != nil {
		return nil, err
	}

	overrideFromEnv(&cfg.Mpesa.ConsumerKey, "MPESA_CONSUMER_KEY")
	overrideFromEnv(&cfg.Mpesa.ConsumerSecret, "MPESA_CONSUMER_SECRET")
	overrideFromEnv(&cfg.Mpesa.ShortCode, "MPESA_SHORTCODE")
	overrideFromEnv(&cfg.Mpesa.PassKey, "MPESA_PASSKEY")
	overrideFromEnv(&cfg.Mpesa.CallbackURL, "MPESA_CALLBACK_URL")
	overrideFromEnv(&cfg.Paystack.SecretKey, "PAYSTACK_SECRET_KEY")
	overrideFromEnv(&cfg.Database.Password, "DATABASE_PASSWORD")

	return cfg, nil
}

func overrideFromEnv(target *string, name string) {
	if value := os.Getenv(name); value != "" {
		*target = value
	}
}
