package config

import (
	"errors"
	"os"
	"path/filepath"

	"github.com/spf13/viper"
)

type Config struct {
	ServerPort  string `mapstructure:"SERVER_PORT"`
	Environment string `mapstructure:"ENVIRONMENT"`

	DatabaseURL string `mapstructure:"DATABASE_URL"`

	GHLBaseURL string `mapstructure:"GHL_BASE_URL"`

	RabbitMQURL string `mapstructure:"RABBITMQ_URL"`

	S3AccessKey string `mapstructure:"S3_ACCESS_KEY"`
	S3SecretKey string `mapstructure:"S3_SECRET_KEY"`
	S3Region    string `mapstructure:"S3_REGION"`
	S3Endpoint  string `mapstructure:"S3_ENDPOINT"`
	S3Bucket    string `mapstructure:"S3_BUCKET"`
	S3BucketURL string `mapstructure:"S3_BUCKET_URL"`

	SMTPHost     string `mapstructure:"SMTP_HOST"`
	SMTPPort     int    `mapstructure:"SMTP_PORT"`
	SMTPUser     string `mapstructure:"SMTP_USER"`
	SMTPPassword string `mapstructure:"SMTP_PASSWORD"`
	MailFrom     string `mapstructure:"MAIL_FROM"`
	NotifyEmail  string `mapstructure:"NOTIFY_EMAIL"`

	ExtractorBaseURL string `mapstructure:"EXTRACTOR_BASE_URL"`
	ExtractorAPIKey  string `mapstructure:"EXTRACTOR_API_KEY"`
	ExtractorModel   string `mapstructure:"EXTRACTOR_MODEL"`

	ReconcileIntervalSeconds int `mapstructure:"RECONCILE_INTERVAL_SECONDS"`
}

// LoadConfig reads the optional .env file under path and lets real
// environment variables override it. Defaults keep a bare dev setup
// bootable.
func LoadConfig(path string) (*Config, error) {
	viper.SetConfigFile(filepath.Join(path, ".env"))
	viper.SetConfigType("env")
	viper.AutomaticEnv()

	setDefaults()

	if err := viper.ReadInConfig(); err != nil {
		// Missing .env is fine, the environment can carry everything.
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !os.IsNotExist(err) {
			return nil, err
		}
	}

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// setDefaults registers every key with viper so AutomaticEnv picks them up
// during Unmarshal.
func setDefaults() {
	viper.SetDefault("SERVER_PORT", "8080")
	viper.SetDefault("ENVIRONMENT", "development")
	viper.SetDefault("DATABASE_URL", "")
	viper.SetDefault("GHL_BASE_URL", "")
	viper.SetDefault("RABBITMQ_URL", "")
	viper.SetDefault("S3_ACCESS_KEY", "")
	viper.SetDefault("S3_SECRET_KEY", "")
	viper.SetDefault("S3_REGION", "eu-central-1")
	viper.SetDefault("S3_ENDPOINT", "")
	viper.SetDefault("S3_BUCKET", "")
	viper.SetDefault("S3_BUCKET_URL", "")
	viper.SetDefault("SMTP_HOST", "")
	viper.SetDefault("SMTP_PORT", 587)
	viper.SetDefault("SMTP_USER", "")
	viper.SetDefault("SMTP_PASSWORD", "")
	viper.SetDefault("MAIL_FROM", "no-reply@simpli-immo.de")
	viper.SetDefault("NOTIFY_EMAIL", "")
	viper.SetDefault("EXTRACTOR_BASE_URL", "")
	viper.SetDefault("EXTRACTOR_API_KEY", "")
	viper.SetDefault("EXTRACTOR_MODEL", "gpt-4o-mini")
	viper.SetDefault("RECONCILE_INTERVAL_SECONDS", 300)
}
