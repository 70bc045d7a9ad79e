package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	HTTPAddr    string
	DBDriver    string // mysql|sqlite
	DBDSN       string
	AutoMigrate bool

	Razorpay RazorpayConfig
	Currency string

	AdminJWTSecret     string
	CORSAllowedOrigins []string

	Kafka   KafkaConfig
	SMTP    SMTPConfig
	Storage StorageConfig
}

type RazorpayConfig struct {
	KeyID         string
	KeySecret     string
	WebhookSecret string
	Timeout       time.Duration
}

type KafkaConfig struct {
	Brokers []string
	Topic   string
}

type SMTPConfig struct {
	Host     string
	Port     int
	User     string
	Pass     string
	From     string
	FromName string
}

func (c SMTPConfig) Enabled() bool { return c.Host != "" }

type StorageConfig struct {
	Driver   string // none|local|s3
	LocalDir string
	S3Region string
	S3Bucket string
	S3Prefix string
}

// Load reads .env (if present) and then the process environment.
func Load() (Config, error) {
	// prod uses real env vars; .env is optional
	_ = godotenv.Load()

	v := viper.New()
	v.AutomaticEnv()
	setDefaults(v)

	cfg := Config{
		HTTPAddr:    v.GetString("HTTP_ADDR"),
		DBDriver:    strings.ToLower(v.GetString("DB_DRIVER")),
		DBDSN:       v.GetString("DB_DSN"),
		AutoMigrate: v.GetBool("AUTO_MIGRATE"),
		Razorpay: RazorpayConfig{
			KeyID:         v.GetString("RAZORPAY_KEY_ID"),
			KeySecret:     v.GetString("RAZORPAY_KEY_SECRET"),
			WebhookSecret: v.GetString("RAZORPAY_WEBHOOK_SECRET"),
			Timeout:       v.GetDuration("GATEWAY_TIMEOUT"),
		},
		Currency:           strings.ToUpper(v.GetString("PAYMENT_CURRENCY")),
		AdminJWTSecret:     v.GetString("ADMIN_JWT_SECRET"),
		CORSAllowedOrigins: splitList(v.GetString("CORS_ALLOWED_ORIGINS")),
		Kafka: KafkaConfig{
			Brokers: splitList(v.GetString("KAFKA_BROKERS")),
			Topic:   v.GetString("KAFKA_TOPIC"),
		},
		SMTP: SMTPConfig{
			Host:     v.GetString("SMTP_HOST"),
			Port:     v.GetInt("SMTP_PORT"),
			User:     v.GetString("SMTP_USER"),
			Pass:     v.GetString("SMTP_PASS"),
			From:     v.GetString("MAIL_FROM"),
			FromName: v.GetString("MAIL_FROM_NAME"),
		},
		Storage: StorageConfig{
			Driver:   strings.ToLower(v.GetString("STORAGE_DRIVER")),
			LocalDir: v.GetString("LOCAL_ARCHIVE_DIR"),
			S3Region: v.GetString("S3_REGION"),
			S3Bucket: v.GetString("S3_BUCKET"),
			S3Prefix: v.GetString("S3_PREFIX"),
		},
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("HTTP_ADDR", ":8080")
	v.SetDefault("DB_DRIVER", "mysql")
	v.SetDefault("AUTO_MIGRATE", false)
	v.SetDefault("GATEWAY_TIMEOUT", 10*time.Second)
	v.SetDefault("PAYMENT_CURRENCY", "INR")
	v.SetDefault("KAFKA_TOPIC", "enrollment-payments")
	v.SetDefault("SMTP_PORT", 587)
	v.SetDefault("MAIL_FROM", "noreply@example.com")
	v.SetDefault("MAIL_FROM_NAME", "Courses")
	v.SetDefault("STORAGE_DRIVER", "none")
	v.SetDefault("LOCAL_ARCHIVE_DIR", "./storage/webhooks")
	v.SetDefault("S3_PREFIX", "webhooks")
}

func (c Config) Validate() error {
	var errs []error
	if c.DBDSN == "" {
		errs = append(errs, errors.New("DB_DSN is required"))
	}
	if c.DBDriver != "mysql" && c.DBDriver != "sqlite" {
		errs = append(errs, fmt.Errorf("unknown DB_DRIVER: %s", c.DBDriver))
	}
	if c.Razorpay.KeyID == "" || c.Razorpay.KeySecret == "" {
		errs = append(errs, errors.New("RAZORPAY_KEY_ID and RAZORPAY_KEY_SECRET are required"))
	}
	if c.Razorpay.WebhookSecret == "" {
		errs = append(errs, errors.New("RAZORPAY_WEBHOOK_SECRET is required"))
	} else if c.Razorpay.WebhookSecret == c.Razorpay.KeySecret {
		errs = append(errs, errors.New("RAZORPAY_WEBHOOK_SECRET must differ from RAZORPAY_KEY_SECRET"))
	}
	if c.Razorpay.Timeout <= 0 {
		errs = append(errs, errors.New("GATEWAY_TIMEOUT must be positive"))
	}
	if len(c.Currency) != 3 {
		errs = append(errs, fmt.Errorf("PAYMENT_CURRENCY must be a 3-letter code, got %q", c.Currency))
	}
	return errors.Join(errs...)
}

// String is safe to log: secrets are redacted.
func (c Config) String() string {
	return fmt.Sprintf("addr=%s db_driver=%s currency=%s razorpay_key_id=%s razorpay_secrets=%s kafka=%v smtp=%t storage=%s",
		c.HTTPAddr, c.DBDriver, c.Currency, c.Razorpay.KeyID, redact(c.Razorpay.KeySecret),
		c.Kafka.Brokers, c.SMTP.Enabled(), c.Storage.Driver)
}

func redact(s string) string {
	if s == "" {
		return "<unset>"
	}
	return "<redacted>"
}

func splitList(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
