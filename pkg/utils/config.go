package utils

import (
	"errors"
	"io/fs"

	"github.com/spf13/viper"
)

type Config struct {
	App       AppConfig
	Database  DatabaseConfig
	Auth      AuthConfig
	Booking   BookingConfig
	Queue     QueueConfig
	Email     EmailConfig
	SMS       SMSConfig
	Storage   StorageConfig
	RateLimit RateLimitConfig
}

type AppConfig struct {
	Name          string
	Port          string
	Debug         bool
	LogPath       string
	StorageDriver string
	// TrustProxy takes the client IP from X-Forwarded-For / X-Real-IP.
	TrustProxy    bool
}

type DatabaseConfig struct {
	Host     string
	Port     string
	Name     string
	User     string
	Password string
	MaxConns int32
}

// AuthConfig verifies tokens issued by the external identity provider.
type AuthConfig struct {
	JWTSecret string
	Issuer    string
}

type BookingConfig struct {
	DepositPercent    float64
	ReferralPercent   float64
	MinLeadHours      int
	ClientCancelHours int
	PaymentTolerance  float64
	Currency          string
	Timezone          string
}

type QueueConfig struct {
	Driver        string
	RedisAddr     string
	RedisPassword string
	RedisDB       int
	Concurrency   int
	StartSweep    string
}

type EmailConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	From     string
}

type SMSConfig struct {
	AccountSID   string
	AuthToken    string
	From         string
	WhatsAppFrom string
}

type StorageConfig struct {
	Bucket         string
	Region         string
	Endpoint       string
	AccessKey      string
	SecretKey      string
	PresignMinutes int
}

type RateLimitConfig struct {
	PaymentsPerMinute int
	Burst             int
}

func LoadConfig() (*Config, error) {
	viper.SetConfigFile(".env")
	viper.SetConfigType("env")

	viper.SetDefault("APP_NAME", "entertainer-booking")
	viper.SetDefault("PORT", "8080")
	viper.SetDefault("DEBUG", false)
	viper.SetDefault("LOG_PATH", "logs/")
	viper.SetDefault("STORAGE_DRIVER", "postgres")
	viper.SetDefault("TRUST_PROXY", false)
	viper.SetDefault("DB_PORT", "5432")
	viper.SetDefault("DB_MAX_CONNS", 10)
	viper.SetDefault("JWT_ISSUER", "")
	viper.SetDefault("DEPOSIT_PERCENT", 50)
	viper.SetDefault("REFERRAL_PERCENT", 10)
	viper.SetDefault("MIN_LEAD_HOURS", 24)
	viper.SetDefault("CLIENT_CANCEL_HOURS", 24)
	viper.SetDefault("PAYMENT_TOLERANCE", 0.01)
	viper.SetDefault("CURRENCY", "AUD")
	viper.SetDefault("TIMEZONE", "Australia/Sydney")
	viper.SetDefault("QUEUE_DRIVER", "inprocess")
	viper.SetDefault("REDIS_ADDR", "localhost:6379")
	viper.SetDefault("REDIS_DB", 0)
	viper.SetDefault("QUEUE_CONCURRENCY", 10)
	viper.SetDefault("START_SWEEP_CRON", "@every 5m")
	viper.SetDefault("SMTP_PORT", 587)
	viper.SetDefault("S3_REGION", "ap-southeast-2")
	viper.SetDefault("S3_PRESIGN_MINUTES", 15)
	viper.SetDefault("PAYMENTS_PER_MINUTE", 10)
	viper.SetDefault("PAYMENTS_BURST", 3)

	// .env is optional; container deployments only set environment variables.
	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !isMissingFile(err) {
			return nil, err
		}
	}

	viper.AutomaticEnv()

	config := &Config{
		App: AppConfig{
			Name:          viper.GetString("APP_NAME"),
			Port:          viper.GetString("PORT"),
			Debug:         viper.GetBool("DEBUG"),
			LogPath:       viper.GetString("LOG_PATH"),
			StorageDriver: viper.GetString("STORAGE_DRIVER"),
			TrustProxy:    viper.GetBool("TRUST_PROXY"),
		},
		Database: DatabaseConfig{
			Host:     viper.GetString("DB_HOST"),
			Port:     viper.GetString("DB_PORT"),
			Name:     viper.GetString("DB_NAME"),
			User:     viper.GetString("DB_USER"),
			Password: viper.GetString("DB_PASS"),
			MaxConns: viper.GetInt32("DB_MAX_CONNS"),
		},
		Auth: AuthConfig{
			JWTSecret: viper.GetString("JWT_SECRET"),
			Issuer:    viper.GetString("JWT_ISSUER"),
		},
		Booking: BookingConfig{
			DepositPercent:    viper.GetFloat64("DEPOSIT_PERCENT"),
			ReferralPercent:   viper.GetFloat64("REFERRAL_PERCENT"),
			MinLeadHours:      viper.GetInt("MIN_LEAD_HOURS"),
			ClientCancelHours: viper.GetInt("CLIENT_CANCEL_HOURS"),
			PaymentTolerance:  viper.GetFloat64("PAYMENT_TOLERANCE"),
			Currency:          viper.GetString("CURRENCY"),
			Timezone:          viper.GetString("TIMEZONE"),
		},
		Queue: QueueConfig{
			Driver:        viper.GetString("QUEUE_DRIVER"),
			RedisAddr:     viper.GetString("REDIS_ADDR"),
			RedisPassword: viper.GetString("REDIS_PASSWORD"),
			RedisDB:       viper.GetInt("REDIS_DB"),
			Concurrency:   viper.GetInt("QUEUE_CONCURRENCY"),
			StartSweep:    viper.GetString("START_SWEEP_CRON"),
		},
		Email: EmailConfig{
			Host:     viper.GetString("SMTP_HOST"),
			Port:     viper.GetInt("SMTP_PORT"),
			User:     viper.GetString("SMTP_USER"),
			Password: viper.GetString("SMTP_PASS"),
			From:     viper.GetString("EMAIL_FROM"),
		},
		SMS: SMSConfig{
			AccountSID:   viper.GetString("TWILIO_ACCOUNT_SID"),
			AuthToken:    viper.GetString("TWILIO_AUTH_TOKEN"),
			From:         viper.GetString("TWILIO_FROM"),
			WhatsAppFrom: viper.GetString("TWILIO_WHATSAPP_FROM"),
		},
		Storage: StorageConfig{
			Bucket:         viper.GetString("S3_BUCKET"),
			Region:         viper.GetString("S3_REGION"),
			Endpoint:       viper.GetString("S3_ENDPOINT"),
			AccessKey:      viper.GetString("S3_ACCESS_KEY"),
			SecretKey:      viper.GetString("S3_SECRET_KEY"),
			PresignMinutes: viper.GetInt("S3_PRESIGN_MINUTES"),
		},
		RateLimit: RateLimitConfig{
			PaymentsPerMinute: viper.GetInt("PAYMENTS_PER_MINUTE"),
			Burst:             viper.GetInt("PAYMENTS_BURST"),
		},
	}

	if config.Auth.JWTSecret == "" {
		return nil, errors.New("JWT_SECRET is required")
	}

	return config, nil
}

func isMissingFile(err error) bool {
	return errors.Is(err, fs.ErrNotExist)
}
