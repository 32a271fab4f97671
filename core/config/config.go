package config

import (
	"strings"
	"sync"
	"time"

	"venue-booking/core/logger"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	Server       ServerConfig
	Database     DatabaseConfig
	Redis        RedisConfig
	JWT          JWTConfig
	Booking      BookingConfig
	Waitlist     WaitlistConfig
	Notification NotificationConfig
	Storage      StorageConfig
	Log          LogConfig
}

type ServerConfig struct {
	Host string
	Port int
}

type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	DBName   string
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

type JWTConfig struct {
	Secret string
	Issuer string
}

type BookingConfig struct {
	// BaseMaxBookingsPerDay before the VIP bonus.
	BaseMaxBookingsPerDay int
	// MaxPartySize is the hard cap; above it a booking is never allowed.
	MaxPartySize int
	// PaymentPatternWindow is how long a payment fingerprint is remembered.
	PaymentPatternWindow time.Duration
}

type WaitlistConfig struct {
	ReservationWindowMinutes int
	RequeueOnExpiry          bool
	MaxRequeues              int
	SweepSpec                string
}

type NotificationConfig struct {
	Channels              []string
	ConsentExemptChannels []string
	EmailRatePerSecond    float64
	SMSRatePerSecond      float64
	PushRatePerSecond     float64
	WorkerConcurrency     int
}

type StorageConfig struct {
	Region          string
	Bucket          string
	AccessKeyID     string
	SecretAccessKey string
	Endpoint        string
}

type LogConfig struct {
	Level  string
	Format string
}

var (
	once     sync.Once
	instance *Config
)

// Get loads the configuration once per process.
func Get() *Config {
	once.Do(func() {
		instance = Load()
	})
	return instance
}

func Load() *Config {
	if err := godotenv.Load(); err != nil {
		logger.Debug("Config:Load:NoDotEnv", "error", err)
	}

	v := viper.New()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	setDefaults(v)

	return &Config{
		Server: ServerConfig{
			Host: v.GetString("server.host"),
			Port: v.GetInt("server.port"),
		},
		Database: DatabaseConfig{
			Host:     v.GetString("db.host"),
			Port:     v.GetInt("db.port"),
			User:     v.GetString("db.user"),
			Password: v.GetString("db.password"),
			DBName:   v.GetString("db.name"),
		},
		Redis: RedisConfig{
			Addr:     v.GetString("redis.addr"),
			Password: v.GetString("redis.password"),
			DB:       v.GetInt("redis.db"),
		},
		JWT: JWTConfig{
			Secret: v.GetString("jwt.secret"),
			Issuer: v.GetString("jwt.issuer"),
		},
		Booking: BookingConfig{
			BaseMaxBookingsPerDay: v.GetInt("booking.base_max_per_day"),
			MaxPartySize:          v.GetInt("booking.max_party_size"),
			PaymentPatternWindow:  v.GetDuration("booking.payment_pattern_window"),
		},
		Waitlist: WaitlistConfig{
			ReservationWindowMinutes: v.GetInt("waitlist.reservation_window_minutes"),
			RequeueOnExpiry:          v.GetBool("waitlist.requeue_on_expiry"),
			MaxRequeues:              v.GetInt("waitlist.max_requeues"),
			SweepSpec:                v.GetString("waitlist.sweep_spec"),
		},
		Notification: NotificationConfig{
			Channels:              splitList(v.GetString("notification.channels")),
			ConsentExemptChannels: splitList(v.GetString("notification.consent_exempt_channels")),
			EmailRatePerSecond:    v.GetFloat64("notification.email_rate"),
			SMSRatePerSecond:      v.GetFloat64("notification.sms_rate"),
			PushRatePerSecond:     v.GetFloat64("notification.push_rate"),
			WorkerConcurrency:     v.GetInt("notification.worker_concurrency"),
		},
		Storage: StorageConfig{
			Region:          v.GetString("s3.region"),
			Bucket:          v.GetString("s3.bucket"),
			AccessKeyID:     v.GetString("s3.access_key_id"),
			SecretAccessKey: v.GetString("s3.secret_access_key"),
			Endpoint:        v.GetString("s3.endpoint"),
		},
		Log: LogConfig{
			Level:  v.GetString("log.level"),
			Format: v.GetString("log.format"),
		},
	}
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 7070)

	v.SetDefault("db.host", "localhost")
	v.SetDefault("db.port", 5432)
	v.SetDefault("db.user", "postgres")
	v.SetDefault("db.password", "postgres")
	v.SetDefault("db.name", "venue_booking")

	v.SetDefault("redis.addr", "localhost:6379")
	v.SetDefault("redis.db", 0)

	v.SetDefault("jwt.issuer", "venue-booking")

	v.SetDefault("booking.base_max_per_day", 2)
	v.SetDefault("booking.max_party_size", 20)
	v.SetDefault("booking.payment_pattern_window", "24h")

	v.SetDefault("waitlist.reservation_window_minutes", 30)
	v.SetDefault("waitlist.requeue_on_expiry", false)
	v.SetDefault("waitlist.max_requeues", 1)
	v.SetDefault("waitlist.sweep_spec", "@every 1m")

	v.SetDefault("notification.channels", "email,sms,push")
	v.SetDefault("notification.consent_exempt_channels", "email")
	v.SetDefault("notification.email_rate", 50)
	v.SetDefault("notification.sms_rate", 10)
	v.SetDefault("notification.push_rate", 100)
	v.SetDefault("notification.worker_concurrency", 20)

	v.SetDefault("s3.region", "ap-southeast-1")

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if part != "" {
			out = append(out, part)
		}
	}
	return out
}
