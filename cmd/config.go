package cmd

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// EnvPrefix prefixes every environment variable read by LoadConfig.
const EnvPrefix = "ECODELI"

type Config struct {
	HTTPPort string

	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	DBSslMode  string

	// KafkaBrokers empty means events and notifications are only logged.
	KafkaBrokers            []string
	KafkaEventsTopic        string
	KafkaNotificationsTopic string

	ConfirmationCodeTTL time.Duration
	// Six-field cron expressions; empty disables the job.
	ETARefreshSchedule string
	MatchingSchedule   string
	MatchingLimit      int

	LogLevel           slog.Level
	RateLimitPerSecond float64
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("http_port", "8080")

	v.SetDefault("db_host", "localhost")
	v.SetDefault("db_port", "5432")
	v.SetDefault("db_user", "postgres")
	v.SetDefault("db_password", "")
	v.SetDefault("db_name", "ecodeli")
	v.SetDefault("db_sslmode", "disable")

	v.SetDefault("kafka_brokers", "")
	v.SetDefault("kafka_events_topic", "delivery-events")
	v.SetDefault("kafka_notifications_topic", "notifications")

	v.SetDefault("confirmation_code_ttl", 24*time.Hour)
	v.SetDefault("eta_refresh_schedule", "0 * * * * *")
	v.SetDefault("matching_schedule", "*/30 * * * * *")
	v.SetDefault("matching_limit", 5)

	v.SetDefault("log_level", "info")
	v.SetDefault("rate_limit_per_second", 10.0)
}

// RegisterFlags adds the command line overrides understood by LoadConfig.
func RegisterFlags(flags *pflag.FlagSet) {
	flags.String("config", "", "path to an env file (default .env, optional)")
	flags.String("http-port", "", "HTTP listen port")
	flags.String("log-level", "", "debug, info, warn or error")
}

// LoadConfig resolves the configuration from, in order of precedence, command
// line flags, ECODELI_* environment variables, the env file and defaults.
func LoadConfig(flags *pflag.FlagSet) (Config, error) {
	envFile := ""
	if flags != nil {
		envFile, _ = flags.GetString("config")
	}
	if err := loadEnvFile(envFile); err != nil {
		return Config{}, err
	}

	v := viper.New()
	setDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.AllowEmptyEnv(true)
	v.AutomaticEnv()
	if flags != nil {
		for key, flag := range map[string]string{"http_port": "http-port", "log_level": "log-level"} {
			if f := flags.Lookup(flag); f != nil && f.Changed {
				if err := v.BindPFlag(key, f); err != nil {
					return Config{}, fmt.Errorf("bind flag %s: %w", flag, err)
				}
			}
		}
	}

	var level slog.Level
	if err := level.UnmarshalText([]byte(v.GetString("log_level"))); err != nil {
		return Config{}, fmt.Errorf("log level: %w", err)
	}

	cfg := Config{
		HTTPPort:                v.GetString("http_port"),
		DBHost:                  v.GetString("db_host"),
		DBPort:                  v.GetString("db_port"),
		DBUser:                  v.GetString("db_user"),
		DBPassword:              v.GetString("db_password"),
		DBName:                  v.GetString("db_name"),
		DBSslMode:               v.GetString("db_sslmode"),
		KafkaBrokers:            splitList(v.GetString("kafka_brokers")),
		KafkaEventsTopic:        v.GetString("kafka_events_topic"),
		KafkaNotificationsTopic: v.GetString("kafka_notifications_topic"),
		ConfirmationCodeTTL:     v.GetDuration("confirmation_code_ttl"),
		ETARefreshSchedule:      v.GetString("eta_refresh_schedule"),
		MatchingSchedule:        v.GetString("matching_schedule"),
		MatchingLimit:           v.GetInt("matching_limit"),
		LogLevel:                level,
		RateLimitPerSecond:      v.GetFloat64("rate_limit_per_second"),
	}
	if cfg.MatchingLimit < 0 {
		return Config{}, fmt.Errorf("matching limit must not be negative, got %d", cfg.MatchingLimit)
	}
	return cfg, nil
}

// DSN is the PostgreSQL connection string.
func (c Config) DSN() string {
	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(c.DBUser, c.DBPassword),
		Host:     c.DBHost + ":" + c.DBPort,
		Path:     c.DBName,
		RawQuery: url.Values{"sslmode": []string{c.DBSslMode}}.Encode(),
	}
	return u.String()
}

// loadEnvFile reads path, or .env when path is empty. Only an explicitly named
// file is required to exist.
func loadEnvFile(path string) error {
	if path != "" {
		return godotenv.Load(path)
	}
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
