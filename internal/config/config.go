package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds application configuration
type Config struct {
	Env             string
	ServerPort      string
	DatabaseType    string
	DatabasePath    string
	DatabaseURL     string
	MigrationsPath  string
	SessionDuration time.Duration
	SecretKey       string
	LogLevel        string
	LogFormat       string
	RollbarToken    string
	SchoolYearStart time.Time
	LoginRateLimit  int

	AdminEmail    string
	AdminPassword string
	AdminName     string

	GoogleClientID       string
	GoogleClientSecret   string
	OAuthRedirectBaseURL string

	GeminiAPIKey string
	GeminiModel  string

	AWSRegion        string
	SESFromEmail     string
	SESFromName      string
	ReportRecipients []string

	KafkaBrokers []string
	KafkaTopic   string
}

const defaultSecretKey = "change-me-sao-do-dev-secret"

// Load reads configuration from the environment (and optional .env files) with sensible defaults
func Load() (*Config, error) {
	env := strings.ToLower(os.Getenv("APP_ENV"))
	if env == "" {
		env = "dev"
	}

	// .env files are optional; a missing file is not an error
	for _, path := range []string{".env." + env, ".env"} {
		if _, err := os.Stat(path); err == nil {
			if err := godotenv.Load(path); err != nil {
				return nil, fmt.Errorf("failed to load %s: %w", path, err)
			}
		}
	}

	return fromViper(newViper(env))
}

func newViper(env string) *viper.Viper {
	v := viper.New()
	v.SetTypeByDefaultValue(true)
	v.SetDefault("app_env", env)
	v.SetDefault("port", "8080")
	v.SetDefault("database_type", "sqlite")
	v.SetDefault("db_path", "./saodo.db")
	v.SetDefault("database_url", "")
	v.SetDefault("migrations_path", "./migrations")
	v.SetDefault("session_duration", 7*24*time.Hour)
	v.SetDefault("secret_key", defaultSecretKey)
	v.SetDefault("log_level", "info")
	v.SetDefault("log_format", "text")
	v.SetDefault("rollbar_token", "")
	v.SetDefault("school_year_start", "")
	v.SetDefault("login_rate_limit", 10)
	v.SetDefault("admin_email", "")
	v.SetDefault("admin_password", "")
	v.SetDefault("admin_name", "Quản trị")
	v.SetDefault("google_client_id", "")
	v.SetDefault("google_client_secret", "")
	v.SetDefault("oauth_redirect_base_url", "http://localhost:8080")
	v.SetDefault("gemini_api_key", "")
	v.SetDefault("gemini_model", "gemini-2.0-flash")
	v.SetDefault("aws_region", "ap-southeast-1")
	v.SetDefault("ses_from_email", "")
	v.SetDefault("ses_from_name", "Sao Đỏ")
	v.SetDefault("report_recipients", "")
	v.SetDefault("kafka_brokers", "")
	v.SetDefault("kafka_topic", "saodo.records")
	v.AutomaticEnv()
	return v
}

func fromViper(v *viper.Viper) (*Config, error) {
	cfg := &Config{
		Env:                  v.GetString("app_env"),
		ServerPort:           v.GetString("port"),
		DatabaseType:         v.GetString("database_type"),
		DatabasePath:         v.GetString("db_path"),
		DatabaseURL:          v.GetString("database_url"),
		MigrationsPath:       v.GetString("migrations_path"),
		SessionDuration:      v.GetDuration("session_duration"),
		SecretKey:            v.GetString("secret_key"),
		LogLevel:             v.GetString("log_level"),
		LogFormat:            v.GetString("log_format"),
		RollbarToken:         v.GetString("rollbar_token"),
		LoginRateLimit:       v.GetInt("login_rate_limit"),
		AdminEmail:           strings.TrimSpace(v.GetString("admin_email")),
		AdminPassword:        v.GetString("admin_password"),
		AdminName:            v.GetString("admin_name"),
		GoogleClientID:       v.GetString("google_client_id"),
		GoogleClientSecret:   v.GetString("google_client_secret"),
		OAuthRedirectBaseURL: strings.TrimSuffix(v.GetString("oauth_redirect_base_url"), "/"),
		GeminiAPIKey:         v.GetString("gemini_api_key"),
		GeminiModel:          v.GetString("gemini_model"),
		AWSRegion:            v.GetString("aws_region"),
		SESFromEmail:         v.GetString("ses_from_email"),
		SESFromName:          v.GetString("ses_from_name"),
		ReportRecipients:     splitList(v.GetString("report_recipients")),
		KafkaBrokers:         splitList(v.GetString("kafka_brokers")),
		KafkaTopic:           v.GetString("kafka_topic"),
	}

	if raw := strings.TrimSpace(v.GetString("school_year_start")); raw != "" {
		start, err := time.Parse("2006-01-02", raw)
		if err != nil {
			return nil, fmt.Errorf("invalid SCHOOL_YEAR_START %q: %w", raw, err)
		}
		cfg.SchoolYearStart = start
	} else {
		cfg.SchoolYearStart = defaultSchoolYearStart(time.Now())
	}

	if cfg.Env == "prod" && cfg.SecretKey == defaultSecretKey {
		return nil, fmt.Errorf("SECRET_KEY must be set in production")
	}

	return cfg, nil
}

// defaultSchoolYearStart returns the first Monday of September of the current school year
func defaultSchoolYearStart(now time.Time) time.Time {
	year := now.Year()
	if now.Month() < time.August {
		year--
	}
	start := time.Date(year, time.September, 1, 0, 0, 0, 0, time.UTC)
	for start.Weekday() != time.Monday {
		start = start.AddDate(0, 0, 1)
	}
	return start
}

// splitList splits a comma separated value, dropping empty entries
func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
