package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	Server    ServerConfig
	Database  DatabaseConfig
	JWT       JWTConfig
	Tax       TaxConfig
	Reminders RemindersConfig
	Import    ImportConfig
	Logger    LoggerConfig
}

type LoggerConfig struct {
	Level string
}

type ServerConfig struct {
	Port         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
	SSLMode  string
	// ConnectTimeout bounds the retry loop around the initial ping.
	ConnectTimeout time.Duration
	AutoMigrate    bool
}

// DSN returns the keyword/value connection string understood by pgx.
func (c DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.DBName, c.SSLMode,
	)
}

// URL returns the same database as a pgx5:// URL for golang-migrate.
func (c DatabaseConfig) URL() string {
	return fmt.Sprintf(
		"pgx5://%s:%s@%s:%s/%s?sslmode=%s",
		c.User, c.Password, c.Host, c.Port, c.DBName, c.SSLMode,
	)
}

type JWTConfig struct {
	SecretKey  string
	Expiration time.Duration
	RefreshExp time.Duration
}

// TaxConfig controls period defaults and the declaration deadline policy.
type TaxConfig struct {
	Timezone        string
	DeclarationDay  int
	DeclarationHour int
}

type RemindersConfig struct {
	QueueBuffer   int
	Workers       int
	MaxRetries    int
	SweepInterval time.Duration
	JobRetention  int
}

type ImportConfig struct {
	MaxUploadBytes int
}

func Load() (*Config, error) {
	// .env is optional; plain environment variables work the same way (Docker/K8s)
	for _, envFile := range []string{".env", "../.env", "../../.env"} {
		if err := godotenv.Load(envFile); err == nil {
			break
		}
	}

	v := viper.New()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	setDefaults(v)

	cfg := &Config{
		Server: ServerConfig{
			Port:         v.GetString("SERVER_PORT"),
			ReadTimeout:  time.Duration(v.GetInt("SERVER_READ_TIMEOUT")) * time.Second,
			WriteTimeout: time.Duration(v.GetInt("SERVER_WRITE_TIMEOUT")) * time.Second,
		},
		Database: DatabaseConfig{
			Host:           v.GetString("DB_HOST"),
			Port:           v.GetString("DB_PORT"),
			User:           v.GetString("DB_USER"),
			Password:       v.GetString("DB_PASSWORD"),
			DBName:         v.GetString("DB_NAME"),
			SSLMode:        v.GetString("DB_SSLMODE"),
			ConnectTimeout: v.GetDuration("DB_CONNECT_TIMEOUT"),
			AutoMigrate:    v.GetBool("DB_AUTO_MIGRATE"),
		},
		JWT: JWTConfig{
			SecretKey:  v.GetString("JWT_SECRET_KEY"),
			Expiration: time.Duration(v.GetInt("JWT_EXPIRATION_HOURS")) * time.Hour,
			RefreshExp: time.Duration(v.GetInt("JWT_REFRESH_EXPIRATION_HOURS")) * time.Hour,
		},
		Tax: TaxConfig{
			Timezone:        v.GetString("TAX_TIMEZONE"),
			DeclarationDay:  v.GetInt("TAX_DECLARATION_DUE_DAY"),
			DeclarationHour: v.GetInt("TAX_DECLARATION_DUE_HOUR"),
		},
		Reminders: RemindersConfig{
			QueueBuffer:   v.GetInt("REMINDER_QUEUE_BUFFER"),
			Workers:       v.GetInt("REMINDER_WORKERS"),
			MaxRetries:    v.GetInt("REMINDER_MAX_RETRIES"),
			SweepInterval: v.GetDuration("REMINDER_SWEEP_INTERVAL"),
			JobRetention:  v.GetInt("REMINDER_JOB_RETENTION"),
		},
		Import: ImportConfig{
			MaxUploadBytes: v.GetInt("IMPORT_MAX_UPLOAD_BYTES"),
		},
		Logger: LoggerConfig{
			Level: v.GetString("LOG_LEVEL"),
		},
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("SERVER_PORT", "8080")
	v.SetDefault("SERVER_READ_TIMEOUT", 30)
	v.SetDefault("SERVER_WRITE_TIMEOUT", 30)

	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", "5432")
	v.SetDefault("DB_USER", "postgres")
	v.SetDefault("DB_PASSWORD", "postgres")
	v.SetDefault("DB_NAME", "sole_ledger")
	v.SetDefault("DB_SSLMODE", "disable")
	v.SetDefault("DB_CONNECT_TIMEOUT", "30s")
	v.SetDefault("DB_AUTO_MIGRATE", true)

	v.SetDefault("JWT_SECRET_KEY", "your-secret-key-change-in-production")
	v.SetDefault("JWT_EXPIRATION_HOURS", 24)
	v.SetDefault("JWT_REFRESH_EXPIRATION_HOURS", 168)

	v.SetDefault("TAX_TIMEZONE", "Asia/Tbilisi")
	v.SetDefault("TAX_DECLARATION_DUE_DAY", 15)
	v.SetDefault("TAX_DECLARATION_DUE_HOUR", 5)

	v.SetDefault("REMINDER_QUEUE_BUFFER", 256)
	v.SetDefault("REMINDER_WORKERS", 2)
	v.SetDefault("REMINDER_MAX_RETRIES", 3)
	v.SetDefault("REMINDER_SWEEP_INTERVAL", "1h")
	v.SetDefault("REMINDER_JOB_RETENTION", 1000)

	v.SetDefault("IMPORT_MAX_UPLOAD_BYTES", 10<<20)

	v.SetDefault("LOG_LEVEL", "info")
}

func (c *Config) validate() error {
	if _, err := time.LoadLocation(c.Tax.Timezone); err != nil {
		return fmt.Errorf("invalid TAX_TIMEZONE %q: %w", c.Tax.Timezone, err)
	}
	if c.Tax.DeclarationDay < 1 || c.Tax.DeclarationDay > 28 {
		return fmt.Errorf("TAX_DECLARATION_DUE_DAY must be between 1 and 28, got %d", c.Tax.DeclarationDay)
	}
	if c.Tax.DeclarationHour < 0 || c.Tax.DeclarationHour > 23 {
		return fmt.Errorf("TAX_DECLARATION_DUE_HOUR must be between 0 and 23, got %d", c.Tax.DeclarationHour)
	}
	if c.Reminders.Workers < 1 {
		return fmt.Errorf("REMINDER_WORKERS must be positive, got %d", c.Reminders.Workers)
	}
	return nil
}
