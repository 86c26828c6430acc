package config

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"strconv"

	"github.com/rs/zerolog/log"
)

type Config struct {
	Server     ServerConfig     `json:"server"`
	Database   DatabaseConfig   `json:"database"`
	Logging    LoggingConfig    `json:"logging"`
	Redis      RedisConfig      `json:"redis"`
	LLM        LLMConfig        `json:"llm"`
	Monitoring MonitoringConfig `json:"monitoring"`
	Notify     NotifyConfig     `json:"notify"`
	Kafka      KafkaConfig      `json:"kafka"`
	Collectors CollectorsConfig `json:"collectors"`
}

type ServerConfig struct {
	BindAddr string `json:"bindAddr"`
}

type DatabaseConfig struct {
	Host     string `json:"host"`
	Port     int    `json:"port"`
	User     string `json:"user"`
	Password string `json:"password"`
	DBName   string `json:"dbname"`
	SSLMode  string `json:"sslmode"`
}

// DSN renders the keyword/value connection string for database/sql.
func (c *DatabaseConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.DBName, c.SSLMode)
}

type LoggingConfig struct {
	Level string `json:"level"`
}

type RedisConfig struct {
	Addr     string `json:"addr"` // empty disables redis (degraded mode)
	Password string `json:"password"`
	DB       int    `json:"db"`
}

type LLMConfig struct {
	BaseURL string `json:"baseURL"`
	APIKey  string `json:"apiKey"`
	Model   string `json:"model"`
	Timeout string `json:"timeout"` // e.g. "60s"
}

type MonitoringConfig struct {
	HourlyInterval string `json:"hourlyInterval"`
	DailyInterval  string `json:"dailyInterval"`
	WeeklyInterval string `json:"weeklyInterval"`
	Workers        int    `json:"workers"`
	QueueKey       string `json:"queueKey"`
	MaxAttempts    int    `json:"maxAttempts"`
	SyncInterval   string `json:"syncInterval"` // contractor integration sync
	SyncWorkers    int    `json:"syncWorkers"`
	BootstrapFile  string `json:"bootstrapFile"` // default alert configs, YAML
}

type NotifyConfig struct {
	ResendAPIKey string `json:"resendAPIKey"`
	FromEmail    string `json:"fromEmail"`
	SMSFrom      string `json:"smsFrom"`
}

type KafkaConfig struct {
	Brokers string `json:"brokers"` // comma separated; empty disables publishing
	Topic   string `json:"topic"`
}

type CollectorsConfig struct {
	CensusBaseURL     string `json:"censusBaseURL"`
	CensusAPIKey      string `json:"censusAPIKey"`
	MetaAdsBaseURL    string `json:"metaAdsBaseURL"`
	MetaAdsToken      string `json:"metaAdsToken"`
	RankProviderURL   string `json:"rankProviderURL"`   // empty disables the rankings gatherer
	ReviewProviderURL string `json:"reviewProviderURL"` // empty disables the reviews gatherer
	ScrapeTimeout     string `json:"scrapeTimeout"`
	UserAgent         string `json:"userAgent"`
}

func Load() (*Config, error) {
	configFile := flag.String("f", "", "Path to configuration file")
	flag.Parse()

	cfg := &Config{
		Server: ServerConfig{
			BindAddr: getEnv("SERVER_BIND_ADDR", "0.0.0.0:8080"),
		},
		Database: DatabaseConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnvInt("DB_PORT", 5432),
			User:     getEnv("DB_USER", "admin"),
			Password: getEnv("DB_PASSWORD", "password"),
			DBName:   getEnv("DB_NAME", "demoforge"),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),
		},
		Logging: LoggingConfig{
			Level: getEnv("LOG_LEVEL", "debug"),
		},
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", "localhost:6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvInt("REDIS_DB", 0),
		},
		LLM: LLMConfig{
			BaseURL: getEnv("LLM_BASE_URL", "https://api.openai.com/v1"),
			APIKey:  getEnv("LLM_API_KEY", ""),
			Model:   getEnv("LLM_MODEL", "gpt-4o-mini"),
			Timeout: getEnv("LLM_TIMEOUT", "60s"),
		},
		Monitoring: MonitoringConfig{
			HourlyInterval: getEnv("MONITOR_HOURLY_INTERVAL", "1h"),
			DailyInterval:  getEnv("MONITOR_DAILY_INTERVAL", "24h"),
			WeeklyInterval: getEnv("MONITOR_WEEKLY_INTERVAL", "168h"),
			Workers:        getEnvInt("MONITOR_WORKERS", 4),
			QueueKey:       getEnv("MONITOR_QUEUE_KEY", "monitoring:jobs"),
			MaxAttempts:    getEnvInt("MONITOR_MAX_ATTEMPTS", 3),
			SyncInterval:   getEnv("INTEGRATION_SYNC_INTERVAL", "30m"),
			SyncWorkers:    getEnvInt("INTEGRATION_SYNC_WORKERS", 3),
			BootstrapFile:  getEnv("ALERT_CONFIG_BOOTSTRAP_FILE", ""),
		},
		Notify: NotifyConfig{
			ResendAPIKey: getEnv("RESEND_API_KEY", ""),
			FromEmail:    getEnv("NOTIFY_FROM_EMAIL", "alerts@demoforge.app"),
			SMSFrom:      getEnv("NOTIFY_SMS_FROM", ""),
		},
		Kafka: KafkaConfig{
			Brokers: getEnv("KAFKA_BROKERS", ""),
			Topic:   getEnv("KAFKA_ACTIVITY_TOPIC", "demoforge.activity"),
		},
		Collectors: CollectorsConfig{
			CensusBaseURL:     getEnv("CENSUS_BASE_URL", "https://api.census.gov/data"),
			CensusAPIKey:      getEnv("CENSUS_API_KEY", ""),
			MetaAdsBaseURL:    getEnv("META_ADS_BASE_URL", "https://graph.facebook.com/v19.0"),
			MetaAdsToken:      getEnv("META_ADS_TOKEN", ""),
			RankProviderURL:   getEnv("RANK_PROVIDER_URL", ""),
			ReviewProviderURL: getEnv("REVIEW_PROVIDER_URL", ""),
			ScrapeTimeout:     getEnv("SCRAPE_TIMEOUT", "15s"),
			UserAgent:         getEnv("SCRAPE_USER_AGENT", "DemoForgeBot/1.0"),
		},
	}

	if *configFile != "" {
		if err := loadFromFile(cfg, *configFile); err != nil {
			log.Err(err)
			return nil, err
		}
	}

	// fill reasonable defaults when fields omitted in file
	if cfg.Server.BindAddr == "" {
		cfg.Server.BindAddr = "0.0.0.0:8080"
	}
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "debug"
	}
	if cfg.LLM.Timeout == "" {
		cfg.LLM.Timeout = "60s"
	}
	if cfg.Monitoring.Workers == 0 {
		cfg.Monitoring.Workers = 4
	}
	if cfg.Monitoring.QueueKey == "" {
		cfg.Monitoring.QueueKey = "monitoring:jobs"
	}
	if cfg.Monitoring.MaxAttempts == 0 {
		cfg.Monitoring.MaxAttempts = 3
	}
	if cfg.Monitoring.HourlyInterval == "" {
		cfg.Monitoring.HourlyInterval = "1h"
	}
	if cfg.Monitoring.DailyInterval == "" {
		cfg.Monitoring.DailyInterval = "24h"
	}
	if cfg.Monitoring.WeeklyInterval == "" {
		cfg.Monitoring.WeeklyInterval = "168h"
	}
	if cfg.Monitoring.SyncInterval == "" {
		cfg.Monitoring.SyncInterval = "30m"
	}
	if cfg.Monitoring.SyncWorkers == 0 {
		cfg.Monitoring.SyncWorkers = 3
	}
	if cfg.Collectors.ScrapeTimeout == "" {
		cfg.Collectors.ScrapeTimeout = "15s"
	}

	return cfg, nil
}

func loadFromFile(cfg *Config, filePath string) error {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return fmt.Errorf("failed to read config file %s: %w", filePath, err)
	}

	if err := json.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("failed to parse config file %s: %w", filePath, err)
	}

	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}
