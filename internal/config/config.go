package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/querybuddy/querybuddy/internal/dbconn"
)

type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	LLM      LLMConfig
	History  HistoryConfig
	Valkey   ValkeyConfig
	MCP      MCPConfig
}

type ServerConfig struct {
	Host         string
	Port         int
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

type DatabaseConfig struct {
	Dialect  string
	Host     string
	Port     int
	User     string
	Password string
	Name     string
	SSLMode  string
}

// ConnParams converts the raw config into validated connection parameters.
func (d DatabaseConfig) ConnParams() (dbconn.ConnParams, error) {
	dialect, err := dbconn.ParseDialect(d.Dialect)
	if err != nil {
		return dbconn.ConnParams{}, err
	}
	return dbconn.ConnParams{
		Dialect:  dialect,
		Host:     d.Host,
		Port:     d.Port,
		User:     d.User,
		Password: d.Password,
		Name:     d.Name,
		SSLMode:  d.SSLMode,
	}, nil
}

type LLMConfig struct {
	APIKey  string
	Model   string
	BaseURL string
}

type HistoryConfig struct {
	// Backend selects the conversation store: "memory" (default) or "valkey".
	Backend string
}

type ValkeyConfig struct {
	Addr     string
	Password string
}

type MCPConfig struct {
	Addr string
}

func Load() (*Config, error) {
	cfg := &Config{
		Server: ServerConfig{
			Host:         getEnv("SERVER_HOST", "0.0.0.0"),
			Port:         getEnvInt("SERVER_PORT", 8080),
			ReadTimeout:  time.Duration(getEnvInt("SERVER_READ_TIMEOUT_SECS", 30)) * time.Second,
			WriteTimeout: time.Duration(getEnvInt("SERVER_WRITE_TIMEOUT_SECS", 120)) * time.Second,
		},
		Database: DatabaseConfig{
			Dialect:  getEnv("DB_DIALECT", "postgresql"),
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnvInt("DB_PORT", 5432),
			User:     getEnv("DB_USER", ""),
			Password: getEnv("DB_PASSWORD", ""),
			Name:     getEnv("DB_NAME", ""),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),
		},
		LLM: LLMConfig{
			APIKey:  getEnv("LLM_API_KEY", ""),
			Model:   getEnv("LLM_MODEL", ""),
			BaseURL: getEnv("LLM_BASE_URL", ""),
		},
		History: HistoryConfig{
			Backend: getEnv("HISTORY_BACKEND", "memory"),
		},
		Valkey: ValkeyConfig{
			Addr:     getEnv("VALKEY_ADDR", "localhost:6379"),
			Password: getEnv("VALKEY_PASSWORD", ""),
		},
		MCP: MCPConfig{
			Addr: getEnv("MCP_ADDR", ":8091"),
		},
	}

	if cfg.Database.Name == "" {
		return nil, fmt.Errorf("DB_NAME is required")
	}
	if cfg.LLM.APIKey == "" {
		return nil, fmt.Errorf("LLM_API_KEY is required")
	}
	return cfg, nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return fallback
}
