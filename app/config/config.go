package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Server  HTTPServerConfig `json:"server"`
	LLM     LLMConfig        `json:"llm"`
	CORS    CORSConfig       `json:"cors"`
	Metrics MetricsConfig    `json:"metrics"`
	Log     LogConfig        `json:"log"`
}

type HTTPServerConfig struct {
	Host         string        `json:"host" default:"0.0.0.0"`
	Port         int           `json:"port" default:"3001"`
	ReadTimeout  time.Duration `json:"read_timeout" default:"30s"`
	WriteTimeout time.Duration `json:"write_timeout" default:"0s"`
}

func (c HTTPServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

type LLMConfig struct {
	APIKey  string        `json:"-"`
	Model   string        `json:"model" default:"gemini-1.5-flash"`
	Timeout time.Duration `json:"timeout" default:"60s"`
}

type CORSConfig struct {
	AllowedOrigins []string `json:"allowed_origins"`
}

type MetricsConfig struct {
	// Addr of the dedicated metrics listener; empty disables it.
	Addr string `json:"addr" default:":2112"`
}

type LogConfig struct {
	Level slog.Level `json:"level"`
}

func Default() *Config {
	return &Config{
		Server: HTTPServerConfig{
			Host:        "0.0.0.0",
			Port:        3001,
			ReadTimeout: 30 * time.Second,
		},
		LLM: LLMConfig{
			Model:   "gemini-1.5-flash",
			Timeout: 60 * time.Second,
		},
		CORS: CORSConfig{
			AllowedOrigins: []string{"http://localhost:5173"},
		},
		Metrics: MetricsConfig{
			Addr: ":2112",
		},
		Log: LogConfig{
			Level: slog.LevelInfo,
		},
	}
}

// Load builds the configuration from defaults, an optional HCL file named by
// CONFIG_FILE and the environment. envFiles are loaded first with godotenv
// (".env" when none given); variables already set in the process win, and
// missing files are skipped.
func Load(envFiles ...string) (*Config, error) {
	if len(envFiles) == 0 {
		envFiles = []string{".env"}
	}
	for _, f := range envFiles {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("load env file %s: %w", f, err)
		}
	}

	cfg := Default()

	if path := os.Getenv("CONFIG_FILE"); path != "" {
		if err := applyFile(cfg, path); err != nil {
			return nil, err
		}
	}

	if err := applyEnv(cfg); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("server port %d out of range", c.Server.Port)
	}
	if c.Server.ReadTimeout < 0 || c.Server.WriteTimeout < 0 {
		return errors.New("server timeouts must not be negative")
	}
	if c.LLM.Timeout < 0 {
		return errors.New("llm timeout must not be negative")
	}
	if c.LLM.Model == "" {
		return errors.New("llm model is required")
	}
	return nil
}

func applyEnv(cfg *Config) error {
	cfg.Server.Host = getEnv("SERVER_HOST", cfg.Server.Host)
	if v := os.Getenv("PORT"); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("parse PORT %q: %w", v, err)
		}
		cfg.Server.Port = port
	}

	cfg.LLM.APIKey = getEnv("GEMINI_API_KEY", cfg.LLM.APIKey)
	cfg.LLM.Model = getEnv("GEMINI_MODEL", cfg.LLM.Model)
	if v := os.Getenv("LLM_TIMEOUT"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("parse LLM_TIMEOUT %q: %w", v, err)
		}
		cfg.LLM.Timeout = d
	}

	if v := os.Getenv("CORS_ALLOWED_ORIGINS"); v != "" {
		cfg.CORS.AllowedOrigins = splitList(v)
	}

	if v, ok := os.LookupEnv("METRICS_ADDR"); ok {
		cfg.Metrics.Addr = v
	}

	if v := os.Getenv("LOG_LEVEL"); v != "" {
		if err := cfg.Log.Level.UnmarshalText([]byte(v)); err != nil {
			return fmt.Errorf("parse LOG_LEVEL %q: %w", v, err)
		}
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
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
