package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v2"
)

const (
	configFilePathENV = "CONFIG_FILE"
	terminalURLENV    = "TERMINAL_URL"
	terminalTokenENV  = "TERMINAL_TOKEN"
	tokenTelegramENV  = "TELEGRAM_TOKEN"
)

// Config ...
type Config struct {
	Service struct {
		Host string `yaml:"host"`
		Port int    `yaml:"port"`
	} `yaml:"service"`

	Terminal struct {
		BaseURL string `yaml:"base_url"`
		Token   string `yaml:"token"`
		Timeout time.Duration
	} `yaml:"terminal"`

	Telegram struct {
		Token  string `yaml:"token"`
		ChatID int64  `yaml:"chat_id"`
	} `yaml:"telegram"`

	Tracing struct {
		Enabled bool   `yaml:"enabled"`
		Host    string `yaml:"host"`
		Port    int    `yaml:"port"`
	} `yaml:"tracing"`

	// Параметры цикла супервизии трейлинг-стопов.
	// Interval меряется от конца одного цикла до начала следующего.
	TrailInterval    time.Duration
	TrailStopTimeout time.Duration
	// 0 = джоб ретраится бесконечно (как в терминале), N>0 = выселяем
	// после N подряд неудачных проходов.
	TrailMaxFailures int
}

func NewConfig() (*Config, error) {
	configFileName := os.Getenv(configFilePathENV)
	if configFileName == "" {
		configFileName = "values_local.yaml"
	}
	file, err := os.Open("configs/" + configFileName)
	if err != nil {
		return nil, fmt.Errorf("open config file: %w", err)
	}

	defer func() {
		_ = file.Close()
	}()

	decoder := yaml.NewDecoder(file)
	config := Config{
		TrailInterval:    durationFromEnv("TRAIL_INTERVAL", "5s"),
		TrailStopTimeout: durationFromEnv("TRAIL_STOP_TIMEOUT", "10s"),
		TrailMaxFailures: intFromEnv("TRAIL_MAX_FAILURES", 0),
	}
	if err := decoder.Decode(&config); err != nil {
		return nil, fmt.Errorf("decode config file: %w", err)
	}

	config.Terminal.Timeout = durationFromEnv("TERMINAL_TIMEOUT", "5s")

	if url := os.Getenv(terminalURLENV); url != "" {
		config.Terminal.BaseURL = url
	}
	if token := os.Getenv(terminalTokenENV); token != "" {
		config.Terminal.Token = token
	}
	if token := os.Getenv(tokenTelegramENV); token != "" {
		config.Telegram.Token = token
	}

	if config.Terminal.BaseURL == "" {
		return nil, fmt.Errorf("terminal base_url is required")
	}
	if config.Service.Port == 0 {
		config.Service.Port = intFromEnv("SERVICE_PORT", 8080)
	}

	return &config, nil
}

func intFromEnv(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}

func getenvDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func durationFromEnv(key, def string) time.Duration {
	val := getenvDefault(key, def)
	d, err := time.ParseDuration(val)
	if err != nil {
		d, _ = time.ParseDuration(def)
	}
	return d
}
