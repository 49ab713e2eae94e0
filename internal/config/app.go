package config

import (
	"os"
	"strconv"
	"time"
)

// Default returns the configuration used when nothing is set
func Default() *Config {
	return &Config{
		API: APIConfig{
			BaseURL: "http://localhost:3000",
			Timeout: 30 * time.Second,
		},
		Answers: AnswersConfig{
			Debounce: 500 * time.Millisecond,
		},
		FormDefaults: FormDefaults{
			Difficulty: "Medium",
		},
		Results: ResultsConfig{
			Dir: "results",
		},
		Telegram: TelegramConfig{
			ErrorsOnly: true,
			APIURL:     "https://api.telegram.org",
		},
		Log: LogConfig{
			Level:  "warn",
			Format: "text",
		},
	}
}

// applyEnv overrides cfg with the environment
func applyEnv(cfg *Config) {
	cfg.API.BaseURL = getEnv("INTERVIEW_API_URL", cfg.API.BaseURL)
	cfg.API.Timeout = getEnvAsDuration("INTERVIEW_API_TIMEOUT", cfg.API.Timeout)
	cfg.Answers.Debounce = getEnvAsDuration("INTERVIEW_ANSWER_DEBOUNCE", cfg.Answers.Debounce)
	cfg.FormDefaults.Domain = getEnv("INTERVIEW_DEFAULT_DOMAIN", cfg.FormDefaults.Domain)
	cfg.FormDefaults.TechStack = getEnv("INTERVIEW_DEFAULT_TECH_STACK", cfg.FormDefaults.TechStack)
	cfg.FormDefaults.Difficulty = getEnv("INTERVIEW_DEFAULT_DIFFICULTY", cfg.FormDefaults.Difficulty)
	cfg.Results.Dir = getEnv("INTERVIEW_RESULTS_DIR", cfg.Results.Dir)
	cfg.Telegram.Token = getEnv("TELEGRAM_BOT_TOKEN", cfg.Telegram.Token)
	cfg.Telegram.ChatID = getEnvAsInt64("TELEGRAM_CHAT_ID", cfg.Telegram.ChatID)
	cfg.Telegram.ErrorsOnly = getEnvAsBool("TELEGRAM_ERRORS_ONLY", cfg.Telegram.ErrorsOnly)
	cfg.Log.Level = getEnv("INTERVIEW_LOG_LEVEL", cfg.Log.Level)
	cfg.Log.Format = getEnv("INTERVIEW_LOG_FORMAT", cfg.Log.Format)
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt64(key string, defaultValue int64) int64 {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.ParseInt(value, 10, 64); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}
