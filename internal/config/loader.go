package config

import (
	"fmt"
	"net/url"
	"os"

	"interview-console/internal/api"

	"gopkg.in/yaml.v3"
)

// Load builds the configuration from defaults, the YAML file (skipped when
// filename is empty) and the environment, in that order
func Load(filename string) (*Config, error) {
	config := Default()

	if filename != "" {
		data, err := os.ReadFile(filename)
		if err != nil {
			return nil, fmt.Errorf("error reading file %s: %w", filename, err)
		}

		err = yaml.Unmarshal(data, config)
		if err != nil {
			return nil, fmt.Errorf("error parsing YAML: %w", err)
		}
	}

	applyEnv(config)

	err := validateConfig(config)
	if err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return config, nil
}

// validateConfig checks the configuration for consistency
func validateConfig(config *Config) error {
	u, err := url.Parse(config.API.BaseURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("api.base_url must be an http(s) URL, got %q", config.API.BaseURL)
	}

	if config.API.Timeout <= 0 {
		return fmt.Errorf("api.timeout must be greater than 0")
	}

	if config.Answers.Debounce < 0 {
		return fmt.Errorf("answers.debounce cannot be negative")
	}

	if d := config.FormDefaults.Difficulty; d != "" && !api.Difficulty(d).Valid() {
		return fmt.Errorf("form_defaults.difficulty must be Easy, Medium or Hard, got %q", d)
	}

	if config.Results.Dir == "" {
		return fmt.Errorf("results.dir must be set")
	}

	if config.TelegramEnabled() && config.Telegram.ChatID == 0 {
		return fmt.Errorf("telegram.chat_id is required when a bot token is set")
	}

	return nil
}
