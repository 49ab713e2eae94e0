package config

import "time"

// Config is the console configuration, read from an optional YAML file and
// overridden by environment variables
type Config struct {
	API          APIConfig      `yaml:"api"`
	Answers      AnswersConfig  `yaml:"answers"`
	FormDefaults FormDefaults   `yaml:"form_defaults"`
	Results      ResultsConfig  `yaml:"results"`
	Telegram     TelegramConfig `yaml:"telegram"`
	Log          LogConfig      `yaml:"log"`
}

// APIConfig points at the interview backend
type APIConfig struct {
	BaseURL string        `yaml:"base_url"`
	Timeout time.Duration `yaml:"timeout"`
}

// AnswersConfig controls how typed answers are committed
type AnswersConfig struct {
	// Debounce is the quiet period before a draft is sent; 0 means explicit
	// submit only
	Debounce time.Duration `yaml:"debounce"`
}

// FormDefaults are the values new-interview and new-question forms reset to
type FormDefaults struct {
	Domain     string `yaml:"domain"`
	TechStack  string `yaml:"tech_stack"`
	Difficulty string `yaml:"difficulty"`
}

// ResultsConfig is where transcripts are exported
type ResultsConfig struct {
	Dir string `yaml:"dir"`
}

// TelegramConfig enables the optional Telegram toast sink
type TelegramConfig struct {
	Token      string `yaml:"token"`
	ChatID     int64  `yaml:"chat_id"`
	ErrorsOnly bool   `yaml:"errors_only"`
	APIURL     string `yaml:"api_url"`
}

// LogConfig selects the slog handler
type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// TelegramEnabled reports whether toasts should also go to Telegram
func (c *Config) TelegramEnabled() bool {
	return c.Telegram.Token != ""
}
