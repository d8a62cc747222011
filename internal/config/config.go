package config

import (
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Server struct {
		Port string `yaml:"port"`
	} `yaml:"server"`
	Log struct {
		Mode string `yaml:"mode"`
	} `yaml:"log"`
	Redis struct {
		Addr     string `yaml:"addr"`
		Password string `yaml:"password"`
		DB       int    `yaml:"db"`
		TTL      string `yaml:"ttl"`
	} `yaml:"redis"`
	Postgres struct {
		URL string `yaml:"url"`
	} `yaml:"postgres"`
	SQLite struct {
		Path string `yaml:"path"`
	} `yaml:"sqlite"`
	Questions struct {
		Endpoint   string `yaml:"endpoint"`
		Count      int    `yaml:"count"`
		Difficulty string `yaml:"difficulty"`
	} `yaml:"questions"`
	Generator struct {
		APIKey  string `yaml:"api_key"`
		BaseURL string `yaml:"base_url"`
		Model   string `yaml:"model"`
	} `yaml:"generator"`
	Quiz struct {
		TimeBudget    string `yaml:"time_budget"`
		Tick          string `yaml:"tick"`
		PassThreshold int    `yaml:"pass_threshold"`
	} `yaml:"quiz"`
	Session struct {
		Secret string `yaml:"secret"`
	} `yaml:"session"`
}

// Load reads YAML config from path and applies environment overrides.
func Load(path string) (Config, error) {
	cfg := Config{}
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, err
	}
	cfg.applyEnv()
	return cfg, nil
}

func (c *Config) applyEnv() {
	if v := strings.TrimSpace(os.Getenv("GEMINI_API_KEY")); v != "" && c.Generator.APIKey == "" {
		c.Generator.APIKey = v
	}
	if v := strings.TrimSpace(os.Getenv("SESSION_SECRET")); v != "" {
		c.Session.Secret = v
	}
}

// QuestionCount falls back to 5 questions per quiz.
func (c Config) QuestionCount() int {
	if c.Questions.Count > 0 {
		return c.Questions.Count
	}
	return 5
}

// DefaultDifficulty is used when a client does not pick one.
func (c Config) DefaultDifficulty() string {
	if c.Questions.Difficulty != "" {
		return c.Questions.Difficulty
	}
	return "medium"
}

// TimeBudgetSeconds parses quiz.time_budget, defaulting to two minutes.
// Budgets under one second also get the default.
func (c Config) TimeBudgetSeconds() int {
	budget := TTLDuration(c.Quiz.TimeBudget, 120*time.Second)
	if budget < time.Second {
		budget = 120 * time.Second
	}
	return int(budget / time.Second)
}

func (c Config) TickInterval() time.Duration {
	return TTLDuration(c.Quiz.Tick, time.Second)
}

func (c Config) PassThreshold() int {
	if c.Quiz.PassThreshold > 0 {
		return c.Quiz.PassThreshold
	}
	return 70
}

// TTLDuration parses a duration string or returns the fallback if empty.
func TTLDuration(raw string, fallback time.Duration) time.Duration {
	if raw == "" {
		return fallback
	}
	if d, err := time.ParseDuration(raw); err == nil {
		return d
	}
	return fallback
}
