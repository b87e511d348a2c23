package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the full server configuration. Values come from an optional
// YAML file, overridden by environment variables. Secrets (API keys) are
// environment-only.
type Config struct {
	ListenAddr string `yaml:"listenAddr"`
	LogMode    string `yaml:"logMode"`
	StorePath  string `yaml:"storePath"`

	Gemini  GeminiConfig  `yaml:"gemini"`
	Sandbox SandboxConfig `yaml:"sandbox"`
	Limits  LimitsConfig  `yaml:"limits"`

	// InstructionsPath optionally points at a YAML file overriding the
	// built-in prompt instruction blocks.
	InstructionsPath string `yaml:"instructionsPath"`
}

type GeminiConfig struct {
	APIKey      string        `yaml:"-"`
	TextModel   string        `yaml:"textModel"`
	VisionModel string        `yaml:"visionModel"`
	Timeout     time.Duration `yaml:"timeout"`
}

type SandboxConfig struct {
	Image         string        `yaml:"image"`
	Port          int           `yaml:"port"`
	CreateTimeout time.Duration `yaml:"createTimeout"`
	PollAttempts  int           `yaml:"pollAttempts"`
	PollDelay     time.Duration `yaml:"pollDelay"`
}

type LimitsConfig struct {
	RequestsPerHour int `yaml:"requestsPerHour"`
	Burst           int `yaml:"burst"`
}

// Default returns the configuration used when no file or environment
// overrides are present.
func Default() Config {
	return Config{
		ListenAddr: ":3001",
		LogMode:    "dev",
		StorePath:  "./storage/sessions",
		Gemini: GeminiConfig{
			TextModel:   "gemini-2.0-flash-exp",
			VisionModel: "gemini-2.0-flash-exp",
			Timeout:     2 * time.Minute,
		},
		Sandbox: SandboxConfig{
			Image:         "python:3.12-slim",
			Port:          3000,
			CreateTimeout: 5 * time.Minute,
			PollAttempts:  30,
			PollDelay:     time.Second,
		},
		Limits: LimitsConfig{
			RequestsPerHour: 100,
			Burst:           10,
		},
	}
}

// Load reads the YAML file at path (if path is non-empty and the file
// exists) on top of the defaults, then applies environment overrides.
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case err == nil:
			if err := yaml.Unmarshal(data, &cfg); err != nil {
				return cfg, fmt.Errorf("failed to parse config %s: %w", path, err)
			}
		case !os.IsNotExist(err):
			return cfg, fmt.Errorf("failed to read config %s: %w", path, err)
		}
	}

	applyEnv(&cfg)

	if cfg.Gemini.APIKey == "" {
		return cfg, fmt.Errorf("GEMINI_API_KEY is not configured")
	}
	return cfg, nil
}

func applyEnv(cfg *Config) {
	if v := os.Getenv("UXFORGE_LISTEN_ADDR"); v != "" {
		cfg.ListenAddr = v
	}
	if v := os.Getenv("UXFORGE_LOG_MODE"); v != "" {
		cfg.LogMode = v
	}
	if v := os.Getenv("UXFORGE_STORE_PATH"); v != "" {
		cfg.StorePath = v
	}
	if v := os.Getenv("UXFORGE_INSTRUCTIONS_PATH"); v != "" {
		cfg.InstructionsPath = v
	}
	if v := os.Getenv("GEMINI_API_KEY"); v != "" {
		cfg.Gemini.APIKey = v
	}
	if v := os.Getenv("UXFORGE_GEMINI_MODEL"); v != "" {
		cfg.Gemini.TextModel = v
	}
	if v := os.Getenv("UXFORGE_SANDBOX_IMAGE"); v != "" {
		cfg.Sandbox.Image = v
	}
	if v := os.Getenv("UXFORGE_SANDBOX_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Sandbox.Port = port
		}
	}
}
