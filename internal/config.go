package internal

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// Config is the contents of <scope>/.wander/config.yaml.
type Config struct {
	Catalog struct {
		// Path overrides the scope catalog; relative paths resolve against the scope root.
		Path string `yaml:"path,omitempty"`
	} `yaml:"catalog"`
	Recommend struct {
		TopK int `yaml:"top_k" validate:"min=0,max=100"`
	} `yaml:"recommend"`
	Log    LogConfig `yaml:"log"`
	Server struct {
		Addr string `yaml:"addr" validate:"required"`
	} `yaml:"server"`
	Providers       map[string]ProviderConfig `yaml:"providers,omitempty" validate:"dive"`
	DefaultProvider string                    `yaml:"default_provider,omitempty"`
}

type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format" validate:"omitempty,oneof=console json"`
}

// ProviderConfig describes one LLM backend. Kind defaults to the map key.
type ProviderConfig struct {
	Kind    string `yaml:"kind,omitempty" validate:"omitempty,oneof=anthropic openai openrouter"`
	APIKey  string `yaml:"api_key,omitempty"`
	BaseURL string `yaml:"base_url,omitempty" validate:"omitempty,url"`
	Model   string `yaml:"model"`
}

func DefaultConfig() *Config {
	cfg := &Config{
		Log:       LogConfig{Level: "warn", Format: "console"},
		Providers: map[string]ProviderConfig{},
	}
	cfg.Recommend.TopK = DefaultTopK
	cfg.Server.Addr = ":8080"
	return cfg
}

// LoadConfig overlays the scope's config file on DefaultConfig. A missing
// file is not an error.
func LoadConfig(scope Scope) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(scope.ConfigPath())
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return cfg, nil
	case err != nil:
		return nil, fmt.Errorf("read config: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", scope.ConfigPath(), err)
	}
	if cfg.Providers == nil {
		cfg.Providers = map[string]ProviderConfig{}
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", scope.ConfigPath(), err)
	}
	return cfg, nil
}

// Validate reports the first invalid setting by its yaml name.
func (c *Config) Validate() error {
	err := validatorInstance().Struct(c)
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		fe := verrs[0]
		return fmt.Errorf("%s: invalid value %v (%s)", fe.Namespace(), fe.Value(), fe.Tag())
	}
	return err
}

func SaveConfig(scope Scope, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}
	if err := os.WriteFile(scope.ConfigPath(), data, 0644); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}
