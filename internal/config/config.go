package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// ErrConfiguration wraps every error returned by Load.
var ErrConfiguration = errors.New("configuration error")

type Config struct {
	DiscordToken     string `mapstructure:"discord_token" validate:"required"`
	OpenAIKey        string `mapstructure:"openai_key" validate:"required"`
	Prefix           string `mapstructure:"prefix" validate:"required"`
	Greeting         string `mapstructure:"greeting" validate:"required"`
	SystemPromptPath string `mapstructure:"system_prompt_path" validate:"required"`
	AdminRole        string `mapstructure:"admin_role"`

	CommandTimeout time.Duration `mapstructure:"command_timeout" validate:"gt=0"`

	OpenAI   OpenAIConfig   `mapstructure:"openai"`
	Meme     MemeConfig     `mapstructure:"meme"`
	Voice    VoiceConfig    `mapstructure:"voice"`
	Log      LogConfig      `mapstructure:"log"`
	Presence PresenceConfig `mapstructure:"presence"`
}

type OpenAIConfig struct {
	BaseURL string        `mapstructure:"base_url" validate:"required,url"`
	Model   string        `mapstructure:"model" validate:"required"`
	Timeout time.Duration `mapstructure:"timeout" validate:"gt=0"`
}

type MemeConfig struct {
	URL     string        `mapstructure:"url" validate:"required,url"`
	Timeout time.Duration `mapstructure:"timeout" validate:"gt=0"`
}

type VoiceConfig struct {
	IdleTimeout   time.Duration `mapstructure:"idle_timeout" validate:"gt=0"`
	SweepSchedule string        `mapstructure:"sweep_schedule" validate:"required"`
}

type LogConfig struct {
	Level  string `mapstructure:"level" validate:"oneof=debug info warn error"`
	Format string `mapstructure:"format" validate:"oneof=json text"`
}

type PresenceConfig struct {
	Activity string `mapstructure:"activity"`
	Status   string `mapstructure:"status" validate:"oneof=online idle dnd invisible"`
}

// Load reads configuration from defaults, an optional YAML file, an optional
// .env file and the environment, in increasing order of precedence. When path
// is empty, config.yaml in the working directory is used if present.
func Load(path string) (*Config, error) {
	// Load environment variables from .env file
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%w: failed to load .env file: %v", ErrConfiguration, err)
	}

	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix("RU")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	_ = v.BindEnv("discord_token", "DISCORD_TOKEN")
	_ = v.BindEnv("openai_key", "OPENAI_KEY")

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("%w: failed to read config file: %v", ErrConfiguration, err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("%w: failed to parse config: %v", ErrConfiguration, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrConfiguration, err)
	}

	return cfg, nil
}

// Validate checks required values and ranges.
func (c *Config) Validate() error {
	return validator.New(validator.WithRequiredStructEnabled()).Struct(c)
}
