package config

import (
	"time"

	"github.com/spf13/viper"
)

const (
	DefaultPrefix           = "Ru "
	DefaultGreeting         = "hello ru"
	DefaultSystemPromptPath = "init.txt"
	DefaultAdminRole        = "Admin"
	DefaultCommandTimeout   = 2 * time.Minute

	DefaultOpenAIBaseURL = "https://api.openai.com/v1"
	DefaultOpenAIModel   = "gpt-3.5-turbo"
	DefaultOpenAITimeout = 60 * time.Second

	DefaultMemeURL     = "https://meme-api.com/gimme"
	DefaultMemeTimeout = 10 * time.Second

	DefaultVoiceIdleTimeout   = 10 * time.Minute
	DefaultVoiceSweepSchedule = "@every 1m"

	DefaultLogLevel  = "info"
	DefaultLogFormat = "text"

	DefaultPresenceActivity = "Ru help"
	DefaultPresenceStatus   = "idle"
)

func setDefaults(v *viper.Viper) {
	v.SetDefault("prefix", DefaultPrefix)
	v.SetDefault("greeting", DefaultGreeting)
	v.SetDefault("system_prompt_path", DefaultSystemPromptPath)
	v.SetDefault("admin_role", DefaultAdminRole)
	v.SetDefault("command_timeout", DefaultCommandTimeout)

	v.SetDefault("openai.base_url", DefaultOpenAIBaseURL)
	v.SetDefault("openai.model", DefaultOpenAIModel)
	v.SetDefault("openai.timeout", DefaultOpenAITimeout)

	v.SetDefault("meme.url", DefaultMemeURL)
	v.SetDefault("meme.timeout", DefaultMemeTimeout)

	v.SetDefault("voice.idle_timeout", DefaultVoiceIdleTimeout)
	v.SetDefault("voice.sweep_schedule", DefaultVoiceSweepSchedule)

	v.SetDefault("log.level", DefaultLogLevel)
	v.SetDefault("log.format", DefaultLogFormat)

	v.SetDefault("presence.activity", DefaultPresenceActivity)
	v.SetDefault("presence.status", DefaultPresenceStatus)

	// Registered so AutomaticEnv picks them up during Unmarshal.
	v.SetDefault("discord_token", "")
	v.SetDefault("openai_key", "")
}
