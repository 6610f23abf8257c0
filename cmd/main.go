package main

import (
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/bwmarrin/discordgo"
	"github.com/latoulicious/Ru/internal/commands"
	"github.com/latoulicious/Ru/internal/config"
	"github.com/latoulicious/Ru/internal/handlers"
	"github.com/latoulicious/Ru/internal/presence"
	"github.com/latoulicious/Ru/internal/voice"
	"github.com/latoulicious/Ru/pkg/chat"
	"github.com/latoulicious/Ru/pkg/common"
	"github.com/latoulicious/Ru/pkg/cron"
	"github.com/latoulicious/Ru/pkg/logging"
	"github.com/latoulicious/Ru/pkg/meme"
	"github.com/spf13/pflag"
	"go.uber.org/zap"
)

const intents = discordgo.IntentsGuilds |
	discordgo.IntentsGuildMessages |
	discordgo.IntentsGuildMembers |
	discordgo.IntentsGuildVoiceStates |
	discordgo.IntentsMessageContent |
	discordgo.IntentsDirectMessages

func main() {
	configPath := pflag.StringP("config", "c", "", "path to a YAML config file (default ./config.yaml if present)")
	pflag.Parse()

	// Load configuration
	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger, err := logging.New(cfg.Log.Level, cfg.Log.Format)
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	// Create a new Discord session using the provided token
	dg, err := discordgo.New("Bot " + cfg.DiscordToken)
	if err != nil {
		logger.Fatal("failed to create Discord session", zap.Error(err))
	}
	dg.Identify.Intents = intents

	memes := meme.NewClient(cfg.Meme.URL, cfg.Meme.Timeout)
	relay := chat.NewRelay(chat.Options{
		APIKey:           cfg.OpenAIKey,
		BaseURL:          cfg.OpenAI.BaseURL,
		Model:            cfg.OpenAI.Model,
		SystemPromptPath: cfg.SystemPromptPath,
		Timeout:          cfg.OpenAI.Timeout,
	}, logger.Named("chat"))

	voiceManager := voice.NewManager(
		voice.NewDiscordDialer(dg, logger.Named("voice")),
		common.NewResolver(logger.Named("resolver")),
		logger.Named("voice"),
	)

	router := commands.NewRouter(cfg.Prefix, cfg.CommandTimeout, logger.Named("commands"))
	commands.RegisterDefaults(router, commands.Deps{
		Memes:     memes,
		Voice:     voiceManager,
		AdminRole: cfg.AdminRole,
	})

	presenceManager := presence.NewPresenceManager(dg, cfg.Presence.Activity, cfg.Presence.Status, logger.Named("presence"))

	handlers.New(router, relay, presenceManager, cfg.Greeting, cfg.CommandTimeout, logger.Named("handlers")).Register(dg)

	sweeper, err := cron.NewJob("idle-voice-sweep", cfg.Voice.SweepSchedule, func() error {
		for _, guildID := range voiceManager.DisconnectIdle(cfg.Voice.IdleTimeout) {
			logger.Info("left idle voice channel", zap.String("guild_id", guildID))
		}
		return nil
	}, logger.Named("cron"))
	if err != nil {
		logger.Fatal("failed to schedule idle sweeper", zap.Error(err))
	}

	// Open a websocket connection to Discord and begin listening.
	if err := dg.Open(); err != nil {
		logger.Fatal("failed to open Discord session", zap.Error(err))
	}

	sweeper.Start()
	logger.Info("idle voice sweeper started",
		zap.String("schedule", sweeper.Schedule()),
		zap.Time("next_run", sweeper.NextRun()),
		zap.Duration("idle_timeout", cfg.Voice.IdleTimeout))

	logger.Info("Bot is running. Press CTRL-C to exit.")
	// Wait here until CTRL-C or other term signal is received.
	sc := make(chan os.Signal, 1)
	signal.Notify(sc, syscall.SIGINT, syscall.SIGTERM, os.Interrupt)
	<-sc

	if sweeper.IsRunning() {
		logger.Info("waiting for idle voice sweep to finish")
	}
	sweeper.Stop()
	voiceManager.Close()

	// Cleanly close down the Discord session.
	if err := dg.Close(); err != nil {
		logger.Warn("failed to close Discord session", zap.Error(err))
	}
}
