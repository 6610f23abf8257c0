package common

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/avast/retry-go/v4"
	"github.com/bwmarrin/discordgo"
	"go.uber.org/zap"
)

var ErrUserNotInVoice = errors.New("user is not in a voice channel")

const (
	joinAttempts      = 3
	voiceReadyTimeout = 10 * time.Second
)

// FindUserVoiceChannel returns the voice channel the user is connected to in the guild.
func FindUserVoiceChannel(state *discordgo.State, guildID, userID string) (string, error) {
	guild, err := state.Guild(guildID)
	if err != nil {
		return "", fmt.Errorf("could not find guild: %w", err)
	}

	for _, vs := range guild.VoiceStates {
		if vs.UserID == userID && vs.ChannelID != "" {
			return vs.ChannelID, nil
		}
	}

	return "", ErrUserNotInVoice
}

// JoinVoiceChannel joins the channel with retry logic and waits until the
// connection is ready. The bot joins self-deafened.
func JoinVoiceChannel(ctx context.Context, s *discordgo.Session, guildID, channelID string, logger *zap.Logger) (*discordgo.VoiceConnection, error) {
	logger.Info("joining voice channel", zap.String("guild_id", guildID), zap.String("channel_id", channelID))

	vc, err := retry.DoWithData(
		func() (*discordgo.VoiceConnection, error) {
			return s.ChannelVoiceJoin(guildID, channelID, false, true)
		},
		retry.Context(ctx),
		retry.Attempts(joinAttempts),
		retry.Delay(time.Second),
		retry.DelayType(retry.BackOffDelay),
		retry.LastErrorOnly(true),
		retry.OnRetry(func(n uint, err error) {
			logger.Warn("voice join attempt failed",
				zap.Uint("attempt", n+1),
				zap.Int("max_attempts", joinAttempts),
				zap.Error(err))
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to join voice channel after %d attempts: %w", joinAttempts, err)
	}

	if err := waitForVoiceReady(ctx, vc); err != nil {
		vc.Disconnect()
		return nil, err
	}

	logger.Info("voice connection ready", zap.String("guild_id", guildID))
	return vc, nil
}

func waitForVoiceReady(ctx context.Context, vc *discordgo.VoiceConnection) error {
	timeout := time.After(voiceReadyTimeout)
	ticker := time.NewTicker(100 * time.Millisecond)
	defer ticker.Stop()

	for {
		vc.RLock()
		ready := vc.Ready
		vc.RUnlock()
		if ready {
			return nil
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-timeout:
			return errors.New("voice connection timed out")
		case <-ticker.C:
		}
	}
}
