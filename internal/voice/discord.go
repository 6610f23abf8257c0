package voice

import (
	"context"
	"sync"

	"github.com/bwmarrin/discordgo"
	"github.com/latoulicious/Ru/pkg/common"
	"go.uber.org/zap"
)

// DiscordDialer joins voice channels through a discordgo session.
type DiscordDialer struct {
	session *discordgo.Session
	logger  *zap.Logger
}

func NewDiscordDialer(session *discordgo.Session, logger *zap.Logger) *DiscordDialer {
	return &DiscordDialer{session: session, logger: logger}
}

func (d *DiscordDialer) Dial(ctx context.Context, guildID, channelID string) (Conn, error) {
	vc, err := common.JoinVoiceChannel(ctx, d.session, guildID, channelID, d.logger)
	if err != nil {
		return nil, err
	}
	return &discordConn{vc: vc, logger: d.logger.With(zap.String("guild_id", guildID))}, nil
}

type discordConn struct {
	vc     *discordgo.VoiceConnection
	logger *zap.Logger

	mu       sync.Mutex
	muted    bool
	pipeline *common.AudioPipeline
}

func (c *discordConn) ChannelID() string {
	c.vc.RLock()
	defer c.vc.RUnlock()
	return c.vc.ChannelID
}

func (c *discordConn) Frames() chan<- []byte {
	return c.vc.OpusSend
}

func (c *discordConn) Speaking(b bool) error {
	return c.vc.Speaking(b)
}

// SetMute updates the bot's self-mute flag and stops forwarding audio frames.
func (c *discordConn) SetMute(muted bool) error {
	if err := c.vc.ChangeChannel(c.ChannelID(), muted, true); err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.muted = muted
	if c.pipeline != nil {
		c.pipeline.SetMuted(muted)
	}
	return nil
}

func (c *discordConn) Play(src *common.Source) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	pipeline := common.NewAudioPipeline(c, c.logger)
	pipeline.SetMuted(c.muted)
	if err := pipeline.Start(src.StreamURL); err != nil {
		return err
	}
	c.pipeline = pipeline

	go c.release(pipeline)
	return nil
}

// release forgets pipeline once it finishes, unless it was already replaced.
func (c *discordConn) release(pipeline *common.AudioPipeline) {
	<-pipeline.Done()

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.pipeline == pipeline {
		c.pipeline = nil
		c.logger.Debug("playback finished")
	}
}

func (c *discordConn) Playing() bool {
	c.mu.Lock()
	pipeline := c.pipeline
	c.mu.Unlock()

	return pipeline != nil && pipeline.IsPlaying()
}

// Ready reports whether the voice websocket is still up. discordgo keeps the
// channel id after a kick, so this is the liveness signal.
func (c *discordConn) Ready() bool {
	c.vc.RLock()
	defer c.vc.RUnlock()
	return c.vc.Ready
}

func (c *discordConn) Stop() {
	c.mu.Lock()
	pipeline := c.pipeline
	c.pipeline = nil
	c.mu.Unlock()

	if pipeline != nil {
		pipeline.Stop()
	}
}

func (c *discordConn) Disconnect() error {
	return c.vc.Disconnect()
}
