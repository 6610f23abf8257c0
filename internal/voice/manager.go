// Package voice owns the per-guild voice connections. Each guild has at most
// one connection, and every operation on a guild holds that guild's lock for
// its whole duration.
package voice

import (
	"context"
	"sync"
	"time"

	"github.com/latoulicious/Ru/pkg/common"
	"go.uber.org/zap"
)

// Conn is an open voice connection.
type Conn interface {
	ChannelID() string
	// Ready reports whether the connection is still usable.
	Ready() bool
	// Playing reports whether a source is still streaming.
	Playing() bool
	SetMute(muted bool) error
	Play(src *common.Source) error
	Stop()
	Disconnect() error
}

// Dialer opens voice connections.
type Dialer interface {
	Dial(ctx context.Context, guildID, channelID string) (Conn, error)
}

// Resolver turns a URL or keyword into a streamable source.
type Resolver interface {
	Resolve(ctx context.Context, query string) (*common.Source, error)
}

type slot struct {
	mu       sync.Mutex
	conn     Conn
	muted    bool
	lastUsed time.Time
}

// Manager is the table of voice slots keyed by guild id.
type Manager struct {
	dialer   Dialer
	resolver Resolver
	logger   *zap.Logger
	now      func() time.Time

	mu    sync.Mutex
	slots map[string]*slot
}

func NewManager(dialer Dialer, resolver Resolver, logger *zap.Logger) *Manager {
	return &Manager{
		dialer:   dialer,
		resolver: resolver,
		logger:   logger,
		now:      time.Now,
		slots:    make(map[string]*slot),
	}
}

// acquire returns the guild's slot, locked. The caller must unlock it.
func (m *Manager) acquire(guildID string) *slot {
	m.mu.Lock()
	s, ok := m.slots[guildID]
	if !ok {
		s = &slot{}
		m.slots[guildID] = s
	}
	m.mu.Unlock()

	s.mu.Lock()
	return s
}

// Join connects to channelID, moving an existing connection if it points elsewhere.
func (m *Manager) Join(ctx context.Context, guildID, channelID string) error {
	s := m.acquire(guildID)
	defer s.mu.Unlock()

	if s.conn != nil {
		if s.conn.ChannelID() == channelID && s.conn.Ready() {
			s.lastUsed = m.now()
			return nil
		}
		if !s.conn.Ready() {
			m.logger.Info("replacing dead voice connection", zap.String("guild_id", guildID))
		}
		_ = m.teardown(guildID, s)
	}

	conn, err := m.dialer.Dial(ctx, guildID, channelID)
	if err != nil {
		return &BackendError{Op: "join", Err: err}
	}

	s.conn = conn
	s.muted = false
	s.lastUsed = m.now()

	m.logger.Info("joined voice channel", zap.String("guild_id", guildID), zap.String("channel_id", channelID))
	return nil
}

// Leave disconnects the guild's connection.
func (m *Manager) Leave(guildID string) error {
	s := m.acquire(guildID)
	defer s.mu.Unlock()

	if s.conn == nil {
		return ErrNotConnected
	}

	if err := m.teardown(guildID, s); err != nil {
		return &BackendError{Op: "leave", Err: err}
	}

	m.logger.Info("left voice channel", zap.String("guild_id", guildID))
	return nil
}

// Play resolves query and starts it, replacing anything already playing.
func (m *Manager) Play(ctx context.Context, guildID, query string) (*common.Source, error) {
	s := m.acquire(guildID)
	defer s.mu.Unlock()

	if !m.live(guildID, s) {
		return nil, ErrNotConnected
	}

	src, err := m.resolver.Resolve(ctx, query)
	if err != nil {
		return nil, &BackendError{Op: "resolve", Err: err}
	}

	s.conn.Stop()
	if err := s.conn.Play(src); err != nil {
		return nil, &BackendError{Op: "play", Err: err}
	}
	s.lastUsed = m.now()

	m.logger.Info("playing source",
		zap.String("guild_id", guildID),
		zap.String("title", src.Title),
		zap.Duration("duration", src.Duration))
	return src, nil
}

// Mute mutes the connection. Muting twice returns ErrAlreadyMuted without
// touching the backend.
func (m *Manager) Mute(guildID string) error {
	return m.setMute(guildID, true)
}

// Unmute is the inverse of Mute and returns ErrNotMuted when not muted.
func (m *Manager) Unmute(guildID string) error {
	return m.setMute(guildID, false)
}

func (m *Manager) setMute(guildID string, muted bool) error {
	s := m.acquire(guildID)
	defer s.mu.Unlock()

	if !m.live(guildID, s) {
		return ErrNotConnected
	}

	if s.muted == muted {
		if muted {
			return ErrAlreadyMuted
		}
		return ErrNotMuted
	}

	op := "unmute"
	if muted {
		op = "mute"
	}
	if err := s.conn.SetMute(muted); err != nil {
		return &BackendError{Op: op, Err: err}
	}

	s.muted = muted
	s.lastUsed = m.now()
	return nil
}

// connected reports whether the guild has an open connection.
func (m *Manager) connected(guildID string) bool {
	s := m.acquire(guildID)
	defer s.mu.Unlock()
	return s.conn != nil
}

// isMuted reports whether the guild's connection is muted.
func (m *Manager) isMuted(guildID string) bool {
	s := m.acquire(guildID)
	defer s.mu.Unlock()
	return s.conn != nil && s.muted
}

// DisconnectIdle leaves every guild whose connection has not been used for
// maxIdle and returns the affected guild ids. Ongoing playback counts as use.
func (m *Manager) DisconnectIdle(maxIdle time.Duration) []string {
	var left []string
	for _, guildID := range m.guildIDs() {
		s := m.acquire(guildID)
		if s.conn != nil && s.conn.Playing() {
			s.lastUsed = m.now()
		}
		if s.conn != nil && m.now().Sub(s.lastUsed) >= maxIdle {
			if err := m.teardown(guildID, s); err != nil {
				m.logger.Warn("failed to disconnect idle voice connection",
					zap.String("guild_id", guildID), zap.Error(err))
			} else {
				left = append(left, guildID)
			}
		}
		s.mu.Unlock()
	}

	if len(left) > 0 {
		m.logger.Info("disconnected idle voice connections", zap.Strings("guild_ids", left))
	}
	return left
}

// Close disconnects every guild.
func (m *Manager) Close() {
	for _, guildID := range m.guildIDs() {
		s := m.acquire(guildID)
		if s.conn != nil {
			if err := m.teardown(guildID, s); err != nil {
				m.logger.Warn("failed to disconnect voice connection",
					zap.String("guild_id", guildID), zap.Error(err))
			}
		}
		s.mu.Unlock()
	}
}

func (m *Manager) guildIDs() []string {
	m.mu.Lock()
	defer m.mu.Unlock()

	ids := make([]string, 0, len(m.slots))
	for id := range m.slots {
		ids = append(ids, id)
	}
	return ids
}

// live reports whether the slot holds a usable connection, dropping one whose
// websocket has gone away. The slot lock must be held.
func (m *Manager) live(guildID string, s *slot) bool {
	if s.conn == nil {
		return false
	}
	if !s.conn.Ready() {
		m.logger.Info("dropping dead voice connection", zap.String("guild_id", guildID))
		_ = m.teardown(guildID, s)
		return false
	}
	return true
}

// teardown stops playback and disconnects. The slot lock must be held.
// The slot is cleared even when Disconnect fails.
func (m *Manager) teardown(guildID string, s *slot) error {
	conn := s.conn
	s.conn = nil
	s.muted = false

	conn.Stop()
	if err := conn.Disconnect(); err != nil {
		m.logger.Debug("voice disconnect returned error", zap.String("guild_id", guildID), zap.Error(err))
		return err
	}
	return nil
}
