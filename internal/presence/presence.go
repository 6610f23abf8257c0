package presence

import (
	"github.com/bwmarrin/discordgo"
	"go.uber.org/zap"
)

// StatusUpdater is the subset of *discordgo.Session used to set presence.
type StatusUpdater interface {
	UpdateStatusComplex(usd discordgo.UpdateStatusData) error
}

// PresenceManager manages the bot's presence
type PresenceManager struct {
	session  StatusUpdater
	activity string
	status   string
	logger   *zap.Logger
}

// NewPresenceManager creates a new presence manager
func NewPresenceManager(session StatusUpdater, activity, status string, logger *zap.Logger) *PresenceManager {
	return &PresenceManager{
		session:  session,
		activity: activity,
		status:   status,
		logger:   logger,
	}
}

// Data returns the presence payload sent to the gateway.
func (pm *PresenceManager) Data() discordgo.UpdateStatusData {
	data := discordgo.UpdateStatusData{Status: pm.status}
	if pm.activity != "" {
		data.Activities = []*discordgo.Activity{
			{
				Name: pm.activity,
				Type: discordgo.ActivityTypeListening,
			},
		}
	}
	return data
}

// UpdateDefaultPresence sets "listening to <activity>" with the configured status.
func (pm *PresenceManager) UpdateDefaultPresence() {
	if err := pm.session.UpdateStatusComplex(pm.Data()); err != nil {
		pm.logger.Error("failed to update bot presence", zap.Error(err))
		return
	}
	pm.logger.Debug("presence updated", zap.String("activity", pm.activity), zap.String("status", pm.status))
}
