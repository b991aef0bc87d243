package services

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/EcoTrackAI/ecotrackai-dashboard-sub000/database"
	"github.com/EcoTrackAI/ecotrackai-dashboard-sub000/models"
)

// CommandStore writes relay commands into the realtime store. The Redis
// client satisfies this.
type CommandStore interface {
	SaveRelayCommand(cmd *models.RelayCommand) error
}

// CommandPublisher pushes relay commands onto the device transport. The MQTT
// client satisfies this.
type CommandPublisher interface {
	PublishRelayCommand(cmd *models.RelayCommand) error
}

// RelayService translates on/off intents into a live command plus a durable
// state record. The two writes are deliberately not transactional: if the
// durable write fails after the live command went out, the device is correct
// and the history lags until the next control action.
type RelayService struct {
	db        *database.Database
	store     CommandStore
	publisher CommandPublisher
	logger    *slog.Logger
}

// NewRelayService creates a new RelayService.
func NewRelayService(db *database.Database, store CommandStore, publisher CommandPublisher, logger *slog.Logger) *RelayService {
	return &RelayService{
		db:        db,
		store:     store,
		publisher: publisher,
		logger:    logger.With("component", "relay"),
	}
}

// Control applies the desired relay state. Step 1 writes the actuation signal
// (realtime store + device transport); step 2 upserts the relational record
// and returns the fresh row for confirmation.
func (rs *RelayService) Control(req *models.RelayControlRequest) (*models.RelayState, error) {
	relayID := req.RelayID
	if relayID == "" {
		relayID = models.RelayID(req.RoomID, req.Type)
	}

	cmd := &models.RelayCommand{
		RelayID:   relayID,
		RoomID:    req.RoomID,
		Type:      req.Type,
		State:     *req.State,
		Timestamp: time.Now(),
	}

	if err := rs.store.SaveRelayCommand(cmd); err != nil {
		return nil, fmt.Errorf("failed to write relay command: %w", err)
	}

	// The transport publish is best effort: the realtime store already holds
	// the desired state for the device to pick up.
	if rs.publisher != nil {
		if err := rs.publisher.PublishRelayCommand(cmd); err != nil {
			rs.logger.Warn("Relay command publish failed", "relayId", relayID, slog.Any("error", err))
		}
	}

	state := &models.RelayState{
		ID:     relayID,
		RoomID: req.RoomID,
		Type:   req.Type,
		State:  cmd.State,
	}
	fresh, err := rs.db.RelayRepo.UpsertState(state)
	if err != nil {
		// Accepted drift window: the live command is out but the record lags.
		rs.logger.Error("Relay state record failed after live command", "relayId", relayID, slog.Any("error", err))
		return nil, err
	}

	rs.logger.Info("Relay state updated", "relayId", relayID, "state", fresh.State)
	return fresh, nil
}

// States lists relay rows, optionally filtered by relay id or room id.
func (rs *RelayService) States(relayID, roomID string) ([]models.RelayState, error) {
	return rs.db.RelayRepo.ListStates(relayID, roomID)
}
