package repositories

import (
	"time"

	"github.com/EcoTrackAI/ecotrackai-dashboard-sub000/models"
	"github.com/EcoTrackAI/ecotrackai-dashboard-sub000/repositories/base"
	"github.com/EcoTrackAI/ecotrackai-dashboard-sub000/repositories/interfaces"

	"gorm.io/gorm"
)

// RelayRepository implements RelayRepositoryInterface.
type RelayRepository struct {
	db *gorm.DB
}

// NewRelayRepository creates a new instance of RelayRepository.
func NewRelayRepository(db *gorm.DB) interfaces.RelayRepositoryInterface {
	return &RelayRepository{db: db}
}

// UpsertState overwrites the relay's row and returns the fresh record. Each
// control action lands on the same primary key, so the table never grows past
// one row per logical relay. The assign is a map because a struct assign
// skips zero values, which would make turning a relay off a no-op.
func (rr *RelayRepository) UpsertState(state *models.RelayState) (*models.RelayState, error) {
	assign := map[string]interface{}{
		"room_id":    state.RoomID,
		"type":       state.Type,
		"state":      state.State,
		"updated_at": time.Now(),
	}
	err := rr.db.Where(models.RelayState{ID: state.ID}).Assign(assign).FirstOrCreate(state).Error
	if err != nil {
		return nil, base.WrapDBError("upsert", "relay_states", err)
	}

	var fresh models.RelayState
	if err := rr.db.Where("id = ?", state.ID).First(&fresh).Error; err != nil {
		return nil, base.HandleDBError("get", "relay_states", state.ID, err)
	}
	return &fresh, nil
}

// GetState retrieves one relay row by id.
func (rr *RelayRepository) GetState(relayID string) (*models.RelayState, error) {
	var state models.RelayState
	if err := rr.db.Where("id = ?", relayID).First(&state).Error; err != nil {
		return nil, base.HandleDBError("get", "relay_states", relayID, err)
	}
	return &state, nil
}

// ListStates retrieves relay rows, optionally filtered by relay id or room id.
func (rr *RelayRepository) ListStates(relayID, roomID string) ([]models.RelayState, error) {
	var states []models.RelayState
	query := rr.db.Order("id asc")
	if relayID != "" {
		query = query.Where("id = ?", relayID)
	} else if roomID != "" {
		query = query.Where("room_id = ?", roomID)
	}
	if err := query.Find(&states).Error; err != nil {
		return nil, base.WrapDBError("list", "relay_states", err)
	}
	return states, nil
}
