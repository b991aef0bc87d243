package interfaces

import (
	"github.com/EcoTrackAI/ecotrackai-dashboard-sub000/models"
)

// RelayRepositoryInterface defines the contract for relay state data access.
type RelayRepositoryInterface interface {
	// UpsertState overwrites the relay's row and returns the fresh record.
	UpsertState(state *models.RelayState) (*models.RelayState, error)

	// GetState retrieves one relay row by id.
	GetState(relayID string) (*models.RelayState, error)

	// ListStates retrieves relay rows, optionally filtered by relay id or room id.
	ListStates(relayID, roomID string) ([]models.RelayState, error)
}
