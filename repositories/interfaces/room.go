package interfaces

import (
	"github.com/EcoTrackAI/ecotrackai-dashboard-sub000/models"

	"gorm.io/gorm"
)

// RoomRepositoryInterface defines the contract for room catalog data access.
type RoomRepositoryInterface interface {
	// UpsertRoom inserts or updates the catalog row for a room within a transaction.
	UpsertRoom(tx *gorm.DB, room *models.Room) error

	// ListRooms retrieves all known rooms ordered by id.
	ListRooms() ([]models.Room, error)
}
