package repositories

import (
	"github.com/EcoTrackAI/ecotrackai-dashboard-sub000/models"
	"github.com/EcoTrackAI/ecotrackai-dashboard-sub000/repositories/base"
	"github.com/EcoTrackAI/ecotrackai-dashboard-sub000/repositories/interfaces"

	"gorm.io/gorm"
)

// RoomRepository implements RoomRepositoryInterface.
type RoomRepository struct {
	db *gorm.DB
}

// NewRoomRepository creates a new instance of RoomRepository.
func NewRoomRepository(db *gorm.DB) interfaces.RoomRepositoryInterface {
	return &RoomRepository{db: db}
}

// UpsertRoom inserts or updates the catalog row for a room. The upsert is
// idempotent: repeated calls with the same id leave exactly one row, with the
// latest metadata retained. The assign is a map so fields that went back to
// empty overwrite their stale values instead of being skipped.
func (rr *RoomRepository) UpsertRoom(tx *gorm.DB, room *models.Room) error {
	assign := map[string]interface{}{
		"name":  room.Name,
		"floor": room.Floor,
		"type":  room.Type,
	}
	err := tx.Where(models.Room{ID: room.ID}).Assign(assign).FirstOrCreate(room).Error
	return base.WrapDBError("upsert", "rooms", err)
}

// ListRooms retrieves all known rooms ordered by id.
func (rr *RoomRepository) ListRooms() ([]models.Room, error) {
	var rooms []models.Room
	if err := rr.db.Order("id asc").Find(&rooms).Error; err != nil {
		return nil, base.WrapDBError("list", "rooms", err)
	}
	return rooms, nil
}
