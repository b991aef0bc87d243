package interfaces

import (
	"time"

	"github.com/EcoTrackAI/ecotrackai-dashboard-sub000/models"

	"gorm.io/gorm"
)

// SensorRepositoryInterface defines the contract for room sensor time-series access.
type SensorRepositoryInterface interface {
	// BatchInsert appends all readings of one sync tick in a single statement.
	BatchInsert(tx *gorm.DB, readings []models.RoomSensorData) error

	// ListRecent retrieves readings within the time window, ascending by timestamp.
	ListRecent(start, end time.Time, limit int) ([]models.RoomSensorData, error)

	// DeleteOlderThan removes readings older than the cutoff and reports the count.
	DeleteOlderThan(cutoff time.Time) (int64, error)
}
