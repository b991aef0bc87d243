package repositories

import (
	"time"

	"github.com/EcoTrackAI/ecotrackai-dashboard-sub000/models"
	"github.com/EcoTrackAI/ecotrackai-dashboard-sub000/repositories/base"
	"github.com/EcoTrackAI/ecotrackai-dashboard-sub000/repositories/interfaces"

	"gorm.io/gorm"
)

// SensorRepository implements SensorRepositoryInterface.
type SensorRepository struct {
	db *gorm.DB
}

// NewSensorRepository creates a new instance of SensorRepository.
func NewSensorRepository(db *gorm.DB) interfaces.SensorRepositoryInterface {
	return &SensorRepository{db: db}
}

// BatchInsert appends all readings of one sync tick in a single statement.
func (sr *SensorRepository) BatchInsert(tx *gorm.DB, readings []models.RoomSensorData) error {
	if len(readings) == 0 {
		return nil
	}
	return base.WrapDBError("batch insert", "room_sensor_data", tx.Create(&readings).Error)
}

// ListRecent retrieves readings within the time window, ascending by timestamp.
func (sr *SensorRepository) ListRecent(start, end time.Time, limit int) ([]models.RoomSensorData, error) {
	var readings []models.RoomSensorData
	query := sr.db.Where("timestamp >= ? AND timestamp <= ?", start, end).Order("timestamp asc")
	if limit > 0 {
		query = query.Limit(limit)
	}
	if err := query.Find(&readings).Error; err != nil {
		return nil, base.WrapDBError("list", "room_sensor_data", err)
	}
	return readings, nil
}

// DeleteOlderThan removes readings older than the cutoff and reports the count.
func (sr *SensorRepository) DeleteOlderThan(cutoff time.Time) (int64, error) {
	result := sr.db.Where("timestamp < ?", cutoff).Delete(&models.RoomSensorData{})
	if result.Error != nil {
		return 0, base.WrapDBError("delete", "room_sensor_data", result.Error)
	}
	return result.RowsAffected, nil
}
