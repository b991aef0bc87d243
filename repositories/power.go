package repositories

import (
	"time"

	"github.com/EcoTrackAI/ecotrackai-dashboard-sub000/models"
	"github.com/EcoTrackAI/ecotrackai-dashboard-sub000/repositories/base"
	"github.com/EcoTrackAI/ecotrackai-dashboard-sub000/repositories/interfaces"

	"gorm.io/gorm"
)

// PowerRepository implements PowerRepositoryInterface.
type PowerRepository struct {
	db *gorm.DB
}

// NewPowerRepository creates a new instance of PowerRepository.
func NewPowerRepository(db *gorm.DB) interfaces.PowerRepositoryInterface {
	return &PowerRepository{db: db}
}

// Insert appends one power reading.
func (pr *PowerRepository) Insert(tx *gorm.DB, reading *models.PzemData) error {
	return base.WrapDBError("insert", "pzem_data", tx.Create(reading).Error)
}

// ListRecent retrieves readings within the time window, ascending by timestamp.
func (pr *PowerRepository) ListRecent(start, end time.Time, limit int) ([]models.PzemData, error) {
	var readings []models.PzemData
	query := pr.db.Where("timestamp >= ? AND timestamp <= ?", start, end).Order("timestamp asc")
	if limit > 0 {
		query = query.Limit(limit)
	}
	if err := query.Find(&readings).Error; err != nil {
		return nil, base.WrapDBError("list", "pzem_data", err)
	}
	return readings, nil
}

// DeleteOlderThan removes readings older than the cutoff and reports the count.
func (pr *PowerRepository) DeleteOlderThan(cutoff time.Time) (int64, error) {
	result := pr.db.Where("timestamp < ?", cutoff).Delete(&models.PzemData{})
	if result.Error != nil {
		return 0, base.WrapDBError("delete", "pzem_data", result.Error)
	}
	return result.RowsAffected, nil
}
