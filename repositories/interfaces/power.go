package interfaces

import (
	"time"

	"github.com/EcoTrackAI/ecotrackai-dashboard-sub000/models"

	"gorm.io/gorm"
)

// PowerRepositoryInterface defines the contract for power meter time-series access.
type PowerRepositoryInterface interface {
	// Insert appends one power reading within a transaction.
	Insert(tx *gorm.DB, reading *models.PzemData) error

	// ListRecent retrieves readings within the time window, ascending by timestamp.
	ListRecent(start, end time.Time, limit int) ([]models.PzemData, error)

	// DeleteOlderThan removes readings older than the cutoff and reports the count.
	DeleteOlderThan(cutoff time.Time) (int64, error)
}
