package services

import (
	"log/slog"
	"time"

	"github.com/EcoTrackAI/ecotrackai-dashboard-sub000/database"
	"github.com/EcoTrackAI/ecotrackai-dashboard-sub000/models"
)

// CleanupService deletes time-series rows older than the retention window.
// Calling it twice in a row deletes nothing the second time.
type CleanupService struct {
	db          *database.Database
	defaultDays int
	logger      *slog.Logger
}

// NewCleanupService creates a new CleanupService.
func NewCleanupService(db *database.Database, defaultDays int, logger *slog.Logger) *CleanupService {
	return &CleanupService{
		db:          db,
		defaultDays: defaultDays,
		logger:      logger.With("component", "cleanup"),
	}
}

// DefaultDays returns the configured retention window.
func (cs *CleanupService) DefaultDays() int {
	return cs.defaultDays
}

// Run deletes rows older than now - days from both time-series tables and
// reports the per-table counts. A non-positive days falls back to the
// configured default.
func (cs *CleanupService) Run(days int) (*models.CleanupResult, error) {
	if days <= 0 {
		days = cs.defaultDays
	}
	cutoff := time.Now().AddDate(0, 0, -days)

	sensorDeleted, err := cs.db.SensorRepo.DeleteOlderThan(cutoff)
	if err != nil {
		return nil, err
	}

	powerDeleted, err := cs.db.PowerRepo.DeleteOlderThan(cutoff)
	if err != nil {
		return nil, err
	}

	result := &models.CleanupResult{
		RoomSensorData: sensorDeleted,
		PzemData:       powerDeleted,
	}
	cs.logger.Info("Retention cleanup finished", "days", days,
		"room_sensor_data", sensorDeleted, "pzem_data", powerDeleted)
	return result, nil
}
