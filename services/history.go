package services

import (
	"log/slog"
	"time"

	"github.com/EcoTrackAI/ecotrackai-dashboard-sub000/database"
	"github.com/EcoTrackAI/ecotrackai-dashboard-sub000/models"
	"github.com/EcoTrackAI/ecotrackai-dashboard-sub000/repositories/base"
)

// HistoryService serves the read side of the dashboard: room catalog, raw
// time-series lists, and the aggregated historical projection.
type HistoryService struct {
	db     *database.Database
	logger *slog.Logger
}

// NewHistoryService creates a new HistoryService.
func NewHistoryService(db *database.Database, logger *slog.Logger) *HistoryService {
	return &HistoryService{
		db:     db,
		logger: logger.With("component", "history"),
	}
}

// ListRooms returns the room catalog.
func (hs *HistoryService) ListRooms() ([]models.Room, error) {
	return hs.db.RoomRepo.ListRooms()
}

// ListPowerData returns power meter readings within the window.
func (hs *HistoryService) ListPowerData(start, end time.Time, limit int) ([]models.PzemData, error) {
	if end.Before(start) {
		return nil, base.NewValidationError("end", "end must not be before start")
	}
	return hs.db.PowerRepo.ListRecent(start, end, limit)
}

// ListSensorData returns room sensor readings within the window.
func (hs *HistoryService) ListSensorData(start, end time.Time, limit int) ([]models.RoomSensorData, error) {
	if end.Before(start) {
		return nil, base.NewValidationError("end", "end must not be before start")
	}
	return hs.db.SensorRepo.ListRecent(start, end, limit)
}

// QuerySeries runs the raw or hourly historical projection. Start and end are
// required with start <= end; mode defaults to raw. An empty window yields an
// empty list.
func (hs *HistoryService) QuerySeries(q models.SeriesQuery) ([]models.SeriesRow, error) {
	if q.Start.IsZero() || q.End.IsZero() {
		return nil, base.NewValidationError("start/end", "start and end are required")
	}
	if q.End.Before(q.Start) {
		return nil, base.NewValidationError("end", "end must not be before start")
	}
	switch q.Mode {
	case "":
		q.Mode = models.AggregationRaw
	case models.AggregationRaw, models.AggregationHourly:
	default:
		return nil, base.NewValidationError("mode", "mode must be raw or hourly")
	}

	return hs.db.HistoryRepo.QuerySeries(q)
}
