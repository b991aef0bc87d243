package interfaces

import (
	"github.com/EcoTrackAI/ecotrackai-dashboard-sub000/models"
)

// HistoryRepositoryInterface defines the contract for the historical projection
// over sensor and power readings.
type HistoryRepositoryInterface interface {
	// QuerySeries runs the raw or hourly projection for the given window.
	QuerySeries(q models.SeriesQuery) ([]models.SeriesRow, error)
}
