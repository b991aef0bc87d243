package repositories

import (
	"strings"

	"github.com/EcoTrackAI/ecotrackai-dashboard-sub000/models"
	"github.com/EcoTrackAI/ecotrackai-dashboard-sub000/repositories/base"
	"github.com/EcoTrackAI/ecotrackai-dashboard-sub000/repositories/interfaces"

	"gorm.io/gorm"
)

// PowerRoomID is the synthetic room id under which power meter readings appear
// in the historical projection.
const PowerRoomID = "pzem"

// PowerRoomName is the display name attached to power meter projection rows.
const PowerRoomName = "Power Meter"

// HistoryRepository implements HistoryRepositoryInterface.
type HistoryRepository struct {
	db *gorm.DB
}

// NewHistoryRepository creates a new instance of HistoryRepository.
func NewHistoryRepository(db *gorm.DB) interfaces.HistoryRepositoryInterface {
	return &HistoryRepository{db: db}
}

// QuerySeries runs the raw or hourly projection for the given window.
// An empty or non-overlapping window yields an empty slice, not an error.
func (hr *HistoryRepository) QuerySeries(q models.SeriesQuery) ([]models.SeriesRow, error) {
	sql, args := BuildSeriesQuery(q)

	rows := []models.SeriesRow{}
	if err := hr.db.Raw(sql, args...).Scan(&rows).Error; err != nil {
		return nil, base.WrapDBError("query", "series", err)
	}
	return rows, nil
}

// BuildSeriesQuery builds the parameterized projection SQL for a series query.
// It is a pure function so the generated statement can be tested without a
// database connection.
//
// Both time-series tables are unioned into one shape: sensor rows carry the
// environmental categories with power/energy zeroed, power meter rows carry
// power/energy under the synthetic PowerRoomID with the rest zeroed. Raw mode
// groups by the original timestamp and takes MAX per category, which collapses
// accidental duplicates at the same instant. Hourly mode truncates to the
// calendar hour and averages.
func BuildSeriesQuery(q models.SeriesQuery) (string, []interface{}) {
	var sb strings.Builder
	args := []interface{}{}

	bucket := "readings.ts"
	agg := "MAX"
	if q.Mode == models.AggregationHourly {
		bucket = "date_trunc('hour', readings.ts)"
		agg = "AVG"
	}

	sb.WriteString("SELECT " + bucket + " AS timestamp, readings.room_id AS room_id, readings.room_name AS room_name, ")
	sb.WriteString(agg + "(readings.temperature) AS temperature, ")
	sb.WriteString(agg + "(readings.humidity) AS humidity, ")
	sb.WriteString(agg + "(readings.light) AS light, ")
	sb.WriteString(agg + "(readings.motion) AS motion, ")
	sb.WriteString(agg + "(readings.power) AS power, ")
	sb.WriteString(agg + "(readings.energy) AS energy ")
	sb.WriteString("FROM ( ")

	sb.WriteString("SELECT d.timestamp AS ts, d.room_id AS room_id, COALESCE(r.name, d.room_id) AS room_name, ")
	sb.WriteString("COALESCE(d.temperature, 0) AS temperature, COALESCE(d.humidity, 0) AS humidity, ")
	sb.WriteString("COALESCE(d.light, 0) AS light, ")
	sb.WriteString("CASE WHEN d.motion THEN 1.0 ELSE 0.0 END AS motion, ")
	sb.WriteString("0 AS power, 0 AS energy ")
	sb.WriteString("FROM room_sensor_data d LEFT JOIN rooms r ON r.id = d.room_id ")
	sb.WriteString("WHERE d.timestamp >= ? AND d.timestamp <= ? ")
	args = append(args, q.Start, q.End)

	sb.WriteString("UNION ALL ")

	sb.WriteString("SELECT p.timestamp AS ts, ? AS room_id, ? AS room_name, ")
	sb.WriteString("0 AS temperature, 0 AS humidity, 0 AS light, 0 AS motion, ")
	sb.WriteString("p.power AS power, p.energy AS energy ")
	sb.WriteString("FROM pzem_data p ")
	sb.WriteString("WHERE p.timestamp >= ? AND p.timestamp <= ? ")
	args = append(args, PowerRoomID, PowerRoomName, q.Start, q.End)

	sb.WriteString(") readings ")

	if len(q.RoomIDs) > 0 {
		sb.WriteString("WHERE readings.room_id IN ? ")
		args = append(args, q.RoomIDs)
	}

	sb.WriteString("GROUP BY " + bucket + ", readings.room_id, readings.room_name ")
	sb.WriteString("ORDER BY timestamp asc, room_id asc")

	return sb.String(), args
}
