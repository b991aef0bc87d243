package models

import "time"

// --- Request DTOs ---

// RelayControlRequest is the body of the relay control endpoint. State is a
// pointer so a missing or mistyped value fails validation instead of
// defaulting to off.
type RelayControlRequest struct {
	RelayID string `json:"relayId"`
	RoomID  string `json:"roomId"`
	Type    string `json:"type"`
	State   *bool  `json:"state"`
}

// --- Service results ---

// SyncResult summarizes one sync tick: which logical sources made it into the
// relational store and which were skipped.
type SyncResult struct {
	Synced  []string `json:"synced"`
	Skipped []string `json:"skipped,omitempty"`
	Count   int      `json:"count"`
}

// CleanupResult reports rows deleted per table by a retention pass.
type CleanupResult struct {
	RoomSensorData int64 `json:"room_sensor_data"`
	PzemData       int64 `json:"pzem_data"`
}

// --- Query layer ---

// AggregationMode selects between one row per original timestamp and
// per-calendar-hour averages.
type AggregationMode string

const (
	AggregationRaw    AggregationMode = "raw"
	AggregationHourly AggregationMode = "hourly"
)

// SeriesQuery describes one historical-data projection.
type SeriesQuery struct {
	Start   time.Time
	End     time.Time
	RoomIDs []string
	Mode    AggregationMode
}

// SeriesRow is one output row of the query layer. Categories a source does not
// report are zero-filled in raw mode and averaged in hourly mode. Motion is
// carried numerically so it can participate in both aggregations.
type SeriesRow struct {
	Timestamp   time.Time `json:"timestamp"`
	RoomID      string    `json:"roomId"`
	RoomName    string    `json:"roomName"`
	Temperature float64   `json:"temperature"`
	Humidity    float64   `json:"humidity"`
	Light       float64   `json:"light"`
	Motion      float64   `json:"motion"`
	Power       float64   `json:"power"`
	Energy      float64   `json:"energy"`
}
