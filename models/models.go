package models

import (
	"time"
)

// Database Models

// Room is the catalog row for a logical room. It is upserted during sync from
// snapshot metadata and never deleted by the service.
type Room struct {
	ID        string    `gorm:"primaryKey" json:"id"`
	Name      string    `json:"name"`
	Floor     string    `json:"floor"`
	Type      string    `json:"type"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// RoomSensorData is one append-only environmental reading for a room.
// Duplicate timestamps are possible when sync runs faster than upstream updates;
// the query layer de-duplicates them.
type RoomSensorData struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	RoomID      string    `gorm:"index" json:"roomId"`
	Room        *Room     `gorm:"foreignKey:RoomID" json:"-"`
	Temperature *float64  `json:"temperature"`
	Humidity    *float64  `json:"humidity"`
	Light       *float64  `json:"light"`
	Motion      bool      `json:"motion"`
	Timestamp   time.Time `gorm:"index" json:"timestamp"`
	CreatedAt   time.Time `json:"createdAt"`
}

// PzemData is one append-only reading from the PZEM power meter.
type PzemData struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	Current     float64   `json:"current"`
	Voltage     float64   `json:"voltage"`
	Power       float64   `json:"power"`
	Energy      float64   `json:"energy"`
	Frequency   float64   `json:"frequency"`
	PowerFactor float64   `json:"powerFactor"`
	Timestamp   time.Time `gorm:"index" json:"timestamp"`
	CreatedAt   time.Time `json:"createdAt"`
}

// RelayState is the mutable on/off record for one relay. The primary key is
// derived from room and relay type, so each logical relay owns exactly one row.
type RelayState struct {
	ID        string    `gorm:"primaryKey" json:"id"`
	RoomID    string    `gorm:"index" json:"roomId"`
	Type      string    `json:"type"`
	State     bool      `json:"state"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// RelayID derives the deterministic relay identifier for a room and relay type.
func RelayID(roomID, relayType string) string {
	return roomID + "_" + relayType
}
