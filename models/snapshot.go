package models

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Realtime Store Message Structures

// FlexTime unmarshals timestamps as either RFC3339 strings or Unix milliseconds.
// Firmware on the room nodes reports RFC3339, the power meter reports epoch millis.
type FlexTime struct {
	time.Time
}

func (t *FlexTime) UnmarshalJSON(data []byte) error {
	raw := strings.TrimSpace(string(data))
	if raw == "null" || raw == `""` {
		return nil
	}

	if strings.HasPrefix(raw, `"`) {
		value := strings.Trim(raw, `"`)
		for _, layout := range []string{time.RFC3339Nano, time.RFC3339} {
			if parsed, err := time.Parse(layout, value); err == nil {
				t.Time = parsed
				return nil
			}
		}
		return fmt.Errorf("unparseable timestamp %q", value)
	}

	millis, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return fmt.Errorf("unparseable timestamp %q: %w", raw, err)
	}
	t.Time = time.UnixMilli(millis).UTC()
	return nil
}

func (t FlexTime) MarshalJSON() ([]byte, error) {
	if t.Time.IsZero() {
		return []byte(`null`), nil
	}
	return []byte(`"` + t.Time.Format(time.RFC3339Nano) + `"`), nil
}

// RoomSnapshot is the latest known state of one room node, as stored in the
// realtime store and published on the room's state topic.
type RoomSnapshot struct {
	Name        string   `json:"name"`
	Floor       string   `json:"floor"`
	Type        string   `json:"type"`
	Temperature *float64 `json:"temperature"`
	Humidity    *float64 `json:"humidity"`
	Light       *float64 `json:"light"`
	Motion      bool     `json:"motion"`
	Timestamp   FlexTime `json:"timestamp"`
}

// Validate rejects snapshots that cannot become a reading row.
func (s *RoomSnapshot) Validate() error {
	if s.Timestamp.IsZero() {
		return fmt.Errorf("room snapshot has no valid timestamp")
	}
	return nil
}

// PowerSnapshot is the latest known state of the PZEM power meter.
type PowerSnapshot struct {
	Current     float64  `json:"current"`
	Voltage     float64  `json:"voltage"`
	Power       float64  `json:"power"`
	Energy      float64  `json:"energy"`
	Frequency   float64  `json:"frequency"`
	PowerFactor float64  `json:"powerFactor"`
	Timestamp   FlexTime `json:"timestamp"`
}

// Validate rejects snapshots that cannot become a reading row.
func (s *PowerSnapshot) Validate() error {
	if s.Timestamp.IsZero() {
		return fmt.Errorf("power snapshot has no valid timestamp")
	}
	return nil
}

// RelayCommand is the actuation message written to the realtime store and
// published on the relay's command topic. Hardware out of scope consumes it.
type RelayCommand struct {
	RelayID   string    `json:"relayId"`
	RoomID    string    `json:"roomId"`
	Type      string    `json:"type"`
	State     bool      `json:"state"`
	Timestamp time.Time `json:"timestamp"`
}
