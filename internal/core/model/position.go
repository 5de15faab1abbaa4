package model

import (
	"time"

	"eskytrack/internal/core/util"
)

// ExtendedInfo carries the auxiliary attributes reported alongside a fix.
// Values are stored as reported; nothing here is interpreted.
type ExtendedInfo struct {
	Satellites  int `json:"satellites"`
	Voltage     int `json:"voltage"`
	MessageType int `json:"messageType"`
}

type Position struct {
	ID           string       `json:"id"`
	DeviceID     string       `json:"deviceId"`
	Protocol     string       `json:"protocol"`
	Time         *time.Time   `json:"time,omitempty"` // nil when the device timestamp did not parse
	Latitude     float64      `json:"latitude"`
	Longitude    float64      `json:"longitude"`
	Altitude     float64      `json:"altitude"`
	Speed        float64      `json:"speed"`  // knots
	Course       float64      `json:"course"` // degrees
	Valid        bool         `json:"valid"`  // GPS fix validity
	ExtendedInfo ExtendedInfo `json:"extendedInfo"`
}

func NewPosition(deviceID string, lat, lon float64) *Position {
	return &Position{
		ID:        util.GenerateID(),
		DeviceID:  deviceID,
		Latitude:  lat,
		Longitude: lon,
		Protocol:  "unknown",
	}
}

// FixTime returns the device time, or the zero time when it is absent.
func (p *Position) FixTime() time.Time {
	if p.Time == nil {
		return time.Time{}
	}
	return *p.Time
}
