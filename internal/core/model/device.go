package model

import (
	"time"

	"eskytrack/internal/core/util"
)

const (
	DeviceStatusInactive = "inactive"
	DeviceStatusActive   = "active"
)

type Device struct {
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	UniqueID   string    `json:"uniqueId"` // IMEI
	Status     string    `json:"status"`
	LastUpdate time.Time `json:"lastUpdate"`
	PositionID string    `json:"positionId,omitempty"`
	CreatedAt  time.Time `json:"createdAt"`
	Protocol   string    `json:"protocol"`
}

func NewDevice(name, uniqueID string) *Device {
	now := time.Now()
	return &Device{
		ID:         util.GenerateID(),
		Name:       name,
		UniqueID:   uniqueID,
		Status:     DeviceStatusInactive,
		LastUpdate: now,
		CreatedAt:  now,
		Protocol:   "esky620",
	}
}

// MarkActive records that a position was just stored for the device.
func (d *Device) MarkActive(positionID string, at time.Time) {
	d.PositionID = positionID
	d.LastUpdate = at
	d.Status = DeviceStatusActive
}
