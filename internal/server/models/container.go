package models

import (
	"time"

	"github.com/dmitrijs2005/logitrack/internal/api"
)

// ContainerStatus labels are part of the wire contract shared with the console.
type ContainerStatus = api.ContainerStatus

const (
	StatusPending   = api.StatusPending
	StatusInTransit = api.StatusInTransit
	StatusDocked    = api.StatusDocked
	StatusDelivered = api.StatusDelivered
	StatusDelayed   = api.StatusDelayed
)

var (
	ContainerStatuses    = api.ContainerStatuses
	ParseContainerStatus = api.ParseContainerStatus
)

type Container struct {
	ID              string          `json:"id"`
	ContainerNumber string          `json:"container_number"`
	TareWeight      string          `json:"tare_weight"`
	Type            string          `json:"type"`
	BookingNumber   string          `json:"booking_number"`
	Location        string          `json:"location"`
	Status          ContainerStatus `json:"status"`
	LastUpdatedBy   string          `json:"last_updated_by"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
}
