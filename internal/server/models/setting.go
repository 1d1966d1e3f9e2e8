package models

import (
	"time"

	"github.com/dmitrijs2005/logitrack/internal/api"
)

type SettingKind = api.SettingKind

const (
	SettingLocations = api.SettingLocations
	SettingTypes     = api.SettingTypes
)

var ParseSettingKind = api.ParseSettingKind

// Setting is a named drop-down value (a location or a container type).
type Setting struct {
	ID        string      `json:"id"`
	Kind      SettingKind `json:"kind"`
	Name      string      `json:"name"`
	CreatedAt time.Time   `json:"created_at"`
}
