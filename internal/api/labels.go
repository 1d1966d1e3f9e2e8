package api

import (
	"fmt"
	"strings"

	"github.com/dmitrijs2005/logitrack/internal/common"
)

// ContainerStatus is the lifecycle label shown on the dashboard.
type ContainerStatus string

const (
	StatusPending   ContainerStatus = "Pending"
	StatusInTransit ContainerStatus = "In Transit"
	StatusDocked    ContainerStatus = "Docked"
	StatusDelivered ContainerStatus = "Delivered"
	StatusDelayed   ContainerStatus = "Delayed"
)

var ContainerStatuses = []ContainerStatus{StatusPending, StatusInTransit, StatusDocked, StatusDelivered, StatusDelayed}

// ParseContainerStatus accepts a status label, case-insensitively.
func ParseContainerStatus(s string) (ContainerStatus, error) {
	for _, st := range ContainerStatuses {
		if strings.EqualFold(string(st), strings.TrimSpace(s)) {
			return st, nil
		}
	}
	return "", fmt.Errorf("%w: unknown status %q", common.ErrorValidation, s)
}

// SettingKind selects one of the drop-down value lists managed on the admin page.
type SettingKind string

const (
	SettingLocations SettingKind = "locations"
	SettingTypes     SettingKind = "types"
)

func ParseSettingKind(s string) (SettingKind, error) {
	switch SettingKind(strings.ToLower(strings.TrimSpace(s))) {
	case SettingLocations:
		return SettingLocations, nil
	case SettingTypes:
		return SettingTypes, nil
	}
	return "", fmt.Errorf("%w: unknown settings kind %q", common.ErrorValidation, s)
}
