package models

import (
	"time"
)

// MovementType represents the kind of asset state transition
type MovementType string

const (
	MovementCheckIn     MovementType = "CHECK_IN"
	MovementCheckOut    MovementType = "CHECK_OUT"
	MovementTransfer    MovementType = "TRANSFER"
	MovementAssignment  MovementType = "ASSIGNMENT"
	MovementMaintenance MovementType = "MAINTENANCE"
	MovementReturn      MovementType = "RETURN"
)

// Movement records one asset state transition
type Movement struct {
	ID             string       `json:"id" db:"id"`
	AssetID        string       `json:"asset_id" db:"asset_id"`
	Type           MovementType `json:"type" db:"type"`
	FromLocationID string       `json:"from_location_id,omitempty" db:"from_location_id"`
	ToLocation     string       `json:"to_location" db:"to_location"`
	Reason         string       `json:"reason,omitempty" db:"reason"`
	MovedBy        string       `json:"moved_by" db:"moved_by"`
	MovedAt        time.Time    `json:"moved_at" db:"moved_at"`
}
