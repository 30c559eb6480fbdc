package models

import (
	"time"
)

// AssetStatus represents the lifecycle state of a tracked asset
type AssetStatus string

const (
	StatusEmUso        AssetStatus = "EM_USO"
	StatusEmEstoque    AssetStatus = "EM_ESTOQUE"
	StatusEmManutencao AssetStatus = "EM_MANUTENCAO"
	StatusBaixado      AssetStatus = "BAIXADO"
)

// ValidAssetStatuses defines the allowed asset statuses
var ValidAssetStatuses = map[AssetStatus]bool{
	StatusEmUso:        true,
	StatusEmEstoque:    true,
	StatusEmManutencao: true,
	StatusBaixado:      true,
}

// Asset represents a tracked physical asset (computer, monitor, peripheral)
type Asset struct {
	ID             string      `json:"id" db:"id"`
	AssetTag       string      `json:"asset_tag,omitempty" db:"asset_tag"`
	SerialNumber   string      `json:"serial_number,omitempty" db:"serial_number"`
	Name           string      `json:"name" db:"name"`
	Model          string      `json:"model,omitempty" db:"model"`
	Description    string      `json:"description,omitempty" db:"description"`
	Status         AssetStatus `json:"status" db:"status"`
	CategoryID     string      `json:"category_id,omitempty" db:"category_id"`
	LocationID     string      `json:"location_id,omitempty" db:"location_id"`
	ManufacturerID string      `json:"manufacturer_id,omitempty" db:"manufacturer_id"`
	CreatedByID    string      `json:"created_by_id,omitempty" db:"created_by_id"`
	Observations   string      `json:"observations,omitempty" db:"observations"`
	CreatedAt      time.Time   `json:"created_at" db:"created_at"`
	UpdatedAt      time.Time   `json:"updated_at" db:"updated_at"`
}
