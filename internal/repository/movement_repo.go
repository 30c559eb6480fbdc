package repository

import (
	"context"

	"github.com/hsi-patrimonio/inventory-api/internal/database"
	"github.com/hsi-patrimonio/inventory-api/internal/models"
)

// movementRepo is the concrete implementation of MovementRepository
type movementRepo struct {
	db *database.DB
}

// NewMovementRepo creates a new movement repository
func NewMovementRepo(db *database.DB) MovementRepository {
	return &movementRepo{db: db}
}

// Create inserts one movement record
func (r *movementRepo) Create(ctx context.Context, movement *models.Movement) error {
	query := `
		INSERT INTO movements (id, asset_id, type, from_location_id, to_location, reason, moved_by, moved_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`
	_, err := r.db.ExecContext(ctx, query,
		movement.ID, movement.AssetID, movement.Type,
		nullString(movement.FromLocationID), movement.ToLocation,
		movement.Reason, movement.MovedBy, movement.MovedAt,
	)
	return err
}
