package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/hsi-patrimonio/inventory-api/internal/database"
	"github.com/hsi-patrimonio/inventory-api/internal/models"
)

// assetRepo is the concrete implementation of AssetRepository
type assetRepo struct {
	db *database.DB
}

// NewAssetRepo creates a new asset repository
func NewAssetRepo(db *database.DB) AssetRepository {
	return &assetRepo{db: db}
}

const assetColumns = `id, asset_tag, serial_number, name, model, description, status,
	category_id, location_id, manufacturer_id, created_by_id, observations, created_at, updated_at`

// Create inserts a new asset
func (r *assetRepo) Create(ctx context.Context, asset *models.Asset) error {
	query := `
		INSERT INTO assets (id, asset_tag, serial_number, name, model, description, status,
			category_id, location_id, manufacturer_id, created_by_id, observations, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $13)
	`
	now := time.Now()
	asset.CreatedAt = now
	asset.UpdatedAt = now
	_, err := r.db.ExecContext(ctx, query,
		asset.ID, nullString(asset.AssetTag), nullString(asset.SerialNumber),
		asset.Name, asset.Model, asset.Description, asset.Status,
		nullString(asset.CategoryID), nullString(asset.LocationID),
		nullString(asset.ManufacturerID), nullString(asset.CreatedByID),
		asset.Observations, now,
	)
	return err
}

// Update overwrites the reconciled fields of an existing asset
func (r *assetRepo) Update(ctx context.Context, asset *models.Asset) error {
	query := `
		UPDATE assets SET
			name = $1, model = $2, description = $3, status = $4,
			category_id = $5, location_id = $6, manufacturer_id = $7,
			serial_number = $8, observations = $9, updated_at = $10
		WHERE id = $11
	`
	asset.UpdatedAt = time.Now()
	_, err := r.db.ExecContext(ctx, query,
		asset.Name, asset.Model, asset.Description, asset.Status,
		nullString(asset.CategoryID), nullString(asset.LocationID),
		nullString(asset.ManufacturerID), nullString(asset.SerialNumber),
		asset.Observations, asset.UpdatedAt, asset.ID,
	)
	return err
}

// GetByID retrieves an asset by primary key
func (r *assetRepo) GetByID(ctx context.Context, id string) (*models.Asset, error) {
	query := `SELECT ` + assetColumns + ` FROM assets WHERE id = $1`
	return r.scanOne(r.db.QueryRowContext(ctx, query, id))
}

// GetByTag retrieves an asset by its unique tag
func (r *assetRepo) GetByTag(ctx context.Context, tag string) (*models.Asset, error) {
	query := `SELECT ` + assetColumns + ` FROM assets WHERE asset_tag = $1`
	return r.scanOne(r.db.QueryRowContext(ctx, query, tag))
}

// GetByTagOrSerial retrieves an asset matching either natural key.
// Empty arguments are excluded from the match.
func (r *assetRepo) GetByTagOrSerial(ctx context.Context, tag, serial string) (*models.Asset, error) {
	if tag == "" && serial == "" {
		return nil, nil
	}
	query := `
		SELECT ` + assetColumns + ` FROM assets
		WHERE ($1 <> '' AND asset_tag = $1) OR ($2 <> '' AND serial_number = $2)
		LIMIT 1
	`
	return r.scanOne(r.db.QueryRowContext(ctx, query, tag, serial))
}

func (r *assetRepo) scanOne(row *sql.Row) (*models.Asset, error) {
	var asset models.Asset
	var tag, serial, categoryID, locationID, manufacturerID, createdByID sql.NullString

	err := row.Scan(
		&asset.ID, &tag, &serial, &asset.Name, &asset.Model, &asset.Description,
		&asset.Status, &categoryID, &locationID, &manufacturerID, &createdByID,
		&asset.Observations, &asset.CreatedAt, &asset.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	asset.AssetTag = tag.String
	asset.SerialNumber = serial.String
	asset.CategoryID = categoryID.String
	asset.LocationID = locationID.String
	asset.ManufacturerID = manufacturerID.String
	asset.CreatedByID = createdByID.String
	return &asset, nil
}

// helper to convert empty string to NULL
func nullString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}
