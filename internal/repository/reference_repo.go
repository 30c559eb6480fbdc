package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/hsi-patrimonio/inventory-api/internal/database"
	"github.com/hsi-patrimonio/inventory-api/internal/models"
)

// categoryRepo is the concrete implementation of CategoryRepository
type categoryRepo struct {
	db *database.DB
}

// NewCategoryRepo creates a new category repository
func NewCategoryRepo(db *database.DB) CategoryRepository {
	return &categoryRepo{db: db}
}

// Create inserts a new category
func (r *categoryRepo) Create(ctx context.Context, category *models.Category) error {
	query := `
		INSERT INTO categories (id, name, icon, color, description, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	category.CreatedAt = time.Now()
	_, err := r.db.ExecContext(ctx, query,
		category.ID, category.Name, category.Icon, category.Color,
		category.Description, category.CreatedAt,
	)
	return err
}

// GetByName retrieves a category by its natural key
func (r *categoryRepo) GetByName(ctx context.Context, name string) (*models.Category, error) {
	query := `SELECT id, name, icon, color, description, created_at FROM categories WHERE name = $1`

	var c models.Category
	err := r.db.QueryRowContext(ctx, query, name).Scan(
		&c.ID, &c.Name, &c.Icon, &c.Color, &c.Description, &c.CreatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// manufacturerRepo is the concrete implementation of ManufacturerRepository
type manufacturerRepo struct {
	db *database.DB
}

// NewManufacturerRepo creates a new manufacturer repository
func NewManufacturerRepo(db *database.DB) ManufacturerRepository {
	return &manufacturerRepo{db: db}
}

// Create inserts a new manufacturer
func (r *manufacturerRepo) Create(ctx context.Context, manufacturer *models.Manufacturer) error {
	query := `INSERT INTO manufacturers (id, name, created_at) VALUES ($1, $2, $3)`
	manufacturer.CreatedAt = time.Now()
	_, err := r.db.ExecContext(ctx, query,
		manufacturer.ID, manufacturer.Name, manufacturer.CreatedAt,
	)
	return err
}

// GetByName retrieves a manufacturer by its natural key
func (r *manufacturerRepo) GetByName(ctx context.Context, name string) (*models.Manufacturer, error) {
	query := `SELECT id, name, created_at FROM manufacturers WHERE name = $1`

	var m models.Manufacturer
	err := r.db.QueryRowContext(ctx, query, name).Scan(&m.ID, &m.Name, &m.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &m, nil
}

// locationRepo is the concrete implementation of LocationRepository
type locationRepo struct {
	db *database.DB
}

// NewLocationRepo creates a new location repository
func NewLocationRepo(db *database.DB) LocationRepository {
	return &locationRepo{db: db}
}

// Create inserts a new location
func (r *locationRepo) Create(ctx context.Context, location *models.Location) error {
	query := `
		INSERT INTO locations (id, name, building, floor, description, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	location.CreatedAt = time.Now()
	_, err := r.db.ExecContext(ctx, query,
		location.ID, location.Name, location.Building, location.Floor,
		location.Description, location.CreatedAt,
	)
	return err
}

// GetByName retrieves a location by its derived display name
func (r *locationRepo) GetByName(ctx context.Context, name string) (*models.Location, error) {
	query := `SELECT id, name, building, floor, description, created_at FROM locations WHERE name = $1`

	var l models.Location
	err := r.db.QueryRowContext(ctx, query, name).Scan(
		&l.ID, &l.Name, &l.Building, &l.Floor, &l.Description, &l.CreatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &l, nil
}
