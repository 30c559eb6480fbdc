package repository

import (
	"context"

	"github.com/hsi-patrimonio/inventory-api/internal/database"
	"github.com/hsi-patrimonio/inventory-api/internal/models"
)

// AssetRepository defines the store contract for assets. Natural-key
// lookups return (nil, nil) when no row matches.
type AssetRepository interface {
	Create(ctx context.Context, asset *models.Asset) error
	Update(ctx context.Context, asset *models.Asset) error
	GetByID(ctx context.Context, id string) (*models.Asset, error)
	GetByTag(ctx context.Context, tag string) (*models.Asset, error)
	GetByTagOrSerial(ctx context.Context, tag, serial string) (*models.Asset, error)
}

// CategoryRepository defines the store contract for categories
type CategoryRepository interface {
	Create(ctx context.Context, category *models.Category) error
	GetByName(ctx context.Context, name string) (*models.Category, error)
}

// ManufacturerRepository defines the store contract for manufacturers
type ManufacturerRepository interface {
	Create(ctx context.Context, manufacturer *models.Manufacturer) error
	GetByName(ctx context.Context, name string) (*models.Manufacturer, error)
}

// LocationRepository defines the store contract for locations
type LocationRepository interface {
	Create(ctx context.Context, location *models.Location) error
	GetByName(ctx context.Context, name string) (*models.Location, error)
}

// MovementRepository defines the store contract for movement history
type MovementRepository interface {
	Create(ctx context.Context, movement *models.Movement) error
}

// UserRepository resolves the invoking user for owner attribution
type UserRepository interface {
	GetByID(ctx context.Context, id string) (*models.User, error)
}

// ImportLogRepository defines the store contract for import logs
type ImportLogRepository interface {
	Create(ctx context.Context, log *models.ImportLog) error
	GetByID(ctx context.Context, id string) (*models.ImportLog, error)
	SetProcessing(ctx context.Context, id string) error
	SetTotalRows(ctx context.Context, id string, totalRows int) error
	UpdateProgress(ctx context.Context, id string, progress int) error
	Finalize(ctx context.Context, log *models.ImportLog) error
	AddErrors(ctx context.Context, logID string, errors []models.ImportError) error
	GetErrors(ctx context.Context, logID string, limit int) ([]models.ImportError, error)
}

// Repositories holds all repository interfaces
type Repositories struct {
	Asset        AssetRepository
	Category     CategoryRepository
	Manufacturer ManufacturerRepository
	Location     LocationRepository
	Movement     MovementRepository
	User         UserRepository
	ImportLog    ImportLogRepository
}

// New creates all repositories with the given database connection
func New(db *database.DB) *Repositories {
	return &Repositories{
		Asset:        NewAssetRepo(db),
		Category:     NewCategoryRepo(db),
		Manufacturer: NewManufacturerRepo(db),
		Location:     NewLocationRepo(db),
		Movement:     NewMovementRepo(db),
		User:         NewUserRepo(db),
		ImportLog:    NewImportLogRepo(db),
	}
}
