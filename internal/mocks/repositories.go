package mocks

import (
	"context"
	"sync"

	"github.com/hsi-patrimonio/inventory-api/internal/models"
	"github.com/hsi-patrimonio/inventory-api/internal/repository"
)

// MockAssetRepository is a map-backed mock implementation of AssetRepository
type MockAssetRepository struct {
	mu           sync.Mutex
	Assets       map[string]*models.Asset
	TagToAsset   map[string]*models.Asset
	CreateError  error
	UpdateError  error
	LookupError  error
	CreateCalls  int
	UpdateCalls  int
	LookupCalls  int
}

// Verify interface compliance
var _ repository.AssetRepository = (*MockAssetRepository)(nil)

func NewMockAssetRepository() *MockAssetRepository {
	return &MockAssetRepository{
		Assets:     make(map[string]*models.Asset),
		TagToAsset: make(map[string]*models.Asset),
	}
}

func (m *MockAssetRepository) Create(ctx context.Context, asset *models.Asset) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.CreateCalls++
	if m.CreateError != nil {
		return m.CreateError
	}
	m.Assets[asset.ID] = asset
	if asset.AssetTag != "" {
		m.TagToAsset[asset.AssetTag] = asset
	}
	return nil
}

func (m *MockAssetRepository) Update(ctx context.Context, asset *models.Asset) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.UpdateCalls++
	if m.UpdateError != nil {
		return m.UpdateError
	}
	m.Assets[asset.ID] = asset
	if asset.AssetTag != "" {
		m.TagToAsset[asset.AssetTag] = asset
	}
	return nil
}

func (m *MockAssetRepository) GetByID(ctx context.Context, id string) (*models.Asset, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.LookupError != nil {
		return nil, m.LookupError
	}
	return m.Assets[id], nil
}

func (m *MockAssetRepository) GetByTag(ctx context.Context, tag string) (*models.Asset, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.LookupCalls++
	if m.LookupError != nil {
		return nil, m.LookupError
	}
	if tag == "" {
		return nil, nil
	}
	return m.TagToAsset[tag], nil
}

func (m *MockAssetRepository) GetByTagOrSerial(ctx context.Context, tag, serial string) (*models.Asset, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.LookupCalls++
	if m.LookupError != nil {
		return nil, m.LookupError
	}
	if tag != "" {
		if asset, ok := m.TagToAsset[tag]; ok {
			return asset, nil
		}
	}
	if serial != "" {
		for _, asset := range m.Assets {
			if asset.SerialNumber == serial {
				return asset, nil
			}
		}
	}
	return nil, nil
}

// MockCategoryRepository is a map-backed mock implementation of CategoryRepository
type MockCategoryRepository struct {
	mu          sync.Mutex
	Categories  map[string]*models.Category
	CreateError error
	CreateCalls int
}

var _ repository.CategoryRepository = (*MockCategoryRepository)(nil)

func NewMockCategoryRepository() *MockCategoryRepository {
	return &MockCategoryRepository{Categories: make(map[string]*models.Category)}
}

func (m *MockCategoryRepository) Create(ctx context.Context, category *models.Category) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.CreateCalls++
	if m.CreateError != nil {
		return m.CreateError
	}
	m.Categories[category.Name] = category
	return nil
}

func (m *MockCategoryRepository) GetByName(ctx context.Context, name string) (*models.Category, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.Categories[name], nil
}

// MockManufacturerRepository is a map-backed mock implementation of ManufacturerRepository
type MockManufacturerRepository struct {
	mu            sync.Mutex
	Manufacturers map[string]*models.Manufacturer
	CreateError   error
	CreateCalls   int
}

var _ repository.ManufacturerRepository = (*MockManufacturerRepository)(nil)

func NewMockManufacturerRepository() *MockManufacturerRepository {
	return &MockManufacturerRepository{Manufacturers: make(map[string]*models.Manufacturer)}
}

func (m *MockManufacturerRepository) Create(ctx context.Context, manufacturer *models.Manufacturer) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.CreateCalls++
	if m.CreateError != nil {
		return m.CreateError
	}
	m.Manufacturers[manufacturer.Name] = manufacturer
	return nil
}

func (m *MockManufacturerRepository) GetByName(ctx context.Context, name string) (*models.Manufacturer, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.Manufacturers[name], nil
}

// MockLocationRepository is a map-backed mock implementation of LocationRepository
type MockLocationRepository struct {
	mu          sync.Mutex
	Locations   map[string]*models.Location
	CreateError error
	CreateCalls int
}

var _ repository.LocationRepository = (*MockLocationRepository)(nil)

func NewMockLocationRepository() *MockLocationRepository {
	return &MockLocationRepository{Locations: make(map[string]*models.Location)}
}

func (m *MockLocationRepository) Create(ctx context.Context, location *models.Location) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.CreateCalls++
	if m.CreateError != nil {
		return m.CreateError
	}
	m.Locations[location.Name] = location
	return nil
}

func (m *MockLocationRepository) GetByName(ctx context.Context, name string) (*models.Location, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.Locations[name], nil
}

// MockMovementRepository records movements in order of creation
type MockMovementRepository struct {
	mu          sync.Mutex
	Movements   []*models.Movement
	CreateError error
}

var _ repository.MovementRepository = (*MockMovementRepository)(nil)

func NewMockMovementRepository() *MockMovementRepository {
	return &MockMovementRepository{Movements: make([]*models.Movement, 0)}
}

func (m *MockMovementRepository) Create(ctx context.Context, movement *models.Movement) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.CreateError != nil {
		return m.CreateError
	}
	m.Movements = append(m.Movements, movement)
	return nil
}

// ByType returns recorded movements of one type
func (m *MockMovementRepository) ByType(t models.MovementType) []*models.Movement {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*models.Movement
	for _, movement := range m.Movements {
		if movement.Type == t {
			out = append(out, movement)
		}
	}
	return out
}

// MockUserRepository is a map-backed mock implementation of UserRepository
type MockUserRepository struct {
	Users map[string]*models.User
}

var _ repository.UserRepository = (*MockUserRepository)(nil)

func NewMockUserRepository() *MockUserRepository {
	return &MockUserRepository{Users: make(map[string]*models.User)}
}

func (m *MockUserRepository) GetByID(ctx context.Context, id string) (*models.User, error) {
	return m.Users[id], nil
}

// MockImportLogRepository is a map-backed mock implementation of ImportLogRepository
type MockImportLogRepository struct {
	mu            sync.Mutex
	Logs          map[string]*models.ImportLog
	Errors        map[string][]models.ImportError
	ProgressCalls []int
	CreateError   error
	FinalizeError error
}

var _ repository.ImportLogRepository = (*MockImportLogRepository)(nil)

func NewMockImportLogRepository() *MockImportLogRepository {
	return &MockImportLogRepository{
		Logs:   make(map[string]*models.ImportLog),
		Errors: make(map[string][]models.ImportError),
	}
}

func (m *MockImportLogRepository) Create(ctx context.Context, log *models.ImportLog) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.CreateError != nil {
		return m.CreateError
	}
	m.Logs[log.ID] = log
	return nil
}

func (m *MockImportLogRepository) GetByID(ctx context.Context, id string) (*models.ImportLog, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.Logs[id], nil
}

func (m *MockImportLogRepository) SetProcessing(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if log, ok := m.Logs[id]; ok {
		log.Status = models.ImportStatusProcessing
	}
	return nil
}

func (m *MockImportLogRepository) SetTotalRows(ctx context.Context, id string, totalRows int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if log, ok := m.Logs[id]; ok {
		log.TotalRows = totalRows
	}
	return nil
}

func (m *MockImportLogRepository) UpdateProgress(ctx context.Context, id string, progress int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ProgressCalls = append(m.ProgressCalls, progress)
	if log, ok := m.Logs[id]; ok {
		// Monotonic, mirroring the GREATEST() guard in the real store
		if log.Status == models.ImportStatusProcessing && progress > log.Progress {
			log.Progress = progress
		}
	}
	return nil
}

func (m *MockImportLogRepository) Finalize(ctx context.Context, log *models.ImportLog) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.FinalizeError != nil {
		return m.FinalizeError
	}
	m.Logs[log.ID] = log
	return nil
}

func (m *MockImportLogRepository) AddErrors(ctx context.Context, logID string, errors []models.ImportError) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Errors[logID] = append(m.Errors[logID], errors...)
	return nil
}

func (m *MockImportLogRepository) GetErrors(ctx context.Context, logID string, limit int) ([]models.ImportError, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	errs := m.Errors[logID]
	if limit > 0 && len(errs) > limit {
		errs = errs[:limit]
	}
	return errs, nil
}

// NewMockRepositories wires every mock into a Repositories bundle
func NewMockRepositories() (*repository.Repositories, *MockAssetRepository, *MockImportLogRepository) {
	assets := NewMockAssetRepository()
	logs := NewMockImportLogRepository()
	repos := &repository.Repositories{
		Asset:        assets,
		Category:     NewMockCategoryRepository(),
		Manufacturer: NewMockManufacturerRepository(),
		Location:     NewMockLocationRepository(),
		Movement:     NewMockMovementRepository(),
		User:         NewMockUserRepository(),
		ImportLog:    logs,
	}
	return repos, assets, logs
}
