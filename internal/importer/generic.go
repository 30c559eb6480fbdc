package importer

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/hsi-patrimonio/inventory-api/internal/models"
	"github.com/hsi-patrimonio/inventory-api/internal/repository"
)

// GenericProcessor imports arbitrary CSV rows through an operator-supplied
// column mapping. Unlike the HSI processor it never moves assets or builds
// composite locations; references are plain find-or-create by name.
type GenericProcessor struct {
	repos   *repository.Repositories
	mapping map[string]string
	userID  string
	log     zerolog.Logger
}

// NewGenericProcessor creates a processor bound to one import run
func NewGenericProcessor(repos *repository.Repositories, mapping map[string]string, userID string, log zerolog.Logger) *GenericProcessor {
	return &GenericProcessor{
		repos:   repos,
		mapping: mapping,
		userID:  userID,
		log:     log.With().Str("component", "generic_processor").Logger(),
	}
}

// ProcessChunk imports a batch of mapped rows. Sentinel and empty rows are
// skipped silently; row failures are captured and never abort the chunk.
func (p *GenericProcessor) ProcessChunk(ctx context.Context, chunk []Row) BatchResult {
	var result BatchResult
	for _, row := range chunk {
		if skipGenericRow(row) {
			continue
		}

		mapped := MapColumns(row.Fields, p.mapping)
		if mapped["assetTag"] == "" || mapped["name"] == "" {
			result.Errors = append(result.Errors, models.ImportError{
				Row:     row.Number,
				Message: "Campos obrigatórios ausentes: assetTag ou name",
			})
			continue
		}

		created, err := p.processRecord(ctx, mapped)
		if err != nil {
			result.Errors = append(result.Errors, models.ImportError{
				Row:     row.Number,
				Message: err.Error(),
			})
			continue
		}
		if created {
			result.Created++
		} else {
			result.Updated++
		}
	}
	return result
}

// skipGenericRow drops fully blank rows and lone "não encontrado" sentinels
func skipGenericRow(row Row) bool {
	var populated []string
	for _, value := range row.Fields {
		if value != "" {
			populated = append(populated, value)
		}
	}
	if len(populated) == 0 {
		return true
	}
	return len(populated) == 1 && strings.Contains(NormalizeKey(populated[0]), "encontrado")
}

// processRecord upserts one mapped record. Existing assets get a partial
// update; new assets resolve their references and default to stock.
func (p *GenericProcessor) processRecord(ctx context.Context, mapped map[string]string) (bool, error) {
	existing, err := p.repos.Asset.GetByTag(ctx, mapped["assetTag"])
	if err != nil {
		return false, err
	}

	if existing != nil {
		existing.Name = mapped["name"]
		if serial := mapped["serialNumber"]; serial != "" {
			existing.SerialNumber = serial
		}
		if model := mapped["model"]; model != "" {
			existing.Model = model
		}
		if notes := mapped["notes"]; notes != "" {
			existing.Description = notes
		}
		if err := p.repos.Asset.Update(ctx, existing); err != nil {
			return false, err
		}
		return false, nil
	}

	categoryID := ""
	if name := mapped["category"]; name != "" {
		categoryID, err = p.resolveCategory(ctx, name)
		if err != nil {
			return false, err
		}
	}

	locationID := ""
	if name := mapped["location"]; name != "" {
		locationID, err = p.resolveLocation(ctx, name)
		if err != nil {
			return false, err
		}
	}

	manufacturerID := ""
	if name := mapped["manufacturer"]; name != "" {
		manufacturerID, err = p.resolveManufacturer(ctx, name)
		if err != nil {
			return false, err
		}
	}

	status := models.StatusEmEstoque
	if s := models.AssetStatus(mapped["status"]); models.ValidAssetStatuses[s] {
		status = s
	}

	asset := &models.Asset{
		ID:             uuid.New().String(),
		AssetTag:       mapped["assetTag"],
		SerialNumber:   mapped["serialNumber"],
		Name:           mapped["name"],
		Model:          mapped["model"],
		Description:    mapped["notes"],
		Status:         status,
		CategoryID:     categoryID,
		LocationID:     locationID,
		ManufacturerID: manufacturerID,
		CreatedByID:    p.userID,
	}
	if err := p.repos.Asset.Create(ctx, asset); err != nil {
		return false, err
	}
	return true, nil
}

func (p *GenericProcessor) resolveCategory(ctx context.Context, name string) (string, error) {
	category, err := p.repos.Category.GetByName(ctx, name)
	if err != nil {
		return "", err
	}
	if category == nil {
		category = &models.Category{ID: uuid.New().String(), Name: name}
		if err := p.repos.Category.Create(ctx, category); err != nil {
			return "", err
		}
	}
	return category.ID, nil
}

func (p *GenericProcessor) resolveLocation(ctx context.Context, name string) (string, error) {
	location, err := p.repos.Location.GetByName(ctx, name)
	if err != nil {
		return "", err
	}
	if location == nil {
		location = &models.Location{ID: uuid.New().String(), Name: name}
		if err := p.repos.Location.Create(ctx, location); err != nil {
			return "", err
		}
	}
	return location.ID, nil
}

func (p *GenericProcessor) resolveManufacturer(ctx context.Context, name string) (string, error) {
	manufacturer, err := p.repos.Manufacturer.GetByName(ctx, name)
	if err != nil {
		return "", err
	}
	if manufacturer == nil {
		manufacturer = &models.Manufacturer{ID: uuid.New().String(), Name: name}
		if err := p.repos.Manufacturer.Create(ctx, manufacturer); err != nil {
			return "", err
		}
	}
	return manufacturer.ID, nil
}
