package importer

import (
	"context"
	"io"
	"strings"

	"github.com/rs/zerolog"

	"github.com/hsi-patrimonio/inventory-api/internal/models"
	"github.com/hsi-patrimonio/inventory-api/internal/repository"
)

const (
	maxReportedErrors = 100
	maxPreviewEntries = 5
)

// genericRules is the declarative rule set for generic files. Deliberately
// minimal; new rules slot in here without touching the streaming loop.
var genericRules = []struct {
	field    string
	message  string
	severity string
	violated func(record map[string]string) bool
}{
	{
		field:    "name",
		message:  "Nome do ativo é obrigatório",
		severity: models.SeverityError,
		violated: func(record map[string]string) bool {
			return strings.TrimSpace(record["name"]) == ""
		},
	},
	{
		field:    "quantity",
		message:  "Quantidade deve ser um número não-negativo",
		severity: models.SeverityError,
		violated: func(record map[string]string) bool {
			q := record["quantity"]
			if q == "" {
				return false
			}
			for _, r := range q {
				if r < '0' || r > '9' {
					return true
				}
			}
			return false
		},
	},
}

// Validator streams a file against type-specific rules without mutating the
// store; only read-only existence checks touch the database.
type Validator struct {
	assets repository.AssetRepository
	log    zerolog.Logger
}

// NewValidator creates a new dry-run validator
func NewValidator(assets repository.AssetRepository, log zerolog.Logger) *Validator {
	return &Validator{
		assets: assets,
		log:    log.With().Str("component", "validator").Logger(),
	}
}

// validationRun accumulates counters for a single Validate call
type validationRun struct {
	report           *models.ValidationReport
	newAssets        int
	existingAssets   int
	newLocations     map[string]struct{}
	newManufacturers map[string]struct{}
}

// Validate performs the dry-run pass and returns the full report
func (v *Validator) Validate(ctx context.Context, req models.ValidateRequest) (*models.ValidationReport, error) {
	opts := models.ReadOptions{Encoding: EncodingUTF8, Delimiter: ";", SkipRows: 0}
	if req.Config != nil {
		if req.Config.Encoding != "" {
			opts.Encoding = req.Config.Encoding
		}
		if req.Config.Delimiter != "" {
			opts.Delimiter = req.Config.Delimiter
		}
		opts.SkipRows = req.Config.SkipRows
	}

	reader, err := OpenRows(req.FilePath, opts)
	if err != nil {
		return nil, err
	}
	defer reader.Close()

	run := &validationRun{
		report: &models.ValidationReport{
			Preview: models.ValidationPreview{
				AssetsToCreate: []models.PreviewAsset{},
				AssetsToUpdate: []models.PreviewAsset{},
			},
		},
		newLocations:     make(map[string]struct{}),
		newManufacturers: make(map[string]struct{}),
	}
	isHSI := req.FileType == models.FileTypeHSIInventario

	for {
		row, err := reader.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		// Fully blank rows are excluded from every count
		if row.Blank() {
			continue
		}

		if isHSI {
			if err := v.validateHSIRow(ctx, row, run); err != nil {
				return nil, err
			}
		} else {
			v.validateGenericRow(row, req.ColumnMapping, run)
		}
	}

	report := run.report
	totalRows := report.ValidRows + report.ErrorRows + report.WarningRows
	report.IsValid = report.ErrorRows == 0
	if len(report.Errors) > maxReportedErrors {
		report.Errors = report.Errors[:maxReportedErrors]
	}
	report.Stats = models.ValidationStats{
		TotalRows:         totalRows,
		ValidRows:         report.ValidRows,
		ErrorRows:         report.ErrorRows,
		WarningRows:       report.WarningRows,
		NewAssets:         run.newAssets,
		ExistingAssets:    run.existingAssets,
		NewLocations:      len(run.newLocations),
		NewManufacturers:  len(run.newManufacturers),
		EstimatedDuration: estimateDuration(totalRows, validateRowsPerSecond),
	}

	v.log.Debug().
		Str("file", req.FilePath).
		Str("file_type", req.FileType).
		Int("total_rows", totalRows).
		Int("error_rows", report.ErrorRows).
		Int("warning_rows", report.WarningRows).
		Msg("Dry-run validation finished")

	return report, nil
}

// validateHSIRow applies the specialized rules to one HSI inventory row.
// Rows missing all three identity fields are excluded from further
// processing; rows falling back to the serial as identity continue with a
// warning. Only read lookups touch the store.
func (v *Validator) validateHSIRow(ctx context.Context, row Row, run *validationRun) error {
	report := run.report
	tag := row.Fields[ColPatrimonio]
	host := row.Fields[ColHostname]
	serial := row.Fields[ColSerialCPU]

	if tag == "" && host == "" && serial == "" {
		report.Errors = append(report.Errors, models.ValidationError{
			Row:      row.Number,
			Field:    "Patrimônio/Hostname/Serial",
			Message:  "Nenhum campo de identidade preenchido; linha será ignorada",
			Severity: models.SeverityWarning,
		})
		report.WarningRows++
		return nil
	}

	warned := false
	if tag == "" && host == "" {
		report.Errors = append(report.Errors, models.ValidationError{
			Row:      row.Number,
			Field:    "Patrimônio/Hostname",
			Message:  "Patrimônio e Hostname ausentes; Serial Number CPU será usado como identidade",
			Severity: models.SeverityWarning,
		})
		warned = true
	}

	// A host-only row has no natural key to look up; it skips the
	// existence check and the preview buckets entirely.
	if tag != "" || serial != "" {
		existing, err := v.assets.GetByTagOrSerial(ctx, tag, serial)
		if err != nil {
			return err
		}
		if existing != nil {
			run.existingAssets++
			if len(report.Preview.AssetsToUpdate) < maxPreviewEntries {
				name := host
				if name == "" {
					name = existing.Name
				}
				previewTag := tag
				if previewTag == "" {
					previewTag = existing.AssetTag
				}
				report.Preview.AssetsToUpdate = append(report.Preview.AssetsToUpdate, models.PreviewAsset{
					Name: name, AssetTag: previewTag, Action: "update", ExistingID: existing.ID,
				})
			}
		} else {
			run.newAssets++
			if len(report.Preview.AssetsToCreate) < maxPreviewEntries {
				name := host
				if name == "" {
					name = "Computador " + tag
				}
				report.Preview.AssetsToCreate = append(report.Preview.AssetsToCreate, models.PreviewAsset{
					Name: name, AssetTag: tag, Action: "create",
				})
			}
		}
	}

	// Reference entities the commit would create; accumulated, never written
	if loc := row.Fields[ColLocalizacao]; loc != "" {
		run.newLocations[loc] = struct{}{}
	}
	if man := row.Fields[ColFabricante]; man != "" {
		run.newManufacturers[man] = struct{}{}
	}

	if warned {
		report.WarningRows++
	} else {
		report.ValidRows++
	}
	return nil
}

// validateGenericRow applies the mapped rule set to one generic row
func (v *Validator) validateGenericRow(row Row, mapping map[string]string, run *validationRun) {
	report := run.report

	// A lone "não encontrado" sentinel is export noise, not data
	var populated []string
	for _, value := range row.Fields {
		if value != "" {
			populated = append(populated, value)
		}
	}
	if len(populated) == 1 && strings.Contains(NormalizeKey(populated[0]), "encontrado") {
		return
	}

	mapped := MapColumns(row.Fields, mapping)

	hasError := false
	hasWarning := false
	for _, rule := range genericRules {
		if rule.violated(mapped) {
			report.Errors = append(report.Errors, models.ValidationError{
				Row:      row.Number,
				Field:    rule.field,
				Message:  rule.message,
				Severity: rule.severity,
			})
			if rule.severity == models.SeverityError {
				hasError = true
			} else {
				hasWarning = true
			}
		}
	}

	switch {
	case hasError:
		report.ErrorRows++
	case hasWarning:
		report.WarningRows++
	default:
		report.ValidRows++
		run.newAssets++
		if len(report.Preview.AssetsToCreate) < maxPreviewEntries {
			report.Preview.AssetsToCreate = append(report.Preview.AssetsToCreate, models.PreviewAsset{
				Name: mapped["name"], AssetTag: mapped["assetTag"], Action: "create",
			})
		}
	}
}
