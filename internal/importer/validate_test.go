package importer_test

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/rs/zerolog"

	"github.com/hsi-patrimonio/inventory-api/internal/importer"
	"github.com/hsi-patrimonio/inventory-api/internal/mocks"
	"github.com/hsi-patrimonio/inventory-api/internal/models"
)

func TestValidateHSI(t *testing.T) {
	assets := mocks.NewMockAssetRepository()
	existing := &models.Asset{ID: "asset-1", AssetTag: "PAT-1", Name: "OLD-HOST"}
	assets.Create(context.Background(), existing)

	var sb strings.Builder
	sb.WriteString(hsiHeader() + "\n")
	// Existing asset, update bucket
	sb.WriteString(hsiRow(map[string]string{
		importer.ColLocalizacao: "UTI",
		importer.ColHostname:    "HOST-1",
		importer.ColPatrimonio:  "PAT-1",
		importer.ColFabricante:  "Dell",
	}) + "\n")
	// New asset
	sb.WriteString(hsiRow(map[string]string{
		importer.ColLocalizacao: "CC",
		importer.ColHostname:    "HOST-2",
		importer.ColPatrimonio:  "PAT-2",
		importer.ColFabricante:  "HP",
	}) + "\n")
	// Serial fallback, continues with a warning
	sb.WriteString(hsiRow(map[string]string{
		importer.ColLocalizacao: "UTI",
		importer.ColSerialCPU:   "SER-3",
	}) + "\n")
	// No identity at all, warned and excluded
	sb.WriteString(hsiRow(map[string]string{
		importer.ColLocalizacao: "Farmácia",
	}) + "\n")
	// Fully blank, excluded from every count
	sb.WriteString(blankHSIRow() + "\n")
	path := writeTempCSV(t, sb.String())

	validator := importer.NewValidator(assets, zerolog.Nop())
	report, err := validator.Validate(context.Background(), models.ValidateRequest{
		FilePath: path,
		FileType: models.FileTypeHSIInventario,
	})
	if err != nil {
		t.Fatalf("Validate failed: %v", err)
	}

	if !report.IsValid {
		t.Error("report should be valid, warnings do not invalidate")
	}
	if report.ValidRows != 2 {
		t.Errorf("validRows = %d, want 2", report.ValidRows)
	}
	if report.WarningRows != 2 {
		t.Errorf("warningRows = %d, want 2", report.WarningRows)
	}
	if report.ErrorRows != 0 {
		t.Errorf("errorRows = %d, want 0", report.ErrorRows)
	}
	if report.Stats.TotalRows != 4 {
		t.Errorf("totalRows = %d, want 4 (blank row excluded)", report.Stats.TotalRows)
	}
	if report.Stats.NewAssets != 2 {
		t.Errorf("newAssets = %d, want 2", report.Stats.NewAssets)
	}
	if report.Stats.ExistingAssets != 1 {
		t.Errorf("existingAssets = %d, want 1", report.Stats.ExistingAssets)
	}
	// UTI, CC; the no-identity row's Farmácia never reaches accumulation
	if report.Stats.NewLocations != 2 {
		t.Errorf("newLocations = %d, want 2", report.Stats.NewLocations)
	}
	if report.Stats.NewManufacturers != 2 {
		t.Errorf("newManufacturers = %d, want 2", report.Stats.NewManufacturers)
	}
	if len(report.Errors) != 2 {
		t.Fatalf("errors = %d, want 2 warnings", len(report.Errors))
	}
	for _, e := range report.Errors {
		if e.Severity != models.SeverityWarning {
			t.Errorf("unexpected severity %q", e.Severity)
		}
	}
	if len(report.Preview.AssetsToUpdate) != 1 || report.Preview.AssetsToUpdate[0].ExistingID != "asset-1" {
		t.Errorf("update preview = %+v", report.Preview.AssetsToUpdate)
	}
	if len(report.Preview.AssetsToCreate) != 2 {
		t.Errorf("create preview = %d entries, want 2", len(report.Preview.AssetsToCreate))
	}

	// Dry run must not write
	if assets.CreateCalls != 1 || assets.UpdateCalls != 0 {
		t.Errorf("validator wrote to the store: creates=%d updates=%d", assets.CreateCalls, assets.UpdateCalls)
	}
}

func TestValidateHSIHostOnlyRowSkipsExistenceCheck(t *testing.T) {
	assets := mocks.NewMockAssetRepository()

	// Hostname present, no tag and no serial: nothing to look up
	content := hsiHeader() + "\n" + hsiRow(map[string]string{
		importer.ColLocalizacao: "UTI",
		importer.ColHostname:    "HOST-9",
	}) + "\n"
	path := writeTempCSV(t, content)

	validator := importer.NewValidator(assets, zerolog.Nop())
	report, err := validator.Validate(context.Background(), models.ValidateRequest{
		FilePath: path,
		FileType: models.FileTypeHSIInventario,
	})
	if err != nil {
		t.Fatalf("Validate failed: %v", err)
	}

	if report.ValidRows != 1 {
		t.Errorf("validRows = %d, want 1", report.ValidRows)
	}
	if report.Stats.NewAssets != 0 {
		t.Errorf("newAssets = %d, want 0 without a natural key", report.Stats.NewAssets)
	}
	if len(report.Preview.AssetsToCreate) != 0 {
		t.Errorf("create preview = %+v, want empty", report.Preview.AssetsToCreate)
	}
	if assets.LookupCalls != 0 {
		t.Errorf("lookups = %d, want 0 for a host-only row", assets.LookupCalls)
	}
}

func TestValidateGeneric(t *testing.T) {
	assets := mocks.NewMockAssetRepository()

	content := "Nome;Código\n" +
		"Mouse;A-1\n" +
		";A-2\n" + // missing name, error
		"Nenhum registro encontrado;\n" + // sentinel, skipped
		";\n" // blank, skipped
	path := writeTempCSV(t, content)

	validator := importer.NewValidator(assets, zerolog.Nop())
	report, err := validator.Validate(context.Background(), models.ValidateRequest{
		FilePath:      path,
		FileType:      models.FileTypeGeneric,
		ColumnMapping: map[string]string{"Nome": "name", "Código": "assetTag"},
	})
	if err != nil {
		t.Fatalf("Validate failed: %v", err)
	}

	if report.IsValid {
		t.Error("report with error rows should be invalid")
	}
	if report.ValidRows != 1 {
		t.Errorf("validRows = %d, want 1", report.ValidRows)
	}
	if report.ErrorRows != 1 {
		t.Errorf("errorRows = %d, want 1", report.ErrorRows)
	}
	if report.Stats.TotalRows != 2 {
		t.Errorf("totalRows = %d, want 2", report.Stats.TotalRows)
	}
	if len(report.Errors) != 1 || report.Errors[0].Field != "name" {
		t.Errorf("errors = %+v", report.Errors)
	}
	if len(report.Preview.AssetsToCreate) != 1 || report.Preview.AssetsToCreate[0].Name != "Mouse" {
		t.Errorf("create preview = %+v", report.Preview.AssetsToCreate)
	}
}

func TestValidateGenericQuantityRule(t *testing.T) {
	assets := mocks.NewMockAssetRepository()

	content := "Nome;Qtd\nMouse;10\nTeclado;muitos\n"
	path := writeTempCSV(t, content)

	validator := importer.NewValidator(assets, zerolog.Nop())
	report, err := validator.Validate(context.Background(), models.ValidateRequest{
		FilePath:      path,
		FileType:      models.FileTypeGeneric,
		ColumnMapping: map[string]string{"Nome": "name", "Qtd": "quantity"},
	})
	if err != nil {
		t.Fatalf("Validate failed: %v", err)
	}

	if report.ErrorRows != 1 {
		t.Errorf("errorRows = %d, want 1", report.ErrorRows)
	}
	if len(report.Errors) != 1 || report.Errors[0].Field != "quantity" {
		t.Errorf("errors = %+v", report.Errors)
	}
}

func TestValidateErrorCapAndPreviewCap(t *testing.T) {
	assets := mocks.NewMockAssetRepository()

	var sb strings.Builder
	sb.WriteString("Nome;Código\n")
	for i := 0; i < 120; i++ {
		sb.WriteString(fmt.Sprintf(";A-%d\n", i)) // missing name
	}
	for i := 0; i < 10; i++ {
		sb.WriteString(fmt.Sprintf("Item %d;B-%d\n", i, i))
	}
	path := writeTempCSV(t, sb.String())

	validator := importer.NewValidator(assets, zerolog.Nop())
	report, err := validator.Validate(context.Background(), models.ValidateRequest{
		FilePath:      path,
		FileType:      models.FileTypeGeneric,
		ColumnMapping: map[string]string{"Nome": "name", "Código": "assetTag"},
	})
	if err != nil {
		t.Fatalf("Validate failed: %v", err)
	}

	if len(report.Errors) != 100 {
		t.Errorf("errors = %d, want capped at 100", len(report.Errors))
	}
	if report.ErrorRows != 120 {
		t.Errorf("errorRows = %d, want 120 (counts are uncapped)", report.ErrorRows)
	}
	// Earliest findings win; first data row is file line 2
	if report.Errors[0].Row != 2 {
		t.Errorf("first error row = %d, want 2", report.Errors[0].Row)
	}
	if len(report.Preview.AssetsToCreate) != 5 {
		t.Errorf("create preview = %d, want capped at 5", len(report.Preview.AssetsToCreate))
	}
	if report.Stats.NewAssets != 10 {
		t.Errorf("newAssets = %d, want 10 (stat is uncapped)", report.Stats.NewAssets)
	}
}

func TestValidateMissingFile(t *testing.T) {
	validator := importer.NewValidator(mocks.NewMockAssetRepository(), zerolog.Nop())
	_, err := validator.Validate(context.Background(), models.ValidateRequest{
		FilePath: "/nonexistent/file.csv",
		FileType: models.FileTypeGeneric,
	})
	if err == nil {
		t.Fatal("expected an error for a missing file")
	}
}
