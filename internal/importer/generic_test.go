package importer_test

import (
	"context"
	"testing"

	"github.com/rs/zerolog"

	"github.com/hsi-patrimonio/inventory-api/internal/importer"
	"github.com/hsi-patrimonio/inventory-api/internal/mocks"
	"github.com/hsi-patrimonio/inventory-api/internal/models"
)

var genericMapping = map[string]string{
	"Nome":       "name",
	"Código":     "assetTag",
	"Serial":     "serialNumber",
	"Modelo":     "model",
	"Categoria":  "category",
	"Local":      "location",
	"Observação": "notes",
}

func TestGenericProcessorCreatesAssets(t *testing.T) {
	repos, assets, _ := mocks.NewMockRepositories()

	content := "Nome;Código;Serial;Modelo;Categoria;Local;Observação\n" +
		"Mouse Óptico;A-1;S-1;M90;Periférico;Almoxarifado;novo\n" +
		"Teclado;A-2;;;Periférico;Almoxarifado;\n"
	path := writeTempCSV(t, content)
	rows := readAllRows(t, path)

	processor := importer.NewGenericProcessor(repos, genericMapping, "user-1", zerolog.Nop())
	result := processor.ProcessChunk(context.Background(), rows)

	if len(result.Errors) != 0 {
		t.Fatalf("errors: %+v", result.Errors)
	}
	if result.Created != 2 {
		t.Errorf("created = %d, want 2", result.Created)
	}

	asset, _ := assets.GetByTag(context.Background(), "A-1")
	if asset == nil {
		t.Fatal("asset A-1 not created")
	}
	if asset.Name != "Mouse Óptico" {
		t.Errorf("name = %q", asset.Name)
	}
	if asset.Status != models.StatusEmEstoque {
		t.Errorf("status = %q, want default EM_ESTOQUE", asset.Status)
	}
	if asset.Description != "novo" {
		t.Errorf("description = %q", asset.Description)
	}
	if asset.CategoryID == "" || asset.LocationID == "" {
		t.Error("references not resolved")
	}
	if asset.CreatedByID != "user-1" {
		t.Errorf("createdBy = %q", asset.CreatedByID)
	}

	// Both rows share the same category and location
	categories := repos.Category.(*mocks.MockCategoryRepository)
	if categories.CreateCalls != 1 {
		t.Errorf("category creates = %d, want 1", categories.CreateCalls)
	}
}

func TestGenericProcessorUpdatesExisting(t *testing.T) {
	repos, assets, _ := mocks.NewMockRepositories()
	ctx := context.Background()
	assets.Create(ctx, &models.Asset{
		ID:         "asset-1",
		AssetTag:   "A-1",
		Name:       "Old Name",
		Status:     models.StatusEmUso,
		LocationID: "loc-1",
	})

	content := "Nome;Código;Serial;Local\nMouse Novo;A-1;S-9;Outro Local\n"
	path := writeTempCSV(t, content)
	rows := readAllRows(t, path)

	processor := importer.NewGenericProcessor(repos, genericMapping, "", zerolog.Nop())
	result := processor.ProcessChunk(ctx, rows)

	if result.Updated != 1 || result.Created != 0 {
		t.Fatalf("result = %+v, want one update", result)
	}

	asset, _ := assets.GetByTag(ctx, "A-1")
	if asset.Name != "Mouse Novo" {
		t.Errorf("name = %q", asset.Name)
	}
	if asset.SerialNumber != "S-9" {
		t.Errorf("serial = %q", asset.SerialNumber)
	}
	// Partial update never touches status or references
	if asset.Status != models.StatusEmUso {
		t.Errorf("status changed to %q", asset.Status)
	}
	if asset.LocationID != "loc-1" {
		t.Errorf("location changed to %q", asset.LocationID)
	}
}

func TestGenericProcessorMissingRequiredFields(t *testing.T) {
	repos, assets, _ := mocks.NewMockRepositories()

	content := "Nome;Código\n;A-1\nMouse;\n"
	path := writeTempCSV(t, content)
	rows := readAllRows(t, path)

	processor := importer.NewGenericProcessor(repos, genericMapping, "", zerolog.Nop())
	result := processor.ProcessChunk(context.Background(), rows)

	if len(result.Errors) != 2 {
		t.Fatalf("errors = %d, want 2", len(result.Errors))
	}
	if result.Created != 0 {
		t.Errorf("created = %d, want 0", result.Created)
	}
	if len(assets.Assets) != 0 {
		t.Errorf("assets written = %d, want 0", len(assets.Assets))
	}
}

func TestGenericProcessorSkipsSentinelRows(t *testing.T) {
	repos, assets, _ := mocks.NewMockRepositories()

	content := "Nome;Código\nNenhum registro encontrado;\nMouse;A-1\n"
	path := writeTempCSV(t, content)
	rows := readAllRows(t, path)

	processor := importer.NewGenericProcessor(repos, genericMapping, "", zerolog.Nop())
	result := processor.ProcessChunk(context.Background(), rows)

	if len(result.Errors) != 0 {
		t.Fatalf("sentinel row should be silent: %+v", result.Errors)
	}
	if result.Created != 1 {
		t.Errorf("created = %d, want 1", result.Created)
	}
	if len(assets.Assets) != 1 {
		t.Errorf("assets = %d, want 1", len(assets.Assets))
	}
}

func TestGenericProcessorExplicitStatus(t *testing.T) {
	repos, assets, _ := mocks.NewMockRepositories()

	mapping := map[string]string{"Nome": "name", "Código": "assetTag", "Situação": "status"}
	content := "Nome;Código;Situação\nMouse;A-1;EM_USO\nTeclado;A-2;INVENTADO\n"
	path := writeTempCSV(t, content)
	rows := readAllRows(t, path)

	processor := importer.NewGenericProcessor(repos, mapping, "", zerolog.Nop())
	result := processor.ProcessChunk(context.Background(), rows)
	if len(result.Errors) != 0 {
		t.Fatalf("errors: %+v", result.Errors)
	}

	ctx := context.Background()
	a1, _ := assets.GetByTag(ctx, "A-1")
	if a1.Status != models.StatusEmUso {
		t.Errorf("A-1 status = %q, want EM_USO", a1.Status)
	}
	a2, _ := assets.GetByTag(ctx, "A-2")
	if a2.Status != models.StatusEmEstoque {
		t.Errorf("A-2 status = %q, unknown status falls back to EM_ESTOQUE", a2.Status)
	}
}

var _ importer.ChunkProcessor = (*importer.GenericProcessor)(nil)
