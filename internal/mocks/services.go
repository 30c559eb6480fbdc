package mocks

import (
	"context"

	"github.com/hsi-patrimonio/inventory-api/internal/models"
	"github.com/hsi-patrimonio/inventory-api/internal/service"
)

// MockImportService is a mock implementation of ImportService
type MockImportService struct {
	DetectFunc   func(ctx context.Context, req models.DetectRequest) (*models.DetectResponse, error)
	ValidateFunc func(ctx context.Context, req models.ValidateRequest) (*models.ValidationReport, error)
	CommitFunc   func(ctx context.Context, req models.CommitRequest) (*models.CommitResponse, error)
	StatusFunc   func(ctx context.Context, importLogID string) (*models.JobStatusResponse, error)
}

// Verify interface compliance
var _ service.ImportService = (*MockImportService)(nil)

func (m *MockImportService) Detect(ctx context.Context, req models.DetectRequest) (*models.DetectResponse, error) {
	if m.DetectFunc != nil {
		return m.DetectFunc(ctx, req)
	}
	return &models.DetectResponse{FileType: models.FileTypeGeneric}, nil
}

func (m *MockImportService) Validate(ctx context.Context, req models.ValidateRequest) (*models.ValidationReport, error) {
	if m.ValidateFunc != nil {
		return m.ValidateFunc(ctx, req)
	}
	return &models.ValidationReport{IsValid: true}, nil
}

func (m *MockImportService) Commit(ctx context.Context, req models.CommitRequest) (*models.CommitResponse, error) {
	if m.CommitFunc != nil {
		return m.CommitFunc(ctx, req)
	}
	return &models.CommitResponse{JobID: "job-1", ImportLogID: "log-1"}, nil
}

func (m *MockImportService) GetJobStatus(ctx context.Context, importLogID string) (*models.JobStatusResponse, error) {
	if m.StatusFunc != nil {
		return m.StatusFunc(ctx, importLogID)
	}
	return &models.JobStatusResponse{ImportLog: &models.ImportLog{ID: importLogID}}, nil
}
