package service

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/hsi-patrimonio/inventory-api/internal/config"
	"github.com/hsi-patrimonio/inventory-api/internal/models"
	"github.com/hsi-patrimonio/inventory-api/internal/queue"
	"github.com/hsi-patrimonio/inventory-api/internal/repository"
)

// JobQueue abstracts the Redis queue for the orchestrator and worker
type JobQueue interface {
	Enqueue(ctx context.Context, data queue.ImportJobData) (string, error)
	PublishProgress(ctx context.Context, event queue.ProgressEvent) error
}

// ImportService defines the interface for the import pipeline
type ImportService interface {
	Detect(ctx context.Context, req models.DetectRequest) (*models.DetectResponse, error)
	Validate(ctx context.Context, req models.ValidateRequest) (*models.ValidationReport, error)
	Commit(ctx context.Context, req models.CommitRequest) (*models.CommitResponse, error)
	GetJobStatus(ctx context.Context, importLogID string) (*models.JobStatusResponse, error)
}

// Services holds all service implementations
type Services struct {
	Import ImportService
	Worker *ImportWorker
}

// NewServices creates all services
func NewServices(repos *repository.Repositories, q JobQueue, cfg *config.Config, log zerolog.Logger) *Services {
	return &Services{
		Import: newImportService(repos, q, cfg, log),
		Worker: NewImportWorker(repos, q, &cfg.Import, log),
	}
}
