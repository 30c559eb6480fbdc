package service

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/hsi-patrimonio/inventory-api/internal/config"
	"github.com/hsi-patrimonio/inventory-api/internal/importer"
	"github.com/hsi-patrimonio/inventory-api/internal/models"
	"github.com/hsi-patrimonio/inventory-api/internal/queue"
	"github.com/hsi-patrimonio/inventory-api/internal/repository"
	apperrors "github.com/hsi-patrimonio/inventory-api/pkg/errors"
)

// importService orchestrates the detect → validate → commit pipeline
type importService struct {
	repos     *repository.Repositories
	queue     JobQueue
	cfg       *config.Config
	detector  *importer.Detector
	validator *importer.Validator
	log       zerolog.Logger
}

func newImportService(repos *repository.Repositories, q JobQueue, cfg *config.Config, log zerolog.Logger) *importService {
	return &importService{
		repos:     repos,
		queue:     q,
		cfg:       cfg,
		detector:  importer.NewDetector(log),
		validator: importer.NewValidator(repos.Asset, log),
		log:       log.With().Str("component", "import_service").Logger(),
	}
}

// Detect inspects an uploaded file and suggests a format and column mapping
func (s *importService) Detect(ctx context.Context, req models.DetectRequest) (*models.DetectResponse, error) {
	return s.detector.Detect(ctx, req.FilePath, req.SkipRows)
}

// Validate runs the dry-run pass; no writes happen here
func (s *importService) Validate(ctx context.Context, req models.ValidateRequest) (*models.ValidationReport, error) {
	return s.validator.Validate(ctx, req)
}

// commitMetadata is the audit blob persisted with each import log
type commitMetadata struct {
	ColumnMapping map[string]string   `json:"columnMapping,omitempty"`
	Config        *models.ReadOptions `json:"config,omitempty"`
}

// Commit creates the import log in PENDING and enqueues the job. An unknown
// userId degrades to an ownerless import rather than failing the request.
func (s *importService) Commit(ctx context.Context, req models.CommitRequest) (*models.CommitResponse, error) {
	// The file must exist before anything is persisted or enqueued;
	// otherwise every queue attempt would burn on the same bad path.
	if _, err := os.Stat(req.FilePath); err != nil {
		if os.IsNotExist(err) {
			return nil, apperrors.NotFound("arquivo " + req.FilePath)
		}
		return nil, err
	}

	userID := ""
	if req.UserID != "" {
		user, err := s.repos.User.GetByID(ctx, req.UserID)
		if err != nil {
			return nil, err
		}
		if user != nil {
			userID = user.ID
		} else {
			s.log.Warn().
				Str("user_id", req.UserID).
				Msg("Commit user not found, proceeding without owner")
		}
	}

	metadata, err := json.Marshal(commitMetadata{
		ColumnMapping: req.ColumnMapping,
		Config:        req.Config,
	})
	if err != nil {
		return nil, err
	}

	importLog := &models.ImportLog{
		ID:        uuid.New().String(),
		Filename:  filepath.Base(req.FilePath),
		FileType:  req.FileType,
		Status:    models.ImportStatusPending,
		Metadata:  string(metadata),
		UserID:    userID,
		StartedAt: time.Now(),
	}
	if err := s.repos.ImportLog.Create(ctx, importLog); err != nil {
		return nil, err
	}

	jobID, err := s.queue.Enqueue(ctx, queue.ImportJobData{
		ImportLogID:   importLog.ID,
		FilePath:      req.FilePath,
		FileType:      req.FileType,
		ColumnMapping: req.ColumnMapping,
		Config:        req.Config,
		UserID:        userID,
	})
	if err != nil {
		return nil, err
	}

	s.log.Info().
		Str("import_log_id", importLog.ID).
		Str("job_id", jobID).
		Str("file_type", req.FileType).
		Msg("Import committed")

	return &models.CommitResponse{
		JobID:       jobID,
		ImportLogID: importLog.ID,
		Message:     "Importação enfileirada para processamento",
		Status:      string(models.ImportStatusPending),
	}, nil
}

// GetJobStatus returns the import log with its captured row errors
func (s *importService) GetJobStatus(ctx context.Context, importLogID string) (*models.JobStatusResponse, error) {
	importLog, err := s.repos.ImportLog.GetByID(ctx, importLogID)
	if err != nil {
		return nil, err
	}
	if importLog == nil {
		return nil, apperrors.NotFound("import log " + importLogID)
	}

	errors, err := s.repos.ImportLog.GetErrors(ctx, importLogID, 100)
	if err != nil {
		return nil, err
	}
	return &models.JobStatusResponse{ImportLog: importLog, Errors: errors}, nil
}
