package service

import (
	"context"
	"encoding/json"
	"io"
	"time"

	"github.com/rs/zerolog"

	"github.com/hsi-patrimonio/inventory-api/internal/config"
	"github.com/hsi-patrimonio/inventory-api/internal/importer"
	"github.com/hsi-patrimonio/inventory-api/internal/models"
	"github.com/hsi-patrimonio/inventory-api/internal/queue"
	"github.com/hsi-patrimonio/inventory-api/internal/repository"
)

// ImportWorker executes queued import jobs. Each job makes three streaming
// passes over the file: an exact row count, a short sample to confirm the
// declared format, and the chunked reconciliation pass.
type ImportWorker struct {
	repos *repository.Repositories
	queue JobQueue
	cfg   *config.ImportConfig
	log   zerolog.Logger
}

// NewImportWorker creates a worker bound to the shared repositories and queue
func NewImportWorker(repos *repository.Repositories, q JobQueue, cfg *config.ImportConfig, log zerolog.Logger) *ImportWorker {
	return &ImportWorker{
		repos: repos,
		queue: q,
		cfg:   cfg,
		log:   log.With().Str("component", "import_worker").Logger(),
	}
}

// importStats is the aggregate blob persisted on the finished import log
type importStats struct {
	AssetsCreated int `json:"assetsCreated"`
	AssetsUpdated int `json:"assetsUpdated"`
	ErrorCount    int `json:"errorCount"`
}

// Process handles one dequeued job. A returned error marks the import FAILED
// and propagates to the queue so its retry policy applies; a later attempt
// resurrects the log and converges because every row write is an upsert.
func (w *ImportWorker) Process(ctx context.Context, job *queue.Job) error {
	log := w.log.With().
		Str("job_id", job.ID).
		Str("import_log_id", job.Data.ImportLogID).
		Logger()

	importLog, err := w.repos.ImportLog.GetByID(ctx, job.Data.ImportLogID)
	if err != nil {
		return err
	}
	if importLog == nil {
		log.Warn().Msg("Import log missing, dropping job")
		return nil
	}
	if importLog.Status == models.ImportStatusCompleted {
		log.Info().Msg("Import already completed, skipping redelivery")
		return nil
	}

	start := time.Now()
	if err := w.run(ctx, job, importLog, start, log); err != nil {
		w.fail(ctx, importLog, start, err, log)
		return err
	}
	return nil
}

func (w *ImportWorker) run(ctx context.Context, job *queue.Job, importLog *models.ImportLog, start time.Time, log zerolog.Logger) error {
	if err := w.repos.ImportLog.SetProcessing(ctx, importLog.ID); err != nil {
		return err
	}
	w.publish(ctx, importLog.ID, models.ImportStatusProcessing, 0, 0, 0)

	opts, err := readOptions(job.Data.FilePath, job.Data.Config)
	if err != nil {
		return err
	}

	totalRows, err := w.countRows(job.Data.FilePath, opts)
	if err != nil {
		return err
	}
	if err := w.repos.ImportLog.SetTotalRows(ctx, importLog.ID, totalRows); err != nil {
		return err
	}
	log.Info().Int("total_rows", totalRows).Msg("Import started")

	if err := w.checkFormat(job, opts, log); err != nil {
		return err
	}

	var processor importer.ChunkProcessor
	if job.Data.FileType == models.FileTypeHSIInventario {
		processor = importer.NewHSIProcessor(w.repos, job.Data.UserID, log)
	} else {
		processor = importer.NewGenericProcessor(w.repos, job.Data.ColumnMapping, job.Data.UserID, log)
	}

	reader, err := importer.OpenRows(job.Data.FilePath, opts)
	if err != nil {
		return err
	}
	defer reader.Close()

	processed := 0
	var stats importStats
	var rowErrors []models.ImportError
	chunk := make([]importer.Row, 0, w.cfg.BatchSize)

	flush := func() error {
		if len(chunk) == 0 {
			return nil
		}
		result := processor.ProcessChunk(ctx, chunk)
		processed += len(chunk)
		stats.AssetsCreated += result.Created
		stats.AssetsUpdated += result.Updated
		rowErrors = append(rowErrors, result.Errors...)
		chunk = chunk[:0]

		progress := 0
		if totalRows > 0 {
			progress = processed * 100 / totalRows
		}
		// 100 is reserved for the terminal COMPLETED write in Finalize
		if progress > 99 {
			progress = 99
		}
		if err := w.repos.ImportLog.UpdateProgress(ctx, importLog.ID, progress); err != nil {
			return err
		}
		w.publish(ctx, importLog.ID, models.ImportStatusProcessing, progress, processed, totalRows)
		return nil
	}

	for {
		row, err := reader.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return err
		}
		if row.Blank() {
			continue
		}
		chunk = append(chunk, row)
		if len(chunk) >= w.cfg.BatchSize {
			if err := flush(); err != nil {
				return err
			}
		}
	}
	if err := flush(); err != nil {
		return err
	}

	if len(rowErrors) > 0 {
		if err := w.repos.ImportLog.AddErrors(ctx, importLog.ID, rowErrors); err != nil {
			return err
		}
	}

	stats.ErrorCount = len(rowErrors)
	statsJSON, err := json.Marshal(stats)
	if err != nil {
		return err
	}
	errorsJSON, err := json.Marshal(rowErrors)
	if err != nil {
		return err
	}

	now := time.Now()
	importLog.Status = models.ImportStatusCompleted
	importLog.TotalRows = totalRows
	importLog.SuccessRows = processed - len(rowErrors)
	importLog.ErrorRows = len(rowErrors)
	importLog.Progress = 100
	importLog.Stats = string(statsJSON)
	importLog.Errors = string(errorsJSON)
	importLog.CompletedAt = &now
	importLog.Duration = int(now.Sub(start).Seconds())
	if err := w.repos.ImportLog.Finalize(ctx, importLog); err != nil {
		return err
	}

	w.publish(ctx, importLog.ID, models.ImportStatusCompleted, 100, processed, totalRows)
	log.Info().
		Int("success_rows", importLog.SuccessRows).
		Int("error_rows", importLog.ErrorRows).
		Int("created", stats.AssetsCreated).
		Int("updated", stats.AssetsUpdated).
		Dur("elapsed", now.Sub(start)).
		Msg("Import completed")
	return nil
}

// countRows streams the file once for an exact non-blank row count
func (w *ImportWorker) countRows(filePath string, opts models.ReadOptions) (int, error) {
	reader, err := importer.OpenRows(filePath, opts)
	if err != nil {
		return 0, err
	}
	defer reader.Close()

	count := 0
	for {
		row, err := reader.Next()
		if err == io.EOF {
			return count, nil
		}
		if err != nil {
			return 0, err
		}
		if !row.Blank() {
			count++
		}
	}
}

// checkFormat samples the header to confirm the declared file type still
// matches the file on disk. A mismatch is logged, not fatal; the operator
// confirmed the type at commit time.
func (w *ImportWorker) checkFormat(job *queue.Job, opts models.ReadOptions, log zerolog.Logger) error {
	reader, err := importer.OpenRows(job.Data.FilePath, opts)
	if err != nil {
		return err
	}
	defer reader.Close()

	isHSI := importer.IsHSIFormat(reader.Headers())
	declared := job.Data.FileType == models.FileTypeHSIInventario
	if isHSI != declared {
		log.Warn().
			Str("declared", job.Data.FileType).
			Bool("headers_match_hsi", isHSI).
			Msg("Declared file type disagrees with headers")
	}
	return nil
}

// fail marks the import FAILED before the error propagates to the queue
func (w *ImportWorker) fail(ctx context.Context, importLog *models.ImportLog, start time.Time, cause error, log zerolog.Logger) {
	now := time.Now()
	importLog.Status = models.ImportStatusFailed
	importLog.CompletedAt = &now
	importLog.Duration = int(now.Sub(start).Seconds())

	errorsJSON, err := json.Marshal([]models.ImportError{{Message: cause.Error()}})
	if err == nil {
		importLog.Errors = string(errorsJSON)
	}
	if err := w.repos.ImportLog.Finalize(ctx, importLog); err != nil {
		log.Error().Err(err).Msg("Failed to persist FAILED status")
	}
	w.publish(ctx, importLog.ID, models.ImportStatusFailed, importLog.Progress, 0, importLog.TotalRows)
	log.Error().Err(cause).Msg("Import failed")
}

func (w *ImportWorker) publish(ctx context.Context, importLogID string, status models.ImportStatus, progress, processed, total int) {
	err := w.queue.PublishProgress(ctx, queue.ProgressEvent{
		ImportLogID:   importLogID,
		Status:        string(status),
		Progress:      progress,
		ProcessedRows: processed,
		TotalRows:     total,
	})
	if err != nil {
		w.log.Warn().Err(err).Str("import_log_id", importLogID).Msg("Progress publish failed")
	}
}

// readOptions derives the stream options for a job. Encoding and delimiter
// are sniffed from the file at processing time rather than carried over from
// the dry run; values the operator pinned at commit still win.
func readOptions(filePath string, config *models.ReadOptions) (models.ReadOptions, error) {
	skipRows := 0
	if config != nil {
		skipRows = config.SkipRows
	}

	encoding, delimiter, err := importer.SniffFormat(filePath, skipRows)
	if err != nil {
		return models.ReadOptions{}, err
	}

	opts := models.ReadOptions{Encoding: encoding, Delimiter: delimiter, SkipRows: skipRows}
	if config != nil {
		if config.Encoding != "" {
			opts.Encoding = config.Encoding
		}
		if config.Delimiter != "" {
			opts.Delimiter = config.Delimiter
		}
	}
	return opts, nil
}
