package repository

import (
	"context"
	"database/sql"

	"github.com/lib/pq"

	"github.com/hsi-patrimonio/inventory-api/internal/database"
	"github.com/hsi-patrimonio/inventory-api/internal/models"
)

// importLogRepo is the concrete implementation of ImportLogRepository
type importLogRepo struct {
	db *database.DB
}

// NewImportLogRepo creates a new import log repository
func NewImportLogRepo(db *database.DB) ImportLogRepository {
	return &importLogRepo{db: db}
}

// Create inserts a new import log in PENDING state
func (r *importLogRepo) Create(ctx context.Context, log *models.ImportLog) error {
	query := `
		INSERT INTO import_logs (id, filename, file_type, status, total_rows, success_rows,
			error_rows, progress, stats, errors, metadata, user_id, started_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
	`
	_, err := r.db.ExecContext(ctx, query,
		log.ID, log.Filename, log.FileType, log.Status,
		log.TotalRows, log.SuccessRows, log.ErrorRows, log.Progress,
		nullString(log.Stats), nullString(log.Errors), nullString(log.Metadata),
		nullString(log.UserID), log.StartedAt,
	)
	return err
}

// GetByID retrieves an import log by ID, (nil, nil) when absent
func (r *importLogRepo) GetByID(ctx context.Context, id string) (*models.ImportLog, error) {
	query := `
		SELECT id, filename, file_type, status, total_rows, success_rows, error_rows,
			progress, stats, errors, metadata, user_id, started_at, completed_at, duration
		FROM import_logs WHERE id = $1
	`

	var log models.ImportLog
	var stats, errs, metadata, userID sql.NullString
	var completedAt sql.NullTime
	var duration sql.NullInt64

	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&log.ID, &log.Filename, &log.FileType, &log.Status,
		&log.TotalRows, &log.SuccessRows, &log.ErrorRows, &log.Progress,
		&stats, &errs, &metadata, &userID, &log.StartedAt, &completedAt, &duration,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	log.Stats = stats.String
	log.Errors = errs.String
	log.Metadata = metadata.String
	log.UserID = userID.String
	if completedAt.Valid {
		log.CompletedAt = &completedAt.Time
	}
	log.Duration = int(duration.Int64)

	return &log, nil
}

// SetProcessing marks the log as PROCESSING with progress reset to zero
func (r *importLogRepo) SetProcessing(ctx context.Context, id string) error {
	query := `UPDATE import_logs SET status = 'PROCESSING', progress = 0 WHERE id = $1`
	_, err := r.db.ExecContext(ctx, query, id)
	return err
}

// SetTotalRows persists the exact row count used as the progress denominator
func (r *importLogRepo) SetTotalRows(ctx context.Context, id string, totalRows int) error {
	query := `UPDATE import_logs SET total_rows = $1 WHERE id = $2`
	_, err := r.db.ExecContext(ctx, query, totalRows, id)
	return err
}

// UpdateProgress persists batch progress. GREATEST keeps the stored value
// monotonically non-decreasing even if a retried job restarts from zero
// while the old value is still visible to pollers.
func (r *importLogRepo) UpdateProgress(ctx context.Context, id string, progress int) error {
	query := `UPDATE import_logs SET progress = GREATEST(progress, $1) WHERE id = $2 AND status = 'PROCESSING'`
	_, err := r.db.ExecContext(ctx, query, progress, id)
	return err
}

// Finalize persists the terminal status and all closing counters
func (r *importLogRepo) Finalize(ctx context.Context, log *models.ImportLog) error {
	query := `
		UPDATE import_logs SET
			status = $1, total_rows = $2, success_rows = $3, error_rows = $4,
			progress = $5, stats = $6, errors = $7, completed_at = $8, duration = $9
		WHERE id = $10
	`
	_, err := r.db.ExecContext(ctx, query,
		log.Status, log.TotalRows, log.SuccessRows, log.ErrorRows, log.Progress,
		nullString(log.Stats), nullString(log.Errors), log.CompletedAt, log.Duration,
		log.ID,
	)
	return err
}

// AddErrors bulk-inserts row-level errors using the COPY protocol.
// A large import with a high error rate produces thousands of rows; COPY
// keeps that a single round trip per flush.
func (r *importLogRepo) AddErrors(ctx context.Context, logID string, errors []models.ImportError) error {
	if len(errors) == 0 {
		return nil
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, pq.CopyIn("import_errors",
		"import_log_id", "row_number", "field", "message",
	))
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, e := range errors {
		if _, err := stmt.ExecContext(ctx, logID, e.Row, e.Field, e.Message); err != nil {
			return err
		}
	}

	// Flush the COPY buffer
	if _, err := stmt.ExecContext(ctx); err != nil {
		return err
	}

	return tx.Commit()
}

// GetErrors retrieves row-level errors for an import log, earliest first
func (r *importLogRepo) GetErrors(ctx context.Context, logID string, limit int) ([]models.ImportError, error) {
	query := `SELECT row_number, field, message FROM import_errors WHERE import_log_id = $1 ORDER BY row_number`

	var rows *sql.Rows
	var err error
	if limit > 0 {
		rows, err = r.db.QueryContext(ctx, query+" LIMIT $2", logID, limit)
	} else {
		rows, err = r.db.QueryContext(ctx, query, logID)
	}
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var errors []models.ImportError
	for rows.Next() {
		var e models.ImportError
		if err := rows.Scan(&e.Row, &e.Field, &e.Message); err != nil {
			continue
		}
		errors = append(errors, e)
	}

	return errors, rows.Err()
}
