package importer

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/rs/zerolog"

	"github.com/hsi-patrimonio/inventory-api/internal/models"
	apperrors "github.com/hsi-patrimonio/inventory-api/pkg/errors"
)

// Processing rate assumptions for advisory duration estimates (rows/second)
const (
	detectRowsPerSecond   = 1000
	validateRowsPerSecond = 500
)

// Detector sniffs encoding, delimiter, headers and file type from a CSV file
type Detector struct {
	log zerolog.Logger
}

// NewDetector creates a new format detector
func NewDetector(log zerolog.Logger) *Detector {
	return &Detector{log: log.With().Str("component", "detector").Logger()}
}

// SniffFormat reads the file and derives its encoding plus the delimiter of
// the header line. The worker calls this again at processing time; the
// dry-run result is never persisted and the file may have changed meanwhile.
func SniffFormat(filePath string, skipRows int) (encoding, delimiter string, err error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		if os.IsNotExist(err) {
			return "", "", apperrors.NotFound("arquivo " + filePath)
		}
		return "", "", err
	}

	encoding = DetectEncoding(data)

	lines := strings.Split(DecodeText(data, encoding), "\n")
	headerLine := lines[0]
	if skipRows > 0 && skipRows < len(lines) {
		headerLine = lines[skipRows]
	}
	return encoding, DetectDelimiter(headerLine), nil
}

// Detect inspects a CSV file and returns its format plus a suggested column
// mapping. The full stream is read once to obtain an exact row count; blank
// rows are excluded from it, matching the validator and the worker counts.
func (d *Detector) Detect(ctx context.Context, filePath string, skipRows int) (*models.DetectResponse, error) {
	encoding, delimiter, err := SniffFormat(filePath, skipRows)
	if err != nil {
		return nil, err
	}

	reader, err := OpenRows(filePath, models.ReadOptions{
		Encoding:  encoding,
		Delimiter: delimiter,
		SkipRows:  skipRows,
	})
	if err != nil {
		return nil, err
	}
	defer reader.Close()

	var sample []map[string]string
	var sampleRows []Row
	totalRows := 0
	for {
		row, err := reader.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		if len(sample) < 5 {
			sample = append(sample, row.Fields)
			sampleRows = append(sampleRows, row)
		}
		if !row.Blank() {
			totalRows++
		}
	}

	headers := reader.Headers()
	fileType := models.FileTypeGeneric
	if IsHSIFormat(headers) {
		fileType = models.FileTypeHSIInventario
	}

	d.log.Debug().
		Str("file", filePath).
		Str("encoding", encoding).
		Str("delimiter", delimiter).
		Str("file_type", fileType).
		Int("total_rows", totalRows).
		Msg("Format detected")

	return &models.DetectResponse{
		Encoding:          encoding,
		Delimiter:         delimiter,
		Headers:           headers,
		Sample:            sample,
		TotalRows:         totalRows,
		FileType:          fileType,
		SuggestedMappings: SuggestMappings(headers, fileType),
		Stats:             fileStats(sampleRows, totalRows),
	}, nil
}

// fileStats derives advisory figures from the sample; UI guidance only
func fileStats(sample []Row, totalRows int) models.FileStats {
	hasEmptyRows := false
	hasInconsistentColumns := false
	seenColumns := -1
	for _, row := range sample {
		if row.Blank() {
			hasEmptyRows = true
		}
		if seenColumns >= 0 && row.Columns != seenColumns {
			hasInconsistentColumns = true
		}
		seenColumns = row.Columns
	}

	return models.FileStats{
		HasEmptyRows:            hasEmptyRows,
		HasInconsistentColumns:  hasInconsistentColumns,
		EstimatedProcessingTime: estimateDuration(totalRows, detectRowsPerSecond),
		SampleSize:              len(sample),
		TotalRows:               totalRows,
	}
}

// estimateDuration renders a human-readable processing estimate, rounding up
// to whole seconds and switching to minutes above sixty.
func estimateDuration(totalRows, rowsPerSecond int) string {
	seconds := (totalRows + rowsPerSecond - 1) / rowsPerSecond
	switch {
	case seconds < 1:
		return "menos de 1 segundo"
	case seconds == 1:
		return "1 segundo"
	case seconds < 60:
		return fmt.Sprintf("%d segundos", seconds)
	default:
		return fmt.Sprintf("%d minutos", (seconds+59)/60)
	}
}
