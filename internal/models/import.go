package models

// File types recognised by the format detector
const (
	FileTypeHSIInventario = "hsi-inventario"
	FileTypeGeneric       = "generic"
)

// ReadOptions control how a CSV stream is opened
type ReadOptions struct {
	Encoding  string `json:"encoding,omitempty"`  // "utf-8" or "latin1"
	Delimiter string `json:"delimiter,omitempty"` // single-rune delimiter
	SkipRows  int    `json:"skipRows,omitempty"`  // lines skipped before the header
}

// ColumnSuggestion maps a CSV header to a system field with a confidence score
type ColumnSuggestion struct {
	CSVColumn   string  `json:"csvColumn"`
	SystemField string  `json:"systemField"`
	Confidence  float64 `json:"confidence"`
}

// DetectResponse is the result of the format detection pass
type DetectResponse struct {
	Encoding          string              `json:"encoding"`
	Delimiter         string              `json:"delimiter"`
	Headers           []string            `json:"headers"`
	Sample            []map[string]string `json:"sample"`
	TotalRows         int                 `json:"totalRows"`
	FileType          string              `json:"fileType"`
	SuggestedMappings []ColumnSuggestion  `json:"suggestedMappings"`
	Stats             FileStats           `json:"stats"`
}

// FileStats carries advisory figures for UI guidance only
type FileStats struct {
	HasEmptyRows            bool   `json:"hasEmptyRows"`
	HasInconsistentColumns  bool   `json:"hasInconsistentColumns"`
	EstimatedProcessingTime string `json:"estimatedProcessingTime"`
	SampleSize              int    `json:"sampleSize"`
	TotalRows               int    `json:"totalRows"`
}

// Severity of a validation finding
const (
	SeverityError   = "error"
	SeverityWarning = "warning"
)

// ValidationError is one row-level finding from the dry-run validator
type ValidationError struct {
	Row      int    `json:"row"`
	Field    string `json:"field"`
	Message  string `json:"message"`
	Severity string `json:"severity"`
}

// PreviewAsset is one entry in the bounded validation preview
type PreviewAsset struct {
	Name       string `json:"name"`
	AssetTag   string `json:"assetTag,omitempty"`
	Action     string `json:"action"` // "create" or "update"
	ExistingID string `json:"existingId,omitempty"`
}

// ValidationPreview holds up to five entries per bucket
type ValidationPreview struct {
	AssetsToCreate []PreviewAsset `json:"assetsToCreate"`
	AssetsToUpdate []PreviewAsset `json:"assetsToUpdate"`
}

// ValidationStats aggregates the dry-run pass
type ValidationStats struct {
	TotalRows         int    `json:"totalRows"`
	ValidRows         int    `json:"validRows"`
	ErrorRows         int    `json:"errorRows"`
	WarningRows       int    `json:"warningRows"`
	NewAssets         int    `json:"newAssets"`
	ExistingAssets    int    `json:"existingAssets"`
	NewLocations      int    `json:"newLocations"`
	NewManufacturers  int    `json:"newManufacturers"`
	EstimatedDuration string `json:"estimatedDuration"`
}

// ValidationReport is the full dry-run result; ephemeral, never persisted
type ValidationReport struct {
	IsValid     bool              `json:"isValid"`
	ValidRows   int               `json:"validRows"`
	ErrorRows   int               `json:"errorRows"`
	WarningRows int               `json:"warningRows"`
	Errors      []ValidationError `json:"errors"`
	Stats       ValidationStats   `json:"stats"`
	Preview     ValidationPreview `json:"preview"`
}

// DetectRequest is the detect endpoint payload
type DetectRequest struct {
	FilePath string `json:"filePath" binding:"required"`
	SkipRows int    `json:"skipRows"`
}

// ValidateRequest is the validate endpoint payload
type ValidateRequest struct {
	FilePath      string            `json:"filePath" binding:"required"`
	FileType      string            `json:"fileType" binding:"required"`
	ColumnMapping map[string]string `json:"columnMapping"`
	Config        *ReadOptions      `json:"config"`
}

// CommitRequest is the commit endpoint payload
type CommitRequest struct {
	FilePath      string            `json:"filePath" binding:"required"`
	FileType      string            `json:"fileType" binding:"required"`
	ColumnMapping map[string]string `json:"columnMapping"`
	Config        *ReadOptions      `json:"config"`
	UserID        string            `json:"userId"`
}

// CommitResponse is returned immediately after enqueueing the job
type CommitResponse struct {
	JobID       string `json:"jobId"`
	ImportLogID string `json:"importLogId"`
	Message     string `json:"message"`
	Status      string `json:"status"`
}
