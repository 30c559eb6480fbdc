package api

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/hsi-patrimonio/inventory-api/internal/config"
	"github.com/hsi-patrimonio/inventory-api/internal/models"
	"github.com/hsi-patrimonio/inventory-api/internal/queue"
	"github.com/hsi-patrimonio/inventory-api/internal/service"
	apperrors "github.com/hsi-patrimonio/inventory-api/pkg/errors"
)

// ImportHandler handles the import pipeline endpoints
type ImportHandler struct {
	services *service.Services
	queue    *queue.ImportQueue
	cfg      *config.Config
	log      zerolog.Logger
}

// NewImportHandler creates a new ImportHandler
func NewImportHandler(services *service.Services, q *queue.ImportQueue, cfg *config.Config, log zerolog.Logger) *ImportHandler {
	return &ImportHandler{
		services: services,
		queue:    q,
		cfg:      cfg,
		log:      log.With().Str("handler", "import").Logger(),
	}
}

// Upload handles POST /v1/import/upload
// Stores the spreadsheet under a collision-free name and returns its path
func (h *ImportHandler) Upload(c *gin.Context) {
	file, header, err := c.Request.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "arquivo é obrigatório"})
		return
	}
	defer file.Close()

	if header.Size > h.cfg.Import.MaxUploadSize {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": fmt.Sprintf("arquivo muito grande, máximo %d MB", h.cfg.Import.MaxUploadSize/(1024*1024)),
		})
		return
	}

	ext := strings.ToLower(filepath.Ext(header.Filename))
	if ext != ".csv" && ext != ".txt" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "apenas arquivos .csv ou .txt são aceitos"})
		return
	}

	if err := os.MkdirAll(h.cfg.Import.UploadDir, 0755); err != nil {
		h.log.Error().Err(err).Msg("Failed to create upload directory")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "falha ao salvar arquivo"})
		return
	}

	base := strings.TrimSuffix(filepath.Base(header.Filename), ext)
	filename := fmt.Sprintf("%s-%s%s", base, uuid.New().String(), ext)
	filePath := filepath.Join(h.cfg.Import.UploadDir, filename)

	out, err := os.Create(filePath)
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to create upload file")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "falha ao salvar arquivo"})
		return
	}
	defer out.Close()

	if _, err := io.Copy(out, file); err != nil {
		os.Remove(filePath)
		h.log.Error().Err(err).Msg("Failed to write upload file")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "falha ao salvar arquivo"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"filePath":         filePath,
		"originalFilename": header.Filename,
		"size":             header.Size,
	})
}

// Detect handles POST /v1/import/detect
func (h *ImportHandler) Detect(c *gin.Context) {
	var req models.DetectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	resp, err := h.services.Import.Detect(c.Request.Context(), req)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Validate handles POST /v1/import/validate
func (h *ImportHandler) Validate(c *gin.Context) {
	var req models.ValidateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	report, err := h.services.Import.Validate(c.Request.Context(), req)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, report)
}

// Commit handles POST /v1/import/commit
func (h *ImportHandler) Commit(c *gin.Context) {
	var req models.CommitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	resp, err := h.services.Import.Commit(c.Request.Context(), req)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusAccepted, resp)
}

// GetJobStatus handles GET /v1/import/jobs/:id/status
func (h *ImportHandler) GetJobStatus(c *gin.Context) {
	resp, err := h.services.Import.GetJobStatus(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// StreamProgress handles GET /v1/import/jobs/:id/progress
// Streams progress events over SSE until the job reaches a terminal status
// or the client disconnects.
func (h *ImportHandler) StreamProgress(c *gin.Context) {
	ctx := c.Request.Context()
	importLogID := c.Param("id")

	status, err := h.services.Import.GetJobStatus(ctx, importLogID)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.Writer.Header().Set("Content-Type", "text/event-stream")
	c.Writer.Header().Set("Cache-Control", "no-cache")
	c.Writer.Header().Set("Connection", "keep-alive")

	// First event reflects the current persisted state so late subscribers
	// do not hang on already-finished jobs
	initial := queue.ProgressEvent{
		ImportLogID:   importLogID,
		Status:        string(status.ImportLog.Status),
		Progress:      status.ImportLog.Progress,
		ProcessedRows: status.ImportLog.SuccessRows + status.ImportLog.ErrorRows,
		TotalRows:     status.ImportLog.TotalRows,
	}
	writeSSE(c, initial)
	c.Writer.Flush()
	if status.ImportLog.Terminal() {
		return
	}

	sub := h.queue.SubscribeProgress(ctx, importLogID)
	defer sub.Close()
	events := sub.Channel()

	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-events:
			if !ok {
				return
			}
			var event queue.ProgressEvent
			if err := json.Unmarshal([]byte(msg.Payload), &event); err != nil {
				continue
			}
			writeSSE(c, event)
			c.Writer.Flush()
			if event.Status == string(models.ImportStatusCompleted) || event.Status == string(models.ImportStatusFailed) {
				return
			}
		}
	}
}

func writeSSE(c *gin.Context, event queue.ProgressEvent) {
	payload, err := json.Marshal(event)
	if err != nil {
		return
	}
	fmt.Fprintf(c.Writer, "data: %s\n\n", payload)
}

// respondError maps sentinel error classes to HTTP statuses
func (h *ImportHandler) respondError(c *gin.Context, err error) {
	switch {
	case apperrors.IsNotFound(err):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case apperrors.IsBadInput(err):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		h.log.Error().Err(err).Str("path", c.Request.URL.Path).Msg("Request failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "erro interno"})
	}
}
