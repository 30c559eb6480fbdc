package api_test

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/hsi-patrimonio/inventory-api/internal/api"
	"github.com/hsi-patrimonio/inventory-api/internal/config"
	"github.com/hsi-patrimonio/inventory-api/internal/mocks"
	"github.com/hsi-patrimonio/inventory-api/internal/models"
	"github.com/hsi-patrimonio/inventory-api/internal/service"
	apperrors "github.com/hsi-patrimonio/inventory-api/pkg/errors"
)

func testRouter(t *testing.T, importSvc service.ImportService) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	cfg := &config.Config{
		Import: config.ImportConfig{
			MaxUploadSize: 1024 * 1024,
			UploadDir:     t.TempDir(),
		},
	}
	handler := api.NewImportHandler(&service.Services{Import: importSvc}, nil, cfg, zerolog.Nop())

	router := gin.New()
	router.POST("/v1/import/upload", handler.Upload)
	router.POST("/v1/import/detect", handler.Detect)
	router.POST("/v1/import/validate", handler.Validate)
	router.POST("/v1/import/commit", handler.Commit)
	router.GET("/v1/import/jobs/:id/status", handler.GetJobStatus)
	return router
}

func multipartUpload(t *testing.T, filename, content string) (*bytes.Buffer, string) {
	t.Helper()
	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	part, err := writer.CreateFormFile("file", filename)
	if err != nil {
		t.Fatalf("form file: %v", err)
	}
	part.Write([]byte(content))
	writer.Close()
	return &body, writer.FormDataContentType()
}

func TestUploadAcceptsCSV(t *testing.T) {
	router := testRouter(t, &mocks.MockImportService{})

	body, contentType := multipartUpload(t, "inventario.csv", "Nome;Código\nMouse;A-1\n")
	req := httptest.NewRequest(http.MethodPost, "/v1/import/upload", body)
	req.Header.Set("Content-Type", contentType)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusCreated {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}

	var resp map[string]interface{}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	path, _ := resp["filePath"].(string)
	if path == "" {
		t.Fatal("no filePath returned")
	}
	if !strings.Contains(path, "inventario-") || !strings.HasSuffix(path, ".csv") {
		t.Errorf("unexpected stored name: %q", path)
	}
}

func TestUploadRejectsWrongExtension(t *testing.T) {
	router := testRouter(t, &mocks.MockImportService{})

	body, contentType := multipartUpload(t, "planilha.xlsx", "binary")
	req := httptest.NewRequest(http.MethodPost, "/v1/import/upload", body)
	req.Header.Set("Content-Type", contentType)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", w.Code)
	}
}

func TestUploadRejectsMissingFile(t *testing.T) {
	router := testRouter(t, &mocks.MockImportService{})

	req := httptest.NewRequest(http.MethodPost, "/v1/import/upload", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", w.Code)
	}
}

func TestDetectEndpoint(t *testing.T) {
	svc := &mocks.MockImportService{
		DetectFunc: func(ctx context.Context, req models.DetectRequest) (*models.DetectResponse, error) {
			if req.FilePath != "/tmp/f.csv" {
				t.Errorf("filePath = %q", req.FilePath)
			}
			return &models.DetectResponse{
				Encoding:  "utf-8",
				Delimiter: ";",
				FileType:  models.FileTypeHSIInventario,
			}, nil
		},
	}
	router := testRouter(t, svc)

	req := httptest.NewRequest(http.MethodPost, "/v1/import/detect",
		strings.NewReader(`{"filePath":"/tmp/f.csv"}`))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}
	var resp models.DetectResponse
	json.Unmarshal(w.Body.Bytes(), &resp)
	if resp.FileType != models.FileTypeHSIInventario {
		t.Errorf("fileType = %q", resp.FileType)
	}
}

func TestDetectEndpointRequiresFilePath(t *testing.T) {
	router := testRouter(t, &mocks.MockImportService{})

	req := httptest.NewRequest(http.MethodPost, "/v1/import/detect", strings.NewReader(`{}`))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", w.Code)
	}
}

func TestDetectEndpointMapsNotFound(t *testing.T) {
	svc := &mocks.MockImportService{
		DetectFunc: func(ctx context.Context, req models.DetectRequest) (*models.DetectResponse, error) {
			return nil, apperrors.NotFound("arquivo " + req.FilePath)
		},
	}
	router := testRouter(t, svc)

	req := httptest.NewRequest(http.MethodPost, "/v1/import/detect",
		strings.NewReader(`{"filePath":"/tmp/missing.csv"}`))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", w.Code)
	}
}

func TestCommitEndpoint(t *testing.T) {
	svc := &mocks.MockImportService{
		CommitFunc: func(ctx context.Context, req models.CommitRequest) (*models.CommitResponse, error) {
			return &models.CommitResponse{
				JobID:       "job-9",
				ImportLogID: "log-9",
				Status:      string(models.ImportStatusPending),
			}, nil
		},
	}
	router := testRouter(t, svc)

	payload := `{"filePath":"/tmp/f.csv","fileType":"hsi-inventario","userId":"user-1"}`
	req := httptest.NewRequest(http.MethodPost, "/v1/import/commit", strings.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusAccepted {
		t.Fatalf("status = %d, want 202, body = %s", w.Code, w.Body.String())
	}
	var resp models.CommitResponse
	json.Unmarshal(w.Body.Bytes(), &resp)
	if resp.JobID != "job-9" || resp.ImportLogID != "log-9" {
		t.Errorf("response = %+v", resp)
	}
}

func TestJobStatusEndpoint(t *testing.T) {
	svc := &mocks.MockImportService{
		StatusFunc: func(ctx context.Context, id string) (*models.JobStatusResponse, error) {
			if id == "log-1" {
				return &models.JobStatusResponse{
					ImportLog: &models.ImportLog{ID: "log-1", Status: models.ImportStatusCompleted, Progress: 100},
				}, nil
			}
			return nil, apperrors.NotFound("import log " + id)
		},
	}
	router := testRouter(t, svc)

	req := httptest.NewRequest(http.MethodGet, "/v1/import/jobs/log-1/status", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}

	req = httptest.NewRequest(http.MethodGet, "/v1/import/jobs/ghost/status", nil)
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", w.Code)
	}
}
