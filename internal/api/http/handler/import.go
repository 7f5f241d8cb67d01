package handler

import (
	"context"
	"io"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/pwledger/server/internal/logger"
	"github.com/pwledger/server/internal/model"
	"github.com/pwledger/server/internal/service"
)

// maxImportSize caps the uploaded CSV at 8 MiB.
const maxImportSize = 8 << 20

// ImportService ingests password manager CSV exports.
type ImportService interface {
	ImportCSV(ctx context.Context, ownerID uuid.UUID, filename string, r io.Reader, now time.Time) (service.ImportResult, error)
}

// Import handles CSV file uploads.
type Import struct {
	service        ImportService
	contextManager model.ContextManager
	logger         *logger.Logger
}

// NewImport creates a new Import handler.
func NewImport(service ImportService, contextManager model.ContextManager, logger *logger.Logger) *Import {
	return &Import{
		service:        service,
		contextManager: contextManager,
		logger:         logger,
	}
}

type importResponse struct {
	Imported int `json:"imported"`
	Skipped  int `json:"skipped"`
}

// Upload accepts a multipart form with a "file" part containing a CSV export
// and registers every distinct domain found in its url column.
func (h *Import) Upload(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.contextManager.GetUserIDFromContext(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, errorResponse{Error: "unauthenticated"})
		return
	}

	if err := r.ParseMultipartForm(maxImportSize); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid multipart form"})
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "file part is required"})
		return
	}
	defer file.Close()

	result, err := h.service.ImportCSV(r.Context(), userID, header.Filename, file, time.Now().UTC())
	if err != nil {
		if !model.IsValidation(err) {
			h.logger.Error("import failed", "user_id", userID, "filename", header.Filename, "error", err.Error())
		}
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, importResponse{
		Imported: result.Imported,
		Skipped:  result.Skipped,
	})
}
