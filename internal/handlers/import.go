package handlers

import (
	"errors"
	"io"
	"net/http"

	"github.com/evoluciona-hipotecaria/apiserver/internal/importer"
	"github.com/evoluciona-hipotecaria/apiserver/internal/services"
	"github.com/evoluciona-hipotecaria/apiserver/internal/store"
	"github.com/evoluciona-hipotecaria/apiserver/types"
	"github.com/go-chi/chi/v5"
)

const formFieldFile = "file"

// ImportHandler exposes the CSV import pipeline over HTTP. The whole surface
// is admin-only.
type ImportHandler struct {
	importService *services.ImportService
	maxFileSize   int64
}

// NewImportHandler constructs a handler with the provided dependencies.
func NewImportHandler(importService *services.ImportService, maxFileSize int64) *ImportHandler {
	return &ImportHandler{
		importService: importService,
		maxFileSize:   maxFileSize,
	}
}

// ImportRouter registers import routes on the given router.
func ImportRouter(
	r chi.Router,
	importService *services.ImportService,
	maxFileSize int64,
	authMiddleware func(http.Handler) http.Handler,
) {
	handler := NewImportHandler(importService, maxFileSize)
	adminOnly := RequireRole(types.RoleAdmin)

	r.With(authMiddleware, adminOnly).Post("/upload", handler.Upload)
	r.With(authMiddleware, adminOnly).Get("/logs", handler.Logs)
	r.With(authMiddleware, adminOnly).Get("/my-logs", handler.MyLogs)
}

// Upload receives the CSV as a multipart form and runs the import pipeline.
func (h *ImportHandler) Upload(w http.ResponseWriter, r *http.Request) {
	adminID, err := userIDFromContext(r.Context())
	if err != nil {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	// Cap the request body before multipart parsing; a rejected oversized
	// upload must not be buffered in full.
	r.Body = http.MaxBytesReader(w, r.Body, h.maxFileSize+1<<20)

	file, header, err := r.FormFile(formFieldFile)
	if err != nil {
		writeError(w, http.StatusBadRequest, "no se ha proporcionado ningún archivo")
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		writeError(w, http.StatusBadRequest, "no se pudo leer el archivo")
		return
	}

	result, err := h.importService.Process(r.Context(), data, header.Filename, adminID)
	if err != nil {
		switch {
		case importer.IsValidationError(err):
			writeError(w, http.StatusBadRequest, err.Error())
		case errors.Is(err, store.ErrImportInProgress):
			writeError(w, http.StatusConflict, err.Error())
		default:
			writeError(w, http.StatusInternalServerError, "la importación falló: "+err.Error())
		}
		return
	}

	writeJSON(w, http.StatusOK, result)
}

// Logs returns the audit trail of every import.
func (h *ImportHandler) Logs(w http.ResponseWriter, r *http.Request) {
	logs, err := h.importService.Logs(r.Context(), "")
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list import logs")
		return
	}
	writeJSON(w, http.StatusOK, logs)
}

// MyLogs returns the audit trail of the caller's own imports.
func (h *ImportHandler) MyLogs(w http.ResponseWriter, r *http.Request) {
	adminID, err := userIDFromContext(r.Context())
	if err != nil {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	logs, err := h.importService.Logs(r.Context(), adminID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list import logs")
		return
	}
	writeJSON(w, http.StatusOK, logs)
}
