package handlers

import (
	"net/http"

	"github.com/evoluciona-hipotecaria/apiserver/internal/services"
	"github.com/go-chi/chi/v5"
)

// OperationHandler serves the seller dashboard reads.
type OperationHandler struct {
	operationService *services.OperationService
}

// NewOperationHandler constructs a handler with the provided dependencies.
func NewOperationHandler(operationService *services.OperationService) *OperationHandler {
	return &OperationHandler{operationService: operationService}
}

// OperationRouter registers operation routes on the given router.
func OperationRouter(
	r chi.Router,
	operationService *services.OperationService,
	authMiddleware func(http.Handler) http.Handler,
) {
	handler := NewOperationHandler(operationService)

	r.With(authMiddleware).Get("/my", handler.MyOperations)
	r.With(authMiddleware).Get("/my/count", handler.MyOperationsCount)
}

// MyOperations returns the operations owned by the caller, newest escritura
// first.
func (h *OperationHandler) MyOperations(w http.ResponseWriter, r *http.Request) {
	userID, err := userIDFromContext(r.Context())
	if err != nil {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	ops, err := h.operationService.ListByUserID(r.Context(), userID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list operations")
		return
	}
	writeJSON(w, http.StatusOK, ops)
}

// MyOperationsCount returns how many operations the caller owns.
func (h *OperationHandler) MyOperationsCount(w http.ResponseWriter, r *http.Request) {
	userID, err := userIDFromContext(r.Context())
	if err != nil {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	count, err := h.operationService.CountByUserID(r.Context(), userID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to count operations")
		return
	}
	writeJSON(w, http.StatusOK, map[string]int{"count": count})
}
