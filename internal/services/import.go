package services

import (
	"context"

	"github.com/evoluciona-hipotecaria/apiserver/internal/importer"
	"github.com/evoluciona-hipotecaria/apiserver/types"
)

// ImportLogRepository defines the read side of the audit log.
type ImportLogRepository interface {
	List(ctx context.Context, adminID string) ([]types.ImportLog, error)
}

// ImportService exposes the import pipeline and its audit trail.
type ImportService struct {
	importer *importer.Importer
	logs     ImportLogRepository
}

func NewImportService(imp *importer.Importer, logs ImportLogRepository) *ImportService {
	return &ImportService{importer: imp, logs: logs}
}

// Process runs one CSV import on behalf of an admin.
func (s *ImportService) Process(ctx context.Context, file []byte, fileName, adminID string) (types.ImportResult, error) {
	return s.importer.Process(ctx, file, fileName, adminID)
}

// Logs lists import attempts, newest first, optionally scoped to one admin.
func (s *ImportService) Logs(ctx context.Context, adminID string) ([]types.ImportLog, error) {
	return s.logs.List(ctx, adminID)
}
