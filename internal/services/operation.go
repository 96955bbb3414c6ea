package services

import (
	"context"

	"github.com/evoluciona-hipotecaria/apiserver/types"
)

// OperationRepository defines the read side of operation persistence used by
// the dashboards.
type OperationRepository interface {
	ListByUserID(ctx context.Context, userID string) ([]types.Operation, error)
	CountByUserID(ctx context.Context, userID string) (int, error)
}

// OperationService encapsulates operation read use-cases.
type OperationService struct {
	repo OperationRepository
}

func NewOperationService(repo OperationRepository) *OperationService {
	return &OperationService{repo: repo}
}

// ListByUserID returns a user's operations ordered by escritura date,
// newest first.
func (s *OperationService) ListByUserID(ctx context.Context, userID string) ([]types.Operation, error) {
	return s.repo.ListByUserID(ctx, userID)
}

func (s *OperationService) CountByUserID(ctx context.Context, userID string) (int, error) {
	return s.repo.CountByUserID(ctx, userID)
}
