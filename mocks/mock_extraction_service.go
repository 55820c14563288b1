package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"billrecon/internal/domain"
	"billrecon/internal/service"
)

// MockExtractionService is a mock implementation of service.ExtractionService.
type MockExtractionService struct {
	mock.Mock
}

func (m *MockExtractionService) Extract(ctx context.Context, input service.ExtractInput) (*service.ExtractOutput, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.ExtractOutput), args.Error(1)
}

func (m *MockExtractionService) Reconcile(ctx context.Context, pages []domain.Page) (*domain.ExtractionResult, error) {
	args := m.Called(ctx, pages)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ExtractionResult), args.Error(1)
}

func (m *MockExtractionService) ListRecent(ctx context.Context, limit int) ([]domain.ExtractionAudit, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.ExtractionAudit), args.Error(1)
}
