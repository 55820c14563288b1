package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"billrecon/internal/domain"
)

// MockExtractionAuditRepo is a mock implementation of port.ExtractionAuditRepository.
type MockExtractionAuditRepo struct {
	mock.Mock
}

func (m *MockExtractionAuditRepo) Create(ctx context.Context, entry *domain.ExtractionAudit) error {
	args := m.Called(ctx, entry)
	return args.Error(0)
}

func (m *MockExtractionAuditRepo) ListRecent(ctx context.Context, limit int) ([]domain.ExtractionAudit, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.ExtractionAudit), args.Error(1)
}

func (m *MockExtractionAuditRepo) Ping(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}
