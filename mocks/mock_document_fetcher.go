package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"billrecon/internal/domain"
)

// MockDocumentFetcher is a mock implementation of port.DocumentFetcher.
type MockDocumentFetcher struct {
	mock.Mock
}

func (m *MockDocumentFetcher) Fetch(ctx context.Context, documentURL string) (*domain.Document, error) {
	args := m.Called(ctx, documentURL)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Document), args.Error(1)
}
