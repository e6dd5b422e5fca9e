package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"recipe-importer/internal/core/web"
)

// MockFetcher is a mock implementation of web.Fetcher.
type MockFetcher struct {
	mock.Mock
}

func (m *MockFetcher) Fetch(ctx context.Context, url string) (*web.Response, error) {
	args := m.Called(ctx, url)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*web.Response), args.Error(1)
}
