package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"recipe-importer/internal/core/classify"
)

// MockModel is a mock implementation of classify.Model.
type MockModel struct {
	mock.Mock
}

func (m *MockModel) Classify(ctx context.Context, text string) (classify.Label, float64, error) {
	args := m.Called(ctx, text)
	return args.Get(0).(classify.Label), args.Get(1).(float64), args.Error(2)
}
