package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"
)

// MockRecognizer is a mock implementation of ocr.Recognizer.
type MockRecognizer struct {
	mock.Mock
}

func (m *MockRecognizer) RecognizeText(ctx context.Context, image []byte) []string {
	args := m.Called(ctx, image)
	if args.Get(0) == nil {
		return nil
	}
	return args.Get(0).([]string)
}
