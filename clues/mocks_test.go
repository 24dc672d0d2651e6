package clues

import (
	"context"

	"github.com/stretchr/testify/mock"

	"trivia/jservice"
)

type MockSource struct {
	mock.Mock
}

func (m *MockSource) Random(ctx context.Context, count int) ([]jservice.Record, error) {
	args := m.Called(ctx, count)
	return args.Get(0).([]jservice.Record), args.Error(1)
}

func (m *MockSource) CluesByCategory(ctx context.Context, categoryID, offset int) ([]jservice.Record, error) {
	args := m.Called(ctx, categoryID, offset)
	return args.Get(0).([]jservice.Record), args.Error(1)
}

func (m *MockSource) Categories(ctx context.Context, count, offset int) ([]jservice.Category, error) {
	args := m.Called(ctx, count, offset)
	return args.Get(0).([]jservice.Category), args.Error(1)
}
