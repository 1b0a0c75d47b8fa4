package store

import (
	"context"

	"github.com/stretchr/testify/mock"

	"embed-gateway/internal/embeddings"
)

// MockStore is a mock implementation of Store and Searcher using testify/mock.
type MockStore struct {
	mock.Mock
}

func (m *MockStore) Upsert(ctx context.Context, rec Record) error {
	args := m.Called(ctx, rec)
	return args.Error(0)
}

func (m *MockStore) GetByIDs(ctx context.Context, ids []string) ([]Record, error) {
	args := m.Called(ctx, ids)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]Record), args.Error(1)
}

func (m *MockStore) DeleteByIDs(ctx context.Context, ids []string) error {
	args := m.Called(ctx, ids)
	return args.Error(0)
}

func (m *MockStore) Query(ctx context.Context, vector embeddings.Vector, opts QueryOptions) ([]Match, error) {
	args := m.Called(ctx, vector, opts)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]Match), args.Error(1)
}

func (m *MockStore) Close() error {
	args := m.Called()
	return args.Error(0)
}

// MockKVStore is a mock of the key-value variant: Store without Searcher.
type MockKVStore struct {
	mock.Mock
}

func (m *MockKVStore) Upsert(ctx context.Context, rec Record) error {
	args := m.Called(ctx, rec)
	return args.Error(0)
}

func (m *MockKVStore) GetByIDs(ctx context.Context, ids []string) ([]Record, error) {
	args := m.Called(ctx, ids)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]Record), args.Error(1)
}

func (m *MockKVStore) DeleteByIDs(ctx context.Context, ids []string) error {
	args := m.Called(ctx, ids)
	return args.Error(0)
}

func (m *MockKVStore) Close() error {
	args := m.Called()
	return args.Error(0)
}
