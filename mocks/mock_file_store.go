package mocks

import (
	"context"
	"io"
	"time"

	"github.com/stretchr/testify/mock"

	"notaria/internal/port"
)

// MockFileStore is a mock implementation of port.FileStore. Put records the
// body as a string so expectations can match on content.
type MockFileStore struct {
	mock.Mock
}

func (m *MockFileStore) Put(ctx context.Context, key string, body io.Reader, contentType string, size int64) (*port.StoredFile, error) {
	raw, err := io.ReadAll(body)
	if err != nil {
		return nil, err
	}
	args := m.Called(ctx, key, string(raw), contentType, size)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*port.StoredFile), args.Error(1)
}

func (m *MockFileStore) Get(ctx context.Context, key string) ([]byte, error) {
	args := m.Called(ctx, key)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]byte), args.Error(1)
}

func (m *MockFileStore) Remove(ctx context.Context, key string) error {
	return m.Called(ctx, key).Error(0)
}

func (m *MockFileStore) SignedURL(ctx context.Context, key string, ttl time.Duration) (string, error) {
	args := m.Called(ctx, key, ttl)
	return args.String(0), args.Error(1)
}
