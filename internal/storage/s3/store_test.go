package s3

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"notaria/internal/config"
	"notaria/internal/domain"
)

func TestReadCapped(t *testing.T) {
	data, err := readCapped(strings.NewReader("abcd"), 4)
	require.NoError(t, err)
	assert.Equal(t, "abcd", string(data))

	_, err = readCapped(strings.NewReader("abcde"), 4)
	assert.ErrorIs(t, err, domain.ErrFileTooLarge)

	data, err = readCapped(strings.NewReader("sin límite"), 0)
	require.NoError(t, err)
	assert.Equal(t, "sin límite", string(data))
}

func TestNewStore_RequiresBucket(t *testing.T) {
	_, err := NewStore(context.Background(), &config.S3Config{Region: "us-east-1"})
	assert.Error(t, err)
}

func TestNewStore_SignedURLUsesBucketAndEndpoint(t *testing.T) {
	store, err := NewStore(context.Background(), &config.S3Config{
		Region:        "us-east-1",
		Bucket:        "expedientes",
		Endpoint:      "http://localhost:9000",
		AccessKey:     "minio",
		SecretKey:     "minio123",
		MaxFileSizeMB: 20,
	})
	require.NoError(t, err)
	assert.Equal(t, int64(20<<20), store.readLimit)

	url, err := store.SignedURL(context.Background(), "cases/x/a.pdf", 15*time.Minute)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(url, "http://localhost:9000/expedientes/cases/x/a.pdf?"), url)
}
