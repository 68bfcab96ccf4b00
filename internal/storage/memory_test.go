package storage

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStorage_UploadLifecycle(t *testing.T) {
	ctx := context.Background()
	var fs FileStorage = NewMemoryStorage("http://localhost:8080/files")

	exists, err := fs.ObjectExists(ctx, "profile-pictures/u1/a.png")
	require.NoError(t, err)
	assert.False(t, exists)

	putURL, err := fs.GeneratePresignedUploadURL(ctx, "profile-pictures/u1/a.png", "image/png", 0)
	require.NoError(t, err)
	assert.Contains(t, putURL, "op=put")
	assert.Contains(t, putURL, "expires=15m0s")

	exists, err = fs.ObjectExists(ctx, "profile-pictures/u1/a.png")
	require.NoError(t, err)
	assert.True(t, exists)

	getURL, err := fs.GeneratePresignedDownloadURL(ctx, "profile-pictures/u1/a.png", time.Minute)
	require.NoError(t, err)
	assert.Contains(t, getURL, "op=get")

	require.NoError(t, fs.DeleteObject(ctx, "profile-pictures/u1/a.png"))
	exists, err = fs.ObjectExists(ctx, "profile-pictures/u1/a.png")
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestMemoryStorage_RejectsEmptyKey(t *testing.T) {
	fs := NewMemoryStorage("http://x")
	_, err := fs.GeneratePresignedUploadURL(context.Background(), "", "image/png", time.Minute)
	assert.Error(t, err)
}
