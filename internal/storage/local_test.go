package storage_test

import (
	"context"
	"io"
	"strings"
	"testing"

	"rentnest-backend/internal/storage"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalStorage(t *testing.T) {
	ctx := context.Background()
	s, err := storage.NewLocalStorage("http://localhost:8080/", t.TempDir(), 16)
	require.NoError(t, err)

	key := s.NewKey("user-1", "passport.PDF")
	assert.True(t, strings.HasPrefix(key, "kyc/user-1/"))
	assert.True(t, strings.HasSuffix(key, ".pdf"))
	assert.Equal(t, "http://localhost:8080/api/v1/uploads/"+key, s.UploadURL(key))

	t.Run("save and read back", func(t *testing.T) {
		n, err := s.Save(ctx, key, strings.NewReader("scan-bytes"))
		require.NoError(t, err)
		assert.Equal(t, int64(10), n)

		ok, size, err := s.Exists(ctx, key)
		require.NoError(t, err)
		assert.True(t, ok)
		assert.Equal(t, int64(10), size)

		rc, err := s.Open(ctx, key)
		require.NoError(t, err)
		defer rc.Close()
		b, err := io.ReadAll(rc)
		require.NoError(t, err)
		assert.Equal(t, "scan-bytes", string(b))
	})

	t.Run("too large", func(t *testing.T) {
		_, err := s.Save(ctx, "kyc/user-1/big.pdf", strings.NewReader(strings.Repeat("x", 17)))
		assert.ErrorIs(t, err, storage.ErrFileTooLarge)
		ok, _, err := s.Exists(ctx, "kyc/user-1/big.pdf")
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("path traversal rejected", func(t *testing.T) {
		_, err := s.Save(ctx, "../escape.txt", strings.NewReader("x"))
		assert.ErrorIs(t, err, storage.ErrInvalidKey)
		_, err = s.Open(ctx, "kyc/../../etc/passwd")
		assert.ErrorIs(t, err, storage.ErrInvalidKey)
	})

	t.Run("delete", func(t *testing.T) {
		require.NoError(t, s.Delete(ctx, key))
		_, err := s.Open(ctx, key)
		assert.ErrorIs(t, err, storage.ErrFileNotFound)
		assert.NoError(t, s.Delete(ctx, key))
	})
}
