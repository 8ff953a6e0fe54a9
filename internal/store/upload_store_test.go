package store

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/amterp/memmap/internal/config"
)

func TestFileUploadStore_Write(t *testing.T) {
	dir := t.TempDir()
	s := NewUploadStore(config.NewPaths(dir))

	rel, err := s.Write(context.Background(), config.UploadImage, "photo.png", []byte("png-bytes"))
	require.NoError(t, err)
	assert.Equal(t, "uploads/images/photo.png", rel)

	data, err := os.ReadFile(filepath.Join(dir, "uploads", "images", "photo.png"))
	require.NoError(t, err)
	assert.Equal(t, "png-bytes", string(data))
}

func TestFileUploadStore_RejectsBadInput(t *testing.T) {
	s := NewUploadStore(config.NewPaths(t.TempDir()))
	ctx := context.Background()

	_, err := s.Write(ctx, "videos", "a.mp4", nil)
	assert.Error(t, err)

	for _, name := range []string{"", "..", "../escape.png", `a\b.png`} {
		_, err := s.Write(ctx, config.UploadTrajectory, name, nil)
		assert.Error(t, err, "name %q", name)
	}
}
