package service

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	memerr "github.com/amterp/memmap/internal/errors"
	"github.com/amterp/memmap/testutil"
)

func newTestUploadService(t *testing.T) (*UploadService, *testutil.Env) {
	t.Helper()
	env := testutil.NewEnv(t, testutil.TestPalette(t))
	svc := NewUploadService(env.Uploads, nil)
	svc.newName = func(ext string) string { return "fixed." + ext }
	return svc, env
}

func TestUploadService_SaveImage(t *testing.T) {
	svc, env := newTestUploadService(t)
	raw := []byte{0x89, 'P', 'N', 'G'}
	encoded := base64.StdEncoding.EncodeToString(raw)

	res, err := svc.SaveImage(context.Background(), "data:image/png;base64,"+encoded, "PNG")
	require.NoError(t, err)
	assert.Equal(t, "fixed.png", res.Filename)
	assert.Equal(t, "uploads/images/fixed.png", res.Path)

	data, err := os.ReadFile(filepath.Join(env.Paths.UploadDir("images"), "fixed.png"))
	require.NoError(t, err)
	assert.Equal(t, raw, data)

	// Plain base64 works too.
	_, err = svc.SaveImage(context.Background(), encoded, "")
	require.NoError(t, err)
}

func TestUploadService_SaveImageRejects(t *testing.T) {
	svc, _ := newTestUploadService(t)
	ctx := context.Background()

	_, err := svc.SaveImage(ctx, "", "png")
	assert.True(t, memerr.IsValidationError(err))

	_, err = svc.SaveImage(ctx, "!!!not base64!!!", "png")
	assert.True(t, memerr.IsValidationError(err))

	huge := strings.Repeat("A", (MaxImageBytes/3+10)*4)
	_, err = svc.SaveImage(ctx, huge, "png")
	assert.True(t, memerr.IsValidationError(err))
}

func TestUploadService_SaveTrajectory(t *testing.T) {
	svc, env := newTestUploadService(t)

	res, err := svc.SaveTrajectory(context.Background(),
		json.RawMessage(`{"type":"LineString","coordinates":[[103.77,1.29],[103.78,1.30]]}`), "geojson")
	require.NoError(t, err)
	assert.Equal(t, "uploads/trajectories/fixed.geojson", res.Path)

	data, err := os.ReadFile(filepath.Join(env.Paths.UploadDir("trajectories"), "fixed.geojson"))
	require.NoError(t, err)
	assert.Contains(t, string(data), "\n  \"type\": \"LineString\"")

	_, err = svc.SaveTrajectory(context.Background(), json.RawMessage(`{broken`), "")
	assert.True(t, memerr.IsValidationError(err))
}

func TestUploadService_EmptyTrajectory(t *testing.T) {
	svc, _ := newTestUploadService(t)

	res, err := svc.SaveTrajectory(context.Background(), nil, "")
	require.NoError(t, err)
	assert.Equal(t, "fixed.json", res.Filename)
}

func TestSanitizeExt(t *testing.T) {
	tests := []struct {
		input, def, want string
	}{
		{"png", "png", "png"},
		{".JPG", "png", "jpg"},
		{"../../etc", "png", "etc"},
		{"", "json", "json"},
		{"???", "json", "json"},
		{"verylongextension", "png", "verylong"},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.want, sanitizeExt(tt.input, tt.def))
		})
	}
}
