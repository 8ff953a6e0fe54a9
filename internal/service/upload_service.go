package service

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"path"
	"strings"

	"github.com/amterp/memmap/internal/config"
	memerr "github.com/amterp/memmap/internal/errors"
	"github.com/amterp/memmap/internal/id"
	"github.com/amterp/memmap/internal/logging"
	"github.com/amterp/memmap/internal/store"
)

// Upload size limits.
const (
	MaxImageBytes      = 10 << 20
	MaxTrajectoryBytes = 20 << 20
)

// UploadResult describes a stored upload.
type UploadResult struct {
	Filename string `json:"filename"`
	Path     string `json:"path"` // relative to the data dir, e.g. uploads/images/<file>
}

// UploadService stores image and trajectory attachments.
type UploadService struct {
	store   store.UploadStore
	logger  logging.Logger
	newName func(ext string) string
}

// NewUploadService creates a new upload service.
func NewUploadService(uploadStore store.UploadStore, logger logging.Logger) *UploadService {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &UploadService{store: uploadStore, logger: logger, newName: id.UploadName}
}

// SaveImage decodes base64 image data, optionally given as a data URL,
// and stores it.
func (s *UploadService) SaveImage(ctx context.Context, data, ext string) (*UploadResult, error) {
	if _, payload, ok := strings.Cut(data, ","); ok && strings.HasPrefix(data, "data:") {
		data = payload
	}
	data = strings.TrimSpace(data)
	if data == "" {
		return nil, memerr.InvalidField("data", "image data is required")
	}
	if base64.StdEncoding.DecodedLen(len(data)) > MaxImageBytes+2 {
		return nil, memerr.InvalidField("data", fmt.Sprintf("image exceeds %d bytes", MaxImageBytes))
	}

	decoded, err := base64.StdEncoding.DecodeString(data)
	if err != nil {
		return nil, memerr.InvalidField("data", "not valid base64")
	}
	if len(decoded) > MaxImageBytes {
		return nil, memerr.InvalidField("data", fmt.Sprintf("image exceeds %d bytes", MaxImageBytes))
	}

	return s.write(ctx, config.UploadImage, sanitizeExt(ext, "png"), decoded)
}

// SaveTrajectory stores a JSON trajectory document, pretty-printed. The
// document is treated as opaque.
func (s *UploadService) SaveTrajectory(ctx context.Context, data json.RawMessage, ext string) (*UploadResult, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		data = json.RawMessage("{}")
	}
	if len(data) > MaxTrajectoryBytes {
		return nil, memerr.InvalidField("data", fmt.Sprintf("trajectory exceeds %d bytes", MaxTrajectoryBytes))
	}

	var pretty bytes.Buffer
	if err := json.Indent(&pretty, data, "", "  "); err != nil {
		return nil, memerr.InvalidField("data", "not valid JSON")
	}

	return s.write(ctx, config.UploadTrajectory, sanitizeExt(ext, "json"), pretty.Bytes())
}

func (s *UploadService) write(ctx context.Context, kind, ext string, data []byte) (*UploadResult, error) {
	name := s.newName(ext)
	rel, err := s.store.Write(ctx, kind, name, data)
	if err != nil {
		return nil, err
	}
	s.logger.Info("upload saved", "kind", kind, "path", rel, "bytes", len(data))
	return &UploadResult{Filename: path.Base(rel), Path: rel}, nil
}

// sanitizeExt keeps the ASCII letters and digits of ext, lowercased and
// capped at 8 characters. Empty results fall back to def.
func sanitizeExt(ext, def string) string {
	ext = strings.TrimPrefix(strings.TrimSpace(ext), ".")
	var b strings.Builder
	for _, r := range strings.ToLower(ext) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
			if b.Len() == 8 {
				break
			}
		}
	}
	if b.Len() == 0 {
		return def
	}
	return b.String()
}
