package tracker

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"studioload/internal/logging"
)

// FileSource reads a tracker export from disk. The format follows the file
// extension: .json, or .yaml/.yml.
type FileSource struct {
	path   string
	logger *slog.Logger
	now    func() time.Time
}

// FileOption customizes a FileSource.
type FileOption func(*FileSource)

// WithFileLogger sets the logger used for decode warnings.
func WithFileLogger(logger *slog.Logger) FileOption {
	return func(s *FileSource) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// NewFileSource returns a source reading path on every Fetch.
func NewFileSource(path string, opts ...FileOption) *FileSource {
	s := &FileSource{path: path, logger: logging.NewNop(), now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Fetch reads and decodes the export.
func (s *FileSource) Fetch(ctx context.Context) (Snapshot, error) {
	if err := ctx.Err(); err != nil {
		return Snapshot{}, err
	}
	data, err := os.ReadFile(s.path)
	if err != nil {
		return Snapshot{}, fmt.Errorf("read tracker export: %w", err)
	}
	exp, err := decodeExport(s.path, data)
	if err != nil {
		return Snapshot{}, err
	}
	snap := exp.materialize(s.logger)
	snap.FetchedAt = s.now()
	s.logger.Debug("tracker export loaded",
		logging.String("path", s.path),
		logging.Int("tasks", len(snap.Tasks)),
		logging.Int("team", len(snap.Team)),
		logging.Int("issues", len(snap.Issues)),
	)
	return snap, nil
}

func decodeExport(path string, data []byte) (export, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		exp, err := decodeJSONExport(data)
		if err != nil {
			return export{}, fmt.Errorf("decode json export: %w", err)
		}
		return exp, nil
	case ".yaml", ".yml":
		exp, err := decodeYAMLExport(data)
		if err != nil {
			return export{}, fmt.Errorf("decode yaml export: %w", err)
		}
		return exp, nil
	default:
		return export{}, fmt.Errorf("%w: %q", ErrUnsupportedFormat, filepath.Ext(path))
	}
}
