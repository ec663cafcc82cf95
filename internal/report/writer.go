package report

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// ErrInvalidName rejects artifact names that would escape the output directory
var ErrInvalidName = errors.New("invalid artifact name")

// ArtifactWriter persists rendered artifacts
type ArtifactWriter interface {
	WriteArtifact(ctx context.Context, name string, data []byte) (string, error)
}

// FileWriter writes artifacts under a directory. Each write goes to a temp
// file first and is renamed into place, so a reader never sees half a report.
type FileWriter struct {
	dir string
}

// NewFileWriter creates a writer rooted at dir
func NewFileWriter(dir string) *FileWriter {
	if dir == "" {
		dir = "."
	}
	return &FileWriter{dir: dir}
}

// Dir returns the output directory
func (w *FileWriter) Dir() string {
	return w.dir
}

// WriteArtifact writes data to dir/name and returns the absolute path
func (w *FileWriter) WriteArtifact(ctx context.Context, name string, data []byte) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if name == "" || name != filepath.Base(name) || strings.HasPrefix(name, ".") {
		return "", fmt.Errorf("%w: %q", ErrInvalidName, name)
	}

	if err := os.MkdirAll(w.dir, 0o755); err != nil {
		return "", fmt.Errorf("create output dir: %w", err)
	}

	tmp, err := os.CreateTemp(w.dir, "."+name+".tmp-*")
	if err != nil {
		return "", fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()
	cleanup := func() { _ = os.Remove(tmpName) }

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		cleanup()
		return "", fmt.Errorf("write %s: %w", name, err)
	}
	if err := tmp.Close(); err != nil {
		cleanup()
		return "", fmt.Errorf("close %s: %w", name, err)
	}
	if err := os.Chmod(tmpName, 0o644); err != nil {
		cleanup()
		return "", fmt.Errorf("chmod %s: %w", name, err)
	}

	final := filepath.Join(w.dir, name)
	if err := os.Rename(tmpName, final); err != nil {
		cleanup()
		return "", fmt.Errorf("rename %s: %w", name, err)
	}

	if abs, err := filepath.Abs(final); err == nil {
		return abs, nil
	}
	return final, nil
}
