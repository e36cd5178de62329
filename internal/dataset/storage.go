package dataset

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"statdesc/internal/errors"

	"github.com/google/uuid"
)

// FileStorage keeps uploaded source files until they have been read
type FileStorage interface {
	Store(ctx context.Context, r io.Reader, filename string) (string, error)
	Delete(ctx context.Context, path string) error
}

// LocalFileStorage implements FileStorage on the local filesystem
type LocalFileStorage struct {
	basePath    string
	maxFileSize int64
}

// NewLocalFileStorage stores files under basePath; maxFileSize <= 0 means
// no limit
func NewLocalFileStorage(basePath string, maxFileSize int64) *LocalFileStorage {
	if basePath == "" {
		basePath = filepath.Join(os.TempDir(), "statdesc-uploads")
	}
	return &LocalFileStorage{basePath: basePath, maxFileSize: maxFileSize}
}

// Store copies r to a uniquely named file keeping the original extension
func (s *LocalFileStorage) Store(ctx context.Context, r io.Reader, filename string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if err := os.MkdirAll(s.basePath, 0755); err != nil {
		return "", fmt.Errorf("failed to create storage directory: %w", err)
	}

	base := filepath.Base(filename)
	ext := strings.ToLower(filepath.Ext(base))
	stem := strings.TrimSuffix(base, filepath.Ext(base))
	uniqueName := fmt.Sprintf("%s_%s_%s%s", stem, time.Now().Format("20060102_150405"), uuid.New().String()[:8], ext)
	path := filepath.Join(s.basePath, uniqueName)

	dest, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("failed to create destination file: %w", err)
	}
	defer dest.Close()

	src := r
	if s.maxFileSize > 0 {
		src = io.LimitReader(r, s.maxFileSize+1)
	}
	n, err := io.Copy(dest, src)
	if err != nil {
		os.Remove(path)
		return "", fmt.Errorf("failed to copy file contents: %w", err)
	}
	if s.maxFileSize > 0 && n > s.maxFileSize {
		os.Remove(path)
		return "", errors.InvalidInput(fmt.Sprintf("file exceeds %d bytes", s.maxFileSize))
	}
	return path, nil
}

// Delete removes a stored file; a missing file is not an error
func (s *LocalFileStorage) Delete(ctx context.Context, path string) error {
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete file: %w", err)
	}
	return nil
}
