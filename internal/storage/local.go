package storage

import (
	"GoDrop/config"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/google/uuid"
)

// LocalStorage keeps uploaded bytes on the local filesystem under a fixed
// root directory.
type LocalStorage struct {
	rootDir string
}

// NewLocalStorage creates the root directory if needed.
func NewLocalStorage(rootDir string) (*LocalStorage, error) {
	abs, err := filepath.Abs(rootDir)
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(abs, 0o755); err != nil {
		return nil, fmt.Errorf("create storage dir: %w", err)
	}
	return &LocalStorage{rootDir: abs}, nil
}

// Save streams source to disk in bounded chunks. The partial file is
// removed as soon as the size limit is exceeded or any write fails.
func (s *LocalStorage) Save(ctx context.Context, source io.Reader, originalName string, maxBytes int64) (StoredFile, error) {
	storedName := uuid.NewString() + filepath.Ext(originalName)
	absPath := s.ResolvePath(storedName)

	out, err := os.Create(absPath)
	if err != nil {
		return StoredFile{}, err
	}

	var sizeBytes int64
	buf := make([]byte, config.SaveChunkBytes)
	for {
		if err := ctx.Err(); err != nil {
			return s.abortSave(out, absPath, err)
		}
		n, readErr := source.Read(buf)
		if n > 0 {
			sizeBytes += int64(n)
			if sizeBytes > maxBytes {
				return s.abortSave(out, absPath, ErrFileTooLarge)
			}
			if _, writeErr := out.Write(buf[:n]); writeErr != nil {
				return s.abortSave(out, absPath, writeErr)
			}
		}
		if readErr == io.EOF {
			break
		}
		if readErr != nil {
			return s.abortSave(out, absPath, readErr)
		}
	}
	if err := out.Close(); err != nil {
		_ = os.Remove(absPath)
		return StoredFile{}, err
	}

	return StoredFile{
		StoredName:   storedName,
		RelativePath: storedName,
		SizeBytes:    sizeBytes,
	}, nil
}

func (s *LocalStorage) abortSave(out *os.File, absPath string, cause error) (StoredFile, error) {
	_ = out.Close()
	_ = os.Remove(absPath)
	return StoredFile{}, cause
}

// Delete removes the stored file.
func (s *LocalStorage) Delete(ctx context.Context, relativePath string) error {
	absPath := s.ResolvePath(relativePath)
	if _, err := os.Stat(absPath); os.IsNotExist(err) {
		return ErrNotFound
	}
	return os.Remove(absPath)
}

// Open returns a reader over the stored file and its size.
func (s *LocalStorage) Open(ctx context.Context, relativePath string) (io.ReadCloser, int64, error) {
	absPath := s.ResolvePath(relativePath)
	info, err := os.Stat(absPath)
	if os.IsNotExist(err) {
		return nil, 0, ErrNotFound
	}
	if err != nil {
		return nil, 0, err
	}
	f, err := os.Open(absPath)
	if err != nil {
		return nil, 0, err
	}
	return f, info.Size(), nil
}

// ResolvePath joins the relative path against the storage root. Relative
// paths are generated stored names, so no traversal element can appear.
func (s *LocalStorage) ResolvePath(relativePath string) string {
	return filepath.Join(s.rootDir, relativePath)
}
