package snapshots

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/dmitrijs2005/gatekeeper/internal/common"
)

// FileRepository stores each snapshot as <dir>/<key><ext>. Writes go to a
// temporary file in the same directory which is then renamed over the
// target, so a crash never leaves a half-written snapshot behind.
type FileRepository struct {
	dir string
	ext string
}

func NewFileRepository(dir, ext string) *FileRepository {
	return &FileRepository{dir: dir, ext: ext}
}

func (r *FileRepository) path(key string) string {
	return filepath.Join(r.dir, key+r.ext)
}

func (r *FileRepository) Get(_ context.Context, key string) ([]byte, error) {
	b, err := os.ReadFile(r.path(key))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("read snapshot %s: %w", key, err)
	}
	return b, nil
}

func (r *FileRepository) Set(_ context.Context, key string, value []byte) error {
	tmp, err := os.CreateTemp(r.dir, key+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp for %s: %w", key, err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(value); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return fmt.Errorf("write snapshot %s: %w", key, err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("close snapshot %s: %w", key, err)
	}
	if err := os.Rename(tmpName, r.path(key)); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("rename snapshot %s: %w", key, err)
	}
	return nil
}
