// Package repomanager selects and prepares the snapshot backend named in the
// configuration: it opens connections, runs schema migrations and hands out
// the snapshots.Repository used by the gateway's services.
package repomanager

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/gatekeeper/internal/common"
	"github.com/dmitrijs2005/gatekeeper/internal/filex"
	"github.com/dmitrijs2005/gatekeeper/internal/server/config"
	"github.com/dmitrijs2005/gatekeeper/internal/server/repositories/snapshots"
)

// RepositoryManager owns the lifetime of a snapshot backend.
type RepositoryManager interface {
	RunMigrations(ctx context.Context) error
	Snapshots() snapshots.Repository
	Close() error
}

// New builds the RepositoryManager for cfg.StorageBackend. ext is the file
// extension used by the file backend and should match the snapshot codec.
func New(ctx context.Context, cfg *config.Config, ext string) (RepositoryManager, error) {
	switch cfg.StorageBackend {
	case config.BackendMemory:
		return &memoryManager{repo: snapshots.NewMemoryRepository()}, nil
	case config.BackendFile:
		dir, err := filex.EnsureDir(cfg.DataDir)
		if err != nil {
			return nil, err
		}
		return &fileManager{repo: snapshots.NewFileRepository(dir, ext)}, nil
	case config.BackendPostgres:
		return NewPostgresRepositoryManager(ctx, cfg.DatabaseDSN)
	case config.BackendSQLite:
		return NewSQLiteRepositoryManager(ctx, cfg.DatabaseDSN)
	case config.BackendS3:
		return NewS3RepositoryManager(ctx, cfg)
	default:
		return nil, fmt.Errorf("%w: %q", common.ErrorUnknownBackend, cfg.StorageBackend)
	}
}

type memoryManager struct {
	repo *snapshots.MemoryRepository
}

func (m *memoryManager) RunMigrations(context.Context) error { return nil }
func (m *memoryManager) Snapshots() snapshots.Repository     { return m.repo }
func (m *memoryManager) Close() error                        { return nil }

type fileManager struct {
	repo *snapshots.FileRepository
}

func (m *fileManager) RunMigrations(context.Context) error { return nil }
func (m *fileManager) Snapshots() snapshots.Repository     { return m.repo }
func (m *fileManager) Close() error                        { return nil }
