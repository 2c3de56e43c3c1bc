// Package snapshots stores opaque state snapshots by key. The gateway keeps
// its authoritative state in memory and writes a full snapshot of a mapping
// after every mutation; backends only need to round-trip bytes.
package snapshots

import "context"

// Repository loads and saves snapshots. Get returns common.ErrorNotFound when
// nothing was saved under key yet.
type Repository interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
}
