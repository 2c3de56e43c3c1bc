// Package services implements the gateway's state machine components: the
// lockout ledger, the daily quota tracker, the one-time code registry, the
// date code generator and the role registry. Every component keeps its state
// in memory and writes it through a Persister after each mutation.
package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/gatekeeper/internal/common"
	"github.com/dmitrijs2005/gatekeeper/internal/logging"
	"github.com/dmitrijs2005/gatekeeper/internal/server/repositories/snapshots"
)

// Persister encodes component state with a Codec and stores it under a
// snapshot key.
type Persister struct {
	repo  snapshots.Repository
	codec Codec
	log   logging.Logger
}

// NewPersister returns a Persister that stores snapshots in repo encoded with codec.
func NewPersister(repo snapshots.Repository, codec Codec, log logging.Logger) *Persister {
	return &Persister{repo: repo, codec: codec, log: log.With("module", "persister")}
}

// Save writes v under key. Failures are logged and swallowed: the in-memory
// state stays authoritative and the next successful save catches up.
func (p *Persister) Save(ctx context.Context, key string, v any) {
	data, err := p.codec.Marshal(v)
	if err != nil {
		p.log.Error(ctx, "snapshot encode failed", "key", key, "error", err)
		return
	}
	if err := p.repo.Set(ctx, key, data); err != nil {
		p.log.Error(ctx, "snapshot save failed", "key", key, "error", err)
	}
}

// Load decodes the snapshot stored under key into v. A missing snapshot
// leaves v untouched and is not an error.
func (p *Persister) Load(ctx context.Context, key string, v any) error {
	data, err := p.repo.Get(ctx, key)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			p.log.Debug(ctx, "snapshot not found, starting empty", "key", key)
			return nil
		}
		return fmt.Errorf("error loading snapshot %s: %w", key, err)
	}
	if err := p.codec.Unmarshal(data, v); err != nil {
		return fmt.Errorf("error decoding snapshot %s: %w", key, err)
	}
	return nil
}
