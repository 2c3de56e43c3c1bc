package services

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/dmitrijs2005/gatekeeper/internal/common"
	"github.com/dmitrijs2005/gatekeeper/internal/logging"
	"github.com/dmitrijs2005/gatekeeper/internal/server/models"
	"github.com/oklog/ulid/v2"
)

const (
	// CodeLength is the number of symbols in a one-time code.
	CodeLength = 12
	// DefaultCodeTTL is how long an issued code stays redeemable.
	DefaultCodeTTL = 24 * time.Hour

	maxIssueAttempts = 16
)

// randomCode is replaced in tests to force collisions.
var randomCode = func() (string, error) {
	return common.RandomString(common.AlphaNumeric, CodeLength)
}

// CodeRegistry issues and redeems single-use verification codes. Records are
// never deleted; once used they stay retired in insertion order.
type CodeRegistry struct {
	mu      sync.Mutex
	codes   []models.OneTimeCode
	ttl     time.Duration
	persist *Persister
	log     logging.Logger
}

// NewCodeRegistry creates a registry whose codes stay redeemable for ttl
// after issue. A non-positive ttl falls back to DefaultCodeTTL.
func NewCodeRegistry(ttl time.Duration, p *Persister, log logging.Logger) *CodeRegistry {
	if ttl <= 0 {
		ttl = DefaultCodeTTL
	}
	return &CodeRegistry{
		ttl:     ttl,
		persist: p,
		log:     log.With("module", "codes"),
	}
}

// Load restores the code list from the snapshot store.
func (r *CodeRegistry) Load(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	var codes []models.OneTimeCode
	if err := r.persist.Load(ctx, common.SnapshotOneTimeCodes, &codes); err != nil {
		return err
	}
	r.codes = codes
	return nil
}

// TTL returns the validity window of issued codes.
func (r *CodeRegistry) TTL() time.Duration { return r.ttl }

// Issue creates a new unused code on behalf of creator. A generated value
// that matches any existing record, used or not, is discarded and drawn again.
func (r *CodeRegistry) Issue(ctx context.Context, creator string, now time.Time) (models.OneTimeCode, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var code string
	for attempt := 0; ; attempt++ {
		if attempt == maxIssueAttempts {
			return models.OneTimeCode{}, fmt.Errorf("%w: no unique code after %d attempts", common.ErrorInternal, attempt)
		}
		c, err := randomCode()
		if err != nil {
			return models.OneTimeCode{}, fmt.Errorf("error generating code: %w", err)
		}
		if !r.exists(c) {
			code = c
			break
		}
	}

	rec := models.OneTimeCode{
		ID:        ulid.Make().String(),
		Code:      code,
		Creator:   creator,
		CreatedAt: now,
	}
	r.codes = append(r.codes, rec)
	r.save(ctx)
	r.log.Info(ctx, "one-time code issued", "code_id", rec.ID, "creator", creator)
	return rec, nil
}

// TryRedeem checks candidate against the unused codes in insertion order.
// A match older than the TTL is retired without a redeemer and reported as
// expired; a fresh match is retired with redeemer recorded.
func (r *CodeRegistry) TryRedeem(ctx context.Context, candidate, redeemer string, now time.Time) models.RedeemOutcome {
	r.mu.Lock()
	defer r.mu.Unlock()

	for i := range r.codes {
		rec := &r.codes[i]
		if rec.Used || rec.Code != candidate {
			continue
		}

		rec.Used = true
		if now.Sub(rec.CreatedAt) > r.ttl {
			r.save(ctx)
			r.log.Info(ctx, "expired one-time code presented", "code_id", rec.ID, "identity", redeemer)
			return models.RedeemExpired
		}

		by := redeemer
		rec.UsedBy = &by
		r.save(ctx)
		r.log.Info(ctx, "one-time code redeemed", "code_id", rec.ID, "identity", redeemer)
		return models.RedeemSuccess
	}
	return models.RedeemNotFound
}

// Codes returns a copy of every record in insertion order.
func (r *CodeRegistry) Codes() []models.OneTimeCode {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]models.OneTimeCode, len(r.codes))
	copy(out, r.codes)
	return out
}

func (r *CodeRegistry) exists(code string) bool {
	for _, rec := range r.codes {
		if rec.Code == code {
			return true
		}
	}
	return false
}

func (r *CodeRegistry) save(ctx context.Context) {
	r.persist.Save(ctx, common.SnapshotOneTimeCodes, r.codes)
}
