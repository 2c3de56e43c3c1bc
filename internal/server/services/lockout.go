package services

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/dmitrijs2005/gatekeeper/internal/common"
	"github.com/dmitrijs2005/gatekeeper/internal/logging"
	"github.com/dmitrijs2005/gatekeeper/internal/server/models"
)

// lockSteps holds the temporary lock durations. A failure past the last
// step blocks the identity permanently.
var lockSteps = []time.Duration{
	10 * time.Second,
	30 * time.Second,
	5 * time.Minute,
	2 * time.Hour,
}

// PermanentLock is the remaining-time text reported for blocked identities.
const PermanentLock = "permanent"

// LockoutLedger records failed verification attempts and derives lock state
// from them.
type LockoutLedger struct {
	mu      sync.Mutex
	records map[string]models.LockRecord
	quota   *QuotaTracker
	persist *Persister
	log     logging.Logger
}

// NewLockoutLedger creates an empty ledger. Clearing a record through the
// ledger also resets the identity's count in quota, so quota must be the
// tracker the router consults.
//
// Records are written through p after every change.
func NewLockoutLedger(quota *QuotaTracker, p *Persister, log logging.Logger) *LockoutLedger {
	return &LockoutLedger{
		records: make(map[string]models.LockRecord),
		quota:   quota,
		persist: p,
		log:     log.With("module", "lockout"),
	}
}

// Load restores lock records from the snapshot store.
func (l *LockoutLedger) Load(ctx context.Context) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	records := make(map[string]models.LockRecord)
	if err := l.persist.Load(ctx, common.SnapshotLockRecords, &records); err != nil {
		return err
	}
	l.records = records
	return nil
}

// RecordFailure counts one more failed attempt for id and applies the next
// step of the lock ladder.
func (l *LockoutLedger) RecordFailure(ctx context.Context, id string, now time.Time) models.LockRecord {
	l.mu.Lock()
	defer l.mu.Unlock()

	rec := l.records[id]
	rec.FailCount++

	step := min(rec.FailCount-1, len(lockSteps))
	if step == len(lockSteps) {
		rec.Blocked = true
		rec.LockUntil = nil
	} else {
		until := now.Add(lockSteps[step])
		rec.Blocked = false
		rec.LockUntil = &until
	}

	l.records[id] = rec
	l.save(ctx)
	l.log.Info(ctx, "verification failure recorded",
		"identity", id, "fail_count", rec.FailCount, "blocked", rec.Blocked)
	return rec
}

// CheckLock reports whether id is locked at now and for how long.
func (l *LockoutLedger) CheckLock(id string, now time.Time) models.LockStatus {
	l.mu.Lock()
	defer l.mu.Unlock()

	rec, ok := l.records[id]
	switch {
	case !ok:
		return models.LockStatus{}
	case rec.Blocked:
		return models.LockStatus{Locked: true, Remaining: PermanentLock}
	case rec.LockUntil != nil && now.Before(*rec.LockUntil):
		return models.LockStatus{Locked: true, Remaining: FormatRemaining(rec.LockUntil.Sub(now))}
	default:
		return models.LockStatus{}
	}
}

// Clear forgets every failure recorded for id and resets its daily quota.
// Clearing an unknown identity is a no-op apart from the quota reset.
func (l *LockoutLedger) Clear(ctx context.Context, id string, now time.Time) {
	l.mu.Lock()
	if _, ok := l.records[id]; ok {
		delete(l.records, id)
		l.save(ctx)
	}
	l.mu.Unlock()

	l.quota.Reset(ctx, id, now)
}

// Record returns the current lock record for id, if any.
func (l *LockoutLedger) Record(id string) (models.LockRecord, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	rec, ok := l.records[id]
	return rec, ok
}

func (l *LockoutLedger) save(ctx context.Context) {
	l.persist.Save(ctx, common.SnapshotLockRecords, l.records)
}

// FormatRemaining renders d in its largest whole unit: seconds below a
// minute, minutes below an hour, hours below a day, days otherwise.
func FormatRemaining(d time.Duration) string {
	s := int64(d / time.Second)
	switch {
	case s < 60:
		return fmt.Sprintf("%d seconds", s)
	case s < 3600:
		return fmt.Sprintf("%d minutes", s/60)
	case s < 86400:
		return fmt.Sprintf("%d hours", s/3600)
	default:
		return fmt.Sprintf("%d days", s/86400)
	}
}

// LockDuration is the text shown to a user right after a failure: the full
// step that was just applied, or "permanent".
func LockDuration(rec models.LockRecord, now time.Time) string {
	if rec.Blocked || rec.LockUntil == nil {
		return PermanentLock
	}
	return FormatRemaining(rec.LockUntil.Sub(now))
}
