package services

import (
	"context"
	"sync"
	"time"

	"github.com/dmitrijs2005/gatekeeper/internal/common"
	"github.com/dmitrijs2005/gatekeeper/internal/logging"
	"github.com/dmitrijs2005/gatekeeper/internal/server/models"
)

// DefaultMaxDaily is the number of catalog queries a verified identity may
// make per day.
const DefaultMaxDaily = 10

// dayZone is the fixed zone whose midnight starts a new quota window.
var dayZone = time.FixedZone("UTC+8", 8*60*60)

// DayKey returns the quota window key (YYYYMMDD in UTC+8) containing t.
func DayKey(t time.Time) string {
	return t.In(dayZone).Format("20060102")
}

// QuotaTracker counts catalog queries per identity per day. A record from an
// earlier day is replaced by a fresh zero count on first access.
type QuotaTracker struct {
	mu       sync.Mutex
	counts   map[string]models.DailyCount
	maxDaily int
	persist  *Persister
	log      logging.Logger
}

// NewQuotaTracker creates a tracker that allows maxDaily queries per identity
// per UTC+8 day. A non-positive maxDaily falls back to DefaultMaxDaily.
//
// Every change is written through p; call Load before serving traffic to pick
// up counts from a previous run.
func NewQuotaTracker(maxDaily int, p *Persister, log logging.Logger) *QuotaTracker {
	if maxDaily <= 0 {
		maxDaily = DefaultMaxDaily
	}
	return &QuotaTracker{
		counts:   make(map[string]models.DailyCount),
		maxDaily: maxDaily,
		persist:  p,
		log:      log.With("module", "quota"),
	}
}

// Load restores counts from the snapshot store.
func (q *QuotaTracker) Load(ctx context.Context) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	counts := make(map[string]models.DailyCount)
	if err := q.persist.Load(ctx, common.SnapshotDailyCounts, &counts); err != nil {
		return err
	}
	q.counts = counts
	return nil
}

// MaxDaily returns the configured daily limit.
func (q *QuotaTracker) MaxDaily() int { return q.maxDaily }

// CurrentCount returns id's count for now's day.
func (q *QuotaTracker) CurrentCount(ctx context.Context, id string, now time.Time) int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.rollOver(ctx, id, now).Count
}

// Increment adds one query to id's count for now's day and returns the new count.
func (q *QuotaTracker) Increment(ctx context.Context, id string, now time.Time) int {
	q.mu.Lock()
	defer q.mu.Unlock()
	c := q.rollOver(ctx, id, now)
	c.Count++
	q.counts[id] = c
	q.save(ctx)
	return c.Count
}

// Remaining returns max(0, MaxDaily - count).
func (q *QuotaTracker) Remaining(ctx context.Context, id string, now time.Time) int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return max(0, q.maxDaily-q.rollOver(ctx, id, now).Count)
}

// Exhausted reports whether id has used its whole quota for now's day.
func (q *QuotaTracker) Exhausted(ctx context.Context, id string, now time.Time) bool {
	return q.Remaining(ctx, id, now) == 0
}

// Reset sets id's count for now's day to zero.
func (q *QuotaTracker) Reset(ctx context.Context, id string, now time.Time) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.counts[id] = models.DailyCount{Date: DayKey(now), Count: 0}
	q.save(ctx)
}

// rollOver must be called with mu held.
func (q *QuotaTracker) rollOver(ctx context.Context, id string, now time.Time) models.DailyCount {
	today := DayKey(now)
	c, ok := q.counts[id]
	if ok && c.Date == today {
		return c
	}
	c = models.DailyCount{Date: today, Count: 0}
	q.counts[id] = c
	q.save(ctx)
	return c
}

func (q *QuotaTracker) save(ctx context.Context) {
	q.persist.Save(ctx, common.SnapshotDailyCounts, q.counts)
}
