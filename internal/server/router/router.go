// Package router maps one inbound message to exactly one reply. It decides
// the sender's role, enforces lockout and quota, and drives verification.
package router

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/dmitrijs2005/gatekeeper/internal/clock"
	"github.com/dmitrijs2005/gatekeeper/internal/logging"
	"github.com/dmitrijs2005/gatekeeper/internal/server/catalog"
	"github.com/dmitrijs2005/gatekeeper/internal/server/models"
	"github.com/dmitrijs2005/gatekeeper/internal/server/services"
)

// Message is an inbound text message. An empty reply means "send nothing".
type Message struct {
	SenderID    string
	RecipientID string
	Text        string
}

// Searcher looks up catalog items by substring.
type Searcher interface {
	Search(keyword string) []catalog.Item
}

// Router is the verification state machine. Handle is serialized by a
// single mutex so that every message sees a consistent snapshot.
type Router struct {
	mu sync.Mutex

	roles   *services.RoleRegistry
	ledger  *services.LockoutLedger
	quota   *services.QuotaTracker
	codes   *services.CodeRegistry
	catalog Searcher
	clock   clock.Clock
	log     logging.Logger

	// greeted is process-lifetime only.
	greeted map[string]struct{}
}

// New wires the router to its state components.
//
// roles, ledger, quota and codes must share one Persister so a restart sees a
// consistent picture. cat answers catalog searches for verified identities.
// clk supplies the time used for lock windows, code expiry and the daily
// quota; tests pass a fake clock.
func New(
	roles *services.RoleRegistry,
	ledger *services.LockoutLedger,
	quota *services.QuotaTracker,
	codes *services.CodeRegistry,
	cat Searcher,
	clk clock.Clock,
	log logging.Logger,
) *Router {
	return &Router{
		roles:   roles,
		ledger:  ledger,
		quota:   quota,
		codes:   codes,
		catalog: cat,
		clock:   clk,
		log:     log.With("module", "router"),
		greeted: make(map[string]struct{}),
	}
}

// Handle processes msg and returns the reply text.
func (r *Router) Handle(ctx context.Context, msg Message) string {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.clock.Now()
	id := msg.SenderID
	text := strings.TrimSpace(msg.Text)

	reply := r.dispatch(ctx, id, text, now)
	r.log.Debug(ctx, "message handled", "sender", id, "role", r.roles.RoleOf(id).String(), "reply_len", len(reply))
	return reply
}

func (r *Router) dispatch(ctx context.Context, id, text string, now time.Time) string {
	if isCommand(text, cmdQueryID) {
		if st := r.ledger.CheckLock(id, now); st.Locked {
			return replyQueryIDLocked(id, st.Remaining)
		}
		return replyQueryID(id)
	}

	if matched, added := r.roles.BindSuperAdmin(ctx, id, text); matched {
		if added {
			return replySuperBound
		}
		return replySuperAlreadyBound
	}

	if r.roles.IsSuperAdmin(id) {
		if reply, ok := r.superAdminCommand(ctx, id, text, now); ok {
			return reply
		}
	}

	role := r.roles.RoleOf(id)

	if isCommand(text, cmdHelp) {
		if role.IsAdmin() {
			return adminHelp
		}
		return ""
	}

	if r.ledger.CheckLock(id, now).Locked {
		return ""
	}

	if matched, added := r.roles.BindAdmin(ctx, id, text); matched {
		if added {
			return replyAdminBound
		}
		return replyAdminAlreadyBound
	}

	if role.IsAdmin() {
		return r.adminCommand(ctx, id, text, now)
	}

	if role != models.RoleVerified {
		if _, ok := r.greeted[id]; !ok {
			r.greeted[id] = struct{}{}
			return replyGreeting
		}
		return r.verify(ctx, id, text, now)
	}

	return r.query(ctx, id, text, now)
}

func (r *Router) superAdminCommand(ctx context.Context, id, text string, now time.Time) (string, bool) {
	if target, ok := matchPrefix(text, cmdAddAdmin); ok {
		if target == "" {
			return replyUsageAddAdmin, true
		}
		r.roles.PromoteAdmin(ctx, id, target)
		return replyAdminAdded(target), true
	}
	if target, ok := matchPrefix(text, cmdRemoveAdmin); ok {
		if target == "" {
			return replyUsageRemoveAdmin, true
		}
		r.roles.DemoteAdmin(ctx, id, target)
		return replyAdminRemoved(target), true
	}
	if target, ok := matchPrefix(text, cmdUnlock); ok {
		if target == "" {
			return replyUsageUnlock, true
		}
		r.roles.Unlock(ctx, id, target, now)
		return replyUnlocked(target), true
	}
	return "", false
}

func (r *Router) adminCommand(ctx context.Context, id, text string, now time.Time) string {
	if isCommand(text, cmdIssueCode) {
		rec, err := r.codes.Issue(ctx, id, now)
		if err != nil {
			r.log.Error(ctx, "issue one-time code failed", "identity", id, "error", err)
			return replyCodeFailed
		}
		return replyCodeIssued(rec.Code, formatValidity(r.codes.TTL()))
	}

	if target, ok := matchPrefix(text, cmdUnlock); ok {
		if target == "" {
			return replyUsageUnlock
		}
		r.ledger.Clear(ctx, target, now)
		r.log.Info(ctx, "identity unlocked", "by", id, "identity", target)
		return replyUnlocked(target)
	}

	if items := r.catalog.Search(text); len(items) > 0 {
		return replyAdminHits(items)
	}
	return replyAdminNoHits
}

func (r *Router) verify(ctx context.Context, id, text string, now time.Time) string {
	switch r.codes.TryRedeem(ctx, text, id, now) {
	case models.RedeemSuccess:
		r.markVerified(ctx, id, now)
		return replyVerifiedOneTime
	case models.RedeemExpired:
		rec := r.ledger.RecordFailure(ctx, id, now)
		return replyCodeExpired(services.LockDuration(rec, now))
	}

	if text == services.GenerateDateCode(now) {
		r.markVerified(ctx, id, now)
		return replyVerifiedDateCode
	}

	rec := r.ledger.RecordFailure(ctx, id, now)
	return replyCodeWrong(services.LockDuration(rec, now))
}

func (r *Router) markVerified(ctx context.Context, id string, now time.Time) {
	r.roles.MarkVerified(ctx, id)
	r.ledger.Clear(ctx, id, now)
	r.log.Info(ctx, "identity verified", "identity", id)
}

func (r *Router) query(ctx context.Context, id, text string, now time.Time) string {
	if r.quota.Exhausted(ctx, id, now) {
		return replyQuotaExceeded(r.quota.MaxDaily())
	}

	items := r.catalog.Search(text)
	r.quota.Increment(ctx, id, now)
	remaining := r.quota.Remaining(ctx, id, now)

	if len(items) == 0 {
		return replyNoHits(remaining)
	}
	return replyHits(items, remaining)
}
