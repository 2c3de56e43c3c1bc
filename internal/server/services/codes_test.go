package services

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/dmitrijs2005/gatekeeper/internal/common"
	"github.com/dmitrijs2005/gatekeeper/internal/logging"
	"github.com/dmitrijs2005/gatekeeper/internal/server/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRegistry(t *testing.T) (*CodeRegistry, *Persister) {
	t.Helper()
	p, _ := newTestPersister(t)
	return NewCodeRegistry(DefaultCodeTTL, p, logging.NewNopLogger()), p
}

func TestIssue_Shape(t *testing.T) {
	r, _ := newTestRegistry(t)
	now := newTestClock().Now()

	rec, err := r.Issue(context.Background(), "admin1", now)
	require.NoError(t, err)
	assert.Len(t, rec.Code, CodeLength)
	for _, ch := range rec.Code {
		assert.True(t, strings.ContainsRune(common.AlphaNumeric, ch))
	}
	assert.NotEmpty(t, rec.ID)
	assert.Equal(t, "admin1", rec.Creator)
	assert.Equal(t, now, rec.CreatedAt)
	assert.False(t, rec.Used)
	assert.Nil(t, rec.UsedBy)
}

func TestIssue_RerollsOnCollision(t *testing.T) {
	orig := randomCode
	t.Cleanup(func() { randomCode = orig })

	seq := []string{"AAAAAAAAAAAA", "AAAAAAAAAAAA", "BBBBBBBBBBBB"}
	randomCode = func() (string, error) {
		c := seq[0]
		seq = seq[1:]
		return c, nil
	}

	r, _ := newTestRegistry(t)
	now := newTestClock().Now()
	first, err := r.Issue(context.Background(), "a", now)
	require.NoError(t, err)
	second, err := r.Issue(context.Background(), "a", now)
	require.NoError(t, err)

	assert.Equal(t, "AAAAAAAAAAAA", first.Code)
	assert.Equal(t, "BBBBBBBBBBBB", second.Code)
	assert.NotEqual(t, first.ID, second.ID)
}

func TestIssue_GivesUpAfterRepeatedCollisions(t *testing.T) {
	orig := randomCode
	t.Cleanup(func() { randomCode = orig })
	randomCode = func() (string, error) { return "AAAAAAAAAAAA", nil }

	r, _ := newTestRegistry(t)
	now := newTestClock().Now()
	_, err := r.Issue(context.Background(), "a", now)
	require.NoError(t, err)

	_, err = r.Issue(context.Background(), "a", now)
	require.ErrorIs(t, err, common.ErrorInternal)
	assert.Len(t, r.Codes(), 1)
}

func TestTryRedeem_SingleUse(t *testing.T) {
	ctx := context.Background()
	r, _ := newTestRegistry(t)
	clk := newTestClock()

	rec, err := r.Issue(ctx, "admin1", clk.Now())
	require.NoError(t, err)

	clk.Advance(time.Hour)
	assert.Equal(t, models.RedeemSuccess, r.TryRedeem(ctx, rec.Code, "u1", clk.Now()))
	assert.Equal(t, models.RedeemNotFound, r.TryRedeem(ctx, rec.Code, "u2", clk.Now()))

	codes := r.Codes()
	require.Len(t, codes, 1)
	assert.True(t, codes[0].Used)
	require.NotNil(t, codes[0].UsedBy)
	assert.Equal(t, "u1", *codes[0].UsedBy)
}

func TestTryRedeem_Expiry(t *testing.T) {
	ctx := context.Background()
	r, _ := newTestRegistry(t)
	clk := newTestClock()

	atLimit, err := r.Issue(ctx, "admin1", clk.Now())
	require.NoError(t, err)
	pastLimit, err := r.Issue(ctx, "admin1", clk.Now())
	require.NoError(t, err)

	clk.Advance(DefaultCodeTTL)
	assert.Equal(t, models.RedeemSuccess, r.TryRedeem(ctx, atLimit.Code, "u1", clk.Now()))

	clk.Advance(time.Second)
	assert.Equal(t, models.RedeemExpired, r.TryRedeem(ctx, pastLimit.Code, "u2", clk.Now()))
	assert.Equal(t, models.RedeemNotFound, r.TryRedeem(ctx, pastLimit.Code, "u2", clk.Now()))

	codes := r.Codes()
	assert.True(t, codes[1].Used)
	assert.Nil(t, codes[1].UsedBy)
}

func TestTryRedeem_NoMatch(t *testing.T) {
	r, _ := newTestRegistry(t)
	assert.Equal(t, models.RedeemNotFound, r.TryRedeem(context.Background(), "nothing", "u1", newTestClock().Now()))
}

func TestTryRedeem_FirstUnusedMatchInInsertionOrder(t *testing.T) {
	ctx := context.Background()
	p, _ := newTestPersister(t)
	now := newTestClock().Now()
	used := "someone"
	p.Save(ctx, common.SnapshotOneTimeCodes, []models.OneTimeCode{
		{ID: "1", Code: "dup", CreatedAt: now, Used: true, UsedBy: &used},
		{ID: "2", Code: "dup", CreatedAt: now.Add(-48 * time.Hour)},
		{ID: "3", Code: "dup", CreatedAt: now},
	})

	r := NewCodeRegistry(DefaultCodeTTL, p, logging.NewNopLogger())
	require.NoError(t, r.Load(ctx))

	assert.Equal(t, models.RedeemExpired, r.TryRedeem(ctx, "dup", "u1", now))
	assert.Equal(t, models.RedeemSuccess, r.TryRedeem(ctx, "dup", "u1", now))

	codes := r.Codes()
	assert.Equal(t, "someone", *codes[0].UsedBy)
	assert.Nil(t, codes[1].UsedBy)
	assert.Equal(t, "u1", *codes[2].UsedBy)
}

func TestCodes_Persisted(t *testing.T) {
	ctx := context.Background()
	r, p := newTestRegistry(t)
	now := newTestClock().Now()
	rec, err := r.Issue(ctx, "admin1", now)
	require.NoError(t, err)

	restored := NewCodeRegistry(0, p, logging.NewNopLogger())
	assert.Equal(t, DefaultCodeTTL, restored.TTL())
	require.NoError(t, restored.Load(ctx))
	assert.Equal(t, models.RedeemSuccess, restored.TryRedeem(ctx, rec.Code, "u1", now))
}
