package services

import (
	"bytes"
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/dmitrijs2005/gatekeeper/internal/clock"
	"github.com/dmitrijs2005/gatekeeper/internal/logging"
	"github.com/dmitrijs2005/gatekeeper/internal/server/repositories/snapshots"
	"github.com/stretchr/testify/require"
)

// 2024-03-05 10:00 in UTC+8.
var baseTime = time.Date(2024, 3, 5, 2, 0, 0, 0, time.UTC)

func newTestClock() *clock.FakeClock { return clock.Fake(baseTime) }

func newTestPersister(t *testing.T) (*Persister, *snapshots.MemoryRepository) {
	t.Helper()
	codec, err := NewCodec(CodecJSON)
	require.NoError(t, err)
	repo := snapshots.NewMemoryRepository()
	return NewPersister(repo, codec, logging.NewNopLogger()), repo
}

func newBufferLogger() (*logging.SlogLogger, *bytes.Buffer) {
	var buf bytes.Buffer
	return logging.NewSlogLogger(slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))), &buf
}

type stubRepo struct {
	data   map[string][]byte
	getErr error
	setErr error
}

func (s *stubRepo) Get(_ context.Context, key string) ([]byte, error) {
	if s.getErr != nil {
		return nil, s.getErr
	}
	return s.data[key], nil
}

func (s *stubRepo) Set(_ context.Context, key string, value []byte) error {
	if s.setErr != nil {
		return s.setErr
	}
	if s.data == nil {
		s.data = map[string][]byte{}
	}
	s.data[key] = value
	return nil
}
