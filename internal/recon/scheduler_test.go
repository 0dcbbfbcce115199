package recon

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quegate/quegate/config"
	"github.com/quegate/quegate/internal/core/qerrors"
	"github.com/quegate/quegate/internal/core/transport"
	"github.com/quegate/quegate/internal/core/transport/memory"
	"github.com/quegate/quegate/internal/store"
)

// fakeBroker scripts the connection-manager slice the scheduler sees.
type fakeBroker struct {
	mu        sync.Mutex
	backend   transport.Backend
	connected bool
	probeErr  error
	probes    int
}

func (f *fakeBroker) Probe(ctx context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.probes++
	if f.probeErr != nil {
		f.connected = false
		return f.probeErr
	}
	return nil
}

func (f *fakeBroker) Backend() transport.Backend {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.backend
}

func (f *fakeBroker) IsConnected() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.connected
}

func (f *fakeBroker) probeCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.probes
}

func testConfig() *config.Config {
	return &config.Config{
		Backend:              config.BackendMemory,
		ConnectTimeoutMS:     1000,
		ProbeSchedule:        "@every 1h",
		ReconcileSchedule:    "@every 1h",
		JournalRetentionDays: 7,
	}
}

func testStore(t *testing.T) *store.Store {
	t.Helper()
	st, err := store.Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })
	return st
}

func TestScheduler_StartAndStop(t *testing.T) {
	broker := &fakeBroker{backend: memory.New(0), connected: true}
	s := NewScheduler(testConfig(), broker, testStore(t))

	require.NoError(t, s.Start())
	s.Stop()
}

func TestScheduler_NilManagerIsInert(t *testing.T) {
	s := NewScheduler(testConfig(), nil, nil)
	require.NoError(t, s.Start())
	s.Stop()
}

func TestScheduler_RejectsBadSchedule(t *testing.T) {
	cfg := testConfig()
	cfg.ProbeSchedule = "every minute or so"
	err := NewScheduler(cfg, &fakeBroker{}, nil).Start()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "probe schedule")

	cfg = testConfig()
	cfg.ReconcileSchedule = "whenever"
	err = NewScheduler(cfg, &fakeBroker{}, testStore(t)).Start()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "reconcile schedule")
}

func TestProbe_RunsWhenConnected(t *testing.T) {
	broker := &fakeBroker{connected: true}
	s := NewScheduler(testConfig(), broker, nil)

	s.probe()
	assert.Equal(t, 1, broker.probeCount())
}

func TestProbe_SkipsWhenDisconnected(t *testing.T) {
	broker := &fakeBroker{connected: false}
	s := NewScheduler(testConfig(), broker, nil)

	s.probe()
	assert.Zero(t, broker.probeCount())
}

func TestProbe_ToleratesFailure(t *testing.T) {
	broker := &fakeBroker{
		connected: true,
		probeErr:  qerrors.Connection(qerrors.CodeUnreachable, "broker gone", nil),
	}
	s := NewScheduler(testConfig(), broker, nil)

	s.probe()
	assert.Equal(t, 1, broker.probeCount())
}

func TestReconcile_RefreshesCacheAndFlagsMissing(t *testing.T) {
	ctx := context.Background()
	st := testStore(t)
	b := memory.New(0)
	require.NoError(t, b.Open(ctx))

	require.NoError(t, b.CreateQueue(ctx, `.\private$\orders`, transport.CreateOptions{Label: "orders"}))
	for i := 0; i < 3; i++ {
		_, err := b.Send(ctx, transport.SendOptions{Queue: `.\private$\orders`, Body: []byte("x")})
		require.NoError(t, err)
	}

	// A cached row the broker no longer knows about.
	stale := time.Now().UTC().Add(-time.Hour)
	require.NoError(t, st.UpsertQueue(ctx, store.QueueRecord{
		Path:       `.\private$\vanished`,
		Name:       "vanished",
		Status:     "ACTIVE",
		CreatedAt:  stale,
		UpdatedAt:  stale,
		LastSeenAt: stale,
	}))

	s := NewScheduler(testConfig(), &fakeBroker{backend: b, connected: true}, st)
	s.reconcile()

	rec, err := st.GetQueue(ctx, `.\private$\orders`)
	require.NoError(t, err)
	assert.Equal(t, "orders", rec.Label)
	assert.Equal(t, int64(3), rec.MessageCount)
	assert.Equal(t, string(transport.QueueActive), rec.Status)

	gone, err := st.GetQueue(ctx, `.\private$\vanished`)
	require.NoError(t, err)
	assert.Equal(t, "INACTIVE", gone.Status)
}

func TestReconcile_ResurrectsReappearedQueue(t *testing.T) {
	ctx := context.Background()
	st := testStore(t)
	b := memory.New(0)

	stale := time.Now().UTC().Add(-time.Hour)
	require.NoError(t, st.UpsertQueue(ctx, store.QueueRecord{
		Path:       `.\private$\orders`,
		Name:       "orders",
		Status:     "INACTIVE",
		CreatedAt:  stale,
		UpdatedAt:  stale,
		LastSeenAt: stale,
	}))
	require.NoError(t, b.CreateQueue(ctx, `.\private$\orders`, transport.CreateOptions{}))

	s := NewScheduler(testConfig(), &fakeBroker{backend: b, connected: true}, st)
	s.reconcile()

	rec, err := st.GetQueue(ctx, `.\private$\orders`)
	require.NoError(t, err)
	assert.Equal(t, string(transport.QueueActive), rec.Status)
}

func TestReconcile_SkipsWhenDisconnected(t *testing.T) {
	ctx := context.Background()
	st := testStore(t)

	stale := time.Now().UTC().Add(-time.Hour)
	require.NoError(t, st.UpsertQueue(ctx, store.QueueRecord{
		Path:       `.\private$\orders`,
		Name:       "orders",
		Status:     "ACTIVE",
		CreatedAt:  stale,
		UpdatedAt:  stale,
		LastSeenAt: stale,
	}))

	s := NewScheduler(testConfig(), &fakeBroker{backend: memory.New(0), connected: false}, st)
	s.reconcile()

	rec, err := st.GetQueue(ctx, `.\private$\orders`)
	require.NoError(t, err)
	assert.Equal(t, "ACTIVE", rec.Status)
}

func TestReconcile_PrunesExpiredJournal(t *testing.T) {
	ctx := context.Background()
	st := testStore(t)

	old := store.JournalEntry{
		Queue:     `.\private$\orders`,
		Direction: store.DirectionSent,
		MessageID: "old",
		Priority:  3,
		BodySize:  8,
		Status:    "SENT",
		CreatedAt: time.Now().UTC().Add(-8 * 24 * time.Hour),
	}
	fresh := old
	fresh.MessageID = "fresh"
	fresh.CreatedAt = time.Now().UTC()

	_, err := st.AppendJournal(ctx, old)
	require.NoError(t, err)
	_, err = st.AppendJournal(ctx, fresh)
	require.NoError(t, err)

	s := NewScheduler(testConfig(), &fakeBroker{backend: memory.New(0), connected: true}, st)
	s.reconcile()

	entries, err := st.ListJournal(ctx, store.JournalFilter{})
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "fresh", entries[0].MessageID)
}

func TestReconcile_ZeroRetentionKeepsJournal(t *testing.T) {
	ctx := context.Background()
	st := testStore(t)

	_, err := st.AppendJournal(ctx, store.JournalEntry{
		Queue:     `.\private$\orders`,
		Direction: store.DirectionSent,
		MessageID: "ancient",
		Status:    "SENT",
		CreatedAt: time.Now().UTC().Add(-30 * 24 * time.Hour),
	})
	require.NoError(t, err)

	cfg := testConfig()
	cfg.JournalRetentionDays = 0
	s := NewScheduler(cfg, &fakeBroker{backend: memory.New(0), connected: true}, st)
	s.reconcile()

	entries, err := st.ListJournal(ctx, store.JournalFilter{})
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}
