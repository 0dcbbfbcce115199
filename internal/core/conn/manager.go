// Package conn owns the connection lifecycle: which backend is active, what
// state the link is in, and how reconnection happens. The façade calls
// Ensure before every operation and reports connection-kind failures back
// through OnConnectionError; everything else stays inside this package.
package conn

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/quegate/quegate/config"
	"github.com/quegate/quegate/internal/core/qerrors"
	"github.com/quegate/quegate/internal/core/transport"
	"github.com/quegate/quegate/internal/core/transport/memory"
	"github.com/quegate/quegate/internal/core/transport/msmq"
	"github.com/quegate/quegate/internal/core/transport/script"
	"github.com/quegate/quegate/pkg/metrics"
	"github.com/quegate/quegate/pkg/ordered"
)

// candidate pairs a backend kind with its factory. Backends are built fresh
// on every connect walk so a failed instance carries no state into the next
// attempt.
type candidate struct {
	kind  transport.Kind
	build func() transport.Backend
}

// Manager drives the DISCONNECTED -> CONNECTING -> CONNECTED lifecycle and
// holds the active backend. The first kind whose probe succeeds stays the
// only kind this process will use; reconnects retry it and never fall
// through to a different backend mid-flight.
type Manager struct {
	state atomic.Int32

	mu         sync.Mutex
	backend    transport.Backend
	sticky     transport.Kind
	candidates []candidate
	lastProbe  time.Time
	lastTouch  time.Time
	lastErr    error

	reconnects    atomic.Int64
	everConnected atomic.Bool

	cfg       *config.Config
	collector metrics.MetricsCollector
}

// New builds a manager whose candidate order follows the configured backend
// mode: a forced mode yields a single candidate, auto yields native then
// script then memory. collector may be nil.
func New(cfg *config.Config, collector metrics.MetricsCollector) *Manager {
	m := newManager(cfg, candidatesFor(cfg))
	m.collector = collector
	return m
}

func newManager(cfg *config.Config, candidates []candidate) *Manager {
	return &Manager{
		candidates: candidates,
		cfg:        cfg,
	}
}

func candidatesFor(cfg *config.Config) []candidate {
	native := candidate{kind: transport.KindNative, build: func() transport.Backend {
		return msmq.New(cfg.BrokerHost, cfg.ProbeQueue)
	}}
	scripted := candidate{kind: transport.KindScript, build: func() transport.Backend {
		return script.New(cfg.BrokerHost, cfg.ScriptHost, cfg.ScriptTimeout(), cfg.ProbeQueue)
	}}
	simulated := candidate{kind: transport.KindMemory, build: func() transport.Backend {
		return memory.New(cfg.MemoryQueueDepth)
	}}

	switch cfg.Backend {
	case config.BackendNative:
		return []candidate{native}
	case config.BackendScript:
		return []candidate{scripted}
	case config.BackendMemory:
		return []candidate{simulated}
	default:
		return []candidate{native, scripted, simulated}
	}
}

// State returns the current lifecycle state.
func (m *Manager) State() transport.State {
	return transport.State(m.state.Load())
}

// IsConnected reports whether the manager holds a probed backend.
func (m *Manager) IsConnected() bool {
	return m.State() == transport.StateConnected
}

// Backend returns the active backend, or nil when disconnected. Callers run
// Ensure first.
func (m *Manager) Backend() transport.Backend {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.backend
}

// Connect walks the candidate backends in order and activates the first one
// whose probe succeeds. Connecting while connected is a no-op.
func (m *Manager) Connect(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.connectLocked(ctx)
}

// connectLocked runs the candidate walk. Callers hold mu.
func (m *Manager) connectLocked(ctx context.Context) error {
	if m.State() == transport.StateConnected {
		return nil
	}
	m.state.Store(int32(transport.StateConnecting))

	cands := m.candidates
	if m.sticky != transport.KindUnknown {
		cands = nil
		for _, c := range m.candidates {
			if c.kind == m.sticky {
				cands = append(cands, c)
			}
		}
	}

	backend, winner, err := ordered.First(cands, func(c candidate) (transport.Backend, error) {
		return m.tryCandidate(ctx, c)
	}, nil)
	if err != nil {
		m.state.Store(int32(transport.StateDisconnected))
		m.lastErr = err
		log.Error().Err(err).Msg("No backend reachable")
		return qerrors.Connection(qerrors.CodeUnreachable, "no backend reachable", err)
	}

	if m.backend != nil {
		_ = m.backend.Close()
	}
	m.backend = backend
	m.sticky = winner.kind
	now := time.Now()
	m.lastProbe = now
	m.lastTouch = now
	m.lastErr = nil
	m.state.Store(int32(transport.StateConnected))

	if m.everConnected.Swap(true) {
		m.reconnects.Add(1)
		if m.collector != nil {
			m.collector.RecordReconnect()
		}
	}
	log.Info().Str("backend", winner.kind.String()).Msg("Queue backend connected")
	return nil
}

// tryCandidate opens and probes one backend with the configured retry
// budget. The wait between attempts grows linearly: delay, then 2*delay,
// and so on.
func (m *Manager) tryCandidate(ctx context.Context, c candidate) (transport.Backend, error) {
	b := c.build()
	if err := b.Open(ctx); err != nil {
		_ = b.Close()
		return nil, err
	}

	attempts := m.cfg.RetryAttempts
	if attempts < 1 {
		attempts = 1
	}

	var last error
	for attempt := 1; attempt <= attempts; attempt++ {
		if attempt > 1 {
			select {
			case <-ctx.Done():
				_ = b.Close()
				return nil, ctx.Err()
			case <-time.After(time.Duration(attempt-1) * m.cfg.RetryDelay()):
			}
		}

		probeCtx, cancel := context.WithTimeout(ctx, m.cfg.ConnectTimeout())
		err := b.Probe(probeCtx)
		cancel()
		if err == nil {
			return b, nil
		}
		last = err
		log.Warn().
			Err(err).
			Str("backend", c.kind.String()).
			Int("attempt", attempt).
			Int("attempts", attempts).
			Msg("Backend probe failed")
	}
	_ = b.Close()
	return nil, last
}

// Ensure makes sure a probed backend is active before an operation runs.
// Concurrent callers share one reconnect attempt: whoever holds the mutex
// runs it, everyone else waits and re-checks.
func (m *Manager) Ensure(ctx context.Context) error {
	if m.State() == transport.StateConnected {
		return nil
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.State() == transport.StateConnected {
		return nil
	}

	if err := m.connectLocked(ctx); err != nil {
		return qerrors.Connection(qerrors.CodeReconnectFailed, "reconnect failed", err)
	}
	return nil
}

// OnConnectionError flips the manager to DISCONNECTED when err is a
// connection-kind failure, so the next Ensure reconnects. Business and
// validation failures never trip the lifecycle.
func (m *Manager) OnConnectionError(err error) {
	if !qerrors.IsConnection(err) {
		return
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.State() == transport.StateDisconnected {
		return
	}
	m.lastErr = err
	m.state.Store(int32(transport.StateDisconnected))
	log.Warn().Err(err).Msg("Connection lost, will reconnect on next operation")
}

// Probe re-runs the active backend's reachability check. A failed probe
// trips the lifecycle the same way a failed operation does.
func (m *Manager) Probe(ctx context.Context) error {
	m.mu.Lock()
	b := m.backend
	m.mu.Unlock()
	if b == nil {
		return qerrors.Connection(qerrors.CodeNotConnected, "not connected", nil)
	}

	err := b.Probe(ctx)

	m.mu.Lock()
	m.lastProbe = time.Now()
	m.mu.Unlock()

	if err != nil {
		m.OnConnectionError(err)
	}
	return err
}

// Touch marks activity on the link. The façade calls it after successful
// operations so Health can report when the backend last answered.
func (m *Manager) Touch() {
	m.mu.Lock()
	m.lastTouch = time.Now()
	m.mu.Unlock()
}

// Disconnect closes the active backend and parks the manager. The sticky
// kind survives: a later Connect retries the same backend.
func (m *Manager) Disconnect() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.backend != nil {
		if err := m.backend.Close(); err != nil {
			log.Warn().Err(err).Msg("Backend close failed")
		}
		m.backend = nil
	}
	m.state.Store(int32(transport.StateDisconnected))
	log.Info().Msg("Queue backend disconnected")
	return nil
}

// Health reports the lifecycle snapshot for the status endpoint.
func (m *Manager) Health() transport.Health {
	m.mu.Lock()
	defer m.mu.Unlock()

	state := m.State()
	h := transport.Health{
		State:          state,
		StateText:      state.String(),
		Backend:        m.sticky.String(),
		Host:           m.cfg.BrokerHost,
		Port:           m.cfg.BrokerPort,
		ConnectTimeout: m.cfg.ConnectTimeout(),
		TimeoutMS:      int64(m.cfg.ConnectTimeoutMS),
		RetryAttempts:  m.cfg.RetryAttempts,
		Reconnects:     m.reconnects.Load(),
		LastActivity:   m.lastTouch,
		LastProbe:      m.lastProbe,
	}
	if m.sticky == transport.KindUnknown {
		h.Backend = ""
	}
	if m.lastErr != nil {
		h.LastError = m.lastErr.Error()
	}
	return h
}
