// Package memory implements the simulated backend: an in-process queue map
// used when neither the native runtime nor the scripting host is reachable.
// Nothing survives a restart; the point is that the application keeps
// working.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/quegate/quegate/internal/core/qerrors"
	"github.com/quegate/quegate/internal/core/transport"
)

const DefaultMaxDepth = 10000

type Backend struct {
	mu       sync.RWMutex
	queues   map[string]*queue
	maxDepth int
}

var _ transport.Backend = (*Backend)(nil)

// queue holds one simulated queue. Messages live in per-priority bands so
// receive order is highest priority first, FIFO within a band.
type queue struct {
	mu       sync.Mutex
	info     transport.QueueInfo
	bands    [transport.MaxPriority + 1][]transport.Message
	bytes    int64
	lastSend time.Time
	lastRecv time.Time
}

func New(maxDepth int) *Backend {
	if maxDepth <= 0 {
		maxDepth = DefaultMaxDepth
	}
	return &Backend{
		queues:   make(map[string]*queue),
		maxDepth: maxDepth,
	}
}

func (b *Backend) Open(ctx context.Context) error { return nil }

func (b *Backend) Close() error { return nil }

func (b *Backend) Kind() transport.Kind { return transport.KindMemory }

// Probe always succeeds: the simulation is the fallback of last resort.
func (b *Backend) Probe(ctx context.Context) error { return nil }

func (b *Backend) CreateQueue(ctx context.Context, name string, opts transport.CreateOptions) error {
	p, err := transport.ParsePathname(name)
	if err != nil {
		return err
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	if _, ok := b.queues[p.Canonical]; ok {
		return qerrors.Business(qerrors.CodeQueueExists, "queue already exists").WithQueue(p.Canonical)
	}
	b.queues[p.Canonical] = newQueue(p, opts)
	log.Debug().Str("queue", p.Canonical).Msg("Created simulated queue")
	return nil
}

func newQueue(p *transport.Pathname, opts transport.CreateOptions) *queue {
	now := time.Now()
	return &queue{
		info: transport.QueueInfo{
			Name:          p.Queue,
			Path:          p.Canonical,
			Status:        transport.QueueActive,
			Label:         opts.Label,
			MaxSizeKB:     opts.MaxSizeKB,
			Transactional: opts.Transactional,
			Journal:       opts.Journal,
			CreatedAt:     now,
			UpdatedAt:     now,
		},
	}
}

func (b *Backend) DeleteQueue(ctx context.Context, name string) error {
	p, err := transport.ParsePathname(name)
	if err != nil {
		return err
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	if _, ok := b.queues[p.Canonical]; !ok {
		return qerrors.Business(qerrors.CodeQueueNotFound, "queue not found").WithQueue(p.Canonical)
	}
	delete(b.queues, p.Canonical)
	log.Debug().Str("queue", p.Canonical).Msg("Deleted simulated queue")
	return nil
}

func (b *Backend) QueueExists(ctx context.Context, name string) (bool, error) {
	p, err := transport.ParsePathname(name)
	if err != nil {
		return false, err
	}
	b.mu.RLock()
	defer b.mu.RUnlock()
	_, ok := b.queues[p.Canonical]
	return ok, nil
}

// Send enqueues one message, creating the destination queue when missing. At
// capacity the new message is dropped and returned with FAILED status plus a
// business error.
func (b *Backend) Send(ctx context.Context, opts transport.SendOptions) (*transport.Message, error) {
	p, err := transport.ParsePathname(opts.Queue)
	if err != nil {
		return nil, err
	}
	q := b.getOrCreate(p)

	msg := transport.Message{
		ID:            uuid.NewString(),
		Queue:         p.Canonical,
		Body:          append([]byte(nil), opts.Body...),
		Label:         opts.Label,
		Priority:      transport.EffectivePriority(opts.Priority),
		CorrelationID: opts.CorrelationID,
		Status:        transport.StatusQueued,
		SentAt:        time.Now(),
	}

	q.mu.Lock()
	defer q.mu.Unlock()
	if q.depthLocked() >= b.maxDepth {
		msg.Status = transport.StatusFailed
		log.Debug().Str("queue", p.Canonical).Str("id", msg.ID).Msg("Simulated queue full, dropping message")
		return &msg, qerrors.Business(qerrors.CodeCapacity, "queue is at capacity").WithQueue(p.Canonical)
	}
	q.bands[msg.Priority] = append(q.bands[msg.Priority], msg)
	q.bytes += int64(len(msg.Body))
	q.lastSend = msg.SentAt
	log.Debug().Str("queue", p.Canonical).Str("id", msg.ID).Int("priority", msg.Priority).Msg("Pushed message to simulated queue")

	sent := msg
	sent.Status = transport.StatusSent
	return &sent, nil
}

func (b *Backend) getOrCreate(p *transport.Pathname) *queue {
	b.mu.Lock()
	defer b.mu.Unlock()
	if q, ok := b.queues[p.Canonical]; ok {
		return q
	}
	q := newQueue(p, transport.CreateOptions{})
	b.queues[p.Canonical] = q
	log.Debug().Str("queue", p.Canonical).Msg("Auto-created simulated queue on send")
	return q
}

// Receive pops (or peeks) the highest-priority message. Timeouts are accepted
// but not enforced: buffer access is instantaneous, so an empty queue returns
// (nil, nil) immediately.
func (b *Backend) Receive(ctx context.Context, opts transport.ReceiveOptions) (*transport.Message, error) {
	p, err := transport.ParsePathname(opts.Queue)
	if err != nil {
		return nil, err
	}
	b.mu.RLock()
	q, ok := b.queues[p.Canonical]
	b.mu.RUnlock()
	if !ok {
		return nil, qerrors.Business(qerrors.CodeQueueNotFound, "queue not found").WithQueue(p.Canonical)
	}

	q.mu.Lock()
	defer q.mu.Unlock()
	for band := transport.MaxPriority; band >= transport.MinPriority; band-- {
		if len(q.bands[band]) == 0 {
			continue
		}
		msg := q.bands[band][0]
		if opts.Peek {
			log.Debug().Str("queue", p.Canonical).Str("id", msg.ID).Msg("Peeked message from simulated queue")
			return &msg, nil
		}
		q.bands[band] = q.bands[band][1:]
		q.bytes -= int64(len(msg.Body))
		q.lastRecv = time.Now()
		msg.Status = transport.StatusReceived
		msg.ReceivedAt = q.lastRecv
		log.Debug().Str("queue", p.Canonical).Str("id", msg.ID).Msg("Popped message from simulated queue")
		return &msg, nil
	}
	return nil, nil
}

func (b *Backend) Purge(ctx context.Context, name string) error {
	p, err := transport.ParsePathname(name)
	if err != nil {
		return err
	}
	b.mu.RLock()
	q, ok := b.queues[p.Canonical]
	b.mu.RUnlock()
	if !ok {
		return qerrors.Business(qerrors.CodeQueueNotFound, "queue not found").WithQueue(p.Canonical)
	}
	q.mu.Lock()
	defer q.mu.Unlock()
	for i := range q.bands {
		q.bands[i] = nil
	}
	q.bytes = 0
	log.Debug().Str("queue", p.Canonical).Msg("Purged simulated queue")
	return nil
}

func (b *Backend) MessageCount(ctx context.Context, name string) (int64, error) {
	p, err := transport.ParsePathname(name)
	if err != nil {
		return 0, err
	}
	b.mu.RLock()
	q, ok := b.queues[p.Canonical]
	b.mu.RUnlock()
	if !ok {
		return 0, qerrors.Business(qerrors.CodeQueueNotFound, "queue not found").WithQueue(p.Canonical)
	}
	q.mu.Lock()
	defer q.mu.Unlock()
	return int64(q.depthLocked()), nil
}

func (b *Backend) UpdateQueue(ctx context.Context, name string, opts transport.UpdateOptions) error {
	p, err := transport.ParsePathname(name)
	if err != nil {
		return err
	}
	b.mu.RLock()
	q, ok := b.queues[p.Canonical]
	b.mu.RUnlock()
	if !ok {
		return qerrors.Business(qerrors.CodeQueueNotFound, "queue not found").WithQueue(p.Canonical)
	}
	q.mu.Lock()
	defer q.mu.Unlock()
	if opts.Label != nil {
		q.info.Label = *opts.Label
	}
	if opts.MaxSizeKB != nil {
		q.info.MaxSizeKB = *opts.MaxSizeKB
	}
	if opts.Journal != nil {
		q.info.Journal = *opts.Journal
	}
	q.info.UpdatedAt = time.Now()
	log.Debug().Str("queue", p.Canonical).Msg("Updated simulated queue")
	return nil
}

func (b *Backend) ListQueues(ctx context.Context) ([]transport.QueueInfo, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	infos := make([]transport.QueueInfo, 0, len(b.queues))
	for _, q := range b.queues {
		q.mu.Lock()
		info := q.info
		info.MessageCount = int64(q.depthLocked())
		q.mu.Unlock()
		infos = append(infos, info)
	}
	sort.Slice(infos, func(i, j int) bool { return infos[i].Path < infos[j].Path })
	return infos, nil
}

func (b *Backend) Stats(ctx context.Context, name string) (transport.QueueStats, error) {
	p, err := transport.ParsePathname(name)
	if err != nil {
		return transport.QueueStats{}, err
	}
	b.mu.RLock()
	q, ok := b.queues[p.Canonical]
	b.mu.RUnlock()
	if !ok {
		return transport.QueueStats{}, qerrors.Business(qerrors.CodeQueueNotFound, "queue not found").WithQueue(p.Canonical)
	}
	q.mu.Lock()
	defer q.mu.Unlock()
	return transport.QueueStats{
		Queue:         p.Canonical,
		MessageCount:  int64(q.depthLocked()),
		BytesInQueue:  q.bytes,
		LastSendAt:    q.lastSend,
		LastReceiveAt: q.lastRecv,
	}, nil
}

func (q *queue) depthLocked() int {
	n := 0
	for _, band := range q.bands {
		n += len(band)
	}
	return n
}
