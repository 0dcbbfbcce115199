//go:build !windows

package msmq

import (
	"context"

	"github.com/quegate/quegate/internal/core/qerrors"
	"github.com/quegate/quegate/internal/core/transport"
)

// Backend is the native runtime backend. Off windows the runtime library
// does not exist, so every entry point reports the broker unreachable and
// backend selection moves on to the next candidate.
type Backend struct {
	host       string
	probeQueue string
}

var _ transport.Backend = (*Backend)(nil)

func New(host, probeQueue string) *Backend {
	return &Backend{host: host, probeQueue: probeQueue}
}

func (b *Backend) errUnavailable() error {
	return qerrors.Connection(qerrors.CodeUnreachable, "native queue runtime requires windows", nil)
}

func (b *Backend) Open(ctx context.Context) error  { return b.errUnavailable() }
func (b *Backend) Close() error                    { return nil }
func (b *Backend) Kind() transport.Kind            { return transport.KindNative }
func (b *Backend) Probe(ctx context.Context) error { return b.errUnavailable() }

func (b *Backend) CreateQueue(ctx context.Context, name string, opts transport.CreateOptions) error {
	return b.errUnavailable()
}

func (b *Backend) DeleteQueue(ctx context.Context, name string) error {
	return b.errUnavailable()
}

func (b *Backend) QueueExists(ctx context.Context, name string) (bool, error) {
	return false, b.errUnavailable()
}

func (b *Backend) Send(ctx context.Context, opts transport.SendOptions) (*transport.Message, error) {
	return nil, b.errUnavailable()
}

func (b *Backend) Receive(ctx context.Context, opts transport.ReceiveOptions) (*transport.Message, error) {
	return nil, b.errUnavailable()
}

func (b *Backend) Purge(ctx context.Context, name string) error {
	return b.errUnavailable()
}

func (b *Backend) MessageCount(ctx context.Context, name string) (int64, error) {
	return 0, b.errUnavailable()
}

func (b *Backend) UpdateQueue(ctx context.Context, name string, opts transport.UpdateOptions) error {
	return b.errUnavailable()
}

func (b *Backend) ListQueues(ctx context.Context) ([]transport.QueueInfo, error) {
	return nil, b.errUnavailable()
}

func (b *Backend) Stats(ctx context.Context, name string) (transport.QueueStats, error) {
	return transport.QueueStats{}, b.errUnavailable()
}
