package gateway

import (
	"context"

	"github.com/quegate/quegate/internal/core/conn"
	"github.com/quegate/quegate/internal/core/transport"
)

// ConnectionProvider is the minimal interface the gateway needs from the
// connection lifecycle manager.
type ConnectionProvider interface {
	// Connect establishes a backend, walking the candidate order.
	Connect(ctx context.Context) error
	// Disconnect tears the backend down. The resolved kind is kept.
	Disconnect() error
	// Ensure reconnects when the connection was lost. No-op while connected.
	Ensure(ctx context.Context) error
	// Backend returns the active backend, nil while disconnected.
	Backend() transport.Backend
	// OnConnectionError reports a connection-kind failure seen mid-operation.
	OnConnectionError(err error)
	// Touch stamps the last-activity time after a successful operation.
	Touch()
	IsConnected() bool
	Health() transport.Health
}

var _ ConnectionProvider = (*conn.Manager)(nil)
