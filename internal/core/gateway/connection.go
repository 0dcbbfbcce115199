package gateway

import (
	"context"
	"time"

	"github.com/quegate/quegate/internal/core/transport"
)

// Connect establishes the backend connection, walking the configured
// candidate order.
func (s *Service) Connect(ctx context.Context) error {
	const op = "connect"
	start := time.Now()
	if err := s.manager.Connect(ctx); err != nil {
		s.alertConnection(ctx, "", err)
		return s.done(op, "", start, err)
	}
	return s.done(op, "", start, nil)
}

// Disconnect tears the backend down. Safe to call while disconnected.
func (s *Service) Disconnect() error {
	return s.manager.Disconnect()
}

// Status reports the connection health snapshot.
func (s *Service) Status() transport.Health {
	return s.manager.Health()
}

// IsConnected reports whether a backend is currently active.
func (s *Service) IsConnected() bool {
	return s.manager.IsConnected()
}
