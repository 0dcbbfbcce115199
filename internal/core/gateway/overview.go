package gateway

import (
	"context"
	"runtime"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/quegate/quegate/internal/core/models"
	"github.com/quegate/quegate/internal/core/transport"
)

// Statistics assembles the gateway-wide overview: build details, connection
// health, object totals, and the metrics snapshot. Totals the backend cannot
// provide right now are reported as zero rather than failing the overview.
func (s *Service) Statistics(ctx context.Context) (*models.Overview, error) {
	overview := &models.Overview{
		Gateway: models.OverviewGatewayDetails{
			Product:    "quegate",
			Version:    s.cfg.Version,
			Platform:   runtime.GOOS,
			GoVersion:  runtime.Version(),
			UptimeSecs: int(time.Since(s.startedAt).Seconds()),
			StartTime:  s.startedAt.UTC().Format(time.RFC3339),
		},
		Connection: s.manager.Health(),
		Metrics:    s.collector.GetGatewaySnapshot(),
	}

	queues, _, err := s.ListQueues(ctx)
	if err != nil {
		log.Debug().Err(err).Msg("Overview queue totals unavailable")
	} else {
		overview.ObjectTotals.Queues = len(queues)
		for _, q := range queues {
			if q.Status == string(transport.QueueActive) {
				overview.ObjectTotals.ActiveQueues++
			}
			overview.ObjectTotals.Messages += q.MessageCount
		}
	}

	if s.store != nil {
		if open, err := s.store.OpenAlertCount(ctx); err == nil {
			overview.ObjectTotals.OpenAlerts = int(open)
		}
	}
	return overview, nil
}
