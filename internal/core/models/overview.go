package models

import (
	"github.com/quegate/quegate/internal/core/transport"
	"github.com/quegate/quegate/pkg/metrics"
)

type OverviewGatewayDetails struct {
	Product    string `json:"product"`
	Version    string `json:"version"`
	Platform   string `json:"platform"`
	GoVersion  string `json:"go_version"`
	UptimeSecs int    `json:"uptime_secs"`
	StartTime  string `json:"start_time"`
}

type OverviewObjectTotals struct {
	Queues       int   `json:"queues"`
	ActiveQueues int   `json:"active_queues"`
	Messages     int64 `json:"messages"`
	OpenAlerts   int   `json:"open_alerts"`
}

// Overview is the statistics snapshot returned by GET /api/overview: build
// details, connection health, queue totals, and the metrics collector's
// gateway snapshot.
type Overview struct {
	Gateway      OverviewGatewayDetails   `json:"gateway"`
	Connection   transport.Health         `json:"connection"`
	ObjectTotals OverviewObjectTotals     `json:"object_totals"`
	Metrics      *metrics.GatewaySnapshot `json:"metrics,omitempty"`
}
