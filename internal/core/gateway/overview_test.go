package gateway

import (
	"context"
	"runtime"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quegate/quegate/internal/alert"
	"github.com/quegate/quegate/internal/core/transport"
)

func TestStatistics_AssemblesOverview(t *testing.T) {
	g := newTestGateway(t)
	ctx := context.Background()

	_, err := g.svc.CreateQueue(ctx, "alpha", transport.CreateOptions{})
	require.NoError(t, err)
	_, err = g.svc.Send(ctx, transport.SendOptions{Queue: "beta", Body: []byte("one")})
	require.NoError(t, err)
	_, err = g.svc.Send(ctx, transport.SendOptions{Queue: "beta", Body: []byte("two")})
	require.NoError(t, err)
	g.alerts.Raise(ctx, alert.SeverityError, alert.PurposeConnection, "BROKER_UNREACHABLE", "", "down")

	overview, err := g.svc.Statistics(ctx)
	require.NoError(t, err)

	assert.Equal(t, "quegate", overview.Gateway.Product)
	assert.Equal(t, "test", overview.Gateway.Version)
	assert.Equal(t, runtime.GOOS, overview.Gateway.Platform)
	assert.Equal(t, runtime.Version(), overview.Gateway.GoVersion)
	_, perr := time.Parse(time.RFC3339, overview.Gateway.StartTime)
	assert.NoError(t, perr)

	assert.Equal(t, "CONNECTED", overview.Connection.StateText)
	assert.Equal(t, 2, overview.ObjectTotals.Queues)
	assert.Equal(t, 2, overview.ObjectTotals.ActiveQueues)
	assert.Equal(t, int64(2), overview.ObjectTotals.Messages)
	assert.Equal(t, 1, overview.ObjectTotals.OpenAlerts)

	require.NotNil(t, overview.Metrics)
	assert.Positive(t, overview.Metrics.TotalOperations)
}

func TestStatistics_ToleratesUnreachableBackend(t *testing.T) {
	g := newTestGateway(t)
	g.goUnreachable()

	overview, err := g.svc.Statistics(context.Background())
	require.NoError(t, err)
	assert.Zero(t, overview.ObjectTotals.Queues)
	assert.Zero(t, overview.ObjectTotals.Messages)
	assert.NotNil(t, overview.Metrics)
}
