package gateway

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quegate/quegate/internal/core/qerrors"
	"github.com/quegate/quegate/internal/core/transport"
)

func TestCreateQueue_CreatesAndCaches(t *testing.T) {
	g := newTestGateway(t)
	ctx := context.Background()

	dto, err := g.svc.CreateQueue(ctx, "orders", transport.CreateOptions{Label: "order intake", Journal: true})
	require.NoError(t, err)
	assert.Equal(t, "orders", dto.Name)
	assert.Equal(t, private("orders"), dto.Path)
	assert.Equal(t, "ACTIVE", dto.Status)
	assert.Equal(t, "order intake", dto.Label)
	assert.True(t, dto.Journal)
	assert.False(t, dto.Stale)

	rec, err := g.st.GetQueue(ctx, private("orders"))
	require.NoError(t, err)
	assert.Equal(t, "orders", rec.Name)
	assert.Equal(t, "order intake", rec.Label)
}

func TestCreateQueue_DuplicateFails(t *testing.T) {
	g := newTestGateway(t)
	ctx := context.Background()

	_, err := g.svc.CreateQueue(ctx, "orders", transport.CreateOptions{})
	require.NoError(t, err)

	_, err = g.svc.CreateQueue(ctx, "orders", transport.CreateOptions{})
	require.Error(t, err)
	assert.Equal(t, qerrors.KindBusiness, qerrors.KindOf(err))
	assert.Equal(t, qerrors.CodeQueueExists, qerrors.CodeOf(err))
}

func TestCreateQueue_RejectsBadInput(t *testing.T) {
	g := newTestGateway(t)
	ctx := context.Background()

	_, err := g.svc.CreateQueue(ctx, "", transport.CreateOptions{})
	assert.Equal(t, qerrors.CodeInvalidName, qerrors.CodeOf(err))

	_, err = g.svc.CreateQueue(ctx, "orders", transport.CreateOptions{Label: strings.Repeat("x", transport.MaxLabelChars+1)})
	assert.Equal(t, qerrors.CodeInvalidLabel, qerrors.CodeOf(err))

	_, err = g.svc.CreateQueue(ctx, "orders", transport.CreateOptions{MaxSizeKB: -1})
	assert.Equal(t, qerrors.CodeInvalidRequest, qerrors.CodeOf(err))
}

func TestListQueues_RefreshesCacheAndDepths(t *testing.T) {
	g := newTestGateway(t)
	ctx := context.Background()

	_, err := g.svc.CreateQueue(ctx, "alpha", transport.CreateOptions{})
	require.NoError(t, err)
	_, err = g.svc.Send(ctx, transport.SendOptions{Queue: "beta", Body: []byte("one")})
	require.NoError(t, err)

	queues, stale, err := g.svc.ListQueues(ctx)
	require.NoError(t, err)
	assert.False(t, stale)
	require.Len(t, queues, 2)
	assert.Equal(t, private("alpha"), queues[0].Path)
	assert.Equal(t, private("beta"), queues[1].Path)
	assert.Equal(t, int64(1), queues[1].MessageCount)

	qm := g.mc.GetQueueMetrics(private("beta"))
	require.NotNil(t, qm)
	assert.Equal(t, int64(1), qm.Depth.Load())

	recs, err := g.st.ListQueues(ctx)
	require.NoError(t, err)
	assert.Len(t, recs, 2)
}

func TestListQueues_ServesStaleFromCache(t *testing.T) {
	g := newTestGateway(t)
	ctx := context.Background()

	_, err := g.svc.CreateQueue(ctx, "alpha", transport.CreateOptions{})
	require.NoError(t, err)
	_, _, err = g.svc.ListQueues(ctx)
	require.NoError(t, err)

	g.goUnreachable()

	queues, stale, err := g.svc.ListQueues(ctx)
	require.NoError(t, err)
	assert.True(t, stale)
	require.Len(t, queues, 1)
	assert.True(t, queues[0].Stale)
	assert.Equal(t, private("alpha"), queues[0].Path)
}

func TestListQueues_ColdCacheSurfacesError(t *testing.T) {
	g := newTestGateway(t)
	g.goUnreachable()

	_, stale, err := g.svc.ListQueues(context.Background())
	require.Error(t, err)
	assert.False(t, stale)
	assert.Equal(t, qerrors.KindConnection, qerrors.KindOf(err))
}

func TestGetQueue_AcceptsAnyPathForm(t *testing.T) {
	g := newTestGateway(t)
	ctx := context.Background()

	_, err := g.svc.CreateQueue(ctx, "orders", transport.CreateOptions{})
	require.NoError(t, err)

	byLeaf, _, err := g.svc.GetQueue(ctx, "orders")
	require.NoError(t, err)
	byPath, _, err := g.svc.GetQueue(ctx, private("orders"))
	require.NoError(t, err)
	assert.Equal(t, byLeaf.Path, byPath.Path)
}

func TestGetQueue_NotFound(t *testing.T) {
	g := newTestGateway(t)

	_, _, err := g.svc.GetQueue(context.Background(), "ghost")
	require.Error(t, err)
	assert.Equal(t, qerrors.CodeQueueNotFound, qerrors.CodeOf(err))

	var qe *qerrors.Error
	require.ErrorAs(t, err, &qe)
	assert.Equal(t, "get_queue", qe.Op)
	assert.Equal(t, private("ghost"), qe.Queue)
}

func TestGetQueue_StaleFallback(t *testing.T) {
	g := newTestGateway(t)
	ctx := context.Background()

	_, err := g.svc.CreateQueue(ctx, "orders", transport.CreateOptions{Label: "cached"})
	require.NoError(t, err)

	g.goUnreachable()

	dto, stale, err := g.svc.GetQueue(ctx, "orders")
	require.NoError(t, err)
	assert.True(t, stale)
	assert.True(t, dto.Stale)
	assert.Equal(t, "cached", dto.Label)
}

func TestUpdateQueue_AppliesAndMergesCache(t *testing.T) {
	g := newTestGateway(t)
	ctx := context.Background()

	_, err := g.svc.CreateQueue(ctx, "orders", transport.CreateOptions{Label: "old"})
	require.NoError(t, err)

	label := "new label"
	journal := true
	err = g.svc.UpdateQueue(ctx, "orders", transport.UpdateOptions{Label: &label, Journal: &journal})
	require.NoError(t, err)

	dto, _, err := g.svc.GetQueue(ctx, "orders")
	require.NoError(t, err)
	assert.Equal(t, "new label", dto.Label)
	assert.True(t, dto.Journal)

	rec, err := g.st.GetQueue(ctx, private("orders"))
	require.NoError(t, err)
	assert.Equal(t, "new label", rec.Label)
	assert.True(t, rec.Journal)
}

func TestUpdateQueue_RequiresAtLeastOneField(t *testing.T) {
	g := newTestGateway(t)

	err := g.svc.UpdateQueue(context.Background(), "orders", transport.UpdateOptions{})
	require.Error(t, err)
	assert.Equal(t, qerrors.CodeInvalidRequest, qerrors.CodeOf(err))
}

func TestUpdateQueue_MissingQueue(t *testing.T) {
	g := newTestGateway(t)
	label := "x"

	err := g.svc.UpdateQueue(context.Background(), "ghost", transport.UpdateOptions{Label: &label})
	require.Error(t, err)
	assert.Equal(t, qerrors.CodeQueueNotFound, qerrors.CodeOf(err))
}

func TestDeleteQueue_RemovesEverywhere(t *testing.T) {
	g := newTestGateway(t)
	ctx := context.Background()

	_, err := g.svc.Send(ctx, transport.SendOptions{Queue: "orders", Body: []byte("one")})
	require.NoError(t, err)
	_, _, err = g.svc.ListQueues(ctx)
	require.NoError(t, err)
	require.NotNil(t, g.mc.GetQueueMetrics(private("orders")))

	err = g.svc.DeleteQueue(ctx, "orders")
	require.NoError(t, err)

	exists, err := g.svc.QueueExists(ctx, "orders")
	require.NoError(t, err)
	assert.False(t, exists)
	assert.Nil(t, g.mc.GetQueueMetrics(private("orders")))

	_, err = g.st.GetQueue(ctx, private("orders"))
	assert.Error(t, err)
}

func TestDeleteQueue_MissingQueue(t *testing.T) {
	g := newTestGateway(t)

	err := g.svc.DeleteQueue(context.Background(), "ghost")
	require.Error(t, err)
	assert.Equal(t, qerrors.CodeQueueNotFound, qerrors.CodeOf(err))
}

func TestPurgeQueue_ZeroesCountAndCache(t *testing.T) {
	g := newTestGateway(t)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		_, err := g.svc.Send(ctx, transport.SendOptions{Queue: "orders", Body: []byte("m")})
		require.NoError(t, err)
	}
	_, _, err := g.svc.ListQueues(ctx)
	require.NoError(t, err)

	require.NoError(t, g.svc.PurgeQueue(ctx, "orders"))

	count, err := g.svc.MessageCount(ctx, "orders")
	require.NoError(t, err)
	assert.Zero(t, count)

	rec, err := g.st.GetQueue(ctx, private("orders"))
	require.NoError(t, err)
	assert.Zero(t, rec.MessageCount)
}

func TestMessageCount_WritesThroughCache(t *testing.T) {
	g := newTestGateway(t)
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		_, err := g.svc.Send(ctx, transport.SendOptions{Queue: "orders", Body: []byte("m")})
		require.NoError(t, err)
	}
	_, _, err := g.svc.ListQueues(ctx)
	require.NoError(t, err)

	count, err := g.svc.MessageCount(ctx, "orders")
	require.NoError(t, err)
	assert.Equal(t, int64(2), count)

	rec, err := g.st.GetQueue(ctx, private("orders"))
	require.NoError(t, err)
	assert.Equal(t, int64(2), rec.MessageCount)

	qm := g.mc.GetQueueMetrics(private("orders"))
	require.NotNil(t, qm)
	assert.Equal(t, int64(2), qm.Depth.Load())
}

func TestQueueStats_ReturnsSnapshot(t *testing.T) {
	g := newTestGateway(t)
	ctx := context.Background()

	_, err := g.svc.Send(ctx, transport.SendOptions{Queue: "orders", Body: []byte("hello")})
	require.NoError(t, err)

	stats, err := g.svc.QueueStats(ctx, "orders")
	require.NoError(t, err)
	assert.Equal(t, private("orders"), stats.Queue)
	assert.Equal(t, int64(1), stats.MessageCount)
	assert.Equal(t, int64(5), stats.BytesInQueue)
	assert.False(t, stats.LastSendAt.IsZero())
}

func TestQueueExists_ReportsBoth(t *testing.T) {
	g := newTestGateway(t)
	ctx := context.Background()

	exists, err := g.svc.QueueExists(ctx, "orders")
	require.NoError(t, err)
	assert.False(t, exists)

	_, err = g.svc.CreateQueue(ctx, "orders", transport.CreateOptions{})
	require.NoError(t, err)

	exists, err = g.svc.QueueExists(ctx, "orders")
	require.NoError(t, err)
	assert.True(t, exists)
}
