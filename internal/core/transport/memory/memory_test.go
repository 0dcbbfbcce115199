package memory

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quegate/quegate/internal/core/qerrors"
	"github.com/quegate/quegate/internal/core/transport"
)

func send(t *testing.T, b *Backend, queue, body string, priority int) *transport.Message {
	t.Helper()
	msg, err := b.Send(context.Background(), transport.SendOptions{
		Queue:    queue,
		Body:     []byte(body),
		Priority: &priority,
	})
	require.NoError(t, err)
	return msg
}

func receiveBody(t *testing.T, b *Backend, queue string) string {
	t.Helper()
	msg, err := b.Receive(context.Background(), transport.ReceiveOptions{Queue: queue})
	require.NoError(t, err)
	require.NotNil(t, msg)
	return string(msg.Body)
}

func TestCreateDeleteExists(t *testing.T) {
	b := New(0)
	ctx := context.Background()

	exists, err := b.QueueExists(ctx, "orders")
	require.NoError(t, err)
	assert.False(t, exists)

	require.NoError(t, b.CreateQueue(ctx, "orders", transport.CreateOptions{Label: "order intake"}))

	exists, err = b.QueueExists(ctx, `.\private$\orders`)
	require.NoError(t, err)
	assert.True(t, exists, "bare and explicit forms must address the same queue")

	err = b.CreateQueue(ctx, "orders", transport.CreateOptions{})
	assert.Equal(t, qerrors.CodeQueueExists, qerrors.CodeOf(err))

	require.NoError(t, b.DeleteQueue(ctx, "orders"))
	err = b.DeleteQueue(ctx, "orders")
	assert.Equal(t, qerrors.CodeQueueNotFound, qerrors.CodeOf(err))
}

func TestSendAutoCreatesQueue(t *testing.T) {
	b := New(0)
	ctx := context.Background()

	msg, err := b.Send(ctx, transport.SendOptions{Queue: "fresh", Body: []byte("hi")})
	require.NoError(t, err)
	assert.Equal(t, transport.StatusSent, msg.Status)
	assert.Equal(t, transport.DefaultPriority, msg.Priority)

	exists, err := b.QueueExists(ctx, "fresh")
	require.NoError(t, err)
	assert.True(t, exists)
}

func TestReceiveOrderIsPriorityThenFIFO(t *testing.T) {
	b := New(0)

	send(t, b, "mix", "low-1", 1)
	send(t, b, "mix", "high-1", 6)
	send(t, b, "mix", "high-2", 6)
	send(t, b, "mix", "mid", 3)

	assert.Equal(t, "high-1", receiveBody(t, b, "mix"))
	assert.Equal(t, "high-2", receiveBody(t, b, "mix"))
	assert.Equal(t, "mid", receiveBody(t, b, "mix"))
	assert.Equal(t, "low-1", receiveBody(t, b, "mix"))
}

func TestPeekDoesNotRemove(t *testing.T) {
	b := New(0)
	send(t, b, "peeked", "only", 3)

	for i := 0; i < 2; i++ {
		msg, err := b.Receive(context.Background(), transport.ReceiveOptions{Queue: "peeked", Peek: true})
		require.NoError(t, err)
		require.NotNil(t, msg)
		assert.Equal(t, "only", string(msg.Body))
	}

	count, err := b.MessageCount(context.Background(), "peeked")
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)
}

func TestReceiveEmptyReturnsNilNil(t *testing.T) {
	b := New(0)
	require.NoError(t, b.CreateQueue(context.Background(), "empty", transport.CreateOptions{}))

	start := time.Now()
	msg, err := b.Receive(context.Background(), transport.ReceiveOptions{
		Queue:   "empty",
		Timeout: 5 * time.Second,
	})
	require.NoError(t, err)
	assert.Nil(t, msg)
	assert.Less(t, time.Since(start), time.Second, "timeout is accepted but not enforced")
}

func TestReceiveMissingQueueIsBusinessError(t *testing.T) {
	b := New(0)
	_, err := b.Receive(context.Background(), transport.ReceiveOptions{Queue: "ghost"})
	assert.Equal(t, qerrors.KindBusiness, qerrors.KindOf(err))
	assert.Equal(t, qerrors.CodeQueueNotFound, qerrors.CodeOf(err))
}

func TestCapacityDropsNewestWithFailedStatus(t *testing.T) {
	b := New(2)
	send(t, b, "small", "a", 3)
	send(t, b, "small", "b", 3)

	msg, err := b.Send(context.Background(), transport.SendOptions{Queue: "small", Body: []byte("c")})
	require.Error(t, err)
	assert.Equal(t, qerrors.CodeCapacity, qerrors.CodeOf(err))
	require.NotNil(t, msg)
	assert.Equal(t, transport.StatusFailed, msg.Status)

	// The first two survive untouched.
	assert.Equal(t, "a", receiveBody(t, b, "small"))
	assert.Equal(t, "b", receiveBody(t, b, "small"))
}

func TestPurgeAndCount(t *testing.T) {
	b := New(0)
	for i := 0; i < 5; i++ {
		send(t, b, "bulk", fmt.Sprintf("m-%d", i), 3)
	}

	count, err := b.MessageCount(context.Background(), "bulk")
	require.NoError(t, err)
	assert.Equal(t, int64(5), count)

	require.NoError(t, b.Purge(context.Background(), "bulk"))

	count, err = b.MessageCount(context.Background(), "bulk")
	require.NoError(t, err)
	assert.Equal(t, int64(0), count)

	exists, err := b.QueueExists(context.Background(), "bulk")
	require.NoError(t, err)
	assert.True(t, exists, "purge empties the queue but keeps it")
}

func TestUpdateQueue(t *testing.T) {
	b := New(0)
	ctx := context.Background()
	require.NoError(t, b.CreateQueue(ctx, "tuned", transport.CreateOptions{Label: "before"}))

	label := "after"
	quota := int64(2048)
	journal := true
	require.NoError(t, b.UpdateQueue(ctx, "tuned", transport.UpdateOptions{
		Label:     &label,
		MaxSizeKB: &quota,
		Journal:   &journal,
	}))

	infos, err := b.ListQueues(ctx)
	require.NoError(t, err)
	require.Len(t, infos, 1)
	assert.Equal(t, "after", infos[0].Label)
	assert.Equal(t, int64(2048), infos[0].MaxSizeKB)
	assert.True(t, infos[0].Journal)

	err = b.UpdateQueue(ctx, "ghost", transport.UpdateOptions{})
	assert.Equal(t, qerrors.CodeQueueNotFound, qerrors.CodeOf(err))
}

func TestListQueuesSortedWithCounts(t *testing.T) {
	b := New(0)
	send(t, b, "zebra", "z", 3)
	send(t, b, "alpha", "a1", 3)
	send(t, b, "alpha", "a2", 3)

	infos, err := b.ListQueues(context.Background())
	require.NoError(t, err)
	require.Len(t, infos, 2)
	assert.Equal(t, `.\private$\alpha`, infos[0].Path)
	assert.Equal(t, int64(2), infos[0].MessageCount)
	assert.Equal(t, `.\private$\zebra`, infos[1].Path)
	assert.Equal(t, int64(1), infos[1].MessageCount)
}

func TestStatsTracksBytesAndActivity(t *testing.T) {
	b := New(0)
	send(t, b, "audited", "12345", 3)

	stats, err := b.Stats(context.Background(), "audited")
	require.NoError(t, err)
	assert.Equal(t, int64(1), stats.MessageCount)
	assert.Equal(t, int64(5), stats.BytesInQueue)
	assert.False(t, stats.LastSendAt.IsZero())
	assert.True(t, stats.LastReceiveAt.IsZero())

	_ = receiveBody(t, b, "audited")

	stats, err = b.Stats(context.Background(), "audited")
	require.NoError(t, err)
	assert.Equal(t, int64(0), stats.MessageCount)
	assert.Equal(t, int64(0), stats.BytesInQueue)
	assert.False(t, stats.LastReceiveAt.IsZero())
}

func TestProbeAlwaysSucceeds(t *testing.T) {
	b := New(0)
	assert.NoError(t, b.Probe(context.Background()))
	assert.NoError(t, b.Open(context.Background()))
	assert.NoError(t, b.Close())
}
