package store

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testAlert(code, queue string, at time.Time) AlertRecord {
	return AlertRecord{
		Severity:  "ERROR",
		Purpose:   "CONNECTION",
		Code:      code,
		Queue:     queue,
		Message:   "broker unreachable",
		CreatedAt: at,
	}
}

func TestSaveAlert_InsertsNewRow(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	saved, folded, err := s.SaveAlert(ctx, testAlert("BROKER_UNREACHABLE", "", time.Now().UTC()), time.Minute)
	require.NoError(t, err)
	assert.False(t, folded)
	assert.NotZero(t, saved.ID)
	assert.Equal(t, int64(1), saved.Count)
	assert.Nil(t, saved.AckedAt)
}

func TestSaveAlert_FoldsWithinWindow(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	now := time.Now().UTC()

	first, folded, err := s.SaveAlert(ctx, testAlert("BROKER_UNREACHABLE", "orders", now), time.Minute)
	require.NoError(t, err)
	require.False(t, folded)

	repeat := testAlert("BROKER_UNREACHABLE", "orders", now.Add(10*time.Second))
	repeat.Message = "still unreachable"
	second, folded, err := s.SaveAlert(ctx, repeat, time.Minute)
	require.NoError(t, err)
	assert.True(t, folded)
	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, int64(2), second.Count)
	assert.Equal(t, "still unreachable", second.Message)

	// A different queue never folds.
	other, folded, err := s.SaveAlert(ctx, testAlert("BROKER_UNREACHABLE", "billing", now), time.Minute)
	require.NoError(t, err)
	assert.False(t, folded)
	assert.NotEqual(t, first.ID, other.ID)

	alerts, err := s.ListAlerts(ctx, false, 0)
	require.NoError(t, err)
	assert.Len(t, alerts, 2)
}

func TestSaveAlert_OutsideWindowInsertsNew(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	now := time.Now().UTC()

	first, _, err := s.SaveAlert(ctx, testAlert("SEND_FAILED", "orders", now.Add(-5*time.Minute)), time.Minute)
	require.NoError(t, err)

	second, folded, err := s.SaveAlert(ctx, testAlert("SEND_FAILED", "orders", now), time.Minute)
	require.NoError(t, err)
	assert.False(t, folded)
	assert.NotEqual(t, first.ID, second.ID)
}

func TestSaveAlert_AckedAlertNeverFolds(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	now := time.Now().UTC()

	first, _, err := s.SaveAlert(ctx, testAlert("SEND_FAILED", "orders", now), time.Minute)
	require.NoError(t, err)
	require.NoError(t, s.AckAlert(ctx, first.ID))

	second, folded, err := s.SaveAlert(ctx, testAlert("SEND_FAILED", "orders", now.Add(time.Second)), time.Minute)
	require.NoError(t, err)
	assert.False(t, folded)
	assert.NotEqual(t, first.ID, second.ID)
}

func TestAckAlert_Idempotent(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	saved, _, err := s.SaveAlert(ctx, testAlert("SEND_FAILED", "orders", time.Now().UTC()), time.Minute)
	require.NoError(t, err)

	require.NoError(t, s.AckAlert(ctx, saved.ID))

	alerts, err := s.ListAlerts(ctx, true, 0)
	require.NoError(t, err)
	require.Len(t, alerts, 1)
	require.NotNil(t, alerts[0].AckedAt)
	firstAck := *alerts[0].AckedAt

	// Second ack keeps the original timestamp.
	require.NoError(t, s.AckAlert(ctx, saved.ID))
	alerts, err = s.ListAlerts(ctx, true, 0)
	require.NoError(t, err)
	require.NotNil(t, alerts[0].AckedAt)
	assert.Equal(t, firstAck, *alerts[0].AckedAt)

	err = s.AckAlert(ctx, 9999)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestListAlerts_FiltersAndLimit(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	now := time.Now().UTC()

	a, _, err := s.SaveAlert(ctx, testAlert("A", "", now), time.Minute)
	require.NoError(t, err)
	_, _, err = s.SaveAlert(ctx, testAlert("B", "", now), time.Minute)
	require.NoError(t, err)
	_, _, err = s.SaveAlert(ctx, testAlert("C", "", now), time.Minute)
	require.NoError(t, err)

	require.NoError(t, s.AckAlert(ctx, a.ID))

	open, err := s.ListAlerts(ctx, false, 0)
	require.NoError(t, err)
	assert.Len(t, open, 2)

	all, err := s.ListAlerts(ctx, true, 0)
	require.NoError(t, err)
	assert.Len(t, all, 3)

	limited, err := s.ListAlerts(ctx, true, 1)
	require.NoError(t, err)
	require.Len(t, limited, 1)
	assert.Equal(t, "C", limited[0].Code)

	count, err := s.OpenAlertCount(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), count)
}
