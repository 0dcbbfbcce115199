package gateway

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quegate/quegate/internal/alert"
	"github.com/quegate/quegate/internal/core/models"
	"github.com/quegate/quegate/internal/core/qerrors"
	"github.com/quegate/quegate/internal/core/transport"
	"github.com/quegate/quegate/internal/store"
)

func TestAlerts_ListsNewestFirst(t *testing.T) {
	g := newTestGateway(t)
	ctx := context.Background()

	g.alerts.Raise(ctx, alert.SeverityError, alert.PurposeConnection, "BROKER_UNREACHABLE", "", "down")
	g.alerts.Raise(ctx, alert.SeverityWarning, alert.PurposeCapacity, "QUEUE_FULL", private("orders"), "full")

	alerts, err := g.svc.Alerts(ctx, false, 0)
	require.NoError(t, err)
	require.Len(t, alerts, 2)
	assert.Equal(t, "QUEUE_FULL", alerts[0].Code)
	assert.Equal(t, private("orders"), alerts[0].Queue)
	assert.Equal(t, "BROKER_UNREACHABLE", alerts[1].Code)
	assert.NotEmpty(t, alerts[0].ID)
	assert.Nil(t, alerts[0].AckedAt)
}

func TestAckAlert_FullCycle(t *testing.T) {
	g := newTestGateway(t)
	ctx := context.Background()

	g.alerts.Raise(ctx, alert.SeverityError, alert.PurposeConnection, "BROKER_UNREACHABLE", "", "down")
	open, err := g.svc.Alerts(ctx, false, 0)
	require.NoError(t, err)
	require.Len(t, open, 1)

	require.NoError(t, g.svc.AckAlert(ctx, open[0].ID))

	open, err = g.svc.Alerts(ctx, false, 0)
	require.NoError(t, err)
	assert.Empty(t, open)

	all, err := g.svc.Alerts(ctx, true, 0)
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.NotNil(t, all[0].AckedAt)

	// Acknowledging again is a no-op, not an error.
	require.NoError(t, g.svc.AckAlert(ctx, all[0].ID))
}

func TestAckAlert_Invalid(t *testing.T) {
	g := newTestGateway(t)
	ctx := context.Background()

	err := g.svc.AckAlert(ctx, "not-a-number")
	assert.Equal(t, qerrors.CodeInvalidRequest, qerrors.CodeOf(err))

	err = g.svc.AckAlert(ctx, "99999")
	assert.Equal(t, qerrors.CodeAlertNotFound, qerrors.CodeOf(err))
	assert.Equal(t, qerrors.KindBusiness, qerrors.KindOf(err))
}

func TestCreateMailingList_AndList(t *testing.T) {
	g := newTestGateway(t)
	ctx := context.Background()

	created, err := g.svc.CreateMailingList(ctx, models.MailingListDTO{
		Name:       "ops",
		Purpose:    "connection",
		Enabled:    true,
		Recipients: []string{" ops@example.com ", "", "oncall@example.com"},
	})
	require.NoError(t, err)
	assert.NotEmpty(t, created.ID)
	assert.Equal(t, "CONNECTION", created.Purpose)
	assert.ElementsMatch(t, []string{"ops@example.com", "oncall@example.com"}, created.Recipients)

	lists, err := g.svc.MailingLists(ctx)
	require.NoError(t, err)
	require.Len(t, lists, 1)
	assert.Equal(t, "ops", lists[0].Name)
	assert.Equal(t, []string{"oncall@example.com", "ops@example.com"}, lists[0].Recipients)
}

func TestCreateMailingList_Validations(t *testing.T) {
	g := newTestGateway(t)
	ctx := context.Background()

	_, err := g.svc.CreateMailingList(ctx, models.MailingListDTO{Purpose: "CONNECTION"})
	assert.Equal(t, qerrors.CodeInvalidRequest, qerrors.CodeOf(err))

	_, err = g.svc.CreateMailingList(ctx, models.MailingListDTO{Name: "ops", Purpose: "EVERYTHING"})
	assert.Equal(t, qerrors.CodeInvalidRequest, qerrors.CodeOf(err))

	_, err = g.svc.CreateMailingList(ctx, models.MailingListDTO{Name: "ops", Purpose: "CONNECTION"})
	require.NoError(t, err)
	_, err = g.svc.CreateMailingList(ctx, models.MailingListDTO{Name: "ops", Purpose: "CAPACITY"})
	assert.Equal(t, qerrors.CodeListExists, qerrors.CodeOf(err))
}

func TestAdmin_WithoutStore(t *testing.T) {
	g := newTestGateway(t)
	svc := NewService(g.cfg, g.provider, nil, g.mc, nil, nil)
	ctx := context.Background()

	alerts, err := svc.Alerts(ctx, true, 0)
	require.NoError(t, err)
	assert.Empty(t, alerts)

	lists, err := svc.MailingLists(ctx)
	require.NoError(t, err)
	assert.Empty(t, lists)

	err = svc.AckAlert(ctx, "1")
	assert.Equal(t, qerrors.CodeStoreDisabled, qerrors.CodeOf(err))

	_, err = svc.CreateMailingList(ctx, models.MailingListDTO{Name: "ops", Purpose: "CONNECTION"})
	assert.Equal(t, qerrors.CodeStoreDisabled, qerrors.CodeOf(err))
}

func TestAlerts_FoldedRaisesShareOneRow(t *testing.T) {
	g := newTestGateway(t)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		g.alerts.Raise(ctx, alert.SeverityError, alert.PurposeConnection, "BROKER_UNREACHABLE", "", "down")
	}

	alerts, err := g.svc.Alerts(ctx, true, 0)
	require.NoError(t, err)
	require.Len(t, alerts, 1)
	assert.Equal(t, 3, alerts[0].Count)
}

func TestJournal_FiltersAndOrders(t *testing.T) {
	g := newTestGateway(t)
	ctx := context.Background()

	_, err := g.svc.Send(ctx, transport.SendOptions{Queue: private("orders"), Body: []byte("one")})
	require.NoError(t, err)
	_, err = g.svc.Send(ctx, transport.SendOptions{Queue: private("orders"), Body: []byte("two")})
	require.NoError(t, err)
	_, err = g.svc.Receive(ctx, private("orders"), 0)
	require.NoError(t, err)
	_, err = g.svc.Send(ctx, transport.SendOptions{Queue: private("billing"), Body: []byte("three")})
	require.NoError(t, err)

	all, err := g.svc.Journal(ctx, "", "", 0)
	require.NoError(t, err)
	require.Len(t, all, 4)
	assert.Equal(t, store.DirectionSent, all[0].Direction) // billing send is newest

	sent, err := g.svc.Journal(ctx, "orders", store.DirectionSent, 0)
	require.NoError(t, err)
	require.Len(t, sent, 2)
	for _, e := range sent {
		assert.Equal(t, private("orders"), e.Queue)
	}

	received, err := g.svc.Journal(ctx, private("orders"), "received", 0)
	require.NoError(t, err)
	require.Len(t, received, 1)
	assert.Equal(t, store.DirectionReceived, received[0].Direction)

	limited, err := g.svc.Journal(ctx, "", "", 2)
	require.NoError(t, err)
	assert.Len(t, limited, 2)
}

func TestJournal_RejectsBadInput(t *testing.T) {
	g := newTestGateway(t)
	ctx := context.Background()

	_, err := g.svc.Journal(ctx, "", "sideways", 0)
	assert.Equal(t, qerrors.CodeInvalidRequest, qerrors.CodeOf(err))

	_, err = g.svc.Journal(ctx, "bad\x00name", "", 0)
	assert.Equal(t, qerrors.CodeInvalidName, qerrors.CodeOf(err))
}

func TestJournal_WithoutStore(t *testing.T) {
	g := newTestGateway(t)
	svc := NewService(g.cfg, g.provider, nil, g.mc, nil, nil)

	entries, err := svc.Journal(context.Background(), "", "", 0)
	require.NoError(t, err)
	assert.Empty(t, entries)
}
