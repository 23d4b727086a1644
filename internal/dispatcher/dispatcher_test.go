package dispatcher

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/nordlux/elcore/internal/clock"
	"github.com/nordlux/elcore/internal/config"
	messagingdomain "github.com/nordlux/elcore/internal/messaging/domain"
	messagingrepo "github.com/nordlux/elcore/internal/messaging/repository"
	messagingsvc "github.com/nordlux/elcore/internal/messaging/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type routerFunc func(ctx context.Context, msg messagingdomain.InboxMessage) error

func (f routerFunc) HandleInbound(ctx context.Context, msg messagingdomain.InboxMessage) error {
	return f(ctx, msg)
}

type fakeTransport struct {
	sent []messagingdomain.OutboxMessage
	err  error
}

func (t *fakeTransport) Send(_ context.Context, msg messagingdomain.OutboxMessage) (string, error) {
	if t.err != nil {
		return "", t.err
	}
	t.sent = append(t.sent, msg)
	return "202 Accepted", nil
}

func newDispatcher(t *testing.T, router inboundRouter, transport Transport) (*Dispatcher, messagingdomain.Service, *clock.FakeClock) {
	t.Helper()
	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&messagingdomain.InboxMessage{}, &messagingdomain.OutboxMessage{}))

	fc := clock.NewFakeClock(time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC))
	cfg := config.Config{
		SupplierGln: "5790002502699",
		DatahubGln:  "5790001330552",
		Workers: config.WorkerConfig{
			InboxBatchSize:  50,
			OutboxBatchSize: 50,
			MaxAttempts:     3,
		},
	}
	messaging, err := messagingsvc.New(messagingsvc.Params{
		DB: db, Log: zap.NewNop(), Clock: fc, Cfg: cfg, Repo: messagingrepo.Provide(),
	})
	require.NoError(t, err)

	return &Dispatcher{
		log:       zap.NewNop(),
		cfg:       cfg.Workers,
		messaging: messaging,
		processes: router,
		transport: transport,
	}, messaging, fc
}

func inboxRequest(messageID string) messagingdomain.ReceiveRequest {
	return messagingdomain.ReceiveRequest{
		MessageID:       messageID,
		DocumentType:    "NotifyValidatedMeasureData_MarketDocument",
		BusinessProcess: "BRS-021",
		SenderGln:       "5790001330552",
		ReceiverGln:     "5790002502699",
		Payload:         []byte(`{}`),
	}
}

func TestInboxBatchMarksProcessed(t *testing.T) {
	var routed []string
	d, messaging, _ := newDispatcher(t, routerFunc(func(_ context.Context, msg messagingdomain.InboxMessage) error {
		routed = append(routed, msg.MessageID)
		return nil
	}), &fakeTransport{})
	ctx := context.Background()

	_, _, err := messaging.Receive(ctx, inboxRequest("MSG-1"))
	require.NoError(t, err)
	_, _, err = messaging.Receive(ctx, inboxRequest("MSG-2"))
	require.NoError(t, err)

	handled, err := d.ProcessInboxBatch(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, handled)
	assert.Equal(t, []string{"MSG-1", "MSG-2"}, routed)

	// Nothing left to claim.
	handled, err = d.ProcessInboxBatch(ctx)
	require.NoError(t, err)
	assert.Zero(t, handled)
}

func TestInboxHandlerFailureSchedulesRetry(t *testing.T) {
	d, messaging, fc := newDispatcher(t, routerFunc(func(context.Context, messagingdomain.InboxMessage) error {
		return errors.New("router exploded")
	}), &fakeTransport{})
	ctx := context.Background()

	msg, _, err := messaging.Receive(ctx, inboxRequest("MSG-BAD"))
	require.NoError(t, err)

	handled, err := d.ProcessInboxBatch(ctx)
	require.NoError(t, err, "a failing handler must not abort the batch")
	assert.Zero(t, handled)

	stored, err := messaging.GetInbox(ctx, msg.ID)
	require.NoError(t, err)
	assert.False(t, stored.IsProcessed)
	assert.Equal(t, 1, stored.ProcessingAttempts)

	// The retry window reopens the message.
	fc.Advance(2 * time.Second)
	handled, err = d.ProcessInboxBatch(ctx)
	require.NoError(t, err)
	assert.Zero(t, handled)
	stored, err = messaging.GetInbox(ctx, msg.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, stored.ProcessingAttempts)
}

func TestOutboxBatchSends(t *testing.T) {
	transport := &fakeTransport{}
	d, messaging, _ := newDispatcher(t, routerFunc(func(context.Context, messagingdomain.InboxMessage) error {
		return nil
	}), transport)
	ctx := context.Background()

	msg, err := messaging.Enqueue(ctx, messagingdomain.EnqueueRequest{
		DocumentType:    "RequestChangeOfSupplier_MarketDocument",
		BusinessProcess: "BRS-001",
		Payload:         []byte(`{}`),
	})
	require.NoError(t, err)

	sent, err := d.SendOutboxBatch(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, sent)
	require.Len(t, transport.sent, 1)
	assert.Equal(t, msg.MessageID, transport.sent[0].MessageID)

	stored, err := messaging.GetOutbox(ctx, msg.ID)
	require.NoError(t, err)
	assert.True(t, stored.IsSent)
	require.NotNil(t, stored.Response)
	assert.Equal(t, "202 Accepted", *stored.Response)
}

func TestOutboxSendFailureRecorded(t *testing.T) {
	transport := &fakeTransport{err: errors.New("gateway timeout")}
	d, messaging, _ := newDispatcher(t, routerFunc(func(context.Context, messagingdomain.InboxMessage) error {
		return nil
	}), transport)
	ctx := context.Background()

	msg, err := messaging.Enqueue(ctx, messagingdomain.EnqueueRequest{
		DocumentType:    "RequestEndOfSupply_MarketDocument",
		BusinessProcess: "BRS-002",
		Payload:         []byte(`{}`),
	})
	require.NoError(t, err)

	sent, err := d.SendOutboxBatch(ctx)
	require.NoError(t, err)
	assert.Zero(t, sent)

	stored, err := messaging.GetOutbox(ctx, msg.ID)
	require.NoError(t, err)
	assert.False(t, stored.IsSent)
	assert.Equal(t, 1, stored.SendAttempts)
	require.NotNil(t, stored.SendError)
}
