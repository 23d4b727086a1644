package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/nordlux/elcore/internal/clock"
	"github.com/nordlux/elcore/internal/config"
	"github.com/nordlux/elcore/internal/messaging/domain"
	"github.com/nordlux/elcore/internal/messaging/repository"
	"github.com/nordlux/elcore/pkg/apperr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func newService(t *testing.T) (domain.Service, *clock.FakeClock) {
	t.Helper()
	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&domain.InboxMessage{}, &domain.OutboxMessage{}))

	fc := clock.NewFakeClock(time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC))
	cfg := config.Config{
		SupplierGln: "5790002502699",
		DatahubGln:  "5790001330552",
		Workers:     config.WorkerConfig{MaxAttempts: 3},
	}
	svc, err := New(Params{DB: db, Log: zap.NewNop(), Clock: fc, Cfg: cfg, Repo: repository.Provide()})
	require.NoError(t, err)
	return svc, fc
}

func receiveRequest(messageID string) domain.ReceiveRequest {
	return domain.ReceiveRequest{
		MessageID:       messageID,
		DocumentType:    "NotifyValidatedMeasureData_MarketDocument",
		BusinessProcess: "BRS-021",
		SenderGln:       "5790001330552",
		ReceiverGln:     "5790002502699",
		Payload:         []byte(`{"mRID":"` + messageID + `"}`),
	}
}

func TestReceiveIsIdempotentOnMessageID(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()

	first, created, err := svc.Receive(ctx, receiveRequest("MSG-A"))
	require.NoError(t, err)
	assert.True(t, created)

	second, created, err := svc.Receive(ctx, receiveRequest("MSG-A"))
	require.NoError(t, err)
	assert.False(t, created, "re-delivery must be a no-op")
	assert.Equal(t, first.ID, second.ID)

	batch, err := svc.ClaimInboxBatch(ctx, 10)
	require.NoError(t, err)
	assert.Len(t, batch, 1)
}

func TestFailedInboxRetriesWithBackoff(t *testing.T) {
	svc, fc := newService(t)
	ctx := context.Background()

	msg, _, err := svc.Receive(ctx, receiveRequest("MSG-B"))
	require.NoError(t, err)

	require.NoError(t, svc.MarkProcessingFailed(ctx, msg.ID, errors.New("handler blew up")))

	// The retry window has not opened yet.
	batch, err := svc.ClaimInboxBatch(ctx, 10)
	require.NoError(t, err)
	assert.Empty(t, batch)

	fc.Advance(2 * time.Second)
	batch, err = svc.ClaimInboxBatch(ctx, 10)
	require.NoError(t, err)
	require.Len(t, batch, 1)
	assert.Equal(t, 1, batch[0].ProcessingAttempts)
	require.NotNil(t, batch[0].ProcessingError)
}

func TestInboxQuarantineAfterMaxAttempts(t *testing.T) {
	svc, fc := newService(t)
	ctx := context.Background()

	msg, _, err := svc.Receive(ctx, receiveRequest("MSG-C"))
	require.NoError(t, err)

	for i := 0; i < 3; i++ {
		require.NoError(t, svc.MarkProcessingFailed(ctx, msg.ID, errors.New("still broken")))
		fc.Advance(time.Hour)
	}

	batch, err := svc.ClaimInboxBatch(ctx, 10)
	require.NoError(t, err)
	assert.Empty(t, batch, "exhausted messages must not be claimed")

	quarantined, err := svc.QuarantinedInbox(ctx)
	require.NoError(t, err)
	require.Len(t, quarantined, 1)
	assert.Equal(t, "MSG-C", quarantined[0].MessageID)
}

func TestOutboxLifecycle(t *testing.T) {
	svc, fc := newService(t)
	ctx := context.Background()

	msg, err := svc.Enqueue(ctx, domain.EnqueueRequest{
		DocumentType:    "RequestChangeOfSupplier_MarketDocument",
		BusinessProcess: "BRS-001",
		Payload:         []byte(`{}`),
	})
	require.NoError(t, err)
	assert.NotEmpty(t, msg.MessageID)
	assert.Equal(t, "5790002502699", msg.SenderGln)
	assert.Equal(t, "5790001330552", msg.ReceiverGln, "receiver defaults to the hub")

	batch, err := svc.ClaimOutboxBatch(ctx, 10)
	require.NoError(t, err)
	require.Len(t, batch, 1)

	require.NoError(t, svc.MarkSendFailed(ctx, msg.ID, errors.New("transport down")))
	fc.Advance(2 * time.Second)

	reset, err := svc.ResetForRetry(ctx, msg.ID)
	require.NoError(t, err)
	assert.Nil(t, reset.SendError)
	assert.Equal(t, 1, reset.SendAttempts, "attempts survive a reset")

	require.NoError(t, svc.MarkSent(ctx, msg.ID, "202 Accepted"))

	_, err = svc.ResetForRetry(ctx, msg.ID)
	assert.True(t, apperr.IsConflict(err), "sent messages cannot be reset")

	batch, err = svc.ClaimOutboxBatch(ctx, 10)
	require.NoError(t, err)
	assert.Empty(t, batch)
}

func TestScheduledOutboxNotDueEarly(t *testing.T) {
	svc, fc := newService(t)
	ctx := context.Background()

	later := fc.Now().Add(time.Hour)
	_, err := svc.Enqueue(ctx, domain.EnqueueRequest{
		DocumentType:    "RequestEndOfSupply_MarketDocument",
		BusinessProcess: "BRS-002",
		Payload:         []byte(`{}`),
		ScheduledFor:    &later,
	})
	require.NoError(t, err)

	batch, err := svc.ClaimOutboxBatch(ctx, 10)
	require.NoError(t, err)
	assert.Empty(t, batch)

	fc.Advance(2 * time.Hour)
	batch, err = svc.ClaimOutboxBatch(ctx, 10)
	require.NoError(t, err)
	assert.Len(t, batch, 1)
}
