// Package dispatcher moves envelopes between the durable queues and the
// wire: the inbox worker feeds received documents to the process router, the
// outbox worker ships pending documents through a Transport.
package dispatcher

import (
	"context"

	messagingdomain "github.com/nordlux/elcore/internal/messaging/domain"
	"go.uber.org/zap"
)

// Transport delivers one outbound envelope to DataHub and returns the
// counterparty response body.
type Transport interface {
	Send(ctx context.Context, msg messagingdomain.OutboxMessage) (string, error)
}

type logTransport struct {
	log *zap.Logger
}

// NewLogTransport logs outbound documents instead of shipping them. It
// stands in until a DataHub B2B endpoint is configured.
func NewLogTransport(log *zap.Logger) Transport {
	return &logTransport{log: log.Named("dispatcher.transport")}
}

func (t *logTransport) Send(_ context.Context, msg messagingdomain.OutboxMessage) (string, error) {
	t.log.Info("outbound document",
		zap.String("message_id", msg.MessageID),
		zap.String("document_type", msg.DocumentType),
		zap.String("business_process", msg.BusinessProcess),
		zap.String("receiver_gln", msg.ReceiverGln))
	return "202 Accepted", nil
}
