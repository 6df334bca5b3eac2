package event

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/SeakMengs/SignFlow/pkg/esign"
	"go.uber.org/zap"
)

type Publisher interface {
	Publish(ctx context.Context, payload []byte, partitionKey string) error
}

// LifecycleEvent is the message published for every audit entry.
type LifecycleEvent struct {
	Type string `json:"type"`
	esign.AuditEvent
}

func NewLifecycleEvent(e esign.AuditEvent) LifecycleEvent {
	return LifecycleEvent{Type: "signing_request." + string(e.Action), AuditEvent: e}
}

// AuditRecorder writes audit events to the durable sink first and then
// streams them. Streaming is best effort; only the sink decides the result.
type AuditRecorder struct {
	sink      esign.AuditSink
	publisher Publisher
	logger    *zap.SugaredLogger
}

var _ esign.AuditSink = (*AuditRecorder)(nil)

func NewAuditRecorder(sink esign.AuditSink, publisher Publisher, logger *zap.SugaredLogger) *AuditRecorder {
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	return &AuditRecorder{sink: sink, publisher: publisher, logger: logger}
}

func (a *AuditRecorder) Record(ctx context.Context, e esign.AuditEvent) error {
	if a.sink == nil && a.publisher == nil {
		return errors.New("audit recorder has neither a sink nor a publisher")
	}

	if a.sink != nil {
		if err := a.sink.Record(ctx, e); err != nil {
			return err
		}
	}

	if a.publisher == nil {
		return nil
	}
	payload, err := json.Marshal(NewLifecycleEvent(e))
	if err != nil {
		return fmt.Errorf("failed to marshal lifecycle event: %w", err)
	}
	if err := a.publisher.Publish(ctx, payload, e.SigningRequestID); err != nil {
		a.logger.Warnw("failed to publish lifecycle event", "error", err, "action", e.Action, "signingRequestId", e.SigningRequestID)
	}
	return nil
}
