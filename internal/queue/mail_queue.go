package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/SeakMengs/SignFlow/internal/config"
	"github.com/SeakMengs/SignFlow/pkg/esign"
	"github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"
)

type MailConsumerContext struct {
	Config *config.Config
	Logger *zap.SugaredLogger
	// Store is read to drop mail that became pointless while queued.
	Store    esign.Store
	Notifier esign.Notifier
}

type MailJobPayload struct {
	Intent    esign.Intent `json:"intent"`
	CreatedAt string       `json:"created_at"`
	Try       int          `json:"try" default:"0"`
}

func NewMailJobPayload(intent esign.Intent) MailJobPayload {
	return MailJobPayload{
		Intent:    intent,
		Try:       0,
		CreatedAt: time.Now().Format(time.RFC3339),
	}
}

type Publisher interface {
	Publish(ctx context.Context, routingKey QueueName, body []byte) error
}

// MailNotifier enqueues intents for cmd/mail_consumer. A nil error means the
// job is durable in the broker, not that the email went out.
type MailNotifier struct {
	publisher Publisher
}

var _ esign.Notifier = (*MailNotifier)(nil)

func NewMailNotifier(publisher Publisher) *MailNotifier {
	return &MailNotifier{publisher: publisher}
}

func (mn *MailNotifier) Notify(ctx context.Context, intent esign.Intent) error {
	payloadBytes, err := json.Marshal(NewMailJobPayload(intent))
	if err != nil {
		return fmt.Errorf("failed to marshal mail job: %w", err)
	}

	if err := mn.publisher.Publish(ctx, QueueMail, payloadBytes); err != nil {
		return esign.NewTransientError("enqueue mail job", err)
	}
	return nil
}

type MailJobHandler func(ctx context.Context, jobPayload MailJobPayload, app *MailConsumerContext) (bool, error)

// DeliverMailJob sends one queued intent. Invitations and reminders for a
// request that is no longer active, or a signer who already acted, are dropped.
// The bool reports whether a failure is worth retrying.
func DeliverMailJob(ctx context.Context, jobPayload MailJobPayload, app *MailConsumerContext) (bool, error) {
	intent := jobPayload.Intent

	if intent.Kind != esign.IntentVoided && app.Store != nil {
		req, err := app.Store.Get(ctx, intent.SigningRequestID)
		if err != nil {
			if errors.Is(err, esign.ErrNotFound) {
				return false, fmt.Errorf("signing request not found: %s", intent.SigningRequestID)
			}
			return true, fmt.Errorf("failed to get signing request: %w", err)
		}

		if !req.Status.IsActive() {
			app.Logger.Infow("dropping mail for inactive signing request", "kind", intent.Kind, "signingRequestId", req.ID, "status", req.Status)
			return false, nil
		}

		idx := req.SignerByEmail(intent.RecipientEmail)
		if idx < 0 {
			return false, fmt.Errorf("email %s is not a signer of %s", intent.RecipientEmail, req.ID)
		}
		if !req.Signers[idx].Actionable() {
			app.Logger.Infow("dropping mail for signer who already acted", "kind", intent.Kind, "signingRequestId", req.ID, "toEmail", intent.RecipientEmail)
			return false, nil
		}
	}

	if err := app.Notifier.Notify(ctx, intent); err != nil {
		return true, fmt.Errorf("failed to send email: %w", err)
	}

	return false, nil
}

type jobOutcome int

const (
	jobAck jobOutcome = iota
	jobRequeue
	jobDrop
)

func decideOutcome(shouldRequeue bool, err error, try int) jobOutcome {
	if err == nil {
		return jobAck
	}
	if !shouldRequeue || try >= MAX_QUEUE_RETRY {
		return jobDrop
	}
	return jobRequeue
}

func (r *RabbitMQ) ConsumeMailJob(ctx context.Context, handler MailJobHandler, maxWorker int, app *MailConsumerContext) error {
	msgs, err := r.Consume(QueueMail)
	if err != nil {
		return fmt.Errorf("failed to start consuming mail jobs: %w", err)
	}

	for i := range maxWorker {
		go func(workerNumber int) {
			runMailWorker(ctx, r, workerNumber, msgs, handler, app)
		}(i + 1)
	}

	return nil
}

func runMailWorker(ctx context.Context, rabbitMQ *RabbitMQ, workerNumber int, msgs <-chan amqp091.Delivery, handler MailJobHandler, app *MailConsumerContext) {
	for {
		select {
		case <-ctx.Done():
			app.Logger.Infof("[Mail Worker %d] Shutting down", workerNumber)
			return
		case msg, ok := <-msgs:
			if !ok {
				app.Logger.Infof("[Mail Worker %d] Message channel closed", workerNumber)
				return
			}
			processMailJob(ctx, rabbitMQ, workerNumber, msg, handler, app)
		}
	}
}

func processMailJob(ctx context.Context, rabbitMQ *RabbitMQ, workerNumber int, msg amqp091.Delivery, handler MailJobHandler, app *MailConsumerContext) {
	if msg.Body == nil {
		app.Logger.Warnf("[Mail Worker %d] Received empty message body", workerNumber)
		_ = rabbitMQ.Nack(msg, false)
		return
	}

	var jobPayload MailJobPayload
	if err := json.Unmarshal(msg.Body, &jobPayload); err != nil {
		app.Logger.Warnf("[Mail Worker %d] Invalid payload: %v", workerNumber, err)
		_ = rabbitMQ.Nack(msg, false)
		return
	}

	workerPrefix := fmt.Sprintf("[Mail Worker %d: Retry %d]", workerNumber, jobPayload.Try)
	intent := jobPayload.Intent

	shouldRequeue, err := handler(ctx, jobPayload, app)
	switch decideOutcome(shouldRequeue, err, jobPayload.Try) {
	case jobAck:
		app.Logger.Infof("%s Processed %s mail job for recipient: %s, request: %s", workerPrefix, intent.Kind, intent.RecipientEmail, intent.SigningRequestID)
		_ = rabbitMQ.Ack(msg)
	case jobDrop:
		app.Logger.Errorf("%s Dropping %s mail job for recipient: %s, request: %s (shouldRequeue: %v): %v",
			workerPrefix, intent.Kind, intent.RecipientEmail, intent.SigningRequestID, shouldRequeue, err)
		_ = rabbitMQ.Nack(msg, false)
	case jobRequeue:
		app.Logger.Warnf("%s Handler error for recipient: %s, request: %s: %v", workerPrefix, intent.RecipientEmail, intent.SigningRequestID, err)
		requeueMailJob(ctx, rabbitMQ, workerPrefix, msg, jobPayload, app.Logger)
	}
}

func requeueMailJob(ctx context.Context, rabbitMQ *RabbitMQ, workerPrefix string, msg amqp091.Delivery, jobPayload MailJobPayload, logger *zap.SugaredLogger) {
	jobPayload.Try++
	payloadBytes, err := json.Marshal(jobPayload)
	if err != nil {
		logger.Errorf("%s Failed to marshal mail payload for requeue: %v", workerPrefix, err)
		_ = rabbitMQ.Nack(msg, false)
		return
	}

	if err := rabbitMQ.Publish(ctx, QueueMail, payloadBytes); err != nil {
		logger.Errorf("%s Failed to requeue mail job for recipient: %s: %v", workerPrefix, jobPayload.Intent.RecipientEmail, err)
		_ = rabbitMQ.Nack(msg, false)
		return
	}

	logger.Infof("%s Requeued mail job for recipient: %s", workerPrefix, jobPayload.Intent.RecipientEmail)
	_ = rabbitMQ.Ack(msg)
}
