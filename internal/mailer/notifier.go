package mailer

import (
	"context"
	"fmt"

	"github.com/SeakMengs/SignFlow/pkg/esign"
)

// Notifier renders and sends an intent in the caller's goroutine. It backs
// the mail consumer, and the API when no queue is configured.
type Notifier struct {
	client   Client
	frontURL string
}

var _ esign.Notifier = (*Notifier)(nil)

func NewNotifier(client Client, frontURL string) *Notifier {
	return &Notifier{client: client, frontURL: frontURL}
}

func (n *Notifier) Notify(ctx context.Context, intent esign.Intent) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	templateFile, err := TemplateForIntent(intent.Kind)
	if err != nil {
		return err
	}

	status, err := n.client.Send(templateFile, intent.RecipientName, intent.RecipientEmail, NewSigningMailData(n.frontURL, intent))
	if err != nil {
		return err
	}
	if status >= 300 || status < 200 {
		return fmt.Errorf("mail provider answered with status %d", status)
	}
	return nil
}
