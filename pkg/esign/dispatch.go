package esign

import (
	"time"
)

type IntentKind string

const (
	IntentInvitation IntentKind = "invitation"
	IntentReminder   IntentKind = "reminder"
	IntentVoided     IntentKind = "voided"
)

// Intent is a notification owed to one signer. It carries structured data only;
// rendering is the mailer's job.
type Intent struct {
	Kind             IntentKind `json:"kind"`
	SigningRequestID string     `json:"signingRequestId"`
	DocumentName     string     `json:"documentName"`
	SenderName       string     `json:"senderName"`
	SenderEmail      string     `json:"senderEmail"`
	RecipientName    string     `json:"recipientName"`
	RecipientEmail   string     `json:"recipientEmail"`
	Token            string     `json:"token"`
	Message          string     `json:"message,omitempty"`
	DueDate          *time.Time `json:"dueDate,omitempty"`
	ReminderNumber   int        `json:"reminderNumber,omitempty"`
	Reason           string     `json:"reason,omitempty"`
}

func newIntent(kind IntentKind, r *SigningRequest, s Signer) Intent {
	return Intent{
		Kind:             kind,
		SigningRequestID: r.ID,
		DocumentName:     r.DocumentName,
		SenderName:       r.SenderName,
		SenderEmail:      r.SenderEmail,
		RecipientName:    s.Name,
		RecipientEmail:   s.Email,
		Token:            s.Token,
		Message:          r.Message,
		DueDate:          cloneTime(r.DueDate),
	}
}

// awaiting returns the signers who still owe an action, honoring turn order.
func awaiting(r *SigningRequest) []Signer {
	if r.IsSequential() {
		current, ok := r.CurrentSigner()
		if !ok || !current.Actionable() || current.IsSelf {
			return nil
		}
		return []Signer{*current}
	}

	var out []Signer
	for _, s := range r.Signers {
		if s.Actionable() && !s.IsSelf {
			out = append(out, s)
		}
	}
	return out
}

// InvitationIntents lists the invitations owed right after a request is sent,
// or after a turn change under sequential ordering. The signer whose turn it is
// is always invited, even if they opened the link early.
func InvitationIntents(r *SigningRequest) []Intent {
	if !r.Status.IsActive() {
		return nil
	}
	var intents []Intent
	for _, s := range awaiting(r) {
		if !r.IsSequential() && s.Status != SignerStatusPending {
			continue
		}
		intents = append(intents, newIntent(IntentInvitation, r, s))
	}
	return intents
}

// ReminderNumber returns K = floor(days since creation / interval), 0 when none is owed yet.
func ReminderNumber(r *SigningRequest, now time.Time) int {
	if now.Before(r.CreatedAt) {
		return 0
	}
	days := int(now.Sub(r.CreatedAt) / (24 * time.Hour))
	return days / r.reminderInterval()
}

// DueReminders lists the reminders owed at now. The result is a pure function of
// the request; deduplication across runs belongs to the caller's ledger.
func DueReminders(r *SigningRequest, now time.Time) []Intent {
	if !r.Status.IsActive() || IsExpired(r, now) {
		return nil
	}
	k := ReminderNumber(r, now)
	if k < 1 {
		return nil
	}

	var intents []Intent
	for _, s := range awaiting(r) {
		intent := newIntent(IntentReminder, r, s)
		intent.ReminderNumber = k
		intents = append(intents, intent)
	}
	return intents
}

// wasInvited reports whether the signer at idx could have received an
// invitation: one was delivered, they already acted on their link, or it is
// their turn under sequential ordering.
func wasInvited(r *SigningRequest, idx int) bool {
	s := r.Signers[idx]
	if s.SentAt != nil || s.Status != SignerStatusPending {
		return true
	}
	return r.IsSequential() && idx == r.CurrentSignerIndex
}

// VoidIntents notifies every invited signer that has not signed. from is the
// status the request was voided from; a voided draft notifies nobody.
// Expiration never produces these.
func VoidIntents(r *SigningRequest, from RequestStatus) []Intent {
	if r.Status != RequestStatusVoided || from == RequestStatusDraft {
		return nil
	}
	var intents []Intent
	for i, s := range r.Signers {
		if s.HasSigned() || s.IsSelf || !wasInvited(r, i) {
			continue
		}
		intent := newIntent(IntentVoided, r, s)
		intent.Reason = r.VoidReason
		intents = append(intents, intent)
	}
	return intents
}

// ResendIntents re-issues the invitation to one named signer, or to every signer
// still owing a signature when email is empty. Under sequential ordering only
// the current signer is re-invited. Tokens are reused as is.
func ResendIntents(r *SigningRequest, email string) ([]Intent, error) {
	if r.Status.IsTerminal() || r.Status == RequestStatusExpired || r.Status == RequestStatusDraft {
		return nil, transitionError(r.Status, "resend")
	}

	if email != "" {
		idx := r.SignerByEmail(email)
		if idx < 0 {
			return nil, NewValidationError("signerEmail", "%s is not a signer of this request", NormalizeEmail(email))
		}
		s := r.Signers[idx]
		if s.HasSigned() {
			return nil, ErrAlreadySigned
		}
		if !s.Actionable() {
			return nil, NewValidationError("signerEmail", "%s declined to sign", s.Email)
		}
		if s.IsSelf {
			return nil, NewValidationError("signerEmail", "%s is the sender and signs without an invitation", s.Email)
		}
		return []Intent{newIntent(IntentInvitation, r, s)}, nil
	}

	var intents []Intent
	for _, s := range awaiting(r) {
		intents = append(intents, newIntent(IntentInvitation, r, s))
	}
	return intents, nil
}
