package esign

import (
	"fmt"
	"strings"
	"time"
)

func touch(r *SigningRequest, now time.Time) {
	r.UpdatedAt = now
}

// IsExpired reports whether the due date has elapsed on a request signers can still act on.
func IsExpired(r *SigningRequest, now time.Time) bool {
	if r.DueDate == nil || !r.Status.IsActive() {
		return false
	}
	return now.After(*r.DueDate)
}

// Send moves a draft to pending. Every signer must already hold a distinct token.
func Send(r *SigningRequest, now time.Time) error {
	if r.Status != RequestStatusDraft {
		return transitionError(r.Status, "send")
	}
	if err := validateSendable(r); err != nil {
		return err
	}

	tokens := make(map[string]struct{}, len(r.Signers))
	for i := range r.Signers {
		token := r.Signers[i].Token
		if token == "" {
			return NewValidationError("token", "signer %s has no access token", r.Signers[i].Email)
		}
		if _, dup := tokens[token]; dup {
			return NewValidationError("token", "access token is shared by more than one signer")
		}
		tokens[token] = struct{}{}
		r.Signers[i].Status = SignerStatusPending
	}

	if r.Ordering == "" {
		r.Ordering = OrderingParallel
	}
	r.Status = RequestStatusPending
	r.CurrentSignerIndex = 0
	touch(r, now)
	return nil
}

// advance moves the signer at idx forward to next, never backwards.
func advance(r *SigningRequest, idx int, next SignerStatus, now time.Time) bool {
	s := &r.Signers[idx]
	if s.Status == SignerStatusDeclined || s.Status.rank() >= next.rank() {
		return false
	}
	s.Status = next
	switch next {
	case SignerStatusSent:
		s.SentAt = &now
	case SignerStatusOpened:
		s.OpenedAt = &now
	}
	if r.Status == RequestStatusPending {
		r.Status = RequestStatusInProgress
	}
	touch(r, now)
	return true
}

// MarkSent records that an invitation went out. It reports whether anything changed.
func MarkSent(r *SigningRequest, email string, now time.Time) (bool, error) {
	idx := r.SignerByEmail(email)
	if idx < 0 {
		return false, fmt.Errorf("signer %s: %w", email, ErrNotFound)
	}
	if !r.Status.IsActive() {
		return false, nil
	}
	return advance(r, idx, SignerStatusSent, now), nil
}

func MarkOpened(r *SigningRequest, email string, now time.Time) (bool, error) {
	idx := r.SignerByEmail(email)
	if idx < 0 {
		return false, fmt.Errorf("signer %s: %w", email, ErrNotFound)
	}
	if !r.Status.IsActive() || IsExpired(r, now) {
		return false, nil
	}
	return advance(r, idx, SignerStatusOpened, now), nil
}

// checkSignable verifies the request still accepts signer writes.
func checkSignable(r *SigningRequest, now time.Time, action string) error {
	if !r.Status.IsActive() {
		return transitionError(r.Status, action)
	}
	if IsExpired(r, now) {
		return transitionError(RequestStatusExpired, action)
	}
	return nil
}

// Sign commits the signer's field values. On success the values are frozen,
// the turn advances and completion is derived.
func Sign(r *SigningRequest, email string, values map[string]string, now time.Time) error {
	idx := r.SignerByEmail(email)
	if idx < 0 {
		return fmt.Errorf("signer %s: %w", email, ErrNotFound)
	}
	signer := &r.Signers[idx]
	if signer.HasSigned() {
		return ErrAlreadySigned
	}
	if err := checkSignable(r, now, "sign"); err != nil {
		return err
	}
	if signer.Status == SignerStatusDeclined {
		return fmt.Errorf("signer %s declined: %w", signer.Email, ErrInvalidTransition)
	}
	if r.IsSequential() {
		current, ok := r.CurrentSigner()
		if !ok || current.Order != signer.Order {
			return ErrOutOfTurn
		}
	}

	own := r.FieldsFor(signer.Order)
	ownIDs := make(map[string]struct{}, len(own))
	for _, f := range own {
		ownIDs[f.ID] = struct{}{}
	}
	for id := range values {
		if _, ok := ownIDs[id]; !ok {
			return NewValidationError("fieldValues", "field %s is not assigned to %s", id, signer.Email)
		}
	}

	var missing []string
	for _, f := range own {
		if f.Required && strings.TrimSpace(values[f.ID]) == "" {
			missing = append(missing, f.ID)
		}
	}
	if len(missing) > 0 {
		return &IncompleteFieldsError{FieldIDs: missing}
	}

	frozen := make(map[string]string, len(values))
	for id, v := range values {
		frozen[id] = v
	}
	signer.FieldValues = frozen
	signer.Status = SignerStatusSigned
	signer.SignedAt = &now

	if r.IsSequential() && r.CurrentSignerIndex < len(r.Signers) {
		r.CurrentSignerIndex++
	}
	if r.Status == RequestStatusPending {
		r.Status = RequestStatusInProgress
	}
	recomputeCompletion(r, now)
	touch(r, now)
	return nil
}

// Decline marks the signer as refusing to sign. The request stays open until the owner voids it.
func Decline(r *SigningRequest, email, reason string, now time.Time) error {
	idx := r.SignerByEmail(email)
	if idx < 0 {
		return fmt.Errorf("signer %s: %w", email, ErrNotFound)
	}
	signer := &r.Signers[idx]
	if signer.HasSigned() {
		return ErrAlreadySigned
	}
	if err := checkSignable(r, now, "decline"); err != nil {
		return err
	}
	if signer.Status == SignerStatusDeclined {
		return fmt.Errorf("signer %s already declined: %w", signer.Email, ErrInvalidTransition)
	}

	signer.Status = SignerStatusDeclined
	signer.DeclinedAt = &now
	signer.DeclineReason = strings.TrimSpace(reason)
	if r.Status == RequestStatusPending {
		r.Status = RequestStatusInProgress
	}
	touch(r, now)
	return nil
}

// recomputeCompletion derives completed; it is the only path into that state.
func recomputeCompletion(r *SigningRequest, now time.Time) {
	if len(r.Signers) == 0 || !r.Status.IsActive() {
		return
	}
	for _, s := range r.Signers {
		if !s.HasSigned() {
			return
		}
	}
	r.Status = RequestStatusCompleted
	r.CompletedAt = &now
}

func Void(r *SigningRequest, reason string, now time.Time) error {
	switch r.Status {
	case RequestStatusVoided:
		return ErrAlreadyVoided
	case RequestStatusCompleted:
		return transitionError(r.Status, "void")
	}
	r.Status = RequestStatusVoided
	r.VoidReason = strings.TrimSpace(reason)
	r.VoidedAt = &now
	touch(r, now)
	return nil
}

// Expire commits the expiration decided by IsExpired.
func Expire(r *SigningRequest, now time.Time) error {
	if !IsExpired(r, now) {
		return transitionError(r.Status, "expire")
	}
	r.Status = RequestStatusExpired
	touch(r, now)
	return nil
}

// Settings are the owner-editable attributes of a request that has not reached a terminal state.
type Settings struct {
	Message              *string
	DueDate              *time.Time
	ClearDueDate         bool
	ReminderIntervalDays *int
}

func ApplySettings(r *SigningRequest, s Settings, now time.Time) error {
	if r.Status.IsTerminal() || r.Status == RequestStatusExpired {
		return transitionError(r.Status, "update settings of")
	}
	if s.ReminderIntervalDays != nil {
		if *s.ReminderIntervalDays < 1 {
			return NewValidationError("reminderIntervalDays", "reminder interval must be at least 1 day")
		}
		r.ReminderIntervalDays = *s.ReminderIntervalDays
	}
	if s.Message != nil {
		r.Message = strings.TrimSpace(*s.Message)
	}
	if s.ClearDueDate {
		r.DueDate = nil
	} else if s.DueDate != nil {
		if !s.DueDate.After(now) {
			return NewValidationError("dueDate", "due date must be in the future")
		}
		due := *s.DueDate
		r.DueDate = &due
	}
	touch(r, now)
	return nil
}

// Draft is the structural part of a request that can change before it is sent.
type Draft struct {
	DocumentName string
	Signers      []Signer
	Fields       []Field
	Ordering     Ordering
}

// ReplaceDraft swaps signers and fields of a draft. Signers keep their token when
// their email survives the edit; new signers must come with one.
func ReplaceDraft(r *SigningRequest, d Draft, now time.Time) error {
	if r.Status != RequestStatusDraft {
		return transitionError(r.Status, "edit")
	}

	next := r.Clone()
	if strings.TrimSpace(d.DocumentName) != "" {
		next.DocumentName = strings.TrimSpace(d.DocumentName)
	}
	if d.Ordering != "" {
		next.Ordering = d.Ordering
	}

	signers := make([]Signer, len(d.Signers))
	for i, s := range d.Signers {
		s.Email = NormalizeEmail(s.Email)
		s.Status = SignerStatusPending
		if old := r.SignerByEmail(s.Email); old >= 0 {
			s.ID = r.Signers[old].ID
			s.Token = r.Signers[old].Token
		}
		signers[i] = s
	}
	next.Signers = signers
	next.Fields = append([]Field(nil), d.Fields...)

	if err := ValidateRequest(next); err != nil {
		return err
	}
	*r = *next
	touch(r, now)
	return nil
}
