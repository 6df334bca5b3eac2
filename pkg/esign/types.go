package esign

import (
	"strings"
	"time"
)

type RequestStatus string

const (
	RequestStatusDraft      RequestStatus = "draft"
	RequestStatusPending    RequestStatus = "pending"
	RequestStatusInProgress RequestStatus = "in_progress"
	RequestStatusCompleted  RequestStatus = "completed"
	RequestStatusExpired    RequestStatus = "expired"
	RequestStatusVoided     RequestStatus = "voided"
)

func (s RequestStatus) Valid() bool {
	switch s {
	case RequestStatusDraft, RequestStatusPending, RequestStatusInProgress,
		RequestStatusCompleted, RequestStatusExpired, RequestStatusVoided:
		return true
	}
	return false
}

// IsTerminal reports whether no further transition out of s is allowed.
func (s RequestStatus) IsTerminal() bool {
	return s == RequestStatusCompleted || s == RequestStatusVoided
}

// IsActive reports whether signers may still act on a request in status s.
func (s RequestStatus) IsActive() bool {
	return s == RequestStatusPending || s == RequestStatusInProgress
}

type SignerStatus string

const (
	SignerStatusPending  SignerStatus = "pending"
	SignerStatusSent     SignerStatus = "sent"
	SignerStatusOpened   SignerStatus = "opened"
	SignerStatusSigned   SignerStatus = "signed"
	SignerStatusDeclined SignerStatus = "declined"
)

func (s SignerStatus) Valid() bool {
	switch s {
	case SignerStatusPending, SignerStatusSent, SignerStatusOpened, SignerStatusSigned, SignerStatusDeclined:
		return true
	}
	return false
}

// rank orders the linear part of the signer life cycle. declined has no rank.
func (s SignerStatus) rank() int {
	switch s {
	case SignerStatusPending:
		return 0
	case SignerStatusSent:
		return 1
	case SignerStatusOpened:
		return 2
	case SignerStatusSigned:
		return 3
	}
	return -1
}

type FieldType string

const (
	FieldTypeSignature FieldType = "signature"
	FieldTypeInitials  FieldType = "initials"
	FieldTypeDate      FieldType = "date"
	FieldTypeText      FieldType = "text"
	FieldTypeCheckbox  FieldType = "checkbox"
)

func (t FieldType) Valid() bool {
	switch t {
	case FieldTypeSignature, FieldTypeInitials, FieldTypeDate, FieldTypeText, FieldTypeCheckbox:
		return true
	}
	return false
}

// Ordering decides whether signers may act in any order or strictly one after another.
type Ordering string

const (
	OrderingParallel   Ordering = "parallel"
	OrderingSequential Ordering = "sequential"
)

func (o Ordering) Valid() bool {
	return o == OrderingParallel || o == OrderingSequential
}

const DefaultReminderIntervalDays = 3

type Field struct {
	ID          string    `json:"id"`
	SignerOrder int       `json:"signerOrder"`
	Type        FieldType `json:"fieldType"`
	PageNumber  int       `json:"pageNumber"`
	// Position and size are percentages of the page dimensions.
	X        float64 `json:"x"`
	Y        float64 `json:"y"`
	Width    float64 `json:"width"`
	Height   float64 `json:"height"`
	Required bool    `json:"required"`
}

type Signer struct {
	ID            string            `json:"id"`
	Order         int               `json:"order"`
	Name          string            `json:"name"`
	Email         string            `json:"email"`
	IsSelf        bool              `json:"isSelf"`
	Status        SignerStatus      `json:"status"`
	Token         string            `json:"-"`
	SentAt        *time.Time        `json:"sentAt,omitempty"`
	OpenedAt      *time.Time        `json:"openedAt,omitempty"`
	SignedAt      *time.Time        `json:"signedAt,omitempty"`
	DeclinedAt    *time.Time        `json:"declinedAt,omitempty"`
	DeclineReason string            `json:"declineReason,omitempty"`
	FieldValues   map[string]string `json:"fieldValues,omitempty"`
}

func (s Signer) HasSigned() bool {
	return s.Status == SignerStatusSigned
}

// Actionable reports whether the signer can still sign.
func (s Signer) Actionable() bool {
	return s.Status != SignerStatusSigned && s.Status != SignerStatusDeclined
}

type SigningRequest struct {
	ID                   string        `json:"id"`
	OwnerUserID          string        `json:"ownerUserId"`
	DocumentName         string        `json:"documentName"`
	DocumentRef          string        `json:"documentRef"`
	DocumentPageCount    int           `json:"documentPageCount,omitempty"`
	SenderName           string        `json:"senderName"`
	SenderEmail          string        `json:"senderEmail"`
	Signers              []Signer      `json:"signers"`
	Fields               []Field       `json:"fields"`
	Message              string        `json:"message,omitempty"`
	DueDate              *time.Time    `json:"dueDate,omitempty"`
	Status               RequestStatus `json:"status"`
	Ordering             Ordering      `json:"ordering"`
	CurrentSignerIndex   int           `json:"currentSignerIndex"`
	ReminderIntervalDays int           `json:"reminderIntervalDays"`
	VoidReason           string        `json:"voidReason,omitempty"`
	VoidedAt             *time.Time    `json:"voidedAt,omitempty"`
	CompletedAt          *time.Time    `json:"completedAt,omitempty"`
	Version              int           `json:"version"`
	CreatedAt            time.Time     `json:"createdAt"`
	UpdatedAt            time.Time     `json:"updatedAt"`
}

func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// SignerByEmail returns the index of the signer with the given email, or -1.
func (r *SigningRequest) SignerByEmail(email string) int {
	email = NormalizeEmail(email)
	for i := range r.Signers {
		if NormalizeEmail(r.Signers[i].Email) == email {
			return i
		}
	}
	return -1
}

func (r *SigningRequest) SignerByToken(token string) int {
	if token == "" {
		return -1
	}
	for i := range r.Signers {
		if r.Signers[i].Token == token {
			return i
		}
	}
	return -1
}

func (r *SigningRequest) FieldsFor(order int) []Field {
	var fields []Field
	for _, f := range r.Fields {
		if f.SignerOrder == order {
			fields = append(fields, f)
		}
	}
	return fields
}

func (r *SigningRequest) IsSequential() bool {
	return r.Ordering == OrderingSequential
}

// CurrentSigner returns the signer whose turn it is under sequential ordering.
func (r *SigningRequest) CurrentSigner() (*Signer, bool) {
	if r.CurrentSignerIndex < 0 || r.CurrentSignerIndex >= len(r.Signers) {
		return nil, false
	}
	return &r.Signers[r.CurrentSignerIndex], true
}

func (r *SigningRequest) reminderInterval() int {
	if r.ReminderIntervalDays <= 0 {
		return DefaultReminderIntervalDays
	}
	return r.ReminderIntervalDays
}

// Clone returns a deep copy, so mutators never alias a committed aggregate.
func (r *SigningRequest) Clone() *SigningRequest {
	if r == nil {
		return nil
	}
	c := *r
	c.DueDate = cloneTime(r.DueDate)
	c.VoidedAt = cloneTime(r.VoidedAt)
	c.CompletedAt = cloneTime(r.CompletedAt)
	c.Fields = append([]Field(nil), r.Fields...)
	c.Signers = make([]Signer, len(r.Signers))
	for i, s := range r.Signers {
		s.SentAt = cloneTime(s.SentAt)
		s.OpenedAt = cloneTime(s.OpenedAt)
		s.SignedAt = cloneTime(s.SignedAt)
		s.DeclinedAt = cloneTime(s.DeclinedAt)
		if s.FieldValues != nil {
			values := make(map[string]string, len(s.FieldValues))
			for k, v := range s.FieldValues {
				values[k] = v
			}
			s.FieldValues = values
		}
		c.Signers[i] = s
	}
	return &c
}

func cloneTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	v := *t
	return &v
}
