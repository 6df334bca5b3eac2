package esign

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	gonanoid "github.com/matoous/go-nanoid/v2"
	"go.uber.org/zap"
)

const (
	DefaultTokenLength = 32
	dispatchTimeout    = 30 * time.Second
)

// Notifier hands a dispatch intent to the email collaborator.
type Notifier interface {
	Notify(ctx context.Context, intent Intent) error
}

type NotifierFunc func(ctx context.Context, intent Intent) error

func (f NotifierFunc) Notify(ctx context.Context, intent Intent) error {
	return f(ctx, intent)
}

// ReminderLedger remembers which reminder numbers were already sent, so a sweep
// that runs twice inside the same interval does not send twice.
type ReminderLedger interface {
	// Claim reports false when reminder n for this signer was already claimed.
	Claim(ctx context.Context, requestID, email string, n int) (bool, error)
	Release(ctx context.Context, requestID, email string, n int) error
}

type AuditAction string

const (
	AuditCreated         AuditAction = "created"
	AuditSent            AuditAction = "sent"
	AuditDraftUpdated    AuditAction = "draft_updated"
	AuditOpened          AuditAction = "opened"
	AuditSigned          AuditAction = "signed"
	AuditDeclined        AuditAction = "declined"
	AuditCompleted       AuditAction = "completed"
	AuditVoided          AuditAction = "voided"
	AuditExpired         AuditAction = "expired"
	AuditResent          AuditAction = "resent"
	AuditReminded        AuditAction = "reminded"
	AuditSettingsUpdated AuditAction = "settings_updated"
)

type AuditEvent struct {
	SigningRequestID string      `json:"signingRequestId"`
	Action           AuditAction `json:"action"`
	Actor            string      `json:"actor"`
	Description      string      `json:"description"`
	Timestamp        time.Time   `json:"timestamp"`
}

type AuditSink interface {
	Record(ctx context.Context, event AuditEvent) error
}

type ServiceOptions struct {
	Store          Store
	Notifier       Notifier
	Ledger         ReminderLedger
	Audit          AuditSink
	Logger         *zap.SugaredLogger
	TokenGenerator func() (string, error)
	IDGenerator    func() string
	Clock          func() time.Time
}

// Service is the entry point used by the HTTP layer and the scheduler.
type Service struct {
	store    Store
	resolver *Resolver
	notifier Notifier
	ledger   ReminderLedger
	audit    AuditSink
	logger   *zap.SugaredLogger
	newToken func() (string, error)
	newID    func() string
	now      func() time.Time

	inflight sync.WaitGroup
}

func NewService(opts ServiceOptions) *Service {
	s := &Service{
		store:    opts.Store,
		resolver: NewResolver(opts.Store),
		notifier: opts.Notifier,
		ledger:   opts.Ledger,
		audit:    opts.Audit,
		logger:   opts.Logger,
		newToken: opts.TokenGenerator,
		newID:    opts.IDGenerator,
		now:      opts.Clock,
	}
	if s.logger == nil {
		s.logger = zap.NewNop().Sugar()
	}
	if s.newToken == nil {
		s.newToken = func() (string, error) { return gonanoid.New(DefaultTokenLength) }
	}
	if s.newID == nil {
		s.newID = uuid.NewString
	}
	if s.now == nil {
		s.now = func() time.Time { return time.Now().UTC() }
	}
	return s
}

// Wait blocks until background notification dispatch has finished.
func (s *Service) Wait() {
	s.inflight.Wait()
}

type Owner struct {
	UserID string
	Name   string
	Email  string
}

type SignerInput struct {
	Order  int
	Name   string
	Email  string
	IsSelf bool
}

type CreatePayload struct {
	// ID is optional; a UUID is generated when empty.
	ID                   string
	DocumentName         string
	DocumentRef          string
	DocumentPageCount    int
	Message              string
	DueDate              *time.Time
	Ordering             Ordering
	ReminderIntervalDays int
	Signers              []SignerInput
	Fields               []Field
}

type SelfAccess struct {
	SigningRequestID string `json:"id"`
	Email            string `json:"email"`
	Token            string `json:"token"`
}

type CreateResult struct {
	ID                string        `json:"id"`
	Status            RequestStatus `json:"status"`
	SelfSigningAccess *SelfAccess   `json:"selfSigningAccess,omitempty"`
}

type ShortLink struct {
	SigningRequestID string       `json:"id"`
	Email            string       `json:"email"`
	Token            string       `json:"token"`
	Status           SignerStatus `json:"status,omitempty"`
}

type DispatchReport struct {
	Delivered []string          `json:"delivered"`
	Skipped   []string          `json:"skipped,omitempty"`
	Failed    map[string]string `json:"failed,omitempty"`
}

func (d *DispatchReport) fail(email string, err error) {
	if d.Failed == nil {
		d.Failed = make(map[string]string)
	}
	d.Failed[email] = err.Error()
}

func (s *Service) buildSigners(owner Owner, inputs []SignerInput) ([]Signer, error) {
	signers := make([]Signer, len(inputs))
	for i, in := range inputs {
		email := NormalizeEmail(in.Email)
		if in.IsSelf && owner.Email != "" && email != NormalizeEmail(owner.Email) {
			return nil, NewValidationError("isSelf", "only the sender can sign as self, got %s", email)
		}
		token, err := s.newToken()
		if err != nil {
			return nil, fmt.Errorf("generate signer token: %w", err)
		}
		signers[i] = Signer{
			ID:     s.newID(),
			Order:  in.Order,
			Name:   strings.TrimSpace(in.Name),
			Email:  email,
			IsSelf: in.IsSelf,
			Status: SignerStatusPending,
			Token:  token,
		}
	}
	sort.SliceStable(signers, func(i, j int) bool { return signers[i].Order < signers[j].Order })
	return signers, nil
}

func (s *Service) buildFields(inputs []Field) []Field {
	fields := make([]Field, len(inputs))
	for i, f := range inputs {
		if strings.TrimSpace(f.ID) == "" {
			f.ID = s.newID()
		}
		fields[i] = f
	}
	return fields
}

func (s *Service) buildRequest(owner Owner, p CreatePayload, now time.Time) (*SigningRequest, error) {
	if owner.UserID == "" {
		return nil, fmt.Errorf("owner is required: %w", ErrForbidden)
	}

	signers, err := s.buildSigners(owner, p.Signers)
	if err != nil {
		return nil, err
	}

	id := strings.TrimSpace(p.ID)
	if id == "" {
		id = s.newID()
	}
	ordering := p.Ordering
	if ordering == "" {
		ordering = OrderingParallel
	}
	interval := p.ReminderIntervalDays
	if interval == 0 {
		interval = DefaultReminderIntervalDays
	}

	req := &SigningRequest{
		ID:                   id,
		OwnerUserID:          owner.UserID,
		DocumentName:         strings.TrimSpace(p.DocumentName),
		DocumentRef:          strings.TrimSpace(p.DocumentRef),
		DocumentPageCount:    p.DocumentPageCount,
		SenderName:           strings.TrimSpace(owner.Name),
		SenderEmail:          NormalizeEmail(owner.Email),
		Signers:              signers,
		Fields:               s.buildFields(p.Fields),
		Message:              strings.TrimSpace(p.Message),
		DueDate:              cloneTime(p.DueDate),
		Status:               RequestStatusDraft,
		Ordering:             ordering,
		ReminderIntervalDays: interval,
		CreatedAt:            now,
		UpdatedAt:            now,
	}
	if err := ValidateRequest(req); err != nil {
		return nil, err
	}
	return req, nil
}

func selfAccess(r *SigningRequest) *SelfAccess {
	for _, signer := range r.Signers {
		if signer.IsSelf {
			return &SelfAccess{SigningRequestID: r.ID, Email: signer.Email, Token: signer.Token}
		}
	}
	return nil
}

// CreateAndSend persists a request in pending and returns before any invitation
// is delivered. Delivery failures are logged and never fail the call. A due
// date that already elapsed is accepted; the request then expires lazily and
// nobody is invited.
func (s *Service) CreateAndSend(ctx context.Context, owner Owner, p CreatePayload) (*CreateResult, error) {
	now := s.now()
	req, err := s.buildRequest(owner, p, now)
	if err != nil {
		return nil, err
	}
	if err := Send(req, now); err != nil {
		return nil, err
	}
	if _, err := s.store.Create(ctx, req); err != nil {
		return nil, err
	}

	s.record(ctx, req.ID, AuditSent, owner.Email, fmt.Sprintf("sent %q to %d signer(s)", req.DocumentName, len(req.Signers)))
	if !IsExpired(req, now) {
		s.dispatchAsync(ctx, InvitationIntents(req))
	}

	return &CreateResult{ID: req.ID, Status: req.Status, SelfSigningAccess: selfAccess(req)}, nil
}

func (s *Service) CreateDraft(ctx context.Context, owner Owner, p CreatePayload) (*CreateResult, error) {
	req, err := s.buildRequest(owner, p, s.now())
	if err != nil {
		return nil, err
	}
	if _, err := s.store.Create(ctx, req); err != nil {
		return nil, err
	}
	s.record(ctx, req.ID, AuditCreated, owner.Email, fmt.Sprintf("saved draft %q", req.DocumentName))
	return &CreateResult{ID: req.ID, Status: req.Status}, nil
}

func (s *Service) UpdateDraft(ctx context.Context, owner Owner, id string, p CreatePayload) (*SigningRequest, error) {
	signers, err := s.buildSigners(owner, p.Signers)
	if err != nil {
		return nil, err
	}
	fields := s.buildFields(p.Fields)

	req, err := s.store.Update(ctx, id, func(r *SigningRequest) error {
		if err := AuthorizeOwner(owner.UserID, r); err != nil {
			return err
		}
		if p.DocumentPageCount > 0 {
			r.DocumentPageCount = p.DocumentPageCount
		}
		if strings.TrimSpace(p.DocumentRef) != "" {
			r.DocumentRef = strings.TrimSpace(p.DocumentRef)
		}
		return ReplaceDraft(r, Draft{
			DocumentName: p.DocumentName,
			Signers:      signers,
			Fields:       fields,
			Ordering:     p.Ordering,
		}, s.now())
	})
	if err != nil {
		return nil, err
	}
	s.record(ctx, id, AuditDraftUpdated, owner.Email, "updated draft signers and fields")
	return req, nil
}

func (s *Service) SendDraft(ctx context.Context, owner Owner, id string) (*CreateResult, error) {
	req, err := s.store.Update(ctx, id, func(r *SigningRequest) error {
		if err := AuthorizeOwner(owner.UserID, r); err != nil {
			return err
		}
		now := s.now()
		if r.DueDate != nil && !r.DueDate.After(now) {
			return NewValidationError("dueDate", "due date must be in the future")
		}
		return Send(r, now)
	})
	if err != nil {
		return nil, err
	}

	s.record(ctx, req.ID, AuditSent, owner.Email, fmt.Sprintf("sent %q to %d signer(s)", req.DocumentName, len(req.Signers)))
	s.dispatchAsync(ctx, InvitationIntents(req))

	return &CreateResult{ID: req.ID, Status: req.Status, SelfSigningAccess: selfAccess(req)}, nil
}

type SignerSummary struct {
	Order    int          `json:"order"`
	Name     string       `json:"name"`
	Status   SignerStatus `json:"status"`
	SignedAt *time.Time   `json:"signedAt,omitempty"`
}

type CompletedField struct {
	Field
	Value      string `json:"value"`
	SignerName string `json:"signerName"`
}

// SignerView is what one signer sees: their own fields as editable and the
// frozen values of signers who already signed.
type SignerView struct {
	SigningRequestID  string           `json:"id"`
	DocumentName      string           `json:"documentName"`
	DocumentRef       string           `json:"documentRef"`
	DocumentPageCount int              `json:"documentPageCount,omitempty"`
	SenderName        string           `json:"senderName"`
	SenderEmail       string           `json:"senderEmail"`
	Message           string           `json:"message,omitempty"`
	DueDate           *time.Time       `json:"dueDate,omitempty"`
	Status            RequestStatus    `json:"status"`
	Ordering          Ordering         `json:"ordering"`
	IsMyTurn          bool             `json:"isMyTurn"`
	Signer            SignerSummary    `json:"signer"`
	Email             string           `json:"email"`
	EditableFields    []Field          `json:"editableFields"`
	CompletedFields   []CompletedField `json:"completedFields"`
	Signers           []SignerSummary  `json:"signers"`
}

func summarize(s Signer) SignerSummary {
	return SignerSummary{Order: s.Order, Name: s.Name, Status: s.Status, SignedAt: cloneTime(s.SignedAt)}
}

func BuildSignerView(r *SigningRequest, signer Signer) SignerView {
	view := SignerView{
		SigningRequestID:  r.ID,
		DocumentName:      r.DocumentName,
		DocumentRef:       r.DocumentRef,
		DocumentPageCount: r.DocumentPageCount,
		SenderName:        r.SenderName,
		SenderEmail:       r.SenderEmail,
		Message:           r.Message,
		DueDate:           cloneTime(r.DueDate),
		Status:            r.Status,
		Ordering:          r.Ordering,
		IsMyTurn:          true,
		Signer:            summarize(signer),
		Email:             signer.Email,
		EditableFields:    r.FieldsFor(signer.Order),
		CompletedFields:   []CompletedField{},
	}
	if view.EditableFields == nil {
		view.EditableFields = []Field{}
	}
	if r.IsSequential() {
		current, ok := r.CurrentSigner()
		view.IsMyTurn = ok && current.Order == signer.Order
	}

	for _, other := range r.Signers {
		view.Signers = append(view.Signers, summarize(other))
		if !other.HasSigned() || other.Order == signer.Order {
			continue
		}
		for _, f := range r.FieldsFor(other.Order) {
			view.CompletedFields = append(view.CompletedFields, CompletedField{
				Field:      f,
				Value:      other.FieldValues[f.ID],
				SignerName: other.Name,
			})
		}
	}
	return view
}

// signerUpdate runs fn for an authorized signer. An elapsed due date is committed
// first and reported as an invalid transition.
func (s *Service) signerUpdate(ctx context.Context, id, email, token, action string, fn func(r *SigningRequest, now time.Time) error) (*SigningRequest, error) {
	expired := false
	req, err := s.store.Update(ctx, id, func(r *SigningRequest) error {
		signer, err := AuthorizeSigner(email, token, r)
		if err != nil {
			return err
		}
		if signer.HasSigned() {
			return ErrAlreadySigned
		}
		now := s.now()
		if IsExpired(r, now) {
			expired = true
			return Expire(r, now)
		}
		return fn(r, now)
	})
	if err != nil {
		return nil, err
	}
	if expired {
		s.record(ctx, id, AuditExpired, "system", "due date elapsed")
		return nil, transitionError(RequestStatusExpired, action)
	}
	return req, nil
}

func (s *Service) GetForSigner(ctx context.Context, id, email, token string) (*SignerView, error) {
	opened := false
	req, err := s.signerUpdate(ctx, id, email, token, "open", func(r *SigningRequest, now time.Time) error {
		if !r.Status.IsActive() {
			return transitionError(r.Status, "open")
		}
		var err error
		opened, err = MarkOpened(r, email, now)
		return err
	})
	if err != nil {
		return nil, err
	}
	if opened {
		s.record(ctx, id, AuditOpened, NormalizeEmail(email), "opened the document")
	}

	idx := req.SignerByEmail(email)
	view := BuildSignerView(req, req.Signers[idx])
	return &view, nil
}

func (s *Service) SubmitSignature(ctx context.Context, id, email, token string, values map[string]string) (*SigningRequest, error) {
	req, err := s.signerUpdate(ctx, id, email, token, "sign", func(r *SigningRequest, now time.Time) error {
		return Sign(r, email, values, now)
	})
	if err != nil {
		return nil, err
	}

	actor := NormalizeEmail(email)
	s.record(ctx, id, AuditSigned, actor, "signed the document")
	if req.Status == RequestStatusCompleted {
		s.record(ctx, id, AuditCompleted, "system", "all signers have signed")
	} else if req.IsSequential() {
		s.dispatchAsync(ctx, InvitationIntents(req))
	}
	return req, nil
}

func (s *Service) Decline(ctx context.Context, id, email, token, reason string) (*SigningRequest, error) {
	req, err := s.signerUpdate(ctx, id, email, token, "decline", func(r *SigningRequest, now time.Time) error {
		return Decline(r, email, reason, now)
	})
	if err != nil {
		return nil, err
	}
	desc := "declined to sign"
	if r := strings.TrimSpace(reason); r != "" {
		desc += ": " + r
	}
	s.record(ctx, id, AuditDeclined, NormalizeEmail(email), desc)
	return req, nil
}

func (s *Service) VoidRequest(ctx context.Context, owner Owner, id, reason string) (*SigningRequest, DispatchReport, error) {
	var from RequestStatus
	req, err := s.store.Update(ctx, id, func(r *SigningRequest) error {
		if err := AuthorizeOwner(owner.UserID, r); err != nil {
			return err
		}
		from = r.Status
		return Void(r, reason, s.now())
	})
	if err != nil {
		return nil, DispatchReport{}, err
	}

	desc := "voided the signing request"
	if req.VoidReason != "" {
		desc += ": " + req.VoidReason
	}
	s.record(ctx, id, AuditVoided, owner.Email, desc)
	return req, s.dispatch(ctx, VoidIntents(req, from), false), nil
}

// Resend re-issues invitations with the signers' existing tokens.
func (s *Service) Resend(ctx context.Context, owner Owner, id, signerEmail string) (DispatchReport, error) {
	req, err := s.GetForOwner(ctx, owner, id)
	if err != nil {
		return DispatchReport{}, err
	}
	if IsExpired(req, s.now()) {
		if _, err := s.store.Update(ctx, id, func(r *SigningRequest) error { return Expire(r, s.now()) }); err != nil && !errors.Is(err, ErrInvalidTransition) {
			return DispatchReport{}, err
		}
		s.record(ctx, id, AuditExpired, "system", "due date elapsed")
		return DispatchReport{}, transitionError(RequestStatusExpired, "resend")
	}

	intents, err := ResendIntents(req, signerEmail)
	if err != nil {
		return DispatchReport{}, err
	}
	report := s.dispatch(ctx, intents, true)
	s.record(ctx, id, AuditResent, owner.Email, fmt.Sprintf("resent invitation to %d signer(s)", len(report.Delivered)))
	return report, nil
}

func (s *Service) ResolveShortLink(ctx context.Context, token string) (*ShortLink, error) {
	res, err := s.resolver.ResolveToken(ctx, token)
	if err != nil {
		return nil, err
	}
	return &ShortLink{SigningRequestID: res.SigningRequestID, Email: res.SignerEmail, Token: token}, nil
}

func (s *Service) GetForOwner(ctx context.Context, owner Owner, id string) (*SigningRequest, error) {
	req, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := AuthorizeOwner(owner.UserID, req); err != nil {
		return nil, err
	}
	return req, nil
}

func (s *Service) ListOwned(ctx context.Context, owner Owner) ([]SigningRequest, error) {
	return s.store.ListByOwner(ctx, owner.UserID)
}

// ListInbox lists requests where email is a signer. Drafts are never shown to signers.
func (s *Service) ListInbox(ctx context.Context, email string) ([]SigningRequest, error) {
	all, err := s.store.ListByRecipientEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	inbox := make([]SigningRequest, 0, len(all))
	for _, r := range all {
		if r.Status != RequestStatusDraft {
			inbox = append(inbox, r)
		}
	}
	return inbox, nil
}

func (s *Service) UpdateSettings(ctx context.Context, owner Owner, id string, settings Settings) (*SigningRequest, error) {
	req, err := s.store.Update(ctx, id, func(r *SigningRequest) error {
		if err := AuthorizeOwner(owner.UserID, r); err != nil {
			return err
		}
		return ApplySettings(r, settings, s.now())
	})
	if err != nil {
		return nil, err
	}
	s.record(ctx, id, AuditSettingsUpdated, owner.Email, "updated request settings")
	return req, nil
}

// ShareLinks returns the signing link of every signer for the owner to pass on.
func (s *Service) ShareLinks(ctx context.Context, owner Owner, id string) ([]ShortLink, error) {
	req, err := s.GetForOwner(ctx, owner, id)
	if err != nil {
		return nil, err
	}
	if req.Status == RequestStatusDraft {
		return nil, transitionError(req.Status, "share")
	}
	links := make([]ShortLink, 0, len(req.Signers))
	for _, signer := range req.Signers {
		links = append(links, ShortLink{SigningRequestID: req.ID, Email: signer.Email, Token: signer.Token, Status: signer.Status})
	}
	return links, nil
}

var errStale = errors.New("request changed since it was listed")

// ExpireDue commits the expiration of every active request whose due date elapsed.
// A failure on one request does not stop the sweep.
func (s *Service) ExpireDue(ctx context.Context, now time.Time) (int, error) {
	active, err := s.store.ListActive(ctx)
	if err != nil {
		return 0, err
	}

	var errs []error
	expired := 0
	for i := range active {
		if !IsExpired(&active[i], now) {
			continue
		}
		id := active[i].ID
		_, err := s.store.Update(ctx, id, func(r *SigningRequest) error {
			if !IsExpired(r, now) {
				return errStale
			}
			return Expire(r, now)
		})
		if errors.Is(err, errStale) {
			continue
		}
		if err != nil {
			s.logger.Errorf("Failed to expire signing request %s: %v", id, err)
			errs = append(errs, fmt.Errorf("expire %s: %w", id, err))
			continue
		}
		expired++
		s.record(ctx, id, AuditExpired, "system", "due date elapsed")
	}
	return expired, errors.Join(errs...)
}

// DispatchDueReminders sends the reminders owed at now, skipping those the ledger
// has already seen. A failed reminder is released so the next sweep retries it.
func (s *Service) DispatchDueReminders(ctx context.Context, now time.Time) (DispatchReport, error) {
	active, err := s.store.ListActive(ctx)
	if err != nil {
		return DispatchReport{}, err
	}

	var report DispatchReport
	for i := range active {
		for _, intent := range DueReminders(&active[i], now) {
			key := intent.SigningRequestID + ":" + intent.RecipientEmail
			if s.ledger != nil {
				claimed, err := s.ledger.Claim(ctx, intent.SigningRequestID, intent.RecipientEmail, intent.ReminderNumber)
				if err != nil {
					s.logger.Errorf("Failed to claim reminder %d for %s: %v", intent.ReminderNumber, key, err)
					report.fail(key, err)
					continue
				}
				if !claimed {
					report.Skipped = append(report.Skipped, key)
					continue
				}
			}

			if err := s.notify(ctx, intent); err != nil {
				report.fail(key, err)
				if s.ledger != nil {
					if err := s.ledger.Release(ctx, intent.SigningRequestID, intent.RecipientEmail, intent.ReminderNumber); err != nil {
						s.logger.Errorf("Failed to release reminder %d for %s: %v", intent.ReminderNumber, key, err)
					}
				}
				continue
			}
			report.Delivered = append(report.Delivered, key)
			s.record(ctx, intent.SigningRequestID, AuditReminded, "system", fmt.Sprintf("sent reminder #%d to %s", intent.ReminderNumber, intent.RecipientEmail))
		}
	}
	return report, nil
}

func (s *Service) notify(ctx context.Context, intent Intent) error {
	if s.notifier == nil {
		return errors.New("no notifier configured")
	}
	if err := s.notifier.Notify(ctx, intent); err != nil {
		s.logger.Errorw("failed to dispatch notification", "error", err, "kind", intent.Kind, "signingRequestId", intent.SigningRequestID, "toEmail", intent.RecipientEmail)
		return err
	}
	return nil
}

// dispatch hands every intent to the notifier independently. When markSent is
// set, delivered invitations bump the signer to sent.
func (s *Service) dispatch(ctx context.Context, intents []Intent, markSent bool) DispatchReport {
	report := DispatchReport{Delivered: []string{}}
	for _, intent := range intents {
		if err := s.notify(ctx, intent); err != nil {
			report.fail(intent.RecipientEmail, err)
			continue
		}
		report.Delivered = append(report.Delivered, intent.RecipientEmail)

		if markSent && intent.Kind == IntentInvitation {
			_, err := s.store.Update(ctx, intent.SigningRequestID, func(r *SigningRequest) error {
				_, err := MarkSent(r, intent.RecipientEmail, s.now())
				return err
			})
			if err != nil {
				s.logger.Warnf("Failed to mark %s as sent on %s: %v", intent.RecipientEmail, intent.SigningRequestID, err)
			}
		}
	}
	return report
}

// dispatchAsync dispatches in the background; the caller's cancellation does not
// abort delivery.
func (s *Service) dispatchAsync(ctx context.Context, intents []Intent) {
	if len(intents) == 0 {
		return
	}
	s.inflight.Add(1)
	go func() {
		defer s.inflight.Done()
		bg, cancel := context.WithTimeout(context.WithoutCancel(ctx), dispatchTimeout)
		defer cancel()

		report := s.dispatch(bg, intents, true)
		if len(report.Failed) > 0 {
			s.logger.Errorf("Failed to deliver %d of %d invitation(s) for %s: %v", len(report.Failed), len(intents), intents[0].SigningRequestID, report.Failed)
		}
	}()
}

func (s *Service) record(ctx context.Context, id string, action AuditAction, actor, desc string) {
	if s.audit == nil {
		return
	}
	event := AuditEvent{SigningRequestID: id, Action: action, Actor: actor, Description: desc, Timestamp: s.now()}
	if err := s.audit.Record(ctx, event); err != nil {
		s.logger.Errorf("Failed to record audit event %s for %s: %v", action, id, err)
	}
}
