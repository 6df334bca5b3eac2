package esign

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"
)

var t0 = time.Date(2026, time.January, 5, 9, 0, 0, 0, time.UTC)

func newDraft(ordering Ordering) *SigningRequest {
	return &SigningRequest{
		ID:                "req-1",
		OwnerUserID:       "user-1",
		DocumentName:      "NDA.pdf",
		DocumentRef:       "documents/nda.pdf",
		DocumentPageCount: 2,
		SenderName:        "Olivia Owner",
		SenderEmail:       "owner@example.com",
		Signers: []Signer{
			{ID: "s1", Order: 1, Name: "Alice", Email: "alice@example.com", Status: SignerStatusPending, Token: "tok-alice"},
			{ID: "s2", Order: 2, Name: "Bob", Email: "bob@example.com", Status: SignerStatusPending, Token: "tok-bob"},
		},
		Fields: []Field{
			{ID: "f1", SignerOrder: 1, Type: FieldTypeSignature, PageNumber: 1, X: 10, Y: 10, Width: 20, Height: 5, Required: true},
			{ID: "f2", SignerOrder: 2, Type: FieldTypeSignature, PageNumber: 2, X: 10, Y: 80, Width: 20, Height: 5, Required: true},
			{ID: "f3", SignerOrder: 2, Type: FieldTypeDate, PageNumber: 2, X: 50, Y: 80, Width: 20, Height: 5},
		},
		Status:               RequestStatusDraft,
		Ordering:             ordering,
		ReminderIntervalDays: 3,
		CreatedAt:            t0,
		UpdatedAt:            t0,
	}
}

func newSent(t *testing.T, ordering Ordering) *SigningRequest {
	t.Helper()
	r := newDraft(ordering)
	if err := Send(r, t0); err != nil {
		t.Fatalf("Send() error = %v", err)
	}
	return r
}

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

type recordingNotifier struct {
	mu      sync.Mutex
	intents []Intent
	fail    map[string]error
}

func (n *recordingNotifier) Notify(ctx context.Context, intent Intent) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if err := n.fail[intent.RecipientEmail]; err != nil {
		return err
	}
	n.intents = append(n.intents, intent)
	return nil
}

func (n *recordingNotifier) sent(kind IntentKind) []Intent {
	n.mu.Lock()
	defer n.mu.Unlock()
	var out []Intent
	for _, i := range n.intents {
		if i.Kind == kind {
			out = append(out, i)
		}
	}
	return out
}

func (n *recordingNotifier) recipients(kind IntentKind) map[string]bool {
	out := make(map[string]bool)
	for _, i := range n.sent(kind) {
		out[i.RecipientEmail] = true
	}
	return out
}

func (n *recordingNotifier) reset() {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.intents = nil
}

type recordingAudit struct {
	mu     sync.Mutex
	events []AuditEvent
}

func (a *recordingAudit) Record(ctx context.Context, event AuditEvent) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.events = append(a.events, event)
	return nil
}

func (a *recordingAudit) actions() []AuditAction {
	a.mu.Lock()
	defer a.mu.Unlock()
	out := make([]AuditAction, len(a.events))
	for i, e := range a.events {
		out[i] = e.Action
	}
	return out
}

type testEnv struct {
	svc      *Service
	store    *MemoryStore
	notifier *recordingNotifier
	audit    *recordingAudit
	ledger   *MemoryLedger
	clock    *fakeClock
}

func newTestEnv() *testEnv {
	env := &testEnv{
		store:    NewMemoryStore(),
		notifier: &recordingNotifier{fail: map[string]error{}},
		audit:    &recordingAudit{},
		ledger:   NewMemoryLedger(),
		clock:    &fakeClock{now: t0},
	}

	var mu sync.Mutex
	seq := 0
	next := func(prefix string) string {
		mu.Lock()
		defer mu.Unlock()
		seq++
		return fmt.Sprintf("%s-%d", prefix, seq)
	}

	env.svc = NewService(ServiceOptions{
		Store:          env.store,
		Notifier:       env.notifier,
		Ledger:         env.ledger,
		Audit:          env.audit,
		TokenGenerator: func() (string, error) { return next("tok"), nil },
		IDGenerator:    func() string { return next("id") },
		Clock:          env.clock.Now,
	})
	return env
}

var testOwner = Owner{UserID: "user-1", Name: "Olivia Owner", Email: "owner@example.com"}

func twoSignerPayload(ordering Ordering) CreatePayload {
	return CreatePayload{
		DocumentName:      "NDA.pdf",
		DocumentRef:       "documents/nda.pdf",
		DocumentPageCount: 2,
		Ordering:          ordering,
		Signers: []SignerInput{
			{Order: 1, Name: "Alice", Email: "Alice@Example.com"},
			{Order: 2, Name: "Bob", Email: "bob@example.com"},
		},
		Fields: []Field{
			{ID: "f1", SignerOrder: 1, Type: FieldTypeSignature, PageNumber: 1, X: 10, Y: 10, Width: 20, Height: 5, Required: true},
			{ID: "f2", SignerOrder: 2, Type: FieldTypeSignature, PageNumber: 2, X: 10, Y: 80, Width: 20, Height: 5, Required: true},
		},
	}
}

// tokenOf reads a signer token straight from the store.
func (env *testEnv) tokenOf(t *testing.T, id, email string) string {
	t.Helper()
	req, err := env.store.Get(context.Background(), id)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	idx := req.SignerByEmail(email)
	if idx < 0 {
		t.Fatalf("signer %s not found on %s", email, id)
	}
	return req.Signers[idx].Token
}
