package esign

import (
	"context"
	"errors"
	"testing"
)

func TestAuthorizeSigner(t *testing.T) {
	r := newSent(t, OrderingParallel)
	other := newSent(t, OrderingParallel)
	other.Signers[0].Token = "tok-elsewhere"

	tests := []struct {
		name    string
		email   string
		token   string
		wantErr error
	}{
		{"Matching email and token", "alice@example.com", "tok-alice", nil},
		{"Email case is ignored", " Alice@Example.COM ", "tok-alice", nil},
		{"Token of another signer", "alice@example.com", "tok-bob", ErrForbidden},
		{"Token of another request", "alice@example.com", other.Signers[0].Token, ErrForbidden},
		{"Unknown email", "eve@example.com", "tok-alice", ErrForbidden},
		{"Empty token", "alice@example.com", "", ErrForbidden},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			signer, err := AuthorizeSigner(tt.email, tt.token, r)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Errorf("AuthorizeSigner() error = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("AuthorizeSigner() error = %v", err)
			}
			if signer.ID != "s1" {
				t.Errorf("AuthorizeSigner() = %s, want s1", signer.ID)
			}
		})
	}
}

func TestAuthorizeOwner(t *testing.T) {
	r := newDraft(OrderingParallel)
	if err := AuthorizeOwner("user-1", r); err != nil {
		t.Errorf("AuthorizeOwner(owner) error = %v", err)
	}
	for _, userID := range []string{"user-2", ""} {
		if err := AuthorizeOwner(userID, r); !errors.Is(err, ErrForbidden) {
			t.Errorf("AuthorizeOwner(%q) error = %v, want %v", userID, err, ErrForbidden)
		}
	}
}

func TestResolveToken(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	r := newSent(t, OrderingParallel)
	if err := Sign(r, "alice@example.com", map[string]string{"f1": "A"}, t0); err != nil {
		t.Fatalf("Sign() error = %v", err)
	}
	if _, err := store.Create(ctx, r); err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	resolver := NewResolver(store)

	got, err := resolver.ResolveToken(ctx, "tok-alice")
	if err != nil {
		t.Fatalf("ResolveToken(signed signer) error = %v", err)
	}
	if got.SigningRequestID != "req-1" || got.SignerEmail != "alice@example.com" {
		t.Errorf("ResolveToken() = %+v", got)
	}

	for _, token := range []string{"", "tok-nobody"} {
		if _, err := resolver.ResolveToken(ctx, token); !errors.Is(err, ErrNotFound) {
			t.Errorf("ResolveToken(%q) error = %v, want %v", token, err, ErrNotFound)
		}
	}
}

func TestValidateField(t *testing.T) {
	signers := newDraft(OrderingParallel).Signers
	base := Field{ID: "f", SignerOrder: 1, Type: FieldTypeText, PageNumber: 1, X: 10, Y: 10, Width: 10, Height: 10}

	tests := []struct {
		name    string
		mutate  func(f *Field)
		wantErr bool
	}{
		{"Valid field", func(f *Field) {}, false},
		{"Unknown type", func(f *Field) { f.Type = "stamp" }, true},
		{"Page zero", func(f *Field) { f.PageNumber = 0 }, true},
		{"Page past the document", func(f *Field) { f.PageNumber = 3 }, true},
		{"Negative position", func(f *Field) { f.X = -1 }, true},
		{"Overflowing width", func(f *Field) { f.X = 95 }, true},
		{"Overflowing height", func(f *Field) { f.Y = 91 }, true},
		{"Orphan field", func(f *Field) { f.SignerOrder = 3 }, true},
		{"Touching the edge", func(f *Field) { f.X = 90; f.Y = 90 }, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := base
			tt.mutate(&f)
			err := ValidateField(f, signers, 2)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateField() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil && !errors.Is(err, ErrValidation) {
				t.Errorf("ValidateField() error = %v, want a validation error", err)
			}
		})
	}
}
