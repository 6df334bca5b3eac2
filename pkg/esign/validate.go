package esign

import (
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

func IsValidEmail(email string) bool {
	return validate.Var(strings.TrimSpace(email), "required,email") == nil
}

// ValidateSigner checks a signer against the signers already attached to a request.
// The signer itself must not be part of existing.
func ValidateSigner(s Signer, existing []Signer) error {
	if strings.TrimSpace(s.Name) == "" {
		return NewValidationError("name", "signer name is required")
	}
	if !IsValidEmail(s.Email) {
		return NewValidationError("email", "%q is not a valid email address", s.Email)
	}
	if s.Order < 1 {
		return NewValidationError("order", "signer order must be at least 1, got %d", s.Order)
	}

	email := NormalizeEmail(s.Email)
	for _, other := range existing {
		if NormalizeEmail(other.Email) == email {
			return NewValidationError("email", "%s is already a signer of this request", email)
		}
		if other.Order == s.Order {
			return NewValidationError("order", "signer order %d is used more than once", s.Order)
		}
	}
	return nil
}

// ValidateField checks position bounds and ownership. pageCount <= 0 means unknown.
func ValidateField(f Field, signers []Signer, pageCount int) error {
	if !f.Type.Valid() {
		return NewValidationError("fieldType", "unknown field type %q", f.Type)
	}
	if f.PageNumber < 1 {
		return NewValidationError("pageNumber", "page number must be at least 1, got %d", f.PageNumber)
	}
	if pageCount > 0 && f.PageNumber > pageCount {
		return NewValidationError("pageNumber", "page number must be between 1 and %d, got %d", pageCount, f.PageNumber)
	}

	owned := false
	for _, s := range signers {
		if s.Order == f.SignerOrder {
			owned = true
			break
		}
	}
	if !owned {
		return NewValidationError("signerOrder", "field %s references unknown signer order %d", f.ID, f.SignerOrder)
	}

	for name, v := range map[string]float64{"x": f.X, "y": f.Y, "width": f.Width, "height": f.Height} {
		if v < 0 || v > 100 {
			return NewValidationError(name, "%s must be between 0 and 100, got %v", name, v)
		}
	}
	if f.X+f.Width > 100 {
		return NewValidationError("width", "field %s extends past the right edge of the page", f.ID)
	}
	if f.Y+f.Height > 100 {
		return NewValidationError("height", "field %s extends past the bottom edge of the page", f.ID)
	}
	return nil
}

// ValidateRequest checks the structural invariants of a whole aggregate:
// signer uniqueness, strictly increasing order and the field partition.
func ValidateRequest(r *SigningRequest) error {
	if strings.TrimSpace(r.DocumentName) == "" {
		return NewValidationError("documentName", "document name is required")
	}
	if strings.TrimSpace(r.DocumentRef) == "" {
		return NewValidationError("documentRef", "document reference is required")
	}
	if r.Ordering != "" && !r.Ordering.Valid() {
		return NewValidationError("ordering", "unknown ordering %q", r.Ordering)
	}
	if r.ReminderIntervalDays < 0 {
		return NewValidationError("reminderIntervalDays", "reminder interval must not be negative")
	}

	selfCount := 0
	for i, s := range r.Signers {
		if err := ValidateSigner(s, r.Signers[:i]); err != nil {
			return err
		}
		if i > 0 && s.Order <= r.Signers[i-1].Order {
			return NewValidationError("order", "signer order must be strictly increasing, got %d after %d", s.Order, r.Signers[i-1].Order)
		}
		if s.IsSelf {
			selfCount++
		}
	}
	if selfCount > 1 {
		return NewValidationError("isSelf", "only one signer can be the sender")
	}

	ids := make(map[string]struct{}, len(r.Fields))
	for _, f := range r.Fields {
		if strings.TrimSpace(f.ID) == "" {
			return NewValidationError("id", "field id is required")
		}
		if _, dup := ids[f.ID]; dup {
			return NewValidationError("id", "field id %s is used more than once", f.ID)
		}
		ids[f.ID] = struct{}{}
		if err := ValidateField(f, r.Signers, r.DocumentPageCount); err != nil {
			return err
		}
	}
	return nil
}

// validateSendable enforces the rules for leaving draft.
func validateSendable(r *SigningRequest) error {
	if len(r.Signers) == 0 {
		return NewValidationError("signers", "at least one signer is required")
	}
	for _, s := range r.Signers {
		if len(r.FieldsFor(s.Order)) == 0 {
			return NewValidationError("fields", "signer %s has no fields assigned", s.Email)
		}
	}
	return ValidateRequest(r)
}
