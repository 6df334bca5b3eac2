package util

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/SeakMengs/SignFlow/pkg/esign"
	"github.com/go-playground/validator/v10"
)

type signerForm struct {
	Name  string `validate:"strNotEmpty"`
	Email string `validate:"required,email"`
	Note  string `validate:"cmax=5"`
}

func newValidator(t *testing.T) *validator.Validate {
	t.Helper()
	v := validator.New()
	for tag, fn := range map[string]validator.Func{"strNotEmpty": StrNotEmpty, "cmin": CustomMin, "cmax": CustomMax} {
		if err := v.RegisterValidation(tag, fn); err != nil {
			t.Fatalf("RegisterValidation(%s) error = %v", tag, err)
		}
	}
	return v
}

func TestGenerateErrorMessages(t *testing.T) {
	v := newValidator(t)

	tests := []struct {
		name       string
		err        error
		params     []any
		wantFields []string
	}{
		{"Validator errors", v.Struct(signerForm{Name: "  ", Email: "nope", Note: "  ok  "}), nil, []string{"Name", "Email"}},
		{"Custom field names", v.Struct(signerForm{Name: "A", Email: "a@example.com", Note: "too long"}), []any{map[string]string{"Note": "message"}}, []string{"message"}},
		{"Signing validation error", fmt.Errorf("create: %w", esign.NewValidationError("signers", "at least one signer is required")), nil, []string{"signers"}},
		{"Incomplete fields", &esign.IncompleteFieldsError{FieldIDs: []string{"f1", "f2"}}, nil, []string{"f1", "f2"}},
		{"Plain error with field name", errors.New("boom"), []any{"document"}, []string{"document"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := GenerateErrorMessages(tt.err, tt.params...)
			if len(got) != len(tt.wantFields) {
				t.Fatalf("GenerateErrorMessages() = %v, want fields %v", got, tt.wantFields)
			}
			for i, field := range tt.wantFields {
				if got[i].Field != field {
					t.Errorf("GenerateErrorMessages()[%d].Field = %s, want %s", i, got[i].Field, field)
				}
			}
		})
	}
}

func TestStatusFromError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"Validation", esign.NewValidationError("email", "invalid"), http.StatusBadRequest},
		{"Incomplete fields", &esign.IncompleteFieldsError{FieldIDs: []string{"f1"}}, http.StatusBadRequest},
		{"Forbidden", esign.ErrForbidden, http.StatusForbidden},
		{"Invalid link", esign.ErrInvalidLink, http.StatusNotFound},
		{"Already signed", esign.ErrAlreadySigned, http.StatusConflict},
		{"Out of turn", fmt.Errorf("sign: %w", esign.ErrOutOfTurn), http.StatusConflict},
		{"Already voided", esign.ErrAlreadyVoided, http.StatusConflict},
		{"Transient", esign.NewTransientError("get", errors.New("db down")), http.StatusServiceUnavailable},
		{"Unknown", errors.New("boom"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := StatusFromError(tt.err); got != tt.want {
				t.Errorf("StatusFromError() = %d, want %d", got, tt.want)
			}
		})
	}
}

type requestForm struct {
	Title   string   `json:"title" validate:"strNotEmpty"`
	Signers []string `json:"signers" validate:"min=1"`
	Page    int      `form:"page" validate:"min=1"`
}

func TestRegisterCustomValidations(t *testing.T) {
	v := validator.New()
	if err := RegisterCustomValidations(v); err != nil {
		t.Fatalf("RegisterCustomValidations() error = %v", err)
	}

	got := GenerateErrorMessages(v.Struct(requestForm{Title: " ", Signers: []string{}}))
	want := []ApiError{
		{Field: "title", Message: "title must not be empty or contain only whitespace charaters"},
		{Field: "signers", Message: "signers must be at least 1 items"},
		{Field: "page", Message: "page must be at least 1"},
	}
	if len(got) != len(want) {
		t.Fatalf("GenerateErrorMessages() = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("GenerateErrorMessages()[%d] = %+v, want %+v", i, got[i], want[i])
		}
	}
}
