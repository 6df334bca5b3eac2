package esign

import (
	"context"
	"crypto/subtle"
	"fmt"
)

type TokenResolution struct {
	SigningRequestID string `json:"id"`
	SignerEmail      string `json:"email"`
}

// Resolver maps signer tokens to requests and answers ownership questions.
type Resolver struct {
	store Store
}

func NewResolver(store Store) *Resolver {
	return &Resolver{store: store}
}

// ResolveToken succeeds for any token a signer holds, even when the signer already
// signed or the request was voided; later operations reject those cases.
func (r *Resolver) ResolveToken(ctx context.Context, token string) (TokenResolution, error) {
	if token == "" {
		return TokenResolution{}, ErrInvalidLink
	}
	req, signer, err := r.store.FindByToken(ctx, token)
	if err != nil {
		return TokenResolution{}, err
	}
	return TokenResolution{SigningRequestID: req.ID, SignerEmail: signer.Email}, nil
}

func AuthorizeOwner(userID string, req *SigningRequest) error {
	if userID == "" || req.OwnerUserID != userID {
		return fmt.Errorf("user is not the owner of signing request %s: %w", req.ID, ErrForbidden)
	}
	return nil
}

// AuthorizeSigner requires the token to belong to this request and to the signer
// with the given email.
func AuthorizeSigner(email, token string, req *SigningRequest) (*Signer, error) {
	idx := req.SignerByEmail(email)
	if idx < 0 || token == "" {
		return nil, fmt.Errorf("signer is not part of signing request %s: %w", req.ID, ErrForbidden)
	}
	signer := &req.Signers[idx]
	if subtle.ConstantTimeCompare([]byte(signer.Token), []byte(token)) != 1 {
		return nil, fmt.Errorf("signing link does not match signer: %w", ErrForbidden)
	}
	return signer, nil
}
