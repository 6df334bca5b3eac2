package esign

import (
	"context"
	"fmt"
	"sort"
	"sync"
)

// Store persists signing request aggregates.
//
// Update must apply fn to the latest committed version of the aggregate and
// commit the result as one atomic unit. When fn returns an error nothing is written.
type Store interface {
	Create(ctx context.Context, r *SigningRequest) (string, error)
	Get(ctx context.Context, id string) (*SigningRequest, error)
	FindByToken(ctx context.Context, token string) (*SigningRequest, *Signer, error)
	Update(ctx context.Context, id string, fn func(*SigningRequest) error) (*SigningRequest, error)
	ListByOwner(ctx context.Context, userID string) ([]SigningRequest, error)
	ListByRecipientEmail(ctx context.Context, email string) ([]SigningRequest, error)
	// ListActive returns pending and in progress requests for periodic sweeps.
	ListActive(ctx context.Context) ([]SigningRequest, error)
}

// MemoryStore is a mutex guarded Store with token and email indexes.
type MemoryStore struct {
	mu       sync.RWMutex
	requests map[string]*SigningRequest
	byToken  map[string]string
	byEmail  map[string]map[string]struct{}
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		requests: make(map[string]*SigningRequest),
		byToken:  make(map[string]string),
		byEmail:  make(map[string]map[string]struct{}),
	}
}

func (m *MemoryStore) Create(ctx context.Context, r *SigningRequest) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", NewTransientError("create signing request", err)
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.requests[r.ID]; exists {
		return "", fmt.Errorf("signing request %s already exists: %w", r.ID, ErrConflict)
	}
	if err := m.checkTokens(r); err != nil {
		return "", err
	}

	c := r.Clone()
	c.Version = 1
	m.requests[c.ID] = c
	m.index(c)
	return c.ID, nil
}

func (m *MemoryStore) Get(ctx context.Context, id string) (*SigningRequest, error) {
	if err := ctx.Err(); err != nil {
		return nil, NewTransientError("get signing request", err)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()

	r, ok := m.requests[id]
	if !ok {
		return nil, fmt.Errorf("signing request %s: %w", id, ErrNotFound)
	}
	return r.Clone(), nil
}

func (m *MemoryStore) FindByToken(ctx context.Context, token string) (*SigningRequest, *Signer, error) {
	if err := ctx.Err(); err != nil {
		return nil, nil, NewTransientError("find signing request by token", err)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()

	id, ok := m.byToken[token]
	if !ok {
		return nil, nil, ErrInvalidLink
	}
	r := m.requests[id].Clone()
	idx := r.SignerByToken(token)
	if idx < 0 {
		return nil, nil, ErrInvalidLink
	}
	signer := r.Signers[idx]
	return r, &signer, nil
}

func (m *MemoryStore) Update(ctx context.Context, id string, fn func(*SigningRequest) error) (*SigningRequest, error) {
	if err := ctx.Err(); err != nil {
		return nil, NewTransientError("update signing request", err)
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	current, ok := m.requests[id]
	if !ok {
		return nil, fmt.Errorf("signing request %s: %w", id, ErrNotFound)
	}

	next := current.Clone()
	if err := fn(next); err != nil {
		return nil, err
	}
	if next.ID != current.ID {
		return nil, NewValidationError("id", "signing request id is immutable")
	}

	m.unindex(current)
	if err := m.checkTokens(next); err != nil {
		m.index(current)
		return nil, err
	}
	next.Version = current.Version + 1
	m.requests[id] = next
	m.index(next)
	return next.Clone(), nil
}

func (m *MemoryStore) ListByOwner(ctx context.Context, userID string) ([]SigningRequest, error) {
	return m.list(ctx, func(r *SigningRequest) bool { return r.OwnerUserID == userID })
}

func (m *MemoryStore) ListByRecipientEmail(ctx context.Context, email string) ([]SigningRequest, error) {
	if err := ctx.Err(); err != nil {
		return nil, NewTransientError("list signing requests", err)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()

	var out []SigningRequest
	for id := range m.byEmail[NormalizeEmail(email)] {
		out = append(out, *m.requests[id].Clone())
	}
	sortNewestFirst(out)
	return out, nil
}

func (m *MemoryStore) ListActive(ctx context.Context) ([]SigningRequest, error) {
	return m.list(ctx, func(r *SigningRequest) bool { return r.Status.IsActive() })
}

func (m *MemoryStore) list(ctx context.Context, keep func(*SigningRequest) bool) ([]SigningRequest, error) {
	if err := ctx.Err(); err != nil {
		return nil, NewTransientError("list signing requests", err)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()

	var out []SigningRequest
	for _, r := range m.requests {
		if keep(r) {
			out = append(out, *r.Clone())
		}
	}
	sortNewestFirst(out)
	return out, nil
}

// checkTokens rejects tokens held by another request. Callers hold the write lock.
func (m *MemoryStore) checkTokens(r *SigningRequest) error {
	for _, s := range r.Signers {
		if s.Token == "" {
			continue
		}
		if owner, taken := m.byToken[s.Token]; taken && owner != r.ID {
			return fmt.Errorf("signer token already in use: %w", ErrConflict)
		}
	}
	return nil
}

func (m *MemoryStore) index(r *SigningRequest) {
	for _, s := range r.Signers {
		if s.Token != "" {
			m.byToken[s.Token] = r.ID
		}
		email := NormalizeEmail(s.Email)
		if m.byEmail[email] == nil {
			m.byEmail[email] = make(map[string]struct{})
		}
		m.byEmail[email][r.ID] = struct{}{}
	}
}

func (m *MemoryStore) unindex(r *SigningRequest) {
	for _, s := range r.Signers {
		delete(m.byToken, s.Token)
		email := NormalizeEmail(s.Email)
		delete(m.byEmail[email], r.ID)
		if len(m.byEmail[email]) == 0 {
			delete(m.byEmail, email)
		}
	}
}

func sortNewestFirst(rs []SigningRequest) {
	sort.Slice(rs, func(i, j int) bool {
		if rs[i].CreatedAt.Equal(rs[j].CreatedAt) {
			return rs[i].ID < rs[j].ID
		}
		return rs[i].CreatedAt.After(rs[j].CreatedAt)
	})
}
