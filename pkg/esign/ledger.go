package esign

import (
	"context"
	"fmt"
	"sync"
)

// MemoryLedger is a process local ReminderLedger.
type MemoryLedger struct {
	mu   sync.Mutex
	sent map[string]struct{}
}

func NewMemoryLedger() *MemoryLedger {
	return &MemoryLedger{sent: make(map[string]struct{})}
}

func ReminderKey(requestID, email string, n int) string {
	return fmt.Sprintf("%s:%s:%d", requestID, NormalizeEmail(email), n)
}

func (l *MemoryLedger) Claim(ctx context.Context, requestID, email string, n int) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	key := ReminderKey(requestID, email, n)
	if _, ok := l.sent[key]; ok {
		return false, nil
	}
	l.sent[key] = struct{}{}
	return true, nil
}

func (l *MemoryLedger) Release(ctx context.Context, requestID, email string, n int) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	delete(l.sent, ReminderKey(requestID, email, n))
	return nil
}
