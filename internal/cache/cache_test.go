package cache

import (
	"testing"
	"time"
)

func TestReminderLedgerKey(t *testing.T) {
	tests := []struct {
		name  string
		email string
		n     int
		want  string
	}{
		{"Normalized email", " Bob@Example.com ", 2, "signflow:reminder:req-1:bob@example.com:2"},
		{"First reminder", "alice@example.com", 1, "signflow:reminder:req-1:alice@example.com:1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ReminderLedgerKey("req-1", tt.email, tt.n); got != tt.want {
				t.Errorf("ReminderLedgerKey() = %s, want %s", got, tt.want)
			}
		})
	}
}

func TestWindowKey(t *testing.T) {
	start := time.Date(2026, 1, 5, 9, 30, 0, 0, time.FixedZone("ICT", 7*60*60))
	if got := WindowKey("10.0.0.1", start); got != "signflow:ratelimit:10.0.0.1:20260105T023000" {
		t.Errorf("WindowKey() = %s", got)
	}
}
