package storage

import (
	"testing"
	"time"
)

func TestPruneLocalRetentionKeepsWindow(t *testing.T) {
	now := time.Date(2026, 8, 6, 0, 0, 0, 0, time.UTC)
	dates := []time.Time{
		now.AddDate(0, 0, -1),
		now.AddDate(0, 0, -89),
		now.AddDate(0, 0, -91),
		now.AddDate(0, 0, -200),
	}
	var removed []time.Time
	n, err := PruneLocalRetention(dates, 90*24*time.Hour, now, func(d time.Time) error {
		removed = append(removed, d)
		return nil
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if n != 2 {
		t.Fatalf("expected 2 pruned dates, got %d", n)
	}
	for _, d := range removed {
		if d.Equal(now.AddDate(0, 0, -1)) || d.Equal(now.AddDate(0, 0, -89)) {
			t.Errorf("pruned a date still within the retention window: %v", d)
		}
	}
}
