package assembly

import (
	"path/filepath"
	"testing"

	"github.com/mtgjson/mtgjson/internal/frame"
)

func TestWriteColumnarNestedRoundTrips(t *testing.T) {
	dir := t.TempDir()
	sets := sampleSets()
	if err := WriteColumnarNested(dir, sets); err != nil {
		t.Fatalf("WriteColumnarNested: %v", err)
	}
	rows, err := frame.ReadPartition(filepath.Join(dir, "LEA.partition"))
	if err != nil {
		t.Fatalf("ReadPartition: %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("expected 3 rows (2 cards + 1 token), got %d", len(rows))
	}
	var sawToken bool
	for _, r := range rows {
		if r["isToken"] == true {
			sawToken = true
		}
		if _, ok := r["identifiers"].(map[string]any); !ok {
			t.Fatalf("expected nested identifiers map, got %T", r["identifiers"])
		}
	}
	if !sawToken {
		t.Fatal("expected at least one row flagged isToken")
	}
}

func TestWriteColumnarNormalizedSplitsIntoTables(t *testing.T) {
	dir := t.TempDir()
	sets := sampleSets()
	if err := WriteColumnarNormalized(dir, sets); err != nil {
		t.Fatalf("WriteColumnarNormalized: %v", err)
	}
	cards, err := frame.ReadPartition(filepath.Join(dir, "cards.partition"))
	if err != nil {
		t.Fatalf("ReadPartition(cards): %v", err)
	}
	if len(cards) != 2 {
		t.Fatalf("expected 2 card rows, got %d", len(cards))
	}
}
