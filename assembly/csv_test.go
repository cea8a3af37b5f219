package assembly

import (
	"bytes"
	"encoding/csv"
	"testing"
)

func TestWriteCSVWritesHeaderAndOneRowPerFace(t *testing.T) {
	sets := sampleSets()
	rows := flatten(sets)
	var buf bytes.Buffer
	if err := WriteCSV(&buf, sets); err != nil {
		t.Fatalf("WriteCSV: %v", err)
	}

	records, err := csv.NewReader(&buf).ReadAll()
	if err != nil {
		t.Fatalf("parse csv output: %v", err)
	}
	if len(records) != len(rows)+1 {
		t.Fatalf("expected %d records (header + rows), got %d", len(rows)+1, len(records))
	}
	if records[0][0] != "uuid" || records[0][1] != "name" {
		t.Fatalf("unexpected header: %v", records[0])
	}
}

func TestCsvCellFormatsByType(t *testing.T) {
	cases := map[any]string{
		nil:      "",
		"x":      "x",
		true:     "true",
		float64(1.5): "1.5",
		42:       "42",
	}
	for in, want := range cases {
		if got := csvCell(in); got != want {
			t.Errorf("csvCell(%v) = %q, want %q", in, got, want)
		}
	}
}
