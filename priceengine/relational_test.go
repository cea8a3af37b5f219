package priceengine

import (
	"bytes"
	"strings"
	"testing"

	"github.com/mtgjson/mtgjson/models"
)

func TestWriteSQLDumpBatchesLargeRowSets(t *testing.T) {
	rows := make([]models.PriceRow, priceDumpBatchSize+5)
	for i := range rows {
		rows[i] = models.PriceRow{UUID: "u", Date: "2026-08-06", Source: "paper", Provider: "p1", PriceType: "retail", Finish: "normal", Price: 1.0, Currency: "USD"}
	}

	var buf bytes.Buffer
	if err := WriteSQLDump(&buf, rows); err != nil {
		t.Fatalf("WriteSQLDump: %v", err)
	}
	out := buf.String()

	if !strings.Contains(out, "CREATE TABLE IF NOT EXISTS prices") {
		t.Fatal("expected the prices schema DDL in the dump")
	}
	if got := strings.Count(out, "INSERT INTO prices"); got != 2 {
		t.Fatalf("expected 2 INSERT batches for %d rows, got %d", len(rows), got)
	}
}

func TestSQLStringLiteralEscapesQuotesAndNulls(t *testing.T) {
	if got := sqlStringLiteral(""); got != "NULL" {
		t.Fatalf("expected NULL for empty string, got %q", got)
	}
	if got := sqlStringLiteral("o'brien"); got != "'o''brien'" {
		t.Fatalf("expected escaped quote, got %q", got)
	}
}

func TestWritePriceInsertBatchSkipsEmptyBatch(t *testing.T) {
	var buf bytes.Buffer
	if err := writePriceInsertBatch(&buf, nil); err != nil {
		t.Fatalf("writePriceInsertBatch: %v", err)
	}
	if buf.Len() != 0 {
		t.Fatalf("expected no output for an empty batch, got %q", buf.String())
	}
}
