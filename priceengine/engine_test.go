package priceengine

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/mtgjson/mtgjson/internal/errs"
	"github.com/mtgjson/mtgjson/models"
)

type fakeProvider struct {
	name string
	rows []models.PriceRow
	err  error
}

func (f *fakeProvider) Name() string { return f.name }
func (f *fakeProvider) Fetch(ctx context.Context, bridges Bridges) ([]models.PriceRow, error) {
	return f.rows, f.err
}

func TestFetchTodayIsolatesProviderFailures(t *testing.T) {
	providers := []Provider{
		&fakeProvider{name: "ok", rows: []models.PriceRow{{UUID: "u1", Date: "2026-08-06", Source: "paper", Provider: "ok", PriceType: "retail", Finish: "normal", Price: 1.5, Currency: "USD"}}},
		&fakeProvider{name: "broken", err: errors.New("upstream down")},
	}
	log := zap.NewNop()
	e := New(providers, Bridges{}, log, errs.NewBuilder(log), t.TempDir())

	rows := e.FetchToday(context.Background())
	if len(rows) != 1 {
		t.Fatalf("expected 1 row from the healthy provider, got %d", len(rows))
	}
	if e.report.Report().SourceFetchFailures != 1 {
		t.Fatalf("expected 1 recorded source fetch failure, got %d", e.report.Report().SourceFetchFailures)
	}
}

func TestMergeLastWriteWinsKeepsIncomingOnOverlap(t *testing.T) {
	base := []models.PriceRow{{UUID: "u1", Date: "2026-08-06", Source: "paper", Provider: "p1", PriceType: "retail", Finish: "normal", Price: 1.0, Currency: "USD"}}
	incoming := []models.PriceRow{{UUID: "u1", Date: "2026-08-06", Source: "paper", Provider: "p1", PriceType: "retail", Finish: "normal", Price: 2.0, Currency: "USD"}}

	merged := mergeLastWriteWins(base, incoming)
	if len(merged) != 1 {
		t.Fatalf("expected 1 merged row for overlapping key, got %d", len(merged))
	}
	if merged[0].Price != 2.0 {
		t.Fatalf("expected incoming price 2.0 to win, got %v", merged[0].Price)
	}
}

func TestMergeLastWriteWinsKeepsDistinctRows(t *testing.T) {
	base := []models.PriceRow{{UUID: "u1", Date: "2026-08-05", Source: "paper", Provider: "p1", PriceType: "retail", Finish: "normal", Price: 1.0, Currency: "USD"}}
	incoming := []models.PriceRow{{UUID: "u2", Date: "2026-08-06", Source: "paper", Provider: "p1", PriceType: "retail", Finish: "normal", Price: 2.0, Currency: "USD"}}

	merged := mergeLastWriteWins(base, incoming)
	if len(merged) != 2 {
		t.Fatalf("expected 2 distinct rows, got %d", len(merged))
	}
}

func TestWriteTodayPartitionRoundTripsThroughPriceRows(t *testing.T) {
	dir := t.TempDir()
	log := zap.NewNop()
	e := New(nil, Bridges{}, log, errs.NewBuilder(log), dir)

	rows := []models.PriceRow{{UUID: "u1", Date: "2026-08-06", Source: "paper", Provider: "p1", PriceType: "retail", Finish: "normal", Price: 3.25, Currency: "USD"}}
	if err := e.WriteTodayPartition("2026-08-06", rows); err != nil {
		t.Fatalf("WriteTodayPartition: %v", err)
	}

	got, err := readPriceRows(filepath.Join(dir, "date=2026-08-06", "data.parquet"))
	if err != nil {
		t.Fatalf("readPriceRows: %v", err)
	}
	if len(got) != 1 || got[0].Price != 3.25 {
		t.Fatalf("expected round-tripped row with price 3.25, got %+v", got)
	}
}

func TestLoad90DayWindowSkipsOlderPartitions(t *testing.T) {
	dir := t.TempDir()
	log := zap.NewNop()
	e := New(nil, Bridges{}, log, errs.NewBuilder(log), dir)

	now := time.Date(2026, 8, 6, 0, 0, 0, 0, time.UTC)
	recent := now.AddDate(0, 0, -5).Format("2006-01-02")
	stale := now.AddDate(0, 0, -200).Format("2006-01-02")

	if err := e.WriteTodayPartition(recent, []models.PriceRow{{UUID: "u1", Date: recent, Source: "paper", Provider: "p1", PriceType: "retail", Finish: "normal", Price: 1, Currency: "USD"}}); err != nil {
		t.Fatalf("write recent partition: %v", err)
	}
	if err := e.WriteTodayPartition(stale, []models.PriceRow{{UUID: "u2", Date: stale, Source: "paper", Provider: "p1", PriceType: "retail", Finish: "normal", Price: 1, Currency: "USD"}}); err != nil {
		t.Fatalf("write stale partition: %v", err)
	}

	rows, err := e.Load90DayWindow(now)
	if err != nil {
		t.Fatalf("Load90DayWindow: %v", err)
	}
	if len(rows) != 1 || rows[0].UUID != "u1" {
		t.Fatalf("expected only the recent partition's row, got %+v", rows)
	}
}
