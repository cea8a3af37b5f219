package sourcecache

import (
	"context"
	"testing"

	"go.uber.org/zap"

	"github.com/mtgjson/mtgjson/internal/errs"
	"github.com/mtgjson/mtgjson/internal/frame"
)

func TestLoadAllAndScan(t *testing.T) {
	dir := t.TempDir()
	sources := map[Name]Source{
		PrimaryCardBulk: func(ctx context.Context) ([]frame.Row, error) {
			return []frame.Row{
				{"id": "1", "name": "Lightning Bolt", "setCode": "LEA"},
				{"id": "2", "name": "Llanowar Elves", "setCode": "LEA"},
			}, nil
		},
	}
	c := New(dir, zap.NewNop(), sources)
	report := errs.NewBuilder(zap.NewNop())

	if err := c.LoadAll(context.Background(), Options{}, report); err != nil {
		t.Fatalf("LoadAll: %v", err)
	}
	if !c.IsLoaded(PrimaryCardBulk) {
		t.Fatal("expected PrimaryCardBulk to be marked loaded")
	}

	rows := c.Scan(PrimaryCardBulk).Collect()
	if len(rows) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(rows))
	}
}

func TestLoadAllRecordsFetchFailure(t *testing.T) {
	dir := t.TempDir()
	sources := map[Name]Source{
		SetMetadata: func(ctx context.Context) ([]frame.Row, error) {
			return nil, errFakeNetwork
		},
	}
	c := New(dir, zap.NewNop(), sources)
	report := errs.NewBuilder(zap.NewNop())

	if err := c.LoadAll(context.Background(), Options{}, report); err != nil {
		t.Fatalf("LoadAll should not return a fatal error on fetch failure: %v", err)
	}
	if report.Report().SourceFetchFailures != 1 {
		t.Fatalf("expected 1 recorded fetch failure, got %d", report.Report().SourceFetchFailures)
	}
}

func TestApplyOptionsFiltersBySetCode(t *testing.T) {
	rows := []frame.Row{
		{"id": "1", "setCode": "LEA"},
		{"id": "2", "setCode": "LEB"},
	}
	out := applyOptions(rows, Options{SetCodes: []string{"LEA"}})
	if len(out) != 1 || out[0]["setCode"] != "LEA" {
		t.Fatalf("expected only LEA rows, got %v", out)
	}
}
