package lookups

import (
	"context"
	"testing"

	"go.uber.org/zap"

	"github.com/mtgjson/mtgjson/internal/errs"
	"github.com/mtgjson/mtgjson/internal/frame"
	"github.com/mtgjson/mtgjson/sourcecache"
)

func buildTestCache(t *testing.T) *sourcecache.Cache {
	t.Helper()
	dir := t.TempDir()
	sources := map[sourcecache.Name]sourcecache.Source{
		sourcecache.PrimaryCardBulk: func(ctx context.Context) ([]frame.Row, error) {
			return []frame.Row{
				{"uuid": "u1", "scryfallId": "sf1", "side": "", "oracleId": "o1", "setCode": "LEA", "number": "1", "name": "Lightning Bolt", "language": "English"},
				{"uuid": "u2", "scryfallId": "sf2", "side": "", "oracleId": "o1", "setCode": "LEB", "number": "1", "name": "Lightning Bolt", "language": "Japanese"},
			}, nil
		},
		sourcecache.MarketplaceIdentifiers: func(ctx context.Context) ([]frame.Row, error) {
			return []frame.Row{
				{"scryfallId": "sf1", "side": "", "cardKingdomId": "ck1", "tcgplayerProductId": "tcg1", "mtgoId": "mo1"},
			}, nil
		},
		sourcecache.CommanderSaltiness: func(ctx context.Context) ([]frame.Row, error) {
			return []frame.Row{{"oracleId": "o1", "saltiness": 0.42}}, nil
		},
		sourcecache.Rulings: func(ctx context.Context) ([]frame.Row, error) {
			return []frame.Row{{"oracleId": "o1", "date": "2020-01-01", "text": "deals damage"}}, nil
		},
		sourcecache.MeldTriplets: func(ctx context.Context) ([]frame.Row, error) {
			return nil, nil
		},
		sourcecache.Name("signatures"):         func(ctx context.Context) ([]frame.Row, error) { return nil, nil },
		sourcecache.Name("watermark_overrides"): func(ctx context.Context) ([]frame.Row, error) { return nil, nil },
		sourcecache.Name("face_flavor_names"):   func(ctx context.Context) ([]frame.Row, error) { return nil, nil },
		sourcecache.Name("marketplace_set_map"): func(ctx context.Context) ([]frame.Row, error) { return nil, nil },
	}
	c := sourcecache.New(dir, zap.NewNop(), sources)
	report := errs.NewBuilder(zap.NewNop())
	if err := c.LoadAll(context.Background(), sourcecache.Options{}, report); err != nil {
		t.Fatalf("LoadAll: %v", err)
	}
	return c
}

func TestBuildOracleLookup(t *testing.T) {
	c := buildTestCache(t)
	cons := Build(c)
	rows := cons.Oracle.Collect()
	if len(rows) != 1 {
		t.Fatalf("expected 1 oracle row, got %d", len(rows))
	}
	r := rows[0]
	if r["edhrecSaltiness"] != 0.42 {
		t.Errorf("edhrecSaltiness = %v, want 0.42", r["edhrecSaltiness"])
	}
	printings, _ := r["printings"].([]string)
	if len(printings) != 2 {
		t.Errorf("expected 2 printings, got %v", printings)
	}
}

func TestBuildIdentifiersLookupFullOuterJoin(t *testing.T) {
	c := buildTestCache(t)
	cons := Build(c)
	rows := cons.Identifiers.Collect()
	if len(rows) != 2 {
		t.Fatalf("expected 2 identifier rows (one with market data, one without), got %d", len(rows))
	}
}

func TestBuildByNameLookupDerivesMeldSide(t *testing.T) {
	dir := t.TempDir()
	sources := map[sourcecache.Name]sourcecache.Source{
		sourcecache.PrimaryCardBulk:        func(ctx context.Context) ([]frame.Row, error) { return nil, nil },
		sourcecache.MarketplaceIdentifiers: func(ctx context.Context) ([]frame.Row, error) { return nil, nil },
		sourcecache.CommanderSaltiness:     func(ctx context.Context) ([]frame.Row, error) { return nil, nil },
		sourcecache.Rulings:                func(ctx context.Context) ([]frame.Row, error) { return nil, nil },
		// Real meld cards arrive as three standalone top-level rows with no
		// embedded faces list; MeldTriplets is the only place their side
		// assignment can come from.
		sourcecache.MeldTriplets: func(ctx context.Context) ([]frame.Row, error) {
			return []frame.Row{
				{"partA": "Bruna, the Fading Light", "partB": "Gisela, the Broken Blade", "result": "Brisela, Voice of Nightmares"},
			}, nil
		},
		sourcecache.Name("signatures"):          func(ctx context.Context) ([]frame.Row, error) { return nil, nil },
		sourcecache.Name("watermark_overrides"): func(ctx context.Context) ([]frame.Row, error) { return nil, nil },
		sourcecache.Name("face_flavor_names"):   func(ctx context.Context) ([]frame.Row, error) { return nil, nil },
		sourcecache.Name("marketplace_set_map"): func(ctx context.Context) ([]frame.Row, error) { return nil, nil },
	}
	c := sourcecache.New(dir, zap.NewNop(), sources)
	report := errs.NewBuilder(zap.NewNop())
	if err := c.LoadAll(context.Background(), sourcecache.Options{}, report); err != nil {
		t.Fatalf("LoadAll: %v", err)
	}

	cons := Build(c)
	byName := map[string]frame.Row{}
	for _, r := range cons.ByName.Collect() {
		byName[rowStringTest(r, "name")] = r
	}

	if got := rowStringTest(byName["Bruna, the Fading Light"], "meldSide"); got != "a" {
		t.Errorf("Bruna meldSide = %q, want a", got)
	}
	if got := rowStringTest(byName["Gisela, the Broken Blade"], "meldSide"); got != "a" {
		t.Errorf("Gisela meldSide = %q, want a", got)
	}
	if got := rowStringTest(byName["Brisela, Voice of Nightmares"], "meldSide"); got != "b" {
		t.Errorf("Brisela meldSide = %q, want b", got)
	}
}

func rowStringTest(r frame.Row, key string) string {
	s, _ := r[key].(string)
	return s
}

func TestInvertIDBridges(t *testing.T) {
	c := buildTestCache(t)
	cons := Build(c)
	if got := cons.MTGOToUUID["mo1"]; len(got) != 1 || got[0] != "u1" {
		t.Errorf("MTGOToUUID[mo1] = %v, want [u1]", got)
	}
	if got := cons.TCGPlayerProductToUUID["tcg1"]; len(got) != 1 || got[0] != "u1" {
		t.Errorf("TCGPlayerProductToUUID[tcg1] = %v, want [u1]", got)
	}
}
