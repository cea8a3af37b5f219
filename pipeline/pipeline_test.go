package pipeline

import (
	"context"
	"testing"

	"go.uber.org/zap"

	"github.com/mtgjson/mtgjson/internal/errs"
	"github.com/mtgjson/mtgjson/internal/frame"
	"github.com/mtgjson/mtgjson/lookups"
	"github.com/mtgjson/mtgjson/sourcecache"
)

func buildTestPipeline(t *testing.T) (*Pipeline, *errs.Builder) {
	t.Helper()
	dir := t.TempDir()

	sources := map[sourcecache.Name]sourcecache.Source{
		sourcecache.PrimaryCardBulk: func(ctx context.Context) ([]frame.Row, error) {
			return []frame.Row{
				{
					"id": "src1", "scryfallId": "sf1", "oracleId": "o1",
					"setCode": "LEA", "number": "1", "name": "Fire // Ice",
					"language": "English", "layout": "split",
					"legalities":   map[string]any{"modern": "Legal"},
					"availability": map[string]any{"paper": true},
					"faces": []frame.Row{
						{"name": "Fire", "manaCost": "{1}{R}", "type": "Instant", "text": "Fire deals 2 damage."},
						{"name": "Ice", "manaCost": "{1}{U}", "type": "Instant", "text": "Ice taps a permanent."},
					},
				},
				{
					"id": "src2", "scryfallId": "sf2", "oracleId": "o2",
					"setCode": "LEA", "number": "2", "name": "Llanowar Elves",
					"language": "English", "layout": "normal",
					"legalities":   map[string]any{"modern": "Legal"},
					"availability": map[string]any{"paper": true},
					"manaCost": "{G}", "type": "Creature — Elf Druid",
					"text": "Tap: add G.", "power": "1", "toughness": "1",
				},
			}, nil
		},
		sourcecache.MarketplaceIdentifiers: func(ctx context.Context) ([]frame.Row, error) { return nil, nil },
		sourcecache.CommanderSaltiness:     func(ctx context.Context) ([]frame.Row, error) { return nil, nil },
		sourcecache.Rulings:                func(ctx context.Context) ([]frame.Row, error) { return nil, nil },
		sourcecache.MeldTriplets:           func(ctx context.Context) ([]frame.Row, error) { return nil, nil },
		sourcecache.SecretLairSubsets:      func(ctx context.Context) ([]frame.Row, error) { return nil, nil },
		sourcecache.OfficialDBPageIDs:      func(ctx context.Context) ([]frame.Row, error) { return nil, nil },
		sourcecache.SealedProductContents:  func(ctx context.Context) ([]frame.Row, error) { return nil, nil },
		sourcecache.TokenProductMappings:   func(ctx context.Context) ([]frame.Row, error) { return nil, nil },
		sourcecache.Name("signatures"):          func(ctx context.Context) ([]frame.Row, error) { return nil, nil },
		sourcecache.Name("watermark_overrides"): func(ctx context.Context) ([]frame.Row, error) { return nil, nil },
		sourcecache.Name("face_flavor_names"):   func(ctx context.Context) ([]frame.Row, error) { return nil, nil },
		sourcecache.Name("marketplace_set_map"): func(ctx context.Context) ([]frame.Row, error) { return nil, nil },
	}

	cache := sourcecache.New(dir, zap.NewNop(), sources)
	report := errs.NewBuilder(zap.NewNop())
	if err := cache.LoadAll(context.Background(), sourcecache.Options{}, report); err != nil {
		t.Fatalf("LoadAll: %v", err)
	}

	cons := lookups.Build(cache)
	salts := ReferralSalts{Cardmarket: "cm-salt", Tcgplayer: "tcg-salt", CardKingdom: "ck-salt"}
	return New(cache, cons, zap.NewNop(), report, salts), report
}

func TestPipelineRunSplitsFacesAndPartitionsBySet(t *testing.T) {
	p, _ := buildTestPipeline(t)

	result, err := p.Run(context.Background(), Options{})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	leaCards := result.CardsBySet["LEA"]
	if len(leaCards) != 3 {
		t.Fatalf("expected 3 faces (Fire, Ice, Llanowar Elves) in LEA, got %d", len(leaCards))
	}

	for _, f := range leaCards {
		if f.UUID == "" {
			t.Errorf("face %q missing uuid", f.Name)
		}
		if f.SetCode != "LEA" {
			t.Errorf("face %q setCode = %q, want LEA", f.Name, f.SetCode)
		}
	}
}

func TestPipelineSplitFacesLinkOtherFaceIDs(t *testing.T) {
	p, _ := buildTestPipeline(t)

	result, err := p.Run(context.Background(), Options{})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	var fire, ice *string
	for i, f := range result.CardsBySet["LEA"] {
		switch f.FaceName {
		case "Fire":
			fire = &result.CardsBySet["LEA"][i].UUID
		case "Ice":
			ice = &result.CardsBySet["LEA"][i].UUID
		}
	}
	if fire == nil || ice == nil {
		t.Fatalf("expected both Fire and Ice faces present, got %+v", result.CardsBySet["LEA"])
	}

	for _, f := range result.CardsBySet["LEA"] {
		if f.FaceName == "Fire" {
			if len(f.OtherFaceIDs) != 1 || f.OtherFaceIDs[0] != *ice {
				t.Errorf("Fire.OtherFaceIDs = %v, want [%s]", f.OtherFaceIDs, *ice)
			}
		}
		if f.FaceName == "Ice" {
			if len(f.OtherFaceIDs) != 1 || f.OtherFaceIDs[0] != *fire {
				t.Errorf("Ice.OtherFaceIDs = %v, want [%s]", f.OtherFaceIDs, *fire)
			}
		}
	}
}

func TestPipelineAssignsMeldSideFromMeldTriplets(t *testing.T) {
	dir := t.TempDir()

	sources := map[sourcecache.Name]sourcecache.Source{
		sourcecache.PrimaryCardBulk: func(ctx context.Context) ([]frame.Row, error) {
			// Real meld cards arrive as three standalone rows, each with no
			// embedded "faces" list.
			return []frame.Row{
				{"id": "bruna", "scryfallId": "sfb", "oracleId": "ob", "setCode": "EMN", "number": "1a", "name": "Bruna, the Fading Light", "language": "English", "layout": "meld"},
				{"id": "gisela", "scryfallId": "sfg", "oracleId": "og", "setCode": "EMN", "number": "2a", "name": "Gisela, the Broken Blade", "language": "English", "layout": "meld"},
				{"id": "brisela", "scryfallId": "sfr", "oracleId": "or", "setCode": "EMN", "number": "15a", "name": "Brisela, Voice of Nightmares", "language": "English", "layout": "meld"},
			}, nil
		},
		sourcecache.MarketplaceIdentifiers: func(ctx context.Context) ([]frame.Row, error) { return nil, nil },
		sourcecache.CommanderSaltiness:     func(ctx context.Context) ([]frame.Row, error) { return nil, nil },
		sourcecache.Rulings:                func(ctx context.Context) ([]frame.Row, error) { return nil, nil },
		sourcecache.MeldTriplets: func(ctx context.Context) ([]frame.Row, error) {
			return []frame.Row{
				{"partA": "Bruna, the Fading Light", "partB": "Gisela, the Broken Blade", "result": "Brisela, Voice of Nightmares"},
			}, nil
		},
		sourcecache.SecretLairSubsets:      func(ctx context.Context) ([]frame.Row, error) { return nil, nil },
		sourcecache.OfficialDBPageIDs:      func(ctx context.Context) ([]frame.Row, error) { return nil, nil },
		sourcecache.SealedProductContents:  func(ctx context.Context) ([]frame.Row, error) { return nil, nil },
		sourcecache.TokenProductMappings:   func(ctx context.Context) ([]frame.Row, error) { return nil, nil },
		sourcecache.Name("signatures"):          func(ctx context.Context) ([]frame.Row, error) { return nil, nil },
		sourcecache.Name("watermark_overrides"): func(ctx context.Context) ([]frame.Row, error) { return nil, nil },
		sourcecache.Name("face_flavor_names"):   func(ctx context.Context) ([]frame.Row, error) { return nil, nil },
		sourcecache.Name("marketplace_set_map"): func(ctx context.Context) ([]frame.Row, error) { return nil, nil },
	}

	cache := sourcecache.New(dir, zap.NewNop(), sources)
	report := errs.NewBuilder(zap.NewNop())
	if err := cache.LoadAll(context.Background(), sourcecache.Options{}, report); err != nil {
		t.Fatalf("LoadAll: %v", err)
	}

	cons := lookups.Build(cache)
	salts := ReferralSalts{Cardmarket: "cm-salt", Tcgplayer: "tcg-salt", CardKingdom: "ck-salt"}
	p := New(cache, cons, zap.NewNop(), report, salts)

	result, err := p.Run(context.Background(), Options{})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	sides := map[string]string{}
	for _, f := range result.CardsBySet["EMN"] {
		sides[f.Name] = f.Side
	}
	if sides["Bruna, the Fading Light"] != "a" {
		t.Errorf("Bruna side = %q, want a", sides["Bruna, the Fading Light"])
	}
	if sides["Gisela, the Broken Blade"] != "a" {
		t.Errorf("Gisela side = %q, want a", sides["Gisela, the Broken Blade"])
	}
	if sides["Brisela, Voice of Nightmares"] != "b" {
		t.Errorf("Brisela side = %q, want b", sides["Brisela, Voice of Nightmares"])
	}
}

func TestPipelineRunRespectsSetCodeFilter(t *testing.T) {
	p, _ := buildTestPipeline(t)

	result, err := p.Run(context.Background(), Options{SetCodes: []string{"LEA"}})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(result.CardsBySet) != 1 {
		t.Fatalf("expected exactly one set in result, got %d", len(result.CardsBySet))
	}
	if _, ok := result.CardsBySet["LEA"]; !ok {
		t.Fatalf("expected LEA set present, got %v", result.CardsBySet)
	}
}
