package assembly

import (
	"testing"

	"github.com/mtgjson/mtgjson/models"
)

func sampleSets() map[string]models.Set {
	cards := map[string][]models.CardFace{
		"LEA": {
			{UUID: "u1", Name: "Llanowar Elves", SetCode: "LEA", Number: "1", Layout: "normal"},
			{UUID: "u2", Name: "Fire // Ice", FaceName: "Fire", SetCode: "LEA", Number: "2", Side: "a", Layout: "split"},
		},
	}
	tokens := map[string][]models.CardFace{
		"LEA": {{UUID: "t1", Name: "Bear", SetCode: "LEA", Number: "T1", Layout: "token"}},
	}
	meta := map[string]SetMeta{
		"LEA": {Code: "LEA", Name: "Limited Edition Alpha", Type: "core", ReleaseDate: "1993-08-05"},
	}
	return BuildSets(cards, tokens, meta)
}

func TestBuildSetsMergesCardsTokensAndMeta(t *testing.T) {
	sets := sampleSets()
	lea, ok := sets["LEA"]
	if !ok {
		t.Fatal("expected LEA set to be present")
	}
	if lea.Name != "Limited Edition Alpha" {
		t.Fatalf("expected set metadata to merge, got name %q", lea.Name)
	}
	if len(lea.Cards) != 2 {
		t.Fatalf("expected 2 cards, got %d", len(lea.Cards))
	}
	if len(lea.Tokens) != 1 {
		t.Fatalf("expected 1 token, got %d", len(lea.Tokens))
	}
}

func TestBuildSetsIncludesSetsWithMetaOnly(t *testing.T) {
	meta := map[string]SetMeta{"XYZ": {Code: "XYZ", Name: "Mystery Set"}}
	sets := BuildSets(nil, nil, meta)
	if _, ok := sets["XYZ"]; !ok {
		t.Fatal("expected a set with only metadata to still appear")
	}
}

func TestSortedSetCodesIsLexicographic(t *testing.T) {
	sets := map[string]models.Set{"ZEN": {}, "LEA": {}, "AER": {}}
	got := sortedSetCodes(sets)
	want := []string{"AER", "LEA", "ZEN"}
	for i, code := range want {
		if got[i] != code {
			t.Fatalf("sortedSetCodes()[%d] = %q, want %q", i, got[i], code)
		}
	}
}
