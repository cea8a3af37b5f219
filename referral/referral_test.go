package referral

import (
	"testing"

	"github.com/mtgjson/mtgjson/models"
)

func TestBuildLinkMapCollectsEveryProviderHash(t *testing.T) {
	sets := map[string]models.Set{
		"LEA": {
			Code: "LEA",
			Cards: []models.CardFace{
				{
					UUID:        "uuid-1",
					Identifiers: models.Identifiers{CardKingdomID: "ck-1", TcgplayerProductID: "tcg-1", McmID: "mcm-1"},
					PurchaseURLs: models.PurchaseURLs{
						CardKingdom: "hash-ck",
						Tcgplayer:   "hash-tcg",
						Cardmarket:  "hash-mcm",
					},
				},
				{
					UUID: "uuid-2", // no purchase URLs at all
				},
			},
			Tokens: []models.CardFace{
				{
					UUID:        "uuid-3",
					Identifiers: models.Identifiers{CardKingdomID: "ck-3"},
					PurchaseURLs: models.PurchaseURLs{CardKingdom: "hash-token-ck"},
				},
			},
		},
	}

	links := BuildLinkMap(sets)
	if len(links) != 4 {
		t.Fatalf("expected 4 link entries, got %d: %+v", len(links), links)
	}
	if links["hash-ck"] != "https://www.cardkingdom.com/catalog/item/ck-1" {
		t.Fatalf("unexpected cardKingdom destination: %q", links["hash-ck"])
	}
	if links["hash-tcg"] != "https://www.tcgplayer.com/product/tcg-1" {
		t.Fatalf("unexpected tcgplayer destination: %q", links["hash-tcg"])
	}
	if links["hash-mcm"] != "https://www.cardmarket.com/en/Magic/Products/Singles/mcm-1" {
		t.Fatalf("unexpected cardmarket destination: %q", links["hash-mcm"])
	}
	if links["hash-token-ck"] == "" {
		t.Fatal("expected the token face's cardKingdom hash to be linked too")
	}
}

func TestBuildLinkMapSkipsHashWithoutMatchingIdentifier(t *testing.T) {
	sets := map[string]models.Set{
		"LEA": {
			Code: "LEA",
			Cards: []models.CardFace{
				{
					UUID: "uuid-1",
					// Hash present but no CardKingdomID to build a URL from --
					// shouldn't happen in practice (stage 9 only sets the hash
					// when the identifier exists) but the builder must not
					// panic or emit a garbage destination.
					PurchaseURLs: models.PurchaseURLs{CardKingdom: "hash-orphan"},
				},
			},
		},
	}

	links := BuildLinkMap(sets)
	if len(links) != 0 {
		t.Fatalf("expected no link for a hash with no backing identifier, got %+v", links)
	}
}

func TestBuildLinkMapIncludesSealedProductLinks(t *testing.T) {
	sets := map[string]models.Set{
		"LEA": {
			Code: "LEA",
			SealedProducts: []models.SealedProduct{
				{
					UUID:        "sealed-1",
					Identifiers: models.Identifiers{TcgplayerProductID: "tcg-sealed"},
					PurchaseURLs: models.PurchaseURLs{Tcgplayer: "hash-sealed"},
				},
			},
		},
	}

	links := BuildLinkMap(sets)
	if links["hash-sealed"] != "https://www.tcgplayer.com/product/tcg-sealed" {
		t.Fatalf("expected sealed-product link, got %+v", links)
	}
}
