package assembly

import (
	"path/filepath"

	"github.com/mtgjson/mtgjson/internal/frame"
	"github.com/mtgjson/mtgjson/internal/mtgutil"
	"github.com/mtgjson/mtgjson/models"
)

// WriteColumnarNested writes one gob+zstd partition per set under dir,
// each holding every card face of that set as a nested frame.Row (sub-
// objects like identifiers/legalities kept as nested maps rather than
// flattened), mirroring the combined JSON document's shape but in the
// columnar container spec.md's DOMAIN STACK names as the Parquet/Arrow
// stand-in (internal/frame's gob+zstd codec).
func WriteColumnarNested(dir string, sets map[string]models.Set) error {
	for _, code := range sortedSetCodes(sets) {
		set := sets[code]
		rows := make([]frame.Row, 0, len(set.Cards)+len(set.Tokens))
		for _, c := range set.Cards {
			rows = append(rows, cardFaceToNestedRow(c, false))
		}
		for _, c := range set.Tokens {
			rows = append(rows, cardFaceToNestedRow(c, true))
		}
		path := filepath.Join(dir, mtgutil.WindowsSafeSetCode(code)+".partition")
		if err := frame.WritePartition(path, rows); err != nil {
			return err
		}
	}
	return nil
}

// WriteColumnarNormalized writes one partition per logical table (cards,
// foreign_data, rulings, sealed_products) instead of one per set, the
// normalized layout analysts querying across the whole catalog at once
// would reach for instead of re-opening every set's nested partition.
func WriteColumnarNormalized(dir string, sets map[string]models.Set) error {
	var cards, foreignData, rulings, sealedProducts []frame.Row

	for _, code := range sortedSetCodes(sets) {
		set := sets[code]
		for _, c := range set.Cards {
			cards = append(cards, cardFaceToFlatRow(c))
			for _, fd := range c.ForeignData {
				foreignData = append(foreignData, frame.Row{
					"uuid": c.UUID, "language": fd.Language, "name": fd.Name,
					"text": fd.Text, "type": fd.Type, "faceName": fd.FaceName,
					"multiverseId": fd.MultiverseID,
				})
			}
			for _, r := range c.Rulings {
				rulings = append(rulings, frame.Row{"uuid": c.UUID, "date": r.Date, "text": r.Text})
			}
		}
		for _, sp := range set.SealedProducts {
			sealedProducts = append(sealedProducts, frame.Row{
				"uuid": sp.UUID, "setCode": code, "name": sp.Name,
				"category": sp.Category, "subtype": sp.Subtype,
			})
		}
	}

	tables := map[string][]frame.Row{
		"cards.partition":           cards,
		"foreign_data.partition":    foreignData,
		"rulings.partition":         rulings,
		"sealed_products.partition": sealedProducts,
	}
	for name, rows := range tables {
		if err := frame.WritePartition(filepath.Join(dir, name), rows); err != nil {
			return err
		}
	}
	return nil
}

func cardFaceToFlatRow(c models.CardFace) frame.Row {
	r := frame.Row{}
	for k, v := range flattenFace(c) {
		r[k] = v
	}
	return r
}

func cardFaceToNestedRow(c models.CardFace, isToken bool) frame.Row {
	return frame.Row{
		"uuid": c.UUID, "name": c.Name, "faceName": c.FaceName, "setCode": c.SetCode,
		"number": c.Number, "side": c.Side, "layout": c.Layout, "isToken": isToken,
		"manaCost": c.ManaCost, "manaValue": c.ManaValue,
		"colors": c.Colors, "colorIdentity": c.ColorIdentity,
		"type": c.Type, "supertypes": c.Supertypes, "types": c.Types, "subtypes": c.Subtypes,
		"text": c.Text, "flavorText": c.FlavorText, "power": c.Power, "toughness": c.Toughness,
		"loyalty": c.Loyalty, "rarity": c.Rarity, "artist": c.Artist, "watermark": c.Watermark,
		"finishes": c.Finishes, "borderColor": c.BorderColor,
		"otherFaceIds": c.OtherFaceIDs, "variations": c.Variations, "tokenIds": c.TokenIDs,
		// Nested sub-objects are plain map[string]any, not frame.Row, since
		// gob only has map[string]any registered for values stored in an
		// `any` slot -- the named Row type itself is never registered.
		"identifiers": map[string]any{
			"scryfallId": c.Identifiers.ScryfallID, "scryfallOracleId": c.Identifiers.ScryfallOracleID,
			"multiverseId": c.Identifiers.MultiverseID, "mtgoId": c.Identifiers.MtgoID,
			"mtgArenaId": c.Identifiers.MtgArenaID, "tcgplayerProductId": c.Identifiers.TcgplayerProductID,
			"cardKingdomId": c.Identifiers.CardKingdomID,
		},
		"legalities": map[string]any{
			"standard": c.Legalities.Standard, "modern": c.Legalities.Modern,
			"legacy": c.Legalities.Legacy, "vintage": c.Legalities.Vintage,
			"commander": c.Legalities.Commander, "pauper": c.Legalities.Pauper,
		},
		"availability": map[string]any{
			"arena": c.Availability.Arena, "mtgo": c.Availability.Mtgo, "paper": c.Availability.Paper,
		},
		"isFunny": c.IsFunny, "isReprint": c.IsReprint, "hasContentWarning": c.HasContentWarning,
	}
}
