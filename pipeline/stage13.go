package pipeline

import (
	"sort"

	"github.com/mtgjson/mtgjson/internal/frame"
	"github.com/mtgjson/mtgjson/internal/mtgutil"
	"github.com/mtgjson/mtgjson/models"
)

// stage13Sink deduplicates to the default (English) language per face,
// computes variations, splits card rows from token rows, partitions by
// set, sorts within each partition, and converts every row to its output
// model.CardFace shape.
func (p *Pipeline) stage13Sink(f frame.Frame) *Result {
	rows := f.DedupKeepFirst(
		func(a, b frame.Row) bool { return languageRank(a) < languageRank(b) },
		func(r frame.Row) string { return rowString(r, "scryfallId") + "\x1f" + rowString(r, "side") },
	).Collect()

	assignVariations(rows)

	result := &Result{
		CardsBySet:  map[string][]models.CardFace{},
		TokensBySet: map[string][]models.CardFace{},
	}

	for _, r := range rows {
		face := rowToCardFace(r)
		setCode := mtgutil.WindowsSafeSetCode(face.SetCode)
		if rowString(r, "layout") == "token" {
			result.TokensBySet[setCode] = append(result.TokensBySet[setCode], face)
		} else {
			result.CardsBySet[setCode] = append(result.CardsBySet[setCode], face)
		}
	}

	for setCode := range result.CardsBySet {
		sortFacesByNameNumberSide(result.CardsBySet[setCode])
	}
	for setCode := range result.TokensBySet {
		sortFacesByNameNumberSide(result.TokensBySet[setCode])
	}

	return result
}

// languageRank ranks English first so DedupKeepFirst keeps the default
// language printing when multiple language rows share the same source id.
func languageRank(r frame.Row) int {
	if rowString(r, "language") == "English" || rowString(r, "language") == "" {
		return 0
	}
	return 1
}

// assignVariations groups faces by (setCode, name, side) -- the side key
// keeps a multi-face card's own sides (linked separately via otherFaceIds)
// from being mistaken for variations of each other -- and links each member
// of a group to every other member, sorted by UUID for stable diffs.
func assignVariations(rows []frame.Row) {
	groups := map[string][]int{}
	for i, r := range rows {
		key := rowString(r, "setCode") + "\x1f" + rowString(r, "name") + "\x1f" + rowString(r, "side")
		groups[key] = append(groups[key], i)
	}
	for _, idxs := range groups {
		if len(idxs) < 2 {
			continue
		}
		uuids := make([]string, 0, len(idxs))
		for _, i := range idxs {
			uuids = append(uuids, rowString(rows[i], "uuid"))
		}
		sort.Strings(uuids)
		for _, i := range idxs {
			self := rowString(rows[i], "uuid")
			var others []string
			for _, u := range uuids {
				if u != self {
					others = append(others, u)
				}
			}
			rows[i]["variations"] = others
		}
	}
}

func sortFacesByNameNumberSide(faces []models.CardFace) {
	sort.SliceStable(faces, func(i, j int) bool {
		if faces[i].Name != faces[j].Name {
			return faces[i].Name < faces[j].Name
		}
		if faces[i].Number != faces[j].Number {
			return faces[i].Number < faces[j].Number
		}
		return faces[i].Side < faces[j].Side
	})
}

func rowToCardFace(r frame.Row) models.CardFace {
	legalities, _ := r["legalities"].(models.Legalities)
	availability, _ := r["availability"].(models.Availability)
	identifiers, _ := r["identifiers"].(models.Identifiers)

	purchaseURLMap, _ := r["purchaseUrls"].(map[string]string)
	purchaseURLs := models.PurchaseURLs{
		Cardmarket:  purchaseURLMap["cardmarket"],
		Tcgplayer:   purchaseURLMap["tcgplayer"],
		CardKingdom: purchaseURLMap["cardKingdom"],
	}

	manaValue, _ := r["manaValue"].(float64)
	edhrecSaltiness, _ := r["edhrecSaltiness"].(float64)
	edhrecRank, _ := r["edhrecRank"].(int)

	var rulings []models.Ruling
	for _, rr := range rowRows(r, "rulings") {
		date, _ := rr["date"].(int64)
		rulings = append(rulings, models.Ruling{Date: date, Text: rowString(rr, "text")})
	}

	var foreignData []models.ForeignPrinting
	for _, fr := range rowRows(r, "foreignData") {
		foreignData = append(foreignData, models.ForeignPrinting{
			UUID:         rowString(fr, "uuid"),
			Language:     rowString(fr, "language"),
			Name:         rowString(fr, "name"),
			Text:         rowString(fr, "text"),
			Type:         rowString(fr, "type"),
			FaceName:     rowString(fr, "faceName"),
			MultiverseID: rowString(fr, "multiverseId"),
		})
	}

	return models.CardFace{
		UUID:       rowString(r, "uuid"),
		Name:       rowString(r, "name"),
		FaceName:   rowString(r, "faceName"),
		SetCode:    rowString(r, "setCode"),
		Number:     rowString(r, "number"),
		Side:       rowString(r, "side"),
		Layout:     rowString(r, "layout"),
		ManaCost:   rowString(r, "manaCost"),
		ManaValue:  manaValue,
		Colors:     rowStrings(r, "colors"),
		ColorIdentity: rowStrings(r, "colorIdentity"),
		Type:       rowString(r, "type"),
		Supertypes: rowStrings(r, "supertypes"),
		Types:      rowStrings(r, "types"),
		Subtypes:   rowStrings(r, "subtypes"),
		Text:       rowString(r, "text"),
		FlavorText: rowString(r, "flavorText"),
		Power:      rowString(r, "power"),
		Toughness:  rowString(r, "toughness"),
		Loyalty:    rowString(r, "loyalty"),
		Keywords:   rowStrings(r, "keywords"),
		Rarity:     rowString(r, "rarity"),
		Artist:     rowString(r, "artist"),
		Watermark:  rowString(r, "watermark"),
		Finishes:   rowStrings(r, "finishes"),
		MeldSide:   rowString(r, "meldSide"),
		CardParts:  rowStrings(r, "cardParts"),
		OtherFaceIDs: rowStrings(r, "otherFaceIds"),
		Variations:   rowStrings(r, "variations"),
		RebalancedPrintings: rowStrings(r, "rebalancedPrintings"),
		TokenIDs:     rowStrings(r, "tokenIds"),
		SourceProducts: rowStrings(r, "sourceProducts"),
		Identifiers:  identifiers,
		PurchaseURLs: purchaseURLs,
		Legalities:   legalities,
		Availability: availability,
		ForeignData:  foreignData,
		Rulings:      rulings,
		EDHRecRank:   edhrecRank,
		EDHRecSaltiness: edhrecSaltiness,
		OriginalReleaseDate: rowString(r, "originalReleaseDate"),
		IsFunny:      rowBool(r, "isFunny"),
		HasContentWarning: rowBool(r, "hasContentWarning"),
	}
}

func rowBool(r frame.Row, key string) bool {
	b, _ := r[key].(bool)
	return b
}

func rowRows(r frame.Row, key string) []frame.Row {
	rows, _ := r[key].([]frame.Row)
	return rows
}
