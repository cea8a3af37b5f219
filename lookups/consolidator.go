// Package lookups builds the nine reusable lookup frames the card
// compilation pipeline joins against, each computed once per run from the
// source cache.
package lookups

import (
	"sort"

	"github.com/mtgjson/mtgjson/internal/frame"
	"github.com/mtgjson/mtgjson/internal/mtgutil"
	"github.com/mtgjson/mtgjson/sourcecache"
)

// BoosterFunCutoff is the date (Throne of Eldraine's release) used to
// decide whether a set predates the "booster fun" treatment-card era.
const BoosterFunCutoff = "2019-10-04"

// FoilNonfoilLinkSets lists sets where foil and non-foil printings of the
// same card diverge in Oracle text/art and must not be treated as pure
// finish-variants of one face row.
var FoilNonfoilLinkSets = map[string]bool{
	"CN2": true, "FRF": true, "ONS": true, "10E": true, "UNH": true,
}

// FunnySetsWithAcornStamp lists "funny" sets whose isFunny flag is
// additionally gated on the card's security stamp being "acorn" rather than
// purely on set type (Unfinity's mixed-legality design).
var FunnySetsWithAcornStamp = map[string]bool{
	"UNF": true,
}

// Consolidator holds every lookup frame, keyed by name, built once from a
// source cache.
type Consolidator struct {
	Identifiers           frame.Frame // key: (scryfallId, side)
	Oracle                frame.Frame // key: oracleId
	SetAndNumber          frame.Frame // key: (setCode, collectorNumber)
	ByName                frame.Frame // key: name
	Signatures            frame.Frame // key: scryfallId
	WatermarkOverrides    frame.Frame // key: scryfallId
	FaceFlavorNames       frame.Frame // key: (scryfallId, faceName)
	MarketplaceSetMap     frame.Frame // key: setCode

	TCGPlayerProductToUUID map[string][]string
	TCGPlayerEtchedToUUID  map[string][]string
	MTGOToUUID             map[string][]string
	ScryfallToUUID         map[string][]string
}

// Build consumes the source cache and produces every lookup frame. Each
// lookup is computed exactly once; the pipeline joins against the returned
// Consolidator's frames directly rather than re-deriving them per set.
func Build(cache *sourcecache.Cache) *Consolidator {
	c := &Consolidator{}

	c.Identifiers = buildIdentifiersLookup(cache)
	c.Oracle = buildOracleLookup(cache)
	c.SetAndNumber = buildSetAndNumberLookup(cache)
	c.ByName = buildByNameLookup(cache)
	c.Signatures = cache.Scan(sourcecache.Name("signatures"))
	c.WatermarkOverrides = cache.Scan(sourcecache.Name("watermark_overrides"))
	c.FaceFlavorNames = cache.Scan(sourcecache.Name("face_flavor_names"))
	c.MarketplaceSetMap = cache.Scan(sourcecache.Name("marketplace_set_map"))

	bulk := cache.Scan(sourcecache.PrimaryCardBulk).Collect()
	ids := cache.Scan(sourcecache.MarketplaceIdentifiers).Collect()
	c.TCGPlayerProductToUUID = invertIDBridge(ids, "tcgplayerProductId", bulk)
	c.TCGPlayerEtchedToUUID = invertIDBridge(ids, "tcgplayerEtchedProductId", bulk)
	c.MTGOToUUID = invertIDBridge(ids, "mtgoId", bulk)
	c.ScryfallToUUID = invertIDBridge(ids, "scryfallId", bulk)

	return c
}

// buildIdentifiersLookup full-outer-joins the marketplace identifier source
// against the primary card bulk on (scryfallId, side), so cards that exist
// only on the marketplace side are retained with nulled card fields.
func buildIdentifiersLookup(cache *sourcecache.Cache) frame.Frame {
	bulkByKey := map[string]frame.Row{}
	for _, r := range cache.Scan(sourcecache.PrimaryCardBulk).Collect() {
		bulkByKey[identKey(r)] = r
	}

	marketRows := cache.Scan(sourcecache.MarketplaceIdentifiers).Collect()
	seen := map[string]bool{}
	var out []frame.Row
	for _, m := range marketRows {
		key := identKey(m)
		seen[key] = true
		row := frame.Row{
			"scryfallId":               m["scryfallId"],
			"side":                     m["side"],
			"cachedUuid":               firstNonNil(m["cachedUuid"], nilIfMissing(bulkByKey, key, "uuid")),
			"cardKingdomId":            m["cardKingdomId"],
			"cardKingdomEtchedId":      m["cardKingdomEtchedId"],
			"cardKingdomFoilId":        m["cardKingdomFoilId"],
			"orientation":              m["orientation"],
			"scryfallIllustrationId":   m["scryfallIllustrationId"],
			"mtgoFoilId":               m["mtgoFoilId"],
			"tcgplayerEtchedProductId": m["tcgplayerEtchedProductId"],
			"cardsphereId":             m["cardsphereId"],
			"mcmId":                    m["mcmId"],
			"multiverseBridgeId":       m["multiverseBridgeId"],
		}
		out = append(out, row)
	}
	for key, b := range bulkByKey {
		if seen[key] {
			continue
		}
		out = append(out, frame.Row{
			"scryfallId": b["scryfallId"],
			"side":       b["side"],
			"cachedUuid": b["uuid"],
		})
	}
	return frame.FromRows(out)
}

func nilIfMissing(m map[string]frame.Row, key, field string) any {
	if r, ok := m[key]; ok {
		return r[field]
	}
	return nil
}

func firstNonNil(vals ...any) any {
	for _, v := range vals {
		if v != nil {
			return v
		}
	}
	return nil
}

func identKey(r frame.Row) string {
	scryfallID, _ := r["scryfallId"].(string)
	side, _ := r["side"].(string)
	return scryfallID + "\x1f" + side
}

// buildOracleLookup aggregates edhrecSaltiness/edhrecRank/rulings/printings
// per oracleId from the card bulk and the commander-saltiness and rulings
// sources.
func buildOracleLookup(cache *sourcecache.Cache) frame.Frame {
	printings := map[string]map[string]bool{}
	for _, r := range cache.Scan(sourcecache.PrimaryCardBulk).Collect() {
		oracleID, _ := r["oracleId"].(string)
		setCode, _ := r["setCode"].(string)
		if oracleID == "" {
			continue
		}
		if printings[oracleID] == nil {
			printings[oracleID] = map[string]bool{}
		}
		printings[oracleID][setCode] = true
	}

	saltiness := map[string]float64{}
	rank := map[string]int{}
	for _, r := range cache.Scan(sourcecache.CommanderSaltiness).Collect() {
		oracleID, _ := r["oracleId"].(string)
		s, _ := r["saltiness"].(float64)
		saltiness[oracleID] = s
		switch rk := r["edhrecRank"].(type) {
		case int:
			rank[oracleID] = rk
		case float64:
			rank[oracleID] = int(rk)
		}
	}

	rulings := map[string][]frame.Row{}
	for _, r := range cache.Scan(sourcecache.Rulings).Collect() {
		oracleID, _ := r["oracleId"].(string)
		rulings[oracleID] = append(rulings[oracleID], r)
	}

	var out []frame.Row
	for oracleID, setSet := range printings {
		sets := make([]string, 0, len(setSet))
		for s := range setSet {
			sets = append(sets, s)
		}
		sort.Strings(sets)
		out = append(out, frame.Row{
			"oracleId":        oracleID,
			"edhrecSaltiness": saltiness[oracleID],
			"edhrecRank":      rank[oracleID],
			"rulings":         rulings[oracleID],
			"printings":       sets,
		})
	}
	return frame.FromRows(out)
}

// buildSetAndNumberLookup groups all non-English printings of the same
// physical card (by setCode+collectorNumber) and tags duel-deck sides.
func buildSetAndNumberLookup(cache *sourcecache.Cache) frame.Frame {
	groups := map[string][]frame.Row{}
	for _, r := range cache.Scan(sourcecache.PrimaryCardBulk).Collect() {
		lang, _ := r["language"].(string)
		if lang == "" || lang == "English" {
			continue
		}
		key := setNumberKey(r)
		groups[key] = append(groups[key], r)
	}

	var out []frame.Row
	for key, rows := range groups {
		sort.Slice(rows, func(i, j int) bool {
			li, _ := rows[i]["language"].(string)
			lj, _ := rows[j]["language"].(string)
			return li < lj
		})
		parts := splitSetNumberKey(key)
		var foreign []frame.Row
		for _, r := range rows {
			lang, _ := r["language"].(string)
			foreign = append(foreign, frame.Row{
				"uuid":         mtgutil.ForeignPrintingUUID(parts[0], parts[1], lang).String(),
				"language":     r["language"],
				"name":         r["name"],
				"text":         r["text"],
				"type":         r["type"],
				"multiverseId": r["multiverseId"],
			})
		}
		out = append(out, frame.Row{
			"setCode":         parts[0],
			"collectorNumber": parts[1],
			"foreignData":     foreign,
			"duelDeck":        rows[0]["duelDeck"],
		})
	}
	return frame.FromRows(out)
}

func setNumberKey(r frame.Row) string {
	setCode, _ := r["setCode"].(string)
	number, _ := r["number"].(string)
	return setCode + "\x1f" + number
}

func splitSetNumberKey(key string) [2]string {
	for i := 0; i < len(key); i++ {
		if key[i] == '\x1f' {
			return [2]string{key[:i], key[i+1:]}
		}
	}
	return [2]string{key, ""}
}

// buildByNameLookup keys by card name to provide meld cardParts and
// commander/oathbreaker leadership-skill attributes. Real meld cards arrive
// from Scryfall as three standalone top-level rows (no embedded faces
// list), so the meld side each part plays -- "a" for the two components,
// "b" for the assembled result -- is derived here, from MeldTriplets'
// partA/partB/result columns, rather than from any per-row layout field.
func buildByNameLookup(cache *sourcecache.Cache) frame.Frame {
	melds := map[string][]string{}
	meldSide := map[string]string{}
	for _, r := range cache.Scan(sourcecache.MeldTriplets).Collect() {
		result, _ := r["result"].(string)
		partA, _ := r["partA"].(string)
		partB, _ := r["partB"].(string)
		melds[partA] = []string{partB, result}
		melds[partB] = []string{partA, result}
		melds[result] = []string{partA, partB}
		meldSide[partA] = "a"
		meldSide[partB] = "a"
		meldSide[result] = "b"
	}

	var out []frame.Row
	for name, parts := range melds {
		sort.Strings(parts)
		out = append(out, frame.Row{"name": name, "cardParts": parts, "meldSide": meldSide[name]})
	}
	return frame.FromRows(out)
}

// invertIDBridge builds a native-provider-ID -> []UUID inverted index from
// the marketplace identifier rows joined against bulk's uuid column. A
// native ID that resolves to multiple UUIDs (a card reprinted under the
// same product ID) keeps every UUID, matching the price engine's
// duplicate-on-ambiguous-ID rule.
func invertIDBridge(ids []frame.Row, field string, bulk []frame.Row) map[string][]string {
	uuidByKey := map[string]string{}
	for _, b := range bulk {
		uuidByKey[identKey(b)] = toString(b["uuid"])
	}

	out := map[string][]string{}
	for _, r := range ids {
		nativeID := toString(r[field])
		if nativeID == "" {
			continue
		}
		key := identKey(r)
		uuid := uuidByKey[key]
		if uuid == "" {
			continue
		}
		out[nativeID] = append(out[nativeID], uuid)
	}
	for k := range out {
		sort.Strings(out[k])
	}
	return out
}

func toString(v any) string {
	s, _ := v.(string)
	return s
}
