package main

import (
	"github.com/mtgjson/mtgjson/assembly"
	"github.com/mtgjson/mtgjson/internal/frame"
	"github.com/mtgjson/mtgjson/models"
	"github.com/mtgjson/mtgjson/sourcecache"
)

// buildSetMeta assembles assembly.SetMeta for every set code the source
// cache's set-metadata table knows about, folding in sealed products, decks,
// and booster configurations from their own source-cache tables.
func buildSetMeta(cache *sourcecache.Cache) map[string]assembly.SetMeta {
	meta := map[string]assembly.SetMeta{}
	for _, r := range cache.Scan(sourcecache.SetMetadata).Collect() {
		code := mrString(r, "code")
		if code == "" {
			continue
		}
		meta[code] = assembly.SetMeta{
			Code:              code,
			Name:              mrString(r, "name"),
			Type:              mrString(r, "type"),
			Block:             mrString(r, "block"),
			ReleaseDate:       mrString(r, "releaseDate"),
			BaseSetSize:       mrInt(r, "baseSetSize"),
			TotalSetSize:      mrInt(r, "totalSetSize"),
			IsFoilOnly:        mrBool(r, "isFoilOnly"),
			IsNonFoilOnly:     mrBool(r, "isNonFoilOnly"),
			IsOnlineOnly:      mrBool(r, "isOnlineOnly"),
			IsPartialPreview:  mrBool(r, "isPartialPreview"),
			IsForeignOnly:     mrBool(r, "isForeignOnly"),
			HasContentWarning: mrBool(r, "hasContentWarning"),
			KeyruneCode:       mrString(r, "keyruneCode"),
			ParentCode:        mrString(r, "parentCode"),
			TokenSetCode:      mrString(r, "tokenSetCode"),
		}
	}

	attachSealedProducts(cache, meta)
	attachDecks(cache, meta)
	attachBoosterConfigs(cache, meta)
	return meta
}

func attachSealedProducts(cache *sourcecache.Cache, meta map[string]assembly.SetMeta) {
	contentsByProduct := map[string]map[string]any{}
	for _, r := range cache.Scan(sourcecache.SealedProductContents).Collect() {
		id := mrString(r, "productUuid")
		if id == "" {
			continue
		}
		contents, _ := r["contents"].(map[string]any)
		contentsByProduct[id] = contents
	}

	for _, r := range cache.Scan(sourcecache.SealedProducts).Collect() {
		code := mrString(r, "setCode")
		if code == "" {
			continue
		}
		sp := models.SealedProduct{
			UUID:     mrString(r, "uuid"),
			Name:     mrString(r, "name"),
			Category: mrString(r, "category"),
			Subtype:  mrString(r, "subtype"),
			Contents: contentsByProduct[mrString(r, "uuid")],
			Identifiers: models.Identifiers{
				TcgplayerProductID: mrString(r, "tcgplayerProductId"),
				CardKingdomID:      mrString(r, "cardKingdomId"),
			},
		}
		m := meta[code]
		m.Code = code
		m.SealedProducts = append(m.SealedProducts, sp)
		meta[code] = m
	}
}

func attachDecks(cache *sourcecache.Cache, meta map[string]assembly.SetMeta) {
	for _, r := range cache.Scan(sourcecache.DeckLists).Collect() {
		code := mrString(r, "setCode")
		if code == "" {
			continue
		}
		d := models.Deck{
			Name:        mrString(r, "name"),
			Code:        mrString(r, "code"),
			ReleaseDate: mrString(r, "releaseDate"),
			Type:        mrString(r, "type"),
			Cards:       deckCards(r, "cards"),
			Commander:   deckCards(r, "commander"),
			Sideboard:   deckCards(r, "sideboard"),
		}
		m := meta[code]
		m.Code = code
		m.Decks = append(m.Decks, d)
		meta[code] = m
	}
}

func deckCards(r frame.Row, key string) []models.DeckCard {
	raw, _ := r[key].([]any)
	out := make([]models.DeckCard, 0, len(raw))
	for _, v := range raw {
		entry, ok := v.(map[string]any)
		if !ok {
			continue
		}
		uuid, _ := entry["uuid"].(string)
		count, _ := entry["count"].(float64)
		out = append(out, models.DeckCard{UUID: uuid, Count: int(count)})
	}
	return out
}

func attachBoosterConfigs(cache *sourcecache.Cache, meta map[string]assembly.SetMeta) {
	for _, r := range cache.Scan(sourcecache.BoosterConfigs).Collect() {
		code := mrString(r, "setCode")
		boosterName := mrString(r, "boosterName")
		if code == "" || boosterName == "" {
			continue
		}
		cfg := models.BoosterConfig{
			Sheets:              boosterSheets(r),
			Boosters:            boosterVariants(r),
			BoostersTotalWeight: mrInt(r, "boostersTotalWeight"),
		}
		m := meta[code]
		m.Code = code
		if m.Booster == nil {
			m.Booster = map[string]models.BoosterConfig{}
		}
		m.Booster[boosterName] = cfg
		meta[code] = m
	}
}

func boosterSheets(r frame.Row) map[string]models.BoosterSheet {
	raw, _ := r["sheets"].(map[string]any)
	out := make(map[string]models.BoosterSheet, len(raw))
	for name, v := range raw {
		sheet, ok := v.(map[string]any)
		if !ok {
			continue
		}
		cards := map[string]int{}
		if rawCards, ok := sheet["cards"].(map[string]any); ok {
			for uuid, weight := range rawCards {
				if w, ok := weight.(float64); ok {
					cards[uuid] = int(w)
				}
			}
		}
		totalWeight, _ := sheet["totalWeight"].(float64)
		foil, _ := sheet["foil"].(bool)
		out[name] = models.BoosterSheet{Cards: cards, TotalWeight: int(totalWeight), Foil: foil}
	}
	return out
}

func boosterVariants(r frame.Row) []models.BoosterVariant {
	raw, _ := r["boosters"].([]any)
	out := make([]models.BoosterVariant, 0, len(raw))
	for _, v := range raw {
		entry, ok := v.(map[string]any)
		if !ok {
			continue
		}
		contents := map[string]int{}
		if rawContents, ok := entry["contents"].(map[string]any); ok {
			for sheet, count := range rawContents {
				if c, ok := count.(float64); ok {
					contents[sheet] = int(c)
				}
			}
		}
		weight, _ := entry["weight"].(float64)
		out = append(out, models.BoosterVariant{Contents: contents, Weight: int(weight)})
	}
	return out
}

func mrString(r frame.Row, key string) string {
	s, _ := r[key].(string)
	return s
}

func mrInt(r frame.Row, key string) int {
	switch v := r[key].(type) {
	case int:
		return v
	case int64:
		return int(v)
	case float64:
		return int(v)
	default:
		return 0
	}
}

func mrBool(r frame.Row, key string) bool {
	b, _ := r[key].(bool)
	return b
}
