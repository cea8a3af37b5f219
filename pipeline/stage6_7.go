package pipeline

import (
	"github.com/google/uuid"

	"github.com/mtgjson/mtgjson/internal/frame"
	"github.com/mtgjson/mtgjson/internal/mtgutil"
	"github.com/mtgjson/mtgjson/models"
	"github.com/mtgjson/mtgjson/sourcecache"
)

// stage6AssembleAndAssignUUIDs packs per-face identifiers into a nested
// struct and assigns the face's UUID: a cached UUID if one was carried
// through the identifiers lookup, else the deterministic v5 UUID over the
// canonical face key. A secondary tracking UUID (mtgutil.TokenUUID over the
// same face key, a v5 UUID in a separate namespace) is also stamped, used
// only for identifier-tracking diagnostics, never for output linkage.
func (p *Pipeline) stage6AssembleAndAssignUUIDs(f frame.Frame) frame.Frame {
	return f.Map(func(r frame.Row) frame.Row {
		r["identifiers"] = models.Identifiers{
			ScryfallID:          rowString(r, "scryfallId"),
			ScryfallOracleID:    rowString(r, "oracleId"),
			ScryfallIllusID:     rowString(r, "scryfallIllustrationId"),
			MultiverseID:        rowString(r, "multiverseId"),
			MtgoID:              rowString(r, "mtgoId"),
			MtgoFoilID:          rowString(r, "mtgoFoilId"),
			MtgArenaID:          rowString(r, "mtgArenaId"),
			TcgplayerProductID:  rowString(r, "tcgplayerProductId"),
			TcgplayerEtchedID:   rowString(r, "tcgplayerEtchedProductId"),
			CardKingdomID:       rowString(r, "cardKingdomId"),
			CardKingdomFoilID:   rowString(r, "cardKingdomFoilId"),
			CardKingdomEtchedID: rowString(r, "cardKingdomEtchedId"),
			CardsphereID:        rowString(r, "cardsphereId"),
			McmID:               rowString(r, "mcmId"),
			MultiverseBridgeID:  rowString(r, "multiverseBridgeId"),
		}

		cached := rowString(r, "cachedUuid")
		var id uuid.UUID
		if cached != "" {
			if parsed, err := uuid.Parse(cached); err == nil {
				id = parsed
			}
		}
		if id == uuid.Nil {
			id = mtgutil.CardUUID(rowString(r, "scryfallId"), rowString(r, "side"), rowString(r, "name"), rowString(r, "faceName"))
		}
		r["uuid"] = id.String()
		r["trackingUuid"] = mtgutil.TokenUUID(rowString(r, "scryfallId"), rowString(r, "side"), rowString(r, "name"), rowString(r, "faceName")).String()

		return r
	})
}

// stage7Derived joins the official database page ID and computes
// originalReleaseDate for promos printed before or after their set's own
// release date, both of which depend only on already-resolved fields from
// stage 6.
func (p *Pipeline) stage7Derived(f frame.Frame) frame.Frame {
	pageIDs := indexFrame(p.cache.Scan(sourcecache.OfficialDBPageIDs), func(r frame.Row) string {
		return rowString(r, "scryfallId")
	})
	setsByCode := indexFrame(p.cache.Scan(sourcecache.SetMetadata), func(r frame.Row) string {
		return rowString(r, "code")
	})

	return f.Map(func(r frame.Row) frame.Row {
		if pg, ok := pageIDs[rowString(r, "scryfallId")]; ok {
			r["officialDbPageId"] = pg["pageId"]
		}
		if set, ok := setsByCode[rowString(r, "setCode")]; ok {
			cardReleased := rowString(r, "releasedAt")
			setReleased := rowString(set, "releaseDate")
			if cardReleased != "" && setReleased != "" && cardReleased != setReleased {
				r["originalReleaseDate"] = cardReleased
			}
		}
		return r
	})
}
