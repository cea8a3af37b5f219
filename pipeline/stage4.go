package pipeline

import (
	"github.com/mtgjson/mtgjson/internal/frame"
	"github.com/mtgjson/mtgjson/models"
)

// stage4Joins joins the identifiers, oracle, set+number, by-name, and
// marketplace-identifier lookups onto each face, then augments availability
// using ID presence (e.g. a populated mtgoId implies the "mtgo" channel).
func (p *Pipeline) stage4Joins(f frame.Frame) frame.Frame {
	identByKey := indexFrame(p.lookup.Identifiers, func(r frame.Row) string {
		return rowString(r, "scryfallId") + "\x1f" + rowString(r, "side")
	})
	oracleByKey := indexFrame(p.lookup.Oracle, func(r frame.Row) string {
		return rowString(r, "oracleId")
	})
	setNumByKey := indexFrame(p.lookup.SetAndNumber, func(r frame.Row) string {
		return rowString(r, "setCode") + "\x1f" + rowString(r, "collectorNumber")
	})
	byName := indexFrame(p.lookup.ByName, func(r frame.Row) string {
		return rowString(r, "name")
	})

	return f.Map(func(r frame.Row) frame.Row {
		identKey := rowString(r, "scryfallId") + "\x1f" + rowString(r, "side")
		if ident, ok := identByKey[identKey]; ok {
			r["cachedUuid"] = ident["cachedUuid"]
			r["cardKingdomId"] = ident["cardKingdomId"]
			r["cardKingdomEtchedId"] = ident["cardKingdomEtchedId"]
			r["cardKingdomFoilId"] = ident["cardKingdomFoilId"]
			r["scryfallIllustrationId"] = ident["scryfallIllustrationId"]
			r["mtgoFoilId"] = ident["mtgoFoilId"]
			r["tcgplayerEtchedProductId"] = ident["tcgplayerEtchedProductId"]
			r["cardsphereId"] = ident["cardsphereId"]
			r["mcmId"] = ident["mcmId"]
			r["multiverseBridgeId"] = ident["multiverseBridgeId"]
		}

		if oracle, ok := oracleByKey[rowString(r, "oracleId")]; ok {
			r["edhrecSaltiness"] = oracle["edhrecSaltiness"]
			r["edhrecRank"] = oracle["edhrecRank"]
			r["rulings"] = oracle["rulings"]
			r["printings"] = oracle["printings"]
		}

		numKey := rowString(r, "setCode") + "\x1f" + rowString(r, "number")
		if sn, ok := setNumByKey[numKey]; ok {
			r["foreignData"] = sn["foreignData"]
			r["duelDeck"] = sn["duelDeck"]
		}

		if byn, ok := byName[rowString(r, "name")]; ok {
			r["cardParts"] = byn["cardParts"]
			if ms := rowString(byn, "meldSide"); ms != "" {
				r["side"] = ms
				r["meldSide"] = ms
			}
		}

		if avail, ok := r["availability"].(models.Availability); ok {
			if rowString(r, "mtgoId") != "" {
				avail.Mtgo = true
			}
			if rowString(r, "mtgArenaId") != "" {
				avail.Arena = true
			}
			r["availability"] = avail
		}

		return r
	})
}

func indexFrame(f frame.Frame, key func(frame.Row) string) map[string]frame.Row {
	out := map[string]frame.Row{}
	for _, r := range f.Collect() {
		out[key(r)] = r
	}
	return out
}
