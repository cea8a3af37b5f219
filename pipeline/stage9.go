package pipeline

import (
	"sort"
	"strings"

	"github.com/mtgjson/mtgjson/internal/errs"
	"github.com/mtgjson/mtgjson/internal/frame"
	"github.com/mtgjson/mtgjson/internal/mtgutil"
	"github.com/mtgjson/mtgjson/lookups"
	"github.com/mtgjson/mtgjson/models"
	"github.com/mtgjson/mtgjson/sourcecache"
)

// stage9Relationships computes the relationships that require a self-join
// across the full face set: otherFaceIds, tokenIds, isFunny, the
// purchase-URLs struct and the foil/non-foil version links. It does not
// compute isTimeshifted or carry saltiness onto tokens; cardParts comes
// from the stage 4 by-name join.
func (p *Pipeline) stage9Relationships(f frame.Frame) frame.Frame {
	rows := f.Collect()

	bySourceID := map[string][]int{}
	for i, r := range rows {
		bySourceID[rowString(r, "id")] = append(bySourceID[rowString(r, "id")], i)
	}

	expectedFaces := map[string]int{}
	for _, r := range rows {
		sourceID := rowString(r, "id")
		if n := rowInt(r, "expectedFaceCount"); n > 0 {
			expectedFaces[sourceID] = n
		}
	}

	for sourceID, idxs := range bySourceID {
		if want, ok := expectedFaces[sourceID]; ok && want > len(idxs) {
			for _, i := range idxs {
				p.report.Add("stage9", &errs.RelationshipIncomplete{
					Relationship: "otherFaceIds",
					UUID:         rowString(rows[i], "uuid"),
					Reason:       "source group " + sourceID + " has fewer faces in scope than expected",
				})
			}
		}
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
			rows[i]["otherFaceIds"] = others
		}
	}

	p.assignTokenLinks(rows)
	p.assignIsFunny(rows)
	p.assignPurchaseURLs(rows)
	assignFoilNonfoilVersions(rows)

	return frame.FromRows(rows)
}

// foilNonfoilLink holds the opposite-finish UUID each anchor/linked card
// points to.
type foilNonfoilLink struct {
	foil, nonfoil string
}

// assignFoilNonfoilVersions links foil and non-foil printings that carry
// different Oracle text/art in lookups.FoilNonfoilLinkSets: cards are
// grouped by (setCode, scryfallIllustrationId); the first card seen in a
// group becomes the anchor, and every later card in that group links back
// to it via mtgjsonFoilVersionId/mtgjsonNonFoilVersionId on the Identifiers
// struct, instead of being treated as a bare finish variant of one row.
func assignFoilNonfoilVersions(rows []frame.Row) {
	versionLinks := map[string]*foilNonfoilLink{}
	firstSeen := map[string]string{}

	for _, r := range rows {
		if !lookups.FoilNonfoilLinkSets[rowString(r, "setCode")] {
			continue
		}
		id := rowString(r, "uuid")
		illID := rowString(r, "scryfallIllustrationId")
		if illID == "" {
			continue
		}
		key := rowString(r, "setCode") + "\x1f" + illID
		firstUUID, ok := firstSeen[key]
		if !ok {
			firstSeen[key] = id
			continue
		}
		first := versionLinks[firstUUID]
		if first == nil {
			first = &foilNonfoilLink{}
			versionLinks[firstUUID] = first
		}
		if toSet(rowStrings(r, "finishes"))["nonfoil"] {
			first.nonfoil = id
			versionLinks[id] = &foilNonfoilLink{foil: firstUUID}
		} else {
			first.foil = id
			versionLinks[id] = &foilNonfoilLink{nonfoil: firstUUID}
		}
	}

	for i, r := range rows {
		link, ok := versionLinks[rowString(r, "uuid")]
		if !ok {
			continue
		}
		ident, _ := r["identifiers"].(models.Identifiers)
		ident.MtgjsonFoilVersionID = link.foil
		ident.MtgjsonNonFoilVersionID = link.nonfoil
		rows[i]["identifiers"] = ident
	}
}

// assignTokenLinks sets tokenIds on every face whose text contains the name
// of a token in the token-product mappings: the sorted uuids of the mapping
// rows for every token name found. Only the name is compared; power,
// toughness and colors are not checked, matching is not limited to the
// face's own set, and no saltiness is carried onto the tokens.
func (p *Pipeline) assignTokenLinks(rows []frame.Row) {
	tokens := p.cache.Scan(sourcecache.TokenProductMappings).Collect()
	tokenByNamePTColors := map[string][]frame.Row{}
	for _, t := range tokens {
		key := tokenKey(rowString(t, "name"), rowString(t, "power"), rowString(t, "toughness"), rowStrings(t, "colors"))
		tokenByNamePTColors[key] = append(tokenByNamePTColors[key], t)
	}

	for i, r := range rows {
		text := rowString(r, "text")
		if text == "" {
			continue
		}
		var ids []string
		for key, matches := range tokenByNamePTColors {
			tokenName := strings.SplitN(key, "\x1f", 2)[0]
			if tokenName != "" && strings.Contains(text, tokenName) {
				for _, m := range matches {
					if id := rowString(m, "uuid"); id != "" {
						ids = append(ids, id)
					}
				}
			}
		}
		sort.Strings(ids)
		if len(ids) > 0 {
			rows[i]["tokenIds"] = ids
		}
	}
}

func tokenKey(name, power, toughness string, colors []string) string {
	c := append([]string{}, colors...)
	sort.Strings(c)
	return name + "\x1f" + power + "\x1f" + toughness + "\x1f" + strings.Join(c, ",")
}

// assignIsFunny flags cards from "funny"/un-set sets, additionally gating
// Unfinity specifically on the card's security stamp being "acorn".
func (p *Pipeline) assignIsFunny(rows []frame.Row) {
	for i, r := range rows {
		setCode := rowString(r, "setCode")
		setType := rowString(r, "setType")
		isFunny := setType == "funny"
		if setCode == "UNF" {
			isFunny = rowString(r, "securityStamp") == "acorn"
		}
		rows[i]["isFunny"] = isFunny
	}
}

// assignPurchaseURLs derives the three provider-specific referral hashes
// for every face that carries a matching native identifier.
func (p *Pipeline) assignPurchaseURLs(rows []frame.Row) {
	for i, r := range rows {
		id := rowString(r, "uuid")
		urls := map[string]string{}
		if ck := rowString(r, "cardKingdomId"); ck != "" {
			urls["cardKingdom"] = mtgutil.ReferralHash(p.referralSalts.CardKingdom, ck, id)
		}
		if tcg := rowString(r, "tcgplayerProductId"); tcg != "" {
			urls["tcgplayer"] = mtgutil.ReferralHash(p.referralSalts.Tcgplayer, tcg, id)
		}
		if mcm := rowString(r, "mcmId"); mcm != "" {
			urls["cardmarket"] = mtgutil.ReferralHash(p.referralSalts.Cardmarket, mcm, id)
		}
		rows[i]["purchaseUrls"] = urls
	}
}
