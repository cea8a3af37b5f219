// Package referral implements component F: the hash-keyed purchase-URL
// redirect map a front-end redirector serves at /links/{hash}. Stage 9 of
// the pipeline already derived each face's per-provider referral hash
// (mtgutil.ReferralHash) into PurchaseURLs; this package inverts that onto
// the provider's actual marketplace URL so the redirector has somewhere to
// send the visitor.
package referral

import (
	"fmt"

	"github.com/mtgjson/mtgjson/models"
)

// LinkMap is the flat hash -> destination URL map spec.md §4.F describes:
// served by a front-end redirector at /links/{16-hex-hash}.
type LinkMap map[string]string

// destinationURL builds the real marketplace URL a referral hash should
// redirect to, one template per provider, grounded on the provider-native
// identifier carried in the face's Identifiers bundle.
func destinationURL(provider string, ids models.Identifiers) (string, bool) {
	switch provider {
	case "cardKingdom":
		if ids.CardKingdomID == "" {
			return "", false
		}
		return fmt.Sprintf("https://www.cardkingdom.com/catalog/item/%s", ids.CardKingdomID), true
	case "tcgplayer":
		if ids.TcgplayerProductID == "" {
			return "", false
		}
		return fmt.Sprintf("https://www.tcgplayer.com/product/%s", ids.TcgplayerProductID), true
	case "cardmarket":
		if ids.McmID == "" {
			return "", false
		}
		return fmt.Sprintf("https://www.cardmarket.com/en/Magic/Products/Singles/%s", ids.McmID), true
	default:
		return "", false
	}
}

// BuildLinkMap walks every card and token face across every set and
// collects one hash -> destination URL entry per provider the face has a
// non-empty referral hash for. A face with no purchase URLs contributes
// nothing, matching the "absent, not {}" edge case in spec.md §8.
func BuildLinkMap(sets map[string]models.Set) LinkMap {
	links := LinkMap{}
	for _, set := range sets {
		collectFaceLinks(links, set.Cards)
		collectFaceLinks(links, set.Tokens)
		for _, sp := range set.SealedProducts {
			addLink(links, sp.PurchaseURLs.CardKingdom, "cardKingdom", sp.Identifiers)
			addLink(links, sp.PurchaseURLs.Tcgplayer, "tcgplayer", sp.Identifiers)
			addLink(links, sp.PurchaseURLs.Cardmarket, "cardmarket", sp.Identifiers)
		}
	}
	return links
}

func collectFaceLinks(links LinkMap, faces []models.CardFace) {
	for _, c := range faces {
		addLink(links, c.PurchaseURLs.CardKingdom, "cardKingdom", c.Identifiers)
		addLink(links, c.PurchaseURLs.Tcgplayer, "tcgplayer", c.Identifiers)
		addLink(links, c.PurchaseURLs.Cardmarket, "cardmarket", c.Identifiers)
	}
}

func addLink(links LinkMap, hash, provider string, ids models.Identifiers) {
	if hash == "" {
		return
	}
	url, ok := destinationURL(provider, ids)
	if !ok {
		return
	}
	links[hash] = url
}
