package mtgutil

import (
	"crypto/sha256"
	"encoding/hex"
)

// ReferralHash derives the 16-character hex key used in a purchase-URL
// redirect link: https://mtgjson.com/links/<hash>. The seed is the
// concatenation of the provider's salt, an identifier specific to that
// provider's catalog, the card's UUID, and any extra disambiguating
// component (e.g. a finish or foreign-set variant tag).
func ReferralHash(providerSalt, identifier, cardUUID string, extra ...string) string {
	h := sha256.New()
	h.Write([]byte(providerSalt))
	h.Write([]byte(identifier))
	h.Write([]byte(cardUUID))
	for _, e := range extra {
		h.Write([]byte(e))
	}
	sum := h.Sum(nil)
	return hex.EncodeToString(sum)[:16]
}
