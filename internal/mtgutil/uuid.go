// Package mtgutil holds the small deterministic algorithms shared by every
// stage of the build: UUID derivation, mana value parsing, color sorting,
// finish ordering, ASCII folding and referral-link hashing.
package mtgutil

import (
	"crypto/sha1"
	"strings"

	"github.com/google/uuid"
)

// cardNamespace is the fixed namespace UUID the v5 card identifiers are
// derived against. It has no meaning beyond "this build's card namespace"
// and must never change between runs, or every card UUID shifts.
var cardNamespace = uuid.MustParse("a24e20c2-bf4e-4baa-b564-6a6d20e86851")

// legacyNamespace is the second fixed namespace, the one TokenUUID derives
// its v5 identifiers against; keeping it apart from cardNamespace keeps
// those identifiers distinct from card UUIDs.
var legacyNamespace = uuid.MustParse("d3a4a173-2de9-4574-b36a-5bcda7c56f71")

// CardUUID derives the deterministic v5 card identifier from a face's
// scryfallId, side letter, name and faceName. All four fields participate so
// that two faces of the same multi-face card never collide.
func CardUUID(scryfallID, side, name, faceName string) uuid.UUID {
	key := strings.Join([]string{scryfallID, side, name, faceName}, "\x1f")
	return uuid.NewSHA1(cardNamespace, []byte(key))
}

// TokenUUID derives a v5 identifier in legacyNamespace from the same face
// key as CardUUID, prefixed with "token". Stage 6 stamps it on every face as
// the secondary trackingUuid; a face's own uuid comes from CardUUID or a
// cached UUID.
func TokenUUID(scryfallID, side, name, faceName string) uuid.UUID {
	key := strings.Join([]string{"token", scryfallID, side, name, faceName}, "\x1f")
	return uuid.NewSHA1(legacyNamespace, []byte(key))
}

// SealedProductUUID derives a deterministic identifier for a sealed product
// entry, keyed by its source catalog identifier and name.
func SealedProductUUID(sourceID, name string) uuid.UUID {
	key := strings.Join([]string{"sealed", sourceID, name}, "\x1f")
	return uuid.NewSHA1(cardNamespace, []byte(key))
}

// ForeignPrintingUUID derives a deterministic identifier for one
// non-English translation of a printing, keyed by the set, collector
// number and language it was translated into.
func ForeignPrintingUUID(setCode, number, language string) uuid.UUID {
	key := strings.Join([]string{"foreign", setCode, number, language}, "\x1f")
	return uuid.NewSHA1(cardNamespace, []byte(key))
}

// sha1Digest is exposed for tests that want to check the raw namespace+name
// hash independently of the google/uuid version-bit handling.
func sha1Digest(namespace uuid.UUID, name string) [20]byte {
	h := sha1.New()
	h.Write(namespace[:])
	h.Write([]byte(name))
	var out [20]byte
	copy(out[:], h.Sum(nil))
	return out
}
