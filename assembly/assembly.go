// Package assembly implements component D: it takes the card pipeline's
// per-set partitioned faces and a set-metadata source, composes the
// in-memory set objects the wire formats all share, and writes every output
// format (combined/per-set JSON, atomic cards, set list, relational,
// columnar) from that one assembled shape.
package assembly

import (
	"sort"

	"github.com/mtgjson/mtgjson/models"
)

// Meta is the {meta:{date,version}} header every output file carries before
// its data payload, in that key order.
type Meta struct {
	Date    string `json:"date"`
	Version string `json:"version"`
}

// SetMeta is the non-card metadata the source cache's set-metadata source
// carries for one set code: release info, sizing, flags.
type SetMeta struct {
	Code             string
	Name             string
	Type             string
	Block            string
	ReleaseDate      string
	BaseSetSize      int
	TotalSetSize     int
	IsFoilOnly       bool
	IsNonFoilOnly    bool
	IsOnlineOnly     bool
	IsPartialPreview bool
	IsForeignOnly    bool
	HasContentWarning bool
	KeyruneCode      string
	ParentCode       string
	TokenSetCode     string
	SealedProducts   []models.SealedProduct
	Decks            []models.Deck
	Booster          map[string]models.BoosterConfig
}

// BuildSets merges the pipeline's per-set card/token faces with set metadata
// into the full models.Set objects every writer below operates on. A set
// present in cardsBySet/tokensBySet but absent from meta still gets an
// entry (empty metadata), since the pipeline may compile a set the source
// cache's metadata table hasn't caught up with yet.
func BuildSets(cardsBySet, tokensBySet map[string][]models.CardFace, meta map[string]SetMeta) map[string]models.Set {
	codes := map[string]bool{}
	for code := range cardsBySet {
		codes[code] = true
	}
	for code := range tokensBySet {
		codes[code] = true
	}
	for code := range meta {
		codes[code] = true
	}

	out := make(map[string]models.Set, len(codes))
	for code := range codes {
		m := meta[code]
		out[code] = models.Set{
			Code:              code,
			Name:              m.Name,
			Type:              m.Type,
			Block:             m.Block,
			ReleaseDate:       m.ReleaseDate,
			BaseSetSize:       m.BaseSetSize,
			TotalSetSize:      m.TotalSetSize,
			IsFoilOnly:        m.IsFoilOnly,
			IsNonFoilOnly:     m.IsNonFoilOnly,
			IsOnlineOnly:      m.IsOnlineOnly,
			IsPartialPreview:  m.IsPartialPreview,
			IsForeignOnly:     m.IsForeignOnly,
			HasContentWarning: m.HasContentWarning,
			KeyruneCode:       m.KeyruneCode,
			ParentCode:        m.ParentCode,
			TokenSetCode:      m.TokenSetCode,
			Cards:             cardsBySet[code],
			Tokens:            tokensBySet[code],
			SealedProducts:    m.SealedProducts,
			Decks:             m.Decks,
			Booster:           m.Booster,
		}
	}
	return out
}

// sortedSetCodes returns every set code in lexicographic order, the
// ordering guarantee spec.md §5 requires for the combined JSON writer.
func sortedSetCodes(sets map[string]models.Set) []string {
	codes := make([]string, 0, len(sets))
	for code := range sets {
		codes = append(codes, code)
	}
	sort.Strings(codes)
	return codes
}
