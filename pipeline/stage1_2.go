package pipeline

import (
	"regexp"

	"github.com/mtgjson/mtgjson/internal/frame"
	"github.com/mtgjson/mtgjson/internal/mtgutil"
	"github.com/mtgjson/mtgjson/models"
	"github.com/mtgjson/mtgjson/sourcecache"
)

// stage1Load filters the primary card bulk to the requested sets and
// applies the language policy: keep every English printing, plus
// non-English printings whose oracle has no English printing in the
// requested scope.
func (p *Pipeline) stage1Load(opts Options) frame.Frame {
	setAllow := toSet(opts.SetCodes)

	bulk := p.cache.Scan(sourcecache.PrimaryCardBulk).Collect()
	englishOracles := map[string]bool{}
	for _, r := range bulk {
		if len(setAllow) > 0 && !setAllow[rowString(r, "setCode")] {
			continue
		}
		if rowString(r, "language") == "English" || rowString(r, "language") == "" {
			if oid := rowString(r, "oracleId"); oid != "" {
				englishOracles[oid] = true
			}
		}
	}

	return frame.FromSeq(func(yield func(frame.Row) bool) {
		for _, r := range bulk {
			if len(setAllow) > 0 && !setAllow[rowString(r, "setCode")] {
				continue
			}
			lang := rowString(r, "language")
			if lang != "" && lang != "English" && englishOracles[rowString(r, "oracleId")] {
				continue
			}
			if len(opts.FaceIDAllow) > 0 && !opts.FaceIDAllow[rowString(r, "id")] {
				continue
			}
			if !yield(r) {
				return
			}
		}
	})
}

// stage2FaceTransforms explodes multi-faced rows into one row per face and
// computes every per-face derived field: mana value, colors, finish order,
// ASCII-folded name, legalities struct, availability struct, meld side.
func (p *Pipeline) stage2FaceTransforms(f frame.Frame) frame.Frame {
	return f.FlatMap(func(r frame.Row) []frame.Row {
		faces := explodeFaces(r)
		out := make([]frame.Row, 0, len(faces))
		for _, face := range faces {
			out = append(out, transformFace(face))
		}
		return out
	})
}

// explodeFaces splits a source row with an embedded "faces" list (split,
// adventure, modal DFC, meld, aftermath) into one row per face, carrying
// the parent's shared fields (setCode, number, rarity, ...) onto each face
// and tagging meld sides.
func explodeFaces(r frame.Row) []frame.Row {
	rawFaces, ok := r["faces"].([]frame.Row)
	if !ok || len(rawFaces) == 0 {
		single := cloneRow(r)
		single["id"] = rowString(r, "id")
		single["side"] = rowString(r, "side")
		return []frame.Row{single}
	}

	layout := rowString(r, "layout")
	cardName := rowString(r, "name")
	out := make([]frame.Row, 0, len(rawFaces))
	sideLetters := "abcdef"
	isMeld := layout == "meld"
	for i, rawFace := range rawFaces {
		face := cloneRow(r)
		for k, v := range rawFace {
			face[k] = v
		}
		face["id"] = rowString(r, "id")
		face["name"] = cardName
		face["faceName"] = rowString(rawFace, "name")
		face["expectedFaceCount"] = len(rawFaces)
		if isMeld {
			if i < len(rawFaces)-1 {
				face["side"] = "a"
				face["meldSide"] = "a"
			} else {
				face["side"] = "b"
				face["meldSide"] = "b"
			}
		} else if i < len(sideLetters) {
			face["side"] = string(sideLetters[i])
		}
		out = append(out, face)
	}
	return out
}

// transformFace computes the per-face derived fields named in stage 2:
// basic fields, type line parsing, mana value, color sort, finish order,
// ASCII folding, legalities/availability structs.
func transformFace(face frame.Row) frame.Row {
	manaCost := rowString(face, "manaCost")
	face["manaValue"] = mtgutil.ManaValue(manaCost)
	face["colors"] = mtgutil.ExtractColors(manaCost)

	colorIdentity := rowStrings(face, "colorIdentity")
	if len(colorIdentity) == 0 {
		colorIdentity = append([]string{}, mtgutil.ExtractColors(manaCost)...)
	}
	mtgutil.SortWUBRG(colorIdentity)
	face["colorIdentity"] = colorIdentity

	finishes := rowStrings(face, "finishes")
	if len(finishes) == 0 {
		finishes = []string{"nonfoil"}
	}
	mtgutil.SortFinishes(finishes)
	face["finishes"] = finishes

	face["asciiName"] = mtgutil.ASCIIFold(rowString(face, "name"))

	face["legalities"] = buildLegalities(face)
	face["availability"] = buildAvailability(face)

	face["type"], face["supertypes"], face["types"], face["subtypes"] = parseTypeLine(rowString(face, "type"))

	if isPlaneswalkerType(face) {
		face["text"] = formatPlaneswalkerText(rowString(face, "text"))
	}

	return face
}

func buildLegalities(face frame.Row) models.Legalities {
	raw, _ := face["legalities"].(map[string]any)
	get := func(k string) string {
		if raw == nil {
			return ""
		}
		s, _ := raw[k].(string)
		return s
	}
	return models.Legalities{
		Standard:  get("standard"),
		Pioneer:   get("pioneer"),
		Modern:    get("modern"),
		Legacy:    get("legacy"),
		Vintage:   get("vintage"),
		Commander: get("commander"),
		Pauper:    get("pauper"),
		Historic:  get("historic"),
		Alchemy:   get("alchemy"),
		Brawl:     get("brawl"),
		Oathbreaker: get("oathbreaker"),
	}
}

func buildAvailability(face frame.Row) models.Availability {
	raw, _ := face["availability"].(map[string]any)
	has := func(k string) bool {
		if raw == nil {
			return false
		}
		b, _ := raw[k].(bool)
		return b
	}
	return models.Availability{
		Arena: has("arena"),
		Mtgo:  has("mtgo"),
		Paper: has("paper"),
		Dreamcast: has("dreamcast"),
	}
}

func parseTypeLine(typeLine string) (full string, super, types, sub []string) {
	left, right := splitTypeLine(typeLine)
	super, types = splitSupertypes(left)
	sub = right
	return typeLine, super, types, sub
}

var knownSupertypes = map[string]bool{"Legendary": true, "Basic": true, "Snow": true, "World": true, "Ongoing": true}

func splitSupertypes(left []string) (super, types []string) {
	for _, tok := range left {
		if knownSupertypes[tok] {
			super = append(super, tok)
		} else {
			types = append(types, tok)
		}
	}
	return
}

func isPlaneswalkerType(face frame.Row) bool {
	types, _ := face["types"].([]string)
	for _, t := range types {
		if t == "Planeswalker" {
			return true
		}
	}
	return false
}

// loyaltyCostPrefix matches a bullet-point loyalty ability's leading cost
// ("+1:", "−2:", "0:", "X:") at the start of a line.
var loyaltyCostPrefix = regexp.MustCompile(`(?m)^([+−-]?[\dX]+):`)

// formatPlaneswalkerText brackets the loyalty-cost prefix of every ability
// line ("+1:" becomes "[+1]:"), matching the original catalog's convention
// for planeswalker card text.
func formatPlaneswalkerText(text string) string {
	return loyaltyCostPrefix.ReplaceAllString(text, "[$1]:")
}

func toSet(items []string) map[string]bool {
	if len(items) == 0 {
		return nil
	}
	out := make(map[string]bool, len(items))
	for _, i := range items {
		out[i] = true
	}
	return out
}

func rowString(r frame.Row, key string) string {
	s, _ := r[key].(string)
	return s
}

func rowStrings(r frame.Row, key string) []string {
	s, _ := r[key].([]string)
	return s
}

func rowInt(r frame.Row, key string) int {
	n, _ := r[key].(int)
	return n
}

func cloneRow(r frame.Row) frame.Row {
	out := make(frame.Row, len(r))
	for k, v := range r {
		out[k] = v
	}
	return out
}

