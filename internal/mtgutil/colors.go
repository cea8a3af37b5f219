package mtgutil

import "strings"

// wubrgOrder fixes the canonical White-Blue-Black-Red-Green sort position
// for each color letter.
var wubrgOrder = map[string]int{"W": 0, "U": 1, "B": 2, "R": 3, "G": 4}

// ExtractColors pulls the set of colors present in a mana cost string,
// ignoring generic/colorless pips and X/Y/Z, and returns them sorted WUBRG.
func ExtractColors(manaCost string) []string {
	seen := map[string]bool{}
	for _, m := range manaSymbolRE.FindAllStringSubmatch(manaCost, -1) {
		for _, c := range colorsInSymbol(m[1]) {
			seen[c] = true
		}
	}
	out := make([]string, 0, len(seen))
	for c := range seen {
		out = append(out, c)
	}
	SortWUBRG(out)
	return out
}

func colorsInSymbol(sym string) []string {
	sym = strings.ToUpper(sym)
	if sym == "X" || sym == "Y" || sym == "Z" || sym == "C" || sym == "S" {
		return nil
	}
	sym = strings.TrimPrefix(sym, "H")
	parts := strings.Split(sym, "/")
	var out []string
	for _, p := range parts {
		if _, ok := wubrgOrder[p]; ok {
			out = append(out, p)
		}
	}
	return out
}

// SortWUBRG sorts a slice of single-letter color codes in White-Blue-Black-
// Red-Green order in place. Unrecognized entries sort after all real colors,
// in their original relative order.
func SortWUBRG(colors []string) {
	n := len(colors)
	rank := func(c string) int {
		if r, ok := wubrgOrder[c]; ok {
			return r
		}
		return len(wubrgOrder)
	}
	for i := 1; i < n; i++ {
		for j := i; j > 0 && rank(colors[j-1]) > rank(colors[j]); j-- {
			colors[j-1], colors[j] = colors[j], colors[j-1]
		}
	}
}
