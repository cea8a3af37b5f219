package mtgutil

import (
	"regexp"
	"strconv"
	"strings"
)

var manaSymbolRE = regexp.MustCompile(`\{([^{}]+)\}`)

// ManaValue computes the mana value (converted mana cost) of a mana cost
// string such as "{2}{W}{W}" or "{X}{R/G}". Symbols are summed per the
// standard rules: generic numbers add their value; X/Y/Z contribute 0; half
// mana symbols (prefixed H) contribute 0.5; a hybrid pairing a number with a
// color ("{2/W}") contributes the number; any other hybrid or single color
// or colorless pip contributes 1. An empty or unparseable cost is 0.
func ManaValue(manaCost string) float64 {
	var total float64
	for _, m := range manaSymbolRE.FindAllStringSubmatch(manaCost, -1) {
		total += symbolValue(m[1])
	}
	return total
}

func symbolValue(sym string) float64 {
	switch strings.ToUpper(sym) {
	case "X", "Y", "Z":
		return 0
	}
	if strings.HasPrefix(strings.ToUpper(sym), "H") {
		return 0.5
	}
	if strings.Contains(sym, "/") {
		parts := strings.SplitN(sym, "/", 2)
		if n, err := strconv.Atoi(parts[0]); err == nil {
			return float64(n)
		}
		if n, err := strconv.Atoi(parts[1]); err == nil {
			return float64(n)
		}
		return 1
	}
	if n, err := strconv.Atoi(sym); err == nil {
		return float64(n)
	}
	return 1
}
