package mtgutil

// finishOrder gives each finish its sort rank. Unknown finishes sort last.
var finishOrder = map[string]int{
	"nonfoil": 0,
	"foil":    1,
	"etched":  2,
	"signed":  3,
}

// SortFinishes sorts a slice of finish names in nonfoil, foil, etched,
// signed order in place, with any unrecognized finish pushed to the end.
func SortFinishes(finishes []string) {
	rank := func(f string) int {
		if r, ok := finishOrder[f]; ok {
			return r
		}
		return 99
	}
	n := len(finishes)
	for i := 1; i < n; i++ {
		for j := i; j > 0 && rank(finishes[j-1]) > rank(finishes[j]); j-- {
			finishes[j-1], finishes[j] = finishes[j], finishes[j-1]
		}
	}
}
