package mtgutil

import "testing"

func TestManaValue(t *testing.T) {
	cases := []struct {
		cost string
		want float64
	}{
		{"", 0},
		{"{2}{W}{W}", 4},
		{"{X}{R}", 1},
		{"{HW}", 0.5},
		{"{2/W}", 2},
		{"{G/W}", 1},
		{"{B}{B}{B}{B}{B}", 5},
	}
	for _, c := range cases {
		if got := ManaValue(c.cost); got != c.want {
			t.Errorf("ManaValue(%q) = %v, want %v", c.cost, got, c.want)
		}
	}
}
