package pipeline

import "strings"

// splitTypeLine splits a type line ("Legendary Creature — Human Wizard")
// into its left (supertype+type) and right (subtype) fields.
func splitTypeLine(typeLine string) (left, right []string) {
	parts := strings.SplitN(typeLine, "—", 2)
	left = splitFields(parts[0])
	if len(parts) == 2 {
		right = splitFields(parts[1])
	}
	return left, right
}

func splitFields(s string) []string {
	fields := strings.Fields(s)
	out := make([]string, 0, len(fields))
	for _, f := range fields {
		if f != "" {
			out = append(out, f)
		}
	}
	return out
}
