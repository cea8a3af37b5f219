package referral

import (
	"encoding/json"
	"io"
)

// Meta is the {meta:{date,version}} header every MTGJSON output file
// carries, matching assembly.Meta's shape.
type Meta struct {
	Date    string `json:"date"`
	Version string `json:"version"`
}

// WriteLinksJSON writes the flat hash -> destination URL map as
// {"meta":...,"data":{...}}, consistent with every other output writer's
// envelope. The map is small relative to AllPrintings/AllPrices (one entry
// per provider-linked face, not per printing x date), so a single
// json.Marshal is fine -- no streaming needed.
func WriteLinksJSON(w io.Writer, links LinkMap, meta Meta) error {
	enc := json.NewEncoder(w)
	return enc.Encode(struct {
		Meta Meta    `json:"meta"`
		Data LinkMap `json:"data"`
	}{Meta: meta, Data: links})
}
