package models

// PriceRow is one price observation at the grain the price engine ingests,
// merges, and stores every price at: (uuid, date, source, provider,
// priceType, finish) is the key (see Key), with at most one row per key per
// build; price and currency are the observed values.
type PriceRow struct {
	UUID      string  `json:"uuid"`
	Date      string  `json:"date"`
	Source    string  `json:"source"`    // "paper" | "mtgo"
	Provider  string  `json:"provider"`
	PriceType string  `json:"priceType"` // "retail" | "buylist"
	Finish    string  `json:"finish"`    // "normal" | "foil" | "etched"
	Price     float64 `json:"price"`
	Currency  string  `json:"currency"`
}

// Key returns the composite primary key identifying this row's tuple,
// used by the merge/dedup step to detect overlapping rows across reruns.
func (r PriceRow) Key() string {
	return r.UUID + "\x1f" + r.Date + "\x1f" + r.Source + "\x1f" + r.Provider + "\x1f" + r.PriceType + "\x1f" + r.Finish
}

// PriceFormats groups one provider's price rows into MTGJSON's nested
// buylist/retail x normal/foil/etched output shape for a single card UUID.
type PriceFormats struct {
	Currency string                        `json:"currency"`
	Retail   map[string]map[string]float64 `json:"retail,omitempty"`
	Buylist  map[string]map[string]float64 `json:"buylist,omitempty"`
}

// CardPrices is the per-UUID price document: one PriceFormats per provider
// category (paper, mtgo).
type CardPrices struct {
	Paper map[string]PriceFormats `json:"paper,omitempty"`
	Mtgo  map[string]PriceFormats `json:"mtgo,omitempty"`
}
