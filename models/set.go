package models

// Set is one product/expansion, with all of its card printings nested when
// written in combined mode (AllPrintings) or standing alone when written
// per-set.
type Set struct {
	Code         string `json:"code"`
	Name         string `json:"name"`
	Type         string `json:"type"`
	Block        string `json:"block,omitempty"`
	ReleaseDate  string `json:"releaseDate"`
	BaseSetSize  int    `json:"baseSetSize"`
	TotalSetSize int    `json:"totalSetSize"`
	IsFoilOnly       bool `json:"isFoilOnly,omitempty"`
	IsNonFoilOnly    bool `json:"isNonFoilOnly,omitempty"`
	IsOnlineOnly     bool `json:"isOnlineOnly,omitempty"`
	IsPartialPreview bool `json:"isPartialPreview,omitempty"`
	IsForeignOnly    bool `json:"isForeignOnly,omitempty"`
	HasContentWarning bool `json:"hasContentWarning,omitempty"`
	KeyruneCode  string `json:"keyruneCode,omitempty"`
	ParentCode   string `json:"parentCode,omitempty"`
	TokenSetCode string `json:"tokenSetCode,omitempty"`

	Cards  []CardFace `json:"cards"`
	Tokens []CardFace `json:"tokens,omitempty"`

	SealedProducts []SealedProduct `json:"sealedProduct,omitempty"`
	Decks          []Deck          `json:"decks,omitempty"`
	Booster        map[string]BoosterConfig `json:"booster,omitempty"`
}

// BoosterConfig describes one booster-pack configuration for a set: the
// named sheet slots a pack draws from and the relative weight of each
// possible sheet combination.
type BoosterConfig struct {
	Sheets  map[string]BoosterSheet `json:"sheets"`
	Boosters []BoosterVariant       `json:"boosters"`
	BoostersTotalWeight int         `json:"boostersTotalWeight,omitempty"`
}

// BoosterSheet is one named card pool a booster slot draws from, with
// per-card relative weights and a flag for foil-only sheets.
type BoosterSheet struct {
	Cards       map[string]int `json:"cards"`
	TotalWeight int            `json:"totalWeight,omitempty"`
	Foil        bool           `json:"foil,omitempty"`
}

// BoosterVariant is one possible sheet-count combination a pack can be
// assembled from, with its relative weight among all variants.
type BoosterVariant struct {
	Contents map[string]int `json:"contents"`
	Weight   int            `json:"weight,omitempty"`
}

// SetListEntry is the lightweight row used in the SetList output, which
// omits every card so consumers can discover sets without downloading the
// full printings.
type SetListEntry struct {
	Code         string `json:"code"`
	Name         string `json:"name"`
	Type         string `json:"type"`
	ReleaseDate  string `json:"releaseDate"`
	BaseSetSize  int    `json:"baseSetSize"`
	TotalSetSize int    `json:"totalSetSize"`
}

// SealedProduct is a booster box, bundle, or similar sealed item associated
// with a set, with its contents exploded per the "sealed product contents"
// source.
type SealedProduct struct {
	UUID     string                 `json:"uuid"`
	Name     string                 `json:"name"`
	Category string                 `json:"category,omitempty"`
	Subtype  string                 `json:"subtype,omitempty"`
	Identifiers Identifiers         `json:"identifiers,omitempty"`
	PurchaseURLs PurchaseURLs       `json:"purchaseUrls,omitempty"`
	Contents map[string]any        `json:"contents,omitempty"`
}

// Deck is a preconstructed deck list associated with a set (Commander
// precon, planeswalker deck, etc).
type Deck struct {
	Name       string     `json:"name"`
	Code       string     `json:"code"`
	ReleaseDate string    `json:"releaseDate,omitempty"`
	Type       string     `json:"type,omitempty"`
	Cards      []DeckCard `json:"cards"`
	Commander  []DeckCard `json:"commander,omitempty"`
	Sideboard  []DeckCard `json:"sideboard,omitempty"`
}

// DeckCard is one entry in a deck list: a card UUID plus the copy count.
type DeckCard struct {
	UUID  string `json:"uuid"`
	Count int    `json:"count"`
}
