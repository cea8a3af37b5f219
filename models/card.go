// Package models holds the output record shapes produced by the pipeline:
// card faces, oracle cards, sets, identifiers, rulings, prices, and the
// supporting sub-structures each of those embeds.
package models

// Legalities carries the format legality string ("Legal", "Banned",
// "Restricted", "Suspended") for every format the engine tracks. A format
// absent from the card's legality table is simply omitted here.
type Legalities struct {
	Standard  string `json:"standard,omitempty"`
	Pioneer   string `json:"pioneer,omitempty"`
	Modern    string `json:"modern,omitempty"`
	Legacy    string `json:"legacy,omitempty"`
	Vintage   string `json:"vintage,omitempty"`
	Commander string `json:"commander,omitempty"`
	Pauper    string `json:"pauper,omitempty"`
	Historic  string `json:"historic,omitempty"`
	Alchemy   string `json:"alchemy,omitempty"`
	Brawl     string `json:"brawl,omitempty"`
	Oathbreaker string `json:"oathbreaker,omitempty"`
}

// Identifiers bundles every external catalog identifier known for a card
// face, most produced by lookup-consolidator bridges (component B).
type Identifiers struct {
	ScryfallID        string `json:"scryfallId,omitempty"`
	ScryfallOracleID  string `json:"scryfallOracleId,omitempty"`
	ScryfallIllusID   string `json:"scryfallIllustrationId,omitempty"`
	MultiverseID      string `json:"multiverseId,omitempty"`
	MtgoID            string `json:"mtgoId,omitempty"`
	MtgoFoilID        string `json:"mtgoFoilId,omitempty"`
	MtgArenaID        string `json:"mtgArenaId,omitempty"`
	TcgplayerProductID string `json:"tcgplayerProductId,omitempty"`
	TcgplayerEtchedID string `json:"tcgplayerEtchedProductId,omitempty"`
	CardKingdomID     string `json:"cardKingdomId,omitempty"`
	CardKingdomFoilID string `json:"cardKingdomFoilId,omitempty"`
	CardKingdomEtchedID string `json:"cardKingdomEtchedId,omitempty"`
	CardsphereID      string `json:"cardsphereId,omitempty"`
	McmID             string `json:"mcmId,omitempty"`
	MultiverseBridgeID string `json:"multiverseBridgeId,omitempty"`

	MtgjsonFoilVersionID   string `json:"mtgjsonFoilVersionId,omitempty"`
	MtgjsonNonFoilVersionID string `json:"mtgjsonNonFoilVersionId,omitempty"`
}

// PurchaseURLs maps a provider name to its referral-hashed redirect link, as
// produced by component F.
type PurchaseURLs struct {
	Cardmarket   string `json:"cardmarket,omitempty"`
	Tcgplayer    string `json:"tcgplayer,omitempty"`
	CardKingdom  string `json:"cardKingdom,omitempty"`
}

// Availability records which digital or physical channels a printing is
// available through.
type Availability struct {
	Arena    bool `json:"arena,omitempty"`
	Mtgo     bool `json:"mtgo,omitempty"`
	Paper    bool `json:"paper,omitempty"`
	Dreamcast bool `json:"dreamcast,omitempty"`
}

// ForeignPrinting carries a translated name/text/type-line for a card face
// in a language other than English.
type ForeignPrinting struct {
	UUID      string `json:"uuid,omitempty"`
	Language  string `json:"language"`
	Name      string `json:"name"`
	Text      string `json:"text,omitempty"`
	Type      string `json:"type,omitempty"`
	FaceName  string `json:"faceName,omitempty"`
	MultiverseID string `json:"multiverseId,omitempty"`
}

// Ruling is a single official ruling with the date it was published.
type Ruling struct {
	Date int64  `json:"date"`
	Text string `json:"text"`
}

// CardFace is the unit of output: one printed face of one card in one set.
// Multi-face cards (split, adventure, modal DFC, meld) produce one CardFace
// per side, linked through OtherFaceIDs.
type CardFace struct {
	UUID       string `json:"uuid"`
	Name       string `json:"name"`
	FaceName   string `json:"faceName,omitempty"`
	SetCode    string `json:"setCode"`
	Number     string `json:"number"`
	Side       string `json:"side,omitempty"`
	Layout     string `json:"layout"`

	ManaCost      string   `json:"manaCost,omitempty"`
	ManaValue     float64  `json:"manaValue"`
	FaceManaValue *float64 `json:"faceManaValue,omitempty"`
	Colors        []string `json:"colors"`
	ColorIdentity []string `json:"colorIdentity"`
	ColorIndicator []string `json:"colorIndicator,omitempty"`

	Type       string   `json:"type"`
	Supertypes []string `json:"supertypes,omitempty"`
	Types      []string `json:"types"`
	Subtypes   []string `json:"subtypes,omitempty"`

	Text      string `json:"text,omitempty"`
	FlavorText string `json:"flavorText,omitempty"`
	FlavorName string `json:"flavorName,omitempty"`
	Power     string `json:"power,omitempty"`
	Toughness string `json:"toughness,omitempty"`
	Loyalty   string `json:"loyalty,omitempty"`
	Defense   string `json:"defense,omitempty"`

	Keywords []string `json:"keywords,omitempty"`
	Rarity   string   `json:"rarity"`
	Artist   string   `json:"artist,omitempty"`
	Watermark string  `json:"watermark,omitempty"`

	Finishes  []string `json:"finishes"`
	Frame     string   `json:"frameVersion,omitempty"`
	BorderColor string `json:"borderColor,omitempty"`
	SecurityStamp string `json:"securityStamp,omitempty"`

	IsFullArt  bool `json:"isFullArt,omitempty"`
	IsFunny    bool `json:"isFunny,omitempty"`
	IsPromo    bool `json:"isPromo,omitempty"`
	IsReprint  bool `json:"isReprint,omitempty"`
	IsReserved bool `json:"isReserved,omitempty"`
	IsOnlineOnly bool `json:"isOnlineOnly,omitempty"`
	IsStarter  bool `json:"isStarter,omitempty"`
	IsAlternative bool `json:"isAlternative,omitempty"`
	HasContentWarning bool `json:"hasContentWarning,omitempty"`

	OriginalReleaseDate string `json:"originalReleaseDate,omitempty"`
	OriginalText        string `json:"originalText,omitempty"`
	OriginalType        string `json:"originalType,omitempty"`

	OtherFaceIDs []string `json:"otherFaceIds,omitempty"`
	Variations   []string `json:"variations,omitempty"`
	RebalancedPrintings []string `json:"rebalancedPrintings,omitempty"`
	TokenIDs     []string `json:"tokenIds,omitempty"`
	SourceProducts []string `json:"sourceProducts,omitempty"`
	MeldSide     string   `json:"meldSide,omitempty"`
	CardParts    []string `json:"cardParts,omitempty"`

	Identifiers   Identifiers   `json:"identifiers"`
	PurchaseURLs  PurchaseURLs  `json:"purchaseUrls,omitempty"`
	Legalities    Legalities    `json:"legalities"`
	Availability  Availability  `json:"availability"`
	ForeignData   []ForeignPrinting `json:"foreignData,omitempty"`
	Rulings       []Ruling      `json:"rulings,omitempty"`

	EDHRecRank   int     `json:"edhrecRank,omitempty"`
	EDHRecSaltiness float64 `json:"edhrecSaltiness,omitempty"`
}
