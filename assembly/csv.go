package assembly

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/mtgjson/mtgjson/models"
)

// csvColumns is the flattened column order used by every relational writer
// (CSV, SQLite, SQL-dump, PostgreSQL) so the schema stays in one place.
var csvColumns = []string{
	"uuid", "name", "faceName", "setCode", "number", "side", "layout",
	"manaCost", "manaValue", "type", "text", "power", "toughness", "loyalty",
	"rarity", "artist", "watermark",
	"scryfallId", "scryfallOracleId", "multiverseId", "mtgoId", "mtgArenaId",
	"tcgplayerProductId", "cardKingdomId",
	"legalities_standard", "legalities_modern", "legalities_legacy",
	"legalities_vintage", "legalities_commander", "legalities_pauper",
	"availability_arena", "availability_mtgo", "availability_paper",
	"isFunny", "hasContentWarning",
}

// WriteCSV flattens every card face (see flatten in relational.go) and
// writes one row per face using the shared column order, matching spec.md
// §4.D's flattening rule (`identifiers.scryfallId` -> `scryfallId`, etc).
func WriteCSV(w io.Writer, sets map[string]models.Set) error {
	rows := flatten(sets)
	cw := csv.NewWriter(w)
	if err := cw.Write(csvColumns); err != nil {
		return err
	}
	for _, r := range rows {
		record := make([]string, len(csvColumns))
		for i, col := range csvColumns {
			record[i] = csvCell(r[col])
		}
		if err := cw.Write(record); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func csvCell(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case bool:
		return strconv.FormatBool(t)
	case float64:
		return strconv.FormatFloat(t, 'g', -1, 64)
	case int:
		return strconv.Itoa(t)
	default:
		return fmt.Sprint(t)
	}
}
