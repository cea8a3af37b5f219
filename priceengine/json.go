package priceengine

import (
	"encoding/json"
	"io"
	"sort"
	"strings"

	"github.com/mtgjson/mtgjson/models"
)

// hexPrefixGroups is the set of UUID hex prefixes AllPrices.json is
// partitioned by (0-9, a-f), so the nested per-UUID documents are built for
// one group at a time while streaming the ~500 MB combined file, per
// spec.md §4.E. The flat input rows of every group are all held in memory
// for the whole write.
var hexPrefixGroups = []string{
	"0", "1", "2", "3", "4", "5", "6", "7", "8", "9", "a", "b", "c", "d", "e", "f",
}

// Meta is the {meta:{date,version}} header every price output file carries.
type Meta struct {
	Date    string `json:"date"`
	Version string `json:"version"`
}

// WritePricesJSON streams rows into the nested
// {uuid:{source:{provider:{priceType:{finish:{date:price}},currency:c}}}}
// shape, one hex-prefix group at a time so the whole 90-day (or
// today-only) frame never needs to be held as one in-memory nested dict.
func WritePricesJSON(w io.Writer, rows []models.PriceRow, meta Meta) error {
	if _, err := io.WriteString(w, `{"meta":`); err != nil {
		return err
	}
	metaBytes, err := json.Marshal(meta)
	if err != nil {
		return err
	}
	if _, err := w.Write(metaBytes); err != nil {
		return err
	}
	if _, err := io.WriteString(w, `,"data":{`); err != nil {
		return err
	}

	byPrefix := groupByHexPrefix(rows)
	first := true
	for _, prefix := range hexPrefixGroups {
		group := byPrefix[prefix]
		if len(group) == 0 {
			continue
		}
		sortPriceRows(group)
		nested := foldNested(group)
		uuids := make([]string, 0, len(nested))
		for uuid := range nested {
			uuids = append(uuids, uuid)
		}
		sort.Strings(uuids)
		for _, uuid := range uuids {
			if !first {
				if _, err := io.WriteString(w, ","); err != nil {
					return err
				}
			}
			first = false
			keyBytes, _ := json.Marshal(uuid)
			if _, err := w.Write(keyBytes); err != nil {
				return err
			}
			if _, err := io.WriteString(w, ":"); err != nil {
				return err
			}
			valBytes, err := json.Marshal(nested[uuid])
			if err != nil {
				return err
			}
			if _, err := w.Write(valBytes); err != nil {
				return err
			}
		}
	}
	_, err = io.WriteString(w, "}}")
	return err
}

func groupByHexPrefix(rows []models.PriceRow) map[string][]models.PriceRow {
	out := make(map[string][]models.PriceRow, len(hexPrefixGroups))
	for _, r := range rows {
		if r.UUID == "" {
			continue
		}
		prefix := strings.ToLower(r.UUID[:1])
		out[prefix] = append(out[prefix], r)
	}
	return out
}

func sortPriceRows(rows []models.PriceRow) {
	sort.Slice(rows, func(i, j int) bool {
		a, b := rows[i], rows[j]
		if a.UUID != b.UUID {
			return a.UUID < b.UUID
		}
		if a.Source != b.Source {
			return a.Source < b.Source
		}
		if a.Provider != b.Provider {
			return a.Provider < b.Provider
		}
		if a.PriceType != b.PriceType {
			return a.PriceType < b.PriceType
		}
		if a.Finish != b.Finish {
			return a.Finish < b.Finish
		}
		return a.Date < b.Date
	})
}

// foldNested folds a sorted, single-prefix-group slice of rows into the
// uuid -> source -> provider -> priceType -> finish -> date -> price shape,
// carrying the currency alongside each provider/priceType bucket.
func foldNested(rows []models.PriceRow) map[string]models.CardPrices {
	out := map[string]models.CardPrices{}
	for _, r := range rows {
		cp, ok := out[r.UUID]
		if !ok {
			cp = models.CardPrices{Paper: map[string]models.PriceFormats{}, Mtgo: map[string]models.PriceFormats{}}
		}
		bucket := cp.Paper
		if r.Source == "mtgo" {
			bucket = cp.Mtgo
		}
		formats, ok := bucket[r.Provider]
		if !ok {
			formats = models.PriceFormats{Currency: r.Currency, Retail: map[string]map[string]float64{}, Buylist: map[string]map[string]float64{}}
		}
		target := formats.Retail
		if r.PriceType == "buylist" {
			target = formats.Buylist
		}
		if target[r.Finish] == nil {
			target[r.Finish] = map[string]float64{}
		}
		target[r.Finish][r.Date] = r.Price
		bucket[r.Provider] = formats
		if r.Source == "mtgo" {
			cp.Mtgo = bucket
		} else {
			cp.Paper = bucket
		}
		out[r.UUID] = cp
	}
	return out
}
