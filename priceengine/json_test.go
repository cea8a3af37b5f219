package priceengine

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/mtgjson/mtgjson/models"
)

func TestWritePricesJSONNestsByUUIDSourceProviderFinish(t *testing.T) {
	rows := []models.PriceRow{
		{UUID: "0a1b", Date: "2026-08-05", Source: "paper", Provider: "p1", PriceType: "retail", Finish: "normal", Price: 1.0, Currency: "USD"},
		{UUID: "0a1b", Date: "2026-08-06", Source: "paper", Provider: "p1", PriceType: "retail", Finish: "normal", Price: 1.5, Currency: "USD"},
		{UUID: "0a1b", Date: "2026-08-06", Source: "mtgo", Provider: "p2", PriceType: "retail", Finish: "foil", Price: 2.5, Currency: "USD"},
		{UUID: "fbee", Date: "2026-08-06", Source: "paper", Provider: "p4", PriceType: "buylist", Finish: "normal", Price: 3.0, Currency: "EUR"},
	}

	var buf bytes.Buffer
	if err := WritePricesJSON(&buf, rows, Meta{Date: "2026-08-06", Version: "1.0.0"}); err != nil {
		t.Fatalf("WritePricesJSON: %v", err)
	}

	var decoded struct {
		Meta Meta                          `json:"meta"`
		Data map[string]models.CardPrices  `json:"data"`
	}
	if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatalf("decode output: %v\n%s", err, buf.String())
	}
	if decoded.Meta.Date != "2026-08-06" {
		t.Fatalf("unexpected meta: %+v", decoded.Meta)
	}
	if len(decoded.Data) != 2 {
		t.Fatalf("expected 2 UUIDs in the nested output, got %d", len(decoded.Data))
	}

	card := decoded.Data["0a1b"]
	paperDates := card.Paper["p1"].Retail["normal"]
	if paperDates["2026-08-05"] != 1.0 || paperDates["2026-08-06"] != 1.5 {
		t.Fatalf("unexpected paper retail series: %+v", paperDates)
	}
	mtgoDates := card.Mtgo["p2"].Retail["foil"]
	if mtgoDates["2026-08-06"] != 2.5 {
		t.Fatalf("unexpected mtgo retail series: %+v", mtgoDates)
	}

	fbee := decoded.Data["fbee"]
	if fbee.Paper["p4"].Buylist["normal"]["2026-08-06"] != 3.0 {
		t.Fatalf("unexpected eur buylist series: %+v", fbee.Paper["p4"].Buylist)
	}
	if fbee.Paper["p4"].Currency != "EUR" {
		t.Fatalf("expected EUR currency carried on the provider bucket, got %q", fbee.Paper["p4"].Currency)
	}
}

func TestGroupByHexPrefixBucketsOnLowercasedFirstChar(t *testing.T) {
	rows := []models.PriceRow{
		{UUID: "ABCDEF"},
		{UUID: "abcdef"},
		{UUID: "1234"},
		{UUID: ""},
	}
	groups := groupByHexPrefix(rows)
	if len(groups["a"]) != 2 {
		t.Fatalf("expected both upper and lower case A-prefixed UUIDs in group 'a', got %d", len(groups["a"]))
	}
	if len(groups["1"]) != 1 {
		t.Fatalf("expected 1 row in group '1', got %d", len(groups["1"]))
	}
	if _, ok := groups[""]; ok {
		t.Fatal("expected rows with an empty UUID to be skipped entirely")
	}
}

func TestSortPriceRowsOrdersByFullKeyTuple(t *testing.T) {
	rows := []models.PriceRow{
		{UUID: "u2", Source: "paper", Provider: "p1", PriceType: "retail", Finish: "normal", Date: "2026-08-01"},
		{UUID: "u1", Source: "paper", Provider: "p1", PriceType: "retail", Finish: "normal", Date: "2026-08-02"},
		{UUID: "u1", Source: "paper", Provider: "p1", PriceType: "retail", Finish: "normal", Date: "2026-08-01"},
	}
	sortPriceRows(rows)
	if rows[0].UUID != "u1" || rows[0].Date != "2026-08-01" {
		t.Fatalf("expected u1/2026-08-01 first, got %+v", rows[0])
	}
	if rows[1].UUID != "u1" || rows[1].Date != "2026-08-02" {
		t.Fatalf("expected u1/2026-08-02 second, got %+v", rows[1])
	}
	if rows[2].UUID != "u2" {
		t.Fatalf("expected u2 last, got %+v", rows[2])
	}
}
