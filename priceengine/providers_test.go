package priceengine

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"go.uber.org/zap"

	"github.com/mtgjson/mtgjson/config"
	"github.com/mtgjson/mtgjson/models"
)

func TestResolveUUIDsExpandsEveryMappedUUID(t *testing.T) {
	bridge := map[string][]string{"native-1": {"uuid-a", "uuid-b"}}

	got := resolveUUIDs(bridge, "native-1")
	if len(got) != 2 {
		t.Fatalf("expected 2 resolved UUIDs, got %d", len(got))
	}

	if got := resolveUUIDs(bridge, ""); got != nil {
		t.Fatalf("expected nil for an empty native ID, got %v", got)
	}
	if got := resolveUUIDs(bridge, "missing"); got != nil {
		t.Fatalf("expected nil for an unmapped native ID, got %v", got)
	}
}

func TestExpandRowsBuildsOneRowPerUUID(t *testing.T) {
	uuids := []string{"u1", "u2", "u3"}
	rows := expandRows(uuids, func(uuid string) models.PriceRow { return models.PriceRow{UUID: uuid} })
	if len(rows) != 3 {
		t.Fatalf("expected 3 rows, got %d", len(rows))
	}
}

func TestP3ProviderResolvesCentsAndUUIDs(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"entries":[{"scryfallId":"sf-1","priceCents":1050,"finish":"normal"}]}`))
	}))
	defer srv.Close()

	cfg := &config.Config{P3BaseURL: srv.URL}
	p := NewP3Provider(cfg, zap.NewNop())

	bridges := Bridges{ScryfallToUUID: map[string][]string{"sf-1": {"uuid-1"}}}
	rows, err := p.Fetch(context.Background(), bridges)
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if len(rows) != 1 {
		t.Fatalf("expected 1 row, got %d", len(rows))
	}
	if rows[0].Price != 10.50 {
		t.Fatalf("expected cents converted to dollars (10.50), got %v", rows[0].Price)
	}
	if rows[0].UUID != "uuid-1" || rows[0].PriceType != "retail" || rows[0].Currency != "USD" {
		t.Fatalf("unexpected row: %+v", rows[0])
	}
}

func TestP3ProviderRequiresBaseURL(t *testing.T) {
	p := NewP3Provider(&config.Config{}, zap.NewNop())
	if _, err := p.Fetch(context.Background(), Bridges{}); err == nil {
		t.Fatal("expected an error when P3BaseURL is unconfigured")
	}
}

func TestP2ProviderParsesTSVFinishes(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("mtgo-1\t1.25\t3.50\n"))
	}))
	defer srv.Close()

	cfg := &config.Config{P2BaseURL: srv.URL, P2APIKey: "key"}
	p := NewP2Provider(cfg, zap.NewNop())

	bridges := Bridges{MTGOToUUID: map[string][]string{"mtgo-1": {"uuid-1"}}}
	rows, err := p.Fetch(context.Background(), bridges)
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("expected a normal row and a foil row, got %d", len(rows))
	}
	finishes := map[string]float64{}
	for _, r := range rows {
		if r.Source != "mtgo" {
			t.Fatalf("expected mtgo source, got %q", r.Source)
		}
		finishes[r.Finish] = r.Price
	}
	if finishes["normal"] != 1.25 || finishes["foil"] != 3.50 {
		t.Fatalf("unexpected finish prices: %+v", finishes)
	}
}
