package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/mtgjson/mtgjson/config"
	"github.com/mtgjson/mtgjson/internal/frame"
	"github.com/mtgjson/mtgjson/sourcecache"
)

// sourceHTTPClient is shared by every source-cache fetcher, mirroring the
// price engine's single package-level client with a generous timeout for
// multi-GB bulk downloads.
var sourceHTTPClient = &http.Client{Timeout: 10 * time.Minute}

// sourcePaths maps every sourcecache.Name to the path it's served at under
// cfg.SourceDataBaseURL. Each source's native row shape is opaque to the
// cache itself (sourcecache.Source's contract); the pipeline and lookup
// consolidator interpret whatever columns come back.
var sourcePaths = map[sourcecache.Name]string{
	sourcecache.PrimaryCardBulk:        "primary_card_bulk",
	sourcecache.Rulings:                "rulings",
	sourcecache.SetMetadata:            "set_metadata",
	sourcecache.RetailInventory:        "retail_inventory",
	sourcecache.MarketplaceIdentifiers: "marketplace_identifiers",
	sourcecache.CommanderSaltiness:     "commander_saltiness",
	sourcecache.ComboSynergy:           "combo_synergy",
	sourcecache.MeldTriplets:           "meld_triplets",
	sourcecache.SecretLairSubsets:      "secret_lair_subsets",
	sourcecache.MarketplaceSKUs:        "marketplace_skus",
	sourcecache.OfficialDBPageIDs:      "official_db_page_ids",
	sourcecache.ImageOrientation:       "image_orientation",
	sourcecache.MultiverseBridge:       "multiverse_bridge",
	sourcecache.SealedProducts:         "sealed_products",
	sourcecache.SealedProductContents:  "sealed_product_contents",
	sourcecache.DeckLists:              "deck_lists",
	sourcecache.BoosterConfigs:         "booster_configs",
	sourcecache.TokenProductMappings:   "token_product_mappings",
	sourcecache.TCGCSVGroupSetMap:      "tcgcsv_group_set_map",
}

// buildSources constructs the full map[Name]Source the cache is opened
// with: one HTTP+JSON fetcher per named source, each requesting
// cfg.SourceDataBaseURL/<path> and decoding a JSON array of objects
// straight into frame.Row values.
func buildSources(cfg *config.Config, log *zap.Logger) map[sourcecache.Name]sourcecache.Source {
	sources := make(map[sourcecache.Name]sourcecache.Source, len(sourcePaths))
	for name, path := range sourcePaths {
		name, path := name, path
		sources[name] = func(ctx context.Context) ([]frame.Row, error) {
			return fetchJSONRows(ctx, cfg.SourceDataBaseURL+"/"+path)
		}
	}
	return sources
}

// fetchJSONRows downloads a JSON array of flat objects from url and decodes
// it directly into frame.Row, the lingua franca every pipeline stage reads.
func fetchJSONRows(ctx context.Context, url string) ([]frame.Row, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	resp, err := sourceHTTPClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%s: status %d", url, resp.StatusCode)
	}

	var raw []map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&raw); err != nil {
		return nil, fmt.Errorf("%s: decode: %w", url, err)
	}
	rows := make([]frame.Row, len(raw))
	for i, m := range raw {
		rows[i] = frame.Row(m)
	}
	return rows, nil
}
