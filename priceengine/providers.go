// Package priceengine implements component E: five price providers, a
// date-partitioned local data lake, archive merge/dedup, and the streaming
// relational/JSON output writers that consume it.
package priceengine

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/mtgjson/mtgjson/config"
	"github.com/mtgjson/mtgjson/internal/frame"
	"github.com/mtgjson/mtgjson/models"
)

// httpClient is shared by every provider, matching the teacher's single
// package-level client with a generous timeout for bulk downloads.
var httpClient = &http.Client{Timeout: 120 * time.Second}

// Bridges carries the native-provider-ID -> []UUID inverted indexes a
// provider needs to resolve its own identifiers into MTGJSON UUIDs. A
// native ID resolving to more than one UUID duplicates the row across every
// UUID it maps to, per spec.md §4.E.
type Bridges struct {
	TCGPlayerProductToUUID map[string][]string
	TCGPlayerEtchedToUUID  map[string][]string
	MTGOToUUID             map[string][]string
	ScryfallToUUID         map[string][]string
}

// Provider is one price source. Fetch returns today's rows in the flat
// schema, already resolved to UUIDs via bridges; a provider that cannot
// reach its upstream returns an error, which the engine turns into an
// empty frame plus a logged warning rather than failing the whole build.
type Provider interface {
	Fetch(ctx context.Context, bridges Bridges) ([]models.PriceRow, error)
	Name() string
}

func today() string { return time.Now().UTC().Format("2006-01-02") }

func expandRows(uuids []string, build func(uuid string) models.PriceRow) []models.PriceRow {
	rows := make([]models.PriceRow, 0, len(uuids))
	for _, u := range uuids {
		rows = append(rows, build(u))
	}
	return rows
}

// --- P1: largest retailer, paper/USD retail, async-streaming per-set
// pagination, checkpointed every checkpointEverySets sets so a restart
// resumes instead of re-paginating from the start. ---

const checkpointEverySets = 50

type p1Checkpoint struct {
	LastSetIndex int      `json:"lastSetIndex"`
	SeenSets     []string `json:"seenSets"`
}

// P1Provider is the largest-retailer paper/USD provider.
type P1Provider struct {
	cfg            *config.Config
	log            *zap.Logger
	checkpointPath string
}

// NewP1Provider returns the largest-retailer provider, persisting its
// pagination checkpoint under dir/.tcg_price_checkpoint.json per spec.md §6.
func NewP1Provider(cfg *config.Config, log *zap.Logger, dir string) *P1Provider {
	return &P1Provider{cfg: cfg, log: log, checkpointPath: dir + "/.tcg_price_checkpoint.json"}
}

func (p *P1Provider) Name() string { return "p1" }

func (p *P1Provider) Fetch(ctx context.Context, bridges Bridges) ([]models.PriceRow, error) {
	if p.cfg.P1APIKey == "" {
		return nil, fmt.Errorf("p1: no API key configured")
	}
	ckpt := p.loadCheckpoint()
	var rows []models.PriceRow
	setIndex := ckpt.LastSetIndex
	for {
		page, hasMore, err := p.fetchSetPage(ctx, setIndex)
		if err != nil {
			return rows, fmt.Errorf("p1: fetch page %d: %w", setIndex, err)
		}
		for _, sku := range page {
			for _, uuid := range resolveUUIDs(bridges.TCGPlayerProductToUUID, sku.ProductID) {
				rows = append(rows, models.PriceRow{
					UUID: uuid, Date: today(), Source: "paper", Provider: p.Name(),
					PriceType: "retail", Finish: sku.Finish, Price: sku.Price, Currency: "USD",
				})
			}
		}
		setIndex++
		if setIndex%checkpointEverySets == 0 {
			p.saveCheckpoint(p1Checkpoint{LastSetIndex: setIndex})
		}
		if !hasMore {
			break
		}
	}
	p.saveCheckpoint(p1Checkpoint{LastSetIndex: 0})
	return rows, nil
}

type p1SKU struct {
	ProductID string
	Finish    string
	Price     float64
}

func (p *P1Provider) fetchSetPage(ctx context.Context, setIndex int) ([]p1SKU, bool, error) {
	url := fmt.Sprintf("%s/prices?setIndex=%d&apiKey=%s", p.cfg.P1BaseURL, setIndex, p.cfg.P1APIKey)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, false, err
	}
	resp, err := httpClient.Do(req)
	if err != nil {
		return nil, false, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, false, fmt.Errorf("status %d", resp.StatusCode)
	}
	var body struct {
		SKUs    []p1SKU `json:"skus"`
		HasMore bool    `json:"hasMore"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, false, err
	}
	return body.SKUs, body.HasMore, nil
}

func (p *P1Provider) loadCheckpoint() p1Checkpoint {
	data, err := os.ReadFile(p.checkpointPath)
	if err != nil {
		return p1Checkpoint{}
	}
	var c p1Checkpoint
	if err := json.Unmarshal(data, &c); err != nil {
		p.log.Warn("p1 checkpoint unreadable, restarting from page 0", zap.Error(err))
		return p1Checkpoint{}
	}
	return c
}

func (p *P1Provider) saveCheckpoint(c p1Checkpoint) {
	data, err := json.Marshal(c)
	if err != nil {
		return
	}
	if err := os.WriteFile(p.checkpointPath, data, 0o644); err != nil {
		p.log.Warn("failed to persist p1 checkpoint", zap.Error(err))
	}
}

// --- P2: MTGO-only, bulk TSV download, normal and foil parallel prices
// on the same row. ---

// P2Provider is the MTGO-only bulk-TSV provider.
type P2Provider struct {
	cfg *config.Config
	log *zap.Logger
}

func NewP2Provider(cfg *config.Config, log *zap.Logger) *P2Provider { return &P2Provider{cfg: cfg, log: log} }

func (p *P2Provider) Name() string { return "p2" }

func (p *P2Provider) Fetch(ctx context.Context, bridges Bridges) ([]models.PriceRow, error) {
	if p.cfg.P2APIKey == "" {
		return nil, fmt.Errorf("p2: no API key configured")
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.cfg.P2BaseURL+"/bulk.tsv?apiKey="+p.cfg.P2APIKey, nil)
	if err != nil {
		return nil, err
	}
	resp, err := httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("p2: status %d", resp.StatusCode)
	}

	var rows []models.PriceRow
	scanner := bufio.NewScanner(resp.Body)
	for scanner.Scan() {
		cols := strings.Split(scanner.Text(), "\t")
		if len(cols) != 3 {
			continue
		}
		mtgoID, normalStr, foilStr := cols[0], cols[1], cols[2]
		uuids := resolveUUIDs(bridges.MTGOToUUID, mtgoID)
		if normal, err := strconv.ParseFloat(normalStr, 64); err == nil {
			rows = append(rows, expandRows(uuids, func(uuid string) models.PriceRow {
				return models.PriceRow{UUID: uuid, Date: today(), Source: "mtgo", Provider: p.Name(), PriceType: "retail", Finish: "normal", Price: normal, Currency: "USD"}
			})...)
		}
		if foil, err := strconv.ParseFloat(foilStr, 64); err == nil {
			rows = append(rows, expandRows(uuids, func(uuid string) models.PriceRow {
				return models.PriceRow{UUID: uuid, Date: today(), Source: "mtgo", Provider: p.Name(), PriceType: "retail", Finish: "foil", Price: foil, Currency: "USD"}
			})...)
		}
	}
	return rows, scanner.Err()
}

// --- P3: single bulk endpoint, prices quoted in cents. ---

// P3Provider is a single-bulk-endpoint paper/USD retail provider whose
// upstream quotes prices in integer cents.
type P3Provider struct {
	cfg *config.Config
	log *zap.Logger
}

func NewP3Provider(cfg *config.Config, log *zap.Logger) *P3Provider { return &P3Provider{cfg: cfg, log: log} }

func (p *P3Provider) Name() string { return "p3" }

func (p *P3Provider) Fetch(ctx context.Context, bridges Bridges) ([]models.PriceRow, error) {
	if p.cfg.P3BaseURL == "" {
		return nil, fmt.Errorf("p3: no base URL configured")
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.cfg.P3BaseURL+"/bulk", nil)
	if err != nil {
		return nil, err
	}
	resp, err := httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("p3: status %d", resp.StatusCode)
	}

	var body struct {
		Entries []struct {
			ScryfallID string `json:"scryfallId"`
			Cents      int    `json:"priceCents"`
			Finish     string `json:"finish"`
		} `json:"entries"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, err
	}

	var rows []models.PriceRow
	for _, e := range body.Entries {
		dollars := float64(e.Cents) / 100
		for _, uuid := range resolveUUIDs(bridges.ScryfallToUUID, e.ScryfallID) {
			rows = append(rows, models.PriceRow{
				UUID: uuid, Date: today(), Source: "paper", Provider: p.Name(),
				PriceType: "retail", Finish: e.Finish, Price: dollars, Currency: "USD",
			})
		}
	}
	return rows, nil
}

// --- P4: EU/EUR, sequential and rate-limited. ---

// P4Provider is the EU paper/EUR provider; retail and buylist quotes, one
// sequential HTTP request at a time, throttled to P4RateLimitSeconds
// between requests per spec.md §4.E's provider table.
type P4Provider struct {
	cfg *config.Config
	log *zap.Logger
}

func NewP4Provider(cfg *config.Config, log *zap.Logger) *P4Provider { return &P4Provider{cfg: cfg, log: log} }

func (p *P4Provider) Name() string { return "p4" }

func (p *P4Provider) Fetch(ctx context.Context, bridges Bridges) ([]models.PriceRow, error) {
	if p.cfg.P4APIKey == "" {
		return nil, fmt.Errorf("p4: no API key configured")
	}
	ids, err := p.fetchProductIDs(ctx)
	if err != nil {
		return nil, fmt.Errorf("p4: list products: %w", err)
	}

	var rows []models.PriceRow
	interval := time.Duration(p.cfg.P4RateLimitSeconds * float64(time.Second))
	for i, scryfallID := range ids {
		if i > 0 {
			select {
			case <-time.After(interval):
			case <-ctx.Done():
				return rows, ctx.Err()
			}
		}
		quote, err := p.fetchQuote(ctx, scryfallID)
		if err != nil {
			p.log.Warn("p4 quote fetch failed, skipping card", zap.String("scryfallId", scryfallID), zap.Error(err))
			continue
		}
		for _, uuid := range resolveUUIDs(bridges.ScryfallToUUID, scryfallID) {
			rows = append(rows,
				models.PriceRow{UUID: uuid, Date: today(), Source: "paper", Provider: p.Name(), PriceType: "retail", Finish: "normal", Price: quote.Retail, Currency: "EUR"},
				models.PriceRow{UUID: uuid, Date: today(), Source: "paper", Provider: p.Name(), PriceType: "buylist", Finish: "normal", Price: quote.Buylist, Currency: "EUR"},
			)
		}
	}
	return rows, nil
}

func (p *P4Provider) fetchProductIDs(ctx context.Context) ([]string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.cfg.P4BaseURL+"/products?apiKey="+p.cfg.P4APIKey, nil)
	if err != nil {
		return nil, err
	}
	resp, err := httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("status %d", resp.StatusCode)
	}
	var body struct {
		ScryfallIDs []string `json:"scryfallIds"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, err
	}
	return body.ScryfallIDs, nil
}

type p4Quote struct {
	Retail  float64 `json:"retail"`
	Buylist float64 `json:"buylist"`
}

func (p *P4Provider) fetchQuote(ctx context.Context, scryfallID string) (p4Quote, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.cfg.P4BaseURL+"/quote?scryfallId="+scryfallID+"&apiKey="+p.cfg.P4APIKey, nil)
	if err != nil {
		return p4Quote{}, err
	}
	resp, err := httpClient.Do(req)
	if err != nil {
		return p4Quote{}, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return p4Quote{}, fmt.Errorf("status %d", resp.StatusCode)
	}
	var q p4Quote
	if err := json.NewDecoder(resp.Body).Decode(&q); err != nil {
		return p4Quote{}, err
	}
	return q, nil
}

// --- P5: async with columnar caching. ---

// P5Provider is a paper/USD retail+buylist provider that caches its raw
// response locally as a gob+zstd partition (via internal/frame) between
// runs, since its upstream throttles repeated full-catalog pulls.
type P5Provider struct {
	cfg       *config.Config
	log       *zap.Logger
	cachePath string
}

func NewP5Provider(cfg *config.Config, log *zap.Logger, cachePath string) *P5Provider {
	return &P5Provider{cfg: cfg, log: log, cachePath: cachePath}
}

func (p *P5Provider) Name() string { return "p5" }

func (p *P5Provider) Fetch(ctx context.Context, bridges Bridges) ([]models.PriceRow, error) {
	if p.cfg.P5APIKey == "" {
		return nil, fmt.Errorf("p5: no API key configured")
	}
	entries, err := p.fetchEntries(ctx)
	if err != nil {
		return nil, fmt.Errorf("p5: %w", err)
	}

	var rows []models.PriceRow
	for _, e := range entries {
		for _, uuid := range resolveUUIDs(bridges.ScryfallToUUID, e.ScryfallID) {
			rows = append(rows,
				models.PriceRow{UUID: uuid, Date: today(), Source: "paper", Provider: p.Name(), PriceType: "retail", Finish: e.Finish, Price: e.Retail, Currency: "USD"},
				models.PriceRow{UUID: uuid, Date: today(), Source: "paper", Provider: p.Name(), PriceType: "buylist", Finish: e.Finish, Price: e.Buylist, Currency: "USD"},
			)
		}
	}
	return rows, nil
}

type p5Entry struct {
	ScryfallID string  `json:"scryfallId"`
	Finish     string  `json:"finish"`
	Retail     float64 `json:"retail"`
	Buylist    float64 `json:"buylist"`
}

func (p *P5Provider) fetchEntries(ctx context.Context) ([]p5Entry, error) {
	entries, err := p.fetchEntriesFromAPI(ctx)
	if err != nil {
		if p.cachePath == "" {
			return nil, err
		}
		cached, cacheErr := p.readCachedEntries()
		if cacheErr != nil || len(cached) == 0 {
			return nil, err
		}
		p.log.Warn("p5: catalog fetch failed, falling back to cached partition", zap.Error(err))
		return cached, nil
	}

	if p.cachePath != "" {
		if err := frame.WritePartition(p.cachePath, p5EntriesToRows(entries)); err != nil {
			p.log.Warn("p5: failed to cache catalog partition", zap.Error(err))
		}
	}
	return entries, nil
}

func (p *P5Provider) fetchEntriesFromAPI(ctx context.Context) ([]p5Entry, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.cfg.P5BaseURL+"/catalog?apiKey="+p.cfg.P5APIKey, nil)
	if err != nil {
		return nil, err
	}
	resp, err := httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("status %d", resp.StatusCode)
	}
	var entries []p5Entry
	if err := json.NewDecoder(resp.Body).Decode(&entries); err != nil {
		return nil, err
	}
	return entries, nil
}

func (p *P5Provider) readCachedEntries() ([]p5Entry, error) {
	rows, err := frame.ReadPartition(p.cachePath)
	if err != nil {
		return nil, err
	}
	entries := make([]p5Entry, 0, len(rows))
	for _, r := range rows {
		entries = append(entries, p5EntryFromRow(r))
	}
	return entries, nil
}

func p5EntriesToRows(entries []p5Entry) []frame.Row {
	rows := make([]frame.Row, 0, len(entries))
	for _, e := range entries {
		rows = append(rows, frame.Row{
			"scryfallId": e.ScryfallID,
			"finish":     e.Finish,
			"retail":     e.Retail,
			"buylist":    e.Buylist,
		})
	}
	return rows
}

func p5EntryFromRow(r frame.Row) p5Entry {
	scryfallID, _ := r["scryfallId"].(string)
	finish, _ := r["finish"].(string)
	retail, _ := r["retail"].(float64)
	buylist, _ := r["buylist"].(float64)
	return p5Entry{ScryfallID: scryfallID, Finish: finish, Retail: retail, Buylist: buylist}
}

// resolveUUIDs looks up a provider-native ID in an ID->UUID bridge,
// returning every UUID it maps to (more than one when a card is reprinted
// under the same product/catalog ID).
func resolveUUIDs(bridge map[string][]string, nativeID string) []string {
	if nativeID == "" {
		return nil
	}
	return bridge[nativeID]
}
