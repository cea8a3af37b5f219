package priceengine

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/mtgjson/mtgjson/internal/errs"
	"github.com/mtgjson/mtgjson/internal/frame"
	"github.com/mtgjson/mtgjson/models"
	"github.com/mtgjson/mtgjson/storage"
)

// LocalRetention is the rolling local window the pruner enforces; remote
// object-store retention stays indefinite.
const LocalRetention = 90 * 24 * time.Hour

// priceArchivePrefix is the object-store key prefix price partitions are
// synced under, matching cmd/pricearchive's own convention.
const priceArchivePrefix = "price_archive/"

// Engine orchestrates the price build sequence from spec.md §4.E: fetch
// today from every provider, merge with the rolling local archive, sync to
// the object store, prune, and hand back the 90-day window for the output
// writers.
type Engine struct {
	providers []Provider
	bridges   Bridges
	log       *zap.Logger
	report    *errs.Builder
	pricesDir string
}

// New builds an Engine over the given providers and ID bridges, rooted at
// pricesDir (typically <output>/prices).
func New(providers []Provider, bridges Bridges, log *zap.Logger, report *errs.Builder, pricesDir string) *Engine {
	return &Engine{providers: providers, bridges: bridges, log: log, report: report, pricesDir: pricesDir}
}

func (e *Engine) partitionPath(date string) string {
	return filepath.Join(e.pricesDir, "date="+date, "data.parquet")
}

// FetchToday runs every provider in parallel; a provider whose Fetch call
// errors contributes an empty frame and a logged warning rather than
// aborting the run, per spec.md §5's per-provider fault isolation.
func (e *Engine) FetchToday(ctx context.Context) []models.PriceRow {
	results := make([][]models.PriceRow, len(e.providers))
	g, ctx := errgroup.WithContext(ctx)
	for i, pr := range e.providers {
		i, pr := i, pr
		g.Go(func() error {
			rows, err := pr.Fetch(ctx, e.bridges)
			if err != nil {
				e.report.Add("priceengine", &errs.SourceFetchError{Source: pr.Name(), Err: err})
				e.log.Warn("price provider fetch failed, continuing with empty frame", zap.String("provider", pr.Name()), zap.Error(err))
				return nil
			}
			results[i] = rows
			return nil
		})
	}
	_ = g.Wait()

	var all []models.PriceRow
	for _, rows := range results {
		all = append(all, rows...)
	}
	return all
}

// WriteTodayPartition merges today's rows with whatever is already on disk
// for today's date (a rerun on the same day) and rewrites the partition,
// last-write-wins on the full composite key.
func (e *Engine) WriteTodayPartition(date string, todayRows []models.PriceRow) error {
	path := e.partitionPath(date)
	existing, _ := readPriceRows(path)
	merged := mergeLastWriteWins(existing, todayRows)
	return writePriceRows(path, merged)
}

// mergeLastWriteWins concatenates base and incoming and keeps, for every
// composite key, the row from incoming when present, falling back to base
// otherwise -- incoming is assumed to be the more recent fetch.
func mergeLastWriteWins(base, incoming []models.PriceRow) []models.PriceRow {
	byKey := make(map[string]models.PriceRow, len(base)+len(incoming))
	for _, r := range base {
		byKey[r.Key()] = r
	}
	for _, r := range incoming {
		byKey[r.Key()] = r
	}
	out := make([]models.PriceRow, 0, len(byKey))
	for _, r := range byKey {
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key() < out[j].Key() })
	return out
}

// SyncDown downloads any remote partition within the retention window that
// isn't present locally yet, so a fresh checkout can rebuild the 90-day
// window without re-fetching every provider from scratch.
func (e *Engine) SyncDown(ctx context.Context, client *storage.Client, now time.Time) error {
	remote, err := client.List(ctx, priceArchivePrefix)
	if err != nil {
		return fmt.Errorf("list remote price partitions: %w", err)
	}
	cutoff := now.Add(-LocalRetention)
	for _, obj := range remote {
		date, ok := dateFromKey(obj.Key)
		if !ok {
			continue
		}
		d, err := time.Parse("2006-01-02", date)
		if err != nil || d.Before(cutoff) {
			continue
		}
		localPath := e.partitionPath(date)
		if _, err := os.Stat(localPath); err == nil {
			continue
		}
		data, err := client.Get(ctx, obj.Key)
		if err != nil {
			e.report.Add("priceengine", &errs.ObjectStoreUploadError{Key: obj.Key, Err: err})
			continue
		}
		if err := os.MkdirAll(filepath.Dir(localPath), 0o755); err != nil {
			return err
		}
		if err := os.WriteFile(localPath, data, 0o644); err != nil {
			return err
		}
	}
	return nil
}

// SyncUp uploads every local partition within the retention window to the
// object store, bounded and retried the same way storage.SyncUploads
// handles source-cache and price-archive uploads elsewhere.
func (e *Engine) SyncUp(ctx context.Context, client *storage.Client, now time.Time) error {
	dates, err := e.localDates()
	if err != nil {
		return err
	}
	cutoff := now.Add(-LocalRetention)
	var uploads []storage.Upload
	for _, d := range dates {
		if d.Before(cutoff) {
			continue
		}
		data, err := os.ReadFile(e.partitionPath(d.Format("2006-01-02")))
		if err != nil {
			continue
		}
		uploads = append(uploads, storage.Upload{
			Key:  priceArchivePrefix + "date=" + d.Format("2006-01-02") + "/data.parquet",
			Data: data,
		})
	}
	return storage.SyncUploads(ctx, client, uploads, e.log, e.report)
}

// Prune deletes local partitions older than LocalRetention.
func (e *Engine) Prune(now time.Time) (int, error) {
	dates, err := e.localDates()
	if err != nil {
		return 0, err
	}
	return storage.PruneLocalRetention(dates, LocalRetention, now, func(d time.Time) error {
		return os.RemoveAll(filepath.Join(e.pricesDir, "date="+d.Format("2006-01-02")))
	})
}

// Load90DayWindow reads every local partition within the retention window
// relative to now and returns their concatenated rows, the input to every
// output writer below.
func (e *Engine) Load90DayWindow(now time.Time) ([]models.PriceRow, error) {
	dates, err := e.localDates()
	if err != nil {
		return nil, err
	}
	cutoff := now.Add(-LocalRetention)
	var out []models.PriceRow
	for _, d := range dates {
		if d.Before(cutoff) {
			continue
		}
		rows, err := readPriceRows(e.partitionPath(d.Format("2006-01-02")))
		if err != nil {
			continue
		}
		out = append(out, rows...)
	}
	return out, nil
}

func (e *Engine) localDates() ([]time.Time, error) {
	entries, err := os.ReadDir(e.pricesDir)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var out []time.Time
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		date, ok := dateFromKey(entry.Name() + "/")
		if !ok {
			continue
		}
		d, err := time.Parse("2006-01-02", date)
		if err != nil {
			continue
		}
		out = append(out, d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Before(out[j]) })
	return out, nil
}

func dateFromKey(key string) (string, bool) {
	const marker = "date="
	idx := indexOf(key, marker)
	if idx < 0 {
		return "", false
	}
	rest := key[idx+len(marker):]
	if len(rest) < 10 {
		return "", false
	}
	return rest[:10], true
}

func indexOf(s, sub string) int {
	for i := 0; i+len(sub) <= len(s); i++ {
		if s[i:i+len(sub)] == sub {
			return i
		}
	}
	return -1
}

// readPriceRows/writePriceRows adapt the models.PriceRow slice to the
// frame.Row-based gob+zstd partition codec shared with the source cache and
// assembly's columnar writer.
func readPriceRows(path string) ([]models.PriceRow, error) {
	rows, err := frame.ReadPartition(path)
	if err != nil {
		return nil, err
	}
	out := make([]models.PriceRow, 0, len(rows))
	for _, r := range rows {
		out = append(out, priceRowFromFrame(r))
	}
	return out, nil
}

func writePriceRows(path string, prices []models.PriceRow) error {
	rows := make([]frame.Row, 0, len(prices))
	for _, p := range prices {
		rows = append(rows, priceRowToFrame(p))
	}
	return frame.WritePartition(path, rows)
}

func priceRowToFrame(p models.PriceRow) frame.Row {
	return frame.Row{
		"uuid": p.UUID, "date": p.Date, "source": p.Source, "provider": p.Provider,
		"priceType": p.PriceType, "finish": p.Finish, "price": p.Price, "currency": p.Currency,
	}
}

func priceRowFromFrame(r frame.Row) models.PriceRow {
	price, _ := r["price"].(float64)
	return models.PriceRow{
		UUID: toStr(r["uuid"]), Date: toStr(r["date"]), Source: toStr(r["source"]),
		Provider: toStr(r["provider"]), PriceType: toStr(r["priceType"]), Finish: toStr(r["finish"]),
		Price: price, Currency: toStr(r["currency"]),
	}
}

func toStr(v any) string {
	s, _ := v.(string)
	return s
}
