// Command pricearchive synchronizes the local price lake's daily partitions
// with the shared object-store archive and prunes the local copy down to a
// rolling retention window. Remote retention is indefinite; this tool never
// deletes anything remote.
package main

import (
	"context"
	"log"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/mtgjson/mtgjson/config"
	"github.com/mtgjson/mtgjson/internal/errs"
	"github.com/mtgjson/mtgjson/storage"
)

const (
	priceArchivePrefix = "price_archive/"
	localRetention      = 90 * 24 * time.Hour
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("loading config: %v", err)
	}

	zapCfg := zap.NewProductionConfig()
	if cfg.Debug {
		zapCfg = zap.NewDevelopmentConfig()
	}
	logger, err := zapCfg.Build()
	if err != nil {
		log.Fatalf("building logger: %v", err)
	}
	defer logger.Sync()

	if !cfg.HasObjectStore() {
		logger.Fatal("no object store configured; set OBJECT_STORE_KEY and OBJECT_STORE_BUCKET")
	}

	ctx := context.Background()
	client, err := storage.NewClient(ctx, cfg)
	if err != nil {
		logger.Fatal("creating object store client", zap.Error(err))
	}

	pricesRoot := filepath.Join(cfg.OutputPath, "prices")
	partitions, err := localDatePartitions(pricesRoot)
	if err != nil {
		logger.Fatal("listing local price partitions", zap.Error(err))
	}

	report := errs.NewBuilder(logger)
	uploads := make([]storage.Upload, 0, len(partitions))
	for _, p := range partitions {
		data, err := os.ReadFile(filepath.Join(p.path, "data.parquet"))
		if err != nil {
			logger.Warn("skipping unreadable partition", zap.String("path", p.path), zap.Error(err))
			continue
		}
		key := priceArchivePrefix + "date=" + p.date.Format("2006-01-02") + "/data.parquet"
		uploads = append(uploads, storage.Upload{Key: key, Data: data})
	}

	if err := storage.SyncUploads(ctx, client, uploads, logger, report); err != nil {
		logger.Fatal("sync aborted", zap.Error(err))
	}
	logger.Info("price archive sync complete", zap.Int("uploaded", len(uploads)), zap.Int("failures", report.Report().ObjectStoreUploadFailures))

	now := time.Now().UTC()
	dates := make([]time.Time, len(partitions))
	for i, p := range partitions {
		dates[i] = p.date
	}
	pruned, err := storage.PruneLocalRetention(dates, localRetention, now, func(d time.Time) error {
		path := filepath.Join(pricesRoot, "date="+d.Format("2006-01-02"))
		return os.RemoveAll(path)
	})
	if err != nil {
		logger.Error("local retention prune failed", zap.Error(err))
	}
	logger.Info("local retention prune complete", zap.Int("pruned", pruned))
}

type datePartition struct {
	date time.Time
	path string
}

// localDatePartitions walks cache/prices/date=YYYY-MM-DD directories and
// parses each into a datePartition, skipping anything that doesn't match
// the expected naming.
func localDatePartitions(root string) ([]datePartition, error) {
	entries, err := os.ReadDir(root)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var out []datePartition
	for _, e := range entries {
		if !e.IsDir() || !strings.HasPrefix(e.Name(), "date=") {
			continue
		}
		dateStr := strings.TrimPrefix(e.Name(), "date=")
		d, err := time.Parse("2006-01-02", dateStr)
		if err != nil {
			continue
		}
		out = append(out, datePartition{date: d, path: filepath.Join(root, e.Name())})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].date.Before(out[j].date) })
	return out, nil
}
