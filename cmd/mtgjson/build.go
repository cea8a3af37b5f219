package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/klauspost/compress/zstd"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/mtgjson/mtgjson/assembly"
	"github.com/mtgjson/mtgjson/config"
	"github.com/mtgjson/mtgjson/internal/errs"
	"github.com/mtgjson/mtgjson/lookups"
	"github.com/mtgjson/mtgjson/models"
	"github.com/mtgjson/mtgjson/pipeline"
	"github.com/mtgjson/mtgjson/priceengine"
	"github.com/mtgjson/mtgjson/referral"
	"github.com/mtgjson/mtgjson/sourcecache"
	"github.com/mtgjson/mtgjson/storage"
)

// runCardBuild wires A -> B -> C: loads (or reuses, in offline mode) the
// source cache, builds the lookup consolidator from it, runs the pipeline,
// and folds the result into assembled models.Set objects.
func runCardBuild(ctx context.Context, cfg *config.Config, log *zap.Logger, report *errs.Builder, opts buildOptions) (map[string]models.Set, error) {
	cache := sourcecache.New(cfg.OutputPath, log, buildSources(cfg, log))

	effectiveSets := effectiveSetCodes(cache, opts)

	if !cfg.OfflineMode && !opts.offline {
		cacheOpts := sourcecache.Options{SetCodes: effectiveSets, FaceIDAllow: allowSet(opts.faceIDAllow)}
		if err := cache.LoadAll(ctx, cacheOpts, report); err != nil {
			return nil, fmt.Errorf("loading source cache: %w", err)
		}
	}

	lookup := lookups.Build(cache)

	salts := pipeline.ReferralSalts{
		Cardmarket:  cfg.ReferralSaltCardmarket,
		Tcgplayer:   cfg.ReferralSaltTcgplayer,
		CardKingdom: cfg.ReferralSaltCardKingdom,
	}
	pl := pipeline.New(cache, lookup, log, report, salts)

	result, err := pl.Run(ctx, pipeline.Options{SetCodes: effectiveSets, FaceIDAllow: allowSet(opts.faceIDAllow)})
	if err != nil {
		return nil, fmt.Errorf("running pipeline: %w", err)
	}

	meta := buildSetMeta(cache)
	sets := assembly.BuildSets(result.CardsBySet, result.TokensBySet, meta)
	return sets, nil
}

// effectiveSetCodes resolves the set selector: an explicit list, "all
// sets the source cache's metadata table names" minus a skip-list, or
// (lacking both a list and -all-sets) nil, meaning "every set" to the
// pipeline's own stage 1 filter.
func effectiveSetCodes(cache *sourcecache.Cache, opts buildOptions) []string {
	if len(opts.setCodes) > 0 {
		return subtractSkip(opts.setCodes, opts.skipSets)
	}
	if !opts.allSets || len(opts.skipSets) == 0 {
		return nil
	}
	var all []string
	for _, r := range cache.Scan(sourcecache.SetMetadata).Collect() {
		if code := mrString(r, "code"); code != "" {
			all = append(all, code)
		}
	}
	return subtractSkip(all, opts.skipSets)
}

func subtractSkip(codes, skip []string) []string {
	if len(skip) == 0 {
		return codes
	}
	skipSet := allowSet(skip)
	out := make([]string, 0, len(codes))
	for _, c := range codes {
		if !skipSet[c] {
			out = append(out, c)
		}
	}
	return out
}

func allowSet(list []string) map[string]bool {
	if len(list) == 0 {
		return nil
	}
	out := make(map[string]bool, len(list))
	for _, v := range list {
		out[v] = true
	}
	return out
}

// runAssembly writes every requested output format (D) from the assembled
// sets, honoring the export-format subset, resume-build, pretty-print, and
// compress-outputs flags.
func runAssembly(sets map[string]models.Set, opts buildOptions, log *zap.Logger) error {
	if !opts.includeCompiledOutputs {
		log.Info("include-compiled-outputs is false, skipping assembly entirely")
		return nil
	}

	outDir := filepath.Join(opts.resolvedOutputDir(), "output")
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return err
	}
	meta := assembly.Meta{Date: today(), Version: buildVersion}

	if opts.formats["json"] {
		if err := writeCompiled(opts, filepath.Join(outDir, "AllPrintings.json"), func(w io.Writer) error {
			return assembly.WriteCombinedJSON(w, sets, meta)
		}); err != nil {
			return fmt.Errorf("combined json: %w", err)
		}
		if err := writeJSONPretty(opts, outDir, func() ([]byte, error) {
			var buf bytes.Buffer
			if err := assembly.WriteAtomicCardsJSON(&buf, sets, meta); err != nil {
				return nil, err
			}
			return buf.Bytes(), nil
		}, "AtomicCards.json"); err != nil {
			return fmt.Errorf("atomic cards json: %w", err)
		}
		if err := writeJSONPretty(opts, outDir, func() ([]byte, error) {
			var buf bytes.Buffer
			if err := assembly.WriteSetListJSON(&buf, sets, meta); err != nil {
				return nil, err
			}
			return buf.Bytes(), nil
		}, "SetList.json"); err != nil {
			return fmt.Errorf("set list json: %w", err)
		}

		perSetDir := filepath.Join(outDir, "sets")
		if !opts.resumeBuild || !dirHasFiles(perSetDir) {
			if err := os.MkdirAll(perSetDir, 0o755); err != nil {
				return err
			}
			if err := assembly.WritePerSetJSON(context.Background(), perSetDir, sets, meta, log); err != nil {
				return fmt.Errorf("per-set json: %w", err)
			}
		} else {
			log.Info("resume-build: per-set json already present, skipping")
		}
	}

	if opts.formats["csv"] {
		if err := writeCompiled(opts, filepath.Join(outDir, "AllPrintingsCSVFiles.csv"), func(w io.Writer) error {
			return assembly.WriteCSV(w, sets)
		}); err != nil {
			return fmt.Errorf("csv: %w", err)
		}
	}
	if opts.formats["sqlite"] {
		if err := assembly.WriteSQLite(filepath.Join(outDir, "AllPrintings.sqlite"), sets); err != nil {
			return fmt.Errorf("sqlite: %w", err)
		}
	}
	if opts.formats["sql"] || opts.formats["sqldump"] {
		if err := writeCompiled(opts, filepath.Join(outDir, "AllPrintings.sql"), func(w io.Writer) error {
			return assembly.WriteSQLDump(w, sets)
		}); err != nil {
			return fmt.Errorf("sql dump: %w", err)
		}
	}
	if opts.formats["parquet"] {
		if err := assembly.WriteColumnarNested(filepath.Join(outDir, "columnar", "nested"), sets); err != nil {
			return fmt.Errorf("columnar nested: %w", err)
		}
		if err := assembly.WriteColumnarNormalized(filepath.Join(outDir, "columnar", "normalized"), sets); err != nil {
			return fmt.Errorf("columnar normalized: %w", err)
		}
	}
	if opts.formats["psql"] {
		cfg, err := config.Load()
		if err == nil && cfg.HasPostgresTarget() {
			if err := assembly.WritePostgres(cfg.DSN(), sets); err != nil {
				return fmt.Errorf("postgres: %w", err)
			}
		} else {
			log.Warn("psql format requested but no Postgres target configured, skipping")
		}
	}

	return nil
}

func dirHasFiles(dir string) bool {
	entries, err := os.ReadDir(dir)
	return err == nil && len(entries) > 0
}

func today() string { return time.Now().UTC().Format("2006-01-02") }

// writeCompiled opens path (appending .zst when -compress-outputs is set)
// and runs write against it, zstd-compressing on the fly when requested.
// These are the streamed writers (combined JSON, CSV, SQL dump); they are
// never pretty-printed, since buffering them whole would defeat the
// bounded-memory reason they stream in the first place.
func writeCompiled(opts buildOptions, path string, write func(io.Writer) error) error {
	if opts.compressOutputs {
		path += ".zst"
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	var w io.Writer = f
	if opts.compressOutputs {
		zw, err := zstd.NewWriter(f)
		if err != nil {
			return err
		}
		defer zw.Close()
		w = zw
	}
	return write(w)
}

// writeJSONPretty is for the small, fully-buffered JSON outputs (atomic
// cards, set list, links): when -pretty is set it reformats with
// json.Indent before writing, and the filename is the same
// compress/pretty treatment as writeCompiled otherwise.
func writeJSONPretty(opts buildOptions, dirOrPath string, produce func() ([]byte, error), filename string) error {
	data, err := produce()
	if err != nil {
		return err
	}
	if opts.prettyPrint {
		var buf bytes.Buffer
		if err := json.Indent(&buf, data, "", "  "); err == nil {
			data = buf.Bytes()
		}
	}
	path := dirOrPath
	if filename != "" {
		path = filepath.Join(dirOrPath, filename)
	}
	if opts.compressOutputs {
		path += ".zst"
		f, err := os.Create(path)
		if err != nil {
			return err
		}
		defer f.Close()
		zw, err := zstd.NewWriter(f)
		if err != nil {
			return err
		}
		defer zw.Close()
		_, err = zw.Write(data)
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

// runReferralMap builds and writes the hash -> URL redirect map (F).
func runReferralMap(sets map[string]models.Set, opts buildOptions, log *zap.Logger) error {
	links := referral.BuildLinkMap(sets)
	outDir := filepath.Join(opts.resolvedOutputDir(), "output")
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return err
	}
	return writeJSONPretty(opts, outDir, func() ([]byte, error) {
		var buf bytes.Buffer
		if err := referral.WriteLinksJSON(&buf, links, referral.Meta{Date: today(), Version: buildVersion}); err != nil {
			return nil, err
		}
		return buf.Bytes(), nil
	}, "Links.json")
}

// runPriceBuild runs the price engine's fetch/merge/sync/prune/write
// sequence once, for -price-only invocations.
func runPriceBuild(ctx context.Context, cfg *config.Config, log *zap.Logger) error {
	cache := sourcecache.New(cfg.OutputPath, log, buildSources(cfg, log))
	lookup := lookups.Build(cache)
	bridges := priceengine.Bridges{
		TCGPlayerProductToUUID: lookup.TCGPlayerProductToUUID,
		TCGPlayerEtchedToUUID:  lookup.TCGPlayerEtchedToUUID,
		MTGOToUUID:             lookup.MTGOToUUID,
		ScryfallToUUID:         lookup.ScryfallToUUID,
	}

	report := errs.NewBuilder(log)
	pricesDir := filepath.Join(cfg.OutputPath, "prices")
	providers := priceProviders(cfg, log, pricesDir)
	engine := priceengine.New(providers, bridges, log, report, pricesDir)

	now := time.Now().UTC()

	if cfg.HasObjectStore() {
		client, err := storage.NewClient(ctx, cfg)
		if err != nil {
			return fmt.Errorf("object store client: %w", err)
		}
		if err := engine.SyncDown(ctx, client, now); err != nil {
			log.Warn("price sync-down failed", zap.Error(err))
		}
	}

	todayRows := engine.FetchToday(ctx)
	if err := engine.WriteTodayPartition(today(), todayRows); err != nil {
		return fmt.Errorf("writing today's price partition: %w", err)
	}

	if cfg.HasObjectStore() {
		client, err := storage.NewClient(ctx, cfg)
		if err != nil {
			return fmt.Errorf("object store client: %w", err)
		}
		if err := engine.SyncUp(ctx, client, now); err != nil {
			log.Warn("price sync-up failed", zap.Error(err))
		}
	}
	if pruned, err := engine.Prune(now); err != nil {
		log.Warn("price prune failed", zap.Error(err))
	} else {
		log.Info("price prune complete", zap.Int("pruned", pruned))
	}

	window, err := engine.Load90DayWindow(now)
	if err != nil {
		return fmt.Errorf("loading 90-day price window: %w", err)
	}

	outDir := filepath.Join(cfg.OutputPath, "output")
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return err
	}
	priceMeta := priceengine.Meta{Date: today(), Version: buildVersion}
	if f, err := os.Create(filepath.Join(outDir, "AllPrices.json")); err == nil {
		defer f.Close()
		if err := priceengine.WritePricesJSON(f, window, priceMeta); err != nil {
			return fmt.Errorf("writing AllPrices.json: %w", err)
		}
	}
	if f, err := os.Create(filepath.Join(outDir, "AllPricesToday.json")); err == nil {
		defer f.Close()
		if err := priceengine.WritePricesJSON(f, todayRows, priceMeta); err != nil {
			return fmt.Errorf("writing AllPricesToday.json: %w", err)
		}
	}
	if err := priceengine.WriteSQLite(filepath.Join(outDir, "AllPrices.sqlite"), window); err != nil {
		log.Warn("price sqlite write failed", zap.Error(err))
	}

	log.Info("price build complete", zap.Int("todayRows", len(todayRows)), zap.Int("windowRows", len(window)), zap.Int("fetchFailures", report.Report().SourceFetchFailures))
	return nil
}

// runPriceCron starts the price engine on cfg.CronSchedule and blocks
// forever, the teacher's own cron.New()+AddFunc+Start idiom from its
// scheduled-fetch job.
func runPriceCron(ctx context.Context, cfg *config.Config, log *zap.Logger) {
	c := cron.New()
	_, err := c.AddFunc(cfg.CronSchedule, func() {
		log.Info("running scheduled price build")
		if err := runPriceBuild(ctx, cfg, log); err != nil {
			log.Error("scheduled price build failed", zap.Error(err))
		}
	})
	if err != nil {
		log.Fatal("invalid cron schedule", zap.String("schedule", cfg.CronSchedule), zap.Error(err))
	}
	c.Start()
	log.Info("price engine cron started", zap.String("schedule", cfg.CronSchedule))
	select {}
}

func priceProviders(cfg *config.Config, log *zap.Logger, pricesDir string) []priceengine.Provider {
	return []priceengine.Provider{
		priceengine.NewP1Provider(cfg, log, pricesDir),
		priceengine.NewP2Provider(cfg, log),
		priceengine.NewP3Provider(cfg, log),
		priceengine.NewP4Provider(cfg, log),
		priceengine.NewP5Provider(cfg, log, filepath.Join(pricesDir, ".p5_cache.partition")),
	}
}
