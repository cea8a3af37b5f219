// Command mtgjson is the orchestration entry point: it wires the source
// cache (A) into the lookup consolidator (B), the consolidator into the
// card compilation pipeline (C), and the pipeline's output into the
// assembly/output layer (D). The price engine (E) and referral-map builder
// (F) run as separate, explicitly-flagged phases: -price-only runs the price
// engine without a card build, while the referral map is built after
// assembly from the sets the card build just produced.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/mtgjson/mtgjson/config"
	"github.com/mtgjson/mtgjson/internal/errs"
)

// buildVersion is stamped into every output file's meta.version. A real
// release process would inject this via -ldflags; left as a constant here
// since this tool has no release pipeline of its own.
const buildVersion = "5.0.0"

func main() {
	opts := parseFlags()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "loading config: %v\n", err)
		os.Exit(1)
	}
	if opts.outputPath != "" {
		cfg.OutputPath = opts.outputPath
	}
	if opts.offline {
		cfg.OfflineMode = true
	}

	zapCfg := zap.NewProductionConfig()
	if cfg.Debug {
		zapCfg = zap.NewDevelopmentConfig()
	}
	log, err := zapCfg.Build()
	if err != nil {
		fmt.Fprintf(os.Stderr, "building logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	ctx := context.Background()

	if opts.priceOnly {
		if err := runPriceBuild(ctx, cfg, log); err != nil {
			log.Fatal("price build failed", zap.Error(err))
		}
		return
	}

	report := errs.NewBuilder(log)
	sets, err := runCardBuild(ctx, cfg, log, report, opts)
	if err != nil {
		cleanupPartialOutputs(opts.resolvedOutputDir())
		log.Fatal("card build failed", zap.Error(err))
	}

	if err := runAssembly(sets, opts, log); err != nil {
		cleanupPartialOutputs(opts.resolvedOutputDir())
		log.Fatal("assembly failed", zap.Error(err))
	}

	if opts.referralMap {
		if err := runReferralMap(sets, opts, log); err != nil {
			log.Fatal("referral map build failed", zap.Error(err))
		}
	}

	if !opts.priceOnly && cfg.CronSchedule != "" && !opts.skipPriceCron {
		runPriceCron(ctx, cfg, log)
		return
	}

	log.Info("build complete", zap.Int("setsBuilt", len(sets)), zap.Int("buildErrors", report.Report().Total()))
}

// buildOptions is the CLI surface spec.md §6 names: a set selector,
// output-mode flags, an export-format subset, and the price-only/
// referral-map/offline switches.
type buildOptions struct {
	setCodes       []string
	allSets        bool
	skipSets       []string
	faceIDAllow    []string

	includeCompiledOutputs bool
	resumeBuild            bool
	formats                map[string]bool
	prettyPrint            bool
	compressOutputs        bool

	priceOnly     bool
	referralMap   bool
	offline       bool
	skipPriceCron bool
	outputPath    string
}

func (o buildOptions) resolvedOutputDir() string {
	if o.outputPath != "" {
		return o.outputPath
	}
	return "./cache"
}

func parseFlags() buildOptions {
	var (
		setList       = flag.String("sets", "", "comma-separated set codes to build (empty builds every set)")
		allSets       = flag.Bool("all-sets", false, "build every set the source cache knows about")
		skipList      = flag.String("skip-sets", "", "comma-separated set codes to exclude even if selected")
		faceIDList    = flag.String("face-ids", "", "comma-separated face-id allow-list, for deck-scoped builds")
		includeCompiled = flag.Bool("include-compiled-outputs", true, "run the assembly/output stage after compiling")
		resumeBuild   = flag.Bool("resume-build", false, "skip per-set files that already exist on disk")
		formatList    = flag.String("formats", "json,sqlite,csv,parquet,psql", "comma-separated export format subset")
		pretty        = flag.Bool("pretty", false, "pretty-print the JSON outputs that aren't streamed (atomic/set-list/links)")
		compress      = flag.Bool("compress-outputs", false, "zstd-compress the combined JSON, CSV, SQL dump, atomic, set-list and links outputs")
		priceOnly     = flag.Bool("price-only", false, "run only the price engine build, skip the card pipeline entirely")
		referralMap   = flag.Bool("referral-map", false, "build the referral hash -> URL redirect map after assembly")
		offline       = flag.Bool("offline", false, "reassemble from the most recent cached partitions, skipping the pipeline's own source refresh")
		skipPriceCron = flag.Bool("skip-price-cron", false, "exit after the card build instead of starting the price-engine cron loop")
		outputPath    = flag.String("output", "", "override MTGJSON_OUTPUT_PATH")
	)
	flag.Parse()

	formats := map[string]bool{}
	for _, f := range strings.Split(*formatList, ",") {
		if f = strings.TrimSpace(f); f != "" {
			formats[f] = true
		}
	}

	return buildOptions{
		setCodes:               splitNonEmpty(*setList),
		allSets:                *allSets,
		skipSets:               splitNonEmpty(*skipList),
		faceIDAllow:            splitNonEmpty(*faceIDList),
		includeCompiledOutputs: *includeCompiled,
		resumeBuild:            *resumeBuild,
		formats:                formats,
		prettyPrint:            *pretty,
		compressOutputs:        *compress,
		priceOnly:              *priceOnly,
		referralMap:            *referralMap,
		offline:                *offline,
		skipPriceCron:          *skipPriceCron,
		outputPath:             *outputPath,
	}
}

func splitNonEmpty(s string) []string {
	if s == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// cleanupPartialOutputs deletes the output directory on a fatal error, per
// spec.md §5's "partial outputs are deleted" cancellation rule.
func cleanupPartialOutputs(outputDir string) {
	os.RemoveAll(filepath.Join(outputDir, "output"))
}
