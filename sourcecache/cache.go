// Package sourcecache holds one lazy frame per external source the build
// reads from: the primary card bulk, rulings, set metadata, marketplace
// identifiers, and every other curated table the pipeline and lookup
// consolidator join against. Each source is fetched once, written to a
// local zstd-compressed columnar file, then reopened as a lazy scan so
// every later query streams instead of holding the raw catalog resident.
package sourcecache

import (
	"context"
	"path/filepath"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"

	"github.com/mtgjson/mtgjson/internal/errs"
	"github.com/mtgjson/mtgjson/internal/frame"
)

// fetchWorkers bounds concurrent source fetches (spec §5: ~10 workers).
const fetchWorkers = 10

// Source is an opaque fetch function for one external table. Its shape, not
// its transport, is the contract: it returns rows in whatever native schema
// that source exposes, and the lookup consolidator or pipeline is
// responsible for interpreting those columns.
type Source func(ctx context.Context) ([]frame.Row, error)

// Name enumerates the source-cache accessors the pipeline and lookup
// consolidator can request.
type Name string

const (
	PrimaryCardBulk        Name = "primary_card_bulk"
	Rulings                Name = "rulings"
	SetMetadata            Name = "set_metadata"
	RetailInventory        Name = "retail_inventory"
	MarketplaceIdentifiers Name = "marketplace_identifiers"
	CommanderSaltiness     Name = "commander_saltiness"
	ComboSynergy           Name = "combo_synergy"
	MeldTriplets           Name = "meld_triplets"
	SecretLairSubsets      Name = "secret_lair_subsets"
	MarketplaceSKUs        Name = "marketplace_skus"
	OfficialDBPageIDs      Name = "official_db_page_ids"
	ImageOrientation       Name = "image_orientation"
	MultiverseBridge       Name = "multiverse_bridge"
	SealedProducts         Name = "sealed_products"
	SealedProductContents  Name = "sealed_product_contents"
	DeckLists              Name = "deck_lists"
	BoosterConfigs         Name = "booster_configs"
	TokenProductMappings   Name = "token_product_mappings"
	TCGCSVGroupSetMap      Name = "tcgcsv_group_set_map"
)

// Options filters what a LoadAll call materializes, used when building only
// the cards referenced by specific decks or sets.
type Options struct {
	SetCodes     []string // empty means all sets
	FaceIDAllow  map[string]bool // empty means no allow-list filtering
}

// Cache holds every registered Source, each behind its own once-fetched,
// zstd-backed lazy scan.
type Cache struct {
	dir     string
	log     *zap.Logger
	sources map[Name]Source

	mu     sync.Mutex
	loaded map[Name]bool
}

// New returns a Cache that materializes partitions under dir/sources/ and
// registers the given sources.
func New(dir string, log *zap.Logger, sources map[Name]Source) *Cache {
	return &Cache{
		dir:     dir,
		log:     log,
		sources: sources,
		loaded:  make(map[Name]bool),
	}
}

func (c *Cache) partitionPath(name Name) string {
	return filepath.Join(c.dir, "sources", string(name)+".parquet")
}

// LoadAll fetches every registered source, bounded at fetchWorkers
// concurrent fetches, and writes each to its local columnar file,
// overwriting any partition an earlier run left there. A source whose fetch
// fails is recorded in report and keeps whatever partition it already had.
func (c *Cache) LoadAll(ctx context.Context, opts Options, report *errs.Builder) error {
	sem := semaphore.NewWeighted(fetchWorkers)
	g, ctx := errgroup.WithContext(ctx)

	for name, fetch := range c.sources {
		name, fetch := name, fetch
		if err := sem.Acquire(ctx, 1); err != nil {
			return err
		}
		g.Go(func() error {
			defer sem.Release(1)
			rows, err := fetch(ctx)
			if err != nil {
				report.Add("sourcecache", &errs.SourceFetchError{Source: string(name), Err: err})
				return nil
			}
			rows = applyOptions(rows, opts)
			if err := frame.WritePartition(c.partitionPath(name), rows); err != nil {
				report.Add("sourcecache", &errs.SourceFetchError{Source: string(name), Err: err})
				return nil
			}
			c.mu.Lock()
			c.loaded[name] = true
			c.mu.Unlock()
			c.log.Info("source cache materialized", zap.String("source", string(name)), zap.Int("rows", len(rows)))
			return nil
		})
	}
	return g.Wait()
}

func applyOptions(rows []frame.Row, opts Options) []frame.Row {
	if len(opts.SetCodes) == 0 && len(opts.FaceIDAllow) == 0 {
		return rows
	}
	setAllow := make(map[string]bool, len(opts.SetCodes))
	for _, s := range opts.SetCodes {
		setAllow[s] = true
	}
	out := make([]frame.Row, 0, len(rows))
	for _, r := range rows {
		if len(setAllow) > 0 {
			if sc, ok := r["setCode"].(string); ok && !setAllow[sc] {
				continue
			}
		}
		if len(opts.FaceIDAllow) > 0 {
			if id, ok := r["id"].(string); ok && !opts.FaceIDAllow[id] {
				continue
			}
		}
		out = append(out, r)
	}
	return out
}

// Scan opens a lazy Frame over the given source's materialized partition.
// The caller composes further Map/Filter/FlatMap stages on top; nothing is
// read from disk until Collect or Checkpoint is called downstream.
func (c *Cache) Scan(name Name) frame.Frame {
	path := c.partitionPath(name)
	return frame.FromSeq(func(yield func(frame.Row) bool) {
		rows, err := frame.ReadPartition(path)
		if err != nil {
			c.log.Warn("source cache scan failed, treating as empty", zap.String("source", string(name)), zap.Error(err))
			return
		}
		for _, r := range rows {
			if !yield(r) {
				return
			}
		}
	})
}

// IsLoaded reports whether name has been materialized this run.
func (c *Cache) IsLoaded(name Name) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.loaded[name]
}
