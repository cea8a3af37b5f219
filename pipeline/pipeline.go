// Package pipeline implements the card compilation pipeline: a strictly
// sequential sequence of lazy transforms over the source cache and lookup
// consolidator, checkpointed between stage groups to keep the underlying
// plan bounded, producing per-set partitioned card and token faces.
package pipeline

import (
	"context"

	"go.uber.org/zap"

	"github.com/mtgjson/mtgjson/internal/errs"
	"github.com/mtgjson/mtgjson/lookups"
	"github.com/mtgjson/mtgjson/models"
	"github.com/mtgjson/mtgjson/sourcecache"
)

// Options selects what the pipeline compiles: an explicit set-code list (nil
// means all sets) and an optional face-ID allow-list.
type Options struct {
	SetCodes    []string
	FaceIDAllow map[string]bool
}

// ReferralSalts carries the per-provider salts used to derive the
// purchase-URL hashes in stage 9, sourced from config.
type ReferralSalts struct {
	Cardmarket  string
	Tcgplayer   string
	CardKingdom string
}

// Pipeline wires the source cache and lookup consolidator into the stage
// sequence. Stage N only ever depends on stage N-1's checkpoint; nothing
// downstream mutates a cached frame.
type Pipeline struct {
	cache         *sourcecache.Cache
	lookup        *lookups.Consolidator
	log           *zap.Logger
	report        *errs.Builder
	referralSalts ReferralSalts
}

// New builds a Pipeline over an already-materialized source cache and a
// consolidator built from that same cache.
func New(cache *sourcecache.Cache, lookup *lookups.Consolidator, log *zap.Logger, report *errs.Builder, salts ReferralSalts) *Pipeline {
	return &Pipeline{cache: cache, lookup: lookup, log: log, report: report, referralSalts: salts}
}

// Result is the pipeline's output for one run: card faces and token faces,
// both already grouped by set code and sorted per the ordering guarantees
// in spec.md §5.
type Result struct {
	CardsBySet  map[string][]models.CardFace
	TokensBySet map[string][]models.CardFace
}

// Run executes all 13 stages and returns the compiled, partitioned result.
func (p *Pipeline) Run(ctx context.Context, opts Options) (*Result, error) {
	// Stage 1: load + filter.
	f := p.stage1Load(opts)

	// Stage 2: per-face transforms.
	f = p.stage2FaceTransforms(f)

	// Checkpoint 1.
	f = f.Checkpoint()

	// Stage 4: multi-row joins.
	f = p.stage4Joins(f)

	// Checkpoint 2.
	f = f.Checkpoint()

	// Stage 6: struct assembly + UUIDs.
	f = p.stage6AssembleAndAssignUUIDs(f)

	// Stage 7: derived fields.
	f = p.stage7Derived(f)

	// Checkpoint 3.
	f = f.Checkpoint()

	// Stage 9: relationship ops.
	f = p.stage9Relationships(f)

	// Checkpoint 4.
	f = f.Checkpoint()

	// Stage 11: final enrichment.
	f = p.stage11Enrichment(f)

	// Stage 12: signatures + cleanup.
	f = p.stage12SignaturesAndCleanup(f)

	// Stage 13: sink.
	return p.stage13Sink(f), nil
}
