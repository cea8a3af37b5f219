package errs

import (
	"sync"

	"go.uber.org/zap"
)

// BuildReport accumulates every non-fatal error observed during a run,
// grouped by kind, so the caller can decide at the end whether the output is
// trustworthy enough to publish.
type BuildReport struct {
	SourceFetchFailures       int
	SchemaMismatches          int
	LookupMisses              int
	IncompleteRelationships   int
	WriteConflicts            int
	ObjectStoreUploadFailures int

	mu      sync.Mutex
	samples []error
}

// Builder accumulates errors into a BuildReport and logs each one as it
// arrives. It is safe for concurrent use from multiple worker goroutines.
type Builder struct {
	log    *zap.Logger
	report *BuildReport
}

// NewBuilder returns a Builder that logs through log and accumulates into a
// fresh BuildReport.
func NewBuilder(log *zap.Logger) *Builder {
	return &Builder{log: log, report: &BuildReport{}}
}

// Report returns the accumulated report. Safe to call while more errors are
// still being added; the returned pointer is live.
func (b *Builder) Report() *BuildReport { return b.report }

// Add records a non-fatal error, classifying it by concrete type and
// logging it with its stage context.
func (b *Builder) Add(stage string, err error) {
	if err == nil {
		return
	}
	b.report.mu.Lock()
	defer b.report.mu.Unlock()

	switch e := err.(type) {
	case *SourceFetchError:
		b.report.SourceFetchFailures++
		b.log.Warn("source fetch failed", zap.String("stage", stage), zap.String("source", e.Source), zap.Error(e.Err))
	case *SchemaMismatchError:
		b.report.SchemaMismatches++
		b.log.Warn("schema mismatch", zap.String("stage", stage), zap.String("source", e.Source), zap.String("field", e.Field), zap.Error(e.Err))
	case *LookupMiss:
		b.report.LookupMisses++
		b.log.Debug("lookup miss", zap.String("stage", stage), zap.String("lookup", e.Lookup), zap.String("key", e.Key))
	case *RelationshipIncomplete:
		b.report.IncompleteRelationships++
		b.log.Warn("incomplete relationship", zap.String("stage", stage), zap.String("relationship", e.Relationship), zap.String("uuid", e.UUID), zap.String("reason", e.Reason))
	case *WriteConflict:
		b.report.WriteConflicts++
		b.log.Error("write conflict", zap.String("stage", stage), zap.String("path", e.Path), zap.Error(e.Err))
	case *ObjectStoreUploadError:
		b.report.ObjectStoreUploadFailures++
		b.log.Error("object store upload failed", zap.String("stage", stage), zap.String("key", e.Key), zap.Error(e.Err))
	default:
		b.log.Error("unclassified error", zap.String("stage", stage), zap.Error(err))
	}
	b.report.samples = append(b.report.samples, err)
}

// Total returns the number of non-fatal errors accumulated so far.
func (r *BuildReport) Total() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.samples)
}
