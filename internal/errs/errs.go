// Package errs implements the build's typed error taxonomy. The types that
// carry an underlying cause expose it through an Unwrap method so callers
// can still errors.Is/As through to it; each type records the source, key,
// path or card the failure concerns.
package errs

import "fmt"

// SourceFetchError wraps a failure to fetch a source-cache input (network,
// decode, or parse failure on an upstream card/price/metadata feed).
type SourceFetchError struct {
	Source string
	Err    error
}

func (e *SourceFetchError) Error() string {
	return fmt.Sprintf("source fetch %s: %v", e.Source, e.Err)
}

func (e *SourceFetchError) Unwrap() error { return e.Err }

// SchemaMismatchError wraps a row or field that doesn't match the shape the
// pipeline expected from a source.
type SchemaMismatchError struct {
	Source string
	Field  string
	Err    error
}

func (e *SchemaMismatchError) Error() string {
	return fmt.Sprintf("schema mismatch %s.%s: %v", e.Source, e.Field, e.Err)
}

func (e *SchemaMismatchError) Unwrap() error { return e.Err }

// LookupMiss records a key that a lookup consolidator frame could not
// resolve. Non-fatal: the caller falls back to a declared default and
// continues.
type LookupMiss struct {
	Lookup string
	Key    string
}

func (e *LookupMiss) Error() string {
	return fmt.Sprintf("lookup miss in %s for key %q", e.Lookup, e.Key)
}

// RelationshipIncomplete records a derived relationship (otherFaceIds,
// variations, rebalanced linkage, meld sides, ...) that could not be fully
// resolved for a card.
type RelationshipIncomplete struct {
	Relationship string
	UUID         string
	Reason       string
}

func (e *RelationshipIncomplete) Error() string {
	return fmt.Sprintf("incomplete relationship %s for %s: %s", e.Relationship, e.UUID, e.Reason)
}

// WriteConflict records two writers racing to produce the same output path
// or row with divergent content.
type WriteConflict struct {
	Path string
	Err  error
}

func (e *WriteConflict) Error() string {
	return fmt.Sprintf("write conflict at %s: %v", e.Path, e.Err)
}

func (e *WriteConflict) Unwrap() error { return e.Err }

// ObjectStoreUploadError wraps a failed upload or download against the
// configured object store, after retries have been exhausted.
type ObjectStoreUploadError struct {
	Key string
	Err error
}

func (e *ObjectStoreUploadError) Error() string {
	return fmt.Sprintf("object store upload %s: %v", e.Key, e.Err)
}

func (e *ObjectStoreUploadError) Unwrap() error { return e.Err }
