package errs

import (
	"errors"
	"testing"

	"go.uber.org/zap"
)

func TestBuilderClassifiesErrors(t *testing.T) {
	b := NewBuilder(zap.NewNop())
	b.Add("stage2", &SourceFetchError{Source: "tcgcsv", Err: errors.New("timeout")})
	b.Add("stage6", &LookupMiss{Lookup: "oracle", Key: "missing-id"})
	b.Add("stage9", &RelationshipIncomplete{Relationship: "meld", UUID: "abc", Reason: "no partner found"})

	r := b.Report()
	if r.SourceFetchFailures != 1 {
		t.Errorf("SourceFetchFailures = %d, want 1", r.SourceFetchFailures)
	}
	if r.LookupMisses != 1 {
		t.Errorf("LookupMisses = %d, want 1", r.LookupMisses)
	}
	if r.IncompleteRelationships != 1 {
		t.Errorf("IncompleteRelationships = %d, want 1", r.IncompleteRelationships)
	}
	if r.Total() != 3 {
		t.Errorf("Total = %d, want 3", r.Total())
	}
}

func TestBuilderIgnoresNil(t *testing.T) {
	b := NewBuilder(zap.NewNop())
	b.Add("stage1", nil)
	if b.Report().Total() != 0 {
		t.Errorf("expected nil error to be ignored")
	}
}
