package assembly

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"

	"github.com/mtgjson/mtgjson/internal/mtgutil"
	"github.com/mtgjson/mtgjson/models"
)

// perSetWriteWorkers bounds concurrent per-set file writes (spec §5: ~30
// workers, since each set file is independent of every other).
const perSetWriteWorkers = 30

// WriteCombinedJSON streams the full AllPrintings-equivalent document:
// `{"meta":…,"data":{"CODE":<set>,…}}`, writing one set at a time rather
// than marshaling the whole map, since the combined file is expected to
// reach roughly a gigabyte. Sets are iterated in lexicographic code order
// per spec.md §5's ordering guarantee.
func WriteCombinedJSON(w io.Writer, sets map[string]models.Set, meta Meta) error {
	if _, err := io.WriteString(w, `{"meta":`); err != nil {
		return err
	}
	metaBytes, err := json.Marshal(meta)
	if err != nil {
		return err
	}
	if _, err := w.Write(metaBytes); err != nil {
		return err
	}
	if _, err := io.WriteString(w, `,"data":{`); err != nil {
		return err
	}

	enc := json.NewEncoder(&noNewlineWriter{w})
	for i, code := range sortedSetCodes(sets) {
		if i > 0 {
			if _, err := io.WriteString(w, ","); err != nil {
				return err
			}
		}
		keyBytes, err := json.Marshal(code)
		if err != nil {
			return err
		}
		if _, err := w.Write(keyBytes); err != nil {
			return err
		}
		if _, err := io.WriteString(w, ":"); err != nil {
			return err
		}
		if err := enc.Encode(sets[code]); err != nil {
			return fmt.Errorf("encode set %s: %w", code, err)
		}
	}
	_, err = io.WriteString(w, "}}")
	return err
}

// noNewlineWriter strips the trailing newline json.Encoder.Encode always
// appends, so consecutive encoded values in the combined stream don't pick
// up stray whitespace between them.
type noNewlineWriter struct{ w io.Writer }

func (n *noNewlineWriter) Write(p []byte) (int, error) {
	if len(p) > 0 && p[len(p)-1] == '\n' {
		p = p[:len(p)-1]
	}
	if len(p) == 0 {
		return 0, nil
	}
	return n.w.Write(p)
}

// WritePerSetJSON writes one `{"meta":…,"data":<set>}` file per set code
// under dir, named by its Windows-safe set code, using a bounded worker
// pool since each set's file is independent of every other (spec.md §5:
// ~30 workers).
func WritePerSetJSON(ctx context.Context, dir string, sets map[string]models.Set, meta Meta, log *zap.Logger) error {
	sem := semaphore.NewWeighted(perSetWriteWorkers)
	g, ctx := errgroup.WithContext(ctx)

	for code, set := range sets {
		code, set := code, set
		if err := sem.Acquire(ctx, 1); err != nil {
			return err
		}
		g.Go(func() error {
			defer sem.Release(1)
			path := filepath.Join(dir, mtgutil.WindowsSafeSetCode(code)+".json")
			if err := writeJSONFile(path, struct {
				Meta Meta       `json:"meta"`
				Data models.Set `json:"data"`
			}{meta, set}); err != nil {
				log.Error("per-set json write failed", zap.String("set", code), zap.Error(err))
				return err
			}
			return nil
		})
	}
	return g.Wait()
}

// WriteAtomicCardsJSON groups every face across every set by card name and
// writes `{"meta":…,"data":{"name":[face,…],…}}`, with names iterated
// alphabetically per spec.md §5.
func WriteAtomicCardsJSON(w io.Writer, sets map[string]models.Set, meta Meta) error {
	byName := map[string][]models.CardFace{}
	for _, set := range sets {
		for _, c := range set.Cards {
			byName[c.Name] = append(byName[c.Name], c)
		}
	}
	names := make([]string, 0, len(byName))
	for name := range byName {
		names = append(names, name)
	}
	sort.Strings(names)

	return writeOrderedAtomic(w, meta, names, byName)
}

// writeOrderedAtomic streams the atomic-cards payload with the name keys in
// the exact alphabetical order computed by the caller; encoding/json would
// otherwise re-sort map keys itself (which happens to match here, but the
// explicit stream keeps the combined-JSON and atomic-cards writers
// symmetric and avoids relying on that incidental behavior).
func writeOrderedAtomic(w io.Writer, meta Meta, names []string, byName map[string][]models.CardFace) error {
	if _, err := io.WriteString(w, `{"meta":`); err != nil {
		return err
	}
	metaBytes, err := json.Marshal(meta)
	if err != nil {
		return err
	}
	if _, err := w.Write(metaBytes); err != nil {
		return err
	}
	if _, err := io.WriteString(w, `,"data":{`); err != nil {
		return err
	}
	for i, name := range names {
		if i > 0 {
			if _, err := io.WriteString(w, ","); err != nil {
				return err
			}
		}
		keyBytes, _ := json.Marshal(name)
		if _, err := w.Write(keyBytes); err != nil {
			return err
		}
		if _, err := io.WriteString(w, ":"); err != nil {
			return err
		}
		faceBytes, err := json.Marshal(byName[name])
		if err != nil {
			return err
		}
		if _, err := w.Write(faceBytes); err != nil {
			return err
		}
	}
	_, err = io.WriteString(w, "}}")
	return err
}

// WriteSetListJSON writes set metadata only, no cards, sorted by code.
func WriteSetListJSON(w io.Writer, sets map[string]models.Set, meta Meta) error {
	codes := sortedSetCodes(sets)
	entries := make([]models.SetListEntry, 0, len(codes))
	for _, code := range codes {
		s := sets[code]
		entries = append(entries, models.SetListEntry{
			Code:         s.Code,
			Name:         s.Name,
			Type:         s.Type,
			ReleaseDate:  s.ReleaseDate,
			BaseSetSize:  s.BaseSetSize,
			TotalSetSize: s.TotalSetSize,
		})
	}
	return json.NewEncoder(w).Encode(struct {
		Meta Meta                    `json:"meta"`
		Data []models.SetListEntry   `json:"data"`
	}{meta, entries})
}

func writeJSONFile(path string, v any) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	tmp := path + ".tmp"
	f, err := os.Create(tmp)
	if err != nil {
		return err
	}
	if err := json.NewEncoder(f).Encode(v); err != nil {
		f.Close()
		os.Remove(tmp)
		return err
	}
	if err := f.Close(); err != nil {
		os.Remove(tmp)
		return err
	}
	return os.Rename(tmp, path)
}
