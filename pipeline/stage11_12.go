package pipeline

import (
	"sort"
	"strings"

	"github.com/mtgjson/mtgjson/internal/frame"
	"github.com/mtgjson/mtgjson/internal/mtgutil"
	"github.com/mtgjson/mtgjson/sourcecache"
)

// stage11Enrichment applies the manual watermark-override table, computes
// rebalanced-to-original linkage via the "A-" prefix convention, attaches
// Secret Lair subset tags, and inverts sealed-product contents into
// per-face sourceProducts back-references.
func (p *Pipeline) stage11Enrichment(f frame.Frame) frame.Frame {
	watermarkOverrides := indexFrame(p.lookup.WatermarkOverrides, func(r frame.Row) string {
		return rowString(r, "scryfallId")
	})
	secretLair := indexFrame(p.cache.Scan(sourcecache.SecretLairSubsets), func(r frame.Row) string {
		return rowString(r, "setCode")
	})

	rows := f.Map(func(r frame.Row) frame.Row {
		if wm, ok := watermarkOverrides[rowString(r, "scryfallId")]; ok {
			r["watermark"] = wm["watermark"]
		}
		if sl, ok := secretLair[rowString(r, "setCode")]; ok {
			r["secretLairSubset"] = sl["subsetName"]
		}
		return r
	}).Collect()

	assignRebalancedLinkage(rows)
	assignSourceProducts(rows, p.cache.Scan(sourcecache.SealedProductContents).Collect())

	return frame.FromRows(rows)
}

// assignRebalancedLinkage finds, for every card whose name starts with
// "A-" (an Arena rebalance), the un-prefixed card with the same set code,
// and links originalPrintings/rebalancedPrintings symmetrically. A parent
// set or any other set is not searched.
func assignRebalancedLinkage(rows []frame.Row) {
	bySetAndName := map[string]int{}
	for i, r := range rows {
		key := rowString(r, "setCode") + "\x1f" + rowString(r, "name")
		bySetAndName[key] = i
	}

	for i, r := range rows {
		name := rowString(r, "name")
		if !strings.HasPrefix(name, "A-") {
			continue
		}
		originalName := strings.TrimPrefix(name, "A-")
		setCode := rowString(r, "setCode")
		origIdx, ok := bySetAndName[setCode+"\x1f"+originalName]
		if !ok {
			continue
		}
		rows[i]["originalPrintings"] = []string{rowString(rows[origIdx], "uuid")}
		existing := rowStrings(rows[origIdx], "rebalancedPrintings")
		rebalancedUUID := rowString(r, "uuid")
		existing = append(existing, rebalancedUUID)
		sort.Strings(existing)
		rows[origIdx]["rebalancedPrintings"] = existing
	}
}

// assignSourceProducts inverts sealed-product contents (rows pairing a face
// uuid with a sealedUuid) into faceUUID -> sorted [sealedUUID,...], so each
// face carries the sealed products it's pulled from. Finishes are not
// separated: each face gets one list covering every finish.
func assignSourceProducts(rows []frame.Row, contents []frame.Row) {
	bySourceProducts := map[string][]string{}
	for _, c := range contents {
		faceUUID := rowString(c, "uuid")
		sealedUUID := rowString(c, "sealedUuid")
		if faceUUID == "" || sealedUUID == "" {
			continue
		}
		bySourceProducts[faceUUID] = append(bySourceProducts[faceUUID], sealedUUID)
	}
	for i, r := range rows {
		if sp, ok := bySourceProducts[rowString(r, "uuid")]; ok {
			sort.Strings(sp)
			rows[i]["sourceProducts"] = sp
		}
	}
}

// stage12SignaturesAndCleanup joins the signatures lookup (marking a face
// signed, which feeds the finish-ordering rule) and drops raw upstream
// columns that have already been folded into their output struct.
func (p *Pipeline) stage12SignaturesAndCleanup(f frame.Frame) frame.Frame {
	signed := indexFrame(p.lookup.Signatures, func(r frame.Row) string {
		return rowString(r, "scryfallId")
	})

	return f.Map(func(r frame.Row) frame.Row {
		if _, ok := signed[rowString(r, "scryfallId")]; ok {
			finishes := append(rowStrings(r, "finishes"), "signed")
			r["finishes"] = dedupSortFinishes(finishes)
		}
		for _, raw := range rawColumnsToDrop {
			delete(r, raw)
		}
		return r
	})
}

var rawColumnsToDrop = []string{
	"faces", "legalities_raw", "availability_raw", "cachedUuid",
}

func dedupSortFinishes(finishes []string) []string {
	seen := map[string]bool{}
	out := make([]string, 0, len(finishes))
	for _, f := range finishes {
		if !seen[f] {
			seen[f] = true
			out = append(out, f)
		}
	}
	mtgutil.SortFinishes(out)
	return out
}
