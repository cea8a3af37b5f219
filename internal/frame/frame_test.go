package frame

import "testing"

func TestMapFilterLazy(t *testing.T) {
	touched := 0
	rows := []Row{{"n": 1}, {"n": 2}, {"n": 3}}
	f := FromRows(rows).Map(func(r Row) Row {
		touched++
		r["n"] = r["n"].(int) * 2
		return r
	}).Filter(func(r Row) bool {
		return r["n"].(int) > 2
	})

	if touched != 0 {
		t.Fatalf("transform ran before Collect: touched=%d", touched)
	}

	out := f.Collect()
	if touched != 3 {
		t.Fatalf("expected Map to run once per row (3), got %d", touched)
	}
	if len(out) != 2 {
		t.Fatalf("expected 2 rows > 2, got %d", len(out))
	}
}

func TestCheckpointFreezesChain(t *testing.T) {
	calls := 0
	f := FromRows([]Row{{"n": 1}, {"n": 2}}).Map(func(r Row) Row {
		calls++
		return r
	}).Checkpoint()

	f.Collect()
	f.Collect()

	if calls != 2 {
		t.Fatalf("expected Map to run exactly once per row across both collects, got %d", calls)
	}
}

func TestDedupKeepFirst(t *testing.T) {
	rows := []Row{
		{"id": "a", "seq": 2},
		{"id": "a", "seq": 1},
		{"id": "b", "seq": 1},
	}
	out := FromRows(rows).DedupKeepFirst(func(x, y Row) bool {
		return x["seq"].(int) < y["seq"].(int)
	}, func(r Row) string {
		return r["id"].(string)
	}).Collect()

	if len(out) != 2 {
		t.Fatalf("expected 2 rows after dedup, got %d", len(out))
	}
	for _, r := range out {
		if r["id"] == "a" && r["seq"] != 1 {
			t.Errorf("expected to keep seq=1 for id=a, got %v", r["seq"])
		}
	}
}

func TestFlatMap(t *testing.T) {
	rows := []Row{{"faces": 2}, {"faces": 1}}
	out := FromRows(rows).FlatMap(func(r Row) []Row {
		n := r["faces"].(int)
		var res []Row
		for i := 0; i < n; i++ {
			res = append(res, Row{"face": i})
		}
		return res
	}).Collect()

	if len(out) != 3 {
		t.Fatalf("expected 3 exploded rows, got %d", len(out))
	}
}
