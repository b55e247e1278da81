package collector

import "testing"

type item struct {
	name  string
	dirty bool
}

func TestCollectAssignsDenseIndices(t *testing.T) {
	a, b, c := &item{name: "a"}, &item{name: "b"}, &item{name: "c"}

	col := New[*item]()
	col.Collect(a, b, nil, a, c, b)

	if col.Len() != 3 {
		t.Fatalf("expected 3 items; got %d", col.Len())
	}

	for expIndex, it := range []*item{a, b, c} {
		idx, ok := col.Index(it)
		if !ok {
			t.Fatalf("expected item %q to be collected", it.name)
		}
		if idx != expIndex {
			t.Fatalf("expected item %q to have index %d; got %d", it.name, expIndex, idx)
		}
	}

	if _, ok := col.Index(&item{name: "missing"}); ok {
		t.Fatal("expected lookup of an uncollected item to fail")
	}
}

func TestIterationIsRestartable(t *testing.T) {
	col := New[*item]()
	col.Collect(&item{name: "a"}, &item{name: "b"}, &item{name: "c"})

	for pass := 0; pass < 2; pass++ {
		expIndex := 0
		for idx, it := range col.All() {
			if idx != expIndex {
				t.Fatalf("[pass %d] expected index %d; got %d", pass, expIndex, idx)
			}
			if got, _ := col.Index(it); got != idx {
				t.Fatalf("[pass %d] expected iteration index to match Index(); got %d vs %d", pass, idx, got)
			}
			expIndex++
		}
		if expIndex != 3 {
			t.Fatalf("[pass %d] expected 3 items to be visited; got %d", pass, expIndex)
		}
	}

	// Early exit must not break subsequent passes
	for range col.All() {
		break
	}
	count := 0
	for range col.All() {
		count++
	}
	if count != 3 {
		t.Fatalf("expected 3 items after early exit; got %d", count)
	}
}

func TestBundleEquality(t *testing.T) {
	a, b := &item{name: "a"}, &item{name: "b"}

	col1 := New[*item]()
	col1.Collect(a, b)

	col2 := New[*item]()
	col2.Collect(b, a)

	if !col1.CreateBundle().Equal(col2.CreateBundle()) {
		t.Fatal("expected bundles with the same items in different order to be equal")
	}

	col2.Collect(&item{name: "c"})
	if col1.CreateBundle().Equal(col2.CreateBundle()) {
		t.Fatal("expected bundles with different items to differ")
	}
}

func TestNeedsUpdate(t *testing.T) {
	a, b := &item{name: "a"}, &item{name: "b"}
	isDirty := func(it *item) bool { return it.dirty }

	col := New[*item]()
	col.Collect(a, b)

	if !col.NeedsUpdate(nil, isDirty) {
		t.Fatal("expected a missing bundle to require an update")
	}

	bundle := col.CreateBundle()
	if col.NeedsUpdate(bundle, isDirty) {
		t.Fatal("expected unchanged clean items not to require an update")
	}

	b.dirty = true
	if !col.NeedsUpdate(bundle, isDirty) {
		t.Fatal("expected a dirty item to require an update")
	}
	b.dirty = false

	col.Clear()
	col.Collect(b, a)
	if !col.NeedsUpdate(bundle, isDirty) {
		t.Fatal("expected reordered items to require an update")
	}

	col.Clear()
	col.Collect(a)
	if !col.NeedsUpdate(bundle, isDirty) {
		t.Fatal("expected a changed item set to require an update")
	}
	if idx, _ := col.Index(a); idx != 0 {
		t.Fatalf("expected index 0 after clear; got %d", idx)
	}
}
