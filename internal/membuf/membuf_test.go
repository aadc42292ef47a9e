package membuf

import "testing"

type testEntry struct {
	complete bool
}

func checkEntry(slot any) ReuseState {
	e := slot.(*testEntry)
	if e.complete {
		return CanReuse
	}
	return InUse
}

func sizeEntry(slot any) int {
	return 8
}

func TestAllocGrowsWhenNothingReclaimable(t *testing.T) {
	m := New(checkEntry, sizeEntry, "owner")

	var allocated []*testEntry
	for i := 0; i < 100; i++ {
		e := m.Alloc(func() any { return &testEntry{} }).(*testEntry)
		allocated = append(allocated, e)
	}
	distinct := make(map[*testEntry]bool, len(allocated))
	for _, e := range allocated {
		distinct[e] = true
	}
	if len(distinct) != 100 {
		t.Fatalf("expected 100 distinct slots, got %d", len(distinct))
	}
}

func TestFreedSlotIsReclaimedOnlyWhenReusable(t *testing.T) {
	m := New(checkEntry, sizeEntry, "owner")

	e := m.Alloc(func() any { return &testEntry{} }).(*testEntry)
	m.Free(e)

	// Not yet complete: must not be reclaimed, so Alloc grows instead.
	e2 := m.Alloc(func() any { return &testEntry{} }).(*testEntry)
	if e2 == e {
		t.Fatal("slot reclaimed before CheckFn reported CanReuse")
	}

	e.complete = true
	e3 := m.Alloc(func() any { return &testEntry{} }).(*testEntry)
	if e3 != e {
		t.Fatal("expected the CanReuse slot to be reclaimed")
	}
}

func TestUserDataTracesBackToOwner(t *testing.T) {
	m := New(checkEntry, sizeEntry, "the-owning-vdm")
	e := m.Alloc(func() any { return &testEntry{} }).(*testEntry)
	if got := m.UserData(e); got != "the-owning-vdm" {
		t.Fatalf("expected owner back-pointer, got %v", got)
	}
}

func TestOldestFirstReclaimOrder(t *testing.T) {
	m := New(checkEntry, sizeEntry, "owner")

	a := m.Alloc(func() any { return &testEntry{} }).(*testEntry)
	b := m.Alloc(func() any { return &testEntry{} }).(*testEntry)
	a.complete = true
	b.complete = true
	m.Free(a)
	m.Free(b)

	first := m.Alloc(func() any { return &testEntry{} }).(*testEntry)
	if first != a {
		t.Fatal("expected oldest-retired slot to be reclaimed first")
	}
}

func TestRetiredCount(t *testing.T) {
	m := New(checkEntry, sizeEntry, "owner")
	e := m.Alloc(func() any { return &testEntry{} }).(*testEntry)
	if m.Retired() != 0 {
		t.Fatal("nothing retired yet")
	}
	m.Free(e)
	if m.Retired() != 1 {
		t.Fatal("expected one retired slot")
	}
}
