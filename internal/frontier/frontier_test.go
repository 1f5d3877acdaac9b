package frontier

import (
	"fmt"
	"testing"
	"time"
)

// TestPushDeduplicates tests the seen-set property.
func TestPushDeduplicates(t *testing.T) {
	t.Parallel()

	f := New(0)

	if !f.Push(Entry{URL: "https://a.test/", Depth: 0}) {
		t.Fatal("first push rejected")
	}
	if f.Push(Entry{URL: "https://a.test/", Depth: 1}) {
		t.Error("duplicate URL accepted")
	}
	if f.Len() != 1 {
		t.Errorf("Len() = %d, want 1", f.Len())
	}
	if !f.Seen("https://a.test/") {
		t.Error("Seen() = false for pushed URL")
	}
}

// TestPopOrdering tests depth-first priority with FIFO tie-break.
func TestPopOrdering(t *testing.T) {
	t.Parallel()

	f := New(0)

	// Push out of order: depth 1 entries before the depth 0 one, and
	// several at depth 1 to exercise the FIFO tie-break.
	f.Push(Entry{URL: "https://a.test/d1-first", Depth: 1})
	f.Push(Entry{URL: "https://b.test/d1-second", Depth: 1})
	f.Push(Entry{URL: "https://c.test/d0", Depth: 0})
	f.Push(Entry{URL: "https://d.test/d2", Depth: 2})

	want := []string{
		"https://c.test/d0",
		"https://a.test/d1-first",
		"https://b.test/d1-second",
		"https://d.test/d2",
	}

	now := time.Now()
	for i, w := range want {
		e, _ := f.Pop(now)
		if e == nil {
			t.Fatalf("Pop %d returned nil", i)
		}
		if e.URL != w {
			t.Errorf("Pop %d = %s, want %s", i, e.URL, w)
		}
	}
}

// TestPacing tests that a domain is never yielded before its
// next-eligible time, and that another domain can proceed meanwhile.
func TestPacing(t *testing.T) {
	t.Parallel()

	f := New(time.Second)
	f.Push(Entry{URL: "https://a.test/1", Depth: 0})
	f.Push(Entry{URL: "https://a.test/2", Depth: 0})
	f.Push(Entry{URL: "https://b.test/1", Depth: 0})

	now := time.Now()

	e, _ := f.Pop(now)
	if e == nil || e.URL != "https://a.test/1" {
		t.Fatalf("first pop = %v", e)
	}

	// a.test is pacing, so the next eligible entry is b.test even
	// though a.test/2 was queued earlier.
	e, _ = f.Pop(now)
	if e == nil || e.Domain != "b.test" {
		t.Fatalf("second pop = %v, want b.test entry", e)
	}

	// Nothing is eligible now; the hint names a.test's watermark.
	e, wakeAt := f.Pop(now)
	if e != nil {
		t.Fatalf("third pop yielded %s during pacing window", e.URL)
	}
	if wakeAt.Before(now.Add(time.Second)) {
		t.Errorf("wakeAt = %v, want >= now+1s", wakeAt)
	}

	// After the watermark passes, a.test/2 becomes eligible.
	later := now.Add(1100 * time.Millisecond)
	e, _ = f.Pop(later)
	if e == nil || e.URL != "https://a.test/2" {
		t.Fatalf("pop after pacing = %v, want a.test/2", e)
	}
}

// TestSetDomainDelay tests that registered delays stretch the watermark.
func TestSetDomainDelay(t *testing.T) {
	t.Parallel()

	f := New(100 * time.Millisecond)
	f.SetDomainDelay("slow.test", 5*time.Second)
	f.Push(Entry{URL: "https://slow.test/1", Depth: 0})
	f.Push(Entry{URL: "https://slow.test/2", Depth: 0})

	now := time.Now()
	if e, _ := f.Pop(now); e == nil {
		t.Fatal("first pop failed")
	}

	_, wakeAt := f.Pop(now)
	if wakeAt.Before(now.Add(5 * time.Second)) {
		t.Errorf("wakeAt = %v, want registered 5s delay", wakeAt)
	}

	// A delay below the floor is raised to the floor.
	f.SetDomainDelay("fast.test", time.Millisecond)
	f.Push(Entry{URL: "https://fast.test/1", Depth: 0})
	f.Push(Entry{URL: "https://fast.test/2", Depth: 0})
	if e, _ := f.Pop(now); e == nil || e.Domain != "fast.test" {
		t.Fatalf("fast.test pop failed: %v", e)
	}
	_, wakeAt = f.Pop(now)
	if wakeAt.Before(now.Add(100 * time.Millisecond)) {
		t.Errorf("wakeAt = %v, floor not applied", wakeAt)
	}
}

// TestPopEmpty tests the empty-queue signal.
func TestPopEmpty(t *testing.T) {
	t.Parallel()

	f := New(0)
	e, wakeAt := f.Pop(time.Now())
	if e != nil {
		t.Errorf("Pop on empty = %v", e)
	}
	if !wakeAt.IsZero() {
		t.Errorf("wakeAt = %v, want zero for empty queue", wakeAt)
	}
}

// TestDerivesDomain tests that Push fills in the domain when omitted.
func TestDerivesDomain(t *testing.T) {
	t.Parallel()

	f := New(0)
	f.Push(Entry{URL: "https://derived.test/page", Depth: 0})
	e, _ := f.Pop(time.Now())
	if e == nil || e.Domain != "derived.test" {
		t.Errorf("domain not derived: %v", e)
	}
}

// TestHeldEntriesKeepOrder verifies that entries pushed back during a
// pacing scan keep their scheduling order.
func TestHeldEntriesKeepOrder(t *testing.T) {
	t.Parallel()

	f := New(time.Hour) // every domain paces forever after one pop
	for i := 0; i < 5; i++ {
		f.Push(Entry{URL: fmt.Sprintf("https://x.test/%d", i), Depth: 0})
	}

	now := time.Now()
	e, _ := f.Pop(now)
	if e == nil || e.URL != "https://x.test/0" {
		t.Fatalf("first pop = %v", e)
	}

	// All remaining entries are held back; queue length must survive.
	if f.Len() != 4 {
		t.Errorf("Len() = %d, want 4", f.Len())
	}

	later := now.Add(2 * time.Hour)
	e, _ = f.Pop(later)
	if e == nil || e.URL != "https://x.test/1" {
		t.Errorf("pop after hold = %v, want x.test/1", e)
	}
}
