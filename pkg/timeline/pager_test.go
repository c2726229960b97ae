package timeline

import "testing"

func TestCursorReset(t *testing.T) {
	c := &Cursor{Offset: 50, HasMore: false, Loading: true}
	c.Reset()
	if c.Offset != 0 || !c.HasMore || c.Loading {
		t.Errorf("after reset: %+v", c)
	}
}

func TestCursorBeginLoadMutualExclusion(t *testing.T) {
	c := &Cursor{}
	c.Reset()
	if !c.BeginLoad() {
		t.Fatal("first load should be allowed")
	}
	if c.BeginLoad() {
		t.Error("overlapping load must be dropped")
	}
	c.FailLoad()
	if c.Offset != 0 {
		t.Error("failed load must not advance the offset")
	}
	if !c.BeginLoad() {
		t.Error("load should be allowed again after failure")
	}
}

func TestCursorExhaustion(t *testing.T) {
	c := &Cursor{}
	c.Reset()

	// 120 messages paged at 50: full, full, short.
	if !c.BeginLoad() {
		t.Fatal("page 1 blocked")
	}
	c.CompleteLoad(50, 50)
	if c.Offset != 50 || !c.HasMore {
		t.Fatalf("after page 1: %+v", c)
	}

	if !c.BeginLoad() {
		t.Fatal("page 2 blocked")
	}
	c.CompleteLoad(50, 50)
	if c.Offset != 100 || !c.HasMore {
		t.Fatalf("after page 2: %+v", c)
	}

	if !c.BeginLoad() {
		t.Fatal("page 3 blocked")
	}
	c.CompleteLoad(20, 50)
	if c.Offset != 120 || c.HasMore {
		t.Fatalf("after short page: %+v", c)
	}

	if c.BeginLoad() {
		t.Error("exhausted history must not load again")
	}
}

func TestCursorExactMultipleNeedsEmptyPage(t *testing.T) {
	// History of exactly 100 at page size 50: the second page is full, so one
	// more fetch runs and returns empty before HasMore drops.
	c := &Cursor{}
	c.Reset()
	c.BeginLoad()
	c.CompleteLoad(50, 50)
	c.BeginLoad()
	c.CompleteLoad(50, 50)
	if !c.HasMore {
		t.Fatal("full page must keep HasMore set")
	}
	c.BeginLoad()
	c.CompleteLoad(0, 50)
	if c.HasMore || c.Offset != 100 {
		t.Errorf("after empty page: %+v", c)
	}
}
