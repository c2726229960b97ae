package timeline

import "testing"

func TestComputeWindowBasics(t *testing.T) {
	// 1000 items, 48px rows, viewport at 4800px offset showing 480px
	w := ComputeWindow(1000, 48, 4800, 480, 10)
	if w.Start != 90 {
		t.Errorf("start = %d, want 90", w.Start)
	}
	if w.End != 120 {
		t.Errorf("end = %d, want 120", w.End)
	}
	if w.OffsetTop != 90*48 {
		t.Errorf("offset_top = %d, want %d", w.OffsetTop, 90*48)
	}
	if w.TotalHeight != 1000*48 {
		t.Errorf("total_height = %d, want %d", w.TotalHeight, 1000*48)
	}
}

func TestComputeWindowClampsToStore(t *testing.T) {
	w := ComputeWindow(5, 48, 0, 480, 10)
	if w.Start != 0 || w.End != 5 {
		t.Errorf("got [%d,%d), want [0,5)", w.Start, w.End)
	}
	// scrolled past the end
	w = ComputeWindow(5, 48, 10000, 480, 10)
	if w.Start > w.End || w.End != 5 {
		t.Errorf("got [%d,%d), want start<=end<=5", w.Start, w.End)
	}
}

func TestComputeWindowSizeIndependentOfStore(t *testing.T) {
	small := ComputeWindow(100, 48, 480, 480, 10)
	large := ComputeWindow(1_000_000, 48, 480, 480, 10)
	if (small.End - small.Start) > 40 {
		t.Errorf("window too large: %d", small.End-small.Start)
	}
	if (large.End - large.Start) != (small.End - small.Start) {
		t.Errorf("window size depends on store size: %d vs %d",
			large.End-large.Start, small.End-small.Start)
	}
}

func TestComputeWindowEmptyStore(t *testing.T) {
	w := ComputeWindow(0, 48, 0, 480, 10)
	if w.Start != 0 || w.End != 0 || w.TotalHeight != 0 {
		t.Errorf("empty store window not zero: %+v", w)
	}
}

func TestComputeWindowDefaultsBadInputs(t *testing.T) {
	w := ComputeWindow(10, 0, -5, -5, -1)
	if w.Start != 0 {
		t.Errorf("start = %d, want 0", w.Start)
	}
	if w.TotalHeight != 10*DefaultItemHeight {
		t.Errorf("total_height = %d, want %d", w.TotalHeight, 10*DefaultItemHeight)
	}
}
