package timeline

// Viewport windowing: the timeline is rendered as a fixed-height spacer of
// n*itemHeight with only [Start,End) materialized, offset by Start*itemHeight.
// Materialization cost is O(viewport/itemHeight), independent of store size,
// which is why store mutations must stay cheap.

const (
	// DefaultItemHeight is the per-row height estimate in pixels.
	DefaultItemHeight = 48
	// DefaultOverscan is the number of extra rows materialized on each side
	// of the visible range to absorb scroll jitter.
	DefaultOverscan = 10
)

// Window is the index range of the canonical sequence that must be
// materialized for display, plus the spacer geometry the caller needs.
type Window struct {
	Start       int `json:"start"`
	End         int `json:"end"`
	OffsetTop   int `json:"offset_top"`
	TotalHeight int `json:"total_height"`
}

// ComputeWindow derives the materialized range for a store of n items given
// the scroll offset, the viewport height and the overscan margin. Zero or
// negative itemHeight falls back to the default.
func ComputeWindow(n, itemHeight, scrollTop, viewportHeight, overscan int) Window {
	if itemHeight <= 0 {
		itemHeight = DefaultItemHeight
	}
	if overscan < 0 {
		overscan = 0
	}
	if scrollTop < 0 {
		scrollTop = 0
	}
	if viewportHeight < 0 {
		viewportHeight = 0
	}
	start := scrollTop/itemHeight - overscan
	if start < 0 {
		start = 0
	}
	end := (scrollTop+viewportHeight+itemHeight-1)/itemHeight + overscan
	if end > n {
		end = n
	}
	if start > end {
		start = end
	}
	return Window{
		Start:       start,
		End:         end,
		OffsetTop:   start * itemHeight,
		TotalHeight: n * itemHeight,
	}
}
