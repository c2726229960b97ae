package timeline

import (
	"context"

	"chatsync/pkg/models"
)

// DefaultPageSize is the backward-history page size.
const DefaultPageSize = 50

// Fetcher is the history-fetch boundary. Implementations guarantee nothing
// beyond "chronological within the page"; the store re-sorts anyway.
// Offset counts items back from the newest message.
type Fetcher interface {
	FetchPage(ctx context.Context, chatID string, offset, limit int) ([]models.Message, error)
}

// Cursor tracks backward paging over one conversation's history. There is
// no total-count field anywhere: a short page is the sole termination
// signal. Loading is the only mutual exclusion the engine needs, since two
// overlapping backward fetches would both prepend and double-advance Offset.
type Cursor struct {
	Offset  int  `json:"offset"`
	HasMore bool `json:"has_more"`
	Loading bool `json:"loading"`
}

// Reset returns the cursor to its opened state.
func (c *Cursor) Reset() {
	c.Offset = 0
	c.HasMore = true
	c.Loading = false
}

// BeginLoad marks a fetch as in flight. It returns false when one is already
// running or the history is exhausted; the caller must drop, not queue, the
// request.
func (c *Cursor) BeginLoad() bool {
	if c.Loading || !c.HasMore {
		return false
	}
	c.Loading = true
	return true
}

// CompleteLoad accounts for a returned page.
func (c *Cursor) CompleteLoad(returned, pageSize int) {
	c.Offset += returned
	c.HasMore = returned == pageSize
	c.Loading = false
}

// FailLoad clears the in-flight flag without advancing. The fetch is not
// auto-retried; the next user-triggered demand retries lazily.
func (c *Cursor) FailLoad() {
	c.Loading = false
}
