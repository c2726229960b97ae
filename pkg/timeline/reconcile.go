package timeline

import (
	"fmt"
	"sync/atomic"
	"time"

	"chatsync/pkg/models"
)

// CorrelationWindow is the maximum gap between an optimistic send and a
// candidate confirmation for the two to be treated as the same message.
// The push channel and the direct send acknowledgment are independent,
// unordered delivery paths for one event, and neither reliably carries the
// client-chosen provisional ID end to end, so correlation is heuristic:
// same conversation, close in time, matching body.
const CorrelationWindow = 2 * time.Minute

var provisionalSeq uint64

// NewProvisionalID returns a fresh locally-scoped message ID.
func NewProvisionalID() string {
	return fmt.Sprintf("%s%d", models.ProvisionalPrefix, atomic.AddUint64(&provisionalSeq, 1))
}

// PendingSend is the bookkeeping for one outstanding optimistic send.
type PendingSend struct {
	ProvisionalID string
	ChatID        string
	Body          string
	CreatedAt     int64 // epoch millis
	ConfirmedID   string
}

// SendTracker indexes unresolved optimistic sends. It does not own message
// records (the store does); it only correlates confirmations against
// provisional IDs.
type SendTracker struct {
	pending []*PendingSend
}

func NewSendTracker() *SendTracker {
	return &SendTracker{}
}

// Register records a new optimistic send.
func (t *SendTracker) Register(rec *PendingSend) {
	t.pending = append(t.pending, rec)
}

// Len returns the number of unresolved records.
func (t *SendTracker) Len() int { return len(t.pending) }

// Match finds the best unresolved record for a confirmed outbound message:
// same conversation, time delta within CorrelationWindow, and body equality
// where an empty body on either side acts as a wildcard. Among candidates
// the smallest time delta wins. The record is removed and returned; nil
// means the confirmation correlates with nothing and must be inserted as a
// new entry.
func (t *SendTracker) Match(chatID, body string, ts int64) *PendingSend {
	best := -1
	var bestDelta int64
	window := CorrelationWindow.Milliseconds()
	for i, rec := range t.pending {
		if rec.ChatID != chatID {
			continue
		}
		delta := ts - rec.CreatedAt
		if delta < 0 {
			delta = -delta
		}
		if delta > window {
			continue
		}
		if rec.Body != "" && body != "" && rec.Body != body {
			continue
		}
		if best == -1 || delta < bestDelta {
			best, bestDelta = i, delta
		}
	}
	if best == -1 {
		return nil
	}
	rec := t.pending[best]
	t.pending = append(t.pending[:best], t.pending[best+1:]...)
	return rec
}

// Resolve removes the record with the given provisional ID (direct
// send-response path) and returns it, if still unresolved.
func (t *SendTracker) Resolve(provisionalID, confirmedID string) *PendingSend {
	for i, rec := range t.pending {
		if rec.ProvisionalID == provisionalID {
			rec.ConfirmedID = confirmedID
			t.pending = append(t.pending[:i], t.pending[i+1:]...)
			return rec
		}
	}
	return nil
}

// Drop removes the record with the given provisional ID without resolution
// (failed send).
func (t *SendTracker) Drop(provisionalID string) {
	for i, rec := range t.pending {
		if rec.ProvisionalID == provisionalID {
			t.pending = append(t.pending[:i], t.pending[i+1:]...)
			return
		}
	}
}

// AbandonBefore removes records created at or before cutoff and returns
// their provisional IDs. Abandoned entries stay visible in the store as
// local-only artifacts; the caller marks them failed.
func (t *SendTracker) AbandonBefore(cutoff int64) []string {
	var abandoned []string
	kept := t.pending[:0]
	for _, rec := range t.pending {
		if rec.CreatedAt <= cutoff {
			abandoned = append(abandoned, rec.ProvisionalID)
			continue
		}
		kept = append(kept, rec)
	}
	t.pending = kept
	return abandoned
}

// Reset drops every record; used on conversation switch, where correlation
// against the new conversation would be meaningless.
func (t *SendTracker) Reset() {
	t.pending = nil
}
