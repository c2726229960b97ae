package timeline

import (
	"time"

	"chatsync/pkg/identity"
	"chatsync/pkg/models"
)

// StackGap is the maximum gap between consecutive inbound messages from the
// same sender for them to collapse under one sender header.
const StackGap = 5 * time.Minute

// GroupingFlags computes, for each message in canonical order, whether it
// stacks under the previous one: both inbound, same resolved sender
// identity, and timestamps within StackGap. Outbound messages never stack
// (they carry no sender header in multi-party chats). flags[0] is always
// false. Recomputed from scratch on every store change: a provisional
// entry's timestamp can move on reconciliation and break a run.
func GroupingFlags(msgs []models.Message) []bool {
	flags := make([]bool, len(msgs))
	gap := StackGap.Milliseconds()
	for i := 1; i < len(msgs); i++ {
		cur, prev := msgs[i], msgs[i-1]
		if cur.Dir != models.DirectionIn || prev.Dir != models.DirectionIn {
			continue
		}
		ident := identity.Derive(cur)
		if ident == "" || ident != identity.Derive(prev) {
			continue
		}
		if cur.TS-prev.TS >= gap {
			continue
		}
		flags[i] = true
	}
	return flags
}
