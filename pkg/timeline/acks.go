package timeline

import "chatsync/pkg/models"

// ApplyAck upgrades the ack level of the message with the given
// authoritative ID. Provisional entries cannot receive acks (the backend
// does not know their IDs yet). The merge is monotonic: a late-arriving
// lower level never overwrites a higher one. Acks travel independent paths,
// so a regression is an ordering artifact, not information.
//
// Returns true when the level actually advanced.
func ApplyAck(s *Store, id string, level models.AckLevel) bool {
	if models.IsProvisionalID(id) {
		return false
	}
	advanced := false
	s.Mutate(id, func(m *models.Message) {
		if level > m.Ack {
			m.Ack = level
			advanced = true
		}
	})
	return advanced
}

// AckGlyph is the presentation-free delivery state for one message: the
// ack level name, or "failed" for a rejected send. The presentation layer
// maps these onto whatever glyphs it renders.
func AckGlyph(m models.Message) string {
	if m.Failed {
		return "failed"
	}
	return m.Ack.String()
}
