package timeline

import (
	"sort"

	"chatsync/pkg/models"
)

// Store is the ordered, deduplicated message collection for one open
// conversation. Every feed (history pages, push channel, optimistic sends)
// mutates it through Upsert/Append/Prepend; Upsert replacing by ID is the
// single deduplication point. Ordering is never trusted from any source:
// each mutation re-sorts by timestamp, with arrival order as the tiebreak.
type Store struct {
	entries []entry
	byID    map[string]int
	arrival uint64
}

type entry struct {
	msg models.Message
	seq uint64
}

func NewStore() *Store {
	return &Store{byID: make(map[string]int)}
}

// Len returns the number of messages in the store.
func (s *Store) Len() int { return len(s.entries) }

// Append adds msgs at the newest edge (push channel, initial page).
func (s *Store) Append(msgs []models.Message) {
	for _, m := range msgs {
		s.put(m)
	}
	s.resort()
}

// Prepend adds msgs at the oldest edge (older history pages). The canonical
// order is recomputed either way, so Prepend differs from Append only in
// intent at call sites.
func (s *Store) Prepend(msgs []models.Message) {
	for _, m := range msgs {
		s.put(m)
	}
	s.resort()
}

// Upsert inserts m, or replaces the existing record sharing its ID.
func (s *Store) Upsert(m models.Message) {
	s.put(m)
	s.resort()
}

// put replaces by ID or inserts with a fresh arrival sequence. Replacing
// keeps the original sequence so a refreshed record does not move within
// equal-timestamp runs.
func (s *Store) put(m models.Message) {
	if i, ok := s.byID[m.ID]; ok {
		seq := s.entries[i].seq
		s.entries[i] = entry{msg: m, seq: seq}
		return
	}
	s.arrival++
	s.byID[m.ID] = len(s.entries)
	s.entries = append(s.entries, entry{msg: m, seq: s.arrival})
}

func (s *Store) resort() {
	sort.SliceStable(s.entries, func(i, j int) bool {
		if s.entries[i].msg.TS != s.entries[j].msg.TS {
			return s.entries[i].msg.TS < s.entries[j].msg.TS
		}
		return s.entries[i].seq < s.entries[j].seq
	})
	for i := range s.entries {
		s.byID[s.entries[i].msg.ID] = i
	}
}

// Get returns the message with the given ID.
func (s *Store) Get(id string) (models.Message, bool) {
	i, ok := s.byID[id]
	if !ok {
		return models.Message{}, false
	}
	return s.entries[i].msg, true
}

// Has reports whether an ID is present.
func (s *Store) Has(id string) bool {
	_, ok := s.byID[id]
	return ok
}

// Mutate applies fn to the message with the given ID in place, then
// re-validates ordering (fn may change the timestamp).
func (s *Store) Mutate(id string, fn func(*models.Message)) bool {
	i, ok := s.byID[id]
	if !ok {
		return false
	}
	fn(&s.entries[i].msg)
	s.resort()
	return true
}

// RewriteID renames an entry in place, preserving its position-relevant
// arrival sequence and every already-applied update. Used when a provisional
// send is confirmed with its authoritative ID.
func (s *Store) RewriteID(oldID, newID string) bool {
	i, ok := s.byID[oldID]
	if !ok {
		return false
	}
	if _, exists := s.byID[newID]; exists && newID != oldID {
		return false
	}
	delete(s.byID, oldID)
	s.entries[i].msg.ID = newID
	s.byID[newID] = i
	return true
}

// Remove deletes the entry with the given ID. Used only for provisional
// entries superseded by a confirmed record; server-sourced messages are
// never removed.
func (s *Store) Remove(id string) bool {
	i, ok := s.byID[id]
	if !ok {
		return false
	}
	delete(s.byID, id)
	s.entries = append(s.entries[:i], s.entries[i+1:]...)
	for j := i; j < len(s.entries); j++ {
		s.byID[s.entries[j].msg.ID] = j
	}
	return true
}

// Snapshot returns a copy of the canonical sequence, sorted by timestamp
// ascending with ties broken by arrival order.
func (s *Store) Snapshot() []models.Message {
	out := make([]models.Message, len(s.entries))
	for i := range s.entries {
		out[i] = s.entries[i].msg
	}
	return out
}

// Clear discards everything; used when the open conversation changes.
func (s *Store) Clear() {
	s.entries = s.entries[:0]
	s.byID = make(map[string]int)
}
