package timeline

import (
	"testing"

	"chatsync/pkg/models"
)

func msg(id string, ts int64) models.Message {
	return models.Message{ID: id, ChatID: "c1", Dir: models.DirectionIn, TS: ts}
}

func ids(msgs []models.Message) []string {
	out := make([]string, len(msgs))
	for i, m := range msgs {
		out[i] = m.ID
	}
	return out
}

func TestSnapshotSortedAndDeduped(t *testing.T) {
	s := NewStore()
	s.Append([]models.Message{msg("b", 200), msg("a", 100), msg("c", 300)})
	s.Append([]models.Message{msg("b", 200)}) // duplicate ID

	snap := s.Snapshot()
	if len(snap) != 3 {
		t.Fatalf("len = %d, want 3", len(snap))
	}
	want := []string{"a", "b", "c"}
	for i, id := range ids(snap) {
		if id != want[i] {
			t.Errorf("pos %d: got %s, want %s", i, id, want[i])
		}
	}
}

func TestUpsertReplacesByID(t *testing.T) {
	s := NewStore()
	s.Upsert(msg("a", 100))
	updated := msg("a", 100)
	updated.Body = "edited"
	s.Upsert(updated)
	if s.Len() != 1 {
		t.Fatalf("len = %d, want 1", s.Len())
	}
	got, _ := s.Get("a")
	if got.Body != "edited" {
		t.Errorf("body = %q, want edited", got.Body)
	}
}

func TestEqualTimestampsKeepArrivalOrder(t *testing.T) {
	s := NewStore()
	s.Append([]models.Message{msg("first", 100), msg("second", 100), msg("third", 100)})
	want := []string{"first", "second", "third"}
	for i, id := range ids(s.Snapshot()) {
		if id != want[i] {
			t.Fatalf("arrival order not preserved: got %v", ids(s.Snapshot()))
		}
	}
	// re-upserting the middle entry must not move it
	s.Upsert(msg("second", 100))
	for i, id := range ids(s.Snapshot()) {
		if id != want[i] {
			t.Fatalf("order changed after upsert: got %v", ids(s.Snapshot()))
		}
	}
}

func TestPrependMergesOlderPage(t *testing.T) {
	s := NewStore()
	s.Append([]models.Message{msg("c", 300), msg("d", 400)})
	s.Prepend([]models.Message{msg("a", 100), msg("b", 200)})
	want := []string{"a", "b", "c", "d"}
	got := ids(s.Snapshot())
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("got %v, want %v", got, want)
		}
	}
}

func TestMutateResortsOnTimestampChange(t *testing.T) {
	s := NewStore()
	s.Append([]models.Message{msg("a", 100), msg("b", 200)})
	if ok := s.Mutate("a", func(m *models.Message) { m.TS = 300 }); !ok {
		t.Fatal("mutate failed")
	}
	got := ids(s.Snapshot())
	if got[0] != "b" || got[1] != "a" {
		t.Errorf("got %v, want [b a]", got)
	}
}

func TestRewriteID(t *testing.T) {
	s := NewStore()
	s.Upsert(msg("local-1", 100))
	if !s.RewriteID("local-1", "srv-1") {
		t.Fatal("rewrite failed")
	}
	if s.Has("local-1") {
		t.Error("old ID still present")
	}
	if !s.Has("srv-1") {
		t.Error("new ID missing")
	}
	// rewriting onto an existing ID must fail
	s.Upsert(msg("other", 200))
	if s.RewriteID("srv-1", "other") {
		t.Error("rewrite onto existing ID should fail")
	}
}

func TestRemove(t *testing.T) {
	s := NewStore()
	s.Append([]models.Message{msg("a", 100), msg("b", 200), msg("c", 300)})
	if !s.Remove("b") {
		t.Fatal("remove failed")
	}
	if s.Has("b") || s.Len() != 2 {
		t.Fatalf("b still present, len=%d", s.Len())
	}
	// index map must stay consistent after the shift
	got, ok := s.Get("c")
	if !ok || got.ID != "c" {
		t.Errorf("lookup after remove broken: %v %v", got, ok)
	}
	if s.Remove("missing") {
		t.Error("removing a missing ID should report false")
	}
}
