package timeline

import (
	"strings"
	"testing"
)

func pending(prov, chat, body string, at int64) *PendingSend {
	return &PendingSend{ProvisionalID: prov, ChatID: chat, Body: body, CreatedAt: at}
}

func TestNewProvisionalID(t *testing.T) {
	a, b := NewProvisionalID(), NewProvisionalID()
	if !strings.HasPrefix(a, "local-") || a == b {
		t.Errorf("got %q then %q", a, b)
	}
}

func TestMatchSameChatAndBody(t *testing.T) {
	tr := NewSendTracker()
	tr.Register(pending("local-1", "c1", "hello", 1000))

	if got := tr.Match("c2", "hello", 1500); got != nil {
		t.Error("different conversation must not match")
	}
	if got := tr.Match("c1", "other", 1500); got != nil {
		t.Error("different body must not match")
	}
	got := tr.Match("c1", "hello", 1500)
	if got == nil || got.ProvisionalID != "local-1" {
		t.Fatalf("got %+v", got)
	}
	if tr.Len() != 0 {
		t.Error("matched record should be removed")
	}
}

func TestMatchRespectsCorrelationWindow(t *testing.T) {
	tr := NewSendTracker()
	tr.Register(pending("local-1", "c1", "hello", 1000))
	window := CorrelationWindow.Milliseconds()

	if got := tr.Match("c1", "hello", 1000+window+1); got != nil {
		t.Error("confirmation outside the window must not match")
	}
	if got := tr.Match("c1", "hello", 1000+window); got == nil {
		t.Error("confirmation at the window edge should match")
	}
}

func TestMatchEmptyBodyWildcard(t *testing.T) {
	tr := NewSendTracker()
	tr.Register(pending("local-1", "c1", "", 1000)) // media-only send

	if got := tr.Match("c1", "caption text", 1500); got == nil {
		t.Error("empty registered body should match any confirmation body")
	}
	tr.Register(pending("local-2", "c1", "hello", 2000))
	if got := tr.Match("c1", "", 2500); got == nil {
		t.Error("empty confirmation body should match any registered body")
	}
}

func TestMatchSmallestDeltaWins(t *testing.T) {
	tr := NewSendTracker()
	tr.Register(pending("local-1", "c1", "hi", 1000))
	tr.Register(pending("local-2", "c1", "hi", 5000))

	got := tr.Match("c1", "hi", 4800)
	if got == nil || got.ProvisionalID != "local-2" {
		t.Fatalf("got %+v, want local-2", got)
	}
	if tr.Len() != 1 {
		t.Errorf("len = %d, want 1", tr.Len())
	}
}

func TestResolveAndDrop(t *testing.T) {
	tr := NewSendTracker()
	tr.Register(pending("local-1", "c1", "hi", 1000))
	tr.Register(pending("local-2", "c1", "yo", 2000))

	rec := tr.Resolve("local-1", "srv-1")
	if rec == nil || rec.ConfirmedID != "srv-1" {
		t.Fatalf("got %+v", rec)
	}
	if tr.Resolve("local-1", "srv-1") != nil {
		t.Error("second resolve of the same ID should find nothing")
	}

	tr.Drop("local-2")
	if tr.Len() != 0 {
		t.Errorf("len = %d, want 0", tr.Len())
	}
}

func TestAbandonBefore(t *testing.T) {
	tr := NewSendTracker()
	tr.Register(pending("local-1", "c1", "a", 1000))
	tr.Register(pending("local-2", "c1", "b", 2000))
	tr.Register(pending("local-3", "c1", "c", 3000))

	abandoned := tr.AbandonBefore(2000)
	if len(abandoned) != 2 {
		t.Fatalf("abandoned %v, want local-1 and local-2", abandoned)
	}
	if abandoned[0] != "local-1" || abandoned[1] != "local-2" {
		t.Errorf("abandoned %v", abandoned)
	}
	if tr.Len() != 1 {
		t.Errorf("len = %d, want 1", tr.Len())
	}
}

func TestTrackerReset(t *testing.T) {
	tr := NewSendTracker()
	tr.Register(pending("local-1", "c1", "a", 1000))
	tr.Reset()
	if tr.Len() != 0 {
		t.Error("reset should drop all records")
	}
}
