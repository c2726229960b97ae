package history

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync/atomic"
	"time"

	"github.com/cockroachdb/pebble"
	"github.com/valyala/bytebufferpool"

	"chatsync/pkg/logger"
	"chatsync/pkg/models"
)

// The archive is the production implementation of the history-fetch
// boundary: a local Pebble database holding each conversation's messages
// under sortable timestamp keys. The timeline engine only ever sees it
// through FetchPage; writes come from the loopback sender, the push
// ingress, and seeding tools.

var db *pebble.DB
var dbPath string

// seq reduces key collisions when multiple messages share a millisecond.
var seq uint64

// Open opens (or creates) the archive at path and keeps a global handle.
func Open(path string) error {
	var err error
	logger.Info("opening_archive", "path", path)
	db, err = pebble.Open(path, &pebble.Options{})
	if err != nil {
		logger.Error("archive_open_failed", "path", path, "error", err)
		return err
	}
	dbPath = path
	return nil
}

// Close closes the archive if open.
func Close() error {
	if db == nil {
		return nil
	}
	if err := db.Close(); err != nil {
		return err
	}
	db = nil
	logger.Info("archive_closed")
	return nil
}

// Ready reports whether the archive is open.
func Ready() bool { return db != nil }

// Path returns the filesystem path of the open archive.
func Path() string { return dbPath }

func nowMillis() int64 { return time.Now().UnixMilli() }

// msgKey builds chat:<chatID>:msg:<zero-padded millis>-<seq>. Keys sort
// bytewise in chronological order within a conversation.
func msgKey(chatID string, ts int64, s uint64) []byte {
	return []byte(fmt.Sprintf("chat:%s:msg:%020d-%06d", chatID, ts, s))
}

func chatPrefix(chatID string) []byte {
	return []byte("chat:" + chatID + ":msg:")
}

// SaveMessage appends one message to its conversation. The message's TS
// must already be normalized to epoch milliseconds.
func SaveMessage(m models.Message) error {
	if db == nil {
		return fmt.Errorf("archive not opened; call history.Open first")
	}
	if m.ChatID == "" || m.ID == "" {
		return fmt.Errorf("message missing chat_id or id")
	}
	s := atomic.AddUint64(&seq, 1)
	key := msgKey(m.ChatID, m.TS, s)

	buf := bytebufferpool.Get()
	defer bytebufferpool.Put(buf)
	if err := json.NewEncoder(buf).Encode(m); err != nil {
		return fmt.Errorf("failed to marshal message: %w", err)
	}
	if err := db.Set(key, buf.B, pebble.Sync); err != nil {
		logger.Error("archive_save_failed", "chat", m.ChatID, "id", m.ID, "error", err)
		return err
	}
	logger.Debug("archive_message_saved", "chat", m.ChatID, "id", m.ID)
	return nil
}

// FetchPage returns up to limit messages, skipping offset items counted
// back from the newest, in chronological order within the page. A short
// page means the conversation's history is exhausted; there is no count
// endpoint. Satisfies the timeline Fetcher contract via Archive.
func FetchPage(ctx context.Context, chatID string, offset, limit int) ([]models.Message, error) {
	if db == nil {
		return nil, fmt.Errorf("archive not opened; call history.Open first")
	}
	if limit <= 0 {
		return nil, nil
	}
	prefix := chatPrefix(chatID)
	upper := append(append([]byte{}, prefix...), 0xff)
	iter, err := db.NewIter(&pebble.IterOptions{LowerBound: prefix, UpperBound: upper})
	if err != nil {
		return nil, err
	}
	defer iter.Close()

	out := make([]models.Message, 0, limit)
	skipped := 0
	for ok := iter.Last(); ok; ok = iter.Prev() {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if skipped < offset {
			skipped++
			continue
		}
		var m models.Message
		if err := json.Unmarshal(iter.Value(), &m); err != nil {
			logger.Warn("archive_bad_record", "chat", chatID, "key", string(iter.Key()), "error", err)
			continue
		}
		out = append(out, m)
		if len(out) == limit {
			break
		}
	}
	// collected newest-first; pages are chronological
	for i, j := 0, len(out)-1; i < j; i, j = i+1, j-1 {
		out[i], out[j] = out[j], out[i]
	}
	return out, nil
}

// Count returns the number of archived messages for a conversation.
func Count(chatID string) (int, error) {
	if db == nil {
		return 0, fmt.Errorf("archive not opened")
	}
	prefix := chatPrefix(chatID)
	upper := append(append([]byte{}, prefix...), 0xff)
	iter, err := db.NewIter(&pebble.IterOptions{LowerBound: prefix, UpperBound: upper})
	if err != nil {
		return 0, err
	}
	defer iter.Close()
	n := 0
	for ok := iter.First(); ok; ok = iter.Next() {
		n++
	}
	return n, nil
}

// Chats lists the conversation IDs present in the archive.
func Chats() ([]string, error) {
	if db == nil {
		return nil, fmt.Errorf("archive not opened")
	}
	iter, err := db.NewIter(&pebble.IterOptions{
		LowerBound: []byte("chat:"),
		UpperBound: []byte("chat;"), // ';' follows ':' bytewise
	})
	if err != nil {
		return nil, err
	}
	defer iter.Close()
	var out []string
	last := ""
	for ok := iter.First(); ok; ok = iter.Next() {
		key := string(iter.Key())
		rest := strings.TrimPrefix(key, "chat:")
		i := strings.Index(rest, ":msg:")
		if i < 0 {
			continue
		}
		id := rest[:i]
		if id != last {
			out = append(out, id)
			last = id
		}
	}
	return out, nil
}

// Archive adapts the package-level functions to the timeline Fetcher
// interface so callers can inject the global archive as a value.
type Archive struct{}

func (Archive) FetchPage(ctx context.Context, chatID string, offset, limit int) ([]models.Message, error) {
	return FetchPage(ctx, chatID, offset, limit)
}
