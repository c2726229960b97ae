package timeline

import (
	"context"
	"errors"
	"sync/atomic"
	"time"

	"chatsync/pkg/identity"
	"chatsync/pkg/logger"
	"chatsync/pkg/models"
)

// ErrQueueFull is returned when the session event queue is at capacity and
// the event was dropped rather than queued.
var ErrQueueFull = errors.New("session queue full")

// ErrNoConversation is returned by operator actions before any Open.
var ErrNoConversation = errors.New("no open conversation")

// fetchTimeout bounds one history page fetch.
const fetchTimeout = 30 * time.Second

// Sender is the send boundary. The provisional entry already exists in the
// store before Send is called; implementations return the authoritative ID.
type Sender interface {
	Send(ctx context.Context, chatID, body string, media *models.MediaRef) (string, error)
}

// Config tunes a Session. Zero values fall back to defaults.
type Config struct {
	PageSize      int
	QueueCapacity int
	ItemHeight    int
	Overscan      int
}

func (c Config) withDefaults() Config {
	if c.PageSize <= 0 {
		c.PageSize = DefaultPageSize
	}
	if c.QueueCapacity <= 0 {
		c.QueueCapacity = 1024
	}
	if c.ItemHeight <= 0 {
		c.ItemHeight = DefaultItemHeight
	}
	if c.Overscan <= 0 {
		c.Overscan = DefaultOverscan
	}
	return c
}

type eventKind uint8

const (
	evOpen eventKind = iota
	evSend
	evSendResult
	evLoadOlder
	evPageResult
	evPush
	evScroll
)

func (k eventKind) String() string {
	switch k {
	case evOpen:
		return "open"
	case evSend:
		return "send"
	case evSendResult:
		return "send_result"
	case evLoadOlder:
		return "load_older"
	case evPageResult:
		return "page_result"
	case evPush:
		return "push"
	case evScroll:
		return "scroll"
	}
	return "unknown"
}

// event is one unit of work for the session loop. Exactly one field group
// is set depending on kind. Async completions carry the epoch captured when
// the work was launched so stale results can be discarded at the boundary.
type event struct {
	kind  eventKind
	epoch uint64

	chatID string

	// send
	provisionalID string
	body          string
	media         *models.MediaRef

	// send result
	confirmedID string

	// page result
	initial bool
	msgs    []models.Message

	err error

	// push
	push models.PushEvent

	// scroll
	scrollTop      int
	viewportHeight int
}

// Projection is the immutable read-side view published after every
// mutation. Readers (the HTTP layer, tests) never touch loop state.
type Projection struct {
	ChatID   string           `json:"chat_id"`
	Epoch    uint64           `json:"epoch"`
	Messages []models.Message `json:"messages"`
	Stacks   []bool           `json:"stacks"`
	Window   Window           `json:"window"`
	Cursor   Cursor           `json:"cursor"`
}

// Session owns all per-conversation timeline state and mutates it from a
// single goroutine consuming a bounded event queue, so store mutations need
// no locking and every event runs to completion. Switching conversations
// bumps an epoch; in-flight fetch and send completions for the old epoch
// are discarded when they land.
type Session struct {
	cfg     Config
	fetcher Fetcher
	sender  Sender
	avatars *identity.Resolver

	events chan event
	stop   chan struct{}
	done   chan struct{}

	// loop-owned state
	epoch   uint64
	chatID  string
	store   *Store
	cursor  Cursor
	tracker *SendTracker
	scroll  int
	vheight int
	now     func() time.Time

	proj atomic.Pointer[Projection]
}

// NewSession wires a session around its boundaries. avatars may be nil.
func NewSession(cfg Config, fetcher Fetcher, sender Sender, avatars *identity.Resolver) *Session {
	cfg = cfg.withDefaults()
	s := &Session{
		cfg:     cfg,
		fetcher: fetcher,
		sender:  sender,
		avatars: avatars,
		events:  make(chan event, cfg.QueueCapacity),
		stop:    make(chan struct{}),
		done:    make(chan struct{}),
		store:   NewStore(),
		tracker: NewSendTracker(),
		now:     time.Now,
	}
	s.proj.Store(&Projection{})
	return s
}

// Start launches the session loop.
func (s *Session) Start() {
	go s.run()
}

// Close stops the loop and waits for it to exit.
func (s *Session) Close() {
	close(s.stop)
	<-s.done
}

func (s *Session) run() {
	defer close(s.done)
	for {
		select {
		case ev := <-s.events:
			s.handle(ev)
		case <-s.stop:
			return
		}
	}
}

// enqueue posts a caller-originated event without blocking; a full queue
// drops the event, it is never queued behind the caller.
func (s *Session) enqueue(ev event) error {
	select {
	case s.events <- ev:
		return nil
	default:
		eventsDropped.Inc()
		return ErrQueueFull
	}
}

// post delivers an internal completion event; completions must not be lost
// (a dropped page result would leave the cursor stuck loading), so this
// blocks until the loop takes it or the session closes.
func (s *Session) post(ev event) {
	select {
	case s.events <- ev:
	case <-s.stop:
	}
}

// Open switches the session to chatID, discarding all previous state.
func (s *Session) Open(chatID string) error {
	return s.enqueue(event{kind: evOpen, chatID: chatID})
}

// Send creates a provisional entry for body and hands the send to the
// transport. The returned provisional ID identifies the entry until it is
// reconciled. The entry exists before the transport call resolves.
func (s *Session) Send(body string, media *models.MediaRef) (string, error) {
	if s.proj.Load().ChatID == "" {
		return "", ErrNoConversation
	}
	id := NewProvisionalID()
	if err := s.enqueue(event{kind: evSend, provisionalID: id, body: body, media: media}); err != nil {
		return "", err
	}
	return id, nil
}

// LoadOlder requests the next backward history page. Calls while a fetch is
// in flight, or after history is exhausted, are dropped inside the loop.
func (s *Session) LoadOlder() error {
	return s.enqueue(event{kind: evLoadOlder})
}

// Scroll updates the viewport geometry.
func (s *Session) Scroll(scrollTop, viewportHeight int) error {
	return s.enqueue(event{kind: evScroll, scrollTop: scrollTop, viewportHeight: viewportHeight})
}

// HandlePush feeds one push-channel event into the session. Events for a
// conversation that is not open are dropped here, before touching the store.
func (s *Session) HandlePush(ev models.PushEvent) error {
	if err := ev.Validate(); err != nil {
		return err
	}
	if ev.ChatID != s.proj.Load().ChatID {
		logger.Debug("push_dropped_wrong_chat", "chat", ev.ChatID, "kind", string(ev.Kind))
		return nil
	}
	return s.enqueue(event{kind: evPush, push: ev})
}

// Projection returns the last published read-side view.
func (s *Session) Projection() *Projection {
	return s.proj.Load()
}

// ViewportSlice returns the materialized messages plus window geometry.
func (s *Session) ViewportSlice() ([]models.Message, Window) {
	p := s.proj.Load()
	w := p.Window
	return p.Messages[w.Start:w.End], w
}

// GroupingFlags returns the stacking flags for the canonical sequence.
func (s *Session) GroupingFlags() []bool {
	return s.proj.Load().Stacks
}

// AckGlyphFor returns the delivery state name for one message ID.
func (s *Session) AckGlyphFor(id string) (string, bool) {
	for _, m := range s.proj.Load().Messages {
		if m.ID == id {
			return AckGlyph(m), true
		}
	}
	return "", false
}

// --- loop internals ---

func (s *Session) handle(ev event) {
	eventsApplied.WithLabelValues(ev.kind.String()).Inc()
	switch ev.kind {
	case evOpen:
		s.handleOpen(ev)
	case evSend:
		s.handleSend(ev)
	case evSendResult:
		s.handleSendResult(ev)
	case evLoadOlder:
		s.startLoad(false)
	case evPageResult:
		s.handlePageResult(ev)
	case evPush:
		s.handlePush(ev)
	case evScroll:
		s.scroll, s.vheight = ev.scrollTop, ev.viewportHeight
	}
	s.sweepAbandoned()
	s.publish()
}

func (s *Session) handleOpen(ev event) {
	s.epoch++
	s.chatID = ev.chatID
	s.store.Clear()
	s.cursor.Reset()
	s.tracker.Reset()
	s.scroll, s.vheight = 0, 0
	logger.Info("conversation_opened", "chat", ev.chatID, "epoch", s.epoch)
	// initial load renders as scroll-to-bottom; the fetch path is the same
	s.startLoad(true)
}

func (s *Session) startLoad(initial bool) {
	if s.chatID == "" {
		return
	}
	if !s.cursor.BeginLoad() {
		return
	}
	epoch, chatID, offset := s.epoch, s.chatID, s.cursor.Offset
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), fetchTimeout)
		defer cancel()
		msgs, err := s.fetcher.FetchPage(ctx, chatID, offset, s.cfg.PageSize)
		s.post(event{kind: evPageResult, epoch: epoch, chatID: chatID, initial: initial, msgs: msgs, err: err})
	}()
}

func (s *Session) handlePageResult(ev event) {
	if ev.epoch != s.epoch {
		pagesDiscarded.Inc()
		logger.Warn("stale_page_discarded", "chat", ev.chatID, "epoch", ev.epoch)
		return
	}
	if ev.err != nil {
		s.cursor.FailLoad()
		logger.Error("page_fetch_failed", "chat", ev.chatID, "offset", s.cursor.Offset, "error", ev.err)
		return
	}
	if ev.initial {
		s.store.Append(ev.msgs)
	} else {
		s.store.Prepend(ev.msgs)
	}
	s.cursor.CompleteLoad(len(ev.msgs), s.cfg.PageSize)
	pagesLoaded.Inc()
	logger.Info("page_loaded", "chat", ev.chatID, "count", len(ev.msgs),
		"offset", s.cursor.Offset, "has_more", s.cursor.HasMore)
}

func (s *Session) handleSend(ev event) {
	if s.chatID == "" {
		logger.Warn("send_without_conversation", "provisional_id", ev.provisionalID)
		return
	}
	now := s.now().UnixMilli()
	m := models.Message{
		ID:          ev.provisionalID,
		ChatID:      s.chatID,
		Dir:         models.DirectionOut,
		TS:          now,
		Body:        ev.body,
		Media:       ev.media,
		Ack:         models.AckPending,
		Provisional: true,
	}
	s.store.Upsert(m)
	s.tracker.Register(&PendingSend{
		ProvisionalID: ev.provisionalID,
		ChatID:        s.chatID,
		Body:          ev.body,
		CreatedAt:     now,
	})
	epoch, chatID := s.epoch, s.chatID
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), fetchTimeout)
		defer cancel()
		id, err := s.sender.Send(ctx, chatID, ev.body, ev.media)
		s.post(event{kind: evSendResult, epoch: epoch, provisionalID: ev.provisionalID, confirmedID: id, err: err})
	}()
}

func (s *Session) handleSendResult(ev event) {
	if ev.epoch != s.epoch {
		return
	}
	if ev.err != nil {
		// failed in place: still visible, never silently removed
		s.tracker.Drop(ev.provisionalID)
		s.store.Mutate(ev.provisionalID, func(m *models.Message) { m.Failed = true })
		logger.Warn("send_failed", "provisional_id", ev.provisionalID, "error", ev.err)
		return
	}
	rec := s.tracker.Resolve(ev.provisionalID, ev.confirmedID)
	if rec == nil {
		// the push channel already reconciled this send
		return
	}
	if s.store.Has(ev.confirmedID) {
		// push delivered the confirmed message first and it missed the
		// heuristic match; the provisional entry is superseded
		s.store.Remove(ev.provisionalID)
		return
	}
	if s.store.RewriteID(ev.provisionalID, ev.confirmedID) {
		s.store.Mutate(ev.confirmedID, func(m *models.Message) {
			m.Provisional = false
			if m.Ack < models.AckSent {
				m.Ack = models.AckSent
			}
		})
		reconcileMatched.Inc()
	}
}

func (s *Session) handlePush(ev event) {
	p := ev.push
	if p.ChatID != s.chatID {
		logger.Debug("push_dropped_wrong_chat", "chat", p.ChatID)
		return
	}
	switch p.Kind {
	case models.PushMessage:
		m := p.AsMessage()
		if m.Dir == models.DirectionOut {
			s.reconcileOutbound(m)
		} else {
			s.mergeIncoming(m)
		}
	case models.PushAck:
		lvl, err := models.ParseAckLevel(p.Ack)
		if err != nil {
			logger.Warn("bad_ack_event", "id", p.ID, "ack", p.Ack)
			return
		}
		if !ApplyAck(s.store, p.ID, lvl) {
			acksIgnored.Inc()
		}
	case models.PushMediaReady:
		if !s.store.Mutate(p.ID, func(m *models.Message) { m.Media = p.Media }) {
			logger.Debug("media_event_unknown_id", "id", p.ID)
		}
	}
}

// mergeIncoming upserts an inbound (or already-known) message without losing
// updates applied to an existing record: the ack level merges monotonically
// and an attached media ref is not cleared by a payload that lacks one.
func (s *Session) mergeIncoming(m models.Message) {
	if prev, ok := s.store.Get(m.ID); ok {
		if prev.Ack > m.Ack {
			m.Ack = prev.Ack
		}
		if m.Media == nil {
			m.Media = prev.Media
		}
		if prev.Failed {
			m.Failed = true
		}
	}
	s.store.Upsert(m)
}

// reconcileOutbound applies optimistic-send reconciliation to an outbound
// push message: short-circuit if the authoritative ID is already present,
// else correlate against unresolved optimistic sends, else insert.
func (s *Session) reconcileOutbound(m models.Message) {
	if s.store.Has(m.ID) {
		// second delivery path for a confirmation we already applied
		s.mergeIncoming(m)
		return
	}
	rec := s.tracker.Match(m.ChatID, m.Body, m.TS)
	if rec == nil {
		// no correlating pending record: accept as a new entry rather than
		// ever dropping a message
		s.store.Upsert(m)
		reconcileUnmatched.Inc()
		logger.Info("unmatched_confirmation_inserted", "id", m.ID, "chat", m.ChatID)
		return
	}
	rec.ConfirmedID = m.ID
	if !s.store.RewriteID(rec.ProvisionalID, m.ID) {
		s.store.Upsert(m)
		reconcileUnmatched.Inc()
		return
	}
	s.store.Mutate(m.ID, func(cur *models.Message) {
		cur.Provisional = false
		cur.TS = m.TS // adopt the authoritative timestamp
		if m.Ack > cur.Ack {
			cur.Ack = m.Ack
		}
		if cur.Media == nil {
			cur.Media = m.Media
		}
	})
	reconcileMatched.Inc()
	logger.Info("send_reconciled", "provisional_id", rec.ProvisionalID, "id", m.ID)
}

// sweepAbandoned marks optimistic sends past the correlation window as
// failed in place. Piggybacked on event handling so the loop stays the only
// mutator; no timer goroutine.
func (s *Session) sweepAbandoned() {
	if s.tracker.Len() == 0 {
		return
	}
	cutoff := s.now().UnixMilli() - CorrelationWindow.Milliseconds()
	for _, id := range s.tracker.AbandonBefore(cutoff) {
		s.store.Mutate(id, func(m *models.Message) { m.Failed = true })
		sendsAbandoned.Inc()
		logger.Warn("send_abandoned", "provisional_id", id)
	}
}

func (s *Session) publish() {
	msgs := s.store.Snapshot()
	w := ComputeWindow(len(msgs), s.cfg.ItemHeight, s.scroll, s.vheight, s.cfg.Overscan)
	p := &Projection{
		ChatID:   s.chatID,
		Epoch:    s.epoch,
		Messages: msgs,
		Stacks:   GroupingFlags(msgs),
		Window:   w,
		Cursor:   s.cursor,
	}
	s.proj.Store(p)
	storeSize.Set(float64(len(msgs)))
	s.prefetchAvatars(msgs, w)
}

// prefetchAvatars warms the avatar cache for senders visible in the window.
func (s *Session) prefetchAvatars(msgs []models.Message, w Window) {
	if s.avatars == nil || w.End <= w.Start {
		return
	}
	seen := make(map[string]struct{})
	var ids []string
	for _, m := range msgs[w.Start:w.End] {
		if m.Dir != models.DirectionIn {
			continue
		}
		id := identity.Derive(m)
		if id == "" {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		ids = append(ids, id)
	}
	if len(ids) > 0 {
		s.avatars.Prefetch(ids)
	}
}
