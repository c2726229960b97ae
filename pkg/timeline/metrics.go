package timeline

import "github.com/prometheus/client_golang/prometheus"

var (
	eventsApplied = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "chatsync_session_events_total",
		Help: "Session events applied, by kind.",
	}, []string{"kind"})

	eventsDropped = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "chatsync_session_events_dropped_total",
		Help: "Events dropped because the session queue was full.",
	})

	reconcileMatched = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "chatsync_reconcile_matched_total",
		Help: "Confirmations merged into a provisional entry.",
	})

	reconcileUnmatched = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "chatsync_reconcile_unmatched_total",
		Help: "Outbound confirmations inserted as new entries (duplicate bubble accepted over message loss).",
	})

	sendsAbandoned = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "chatsync_sends_abandoned_total",
		Help: "Optimistic sends abandoned after the correlation window.",
	})

	acksIgnored = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "chatsync_acks_regressed_total",
		Help: "Ack updates ignored by the monotonic merge rule.",
	})

	pagesLoaded = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "chatsync_history_pages_loaded_total",
		Help: "History pages merged into the store.",
	})

	pagesDiscarded = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "chatsync_history_pages_discarded_total",
		Help: "Late page results discarded after a conversation switch.",
	})

	storeSize = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "chatsync_store_messages",
		Help: "Messages held for the open conversation.",
	})
)

func init() {
	prometheus.MustRegister(
		eventsApplied, eventsDropped,
		reconcileMatched, reconcileUnmatched, sendsAbandoned,
		acksIgnored, pagesLoaded, pagesDiscarded, storeSize,
	)
}
