package telemetry

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	"chatsync/pkg/state"
)

// Minimal, low-overhead request telemetry designed for local usage.
// - By default only slow requests are logged (see slowThreshold).
// - Per-request spans are only recorded when a request is sampled.

type ctxKeyType struct{}

var (
	writerOnce    sync.Once
	writerCh      chan []byte
	requestCtr    uint64
	spanCtr       uint64
	sampleRate    = 0.001
	slowThreshold = 200 * time.Millisecond
)

// Span is a simple span relative to request start (milliseconds).
type Span struct {
	ID       string `json:"id"`
	ParentID string `json:"parent_id,omitempty"`
	Op       string `json:"op"`
	StartMs  int64  `json:"start_ms"`
	Duration int64  `json:"duration_ms"`
}

// Telemetry holds the per-request trace and metadata.
type Telemetry struct {
	RequestID string `json:"request_id"`
	Op        string `json:"op"`
	StartMs   int64  `json:"start_ms"`
	Duration  int64  `json:"duration_ms"`
	Status    int    `json:"status"`
	Spans     []Span `json:"spans,omitempty"`

	startTime time.Time
	mu        sync.Mutex
	spanStack []string
}

// initWriter lazily starts a background writer that appends lines to
// telemetry.log under the state telemetry dir.
func initWriter() {
	writerCh = make(chan []byte, 1024)
	go func() {
		dir := filepath.Join("state", "telemetry")
		if p := state.ArtifactPath("telemetry"); p != "" {
			dir = p
		} else if state.PathsVar.Telemetry != "" {
			dir = state.PathsVar.Telemetry
		}
		_ = os.MkdirAll(dir, 0o755)
		f, err := os.OpenFile(filepath.Join(dir, "telemetry.log"), os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
		if err != nil {
			return
		}
		defer f.Close()
		for b := range writerCh {
			_, _ = f.Write(b)
		}
	}()
}

// Middleware wraps the provided handler and records request timing and
// sampled spans.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		reqID := genRequestID()
		sampled := shouldSample(r)

		var tel *Telemetry
		if sampled {
			tel = &Telemetry{
				RequestID: reqID,
				Op:        r.URL.Path,
				startTime: start,
				StartMs:   start.UnixMilli(),
			}
			rootID := genSpanID()
			tel.Spans = append(tel.Spans, Span{ID: rootID, Op: tel.Op, StartMs: 0})
			tel.spanStack = append(tel.spanStack, rootID)
			r = r.WithContext(context.WithValue(r.Context(), ctxKeyType{}, tel))
		}

		srw := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(srw, r)

		dur := time.Since(start)
		if tel != nil {
			tel.mu.Lock()
			tel.Status = srw.status
			tel.Duration = dur.Milliseconds()
			b := renderTrace(tel)
			tel.mu.Unlock()
			enqueue(b)
			return
		}

		if dur > slowThreshold {
			enqueue([]byte(fmt.Sprintf("SLOW %s op=%s duration_ms=%d status=%d\n",
				reqID, r.URL.Path, dur.Milliseconds(), srw.status)))
		}
	})
}

func enqueue(b []byte) {
	writerOnce.Do(initWriter)
	select {
	case writerCh <- b:
	default:
		// drop rather than block the request path
	}
}

// StartSpan returns an end function. If telemetry isn't enabled for the
// request, the end function is a no-op.
func StartSpan(ctx context.Context, name string) func() {
	v := ctx.Value(ctxKeyType{})
	if v == nil {
		return func() {}
	}
	tel, ok := v.(*Telemetry)
	if !ok {
		return func() {}
	}
	startRel := time.Since(tel.startTime).Milliseconds()
	id := genSpanID()
	parent := ""

	tel.mu.Lock()
	if len(tel.spanStack) > 0 {
		parent = tel.spanStack[len(tel.spanStack)-1]
	}
	tel.Spans = append(tel.Spans, Span{ID: id, ParentID: parent, Op: name, StartMs: startRel})
	tel.spanStack = append(tel.spanStack, id)
	idx := len(tel.Spans) - 1
	tel.mu.Unlock()

	return func() {
		endRel := time.Since(tel.startTime).Milliseconds()
		tel.mu.Lock()
		if idx < len(tel.Spans) {
			tel.Spans[idx].Duration = endRel - tel.Spans[idx].StartMs
		}
		if len(tel.spanStack) > 0 {
			tel.spanStack = tel.spanStack[:len(tel.spanStack)-1]
		}
		tel.mu.Unlock()
	}
}

func renderTrace(t *Telemetry) []byte {
	out := fmt.Sprintf("REQUEST %s op=%s start_ms=%d duration_ms=%d status=%d\n",
		t.RequestID, t.Op, t.StartMs, t.Duration, t.Status)
	for _, sp := range t.Spans {
		out += fmt.Sprintf("  - %s id=%s parent=%s start_ms=%d duration_ms=%d\n",
			sp.Op, sp.ID, sp.ParentID, sp.StartMs, sp.Duration)
	}
	return []byte(out + "\n")
}

// shouldSample makes a cheap deterministic sampling decision. Sampling can
// be forced per request with `X-Debug-Telemetry: 1`.
func shouldSample(r *http.Request) bool {
	if r.Header.Get("X-Debug-Telemetry") == "1" {
		return true
	}
	if sampleRate <= 0 {
		return false
	}
	denom := int64(1 / sampleRate)
	if denom <= 1 {
		return true
	}
	n := int64(atomic.AddUint64(&requestCtr, 1))
	return (n % denom) == 0
}

func genRequestID() string {
	n := atomic.AddUint64(&requestCtr, 1)
	return fmt.Sprintf("r-%s-%d", time.Now().Format("20060102T150405"), n)
}

func genSpanID() string {
	return fmt.Sprintf("s-%d", atomic.AddUint64(&spanCtr, 1))
}

// SetSampleRate sets the approximate sampling rate for full traces (0..1).
// A rate of 0 disables full tracing (only slow requests will be logged).
func SetSampleRate(r float64) {
	if r < 0 {
		r = 0
	}
	if r > 1 {
		r = 1
	}
	sampleRate = r
}

// SetSlowThreshold sets the duration above which non-sampled requests get a
// lightweight log line.
func SetSlowThreshold(d time.Duration) {
	if d <= 0 {
		d = 0
	}
	slowThreshold = d
}

// statusRecorder captures the response status code.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}
