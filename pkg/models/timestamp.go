package models

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Backends disagree on timestamp encoding: epoch seconds, epoch
// milliseconds, or a textual date-time, depending on the event source.
// NormalizeTimestamp is the single place that heuristic lives; everything
// past the ingestion boundary works in epoch milliseconds.

// millisCutoff separates epoch-second from epoch-millisecond magnitudes.
// Values below it are seconds (covers dates through year 33658).
const millisCutoff = int64(1e12)

var textLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
}

// NormalizeTimestamp converts a raw timestamp value into epoch milliseconds.
// Accepted forms: integer/float epoch seconds or milliseconds, and the
// textual layouts above (interpreted as UTC when no zone is given).
func NormalizeTimestamp(raw any) (int64, error) {
	switch v := raw.(type) {
	case nil:
		return 0, fmt.Errorf("timestamp missing")
	case int64:
		return normalizeEpoch(v), nil
	case int:
		return normalizeEpoch(int64(v)), nil
	case float64:
		return normalizeEpoch(int64(v)), nil
	case string:
		s := strings.TrimSpace(v)
		if s == "" {
			return 0, fmt.Errorf("timestamp missing")
		}
		if n, err := strconv.ParseInt(s, 10, 64); err == nil {
			return normalizeEpoch(n), nil
		}
		for _, layout := range textLayouts {
			if t, err := time.ParseInLocation(layout, s, time.UTC); err == nil {
				return t.UnixMilli(), nil
			}
		}
		return 0, fmt.Errorf("unparseable timestamp: %q", s)
	}
	return 0, fmt.Errorf("unsupported timestamp type %T", raw)
}

func normalizeEpoch(n int64) int64 {
	if n <= 0 {
		return 0
	}
	if n < millisCutoff {
		return n * 1000
	}
	return n
}

// FlexTime decodes a JSON timestamp in any of the accepted wire forms into
// epoch milliseconds. Used on push-channel payloads.
type FlexTime int64

func (f *FlexTime) UnmarshalJSON(b []byte) error {
	s := strings.Trim(string(b), `"`)
	ms, err := NormalizeTimestamp(s)
	if err != nil {
		return err
	}
	*f = FlexTime(ms)
	return nil
}

func (f FlexTime) MarshalJSON() ([]byte, error) {
	return []byte(strconv.FormatInt(int64(f), 10)), nil
}

func (f FlexTime) Millis() int64 { return int64(f) }
