package timeutil

import (
	"strings"
	"time"
)

// Timestamp layouts observed in backend responses. The readings endpoint
// returns whatever the store kept (SQL-style, no zone), while the
// approximation endpoint appends a literal "Z" to an ISO timestamp that may
// already carry an offset.
var layouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02 15:04:05",
}

// Normalize parses a backend timestamp string into a canonical UTC instant.
// Invalid input yields the zero time (check with IsZero); Normalize never
// panics. A trailing UTC marker that duplicates an explicit offset is
// stripped once, so the offset is applied exactly once.
func Normalize(raw string) time.Time {
	s := strings.TrimSpace(raw)
	if s == "" {
		return time.Time{}
	}

	// "2023-05-01T10:00:00+03:00Z" — offset plus redundant marker. Strip the
	// marker once and let the offset stand.
	if strings.HasSuffix(s, "Z") && hasExplicitOffset(s[:len(s)-1]) {
		s = s[:len(s)-1]
	}

	for _, layout := range layouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC()
		}
	}
	return time.Time{}
}

// hasExplicitOffset reports whether the timestamp body ends in a +hh:mm or
// -hh:mm zone offset. The date's own dashes are out of reach: the offset
// sign sits after the time portion, position 19 at the earliest.
func hasExplicitOffset(s string) bool {
	if len(s) < len("2006-01-02T15:04:05+07:00") {
		return false
	}
	for i := len(s) - 6; i < len(s); i++ {
		c := s[i]
		if c == '+' || c == '-' {
			return i >= 19
		}
	}
	return false
}
