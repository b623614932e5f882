package keywords

import "time"

// dateLayouts are the accepted observation timestamp forms, tried in
// order: ISO-8601 with and without a trailing Z and with and without
// fractional seconds, plus space-separated variants. Acquisition software
// is not consistent about which of these it writes.
var dateLayouts = []string{
	"2006-01-02T15:04:05.999999999Z",
	"2006-01-02T15:04:05Z",
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02 15:04:05",
}

// ParseDate parses an observation timestamp against the fixed layout
// list. Timestamps carry no usable zone information, so the result is
// interpreted as UTC. Returns false when no layout matches; callers
// treat that as an absent date, never as a fatal error.
func ParseDate(value string) (time.Time, bool) {
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return t.UTC(), true
		}
	}
	return time.Time{}, false
}
