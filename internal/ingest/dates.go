package ingest

import (
	"strings"
	"time"
)

// Upload files arrive from several dealer systems that disagree on date
// formats, so all three common shapes are accepted. Day-first formats are
// tried before ISO to match how the exporting systems write them.
var dateFormats = []string{
	"02-01-2006",
	"02/01/2006",
	"2006-01-02",
}

// parseDate parses a CSV date cell, tolerating surrounding whitespace and
// a UTF-8 BOM. Returns false when no known format matches.
func parseDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(strings.ReplaceAll(s, "\ufeff", ""))
	if s == "" {
		return time.Time{}, false
	}
	for _, format := range dateFormats {
		if t, err := time.Parse(format, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}
