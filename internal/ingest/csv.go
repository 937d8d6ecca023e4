package ingest

import (
	"encoding/csv"
	"io"
	"strings"
)

// headerReader reads a CSV stream and yields each data row as a map keyed
// by the header row's column names. Header names are trimmed and stripped
// of a leading BOM so exported files from spreadsheet tools parse cleanly.
type headerReader struct {
	r       *csv.Reader
	columns []string
}

func newHeaderReader(r io.Reader) *headerReader {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true
	return &headerReader{r: cr}
}

func (h *headerReader) next() (map[string]string, error) {
	if h.columns == nil {
		header, err := h.r.Read()
		if err != nil {
			return nil, err
		}
		h.columns = make([]string, len(header))
		for i, name := range header {
			h.columns[i] = strings.TrimSpace(strings.TrimPrefix(name, "\ufeff"))
		}
	}

	record, err := h.r.Read()
	if err != nil {
		return nil, err
	}
	row := make(map[string]string, len(h.columns))
	for i, name := range h.columns {
		if i < len(record) {
			row[name] = record[i]
		}
	}
	return row, nil
}
