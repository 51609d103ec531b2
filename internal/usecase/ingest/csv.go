package ingest

import (
	"encoding/csv"
	"errors"
	"io"
	"strings"
)

// Row is one raw feed row keyed by header name. A column missing from a
// short row simply reads as empty, mirroring how the upstream export drops
// trailing cells.
type Row map[string]string

// Get returns the named column, whitespace-trimmed.
func (r Row) Get(key string) string {
	return strings.TrimSpace(r[key])
}

// Has reports whether the named column carries a non-empty value.
func (r Row) Has(key string) bool {
	return r.Get(key) != ""
}

// DecodeRows parses a delimited-text payload into header-keyed rows.
// Individual unreadable lines are dropped and counted instead of aborting
// the feed; only a payload with no readable header is an error.
func DecodeRows(payload string) (header []string, rows []Row, dropped int, err error) {
	reader := csv.NewReader(strings.NewReader(payload))
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	head, err := reader.Read()
	if err != nil {
		return nil, nil, 0, errors.New("feed payload has no header row")
	}
	if len(head) > 0 {
		head[0] = strings.TrimPrefix(head[0], "\ufeff")
	}
	for i := range head {
		head[i] = strings.TrimSpace(head[i])
	}

	for {
		record, readErr := reader.Read()
		if readErr == io.EOF {
			break
		}
		if readErr != nil {
			dropped++
			continue
		}

		row := make(Row, len(head))
		for i, name := range head {
			if i < len(record) {
				row[name] = record[i]
			}
		}
		rows = append(rows, row)
	}

	return head, rows, dropped, nil
}
