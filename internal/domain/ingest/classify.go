package ingest

import "strings"

// PendingSentinel is the upstream marker for a row whose free-text fields
// have not been filled out yet. Pending rows are skipped without counting
// as errors; they reappear completed in a later pull.
const PendingSentinel = "PENDIENTE"

// RowClass is the outcome of normalizing one raw feed row.
type RowClass int

const (
	RowUsable RowClass = iota
	RowMalformed
	RowPending
)

func (c RowClass) String() string {
	switch c {
	case RowUsable:
		return "usable"
	case RowMalformed:
		return "malformed"
	case RowPending:
		return "pending"
	default:
		return "unknown"
	}
}

// IsPending reports whether any of the given field values equals the
// pending sentinel, ignoring case and surrounding whitespace.
func IsPending(values ...string) bool {
	for _, v := range values {
		if strings.EqualFold(strings.TrimSpace(v), PendingSentinel) {
			return true
		}
	}
	return false
}
