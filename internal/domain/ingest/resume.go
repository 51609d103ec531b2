package ingest

// The upstream spreadsheet exports carry no row identifiers and no stable
// ordering across pulls, and no cursor is persisted between runs. Each run
// must therefore re-derive where previously-imported data ends by scanning
// the fresh feed against the newest record already in the store.

// MaxSearchRows caps how many rows a run may scan while looking for the
// last-persisted record before giving up and importing from the current row.
const MaxSearchRows = 1000

// Signal is the importer's judgement of a single row relative to the
// last-persisted record, evaluated only while the scanner is still
// searching for the resume point.
type Signal int

const (
	// SignalStale marks a row believed to be already persisted.
	SignalStale Signal = iota
	// SignalCheckpoint marks the row that equals the last-persisted record.
	SignalCheckpoint
	// SignalFresh marks a row past the import boundary (recency fallback
	// or a date strictly newer than anything stored).
	SignalFresh
)

// Decision is what the orchestrator should do with the row.
type Decision int

const (
	SkipExisting Decision = iota
	SkipCheckpoint
	Import
)

// ResumeScanner walks a feed in order and resolves the resume point with a
// heuristic cascade: exact checkpoint match, then a per-feed recency
// fallback, then a bounded search budget. Once resolved, every remaining
// row is imported; re-scanning rows that turn out to already exist is safe
// because the writer rejects duplicate natural keys.
type ResumeScanner struct {
	active bool
	budget int
}

// NewResumeScanner prepares a scan over totalRows rows. Without a
// checkpoint (empty store) the whole feed is new and the scanner starts
// active.
func NewResumeScanner(hasCheckpoint bool, totalRows int) *ResumeScanner {
	budget := totalRows
	if budget > MaxSearchRows {
		budget = MaxSearchRows
	}
	return &ResumeScanner{
		active: !hasCheckpoint,
		budget: budget,
	}
}

// Observe applies the bounded-search guard for the row at index. It must be
// called once per row before any parsing, so malformed rows still consume
// budget. Returns true when this call forced the resume point.
func (s *ResumeScanner) Observe(index int) bool {
	if s.active || index < s.budget {
		return false
	}
	s.active = true
	return true
}

// Decide resolves a row while searching. Calling it after the resume point
// has been found always yields Import.
func (s *ResumeScanner) Decide(sig Signal) Decision {
	if s.active {
		return Import
	}

	switch sig {
	case SignalCheckpoint:
		// The row itself is already persisted; new data begins after it.
		s.active = true
		return SkipCheckpoint
	case SignalFresh:
		s.active = true
		return Import
	default:
		return SkipExisting
	}
}

// Active reports whether the import region has been reached.
func (s *ResumeScanner) Active() bool {
	return s.active
}
