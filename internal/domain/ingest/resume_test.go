package ingest

import "testing"

func TestResumeScannerNoCheckpointImportsEverything(t *testing.T) {
	s := NewResumeScanner(false, 5)

	if !s.Active() {
		t.Fatalf("scanner with no checkpoint should start active")
	}
	for i := 0; i < 5; i++ {
		if forced := s.Observe(i); forced {
			t.Fatalf("Observe(%d) forced = true, want false", i)
		}
		if got := s.Decide(SignalStale); got != Import {
			t.Fatalf("Decide() = %v, want Import", got)
		}
	}
}

func TestResumeScannerResumesAfterCheckpoint(t *testing.T) {
	s := NewResumeScanner(true, 10)

	signals := []Signal{SignalStale, SignalStale, SignalCheckpoint, SignalStale, SignalStale}
	want := []Decision{SkipExisting, SkipExisting, SkipCheckpoint, Import, Import}

	for i, sig := range signals {
		s.Observe(i)
		if got := s.Decide(sig); got != want[i] {
			t.Fatalf("row %d: Decide(%v) = %v, want %v", i, sig, got, want[i])
		}
	}
}

func TestResumeScannerFreshSignalImportsSameRow(t *testing.T) {
	s := NewResumeScanner(true, 10)

	s.Observe(0)
	if got := s.Decide(SignalStale); got != SkipExisting {
		t.Fatalf("Decide(stale) = %v, want SkipExisting", got)
	}
	s.Observe(1)
	if got := s.Decide(SignalFresh); got != Import {
		t.Fatalf("Decide(fresh) = %v, want Import", got)
	}
	if !s.Active() {
		t.Fatalf("scanner should be active after fresh signal")
	}
}

func TestResumeScannerBudgetForcesResume(t *testing.T) {
	total := 7
	s := NewResumeScanner(true, total)

	forcedAt := -1
	for i := 0; i < total; i++ {
		if s.Observe(i) {
			forcedAt = i
			break
		}
		if got := s.Decide(SignalStale); got != SkipExisting {
			t.Fatalf("row %d: Decide() = %v, want SkipExisting", i, got)
		}
	}

	// The checkpoint never appears; the budget is min(1000, total) = total,
	// so the scan must terminate without consuming the whole feed twice.
	if forcedAt != -1 {
		t.Fatalf("forced at %d before budget for %d rows", forcedAt, total)
	}
	if s.Active() {
		t.Fatalf("scanner should still be searching after %d stale rows", total)
	}
	if !s.Observe(total) {
		t.Fatalf("Observe(%d) should force the resume point", total)
	}
	if got := s.Decide(SignalStale); got != Import {
		t.Fatalf("Decide() after forced resume = %v, want Import", got)
	}
}

func TestResumeScannerBudgetCappedAtMaxSearchRows(t *testing.T) {
	s := NewResumeScanner(true, MaxSearchRows*2)

	if s.Observe(MaxSearchRows - 1) {
		t.Fatalf("Observe just below the cap should not force")
	}
	if !s.Observe(MaxSearchRows) {
		t.Fatalf("Observe at the cap should force the resume point")
	}
}

func TestResumeScannerMalformedRowsConsumeBudget(t *testing.T) {
	s := NewResumeScanner(true, 3)

	// Rows 0..2 are malformed: Observe runs, Decide never does.
	for i := 0; i < 3; i++ {
		s.Observe(i)
	}
	if !s.Observe(3) {
		t.Fatalf("budget should be spent by malformed rows")
	}
}
