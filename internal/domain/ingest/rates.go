package ingest

// YieldRates recomputes the derived shift-yield metrics from raw counts.
// Upstream values for these rates are never trusted; they are derived at
// write time. A zero handle count yields zero rates rather than a division
// error.
func YieldRates(pass, fail, ntf, handle int) (fty, dphu, ntfRate float64) {
	if handle <= 0 {
		return 0, 0, 0
	}

	h := float64(handle)
	fty = float64(pass) * 100 / h
	dphu = float64(fail-ntf) * 100 / h
	ntfRate = float64(ntf) * 100 / h
	return fty, dphu, ntfRate
}
