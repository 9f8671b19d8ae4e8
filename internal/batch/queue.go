package batch

// Remaining applies the resume filter: the input is truncated to maxUnits
// first (the cap bounds the nominal job size, not the remaining work),
// then units already in the ledger's completed set are dropped, preserving
// relative order. maxUnits <= 0 means no cap.
func Remaining(units []Unit, led *Ledger, maxUnits int) []Unit {
	if maxUnits > 0 && len(units) > maxUnits {
		units = units[:maxUnits]
	}

	remaining := make([]Unit, 0, len(units))
	for _, u := range units {
		if led.IsCompleted(u.ID) {
			continue
		}
		remaining = append(remaining, u)
	}
	return remaining
}
