package model

// NextStatus applies an incoming status against the current one and returns
// the status the record must hold afterwards. Terminal states are sticky: a
// PENDING write never regresses a settled record, and a write of the same
// terminal value is a no-op. A write of the opposite terminal value is
// rejected and reported as a conflict so the caller can log the anomaly.
func NextStatus(current, incoming Status) (next Status, conflict bool) {
	if current == "" {
		current = StatusPending
	}

	if !current.Terminal() {
		if incoming == "" {
			return current, false
		}
		return incoming, false
	}

	if incoming == current {
		return current, false
	}

	if incoming.Terminal() {
		return current, true
	}

	return current, false
}
