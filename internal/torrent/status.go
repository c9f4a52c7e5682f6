package torrent

// validTransitions defines allowed post-process transitions.
// Key is the "from" status, value is list of valid "to" statuses.
var validTransitions = map[Status][]Status{
	StatusNone:       {StatusProcessing},
	StatusPending:    {StatusProcessing},
	StatusProcessing: {StatusCompleted, StatusMatched, StatusUnmatched, StatusError},
	StatusMatched:    {StatusProcessing}, // retry organize
	StatusUnmatched:  {StatusProcessing}, // sweep or manual reprocess
	StatusError:      {StatusProcessing},
	StatusCompleted:  {}, // terminal
}

// CanTransitionTo returns true if transitioning from s to target is valid.
func (s Status) CanTransitionTo(target Status) bool {
	for _, v := range validTransitions[s] {
		if v == target {
			return true
		}
	}
	return false
}

// IsTerminal returns true if the status has no outgoing transitions.
func (s Status) IsTerminal() bool {
	return s == StatusCompleted
}

// NeedsSweep reports whether a completed download in this status should be
// picked up by the periodic sweep.
func (s Status) NeedsSweep() bool {
	return s == StatusNone || s == StatusPending || s == StatusUnmatched
}
