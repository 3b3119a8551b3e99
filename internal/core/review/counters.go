package review

// ReviewState is the projection of a trace that counter derivation needs.
type ReviewState struct {
	Reviewed bool
	Verdict  Verdict
}

// Counters are the aggregate progress numbers of a session. They are always
// derived by Fold over the session's traces, never incrementally patched.
type Counters struct {
	Total    int
	Reviewed int
	Passed   int
	Failed   int
	Deferred int
}

// Fold computes session counters in a single pass. The four outcome counts
// are independent tallies, not a partition of Reviewed: an unreviewed trace
// counts toward none of passed/failed/deferred.
func Fold(states []ReviewState) Counters {
	c := Counters{Total: len(states)}
	for _, s := range states {
		if s.Reviewed {
			c.Reviewed++
		}
		switch s.Verdict {
		case VerdictPass:
			c.Passed++
		case VerdictFail:
			c.Failed++
		case VerdictDefer:
			c.Deferred++
		}
	}
	return c
}
