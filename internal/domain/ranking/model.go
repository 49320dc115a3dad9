package ranking

// Entry is one team's position in a computed monthly ranking. Transient:
// produced per report request, never persisted.
type Entry struct {
	TeamID      int64
	Name        string
	ManagerName string
	Points      float64
}

// Monthly is the result of aggregating a month block. StartRound/EndRound
// are the effective bounds actually summed (EndRound never exceeds the last
// closed round). NoClosedRounds distinguishes "window not started yet" from
// a legitimate all-zero ranking.
type Monthly struct {
	Label          string
	StartRound     int
	EndRound       int
	NoClosedRounds bool
	Entries        []Entry
}

// TopN returns the first n entries as a sub-view of the full ranking; the
// computation itself is unaffected by n.
func (m Monthly) TopN(n int) []Entry {
	if n <= 0 || n >= len(m.Entries) {
		return m.Entries
	}
	return m.Entries[:n]
}
