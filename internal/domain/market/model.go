package market

// Market state codes as reported by the upstream status endpoint.
const (
	StateOpen        = 1
	StateClosed      = 2
	StateMaintenance = 4
)

// Status is the upstream market snapshot used to decide which rounds are
// scoring-final.
type Status struct {
	CurrentRound int
	MarketState  int
	BallRolling  bool
	SeasonOver   bool
}

// LastClosedRound returns the highest round whose scoring is final. The
// active round is never considered final, whatever the market state or
// in-play flag says, so before round 2 nothing is closed.
func (s Status) LastClosedRound() int {
	if s.CurrentRound <= 1 {
		return 0
	}
	return s.CurrentRound - 1
}

// Started reports whether the season has produced at least one closed round.
func (s Status) Started() bool {
	return s.LastClosedRound() > 0
}
