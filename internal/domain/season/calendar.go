package season

const (
	FirstRound = 1
	LastRound  = 38
)

// MonthBlock groups a contiguous range of rounds under one report label.
// Blocks follow the championship schedule, not calendar months.
type MonthBlock struct {
	Label      string
	StartRound int
	EndRound   int
}

// Calendar is an ordered, contiguous, non-overlapping set of month blocks
// covering rounds FirstRound..LastRound. Built once at startup.
type Calendar struct {
	blocks []MonthBlock
}

// DefaultCalendar mirrors the Brasileirão month split used by the league.
func DefaultCalendar() Calendar {
	return Calendar{blocks: []MonthBlock{
		{Label: "abr", StartRound: 1, EndRound: 4},
		{Label: "mai", StartRound: 5, EndRound: 8},
		{Label: "jun", StartRound: 9, EndRound: 13},
		{Label: "jul", StartRound: 14, EndRound: 17},
		{Label: "ago", StartRound: 18, EndRound: 22},
		{Label: "set", StartRound: 23, EndRound: 26},
		{Label: "out", StartRound: 27, EndRound: 31},
		{Label: "nov", StartRound: 32, EndRound: 35},
		{Label: "dez", StartRound: 36, EndRound: 38},
	}}
}

func NewCalendar(blocks []MonthBlock) Calendar {
	out := make([]MonthBlock, len(blocks))
	copy(out, blocks)
	return Calendar{blocks: out}
}

func (c Calendar) Blocks() []MonthBlock {
	out := make([]MonthBlock, len(c.blocks))
	copy(out, c.blocks)
	return out
}

// BlockForRound returns the block containing round. The second return value
// is false when no block matches; the first block is still returned as a
// fallback so callers always have a usable window, but they are expected to
// log the miss (full coverage makes it unreachable in practice).
func (c Calendar) BlockForRound(round int) (MonthBlock, bool) {
	for _, block := range c.blocks {
		if round >= block.StartRound && round <= block.EndRound {
			return block, true
		}
	}
	if len(c.blocks) == 0 {
		return MonthBlock{}, false
	}
	return c.blocks[0], false
}

// BlockForLabel finds a block by its report label.
func (c Calendar) BlockForLabel(label string) (MonthBlock, bool) {
	for _, block := range c.blocks {
		if block.Label == label {
			return block, true
		}
	}
	return MonthBlock{}, false
}
