package league

// Sort orders accepted by the upstream league listing.
const (
	SortByRound  = "rodada"
	SortBySeason = "campeonato"
	SortByMonth  = "mes"
)

// TeamPoints carries the upstream's own per-category figures for a team.
// They cover calendar categories only; the custom month blocks are computed
// locally from per-round scores.
type TeamPoints struct {
	Round  *float64
	Month  *float64
	Season *float64
}

type Team struct {
	ID          int64
	Name        string
	ManagerName string
	BadgeURL    string
	Points      TeamPoints
}

type League struct {
	Name  string
	Slug  string
	Teams []Team
}
