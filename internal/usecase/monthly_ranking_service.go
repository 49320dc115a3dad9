package usecase

import (
	"context"
	"fmt"
	"sort"
	"sync"

	ants "github.com/panjf2000/ants/v2"

	"github.com/CaeTrevisan/cartola-mensagens/internal/domain/league"
	"github.com/CaeTrevisan/cartola-mensagens/internal/domain/market"
	"github.com/CaeTrevisan/cartola-mensagens/internal/domain/ranking"
	"github.com/CaeTrevisan/cartola-mensagens/internal/domain/season"
	"github.com/CaeTrevisan/cartola-mensagens/internal/platform/logging"
)

const defaultRankingWorkers = 8

// MarketStatusFetcher supplies the market snapshot anchoring round
// closedness.
type MarketStatusFetcher interface {
	MarketStatus(ctx context.Context) (market.Status, error)
}

// RoundPointsProvider is the cached per-(team, round) score lookup.
type RoundPointsProvider interface {
	RoundPoints(ctx context.Context, teamID int64, round int) (RoundScore, error)
}

// MonthlyRankingService aggregates per-round scores into a custom monthly
// ranking. Only closed rounds count: the active round never contributes,
// whatever the market state says.
type MonthlyRankingService struct {
	market  MarketStatusFetcher
	scores  RoundPointsProvider
	logger  *logging.Logger
	workers int
}

func NewMonthlyRankingService(marketFetcher MarketStatusFetcher, scores RoundPointsProvider, workers int, logger *logging.Logger) (*MonthlyRankingService, error) {
	if marketFetcher == nil {
		return nil, fmt.Errorf("market status fetcher is required")
	}
	if scores == nil {
		return nil, fmt.Errorf("round points provider is required")
	}
	if workers < 1 {
		workers = defaultRankingWorkers
	}
	if logger == nil {
		logger = logging.Default()
	}

	return &MonthlyRankingService{
		market:  marketFetcher,
		scores:  scores,
		logger:  logger,
		workers: workers,
	}, nil
}

// ComputeMonthlyRanking sums each team's scores over the block's closed
// rounds and orders the result descending by points. The sort is stable, so
// tied teams keep their league-listing order.
func (s *MonthlyRankingService) ComputeMonthlyRanking(ctx context.Context, block season.MonthBlock, teams []league.Team) (ranking.Monthly, error) {
	if block.StartRound < season.FirstRound || block.EndRound < block.StartRound {
		return ranking.Monthly{}, fmt.Errorf("%w: month block rounds %d..%d are invalid", ErrInvalidInput, block.StartRound, block.EndRound)
	}

	status, err := s.market.MarketStatus(ctx)
	if err != nil {
		return ranking.Monthly{}, fmt.Errorf("resolve market status: %w", err)
	}

	lastClosed := status.LastClosedRound()
	effectiveEnd := block.EndRound
	if effectiveEnd > lastClosed {
		effectiveEnd = lastClosed
	}

	out := ranking.Monthly{
		Label:      block.Label,
		StartRound: block.StartRound,
		EndRound:   effectiveEnd,
	}

	if block.StartRound > lastClosed {
		s.logger.InfoContext(ctx, "month block has no closed rounds yet",
			"label", block.Label, "start_round", block.StartRound, "last_closed", lastClosed)
		out.NoClosedRounds = true
		out.Entries = []ranking.Entry{}
		return out, nil
	}

	totals := make([]float64, len(teams))
	pool, err := ants.NewPool(s.workers)
	if err != nil {
		return ranking.Monthly{}, fmt.Errorf("create ranking worker pool: %w", err)
	}
	defer pool.Release()

	var wg sync.WaitGroup
	for i, team := range teams {
		wg.Add(1)
		index, current := i, team
		if submitErr := pool.Submit(func() {
			defer wg.Done()
			totals[index] = s.sumTeamRounds(ctx, current.ID, block.StartRound, effectiveEnd)
		}); submitErr != nil {
			// Pool refused the task (released or overloaded); run inline so
			// the ranking stays complete.
			totals[index] = s.sumTeamRounds(ctx, current.ID, block.StartRound, effectiveEnd)
			wg.Done()
		}
	}
	wg.Wait()

	entries := make([]ranking.Entry, 0, len(teams))
	for i, team := range teams {
		entries = append(entries, ranking.Entry{
			TeamID:      team.ID,
			Name:        team.Name,
			ManagerName: team.ManagerName,
			Points:      totals[i],
		})
	}
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].Points > entries[j].Points
	})

	out.Entries = entries
	return out, nil
}

func (s *MonthlyRankingService) sumTeamRounds(ctx context.Context, teamID int64, startRound, endRound int) float64 {
	total := 0.0
	for round := startRound; round <= endRound; round++ {
		total += s.pointsOrZero(ctx, teamID, round)
	}
	return total
}

// pointsOrZero is the aggregation failure policy: a round whose score cannot
// be fetched, or whose payload carries no usable figure, contributes zero.
// Isolation is per round, never per team.
func (s *MonthlyRankingService) pointsOrZero(ctx context.Context, teamID int64, round int) float64 {
	score, err := s.scores.RoundPoints(ctx, teamID, round)
	if err != nil {
		s.logger.WarnContext(ctx, "round score unavailable, counting zero",
			"team_id", teamID, "round", round, "error", err)
		return 0
	}
	if !score.Known {
		return 0
	}
	return score.Points
}
