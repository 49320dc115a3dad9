package usecase

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/CaeTrevisan/cartola-mensagens/internal/domain/league"
	"github.com/CaeTrevisan/cartola-mensagens/internal/domain/market"
	"github.com/CaeTrevisan/cartola-mensagens/internal/domain/season"
	"github.com/CaeTrevisan/cartola-mensagens/internal/platform/logging"
)

type stubMarketFetcher struct {
	status market.Status
	err    error
}

func (s *stubMarketFetcher) MarketStatus(context.Context) (market.Status, error) {
	return s.status, s.err
}

// stubScoreProvider serves scores keyed by "team:round"; missing keys fail,
// negative sentinel keys report Known=false.
type stubScoreProvider struct {
	scores map[string]float64
}

func (s *stubScoreProvider) RoundPoints(_ context.Context, teamID int64, round int) (RoundScore, error) {
	key := fmt.Sprintf("%d:%d", teamID, round)
	points, ok := s.scores[key]
	if !ok {
		return RoundScore{}, fmt.Errorf("no score for %s", key)
	}
	return RoundScore{Points: points, Known: true}, nil
}

func newRankingService(t *testing.T, marketFetcher MarketStatusFetcher, scores RoundPointsProvider) *MonthlyRankingService {
	t.Helper()

	service, err := NewMonthlyRankingService(marketFetcher, scores, 4, logging.NewNop())
	if err != nil {
		t.Fatalf("NewMonthlyRankingService: %v", err)
	}
	return service
}

func TestComputeMonthlyRanking_SumsOnlyClosedRounds(t *testing.T) {
	t.Parallel()

	// Round 7 is in flight, so the block's effective range is 5..6 even
	// though it nominally runs through round 8.
	marketFetcher := &stubMarketFetcher{status: market.Status{CurrentRound: 7, MarketState: market.StateClosed, BallRolling: true}}
	scores := &stubScoreProvider{scores: map[string]float64{
		"1:5": 10, "1:6": 20, "1:7": 500,
		"2:5": 12, "2:6": 15, "2:7": 500,
		"3:5": 25, "3:6": 0, "3:7": 500,
	}}
	service := newRankingService(t, marketFetcher, scores)

	block := season.MonthBlock{Label: "mai", StartRound: 5, EndRound: 8}
	teams := []league.Team{
		{ID: 3, Name: "Time C"},
		{ID: 1, Name: "Time A"},
		{ID: 2, Name: "Time B"},
	}

	out, err := service.ComputeMonthlyRanking(context.Background(), block, teams)
	if err != nil {
		t.Fatalf("ComputeMonthlyRanking: %v", err)
	}

	if out.Label != "mai" || out.StartRound != 5 || out.EndRound != 6 {
		t.Fatalf("unexpected block bounds %+v", out)
	}
	if out.NoClosedRounds {
		t.Fatalf("ranking with closed rounds flagged empty")
	}

	wantOrder := []struct {
		teamID int64
		points float64
	}{
		{1, 30},
		{2, 27},
		{3, 25},
	}
	if len(out.Entries) != len(wantOrder) {
		t.Fatalf("expected %d entries, got %d", len(wantOrder), len(out.Entries))
	}
	for i, want := range wantOrder {
		got := out.Entries[i]
		if got.TeamID != want.teamID || got.Points != want.points {
			t.Fatalf("entry %d: got team=%d points=%v, want team=%d points=%v",
				i, got.TeamID, got.Points, want.teamID, want.points)
		}
	}
}

func TestComputeMonthlyRanking_NoClosedRoundsYet(t *testing.T) {
	t.Parallel()

	marketFetcher := &stubMarketFetcher{status: market.Status{CurrentRound: 1, MarketState: market.StateOpen}}
	service := newRankingService(t, marketFetcher, &stubScoreProvider{})

	block := season.MonthBlock{Label: "abr", StartRound: 1, EndRound: 4}
	out, err := service.ComputeMonthlyRanking(context.Background(), block, []league.Team{{ID: 1, Name: "Time A"}})
	if err != nil {
		t.Fatalf("ComputeMonthlyRanking: %v", err)
	}

	if !out.NoClosedRounds {
		t.Fatalf("expected NoClosedRounds for an untouched block")
	}
	if out.Entries == nil || len(out.Entries) != 0 {
		t.Fatalf("expected empty entries, got %v", out.Entries)
	}
	if out.EndRound != 0 {
		t.Fatalf("effective end must not exceed the last closed round, got %d", out.EndRound)
	}
}

func TestComputeMonthlyRanking_FutureBlockIsEmptyNotAnError(t *testing.T) {
	t.Parallel()

	marketFetcher := &stubMarketFetcher{status: market.Status{CurrentRound: 7}}
	service := newRankingService(t, marketFetcher, &stubScoreProvider{})

	block := season.MonthBlock{Label: "dez", StartRound: 36, EndRound: 38}
	out, err := service.ComputeMonthlyRanking(context.Background(), block, []league.Team{{ID: 1}})
	if err != nil {
		t.Fatalf("ComputeMonthlyRanking: %v", err)
	}
	if !out.NoClosedRounds {
		t.Fatalf("future block must report NoClosedRounds")
	}
}

func TestComputeMonthlyRanking_RoundFailureCountsZero(t *testing.T) {
	t.Parallel()

	// Team 2's round 6 lookup fails; that round contributes zero while the
	// team's other rounds still count.
	marketFetcher := &stubMarketFetcher{status: market.Status{CurrentRound: 7}}
	scores := &stubScoreProvider{scores: map[string]float64{
		"1:5": 10, "1:6": 10,
		"2:5": 30,
	}}
	service := newRankingService(t, marketFetcher, scores)

	block := season.MonthBlock{Label: "mai", StartRound: 5, EndRound: 8}
	teams := []league.Team{{ID: 1, Name: "Time A"}, {ID: 2, Name: "Time B"}}

	out, err := service.ComputeMonthlyRanking(context.Background(), block, teams)
	if err != nil {
		t.Fatalf("ComputeMonthlyRanking: %v", err)
	}
	if len(out.Entries) != 2 {
		t.Fatalf("failed rounds must not drop teams, got %d entries", len(out.Entries))
	}
	if out.Entries[0].TeamID != 2 || out.Entries[0].Points != 30 {
		t.Fatalf("unexpected leader %+v", out.Entries[0])
	}
	if out.Entries[1].TeamID != 1 || out.Entries[1].Points != 20 {
		t.Fatalf("unexpected runner-up %+v", out.Entries[1])
	}
}

func TestComputeMonthlyRanking_TiesKeepListingOrder(t *testing.T) {
	t.Parallel()

	marketFetcher := &stubMarketFetcher{status: market.Status{CurrentRound: 6}}
	scores := &stubScoreProvider{scores: map[string]float64{
		"7:5": 10,
		"8:5": 10,
		"9:5": 10,
	}}
	service := newRankingService(t, marketFetcher, scores)

	block := season.MonthBlock{Label: "mai", StartRound: 5, EndRound: 8}
	teams := []league.Team{{ID: 8}, {ID: 7}, {ID: 9}}

	out, err := service.ComputeMonthlyRanking(context.Background(), block, teams)
	if err != nil {
		t.Fatalf("ComputeMonthlyRanking: %v", err)
	}
	gotOrder := []int64{out.Entries[0].TeamID, out.Entries[1].TeamID, out.Entries[2].TeamID}
	if gotOrder[0] != 8 || gotOrder[1] != 7 || gotOrder[2] != 9 {
		t.Fatalf("tied teams must keep listing order, got %v", gotOrder)
	}
}

func TestComputeMonthlyRanking_MarketStatusErrorPropagates(t *testing.T) {
	t.Parallel()

	statusErr := errors.New("mercado offline")
	service := newRankingService(t, &stubMarketFetcher{err: statusErr}, &stubScoreProvider{})

	block := season.MonthBlock{Label: "mai", StartRound: 5, EndRound: 8}
	if _, err := service.ComputeMonthlyRanking(context.Background(), block, nil); !errors.Is(err, statusErr) {
		t.Fatalf("expected market status error, got %v", err)
	}
}

func TestComputeMonthlyRanking_RejectsInvalidBlock(t *testing.T) {
	t.Parallel()

	service := newRankingService(t, &stubMarketFetcher{}, &stubScoreProvider{})

	for _, block := range []season.MonthBlock{
		{Label: "bad", StartRound: 0, EndRound: 4},
		{Label: "bad", StartRound: 8, EndRound: 5},
	} {
		if _, err := service.ComputeMonthlyRanking(context.Background(), block, nil); !errors.Is(err, ErrInvalidInput) {
			t.Fatalf("block %+v: expected ErrInvalidInput, got %v", block, err)
		}
	}
}
