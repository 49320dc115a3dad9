package usecase

import (
	"context"
	"fmt"
	"strings"

	"github.com/valyala/bytebufferpool"

	"github.com/CaeTrevisan/cartola-mensagens/internal/domain/ranking"
	"github.com/CaeTrevisan/cartola-mensagens/internal/domain/season"
	"github.com/CaeTrevisan/cartola-mensagens/internal/platform/logging"
)

const defaultAwardedCount = 3

// MonthlyReport is a fully assembled report: the computed ranking plus the
// rendered message text.
type MonthlyReport struct {
	LeagueName string
	Ranking    ranking.Monthly
	Awarded    int
	Text       string
}

// ReportService assembles monthly reports: resolves the month block, pulls
// the league roster, delegates the ranking computation and renders the text.
type ReportService struct {
	leagues  *LeagueService
	rankings *MonthlyRankingService
	market   MarketStatusFetcher
	calendar season.Calendar
	logger   *logging.Logger
}

func NewReportService(leagues *LeagueService, rankings *MonthlyRankingService, marketFetcher MarketStatusFetcher, calendar season.Calendar, logger *logging.Logger) (*ReportService, error) {
	if leagues == nil {
		return nil, fmt.Errorf("league service is required")
	}
	if rankings == nil {
		return nil, fmt.Errorf("monthly ranking service is required")
	}
	if marketFetcher == nil {
		return nil, fmt.Errorf("market status fetcher is required")
	}
	if logger == nil {
		logger = logging.Default()
	}

	return &ReportService{
		leagues:  leagues,
		rankings: rankings,
		market:   marketFetcher,
		calendar: calendar,
		logger:   logger,
	}, nil
}

// MonthlyReport builds the report for the named month block, or for the block
// containing the current round when label is empty. awarded <= 0 falls back
// to the default podium size.
func (s *ReportService) MonthlyReport(ctx context.Context, label string, awarded int) (MonthlyReport, error) {
	if awarded <= 0 {
		awarded = defaultAwardedCount
	}

	block, err := s.resolveBlock(ctx, label)
	if err != nil {
		return MonthlyReport{}, err
	}

	standing, err := s.leagues.List(ctx, "")
	if err != nil {
		return MonthlyReport{}, err
	}

	monthly, err := s.rankings.ComputeMonthlyRanking(ctx, block, standing.Teams)
	if err != nil {
		return MonthlyReport{}, err
	}

	return MonthlyReport{
		LeagueName: standing.Name,
		Ranking:    monthly,
		Awarded:    awarded,
		Text:       renderMonthlyText(standing.Name, monthly, awarded),
	}, nil
}

func (s *ReportService) resolveBlock(ctx context.Context, label string) (season.MonthBlock, error) {
	label = strings.TrimSpace(label)
	if label != "" {
		block, ok := s.calendar.BlockForLabel(label)
		if !ok {
			return season.MonthBlock{}, fmt.Errorf("%w: unknown month label %q", ErrInvalidInput, label)
		}
		return block, nil
	}

	status, err := s.market.MarketStatus(ctx)
	if err != nil {
		return season.MonthBlock{}, fmt.Errorf("resolve current month block: %w", err)
	}

	block, ok := s.calendar.BlockForRound(status.CurrentRound)
	if !ok {
		s.logger.WarnContext(ctx, "current round outside calendar, using first block",
			"current_round", status.CurrentRound, "label", block.Label)
	}
	return block, nil
}

// renderMonthlyText formats the ranking as the message posted to the league
// group. Pure; distinguishing "not started" from "all zero" is already
// decided by the ranking's flag.
func renderMonthlyText(leagueName string, monthly ranking.Monthly, awarded int) string {
	buf := bytebufferpool.Get()
	defer bytebufferpool.Put(buf)

	if leagueName != "" {
		fmt.Fprintf(buf, "Liga %s\n", leagueName)
	}

	if monthly.NoClosedRounds {
		fmt.Fprintf(buf, "Ranking de %s: nenhuma rodada fechada ainda (inicia na rodada %d).\n",
			monthly.Label, monthly.StartRound)
		return buf.String()
	}

	fmt.Fprintf(buf, "Ranking de %s (rodadas %d a %d):\n", monthly.Label, monthly.StartRound, monthly.EndRound)
	for i, entry := range monthly.Entries {
		marker := " "
		if i < awarded {
			marker = "*"
		}
		fmt.Fprintf(buf, "%s %2d. %s (%s) - %.2f pts\n", marker, i+1, entry.Name, entry.ManagerName, entry.Points)
	}
	if len(monthly.Entries) > 0 {
		fmt.Fprintf(buf, "Premiados: top %d\n", awarded)
	}

	return buf.String()
}
