package usecase

import (
	"context"
	"fmt"
	"strings"

	"github.com/CaeTrevisan/cartola-mensagens/internal/domain/league"
	"github.com/CaeTrevisan/cartola-mensagens/internal/platform/logging"
)

// LeagueFetcher pulls the private league listing from the upstream API.
type LeagueFetcher interface {
	LeagueStanding(ctx context.Context, slug, sort string) (league.League, error)
}

type LeagueService struct {
	fetcher LeagueFetcher
	slug    string
	logger  *logging.Logger
}

func NewLeagueService(fetcher LeagueFetcher, slug string, logger *logging.Logger) (*LeagueService, error) {
	if fetcher == nil {
		return nil, fmt.Errorf("league fetcher is required")
	}
	slug = strings.TrimSpace(slug)
	if slug == "" {
		return nil, fmt.Errorf("league slug is required")
	}
	if logger == nil {
		logger = logging.Default()
	}

	return &LeagueService{
		fetcher: fetcher,
		slug:    slug,
		logger:  logger,
	}, nil
}

// List returns the configured league ordered by sort; empty sort defaults to
// the season standings.
func (s *LeagueService) List(ctx context.Context, sort string) (league.League, error) {
	sort = strings.TrimSpace(sort)
	if sort == "" {
		sort = league.SortBySeason
	}

	switch sort {
	case league.SortByRound, league.SortByMonth, league.SortBySeason:
	default:
		return league.League{}, fmt.Errorf("%w: unknown sort %q", ErrInvalidInput, sort)
	}

	out, err := s.fetcher.LeagueStanding(ctx, s.slug, sort)
	if err != nil {
		return league.League{}, fmt.Errorf("list league: %w", err)
	}
	return out, nil
}
