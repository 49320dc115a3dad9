package usecase

import (
	"context"
	"fmt"

	"github.com/CaeTrevisan/cartola-mensagens/internal/domain/market"
	"github.com/CaeTrevisan/cartola-mensagens/internal/domain/season"
	"github.com/CaeTrevisan/cartola-mensagens/internal/platform/logging"
)

// MarketService exposes the upstream market snapshot together with the month
// block the current round falls in.
type MarketService struct {
	fetcher  MarketStatusFetcher
	calendar season.Calendar
	logger   *logging.Logger
}

func NewMarketService(fetcher MarketStatusFetcher, calendar season.Calendar, logger *logging.Logger) (*MarketService, error) {
	if fetcher == nil {
		return nil, fmt.Errorf("market status fetcher is required")
	}
	if logger == nil {
		logger = logging.Default()
	}

	return &MarketService{
		fetcher:  fetcher,
		calendar: calendar,
		logger:   logger,
	}, nil
}

// Status returns the market snapshot and the label of the month block
// containing the current round.
func (s *MarketService) Status(ctx context.Context) (market.Status, string, error) {
	status, err := s.fetcher.MarketStatus(ctx)
	if err != nil {
		return market.Status{}, "", fmt.Errorf("get market status: %w", err)
	}

	block, ok := s.calendar.BlockForRound(status.CurrentRound)
	if !ok {
		s.logger.WarnContext(ctx, "current round outside calendar, using first block",
			"current_round", status.CurrentRound, "label", block.Label)
	}
	return status, block.Label, nil
}
