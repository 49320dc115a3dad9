package usecase

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/mock"

	"github.com/CaeTrevisan/cartola-mensagens/internal/domain/market"
	"github.com/CaeTrevisan/cartola-mensagens/internal/domain/season"
	usecasemock "github.com/CaeTrevisan/cartola-mensagens/internal/mocks/usecase"
	"github.com/CaeTrevisan/cartola-mensagens/internal/platform/logging"
)

func TestMarketService_Status_SuccessUsingMockery(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	fetcher := usecasemock.NewMarketStatusFetcher(t)
	fetcher.
		On("MarketStatus", mock.MatchedBy(func(v context.Context) bool { return v == ctx })).
		Return(market.Status{CurrentRound: 5, MarketState: market.StateOpen}, nil).
		Once()

	service, err := NewMarketService(fetcher, season.DefaultCalendar(), logging.NewNop())
	if err != nil {
		t.Fatalf("NewMarketService: %v", err)
	}

	status, label, err := service.Status(ctx)
	if err != nil {
		t.Fatalf("status: %v", err)
	}
	if status.CurrentRound != 5 {
		t.Fatalf("unexpected current round: %d", status.CurrentRound)
	}
	if label != "mai" {
		t.Fatalf("unexpected month label: %q", label)
	}
}

func TestMarketService_Status_FetchFailureUsingMockery(t *testing.T) {
	t.Parallel()

	fetchErr := errors.New("mercado offline")
	fetcher := usecasemock.NewMarketStatusFetcher(t)
	fetcher.
		On("MarketStatus", mock.Anything).
		Return(market.Status{}, fetchErr).
		Once()

	service, err := NewMarketService(fetcher, season.DefaultCalendar(), logging.NewNop())
	if err != nil {
		t.Fatalf("NewMarketService: %v", err)
	}

	if _, _, err := service.Status(context.Background()); !errors.Is(err, fetchErr) {
		t.Fatalf("expected fetch error, got %v", err)
	}
}
