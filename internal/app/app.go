package app

import (
	"fmt"
	"net/http"

	"github.com/CaeTrevisan/cartola-mensagens/internal/config"
	"github.com/CaeTrevisan/cartola-mensagens/internal/domain/credential"
	"github.com/CaeTrevisan/cartola-mensagens/internal/domain/season"
	"github.com/CaeTrevisan/cartola-mensagens/internal/infrastructure/cartola"
	"github.com/CaeTrevisan/cartola-mensagens/internal/infrastructure/globoid"
	"github.com/CaeTrevisan/cartola-mensagens/internal/interfaces/httpapi"
	"github.com/CaeTrevisan/cartola-mensagens/internal/platform/cache"
	"github.com/CaeTrevisan/cartola-mensagens/internal/platform/logging"
	"github.com/CaeTrevisan/cartola-mensagens/internal/platform/resilience"
	"github.com/CaeTrevisan/cartola-mensagens/internal/usecase"
)

func NewHTTPServer(cfg config.Config, logger *logging.Logger) (*http.Server, error) {
	if logger == nil {
		logger = logging.Default()
	}

	credentials := credential.NewStore(cfg.GloboIDRefreshToken)
	tokens := globoid.NewClient(globoid.ClientConfig{
		TokenURL: cfg.GloboIDTokenURL,
		ClientID: cfg.GloboIDClientID,
		Timeout:  cfg.GloboIDTimeout,
		Logger:   logger,
	}, credentials)

	cartolaClient := cartola.NewClient(cartola.ClientConfig{
		BaseURL: cfg.CartolaBaseURL,
		Timeout: cfg.CartolaTimeout,
		Logger:  logger,
		CircuitBreaker: resilience.CircuitBreakerConfig{
			Enabled:          cfg.CartolaCircuitEnabled,
			FailureThreshold: cfg.CartolaCircuitFailureCount,
			OpenTimeout:      cfg.CartolaCircuitOpenTimeout,
			HalfOpenMaxReq:   cfg.CartolaCircuitHalfOpenMaxReq,
		},
	}, tokens)

	calendar := season.DefaultCalendar()
	scoreCache := cache.NewStore(cfg.RoundScoreCacheTTL)

	roundScoreSvc, err := usecase.NewRoundScoreService(cartolaClient, scoreCache, logger)
	if err != nil {
		return nil, fmt.Errorf("build round score service: %w", err)
	}
	rankingSvc, err := usecase.NewMonthlyRankingService(cartolaClient, roundScoreSvc, cfg.ReportWorkers, logger)
	if err != nil {
		return nil, fmt.Errorf("build monthly ranking service: %w", err)
	}
	leagueSvc, err := usecase.NewLeagueService(cartolaClient, cfg.LeagueSlug, logger)
	if err != nil {
		return nil, fmt.Errorf("build league service: %w", err)
	}
	marketSvc, err := usecase.NewMarketService(cartolaClient, calendar, logger)
	if err != nil {
		return nil, fmt.Errorf("build market service: %w", err)
	}
	reportSvc, err := usecase.NewReportService(leagueSvc, rankingSvc, cartolaClient, calendar, logger)
	if err != nil {
		return nil, fmt.Errorf("build report service: %w", err)
	}

	handler := httpapi.NewHandler(marketSvc, leagueSvc, reportSvc, logger)
	router := httpapi.NewRouter(handler, logger, cfg.CORSAllowedOrigins)

	server := &http.Server{
		Addr:         cfg.HTTPAddr,
		Handler:      router,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}

	if server.Addr == "" {
		return nil, fmt.Errorf("http server addr cannot be empty")
	}

	return server, nil
}
