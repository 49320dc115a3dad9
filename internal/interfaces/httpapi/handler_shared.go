package httpapi

import (
	"context"
	"fmt"

	"github.com/go-playground/validator/v10"

	"github.com/CaeTrevisan/cartola-mensagens/internal/domain/league"
	"github.com/CaeTrevisan/cartola-mensagens/internal/domain/market"
	"github.com/CaeTrevisan/cartola-mensagens/internal/domain/ranking"
	"github.com/CaeTrevisan/cartola-mensagens/internal/platform/logging"
	"github.com/CaeTrevisan/cartola-mensagens/internal/usecase"
)

type Handler struct {
	marketService *usecase.MarketService
	leagueService *usecase.LeagueService
	reportService *usecase.ReportService
	logger        *logging.Logger
	validator     *validator.Validate
}

func NewHandler(
	marketService *usecase.MarketService,
	leagueService *usecase.LeagueService,
	reportService *usecase.ReportService,
	logger *logging.Logger,
) *Handler {
	if logger == nil {
		logger = logging.Default()
	}

	return &Handler{
		marketService: marketService,
		leagueService: leagueService,
		reportService: reportService,
		logger:        logger,
		validator:     validator.New(),
	}
}

func (h *Handler) validateRequest(ctx context.Context, payload any) error {
	ctx, span := startSpan(ctx, "httpapi.Handler.validateRequest")
	defer span.End()

	if err := h.validator.StructCtx(ctx, payload); err != nil {
		return fmt.Errorf("%w: validation failed: %v", usecase.ErrInvalidInput, err)
	}

	return nil
}

type monthlyReportRequest struct {
	Month   string `validate:"omitempty,max=12"`
	Awarded int    `validate:"omitempty,gte=1,lte=50"`
}

type marketStatusDTO struct {
	CurrentRound    int    `json:"currentRound"`
	MarketState     int    `json:"marketState"`
	BallRolling     bool   `json:"ballRolling"`
	SeasonOver      bool   `json:"seasonOver"`
	LastClosedRound int    `json:"lastClosedRound"`
	MonthLabel      string `json:"monthLabel,omitempty"`
}

type leagueDTO struct {
	Name  string          `json:"name"`
	Slug  string          `json:"slug"`
	Teams []leagueTeamDTO `json:"teams"`
}

type leagueTeamDTO struct {
	ID           int64    `json:"id"`
	Name         string   `json:"name"`
	ManagerName  string   `json:"managerName"`
	BadgeURL     string   `json:"badgeUrl,omitempty"`
	RoundPoints  *float64 `json:"roundPoints,omitempty"`
	MonthPoints  *float64 `json:"monthPoints,omitempty"`
	SeasonPoints *float64 `json:"seasonPoints,omitempty"`
}

type rankingEntryDTO struct {
	Position    int     `json:"position"`
	TeamID      int64   `json:"teamId"`
	Name        string  `json:"name"`
	ManagerName string  `json:"managerName"`
	Points      float64 `json:"points"`
	Awarded     bool    `json:"awarded"`
}

type monthlyReportDTO struct {
	LeagueName     string            `json:"leagueName"`
	Month          string            `json:"month"`
	StartRound     int               `json:"startRound"`
	EndRound       int               `json:"endRound"`
	NoClosedRounds bool              `json:"noClosedRounds"`
	Awarded        int               `json:"awarded"`
	Entries        []rankingEntryDTO `json:"entries"`
	Text           string            `json:"text"`
}

func marketStatusToDTO(ctx context.Context, v market.Status, monthLabel string) marketStatusDTO {
	ctx, span := startSpan(ctx, "httpapi.marketStatusToDTO")
	defer span.End()

	return marketStatusDTO{
		CurrentRound:    v.CurrentRound,
		MarketState:     v.MarketState,
		BallRolling:     v.BallRolling,
		SeasonOver:      v.SeasonOver,
		LastClosedRound: v.LastClosedRound(),
		MonthLabel:      monthLabel,
	}
}

func leagueToDTO(ctx context.Context, v league.League) leagueDTO {
	ctx, span := startSpan(ctx, "httpapi.leagueToDTO")
	defer span.End()

	teams := make([]leagueTeamDTO, 0, len(v.Teams))
	for _, team := range v.Teams {
		teams = append(teams, leagueTeamDTO{
			ID:           team.ID,
			Name:         team.Name,
			ManagerName:  team.ManagerName,
			BadgeURL:     team.BadgeURL,
			RoundPoints:  team.Points.Round,
			MonthPoints:  team.Points.Month,
			SeasonPoints: team.Points.Season,
		})
	}

	return leagueDTO{
		Name:  v.Name,
		Slug:  v.Slug,
		Teams: teams,
	}
}

func monthlyReportToDTO(ctx context.Context, v usecase.MonthlyReport) monthlyReportDTO {
	ctx, span := startSpan(ctx, "httpapi.monthlyReportToDTO")
	defer span.End()

	return monthlyReportDTO{
		LeagueName:     v.LeagueName,
		Month:          v.Ranking.Label,
		StartRound:     v.Ranking.StartRound,
		EndRound:       v.Ranking.EndRound,
		NoClosedRounds: v.Ranking.NoClosedRounds,
		Awarded:        v.Awarded,
		Entries:        rankingEntriesToDTO(v.Ranking.Entries, v.Awarded),
		Text:           v.Text,
	}
}

func rankingEntriesToDTO(entries []ranking.Entry, awarded int) []rankingEntryDTO {
	out := make([]rankingEntryDTO, 0, len(entries))
	for i, entry := range entries {
		out = append(out, rankingEntryDTO{
			Position:    i + 1,
			TeamID:      entry.TeamID,
			Name:        entry.Name,
			ManagerName: entry.ManagerName,
			Points:      entry.Points,
			Awarded:     i < awarded,
		})
	}
	return out
}
