package cartola

import (
	"strings"

	"github.com/CaeTrevisan/cartola-mensagens/internal/domain/league"
	"github.com/CaeTrevisan/cartola-mensagens/internal/domain/market"
)

type marketStatusPayload struct {
	RodadaAtual   int  `json:"rodada_atual"`
	StatusMercado int  `json:"status_mercado"`
	BolaRolando   bool `json:"bola_rolando"`
	GameOver      bool `json:"game_over"`
}

func (p marketStatusPayload) toDomain() market.Status {
	return market.Status{
		CurrentRound: p.RodadaAtual,
		MarketState:  p.StatusMercado,
		BallRolling:  p.BolaRolando,
		SeasonOver:   p.GameOver,
	}
}

type leaguePayload struct {
	Liga  leagueInfoPayload   `json:"liga"`
	Times []leagueTeamPayload `json:"times"`
}

type leagueInfoPayload struct {
	Nome string `json:"nome"`
	Slug string `json:"slug"`
}

type leagueTeamPayload struct {
	TimeID       int64               `json:"time_id"`
	Nome         string              `json:"nome"`
	NomeCartola  string              `json:"nome_cartola"`
	URLEscudoPNG string              `json:"url_escudo_png"`
	Pontos       leaguePointsPayload `json:"pontos"`
}

type leaguePointsPayload struct {
	Rodada     *float64 `json:"rodada"`
	Mes        *float64 `json:"mes"`
	Campeonato *float64 `json:"campeonato"`
}

func (p leaguePayload) toDomain() league.League {
	teams := make([]league.Team, 0, len(p.Times))
	for _, item := range p.Times {
		if item.TimeID <= 0 {
			continue
		}
		teams = append(teams, league.Team{
			ID:          item.TimeID,
			Name:        strings.TrimSpace(item.Nome),
			ManagerName: strings.TrimSpace(item.NomeCartola),
			BadgeURL:    strings.TrimSpace(item.URLEscudoPNG),
			Points: league.TeamPoints{
				Round:  item.Pontos.Rodada,
				Month:  item.Pontos.Mes,
				Season: item.Pontos.Campeonato,
			},
		})
	}
	return league.League{
		Name:  strings.TrimSpace(p.Liga.Nome),
		Slug:  strings.TrimSpace(p.Liga.Slug),
		Teams: teams,
	}
}
