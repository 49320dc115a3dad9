package usecase

import (
	"context"
	"fmt"
	"math"
	"time"

	sonic "github.com/bytedance/sonic"

	"github.com/CaeTrevisan/cartola-mensagens/internal/platform/cache"
	"github.com/CaeTrevisan/cartola-mensagens/internal/platform/logging"
)

// RoundScoreCacheTTL bounds how stale a cached per-round score may be. Scores
// for closed rounds never change, but serving a short TTL everywhere keeps
// the cache honest about in-flight rounds without a closedness check per key.
const RoundScoreCacheTTL = 10 * time.Minute

// RoundScoreFetcher pulls the raw per-round payload for one team.
type RoundScoreFetcher interface {
	TeamRoundScore(ctx context.Context, teamID int64, round int) ([]byte, error)
}

// RoundScore is the outcome of one (team, round) lookup. Known=false means
// the upstream answered but carried no usable points figure; that outcome is
// cached exactly like a known score.
type RoundScore struct {
	Points float64
	Known  bool
}

type RoundScoreService struct {
	fetcher RoundScoreFetcher
	store   *cache.Store
	logger  *logging.Logger
}

func NewRoundScoreService(fetcher RoundScoreFetcher, store *cache.Store, logger *logging.Logger) (*RoundScoreService, error) {
	if fetcher == nil {
		return nil, fmt.Errorf("round score fetcher is required")
	}
	if store == nil {
		store = cache.NewStore(RoundScoreCacheTTL)
	}
	if logger == nil {
		logger = logging.Default()
	}

	return &RoundScoreService{
		fetcher: fetcher,
		store:   store,
		logger:  logger,
	}, nil
}

// RoundPoints returns the points a team scored in one round, served from the
// TTL cache when fresh. Fetch errors propagate untouched; translating a
// failure into a zero score is the aggregation layer's call, not this one's.
func (s *RoundScoreService) RoundPoints(ctx context.Context, teamID int64, round int) (RoundScore, error) {
	if teamID <= 0 || round <= 0 {
		return RoundScore{}, fmt.Errorf("%w: team id and round must be greater than zero", ErrInvalidInput)
	}

	key := fmt.Sprintf("team:%d:round:%d", teamID, round)
	value, err := s.store.GetOrLoad(ctx, key, func(ctx context.Context) (any, error) {
		raw, fetchErr := s.fetcher.TeamRoundScore(ctx, teamID, round)
		if fetchErr != nil {
			return nil, fetchErr
		}

		score := extractRoundScore(raw)
		if !score.Known {
			s.logger.DebugContext(ctx, "round payload carried no points figure",
				"team_id", teamID, "round", round)
		}
		return score, nil
	})
	if err != nil {
		return RoundScore{}, err
	}

	score, ok := value.(RoundScore)
	if !ok {
		return RoundScore{}, fmt.Errorf("unexpected cached value type %T", value)
	}
	return score, nil
}

// pointsExtractor probes one known payload shape for a points figure.
type pointsExtractor func(payload any) (float64, bool)

// Ordered by how the upstream has historically shaped the payload; the first
// finite hit wins.
var roundPointsExtractors = []pointsExtractor{
	extractTopLevelPoints,    // {"pontos": 12.3}
	extractNestedRoundPoints, // {"pontos": {"rodada": 12.3}}
	extractTeamPoints,        // {"time": {"pontos": 12.3}}
	extractBareNumber,        // 12.3
}

func extractRoundScore(raw []byte) RoundScore {
	var payload any
	if err := sonic.Unmarshal(raw, &payload); err != nil {
		return RoundScore{}
	}

	for _, extract := range roundPointsExtractors {
		if points, ok := extract(payload); ok {
			return RoundScore{Points: points, Known: true}
		}
	}
	return RoundScore{}
}

func extractTopLevelPoints(payload any) (float64, bool) {
	object, ok := payload.(map[string]any)
	if !ok {
		return 0, false
	}
	return finiteNumber(object["pontos"])
}

func extractNestedRoundPoints(payload any) (float64, bool) {
	object, ok := payload.(map[string]any)
	if !ok {
		return 0, false
	}
	nested, ok := object["pontos"].(map[string]any)
	if !ok {
		return 0, false
	}
	return finiteNumber(nested["rodada"])
}

func extractTeamPoints(payload any) (float64, bool) {
	object, ok := payload.(map[string]any)
	if !ok {
		return 0, false
	}
	team, ok := object["time"].(map[string]any)
	if !ok {
		return 0, false
	}
	return finiteNumber(team["pontos"])
}

func extractBareNumber(payload any) (float64, bool) {
	return finiteNumber(payload)
}

func finiteNumber(value any) (float64, bool) {
	number, ok := value.(float64)
	if !ok {
		return 0, false
	}
	if math.IsNaN(number) || math.IsInf(number, 0) {
		return 0, false
	}
	return number, true
}
