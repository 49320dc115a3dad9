package usecase

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/CaeTrevisan/cartola-mensagens/internal/platform/cache"
	"github.com/CaeTrevisan/cartola-mensagens/internal/platform/logging"
)

type stubRoundScoreFetcher struct {
	payload []byte
	err     error
	calls   atomic.Int32
}

func (s *stubRoundScoreFetcher) TeamRoundScore(context.Context, int64, int) ([]byte, error) {
	s.calls.Add(1)
	return s.payload, s.err
}

func TestRoundScoreService_ExtractsKnownPayloadShapes(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		payload string
		points  float64
		known   bool
	}{
		{name: "top level pontos", payload: `{"pontos":12.3}`, points: 12.3, known: true},
		{name: "nested rodada", payload: `{"pontos":{"rodada":7.81,"mes":40.0}}`, points: 7.81, known: true},
		{name: "team wrapper", payload: `{"time":{"pontos":3.5,"nome":"Time A"}}`, points: 3.5, known: true},
		{name: "bare number", payload: `55.07`, points: 55.07, known: true},
		{name: "zero is a real score", payload: `{"pontos":0}`, points: 0, known: true},
		{name: "negative score", payload: `{"pontos":-2.4}`, points: -2.4, known: true},
		{name: "no figure anywhere", payload: `{"mensagem":"rodada em andamento"}`, known: false},
		{name: "string pontos rejected", payload: `{"pontos":"12.3"}`, known: false},
		{name: "not json at all", payload: `<html>oops</html>`, known: false},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			fetcher := &stubRoundScoreFetcher{payload: []byte(tt.payload)}
			service, err := NewRoundScoreService(fetcher, nil, logging.NewNop())
			if err != nil {
				t.Fatalf("NewRoundScoreService: %v", err)
			}

			score, err := service.RoundPoints(context.Background(), 101, 5)
			if err != nil {
				t.Fatalf("RoundPoints: %v", err)
			}
			if score.Known != tt.known {
				t.Fatalf("Known=%v want %v", score.Known, tt.known)
			}
			if tt.known && score.Points != tt.points {
				t.Fatalf("Points=%v want %v", score.Points, tt.points)
			}
		})
	}
}

func TestRoundScoreService_ExtractorOrderPrefersTopLevel(t *testing.T) {
	t.Parallel()

	// When both shapes are present the top-level figure wins.
	fetcher := &stubRoundScoreFetcher{payload: []byte(`{"pontos":10.0,"time":{"pontos":99.0}}`)}
	service, err := NewRoundScoreService(fetcher, nil, logging.NewNop())
	if err != nil {
		t.Fatalf("NewRoundScoreService: %v", err)
	}

	score, err := service.RoundPoints(context.Background(), 101, 5)
	if err != nil {
		t.Fatalf("RoundPoints: %v", err)
	}
	if score.Points != 10.0 {
		t.Fatalf("Points=%v want 10.0", score.Points)
	}
}

func TestRoundScoreService_ServesFromCache(t *testing.T) {
	t.Parallel()

	fetcher := &stubRoundScoreFetcher{payload: []byte(`{"pontos":12.3}`)}
	service, err := NewRoundScoreService(fetcher, nil, logging.NewNop())
	if err != nil {
		t.Fatalf("NewRoundScoreService: %v", err)
	}

	ctx := context.Background()
	for i := 0; i < 3; i++ {
		if _, err := service.RoundPoints(ctx, 101, 5); err != nil {
			t.Fatalf("RoundPoints %d: %v", i, err)
		}
	}
	if got := fetcher.calls.Load(); got != 1 {
		t.Fatalf("expected a single upstream fetch, got %d", got)
	}

	// A different (team, round) pair is its own cache entry.
	if _, err := service.RoundPoints(ctx, 101, 6); err != nil {
		t.Fatalf("RoundPoints other round: %v", err)
	}
	if got := fetcher.calls.Load(); got != 2 {
		t.Fatalf("distinct key must fetch, got %d calls", got)
	}
}

func TestRoundScoreService_UnknownOutcomeIsCachedToo(t *testing.T) {
	t.Parallel()

	fetcher := &stubRoundScoreFetcher{payload: []byte(`{"mensagem":"sem pontos"}`)}
	service, err := NewRoundScoreService(fetcher, nil, logging.NewNop())
	if err != nil {
		t.Fatalf("NewRoundScoreService: %v", err)
	}

	ctx := context.Background()
	for i := 0; i < 2; i++ {
		score, err := service.RoundPoints(ctx, 101, 5)
		if err != nil {
			t.Fatalf("RoundPoints %d: %v", i, err)
		}
		if score.Known {
			t.Fatalf("payload without a figure reported Known")
		}
	}
	if got := fetcher.calls.Load(); got != 1 {
		t.Fatalf("unknown outcome must be cached, got %d fetches", got)
	}
}

func TestRoundScoreService_RefetchesAfterTTL(t *testing.T) {
	t.Parallel()

	fetcher := &stubRoundScoreFetcher{payload: []byte(`{"pontos":12.3}`)}
	service, err := NewRoundScoreService(fetcher, cache.NewStore(20*time.Millisecond), logging.NewNop())
	if err != nil {
		t.Fatalf("NewRoundScoreService: %v", err)
	}

	ctx := context.Background()
	if _, err := service.RoundPoints(ctx, 101, 5); err != nil {
		t.Fatalf("RoundPoints: %v", err)
	}
	time.Sleep(30 * time.Millisecond)
	if _, err := service.RoundPoints(ctx, 101, 5); err != nil {
		t.Fatalf("RoundPoints after TTL: %v", err)
	}

	if got := fetcher.calls.Load(); got != 2 {
		t.Fatalf("expected refetch after TTL, got %d fetches", got)
	}
}

func TestRoundScoreService_FetchErrorsPropagateUncached(t *testing.T) {
	t.Parallel()

	fetchErr := errors.New("upstream down")
	fetcher := &stubRoundScoreFetcher{err: fetchErr}
	service, err := NewRoundScoreService(fetcher, nil, logging.NewNop())
	if err != nil {
		t.Fatalf("NewRoundScoreService: %v", err)
	}

	ctx := context.Background()
	for i := 0; i < 2; i++ {
		if _, err := service.RoundPoints(ctx, 101, 5); !errors.Is(err, fetchErr) {
			t.Fatalf("expected fetch error, got %v", err)
		}
	}
	if got := fetcher.calls.Load(); got != 2 {
		t.Fatalf("failures must not be cached, got %d fetches", got)
	}
}

func TestRoundScoreService_RejectsInvalidInput(t *testing.T) {
	t.Parallel()

	service, err := NewRoundScoreService(&stubRoundScoreFetcher{}, nil, logging.NewNop())
	if err != nil {
		t.Fatalf("NewRoundScoreService: %v", err)
	}

	ctx := context.Background()
	if _, err := service.RoundPoints(ctx, 0, 5); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput for team id, got %v", err)
	}
	if _, err := service.RoundPoints(ctx, 101, -1); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput for round, got %v", err)
	}
}
