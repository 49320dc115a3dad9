package cartola

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	sonic "github.com/bytedance/sonic"

	"github.com/CaeTrevisan/cartola-mensagens/internal/domain/league"
	"github.com/CaeTrevisan/cartola-mensagens/internal/domain/market"
	"github.com/CaeTrevisan/cartola-mensagens/internal/platform/logging"
	"github.com/CaeTrevisan/cartola-mensagens/internal/platform/resilience"
	"github.com/CaeTrevisan/cartola-mensagens/internal/usecase"
)

const (
	defaultBaseURL = "https://api.cartola.globo.com"

	headerApp  = "X-GLB-App"
	headerAuth = "X-GLB-Auth"

	appName  = "cartola"
	authMode = "oidc"

	bodySnippetLimit = 300
)

// TokenSource supplies bearer tokens for authenticated upstream calls.
// Satisfied by the globoid client.
type TokenSource interface {
	Configured() bool
	EnsureValid(ctx context.Context) (string, error)
	ForceRefresh(ctx context.Context) (string, error)
}

type ClientConfig struct {
	HTTPClient     *http.Client
	BaseURL        string
	Timeout        time.Duration
	Logger         *logging.Logger
	CircuitBreaker resilience.CircuitBreakerConfig
}

// Client is the resilient upstream API client. Requests go out
// unauthenticated first; a 401/403 escalates to a single authenticated retry
// when a refresh credential is configured, and an expired bearer on an
// authenticated call is refreshed exactly once before giving up.
type Client struct {
	httpClient     *http.Client
	baseURL        string
	tokens         TokenSource
	logger         *logging.Logger
	breaker        *resilience.CircuitBreaker
	circuitEnabled bool
}

func NewClient(cfg ClientConfig, tokens TokenSource) *Client {
	logger := cfg.Logger
	if logger == nil {
		logger = logging.Default()
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: cfg.Timeout}
	}
	if httpClient.Timeout <= 0 {
		httpClient.Timeout = 20 * time.Second
	}

	baseURL := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	breakerCfg := resilience.NormalizeCircuitBreakerConfig(cfg.CircuitBreaker)

	return &Client{
		httpClient:     httpClient,
		baseURL:        baseURL,
		tokens:         tokens,
		logger:         logger,
		breaker:        resilience.NewCircuitBreaker(breakerCfg.FailureThreshold, breakerCfg.OpenTimeout, breakerCfg.HalfOpenMaxReq),
		circuitEnabled: breakerCfg.Enabled,
	}
}

// MarketStatus fetches the market snapshot that anchors all round-closedness
// decisions.
func (c *Client) MarketStatus(ctx context.Context) (market.Status, error) {
	raw, err := c.Get(ctx, "/mercado/status", nil, false)
	if err != nil {
		return market.Status{}, fmt.Errorf("fetch market status: %w", err)
	}

	var payload marketStatusPayload
	if err := decodeJSON(raw, &payload); err != nil {
		return market.Status{}, err
	}
	return payload.toDomain(), nil
}

// LeagueStanding fetches the private league listing ordered by sort
// ("rodada" | "mes" | "campeonato"). League listings always require auth.
func (c *Client) LeagueStanding(ctx context.Context, slug, sort string) (league.League, error) {
	slug = strings.TrimSpace(slug)
	if slug == "" {
		return league.League{}, fmt.Errorf("%w: league slug is required", usecase.ErrInvalidInput)
	}

	query := url.Values{}
	if sort != "" {
		query.Set("orderBy", sort)
	}

	raw, err := c.Get(ctx, "/auth/liga/"+url.PathEscape(slug), query, true)
	if err != nil {
		return league.League{}, fmt.Errorf("fetch league slug=%s: %w", slug, err)
	}

	var payload leaguePayload
	if err := decodeJSON(raw, &payload); err != nil {
		return league.League{}, err
	}
	return payload.toDomain(), nil
}

// TeamRoundScore fetches the raw per-round payload for one team. The body
// shape varies by season and round state, so extraction is left to the
// caller; this method only guarantees a 2xx body.
func (c *Client) TeamRoundScore(ctx context.Context, teamID int64, round int) ([]byte, error) {
	if teamID <= 0 || round <= 0 {
		return nil, fmt.Errorf("%w: team id and round must be greater than zero", usecase.ErrInvalidInput)
	}

	path := "/time/id/" + strconv.FormatInt(teamID, 10) + "/" + strconv.Itoa(round)
	raw, err := c.Get(ctx, path, nil, false)
	if err != nil {
		return nil, fmt.Errorf("fetch round score team_id=%d round=%d: %w", teamID, round, err)
	}
	return raw, nil
}

// Get performs one upstream GET. requiresAuth=false starts unauthenticated
// and escalates on 401/403; requiresAuth=true attaches the bearer token up
// front. Retries are bounded: one escalation, one forced refresh.
func (c *Client) Get(ctx context.Context, path string, query url.Values, requiresAuth bool) ([]byte, error) {
	if c.circuitEnabled {
		if err := c.breaker.Allow(); err != nil {
			c.logger.WarnContext(ctx, "cartola circuit breaker rejected request", "state", c.breaker.State())
			return nil, fmt.Errorf("%w: fantasy data provider is temporarily unavailable", usecase.ErrDependencyUnavailable)
		}
	}

	fullURL := c.baseURL + path
	if query != nil {
		if encoded := query.Encode(); encoded != "" {
			fullURL += "?" + encoded
		}
	}

	raw, err := c.get(ctx, fullURL, requiresAuth)
	if c.circuitEnabled {
		if err != nil && isCircuitFailure(err) {
			c.breaker.RecordFailure()
		} else {
			c.breaker.RecordSuccess()
		}
	}
	return raw, err
}

func (c *Client) get(ctx context.Context, fullURL string, requiresAuth bool) ([]byte, error) {
	if requiresAuth {
		return c.getAuthenticated(ctx, fullURL)
	}

	raw, err := c.execute(ctx, fullURL, "")
	if err == nil {
		return raw, nil
	}

	// Escalation: some resources quietly demand auth depending on market
	// state. One authenticated retry, only when escalation is possible.
	if isAuthRejection(StatusCodeOf(err)) && c.tokens != nil && c.tokens.Configured() {
		c.logger.InfoContext(ctx, "unauthenticated request rejected, escalating with auth",
			"url", fullURL, "status", StatusCodeOf(err))
		return c.getAuthenticated(ctx, fullURL)
	}
	return nil, err
}

func (c *Client) getAuthenticated(ctx context.Context, fullURL string) ([]byte, error) {
	if c.tokens == nil || !c.tokens.Configured() {
		return nil, fmt.Errorf("%w: authenticated request without refresh credentials", usecase.ErrUnauthorized)
	}

	token, err := c.tokens.EnsureValid(ctx)
	if err != nil {
		return nil, fmt.Errorf("acquire access token: %w", err)
	}

	raw, err := c.execute(ctx, fullURL, token)
	if err == nil {
		return raw, nil
	}

	// The bearer may have been revoked server-side before its local expiry.
	// Force one refresh and retry once; a second rejection propagates.
	if StatusCodeOf(err) == http.StatusUnauthorized {
		c.logger.InfoContext(ctx, "bearer rejected upstream, forcing token refresh", "url", fullURL)
		token, refreshErr := c.tokens.ForceRefresh(ctx)
		if refreshErr != nil {
			return nil, fmt.Errorf("re-acquire access token: %w", refreshErr)
		}
		return c.execute(ctx, fullURL, token)
	}
	return nil, err
}

func (c *Client) execute(ctx context.Context, fullURL, token string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
		req.Header.Set(headerApp, appName)
		req.Header.Set(headerAuth, authMode)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("send request: %s", sanitizeSensitiveText(err.Error(), token))
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 2<<20))
	if err != nil {
		return nil, fmt.Errorf("read response body: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &StatusError{
			StatusCode: resp.StatusCode,
			Body:       sanitizeSensitiveText(abbreviateBody(raw), token),
		}
	}
	return raw, nil
}

// isCircuitFailure counts only provider-side trouble against the breaker;
// auth rejections and caller mistakes never trip it.
func isCircuitFailure(err error) bool {
	status := StatusCodeOf(err)
	if status == 0 {
		// Transport-level failure (or a non-status error from decoding,
		// which never reaches here).
		return true
	}
	return status >= 500 || status == http.StatusTooManyRequests
}

func decodeJSON(raw []byte, target any) error {
	if err := sonic.Unmarshal(raw, target); err != nil {
		return &DecodeError{Snippet: abbreviateBody(raw), cause: err}
	}
	return nil
}

func abbreviateBody(raw []byte) string {
	value := strings.TrimSpace(string(raw))
	if len(value) <= bodySnippetLimit {
		return value
	}
	return value[:bodySnippetLimit] + "..."
}

func sanitizeSensitiveText(value, token string) string {
	value = strings.TrimSpace(value)
	if value == "" || token == "" {
		return value
	}
	return strings.ReplaceAll(value, token, "REDACTED")
}
