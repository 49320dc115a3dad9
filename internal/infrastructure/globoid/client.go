package globoid

import (
	"context"
	"encoding/base64"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	sonic "github.com/bytedance/sonic"
	crerr "github.com/cockroachdb/errors"

	"github.com/CaeTrevisan/cartola-mensagens/internal/domain/credential"
	"github.com/CaeTrevisan/cartola-mensagens/internal/platform/logging"
	"github.com/CaeTrevisan/cartola-mensagens/internal/platform/resilience"
)

const (
	defaultTokenURL = "https://goidc.globo.com/auth/realms/globo.com/protocol/openid-connect/token"

	// Applied when neither the token's own exp claim nor the provider's
	// expires_in is usable.
	fallbackTokenValidity = 5 * time.Minute

	refreshFlightKey = "globoid-refresh"
)

type ClientConfig struct {
	HTTPClient *http.Client
	TokenURL   string
	ClientID   string
	Timeout    time.Duration
	Logger     *logging.Logger
}

// Client performs the OAuth2 refresh-token exchange against the Globo
// identity provider and keeps the shared credential store current.
type Client struct {
	httpClient *http.Client
	tokenURL   string
	clientID   string
	store      *credential.Store
	logger     *logging.Logger
	flight     resilience.SingleFlight
	now        func() time.Time
}

func NewClient(cfg ClientConfig, store *credential.Store) *Client {
	logger := cfg.Logger
	if logger == nil {
		logger = logging.Default()
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: cfg.Timeout}
	}
	if httpClient.Timeout <= 0 {
		httpClient.Timeout = 15 * time.Second
	}

	tokenURL := strings.TrimSpace(cfg.TokenURL)
	if tokenURL == "" {
		tokenURL = defaultTokenURL
	}

	return &Client{
		httpClient: httpClient,
		tokenURL:   tokenURL,
		clientID:   strings.TrimSpace(cfg.ClientID),
		store:      store,
		logger:     logger,
		now:        time.Now,
	}
}

// Configured reports whether the client has everything it needs to perform a
// refresh. When false, auth escalation is off the table entirely.
func (c *Client) Configured() bool {
	return c.clientID != "" && c.store.HasRefreshToken()
}

// EnsureValid returns a bearer token that is valid for at least the store's
// safety margin, refreshing first when needed. Concurrent callers that all
// observe an invalid token share one refresh flight; the identity provider
// sees a single request.
func (c *Client) EnsureValid(ctx context.Context) (string, error) {
	if c.store.Valid() {
		return c.store.Snapshot().AccessToken, nil
	}
	return c.refreshShared(ctx)
}

// ForceRefresh discards the current access token and performs a refresh even
// if the stored token still looks valid. Used after an authenticated call
// comes back 401.
func (c *Client) ForceRefresh(ctx context.Context) (string, error) {
	return c.refreshShared(ctx)
}

func (c *Client) refreshShared(ctx context.Context) (string, error) {
	out, err, shared := c.flight.Do(refreshFlightKey, func() (any, error) {
		if refreshErr := c.refresh(ctx); refreshErr != nil {
			return "", refreshErr
		}
		return c.store.Snapshot().AccessToken, nil
	})
	if err != nil {
		return "", err
	}
	if shared {
		c.logger.DebugContext(ctx, "token refresh coalesced with in-flight request")
	}

	token, ok := out.(string)
	if !ok || token == "" {
		return "", crerr.New("globoid: refresh produced no access token")
	}
	return token, nil
}

func (c *Client) refresh(ctx context.Context) error {
	snapshot := c.store.Snapshot()
	if snapshot.RefreshToken == "" || c.clientID == "" {
		return ErrMissingCredentials
	}

	form := url.Values{}
	form.Set("grant_type", "refresh_token")
	form.Set("client_id", c.clientID)
	form.Set("refresh_token", snapshot.RefreshToken)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.tokenURL, strings.NewReader(form.Encode()))
	if err != nil {
		return crerr.Wrap(err, "globoid: build token request")
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return crerr.Wrap(err, "globoid: send token request")
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return crerr.Wrap(err, "globoid: read token response")
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &AuthError{
			StatusCode: resp.StatusCode,
			Message:    providerErrorMessage(raw),
		}
	}

	var decoded tokenResponse
	if err := sonic.Unmarshal(raw, &decoded); err != nil {
		return &AuthError{
			StatusCode: resp.StatusCode,
			Message:    "unparseable token response: " + abbreviate(raw, 200),
		}
	}
	if strings.TrimSpace(decoded.AccessToken) == "" {
		return &AuthError{
			StatusCode: resp.StatusCode,
			Message:    "token response missing access_token",
		}
	}

	expiresAt := c.deriveExpiry(decoded)
	c.store.Replace(decoded.AccessToken, expiresAt, decoded.RefreshToken)

	c.logger.InfoContext(ctx, "access token refreshed",
		"expires_at", expiresAt.UTC().Format(time.RFC3339),
		"refresh_token_rotated", strings.TrimSpace(decoded.RefreshToken) != "",
	)
	return nil
}

// deriveExpiry picks the token expiry by priority: the JWT's own exp claim,
// then the provider's expires_in, then a fixed fallback validity.
func (c *Client) deriveExpiry(decoded tokenResponse) time.Time {
	if exp, ok := decodeJWTExpiry(decoded.AccessToken); ok {
		return exp
	}
	if decoded.ExpiresIn != nil && *decoded.ExpiresIn > 0 {
		return c.now().Add(time.Duration(*decoded.ExpiresIn) * time.Second)
	}
	return c.now().Add(fallbackTokenValidity)
}

type tokenResponse struct {
	AccessToken  string `json:"access_token"`
	ExpiresIn    *int64 `json:"expires_in"`
	RefreshToken string `json:"refresh_token"`
}

type jwtClaims struct {
	Exp int64 `json:"exp"`
}

// decodeJWTExpiry extracts the exp claim from a three-segment JWT. Any
// structural surprise yields (zero, false); the caller falls back to the
// provider-declared lifetime.
func decodeJWTExpiry(token string) (time.Time, bool) {
	segments := strings.Split(token, ".")
	if len(segments) != 3 {
		return time.Time{}, false
	}

	payload, err := base64.RawURLEncoding.DecodeString(strings.TrimRight(segments[1], "="))
	if err != nil {
		return time.Time{}, false
	}

	var claims jwtClaims
	if err := sonic.Unmarshal(payload, &claims); err != nil || claims.Exp <= 0 {
		return time.Time{}, false
	}

	return time.Unix(claims.Exp, 0), true
}

type providerErrorBody struct {
	Error            string `json:"error"`
	ErrorDescription string `json:"error_description"`
}

func providerErrorMessage(raw []byte) string {
	var body providerErrorBody
	if err := sonic.Unmarshal(raw, &body); err == nil {
		if msg := strings.TrimSpace(body.ErrorDescription); msg != "" {
			return msg
		}
		if msg := strings.TrimSpace(body.Error); msg != "" {
			return msg
		}
	}
	return abbreviate(raw, 200)
}

func abbreviate(raw []byte, limit int) string {
	value := strings.TrimSpace(string(raw))
	if len(value) <= limit {
		return value
	}
	return value[:limit] + "..."
}
