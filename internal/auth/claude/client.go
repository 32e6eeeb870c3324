package claude

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/claude-relay/crs-cli/internal/proxy"
	log "github.com/sirupsen/logrus"
	"github.com/tidwall/gjson"
)

// OAuth configuration constants for Claude/Anthropic.
const (
	AuthorizeURL = "https://claude.ai/oauth/authorize"
	TokenURL     = "https://console.anthropic.com/v1/oauth/token"
	ProfileURL   = "https://api.anthropic.com/api/oauth/profile"
	ClientID     = "9d1c250a-e61b-44d9-88ed-5944d1962f5e"
	RedirectURI  = "https://console.anthropic.com/oauth/code/callback"
	Scopes       = "org:create_api_key user:profile user:inference"

	// WebOrigin is the web origin associated with the flow; the token
	// endpoint expects Referer/Origin to point at it.
	WebOrigin = "https://claude.ai"

	// UserAgent is the stable client-identifying string the upstream
	// service expects on every request of this flow.
	UserAgent = "claude-cli/1.0.56 (external, cli)"
)

// defaultScopes is assumed when the token response omits a scope field.
const defaultScopes = "user:inference user:profile"

const (
	exchangeTimeout = 30 * time.Second
	profileTimeout  = 15 * time.Second
)

// Stable prefixes identifying which operation failed.
const (
	opExchange = "token exchange failed"
	opRefresh  = "token refresh failed"
	opProfile  = "profile fetch failed"
)

// Account type display names, in precedence order.
const (
	AccountTypeMax  = "Claude Max"
	AccountTypePro  = "Claude Pro"
	AccountTypeFree = "Free"
)

// TokenRecord is the outcome of a successful token exchange or refresh.
type TokenRecord struct {
	// AccessToken is the bearer credential for API requests.
	AccessToken string
	// RefreshToken obtains new access tokens once this one expires.
	RefreshToken string
	// ExpiresAt is the access token expiry as epoch milliseconds, computed
	// as (wall clock at response parse + expires_in) * 1000.
	ExpiresAt int64
	// Scopes are the granted scopes, in server order.
	Scopes []string
	// SubscriptionInfo carries plan details when the token response
	// includes any; nil otherwise.
	SubscriptionInfo map[string]any
}

// ProfileInfo is the account and organization summary from the profile
// endpoint.
type ProfileInfo struct {
	Email            string
	FullName         string
	DisplayName      string
	HasClaudeMax     bool
	HasClaudePro     bool
	AccountUUID      string
	AccountType      string
	OrganizationName string
	OrganizationUUID string
	BillingType      string
	RateLimitTier    string
	OrganizationType string
}

// Client performs the scripted HTTP exchanges of the OAuth flow. The HTTP
// client and clock are injected so tests run without network or wall-clock
// access. Client never retries; retry policy belongs to the caller.
type Client struct {
	httpClient *http.Client
	now        func() time.Time
}

// NewClient creates an OAuth client around the given HTTP client and clock.
// Nil arguments fall back to http.DefaultClient and time.Now.
func NewClient(httpClient *http.Client, now func() time.Time) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	if now == nil {
		now = time.Now
	}
	return &Client{httpClient: httpClient, now: now}
}

// NewProxyClient creates an OAuth client whose traffic is routed through the
// supplied proxy. Both http and https targets map to the same derived proxy
// URL. An absent or invalid spec yields a direct client, matching the
// behavior of the connect-URL synthesis.
func NewProxyClient(spec *proxy.Spec) (*Client, error) {
	httpClient := &http.Client{}
	if spec.Validate() {
		transport, err := spec.Transport()
		if err != nil {
			return nil, err
		}
		httpClient.Transport = transport
	} else if spec != nil {
		log.Warn("ignoring invalid proxy config, connecting directly")
	}
	return NewClient(httpClient, time.Now), nil
}

// ExchangeCodeForTokens exchanges an authorization code for tokens using the
// retained PKCE verifier. The code is cleaned of fragment and query
// leftovers the same way pasted raw codes are.
func (c *Client) ExchangeCodeForTokens(ctx context.Context, code, codeVerifier, state string) (*TokenRecord, error) {
	reqBody := map[string]any{
		"grant_type":    "authorization_code",
		"client_id":     ClientID,
		"code":          cleanRawCode(code),
		"redirect_uri":  RedirectURI,
		"code_verifier": codeVerifier,
		"state":         state,
	}
	body, err := c.postToken(ctx, opExchange, reqBody)
	if err != nil {
		return nil, err
	}
	return c.tokenRecordFromResponse(body), nil
}

// RefreshTokens exchanges a refresh token for a fresh access/refresh token
// pair. Same endpoint, headers, and failure classification as the code
// exchange.
func (c *Client) RefreshTokens(ctx context.Context, refreshToken string) (*TokenRecord, error) {
	if refreshToken == "" {
		return nil, newValidationError(KindInvalidInput, "refresh token is required")
	}
	reqBody := map[string]any{
		"grant_type":    "refresh_token",
		"client_id":     ClientID,
		"refresh_token": refreshToken,
	}
	body, err := c.postToken(ctx, opRefresh, reqBody)
	if err != nil {
		return nil, err
	}
	return c.tokenRecordFromResponse(body), nil
}

// postToken issues one bounded POST to the token endpoint and returns the
// raw response body on 2xx.
func (c *Client) postToken(ctx context.Context, op string, reqBody map[string]any) ([]byte, error) {
	jsonBody, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("%s: marshal request body: %w", op, err)
	}

	ctx, cancel := context.WithTimeout(ctx, exchangeTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, TokenURL, bytes.NewReader(jsonBody))
	if err != nil {
		return nil, fmt.Errorf("%s: create request: %w", op, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", UserAgent)
	req.Header.Set("Accept", "application/json, text/plain, */*")
	req.Header.Set("Accept-Language", "en-US,en;q=0.9")
	req.Header.Set("Referer", WebOrigin+"/")
	req.Header.Set("Origin", WebOrigin)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &TransportError{Op: op, Err: err}
	}
	defer func() {
		if errClose := resp.Body.Close(); errClose != nil {
			log.Errorf("failed to close response body: %v", errClose)
		}
	}()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &TransportError{Op: op, Err: err}
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, protocolError(op, resp.StatusCode, body)
	}
	return body, nil
}

// tokenRecordFromResponse maps a token endpoint response onto a TokenRecord.
// The expiry base is this client's clock at parse time; only the offset is
// server-trusted.
func (c *Client) tokenRecordFromResponse(body []byte) *TokenRecord {
	scope := gjson.GetBytes(body, "scope").String()
	if scope == "" {
		scope = defaultScopes
	}

	record := &TokenRecord{
		AccessToken:  gjson.GetBytes(body, "access_token").String(),
		RefreshToken: gjson.GetBytes(body, "refresh_token").String(),
		ExpiresAt:    (c.now().Unix() + gjson.GetBytes(body, "expires_in").Int()) * 1000,
		Scopes:       strings.Fields(scope),
	}

	for _, key := range []string{"subscription", "plan", "tier", "account_type"} {
		if gjson.GetBytes(body, key).Exists() {
			record.SubscriptionInfo = map[string]any{
				"subscription": gjson.GetBytes(body, "subscription").Value(),
				"plan":         gjson.GetBytes(body, "plan").Value(),
				"tier":         gjson.GetBytes(body, "tier").Value(),
				"accountType":  gjson.GetBytes(body, "account_type").Value(),
				"features":     gjson.GetBytes(body, "features").Value(),
				"limits":       gjson.GetBytes(body, "limits").Value(),
			}
			break
		}
	}
	return record
}

// FetchProfile retrieves the account profile with a bearer token. 401 and
// 403 are surfaced with dedicated messages since they are diagnostically
// meaningful for an expired or under-scoped token.
func (c *Client) FetchProfile(ctx context.Context, accessToken string) (*ProfileInfo, error) {
	ctx, cancel := context.WithTimeout(ctx, profileTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, ProfileURL, nil)
	if err != nil {
		return nil, fmt.Errorf("%s: create request: %w", opProfile, err)
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", UserAgent)
	req.Header.Set("Accept-Language", "en-US,en;q=0.9")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &TransportError{Op: opProfile, Err: err}
	}
	defer func() {
		if errClose := resp.Body.Close(); errClose != nil {
			log.Errorf("failed to close response body: %v", errClose)
		}
	}()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &TransportError{Op: opProfile, Err: err}
	}

	switch {
	case resp.StatusCode == http.StatusUnauthorized:
		return nil, &ProtocolError{Op: opProfile, StatusCode: resp.StatusCode, Message: "profile API returned 401 - token may be invalid"}
	case resp.StatusCode == http.StatusForbidden:
		return nil, &ProtocolError{Op: opProfile, StatusCode: resp.StatusCode, Message: "profile API returned 403 - insufficient permissions"}
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		return nil, protocolError(opProfile, resp.StatusCode, body)
	}

	return profileFromResponse(body), nil
}

// profileFromResponse maps a profile endpoint response onto ProfileInfo.
// Account type precedence: Claude Max over Claude Pro over Free.
func profileFromResponse(body []byte) *ProfileInfo {
	account := gjson.GetBytes(body, "account")
	organization := gjson.GetBytes(body, "organization")

	hasClaudeMax := account.Get("has_claude_max").Bool()
	hasClaudePro := account.Get("has_claude_pro").Bool()

	accountType := AccountTypeFree
	if hasClaudeMax {
		accountType = AccountTypeMax
	} else if hasClaudePro {
		accountType = AccountTypePro
	}

	return &ProfileInfo{
		Email:            account.Get("email").String(),
		FullName:         account.Get("full_name").String(),
		DisplayName:      account.Get("display_name").String(),
		HasClaudeMax:     hasClaudeMax,
		HasClaudePro:     hasClaudePro,
		AccountUUID:      account.Get("uuid").String(),
		AccountType:      accountType,
		OrganizationName: organization.Get("name").String(),
		OrganizationUUID: organization.Get("uuid").String(),
		BillingType:      organization.Get("billing_type").String(),
		RateLimitTier:    organization.Get("rate_limit_tier").String(),
		OrganizationType: organization.Get("organization_type").String(),
	}
}

// protocolError decodes an error response body into a readable message. A
// structured body with an error field yields "error - error_description";
// anything else is included verbatim.
func protocolError(op string, statusCode int, body []byte) *ProtocolError {
	message := fmt.Sprintf("HTTP %d", statusCode)
	if errField := gjson.GetBytes(body, "error"); errField.Exists() {
		message += ": " + errField.String()
		if desc := gjson.GetBytes(body, "error_description"); desc.Exists() {
			message += " - " + desc.String()
		}
	} else if text := strings.TrimSpace(string(body)); text != "" {
		message += ": " + text
	}
	return &ProtocolError{Op: op, StatusCode: statusCode, Message: message}
}
