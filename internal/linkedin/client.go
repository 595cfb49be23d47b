// Package linkedin implements the OAuth and publishing client for the
// LinkedIn API.
package linkedin

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/postpilot/postpilot/internal/config"
)

const (
	defaultAuthBase = "https://www.linkedin.com"
	defaultAPIBase  = "https://api.linkedin.com"

	// Scope required to read the member profile and publish on their behalf.
	oauthScope = "openid profile w_member_social"
)

var (
	ErrNotAuthenticated = errors.New("not authenticated with LinkedIn")
	ErrTokenExchange    = errors.New("failed to exchange authorization code")
	ErrIdentityFetch    = errors.New("failed to resolve account identity")
	ErrPublish          = errors.New("failed to publish post")
)

// Client talks to the LinkedIn OAuth and UGC post APIs. A credential is
// attached with SetCredential or by a successful ExchangeCode; the client
// never persists it.
type Client struct {
	clientID     string
	clientSecret string
	redirectURI  string

	authBase   string
	apiBase    string
	httpClient *http.Client

	mu          sync.RWMutex
	accessToken string
	accountID   string
}

// ExchangeResult is the outcome of a successful authorization code exchange,
// including the identity resolved from the new token.
type ExchangeResult struct {
	AccessToken string
	AccountID   string
	ExpiresIn   int64
}

// NewClient creates a LinkedIn client from application config.
func NewClient(cfg *config.LinkedInConfig) *Client {
	return &Client{
		clientID:     cfg.ClientID,
		clientSecret: cfg.ClientSecret,
		redirectURI:  cfg.RedirectURI,
		authBase:     defaultAuthBase,
		apiBase:      defaultAPIBase,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// AuthURL returns the authorization URL the user must visit to grant
// access. Pure; no side effects.
func (c *Client) AuthURL() string {
	params := url.Values{}
	params.Set("response_type", "code")
	params.Set("client_id", c.clientID)
	params.Set("redirect_uri", c.redirectURI)
	params.Set("scope", oauthScope)

	return c.authBase + "/oauth/v2/authorization?" + params.Encode()
}

// ExchangeCode exchanges an authorization code for an access token and
// resolves the account identity before returning. On any failure the
// client's held credential is left untouched.
func (c *Client) ExchangeCode(ctx context.Context, code string) (*ExchangeResult, error) {
	data := url.Values{}
	data.Set("grant_type", "authorization_code")
	data.Set("code", code)
	data.Set("redirect_uri", c.redirectURI)
	data.Set("client_id", c.clientID)
	data.Set("client_secret", c.clientSecret)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.authBase+"/oauth/v2/accessToken", strings.NewReader(data.Encode()))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrTokenExchange, err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrTokenExchange, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: %s", ErrTokenExchange, readOAuthError(resp))
	}

	var tokenResp struct {
		AccessToken string `json:"access_token"`
		ExpiresIn   int64  `json:"expires_in"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&tokenResp); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrTokenExchange, err)
	}
	if tokenResp.AccessToken == "" {
		return nil, fmt.Errorf("%w: empty access token in response", ErrTokenExchange)
	}

	accountID, err := c.fetchIdentity(ctx, tokenResp.AccessToken)
	if err != nil {
		return nil, err
	}

	c.SetCredential(tokenResp.AccessToken, accountID)

	return &ExchangeResult{
		AccessToken: tokenResp.AccessToken,
		AccountID:   accountID,
		ExpiresIn:   tokenResp.ExpiresIn,
	}, nil
}

// ResolveIdentity fetches the platform-assigned account id using the held
// access token.
func (c *Client) ResolveIdentity(ctx context.Context) (string, error) {
	c.mu.RLock()
	token := c.accessToken
	c.mu.RUnlock()

	if token == "" {
		return "", ErrNotAuthenticated
	}

	return c.fetchIdentity(ctx, token)
}

func (c *Client) fetchIdentity(ctx context.Context, token string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.apiBase+"/v2/userinfo", nil)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrIdentityFetch, err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrIdentityFetch, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("%w: status %d: %s", ErrIdentityFetch, resp.StatusCode, string(body))
	}

	var userInfo struct {
		Sub string `json:"sub"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&userInfo); err != nil {
		return "", fmt.Errorf("%w: %v", ErrIdentityFetch, err)
	}
	if userInfo.Sub == "" {
		return "", fmt.Errorf("%w: response missing subject", ErrIdentityFetch)
	}

	return userInfo.Sub, nil
}

// SetCredential injects a previously stored credential into the client.
func (c *Client) SetCredential(token, accountID string) {
	c.mu.Lock()
	c.accessToken = token
	c.accountID = accountID
	c.mu.Unlock()
}

// Authenticated reports whether a credential is currently attached.
func (c *Client) Authenticated() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.accessToken != "" && c.accountID != ""
}

// Publish submits content as a public post and returns the platform post
// id. Fails with ErrNotAuthenticated when no credential is attached.
func (c *Client) Publish(ctx context.Context, content string) (string, error) {
	c.mu.RLock()
	token := c.accessToken
	accountID := c.accountID
	c.mu.RUnlock()

	if token == "" || accountID == "" {
		return "", ErrNotAuthenticated
	}

	post := map[string]any{
		"author":         "urn:li:person:" + accountID,
		"lifecycleState": "PUBLISHED",
		"specificContent": map[string]any{
			"com.linkedin.ugc.ShareContent": map[string]any{
				"shareCommentary": map[string]any{
					"text": content,
				},
				"shareMediaCategory": "NONE",
			},
		},
		"visibility": map[string]any{
			"com.linkedin.ugc.MemberNetworkVisibility": "PUBLIC",
		},
	}

	body, err := json.Marshal(post)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrPublish, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.apiBase+"/v2/ugcPosts", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrPublish, err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Restli-Protocol-Version", "2.0.0")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrPublish, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated && resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("%w: %s", ErrPublish, readAPIError(resp))
	}

	var postResp struct {
		ID string `json:"id"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&postResp); err != nil {
		return "", fmt.Errorf("%w: %v", ErrPublish, err)
	}

	return postResp.ID, nil
}

// readOAuthError extracts the error description from an OAuth error
// response, falling back to the raw body.
func readOAuthError(resp *http.Response) string {
	body, _ := io.ReadAll(resp.Body)

	var oauthErr struct {
		Error       string `json:"error"`
		Description string `json:"error_description"`
	}
	if err := json.Unmarshal(body, &oauthErr); err == nil && oauthErr.Description != "" {
		return oauthErr.Description
	}

	return fmt.Sprintf("status %d: %s", resp.StatusCode, string(body))
}

// readAPIError extracts the message from a REST API error response.
func readAPIError(resp *http.Response) string {
	body, _ := io.ReadAll(resp.Body)

	var apiErr struct {
		Message string `json:"message"`
	}
	if err := json.Unmarshal(body, &apiErr); err == nil && apiErr.Message != "" {
		return apiErr.Message
	}

	return fmt.Sprintf("status %d: %s", resp.StatusCode, string(body))
}
