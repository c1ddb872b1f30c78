/**
 * @description
 * This package provides a client for the Facebook Graph API endpoints used by
 * the Instagram account-linking flow. It encapsulates the logic for making
 * HTTP requests to the authorization server and Graph API, handling query
 * construction, and parsing responses.
 *
 * @dependencies
 * - context, encoding/json, fmt, io, net/http, net/url, time: Standard Go libraries.
 */
package graphclient

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"time"
)

// Client is a client for the Facebook Graph API.
type Client struct {
	BaseURL      string
	ClientID     string
	ClientSecret string
	HTTPClient   *http.Client
}

// NewClient creates a new Graph API client.
func NewClient(baseURL, clientID, clientSecret string) *Client {
	return &Client{
		BaseURL:      baseURL,
		ClientID:     clientID,
		ClientSecret: clientSecret,
		HTTPClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// TokenResponse is the payload returned by the OAuth token-exchange endpoint.
type TokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int64  `json:"expires_in"`
}

// Page represents one Facebook page owned by the authenticated identity,
// with its linked Instagram business account when one exists.
type Page struct {
	ID                       string `json:"id"`
	Name                     string `json:"name"`
	InstagramBusinessAccount *struct {
		ID string `json:"id"`
	} `json:"instagram_business_account,omitempty"`
}

// PagesResponse is the payload returned by the list-pages endpoint.
type PagesResponse struct {
	Data []Page `json:"data"`
}

// BusinessProfile holds the Instagram business-account fields fetched after
// page selection.
type BusinessProfile struct {
	ID             string `json:"id"`
	Username       string `json:"username"`
	FollowersCount int64  `json:"followers_count"`
	MediaCount     int64  `json:"media_count"`
}

// ErrorResponse represents an error payload from the Graph API.
type ErrorResponse struct {
	Err struct {
		Message string `json:"message"`
		Type    string `json:"type"`
		Code    int    `json:"code"`
	} `json:"error"`
}

func (e *ErrorResponse) Error() string {
	if e.Err.Message != "" {
		return fmt.Sprintf("graph api error: %s (%s)", e.Err.Message, e.Err.Type)
	}
	return "unknown graph api error"
}

// ExchangeCode exchanges an authorization code for an access token.
func (c *Client) ExchangeCode(ctx context.Context, code, redirectURI string) (*TokenResponse, error) {
	params := url.Values{}
	params.Set("client_id", c.ClientID)
	params.Set("redirect_uri", redirectURI)
	params.Set("client_secret", c.ClientSecret)
	params.Set("code", code)

	var token TokenResponse
	if err := c.get(ctx, "/oauth/access_token", params, "token_exchange", &token); err != nil {
		return nil, err
	}
	return &token, nil
}

// ListPages fetches the pages owned by the authenticated identity, requesting
// the linked instagram_business_account field for each.
func (c *Client) ListPages(ctx context.Context, accessToken string) (*PagesResponse, error) {
	params := url.Values{}
	params.Set("access_token", accessToken)
	params.Set("fields", "id,name,instagram_business_account")

	var pages PagesResponse
	if err := c.get(ctx, "/me/accounts", params, "list_pages", &pages); err != nil {
		return nil, err
	}
	return &pages, nil
}

// GetBusinessProfile fetches the profile fields for one Instagram business account.
func (c *Client) GetBusinessProfile(ctx context.Context, businessID, accessToken string) (*BusinessProfile, error) {
	params := url.Values{}
	params.Set("access_token", accessToken)
	params.Set("fields", "username,followers_count,media_count")

	var profile BusinessProfile
	if err := c.get(ctx, "/"+businessID, params, "business_profile", &profile); err != nil {
		return nil, err
	}
	return &profile, nil
}

// get is a generic helper executing one Graph API GET request. Each call is
// attempted exactly once; there is no retry policy.
func (c *Client) get(ctx context.Context, path string, params url.Values, op string, out interface{}) error {
	reqURL := c.BaseURL + path + "?" + params.Encode()

	req, err := http.NewRequestWithContext(ctx, "GET", reqURL, nil)
	if err != nil {
		return fmt.Errorf("failed to create %s request: %w", op, err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to execute %s request: %w", op, err)
	}
	defer resp.Body.Close()

	bodyBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read %s response: %w", op, err)
	}

	// The Graph API reports failures both via non-2xx statuses and via an
	// `error` object embedded in 200 responses. Check for both.
	var errResp ErrorResponse
	if unmarshalErr := json.Unmarshal(bodyBytes, &errResp); unmarshalErr == nil && errResp.Err.Message != "" {
		log.Printf("level=warn component=graph_client op=%s status=%d type=%q msg=%q", op, resp.StatusCode, errResp.Err.Type, errResp.Err.Message)
		return &errResp
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		log.Printf("level=warn component=graph_client op=%s status=%d msg=\"non-2xx response (unparsable error body)\"", op, resp.StatusCode)
		return fmt.Errorf("graph api %s failed with status %d", op, resp.StatusCode)
	}

	if err := json.Unmarshal(bodyBytes, out); err != nil {
		return fmt.Errorf("failed to decode %s response: %w", op, err)
	}
	return nil
}
