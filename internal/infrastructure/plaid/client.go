package plaid

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sync/atomic"
	"time"
)

const defaultTimeout = 30 * time.Second

const (
	linkTokenCreatePath = "/link/token/create"
	publicTokenExchange = "/item/public_token/exchange"
	itemGetPath         = "/item/get"
)

// snapshot is one fully-built environment configuration. It is immutable;
// switching environments publishes a new snapshot instead of mutating fields,
// so an in-flight request never observes a half-rebuilt configuration.
type snapshot struct {
	env     Environment
	baseURL string
	creds   Credentials
}

// Options configures a Client.
type Options struct {
	// Credentials per environment. Environments without an entry cannot be
	// activated.
	Credentials map[Environment]Credentials

	// ClientName and RedirectURI are sent on link-token creation.
	ClientName  string
	RedirectURI string

	// BaseURLs overrides the default Plaid hosts (used by tests).
	BaseURLs map[Environment]string

	// HTTPClient overrides the default client with its 30s timeout.
	HTTPClient *http.Client
}

// Client talks to the Plaid API using the credentials and host of the
// currently active environment.
type Client struct {
	current atomic.Pointer[snapshot]

	credentials map[Environment]Credentials
	hosts       map[Environment]string
	clientName  string
	redirectURI string
	httpClient  *http.Client
}

// Ensure Client implements ClientInterface
var _ ClientInterface = (*Client)(nil)

// NewClient creates a Client with the given default environment active.
// It fails if the default environment is unknown or has no credentials.
func NewClient(opts Options, defaultEnv Environment) (*Client, error) {
	httpClient := opts.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: defaultTimeout}
	}

	hosts := make(map[Environment]string, len(environmentHosts))
	for env, host := range environmentHosts {
		hosts[env] = host
	}
	for env, host := range opts.BaseURLs {
		hosts[env] = host
	}

	credentials := make(map[Environment]Credentials, len(opts.Credentials))
	for env, creds := range opts.Credentials {
		credentials[env] = creds
	}

	c := &Client{
		credentials: credentials,
		hosts:       hosts,
		clientName:  opts.ClientName,
		redirectURI: opts.RedirectURI,
		httpClient:  httpClient,
	}

	snap, err := c.buildSnapshot(defaultEnv)
	if err != nil {
		return nil, err
	}
	c.current.Store(snap)

	return c, nil
}

func (c *Client) buildSnapshot(env Environment) (*snapshot, error) {
	baseURL, ok := c.hosts[env]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownEnvironment, env)
	}

	creds, ok := c.credentials[env]
	if !ok || creds.ClientID == "" || creds.Secret == "" {
		return nil, fmt.Errorf("%w: %q", ErrMissingCredentials, env)
	}

	return &snapshot{env: env, baseURL: baseURL, creds: creds}, nil
}

// SetEnvironment switches the active environment. The new configuration is
// built completely before it is published; on failure the previously active
// environment stays in effect. Returns the now-active environment.
func (c *Client) SetEnvironment(env Environment) (Environment, error) {
	snap, err := c.buildSnapshot(env)
	if err != nil {
		return c.CurrentEnvironment(), err
	}

	c.current.Store(snap)
	return env, nil
}

// CurrentEnvironment returns the active environment name.
func (c *Client) CurrentEnvironment() Environment {
	return c.current.Load().env
}

// CreateLinkToken asks Plaid for a short-lived link token authorizing one
// linking session for the given user.
func (c *Client) CreateLinkToken(ctx context.Context, clientUserID string) (*LinkTokenResponse, error) {
	snap := c.current.Load()

	body := linkTokenCreateRequest{
		ClientID:     snap.creds.ClientID,
		Secret:       snap.creds.Secret,
		ClientName:   c.clientName,
		User:         linkTokenUser{ClientUserID: clientUserID},
		Products:     []string{"auth"},
		Language:     "en",
		RedirectURI:  c.redirectURI,
		CountryCodes: []string{"US"},
	}

	var resp LinkTokenResponse
	if err := c.post(ctx, snap, linkTokenCreatePath, body, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// ExchangePublicToken trades the public token handed back by the Link UI for
// a durable access token and the item identifier it belongs to.
func (c *Client) ExchangePublicToken(ctx context.Context, publicToken string) (*ExchangeResponse, error) {
	snap := c.current.Load()

	body := publicTokenExchangeRequest{
		ClientID:    snap.creds.ClientID,
		Secret:      snap.creds.Secret,
		PublicToken: publicToken,
	}

	var resp ExchangeResponse
	if err := c.post(ctx, snap, publicTokenExchange, body, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// GetItem fetches metadata about a linked item using its access token.
func (c *Client) GetItem(ctx context.Context, accessToken string) (*ItemResponse, error) {
	snap := c.current.Load()

	body := itemGetRequest{
		ClientID:    snap.creds.ClientID,
		Secret:      snap.creds.Secret,
		AccessToken: accessToken,
	}

	var resp ItemResponse
	if err := c.post(ctx, snap, itemGetPath, body, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// post issues one JSON POST against the snapshot's host and decodes the
// response into out. Non-200 responses are decoded into *APIError.
func (c *Client) post(ctx context.Context, snap *snapshot, path string, payload, out any) error {
	raw, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, snap.baseURL+path, bytes.NewReader(raw))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		apiErr := &APIError{StatusCode: resp.StatusCode}
		if err := json.Unmarshal(respBody, apiErr); err != nil {
			return fmt.Errorf("API request failed with status %d: %s", resp.StatusCode, string(respBody))
		}
		return apiErr
	}

	if err := json.Unmarshal(respBody, out); err != nil {
		return fmt.Errorf("failed to unmarshal response: %w", err)
	}

	return nil
}
