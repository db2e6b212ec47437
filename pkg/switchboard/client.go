// Package switchboard is an SDK for the Powerhouse switchboard GraphQL API.
// It exposes typed queries and mutations for drives, groups, and the three
// permission layers (global role, per-resource grants, per-operation
// grants). The switchboard is the system of record; every result here is a
// disposable projection of its state.
package switchboard

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"golang.org/x/oauth2"
)

// Sentinel errors, categorized per the failure taxonomy: transport/auth,
// decoding, and business rejection are distinct so callers can match with
// errors.Is and degrade or surface accordingly.
var (
	ErrAuthRequired   = errors.New("authentication required")
	ErrNetworkFailed  = errors.New("network request failed")
	ErrRetryLater     = errors.New("retry later")
	ErrDecodingFailed = errors.New("decoding response failed")
	ErrRejected       = errors.New("rejected by switchboard")
	ErrNoEndpoint     = errors.New("no switchboard URL configured")
)

// Logger is the interface the SDK uses for logging.
type Logger interface {
	Debug(msg string, args ...any)
	Warn(msg string, args ...any)
}

type noopLogger struct{}

func (noopLogger) Debug(msg string, args ...any) {}
func (noopLogger) Warn(msg string, args ...any)  {}

// HTTPConfig controls timeouts and the bounded retry applied to
// server-side failures. Mutations are never retried beyond this transport
// policy; user-triggered retry is the recovery path.
type HTTPConfig struct {
	Timeout       time.Duration
	RetryAttempts int
	RetryDelay    time.Duration
	MaxRetryDelay time.Duration
}

// DefaultHTTPConfig returns the standard HTTP configuration.
func DefaultHTTPConfig() HTTPConfig {
	return HTTPConfig{
		Timeout:       30 * time.Second,
		RetryAttempts: 3,
		RetryDelay:    1 * time.Second,
		MaxRetryDelay: 10 * time.Second,
	}
}

// Client is a stateful client for one switchboard endpoint. It attaches
// the caller's bearer credential to every request and refreshes it via
// the configured token source.
type Client struct {
	endpoint      string
	httpClient    *http.Client
	httpConfig    HTTPConfig
	authenticated bool
	logger        Logger
}

// NewClient creates a switchboard client. A nil or empty token yields an
// unauthenticated client: queries go out without a credential and
// mutations fail locally with ErrAuthRequired. onNewToken is invoked
// whenever the oauth2 layer refreshes the token, so the caller can
// persist it.
func NewClient(ctx context.Context, endpoint string, token *Token, onNewToken func(*Token) error, logger Logger) *Client {
	return NewClientWithConfig(ctx, endpoint, token, onNewToken, logger, DefaultHTTPConfig())
}

// NewClientWithConfig is NewClient with explicit HTTP tuning.
func NewClientWithConfig(ctx context.Context, endpoint string, token *Token, onNewToken func(*Token) error, logger Logger, httpConfig HTTPConfig) *Client {
	if logger == nil {
		logger = noopLogger{}
	}

	client := &Client{
		endpoint:   strings.TrimRight(endpoint, "/"),
		httpConfig: httpConfig,
		logger:     logger,
	}

	if token != nil && token.AccessToken != "" {
		config := &oauth2.Config{
			Endpoint: oauth2.Endpoint{
				AuthURL:  customAuthURL,
				TokenURL: customTokenURL,
			},
			Scopes: oAuthScopes,
		}
		source := &persistingTokenSource{
			source:     config.TokenSource(ctx, (*oauth2.Token)(token)),
			onNewToken: onNewToken,
			lastToken:  (*oauth2.Token)(token),
		}
		client.httpClient = oauth2.NewClient(ctx, source)
		client.authenticated = true
	} else {
		client.httpClient = &http.Client{}
	}
	client.httpClient.Timeout = httpConfig.Timeout

	return client
}

// SetLogger allows users of the SDK to set their own logger.
func (c *Client) SetLogger(l Logger) {
	c.logger = l
}

// Authenticated reports whether the client carries a bearer credential.
func (c *Client) Authenticated() bool {
	return c.authenticated
}

// Endpoint returns the configured switchboard URL.
func (c *Client) Endpoint() string {
	return c.endpoint
}

// requireAuth guards mutations: a missing credential is an authentication
// error, distinct from a business rejection, and is raised before any
// network traffic.
func (c *Client) requireAuth() error {
	if !c.authenticated {
		return fmt.Errorf("%w: no bearer credential, run 'auth login' first", ErrAuthRequired)
	}
	return nil
}

// graphqlRequest is the wire shape of a switchboard call.
type graphqlRequest struct {
	Query     string         `json:"query"`
	Variables map[string]any `json:"variables,omitempty"`
}

// graphqlEnvelope is the wire shape of a switchboard response.
type graphqlEnvelope struct {
	Data   json.RawMessage `json:"data"`
	Errors []struct {
		Message string `json:"message"`
	} `json:"errors"`
}

// do executes one named GraphQL operation and decodes the data payload
// into out. Status codes map to sentinels: 401/403 is an auth failure,
// 429 and 5xx are retried up to the configured bound and then surface as
// ErrRetryLater, anything else non-2xx is ErrRejected. GraphQL-level
// errors are a business rejection carrying the authority's messages
// verbatim.
func (c *Client) do(ctx context.Context, operation, query string, variables map[string]any, out any) error {
	c.logger.Debug("switchboard call", "operation", operation)

	if c.endpoint == "" {
		return ErrNoEndpoint
	}

	body, err := json.Marshal(graphqlRequest{Query: query, Variables: variables})
	if err != nil {
		return fmt.Errorf("marshalling %s request: %w", operation, err)
	}

	res, err := c.post(ctx, body)
	if err != nil {
		return fmt.Errorf("%s: %w", operation, err)
	}
	defer res.Body.Close()

	var envelope graphqlEnvelope
	if err := json.NewDecoder(res.Body).Decode(&envelope); err != nil {
		return fmt.Errorf("%w: %s: %v", ErrDecodingFailed, operation, err)
	}

	if len(envelope.Errors) > 0 {
		messages := make([]string, len(envelope.Errors))
		for i, e := range envelope.Errors {
			messages[i] = e.Message
		}
		return fmt.Errorf("%w: %s", ErrRejected, strings.Join(messages, "; "))
	}

	if out == nil {
		return nil
	}
	if len(envelope.Data) == 0 || string(envelope.Data) == "null" {
		return fmt.Errorf("%w: %s: no data returned", ErrDecodingFailed, operation)
	}
	if err := json.Unmarshal(envelope.Data, out); err != nil {
		return fmt.Errorf("%w: %s: %v", ErrDecodingFailed, operation, err)
	}

	return nil
}

// post sends the request body, retrying transient server failures with
// capped exponential backoff.
func (c *Client) post(ctx context.Context, body []byte) (*http.Response, error) {
	delay := c.httpConfig.RetryDelay
	attempts := c.httpConfig.RetryAttempts
	if attempts < 1 {
		attempts = 1
	}

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
		if err != nil {
			return nil, fmt.Errorf("creating request: %v", err)
		}
		req.Header.Set("Content-Type", "application/json")

		res, err := c.httpClient.Do(req)
		if err != nil {
			var retrieveErr *oauth2.RetrieveError
			if errors.As(err, &retrieveErr) {
				// Token refresh was refused; the stored credential is dead.
				return nil, fmt.Errorf("%w: %v", ErrAuthRequired, err)
			}
			lastErr = fmt.Errorf("%w: %v", ErrNetworkFailed, err)
		} else {
			switch {
			case res.StatusCode < 400:
				return res, nil
			case res.StatusCode == http.StatusUnauthorized || res.StatusCode == http.StatusForbidden:
				res.Body.Close()
				return nil, fmt.Errorf("%w: HTTP %s", ErrAuthRequired, res.Status)
			case res.StatusCode == http.StatusTooManyRequests || res.StatusCode >= 500:
				res.Body.Close()
				lastErr = fmt.Errorf("%w: HTTP %s", ErrRetryLater, res.Status)
			default:
				defer res.Body.Close()
				text, _ := readBodyText(res)
				return nil, fmt.Errorf("%w: HTTP %s: %s", ErrRejected, res.Status, text)
			}
		}

		if attempt < attempts {
			c.logger.Warn("retrying switchboard call", "attempt", attempt, "error", lastErr)
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(delay):
			}
			delay *= 2
			if delay > c.httpConfig.MaxRetryDelay {
				delay = c.httpConfig.MaxRetryDelay
			}
		}
	}

	return nil, lastErr
}

func readBodyText(res *http.Response) (string, error) {
	var buf bytes.Buffer
	_, err := buf.ReadFrom(res.Body)
	return strings.TrimSpace(buf.String()), err
}
