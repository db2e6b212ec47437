package switchboard

import (
	"context"
	"errors"
	"fmt"
	"sync"

	cv "github.com/nirasan/go-oauth-pkce-code-verifier"
	"golang.org/x/oauth2"
)

// OAuth2 scopes and Renown endpoints. The switchboard accepts bearer
// tokens minted by the Renown identity service.
var oAuthScopes = []string{"openid", "profile", "offline_access"}

const (
	oAuthAuthURL  = "https://auth.renown.id/oauth/authorize"
	oAuthTokenURL = "https://auth.renown.id/oauth/token"
	redirectURL   = "http://localhost:53682/"
)

var (
	customAuthURL  = oAuthAuthURL
	customTokenURL = oAuthTokenURL
)

// SetCustomEndpoints overrides the default OAuth endpoints for testing.
func SetCustomEndpoints(authURL, tokenURL string) {
	customAuthURL = authURL
	customTokenURL = tokenURL
}

// Token is the canonical OAuth2 token representation used by the SDK, so
// callers don't have to import oauth2 directly.
type Token oauth2.Token

func oauthConfig(clientID string) *oauth2.Config {
	return &oauth2.Config{
		ClientID: clientID,
		Scopes:   oAuthScopes,
		Endpoint: oauth2.Endpoint{
			AuthURL:  customAuthURL,
			TokenURL: customTokenURL,
		},
		RedirectURL: redirectURL,
	}
}

// StartLogin begins the PKCE authorization-code flow. It returns the URL
// the user must open in a browser and the code verifier that must be kept
// until CompleteLogin.
func StartLogin(clientID string) (authURL string, verifier string, err error) {
	v, err := cv.CreateCodeVerifier()
	if err != nil {
		return "", "", fmt.Errorf("creating code verifier: %v", err)
	}

	authURL = oauthConfig(clientID).AuthCodeURL(
		"state",
		oauth2.SetAuthURLParam("code_challenge", v.CodeChallengeS256()),
		oauth2.SetAuthURLParam("code_challenge_method", "S256"),
	)
	return authURL, v.String(), nil
}

// CompleteLogin exchanges the authorization code for a token using the
// verifier produced by StartLogin.
func CompleteLogin(ctx context.Context, clientID, code, verifier string) (*Token, error) {
	if code == "" {
		return nil, errors.New("authorization code is empty")
	}

	token, err := oauthConfig(clientID).Exchange(ctx, code, oauth2.SetAuthURLParam("code_verifier", verifier))
	if err != nil {
		return nil, fmt.Errorf("exchanging code for token: %w", err)
	}

	t := Token(*token)
	return &t, nil
}

// persistingTokenSource wraps an oauth2.TokenSource and invokes a callback
// whenever the access token changes, so refreshed tokens survive the
// process.
type persistingTokenSource struct {
	source     oauth2.TokenSource
	onNewToken func(*Token) error
	mu         sync.Mutex // guards lastToken
	lastToken  *oauth2.Token
}

func (s *persistingTokenSource) Token() (*oauth2.Token, error) {
	newToken, err := s.source.Token()
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.lastToken == nil || s.lastToken.AccessToken != newToken.AccessToken {
		s.lastToken = newToken
		if s.onNewToken != nil {
			if err := s.onNewToken((*Token)(newToken)); err != nil {
				return nil, fmt.Errorf("persisting refreshed token: %w", err)
			}
		}
	}

	return newToken, nil
}
