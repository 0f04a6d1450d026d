package spotify

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"
)

// DefaultTokenURL is the client-credentials token endpoint.
const DefaultTokenURL = "https://accounts.spotify.com/api/token"

// ErrMissingCredentials is returned when neither a token nor a client
// ID/secret pair is available.
var ErrMissingCredentials = errors.New("spotify: no access token or client credentials configured")

// Credentials describes how to obtain a bearer token.
//
// A non-empty AccessToken is used as is. Otherwise ClientID and
// ClientSecret are exchanged at TokenURL using the client-credentials flow.
type Credentials struct {
	ClientID     string
	ClientSecret string
	AccessToken  string
	TokenURL     string
}

// Token returns a bearer token for the catalog API.
//
// hc, when non-nil, is used for the token request.
func (c Credentials) Token(ctx context.Context, hc *http.Client) (string, error) {
	if c.AccessToken != "" {
		return c.AccessToken, nil
	}
	if c.ClientID == "" || c.ClientSecret == "" {
		return "", ErrMissingCredentials
	}

	tokenURL := c.TokenURL
	if tokenURL == "" {
		tokenURL = DefaultTokenURL
	}

	cfg := clientcredentials.Config{
		ClientID:     c.ClientID,
		ClientSecret: c.ClientSecret,
		TokenURL:     tokenURL,
	}
	if hc != nil {
		ctx = context.WithValue(ctx, oauth2.HTTPClient, hc)
	}

	tok, err := cfg.Token(ctx)
	if err != nil {
		return "", fmt.Errorf("spotify: client credentials: %w", err)
	}
	return tok.AccessToken, nil
}
