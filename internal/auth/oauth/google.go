package oauth

import (
	"context"
	"net/http"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"

	"github.com/tripcrew/backend/internal/apperrors"
)

// ExchangeResult is the typed outcome of an authorization-code exchange.
// Exactly one of the two fields drives identity resolution: an opaque
// access token needs a userinfo round-trip, an ID token is self-contained.
type ExchangeResult struct {
	AccessToken string
	IDToken     string
}

// Provider abstracts the OAuth provider for the auth service.
type Provider interface {
	// AuthURL builds the provider authorization URL. No network call.
	AuthURL(redirectURI, state string) string

	// Exchange trades an authorization code for provider tokens. The
	// redirectURI must be byte-identical to the one used in AuthURL,
	// including scheme, or the provider rejects the exchange.
	Exchange(ctx context.Context, code, redirectURI string) (*ExchangeResult, error)
}

// Ensure GoogleProvider implements Provider
var _ Provider = (*GoogleProvider)(nil)

type GoogleProvider struct {
	config  *oauth2.Config
	timeout time.Duration
}

// NewGoogleProvider creates a Google OAuth provider. The redirect URL is
// supplied per call rather than fixed at construction because the web
// and backend callback flows use different URIs.
func NewGoogleProvider(clientID, clientSecret string, timeout time.Duration) *GoogleProvider {
	return &GoogleProvider{
		config: &oauth2.Config{
			ClientID:     clientID,
			ClientSecret: clientSecret,
			Scopes:       []string{"openid", "email", "profile"},
			Endpoint:     google.Endpoint,
		},
		timeout: timeout,
	}
}

// AuthURL builds the authorization URL with offline access and forced
// consent so Google always returns a refresh token.
func (g *GoogleProvider) AuthURL(redirectURI, state string) string {
	cfg := *g.config
	cfg.RedirectURL = redirectURI
	return cfg.AuthCodeURL(
		state,
		oauth2.AccessTypeOffline,
		oauth2.SetAuthURLParam("prompt", "consent"),
	)
}

// Exchange posts the code to the token endpoint with a bounded timeout.
// Any non-success status or transport failure surfaces as an external
// service error; login is user-initiated, so there is no retry.
func (g *GoogleProvider) Exchange(ctx context.Context, code, redirectURI string) (*ExchangeResult, error) {
	cfg := *g.config
	cfg.RedirectURL = redirectURI

	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()
	ctx = context.WithValue(ctx, oauth2.HTTPClient, &http.Client{Timeout: g.timeout})

	token, err := cfg.Exchange(ctx, code)
	if err != nil {
		return nil, apperrors.ExternalService("google oauth", err)
	}

	result := &ExchangeResult{AccessToken: token.AccessToken}
	if idToken, ok := token.Extra("id_token").(string); ok {
		result.IDToken = idToken
	}
	return result, nil
}
