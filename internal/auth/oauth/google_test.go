package oauth

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"

	"github.com/tripcrew/backend/internal/apperrors"
)

func TestAuthURL(t *testing.T) {
	p := NewGoogleProvider("client-123", "secret", 5*time.Second)

	rawURL := p.AuthURL("https://app.example.com/auth/callback", "state-abc")

	parsed, err := url.Parse(rawURL)
	require.NoError(t, err)

	q := parsed.Query()
	assert.Equal(t, "client-123", q.Get("client_id"))
	assert.Equal(t, "https://app.example.com/auth/callback", q.Get("redirect_uri"))
	assert.Equal(t, "openid email profile", q.Get("scope"))
	assert.Equal(t, "code", q.Get("response_type"))
	assert.Equal(t, "offline", q.Get("access_type"))
	assert.Equal(t, "consent", q.Get("prompt"))
	assert.Equal(t, "state-abc", q.Get("state"))
}

func TestAuthURL_RedirectURIPerCall(t *testing.T) {
	p := NewGoogleProvider("client-123", "secret", 5*time.Second)

	first, err := url.Parse(p.AuthURL("http://localhost:5173/cb", ""))
	require.NoError(t, err)
	second, err := url.Parse(p.AuthURL("https://prod.example.com/cb", ""))
	require.NoError(t, err)

	assert.Equal(t, "http://localhost:5173/cb", first.Query().Get("redirect_uri"))
	assert.Equal(t, "https://prod.example.com/cb", second.Query().Get("redirect_uri"))
}

func TestExchange_Success(t *testing.T) {
	var gotRedirectURI, gotCode string
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		gotCode = r.FormValue("code")
		gotRedirectURI = r.FormValue("redirect_uri")

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"access_token":"tok1","token_type":"Bearer","expires_in":3600,"id_token":"hdr.payload.sig"}`))
	}))
	defer ts.Close()

	p := NewGoogleProvider("client-123", "secret", 5*time.Second)
	p.config.Endpoint = oauth2.Endpoint{TokenURL: ts.URL}

	result, err := p.Exchange(context.Background(), "auth-code", "http://localhost/cb")
	require.NoError(t, err)

	assert.Equal(t, "auth-code", gotCode)
	assert.Equal(t, "http://localhost/cb", gotRedirectURI)
	assert.Equal(t, "tok1", result.AccessToken)
	assert.Equal(t, "hdr.payload.sig", result.IDToken)
}

func TestExchange_ProviderRejectsCode(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"error":"invalid_grant"}`))
	}))
	defer ts.Close()

	p := NewGoogleProvider("client-123", "secret", 5*time.Second)
	p.config.Endpoint = oauth2.Endpoint{TokenURL: ts.URL}

	_, err := p.Exchange(context.Background(), "bad-code", "http://localhost/cb")
	assert.ErrorIs(t, err, apperrors.ErrExternalService)
}

func TestExchange_ProviderUnreachable(t *testing.T) {
	p := NewGoogleProvider("client-123", "secret", time.Second)
	p.config.Endpoint = oauth2.Endpoint{TokenURL: "http://127.0.0.1:1/token"}

	_, err := p.Exchange(context.Background(), "code", "http://localhost/cb")
	assert.ErrorIs(t, err, apperrors.ErrExternalService)
}

func TestExchange_NoIDToken(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"access_token":"tok1","token_type":"Bearer"}`))
	}))
	defer ts.Close()

	p := NewGoogleProvider("client-123", "secret", 5*time.Second)
	p.config.Endpoint = oauth2.Endpoint{TokenURL: ts.URL}

	result, err := p.Exchange(context.Background(), "auth-code", "http://localhost/cb")
	require.NoError(t, err)
	assert.Equal(t, "tok1", result.AccessToken)
	assert.Empty(t, result.IDToken)
}
