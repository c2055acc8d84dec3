package http

import (
	"encoding/json"
	"net/http"
	"net/url"

	"github.com/gorilla/mux"

	"github.com/tripcrew/backend/internal/apperrors"
	"github.com/tripcrew/backend/internal/auth"
	"github.com/tripcrew/backend/internal/service"
)

type GoogleCallbackRequest struct {
	Code        string `json:"code"`
	State       string `json:"state,omitempty"`
	RedirectURI string `json:"redirect_uri,omitempty"`
}

type LoginURLResponse struct {
	URL string `json:"url"`
}

type TokenResponse struct {
	AccessToken string       `json:"access_token"`
	TokenType   string       `json:"token_type"`
	User        UserResponse `json:"user"`
}

type RefreshResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

type MessageResponse struct {
	Message string `json:"message"`
}

type AuthHandler struct {
	authSvc     *service.AuthService
	jwtSvc      auth.JWTService
	frontendURL string
}

func NewAuthHandler(authSvc *service.AuthService, jwtSvc auth.JWTService, frontendURL string) *AuthHandler {
	return &AuthHandler{
		authSvc:     authSvc,
		jwtSvc:      jwtSvc,
		frontendURL: frontendURL,
	}
}

func (h *AuthHandler) RegisterRoutes(router *mux.Router) {
	authRouter := router.PathPrefix("/auth").Subrouter()

	// Public routes
	authRouter.HandleFunc("/google/url", h.handleLoginURL).Methods("GET")
	authRouter.HandleFunc("/google", h.handleGoogleCallback).Methods("POST")
	authRouter.HandleFunc("/callback", h.handleRedirectCallback).Methods("GET")
	authRouter.HandleFunc("/logout", h.handleLogout).Methods("POST")

	// Protected routes
	protected := authRouter.NewRoute().Subrouter()
	protected.Use(AuthMiddleware(h.jwtSvc))
	protected.HandleFunc("/me", h.handleMe).Methods("GET")
	protected.HandleFunc("/refresh", h.handleRefresh).Methods("POST")
}

// defaultRedirectURI is where the SPA finishes the OAuth dance. The same
// value must be used when building the URL and when exchanging the code.
func (h *AuthHandler) defaultRedirectURI() string {
	return h.frontendURL + "/auth/callback"
}

func (h *AuthHandler) handleLoginURL(w http.ResponseWriter, r *http.Request) {
	redirectURI := r.URL.Query().Get("redirect_uri")
	if redirectURI == "" {
		redirectURI = h.defaultRedirectURI()
	}
	state := r.URL.Query().Get("state")

	respondWithJSON(w, http.StatusOK, LoginURLResponse{
		URL: h.authSvc.LoginURL(redirectURI, state),
	})
}

func (h *AuthHandler) handleGoogleCallback(w http.ResponseWriter, r *http.Request) {
	var req GoogleCallbackRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, apperrors.Validation("invalid request body"))
		return
	}

	redirectURI := req.RedirectURI
	if redirectURI == "" {
		redirectURI = h.defaultRedirectURI()
	}

	token, user, err := h.authSvc.CompleteLogin(r.Context(), req.Code, redirectURI)
	if err != nil {
		respondWithError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, TokenResponse{
		AccessToken: token,
		TokenType:   "bearer",
		User:        newUserResponse(user),
	})
}

// handleRedirectCallback is the backend-hosted variant: Google redirects
// here directly, and the outcome goes back to the frontend as a redirect
// instead of a JSON body.
func (h *AuthHandler) handleRedirectCallback(w http.ResponseWriter, r *http.Request) {
	code := r.URL.Query().Get("code")
	if code == "" {
		http.Redirect(w, r, h.frontendURL+"/auth/error?error=no_code", http.StatusTemporaryRedirect)
		return
	}

	// The exchange redirect URI must be byte-identical to the one Google
	// just called, scheme included.
	redirectURI := requestURL(r)

	token, _, err := h.authSvc.CompleteLogin(r.Context(), code, redirectURI)
	if err != nil {
		http.Redirect(w, r, h.frontendURL+"/auth/error?error=oauth_failed", http.StatusTemporaryRedirect)
		return
	}

	http.Redirect(w, r, h.frontendURL+"/auth/success#token="+url.QueryEscape(token), http.StatusTemporaryRedirect)
}

func (h *AuthHandler) handleMe(w http.ResponseWriter, r *http.Request) {
	// The middleware already validated the token; re-derive the user from
	// it so a vanished account maps to 404 rather than a stale view.
	tokenString, _ := bearerToken(r)
	user, err := h.authSvc.CurrentUser(r.Context(), tokenString)
	if err != nil {
		respondWithError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, newUserResponse(user))
}

func (h *AuthHandler) handleRefresh(w http.ResponseWriter, r *http.Request) {
	userID, ok := UserIDFromContext(r.Context())
	if !ok {
		respondWithError(w, apperrors.InvalidCredential())
		return
	}

	token, err := h.authSvc.Refresh(r.Context(), userID)
	if err != nil {
		respondWithError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, RefreshResponse{
		AccessToken: token,
		TokenType:   "bearer",
	})
}

// handleLogout acknowledges only. Sessions are stateless bearer tokens,
// so logout is the client discarding its copy.
func (h *AuthHandler) handleLogout(w http.ResponseWriter, r *http.Request) {
	respondWithJSON(w, http.StatusOK, MessageResponse{Message: "Successfully logged out"})
}

// requestURL reconstructs the absolute URL Google redirected to, honoring
// the proxy protocol header so http/https mismatches do not break the
// exchange.
func requestURL(r *http.Request) string {
	scheme := "http"
	if r.TLS != nil {
		scheme = "https"
	}
	if proto := r.Header.Get("X-Forwarded-Proto"); proto != "" {
		scheme = proto
	}
	return scheme + "://" + r.Host + r.URL.Path
}
