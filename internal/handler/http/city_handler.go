package http

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/tripcrew/backend/internal/apperrors"
	"github.com/tripcrew/backend/internal/auth"
	"github.com/tripcrew/backend/internal/places"
)

// CityHandler proxies city discovery to Google Places.
type CityHandler struct {
	searcher places.Searcher
	jwtSvc   auth.JWTService
}

func NewCityHandler(searcher places.Searcher, jwtSvc auth.JWTService) *CityHandler {
	return &CityHandler{
		searcher: searcher,
		jwtSvc:   jwtSvc,
	}
}

func (h *CityHandler) RegisterRoutes(router *mux.Router) {
	cityRouter := router.PathPrefix("/cities").Subrouter()
	cityRouter.Use(AuthMiddleware(h.jwtSvc))

	cityRouter.HandleFunc("/search", h.handleSearch).Methods("GET")
}

func (h *CityHandler) handleSearch(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("q")
	if query == "" {
		respondWithError(w, apperrors.Validation("search query required"))
		return
	}

	results, err := h.searcher.SearchCities(r.Context(), query)
	if err != nil {
		respondWithError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, results)
}
