package http

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"github.com/tripcrew/backend/internal/apperrors"
	"github.com/tripcrew/backend/internal/auth"
	"github.com/tripcrew/backend/internal/service"
)

type CreateTripRequest struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
}

type InviteResponse struct {
	Token     string `json:"token"`
	ExpiresAt string `json:"expires_at"`
}

type CastVoteRequest struct {
	Value int `json:"value"`
}

type AddCityRequest struct {
	PlaceID     string `json:"place_id,omitempty"`
	Name        string `json:"name"`
	Country     string `json:"country,omitempty"`
	Description string `json:"description,omitempty"`
}

type TripHandler struct {
	tripSvc *service.TripService
	jwtSvc  auth.JWTService
}

func NewTripHandler(tripSvc *service.TripService, jwtSvc auth.JWTService) *TripHandler {
	return &TripHandler{
		tripSvc: tripSvc,
		jwtSvc:  jwtSvc,
	}
}

func (h *TripHandler) RegisterRoutes(router *mux.Router) {
	tripRouter := router.PathPrefix("/trips").Subrouter()
	tripRouter.Use(AuthMiddleware(h.jwtSvc))

	tripRouter.HandleFunc("", h.handleListTrips).Methods("GET")
	tripRouter.HandleFunc("", h.handleCreateTrip).Methods("POST")
	tripRouter.HandleFunc("/{tripID}", h.handleGetTrip).Methods("GET")
	tripRouter.HandleFunc("/{tripID}", h.handleDeleteTrip).Methods("DELETE")
	tripRouter.HandleFunc("/{tripID}/invite", h.handleCreateInvite).Methods("POST")
	tripRouter.HandleFunc("/{tripID}/members", h.handleListMembers).Methods("GET")
	tripRouter.HandleFunc("/{tripID}/cities", h.handleListCities).Methods("GET")
	tripRouter.HandleFunc("/{tripID}/cities", h.handleAddCity).Methods("POST")
	tripRouter.HandleFunc("/{tripID}/cities/{cityID}", h.handleRemoveCity).Methods("DELETE")
	tripRouter.HandleFunc("/{tripID}/cities/{cityID}/vote", h.handleCastVote).Methods("PUT")
	tripRouter.HandleFunc("/{tripID}/votes", h.handleGetVotes).Methods("GET")
}

func (h *TripHandler) handleListTrips(w http.ResponseWriter, r *http.Request) {
	userID, ok := UserIDFromContext(r.Context())
	if !ok {
		respondWithError(w, apperrors.InvalidCredential())
		return
	}

	trips, err := h.tripSvc.ListTrips(r.Context(), userID)
	if err != nil {
		respondWithError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, trips)
}

func (h *TripHandler) handleCreateTrip(w http.ResponseWriter, r *http.Request) {
	userID, ok := UserIDFromContext(r.Context())
	if !ok {
		respondWithError(w, apperrors.InvalidCredential())
		return
	}

	var req CreateTripRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, apperrors.Validation("invalid request body"))
		return
	}

	trip, err := h.tripSvc.CreateTrip(r.Context(), userID, req.Name, req.Description)
	if err != nil {
		respondWithError(w, err)
		return
	}

	respondWithJSON(w, http.StatusCreated, trip)
}

func (h *TripHandler) handleGetTrip(w http.ResponseWriter, r *http.Request) {
	userID, tripID, ok := h.tripRequest(w, r)
	if !ok {
		return
	}

	trip, err := h.tripSvc.GetTrip(r.Context(), userID, tripID)
	if err != nil {
		respondWithError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, trip)
}

func (h *TripHandler) handleDeleteTrip(w http.ResponseWriter, r *http.Request) {
	userID, tripID, ok := h.tripRequest(w, r)
	if !ok {
		return
	}

	if err := h.tripSvc.DeleteTrip(r.Context(), userID, tripID); err != nil {
		respondWithError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *TripHandler) handleCreateInvite(w http.ResponseWriter, r *http.Request) {
	userID, tripID, ok := h.tripRequest(w, r)
	if !ok {
		return
	}

	invite, err := h.tripSvc.CreateInvite(r.Context(), userID, tripID)
	if err != nil {
		respondWithError(w, err)
		return
	}

	respondWithJSON(w, http.StatusCreated, InviteResponse{
		Token:     invite.Token.String(),
		ExpiresAt: invite.ExpiresAt.UTC().Format(time.RFC3339),
	})
}

func (h *TripHandler) handleListMembers(w http.ResponseWriter, r *http.Request) {
	userID, tripID, ok := h.tripRequest(w, r)
	if !ok {
		return
	}

	members, err := h.tripSvc.ListMembers(r.Context(), userID, tripID)
	if err != nil {
		respondWithError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, members)
}

func (h *TripHandler) handleListCities(w http.ResponseWriter, r *http.Request) {
	userID, tripID, ok := h.tripRequest(w, r)
	if !ok {
		return
	}

	cities, err := h.tripSvc.ListCities(r.Context(), userID, tripID)
	if err != nil {
		respondWithError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, cities)
}

func (h *TripHandler) handleAddCity(w http.ResponseWriter, r *http.Request) {
	userID, tripID, ok := h.tripRequest(w, r)
	if !ok {
		return
	}

	var req AddCityRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, apperrors.Validation("invalid request body"))
		return
	}

	city, err := h.tripSvc.AddCity(r.Context(), userID, tripID, req.PlaceID, req.Name, req.Country, req.Description)
	if err != nil {
		respondWithError(w, err)
		return
	}

	respondWithJSON(w, http.StatusCreated, city)
}

func (h *TripHandler) handleRemoveCity(w http.ResponseWriter, r *http.Request) {
	userID, tripID, ok := h.tripRequest(w, r)
	if !ok {
		return
	}

	cityID, err := uuid.Parse(mux.Vars(r)["cityID"])
	if err != nil {
		respondWithError(w, apperrors.Validation("invalid city id"))
		return
	}

	if err := h.tripSvc.RemoveCity(r.Context(), userID, tripID, cityID); err != nil {
		respondWithError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *TripHandler) handleCastVote(w http.ResponseWriter, r *http.Request) {
	userID, tripID, ok := h.tripRequest(w, r)
	if !ok {
		return
	}

	cityID, err := uuid.Parse(mux.Vars(r)["cityID"])
	if err != nil {
		respondWithError(w, apperrors.Validation("invalid city id"))
		return
	}

	var req CastVoteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, apperrors.Validation("invalid request body"))
		return
	}

	if err := h.tripSvc.CastVote(r.Context(), userID, tripID, cityID, req.Value); err != nil {
		respondWithError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *TripHandler) handleGetVotes(w http.ResponseWriter, r *http.Request) {
	userID, tripID, ok := h.tripRequest(w, r)
	if !ok {
		return
	}

	tallies, err := h.tripSvc.GetVotes(r.Context(), userID, tripID)
	if err != nil {
		respondWithError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, tallies)
}

// tripRequest pulls the caller id and trip id every trip route needs,
// writing the error response itself when either is missing.
func (h *TripHandler) tripRequest(w http.ResponseWriter, r *http.Request) (uuid.UUID, uuid.UUID, bool) {
	userID, ok := UserIDFromContext(r.Context())
	if !ok {
		respondWithError(w, apperrors.InvalidCredential())
		return uuid.Nil, uuid.Nil, false
	}

	tripID, err := uuid.Parse(mux.Vars(r)["tripID"])
	if err != nil {
		respondWithError(w, apperrors.Validation("invalid trip id"))
		return uuid.Nil, uuid.Nil, false
	}

	return userID, tripID, true
}
