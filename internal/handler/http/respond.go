package http

import (
	"encoding/json"
	"net/http"

	"github.com/tripcrew/backend/internal/apperrors"
	"github.com/tripcrew/backend/internal/domain"
)

type ErrorBody struct {
	Message string `json:"message"`
	Code    string `json:"code"`
}

type ErrorResponse struct {
	Error ErrorBody `json:"error"`
}

// UserResponse is the client-facing user view.
type UserResponse struct {
	ID        string `json:"id"`
	Email     string `json:"email"`
	Name      string `json:"name"`
	AvatarURL string `json:"avatar_url,omitempty"`
}

func newUserResponse(user *domain.User) UserResponse {
	return UserResponse{
		ID:        user.ID.String(),
		Email:     user.Email,
		Name:      user.Name,
		AvatarURL: user.AvatarURL,
	}
}

func respondWithJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if data != nil {
		if err := json.NewEncoder(w).Encode(data); err != nil {
			http.Error(w, "failed to encode response", http.StatusInternalServerError)
		}
	}
}

// respondWithError maps the error kind to a status and serializes the
// structured error body. Unknown errors become a redacted 500.
func respondWithError(w http.ResponseWriter, err error) {
	appErr := apperrors.From(err)
	respondWithJSON(w, appErr.Status, ErrorResponse{
		Error: ErrorBody{
			Message: appErr.Message,
			Code:    appErr.Code,
		},
	})
}
