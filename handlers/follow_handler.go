package handlers

import (
	"net/http"

	"github.com/courtside-app/courtside-server/middleware"
	"github.com/courtside-app/courtside-server/services"
	"github.com/go-chi/chi/v5"
)

type FollowHandler struct {
	follows services.FollowService
}

func NewFollowHandler(follows services.FollowService) *FollowHandler {
	return &FollowHandler{follows: follows}
}

func (h *FollowHandler) FollowGame(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.GetUserIDFromContext(r.Context())
	if err != nil {
		unauthorizedResponse(w, r, err.Error())
		return
	}
	gameID := chi.URLParam(r, "gameID")

	if err := h.follows.FollowGame(r.Context(), userID, gameID); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	if err := writeJSON(w, http.StatusCreated, jsonResponse{"followed": gameID}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *FollowHandler) UnfollowGame(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.GetUserIDFromContext(r.Context())
	if err != nil {
		unauthorizedResponse(w, r, err.Error())
		return
	}
	gameID := chi.URLParam(r, "gameID")

	if err := h.follows.UnfollowGame(r.Context(), userID, gameID); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *FollowHandler) ListFollowedGames(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.GetUserIDFromContext(r.Context())
	if err != nil {
		unauthorizedResponse(w, r, err.Error())
		return
	}

	games, err := h.follows.ListFollowedGames(r.Context(), userID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	if err := writeJSON(w, http.StatusOK, jsonResponse{"games": games}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}
