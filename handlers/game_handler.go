package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"path"
	"strings"

	"github.com/courtside-app/courtside-server/events"
	"github.com/courtside-app/courtside-server/live"
	"github.com/courtside-app/courtside-server/models"
	"github.com/courtside-app/courtside-server/services"
	"github.com/courtside-app/courtside-server/storage"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

const maxImageUploadSize = 10 << 20 // 10MB

type GameHandler struct {
	games     services.GameService
	uploader  storage.FileUploader
	hub       *live.Hub
	publisher events.Publisher
}

func NewGameHandler(games services.GameService, uploader storage.FileUploader, hub *live.Hub, publisher events.Publisher) *GameHandler {
	return &GameHandler{
		games:     games,
		uploader:  uploader,
		hub:       hub,
		publisher: publisher,
	}
}

func (h *GameHandler) GetGame(w http.ResponseWriter, r *http.Request) {
	gameID := chi.URLParam(r, "gameID")
	game, err := h.games.GetGame(r.Context(), gameID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	if err := writeJSON(w, http.StatusOK, jsonResponse{"game": game}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *GameHandler) GetDownstreamGames(w http.ResponseWriter, r *http.Request) {
	gameID := chi.URLParam(r, "gameID")
	games, err := h.games.GetDownstreamGames(r.Context(), gameID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	if err := writeJSON(w, http.StatusOK, jsonResponse{"games": games}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// UpdateGame applies a partial update, runs any advancement cascade and
// reports the outcome. Validation failures come back as 422 with the
// blocking issues listed; warnings ride along on success.
func (h *GameHandler) UpdateGame(w http.ResponseWriter, r *http.Request) {
	gameID := chi.URLParam(r, "gameID")

	var upd models.GameUpdate
	if err := readJSON(w, r, &upd); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	result := h.games.UpdateGame(r.Context(), gameID, upd)
	if !result.Success {
		if err := writeJSON(w, http.StatusUnprocessableEntity, result, nil); err != nil {
			serverErrorResponse(w, r, err)
		}
		return
	}

	h.announce(result)
	if err := writeJSON(w, http.StatusOK, result, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// announce pushes a successful update to live subscribers and the event
// bus. Both paths are fire and forget.
func (h *GameHandler) announce(result *services.UpdateResult) {
	game := result.UpdatedGame
	if game == nil {
		return
	}

	messageType := live.MessageGameUpdated
	eventType := events.EventGameUpdated
	if game.Status == models.GameStatusCompleted {
		messageType = live.MessageGameCompleted
		eventType = events.EventGameCompleted
	}

	h.hub.BroadcastToRoom(live.GameRoom(game.ID), live.Message{
		Type:    messageType,
		Payload: result,
	})
	h.hub.BroadcastToRoom(live.TournamentRoom(game.TournamentID), live.Message{
		Type:    messageType,
		Payload: result,
	})

	affectedIDs := make([]string, 0, len(result.AffectedGames))
	for _, affected := range result.AffectedGames {
		affectedIDs = append(affectedIDs, affected.ID)
	}
	h.publisher.PublishGameEvent(events.GameEvent{
		Type:            eventType,
		Game:            game,
		AffectedGameIDs: affectedIDs,
		Warnings:        result.Warnings,
	})
}

// ValidateUpdate runs the validation rules without writing anything.
func (h *GameHandler) ValidateUpdate(w http.ResponseWriter, r *http.Request) {
	gameID := chi.URLParam(r, "gameID")

	var upd models.GameUpdate
	if err := readJSON(w, r, &upd); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	game, err := h.games.GetGame(r.Context(), gameID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	result := h.games.ValidateGameUpdate(r.Context(), game, upd)
	if err := writeJSON(w, http.StatusOK, result, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *GameHandler) ValidateAdvancement(w http.ResponseWriter, r *http.Request) {
	gameID := chi.URLParam(r, "gameID")

	var cfg services.AdvancementConfig
	if err := readJSON(w, r, &cfg); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	result := h.games.ValidateAdvancement(r.Context(), gameID, cfg)
	if err := writeJSON(w, http.StatusOK, result, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *GameHandler) SaveAdvancement(w http.ResponseWriter, r *http.Request) {
	gameID := chi.URLParam(r, "gameID")

	var cfg services.AdvancementConfig
	if err := readJSON(w, r, &cfg); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	result, err := h.games.SaveAdvancement(r.Context(), gameID, cfg)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	if !result.Valid {
		if err := writeJSON(w, http.StatusUnprocessableEntity, result, nil); err != nil {
			serverErrorResponse(w, r, err)
		}
		return
	}
	if err := writeJSON(w, http.StatusOK, result, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// UploadTeamImage stores a team logo for one side of a game and records
// its public URL on the game row. Slot is "a" or "b".
func (h *GameHandler) UploadTeamImage(w http.ResponseWriter, r *http.Request) {
	gameID := chi.URLParam(r, "gameID")
	slot := strings.ToLower(chi.URLParam(r, "slot"))
	if slot != "a" && slot != "b" {
		badRequestResponse(w, r, errors.New("team slot must be \"a\" or \"b\""))
		return
	}
	if h.uploader == nil {
		mapServiceErrorToHTTP(w, r, services.ErrUploadsDisabled)
		return
	}

	if err := r.ParseMultipartForm(maxImageUploadSize); err != nil {
		badRequestResponse(w, r, fmt.Errorf("failed to parse multipart form: %w", err))
		return
	}
	file, header, err := r.FormFile("image")
	if err != nil {
		badRequestResponse(w, r, errors.New("image file is required"))
		return
	}
	defer file.Close()

	contentType := header.Header.Get("Content-Type")
	if !strings.HasPrefix(contentType, "image/") {
		badRequestResponse(w, r, fmt.Errorf("unsupported content type %q", contentType))
		return
	}

	ext := strings.ToLower(path.Ext(header.Filename))
	key := fmt.Sprintf("games/%s/team-%s-%s%s", gameID, slot, uuid.NewString(), ext)
	uploaded, err := h.uploader.Upload(r.Context(), key, contentType, file)
	if err != nil {
		serverErrorResponse(w, r, err)
		return
	}

	upd := models.GameUpdate{}
	if slot == "a" {
		upd.TeamAImageURL = &uploaded.Location
	} else {
		upd.TeamBImageURL = &uploaded.Location
	}

	result := h.games.UpdateGame(r.Context(), gameID, upd)
	if !result.Success {
		if err := writeJSON(w, http.StatusUnprocessableEntity, result, nil); err != nil {
			serverErrorResponse(w, r, err)
		}
		return
	}

	h.announce(result)
	response := jsonResponse{
		"image_url": uploaded.Location,
		"game":      result.UpdatedGame,
	}
	if err := writeJSON(w, http.StatusOK, response, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}
