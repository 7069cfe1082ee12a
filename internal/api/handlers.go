package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/sirupsen/logrus"

	"pokemon-arena/internal/logger"
	"pokemon-arena/internal/preview"
)

// lobbyResponse is the public view of a lobby.
type lobbyResponse struct {
	*Lobby
	Owner   string `json:"owner"`
	Members int    `json:"members"`
}

func newLobbyResponse(l *Lobby) lobbyResponse {
	return lobbyResponse{Lobby: l, Owner: l.hub.Owner(), Members: l.hub.ClientCount()}
}

func (h *routerHandlers) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, map[string]interface{}{
		"status":      "ok",
		"lobbies":     len(h.store.List()),
		"connections": h.ws.Connections(),
		"rateLimit":   h.rateLimiter.GetStats(),
		"wsLimit":     h.ws.LimiterStats(r),
	})
}

func (h *routerHandlers) handleListLobbies(w http.ResponseWriter, r *http.Request) {
	lobbies := h.store.List()
	out := make([]lobbyResponse, 0, len(lobbies))
	for _, l := range lobbies {
		out = append(out, newLobbyResponse(l))
	}
	writeJSON(w, out)
}

func (h *routerHandlers) handleCreateLobby(w http.ResponseWriter, r *http.Request) {
	var req LobbyRequest
	if r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, "Invalid request", http.StatusBadRequest)
			return
		}
	}

	lobby, err := h.store.Create(req)
	switch {
	case err == nil:
	case errors.Is(err, ErrLobbyExists):
		writeError(w, err.Error(), http.StatusConflict)
		return
	case errors.Is(err, ErrLobbyLimit):
		writeError(w, err.Error(), http.StatusServiceUnavailable)
		return
	default:
		writeError(w, err.Error(), http.StatusBadRequest)
		return
	}

	logger.Log.WithFields(logrus.Fields{
		"lobby": lobby.ID,
		"type":  lobby.Map.Type,
		"seed":  lobby.Map.Seed,
		"codec": lobby.Codec,
	}).Info("🗺️ Lobby created")

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(newLobbyResponse(lobby))
}

func (h *routerHandlers) lobby(w http.ResponseWriter, r *http.Request) (*Lobby, bool) {
	l, err := h.store.Get(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err.Error(), http.StatusNotFound)
		return nil, false
	}
	return l, true
}

func (h *routerHandlers) handleGetLobby(w http.ResponseWriter, r *http.Request) {
	if l, ok := h.lobby(w, r); ok {
		writeJSON(w, newLobbyResponse(l))
	}
}

func (h *routerHandlers) handleDeleteLobby(w http.ResponseWriter, r *http.Request) {
	if err := h.store.Delete(chi.URLParam(r, "id")); err != nil {
		writeError(w, err.Error(), http.StatusNotFound)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *routerHandlers) handleGetMembers(w http.ResponseWriter, r *http.Request) {
	l, ok := h.lobby(w, r)
	if !ok {
		return
	}
	writeJSON(w, map[string]interface{}{
		"owner":   l.hub.Owner(),
		"members": l.hub.Members(),
	})
}

func (h *routerHandlers) handleMapPreview(w http.ResponseWriter, r *http.Request) {
	l, ok := h.lobby(w, r)
	if !ok {
		return
	}
	w.Header().Set("Content-Type", "image/png")
	if err := preview.WritePNG(w, l.Map.Generate(), nil, preview.DefaultOptions()); err != nil {
		logger.Log.WithError(err).Warn("map preview failed")
	}
}

// Helper functions (package-level for reuse)

func writeJSON(w http.ResponseWriter, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, message string, code int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(map[string]string{"error": message})
}
