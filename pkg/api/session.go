package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gorilla/mux"

	"chatsync/pkg/history"
	"chatsync/pkg/logger"
	"chatsync/pkg/models"
	"chatsync/pkg/timeline"
	"chatsync/pkg/utils"
)

// --- operator actions ---

func (s *Server) openConversation(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	var payload struct {
		ChatID string `json:"chat_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		utils.JSONError(w, http.StatusBadRequest, "invalid json")
		return
	}
	if payload.ChatID == "" {
		utils.JSONError(w, http.StatusBadRequest, "chat_id is required")
		return
	}
	if err := s.session.Open(payload.ChatID); err != nil {
		utils.JSONError(w, http.StatusServiceUnavailable, err.Error())
		return
	}
	logger.Info("conversation_open_requested", "chat", payload.ChatID)
	w.WriteHeader(http.StatusAccepted)
	_ = json.NewEncoder(w).Encode(map[string]string{"chat_id": payload.ChatID})
}

func (s *Server) sendMessage(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	var payload struct {
		Body  string           `json:"body"`
		Media *models.MediaRef `json:"media,omitempty"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		utils.JSONError(w, http.StatusBadRequest, "invalid json")
		return
	}
	if err := s.limits.validateSend(payload.Body, payload.Media); err != nil {
		utils.JSONError(w, http.StatusBadRequest, err.Error())
		return
	}
	id, err := s.session.Send(payload.Body, payload.Media)
	if err != nil {
		switch {
		case errors.Is(err, timeline.ErrNoConversation):
			utils.JSONError(w, http.StatusConflict, err.Error())
		case errors.Is(err, timeline.ErrQueueFull):
			utils.JSONError(w, http.StatusServiceUnavailable, err.Error())
		default:
			utils.JSONError(w, http.StatusInternalServerError, err.Error())
		}
		return
	}
	logger.Info("send_accepted", "provisional_id", id)
	w.WriteHeader(http.StatusAccepted)
	_ = json.NewEncoder(w).Encode(map[string]string{"provisional_id": id})
}

func (s *Server) loadOlder(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	if err := s.session.LoadOlder(); err != nil {
		utils.JSONError(w, http.StatusServiceUnavailable, err.Error())
		return
	}
	w.WriteHeader(http.StatusAccepted)
	_ = json.NewEncoder(w).Encode(map[string]string{"status": "accepted"})
}

func (s *Server) scroll(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	var payload struct {
		ScrollTop      int `json:"scroll_top"`
		ViewportHeight int `json:"viewport_height"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		utils.JSONError(w, http.StatusBadRequest, "invalid json")
		return
	}
	if payload.ScrollTop < 0 || payload.ViewportHeight < 0 {
		utils.JSONError(w, http.StatusBadRequest, "scroll geometry must be non-negative")
		return
	}
	if err := s.session.Scroll(payload.ScrollTop, payload.ViewportHeight); err != nil {
		utils.JSONError(w, http.StatusServiceUnavailable, err.Error())
		return
	}
	w.WriteHeader(http.StatusAccepted)
	_ = json.NewEncoder(w).Encode(map[string]string{"status": "accepted"})
}

// --- read side ---

func (s *Server) getTimeline(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(s.session.Projection())
}

func (s *Server) getViewport(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	msgs, win := s.session.ViewportSlice()
	_ = json.NewEncoder(w).Encode(struct {
		Window   timeline.Window  `json:"window"`
		Messages []models.Message `json:"messages"`
	}{Window: win, Messages: msgs})
}

func (s *Server) getGrouping(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(struct {
		Stacks []bool `json:"stacks"`
	}{Stacks: s.session.GroupingFlags()})
}

func (s *Server) getAck(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	id := mux.Vars(r)["id"]
	glyph, ok := s.session.AckGlyphFor(id)
	if !ok {
		utils.JSONError(w, http.StatusNotFound, "message not found")
		return
	}
	_ = json.NewEncoder(w).Encode(map[string]string{"id": id, "ack": glyph})
}

// --- push ingress ---

func (s *Server) push(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	if s.limits.MaxPushBody > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, s.limits.MaxPushBody)
	}
	var ev models.PushEvent
	if err := json.NewDecoder(r.Body).Decode(&ev); err != nil {
		utils.JSONError(w, http.StatusBadRequest, "invalid json")
		return
	}
	if err := ev.Validate(); err != nil {
		utils.JSONError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := s.session.HandlePush(ev); err != nil {
		if errors.Is(err, timeline.ErrQueueFull) {
			utils.JSONError(w, http.StatusServiceUnavailable, err.Error())
			return
		}
		utils.JSONError(w, http.StatusBadRequest, err.Error())
		return
	}
	w.WriteHeader(http.StatusAccepted)
	_ = json.NewEncoder(w).Encode(map[string]string{"status": "accepted"})
}

// --- archive introspection ---

func (s *Server) listChats(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	chats, err := history.Chats()
	if err != nil {
		utils.JSONError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if chats == nil {
		chats = []string{}
	}
	_ = json.NewEncoder(w).Encode(struct {
		Chats []string `json:"chats"`
	}{Chats: chats})
}

func (s *Server) chatCount(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	id := mux.Vars(r)["id"]
	n, err := history.Count(id)
	if err != nil {
		utils.JSONError(w, http.StatusInternalServerError, err.Error())
		return
	}
	_ = json.NewEncoder(w).Encode(struct {
		Chat  string `json:"chat"`
		Count int    `json:"count"`
	}{Chat: id, Count: n})
}

// --- identity ---

func (s *Server) getAvatar(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	if s.avatars == nil {
		utils.JSONError(w, http.StatusNotFound, "avatar resolver not configured")
		return
	}
	id := mux.Vars(r)["identity"]
	url, err := s.avatars.AvatarURL(r.Context(), id)
	if err != nil {
		utils.JSONError(w, http.StatusBadGateway, err.Error())
		return
	}
	_ = json.NewEncoder(w).Encode(map[string]string{"identity": id, "url": url})
}
