package web

import (
	"encoding/json"
	"errors"
	"net/http"
	"unicode/utf8"

	"agehasite/internal/chat"
)

const (
	maxChatBody    = 16 << 10
	maxQuestionLen = 1000
)

type chatRequest struct {
	Session  string `json:"session"`
	Question string `json:"question"`
}

type chatResponse struct {
	Session  string         `json:"session"`
	Reply    string         `json:"reply,omitempty"`
	Messages []chat.Message `json:"messages"`
}

// handleChat serves the chat widget.
//
// GET  /api/chat?session=<id>   transcript (a new session when id is unknown)
// POST /api/chat                {"session": "...", "question": "..."}
func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	if !allowMethods(w, r, http.MethodGet, http.MethodPost) {
		return
	}
	if s.sessions == nil {
		writeError(w, http.StatusNotFound, "chat is disabled")
		return
	}

	if r.Method == http.MethodGet {
		id, msgs := s.sessions.Open(r.URL.Query().Get("session"))
		writeJSON(w, http.StatusOK, chatResponse{Session: id, Messages: msgs})
		return
	}

	var req chatRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxChatBody)).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if utf8.RuneCountInString(req.Question) > maxQuestionLen {
		writeError(w, http.StatusBadRequest, "question is too long")
		return
	}

	// Unknown or evicted ids get a fresh session rather than an error.
	id, reply, msgs, err := s.sessions.Submit(r.Context(), req.Session, req.Question)
	switch {
	case errors.Is(err, chat.ErrEmptyQuestion):
		writeError(w, http.StatusBadRequest, "question is empty")
		return
	case errors.Is(err, chat.ErrBusy):
		writeError(w, http.StatusConflict, "a question is already being answered")
		return
	case err != nil:
		writeError(w, http.StatusInternalServerError, "chat failed")
		return
	}
	writeJSON(w, http.StatusOK, chatResponse{Session: id, Reply: reply, Messages: msgs})
}
