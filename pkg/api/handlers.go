package api

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/lumenai/lumen/pkg/auth"
	"github.com/lumenai/lumen/pkg/chat"
	"github.com/lumenai/lumen/pkg/model"
	"github.com/lumenai/lumen/pkg/storage"
)

type credentialsRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type userResponse struct {
	ID       string `json:"id"`
	Username string `json:"username"`
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	req.Username = strings.TrimSpace(req.Username)
	if req.Username == "" || req.Password == "" {
		writeError(w, http.StatusBadRequest, "Username and password are required")
		return
	}

	hashed, err := auth.HashPassword(req.Password)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to create user")
		return
	}

	user, err := s.store.CreateUser(r.Context(), model.User{
		Username: req.Username,
		Password: hashed,
	})
	if err != nil {
		if errors.Is(err, storage.ErrUsernameTaken) {
			writeError(w, http.StatusBadRequest, "Username already taken")
			return
		}
		s.logger.Error("Failed to create user", "error", err)
		writeError(w, http.StatusInternalServerError, "Failed to create user")
		return
	}

	s.startSession(w, user)
	writeJSON(w, http.StatusCreated, userResponse{ID: user.ID, Username: user.Username})
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	user, err := s.store.GetUserByUsername(r.Context(), req.Username)
	if err != nil {
		writeError(w, http.StatusUnauthorized, "Invalid credentials")
		return
	}
	if !auth.VerifyPassword(req.Password, user.Password) {
		writeError(w, http.StatusUnauthorized, "Invalid credentials")
		return
	}

	s.startSession(w, user)
	writeJSON(w, http.StatusOK, userResponse{ID: user.ID, Username: user.Username})
}

func (s *Server) startSession(w http.ResponseWriter, user model.User) {
	token, err := s.sessions.Issue(user.ID)
	if err != nil {
		s.logger.Error("Failed to issue session token", "user_id", user.ID, "error", err)
		return
	}
	s.sessions.SetCookie(w, token)
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	s.sessions.ClearCookie(w)
	w.WriteHeader(http.StatusOK)
}

func (s *Server) handleCurrentUser(w http.ResponseWriter, r *http.Request) {
	user := userFromContext(r.Context())
	writeJSON(w, http.StatusOK, userResponse{ID: user.ID, Username: user.Username})
}

func (s *Server) handleGetMessages(w http.ResponseWriter, r *http.Request) {
	user := userFromContext(r.Context())

	messages, err := s.chat.GetMessages(r.Context(), user.ID)
	if err != nil {
		s.logger.Error("Failed to load messages", "user_id", user.ID, "error", err)
		writeError(w, http.StatusInternalServerError, "Failed to load messages")
		return
	}
	writeJSON(w, http.StatusOK, messages)
}

type sendMessageRequest struct {
	Content  string                 `json:"content"`
	Role     string                 `json:"role"`
	Metadata *model.MessageMetadata `json:"metadata,omitempty"`
}

func (s *Server) handleSendMessage(w http.ResponseWriter, r *http.Request) {
	user := userFromContext(r.Context())

	var req sendMessageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid message format")
		return
	}
	if strings.TrimSpace(req.Content) == "" || !model.Role(req.Role).Valid() {
		writeError(w, http.StatusBadRequest, "Invalid message format")
		return
	}

	result, err := s.chat.SendMessage(r.Context(), user.ID, req.Content, req.Metadata)
	if err != nil {
		if errors.Is(err, chat.ErrModelCall) {
			writeError(w, http.StatusInternalServerError, "Failed to get AI response")
			return
		}
		s.logger.Error("Failed to process message", "user_id", user.ID, "error", err)
		writeError(w, http.StatusInternalServerError, "Failed to process message")
		return
	}

	writeJSON(w, http.StatusOK, result)
}

func (s *Server) handleClearMessages(w http.ResponseWriter, r *http.Request) {
	user := userFromContext(r.Context())

	if err := s.chat.ClearMessages(r.Context(), user.ID); err != nil {
		s.logger.Error("Failed to clear messages", "user_id", user.ID, "error", err)
		writeError(w, http.StatusInternalServerError, "Failed to clear messages")
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}

type speechRequest struct {
	Text  string `json:"text"`
	Voice string `json:"voice,omitempty"`
}

func (s *Server) handleSpeech(w http.ResponseWriter, r *http.Request) {
	var req speechRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if strings.TrimSpace(req.Text) == "" {
		writeError(w, http.StatusBadRequest, "Text is required")
		return
	}

	audio, err := s.synth.Stream(r.Context(), req.Text, req.Voice)
	if err != nil {
		s.logger.Error("Speech synthesis failed", "error", err)
		writeError(w, http.StatusBadGateway, "Speech synthesis failed")
		return
	}
	defer audio.Close()

	w.Header().Set("Content-Type", "audio/mpeg")
	w.WriteHeader(http.StatusOK)
	_, _ = io.Copy(w, audio)
}
