// Package api is the REST surface: auth, the message ledger, and the
// speech proxy. JSON in, JSON out, session cookie auth.
package api

import (
	"net/http"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi"
	"github.com/rs/cors"

	"github.com/lumenai/lumen/pkg/auth"
	"github.com/lumenai/lumen/pkg/chat"
	"github.com/lumenai/lumen/pkg/speech"
	"github.com/lumenai/lumen/pkg/storage"
)

type Server struct {
	logger   *log.Logger
	store    storage.Storage
	chat     *chat.Service
	sessions *auth.Sessions
	synth    *speech.Synthesizer
}

func NewServer(logger *log.Logger, store storage.Storage, chatService *chat.Service, sessions *auth.Sessions, synth *speech.Synthesizer) *Server {
	return &Server{
		logger:   logger,
		store:    store,
		chat:     chatService,
		sessions: sessions,
		synth:    synth,
	}
}

func (s *Server) Router(allowedOrigins string) *chi.Mux {
	router := chi.NewRouter()
	router.Use(cors.New(cors.Options{
		AllowCredentials: true,
		AllowedOrigins:   strings.Split(allowedOrigins, ","),
		AllowedHeaders:   []string{"Authorization", "Content-Type", "Accept"},
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodDelete},
	}).Handler)

	router.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	router.Route("/api", func(r chi.Router) {
		r.Post("/register", s.handleRegister)
		r.Post("/login", s.handleLogin)
		r.Post("/logout", s.handleLogout)

		r.Group(func(r chi.Router) {
			r.Use(s.requireUser)
			r.Get("/user", s.handleCurrentUser)
			r.Get("/messages", s.handleGetMessages)
			r.Post("/messages", s.handleSendMessage)
			r.Delete("/messages", s.handleClearMessages)
			r.Post("/speech", s.handleSpeech)
		})
	})

	return router
}
