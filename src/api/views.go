package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/jwtauth"
	"github.com/rs/cors"
	"github.com/sirupsen/logrus"

	"portfolio-api/src/api/handlers"
	"portfolio-api/src/config"
)

type Server struct {
	Router  *chi.Mux
	Handler *handlers.Handler
}

func NewServer(cfg *config.Config, handler *handlers.Handler, tokenAuth *jwtauth.JWTAuth, logger *logrus.Logger) *Server {
	server := &Server{
		Router:  chi.NewRouter(),
		Handler: handler,
	}
	server.InitRoutes(cfg, tokenAuth, logger)
	return server
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.Router.ServeHTTP(w, r)
}

func (s *Server) InitRoutes(cfg *config.Config, tokenAuth *jwtauth.JWTAuth, logger *logrus.Logger) {
	s.Router.Use(handlers.RequestLogger(logger))
	s.Router.Use(cors.New(cors.Options{
		AllowedOrigins:   cfg.Service.Origins(),
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Authorization", "Content-Type"},
		AllowCredentials: true,
	}).Handler)

	s.Router.Get("/healthz", s.Handler.GetHealth)

	s.Router.Route("/auth", func(r chi.Router) {
		r.Post("/login", s.Handler.PostLogin)
		r.Post("/social", s.Handler.PostSocialLogin)
	})

	s.Router.Group(func(r chi.Router) {
		r.Use(jwtauth.Verifier(tokenAuth))
		r.Use(s.Handler.Authenticator)
		r.Get("/portfolio", s.Handler.GetPortfolio)
	})
}

func NewHTTPServer(cfg *config.Config, server *Server) *http.Server {
	httpServer := &http.Server{
		Addr:         ":" + cfg.Service.Port,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		Handler:      server,
	}
	return httpServer
}
