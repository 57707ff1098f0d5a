package server

import (
	"funcdata-hub/internal/middleware"

	"github.com/gorilla/mux"
)

// Server represents the HTTP server with configured middleware
type Server struct {
	Router *mux.Router
}

// New creates a new server instance and attaches middlewares
func New() *Server {
	router := mux.NewRouter()

	// Order matters: request id first so logging can pick it up
	router.Use(middleware.RequestIDMiddleware)
	router.Use(middleware.CorsMiddleware)
	router.Use(middleware.LoggingMiddleware)

	return &Server{
		Router: router,
	}
}
