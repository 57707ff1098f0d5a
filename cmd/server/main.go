package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"funcdata-hub/internal/application/usecases"
	"funcdata-hub/internal/database"
	"funcdata-hub/internal/funcdata"
	"funcdata-hub/internal/handler"
	"funcdata-hub/internal/infrastructure/config"
	repo "funcdata-hub/internal/infrastructure/repository/sqlite"
	"funcdata-hub/internal/logger"
	"funcdata-hub/internal/server"
)

func main() {
	cfg := config.Load()

	if err := database.InitDatabase(cfg.Database.Database); err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer database.GetDatabase().Close()

	if err := logger.InitLogger(database.GetDatabase().GetDB()); err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}

	manager := funcdata.NewManager(repo.NewDocumentRepo(), cfg.Storage.FuncDataDir)
	uc := usecases.NewFuncDataUseCase(manager)

	srv := server.New()
	handler.RegisterRoutes(srv.Router, uc)

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	httpServer := &http.Server{
		Addr:         addr,
		Handler:      srv.Router,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Printf("Server starting on %s...", addr)
		if l := logger.GetLogger(); l != nil {
			l.LogSystemEvent(logger.EventSystemStart, "Service started", map[string]interface{}{
				"addr":    addr,
				"version": cfg.Application.Version,
			})
		}
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server failed to start: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	if l := logger.GetLogger(); l != nil {
		l.LogSystemEvent(logger.EventSystemStop, "Service stopping", nil)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(ctx); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}

	log.Println("Server exited")
}
