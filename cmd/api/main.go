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

	"github.com/gin-gonic/gin"
	"github.com/liftsign/controlplane/internal/app"
	"github.com/liftsign/controlplane/internal/config"
	"github.com/liftsign/controlplane/internal/database"
	"github.com/liftsign/controlplane/internal/server"
	"github.com/liftsign/controlplane/pkg/Logger"
)

// This is the main entry point for the control-plane API server.
// Loads in all system components
// Exposes functionalities
func main() {
	// fetch cfg
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	// load global logger
	logger := Logger.New(cfg.Debug)
	logger.Info("Logger initialized")

	// redis holds device tokens and presence; the gateway shares it
	rc, err := database.NewRedis(cfg.Redis)
	if err != nil {
		log.Fatalf("Failed to connect to redis: %v", err)
	}

	application, err := app.NewApp(cfg, logger, rc)
	if err != nil {
		log.Fatalf("Failed to wire application: %v", err)
	}

	// compose router
	router := gin.Default()
	server.InitializeRoutes(router, application.GetServerDependencies())

	// listen with graceful exit
	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Server.Port),
		Handler: router.Handler(),
	}
	go func() {
		logger.Infof("control plane listening on %s", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatalf("Server exiting %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	// 5 secs then cancel
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Errorf("Shutdown err %v", err)
	}
	logger.Info("Shutdown system")
}
