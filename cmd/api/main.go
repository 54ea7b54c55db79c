package main

import (
	"context"
	"log"
	"os/signal"
	"syscall"

	"github.com/markdave123-py/Specta/internal/app"
	"github.com/markdave123-py/Specta/internal/config"
)

func main() {
	// Handle SIGINT/SIGTERM for graceful shutdown
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg := config.LoadConfig()
	application, err := app.NewApp(ctx, cfg)
	if err != nil {
		log.Fatalf("startup failed: %v", err)
	}
	defer application.Close()

	log.Println("Specta is running; DB connected and bootstrapped.")
	if err := application.Run(ctx); err != nil {
		log.Printf("server error: %v", err)
	}
	log.Println("shutting down...")
}
