package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/startupai/startupai-backend/internal/app"
)

func main() {
	a, err := app.New()
	if err != nil {
		fmt.Printf("Failed to start: %v\n", err)
		os.Exit(1)
	}
	defer a.Close()

	a.Start()

	if !a.Cfg.RunServer {
		// Worker-only deployment: block until a shutdown signal arrives.
		a.Log.Info("HTTP server disabled; running worker only")
		sig := make(chan os.Signal, 1)
		signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
		<-sig
		return
	}

	fmt.Printf("Server listening on :%s\n", a.Cfg.Port)
	if err := a.Run(":" + a.Cfg.Port); err != nil {
		a.Log.Warn("Server failed", "error", err)
	}
}
