package main

import (
	"flag"
	"log"

	approuters "github.com/Daya1222/Real-time-chat-app/internal/app_routers"
	"github.com/Daya1222/Real-time-chat-app/internal/configuration"
)

func main() {
	configPath := flag.String("config", "config.json", "path to config file")
	flag.Parse()

	container, err := configuration.BuildContainer(*configPath)
	if err != nil {
		log.Fatalf("Failed to build container: %v", err)
	}

	// Ensure cleanup on shutdown
	defer container.Close()

	// Setup routers
	approuters.StartServer(container)
}
