package main

import (
	"log"

	"github.com/joho/godotenv"

	"voxbot/internal/bootstrap"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("no .env file found, using environment variables")
	}

	services, err := bootstrap.Build()
	if err != nil {
		log.Fatalf("failed to build services: %v", err)
	}

	log.Printf("voxbot listening on :%s", services.Config.Server.Port)
	if err := services.Server.Run(services.Config.Server.Port); err != nil {
		log.Fatalf("server stopped: %v", err)
	}
}
