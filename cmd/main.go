package main

import (
	"log"
	"os"

	"backend/config"
	"backend/routes"
	"backend/utils"
)

func main() {
	if err := config.SetupLogger(); err != nil {
		log.Fatalf("logger setup failed: %v", err)
	}

	config.InitDB()
	utils.InitS3()

	r := routes.SetupRouter()

	port := os.Getenv("PORT")
	if port == "" {
		port = "4000"
	}
	if err := r.Run(":" + port); err != nil {
		log.Fatalf("server stopped: %v", err)
	}
}
