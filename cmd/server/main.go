package main

import (
	"log"

	_ "taskmaster/docs"
	"taskmaster/internal/config"
	"taskmaster/internal/server"
)

// @title           TaskMaster API
// @version         1.0
// @description     Project and task management API: projects, team members, tasks with a status workflow, comments and activity logging.

// @license.name   MIT

// @host      localhost:8080
// @BasePath  /

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.

// @schemes http
func main() {
	cfg := config.Load()

	s, err := server.Init(cfg)
	if err != nil {
		log.Fatalf("❌ Server initialization failed: %v", err)
	}

	s.Run()
}
