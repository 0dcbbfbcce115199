package main

import (
	"os"

	"github.com/quegate/quegate/internal/commands"
)

var (
	VERSION = ""
)

// @title QueGate API
// @version 1.0
// @description Queue gateway API for MSMQ-style brokers
// @host localhost:8080
// @BasePath /api
func main() {
	if err := commands.NewRootCommand(VERSION).Execute(); err != nil {
		os.Exit(1)
	}
}
