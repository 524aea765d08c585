package main

import (
	"os"

	"github.com/joho/godotenv"

	"moviesnow/internal/devstub"
	"moviesnow/internal/platform/httpserver"
	"moviesnow/internal/platform/logger"
)

// main runs the in-memory MoviesNow auth stub for local development. All
// state lives in process and vanishes on exit.
func main() {
	_ = godotenv.Load()

	addr := os.Getenv("MOVIESNOW_STUB_ADDR")
	if addr == "" {
		addr = ":8480"
	}
	log := logger.New(os.Getenv("MOVIESNOW_LOG_LEVEL"))

	stub := devstub.New(devstub.WithLogger(log), devstub.WithLoginRateLimit(10))
	srv := httpserver.New(addr, stub.Router())

	log.Info("starting moviesnow auth stub", "addr", addr)
	if err := httpserver.Run(srv, log); err != nil {
		log.Error("server error", "error", err)
		os.Exit(1)
	}
}
