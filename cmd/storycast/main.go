package main

import (
	"log"
	"os"

	"github.com/joho/godotenv"
)

func main() {
	// Load .env for local service credentials; absence is fine.
	_ = godotenv.Load()

	log.SetFlags(log.LstdFlags)
	if err := newRootCommand().Execute(); err != nil {
		log.Printf("error: %v", err)
		os.Exit(1)
	}
}
