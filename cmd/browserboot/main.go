// Package main is the entry point for browserboot.
package main

import (
	"os"

	"github.com/joho/godotenv"
)

func main() {
	// Load .env file if present (ignore error if not found)
	_ = godotenv.Load()

	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
