// Package main is the entry point for the TableScribe CLI.
package main

import (
	"github.com/joho/godotenv"

	"github.com/KaramelBytes/tablescribe/cmd"
)

func main() {
	// Load .env file if it exists
	_ = godotenv.Load()
	cmd.Execute()
}
