package main

import (
	"os"

	"github.com/joho/godotenv"

	"github.com/jobsieve/jobsieve/cmd"
)

func main() {
	// A missing .env file is fine, the environment may be set directly.
	_ = godotenv.Load()

	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
