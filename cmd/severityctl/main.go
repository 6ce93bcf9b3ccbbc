// Command severityctl encodes and scores collision records offline using the
// same encoder and classifier artifacts as the severity service.
package main

import (
	"os"

	"github.com/joho/godotenv"
)

func main() {
	_ = godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
