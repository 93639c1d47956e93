package main

import (
	"fmt"
	"log"

	"codeberg.org/mise/server/internal/auth"
	"codeberg.org/mise/server/internal/config"
	"github.com/google/uuid"
	"github.com/joho/godotenv"
)

// mints a bearer token for local testing:
//
//	go run scripts/gen_test_token.go -tier pro -admin
func main() {
	// load environment
	if err := godotenv.Load(); err != nil {
		log.Printf("Warning: .env file not found")
	}

	flags := config.ParseTokenFlags()

	userID := flags.UserID
	if userID == "" {
		userID = uuid.New().String()
	}

	token, err := auth.GenerateJWT(userID, flags.Email, flags.Tier, flags.IsAdmin)
	if err != nil {
		log.Fatalf("Failed to generate JWT: %v", err)
	}

	fmt.Printf("user: %s  tier: %s  admin: %t\n", userID, flags.Tier, flags.IsAdmin)
	fmt.Printf("\nTest JWT Token:\n%s\n\n", token)
	fmt.Printf("Export this token for testing:\nexport TEST_TOKEN=\"%s\"\n", token)
}
