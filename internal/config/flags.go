package config

import (
	"flag"
	"os"
)

// parses CLI flags for the test token script
func ParseTokenFlags() TokenFlags {
	fs := flag.NewFlagSet("gen_test_token", flag.ExitOnError)
	userID := fs.String("user", "", "user id to embed in the token (random when empty)")
	email := fs.String("email", "test@example.com", "email claim")
	tier := fs.String("tier", "none", "subscription tier: none, basic or pro")
	isAdmin := fs.Bool("admin", false, "grant the admin claim")
	fs.Parse(os.Args[1:]) //nolint:errcheck,gosec // G104: ExitOnError flag set handles errors

	return TokenFlags{UserID: *userID, Email: *email, Tier: *tier, IsAdmin: *isAdmin}
}
