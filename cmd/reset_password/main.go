package main

import (
	"flag"
	"fmt"

	"github.com/TurnIfCode/backend-gogo/pkg/account"
	"github.com/TurnIfCode/backend-gogo/pkg/database"
	"github.com/TurnIfCode/backend-gogo/pkg/logger"
)

func main() {
	username := flag.String("username", "", "username to reset")
	password := flag.String("password", "", "new plaintext password (min 8 chars)")
	flag.Parse()
	if *username == "" || *password == "" {
		logger.Fatal("--username and --password are required")
	}

	db, err := database.FromEnv()
	if err != nil {
		logger.Fatalf("open db: %v", err)
	}
	if err := account.ResetPassword(db, *username, *password); err != nil {
		logger.Fatalf("reset failed: %v", err)
	}
	fmt.Printf("Password reset for user %s; refresh tokens revoked\n", *username)
}
