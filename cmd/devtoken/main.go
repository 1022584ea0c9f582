// Command devtoken prints a bearer token for local development, signed with
// the configured JWT secret the way the identity service signs them.
// Usage: go run ./cmd/devtoken [--user <uuid>] [--email <address>]
package main

import (
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	flag "github.com/spf13/pflag"

	"notaria/internal/config"
	"notaria/internal/service"
)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	userFlag := flag.StringP("user", "u", "", "user id (random when empty)")
	email := flag.StringP("email", "e", "dev@notaria.local", "email claim")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	if cfg.Server.Environment == "production" {
		return fmt.Errorf("refusing to issue a development token in production")
	}

	userID := uuid.New()
	if *userFlag != "" {
		userID, err = uuid.Parse(*userFlag)
		if err != nil {
			return fmt.Errorf("invalid --user: %w", err)
		}
	}

	token, expires, err := service.NewAuthService(cfg.JWT).IssueToken(userID, *email)
	if err != nil {
		return fmt.Errorf("issuing token: %w", err)
	}
	log.Printf("user %s, expires %s", userID, expires.Format(time.RFC3339))
	fmt.Println(token)
	return nil
}
