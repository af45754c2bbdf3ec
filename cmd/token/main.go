// Command token mints a development bearer token for the API.
//
//	go run ./cmd/token -user <id> -role ADMIN -ttl 24h
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/counselflow/counselflow-api/internal/config"
	"github.com/counselflow/counselflow-api/internal/database"
	"github.com/counselflow/counselflow-api/internal/middleware"
	"github.com/counselflow/counselflow-api/internal/models"
	"github.com/counselflow/counselflow-api/internal/repository"
)

func main() {
	userID := flag.String("user", "", "user id to embed in the token")
	email := flag.String("email", "", "look the user up by email instead of -user")
	role := flag.String("role", "", "role claim (defaults to the user's stored role)")
	ttl := flag.Duration("ttl", 24*time.Hour, "token lifetime")
	flag.Parse()

	if err := godotenv.Load(); err != nil {
		log.Println("Warning: .env file not found")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if cfg.Environment == "production" {
		log.Fatal("refusing to mint tokens in production")
	}

	claimsUser := models.User{ID: *userID, Role: strings.ToUpper(*role)}
	if *email != "" || claimsUser.Role == "" {
		user, err := lookupUser(cfg.DatabaseURL, *userID, *email)
		if err != nil {
			log.Fatalf("Failed to load user: %v", err)
		}
		claimsUser.ID, claimsUser.Email = user.ID, user.Email
		if claimsUser.Role == "" {
			claimsUser.Role = user.Role
		}
	}
	if claimsUser.ID == "" {
		fmt.Fprintln(os.Stderr, "usage: token -user <id> [-role ROLE] [-ttl 24h] | token -email <address>")
		os.Exit(2)
	}

	token, err := middleware.GenerateToken(cfg.JWTSecret, claimsUser.ID, claimsUser.Email, claimsUser.Role, *ttl)
	if err != nil {
		log.Fatalf("Failed to sign token: %v", err)
	}
	fmt.Println(token)
}

func lookupUser(databaseURL, id, email string) (*models.User, error) {
	db, err := database.Connect(databaseURL)
	if err != nil {
		return nil, err
	}
	if sqlDB, err := db.DB(); err == nil {
		defer sqlDB.Close()
	}

	users := repository.NewUserRepository(db)
	ctx := context.Background()
	if email != "" {
		return users.FindByEmail(ctx, email)
	}
	return users.FindByID(ctx, id)
}
