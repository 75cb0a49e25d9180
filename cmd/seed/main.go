package main

import (
	"database/sql"
	"fmt"
	"log"

	"github.com/google/uuid"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/joho/godotenv"

	"github.com/shopora/user-service/config"
	"github.com/shopora/user-service/pkg/helpers"
)

// Seeds an already-activated demo account so local logins work without
// going through the email activation flow.
func main() {
	_ = godotenv.Load()
	cfg := config.Load()

	db, err := sql.Open("pgx", cfg.PostgresDSN())
	if err != nil {
		log.Fatalf("failed to open db: %v", err)
	}
	defer func() { _ = db.Close() }()

	email := "demo@shopora.dev"
	password := "password123"
	name := "Demo User"
	hash, err := helpers.HashPassword(password)
	if err != nil {
		log.Fatalf("failed to hash password: %v", err)
	}

	var id string
	err = db.QueryRow(`
		INSERT INTO users (id, email, password_hash, name, role, is_activated, profile_photo)
		VALUES ($1, $2, $3, $4, 'user', TRUE, '')
		ON CONFLICT (email) DO UPDATE SET name = EXCLUDED.name, is_activated = TRUE
		RETURNING id
	`, uuid.NewString(), email, hash, name).Scan(&id)
	if err != nil {
		log.Fatalf("failed to seed user: %v", err)
	}
	fmt.Printf("seeded user: id=%s email=%s password=%s\n", id, email, password)
}
