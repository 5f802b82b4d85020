// Command create_admin seeds or updates an admin user for the back-office.
package main

import (
	"context"
	"flag"
	"log"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/mlima-cursos/matricula-api/pkg/config"
	"github.com/mlima-cursos/matricula-api/pkg/database"
)

func main() {
	var (
		email    string
		password string
		fullName string
	)

	flag.StringVar(&email, "email", "", "admin e-mail address")
	flag.StringVar(&password, "password", "", "admin password")
	flag.StringVar(&fullName, "name", "Administrador", "admin display name")
	flag.Parse()

	if email == "" || password == "" {
		log.Fatal("both -email and -password are required")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		log.Fatalf("database connection failed: %v", err)
	}
	defer db.Close()

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		log.Fatalf("failed to hash password: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	const query = `INSERT INTO users (id, email, password_hash, full_name, role, active, created_at, updated_at)
        VALUES ($1, $2, $3, $4, 'ADMIN', TRUE, now(), now())
        ON CONFLICT (email) DO UPDATE SET password_hash = EXCLUDED.password_hash, full_name = EXCLUDED.full_name, updated_at = now()`
	if _, err := db.ExecContext(ctx, query, uuid.NewString(), email, string(hash), fullName); err != nil {
		log.Fatalf("failed to upsert admin: %v", err)
	}

	log.Printf("admin %s ready", email)
}
