package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/unisms/university-api/pkg/config"
	"github.com/unisms/university-api/pkg/database"
)

// Seeds the first admin account so instructor/admin registration,
// which itself requires an admin token, can be bootstrapped.
func main() {
	email := flag.String("email", "admin@university.local", "admin email")
	password := flag.String("password", "", "admin password (required)")
	firstName := flag.String("first-name", "System", "admin first name")
	lastName := flag.String("last-name", "Admin", "admin last name")
	flag.Parse()

	if *password == "" {
		log.Fatal("missing -password")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		log.Fatalf("failed to connect to postgres: %v", err)
	}
	defer db.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	var exists bool
	if err := db.GetContext(ctx, &exists, `SELECT EXISTS (SELECT 1 FROM users WHERE email = $1)`, *email); err != nil {
		log.Fatalf("failed to query users: %v", err)
	}
	if exists {
		fmt.Printf("admin already exists: %s\n", *email)
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(*password), bcrypt.DefaultCost)
	if err != nil {
		log.Fatalf("failed to hash password: %v", err)
	}

	var id int64
	err = db.GetContext(ctx, &id,
		`INSERT INTO users (email, password_hash, role, first_name, last_name) VALUES ($1, $2, 'admin', $3, $4) RETURNING id`,
		*email, string(hash), *firstName, *lastName)
	if err != nil {
		log.Fatalf("failed to insert admin: %v", err)
	}

	fmt.Printf("admin created: id=%d email=%s\n", id, *email)
}
