package main

import (
	"database/sql"
	"fmt"
	"log"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/joho/godotenv"

	"github.com/hemanthdorepalli/Taskmanager-Backend/config"
	"github.com/hemanthdorepalli/Taskmanager-Backend/internal/domain/entity"
	"github.com/hemanthdorepalli/Taskmanager-Backend/pkg/helpers"
)

func main() {
	_ = godotenv.Load()
	cfg := config.Load()

	db, err := sql.Open("pgx", cfg.PostgresDSN())
	if err != nil {
		log.Fatalf("failed to open db: %v", err)
	}
	defer func() { _ = db.Close() }()

	username := "demo"
	email := "demo@example.com"
	password := "password123"
	hash, err := helpers.HashPassword(password)
	if err != nil {
		log.Fatalf("failed to hash password: %v", err)
	}

	var userID string
	err = db.QueryRow(`
		INSERT INTO users (username, email, password_hash)
		VALUES ($1, $2, $3)
		ON CONFLICT (username) DO UPDATE SET email = EXCLUDED.email
		RETURNING id
	`, username, email, hash).Scan(&userID)
	if err != nil {
		log.Fatalf("failed to seed user: %v", err)
	}
	fmt.Printf("seeded user: id=%s username=%s password=%s\n", userID, username, password)

	deadline := time.Now().AddDate(0, 0, 7).Format(entity.DeadlineLayout)
	tasks := []struct {
		title, description, priority, status string
	}{
		{"Buy groceries", "Milk, eggs, bread", entity.PriorityLow, entity.StatusYetToStart},
		{"Finish report", "Quarterly numbers for the team", entity.PriorityHigh, entity.StatusInProgress},
	}
	for _, t := range tasks {
		var taskID string
		err = db.QueryRow(`
			INSERT INTO tasks (title, description, priority, status, deadline, user_id)
			VALUES ($1, $2, $3, $4, $5, $6)
			RETURNING id
		`, t.title, t.description, t.priority, t.status, deadline, userID).Scan(&taskID)
		if err != nil {
			log.Fatalf("failed to seed task: %v", err)
		}
		fmt.Printf("seeded task: id=%s title=%q\n", taskID, t.title)
	}
}
