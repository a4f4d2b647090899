package main

import (
	"context"
	"database/sql"
	"flag"
	"log"
	"time"

	_ "github.com/lib/pq"

	"reverse-market/internal/config"
	"reverse-market/migrations"
)

func main() {
	down := flag.Bool("down", false, "revert migrations instead of applying them")
	steps := flag.Int("steps", 1, "number of migrations to revert with -down")
	flag.Parse()

	cfg := config.Read()

	db, err := sql.Open("postgres", cfg.GetDSN())
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	defer db.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	runner := migrations.NewRunner(db)
	var ran []string
	if *down {
		ran, err = runner.Down(ctx, *steps)
	} else {
		ran, err = runner.Up(ctx)
	}
	for _, v := range ran {
		log.Printf("Migration %s (%s) done", v, direction(*down))
	}
	if err != nil {
		log.Fatalf("Failed to migrate: %v", err)
	}
	if len(ran) == 0 {
		log.Println("Nothing to migrate")
	}
}

func direction(down bool) migrations.Direction {
	if down {
		return migrations.Down
	}
	return migrations.Up
}
