package main

import (
	"fmt"
	"os"
	"sort"

	"github.com/jamilahmedansari/app-talk-to-my-lawyer/internal/config"
	"github.com/jamilahmedansari/app-talk-to-my-lawyer/internal/repository/postgres"
	"github.com/jamilahmedansari/app-talk-to-my-lawyer/migrations"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Connect to database
	db, err := postgres.New(cfg.Database)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to connect to database: %v\n", err)
		os.Exit(1)
	}
	defer db.Close()

	fmt.Printf("Connected to %s database\n", cfg.Database.Driver)

	if len(os.Args) > 1 && os.Args[1] == "status" {
		status, err := postgres.MigrationStatus(db, migrations.GetFS())
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to read migration status: %v\n", err)
			os.Exit(1)
		}
		versions := make([]string, 0, len(status))
		for v := range status {
			versions = append(versions, v)
		}
		sort.Strings(versions)
		for _, v := range versions {
			mark := "pending"
			if status[v] {
				mark = "applied"
			}
			fmt.Printf("  %-40s %s\n", v, mark)
		}
		return
	}

	applied, err := postgres.RunMigrations(db, migrations.GetFS())
	if err != nil {
		fmt.Fprintf(os.Stderr, "Migration failed: %v\n", err)
		os.Exit(1)
	}

	if len(applied) == 0 {
		fmt.Println("Database is up to date")
		return
	}
	for _, v := range applied {
		fmt.Printf("Applied %s\n", v)
	}
	fmt.Println("\nAll migrations completed successfully!")
}
