package main

import (
	"context"
	"database/sql"
	"errors"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	_ "github.com/lib/pq"

	"donationhub/internal/sqlinline"
)

func main() {
	var printFlag bool
	flag.BoolVar(&printFlag, "print", false, "print the schema instead of applying it")
	flag.Parse()

	if printFlag {
		fmt.Print(sqlinline.QSchema)
		return
	}

	_ = godotenv.Load()
	dbURL := strings.TrimSpace(os.Getenv("DATABASE_URL"))
	if dbURL == "" {
		exitWithError(errors.New("DATABASE_URL is required"))
	}

	db, err := sql.Open("postgres", dbURL)
	if err != nil {
		exitWithError(fmt.Errorf("failed to open database: %w", err))
	}
	defer db.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		exitWithError(fmt.Errorf("failed to reach database: %w", err))
	}
	// Statements are idempotent, so the schema can be reapplied on every deploy.
	if _, err := db.ExecContext(ctx, sqlinline.QSchema); err != nil {
		exitWithError(fmt.Errorf("failed to apply schema: %w", err))
	}
	fmt.Println("schema applied")
}

func exitWithError(err error) {
	fmt.Fprintln(os.Stderr, err)
	os.Exit(1)
}
