package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"donationhub/internal/adapter"
	"donationhub/internal/domain"
	"donationhub/internal/infra"
	"donationhub/internal/ledger"
	"donationhub/internal/middleware"
	"donationhub/internal/notify"
)

func main() {
	var (
		emailFlag  string
		nameFlag   string
		roleFlag   string
		localeFlag string
		createFlag bool
		ttlFlag    time.Duration
	)

	flag.StringVar(&emailFlag, "email", "", "contributor email (required)")
	flag.StringVar(&nameFlag, "name", "", "display name, required with -create")
	flag.StringVar(&roleFlag, "role", "donor", "role to assign on create (donor, admin, batch_staff)")
	flag.StringVar(&localeFlag, "locale", "en", "preferred notification locale on create")
	flag.BoolVar(&createFlag, "create", false, "create the contributor instead of looking it up")
	flag.DurationVar(&ttlFlag, "ttl", 24*time.Hour, "lifetime of the printed bearer token")
	flag.Parse()

	email := strings.TrimSpace(emailFlag)
	if email == "" {
		exitWithError(errors.New("-email is required"))
	}

	cfg, err := infra.LoadConfig()
	if err != nil {
		exitWithError(err)
	}
	logger := infra.NewLogger("cli", cfg.ServiceName).With().Str("cmd", "contributor").Logger()

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	backend, err := adapter.OpenStore(ctx, cfg, logger)
	if err != nil {
		exitWithError(fmt.Errorf("failed to open store: %w", err))
	}
	defer backend.Close()

	notifier := notify.New(backend.Store.Repos().Notifications, logger, cfg.DefaultLocale)
	svc := ledger.NewService(backend.Store, notifier, ledger.Options{Logger: logger})

	var c *domain.Contributor
	if createFlag {
		c = &domain.Contributor{
			Name:   nameFlag,
			Email:  email,
			Role:   domain.Role(strings.ToLower(strings.TrimSpace(roleFlag))),
			Locale: strings.TrimSpace(localeFlag),
		}
		if err := svc.RegisterContributor(ctx, c); err != nil {
			exitWithError(fmt.Errorf("failed to create contributor: %w", err))
		}
	} else {
		c, err = svc.LookupContributor(ctx, email)
		if err != nil {
			exitWithError(fmt.Errorf("failed to load contributor: %w", err))
		}
	}

	token, err := middleware.IssueToken(cfg.JWTSecret, c.ID, string(c.Role), c.Locale, ttlFlag)
	if err != nil {
		exitWithError(fmt.Errorf("failed to sign token: %w", err))
	}

	fmt.Printf("Contributor %s (%s) role=%s locale=%s\n", c.ID, c.Email, c.Role, c.Locale)
	if c.PublicID != "" {
		fmt.Printf("public_id=%s\n", c.PublicID)
	}
	fmt.Printf("donations=%d total=%s\n", c.DonationCount, c.TotalDonated.StringFixed(2))
	fmt.Printf("token=%s\n", token)
}

func exitWithError(err error) {
	fmt.Fprintln(os.Stderr, err)
	os.Exit(1)
}
