package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"donationhub/internal/adapter"
	"donationhub/internal/http/handlers"
	"donationhub/internal/infra"
	"donationhub/internal/ledger"
	"donationhub/internal/notify"
)

func main() {
	var (
		jsonFlag    bool
		timeoutFlag time.Duration
	)
	flag.BoolVar(&jsonFlag, "json", false, "print the report as JSON")
	flag.DurationVar(&timeoutFlag, "timeout", 5*time.Minute, "abort the pass after this long")
	flag.Parse()

	cfg, err := infra.LoadConfig()
	if err != nil {
		exitWithError(err)
	}
	logger := infra.NewLogger("cli", cfg.ServiceName).With().Str("cmd", "reconcile").Logger()

	ctx, cancel := context.WithTimeout(context.Background(), timeoutFlag)
	defer cancel()

	backend, err := adapter.OpenStore(ctx, cfg, logger)
	if err != nil {
		exitWithError(fmt.Errorf("failed to open store: %w", err))
	}
	defer backend.Close()

	notifier := notify.New(backend.Store.Repos().Notifications, logger, cfg.DefaultLocale)
	svc := ledger.NewService(backend.Store, notifier, ledger.Options{
		Logger:     logger,
		MaxRetries: cfg.ApprovalMaxRetries,
	})

	reports, err := svc.Reconcile(ctx, ledger.SystemActor)
	if err != nil {
		exitWithError(fmt.Errorf("reconcile failed: %w", err))
	}

	if jsonFlag {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(handlers.ToReconcileDTOs(reports)); err != nil {
			exitWithError(err)
		}
		return
	}

	tw := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "POOL\tNAME\tBEFORE\tAFTER\t+MEMBERS\t-MEMBERS\tDANGLING\tCORRECTED")
	for _, r := range reports {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\t%s\t%t\n",
			r.PoolID, r.PoolName, r.Before.StringFixed(2), r.After.StringFixed(2),
			list(r.MembersAdded), list(r.MembersRemoved), list(r.DanglingContributionIDs), r.Corrected)
	}
	_ = tw.Flush()
}

func list(items []string) string {
	if len(items) == 0 {
		return "-"
	}
	return strings.Join(items, ",")
}

func exitWithError(err error) {
	fmt.Fprintln(os.Stderr, err)
	os.Exit(1)
}
