package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/mobidist/backend/internal/application/etl"
	"github.com/mobidist/backend/internal/domain/shared"
	"github.com/mobidist/backend/internal/infrastructure/config"
	"github.com/mobidist/backend/internal/infrastructure/logger"
	"github.com/mobidist/backend/internal/infrastructure/persistence"
)

const defaultRecentDays = 7

type cliOptions struct {
	mode      string // rebuild, today, recent, status, range
	days      int
	from      time.Time
	to        time.Time
	dryRun    bool
	force     bool
	batchSize int
}

// parseArgs resolves the run mode from the flags actually passed. The
// -sync-recent window defaults to 7 days; passing the flag is what selects
// recent mode, so the default stays reachable via a bare "-sync-recent 7"
// or any other N.
func parseArgs(args []string, output io.Writer) (*cliOptions, error) {
	fs := flag.NewFlagSet("etl", flag.ContinueOnError)
	fs.SetOutput(output)

	var (
		rebuild    = fs.Bool("rebuild", false, "Drop and regenerate the entire fact table")
		syncToday  = fs.Bool("sync-today", false, "Sync settlements created today")
		syncRecent = fs.Int("sync-recent", defaultRecentDays, "Sync settlements created in the last N days")
		syncStatus = fs.Bool("sync-status", false, "Repair status drift between ledger and facts")
		startDate  = fs.String("start-date", "", "Range start (YYYY-MM-DD, inclusive)")
		endDate    = fs.String("end-date", "", "Range end (YYYY-MM-DD, exclusive)")
		dryRun     = fs.Bool("dry-run", false, "Count work without writing")
		force      = fs.Bool("force", false, "Recompute all fields on existing facts")
		batchSize  = fs.Int("batch-size", 0, "Settlements per transaction (default 1000)")
	)

	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	syncRecentSet := false
	fs.Visit(func(f *flag.Flag) {
		if f.Name == "sync-recent" {
			syncRecentSet = true
		}
	})

	opts := &cliOptions{
		days:      *syncRecent,
		dryRun:    *dryRun,
		force:     *force,
		batchSize: *batchSize,
	}

	modes := 0
	for mode, set := range map[string]bool{
		"rebuild": *rebuild,
		"today":   *syncToday,
		"recent":  syncRecentSet,
		"status":  *syncStatus,
		"range":   *startDate != "",
	} {
		if set {
			opts.mode = mode
			modes++
		}
	}
	if modes != 1 {
		return nil, errors.New("exactly one of -rebuild, -sync-today, -sync-recent, -sync-status or -start-date is required")
	}

	switch opts.mode {
	case "recent":
		if opts.days <= 0 {
			return nil, errors.New("-sync-recent must be a positive number of days")
		}
	case "range":
		from, err := time.Parse("2006-01-02", *startDate)
		if err != nil {
			return nil, errors.New("invalid -start-date, expected YYYY-MM-DD")
		}
		if *endDate == "" {
			return nil, errors.New("-end-date is required with -start-date")
		}
		to, err := time.Parse("2006-01-02", *endDate)
		if err != nil {
			return nil, errors.New("invalid -end-date, expected YYYY-MM-DD")
		}
		if !to.After(from) {
			return nil, errors.New("-end-date must be after -start-date")
		}
		opts.from, opts.to = from, to
	default:
		if *endDate != "" {
			return nil, errors.New("-end-date requires -start-date")
		}
	}

	return opts, nil
}

func main() {
	os.Exit(run())
}

func run() int {
	opts, err := parseArgs(os.Args[1:], os.Stderr)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 2
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		return 1
	}

	log, err := logger.New(&logger.Config{
		Level:      cfg.Log.Level,
		Format:     "console",
		Output:     "stdout",
		TimeFormat: "2006-01-02 15:04:05",
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		return 1
	}
	defer func() {
		_ = log.Sync()
	}()

	db, err := persistence.NewDatabase(&cfg.Database)
	if err != nil {
		log.Error("Failed to connect to database", zap.Error(err))
		return 1
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Error closing database", zap.Error(err))
		}
	}()

	settlementRepo := persistence.NewGormSettlementRepository(db.DB)
	factRepo := persistence.NewGormCommissionFactRepository(db.DB)
	trackingRepo := persistence.NewGormGradeTrackingRepository(db.DB)
	policyRepo := persistence.NewGormPolicyRepository(db.DB)
	orderLookup := persistence.NewGormOrderLookup(db.DB)
	txManager := persistence.NewGormTransactionManager(db.DB)

	etlService := etl.NewCommissionFactETLService(
		settlementRepo, factRepo, trackingRepo, policyRepo, orderLookup, txManager, log)
	etlService.SetChunkSize(cfg.ETL.ChunkSize)

	runOpts := etl.RunOptions{
		Force:     opts.force,
		DryRun:    opts.dryRun,
		ChunkSize: opts.batchSize,
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	var summary *etl.RunSummary
	switch opts.mode {
	case "rebuild":
		summary, err = etlService.Rebuild(ctx, runOpts)
	case "today":
		summary, err = etlService.SyncToday(ctx, runOpts)
	case "recent":
		summary, err = etlService.SyncRecent(ctx, opts.days, runOpts)
	case "status":
		summary, err = etlService.SyncSettlementStatus(ctx, runOpts)
	case "range":
		summary, err = etlService.SyncRange(ctx, opts.from, opts.to, runOpts)
	}
	if err != nil {
		log.Error("ETL run failed", zap.Error(err))
		if shared.HasCode(err, shared.CodeThresholdExceeded) {
			printSummary(summary)
			return 3
		}
		return 1
	}

	printSummary(summary)
	return 0
}

func printSummary(summary *etl.RunSummary) {
	if summary == nil {
		return
	}
	fmt.Printf("batch:     %s\n", summary.BatchID)
	fmt.Printf("mode:      %s", summary.Mode)
	if summary.DryRun {
		fmt.Print(" (dry run)")
	}
	fmt.Println()
	fmt.Printf("processed: %d\n", summary.Processed)
	fmt.Printf("inserted:  %d\n", summary.Inserted)
	fmt.Printf("updated:   %d\n", summary.Updated)
	fmt.Printf("unchanged: %d\n", summary.Unchanged)
	fmt.Printf("failed:    %d\n", summary.Failed)
	fmt.Printf("duration:  %s\n", summary.Duration)
}
