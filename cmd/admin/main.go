package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"zvit/internal/domain/statement"
	"zvit/internal/infrastructure/bankapi"
	"zvit/internal/infrastructure/crypto"
	"zvit/internal/infrastructure/postgres"
	"zvit/internal/shared/config"
)

const usage = `Zvit Admin CLI - Management commands for the Zvit API

Usage:
  admin <command> [options]

Commands:
  sync              Run a statement sync for one or more users
  register-webhook  Register the push webhook upstream for one or more users

Examples:
  # Full backfill for a specific user
  admin sync --user-id=1 --mode=full

  # Incremental sync for multiple users
  admin sync --user-id=1,2,3

  # Incremental sync for every user with a stored token
  admin sync --all

  # Full backfill with a longer deadline (statement requests are spaced
  # a minute apart, multi-account backfills take a while)
  admin sync --user-id=1 --mode=full --timeout=2h

  # Register the webhook for all users with a stored token
  admin register-webhook --all`

func main() {
	if len(os.Args) < 2 {
		fmt.Println(usage)
		os.Exit(1)
	}

	command := os.Args[1]

	switch command {
	case "sync":
		runSync(os.Args[2:])
	case "register-webhook":
		runRegisterWebhook(os.Args[2:])
	case "help", "-h", "--help":
		fmt.Println(usage)
	default:
		fmt.Printf("Unknown command: %s\n\n", command)
		fmt.Println(usage)
		os.Exit(1)
	}
}

// adminDeps bundles what both commands need.
type adminDeps struct {
	db       *postgres.DB
	users    *postgres.UserRepository
	service  *statement.Service
	shutdown func()
}

func newAdminDeps() *adminDeps {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	db, err := postgres.New(cfg.Database.ConnectionString())
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	log.Println("Connected to database")

	encryptor, err := crypto.NewEncryptor(cfg.Encryption.Key)
	if err != nil {
		db.Close()
		log.Fatalf("Failed to create encryptor: %v", err)
	}

	userRepo := postgres.NewUserRepository(db, encryptor)
	accountRepo := postgres.NewAccountRepository(db)
	transactionRepo := postgres.NewTransactionRepository(db)

	client := bankapi.NewClient(cfg.Bank.BaseURL)
	service := statement.NewService(client, userRepo, accountRepo, transactionRepo, statement.Config{
		WebhookBaseURL:  cfg.Bank.WebhookBaseURL,
		RequestInterval: cfg.Bank.RequestInterval,
	})

	return &adminDeps{
		db:       db,
		users:    userRepo,
		service:  service,
		shutdown: func() { db.Close() },
	}
}

// resolveUserIDs turns --user-id / --all flags into a concrete ID list.
func resolveUserIDs(ctx context.Context, deps *adminDeps, userIDStr string, allUsers bool) []int64 {
	var userIDs []int64

	if allUsers {
		users, err := deps.users.ListWithToken(ctx)
		if err != nil {
			log.Fatalf("Failed to list users: %v", err)
		}
		for _, u := range users {
			userIDs = append(userIDs, u.ID)
		}
		log.Printf("Found %d users with a stored token", len(userIDs))
		return userIDs
	}

	for _, p := range strings.Split(userIDStr, ",") {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		id, err := strconv.ParseInt(p, 10, 64)
		if err != nil {
			log.Fatalf("Invalid user ID '%s': %v", p, err)
		}
		userIDs = append(userIDs, id)
	}
	return userIDs
}

func runSync(args []string) {
	fs := flag.NewFlagSet("sync", flag.ExitOnError)

	userIDStr := fs.String("user-id", "", "User ID(s) to sync (comma-separated for multiple)")
	allUsers := fs.Bool("all", false, "Sync all users with a stored token")
	mode := fs.String("mode", "incremental", "Sync mode: full or incremental")
	timeoutStr := fs.String("timeout", "1h", "Timeout for the operation (e.g., 30m, 2h)")

	fs.Usage = func() {
		fmt.Println("Usage: admin sync [options]")
		fmt.Println("\nOptions:")
		fs.PrintDefaults()
		fmt.Println("\nExamples:")
		fmt.Println("  admin sync --user-id=1 --mode=full")
		fmt.Println("  admin sync --user-id=1,2,3")
		fmt.Println("  admin sync --all --timeout=4h")
	}

	if err := fs.Parse(args); err != nil {
		os.Exit(1)
	}

	if *userIDStr == "" && !*allUsers {
		fmt.Println("Error: must specify --user-id or --all")
		fs.Usage()
		os.Exit(1)
	}
	if *mode != "full" && *mode != "incremental" {
		log.Fatalf("Invalid mode %q: must be full or incremental", *mode)
	}

	timeout, err := time.ParseDuration(*timeoutStr)
	if err != nil {
		log.Fatalf("Invalid timeout format: %v", err)
	}

	deps := newAdminDeps()
	defer deps.shutdown()

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	userIDs := resolveUserIDs(ctx, deps, *userIDStr, *allUsers)
	if len(userIDs) == 0 {
		log.Println("No users to process")
		return
	}

	log.Printf("Starting %s sync for %d user(s)", *mode, len(userIDs))
	startTime := time.Now()

	// Users run one after another. The upstream limits requests per token,
	// not globally, but sequential runs keep log output readable and avoid
	// piling up hour-long goroutines in a one-shot CLI.
	failures := 0
	for _, uid := range userIDs {
		var result *statement.Result
		var err error
		if *mode == "full" {
			result, err = deps.service.FullSync(ctx, uid)
		} else {
			result, err = deps.service.IncrementalSync(ctx, uid)
		}
		if err != nil {
			failures++
			if errors.Is(err, statement.ErrSyncInProgress) {
				log.Printf("User %d: sync already in progress, skipping", uid)
				continue
			}
			log.Printf("User %d: sync failed: %v", uid, err)
			continue
		}
		printSyncResult(uid, result)
	}

	log.Printf("Sync completed in %v (%d user(s), %d failure(s))", time.Since(startTime), len(userIDs), failures)
	if failures > 0 {
		os.Exit(1)
	}
}

func printSyncResult(userID int64, result *statement.Result) {
	fmt.Printf("\n=== User %d ===\n", userID)
	fmt.Printf("  Run ID:       %s\n", result.RunID)
	fmt.Printf("  Accounts:     %d\n", result.Accounts)
	fmt.Printf("  Transactions: %d\n", result.Transactions)
	if result.FallbackApplied {
		fmt.Printf("  Note: cursor older than the statement window, synced trailing 31 days only\n")
	}
}

func runRegisterWebhook(args []string) {
	fs := flag.NewFlagSet("register-webhook", flag.ExitOnError)

	userIDStr := fs.String("user-id", "", "User ID(s) to register (comma-separated for multiple)")
	allUsers := fs.Bool("all", false, "Register for all users with a stored token")
	timeoutStr := fs.String("timeout", "5m", "Timeout for the operation")

	fs.Usage = func() {
		fmt.Println("Usage: admin register-webhook [options]")
		fmt.Println("\nOptions:")
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		os.Exit(1)
	}

	if *userIDStr == "" && !*allUsers {
		fmt.Println("Error: must specify --user-id or --all")
		fs.Usage()
		os.Exit(1)
	}

	timeout, err := time.ParseDuration(*timeoutStr)
	if err != nil {
		log.Fatalf("Invalid timeout format: %v", err)
	}

	deps := newAdminDeps()
	defer deps.shutdown()

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	userIDs := resolveUserIDs(ctx, deps, *userIDStr, *allUsers)
	if len(userIDs) == 0 {
		log.Println("No users to process")
		return
	}

	failures := 0
	for _, uid := range userIDs {
		url, err := deps.service.RegisterWebhook(ctx, uid)
		if err != nil {
			failures++
			log.Printf("User %d: webhook registration failed: %v", uid, err)
			continue
		}
		log.Printf("User %d: webhook registered at %s", uid, url)
	}

	if failures > 0 {
		os.Exit(1)
	}
}
