package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/mwielgos/bankdash/internal/config"
	"github.com/mwielgos/bankdash/internal/generator"
	"github.com/mwielgos/bankdash/internal/logging"
	"github.com/mwielgos/bankdash/internal/repository"
	"github.com/mwielgos/bankdash/internal/service"
	"github.com/mwielgos/bankdash/internal/store"
)

func main() {
	defCfg := generator.DefaultConfig()
	var (
		accounts     = flag.Int("accounts", defCfg.NumAccounts, "number of accounts to generate")
		transactions = flag.Int("transactions", defCfg.NumTransactions, "number of transactions to generate")
		maxBalance   = flag.Float64("max-balance", defCfg.MaxInitialBalance, "upper bound for generated initial balances")
		seed         = flag.Int64("seed", defCfg.Seed, "random seed for deterministic generation")
		dsn          = flag.String("dsn", "bankdash.db", "SQLite DSN to seed (file path)")
		workers      = flag.Int("workers", 4, "number of concurrent workers for posting")
		outputDir    = flag.String("output-dir", "", "write accounts.json and transactions.json to this directory instead of a database")
		writeStdout  = flag.Bool("stdout", false, "write combined dataset to stdout instead of a database")
	)
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}
	logger := logging.New(cfg.Logging).With("component", "seed")

	gen := generator.New(generator.Config{
		NumAccounts:       *accounts,
		NumTransactions:   *transactions,
		MaxInitialBalance: *maxBalance,
		Seed:              *seed,
	})
	dataset := gen.Generate()

	if *writeStdout {
		if err := json.NewEncoder(os.Stdout).Encode(dataset); err != nil {
			fmt.Fprintf(os.Stderr, "failed to write dataset to stdout: %v\n", err)
			os.Exit(1)
		}
		return
	}

	if *outputDir != "" {
		if err := generator.WriteDataset(dataset, *outputDir); err != nil {
			logger.Error("failed to write dataset", "error", err)
			os.Exit(1)
		}
		logger.Info("dataset written", "dir", *outputDir,
			"accounts", len(dataset.Accounts), "transactions", len(dataset.Transactions))
		return
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	st, err := store.Open(store.Options{DSN: *dsn})
	if err != nil {
		logger.Error("failed to open store", "error", err, "dsn", *dsn)
		os.Exit(1)
	}
	defer func() {
		if err := st.Close(); err != nil {
			logger.Warn("closing store failed", "error", err)
		}
	}()

	if err := st.Init(ctx); err != nil {
		logger.Error("failed to initialize schema", "error", err)
		os.Exit(1)
	}

	accountRepo := repository.NewAccounts(st)
	transactionRepo := repository.NewTransactions(st)
	accountService := service.NewAccountService(accountRepo)
	transactionService := service.NewTransactionService(accountRepo, transactionRepo)

	start := time.Now()

	ids := make([]string, 0, len(dataset.Accounts))
	for _, in := range dataset.Accounts {
		account, err := accountService.Create(ctx, in)
		if err != nil {
			logger.Error("failed to create account", "error", err, "accountNumber", in.AccountNumber)
			os.Exit(1)
		}
		ids = append(ids, account.ID)
	}
	logger.Info("accounts created", "count", len(ids))

	requests := make([]service.PostRequest, 0, len(dataset.Transactions))
	for _, spec := range dataset.Transactions {
		requests = append(requests, service.PostRequest{
			AccountID: ids[spec.AccountIndex],
			Input:     spec.Input,
		})
	}

	poster := service.NewBulkPoster(transactionService, *workers)
	err = poster.Post(ctx, requests)

	// Randomly generated debits can legitimately bounce on insufficient funds;
	// report them without failing the run.
	var postErr *service.PostError
	switch {
	case err == nil:
		logger.Info("all transactions posted", "count", len(requests))
	case errors.As(err, &postErr):
		logger.Warn("some postings rejected",
			"posted", len(requests)-len(postErr.Errors), "rejected", len(postErr.Errors))
	default:
		logger.Error("posting failed", "error", err)
		os.Exit(1)
	}

	logger.Info("seeding complete", "duration", time.Since(start).String(), "dsn", *dsn)
}
