// auditctl is the operator's read-only view of the audit log.
//
//	auditctl user   --user 12 [--limit 50] [--offset 0]
//	auditctl all    [--limit 50] [--offset 0]
//	auditctl search [--limit 50] [--offset 0] <term>
//	auditctl stats  --user 12
//
// Results are printed as JSON on stdout.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"go-auth-api/config"
	"go-auth-api/db"
	"go-auth-api/logger"
	"go-auth-api/model"
	"go-auth-api/repository"
	"go-auth-api/service"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/pflag"
)

type auditQuerier interface {
	ByUser(ctx context.Context, userID, limit, offset int) (*model.AuditPage, error)
	All(ctx context.Context, limit, offset int) (*model.AuditPage, error)
	Search(ctx context.Context, term string, limit, offset int) (*model.AuditPage, error)
	LoginStats(ctx context.Context, userID int) (*model.LoginStats, error)
}

var commands = map[string]bool{"user": true, "all": true, "search": true, "stats": true}

const usage = "usage: auditctl <user|all|search|stats> [--user ID] [--limit N] [--offset N] [term]"

var errUsage = errors.New(usage)

func main() {
	logger.Init("warn")
	logger.Log.SetOutput(os.Stderr)

	if len(os.Args) < 2 || !commands[os.Args[1]] {
		fmt.Fprintln(os.Stderr, usage)
		os.Exit(2)
	}

	cfg, err := config.LoadConfig(".")
	if err != nil {
		logger.Log.Fatalf("Error loading configuration: %v", err)
	}
	database, err := db.Connect(cfg)
	if err != nil {
		logger.Log.Fatalf("Error connecting to the database: %v", err)
	}
	defer database.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	svc := service.NewAuditService(repository.NewAuditRepository(database))
	if err := run(ctx, os.Args[1:], os.Stdout, svc); err != nil {
		fmt.Fprintln(os.Stderr, err)
		if errors.Is(err, errUsage) {
			os.Exit(2)
		}
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string, out io.Writer, svc auditQuerier) error {
	if len(args) == 0 || !commands[args[0]] {
		return errUsage
	}
	cmd := args[0]

	fs := pflag.NewFlagSet(cmd, pflag.ContinueOnError)
	fs.SetOutput(io.Discard)
	userID := fs.Int("user", 0, "user id")
	limit := fs.Int("limit", service.DefaultPageLimit, "page size")
	offset := fs.Int("offset", 0, "entries to skip")
	if err := fs.Parse(args[1:]); err != nil {
		return fmt.Errorf("%w: %v", errUsage, err)
	}

	var (
		result interface{}
		err    error
	)
	switch cmd {
	case "user":
		if *userID <= 0 {
			return fmt.Errorf("%w: --user is required", errUsage)
		}
		result, err = svc.ByUser(ctx, *userID, *limit, *offset)
	case "all":
		result, err = svc.All(ctx, *limit, *offset)
	case "search":
		result, err = svc.Search(ctx, strings.Join(fs.Args(), " "), *limit, *offset)
	case "stats":
		if *userID <= 0 {
			return fmt.Errorf("%w: --user is required", errUsage)
		}
		result, err = svc.LoginStats(ctx, *userID)
	}
	if err != nil {
		return err
	}

	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(result)
}
