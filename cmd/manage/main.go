// Command manage performs administrative tasks against the database.
//
// Usage:
//
//	manage database create
//	manage adduser -email EMAIL -short-name NAME [-full-name NAME] [-admin]
//	manage users
//
// adduser reads the password from the PASSWORD environment variable when
// set, otherwise from the first line of standard input.
package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/joho/godotenv"

	"github.com/sakif/esther/internal/apperror"
	"github.com/sakif/esther/internal/auth"
	"github.com/sakif/esther/internal/config"
	"github.com/sakif/esther/internal/form"
	sqliteRepo "github.com/sakif/esther/internal/repository/sqlite"
	"github.com/sakif/esther/internal/service"
)

const usage = `usage:
  manage database create
  manage adduser -email EMAIL -short-name NAME [-full-name NAME] [-admin]
  manage users`

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: cfg.LogLevel}))

	if err := run(context.Background(), cfg, logger, os.Args[1:], os.Stdin, os.Stdout); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg config.Config, logger *slog.Logger, args []string, stdin io.Reader, stdout io.Writer) error {
	if len(args) == 0 {
		return errors.New(usage)
	}

	if cfg.DBPath != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(cfg.DBPath), 0755); err != nil {
			return fmt.Errorf("creating database directory: %w", err)
		}
	}

	// Opening the database runs the idempotent schema setup.
	db, err := sqliteRepo.New(cfg.DBPath)
	if err != nil {
		return err
	}
	defer db.Close()

	users := service.NewUserService(db, auth.NewPasswordService(), logger)

	switch args[0] {
	case "database":
		if len(args) != 2 || args[1] != "create" {
			return errors.New(usage)
		}
		fmt.Fprintf(stdout, "database ready at %s\n", cfg.DBPath)
		return nil
	case "adduser":
		return addUser(ctx, users, args[1:], stdin, stdout)
	case "users":
		return listUsers(ctx, users, stdout)
	}
	return errors.New(usage)
}

func addUser(ctx context.Context, users *service.UserService, args []string, stdin io.Reader, stdout io.Writer) error {
	fs := flag.NewFlagSet("adduser", flag.ContinueOnError)
	email := fs.String("email", "", "email address (required)")
	shortName := fs.String("short-name", "", "short display name (required)")
	fullName := fs.String("full-name", "", "full name")
	admin := fs.Bool("admin", false, "grant administrator rights")
	if err := fs.Parse(args); err != nil {
		return err
	}

	password := os.Getenv("PASSWORD")
	if password == "" {
		line, err := bufio.NewReader(stdin).ReadString('\n')
		if err != nil && !errors.Is(err, io.EOF) {
			return fmt.Errorf("reading password: %w", err)
		}
		password = strings.TrimRight(line, "\r\n")
	}

	user, err := users.AddUser(ctx, form.Values{
		"email":      *email,
		"short_name": *shortName,
		"full_name":  *fullName,
		"password":   password,
		"is_admin":   strconv.FormatBool(*admin),
	})
	if err != nil {
		var appErr *apperror.AppError
		if errors.As(err, &appErr) && appErr.FieldErrors() != nil {
			return formatFieldErrors(appErr.FieldErrors())
		}
		return err
	}

	fmt.Fprintf(stdout, "created user %d <%s>\n", user.ID, user.Email)
	return nil
}

func formatFieldErrors(fields map[string][]string) error {
	names := make([]string, 0, len(fields))
	for name := range fields {
		names = append(names, name)
	}
	sort.Strings(names)

	var b strings.Builder
	b.WriteString("invalid user:")
	for _, name := range names {
		fmt.Fprintf(&b, "\n  %s: %s", name, strings.Join(fields[name], " "))
	}
	return errors.New(b.String())
}

func listUsers(ctx context.Context, users *service.UserService, stdout io.Writer) error {
	all, err := users.ListUsers(ctx)
	if err != nil {
		return err
	}

	tw := tabwriter.NewWriter(stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tEMAIL\tNAME\tACTIVE\tADMIN")
	for _, u := range all {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%t\t%t\n", u.ID, u.Email, u.ShortName, u.IsActive, u.IsAdmin)
	}
	return tw.Flush()
}
