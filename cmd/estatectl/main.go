package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/Yzairi/CDA/internal/adapter/repository"
	"github.com/Yzairi/CDA/internal/adapter/repository/postgres"
	"github.com/Yzairi/CDA/internal/auth"
	"github.com/Yzairi/CDA/internal/config"
	"github.com/Yzairi/CDA/internal/platform/clock"
	"github.com/Yzairi/CDA/internal/platform/logger"
	"github.com/Yzairi/CDA/internal/usecase"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"golang.org/x/term"
	"gorm.io/gorm"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// loadConfig reads .env and the environment. Logs go to stderr so command output stays clean.
func loadConfig() (*config.Config, *logger.Logger, error) {
	_ = godotenv.Load()
	cfg := config.BootLoggerConfig()
	cfg.OutputFile = "stderr"
	cfg.Format = "console"
	appLogger := logger.NewLogger(cfg)

	c, err := config.LoadConfig(appLogger)
	if err != nil {
		return nil, nil, fmt.Errorf("loading config: %w", err)
	}
	return c, appLogger, nil
}

var rootCmd = &cobra.Command{
	Use:          "estatectl",
	Short:        "Operator tool for the estate listing service",
	SilenceUsage: true,
}

// migrate command
var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Manage the PostgreSQL schema",
}

var migrateUpCmd = &cobra.Command{
	Use:   "up",
	Short: "Apply every pending migration",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runMigration(cmd.Context(), postgres.MigrateUp)
	},
}

var migrateDownCmd = &cobra.Command{
	Use:   "down",
	Short: "Revert every migration",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runMigration(cmd.Context(), postgres.MigrateDown)
	},
}

func runMigration(ctx context.Context, apply func(db *gorm.DB) error) error {
	cfg, appLogger, err := loadConfig()
	if err != nil {
		return err
	}
	if cfg.StorageDriver != "postgres" {
		return fmt.Errorf("migrations only apply to the postgres driver, STORAGE_DRIVER is %q", cfg.StorageDriver)
	}
	db, err := postgres.Open(ctx, cfg.PostgresDSN, appLogger)
	if err != nil {
		return err
	}
	defer postgres.Close(db, appLogger)

	if err := apply(db); err != nil {
		return fmt.Errorf("applying migrations: %w", err)
	}
	version, dirty, err := postgres.SchemaVersion(db)
	if err != nil {
		return err
	}
	fmt.Printf("Schema version: %d (dirty: %t)\n", version, dirty)
	return nil
}

// user command
var userCmd = &cobra.Command{
	Use:   "user",
	Short: "Manage identities",
}

var userPromoteCmd = &cobra.Command{
	Use:   "promote <email>",
	Short: "Grant the administrator role",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, appLogger, err := loadConfig()
		if err != nil {
			return err
		}
		store, err := repository.NewStoreFromConfig(cmd.Context(), cfg, appLogger)
		if err != nil {
			return err
		}
		defer store.Close()

		user, err := usecase.NewUserUsecase(store.Users, store.Listings, appLogger).Promote(cmd.Context(), args[0])
		if err != nil {
			return fmt.Errorf("promoting %s: %w", args[0], err)
		}
		fmt.Printf("User %s (%s) is now an administrator\n", user.Email, user.ID)
		return nil
	},
}

var userCreateAdminCmd = &cobra.Command{
	Use:   "create-admin",
	Short: "Create an administrator account",
	RunE: func(cmd *cobra.Command, args []string) error {
		email, _ := cmd.Flags().GetString("email")
		if strings.TrimSpace(email) == "" {
			return errors.New("--email is required")
		}
		password, err := readPassword(cmd)
		if err != nil {
			return err
		}

		cfg, appLogger, err := loadConfig()
		if err != nil {
			return err
		}
		store, err := repository.NewStoreFromConfig(cmd.Context(), cfg, appLogger)
		if err != nil {
			return err
		}
		defer store.Close()

		tokens := auth.NewTokenManager(cfg.JWTSecret, cfg.JWTIssuer, cfg.JWTTTL, clock.Real{})
		authUC := usecase.NewAuthUsecase(store.Users, tokens, nil, clock.Real{}, clock.UUIDGenerator{}, appLogger,
			usecase.AuthOptions{AllowAdminSignup: true})
		res, err := authUC.Register(cmd.Context(), email, password, true)
		if err != nil {
			return fmt.Errorf("creating administrator: %w", err)
		}
		fmt.Printf("Administrator %s created with id %s\n", res.User.Email, res.User.ID)
		return nil
	},
}

// readPassword prompts without echo on a terminal and reads one line otherwise.
func readPassword(cmd *cobra.Command) (string, error) {
	fd := int(os.Stdin.Fd())
	if term.IsTerminal(fd) {
		fmt.Fprint(cmd.ErrOrStderr(), "Password: ")
		first, err := term.ReadPassword(fd)
		fmt.Fprintln(cmd.ErrOrStderr())
		if err != nil {
			return "", fmt.Errorf("reading password: %w", err)
		}
		fmt.Fprint(cmd.ErrOrStderr(), "Confirm password: ")
		second, err := term.ReadPassword(fd)
		fmt.Fprintln(cmd.ErrOrStderr())
		if err != nil {
			return "", fmt.Errorf("reading password: %w", err)
		}
		if string(first) != string(second) {
			return "", errors.New("passwords do not match")
		}
		if len(first) == 0 {
			return "", errors.New("password must not be empty")
		}
		return string(first), nil
	}

	line, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
	if err != nil && line == "" {
		return "", fmt.Errorf("reading password from stdin: %w", err)
	}
	line = strings.TrimRight(line, "\r\n")
	if line == "" {
		return "", errors.New("password must not be empty")
	}
	return line, nil
}

func init() {
	rootCmd.AddCommand(migrateCmd)
	migrateCmd.AddCommand(migrateUpCmd)
	migrateCmd.AddCommand(migrateDownCmd)

	rootCmd.AddCommand(userCmd)
	userCmd.AddCommand(userPromoteCmd)
	userCmd.AddCommand(userCreateAdminCmd)
	userCreateAdminCmd.Flags().String("email", "", "E-mail of the new administrator")

	rootCmd.PersistentFlags().Duration("timeout", 30*time.Second, "Timeout for database operations")
	rootCmd.PersistentPreRun = func(cmd *cobra.Command, args []string) {
		timeout, _ := cmd.Flags().GetDuration("timeout")
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		cobra.OnFinalize(cancel)
		cmd.SetContext(ctx)
	}
}
