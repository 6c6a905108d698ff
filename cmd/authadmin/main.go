package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/PhilHem/go-totp-auth/backend/auth"
	"github.com/PhilHem/go-totp-auth/backend/config"
	"github.com/PhilHem/go-totp-auth/backend/database"
	"github.com/PhilHem/go-totp-auth/backend/models"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var (
	dbPath   string
	email    string
	password string
)

var rootCmd = &cobra.Command{
	Use:   "authadmin",
	Short: "User administration for the 2FA auth service",
}

var userCmd = &cobra.Command{
	Use:   "user",
	Short: "Manage users",
}

var userListCmd = &cobra.Command{
	Use:   "list",
	Short: "List all users",
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := openStore()
		if err != nil {
			return err
		}
		return listUsers(cmd.Context(), store, cmd.OutOrStdout())
	},
}

var userShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show one user by email",
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := openStore()
		if err != nil {
			return err
		}
		return showUser(cmd.Context(), store, cmd.OutOrStdout(), email)
	},
}

var userCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Create a user with 2FA disabled",
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := openStore()
		if err != nil {
			return err
		}
		user, err := store.Create(cmd.Context(), email, password)
		if err != nil {
			return fmt.Errorf("failed to create user: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "User created: id=%d email=%s\n", user.ID, user.Email)
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&dbPath, "db", "", "Database path (defaults to the configured database_path)")

	userShowCmd.Flags().StringVarP(&email, "email", "e", "", "Email (required)")
	userShowCmd.MarkFlagRequired("email")

	userCreateCmd.Flags().StringVarP(&email, "email", "e", "", "Email (required)")
	userCreateCmd.Flags().StringVarP(&password, "password", "p", "", "Password (required)")
	userCreateCmd.MarkFlagRequired("email")
	userCreateCmd.MarkFlagRequired("password")

	userCmd.AddCommand(userListCmd, userShowCmd, userCreateCmd)
	rootCmd.AddCommand(userCmd)
}

func main() {
	_ = godotenv.Load()
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func openStore() (*database.UserStore, error) {
	if err := config.Load(); err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	path := config.C.DatabasePath
	if dbPath != "" {
		path = dbPath
	}

	db, err := database.Open(path)
	if err != nil {
		return nil, err
	}
	return database.NewUserStore(db, auth.NewBcryptHasher(config.C.Password.BcryptCost)), nil
}

// UserLister is the read side of the store used by the CLI.
type UserLister interface {
	List(ctx context.Context) ([]models.User, error)
	FindByEmail(ctx context.Context, email string) (*models.User, error)
}

func listUsers(ctx context.Context, store UserLister, w io.Writer) error {
	users, err := store.List(ctx)
	if err != nil {
		return fmt.Errorf("failed to list users: %w", err)
	}

	if len(users) == 0 {
		fmt.Fprintln(w, "No users found")
		return nil
	}

	fmt.Fprintf(w, "Total users: %d\n\n", len(users))
	fmt.Fprintf(w, "%-5s %-32s %-8s %s\n", "ID", "Email", "2FA", "Created")
	for _, user := range users {
		fmt.Fprintf(w, "%-5d %-32s %-8s %s\n",
			user.ID,
			user.Email,
			twoFactorState(&user),
			user.CreatedAt.Format("2006-01-02 15:04:05"),
		)
	}
	return nil
}

func showUser(ctx context.Context, store UserLister, w io.Writer, email string) error {
	user, err := store.FindByEmail(ctx, email)
	if errors.Is(err, database.ErrUserNotFound) {
		return fmt.Errorf("no user with email %q", email)
	}
	if err != nil {
		return err
	}

	fmt.Fprintf(w, "ID:      %d\n", user.ID)
	fmt.Fprintf(w, "Email:   %s\n", user.Email)
	fmt.Fprintf(w, "2FA:     %s\n", twoFactorState(user))
	fmt.Fprintf(w, "Created: %s\n", user.CreatedAt.Format("2006-01-02 15:04:05"))
	return nil
}

// twoFactorState distinguishes an abandoned setup from never having started one.
func twoFactorState(u *models.User) string {
	switch {
	case u.TwoFactorEnabled:
		return "enabled"
	case u.HasTwoFactorSecret():
		return "pending"
	default:
		return "off"
	}
}
