// Package cli implements dojoctl, the operator tool for migrations, the admin
// allowlist and admin accounts.
package cli

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"kingdojo/internal/admin"
	"kingdojo/internal/auth"
	"kingdojo/internal/config"
)

// AllowlistStore maintains admin_allowlist.
type AllowlistStore interface {
	Add(ctx context.Context, email string) (admin.Entry, error)
	Remove(ctx context.Context, email string) (bool, error)
	List(ctx context.Context) ([]admin.Entry, error)
}

// UserStore creates admin accounts and resets their passwords.
type UserStore interface {
	CreateUser(ctx context.Context, email, password string) (auth.User, error)
	SetPassword(ctx context.Context, email, password string) error
}

// Env is what commands operate on. Close releases connections.
type Env struct {
	Admin     config.AdminConfig
	Allowlist AllowlistStore
	Users     UserStore
	Migrate   func(ctx context.Context) error
	Close     func()
}

// Opener connects lazily so --help works without a database.
type Opener func(ctx context.Context) (*Env, error)

// Execute runs the CLI against the configured databases.
func Execute() int {
	rootCmd := newRootCmd(openFromConfig)
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	return 0
}

func newRootCmd(open Opener) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "dojoctl",
		Short:         "King Dojo operator tool",
		Long:          "Applies migrations and manages admin accounts and the admin allowlist.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.AddCommand(
		newMigrateCmd(open),
		newAllowlistCmd(open),
		newUserCmd(open),
		newBootstrapCmd(open),
	)
	return rootCmd
}

// withEnv opens the environment for the duration of fn.
func withEnv(cmd *cobra.Command, open Opener, fn func(ctx context.Context, env *Env, out io.Writer) error) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	env, err := open(ctx)
	if err != nil {
		return err
	}
	if env.Close != nil {
		defer env.Close()
	}
	return fn(ctx, env, cmd.OutOrStdout())
}
