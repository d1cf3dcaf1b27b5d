package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"kingdojo/internal/admin"
	"kingdojo/internal/auth"
)

func newUserCmd(open Opener) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "user",
		Short: "Manage admin accounts",
	}
	cmd.AddCommand(newUserCreateCmd(open), newUserPasswordCmd(open))
	return cmd
}

func newUserCreateCmd(open Opener) *cobra.Command {
	var (
		password string
		allow    bool
	)
	cmd := &cobra.Command{
		Use:   "create <email>",
		Short: "Create an account that can sign in",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			email, err := emailArg(args[0])
			if err != nil {
				return err
			}
			password = passwordOrEnv(password)
			if password == "" {
				return errors.New("password required: pass --password or set DOJOCTL_PASSWORD")
			}
			return withEnv(cmd, open, func(ctx context.Context, env *Env, out io.Writer) error {
				user, err := env.Users.CreateUser(ctx, email, password)
				if err != nil {
					return fmt.Errorf("create %s: %w", email, err)
				}
				_, _ = fmt.Fprintf(out, "created user %s (%s)\n", user.Email, user.ID)
				if !allow {
					return nil
				}
				if _, err := env.Allowlist.Add(ctx, user.Email); err != nil && !errors.Is(err, admin.ErrEntryExists) {
					return fmt.Errorf("allowlist %s: %w", email, err)
				}
				_, _ = fmt.Fprintf(out, "allowlisted %s\n", user.Email)
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&password, "password", "", "Initial password (min 8 characters)")
	cmd.Flags().BoolVar(&allow, "allowlist", false, "Also add the email to the admin allowlist")
	return cmd
}

func newUserPasswordCmd(open Opener) *cobra.Command {
	var password string
	cmd := &cobra.Command{
		Use:   "set-password <email>",
		Short: "Replace a password and sign out every session of the account",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			email, err := emailArg(args[0])
			if err != nil {
				return err
			}
			password = passwordOrEnv(password)
			if password == "" {
				return errors.New("password required: pass --password or set DOJOCTL_PASSWORD")
			}
			return withEnv(cmd, open, func(ctx context.Context, env *Env, out io.Writer) error {
				if err := env.Users.SetPassword(ctx, email, password); err != nil {
					if errors.Is(err, auth.ErrUserNotFound) {
						return fmt.Errorf("no account for %s", email)
					}
					return err
				}
				_, _ = fmt.Fprintf(out, "password updated for %s\n", email)
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&password, "password", "", "New password (min 8 characters)")
	return cmd
}

func passwordOrEnv(flag string) string {
	if flag != "" {
		return flag
	}
	return os.Getenv("DOJOCTL_PASSWORD")
}
