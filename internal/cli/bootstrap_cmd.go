package cli

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"kingdojo/internal/admin"
	"kingdojo/internal/auth"
)

func newBootstrapCmd(open Opener) *cobra.Command {
	var reset bool
	cmd := &cobra.Command{
		Use:   "bootstrap",
		Short: "Seed the operator account from ADMIN_USERNAME and ADMIN_PASSWORD",
		Long: "Creates the operator account and its allowlist entry. Existing rows are kept;\n" +
			"--reset-password overwrites the password of an existing account.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withEnv(cmd, open, func(ctx context.Context, env *Env, out io.Writer) error {
				email, password, err := env.Admin.Operator()
				if err != nil {
					return err
				}

				_, err = env.Users.CreateUser(ctx, email, password)
				switch {
				case err == nil:
					_, _ = fmt.Fprintf(out, "created operator %s\n", email)
				case errors.Is(err, auth.ErrUserExists) && reset:
					if err := env.Users.SetPassword(ctx, email, password); err != nil {
						return fmt.Errorf("reset operator password: %w", err)
					}
					_, _ = fmt.Fprintf(out, "operator %s exists, password reset\n", email)
				case errors.Is(err, auth.ErrUserExists):
					_, _ = fmt.Fprintf(out, "operator %s exists\n", email)
				default:
					return fmt.Errorf("create operator: %w", err)
				}

				_, err = env.Allowlist.Add(ctx, email)
				switch {
				case err == nil:
					_, _ = fmt.Fprintf(out, "allowlisted %s\n", email)
				case errors.Is(err, admin.ErrEntryExists):
					_, _ = fmt.Fprintf(out, "%s already allowlisted\n", email)
				default:
					return fmt.Errorf("allowlist operator: %w", err)
				}
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&reset, "reset-password", false, "Overwrite the password if the operator already exists")
	return cmd
}
