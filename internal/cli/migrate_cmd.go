package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"
)

func newMigrateCmd(open Opener) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending database migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withEnv(cmd, open, func(ctx context.Context, env *Env, out io.Writer) error {
				if err := env.Migrate(ctx); err != nil {
					return err
				}
				_, _ = fmt.Fprintln(out, "migrations applied")
				return nil
			})
		},
	}
}
