package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
)

func newAllowlistCmd(open Opener) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "allowlist",
		Short: "Manage emails allowed into the admin area",
	}
	cmd.AddCommand(
		newAllowlistAddCmd(open),
		newAllowlistRemoveCmd(open),
		newAllowlistListCmd(open),
	)
	return cmd
}

func newAllowlistAddCmd(open Opener) *cobra.Command {
	return &cobra.Command{
		Use:   "add <email>",
		Short: "Allow an email into the admin area",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			email, err := emailArg(args[0])
			if err != nil {
				return err
			}
			return withEnv(cmd, open, func(ctx context.Context, env *Env, out io.Writer) error {
				entry, err := env.Allowlist.Add(ctx, email)
				if err != nil {
					return fmt.Errorf("add %s: %w", email, err)
				}
				_, _ = fmt.Fprintf(out, "added %s\n", entry.Email)
				return nil
			})
		},
	}
}

func newAllowlistRemoveCmd(open Opener) *cobra.Command {
	return &cobra.Command{
		Use:   "remove <email>",
		Short: "Revoke admin access; applies to the next request",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			email, err := emailArg(args[0])
			if err != nil {
				return err
			}
			return withEnv(cmd, open, func(ctx context.Context, env *Env, out io.Writer) error {
				removed, err := env.Allowlist.Remove(ctx, email)
				if err != nil {
					return fmt.Errorf("remove %s: %w", email, err)
				}
				if !removed {
					return fmt.Errorf("no allowlist entry for %s", email)
				}
				_, _ = fmt.Fprintf(out, "removed %s\n", email)
				return nil
			})
		},
	}
}

func newAllowlistListCmd(open Opener) *cobra.Command {
	var output string
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List allowlisted emails",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withEnv(cmd, open, func(ctx context.Context, env *Env, out io.Writer) error {
				entries, err := env.Allowlist.List(ctx)
				if err != nil {
					return err
				}
				if output == "json" {
					enc := json.NewEncoder(out)
					enc.SetIndent("", "  ")
					return enc.Encode(entries)
				}
				tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
				_, _ = fmt.Fprintln(tw, "EMAIL\tADDED")
				for _, e := range entries {
					_, _ = fmt.Fprintf(tw, "%s\t%s\n", e.Email, e.CreatedAt.UTC().Format(time.RFC3339))
				}
				return tw.Flush()
			})
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "table", "Output format (table, json)")
	return cmd
}

// emailArg trims surrounding whitespace only; allowlist matching is exact.
func emailArg(raw string) (string, error) {
	email := strings.TrimSpace(raw)
	if email == "" || !strings.Contains(email, "@") {
		return "", fmt.Errorf("invalid email %q", raw)
	}
	return email, nil
}
