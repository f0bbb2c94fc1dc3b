package main

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"doodledash/internal/domain"
	"doodledash/internal/secrets"
)

func secretsCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "secrets",
		Short: "Manage the secrets components can refer to",
		Long: `Components refer to secrets by key, "id" or "id:field". Keys are resolved
from mounted secret directories, DOODLEDASH_SECRET_* environment variables and
finally the operator secrets database (secrets.db), whose values are sealed
with the passphrase in the variable named by secrets.key_env.`,
	}

	cmd.AddCommand(secretsListCmd(a))
	cmd.AddCommand(secretsPutCmd(a))
	cmd.AddCommand(secretsDeleteCmd(a))
	return cmd
}

func secretsListCmd(a *app) *cobra.Command {
	var outputFmt string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List secrets without their values",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			store := secrets.NewStore(
				secrets.WithDirs(a.settings.Secrets.Dirs...),
				secrets.WithEnvPrefix(a.settings.Secrets.EnvPrefix),
				secrets.WithLogger(a.logger),
			)
			if err := store.Load(); err != nil {
				return err
			}
			summaries := store.List()

			if a.settings.Secrets.DB != "" {
				repo, err := a.openSecretRepository()
				if err != nil {
					return err
				}
				defer repo.Close()

				ctx, cancel := context.WithTimeout(cmd.Context(), 10*time.Second)
				defer cancel()
				operator, err := repo.ListSecrets(ctx)
				if err != nil {
					return fmt.Errorf("list operator secrets: %w", err)
				}
				summaries = append(summaries, operator...)
			}

			switch outputFmt {
			case "json":
				return printJSON(cmd.OutOrStdout(), summaries)
			case "table":
				printSecretTable(cmd.OutOrStdout(), summaries)
				return nil
			default:
				return fmt.Errorf("unknown output format %q: expected table or json", outputFmt)
			}
		},
	}

	cmd.Flags().StringVarP(&outputFmt, "output", "o", "table", "Output format: table, json")
	return cmd
}

func secretsPutCmd(a *app) *cobra.Command {
	var description string

	cmd := &cobra.Command{
		Use:   "put ID FIELD=VALUE [FIELD=VALUE...]",
		Short: "Store an operator secret, replacing any secret with the same ID",
		Long: `Stores an operator secret in the secrets database. A bare VALUE without
'=' is stored in the "value" field, so "secrets put token abc" is resolved by
the key "token".`,
		Args: cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			id := args[0]
			if strings.Contains(id, ":") {
				return fmt.Errorf("secret id %q must not contain ':'", id)
			}
			data, err := parseFields(args[1:])
			if err != nil {
				return err
			}

			repo, err := a.openSecretRepository()
			if err != nil {
				return err
			}
			defer repo.Close()

			ctx, cancel := context.WithTimeout(cmd.Context(), 10*time.Second)
			defer cancel()

			secret := &domain.Secret{
				ID:          id,
				Description: description,
				Source:      domain.SecretSourceOperator,
				Data:        data,
			}
			if err := repo.PutSecret(ctx, secret); err != nil {
				return fmt.Errorf("store secret: %w", err)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Stored secret %s (%d fields)\n", id, len(data))
			return nil
		},
	}

	cmd.Flags().StringVarP(&description, "description", "d", "", "What the secret is for")
	return cmd
}

func secretsDeleteCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "delete ID",
		Short: "Delete an operator secret",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			repo, err := a.openSecretRepository()
			if err != nil {
				return err
			}
			defer repo.Close()

			ctx, cancel := context.WithTimeout(cmd.Context(), 10*time.Second)
			defer cancel()

			if err := repo.DeleteSecret(ctx, args[0]); err != nil {
				return fmt.Errorf("delete secret: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted secret %s\n", args[0])
			return nil
		},
	}
}

// parseFields turns FIELD=VALUE arguments into secret data
func parseFields(args []string) (map[string]string, error) {
	data := make(map[string]string, len(args))
	for _, arg := range args {
		field, value, ok := strings.Cut(arg, "=")
		if !ok {
			field, value = domain.DefaultSecretField, arg
		}
		if field == "" {
			return nil, fmt.Errorf("empty field name in %q", arg)
		}
		if _, dup := data[field]; dup {
			return nil, fmt.Errorf("field %q given twice", field)
		}
		data[field] = value
	}
	return data, nil
}

func printSecretTable(out io.Writer, summaries []domain.SecretSummary) {
	t := table.New().
		Border(lipgloss.NormalBorder()).
		Headers("ID", "SOURCE", "FIELDS", "USED").
		StyleFunc(func(row, _ int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			return cellStyle
		})
	for _, s := range summaries {
		t.Row(s.ID, string(s.Source), strings.Join(s.DataKeys, ","), strconv.Itoa(s.UsageCount))
	}
	fmt.Fprintln(out, t.Render())
}
