package main

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"doodledash/internal/component"
	"doodledash/internal/domain"
)

func componentsCmd(a *app) *cobra.Command {
	var (
		outputFmt string
		category  string
	)

	cmd := &cobra.Command{
		Use:   "components",
		Short: "List the component types available to dashboards",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			categories := domain.Categories()
			if category != "" {
				c, err := domain.ParseCategory(category)
				if err != nil {
					return err
				}
				categories = []domain.Category{c}
			}

			registry, err := a.registry(cmd.OutOrStdout())
			if err != nil {
				return err
			}

			var regs []component.Registration
			for _, c := range categories {
				regs = append(regs, registry.List(c)...)
			}

			switch outputFmt {
			case "json":
				return printJSON(cmd.OutOrStdout(), regs)
			case "table":
				printComponentTable(cmd.OutOrStdout(), regs)
				return nil
			default:
				return fmt.Errorf("unknown output format %q: expected table or json", outputFmt)
			}
		},
	}

	cmd.Flags().StringVarP(&outputFmt, "output", "o", "table", "Output format: table, json")
	cmd.Flags().StringVarP(&category, "category", "c", "", "Only list one category: display, data-feed, filter, notification")

	return cmd
}

var headerStyle = lipgloss.NewStyle().Bold(true).Padding(0, 1)
var cellStyle = lipgloss.NewStyle().Padding(0, 1)

func printComponentTable(out io.Writer, regs []component.Registration) {
	t := table.New().
		Border(lipgloss.NormalBorder()).
		Headers("CATEGORY", "TYPE", "DESCRIPTION").
		StyleFunc(func(row, _ int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			return cellStyle
		})
	for _, reg := range regs {
		t.Row(string(reg.Category), reg.Type, reg.Description)
	}
	fmt.Fprintln(out, t.Render())
}

func printJSON(out io.Writer, v any) error {
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
