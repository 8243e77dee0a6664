package commands

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/leapstack-labs/sqlnest/pkg/parser"
	"github.com/leapstack-labs/sqlnest/pkg/rewrite"
	"github.com/spf13/cobra"
)

var (
	depsHeaderStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	depsDimStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
)

// NewDepsCommand creates the deps command.
func NewDepsCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "deps <file.sql>",
		Short: "Show the CTE dependency structure of a query",
		Long: `Display which CTEs a query defines, how they reference each other,
and the order in which they can be expanded.

CTEs are grouped by level: level 0 CTEs reference no other CTEs,
and each following level references only earlier levels.`,
		Example: `  # Show CTE dependencies
  sqlnest deps query.sql

  # Output as JSON
  sqlnest deps query.sql --output json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDeps(cmd, args[0])
		},
	}

	return cmd
}

func runDeps(cmd *cobra.Command, path string) error {
	cc := NewCommandContext(cmd)

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", path, err)
	}

	stmt, err := parser.Parse(string(data))
	if err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}

	analysis, err := rewrite.Analyze(stmt)
	if err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}

	if cc.Cfg.Output == "json" {
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(analysis)
	}

	return depsText(cmd, analysis)
}

func depsText(cmd *cobra.Command, analysis *rewrite.Analysis) error {
	w := cmd.OutOrStdout()

	if len(analysis.CTEs) == 0 {
		fmt.Fprintln(w, "no CTE definitions found")
		return nil
	}

	fmt.Fprintln(w, depsHeaderStyle.Render("CTE Dependencies"))

	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleLight)
	t.AppendHeader(table.Row{"CTE", "References", "Used By"})

	for _, cte := range analysis.CTEs {
		t.AppendRow(table.Row{
			cte.Name,
			strings.Join(cte.References, ", "),
			strings.Join(cte.Dependents, ", "),
		})
	}
	t.Render()

	fmt.Fprintln(w)
	for i, level := range analysis.Levels {
		fmt.Fprintf(w, "%s %s\n", depsDimStyle.Render(fmt.Sprintf("level %d:", i)), strings.Join(level, ", "))
	}

	if len(analysis.MainReferences) > 0 {
		fmt.Fprintf(w, "%s %s\n", depsDimStyle.Render("main query uses:"), strings.Join(analysis.MainReferences, ", "))
	}

	return nil
}
