package commands

import (
	"fmt"
	"os"
	"runtime"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

// NewRewriteCommand creates the rewrite command.
func NewRewriteCommand() *cobra.Command {
	var toStdout bool

	cmd := &cobra.Command{
		Use:   "rewrite <file.sql> [file.sql...]",
		Short: "Rewrite WITH clause queries into nested subqueries",
		Long: `Rewrite reads SQL files containing WITH clause definitions and
produces semantically equivalent queries with every CTE reference
replaced by its definition as an inline nested subquery.

By default each input file gets a companion output file with the
configured suffix inserted before the extension. Use --stdout to
print rewritten queries instead of writing files.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRewrite(cmd, args, toStdout)
		},
	}

	cmd.Flags().BoolVar(&toStdout, "stdout", false, "print rewritten queries instead of writing files")

	return cmd
}

func runRewrite(cmd *cobra.Command, args []string, toStdout bool) error {
	cc := NewCommandContext(cmd)

	if toStdout {
		for _, path := range args {
			out, err := rewriteFile(path, cc.Cfg)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), out)
		}
		return nil
	}

	var g errgroup.Group
	g.SetLimit(runtime.NumCPU())

	for _, path := range args {
		path := path
		g.Go(func() error {
			out, err := rewriteFile(path, cc.Cfg)
			if err != nil {
				return err
			}

			dest := OutputPath(path, cc.Cfg.Suffix)
			if err := os.WriteFile(dest, []byte(out+"\n"), 0o644); err != nil {
				return fmt.Errorf("failed to write %s: %w", dest, err)
			}

			cc.Logger.Info("rewrote query", "input", path, "output", dest)
			return nil
		})
	}

	return g.Wait()
}
