package cli

import (
	"fmt"
	"sort"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

func newAliasCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "alias",
		Short: "Manage user aliases for mentions and assignment",
	}

	add := &cobra.Command{
		Use:   "add <name> <email>",
		Short: "Add or replace an alias",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			name := strings.TrimPrefix(args[0], "@")
			if name == "" {
				return fmt.Errorf("alias name must not be empty")
			}
			a.cfg.Aliases[name] = args[1]
			if err := a.cfg.Save(); err != nil {
				return fmt.Errorf("save config: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "@%s -> %s\n", name, args[1])
			return nil
		},
	}

	rm := &cobra.Command{
		Use:   "rm <name>",
		Short: "Remove an alias",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			name := strings.TrimPrefix(args[0], "@")
			if _, ok := a.cfg.Aliases[name]; !ok {
				return fmt.Errorf("no such alias %q", name)
			}
			delete(a.cfg.Aliases, name)
			if err := a.cfg.Save(); err != nil {
				return fmt.Errorf("save config: %w", err)
			}
			return nil
		},
	}

	list := &cobra.Command{
		Use:   "list",
		Short: "List aliases",
		RunE: func(cmd *cobra.Command, _ []string) error {
			names := make([]string, 0, len(a.cfg.Aliases))
			for name := range a.cfg.Aliases {
				names = append(names, name)
			}
			sort.Strings(names)

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			for _, name := range names {
				fmt.Fprintf(tw, "@%s\t%s\n", name, a.cfg.Aliases[name])
			}
			return tw.Flush()
		},
	}

	cmd.AddCommand(add, rm, list)
	return cmd
}
