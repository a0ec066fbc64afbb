package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	sccfg "github.com/utkarsh5026/SourceControl/pkg/config"
)

func newConfigCmd() *cobra.Command {
	var local, global, system bool
	var unset bool
	var list bool

	cmd := &cobra.Command{
		Use:   "config [<key> [<value>]]",
		Short: "Get or set repository, user, or system configuration",
		Long: `Get and set options in the repository, user, or system configuration.

Examples:
  # Show the effective value of a key
  srcc config user.name

  # Set a value at the repository level (default)
  srcc config user.name "Jane Doe"

  # Set a value at the user level
  srcc config --global user.email jane@example.com

  # Remove a key
  srcc config --unset user.name

  # List every effective key/value pair
  srcc config --list`,
		Args: cobra.MaximumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			repo, err := findRepository()
			if err != nil {
				return err
			}

			mgr := sccfg.NewManager(repo.WorkingDirectory())
			ctx := context.Background()
			if err := mgr.Load(ctx); err != nil {
				return fmt.Errorf("failed to load configuration: %w", err)
			}

			level := sccfg.RepositoryLevel
			switch {
			case global:
				level = sccfg.UserLevel
			case system:
				level = sccfg.SystemLevel
			case local:
				level = sccfg.RepositoryLevel
			}

			switch {
			case list:
				for _, entry := range mgr.List() {
					fmt.Printf("%s=%s\n", entry.Key, entry.Value)
				}
				return nil

			case unset:
				if len(args) != 1 {
					return fmt.Errorf("--unset requires exactly one key")
				}
				if err := mgr.Unset(args[0], level); err != nil {
					return fmt.Errorf("failed to unset %s: %w", args[0], err)
				}
				return nil

			case len(args) == 0:
				return fmt.Errorf("requires a configuration key (or --list)")

			case len(args) == 1:
				entry := mgr.Get(args[0])
				if entry == nil {
					return fmt.Errorf("key %q is not set", args[0])
				}
				fmt.Println(entry.Value)
				return nil

			default:
				if err := mgr.Set(args[0], args[1], level); err != nil {
					return fmt.Errorf("failed to set %s: %w", args[0], err)
				}
				return nil
			}
		},
	}

	cmd.Flags().BoolVar(&local, "local", false, "use repository configuration (.source/config, default)")
	cmd.Flags().BoolVar(&global, "global", false, "use user configuration")
	cmd.Flags().BoolVar(&system, "system", false, "use system configuration")
	cmd.Flags().BoolVar(&unset, "unset", false, "remove the given key")
	cmd.Flags().BoolVarP(&list, "list", "l", false, "list all effective key/value pairs")

	return cmd
}
