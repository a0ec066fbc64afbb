package main

import (
	"bufio"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func newDestroyCmd() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "destroy",
		Short: "Remove the repository's metadata directory",
		Long: `Permanently delete the .source directory, discarding all history,
branches, and staged changes. Working tree files are left untouched.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			repo, err := findRepository()
			if err != nil {
				return err
			}

			sourceDir := repo.SourceDirectory().ToAbsolutePath()

			if !force {
				fmt.Printf("This will permanently delete %s and all repository history.\n", sourceDir)
				fmt.Print("Continue? [y/N] ")

				reader := bufio.NewReader(os.Stdin)
				answer, _ := reader.ReadString('\n')
				if answer != "y\n" && answer != "Y\n" {
					fmt.Println("Aborted.")
					return nil
				}
			}

			if err := os.RemoveAll(sourceDir.String()); err != nil {
				return fmt.Errorf("failed to remove %s: %w", sourceDir, err)
			}

			fmt.Printf("Removed %s\n", sourceDir)
			return nil
		},
	}

	cmd.Flags().BoolVarP(&force, "force", "f", false, "skip the confirmation prompt")

	return cmd
}
