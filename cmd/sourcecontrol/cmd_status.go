package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/utkarsh5026/SourceControl/pkg/commitmanager"
	"github.com/utkarsh5026/SourceControl/pkg/index"
	"github.com/utkarsh5026/SourceControl/pkg/refs/branch"
)

func newStatusCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show the working directory status",
		Long: `Show the status of the working directory and staging area.
Displays which files are staged, modified, untracked, etc.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			repo, err := findRepository()
			if err != nil {
				return err
			}

			ctx := context.Background()

			commitMgr := commitmanager.NewManager(repo)
			if err := commitMgr.Initialize(ctx); err != nil {
				return fmt.Errorf("failed to initialize commit manager: %w", err)
			}

			headFiles, err := commitMgr.HeadFiles(ctx)
			if err != nil {
				return fmt.Errorf("failed to read HEAD tree: %w", err)
			}

			indexMgr := index.NewManager(repo.WorkingDirectory())
			if err := indexMgr.Initialize(); err != nil {
				return fmt.Errorf("failed to initialize index: %w", err)
			}

			status, err := indexMgr.Status(headFiles)
			if err != nil {
				return fmt.Errorf("failed to get status: %w", err)
			}

			branchName := branch.DefaultBranch
			if name, err := branch.NewManager(repo).CurrentBranch(); err == nil && name != "" {
				branchName = name
			}

			fmt.Println(renderHeader(" Repository Status "))
			fmt.Printf("%s %s\n\n", colorCyan(IconBranch), colorBlue("Branch: "+branchName))

			clean := len(status.Staged.Added) == 0 && len(status.Staged.Modified) == 0 &&
				len(status.Staged.Deleted) == 0 && len(status.Unstaged.Modified) == 0 &&
				len(status.Unstaged.Deleted) == 0 && len(status.Untracked) == 0

			if clean {
				fmt.Println(colorGreen(fmt.Sprintf("  %s  Working tree clean - nothing to commit", IconCheck)))
				return nil
			}

			if len(status.Staged.Added) > 0 || len(status.Staged.Modified) > 0 || len(status.Staged.Deleted) > 0 {
				fmt.Println(renderSection("Changes to be committed:"))
				for _, path := range status.Staged.Added {
					fmt.Println(formatAdded(path))
				}
				for _, path := range status.Staged.Modified {
					fmt.Println(formatModified(path))
				}
				for _, path := range status.Staged.Deleted {
					fmt.Println(formatDeleted(path))
				}
				fmt.Println()
			}

			if len(status.Unstaged.Modified) > 0 || len(status.Unstaged.Deleted) > 0 {
				fmt.Println(renderSection("Changes not staged for commit:"))
				for _, path := range status.Unstaged.Modified {
					fmt.Println(formatModified(path))
				}
				for _, path := range status.Unstaged.Deleted {
					fmt.Println(formatDeleted(path))
				}
				fmt.Println()
			}

			if len(status.Untracked) > 0 {
				fmt.Println(renderSection("Untracked files:"))
				for _, path := range status.Untracked {
					fmt.Printf("  %s\n", path)
				}
				fmt.Println()
			}

			fmt.Println(colorYellow("  💡 Use 'srcc add <file>' to stage changes for commit"))

			return nil
		},
	}

	return cmd
}
