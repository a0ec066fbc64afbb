package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/utkarsh5026/SourceControl/pkg/commitmanager"
)

func newCommitCmd() *cobra.Command {
	var message string
	var amend bool
	var allowEmpty bool

	cmd := &cobra.Command{
		Use:   "commit",
		Short: "Record changes to the repository",
		Long: `Create a new commit with the staged changes.
Commits are snapshots of your project at a specific point in time.

Examples:
  srcc commit -m "message"          # commit staged changes
  srcc commit -m "message" --amend  # replace the tip commit's tree/message
  srcc commit -m "empty" --allow-empty`,
		RunE: func(cmd *cobra.Command, args []string) error {
			// Find repository
			repo, err := findRepository()
			if err != nil {
				return err
			}

			// Validate message
			if message == "" {
				return fmt.Errorf("commit message required (use -m flag)")
			}

			// Create commit manager
			ctx := context.Background()
			commitMgr := commitmanager.NewManager(repo)
			if err := commitMgr.Initialize(ctx); err != nil {
				return fmt.Errorf("failed to initialize commit manager: %w", err)
			}

			// Create commit
			result, err := commitMgr.CreateCommit(ctx, commitmanager.CommitOptions{
				Message:    message,
				Amend:      amend,
				AllowEmpty: allowEmpty,
			})
			if err != nil {
				return fmt.Errorf("failed to create commit: %w", err)
			}

			sha, err := result.Hash()
			if err != nil {
				return fmt.Errorf("failed to compute commit hash: %w", err)
			}

			// Display result
			fmt.Printf("[%s] %s\n", sha.Short(), result.Message)
			fmt.Printf("Author: %s <%s>\n", result.Author.Name, result.Author.Email)

			return nil
		},
	}

	cmd.Flags().StringVarP(&message, "message", "m", "", "Commit message")
	cmd.Flags().BoolVar(&amend, "amend", false, "replace the tip commit instead of creating a new one")
	cmd.Flags().BoolVar(&allowEmpty, "allow-empty", false, "allow a commit whose tree is identical to its parent")

	return cmd
}
