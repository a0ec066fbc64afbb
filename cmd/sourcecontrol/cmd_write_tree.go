package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/utkarsh5026/SourceControl/pkg/commitmanager"
	"github.com/utkarsh5026/SourceControl/pkg/index"
)

func newWriteTreeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "write-tree",
		Short: "Write the current index as a tree object",
		Long: `Build a tree object from the current staging area and store it,
printing its hash. Fails if the index holds unresolved merge conflicts.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			repo, err := findRepository()
			if err != nil {
				return err
			}

			indexMgr := index.NewManager(repo.WorkingDirectory())
			if err := indexMgr.Initialize(); err != nil {
				return fmt.Errorf("failed to load index: %w", err)
			}

			idx := indexMgr.GetIndex()
			for _, entry := range idx.Entries {
				if entry.Stage != 0 {
					return fmt.Errorf("cannot write tree: %s has unresolved merge conflicts", entry.Path)
				}
			}

			builder := commitmanager.NewTreeBuilder(repo)
			hash, err := builder.BuildFromIndex(context.Background(), idx)
			if err != nil {
				return fmt.Errorf("failed to write tree: %w", err)
			}

			fmt.Println(hash.String())
			return nil
		},
	}

	return cmd
}
