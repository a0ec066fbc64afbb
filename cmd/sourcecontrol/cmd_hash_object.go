package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/utkarsh5026/SourceControl/pkg/objects/blob"
)

func newHashObjectCmd() *cobra.Command {
	var write bool
	var stdin bool

	cmd := &cobra.Command{
		Use:   "hash-object [file]",
		Short: "Compute the object hash of a file and optionally store it",
		Long: `Compute the SHA-1 hash a file would have as a blob object.

Examples:
  # Print the hash without storing anything
  srcc hash-object README.md

  # Store the blob in the object database and print its hash
  srcc hash-object -w README.md

  # Hash content piped on standard input
  cat README.md | srcc hash-object --stdin`,
		Args: func(cmd *cobra.Command, args []string) error {
			if stdin {
				return cobra.ExactArgs(0)(cmd, args)
			}
			return cobra.ExactArgs(1)(cmd, args)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			var data []byte
			var source string

			if stdin {
				read, err := io.ReadAll(cmd.InOrStdin())
				if err != nil {
					return fmt.Errorf("failed to read stdin: %w", err)
				}
				data = read
				source = "<stdin>"
			} else {
				absPath, err := filepath.Abs(args[0])
				if err != nil {
					return fmt.Errorf("failed to resolve path: %w", err)
				}

				read, err := os.ReadFile(absPath)
				if err != nil {
					return fmt.Errorf("failed to read %s: %w", args[0], err)
				}
				data = read
				source = args[0]
			}

			b := blob.NewBlob(data)
			hash, err := b.Hash()
			if err != nil {
				return fmt.Errorf("failed to hash blob: %w", err)
			}

			if write {
				repo, err := findRepository()
				if err != nil {
					return err
				}
				if _, err := repo.WriteObject(b); err != nil {
					return fmt.Errorf("failed to write object %s: %w", source, err)
				}
			}

			fmt.Println(hash.String())
			return nil
		},
	}

	cmd.Flags().BoolVarP(&write, "write", "w", false, "write the object to the object database")
	cmd.Flags().BoolVar(&stdin, "stdin", false, "read the object content from standard input")

	return cmd
}
