package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/utkarsh5026/SourceControl/pkg/objects"
	"github.com/utkarsh5026/SourceControl/pkg/objects/blob"
	"github.com/utkarsh5026/SourceControl/pkg/objects/commit"
	"github.com/utkarsh5026/SourceControl/pkg/objects/tree"
)

func newCatFileCmd() *cobra.Command {
	var showType bool
	var showSize bool
	var pretty bool
	var checkExists bool

	cmd := &cobra.Command{
		Use:   "cat-file <object>",
		Short: "Inspect the type, size, or content of a stored object",
		Long: `Print information about a repository object identified by its hash
(a full or unambiguous abbreviated SHA-1).

Examples:
  srcc cat-file -t a94a8fe     # print the object type
  srcc cat-file -s a94a8fe     # print the object size
  srcc cat-file -p a94a8fe     # pretty-print the object content
  srcc cat-file -e a94a8fe     # exit 0 if the object exists, nonzero otherwise`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !showType && !showSize && !pretty && !checkExists {
				return fmt.Errorf("one of -t, -s, -p, or -e is required")
			}

			repo, err := findRepository()
			if err != nil {
				return err
			}

			objStore := repo.ObjectStore()
			hash, err := objStore.ResolveShortHash(args[0])
			if checkExists {
				if err != nil {
					return fmt.Errorf("object %s does not exist", args[0])
				}
				return nil
			}
			if err != nil {
				return fmt.Errorf("failed to resolve %s: %w", args[0], err)
			}

			obj, err := repo.ReadObject(hash)
			if err != nil {
				return fmt.Errorf("failed to read object %s: %w", hash.Short(), err)
			}

			switch {
			case showType:
				fmt.Println(obj.Type())
			case showSize:
				size, err := obj.Size()
				if err != nil {
					return fmt.Errorf("failed to determine size: %w", err)
				}
				fmt.Println(size)
			case pretty:
				return printPretty(obj)
			}

			return nil
		},
	}

	cmd.Flags().BoolVarP(&showType, "type", "t", false, "print the object type")
	cmd.Flags().BoolVarP(&showSize, "size", "s", false, "print the object size")
	cmd.Flags().BoolVarP(&pretty, "pretty", "p", false, "pretty-print the object content")
	cmd.Flags().BoolVarP(&checkExists, "exists", "e", false, "exit successfully if the object exists")

	return cmd
}

func treeEntryKind(entry *tree.TreeEntry) string {
	switch {
	case entry.IsDirectory():
		return "tree"
	case entry.IsSubmodule():
		return "commit"
	default:
		return "blob"
	}
}

func printPretty(obj objects.BaseObject) error {
	switch v := obj.(type) {
	case *blob.Blob:
		content, err := v.Content()
		if err != nil {
			return fmt.Errorf("failed to read blob content: %w", err)
		}
		fmt.Print(content.String())
	case *tree.Tree:
		for _, entry := range v.Entries() {
			fmt.Printf("%s %s %s\t%s\n", entry.Mode().ToOctalString(), treeEntryKind(entry), entry.SHA(), entry.Name())
		}
	case *commit.Commit:
		fmt.Println(v.String())
	default:
		fmt.Println(obj.String())
	}
	return nil
}
