package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/utkarsh5026/SourceControl/pkg/objects"
	"github.com/utkarsh5026/SourceControl/pkg/objects/tree"
	"github.com/utkarsh5026/SourceControl/pkg/refs/branch"
	"github.com/utkarsh5026/SourceControl/pkg/repository/refs"
	"github.com/utkarsh5026/SourceControl/pkg/repository/sourcerepo"
)

func newLsTreeCmd() *cobra.Command {
	var recurse bool
	var nameOnly bool
	var long bool
	var dirsOnly bool

	cmd := &cobra.Command{
		Use:   "ls-tree [tree-ish]",
		Short: "List the contents of a tree object",
		Long: `List the entries of a tree object, resolving commits and branch names
to the tree they point at. Defaults to the tree of HEAD.

Examples:
  srcc ls-tree                 # the tree at HEAD
  srcc ls-tree feature         # the tree a branch points at
  srcc ls-tree a94a8fe         # an explicit tree or commit hash
  srcc ls-tree -r HEAD         # recurse into sub-trees
  srcc ls-tree -r --name-only HEAD
  srcc ls-tree -l HEAD         # show blob sizes
  srcc ls-tree -d HEAD         # only the entries that are themselves trees`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			repo, err := findRepository()
			if err != nil {
				return err
			}

			target := "HEAD"
			if len(args) == 1 {
				target = args[0]
			}

			var treeHash objects.ObjectHash
			if target == "HEAD" {
				sha, err := branch.NewManager(repo).CurrentCommit()
				if err != nil {
					return fmt.Errorf("failed to resolve HEAD: %w", err)
				}
				commitObj, err := repo.ReadCommitObject(sha)
				if err != nil {
					return fmt.Errorf("failed to read HEAD commit: %w", err)
				}
				treeHash = commitObj.TreeSHA
			} else {
				sha, err := refs.NewRefManager(repo).ResolveRevision(target, repo.ObjectStore())
				if err != nil {
					return fmt.Errorf("failed to resolve %s: %w", target, err)
				}

				obj, err := repo.ReadObject(sha)
				if err != nil {
					return fmt.Errorf("failed to read %s: %w", target, err)
				}

				if obj.Type() == objects.CommitType {
					commitObj, err := repo.ReadCommitObject(sha)
					if err != nil {
						return fmt.Errorf("failed to read commit %s: %w", target, err)
					}
					treeHash = commitObj.TreeSHA
				} else {
					treeHash = sha
				}
			}

			treeObj, err := repo.ReadTreeObject(treeHash)
			if err != nil {
				return fmt.Errorf("failed to read tree %s: %w", treeHash.Short(), err)
			}

			opts := lsTreeOptions{recurse: recurse, nameOnly: nameOnly, long: long, dirsOnly: dirsOnly}
			return printTreeEntries(repo, treeObj, "", opts)
		},
	}

	cmd.Flags().BoolVarP(&recurse, "recurse", "r", false, "recurse into sub-trees")
	cmd.Flags().BoolVar(&nameOnly, "name-only", false, "show only entry paths")
	cmd.Flags().BoolVarP(&long, "long", "l", false, "show object size in addition to the usual fields")
	cmd.Flags().BoolVarP(&dirsOnly, "dirs-only", "d", false, "show only entries that are themselves trees")

	return cmd
}

// lsTreeOptions mirrors the Git ls-tree flags this command supports.
type lsTreeOptions struct {
	recurse  bool
	nameOnly bool
	long     bool
	dirsOnly bool
}

func printTreeEntries(repo *sourcerepo.SourceRepository, t *tree.Tree, prefix string, opts lsTreeOptions) error {
	for _, entry := range t.Entries() {
		path := entry.Name()
		if prefix != "" {
			path = prefix + "/" + path
		}

		if entry.IsDirectory() && opts.recurse {
			subtree, err := repo.ReadTreeObject(entry.SHA())
			if err != nil {
				return fmt.Errorf("failed to read tree %s: %w", entry.SHA().Short(), err)
			}
			if opts.dirsOnly {
				printTreeEntry(entry, path, "-", opts)
			}
			if err := printTreeEntries(repo, subtree, path, opts); err != nil {
				return err
			}
			continue
		}

		if opts.dirsOnly && !entry.IsDirectory() {
			continue
		}

		size := "-"
		if opts.long && !entry.IsDirectory() {
			obj, err := repo.ReadObject(entry.SHA())
			if err != nil {
				return fmt.Errorf("failed to read object %s: %w", entry.SHA().Short(), err)
			}
			objSize, err := obj.Size()
			if err != nil {
				return fmt.Errorf("failed to determine size of %s: %w", path, err)
			}
			size = fmt.Sprintf("%d", objSize)
		}

		printTreeEntry(entry, path, size, opts)
	}
	return nil
}

func printTreeEntry(entry *tree.TreeEntry, path, size string, opts lsTreeOptions) {
	if opts.nameOnly {
		fmt.Println(path)
		return
	}
	if opts.long {
		fmt.Printf("%s %s %s %s\t%s\n", entry.Mode().ToOctalString(), treeEntryKind(entry), entry.SHA(), size, path)
		return
	}
	fmt.Printf("%s %s %s\t%s\n", entry.Mode().ToOctalString(), treeEntryKind(entry), entry.SHA(), path)
}
