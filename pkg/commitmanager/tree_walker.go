package commitmanager

import (
	"context"
	"fmt"
	"path"

	"github.com/utkarsh5026/SourceControl/pkg/objects"
	"github.com/utkarsh5026/SourceControl/pkg/refs/branch"
	"github.com/utkarsh5026/SourceControl/pkg/repository/sourcerepo"
)

// TreeWalker flattens tree objects into path-to-blob maps, mirroring the
// directory structure TreeBuilder folds up into tree objects.
type TreeWalker struct {
	repo          *sourcerepo.SourceRepository
	branchManager *branch.BranchRefManager
}

// NewTreeWalker creates a new TreeWalker
func NewTreeWalker(repo *sourcerepo.SourceRepository, branchMgr *branch.BranchRefManager) *TreeWalker {
	return &TreeWalker{
		repo:          repo,
		branchManager: branchMgr,
	}
}

// Walk reads the tree at treeSHA and returns a flat map of repo-relative
// path to blob SHA for every file entry reachable from it, recursing into
// directory entries. Symlink and submodule entries are recorded as files;
// a malformed descendant tree fails the whole walk rather than skipping it.
func (tw *TreeWalker) Walk(ctx context.Context, treeSHA objects.ObjectHash, base string) (map[string]objects.ObjectHash, error) {
	select {
	case <-ctx.Done():
		return nil, cancelledErr(ctx, "walk")
	default:
	}

	treeObj, err := tw.repo.ReadTreeObject(treeSHA)
	if err != nil {
		return nil, fmt.Errorf("read tree %s: %w", treeSHA, err)
	}

	result := make(map[string]objects.ObjectHash)
	for _, entry := range treeObj.Entries() {
		entryPath := entry.Name()
		if base != "" {
			entryPath = path.Join(base, entryPath)
		}

		if entry.IsDirectory() {
			subEntries, err := tw.Walk(ctx, entry.SHA(), entryPath)
			if err != nil {
				return nil, fmt.Errorf("walk subtree %s: %w", entryPath, err)
			}
			for p, sha := range subEntries {
				result[p] = sha
			}
			continue
		}

		result[entryPath] = entry.SHA()
	}

	return result, nil
}

// CommitFiles reads the commit at commitSHA, extracts its tree, and returns
// the flattened path-to-blob map for that tree.
func (tw *TreeWalker) CommitFiles(ctx context.Context, commitSHA objects.ObjectHash) (map[string]objects.ObjectHash, error) {
	commitObj, err := tw.repo.ReadCommitObject(commitSHA)
	if err != nil {
		return nil, fmt.Errorf("read commit %s: %w", commitSHA, err)
	}

	return tw.Walk(ctx, commitObj.TreeSHA, "")
}

// HeadFiles resolves HEAD to a commit and returns its flattened file map.
// If HEAD is unborn (no commits yet), it returns an empty map rather than
// an error.
func (tw *TreeWalker) HeadFiles(ctx context.Context) (map[string]objects.ObjectHash, error) {
	headSHA, err := tw.branchManager.GetHeadSHA()
	if err != nil {
		return map[string]objects.ObjectHash{}, nil
	}

	if headSHA == "" {
		return map[string]objects.ObjectHash{}, nil
	}

	return tw.CommitFiles(ctx, headSHA)
}
