package refs

import (
	"fmt"
	"strconv"
	"strings"

	cerr "github.com/utkarsh5026/SourceControl/pkg/common/err"
	"github.com/utkarsh5026/SourceControl/pkg/objects"
	"github.com/utkarsh5026/SourceControl/pkg/objects/commit"
	"github.com/utkarsh5026/SourceControl/pkg/repository/scpath"
	"github.com/utkarsh5026/SourceControl/pkg/store"
)

// ResolveRevision resolves a revision expression to a commit SHA-1 hash.
// It tries, in order: a full 40-hex SHA, a local branch (refs/heads/<name>),
// a tag (refs/tags/<name>), and finally an abbreviated hex prefix against
// the object store. The first trial that succeeds wins.
//
// A trailing `~N` suffix (e.g. "main~2") walks N first-parent generations
// back from whatever the base expression resolves to, matching Git's own
// ancestor-reference syntax.
func (rm *RefManager) ResolveRevision(revish string, objectStore store.ObjectStore) (objects.ObjectHash, error) {
	base, generations, err := splitAncestorSuffix(revish)
	if err != nil {
		return "", cerr.New("refs", cerr.CodeNotFound, "resolve_revision",
			fmt.Sprintf("invalid revision %q: %v", revish, err), nil)
	}

	hash, err := rm.resolveBaseRevision(base, objectStore)
	if err != nil {
		return "", err
	}

	for i := 0; i < generations; i++ {
		obj, err := objectStore.ReadObject(hash)
		if err != nil {
			return "", cerr.New("refs", cerr.CodeNotFound, "resolve_revision",
				fmt.Sprintf("could not walk %q~%d: %v", base, i+1, err), nil)
		}

		c, ok := obj.(*commit.Commit)
		if !ok {
			return "", cerr.New("refs", cerr.CodeNotFound, "resolve_revision",
				fmt.Sprintf("%q~%d does not resolve to a commit", base, i+1), nil)
		}

		if len(c.ParentSHAs) == 0 {
			return "", cerr.New("refs", cerr.CodeNotFound, "resolve_revision",
				fmt.Sprintf("%q~%d: no parent commit", base, i+1), nil)
		}

		hash = c.ParentSHAs[0]
	}

	return hash, nil
}

// splitAncestorSuffix splits a trailing "~N" ancestor count off revish,
// returning the base expression and the number of generations to walk (0 if
// there is no suffix).
func splitAncestorSuffix(revish string) (string, int, error) {
	idx := strings.LastIndex(revish, "~")
	if idx == -1 {
		return revish, 0, nil
	}

	base, suffix := revish[:idx], revish[idx+1:]
	if suffix == "" {
		return base, 1, nil
	}

	n, err := strconv.Atoi(suffix)
	if err != nil || n < 0 {
		return "", 0, fmt.Errorf("invalid ancestor count %q", suffix)
	}
	return base, n, nil
}

// resolveBaseRevision resolves revish without any ancestor suffix applied.
func (rm *RefManager) resolveBaseRevision(revish string, objectStore store.ObjectStore) (objects.ObjectHash, error) {
	if isSHA1(revish) {
		hash, err := objects.ParseObjectHash(revish)
		if err == nil {
			return hash, nil
		}
	}

	if branchRef, err := NewBranchRef(revish); err == nil {
		if sha, err := rm.ResolveToSHA(scpath.RefPath(branchRef)); err == nil {
			return objects.ParseObjectHash(sha)
		}
	}

	if tagRef, err := NewTagRef(revish); err == nil {
		if sha, err := rm.ResolveToSHA(scpath.RefPath(tagRef)); err == nil {
			return objects.ParseObjectHash(sha)
		}
	}

	hash, err := objectStore.ResolveShortHash(revish)
	if err != nil {
		return "", cerr.New("refs", cerr.CodeNotFound, "resolve_revision",
			fmt.Sprintf("could not resolve revision %q", revish), err)
	}

	return hash, nil
}
