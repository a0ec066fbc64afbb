package ignore

import (
	"github.com/utkarsh5026/SourceControl/pkg/common/fileops"
	"github.com/utkarsh5026/SourceControl/pkg/repository/scpath"
)

// SourceIgnoreFile is the name of the per-repository ignore file, analogous
// to .gitignore.
const SourceIgnoreFile = ".sourceignore"

// Matcher decides whether a repository-relative path should be excluded
// from indexing and untracked-file reporting.
type Matcher interface {
	// Match reports whether relPath (slash-separated, relative to the
	// repository root) should be ignored.
	Match(relPath string, isDir bool) bool
}

// RepoMatcher is the default Matcher implementation. It layers the built-in
// default patterns underneath whatever the repository's own .sourceignore
// file declares, so a repository only needs to list exceptions to the
// common defaults.
type RepoMatcher struct {
	patterns *PatternSet
}

// NewRepoMatcher builds a RepoMatcher for the repository rooted at repoRoot.
// It always seeds the built-in default patterns; a .sourceignore file at the
// repository root, if present, is layered on top. A missing .sourceignore
// file is not an error.
func NewRepoMatcher(repoRoot scpath.RepositoryPath) (*RepoMatcher, error) {
	patterns := NewPatternSet()
	patterns.AddPatternsFromText(DefaultIgnore, "builtin")

	ignorePath := repoRoot.Join(SourceIgnoreFile)
	text, err := fileops.ReadString(ignorePath)
	if err != nil {
		return nil, err
	}
	if text != "" {
		patterns.AddPatternsFromText(text, SourceIgnoreFile)
	}

	return &RepoMatcher{patterns: patterns}, nil
}

// Match implements Matcher.
func (m *RepoMatcher) Match(relPath string, isDir bool) bool {
	return m.patterns.IsIgnored(relPath, isDir, "")
}

// NoopMatcher ignores nothing. Useful as a default when no repository
// context is available (e.g. operating outside a repository).
type NoopMatcher struct{}

// Match implements Matcher.
func (NoopMatcher) Match(relPath string, isDir bool) bool {
	return false
}
