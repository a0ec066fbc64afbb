package index

import (
	"bytes"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	cerr "github.com/utkarsh5026/SourceControl/pkg/common/err"
	"github.com/utkarsh5026/SourceControl/pkg/common/fileops"
	"github.com/utkarsh5026/SourceControl/pkg/common/lock"
	"github.com/utkarsh5026/SourceControl/pkg/objects"
	"github.com/utkarsh5026/SourceControl/pkg/objects/blob"
	"github.com/utkarsh5026/SourceControl/pkg/repository/ignore"
	"github.com/utkarsh5026/SourceControl/pkg/repository/scpath"
	"github.com/utkarsh5026/SourceControl/pkg/store"
)

// indexLockName is the lock file acquired while the index is being
// written, mirroring the reference manager's ref.lock convention.
const indexLockName = "index.lock"

// Manager orchestrates all operations between the working directory,
// the index (staging area), and the repository's object database.
type Manager struct {
	repoRoot  scpath.RepositoryPath
	indexPath scpath.SourcePath
	index     *Index
	mu        sync.RWMutex
}

// NewManager creates a new index manager.
func NewManager(repoRoot scpath.RepositoryPath) *Manager {
	indexPath := repoRoot.SourcePath().IndexPath()
	return &Manager{
		repoRoot:  repoRoot,
		indexPath: indexPath,
		index:     NewIndex(),
	}
}

// Initialize loads the index from disk.
func (m *Manager) Initialize() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	index, err := Read(m.indexPath.ToAbsolutePath())
	if err != nil {
		return fmt.Errorf("failed to load index: %w", err)
	}

	m.index = index
	return nil
}

// AddResult represents the result of adding files to the index.
type AddResult struct {
	Added    []string           // New files added to index
	Modified []string           // Existing files updated in index
	Ignored  []string           // Files skipped due to ignore patterns
	Failed   []AddFailureResult // Files that failed to add
}

// AddFailureResult represents a failed add operation.
type AddFailureResult struct {
	Path   string
	Reason string
}

// Add adds files to the index (like git add).
//
// A path naming a regular file is staged directly. A path naming a
// directory is enumerated recursively: entries matching the ignore
// matcher, dotfiles, and the repository's own metadata directory are
// skipped, while nested repositories (directories with their own
// metadata directory) are staged as gitlinks without recursing into
// their contents. Symlinks are staged with their target text as blob
// content rather than the content at the link's destination.
func (m *Manager) Add(paths []string, objectStore store.ObjectStore) (*AddResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	result := &AddResult{
		Added:    make([]string, 0),
		Modified: make([]string, 0),
		Ignored:  make([]string, 0),
		Failed:   make([]AddFailureResult, 0),
	}

	matcher, err := m.ignoreMatcher()
	if err != nil {
		return result, fmt.Errorf("failed to load ignore patterns: %w", err)
	}

	for _, path := range paths {
		if err := m.addPath(path, objectStore, matcher, result); err != nil {
			result.Failed = append(result.Failed, AddFailureResult{
				Path:   path,
				Reason: err.Error(),
			})
		}
	}

	if err := m.saveIndex(); err != nil {
		return result, fmt.Errorf("failed to save index: %w", err)
	}

	return result, nil
}

// ignoreMatcher loads this repository's ignore rules. Missing
// .sourceignore files are not an error - the built-in defaults alone are
// a valid matcher.
func (m *Manager) ignoreMatcher() (ignore.Matcher, error) {
	return ignore.NewRepoMatcher(m.repoRoot)
}

// addPath routes a user-supplied path argument to the appropriate staging
// logic based on what it names on disk: a symlink, a nested repository
// (gitlink), a directory to recurse into, or a plain regular file.
func (m *Manager) addPath(path string, objectStore store.ObjectStore, matcher ignore.Matcher, result *AddResult) error {
	absPath, relPath, err := m.resolvePaths(path)
	if err != nil {
		return err
	}

	info, err := os.Lstat(absPath.String())
	if err != nil {
		return fmt.Errorf("failed to stat file: %w", err)
	}

	if info.Mode()&os.ModeSymlink != 0 {
		return m.addSymlink(absPath, relPath, objectStore, result)
	}

	if info.IsDir() {
		if isGitlinkDir(absPath) {
			return m.addGitlink(absPath, relPath, result)
		}
		return m.addDirectory(absPath, matcher, objectStore, result)
	}

	return m.addFile(absPath, relPath, info, objectStore, result)
}

// addDirectory recursively stages the contents of a directory, applying
// the ignore matcher and skipping the repository's own metadata
// directory and dotfile entries along the way.
func (m *Manager) addDirectory(root scpath.AbsolutePath, matcher ignore.Matcher, objectStore store.ObjectStore, result *AddResult) error {
	sourceDirName := m.repoRoot.SourcePath().Base()

	return filepath.WalkDir(root.String(), func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}

		if p == root.String() {
			return nil
		}

		name := d.Name()
		if name == sourceDirName || strings.HasPrefix(name, ".") {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}

		entryAbsPath := scpath.AbsolutePath(p)
		entryRelPath, err := entryAbsPath.RelativeTo(m.repoRoot)
		if err != nil {
			return nil
		}

		if matcher.Match(entryRelPath.String(), d.IsDir()) {
			if d.IsDir() {
				return filepath.SkipDir
			}
			result.Ignored = append(result.Ignored, entryRelPath.String())
			return nil
		}

		if d.IsDir() {
			if isGitlinkDir(entryAbsPath) {
				if err := m.addGitlink(entryAbsPath, entryRelPath, result); err != nil {
					result.Failed = append(result.Failed, AddFailureResult{Path: entryRelPath.String(), Reason: err.Error()})
				}
				return filepath.SkipDir
			}
			return nil
		}

		info, err := d.Info()
		if err != nil {
			result.Failed = append(result.Failed, AddFailureResult{Path: entryRelPath.String(), Reason: err.Error()})
			return nil
		}

		if info.Mode()&os.ModeSymlink != 0 {
			if err := m.addSymlink(entryAbsPath, entryRelPath, objectStore, result); err != nil {
				result.Failed = append(result.Failed, AddFailureResult{Path: entryRelPath.String(), Reason: err.Error()})
			}
			return nil
		}

		if err := m.addFile(entryAbsPath, entryRelPath, info, objectStore, result); err != nil {
			result.Failed = append(result.Failed, AddFailureResult{Path: entryRelPath.String(), Reason: err.Error()})
		}
		return nil
	})
}

// addFile stages a single regular file: its content becomes a blob, and
// the index entry records the blob hash alongside the file's metadata.
func (m *Manager) addFile(absPath scpath.AbsolutePath, relPath scpath.RelativePath, info os.FileInfo, objectStore store.ObjectStore, result *AddResult) error {
	content, err := fileops.ReadBytesStrict(absPath)
	if err != nil {
		return fmt.Errorf("failed to read file: %w", err)
	}

	b := blob.NewBlob(content)
	hash, err := objectStore.WriteObject(b)
	if err != nil {
		return fmt.Errorf("failed to store blob: %w", err)
	}

	isNew := !m.index.Has(relPath)

	entry, err := NewEntryFromFileInfo(relPath, info, hash)
	if err != nil {
		return fmt.Errorf("failed to create entry: %w", err)
	}

	m.index.Add(entry)

	if isNew {
		result.Added = append(result.Added, relPath.String())
	} else {
		result.Modified = append(result.Modified, relPath.String())
	}

	return nil
}

// addSymlink stages a symbolic link. Its target text (not the content at
// the destination) is stored as the blob, and the entry is recorded with
// mode 120000 so the tree builder and checkout logic treat it as a link.
func (m *Manager) addSymlink(absPath scpath.AbsolutePath, relPath scpath.RelativePath, objectStore store.ObjectStore, result *AddResult) error {
	target, err := os.Readlink(absPath.String())
	if err != nil {
		return fmt.Errorf("failed to read symlink target: %w", err)
	}

	info, err := os.Lstat(absPath.String())
	if err != nil {
		return fmt.Errorf("failed to stat symlink: %w", err)
	}

	b := blob.NewBlob([]byte(target))
	hash, err := objectStore.WriteObject(b)
	if err != nil {
		return fmt.Errorf("failed to store symlink blob: %w", err)
	}

	isNew := !m.index.Has(relPath)

	entry := NewEntry(relPath)
	entry.Mode = FileModeSymlink
	entry.BlobHash = hash
	entry.SizeInBytes = uint32(len(target))
	entry.ModificationTime = NewTimestampFromMillis(info.ModTime().UnixMilli())
	entry.CreationTime = entry.ModificationTime
	entry.DeviceID, entry.Inode, entry.UserID, entry.GroupID = extractSystemMetadata(info)

	m.index.Add(entry)

	if isNew {
		result.Added = append(result.Added, relPath.String())
	} else {
		result.Modified = append(result.Modified, relPath.String())
	}

	return nil
}

// addGitlink stages a nested repository as a gitlink entry (mode 160000)
// recording the submodule's current HEAD commit SHA, without reading or
// hashing any of its tracked files.
func (m *Manager) addGitlink(absPath scpath.AbsolutePath, relPath scpath.RelativePath, result *AddResult) error {
	sha, err := gitlinkHeadSHA(absPath)
	if err != nil {
		return fmt.Errorf("failed to resolve submodule HEAD: %w", err)
	}

	info, err := os.Lstat(absPath.String())
	if err != nil {
		return fmt.Errorf("failed to stat submodule directory: %w", err)
	}

	isNew := !m.index.Has(relPath)

	entry := NewEntry(relPath)
	entry.Mode = FileModeGitlink
	entry.BlobHash = sha
	entry.ModificationTime = NewTimestampFromMillis(info.ModTime().UnixMilli())
	entry.CreationTime = entry.ModificationTime

	m.index.Add(entry)

	if isNew {
		result.Added = append(result.Added, relPath.String())
	} else {
		result.Modified = append(result.Modified, relPath.String())
	}

	return nil
}

// isGitlinkDir reports whether dir contains its own repository metadata
// directory, making it a nested repository rather than an ordinary
// directory to recurse into.
func isGitlinkDir(dir scpath.AbsolutePath) bool {
	repoPath, err := scpath.NewRepositoryPath(dir.String())
	if err != nil {
		return false
	}
	info, err := os.Stat(repoPath.SourcePath().String())
	return err == nil && info.IsDir()
}

// gitlinkHeadSHA resolves the commit SHA a nested repository's HEAD
// currently points to, following one level of symbolic ref indirection.
func gitlinkHeadSHA(dir scpath.AbsolutePath) (objects.ObjectHash, error) {
	repoPath, err := scpath.NewRepositoryPath(dir.String())
	if err != nil {
		return "", err
	}
	sourcePath := repoPath.SourcePath()

	head, err := fileops.ReadStringStrict(sourcePath.HeadPath().ToAbsolutePath())
	if err != nil {
		return "", err
	}

	if !strings.HasPrefix(head, "ref: ") {
		return objects.ObjectHash(head), nil
	}

	refName := strings.TrimSpace(strings.TrimPrefix(head, "ref: "))
	refContent, err := fileops.ReadStringStrict(sourcePath.Join(refName).ToAbsolutePath())
	if err != nil {
		return "", err
	}

	return objects.ObjectHash(strings.TrimSpace(refContent)), nil
}

// RemoveResult represents the result of removing files from the index.
type RemoveResult struct {
	Removed []string              // Successfully removed files
	Failed  []RemoveFailureResult // Files that failed to remove
}

// RemoveFailureResult represents a failed remove operation.
type RemoveFailureResult struct {
	Path   string
	Reason string
}

// Remove removes files from the index and optionally from the working directory.
func (m *Manager) Remove(paths []string, deleteFromDisk bool) (*RemoveResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	result := &RemoveResult{
		Removed: make([]string, 0),
		Failed:  make([]RemoveFailureResult, 0),
	}

	for _, path := range paths {
		absPath, relPath, err := m.resolvePaths(path)
		if err != nil {
			result.Failed = append(result.Failed, RemoveFailureResult{
				Path:   path,
				Reason: err.Error(),
			})
			continue
		}

		if !m.index.Has(relPath) {
			result.Failed = append(result.Failed, RemoveFailureResult{
				Path:   relPath.String(),
				Reason: "file not in index",
			})
			continue
		}

		m.index.Remove(relPath)
		result.Removed = append(result.Removed, relPath.String())

		// Optionally delete from disk
		if deleteFromDisk {
			if err := fileops.SafeRemove(absPath); err != nil {
				// File was removed from index but failed to delete from disk
				// We don't add this to Failed since index operation succeeded
			}
		}
	}

	// Save index after all removals
	if err := m.saveIndex(); err != nil {
		return result, fmt.Errorf("failed to save index: %w", err)
	}

	return result, nil
}

// StatusResult represents the repository status.
type StatusResult struct {
	Staged    StagedChanges
	Unstaged  UnstagedChanges
	Untracked []string
	Ignored   []string
}

// StagedChanges represents changes that are staged (in index but differ from HEAD).
type StagedChanges struct {
	Added    []string // New files in index (not in HEAD)
	Modified []string // Files modified in index (different from HEAD)
	Deleted  []string // Files deleted from index (present in HEAD)
}

// UnstagedChanges represents changes in working directory (differ from index).
type UnstagedChanges struct {
	Modified []string // Files modified in working dir (different from index)
	Deleted  []string // Files deleted from working dir (present in index)
}

// Status returns the current repository status (like git status), composed
// from three views of the tree: headFiles (the path-to-blob map of the
// HEAD commit, or empty if HEAD is unborn), the index, and the working
// directory.
//
//   - Staged is HEAD compared against the index: additions, modifications,
//     and deletions the next commit would record.
//   - Unstaged is the index compared against the working directory via the
//     size/mode/mtime/content comparator, using the fast mtime-trusting
//     path (quickCheck) rather than hashing every tracked file on every
//     call.
//   - Untracked is every working-tree file that is neither indexed nor
//     excluded by the ignore matcher.
func (m *Manager) Status(headFiles map[string]objects.ObjectHash) (*StatusResult, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	result := &StatusResult{
		Staged: StagedChanges{
			Added:    make([]string, 0),
			Modified: make([]string, 0),
			Deleted:  make([]string, 0),
		},
		Unstaged: UnstagedChanges{
			Modified: make([]string, 0),
			Deleted:  make([]string, 0),
		},
		Untracked: make([]string, 0),
		Ignored:   make([]string, 0),
	}

	indexed := make(map[string]*Entry, len(m.index.Entries))
	for _, entry := range m.index.Entries {
		indexed[entry.Path.String()] = entry
	}

	for p, entry := range indexed {
		headSHA, inHead := headFiles[p]
		switch {
		case !inHead:
			result.Staged.Added = append(result.Staged.Added, p)
		case headSHA != entry.BlobHash:
			result.Staged.Modified = append(result.Staged.Modified, p)
		}
	}
	for p := range headFiles {
		if _, ok := indexed[p]; !ok {
			result.Staged.Deleted = append(result.Staged.Deleted, p)
		}
	}

	for p, entry := range indexed {
		absPath := m.repoRoot.Join(p)
		state, err := Compare(entry, absPath, CompareOptions{QuickCheck: true})
		if err != nil {
			continue
		}

		switch state {
		case FileMissing:
			result.Unstaged.Deleted = append(result.Unstaged.Deleted, p)
		case Unchanged:
		default:
			result.Unstaged.Modified = append(result.Unstaged.Modified, p)
		}
	}

	matcher, err := m.ignoreMatcher()
	if err != nil {
		return result, fmt.Errorf("failed to load ignore patterns: %w", err)
	}

	untracked, ignoredPaths, err := m.collectWorkingTree(matcher, indexed)
	if err != nil {
		return result, fmt.Errorf("failed to scan working directory: %w", err)
	}
	result.Untracked = untracked
	result.Ignored = ignoredPaths

	sort.Strings(result.Staged.Added)
	sort.Strings(result.Staged.Modified)
	sort.Strings(result.Staged.Deleted)
	sort.Strings(result.Unstaged.Modified)
	sort.Strings(result.Unstaged.Deleted)
	sort.Strings(result.Untracked)
	sort.Strings(result.Ignored)

	return result, nil
}

// collectWorkingTree walks the working directory, returning the
// repo-relative paths of files that are neither indexed nor ignored
// (untracked) and those excluded by the ignore matcher (ignored). It
// skips the repository's own metadata directory and does not descend
// into nested repositories.
func (m *Manager) collectWorkingTree(matcher ignore.Matcher, indexed map[string]*Entry) ([]string, []string, error) {
	var untracked, ignoredPaths []string
	sourceDirName := m.repoRoot.SourcePath().Base()
	root := m.repoRoot.String()

	err := filepath.WalkDir(root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if p == root {
			return nil
		}

		name := d.Name()
		if name == sourceDirName {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}

		entryAbsPath := scpath.AbsolutePath(p)
		relPath, err := entryAbsPath.RelativeTo(m.repoRoot)
		if err != nil {
			return nil
		}
		relStr := relPath.String()

		if matcher.Match(relStr, d.IsDir()) {
			if d.IsDir() {
				return filepath.SkipDir
			}
			ignoredPaths = append(ignoredPaths, relStr)
			return nil
		}

		if d.IsDir() {
			if isGitlinkDir(entryAbsPath) {
				if _, ok := indexed[relStr]; !ok {
					untracked = append(untracked, relStr)
				}
				return filepath.SkipDir
			}
			return nil
		}

		if _, ok := indexed[relStr]; !ok {
			untracked = append(untracked, relStr)
		}
		return nil
	})
	if err != nil {
		return nil, nil, err
	}

	return untracked, ignoredPaths, nil
}

// Clear removes all entries from the index.
func (m *Manager) Clear() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.index.Clear()
	return m.saveIndex()
}

// GetIndex returns a read-only copy of the index.
func (m *Manager) GetIndex() *Index {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return m.index.Clone()
}

// saveIndex writes the index to disk (caller must hold lock).
//
// Writing takes its own advisory file lock (index.lock, created with
// O_CREAT|O_EXCL) and writes through a temp-file-then-rename so a reader
// never observes a partially-written index, mirroring how RefManager
// guards ref updates.
func (m *Manager) saveIndex() error {
	idxLock, err := lock.Acquire(m.indexPath.Dir(), indexLockName)
	if err != nil {
		return cerr.Wrap(err, "index", "save_index")
	}
	defer idxLock.Release()

	buf := new(bytes.Buffer)
	if err := m.index.Serialize(buf); err != nil {
		return fmt.Errorf("failed to serialize index: %w", err)
	}

	if err := fileops.AtomicWrite(m.indexPath.ToAbsolutePath(), buf.Bytes(), 0644); err != nil {
		return fmt.Errorf("failed to write index file: %w", err)
	}

	return nil
}

// resolvePaths converts a path to absolute and relative forms.
func (m *Manager) resolvePaths(path string) (scpath.AbsolutePath, scpath.RelativePath, error) {
	var absPath scpath.AbsolutePath

	if filepath.IsAbs(path) {
		absPath = scpath.AbsolutePath(filepath.Clean(path))
	} else {
		absPath = m.repoRoot.Join(path)
	}

	relPath, err := absPath.RelativeTo(m.repoRoot)
	if err != nil {
		return "", "", fmt.Errorf("failed to compute relative path: %w", err)
	}

	if !scpath.IsPathSafe(string(relPath)) {
		return "", "", cerr.New("index", cerr.CodePathOutsideRepo, "resolve_paths",
			fmt.Sprintf("path %q is outside the repository root", path), nil)
	}

	return absPath, relPath, nil
}

// Read reads an index file from disk.
func Read(path scpath.AbsolutePath) (*Index, error) {
	data, err := fileops.ReadBytes(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read index file: %w", err)
	}

	// If file doesn't exist, return empty index
	if data == nil {
		return NewIndex(), nil
	}

	index := NewIndex()
	if err := index.Deserialize(bytes.NewReader(data)); err != nil {
		return nil, fmt.Errorf("failed to deserialize index: %w", err)
	}

	return index, nil
}
