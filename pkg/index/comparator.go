package index

import (
	"fmt"
	"os"

	"github.com/utkarsh5026/SourceControl/pkg/common/fileops"
	"github.com/utkarsh5026/SourceControl/pkg/objects"
	"github.com/utkarsh5026/SourceControl/pkg/objects/blob"
	"github.com/utkarsh5026/SourceControl/pkg/repository/scpath"
)

// ChangeState classifies how an indexed entry relates to the corresponding
// file on disk.
type ChangeState int

const (
	// Unchanged means the entry and the working-tree file agree.
	Unchanged ChangeState = iota

	// SizeChanged means only the recorded size differs from the file's
	// current size.
	SizeChanged

	// ModeChanged means only the recorded mode differs from the file's
	// current mode.
	ModeChanged

	// TimeChanged means size and mode agree but the modification time
	// differs; under quick_check this is reported without hashing content.
	TimeChanged

	// ContentChanged means the file's hashed content differs from the
	// entry's recorded blob hash.
	ContentChanged

	// FileMissing means the file no longer exists (or cannot be read) on
	// disk.
	FileMissing

	// MultipleChanges means both size and mode differ from the entry.
	MultipleChanges
)

// String returns a human-readable name for the change state.
func (s ChangeState) String() string {
	switch s {
	case Unchanged:
		return "unchanged"
	case SizeChanged:
		return "size_changed"
	case ModeChanged:
		return "mode_changed"
	case TimeChanged:
		return "time_changed"
	case ContentChanged:
		return "content_changed"
	case FileMissing:
		return "file_missing"
	case MultipleChanges:
		return "multiple_changes"
	default:
		return "unknown"
	}
}

// CompareOptions controls how Compare resolves an ambiguous mtime
// difference (size and mode both still match the index).
type CompareOptions struct {
	// QuickCheck, when true, trusts a differing mtime as evidence of
	// change without reading and hashing the file's content. When false,
	// the file is hashed and compared against the entry's recorded blob
	// hash before deciding.
	QuickCheck bool
}

// Compare classifies how entry differs from the file at absPath on disk,
// following Git's own staged-timestamp-then-content fallback policy:
//
//  1. A missing or unreadable file is FileMissing.
//  2. If size and mode both differ from the entry, MultipleChanges. If only
//     one differs, SizeChanged or ModeChanged respectively.
//  3. Otherwise, if the recorded mtime second matches the file's mtime
//     second, the entry is trusted as Unchanged (the fast path that avoids
//     hashing file content on every status check).
//  4. If the mtime differs, QuickCheck reports TimeChanged outright;
//     otherwise the file is hashed and compared to the entry's blob hash,
//     yielding Unchanged (a stale timestamp on otherwise-identical content)
//     or ContentChanged.
func Compare(entry *Entry, absPath scpath.AbsolutePath, opts CompareOptions) (ChangeState, error) {
	info, err := os.Stat(absPath.String())
	if err != nil {
		return FileMissing, nil
	}

	sizeDiffers := entry.SizeInBytes != uint32(info.Size())
	modeDiffers := entry.Mode.GitComparable() != FileMode(objects.FromOSFileMode(info.Mode())).GitComparable()

	switch {
	case sizeDiffers && modeDiffers:
		return MultipleChanges, nil
	case sizeDiffers:
		return SizeChanged, nil
	case modeDiffers:
		return ModeChanged, nil
	}

	if int64(entry.ModificationTime.Seconds) == info.ModTime().Unix() {
		return Unchanged, nil
	}

	if opts.QuickCheck {
		return TimeChanged, nil
	}

	content, err := fileops.ReadBytesStrict(absPath)
	if err != nil {
		return FileMissing, nil
	}

	currentHash, err := blob.NewBlob(content).Hash()
	if err != nil {
		return ContentChanged, fmt.Errorf("hash working tree content: %w", err)
	}

	if currentHash == entry.BlobHash {
		return Unchanged, nil
	}
	return ContentChanged, nil
}
