// Package artifact implements the on-disk file/directory abstraction:
// every Provision wraps one Artifact, and the engine's scratch-space
// partitioning (one tmp/<source>/ subtree per driver) is expressed
// entirely in terms of Artifact.Resolve.
//
// Platform-specific behavior (hard links, directory listings on exotic
// filesystems) is deliberately thin here, treated as an external
// collaborator specified only by the contract this package exposes.
package artifact

import (
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/ekam-build/ekam/internal/ekamerr"
	"github.com/ekam-build/ekam/internal/tag"
)

// Artifact is a handle to a file or directory rooted under a project
// tree (src/ or tmp/). Two Artifacts are identical iff they resolve to
// the same absolute path.
type Artifact struct {
	root     string // path to the tree root (the src/, tmp/, bin/ or lib/ directory itself)
	rel      string // canonical, "/"-separated path relative to root; "." for root
	readOnly bool   // true for artifacts rooted under src/
}

// New constructs an Artifact for a canonical, root-relative path.
// readOnly should be true for artifacts under the source tree, which
// the engine never mutates.
func New(root, relPath string, readOnly bool) Artifact {
	return Artifact{root: root, rel: tag.Canonicalize(relPath), readOnly: readOnly}
}

// AbsPath returns the artifact's absolute filesystem path.
func (a Artifact) AbsPath() string {
	if a.rel == "." {
		return a.root
	}
	return filepath.Join(a.root, filepath.FromSlash(a.rel))
}

// Basename returns the final path component.
func (a Artifact) Basename() string {
	return filepath.Base(a.rel)
}

// CanonicalName returns the path relative to the artifact's root, using
// "/" separators, with "." denoting the root itself.
func (a Artifact) CanonicalName() string {
	return a.rel
}

// Parent returns the artifact's containing directory. Calling Parent on
// the root returns the root itself.
func (a Artifact) Parent() Artifact {
	if a.rel == "." {
		return a
	}
	parent := dirname(a.rel)
	return Artifact{root: a.root, rel: parent, readOnly: a.readOnly}
}

func dirname(rel string) string {
	idx := strings.LastIndexByte(rel, '/')
	if idx < 0 {
		return "."
	}
	return rel[:idx]
}

// ReadOnly reports whether writes to this artifact are rejected, which
// is true for every artifact resolved under the source tree.
func (a Artifact) ReadOnly() bool {
	return a.readOnly
}

// Identical reports whether two artifacts name the same filesystem
// entry.
func (a Artifact) Identical(other Artifact) bool {
	return a.AbsPath() == other.AbsPath()
}

// Exists reports whether the artifact currently exists on disk.
func (a Artifact) Exists() bool {
	_, err := os.Lstat(a.AbsPath())
	return err == nil
}

// IsFile reports whether the artifact exists and is a regular file.
func (a Artifact) IsFile() bool {
	info, err := os.Stat(a.AbsPath())
	return err == nil && info.Mode().IsRegular()
}

// IsDir reports whether the artifact exists and is a directory.
func (a Artifact) IsDir() bool {
	info, err := os.Stat(a.AbsPath())
	return err == nil && info.IsDir()
}

// Hash computes the artifact's content hash. Directories and
// nonexistent artifacts hash to tag.NullHash.
func (a Artifact) Hash() (tag.Hash, error) {
	if !a.IsFile() {
		return tag.NullHash, nil
	}
	data, err := a.ReadAll()
	if err != nil {
		return tag.NullHash, err
	}
	return tag.HashBytes(data), nil
}

// ReadAll reads the artifact's full content.
func (a Artifact) ReadAll() ([]byte, error) {
	data, err := os.ReadFile(a.AbsPath())
	return data, ekamerr.NewOSError(a.AbsPath(), "read", err)
}

// WriteAll overwrites the artifact's content, creating parent
// directories as needed. It refuses to write a read-only artifact.
func (a Artifact) WriteAll(data []byte) error {
	if a.readOnly {
		return ekamerr.NewOSError(a.AbsPath(), "write", fs.ErrPermission)
	}
	if err := os.MkdirAll(filepath.Dir(a.AbsPath()), 0o755); err != nil {
		return ekamerr.NewOSError(filepath.Dir(a.AbsPath()), "mkdir", err)
	}
	return ekamerr.NewOSError(a.AbsPath(), "write", os.WriteFile(a.AbsPath(), data, 0o644))
}

// ReadDir lists the artifact's immediate children, resolved relative to
// this artifact.
func (a Artifact) ReadDir() ([]Artifact, error) {
	entries, err := os.ReadDir(a.AbsPath())
	if err != nil {
		return nil, ekamerr.NewOSError(a.AbsPath(), "readdir", err)
	}
	out := make([]Artifact, 0, len(entries))
	for _, e := range entries {
		out = append(out, a.Resolve(e.Name()))
	}
	return out, nil
}

// Resolve returns the artifact for a path relative to this one,
// resolving ".." and "." segments the same way Tag canonicalization
// does.
func (a Artifact) Resolve(relative string) Artifact {
	joined := relative
	if a.rel != "." {
		joined = a.rel + "/" + relative
	}
	return Artifact{root: a.root, rel: tag.Canonicalize(joined), readOnly: a.readOnly}
}

// Create truncates (or creates) the artifact as an empty file.
func (a Artifact) Create() error {
	return a.WriteAll(nil)
}

// Link hard-links this artifact onto dst, replacing any file already at
// dst. Used by the engine's install directive and by tests that want
// cheap artifact duplication. It refuses a read-only dst.
func (a Artifact) Link(dst Artifact) error {
	if dst.readOnly {
		return ekamerr.NewOSError(dst.AbsPath(), "link", fs.ErrPermission)
	}
	if err := os.MkdirAll(filepath.Dir(dst.AbsPath()), 0o755); err != nil {
		return ekamerr.NewOSError(filepath.Dir(dst.AbsPath()), "mkdir", err)
	}
	_ = os.Remove(dst.AbsPath())
	if err := os.Link(a.AbsPath(), dst.AbsPath()); err != nil {
		// Cross-device or unsupported hard links fall back to a copy,
		// which still satisfies "dst has the same content as a".
		return copyFile(a.AbsPath(), dst.AbsPath())
	}
	return nil
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return ekamerr.NewOSError(src, "open", err)
	}
	defer in.Close()
	out, err := os.Create(dst)
	if err != nil {
		return ekamerr.NewOSError(dst, "create", err)
	}
	defer out.Close()
	_, err = io.Copy(out, in)
	return ekamerr.NewOSError(dst, "copy", err)
}

// Unlink removes the artifact, ignoring a not-exist error. It refuses
// to remove a read-only artifact.
func (a Artifact) Unlink() error {
	if a.readOnly {
		return ekamerr.NewOSError(a.AbsPath(), "remove", fs.ErrPermission)
	}
	err := os.Remove(a.AbsPath())
	if os.IsNotExist(err) {
		return nil
	}
	return ekamerr.NewOSError(a.AbsPath(), "remove", err)
}

// Tag returns the distinguished "file:<canonical>" tag every file
// artifact carries.
func (a Artifact) Tag() tag.Tag {
	return tag.FromFile(a.rel)
}
