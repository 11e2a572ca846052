package fsbackend

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/coreyw/gitdb/backend"
	"github.com/coreyw/gitdb/ginternals"
	"github.com/coreyw/gitdb/internal/gitpath"
	"github.com/spf13/afero"
	"golang.org/x/xerrors"
)

// headPaths are the special refs that live directly at the root of the
// .git directory instead of under refs/
var headPaths = []string{
	ginternals.Head,
	ginternals.OrigHead,
	ginternals.MergeHead,
	ginternals.CherryPickHead,
}

// Reference returns a stored reference from its name
// ErrRefNotFound is returned if the reference doesn't exists
// This method can be called concurrently
func (b *Backend) Reference(name string) (*ginternals.Reference, error) {
	finder := func(name string) ([]byte, error) {
		data, ok := b.refs.Load(name)
		if !ok {
			return nil, xerrors.Errorf(`ref "%s": %w`, name, ginternals.ErrRefNotFound)
		}
		return data.([]byte), nil
	}
	return ginternals.ResolveReference(name, finder)
}

// systemPath returns a path from a ref name
// Ex.: On windows refs/heads/master would return refs\heads\master
func (b *Backend) systemPath(name string) string {
	name = filepath.FromSlash(name)
	return filepath.Join(b.root, name)
}

// loadRefs loads the references in memory
func (b *Backend) loadRefs() error {
	refsPath := filepath.Join(b.root, gitpath.RefsPath)
	err := afero.Walk(b.fs, refsPath, func(path string, info fs.FileInfo, err error) error {
		// if refsPath doesn't exists this will return nil and skip the
		// error. This is useful when the repo is empty and has no
		// references yet.
		if path == refsPath {
			return nil
		}
		if err != nil {
			return xerrors.Errorf("could not walk %s: %w", path, err)
		}
		if info.IsDir() {
			return nil
		}

		data, err := afero.ReadFile(b.fs, path)
		if err != nil {
			return xerrors.Errorf("could not read reference at %s: %w", path, err)
		}
		relpath, err := filepath.Rel(b.root, path)
		if err != nil {
			return xerrors.Errorf("could not resolve %s: %w", path, err)
		}
		// the name of the ref is its UNIX path
		b.refs.Store(filepath.ToSlash(relpath), data)
		return nil
	})
	if err != nil {
		return xerrors.Errorf("could not browse the refs directory: %w", err)
	}

	for _, p := range headPaths {
		data, err := afero.ReadFile(b.fs, filepath.Join(b.root, p))
		if err != nil {
			if os.IsNotExist(err) {
				continue
			}
			return xerrors.Errorf("could not read reference at %s: %w", p, err)
		}
		b.refs.Store(p, data)
	}

	return nil
}

// WriteReference writes the given reference on disk. If the
// reference already exists it will be overwritten
func (b *Backend) WriteReference(ref *ginternals.Reference) error {
	return b.writeReference(ref)
}

// WriteReferenceSafe writes the given reference in the db
// ErrRefExists is returned if the reference already exists
func (b *Backend) WriteReferenceSafe(ref *ginternals.Reference) error {
	if _, ok := b.refs.Load(ref.Name()); ok {
		return ginternals.ErrRefExists
	}
	return b.writeReference(ref)
}

// writeReference writes the given reference on disk. If the
// reference already exists it will be overwritten
func (b *Backend) writeReference(ref *ginternals.Reference) error {
	if !ginternals.IsRefNameValid(ref.Name()) {
		return ginternals.ErrRefNameInvalid
	}

	var target string
	switch ref.Type() {
	case ginternals.SymbolicReference:
		target = fmt.Sprintf("ref: %s\n", ref.SymbolicTarget())
	case ginternals.OidReference:
		target = fmt.Sprintf("%s\n", ref.Target().String())
	default:
		return xerrors.Errorf("reference type %d: %w", ref.Type(), ginternals.ErrUnknownRefType)
	}

	refPath := b.systemPath(ref.Name())
	// Since we can have `/` in the ref name, we need to create
	// the path on the FS
	dir := filepath.Dir(refPath)
	if err := b.fs.MkdirAll(dir, 0o755); err != nil {
		return xerrors.Errorf("could not persist reference to disk: %w", err)
	}

	data := []byte(target)
	if err := afero.WriteFile(b.fs, refPath, data, 0o644); err != nil {
		return xerrors.Errorf("could not persist reference to disk: %w", err)
	}
	b.refs.Store(ref.Name(), data)
	return nil
}

// WalkReferences runs the provided method on all the references
func (b *Backend) WalkReferences(f backend.RefWalkFunc) error {
	var topErr error
	b.refs.Range(func(key, value interface{}) bool {
		name, ok := key.(string)
		if !ok {
			topErr = fmt.Errorf("invalid key type for %v: expected string, got %T", key, key) //nolint:goerr113
			return false
		}
		ref, err := b.Reference(name)
		if err != nil {
			topErr = xerrors.Errorf("could not resolve reference %s: %w", name, err)
			return false
		}
		if err := f(ref); err != nil {
			if err != backend.WalkStop { //nolint:errorlint,goerr113 // it's a fake error so no need to use Error.Is()
				topErr = err
			}
			return false
		}
		return true
	})
	return topErr
}

// RefTree returns a snapshot of every stored reference, structured for
// deterministic enumeration and short-name lookup
func (b *Backend) RefTree() (*ginternals.RefTree, error) {
	tree := ginternals.NewRefTree()
	err := b.WalkReferences(func(ref *ginternals.Reference) error {
		tree.Insert(ref)
		return nil
	})
	if err != nil {
		return nil, xerrors.Errorf("could not walk references: %w", err)
	}
	return tree, nil
}
