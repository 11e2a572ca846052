package ginternals

import (
	"bytes"
	"errors"
	"sort"
	"strings"

	"golang.org/x/xerrors"
)

// Common ref names
const (
	// Head is a reference to the current branch, or to a commit if
	// we're detached
	Head = "HEAD"
	// OrigHead is a backup reference of HEAD set during destructive commands
	// such as rebase, merge, etc. and can be used to revert an operation
	OrigHead = "ORIG_HEAD"
	// MergeHead is a reference to the commit that is being merged
	// into the current branch
	MergeHead = "MERGE_HEAD"
	// CherryPickHead is a reference to the commit that is being
	// cherry-picked
	CherryPickHead = "CHERRY_PICK_HEAD"
	// Master correspond to the default branch name if none was
	// specified
	Master = "master"

	// FetchHead is a reference to the most recently fetched branch
	// TODO(melvin): Removed because the format is not currently
	// supported. It's a list of commit IDs with the branch name,
	// the origin, and other extra information. Example:
	//     bbb720a96e4c29b9950a4c577c98470a4d5dd089		branch 'master' of github.com:Nivl/git-go
	//     5f35f2dc6cec7356da02ca26192ce2bc3f271e79	not-for-merge	branch 'ml/feat/clone' of github.com:Nivl/git-go
	// FetchHead = "FETCH_HEAD"
)

var (
	// ErrRefNotFound is an error thrown when trying to act on a
	// reference that doesn't exists
	ErrRefNotFound = errors.New("reference not found")

	// ErrRefExists is an error thrown when trying to act on a
	// reference that should not exist, but does
	ErrRefExists = errors.New("reference already exists")

	// ErrRefNameInvalid is an error thrown when the name of a reference
	// is not valid
	ErrRefNameInvalid = errors.New("reference name is not valid")

	// ErrRefInvalid is an error thrown when a reference is not valid
	ErrRefInvalid = errors.New("reference is not valid")

	// ErrPackedRefInvalid is an error thrown when the packed-refs
	// file cannot be parsed properly
	ErrPackedRefInvalid = errors.New("packed-refs file is invalid")

	// ErrUnknownRefType is an error thrown when the type of a reference
	// is unknown
	ErrUnknownRefType = errors.New("unknown reference type")
)

// ReferenceType represents the type of a reference
type ReferenceType int8

const (
	// OidReference represents a reference that targets an Oid
	OidReference ReferenceType = 1
	// SymbolicReference represents a reference that targets another
	// reference
	SymbolicReference ReferenceType = 2
)

// Reference represents a git reference
// https://git-scm.com/book/en/v2/Git-Internals-Git-References
type Reference struct {
	name   string
	target string
	id     Oid
	typ    ReferenceType
}

// RefContent represents a method that returns the content of reference
// This is used so we can do the process here, without depending
// on a specific backend or having circular dependencies
type RefContent func(name string) ([]byte, error)

// maxRefResolutionDepth bounds how many symbolic hops ResolveReference
// will follow before giving up. Real refs never nest this deep; this
// exists purely to defeat cycles.
const maxRefResolutionDepth = 10

// ResolveReference resolves symbolic references
func ResolveReference(name string, finder RefContent) (*Reference, error) {
	return resolveRefs(name, finder, 0)
}

// resolveRefs resolves references recursively, bounded by depth rather
// than a visited-set: a bound catches both direct cycles and the
// "never actually cycles but nests too deep to be legitimate" case with
// one mechanism.
func resolveRefs(name string, finder RefContent, depth int) (*Reference, error) {
	if depth >= maxRefResolutionDepth {
		return nil, xerrors.Errorf("%q: %w", name, ErrRefCycle)
	}

	if !IsRefNameValid(name) {
		return nil, xerrors.Errorf(`ref "%s": %w`, name, ErrRefNameInvalid)
	}

	data, err := finder(name)
	if err != nil {
		return nil, err
	}
	data = bytes.Trim(data, " \n")

	// we're expecting at the very least 6 char:
	// "ref: " followed by a ref
	if len(data) < 6 {
		return nil, ErrRefInvalid
	}

	// if the reference is symbolic, we need to follow to get the target
	if string(data[0:5]) == "ref: " {
		symbolicTarget := string(data[5:])
		ref, err := resolveRefs(symbolicTarget, finder, depth+1)
		if err != nil {
			// The target may be a branch that has no commit yet, like
			// HEAD in a freshly created repository: the symbolic ref is
			// still returned, with a null target
			if !xerrors.Is(err, ErrRefNotFound) {
				return nil, err
			}
			ref = &Reference{id: NullOid}
		}
		return &Reference{
			typ:    SymbolicReference,
			name:   name,
			id:     ref.id,
			target: symbolicTarget,
		}, nil
	}

	oid, err := NewOidFromChars(data)
	if err != nil {
		return nil, ErrRefInvalid
	}
	return &Reference{
		typ:  OidReference,
		name: name,
		id:   oid,
	}, nil
}

// NewReference return a new Reference object that targets
// an object
func NewReference(name string, target Oid) *Reference {
	return &Reference{
		typ:  OidReference,
		name: name,
		id:   target,
	}
}

// NewSymbolicReference return a new Reference object that targets
// another reference.
// Example HEAD targeting heads/master
func NewSymbolicReference(name, target string) *Reference {
	return &Reference{
		typ:    SymbolicReference,
		name:   name,
		target: target,
	}
}

// Name returns the full name fo the reference:
// example: refs/heads/master
func (ref *Reference) Name() string {
	return ref.name
}

// Target returns the ID targeted by a reference
func (ref *Reference) Target() Oid {
	return ref.id
}

// Type returns the type of a reference
func (ref *Reference) Type() ReferenceType {
	return ref.typ
}

// SymbolicTarget returns the symbolic target of a reference
func (ref *Reference) SymbolicTarget() string {
	return ref.target
}

// IsRefNameValid returns whether the name of a reference is valid or not
// https://stackoverflow.com/a/12093994/382879
func IsRefNameValid(name string) bool {
	// the reference name cannot:
	// - be empty
	// - start by a "/"
	// - end by a "/"
	// - end by .
	if name == "" || name == "/" || name[len(name)-1] == '/' || name[len(name)-1] == '.' {
		return false
	}

	// the reference name cannot contain:
	// - *
	// - ?
	// - ~
	// - :
	// - ^
	// - @{
	// - \
	// - ..
	// - [
	// - a space
	// - an ASCII char below 32 or a DEL (ASCII 127)
	for i, c := range name {
		if c < 32 || c == 127 {
			return false
		}
		if c == '*' || c == '?' || c == '~' || c == '^' {
			return false
		}
		if c == ' ' || c == '[' || c == '\\' || c == ':' {
			return false
		}
		if i < len(name)-1 {
			substr := name[i : i+2]
			if substr == "@{" || substr == ".." {
				return false
			}
		}
	}

	segments := strings.Split(name, "/")
	for _, s := range segments {
		// no segment cannot:
		// - be empty
		// - start by a dot
		// - end by a dot
		// - end by ".lock"
		if s == "" || s[0] == '.' || s[len(s)-1] == '.' || strings.HasSuffix(s, ".lock") {
			return false
		}
	}

	return true
}

// RefTree is an in-memory, deterministically-ordered index of
// references, keyed by their full name. It exists to give the name
// resolver a single leaf-name search ("find the ref whose last path
// segment is `v1`") without ever matching more than one reference per
// lookup, even when the tree is walked recursively.
type RefTree struct {
	refs map[string]*Reference
}

// NewRefTree returns an empty RefTree
func NewRefTree() *RefTree {
	return &RefTree{refs: map[string]*Reference{}}
}

// Insert adds a reference to the tree, keyed by its full name
func (t *RefTree) Insert(ref *Reference) {
	t.refs[ref.Name()] = ref
}

// Walk visits every reference in the tree in deterministic,
// lexicographic order of their full name
func (t *RefTree) Walk(fn func(ref *Reference)) {
	names := make([]string, 0, len(t.refs))
	for name := range t.refs {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		fn(t.refs[name])
	}
}

// FindLeaf returns the first reference, in lexicographic order of its
// full name, whose last path segment equals leaf.
//
// This replaces a recursive "search one subtree, then the next"
// approach whose result variable got overwritten by every subtree that
// didn't match, returning the last subtree's answer (nil, in the
// common case) instead of the first real match. Walking the fully
// sorted, flattened set of names and returning on the first hit cannot
// exhibit that bug: there's only one loop, and it stops the moment it
// finds something.
func (t *RefTree) FindLeaf(leaf string) (*Reference, bool) {
	names := make([]string, 0, len(t.refs))
	for name := range t.refs {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		segments := strings.Split(name, "/")
		if segments[len(segments)-1] == leaf {
			return t.refs[name], true
		}
	}
	return nil, false
}
