// Package gitdb implements a content-addressed object database and
// on-disk repository layout compatible with git's core plumbing:
// loose objects, references, and the index.
package gitdb

import (
	"regexp"

	"github.com/coreyw/gitdb/backend"
	"github.com/coreyw/gitdb/backend/fsbackend"
	"github.com/coreyw/gitdb/ginternals"
	"github.com/coreyw/gitdb/ginternals/config"
	"github.com/coreyw/gitdb/ginternals/object"
	"github.com/coreyw/gitdb/internal/pathutil"
	"golang.org/x/xerrors"
)

// shortOidRe matches a candidate hex OID or OID prefix, 4 to 40 chars
var shortOidRe = regexp.MustCompile(`^[0-9A-Fa-f]{4,40}$`)

// Repository represents a git repository: a worktree path, a gitdir
// path, and the parsed configuration tying the two together.
//
// A Repository owns its config and its view of the filesystem;
// objects returned by ObjectRead only carry the bytes/fields needed
// to answer the caller, not a back-reference to the repository, so
// walking parents/trees always goes through the repository again.
type Repository struct {
	// Config is the resolved configuration used to open/create this
	// repository
	Config *config.Config
	dotGit backend.Backend
}

// CreateOptions contains the optional data used to create a repository
type CreateOptions struct {
	// IsBare states whether the repository has no working tree
	IsBare bool
	// InitialBranchName is the name of the branch HEAD will point to.
	// Defaults to the init.defaultBranch config value, or to
	// ginternals.Master if it isn't set.
	InitialBranchName string
	// GitBackend is the backend used to store and retrieve data from
	// the odb. Defaults to a filesystem-backed one.
	GitBackend backend.Backend
}

// Create initializes a new repository at the given path: worktree,
// .git directory, the default refs/tags and refs/heads directories,
// description and config files, and a HEAD pointing at the initial
// branch.
func Create(path string) (*Repository, error) {
	return CreateWithOptions(path, CreateOptions{})
}

// CreateWithOptions initializes a new repository at the given path,
// using the provided options
func CreateWithOptions(path string, opts CreateOptions) (*Repository, error) {
	cfg, err := config.LoadConfigSkipEnv(config.LoadConfigOptions{
		WorkingDirectory: path,
		IsBare:           opts.IsBare,
		SkipGitDirLookUp: true,
	})
	if err != nil {
		return nil, xerrors.Errorf("could not resolve repository config: %w", err)
	}
	return CreateWithParams(cfg, opts)
}

// CreateWithParams initializes a new repository using an
// already-resolved config, as produced by config.LoadConfig
func CreateWithParams(cfg *config.Config, opts CreateOptions) (*Repository, error) {
	r := &Repository{
		Config: cfg,
		dotGit: opts.GitBackend,
	}
	if r.dotGit == nil {
		b, err := fsbackend.New(cfg.GitDirPath)
		if err != nil {
			return nil, xerrors.Errorf("could not create backend: %w", err)
		}
		r.dotGit = b
	}

	if err := r.dotGit.Init(); err != nil {
		return nil, xerrors.Errorf("could not create %s: %w", cfg.GitDirPath, err)
	}

	if err := cfg.PersistCoreSettings(opts.IsBare); err != nil {
		return nil, xerrors.Errorf("could not persist core config: %w", err)
	}

	// Running Create against an already-initialized repository is
	// safe: HEAD is only written if it doesn't already point
	// somewhere, so re-running never clobbers an existing branch.
	if _, err := r.dotGit.Reference(ginternals.Head); err != nil {
		branch := opts.InitialBranchName
		if branch == "" {
			if name, ok := cfg.DefaultBranch(); ok {
				branch = name
			} else {
				branch = ginternals.Master
			}
		}
		ref := ginternals.NewSymbolicReference(ginternals.Head, ginternals.LocalBranchFullName(branch))
		if err := r.dotGit.WriteReference(ref); err != nil {
			return nil, xerrors.Errorf("could not write %s: %w", ginternals.Head, err)
		}
	}

	return r, nil
}

// OpenOptions contains the optional data used to open a repository
type OpenOptions struct {
	// IsBare states whether the repository has no working tree
	IsBare bool
	// GitBackend is the backend used to store and retrieve data from
	// the odb. Defaults to a filesystem-backed one.
	GitBackend backend.Backend
}

// Open loads an existing repository rooted at the given path
func Open(path string) (*Repository, error) {
	return OpenWithOptions(path, OpenOptions{})
}

// OpenWithOptions loads an existing repository rooted at the given
// path, using the provided options
func OpenWithOptions(path string, opts OpenOptions) (*Repository, error) {
	cfg, err := config.LoadConfigSkipEnv(config.LoadConfigOptions{
		WorkingDirectory: path,
		IsBare:           opts.IsBare,
	})
	if err != nil {
		return nil, xerrors.Errorf("could not resolve repository config: %w", err)
	}
	return OpenWithParams(cfg, opts)
}

// OpenWithParams loads an existing repository using an
// already-resolved config, as produced by config.LoadConfig
func OpenWithParams(cfg *config.Config, opts OpenOptions) (*Repository, error) {
	r := &Repository{
		Config: cfg,
		dotGit: opts.GitBackend,
	}
	if r.dotGit == nil {
		b, err := fsbackend.New(cfg.GitDirPath)
		if err != nil {
			return nil, xerrors.Errorf("could not create backend: %w", err)
		}
		r.dotGit = b
	}

	// Since we can't reliably check for the directory's existence
	// through the backend interface, we instead check that HEAD
	// resolves, since it should always be there on a valid repo
	if _, err := r.dotGit.Reference(ginternals.Head); err != nil {
		return nil, ginternals.ErrRepositoryNotFound
	}

	return r, nil
}

// Find walks up from the given path until it finds a directory
// containing a .git directory, then opens the repository rooted
// there
func Find(path string) (*Repository, error) {
	root, err := pathutil.WorkingTreeFromPath(path)
	if err != nil {
		return nil, ginternals.ErrRepositoryNotFound
	}
	return Open(root)
}

// IsBare returns whether the repository has no working tree
func (r *Repository) IsBare() bool {
	return r.Config.WorkTreePath == ""
}

// Close releases any resource held by the repository's backend
func (r *Repository) Close() error {
	return r.dotGit.Close()
}

// ObjectRead returns the object matching the given oid
func (r *Repository) ObjectRead(oid ginternals.Oid) (*object.Object, error) {
	return r.dotGit.Object(oid)
}

// ObjectWrite persists an object and returns its oid
func (r *Repository) ObjectWrite(o *object.Object) (ginternals.Oid, error) {
	return r.dotGit.WriteObject(o)
}

// IndexRead returns the repository's staging area
func (r *Repository) IndexRead() (*ginternals.Index, error) {
	return r.dotGit.ReadIndex()
}

// IndexWrite persists the repository's staging area
func (r *Repository) IndexWrite(idx *ginternals.Index) error {
	return r.dotGit.WriteIndex(idx)
}

// Refs returns a snapshot of the repository's references, structured
// for deterministic enumeration and short-name lookup
func (r *Repository) Refs() (*ginternals.RefTree, error) {
	return r.dotGit.RefTree()
}

// Reference returns a single, fully-resolved reference by name
func (r *Repository) Reference(name string) (*ginternals.Reference, error) {
	return r.dotGit.Reference(name)
}

// ObjectFind resolves name to an oid.
//
// Resolution is tried, in order:
//  1. name == HEAD resolves HEAD.
//  2. name looks like a hex oid or oid prefix (4 to 40 hex chars): a
//     full 40-char name is accepted as-is; a shorter one is resolved
//     by walking every loose-object id of the backend and looking for
//     a single match.
//  3. name is searched for as a leaf in the ref tree; the first match
//     in the deterministic (lexicographic) traversal wins.
//
// If wantKind is non-zero, the resolved oid is peeled until an object
// of that kind is reached: a tag peels to its target, a commit peels
// to its tree when wantKind is object.TypeTree.
func (r *Repository) ObjectFind(name string, wantKind object.Type) (ginternals.Oid, error) {
	oid, err := r.resolveName(name)
	if err != nil {
		return ginternals.NullOid, err
	}
	if wantKind == 0 {
		return oid, nil
	}
	return r.peel(oid, wantKind)
}

func (r *Repository) resolveName(name string) (ginternals.Oid, error) {
	if name == ginternals.Head {
		ref, err := r.dotGit.Reference(ginternals.Head)
		if err != nil {
			return ginternals.NullOid, xerrors.Errorf("could not resolve %s: %w", ginternals.Head, err)
		}
		return ref.Target(), nil
	}

	if shortOidRe.MatchString(name) {
		return r.resolveOidPrefix(name)
	}

	tree, err := r.dotGit.RefTree()
	if err != nil {
		return ginternals.NullOid, xerrors.Errorf("could not walk references: %w", err)
	}
	if ref, found := tree.FindLeaf(name); found {
		return ref.Target(), nil
	}

	return ginternals.NullOid, ginternals.ErrNoMatch
}

func (r *Repository) resolveOidPrefix(prefix string) (ginternals.Oid, error) {
	if len(prefix) == 40 {
		oid, err := ginternals.NewOidFromStr(prefix)
		if err != nil {
			return ginternals.NullOid, xerrors.Errorf("%s: %w", prefix, ginternals.ErrNoMatch)
		}
		return oid, nil
	}

	var matches []ginternals.Oid
	err := r.dotGit.WalkLooseObjectIDs(func(oid ginternals.Oid) error {
		s := oid.String()
		if len(s) >= len(prefix) && equalFoldHex(s[:len(prefix)], prefix) {
			matches = append(matches, oid)
		}
		return nil
	})
	if err != nil {
		return ginternals.NullOid, xerrors.Errorf("could not walk loose objects: %w", err)
	}

	switch len(matches) {
	case 0:
		return ginternals.NullOid, ginternals.ErrNoMatch
	case 1:
		return matches[0], nil
	default:
		return ginternals.NullOid, ginternals.ErrAmbiguous
	}
}

// equalFoldHex compares two hex strings case-insensitively without
// allocating
func equalFoldHex(a, b string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := 0; i < len(a); i++ {
		ca, cb := a[i], b[i]
		if ca >= 'A' && ca <= 'F' {
			ca += 'a' - 'A'
		}
		if cb >= 'A' && cb <= 'F' {
			cb += 'a' - 'A'
		}
		if ca != cb {
			return false
		}
	}
	return true
}

func (r *Repository) peel(oid ginternals.Oid, wantKind object.Type) (ginternals.Oid, error) {
	o, err := r.dotGit.Object(oid)
	if err != nil {
		return ginternals.NullOid, xerrors.Errorf("could not read %s: %w", oid.String(), err)
	}

	if o.Type() == wantKind {
		return oid, nil
	}

	switch o.Type() {
	case object.TypeTag:
		tag, err := o.AsTag()
		if err != nil {
			return ginternals.NullOid, err
		}
		return r.peel(tag.Target(), wantKind)
	case object.TypeCommit:
		if wantKind != object.TypeTree {
			return ginternals.NullOid, ginternals.ErrTypeMismatch
		}
		c, err := o.AsCommit()
		if err != nil {
			return ginternals.NullOid, err
		}
		return r.peel(c.TreeID(), wantKind)
	default:
		return ginternals.NullOid, ginternals.ErrTypeMismatch
	}
}

// TagCreateLight creates a lightweight tag: a reference under
// refs/tags/ pointing directly at target
func (r *Repository) TagCreateLight(name string, target ginternals.Oid) error {
	ref := ginternals.NewReference(ginternals.LocalTagFullName(name), target)
	return r.dotGit.WriteReferenceSafe(ref)
}

// TagCreateAnnotated creates an annotated tag: a tag object pointing
// at target, stored in the odb, and a reference under refs/tags/
// pointing at the tag object
func (r *Repository) TagCreateAnnotated(name string, target *object.Object, tagger object.Signature, message string) (ginternals.Oid, error) {
	tag := object.NewTag(&object.TagParams{
		Target:  target,
		Name:    name,
		Tagger:  tagger,
		Message: message,
	})
	oid, err := r.dotGit.WriteObject(tag.ToObject())
	if err != nil {
		return ginternals.NullOid, xerrors.Errorf("could not persist tag object: %w", err)
	}

	ref := ginternals.NewReference(ginternals.LocalTagFullName(name), oid)
	if err := r.dotGit.WriteReferenceSafe(ref); err != nil {
		return ginternals.NullOid, xerrors.Errorf("could not write %s: %w", ref.Name(), err)
	}
	return oid, nil
}
