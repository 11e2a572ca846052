package ginternals

import "errors"

var (
	// ErrObjectNotFound is returned when an object cannot be found in
	// the object database
	ErrObjectNotFound = errors.New("object not found")

	// ErrObjectInvalid is returned when the bytes of an object cannot
	// be decoded: corrupted framing, unknown kind, or a size that
	// doesn't match the payload
	ErrObjectInvalid = errors.New("object is malformed")

	// ErrObjectUnknownKind is returned when an object's framing names
	// a kind that isn't one of blob/tree/commit/tag
	ErrObjectUnknownKind = errors.New("unknown object kind")

	// ErrRepositoryNotFound is returned when no .git directory could
	// be found by walking up from the starting directory
	ErrRepositoryNotFound = errors.New("not a repository")

	// ErrRepositoryExists reports a repository created in a location
	// that's already one. Create is idempotent and doesn't return it.
	ErrRepositoryExists = errors.New("repository already exists")

	// ErrUnsupportedFormatVersion reports a repository whose
	// core.repositoryformatversion isn't one this library understands.
	// Open doesn't read core.repositoryformatversion and doesn't
	// return it.
	ErrUnsupportedFormatVersion = errors.New("unsupported repository format version")

	// ErrPathConflict is returned when a path that's expected to be a
	// directory is a file, or vice versa
	ErrPathConflict = errors.New("path conflict")

	// ErrPathNotFound is returned when a path is expected to exist but
	// doesn't, and the caller didn't ask for it to be created
	ErrPathNotFound = errors.New("path not found")

	// ErrIndexMalformed is returned when the index file cannot be
	// decoded: bad magic, bad checksum, truncated entry, etc.
	ErrIndexMalformed = errors.New("index is malformed")

	// ErrNoMatch is returned by the name resolver when nothing matches
	// the provided revision
	ErrNoMatch = errors.New("no match")

	// ErrAmbiguous is returned by the name resolver when more than one
	// object matches a short hash
	ErrAmbiguous = errors.New("ambiguous reference")

	// ErrTypeMismatch is returned when a resolved object can't be
	// peeled to the kind the caller asked for
	ErrTypeMismatch = errors.New("object type mismatch")

	// ErrRefCycle is returned when following symbolic references loops
	// back on itself, or exceeds the maximum resolution depth
	ErrRefCycle = errors.New("reference cycle detected")
)
