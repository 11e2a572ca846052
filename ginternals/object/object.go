// Package object contains methods and objects to work with git objects
package object

import (
	"bytes"
	"compress/zlib"
	"errors"
	"fmt"
	"strconv"
	"sync"

	"github.com/coreyw/gitdb/ginternals"
	"golang.org/x/xerrors"
)

var (
	// ErrObjectUnknown represents an error thrown when encountering an
	// unknown object kind
	ErrObjectUnknown = errors.New("invalid object type")

	// ErrObjectInvalid represents an error thrown when an object contains
	// unexpected data or when the wrong object is provided to a method.
	ErrObjectInvalid = errors.New("invalid object")

	// ErrTreeInvalid represents an error thrown when parsing an invalid
	// tree object
	ErrTreeInvalid = errors.New("invalid tree")

	// ErrCommitInvalid represents an error thrown when parsing an invalid
	// commit object
	ErrCommitInvalid = errors.New("invalid commit")

	// ErrTagInvalid represents an error thrown when parsing an invalid
	// tag object
	ErrTagInvalid = errors.New("invalid tag")
)

// Type represents the kind of a git object
type Type int8

// The four object kinds this object database stores. Packfile delta
// types aren't modeled: this library never reads or writes packfiles.
const (
	TypeCommit Type = 1
	TypeTree   Type = 2
	TypeBlob   Type = 3
	TypeTag    Type = 4
)

func (t Type) String() string {
	switch t {
	case TypeCommit:
		return "commit"
	case TypeTree:
		return "tree"
	case TypeBlob:
		return "blob"
	case TypeTag:
		return "tag"
	default:
		panic(fmt.Sprintf("unknown object type %d", t))
	}
}

// IsValid checks if the object type is one of the 4 supported kinds
func (t Type) IsValid() bool {
	switch t {
	case TypeCommit, TypeTree, TypeBlob, TypeTag:
		return true
	default:
		return false
	}
}

// NewTypeFromString returns a Type from its string representation
func NewTypeFromString(t string) (Type, error) {
	switch t {
	case "commit":
		return TypeCommit, nil
	case "tree":
		return TypeTree, nil
	case "blob":
		return TypeBlob, nil
	case "tag":
		return TypeTag, nil
	default:
		return 0, ErrObjectUnknown
	}
}

// Object represents a git object. An object can be of multiple types
// but they all share the same framing and storage mechanism.
// https://git-scm.com/book/en/v2/Git-Internals-Git-Objects
type Object struct {
	id      ginternals.Oid
	typ     Type
	content []byte

	idProcessing sync.Once
}

// New creates a new git object of the given type
func New(typ Type, content []byte) *Object {
	o := &Object{
		typ:     typ,
		content: content,
	}
	o.id, _ = o.build()
	return o
}

// Decode parses the framed representation of an object
// ("<type> <size>\0<content>") as read from the object database,
// after zlib decompression.
func Decode(raw []byte) (*Object, error) {
	sp := bytes.IndexByte(raw, ' ')
	if sp < 0 {
		return nil, xerrors.Errorf("missing type: %w", ErrObjectInvalid)
	}
	typ, err := NewTypeFromString(string(raw[:sp]))
	if err != nil {
		return nil, xerrors.Errorf("%s: %w", raw[:sp], err)
	}

	nul := bytes.IndexByte(raw[sp:], 0)
	if nul < 0 {
		return nil, xerrors.Errorf("missing size: %w", ErrObjectInvalid)
	}
	nul += sp

	size, err := strconv.Atoi(string(raw[sp+1 : nul]))
	if err != nil {
		return nil, xerrors.Errorf("invalid size: %w", ErrObjectInvalid)
	}

	content := raw[nul+1:]
	if len(content) != size {
		return nil, xerrors.Errorf("size mismatch: header says %d, got %d: %w", size, len(content), ErrObjectInvalid)
	}

	return New(typ, content), nil
}

// ID returns the ID of the object.
func (o *Object) ID() ginternals.Oid {
	o.idProcessing.Do(func() {
		o.id, _ = o.build()
	})
	return o.id
}

// Size returns the size of the object
func (o *Object) Size() int {
	return len(o.content)
}

// Type returns the Type for this object
func (o *Object) Type() Type {
	return o.typ
}

// Bytes returns the object's contents
func (o *Object) Bytes() []byte {
	return o.content
}

func (o *Object) build() (oid ginternals.Oid, data []byte) {
	// Quick reminder that the Write* methods on bytes.Buffer never fail,
	// the error returned is always nil
	w := new(bytes.Buffer)
	w.WriteString(o.Type().String())
	w.WriteByte(' ')
	w.WriteString(strconv.Itoa(o.Size()))
	w.WriteByte(0)
	w.Write(o.Bytes())

	data = w.Bytes()
	oid = ginternals.NewOidFromContent(data)
	return oid, data
}

// Compress returns the object zlib-compressed, framed as
// "<type> <size>\0<content>"
func (o *Object) Compress() (data []byte, err error) {
	_, fileContent := o.build()

	compressedContent := new(bytes.Buffer)
	zw := zlib.NewWriter(compressedContent)

	if _, err = zw.Write(fileContent); err != nil {
		return nil, xerrors.Errorf("could not zlib the object: %w", err)
	}
	// zw.Write only buffers into the zlib stream; the compressed body
	// and its trailer aren't emitted until Close flushes the writer.
	if err = zw.Close(); err != nil {
		return nil, xerrors.Errorf("could not close the zlib writer: %w", err)
	}
	return compressedContent.Bytes(), nil
}

// AsBlob parses the object as a Blob
func (o *Object) AsBlob() *Blob {
	return NewBlob(o)
}

// AsTree parses the object as a Tree
func (o *Object) AsTree() (*Tree, error) {
	return NewTreeFromObject(o)
}

// AsCommit parses the object as a Commit
func (o *Object) AsCommit() (*Commit, error) {
	return NewCommitFromObject(o)
}

// AsTag parses the object as a Tag
func (o *Object) AsTag() (*Tag, error) {
	return NewTagFromObject(o)
}
