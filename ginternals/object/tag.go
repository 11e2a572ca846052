package object

import (
	"fmt"

	"github.com/coreyw/gitdb/ginternals"
)

// TagParams represents all the data needed to create a Tag
// Params starting by Opt are optionals
type TagParams struct {
	Target    *Object
	Name      string
	Tagger    Signature
	Message   string
	OptGPGSig string
}

// Tag represents an annotated tag object
type Tag struct {
	rawObject *Object

	tagger  Signature
	tag     string
	message string

	gpgSig string

	target ginternals.Oid
	typ    Type
}

// NewTag creates a new Tag object
func NewTag(p *TagParams) *Tag {
	return &Tag{
		target:  p.Target.ID(),
		typ:     p.Target.Type(),
		tag:     p.Name,
		tagger:  p.Tagger,
		message: p.Message,
		gpgSig:  p.OptGPGSig,
	}
}

// NewTagFromObject creates a new Tag from a raw git object
//
// A tag is a KVLM document with "object", "type", "tag", "tagger" and
// an optional "gpgsig" header, followed by the tag message.
func NewTagFromObject(o *Object) (*Tag, error) {
	if o.Type() != TypeTag {
		return nil, fmt.Errorf("type %s is not a tag: %w", o.Type(), ErrObjectInvalid)
	}

	doc, err := DecodeKVLM(o.Bytes())
	if err != nil {
		return nil, fmt.Errorf("could not parse tag: %w: %w", ErrTagInvalid, err)
	}

	tag := &Tag{rawObject: o}

	targetRaw := doc.Value("object")
	if targetRaw == nil {
		return nil, fmt.Errorf("tag has no target: %w", ErrTagInvalid)
	}
	tag.target, err = ginternals.NewOidFromChars(targetRaw)
	if err != nil {
		return nil, fmt.Errorf("could not parse target id %q: %w", targetRaw, err)
	}

	typeRaw := doc.Value("type")
	if typeRaw == nil {
		return nil, fmt.Errorf("tag has no type: %w", ErrTagInvalid)
	}
	tag.typ, err = NewTypeFromString(string(typeRaw))
	if err != nil {
		return nil, fmt.Errorf("invalid object type %q: %w", typeRaw, err)
	}

	if tagName := doc.Value("tag"); tagName != nil {
		tag.tag = string(tagName)
	}

	taggerRaw := doc.Value("tagger")
	if taggerRaw == nil {
		return nil, fmt.Errorf("tag has no tagger: %w", ErrTagInvalid)
	}
	tag.tagger, err = NewSignatureFromBytes(taggerRaw)
	if err != nil {
		return nil, fmt.Errorf("could not parse tagger: %w", err)
	}

	if gpgSig := doc.Value("gpgsig"); gpgSig != nil {
		tag.gpgSig = string(gpgSig)
	}
	tag.message = string(doc.Message())

	return tag, nil
}

// ID returns the SHA of the tag object
func (t *Tag) ID() ginternals.Oid {
	return t.ToObject().ID()
}

// Target returns the ID of the object targeted by the tag
func (t *Tag) Target() ginternals.Oid {
	return t.target
}

// Type returns the type of the targeted object
func (t *Tag) Type() Type {
	return t.typ
}

// Name returns the tag's name
func (t *Tag) Name() string {
	return t.tag
}

// Tagger returns the Signature of the person that created the tag
func (t *Tag) Tagger() Signature {
	return t.tagger
}

// Message returns the tag's message
func (t *Tag) Message() string {
	return t.message
}

// GPGSig returns the GPG signature of the tag, if any
func (t *Tag) GPGSig() string {
	return t.gpgSig
}

// ToObject returns the underlying Object
func (t *Tag) ToObject() *Object {
	if t.rawObject != nil {
		return t.rawObject
	}

	doc := NewKVLM()
	doc.Add("object", []byte(t.target.String()))
	doc.Add("type", []byte(t.Type().String()))
	doc.Add("tag", []byte(t.Name()))
	doc.Add("tagger", []byte(t.Tagger().String()))
	if t.gpgSig != "" {
		doc.Add("gpgsig", []byte(t.gpgSig))
	}
	doc.SetMessage([]byte(t.message))

	t.rawObject = New(TypeTag, EncodeKVLM(doc))
	return t.rawObject
}
