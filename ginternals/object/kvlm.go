package object

import (
	"bytes"

	"golang.org/x/xerrors"
)

// ErrKVLMInvalid is returned when a key-value-list-with-message
// document cannot be parsed
var ErrKVLMInvalid = ErrObjectInvalid

// KVLM (key-value-list-with-message) is the textual format shared by
// commit and tag objects: an ordered set of headers, each possibly
// repeated (e.g. "parent" on a merge commit), followed by a blank line
// and a free-form message.
//
// Continuation lines inside a header value are folded (a newline
// followed by a single space) only in the on-disk format; values are
// kept unfolded in memory so a decoded document re-encodes unchanged.
type KVLM struct {
	keys    []string // order of first insertion, one entry per distinct key
	values  map[string][][]byte
	message []byte
}

// NewKVLM returns an empty KVLM document
func NewKVLM() *KVLM {
	return &KVLM{values: map[string][][]byte{}}
}

// Add appends a value for key, preserving any value(s) already present
// under that key. This is what lets a commit carry more than one
// "parent" header.
func (d *KVLM) Add(key string, value []byte) {
	if _, ok := d.values[key]; !ok {
		d.keys = append(d.keys, key)
	}
	d.values[key] = append(d.values[key], value)
}

// Set replaces any value(s) under key with a single value
func (d *KVLM) Set(key string, value []byte) {
	if _, ok := d.values[key]; !ok {
		d.keys = append(d.keys, key)
	}
	d.values[key] = [][]byte{value}
}

// Values returns every value stored under key, unfolded, in the order
// they were added. Returns nil if the key was never set.
//
// Values are kept unfolded in memory regardless of source (Add, Set,
// or DecodeKVLM) so Encode's fold() is the only place folding happens
// - that's what keeps Decode->Encode idempotent.
func (d *KVLM) Values(key string) [][]byte {
	vs, ok := d.values[key]
	if !ok {
		return nil
	}
	out := make([][]byte, len(vs))
	copy(out, vs)
	return out
}

// Value returns the first value stored under key, or nil if the key
// was never set.
func (d *KVLM) Value(key string) []byte {
	vs := d.Values(key)
	if len(vs) == 0 {
		return nil
	}
	return vs[0]
}

// Message returns the document's free-form message
func (d *KVLM) Message() []byte {
	return d.message
}

// SetMessage sets the document's free-form message
func (d *KVLM) SetMessage(msg []byte) {
	d.message = msg
}

func fold(v []byte) []byte {
	return bytes.ReplaceAll(v, []byte("\n"), []byte("\n "))
}

func unfold(v []byte) []byte {
	return bytes.ReplaceAll(v, []byte("\n "), []byte("\n"))
}

// DecodeKVLM parses a raw KVLM document. Headers may be multi-valued:
// every occurrence of a key is preserved, in order, under that key -
// never overwritten by a later occurrence.
func DecodeKVLM(raw []byte) (*KVLM, error) {
	doc := NewKVLM()
	pos := 0
	for {
		nlIdx := bytes.IndexByte(raw[pos:], '\n')
		spIdx := bytes.IndexByte(raw[pos:], ' ')

		// a blank line (nlIdx == 0, i.e. the newline is the very next
		// byte) marks the end of the headers: everything after it is
		// the message.
		if nlIdx == 0 {
			doc.SetMessage(raw[pos+1:])
			return doc, nil
		}
		if nlIdx < 0 {
			return nil, xerrors.Errorf("document has no blank line separating headers from message: %w", ErrKVLMInvalid)
		}

		// a space occurring before the next newline means we're
		// looking at "key value", not a continuation or the blank line
		if spIdx < 0 || spIdx > nlIdx {
			return nil, xerrors.Errorf("expected a key/value pair at offset %d: %w", pos, ErrKVLMInvalid)
		}

		key := string(raw[pos : pos+spIdx])

		// the value may continue over multiple lines: every
		// continuation line starts with a single leading space. Find
		// the next line that does NOT start with a space; that's
		// where the value ends.
		end := pos + spIdx + 1
		for {
			next := bytes.IndexByte(raw[end:], '\n')
			if next < 0 {
				return nil, xerrors.Errorf("unterminated value for key %q: %w", key, ErrKVLMInvalid)
			}
			end += next
			if end+1 < len(raw) && raw[end+1] == ' ' {
				end++ // skip past this newline, the value continues
				continue
			}
			break
		}

		value := raw[pos+spIdx+1 : end]
		doc.Add(key, unfold(value))
		pos = end + 1
	}
}

// EncodeKVLM serializes a KVLM document back to its textual form.
// Keys are written in the order they were first added; multi-valued
// keys are written once per value, in the order they were added.
func EncodeKVLM(doc *KVLM) []byte {
	buf := &bytes.Buffer{}
	for _, key := range doc.keys {
		for _, v := range doc.values[key] {
			buf.WriteString(key)
			buf.WriteByte(' ')
			buf.Write(fold(v))
			buf.WriteByte('\n')
		}
	}
	buf.WriteByte('\n')
	buf.Write(doc.message)
	return buf.Bytes()
}
