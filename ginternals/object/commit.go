package object

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/coreyw/gitdb/ginternals"
	"github.com/coreyw/gitdb/internal/readutil"
)

// ErrSignatureInvalid is an error thrown when the signature of a commit
// couldn't be parsed
var ErrSignatureInvalid = fmt.Errorf("commit signature is invalid")

// Signature represents the author/committer and time of a commit
type Signature struct {
	Time  time.Time
	Name  string
	Email string
}

// String returns a stringified version of the Signature
func (s Signature) String() string {
	return fmt.Sprintf("%s <%s> %d %s", s.Name, s.Email, s.Time.Unix(), s.Time.Format("-0700"))
}

// IsZero returns whether the signature has Zero value
func (s Signature) IsZero() bool {
	return s.Time.IsZero() && s.Name == "" && s.Email == ""
}

// NewSignature generates a signature at the current date and time
func NewSignature(name, email string) Signature {
	return Signature{
		Name:  name,
		Email: email,
		Time:  time.Now(),
	}
}

// NewSignatureFromBytes returns a signature from an array of byte
//
// A signature has the following format:
// User Name <user.email@domain.tld> timestamp timezone
// Ex:
// Melvin Laplanche <melvin.wont.reply@gmail.com> 1566115917 -0700
func NewSignatureFromBytes(b []byte) (Signature, error) {
	sig := Signature{}

	// First we get the name which will have the following format
	// "User Name " (with the extra space)
	data := readutil.ReadTo(b, '<')
	if len(data) == 0 {
		if len(b) == 0 {
			return sig, fmt.Errorf("couldn't retrieve the name: %w", ErrSignatureInvalid)
		}
		return sig, fmt.Errorf("signature stopped after the name: %w", ErrSignatureInvalid)
	}
	sig.Name = strings.TrimSpace(string(data))
	offset := len(data) + 1 // +1 to skip the "<"
	if offset >= len(b) {
		return sig, fmt.Errorf("couldn't retrieve the email: %w", ErrSignatureInvalid)
	}

	// Now we get the email, which is between "<" and ">"
	data = readutil.ReadTo(b[offset:], '>')
	if len(data) == 0 {
		return sig, fmt.Errorf("couldn't retrieve the email: %w", ErrSignatureInvalid)
	}
	sig.Email = string(data)
	// +2 to skip the "> "
	offset += len(data) + 2
	if offset >= len(b) {
		return sig, fmt.Errorf("signature stopped after the email: %w", ErrSignatureInvalid)
	}

	// Next is the timestamp and the timezone
	timestamp := readutil.ReadTo(b[offset:], ' ')
	if len(timestamp) == 0 {
		return sig, fmt.Errorf("couldn't retrieve the timestamp: %w", ErrSignatureInvalid)
	}
	offset += len(timestamp) + 1 // +1 to skip the " "
	if offset >= len(b) {
		return sig, fmt.Errorf("signature stopped after the timestamp: %w", ErrSignatureInvalid)
	}

	t, err := strconv.ParseInt(string(timestamp), 10, 64)
	if err != nil {
		return sig, fmt.Errorf("invalid timestamp %s: %w", timestamp, err)
	}
	sig.Time = time.Unix(t, 0)

	// To get and set the timezone we can just parse the time with an empty
	// date and copy it over to the signature
	timezone := b[offset:]
	tz, err := time.Parse("-0700", string(timezone))
	if err != nil {
		return sig, fmt.Errorf("invalid timezone format %s: %w", timezone, err)
	}
	sig.Time = sig.Time.In(tz.Location())
	return sig, nil
}

// CommitOptions represents all the optional data available to create a commit
type CommitOptions struct {
	Message string
	GPGSig  string
	// Committer represent the person creating the commit.
	// If not provided, the author will be used as committer
	Committer Signature
	ParentsID []ginternals.Oid
}

// Commit represents a commit object
type Commit struct {
	rawObject *Object

	author    Signature
	committer Signature

	gpgSig  string
	message string

	parentIDs []ginternals.Oid
	treeID    ginternals.Oid
}

// NewCommit creates a new Commit object
// Any provided Oids won't be checked
func NewCommit(treeID ginternals.Oid, author Signature, opts *CommitOptions) *Commit {
	c := &Commit{
		treeID:    treeID,
		author:    author,
		committer: opts.Committer,
		message:   opts.Message,
		parentIDs: opts.ParentsID,
		gpgSig:    opts.GPGSig,
	}

	if c.committer.IsZero() {
		c.committer = author
	}
	c.rawObject = c.ToObject()

	return c
}

// NewCommitFromObject creates a commit from a raw object
//
// A commit is a KVLM document with "tree", "parent" (0 or more),
// "author", "committer" and an optional "gpgsig" header, followed by
// the commit message.
func NewCommitFromObject(o *Object) (*Commit, error) {
	if o.Type() != TypeCommit {
		return nil, fmt.Errorf("type %s is not a commit: %w", o.Type(), ErrObjectInvalid)
	}

	doc, err := DecodeKVLM(o.Bytes())
	if err != nil {
		return nil, fmt.Errorf("could not parse commit: %w: %w", ErrCommitInvalid, err)
	}

	ci := &Commit{rawObject: o}

	treeRaw := doc.Value("tree")
	if treeRaw == nil {
		return nil, fmt.Errorf("commit has no tree: %w", ErrCommitInvalid)
	}
	ci.treeID, err = ginternals.NewOidFromChars(treeRaw)
	if err != nil {
		return nil, fmt.Errorf("could not parse tree id %q: %w", treeRaw, err)
	}

	for _, p := range doc.Values("parent") {
		oid, err := ginternals.NewOidFromChars(p)
		if err != nil {
			return nil, fmt.Errorf("could not parse parent id %q: %w", p, err)
		}
		ci.parentIDs = append(ci.parentIDs, oid)
	}

	authorRaw := doc.Value("author")
	if authorRaw == nil {
		return nil, fmt.Errorf("commit has no author: %w", ErrCommitInvalid)
	}
	ci.author, err = NewSignatureFromBytes(authorRaw)
	if err != nil {
		return nil, fmt.Errorf("could not parse author signature: %w", err)
	}

	if committerRaw := doc.Value("committer"); committerRaw != nil {
		ci.committer, err = NewSignatureFromBytes(committerRaw)
		if err != nil {
			return nil, fmt.Errorf("could not parse committer signature: %w", err)
		}
	}

	if gpgSig := doc.Value("gpgsig"); gpgSig != nil {
		ci.gpgSig = string(gpgSig)
	}
	ci.message = string(doc.Message())

	return ci, nil
}

// ID returns the SHA of the commit object
func (c *Commit) ID() ginternals.Oid {
	return c.rawObject.ID()
}

// Author returns the Signature of the person that made the changes
func (c *Commit) Author() Signature {
	return c.author
}

// Committer returns the Signature of the person that created the commit
func (c *Commit) Committer() Signature {
	return c.committer
}

// Message returns the commit's message
func (c *Commit) Message() string {
	return c.message
}

// ParentIDs returns the list of SHA of the parent commits (if any)
// - The first commit of an orphan branch has 0 parents
// - A regular commit or the result of a fast-forward merge has 1 parent
// - A true merge (no fast-forward) has 2 or more parents
func (c *Commit) ParentIDs() []ginternals.Oid {
	out := make([]ginternals.Oid, len(c.parentIDs))
	copy(out, c.parentIDs)
	return out
}

// TreeID returns the SHA of the commit's tree
func (c *Commit) TreeID() ginternals.Oid {
	return c.treeID
}

// GPGSig returns the GPG signature of the commit, if any
func (c *Commit) GPGSig() string {
	return c.gpgSig
}

// ToObject returns the underlying Object
func (c *Commit) ToObject() *Object {
	if c.rawObject != nil {
		return c.rawObject
	}

	doc := NewKVLM()
	doc.Add("tree", []byte(c.treeID.String()))
	for _, p := range c.parentIDs {
		doc.Add("parent", []byte(p.String()))
	}
	doc.Add("author", []byte(c.Author().String()))
	doc.Add("committer", []byte(c.Committer().String()))
	if c.gpgSig != "" {
		doc.Add("gpgsig", []byte(c.gpgSig))
	}
	doc.SetMessage([]byte(c.message))

	c.rawObject = New(TypeCommit, EncodeKVLM(doc))
	return c.rawObject
}
