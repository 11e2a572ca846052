package ginternals

import (
	"bytes"
	"strconv"

	"golang.org/x/xerrors"
)

// IndexTreeEntry is one record of the index's TREE cache extension: a
// memoized tree object for a path prefix, so a full tree write doesn't
// need to re-hash directories whose staged content hasn't changed.
//
// EntryCount is the number of index entries (files) covered by this
// node. A value of -1 means the cache is invalidated for this path
// and its subtree: the Oid field is meaningless and must not be used.
type IndexTreeEntry struct {
	Path         string
	EntryCount   int
	SubtreeCount int
	Oid          Oid
}

// decodeCacheTree parses the TREE extension's data section:
// a NUL-separated, depth-first sequence of records, each
// "<path>\0<entry_count_ascii> <subtree_count_ascii>\n[<20-byte-oid>]",
// the Oid being present only when entry_count != -1.
func decodeCacheTree(data []byte) ([]*IndexTreeEntry, error) {
	var out []*IndexTreeEntry
	offset := 0
	for offset < len(data) {
		nul := bytes.IndexByte(data[offset:], 0)
		if nul < 0 {
			return nil, xerrors.Errorf("unterminated path: %w", ErrIndexMalformed)
		}
		path := string(data[offset : offset+nul])
		offset += nul + 1

		nl := bytes.IndexByte(data[offset:], '\n')
		if nl < 0 {
			return nil, xerrors.Errorf("unterminated counts line: %w", ErrIndexMalformed)
		}
		counts := string(data[offset : offset+nl])
		offset += nl + 1

		parts := bytes.SplitN([]byte(counts), []byte(" "), 2)
		if len(parts) != 2 {
			return nil, xerrors.Errorf("malformed counts %q: %w", counts, ErrIndexMalformed)
		}
		entryCount, err := strconv.Atoi(string(parts[0]))
		if err != nil {
			return nil, xerrors.Errorf("entry count %q: %w", parts[0], ErrIndexMalformed)
		}
		subtreeCount, err := strconv.Atoi(string(parts[1]))
		if err != nil {
			return nil, xerrors.Errorf("subtree count %q: %w", parts[1], ErrIndexMalformed)
		}

		entry := &IndexTreeEntry{
			Path:         path,
			EntryCount:   entryCount,
			SubtreeCount: subtreeCount,
		}

		if entryCount != -1 {
			if offset+OidSize > len(data) {
				return nil, xerrors.Errorf("truncated tree oid: %w", ErrIndexMalformed)
			}
			oid, err := NewOidFromBytes(data[offset : offset+OidSize])
			if err != nil {
				return nil, xerrors.Errorf("tree oid: %w", err)
			}
			entry.Oid = oid
			offset += OidSize
		}

		out = append(out, entry)
	}
	return out, nil
}

// encodeCacheTree serializes the TREE extension's data section
func encodeCacheTree(entries []*IndexTreeEntry) []byte {
	buf := &bytes.Buffer{}
	for _, e := range entries {
		buf.WriteString(e.Path)
		buf.WriteByte(0)
		buf.WriteString(strconv.Itoa(e.EntryCount))
		buf.WriteByte(' ')
		buf.WriteString(strconv.Itoa(e.SubtreeCount))
		buf.WriteByte('\n')
		if e.EntryCount != -1 {
			buf.Write(e.Oid.Bytes())
		}
	}
	return buf.Bytes()
}
