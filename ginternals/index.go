package ginternals

import (
	"bytes"
	"crypto/sha1" //nolint:gosec // the index checksum format mandates SHA-1
	"encoding/binary"

	"golang.org/x/xerrors"
)

// indexSignature is the magic 4 bytes every index file starts with
var indexSignature = [4]byte{'D', 'I', 'R', 'C'}

// indexVersion is the only index format version this library reads
// and writes
const indexVersion = 2

// checksumSize is the size, in bytes, of the trailing SHA-1 sum
const checksumSize = 20

// IndexEntryMode describes the kind of filesystem entry an index entry
// tracks
type IndexEntryMode uint8

// Valid object types for an index entry
const (
	IndexEntryModeRegular IndexEntryMode = 0b1000
	IndexEntryModeSymlink IndexEntryMode = 0b1010
	IndexEntryModeGitlink IndexEntryMode = 0b1110
)

// IndexEntry represents a single staged file in the index
type IndexEntry struct {
	CTimeSec  uint32
	CTimeNano uint32
	MTimeSec  uint32
	MTimeNano uint32
	Dev       uint32
	Ino       uint32
	Mode      IndexEntryMode
	Perm      uint16 // unix permission bits, e.g. 0644/0755
	UID       uint32
	GID       uint32
	Size      uint32
	Oid       Oid
	Stage     uint8 // 0-3, used during a merge
	Path      string
}

// Index represents the staging area of a repository: a flat, sorted
// list of entries plus a set of optional extensions.
type Index struct {
	Entries    []*IndexEntry
	CacheTrees []*IndexTreeEntry
}

// NewIndex returns an empty Index
func NewIndex() *Index {
	return &Index{}
}

// modeWord packs an entry's type and permission bits the way the
// on-disk format stores them: a 4-byte big-endian word where only the
// low 16 bits are meaningful (high 4 bits: object type, next 3: unused,
// low 9: unix permissions).
func modeWord(e *IndexEntry) uint32 {
	return uint32(e.Mode)<<12 | uint32(e.Perm&0x1FF)
}

func unpackMode(word uint32) (IndexEntryMode, uint16) {
	return IndexEntryMode((word >> 12) & 0xF), uint16(word & 0x1FF)
}

// Decode reads and validates an index file, including its trailing
// checksum, and the TREE cache extension if present. Unknown optional
// extensions (uppercase first byte of the 4-char signature) are
// skipped; unknown mandatory ones fail decoding.
func Decode(raw []byte) (*Index, error) {
	if len(raw) < 12+checksumSize {
		return nil, xerrors.Errorf("truncated index: %w", ErrIndexMalformed)
	}

	sum := sha1.Sum(raw[:len(raw)-checksumSize]) //nolint:gosec // index checksum format mandates SHA-1
	if !bytes.Equal(sum[:], raw[len(raw)-checksumSize:]) {
		return nil, xerrors.Errorf("checksum mismatch: %w", ErrIndexMalformed)
	}
	body := raw[:len(raw)-checksumSize]

	if !bytes.Equal(body[0:4], indexSignature[:]) {
		return nil, xerrors.Errorf("bad signature: %w", ErrIndexMalformed)
	}
	version := binary.BigEndian.Uint32(body[4:8])
	if version != indexVersion {
		return nil, xerrors.Errorf("unsupported index version %d: %w", version, ErrIndexMalformed)
	}
	count := binary.BigEndian.Uint32(body[8:12])

	idx := &Index{Entries: make([]*IndexEntry, 0, count)}
	offset := 12
	for i := uint32(0); i < count; i++ {
		entry, next, err := decodeEntry(body, offset)
		if err != nil {
			return nil, xerrors.Errorf("entry %d: %w", i, err)
		}
		idx.Entries = append(idx.Entries, entry)
		offset = next
	}

	for offset < len(body) {
		// An extension needs at least signature(4) + size(4).
		if offset+8 > len(body) {
			return nil, xerrors.Errorf("truncated extension header: %w", ErrIndexMalformed)
		}
		sig := body[offset : offset+4]
		size := binary.BigEndian.Uint32(body[offset+4 : offset+8])
		dataStart := offset + 8
		dataEnd := dataStart + int(size)
		if dataEnd > len(body) {
			return nil, xerrors.Errorf("truncated extension %q: %w", sig, ErrIndexMalformed)
		}
		data := body[dataStart:dataEnd]

		switch string(sig) {
		case "TREE":
			tree, err := decodeCacheTree(data)
			if err != nil {
				return nil, xerrors.Errorf("TREE extension: %w", err)
			}
			idx.CacheTrees = tree
		default:
			// Optional extensions (REUC, UNTR, ...) have an uppercase first
			// byte and are tolerated; a lowercase first byte marks a
			// mandatory extension we don't know how to read.
			if sig[0] >= 'A' && sig[0] <= 'Z' {
				break
			}
			return nil, xerrors.Errorf("unknown mandatory extension %q: %w", sig, ErrIndexMalformed)
		}

		offset = dataEnd
	}

	return idx, nil
}

func decodeEntry(body []byte, offset int) (*IndexEntry, int, error) {
	const fixedSize = 62 // bytes from ctime through the 2-byte flags field
	if offset+fixedSize > len(body) {
		return nil, 0, xerrors.Errorf("truncated entry header: %w", ErrIndexMalformed)
	}

	e := &IndexEntry{}
	r := body[offset:]
	e.CTimeSec = binary.BigEndian.Uint32(r[0:4])
	e.CTimeNano = binary.BigEndian.Uint32(r[4:8])
	e.MTimeSec = binary.BigEndian.Uint32(r[8:12])
	e.MTimeNano = binary.BigEndian.Uint32(r[12:16])
	e.Dev = binary.BigEndian.Uint32(r[16:20])
	e.Ino = binary.BigEndian.Uint32(r[20:24])
	modeWordVal := binary.BigEndian.Uint32(r[24:28])
	e.Mode, e.Perm = unpackMode(modeWordVal)
	e.UID = binary.BigEndian.Uint32(r[28:32])
	e.GID = binary.BigEndian.Uint32(r[32:36])
	e.Size = binary.BigEndian.Uint32(r[36:40])

	oid, err := NewOidFromBytes(r[40:60])
	if err != nil {
		return nil, 0, xerrors.Errorf("entry oid: %w", err)
	}
	e.Oid = oid

	flags := binary.BigEndian.Uint16(r[60:62])
	e.Stage = uint8((flags >> 12) & 0x3)
	nameLen := int(flags & 0xFFF)

	pathStart := offset + fixedSize
	var path []byte
	if nameLen < 0xFFF {
		if pathStart+nameLen > len(body) {
			return nil, 0, xerrors.Errorf("truncated path: %w", ErrIndexMalformed)
		}
		path = body[pathStart : pathStart+nameLen]
	} else {
		// name didn't fit in 12 bits, read until the NUL terminator
		nul := bytes.IndexByte(body[pathStart:], 0)
		if nul < 0 {
			return nil, 0, xerrors.Errorf("unterminated path: %w", ErrIndexMalformed)
		}
		path = body[pathStart : pathStart+nul]
	}
	e.Path = string(path)

	// Entries are NUL-padded (at least one NUL) to the next 8-byte
	// boundary, counted from the start of the entry.
	minLen := fixedSize + len(path) + 1
	padded := ((minLen + 7) / 8) * 8
	next := offset + padded

	return e, next, nil
}

// Encode serializes the index, including a freshly-computed trailing
// checksum. Entries are written in the order they appear in idx.Entries:
// callers are expected to have already sorted them by path (and stage)
// as the format requires.
func Encode(idx *Index) ([]byte, error) {
	buf := &bytes.Buffer{}
	buf.Write(indexSignature[:])
	writeUint32(buf, indexVersion)
	writeUint32(buf, uint32(len(idx.Entries)))

	for _, e := range idx.Entries {
		encodeEntry(buf, e)
	}

	if len(idx.CacheTrees) > 0 {
		treeData := encodeCacheTree(idx.CacheTrees)
		buf.WriteString("TREE")
		writeUint32(buf, uint32(len(treeData)))
		buf.Write(treeData)
	}

	sum := sha1.Sum(buf.Bytes()) //nolint:gosec // index checksum format mandates SHA-1
	buf.Write(sum[:])
	return buf.Bytes(), nil
}

func encodeEntry(buf *bytes.Buffer, e *IndexEntry) {
	start := buf.Len()
	writeUint32(buf, e.CTimeSec)
	writeUint32(buf, e.CTimeNano)
	writeUint32(buf, e.MTimeSec)
	writeUint32(buf, e.MTimeNano)
	writeUint32(buf, e.Dev)
	writeUint32(buf, e.Ino)
	writeUint32(buf, modeWord(e))
	writeUint32(buf, e.UID)
	writeUint32(buf, e.GID)
	writeUint32(buf, e.Size)
	buf.Write(e.Oid.Bytes())

	nameLen := len(e.Path)
	if nameLen > 0xFFF {
		nameLen = 0xFFF
	}
	flags := uint16(e.Stage&0x3)<<12 | uint16(nameLen)
	writeUint16(buf, flags)

	buf.WriteString(e.Path)

	// NUL-pad to the next 8-byte boundary (always at least one NUL)
	written := buf.Len() - start
	for {
		buf.WriteByte(0)
		written++
		if written%8 == 0 {
			break
		}
	}
}

func writeUint32(buf *bytes.Buffer, v uint32) {
	var b [4]byte
	binary.BigEndian.PutUint32(b[:], v)
	buf.Write(b[:])
}

func writeUint16(buf *bytes.Buffer, v uint16) {
	var b [2]byte
	binary.BigEndian.PutUint16(b[:], v)
	buf.Write(b[:])
}
