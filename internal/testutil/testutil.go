// Package testutil contains helpers and fixtures shared by this
// module's tests.
package testutil

import (
	"io/ioutil"
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

// TempDir creates a temp dir and returns a cleanup method that
// removes it.
func TempDir(t *testing.T) (out string, cleanup func()) {
	out, err := ioutil.TempDir("", strings.ReplaceAll(t.Name(), "/", "_")+"_")
	require.NoError(t, err)

	cleanup = func() {
		if err == nil {
			require.NoError(t, os.RemoveAll(out))
		}
	}
	return out, cleanup
}

// TempFile creates a temp file and returns a cleanup method that
// closes and removes it.
func TempFile(t *testing.T) (f *os.File, cleanup func()) {
	f, err := ioutil.TempFile("", strings.ReplaceAll(t.Name(), "/", "_")+"_")
	require.NoError(t, err)

	cleanup = func() {
		f.Close() //nolint:errcheck,gosec // the file is removed right after
		require.NoError(t, os.Remove(f.Name()))
	}
	return f, cleanup
}

// HelloBlobContent is the content of the well-known "hello\n" blob used
// across golden-OID tests.
var HelloBlobContent = []byte("hello\n")

// HelloBlobOID is the SHA-1 of HelloBlobContent, framed as a blob object.
const HelloBlobOID = "ce013625030ba8dba906f756967f9e9ca394464a"

// EmptyTreeOID is the SHA-1 of an empty tree object ("tree 0\x00").
const EmptyTreeOID = "4b825dc642cb6eb9a060e54bf8d69288fbee4904"
