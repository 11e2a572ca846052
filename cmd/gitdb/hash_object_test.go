package main

import (
	"bytes"
	"io"
	"io/ioutil"
	"os"
	"path/filepath"
	"testing"

	"github.com/coreyw/gitdb/env"
	"github.com/coreyw/gitdb/ginternals"
	"github.com/coreyw/gitdb/ginternals/object"
	"github.com/coreyw/gitdb/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashObjectCmd(t *testing.T) {
	t.Parallel()

	t.Run("blob", func(t *testing.T) {
		t.Parallel()

		t.Run("default should be blob", func(t *testing.T) {
			t.Parallel()

			dir, cleanup := testutil.TempDir(t)
			t.Cleanup(cleanup)

			file := filepath.Join(dir, "hello.txt")
			require.NoError(t, ioutil.WriteFile(file, testutil.HelloBlobContent, 0o644))

			cwd, err := os.Getwd()
			require.NoError(t, err)

			outBuf := bytes.NewBufferString("")
			cmd := newRootCmd(cwd, env.NewFromOs())
			cmd.SetArgs([]string{"hash-object", file})
			cmd.SetOut(outBuf)

			require.NotPanics(t, func() {
				err = cmd.Execute()
			})
			require.NoError(t, err)
			out, err := io.ReadAll(outBuf)
			require.NoError(t, err)

			assert.Equal(t, testutil.HelloBlobOID+"\n", string(out))
		})

		t.Run("blob opt should work", func(t *testing.T) {
			t.Parallel()

			dir, cleanup := testutil.TempDir(t)
			t.Cleanup(cleanup)

			file := filepath.Join(dir, "blob")
			require.NoError(t, ioutil.WriteFile(file, []byte("some blob content"), 0o644))

			expected := object.New(object.TypeBlob, []byte("some blob content"))
			_, err := expected.Compress()
			require.NoError(t, err)

			cwd, err := os.Getwd()
			require.NoError(t, err)

			outBuf := bytes.NewBufferString("")
			cmd := newRootCmd(cwd, env.NewFromOs())
			cmd.SetArgs([]string{"hash-object", "-t", "blob", file})
			cmd.SetOut(outBuf)

			require.NotPanics(t, func() {
				err = cmd.Execute()
			})
			require.NoError(t, err)
			out, err := io.ReadAll(outBuf)
			require.NoError(t, err)

			assert.Equal(t, expected.ID().String()+"\n", string(out))
		})
	})

	t.Run("tree", func(t *testing.T) {
		t.Parallel()

		t.Run("valid tree should work", func(t *testing.T) {
			t.Parallel()

			dir, cleanup := testutil.TempDir(t)
			t.Cleanup(cleanup)

			blobOID, err := ginternals.NewOidFromStr(testutil.HelloBlobOID)
			require.NoError(t, err)
			tree := object.NewTree([]object.TreeEntry{
				{Path: "hello.txt", ID: blobOID, Mode: object.ModeFile},
			})

			file := filepath.Join(dir, "tree")
			require.NoError(t, ioutil.WriteFile(file, tree.ToObject().Bytes(), 0o644))

			cwd, err := os.Getwd()
			require.NoError(t, err)

			outBuf := bytes.NewBufferString("")
			cmd := newRootCmd(cwd, env.NewFromOs())
			cmd.SetArgs([]string{"hash-object", "-t", "tree", file})
			cmd.SetOut(outBuf)

			require.NotPanics(t, func() {
				err = cmd.Execute()
			})
			require.NoError(t, err)
			out, err := io.ReadAll(outBuf)
			require.NoError(t, err)

			assert.Equal(t, tree.ID().String()+"\n", string(out))
		})

		t.Run("invalid tree should fail", func(t *testing.T) {
			t.Parallel()

			dir, cleanup := testutil.TempDir(t)
			t.Cleanup(cleanup)

			file := filepath.Join(dir, "not-a-tree")
			require.NoError(t, ioutil.WriteFile(file, []byte("definitely not a tree"), 0o644))

			cwd, err := os.Getwd()
			require.NoError(t, err)

			outBuf := bytes.NewBufferString("")
			cmd := newRootCmd(cwd, env.NewFromOs())
			cmd.SetArgs([]string{"hash-object", "-t", "tree", file})
			cmd.SetOut(outBuf)

			require.NotPanics(t, func() {
				err = cmd.Execute()
			})
			require.Error(t, err)

			out, err := io.ReadAll(outBuf)
			require.NoError(t, err)
			assert.Empty(t, string(out))
		})
	})

	t.Run("commit", func(t *testing.T) {
		t.Parallel()

		t.Run("valid commit should work", func(t *testing.T) {
			t.Parallel()

			dir, cleanup := testutil.TempDir(t)
			t.Cleanup(cleanup)

			sig := object.Signature{Name: "Gopher", Email: "gopher@example.com"}
			treeOID, err := ginternals.NewOidFromStr(testutil.EmptyTreeOID)
			require.NoError(t, err)
			commit := object.NewCommit(treeOID, sig, &object.CommitOptions{
				Message: "initial commit\n",
			})

			file := filepath.Join(dir, "commit")
			require.NoError(t, ioutil.WriteFile(file, commit.ToObject().Bytes(), 0o644))

			cwd, err := os.Getwd()
			require.NoError(t, err)

			outBuf := bytes.NewBufferString("")
			cmd := newRootCmd(cwd, env.NewFromOs())
			cmd.SetArgs([]string{"hash-object", "-t", "commit", file})
			cmd.SetOut(outBuf)

			require.NotPanics(t, func() {
				err = cmd.Execute()
			})
			require.NoError(t, err)
			out, err := io.ReadAll(outBuf)
			require.NoError(t, err)

			assert.Equal(t, commit.ID().String()+"\n", string(out))
		})

		t.Run("invalid commit should fail", func(t *testing.T) {
			t.Parallel()

			dir, cleanup := testutil.TempDir(t)
			t.Cleanup(cleanup)

			file := filepath.Join(dir, "not-a-commit")
			require.NoError(t, ioutil.WriteFile(file, []byte("definitely not a commit"), 0o644))

			cwd, err := os.Getwd()
			require.NoError(t, err)

			outBuf := bytes.NewBufferString("")
			cmd := newRootCmd(cwd, env.NewFromOs())
			cmd.SetArgs([]string{"hash-object", "-t", "commit", file})
			cmd.SetOut(outBuf)

			require.NotPanics(t, func() {
				err = cmd.Execute()
			})
			assert.Error(t, err)

			out, err := io.ReadAll(outBuf)
			require.NoError(t, err)
			assert.Empty(t, string(out))
		})
	})
}
