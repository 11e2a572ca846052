package fsbackend

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/coreyw/gitdb/ginternals"
	"github.com/coreyw/gitdb/ginternals/object"
	"github.com/coreyw/gitdb/internal/gitpath"
	"github.com/coreyw/gitdb/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/xerrors"
)

func newInitedBackend(t *testing.T) *Backend {
	t.Helper()
	dir, cleanup := testutil.TempDir(t)
	t.Cleanup(cleanup)

	b, err := New(filepath.Join(dir, gitpath.DotGitPath))
	require.NoError(t, err)
	t.Cleanup(func() {
		require.NoError(t, b.Close())
	})
	require.NoError(t, b.Init())
	return b
}

func TestObject(t *testing.T) {
	t.Parallel()

	t.Run("existing loose object should be returned", func(t *testing.T) {
		t.Parallel()

		b := newInitedBackend(t)
		o := object.New(object.TypeBlob, testutil.HelloBlobContent)
		oid, err := b.WriteObject(o)
		require.NoError(t, err)

		obj, err := b.Object(oid)
		require.NoError(t, err)
		require.NotNil(t, obj)

		assert.Equal(t, oid, obj.ID())
		assert.Equal(t, object.TypeBlob, obj.Type())
		assert.Equal(t, testutil.HelloBlobContent, obj.Bytes())
	})

	t.Run("un-existing object should fail", func(t *testing.T) {
		t.Parallel()

		b := newInitedBackend(t)

		oid, err := ginternals.NewOidFromStr("2dcdadc2a420225783794fbffd51e2e137a69646")
		require.NoError(t, err)

		obj, err := b.Object(oid)
		require.Error(t, err)
		require.Nil(t, obj)
		require.True(t, xerrors.Is(err, ginternals.ErrObjectNotFound), "unexpected error received")
	})
}

func TestHasObject(t *testing.T) {
	t.Parallel()

	t.Run("existing object should exist", func(t *testing.T) {
		t.Parallel()

		b := newInitedBackend(t)
		o := object.New(object.TypeBlob, testutil.HelloBlobContent)
		oid, err := b.WriteObject(o)
		require.NoError(t, err)

		exists, err := b.HasObject(oid)
		require.NoError(t, err)
		assert.True(t, exists)
	})

	t.Run("non-existing object should not exist", func(t *testing.T) {
		t.Parallel()

		b := newInitedBackend(t)

		fakeOid, err := ginternals.NewOidFromStr("2dcdadc2a420225783794fbffd51e2e137a69646")
		require.NoError(t, err)

		exists, err := b.HasObject(fakeOid)
		require.NoError(t, err)
		assert.False(t, exists)
	})

	t.Run("cache should be updated", func(t *testing.T) {
		t.Parallel()

		b := newInitedBackend(t)
		o := object.New(object.TypeBlob, testutil.HelloBlobContent)
		oid, err := b.WriteObject(o)
		require.NoError(t, err)

		// WriteObject already populates the cache, clear it so we can
		// observe HasObject repopulating it
		b.cache.Clear()
		_, found := b.cache.Get(oid)
		require.False(t, found, "the sha should have not been in the cache")

		exists, err := b.HasObject(oid)
		require.NoError(t, err)
		assert.True(t, exists, "the sha should exist")

		_, found = b.cache.Get(oid)
		require.True(t, found, "the sha should have been added to the cache")
	})

	t.Run("invalid cache should be replaced", func(t *testing.T) {
		t.Parallel()

		b := newInitedBackend(t)
		o := object.New(object.TypeBlob, testutil.HelloBlobContent)
		oid, err := b.WriteObject(o)
		require.NoError(t, err)

		b.cache.Add(oid, "not a valid value")

		exists, err := b.HasObject(oid)
		require.NoError(t, err)
		assert.True(t, exists, "the sha should exist")

		o2, found := b.cache.Get(oid)
		require.True(t, found, "the sha should have been added to the cache")
		require.IsType(t, &object.Object{}, o2)
	})
}

func TestWriteObject(t *testing.T) {
	t.Parallel()

	t.Run("add a new blob", func(t *testing.T) {
		t.Parallel()

		b := newInitedBackend(t)
		o := object.New(object.TypeBlob, []byte("data"))
		oid, err := b.WriteObject(o)
		require.NoError(t, err)
		assert.NotEqual(t, ginternals.NullOid, oid, "invalid oid returned")

		storedO, err := b.Object(oid)
		require.NoError(t, err)
		assert.Equal(t, o.Type(), storedO.Type(), "invalid type")
		assert.Equal(t, o.Size(), storedO.Size(), "invalid size")
		assert.Equal(t, o.Bytes(), storedO.Bytes(), "invalid content")
		assert.NotEqual(t, ginternals.NullOid, storedO.ID(), "invalid ID")

		// make sure the blob was persisted
		p := filepath.Join(b.root, gitpath.ObjectsPath, storedO.ID().String()[0:2], storedO.ID().String()[2:])
		info, err := os.Stat(p)
		require.NoError(t, err)
		assert.Equal(t, os.FileMode(0o444), info.Mode(), "objects should be read only")
	})

	t.Run("writing the same object twice should not trigger a rewrite", func(t *testing.T) {
		t.Parallel()

		b := newInitedBackend(t)
		o := object.New(object.TypeBlob, []byte("data"))
		oid, err := b.WriteObject(o)
		require.NoError(t, err)

		p := filepath.Join(b.root, gitpath.ObjectsPath, oid.String()[0:2], oid.String()[2:])
		originalInfo, err := os.Stat(p)
		require.NoError(t, err)

		time.Sleep(10 * time.Millisecond)
		_, err = b.WriteObject(o)
		require.NoError(t, err)
		info, err := os.Stat(p)
		require.NoError(t, err)

		assert.Equal(t, originalInfo.ModTime(), info.ModTime())
	})
}
