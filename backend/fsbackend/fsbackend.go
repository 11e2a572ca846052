// Package fsbackend contains an implementation of the backend.Backend
// interface for the filesystem
package fsbackend

import (
	"io/ioutil"
	"os"
	"path/filepath"
	"sync"

	"github.com/coreyw/gitdb/backend"
	"github.com/coreyw/gitdb/internal/cache"
	"github.com/coreyw/gitdb/internal/gitpath"
	"github.com/coreyw/gitdb/internal/syncutil"
	"github.com/spf13/afero"
	"golang.org/x/xerrors"
)

// we make sure the struct implements the interface
var _ backend.Backend = (*Backend)(nil)

// objectCacheSize is the number of decoded objects kept in memory to
// avoid re-reading and re-inflating the same loose object repeatedly.
const objectCacheSize = 128

// objectLockShards is the number of mutexes objectMu spreads object
// locking across. Using more than one key lets unrelated objects be
// read/written concurrently while still serializing access to a given
// OID.
const objectLockShards = 64

// Backend is a Backend implementation that uses the filesystem to store data
type Backend struct {
	root string
	fs   afero.Fs

	objectMu     *syncutil.NamedMutex
	cache        *cache.LRU
	looseObjects sync.Map // ginternals.Oid -> struct{}
	refs         sync.Map // ref name -> raw file content ([]byte)
}

// New returns a new Backend rooted at the given .git directory.
// The loose objects already present on disk are indexed in the
// background state kept by the Backend; this never fails for a
// directory that doesn't exist yet (e.g. before Init is called).
func New(dotGitPath string) (*Backend, error) {
	b := &Backend{
		root:     dotGitPath,
		fs:       afero.NewOsFs(),
		objectMu: syncutil.NewNamedMutex(objectLockShards),
		cache:    cache.NewLRU(objectCacheSize),
	}
	if err := b.loadLooseObject(); err != nil {
		return nil, xerrors.Errorf("could not index loose objects: %w", err)
	}
	if err := b.loadRefs(); err != nil {
		return nil, xerrors.Errorf("could not index references: %w", err)
	}
	return b, nil
}

// Close frees the resources held by the backend
func (b *Backend) Close() error {
	b.cache.Clear()
	return nil
}

// Init initializes a repository
func (b *Backend) Init() error {
	// Create the directories
	dirs := []string{
		gitpath.ObjectsPath,
		gitpath.RefsTagsPath,
		gitpath.RefsHeadsPath,
	}
	for _, d := range dirs {
		fullPath := filepath.Join(b.root, d)
		if err := os.MkdirAll(fullPath, 0o750); err != nil {
			return xerrors.Errorf("could not create directory %s: %w", d, err)
		}
	}

	// Create the files with the default content
	// (taken from a repo created on github)
	files := []struct {
		path    string
		content []byte
	}{
		{
			path:    gitpath.DescriptionPath,
			content: []byte("Unnamed repository; edit this file 'description' to name the repository.\n"),
		},
	}
	for _, f := range files {
		fullPath := filepath.Join(b.root, f.path)
		if err := ioutil.WriteFile(fullPath, f.content, 0o644); err != nil {
			return xerrors.Errorf("could not create file %s: %w", f, err)
		}
	}

	err := b.setDefaultCfg()
	if err != nil {
		return xerrors.Errorf("could not set the default config: %w", err)
	}

	return nil
}
