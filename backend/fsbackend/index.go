package fsbackend

import (
	"os"
	"path/filepath"

	"github.com/coreyw/gitdb/ginternals"
	"github.com/coreyw/gitdb/internal/gitpath"
	"github.com/spf13/afero"
	"golang.org/x/xerrors"
)

// ReadIndex returns the repository's staging area.
// An empty Index is returned if no index file has been persisted yet.
func (b *Backend) ReadIndex() (*ginternals.Index, error) {
	p := filepath.Join(b.root, gitpath.IndexPath)
	data, err := afero.ReadFile(b.fs, p)
	if err != nil {
		if os.IsNotExist(err) {
			return ginternals.NewIndex(), nil
		}
		return nil, xerrors.Errorf("could not read index at %s: %w", p, err)
	}
	idx, err := ginternals.Decode(data)
	if err != nil {
		return nil, xerrors.Errorf("could not parse index at %s: %w", p, err)
	}
	return idx, nil
}

// WriteIndex persists the repository's staging area
func (b *Backend) WriteIndex(idx *ginternals.Index) error {
	data, err := ginternals.Encode(idx)
	if err != nil {
		return xerrors.Errorf("could not encode index: %w", err)
	}
	p := filepath.Join(b.root, gitpath.IndexPath)
	if err := afero.WriteFile(b.fs, p, data, 0o644); err != nil {
		return xerrors.Errorf("could not persist index at %s: %w", p, err)
	}
	return nil
}
