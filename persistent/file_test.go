package persistent

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"

	"github.com/outofforest/voxel/types"
)

func TestFileStore(t *testing.T) {
	requireT := require.New(t)

	path := filepath.Join(t.TempDir(), "volume.voxd")
	store := NewFileStore(path)
	requireT.Equal(path, store.Path())

	_, _, err := store.Read()
	requireT.True(errors.Is(err, types.ErrFileNotFound))

	requireT.NoError(store.Write([]byte{1, 2, 3}))
	image, release, err := store.Read()
	requireT.NoError(err)
	requireT.Equal([]byte{1, 2, 3}, image)
	release()

	requireT.NoError(store.Write([]byte{4, 5}))
	image, release, err = store.Read()
	requireT.NoError(err)
	requireT.Equal([]byte{4, 5}, image)
	release()

	// Temporary files are not left behind.
	entries, err := os.ReadDir(filepath.Dir(path))
	requireT.NoError(err)
	requireT.Len(entries, 1)
}

func TestFileStoreEmptyFile(t *testing.T) {
	requireT := require.New(t)

	path := filepath.Join(t.TempDir(), "volume.voxd")
	requireT.NoError(os.WriteFile(path, nil, 0o600))

	_, _, err := NewFileStore(path).Read()
	requireT.True(errors.Is(err, types.ErrCorruptData))
}

func TestFileStoreImage(t *testing.T) {
	requireT := require.New(t)

	store := NewFileStore(filepath.Join(t.TempDir(), "volume.voxd"))
	image, err := Encode(testHeader(CodecZstd), testNodes)
	requireT.NoError(err)
	requireT.NoError(store.Write(image))

	stored, release, err := store.Read()
	requireT.NoError(err)
	defer release()

	_, nodes, err := Decode(stored)
	requireT.NoError(err)
	requireT.Equal(testNodes, nodes)
}

func TestMemoryStore(t *testing.T) {
	requireT := require.New(t)

	store := NewMemoryStore()
	_, _, err := store.Read()
	requireT.True(errors.Is(err, types.ErrFileNotFound))

	image, err := Encode(testHeader(CodecNone), testNodes)
	requireT.NoError(err)
	requireT.NoError(store.Write(image))
	requireT.EqualValues(len(image), store.Size())

	stored, release, err := store.Read()
	requireT.NoError(err)
	release()
	requireT.Equal(image, stored)

	store.Truncate(store.Size() - 10)
	stored, release, err = store.Read()
	requireT.NoError(err)
	release()

	_, _, err = Decode(stored)
	requireT.True(errors.Is(err, types.ErrCorruptData))
}
