package persistent

import (
	"os"
	"path/filepath"

	"github.com/pkg/errors"
	"golang.org/x/sys/unix"

	"github.com/outofforest/voxel/types"
)

// NewFileStore creates new file-based store.
func NewFileStore(path string) *FileStore {
	return &FileStore{
		path: path,
	}
}

// FileStore defines persistent file-based store.
type FileStore struct {
	path string
}

// Path returns path of the file.
func (s *FileStore) Path() string {
	return s.path
}

// Write stores image in temporary file and moves it in place of the existing one once it's synced.
func (s *FileStore) Write(image []byte) (retErr error) {
	dir, name := filepath.Split(s.path)
	if dir == "" {
		dir = "."
	}

	file, err := os.CreateTemp(dir, name+".*.tmp")
	if err != nil {
		return errors.WithStack(err)
	}
	defer func() {
		if retErr != nil {
			_ = file.Close()
			_ = os.Remove(file.Name())
		}
	}()

	if _, err := file.Write(image); err != nil {
		return errors.WithStack(err)
	}
	if err := file.Sync(); err != nil {
		return errors.WithStack(err)
	}
	if err := file.Close(); err != nil {
		return errors.WithStack(err)
	}
	return errors.WithStack(os.Rename(file.Name(), s.path))
}

// Read maps file into memory.
func (s *FileStore) Read() ([]byte, func(), error) {
	file, err := os.Open(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil, errors.Wrapf(types.ErrFileNotFound, "file %s doesn't exist", s.path)
		}
		return nil, nil, errors.WithStack(err)
	}
	defer file.Close()

	info, err := file.Stat()
	if err != nil {
		return nil, nil, errors.WithStack(err)
	}
	if info.Size() == 0 {
		return nil, nil, errors.Wrapf(types.ErrCorruptData, "file %s is empty", s.path)
	}

	data, err := unix.Mmap(int(file.Fd()), 0, int(info.Size()), unix.PROT_READ, unix.MAP_SHARED)
	if err != nil {
		return nil, nil, errors.Wrapf(err, "mapping file %s failed", s.path)
	}

	return data, func() {
		_ = unix.Munmap(data)
	}, nil
}
