package local

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"cartographer/internal/app/ports"
	"cartographer/internal/domain/artifact"
)

// Store implements ports.ArtifactStore on the local filesystem.
type Store struct{}

func NewStore() Store {
	return Store{}
}

func (Store) Stat(path string) (artifact.State, error) {
	fi, err := os.Stat(path)
	if errors.Is(err, fs.ErrNotExist) {
		return artifact.State{}, nil
	}
	if err != nil {
		return artifact.State{}, err
	}
	if fi.IsDir() {
		return artifact.State{}, fmt.Errorf("%s is a directory", path)
	}
	return artifact.State{Exists: true, Size: fi.Size(), ModTime: fi.ModTime()}, nil
}

func (Store) ReadFile(path string) ([]byte, error) {
	b, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", ports.ErrNotFound, path)
	}
	return b, err
}

// CopyFile streams src into a temp file next to dst, carries over the mode and
// modification time, and renames it over dst.
func (Store) CopyFile(src, dst string) error {
	in, err := os.Open(src)
	if errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("%w: %s", ports.ErrNotFound, src)
	}
	if err != nil {
		return err
	}
	defer func() { _ = in.Close() }()
	fi, err := in.Stat()
	if err != nil {
		return err
	}

	dir := filepath.Dir(dst)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(dir, ".tmp-"+filepath.Base(dst)+"-*")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	committed := false
	defer func() {
		if !committed {
			_ = os.Remove(tmpName)
		}
	}()

	if _, err := io.Copy(tmp, in); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("copy %s: %w", src, err)
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Chmod(tmpName, fi.Mode().Perm()); err != nil {
		return err
	}
	if err := os.Chtimes(tmpName, fi.ModTime(), fi.ModTime()); err != nil {
		return err
	}
	if err := os.Rename(tmpName, dst); err != nil {
		return err
	}
	committed = true
	return nil
}
