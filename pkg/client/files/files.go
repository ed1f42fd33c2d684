package files

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/mandelsoft/vfs/pkg/osfs"
	"github.com/mandelsoft/vfs/pkg/vfs"
)

// FileSystem is the part of a host's file system the teardown needs.
// Remove and RemoveAll succeed for paths that do not exist.
type FileSystem interface {
	Stat(name string) (os.FileInfo, error)
	Lstat(name string) (os.FileInfo, error)
	Readlink(name string) (string, error)
	ReadDir(dir string) ([]os.FileInfo, error)
	Remove(name string) error
	RemoveAll(path string) error
}

type vfsFileSystem struct {
	fs vfs.FileSystem
}

// New wraps a virtual file system.
func New(fs vfs.FileSystem) FileSystem {
	return &vfsFileSystem{fs: fs}
}

// Local returns the file system of this machine.
func Local() FileSystem {
	return New(osfs.New())
}

func (v *vfsFileSystem) Stat(name string) (os.FileInfo, error) {
	return v.fs.Stat(name)
}

func (v *vfsFileSystem) Lstat(name string) (os.FileInfo, error) {
	return v.fs.Lstat(name)
}

func (v *vfsFileSystem) Readlink(name string) (string, error) {
	return v.fs.Readlink(name)
}

func (v *vfsFileSystem) ReadDir(dir string) ([]os.FileInfo, error) {
	entries, err := vfs.ReadDir(v.fs, dir)
	if err != nil {
		return nil, err
	}
	infos := make([]os.FileInfo, 0, len(entries))
	for _, e := range entries {
		infos = append(infos, e)
	}
	sort.Slice(infos, func(i, j int) bool { return infos[i].Name() < infos[j].Name() })
	return infos, nil
}

func (v *vfsFileSystem) Remove(name string) error {
	err := v.fs.Remove(name)
	if IsNotExist(err) {
		return nil
	}
	return err
}

func (v *vfsFileSystem) RemoveAll(path string) error {
	if _, err := v.fs.Lstat(path); err != nil {
		if IsNotExist(err) {
			return nil
		}
		return err
	}
	return v.fs.RemoveAll(path)
}

func IsNotExist(err error) bool {
	return err != nil && (errors.Is(err, fs.ErrNotExist) || errors.Is(err, vfs.ErrNotExist))
}

// Exists reports whether path exists, following symlinks.
func Exists(fsys FileSystem, path string) bool {
	_, err := fsys.Stat(path)
	return err == nil
}

// IsSymlink reports whether path itself is a symbolic link.
func IsSymlink(fsys FileSystem, path string) bool {
	fi, err := fsys.Lstat(path)
	return err == nil && fi.Mode()&os.ModeSymlink != 0
}

// RemoveContents deletes everything below dir but keeps dir itself, so a
// mount point or a symlinked directory survives.
func RemoveContents(fsys FileSystem, dir string) error {
	entries, err := fsys.ReadDir(dir)
	if err != nil {
		if IsNotExist(err) {
			return nil
		}
		return err
	}
	var errs []error
	for _, e := range entries {
		if err := fsys.RemoveAll(filepath.Join(dir, e.Name())); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Within reports whether path lies strictly below base.
func Within(base, path string) bool {
	if base == "" || path == "" {
		return false
	}
	rel, err := filepath.Rel(filepath.Clean(base), filepath.Clean(path))
	if err != nil {
		return false
	}
	return rel != "." && rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}

// Overlaps reports whether one of the paths equals or contains the other.
func Overlaps(a, b string) bool {
	if a == "" || b == "" {
		return false
	}
	return filepath.Clean(a) == filepath.Clean(b) || Within(a, b) || Within(b, a)
}
