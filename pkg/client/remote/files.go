package remote

import (
	"context"
	"fmt"
	"os"

	"github.com/kballard/go-shellquote"

	"github.com/YuanDdQiao/tungsten-replicator/pkg/client/files"
)

type sftpFiles struct {
	*Client
}

func (f *sftpFiles) Stat(name string) (os.FileInfo, error) {
	return f.sftp.Stat(name)
}

func (f *sftpFiles) Lstat(name string) (os.FileInfo, error) {
	return f.sftp.Lstat(name)
}

func (f *sftpFiles) Readlink(name string) (string, error) {
	return f.sftp.ReadLink(name)
}

func (f *sftpFiles) ReadDir(dir string) ([]os.FileInfo, error) {
	return f.sftp.ReadDir(dir)
}

func (f *sftpFiles) Remove(name string) error {
	err := f.sftp.Remove(name)
	if files.IsNotExist(err) {
		return nil
	}
	return err
}

// RemoveAll deletes a tree with rm on the host, sftp has no recursive delete.
func (f *sftpFiles) RemoveAll(path string) error {
	if _, err := f.sftp.Lstat(path); err != nil {
		if files.IsNotExist(err) {
			return nil
		}
		return err
	}
	cmd := shellquote.Join("rm", "-rf", "--", path)
	if _, err := f.Run(context.Background(), cmd); err != nil {
		f.log.Errorf("remove directory fail, dir: %s, error: %v", path, err)
		return fmt.Errorf("remove <%s>: %w", path, err)
	}
	f.log.Debugf("remove <%s> successful", path)
	return nil
}
