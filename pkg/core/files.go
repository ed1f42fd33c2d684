package core

import (
	"fmt"
	"path/filepath"
	"regexp"

	"github.com/YuanDdQiao/tungsten-replicator/pkg/client/files"
	"github.com/YuanDdQiao/tungsten-replicator/pkg/config"
)

const (
	trackedFileGlob = ".*.orig"
	connectorJar    = "mysql-connector-java.jar"
)

var trackedFilePattern = regexp.MustCompile(`^\.(.+)\.orig$`)

// removeFiles deletes what the installer put on the node. Failures are
// recorded and the remaining paths are still attempted.
func (t *teardown) removeFiles() {
	t.sweepTrackedFiles()
	t.removeLinkedConnector()
	t.removeKeystores()
	t.removeManagedPaths()
}

func (t *teardown) shareDir() string {
	return filepath.Join(t.node.Property(config.HomeDirectory), config.ShareDirectoryName)
}

// sweepTrackedFiles removes every file the installer replaced in share
// together with its .<name>.orig backup. Only pairs are touched.
func (t *teardown) sweepTrackedFiles() {
	share := t.shareDir()
	fsys := t.node.Files()
	entries, err := fsys.ReadDir(share)
	if err != nil {
		if !files.IsNotExist(err) {
			t.fail(fmt.Errorf("fail to list <%s>: %w", share, err))
		}
		return
	}
	for _, e := range entries {
		name := e.Name()
		if ok, _ := filepath.Match(trackedFileGlob, name); !ok {
			continue
		}
		match := trackedFilePattern.FindStringSubmatch(name)
		if match == nil {
			t.log.Warnf("unable to find a watched file for %s", filepath.Join(share, name))
			continue
		}
		watched := match[1]
		t.log.Debugf("remove %s and %s", watched, name)
		if err := fsys.Remove(filepath.Join(share, watched)); err != nil {
			t.fail(fmt.Errorf("fail to remove <%s>: %w", filepath.Join(share, watched), err))
			continue
		}
		if err := fsys.Remove(filepath.Join(share, name)); err != nil {
			t.fail(fmt.Errorf("fail to remove <%s>: %w", filepath.Join(share, name), err))
		}
	}
}

// removeLinkedConnector removes the JDBC driver linked into share and the
// file it points to.
func (t *teardown) removeLinkedConnector() {
	fsys := t.node.Files()
	link := filepath.Join(t.shareDir(), connectorJar)
	if _, err := fsys.Lstat(link); err != nil {
		if !files.IsNotExist(err) {
			t.fail(fmt.Errorf("fail to inspect <%s>: %w", link, err))
		}
		return
	}
	if !files.IsSymlink(fsys, link) {
		t.log.Debugf("%s is not a link, left in place", link)
		return
	}
	target, err := fsys.Readlink(link)
	if err != nil {
		t.fail(fmt.Errorf("fail to resolve <%s>: %w", link, err))
		return
	}
	if !filepath.IsAbs(target) {
		target = filepath.Join(filepath.Dir(link), target)
	}
	t.log.Debugf("remove MySQL Connector/J %s", target)
	if err := fsys.Remove(target); err != nil {
		t.fail(fmt.Errorf("fail to remove <%s>: %w", target, err))
	}
	if err := fsys.Remove(link); err != nil {
		t.fail(fmt.Errorf("fail to remove <%s>: %w", link, err))
	}
}

// removeKeystores deletes keystores the installer copied to their template
// location. A keystore configured at the template location was provided by
// the operator and stays.
func (t *teardown) removeKeystores() {
	props := t.node.Properties()
	fsys := t.node.Files()
	for _, key := range []string{config.JavaTLSKeystorePath, config.JavaJGroupsKeystorePath} {
		source := filepath.Clean(props.Get(key))
		target := props.Template(key)
		if target == "" {
			continue
		}
		target = filepath.Clean(target)
		if source == target {
			t.log.Debugf("keep %s, it was provided to the installation", source)
			continue
		}
		if !files.Exists(fsys, target) {
			continue
		}
		t.log.Debugf("remove %s", target)
		if err := fsys.Remove(target); err != nil {
			t.fail(fmt.Errorf("fail to remove <%s>: %w", target, err))
		}
	}
}

// managedPaths lists the directories the installer owns exclusively.
func (t *teardown) managedPaths() []string {
	props := t.node.Properties()
	home := props.Get(config.HomeDirectory)
	candidates := []string{
		filepath.Join(home, config.LogsDirectoryName),
		filepath.Join(home, config.MetadataDirectoryName),
		props.Get(config.ConfigDirectory),
		props.Get(config.LogsDirectory),
		props.Get(config.ReplMetadataDirectory),
		props.Get(config.MetadataDirectory),
		props.Get(config.ReleasesDirectory),
		props.Get(config.CurrentReleaseDirectory),
	}
	seen := make(map[string]bool)
	var paths []string
	for _, p := range candidates {
		if p == "" {
			continue
		}
		p = filepath.Clean(p)
		if seen[p] {
			continue
		}
		seen[p] = true
		paths = append(paths, p)
	}
	return paths
}

func (t *teardown) removeManagedPaths() {
	t.log.Debugf("remove home directory contents")
	home := filepath.Clean(t.node.Property(config.HomeDirectory))
	fsys := t.node.Files()
	for _, path := range t.managedPaths() {
		if path == "/" || path == home {
			t.fail(fmt.Errorf("%w <%s>", ErrUnsafePath, path))
			continue
		}
		if err := fsys.RemoveAll(path); err != nil {
			t.fail(fmt.Errorf("fail to remove <%s>: %w", path, err))
		}
	}
}
