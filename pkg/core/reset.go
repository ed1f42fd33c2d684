package core

import (
	"context"
	"fmt"

	"github.com/YuanDdQiao/tungsten-replicator/pkg/client/database"
	"github.com/YuanDdQiao/tungsten-replicator/pkg/client/files"
	"github.com/YuanDdQiao/tungsten-replicator/pkg/config"
	"github.com/YuanDdQiao/tungsten-replicator/pkg/event"
)

// HandleResolver opens the database handle a replication service applies to.
type HandleResolver func(rs config.ReplicationService) (database.Handle, error)

func openHandle(rs config.ReplicationService) (database.Handle, error) {
	ds := rs.Datasource
	return database.Open(database.Datasource{
		Type:     ds.Type,
		Host:     ds.Host,
		Port:     ds.Port,
		User:     ds.User,
		Password: ds.Password,
	})
}

// resetReplicationServices resets and removes every replication service of
// the node. Only a database that cannot be brought up aborts it.
func (t *teardown) resetReplicationServices(ctx context.Context) error {
	services := t.node.Properties().ReplicationServices()
	t.checkDisjoint(services)

	t.replicatorStarted = t.startReplicatorOffline(ctx)
	for _, rs := range services {
		if err := t.resetService(ctx, rs); err != nil {
			return err
		}
	}

	if t.replicatorStarted {
		return t.stopReplicator(ctx)
	}
	return nil
}

func (t *teardown) resetService(ctx context.Context, rs config.ReplicationService) error {
	log := t.log.WithField("service", rs.Alias)

	h, err := t.resolve(rs)
	if err != nil {
		log.Warnf("fail to open the datasource of <%s>, error: %v", rs.Alias, err)
	} else {
		defer h.Close()
		if toggler, ok := h.(database.ReadOnlyToggler); ok {
			if _, err := t.ensureDatabaseStarted(ctx, rs.StartCommand, toggler); err != nil {
				return fmt.Errorf("replication service <%s>: %w", rs.Alias, err)
			}
		}
	}

	if t.replicatorStarted {
		cmd := fmt.Sprintf("%s/tungsten-replicator/bin/trepctl -service %s reset -all -y", t.releaseDir(), rs.DeploymentService)
		if _, err := t.node.Run(ctx, cmd); err != nil {
			log.Warnf("there was a problem resetting the <%s> replication service: %v", rs.DeploymentService, err)
		}
	} else {
		log.Warnf("unable to reset the <%s> replication service", rs.DeploymentService)
	}

	t.removeServiceDirectories(rs)
	t.events.Notify(event.UninstallReplicationService, rs.Alias)
	return nil
}

// removeServiceDirectories deletes a directory below the home directory
// outright; anywhere else only its contents go, the directory may be a
// symlink or a mount point owned by someone else.
func (t *teardown) removeServiceDirectories(rs config.ReplicationService) {
	home := t.node.Property(config.HomeDirectory)
	fsys := t.node.Files()
	for _, dir := range rs.Directories() {
		if dir == "" {
			continue
		}
		var err error
		if files.Within(home, dir) {
			t.log.Debugf("remove %s", dir)
			err = fsys.RemoveAll(dir)
		} else {
			t.log.Debugf("remove the contents of %s", dir)
			err = files.RemoveContents(fsys, dir)
		}
		if err != nil {
			t.fail(fmt.Errorf("fail to remove <%s> of replication service <%s>: %w", dir, rs.Alias, err))
		}
	}
}

// checkDisjoint warns about service directories that overlap a managed path
// and returns the overlapping pairs.
func (t *teardown) checkDisjoint(services []config.ReplicationService) [][2]string {
	var overlaps [][2]string
	managed := t.managedPaths()
	for _, rs := range services {
		for _, dir := range rs.Directories() {
			for _, path := range managed {
				if files.Overlaps(dir, path) {
					t.log.Warnf("directory <%s> of replication service <%s> overlaps <%s>", dir, rs.Alias, path)
					overlaps = append(overlaps, [2]string{dir, path})
				}
			}
		}
	}
	return overlaps
}
