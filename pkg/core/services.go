package core

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/YuanDdQiao/tungsten-replicator/pkg/client/database"
	"github.com/YuanDdQiao/tungsten-replicator/pkg/config"
	"github.com/YuanDdQiao/tungsten-replicator/pkg/event"
	"github.com/YuanDdQiao/tungsten-replicator/pkg/node"
	"github.com/YuanDdQiao/tungsten-replicator/pkg/utils"
)

type Timeouts struct {
	// Undeploy bounds the undeployall script.
	Undeploy time.Duration
	// DatabaseStart bounds the wait for a started database to answer.
	DatabaseStart time.Duration
	// Poll is the liveness probe cadence while waiting for the database.
	Poll time.Duration
}

func DefaultTimeouts() Timeouts {
	return Timeouts{
		Undeploy:      5 * time.Second,
		DatabaseStart: 30 * time.Second,
		Poll:          time.Second,
	}
}

// teardown holds the state of one delete run on one node.
type teardown struct {
	node              *node.Node
	log               *logrus.Entry
	timeouts          Timeouts
	events            event.Notifier
	resolve           HandleResolver
	msg               *utils.Print
	replicatorStarted bool
	errs              []error
}

func (u *Uninstaller) newTeardown(n *node.Node) *teardown {
	return &teardown{
		node:     n,
		log:      n.Log(),
		timeouts: u.timeouts,
		events:   u.events,
		resolve:  u.resolve,
		msg:      u.msg,
	}
}

// fail records a cleanup failure; the run goes on and reports it at the end.
func (t *teardown) fail(err error) {
	t.log.Errorf("%v", err)
	t.errs = append(t.errs, err)
}

func (t *teardown) err() error {
	return errors.Join(t.errs...)
}

func (t *teardown) releaseDir() string {
	return t.node.Property(config.CurrentReleaseDirectory)
}

func (t *teardown) replicatorCommand(args string) string {
	return fmt.Sprintf("%s/tungsten-replicator/bin/replicator %s", t.releaseDir(), args)
}

// stopComponents stops every component of the release.
func (t *teardown) stopComponents(ctx context.Context) error {
	cmd := fmt.Sprintf("%s/cluster-home/bin/stopall", t.releaseDir())
	if _, err := t.node.Run(ctx, cmd); err != nil {
		return fmt.Errorf("fail to stop services: %w", err)
	}
	t.log.Infof("services stopped")
	return nil
}

// stopAllServices undeploys everything; a slow or failing script is only a
// warning, the following steps cope with partially stopped services.
func (t *teardown) stopAllServices(ctx context.Context) {
	script := fmt.Sprintf("%s/cluster-home/bin/undeployall >/dev/null 2>&1", t.releaseDir())
	out := utils.WithTimeout(ctx, t.timeouts.Undeploy, func(ctx context.Context) (string, error) {
		return t.node.Run(ctx, script)
	})
	switch {
	case out.TimedOut:
		t.log.Warnf("unable to run %s: no result after %s", script, t.timeouts.Undeploy)
	case out.Err() != nil:
		t.log.Warnf("unable to run %s: %v", script, out.Err())
	}
}

// startReplicatorOffline starts the replicator without replicating so the
// services accept reset commands.
func (t *teardown) startReplicatorOffline(ctx context.Context) bool {
	if _, err := t.node.Run(ctx, t.replicatorCommand("start offline")); err != nil {
		t.log.Warnf("fail to start the replicator offline, error: %v", err)
		return false
	}
	return true
}

func (t *teardown) stopReplicator(ctx context.Context) error {
	if _, err := t.node.Run(ctx, t.replicatorCommand("stop")); err != nil {
		return fmt.Errorf("fail to stop the replicator: %w", err)
	}
	return nil
}

// ensureDatabaseStarted makes sure the server behind h answers and is
// writable. It returns the read_only value seen before it was cleared.
func (t *teardown) ensureDatabaseStarted(ctx context.Context, startCommand string, h database.ReadOnlyToggler) (string, error) {
	value, err := h.ReadOnly(ctx)
	if err != nil || value == "" {
		t.msg.Message("start the database service on <%s>", t.node.Name())
		t.log.Infof("start the database service")
		if _, err := t.node.Run(ctx, fmt.Sprintf("sudo -n %s start", startCommand)); err != nil {
			t.log.Debugf("database start command failed: %v", err)
		}

		out := utils.WithTimeout(ctx, t.timeouts.DatabaseStart, func(ctx context.Context) (string, error) {
			var readOnly string
			err := utils.Clock(ctx, t.timeouts.Poll, func() error {
				v, err := h.ReadOnly(ctx)
				if err != nil {
					return err
				}
				if v == "" {
					return database.ErrNoValue
				}
				readOnly = v
				return nil
			})
			return readOnly, err
		})
		if out.TimedOut {
			return "", fmt.Errorf("%w: <%s> did not answer within %s", ErrDatabaseNotResponsive, t.node.Name(), t.timeouts.DatabaseStart)
		}
		if out.Err() != nil {
			return "", out.Err()
		}
		value = out.Value
	}

	if value == "1" {
		t.log.Warnf("the database is in read_only mode, this can cause problems with the uninstall - please check for 'read_only' in the database configuration file and startup command")
		if err := h.DisableReadOnly(ctx); err != nil {
			return value, fmt.Errorf("fail to disable read_only on <%s>: %w", t.node.Name(), err)
		}
	}
	return value, nil
}
