package core

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/mandelsoft/vfs/pkg/memoryfs"
	"github.com/mandelsoft/vfs/pkg/vfs"
	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/require"

	"github.com/YuanDdQiao/tungsten-replicator/pkg/client/database"
	"github.com/YuanDdQiao/tungsten-replicator/pkg/client/files"
	"github.com/YuanDdQiao/tungsten-replicator/pkg/client/remote"
	"github.com/YuanDdQiao/tungsten-replicator/pkg/config"
	"github.com/YuanDdQiao/tungsten-replicator/pkg/node"
	"github.com/YuanDdQiao/tungsten-replicator/pkg/utils"
)

const (
	home    = "/opt/continuent"
	release = home + "/tungsten"
	share   = home + "/share"
)

type rule struct {
	contains string
	out      string
	err      error
	block    bool
}

// fakeExec answers commands by the first rule whose text the command
// contains; anything else succeeds with empty output.
type fakeExec struct {
	mux      sync.Mutex
	commands []string
	rules    []rule
}

func (f *fakeExec) on(contains, out string, err error) *fakeExec {
	f.rules = append(f.rules, rule{contains: contains, out: out, err: err})
	return f
}

func (f *fakeExec) blockOn(contains string) *fakeExec {
	f.rules = append(f.rules, rule{contains: contains, block: true})
	return f
}

func (f *fakeExec) Run(ctx context.Context, cmd string) (string, error) {
	f.mux.Lock()
	f.commands = append(f.commands, cmd)
	rules := f.rules
	f.mux.Unlock()

	for _, r := range rules {
		if !strings.Contains(cmd, r.contains) {
			continue
		}
		if r.block {
			<-ctx.Done()
			return "", ctx.Err()
		}
		return r.out, r.err
	}
	return "", nil
}

// index returns the position of the first command containing s, or -1.
func (f *fakeExec) index(s string) int {
	f.mux.Lock()
	defer f.mux.Unlock()
	for i, cmd := range f.commands {
		if strings.Contains(cmd, s) {
			return i
		}
	}
	return -1
}

func (f *fakeExec) ran(s string) bool {
	return f.index(s) >= 0
}

func cmdErr(cmd string) error {
	return &remote.CommandError{Command: cmd, Host: "db1", ExitStatus: 1}
}

// fakeDB is a MySQL like server that answers the liveness probe after
// downFor failed probes, or never when downFor is negative.
type fakeDB struct {
	mux        sync.Mutex
	readOnly   string
	downFor    int
	probes     int
	closed     bool
	statements []string
}

func (d *fakeDB) GetValue(ctx context.Context, query string) (string, error) {
	d.mux.Lock()
	defer d.mux.Unlock()
	d.probes++
	if d.downFor < 0 || d.probes <= d.downFor {
		return "", errors.New("connection refused")
	}
	return d.readOnly, nil
}

func (d *fakeDB) Run(ctx context.Context, statement string) error {
	d.mux.Lock()
	defer d.mux.Unlock()
	d.statements = append(d.statements, statement)
	if statement == "set global read_only=0" {
		d.readOnly = "0"
	}
	return nil
}

func (d *fakeDB) Close() error {
	d.mux.Lock()
	defer d.mux.Unlock()
	d.closed = true
	return nil
}

func (d *fakeDB) ReadOnly(ctx context.Context) (string, error) {
	return d.GetValue(ctx, "select @@read_only")
}

func (d *fakeDB) DisableReadOnly(ctx context.Context) error {
	return d.Run(ctx, "set global read_only=0")
}

func (d *fakeDB) disabled() bool {
	d.mux.Lock()
	defer d.mux.Unlock()
	for _, s := range d.statements {
		if s == "set global read_only=0" {
			return true
		}
	}
	return false
}

// plainDB has no read_only switch.
type plainDB struct {
	closed bool
}

func (p *plainDB) GetValue(context.Context, string) (string, error) { return "", database.ErrNoValue }
func (p *plainDB) Run(context.Context, string) error               { return nil }
func (p *plainDB) Close() error                                     { p.closed = true; return nil }

func resolverFor(handles map[string]database.Handle) HandleResolver {
	return func(rs config.ReplicationService) (database.Handle, error) {
		h, ok := handles[rs.Alias]
		if !ok {
			return nil, fmt.Errorf("no handle for %s", rs.Alias)
		}
		return h, nil
	}
}

type recorder struct {
	mux    sync.Mutex
	events []string
}

func (r *recorder) Notify(name string, payload any) {
	r.mux.Lock()
	defer r.mux.Unlock()
	r.events = append(r.events, fmt.Sprintf("%s:%v", name, payload))
}

// failingFS fails RemoveAll for the listed paths.
type failingFS struct {
	files.FileSystem
	failOn map[string]bool
}

func (f *failingFS) RemoveAll(path string) error {
	if f.failOn[path] {
		return fmt.Errorf("%s: %w", path, os.ErrPermission)
	}
	return f.FileSystem.RemoveAll(path)
}

type fixture struct {
	t     *testing.T
	mem   vfs.FileSystem
	exec  *fakeExec
	log   *logrus.Logger
	hook  *test.Hook
	props map[string]any
}

func newFixture(t *testing.T) *fixture {
	log, hook := test.NewNullLogger()
	log.SetLevel(logrus.DebugLevel)
	return &fixture{
		t:    t,
		mem:  memoryfs.New(),
		exec: &fakeExec{},
		log:  log,
		hook: hook,
		props: map[string]any{
			config.HomeDirectory: home,
			config.Replicator:    true,
		},
	}
}

func (f *fixture) withServices(services map[string]any) *fixture {
	f.props[config.ReplServices] = services
	return f
}

func (f *fixture) node(name string, fsys files.FileSystem) *node.Node {
	if fsys == nil {
		fsys = files.New(f.mem)
	}
	return node.NewWithClients(name, "tungsten", config.NewProperties(f.props), f.exec, fsys, f.log)
}

func testTimeouts() Timeouts {
	return Timeouts{
		Undeploy:      50 * time.Millisecond,
		DatabaseStart: 150 * time.Millisecond,
		Poll:          5 * time.Millisecond,
	}
}

func (f *fixture) uninstaller(nodes []*node.Node, opts ...Option) *Uninstaller {
	opts = append([]Option{
		WithTimeouts(testTimeouts()),
		WithMessage(utils.NewMessageTo(io.Discard)),
	}, opts...)
	return NewUninstaller(nodes, f.log, opts...)
}

func (f *fixture) teardown(opts ...Option) *teardown {
	n := f.node("db1", nil)
	return f.uninstaller([]*node.Node{n}, opts...).newTeardown(n)
}

func (f *fixture) mkdir(paths ...string) {
	for _, p := range paths {
		require.NoError(f.t, f.mem.MkdirAll(p, 0o755))
	}
}

func (f *fixture) touch(paths ...string) {
	for _, p := range paths {
		require.NoError(f.t, f.mem.MkdirAll(filepath.Dir(p), 0o755))
		require.NoError(f.t, vfs.WriteFile(f.mem, p, []byte(p), 0o644))
	}
}

func (f *fixture) exists(path string) bool {
	_, err := f.mem.Lstat(path)
	return err == nil
}

func (f *fixture) logged(level logrus.Level, contains string) bool {
	for _, e := range f.hook.AllEntries() {
		if e.Level == level && strings.Contains(e.Message, contains) {
			return true
		}
	}
	return false
}
