package node

import (
	"context"
	"fmt"
	"io"

	"github.com/sirupsen/logrus"

	"github.com/YuanDdQiao/tungsten-replicator/pkg/client/files"
	"github.com/YuanDdQiao/tungsten-replicator/pkg/client/remote"
	"github.com/YuanDdQiao/tungsten-replicator/pkg/config"
)

// Executor runs a shell command on the node as the node's user and returns
// its stdout. A nonzero exit status is a *remote.CommandError.
type Executor interface {
	Run(ctx context.Context, cmd string) (string, error)
}

// Node is one host of the cluster being torn down.
type Node struct {
	name  string
	user  string
	exec  Executor
	files files.FileSystem
	props *config.Properties
	log   *logrus.Entry
	close func() error
}

// New connects to the host described by conf.Nodes[name].
func New(name string, conf *config.Config, log *logrus.Logger) (*Node, error) {
	n, ok := conf.Nodes[name]
	if !ok {
		return nil, fmt.Errorf("unknown host <%s>", name)
	}
	logEntry := logrus.NewEntry(log).WithFields(logrus.Fields{
		"host": name,
		"user": n.User,
	})
	props := conf.HostProperties(name)

	if n.Local {
		local := remote.NewLocal(name, logEntry)
		return &Node{
			name:  name,
			user:  n.User,
			exec:  local,
			files: files.Local(),
			props: props,
			log:   logEntry,
			close: local.Close,
		}, nil
	}

	remoteCli, err := remote.New(&remote.Config{
		Address:    fmt.Sprintf("%s:%d", n.Address, n.SSHPort),
		User:       n.User,
		Password:   n.Password,
		PrivateKey: n.PrivateKey,
	}, logEntry)
	if err != nil {
		return nil, err
	}
	return &Node{
		name:  name,
		user:  n.User,
		exec:  remoteCli,
		files: remoteCli.Files(),
		props: props,
		log:   logEntry,
		close: remoteCli.Close,
	}, nil
}

// NewWithClients builds a node on already connected clients.
func NewWithClients(name, user string, props *config.Properties, exec Executor, fsys files.FileSystem, log *logrus.Logger) *Node {
	return &Node{
		name:  name,
		user:  user,
		exec:  exec,
		files: fsys,
		props: props,
		log:   logrus.NewEntry(log).WithFields(logrus.Fields{"host": name, "user": user}),
	}
}

func (n *Node) Name() string {
	return n.name
}

func (n *Node) User() string {
	return n.user
}

func (n *Node) Run(ctx context.Context, cmd string) (string, error) {
	n.log.Debugf("run: %s", cmd)
	return n.exec.Run(ctx, cmd)
}

func (n *Node) Files() files.FileSystem {
	return n.files
}

func (n *Node) Properties() *config.Properties {
	return n.props
}

func (n *Node) Log() *logrus.Entry {
	return n.log
}

// Property is a shortcut for n.Properties().Get.
func (n *Node) Property(path ...string) string {
	return n.props.Get(path...)
}

func (n *Node) IsReplicator() bool {
	return n.props.Bool(config.Replicator)
}

func (n *Node) Close() error {
	if n.close == nil {
		return nil
	}
	return n.close()
}

var _ io.Closer = (*Node)(nil)
