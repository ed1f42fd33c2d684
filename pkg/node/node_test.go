package node_test

import (
	"context"
	"testing"

	"github.com/mandelsoft/vfs/pkg/memoryfs"
	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/YuanDdQiao/tungsten-replicator/pkg/client/files"
	"github.com/YuanDdQiao/tungsten-replicator/pkg/config"
	"github.com/YuanDdQiao/tungsten-replicator/pkg/node"
)

type echoExec struct {
	commands []string
}

func (e *echoExec) Run(_ context.Context, cmd string) (string, error) {
	e.commands = append(e.commands, cmd)
	return cmd, nil
}

func TestNewWithClients(t *testing.T) {
	log, hook := test.NewNullLogger()
	log.SetLevel(logrus.DebugLevel)
	exec := &echoExec{}
	props := config.NewProperties(map[string]any{
		config.HomeDirectory: "/opt/continuent",
		config.Replicator:    "true",
	})

	n := node.NewWithClients("db1", "tungsten", props, exec, files.New(memoryfs.New()), log)

	assert.Equal(t, "db1", n.Name())
	assert.Equal(t, "tungsten", n.User())
	assert.True(t, n.IsReplicator())
	assert.Equal(t, "/opt/continuent/tungsten", n.Property(config.CurrentReleaseDirectory))

	out, err := n.Run(context.Background(), "uptime")
	require.NoError(t, err)
	assert.Equal(t, "uptime", out)
	assert.Equal(t, []string{"uptime"}, exec.commands)

	entry := hook.LastEntry()
	require.NotNil(t, entry)
	assert.Equal(t, "db1", entry.Data["host"])
	assert.Equal(t, "run: uptime", entry.Message)

	assert.NoError(t, n.Close())
}

func TestNew_Local(t *testing.T) {
	conf := &config.Config{
		Defaults: map[string]any{config.HomeDirectory: "/opt/continuent"},
		Nodes: map[string]*config.Node{
			"localhost": {User: "tungsten", Local: true, Properties: map[string]any{config.Replicator: false}},
		},
	}
	log, _ := test.NewNullLogger()

	n, err := node.New("localhost", conf, log)
	require.NoError(t, err)
	defer n.Close()

	assert.False(t, n.IsReplicator())
	assert.Equal(t, "localhost", n.Property(config.Host))
	assert.Equal(t, "tungsten", n.Property(config.UserID))

	out, err := n.Run(context.Background(), "echo hello")
	require.NoError(t, err)
	assert.Equal(t, "hello", out)

	_, err = n.Files().Stat("/")
	assert.NoError(t, err)
}

func TestNew_UnknownHost(t *testing.T) {
	log, _ := test.NewNullLogger()
	_, err := node.New("db9", &config.Config{}, log)
	assert.ErrorContains(t, err, "db9")
}
