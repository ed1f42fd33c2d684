package remote_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/YuanDdQiao/tungsten-replicator/pkg/client/remote"
)

func newLocal() *remote.Local {
	return remote.NewLocal("localhost", logrus.NewEntry(logrus.New()))
}

func TestLocal_Run(t *testing.T) {
	out, err := newLocal().Run(context.Background(), "if [ -d / ]; then echo 0; else echo 1; fi")
	require.NoError(t, err)
	assert.Equal(t, "0", out)
}

func TestLocal_RunFails(t *testing.T) {
	_, err := newLocal().Run(context.Background(), "echo broken >&2; exit 3")
	require.Error(t, err)

	var cmdErr *remote.CommandError
	require.True(t, errors.As(err, &cmdErr))
	assert.Equal(t, 3, cmdErr.ExitStatus)
	assert.Equal(t, "broken", cmdErr.Output)
	assert.Equal(t, "localhost", cmdErr.Host)
	assert.Contains(t, cmdErr.Error(), "exit status 3")
}

func TestLocal_RunCancelled(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	start := time.Now()
	_, err := newLocal().Run(ctx, "sleep 5")
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	var cmdErr *remote.CommandError
	assert.False(t, errors.As(err, &cmdErr))
	assert.Less(t, time.Since(start), 4*time.Second)
}
