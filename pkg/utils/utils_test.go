package utils_test

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/YuanDdQiao/tungsten-replicator/pkg/utils"
)

func TestWithTimeout_Completes(t *testing.T) {
	out := utils.WithTimeout(context.Background(), time.Second, func(ctx context.Context) (string, error) {
		return "done", nil
	})
	assert.False(t, out.TimedOut)
	assert.NoError(t, out.Err())
	assert.Equal(t, "done", out.Value)
}

func TestWithTimeout_OperationError(t *testing.T) {
	boom := errors.New("boom")
	out := utils.WithTimeout(context.Background(), time.Second, func(ctx context.Context) (int, error) {
		return 1, boom
	})
	assert.False(t, out.TimedOut)
	assert.ErrorIs(t, out.Err(), boom)
}

func TestWithTimeout_Abandons(t *testing.T) {
	release := make(chan struct{})
	defer close(release)

	start := time.Now()
	out := utils.WithTimeout(context.Background(), 20*time.Millisecond, func(ctx context.Context) (string, error) {
		<-release
		return "late", nil
	})
	assert.True(t, out.TimedOut)
	assert.NoError(t, out.Err())
	assert.Empty(t, out.Value)
	assert.Less(t, time.Since(start), time.Second)
}

func TestWithTimeout_ContextAwareOperation(t *testing.T) {
	out := utils.WithTimeout(context.Background(), 20*time.Millisecond, func(ctx context.Context) (string, error) {
		<-ctx.Done()
		return "partial", ctx.Err()
	})
	assert.True(t, out.TimedOut)
	assert.NoError(t, out.Err())
	assert.Empty(t, out.Value)
}

func TestWithTimeout_ParentCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	out := utils.WithTimeout(ctx, time.Second, func(ctx context.Context) (string, error) {
		<-ctx.Done()
		return "", ctx.Err()
	})
	assert.False(t, out.TimedOut)
	assert.ErrorIs(t, out.Err(), context.Canceled)
}

func TestClock_ImmediateSuccess(t *testing.T) {
	calls := 0
	err := utils.Clock(context.Background(), time.Hour, func() error {
		calls++
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 1, calls)
}

func TestClock_EventualSuccess(t *testing.T) {
	calls := 0
	err := utils.Clock(context.Background(), time.Millisecond, func() error {
		calls++
		if calls < 3 {
			return errors.New("not yet")
		}
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 3, calls)
}

func TestClock_Timeout(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Millisecond)
	defer cancel()
	err := utils.Clock(ctx, 5*time.Millisecond, func() error {
		return errors.New("never")
	})
	assert.ErrorIs(t, err, utils.ErrTimeout)
}

func TestClock_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := utils.Clock(ctx, time.Millisecond, func() error {
		return errors.New("never")
	})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestPrint(t *testing.T) {
	var buf bytes.Buffer
	p := utils.NewMessageTo(&buf)
	p.Step("stop services on <%s>", "db1")
	p.Message("reset <%s>", "east")
	p.Step("delete")
	p.Warn("slow")
	p.Error("failed")

	assert.Equal(t, "Step 1: stop services on <db1>\n==> reset <east>\nStep 2: delete\n==> WARN: slow\n==> ERROR: failed\n", buf.String())
}
