package remote

import (
	"bytes"
	"context"
	"errors"
	"os/exec"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
)

// Local runs commands with /bin/sh on this machine.
type Local struct {
	host string
	log  *logrus.Entry
}

func NewLocal(host string, log *logrus.Entry) *Local {
	return &Local{host: host, log: log}
}

func (l *Local) Run(ctx context.Context, cmd string) (string, error) {
	var stdout, stderr bytes.Buffer
	c := exec.CommandContext(ctx, "/bin/sh", "-c", cmd)
	c.Stdout = &stdout
	c.Stderr = &stderr
	// children of the shell may hold the pipes open after it was killed
	c.WaitDelay = 200 * time.Millisecond

	err := c.Run()
	if ctxErr := ctx.Err(); ctxErr != nil {
		l.log.Debugf("command abandoned: %s", cmd)
		return "", ctxErr
	}
	output := strings.TrimRight(stdout.String(), "\n")
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return output, &CommandError{
				Command:    cmd,
				Host:       l.host,
				ExitStatus: exitErr.ExitCode(),
				Output:     strings.TrimSpace(stderr.String()),
			}
		}
		return output, err
	}
	return output, nil
}

func (l *Local) Close() error {
	return nil
}
