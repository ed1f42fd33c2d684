package remote

import (
	"errors"
	"fmt"
)

var (
	ErrNotConnected = errors.New("ssh client not init")
	ErrNoAuth       = errors.New("no ssh auth method configured")
)

// CommandError is returned when a command exits with a nonzero status.
type CommandError struct {
	Command    string
	Host       string
	ExitStatus int
	Output     string
}

func (e *CommandError) Error() string {
	msg := fmt.Sprintf("command '%s' failed on <%s> with exit status %d", e.Command, e.Host, e.ExitStatus)
	if e.Output != "" {
		msg += ": " + e.Output
	}
	return msg
}
