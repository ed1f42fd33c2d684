package core

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/YuanDdQiao/tungsten-replicator/pkg/node"
)

type FailurePolicy int

const (
	// Abort stops the run when the method fails on more nodes than allowed.
	Abort FailurePolicy = iota
	// Continue reports failures as warnings and moves on.
	Continue
)

func (p FailurePolicy) String() string {
	if p == Continue {
		return "continue"
	}
	return "abort"
}

// Method is a commitment: an ordered unit of teardown work executed on every
// node. RequiredSuccesses of -1 means later methods do not depend on its
// success; AllowedFailures is the number of failing nodes an Abort method
// tolerates.
type Method struct {
	Name              string
	RequiredSuccesses int
	AllowedFailures   int
	Run               func(ctx context.Context, n *node.Node) error
}

func (m Method) Policy() FailurePolicy {
	if m.RequiredSuccesses < 0 {
		return Continue
	}
	return Abort
}

// runMethods executes the methods in order. A method runs on all nodes
// concurrently and the next one starts after every node finished.
func (u *Uninstaller) runMethods(ctx context.Context, methods []Method) error {
	for _, m := range methods {
		if err := u.runMethod(ctx, m); err != nil {
			return err
		}
	}
	return nil
}

func (u *Uninstaller) runMethod(ctx context.Context, m Method) error {
	u.msg.Step("%s", m.Name)

	var g errgroup.Group
	if u.parallelism > 0 {
		g.SetLimit(u.parallelism)
	}
	errs := make([]error, len(u.nodes))
	for i, n := range u.nodes {
		i, n := i, n
		g.Go(func() error {
			if err := m.Run(ctx, n); err != nil {
				errs[i] = fmt.Errorf("%s on <%s>: %w", m.Name, n.Name(), err)
			}
			return nil
		})
	}
	_ = g.Wait()

	var failed []error
	for _, err := range errs {
		if err != nil {
			failed = append(failed, err)
		}
	}
	if len(failed) == 0 {
		return nil
	}
	if m.Policy() == Abort && len(failed) > m.AllowedFailures {
		for _, err := range failed {
			u.log.Errorf("%v", err)
		}
		return errors.Join(failed...)
	}
	for _, err := range failed {
		u.log.Warnf("%v, continuing", err)
		u.msg.Warn("%v", err)
	}
	return nil
}
