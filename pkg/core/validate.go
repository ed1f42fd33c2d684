package core

import (
	"context"
	"fmt"

	"github.com/kballard/go-shellquote"
	"github.com/sirupsen/logrus"

	"github.com/YuanDdQiao/tungsten-replicator/pkg/config"
	"github.com/YuanDdQiao/tungsten-replicator/pkg/node"
)

// Check is a read-only pre-flight test run against one node.
type Check interface {
	Title() string
	Validate(ctx context.Context, n *node.Node, r *Report)
}

// Report collects the findings of the checks on one node.
type Report struct {
	Host     string
	Warnings []string
	Errors   []string
	log      *logrus.Entry
}

func (r *Report) Warn(format string, v ...any) {
	msg := fmt.Sprintf(format, v...)
	r.log.Warn(msg)
	r.Warnings = append(r.Warnings, msg)
}

func (r *Report) Error(format string, v ...any) {
	msg := fmt.Sprintf(format, v...)
	r.log.Error(msg)
	r.Errors = append(r.Errors, msg)
}

func (r *Report) Debug(format string, v ...any) {
	r.log.Debugf(format, v...)
}

// Validate runs the checks on every node. Warnings never fail it; any
// reported error makes it return ErrValidationFailed.
func Validate(ctx context.Context, nodes []*node.Node, checks ...Check) ([]*Report, error) {
	var reports []*Report
	failed := 0
	for _, n := range nodes {
		r := &Report{Host: n.Name(), log: n.Log()}
		for _, c := range checks {
			r.Debug("check %s", c.Title())
			c.Validate(ctx, n, r)
		}
		failed += len(r.Errors)
		reports = append(reports, r)
	}
	if failed > 0 {
		return reports, fmt.Errorf("%w: %d error(s)", ErrValidationFailed, failed)
	}
	return reports, nil
}

// ValidateConfig connects to every host of conf and runs the blocking
// current release directory check.
func ValidateConfig(conf *config.Config, log *logrus.Logger) error {
	nodes, err := connect(conf, log)
	if err != nil {
		return err
	}
	defer closeNodes(nodes, log)
	_, err = Validate(context.Background(), nodes, CurrentReleaseDirectoryCheck{})
	return err
}

// CurrentReleaseDirectoryWarning reports a missing release directory without
// blocking the run.
type CurrentReleaseDirectoryWarning struct{}

func (CurrentReleaseDirectoryWarning) Title() string {
	return "Current release directory"
}

func (CurrentReleaseDirectoryWarning) Validate(ctx context.Context, n *node.Node, r *Report) {
	checkCurrentReleaseDirectory(ctx, n, r.Warn, r)
}

// CurrentReleaseDirectoryCheck blocks the run when the release directory is
// missing.
type CurrentReleaseDirectoryCheck struct{}

func (CurrentReleaseDirectoryCheck) Title() string {
	return "Current release directory"
}

func (CurrentReleaseDirectoryCheck) Validate(ctx context.Context, n *node.Node, r *Report) {
	checkCurrentReleaseDirectory(ctx, n, r.Error, r)
}

func checkCurrentReleaseDirectory(ctx context.Context, n *node.Node, report func(string, ...any), r *Report) {
	dir := n.Property(config.CurrentReleaseDirectory)
	r.Debug("checking %s", dir)

	cmd := fmt.Sprintf("if [ -d %s ]; then echo 0; else echo 1; fi", shellquote.Join(dir))
	isDirectory, err := n.Run(ctx, cmd)
	if err != nil {
		report("unable to check %s: %v", dir, err)
		return
	}
	if isDirectory != "0" {
		report("%s does not exist", dir)
		return
	}
	r.Debug("%s exists", dir)
}
