package core

import (
	"context"

	"github.com/sirupsen/logrus"

	"github.com/YuanDdQiao/tungsten-replicator/pkg/config"
	"github.com/YuanDdQiao/tungsten-replicator/pkg/event"
	"github.com/YuanDdQiao/tungsten-replicator/pkg/node"
	"github.com/YuanDdQiao/tungsten-replicator/pkg/utils"
)

type Uninstaller struct {
	nodes       []*node.Node
	checks      []Check
	events      event.Notifier
	resolve     HandleResolver
	timeouts    Timeouts
	parallelism int
	msg         *utils.Print
	log         *logrus.Logger
}

type Option func(*Uninstaller)

func WithNotifier(n event.Notifier) Option {
	return func(u *Uninstaller) { u.events = n }
}

func WithHandleResolver(r HandleResolver) Option {
	return func(u *Uninstaller) { u.resolve = r }
}

func WithTimeouts(t Timeouts) Option {
	return func(u *Uninstaller) { u.timeouts = t }
}

func WithMessage(p *utils.Print) Option {
	return func(u *Uninstaller) { u.msg = p }
}

// WithParallelism limits the number of nodes processed at the same time.
func WithParallelism(n int) Option {
	return func(u *Uninstaller) { u.parallelism = n }
}

func WithChecks(checks ...Check) Option {
	return func(u *Uninstaller) { u.checks = checks }
}

// Uninstall removes the installation from every host of conf. Nothing is
// touched unless confirmed is set.
func Uninstall(conf *config.Config, confirmed bool, log *logrus.Logger) error {
	if !confirmed {
		return ErrConfirmationRequired
	}
	nodes, err := connect(conf, log)
	if err != nil {
		return err
	}
	defer closeNodes(nodes, log)

	bus := event.NewBus(log)
	msg := utils.NewMessage()
	bus.Subscribe(event.UninstallReplicationService, func(_ string, payload any) {
		msg.Message("replication service <%v> uninstalled", payload)
	})
	return NewUninstaller(nodes, log, WithNotifier(bus), WithMessage(msg)).Run(context.Background())
}

func NewUninstaller(nodes []*node.Node, log *logrus.Logger, opts ...Option) *Uninstaller {
	u := &Uninstaller{
		nodes:    nodes,
		checks:   []Check{CurrentReleaseDirectoryWarning{}},
		resolve:  openHandle,
		timeouts: DefaultTimeouts(),
		msg:      utils.NewMessage(),
		log:      log,
	}
	for _, opt := range opts {
		opt(u)
	}
	if u.events == nil {
		u.events = event.NewBus(log)
	}
	return u
}

// Methods returns the commitments of an uninstall in execution order.
func (u *Uninstaller) Methods() []Method {
	return []Method{
		{Name: "stop_services", RequiredSuccesses: -1, AllowedFailures: 0, Run: u.stopServices},
		{Name: "delete_tungsten", RequiredSuccesses: 0, AllowedFailures: 0, Run: u.deleteTungsten},
	}
}

func (u *Uninstaller) Run(ctx context.Context) error {
	if _, err := Validate(ctx, u.nodes, u.checks...); err != nil {
		return err
	}
	if err := u.runMethods(ctx, u.Methods()); err != nil {
		u.msg.Error("uninstall failed")
		return err
	}
	u.msg.Message("uninstall complete")
	return nil
}

func (u *Uninstaller) stopServices(ctx context.Context, n *node.Node) error {
	return u.newTeardown(n).stopComponents(ctx)
}

func (u *Uninstaller) deleteTungsten(ctx context.Context, n *node.Node) error {
	t := u.newTeardown(n)
	t.stopAllServices(ctx)
	if n.IsReplicator() {
		if err := t.resetReplicationServices(ctx); err != nil {
			return err
		}
	}
	t.removeFiles()
	if err := t.err(); err != nil {
		return err
	}
	u.events.Notify(event.UninstallHost, n.Name())
	return nil
}

func connect(conf *config.Config, log *logrus.Logger) ([]*node.Node, error) {
	var nodes []*node.Node
	for _, name := range conf.NodeNames() {
		n, err := node.New(name, conf, log)
		if err != nil {
			log.Errorf("fail to create node <%s>, error: %v", name, err)
			closeNodes(nodes, log)
			return nil, err
		}
		log.Infof("cluster node <%s> connected as <%s>", name, n.User())
		nodes = append(nodes, n)
	}
	return nodes, nil
}

func closeNodes(nodes []*node.Node, log *logrus.Logger) {
	for _, n := range nodes {
		if err := n.Close(); err != nil {
			log.Warnf("fail to close node <%s>, error: %v", n.Name(), err)
		}
	}
}
