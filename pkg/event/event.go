package event

import (
	"sync"

	"github.com/sirupsen/logrus"
)

const (
	UninstallReplicationService = "uninstall_replication_service"
	UninstallHost               = "uninstall_host"
)

// Notifier publishes an event without waiting for, or reporting, the outcome.
type Notifier interface {
	Notify(name string, payload any)
}

type Handler func(name string, payload any)

type Bus struct {
	mux      sync.RWMutex
	handlers map[string][]Handler
	log      *logrus.Logger
}

func NewBus(log *logrus.Logger) *Bus {
	return &Bus{
		handlers: make(map[string][]Handler),
		log:      log,
	}
}

func (b *Bus) Subscribe(name string, h Handler) {
	b.mux.Lock()
	defer b.mux.Unlock()
	b.handlers[name] = append(b.handlers[name], h)
}

// Notify calls the handlers of name in subscription order. A panicking
// handler is logged and does not reach the caller.
func (b *Bus) Notify(name string, payload any) {
	b.mux.RLock()
	handlers := append([]Handler(nil), b.handlers[name]...)
	b.mux.RUnlock()

	b.log.WithField("event", name).Debugf("notify <%v>", payload)
	for _, h := range handlers {
		b.call(h, name, payload)
	}
}

func (b *Bus) call(h Handler, name string, payload any) {
	defer func() {
		if r := recover(); r != nil {
			b.log.WithField("event", name).Errorf("event handler panic: %v", r)
		}
	}()
	h(name, payload)
}
