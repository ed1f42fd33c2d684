package utils

import (
	"fmt"
	"io"
	"os"
	"sync"
)

// Print writes the operator facing progress of a run.
type Print struct {
	step int
	out  io.Writer
	mux  sync.Mutex
}

func NewMessage() *Print {
	return NewMessageTo(os.Stdout)
}

func NewMessageTo(out io.Writer) *Print {
	return &Print{out: out}
}

func (p *Print) Step(format string, v ...any) {
	p.mux.Lock()
	defer p.mux.Unlock()
	p.step++
	fmt.Fprintf(p.out, "Step %d: %s\n", p.step, fmt.Sprintf(format, v...))
}

func (p *Print) Message(format string, v ...any) {
	p.println("==> ", format, v...)
}

func (p *Print) Warn(format string, v ...any) {
	p.println("==> WARN: ", format, v...)
}

func (p *Print) Error(format string, v ...any) {
	p.println("==> ERROR: ", format, v...)
}

func (p *Print) println(prefix, format string, v ...any) {
	p.mux.Lock()
	defer p.mux.Unlock()
	fmt.Fprintln(p.out, prefix+fmt.Sprintf(format, v...))
}
