package editor

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"sync"
)

var (
	// ErrNotMounted is returned by Post before Run has started.
	ErrNotMounted = errors.New("editor loop not running")

	// ErrStopped is returned by Post after Run has returned.
	ErrStopped = errors.New("editor loop stopped")
)

// Command is a unit of work applied to an Editor on its owning goroutine.
type Command interface {
	Apply(e *Editor) error
}

// CommandFunc adapts a function to Command.
type CommandFunc func(e *Editor) error

// Apply calls f(e).
func (f CommandFunc) Apply(e *Editor) error {
	return f(e)
}

// AddNode is the host page's "add state" trigger.
type AddNode struct{}

// Apply adds a state at the default position.
func (AddNode) Apply(e *Editor) error {
	e.AddState()
	return nil
}

// Typed is implemented by commands that carry a wire type name, such as
// renderer events. Logs use it in place of the Go type name.
type Typed interface {
	Type() string
}

func commandName(cmd Command) string {
	if n, ok := cmd.(Typed); ok {
		return n.Type()
	}
	t := reflect.TypeOf(cmd)
	if t == nil {
		return "nil"
	}
	if t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	return t.Name()
}

// Loop serializes commands from any number of goroutines onto one editor.
// Commands run strictly in the order Post accepted them.
type Loop struct {
	ed    *Editor
	inbox chan Command

	mu       sync.Mutex
	mounted  bool
	stopped  bool
	inflight sync.WaitGroup
	quit     chan struct{}
	done     chan struct{}
}

// NewLoop creates a loop for ed with a bounded inbox.
func NewLoop(ed *Editor, buffer int) *Loop {
	if buffer < 1 {
		buffer = 1
	}
	return &Loop{
		ed:    ed,
		inbox: make(chan Command, buffer),
		quit:  make(chan struct{}),
		done:  make(chan struct{}),
	}
}

// Run applies posted commands until ctx is cancelled. Observers receive the
// initial snapshot once the loop is mounted. Every command Post accepted is
// applied before Run returns.
func (l *Loop) Run(ctx context.Context) error {
	l.mu.Lock()
	if l.mounted || l.stopped {
		l.mu.Unlock()
		return fmt.Errorf("loop already started")
	}
	l.mounted = true
	l.mu.Unlock()

	defer l.stop()

	l.ed.notify()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case cmd := <-l.inbox:
			commandQueueDepth.Set(float64(len(l.inbox)))
			_ = l.ed.Exec(cmd)
		}
	}
}

// stop refuses new commands, waits for posts already in flight and applies
// whatever they queued.
func (l *Loop) stop() {
	l.mu.Lock()
	l.stopped = true
	l.mu.Unlock()
	close(l.quit)

	l.inflight.Wait()
	for {
		select {
		case cmd := <-l.inbox:
			_ = l.ed.Exec(cmd)
		default:
			commandQueueDepth.Set(0)
			close(l.done)
			return
		}
	}
}

// Post queues cmd for the loop. It blocks while the inbox is full. A nil
// return means cmd will be applied.
func (l *Loop) Post(ctx context.Context, cmd Command) error {
	l.mu.Lock()
	if l.stopped {
		l.mu.Unlock()
		return ErrStopped
	}
	if !l.mounted {
		l.mu.Unlock()
		return ErrNotMounted
	}
	l.inflight.Add(1)
	l.mu.Unlock()
	defer l.inflight.Done()

	select {
	case l.inbox <- cmd:
		commandQueueDepth.Set(float64(len(l.inbox)))
		return nil
	case <-l.quit:
		return ErrStopped
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Done is closed when Run returns, after every accepted command is applied.
func (l *Loop) Done() <-chan struct{} {
	return l.done
}
