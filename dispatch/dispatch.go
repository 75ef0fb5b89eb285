// Package dispatch routes native calls arriving on a trampoline back into the
// interpreter.
//
// Generated trampolines know only their slot index and their raw arguments.
// The Dispatcher recovers the method bound to that slot and hands the
// arguments to the Interpreter. Arguments and results travel as raw 64-bit
// words: integers are sign- or zero-extended, floats are bit-cast.
package dispatch

import (
	"errors"
	"fmt"

	"github.com/tliron/commonlog"

	"github.com/chazu/revcall/trampoline"
	"github.com/chazu/revcall/vm"
)

var (
	// ErrNoSlot is reported for a slot index outside the table.
	ErrNoSlot = errors.New("dispatch: no such trampoline slot")
	// ErrUnbound is reported when native code calls a trampoline that no
	// method has claimed.
	ErrUnbound = errors.New("dispatch: trampoline has no bound method")
	// ErrNoDispatcher is reported when a table was never bound.
	ErrNoDispatcher = errors.New("dispatch: trampoline table not bound to a dispatcher")
)

var log = commonlog.GetLogger("revcall.dispatch")

// Interpreter executes a managed method.
type Interpreter interface {
	Invoke(m vm.Method, args []uint64) (uint64, error)
}

// InterpreterFunc adapts a function to Interpreter.
type InterpreterFunc func(m vm.Method, args []uint64) (uint64, error)

// Invoke calls f.
func (f InterpreterFunc) Invoke(m vm.Method, args []uint64) (uint64, error) {
	return f(m, args)
}

// ErrorHandler receives failures of native arrivals. The native caller
// always sees a zero result after a failure.
type ErrorHandler func(err error)

// Option configures a Dispatcher.
type Option func(*Dispatcher)

// WithErrorHandler replaces the default handler, which logs at critical
// level.
func WithErrorHandler(h ErrorHandler) Option {
	return func(d *Dispatcher) { d.onError = h }
}

// Dispatcher connects a registry to an interpreter.
type Dispatcher struct {
	reg     *trampoline.Registry
	interp  Interpreter
	onError ErrorHandler
}

// New creates a dispatcher.
func New(reg *trampoline.Registry, interp Interpreter, opts ...Option) *Dispatcher {
	d := &Dispatcher{
		reg:     reg,
		interp:  interp,
		onError: logError,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

func logError(err error) {
	log.Criticalf("%s", err)
}

// Call handles a native arrival on a trampoline slot. A nil Dispatcher is
// allowed so that an unbound table fails the same way as an unbound slot.
func (d *Dispatcher) Call(slot int, args ...uint64) uint64 {
	if d == nil {
		logError(fmt.Errorf("%w (slot %d)", ErrNoDispatcher, slot))
		return 0
	}
	rec, ok := d.reg.RecordAt(slot)
	if !ok {
		d.onError(fmt.Errorf("%w: %d", ErrNoSlot, slot))
		return 0
	}
	m := rec.Method()
	if m == nil {
		d.onError(fmt.Errorf("%w: slot %d (%s)", ErrUnbound, slot, rec.Signature()))
		return 0
	}
	return d.invoke(m, args)
}

// CallEntry handles a native arrival identified by its entry point.
func (d *Dispatcher) CallEntry(entry trampoline.EntryPoint, args ...uint64) uint64 {
	m, ok := d.reg.LookupMethodByEntryPoint(entry)
	if !ok {
		d.onError(fmt.Errorf("%w: entry point %s", ErrUnbound, entry))
		return 0
	}
	return d.invoke(m, args)
}

func (d *Dispatcher) invoke(m vm.Method, args []uint64) (ret uint64) {
	// A panic must not unwind into native frames.
	defer func() {
		if r := recover(); r != nil {
			d.onError(fmt.Errorf("dispatch: %s panicked: %v", m.FullName(), r))
			ret = 0
		}
	}()
	ret, err := d.interp.Invoke(m, args)
	if err != nil {
		d.onError(fmt.Errorf("dispatch: %s: %w", m.FullName(), err))
		return 0
	}
	return ret
}
