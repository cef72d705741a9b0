// Package dispatcher serializes work onto a single goroutine.
//
// BLE stacks report GATT completions and notifications from whatever goroutine the platform
// happens to use. Links own one Dispatcher for GATT operations and another for events so that
// operations never overlap and events reach profiles one at a time, in the order they were posted.
package dispatcher

import (
	"errors"
	"sync"

	"github.com/tieto/bleprofile/internal/log"
)

// ErrClosed is returned when submitting work to a Dispatcher that has been closed.
var ErrClosed = errors.New("dispatcher: closed")

// Dispatcher objects run submitted tasks one at a time, in submission order.
//
// Submit never blocks, so it is safe to call from platform callbacks.
type Dispatcher struct {
	name string

	lock   sync.Mutex
	queue  []func()
	closed bool

	wake chan struct{}
	done chan struct{}
}

// New starts a Dispatcher. The name is only used for logging.
func New(name string) *Dispatcher {
	d := &Dispatcher{
		name: name,
		wake: make(chan struct{}, 1),
		done: make(chan struct{}),
	}
	go d.process()
	return d
}

// Submit queues task for execution.
func (d *Dispatcher) Submit(task func()) error {
	d.lock.Lock()
	if d.closed {
		d.lock.Unlock()
		return ErrClosed
	}
	d.queue = append(d.queue, task)
	d.lock.Unlock()

	select {
	case d.wake <- struct{}{}:
	default:
	}
	return nil
}

// Pending returns the number of tasks that have been submitted but not started.
func (d *Dispatcher) Pending() int {
	d.lock.Lock()
	defer d.lock.Unlock()
	return len(d.queue)
}

// Close discards queued tasks and stops the Dispatcher once the running task (if any) returns.
// Close does not wait, so it may be called from inside a task. Use Done to wait.
func (d *Dispatcher) Close() {
	d.lock.Lock()
	if d.closed {
		d.lock.Unlock()
		return
	}
	d.closed = true
	if dropped := len(d.queue); dropped > 0 {
		log.Debug("dispatcher %s: discarding %d queued tasks", d.name, dropped)
	}
	d.queue = nil
	d.lock.Unlock()

	select {
	case d.wake <- struct{}{}:
	default:
	}
}

// Done returns a channel that is closed after the Dispatcher stops.
func (d *Dispatcher) Done() <-chan struct{} {
	return d.done
}

func (d *Dispatcher) next() (task func(), ok bool) {
	d.lock.Lock()
	defer d.lock.Unlock()
	if d.closed || len(d.queue) == 0 {
		return nil, false
	}
	task = d.queue[0]
	d.queue[0] = nil
	d.queue = d.queue[1:]
	return task, true
}

func (d *Dispatcher) isClosed() bool {
	d.lock.Lock()
	defer d.lock.Unlock()
	return d.closed
}

func (d *Dispatcher) process() {
	defer close(d.done)
	for {
		if task, ok := d.next(); ok {
			task()
			continue
		}
		if d.isClosed() {
			return
		}
		<-d.wake
	}
}
