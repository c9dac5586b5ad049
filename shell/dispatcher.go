// Package shell is the thin presentation layer: a single-goroutine
// dispatcher that serializes all board mutations, a sequential modal
// dialog queue, and a loopback web server exposing the chart to a local
// page.
package shell

// A Dispatcher drains a buffered command channel on one goroutine. The
// board and every callback registered on it run exclusively on that
// goroutine, so none of them need their own locking.
type Dispatcher struct {
	cmds chan func()
	done chan struct{}
}

const commandBacklog = 256

// NewDispatcher returns a dispatcher whose loop is not yet running; call
// Run on a dedicated goroutine.
func NewDispatcher() *Dispatcher {
	return &Dispatcher{
		cmds: make(chan func(), commandBacklog),
		done: make(chan struct{}),
	}
}

// Run drains commands until Close is called.
func (d *Dispatcher) Run() {
	defer close(d.done)
	for fn := range d.cmds {
		fn()
	}
}

// Post queues fn and returns without waiting for it to run.
func (d *Dispatcher) Post(fn func()) {
	d.cmds <- fn
}

// Send queues fn and waits for it to finish. Never call Send from a
// function already running on the loop; it would wait on itself.
func (d *Dispatcher) Send(fn func()) {
	ran := make(chan struct{})
	d.cmds <- func() {
		defer close(ran)
		fn()
	}
	<-ran
}

// Close stops accepting commands, runs out the backlog and waits for the
// loop to exit.
func (d *Dispatcher) Close() {
	close(d.cmds)
	<-d.done
}
