package shell

import (
	"context"
	"sync"

	"github.com/google/uuid"
)

// Prompt kinds.
const (
	KindNotice = "notice"
	KindAsk    = "ask"
)

// A Prompt is one modal surfaced to the page: either a notice the
// operator acknowledges or a binary question they answer.
type Prompt struct {
	ID      string `json:"id"`
	Kind    string `json:"kind"`
	Message string `json:"message"`

	reply chan bool
}

// A DialogQueue shows prompts strictly one at a time, in arrival order.
// A notice raised while another prompt is up queues behind it; nothing is
// dropped or overlapped. The zero value is not usable; use NewDialogQueue.
type DialogQueue struct {
	mu      sync.Mutex
	current *Prompt
	pending []*Prompt
	onShow  func(Prompt)
}

// NewDialogQueue returns an empty queue. onShow fires, without the queue
// lock held, whenever a prompt becomes the visible one; it may be nil.
func NewDialogQueue(onShow func(Prompt)) *DialogQueue {
	return &DialogQueue{onShow: onShow}
}

// Notify queues a notice and returns immediately.
func (q *DialogQueue) Notify(message string) {
	q.enqueue(&Prompt{ID: uuid.NewString(), Kind: KindNotice, Message: message})
}

// Ask queues a binary question and blocks until the operator answers it
// or ctx is cancelled. A cancelled Ask withdraws the prompt.
func (q *DialogQueue) Ask(ctx context.Context, question string) (bool, error) {
	p := &Prompt{
		ID:      uuid.NewString(),
		Kind:    KindAsk,
		Message: question,
		reply:   make(chan bool, 1),
	}
	q.enqueue(p)
	select {
	case accepted := <-p.reply:
		return accepted, nil
	case <-ctx.Done():
		q.withdraw(p.ID)
		return false, ctx.Err()
	}
}

// Answer resolves the currently visible prompt. It reports false when id
// does not name the visible prompt, which happens when the page answers a
// prompt the queue already advanced past.
func (q *DialogQueue) Answer(id string, accepted bool) bool {
	q.mu.Lock()
	if q.current == nil || q.current.ID != id {
		q.mu.Unlock()
		return false
	}
	resolved := q.current
	next := q.advanceLocked()
	q.mu.Unlock()

	if resolved.reply != nil {
		resolved.reply <- accepted
	}
	q.show(next)
	return true
}

// Current returns the visible prompt, if any.
func (q *DialogQueue) Current() (Prompt, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.current == nil {
		return Prompt{}, false
	}
	return *q.current, true
}

func (q *DialogQueue) enqueue(p *Prompt) {
	q.mu.Lock()
	if q.current != nil {
		q.pending = append(q.pending, p)
		q.mu.Unlock()
		return
	}
	q.current = p
	q.mu.Unlock()
	q.show(p)
}

// withdraw removes a prompt that no longer awaits an answer, advancing
// the queue when it was the visible one.
func (q *DialogQueue) withdraw(id string) {
	q.mu.Lock()
	if q.current != nil && q.current.ID == id {
		next := q.advanceLocked()
		q.mu.Unlock()
		q.show(next)
		return
	}
	for i, p := range q.pending {
		if p.ID == id {
			q.pending = append(q.pending[:i], q.pending[i+1:]...)
			break
		}
	}
	q.mu.Unlock()
}

func (q *DialogQueue) advanceLocked() *Prompt {
	if len(q.pending) == 0 {
		q.current = nil
		return nil
	}
	q.current = q.pending[0]
	q.pending = q.pending[1:]
	return q.current
}

func (q *DialogQueue) show(p *Prompt) {
	if p == nil || q.onShow == nil {
		return
	}
	q.onShow(*p)
}
