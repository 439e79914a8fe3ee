package viewer

import "sync"

// Queue serialises page renders. At most one render runs at a time and at
// most one page waits behind it; a newer request replaces the waiting page,
// so pages skipped over while paging quickly are never drawn.
type Queue struct {
	render func(page int)

	mu      sync.Mutex
	busy    bool
	pending int // 0 when nothing waits
	wg      sync.WaitGroup
}

func NewQueue(render func(page int)) *Queue {
	return &Queue{render: render}
}

// Request asks for page (1-based) to be rendered.
func (q *Queue) Request(page int) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.busy {
		q.pending = page
		return
	}
	q.busy = true
	q.wg.Add(1)
	go q.run(page)
}

func (q *Queue) run(page int) {
	defer q.wg.Done()
	for {
		q.render(page)

		q.mu.Lock()
		if q.pending == 0 {
			q.busy = false
			q.mu.Unlock()
			return
		}
		page, q.pending = q.pending, 0
		q.mu.Unlock()
	}
}

// Wait blocks until no render is running or pending.
func (q *Queue) Wait() { q.wg.Wait() }
