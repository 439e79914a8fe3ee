package viewer

import (
	"context"
	"errors"
	"log"
	"sync"
)

type State string

const (
	StateClosed  State = "closed"
	StateLoading State = "loading"
	StateReady   State = "ready"
	StateFailed  State = "failed"
)

var (
	ErrClosed        = errors.New("viewer is not open")
	errEmptyDocument = errors.New("document has no pages")
)

type Frame struct {
	Topic int
	Page  int
	Image []byte // PNG
}

type Status struct {
	State State  `json:"state"`
	Topic int    `json:"topic,omitempty"`
	Page  int    `json:"page,omitempty"`
	Pages int    `json:"pages,omitempty"`
	URL   string `json:"url,omitempty"`
	Error string `json:"error,omitempty"`
}

// Viewer shows one reference document at a time, one page at a time.
// Page changes go through a Queue so quick paging only draws the last page.
type Viewer struct {
	lookup Lookup
	engine Engine

	mu      sync.Mutex
	status  Status
	path    string
	release func()
	queue   *Queue
	gen     int // bumped on every Open/Close so stale renders are dropped
	frame   *Frame
}

func New(l Lookup, e Engine) *Viewer {
	return &Viewer{lookup: l, engine: e, status: Status{State: StateClosed}}
}

// Open shows page of the topic document. Failures are logged and reflected
// in the status; they are never fatal to the caller's session.
func (v *Viewer) Open(ctx context.Context, topic, page int) Status {
	v.Close()

	v.mu.Lock()
	v.gen++
	gen := v.gen
	v.status = Status{State: StateLoading, Topic: topic, Page: page}
	v.mu.Unlock()

	path, release, err := v.lookup.LocalPath(topic)
	var pages int
	if err == nil {
		pages, err = v.engine.PageCount(ctx, path)
		if err == nil && pages < 1 {
			err = errEmptyDocument
		}
		if err != nil {
			release()
		}
	}

	v.mu.Lock()
	defer v.mu.Unlock()
	if gen != v.gen {
		if err == nil {
			release()
		}
		return v.status
	}
	if err != nil {
		log.Printf("viewer: tema %d unavailable: %v", topic, err)
		v.status.State = StateFailed
		v.status.Error = err.Error()
		return v.status
	}
	if page < 1 {
		page = 1
	}
	if page > pages {
		page = pages
	}
	v.path, v.release = path, release
	v.status.Pages = pages
	v.status.Page = page
	v.status.URL, _ = v.lookup.URL(topic, page)
	v.queue = NewQueue(v.renderer(gen, topic, path))
	v.queue.Request(page)
	return v.status
}

func (v *Viewer) renderer(gen, topic int, path string) func(page int) {
	return func(page int) {
		img, err := v.engine.Render(context.Background(), path, page)

		v.mu.Lock()
		defer v.mu.Unlock()
		if gen != v.gen {
			return
		}
		if err != nil {
			log.Printf("viewer: tema %d page %d: %v", topic, page, err)
			v.status.State = StateFailed
			v.status.Error = err.Error()
			return
		}
		v.frame = &Frame{Topic: topic, Page: page, Image: img}
		if v.status.Page == page {
			v.status.State = StateReady
			v.status.Error = ""
		}
	}
}

func (v *Viewer) Next() (Status, error) { return v.turn(1) }
func (v *Viewer) Prev() (Status, error) { return v.turn(-1) }

// turn moves by delta pages. Moving past either end leaves the page as is.
func (v *Viewer) turn(delta int) (Status, error) {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.queue == nil {
		return v.status, ErrClosed
	}
	page := v.status.Page + delta
	if page < 1 || page > v.status.Pages {
		return v.status, nil
	}
	v.status.Page = page
	v.status.State = StateLoading
	v.status.URL, _ = v.lookup.URL(v.status.Topic, page)
	v.queue.Request(page)
	return v.status, nil
}

func (v *Viewer) State() Status {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.status
}

// Frame returns the most recently rendered page, which may lag behind the
// requested one while renders are in flight.
func (v *Viewer) Frame() (Frame, bool) {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.frame == nil {
		return Frame{}, false
	}
	return *v.frame, true
}

// Wait blocks until pending renders have finished.
func (v *Viewer) Wait() {
	v.mu.Lock()
	q := v.queue
	v.mu.Unlock()
	if q != nil {
		q.Wait()
	}
}

func (v *Viewer) Close() {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.gen++
	q, release := v.queue, v.release
	v.queue, v.release, v.path, v.frame = nil, nil, "", nil
	v.status = Status{State: StateClosed}
	if release != nil {
		go func() {
			q.Wait()
			release()
		}()
	}
}
