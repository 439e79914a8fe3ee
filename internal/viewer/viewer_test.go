package viewer

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"sync"
	"testing"

	"github.com/mind-engage/mindengage-quiz/internal/storage"
)

func TestQueue_CoalescesPendingPages(t *testing.T) {
	started := make(chan int, 8)
	release := make(chan struct{})
	var mu sync.Mutex
	var drawn []int

	q := NewQueue(func(page int) {
		started <- page
		if page == 1 {
			<-release
		}
		mu.Lock()
		drawn = append(drawn, page)
		mu.Unlock()
	})

	q.Request(1)
	<-started // page 1 is in flight
	q.Request(2)
	q.Request(3)
	q.Request(4)
	close(release)
	q.Wait()

	if want := []int{1, 4}; !reflect.DeepEqual(drawn, want) {
		t.Fatalf("drawn = %v, want %v", drawn, want)
	}
}

func TestQueue_IdleRequestRunsImmediately(t *testing.T) {
	var drawn []int
	q := NewQueue(func(page int) { drawn = append(drawn, page) })
	q.Request(3)
	q.Wait()
	q.Request(5)
	q.Wait()
	if want := []int{3, 5}; !reflect.DeepEqual(drawn, want) {
		t.Fatalf("drawn = %v", drawn)
	}
}

func TestParsePageCount(t *testing.T) {
	info := "Title:          Tema 1\nProducer:       LibreOffice\nPages:          42\nEncrypted:      no\n"
	n, err := parsePageCount([]byte(info))
	if err != nil || n != 42 {
		t.Fatalf("n = %d err %v", n, err)
	}
	if _, err := parsePageCount([]byte("Title: x\n")); err == nil {
		t.Fatal("expected error without Pages line")
	}
	if _, err := parsePageCount([]byte("Pages: many\n")); err == nil {
		t.Fatal("expected error for non-numeric count")
	}
}

type fakeEngine struct {
	pages    int
	failOn   int
	countErr error

	mu    sync.Mutex
	calls []int
}

func (f *fakeEngine) PageCount(context.Context, string) (int, error) {
	return f.pages, f.countErr
}

func (f *fakeEngine) Render(_ context.Context, path string, page int) ([]byte, error) {
	f.mu.Lock()
	f.calls = append(f.calls, page)
	f.mu.Unlock()
	if page == f.failOn {
		return nil, errors.New("render failed")
	}
	return []byte(fmt.Sprintf("%s#%d", filepath.Base(path), page)), nil
}

func newLookup(t *testing.T, topics ...int) Lookup {
	t.Helper()
	bs, err := storage.NewFSStore(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	for _, topic := range topics {
		if _, err := bs.Put(fmt.Sprintf(DefaultDocumentPattern, topic), strings.NewReader("%PDF-1.4")); err != nil {
			t.Fatal(err)
		}
	}
	return Lookup{Store: bs, BaseURL: "/documents"}
}

func TestLookup(t *testing.T) {
	l := newLookup(t, 2)
	if got := l.Key(2); got != "pdfs/Tema2.pdf" {
		t.Fatalf("key = %q", got)
	}
	if got, _ := l.URL(2, 17); got != "/documents/2#page=17" {
		t.Fatalf("url = %q", got)
	}
	l.BaseURL = ""
	if got, _ := l.URL(2, 3); !strings.HasPrefix(got, "file://") || !strings.HasSuffix(got, "Tema2.pdf#page=3") {
		t.Fatalf("store url = %q", got)
	}
	if _, err := l.Open(9); !errors.Is(err, ErrNoDocument) {
		t.Fatalf("err = %v", err)
	}
	if _, _, err := l.LocalPath(9); !errors.Is(err, ErrNoDocument) {
		t.Fatalf("err = %v", err)
	}
}

func TestLookup_LocalPathCopiesNonFileStores(t *testing.T) {
	src := newLookup(t, 1)
	rc, err := src.Open(1)
	if err != nil {
		t.Fatal(err)
	}
	rc.Close()

	l := Lookup{Store: wrapped{src.Store}}
	path, release, err := l.LocalPath(1)
	if err != nil {
		t.Fatal(err)
	}
	b, _ := os.ReadFile(path)
	if string(b) != "%PDF-1.4" {
		t.Fatalf("copy = %q", b)
	}
	release()
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Fatalf("temp copy not removed: %v", err)
	}
}

// wrapped hides the Path method of the underlying store.
type wrapped struct{ storage.BlobStore }

func TestViewer_OpenAndPage(t *testing.T) {
	eng := &fakeEngine{pages: 3}
	v := New(newLookup(t, 1), eng)

	st := v.Open(context.Background(), 1, 2)
	if st.State != StateLoading || st.Pages != 3 || st.Page != 2 || st.URL != "/documents/1#page=2" {
		t.Fatalf("open status = %+v", st)
	}
	v.Wait()
	if st := v.State(); st.State != StateReady {
		t.Fatalf("state = %+v", st)
	}
	f, ok := v.Frame()
	if !ok || f.Page != 2 || string(f.Image) != "Tema1.pdf#2" {
		t.Fatalf("frame = %+v", f)
	}

	_, _ = v.Next()
	v.Wait()
	st, _ = v.Next() // already on the last page
	if st.Page != 3 {
		t.Fatalf("page = %d, want 3", st.Page)
	}
	v.Wait()
	for i := 0; i < 5; i++ {
		st, _ = v.Prev()
	}
	v.Wait()
	if st.Page != 1 {
		t.Fatalf("page = %d, want 1", st.Page)
	}
	if f, _ := v.Frame(); f.Page != 1 {
		t.Fatalf("frame page = %d", f.Page)
	}
}

func TestViewer_ClampsRequestedPage(t *testing.T) {
	v := New(newLookup(t, 1), &fakeEngine{pages: 4})
	if st := v.Open(context.Background(), 1, 99); st.Page != 4 {
		t.Fatalf("page = %d", st.Page)
	}
	v.Wait()
	if st := v.Open(context.Background(), 1, 0); st.Page != 1 {
		t.Fatalf("page = %d", st.Page)
	}
	v.Wait()
}

func TestViewer_Failures(t *testing.T) {
	v := New(newLookup(t, 1), &fakeEngine{pages: 2, failOn: 2})

	if st := v.Open(context.Background(), 5, 1); st.State != StateFailed || st.Error == "" {
		t.Fatalf("missing document status = %+v", st)
	}
	if _, err := v.Next(); !errors.Is(err, ErrClosed) {
		t.Fatalf("next on failed viewer err = %v", err)
	}

	v.Open(context.Background(), 1, 2)
	v.Wait()
	if st := v.State(); st.State != StateFailed {
		t.Fatalf("render failure status = %+v", st)
	}

	bad := New(newLookup(t, 1), &fakeEngine{countErr: errors.New("pdfinfo: broken")})
	if st := bad.Open(context.Background(), 1, 1); st.State != StateFailed {
		t.Fatalf("status = %+v", st)
	}
}

func TestViewer_Close(t *testing.T) {
	v := New(newLookup(t, 1), &fakeEngine{pages: 2})
	v.Open(context.Background(), 1, 1)
	v.Wait()
	v.Close()
	if st := v.State(); st.State != StateClosed {
		t.Fatalf("state = %+v", st)
	}
	if _, ok := v.Frame(); ok {
		t.Fatal("frame kept after close")
	}
	if _, err := v.Prev(); !errors.Is(err, ErrClosed) {
		t.Fatalf("err = %v", err)
	}
}

func TestRegistry(t *testing.T) {
	r := NewRegistry(newLookup(t, 1), &fakeEngine{pages: 1})
	if _, ok := r.Get("a", false); ok {
		t.Fatal("viewer exists before create")
	}
	v, _ := r.Get("a", true)
	again, _ := r.Get("a", true)
	if v != again {
		t.Fatal("registry should return the same viewer")
	}
	v.Open(context.Background(), 1, 1)
	v.Wait()
	r.Drop("a")
	if v.State().State != StateClosed {
		t.Fatal("dropped viewer left open")
	}
	if _, ok := r.Get("a", false); ok {
		t.Fatal("viewer still registered")
	}
}
