package viewer

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/mind-engage/mindengage-quiz/internal/storage"
)

const DefaultDocumentPattern = "pdfs/Tema%d.pdf"

var ErrNoDocument = errors.New("reference document not available")

// Lookup maps a topic to its reference document in the blob store.
type Lookup struct {
	Store   storage.BlobStore
	Pattern string // fmt pattern taking the topic number
	BaseURL string // public prefix for document links, e.g. "/documents"
}

func (l Lookup) Key(topic int) string {
	p := l.Pattern
	if p == "" {
		p = DefaultDocumentPattern
	}
	return fmt.Sprintf(p, topic)
}

func (l Lookup) Open(topic int) (io.ReadCloser, error) {
	rc, err := l.Store.Get(l.Key(topic))
	if errors.Is(err, storage.ErrNotFound) {
		return nil, fmt.Errorf("tema %d: %w", topic, ErrNoDocument)
	}
	return rc, err
}

// URL links to page of the topic document using the #page fragment PDF
// readers understand.
func (l Lookup) URL(topic, page int) (string, error) {
	var base string
	if l.BaseURL != "" {
		base = fmt.Sprintf("%s/%d", strings.TrimRight(l.BaseURL, "/"), topic)
	} else {
		u, err := l.Store.SignedURL(l.Key(topic))
		if err != nil {
			return "", err
		}
		base = u
	}
	if page < 1 {
		return base, nil
	}
	return fmt.Sprintf("%s#page=%d", base, page), nil
}

type pather interface{ Path(key string) string }

// LocalPath returns a filesystem path for the topic document. Stores that
// are not file backed get a temporary copy; release removes it.
func (l Lookup) LocalPath(topic int) (path string, release func(), err error) {
	if p, ok := l.Store.(pather); ok {
		path = p.Path(l.Key(topic))
		if _, err := os.Stat(path); err != nil {
			return "", nil, fmt.Errorf("tema %d: %w", topic, ErrNoDocument)
		}
		return path, func() {}, nil
	}

	rc, err := l.Open(topic)
	if err != nil {
		return "", nil, err
	}
	defer rc.Close()
	f, err := os.CreateTemp("", "tema-*.pdf")
	if err != nil {
		return "", nil, err
	}
	release = func() { os.Remove(f.Name()) }
	if _, err := io.Copy(f, rc); err != nil {
		f.Close()
		release()
		return "", nil, err
	}
	if err := f.Close(); err != nil {
		release()
		return "", nil, err
	}
	return f.Name(), release, nil
}
