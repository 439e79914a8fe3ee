package bank

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/mind-engage/mindengage-quiz/internal/storage"
)

const DefaultTopicPattern = "alumnos/tema%d.json"

// BlobFetcher reads topic files out of a blob store.
type BlobFetcher struct {
	Store   storage.BlobStore
	Pattern string
}

func (f BlobFetcher) FetchTopic(_ context.Context, topic int) ([]Question, error) {
	rc, err := f.Store.Get(topicKey(f.Pattern, topic))
	if err != nil {
		return nil, err
	}
	defer rc.Close()
	return Decode(rc)
}

// HTTPFetcher reads topic files from a static file server.
type HTTPFetcher struct {
	Client  *http.Client
	BaseURL string
	Pattern string
}

func (f HTTPFetcher) FetchTopic(ctx context.Context, topic int) ([]Question, error) {
	url := strings.TrimSuffix(f.BaseURL, "/") + "/" + topicKey(f.Pattern, topic)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	client := f.Client
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("GET %s: %s", url, resp.Status)
	}
	return Decode(resp.Body)
}

func topicKey(pattern string, topic int) string {
	if pattern == "" {
		pattern = DefaultTopicPattern
	}
	return fmt.Sprintf(pattern, topic)
}
