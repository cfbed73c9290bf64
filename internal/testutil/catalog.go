package testutil

import (
	"context"
	"sync"

	"addrbook/internal/addrbook"
)

// StubCatalog answers every Fetch with a canned response and records the URLs requested.
type StubCatalog struct {
	mu     sync.Mutex
	status int
	body   []byte
	err    error
	urls   []string
}

// NewStubCatalog returns a catalog that answers 200 with body.
func NewStubCatalog(body string) *StubCatalog {
	return &StubCatalog{status: 200, body: []byte(body)}
}

// Respond changes the canned response.
func (c *StubCatalog) Respond(status int, body string, err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.status = status
	c.body = []byte(body)
	c.err = err
}

// URLs returns the URLs fetched so far.
func (c *StubCatalog) URLs() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]string(nil), c.urls...)
}

func (c *StubCatalog) Fetch(_ context.Context, url string) (int, []byte, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.urls = append(c.urls, url)
	if c.err != nil {
		return 0, nil, c.err
	}
	return c.status, append([]byte(nil), c.body...), nil
}

var _ addrbook.CatalogSource = (*StubCatalog)(nil)
