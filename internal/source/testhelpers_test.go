package source

import (
	"context"
	"errors"
)

// fakeClient serves canned HTML bodies by URL. Unknown URLs fail like a
// transport error unless a default body is set.
type fakeClient struct {
	pages       map[string]string
	defaultBody string
	calls       []string
}

func newFakeClient(pages map[string]string) *fakeClient {
	return &fakeClient{pages: pages}
}

func (f *fakeClient) Get(_ context.Context, url string) (string, error) {
	f.calls = append(f.calls, url)
	if body, ok := f.pages[url]; ok {
		return body, nil
	}
	if f.defaultBody != "" {
		return f.defaultBody, nil
	}
	return "", errors.New("fetch failed: " + url)
}
