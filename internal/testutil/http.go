package testutil

import (
	"io"
	"net/http"
	"testing"
	"time"
)

// Response is the decoded reply of a sheet request.
type Response struct {
	Status      int
	ContentType string
	Body        string
}

// Fetch issues method against url and returns the reply, failing the test on
// transport errors.
//
// Precondition: url must point at a listening server.
func Fetch(t *testing.T, method, url string) Response {
	t.Helper()
	client := &http.Client{Timeout: 5 * time.Second}
	req, err := http.NewRequest(method, url, nil)
	if err != nil {
		t.Fatalf("building %s %s: %v", method, url, err)
	}
	resp, err := client.Do(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, url, err)
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("reading %s %s: %v", method, url, err)
	}
	return Response{Status: resp.StatusCode, ContentType: resp.Header.Get("Content-Type"), Body: string(body)}
}
