package monitop

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
)

func newTestClient(t *testing.T, handler http.Handler) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	u, err := url.Parse(srv.URL)
	if err != nil {
		t.Fatalf("parse server url: %v", err)
	}
	return NewClient(u, 0, nil)
}

func TestGetJSONFailureCarriesBody(t *testing.T) {
	t.Parallel()

	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte("boom"))
	}))

	_, err := client.Samples(context.Background(), 10)
	var reqErr *RequestError
	if !errors.As(err, &reqErr) {
		t.Fatalf("expected RequestError, got %T: %v", err, err)
	}
	if reqErr.Error() != "boom" {
		t.Fatalf("message = %q, want %q", reqErr.Error(), "boom")
	}
	if reqErr.StatusCode != http.StatusInternalServerError {
		t.Fatalf("status = %d", reqErr.StatusCode)
	}
}

func TestGetJSONFailureBodyIsNotParsed(t *testing.T) {
	t.Parallel()

	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error": "invalid target"}`))
	}))

	_, err := client.Model(context.Background(), "nope")
	var reqErr *RequestError
	if !errors.As(err, &reqErr) {
		t.Fatalf("expected RequestError, got %T: %v", err, err)
	}
	if reqErr.Body != `{"error": "invalid target"}` {
		t.Fatalf("body = %q", reqErr.Body)
	}
}

func TestGetJSONBypassesCache(t *testing.T) {
	t.Parallel()

	var gotCacheControl, gotPragma, gotQuery string
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotCacheControl = r.Header.Get("Cache-Control")
		gotPragma = r.Header.Get("Pragma")
		gotQuery = r.URL.RawQuery
		_, _ = w.Write([]byte(`{"points": [{"N": 10, "tpu": 0.5}]}`))
	}))

	points, err := client.Throughput(context.Background(), "chunks", 1000)
	if err != nil {
		t.Fatalf("Throughput returned error: %v", err)
	}
	if gotCacheControl != "no-cache" || gotPragma != "no-cache" {
		t.Fatalf("cache headers = %q / %q", gotCacheControl, gotPragma)
	}
	if gotQuery != "n=1000&target=chunks" {
		t.Fatalf("query = %q", gotQuery)
	}
	if len(points) != 1 || points[0].N != 10 || points[0].TPU != 0.5 {
		t.Fatalf("points = %+v", points)
	}
}

func TestGetJSONMalformedBody(t *testing.T) {
	t.Parallel()

	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"samples": [`))
	}))

	_, err := client.Samples(context.Background(), 5)
	var decodeErr *DecodeError
	if !errors.As(err, &decodeErr) {
		t.Fatalf("expected DecodeError, got %T: %v", err, err)
	}
}

func TestSamplesDecodesNullsAsAbsent(t *testing.T) {
	t.Parallel()

	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/samples" {
			http.NotFound(w, r)
			return
		}
		_, _ = w.Write([]byte(`{"samples": [{"ts": null, "files": 0, "chunks": null}]}`))
	}))

	samples, err := client.Samples(context.Background(), 500)
	if err != nil {
		t.Fatalf("Samples returned error: %v", err)
	}
	if len(samples) != 1 {
		t.Fatalf("got %d samples", len(samples))
	}
	s := samples[0]
	if s.TS != nil || s.Chunks != nil || s.Candidates != nil {
		t.Fatalf("expected nil fields, got %+v", s)
	}
	if s.Files == nil || *s.Files != 0 {
		t.Fatalf("files should be present and zero, got %v", s.Files)
	}
}

func TestEndpointKeepsBasePath(t *testing.T) {
	t.Parallel()

	base, _ := url.Parse("http://monitor.lan:8000/monitor/")
	client := NewClient(base, 0, nil)
	got := client.endpoint("/api/status", nil)
	if got != "http://monitor.lan:8000/monitor/api/status" {
		t.Fatalf("endpoint = %q", got)
	}
}
