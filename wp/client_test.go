package wp

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
)

func TestDoRetriesTransientFailures(t *testing.T) {
	var attempts atomic.Int64
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if attempts.Add(1) < 3 {
			http.Error(w, "upstream hiccup", http.StatusBadGateway)
			return
		}
		fmt.Fprint(w, `{"data":{"categories":{"nodes":[]}}}`)
	}))
	defer srv.Close()
	client := New(srv.URL, WithMaxRetries(5))

	if _, err := client.Categories(context.Background()); err != nil {
		t.Fatalf("expected retries to recover, got: %v", err)
	}
	if n := attempts.Load(); n != 3 {
		t.Errorf("attempts = %d, want 3", n)
	}
}

func TestDoDoesNotRetryClientErrors(t *testing.T) {
	var attempts atomic.Int64
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts.Add(1)
		http.Error(w, "bad request", http.StatusBadRequest)
	}))
	defer srv.Close()
	client := New(srv.URL, WithMaxRetries(5))

	if _, err := client.Categories(context.Background()); err == nil {
		t.Fatal("expected an error")
	}
	if n := attempts.Load(); n != 1 {
		t.Errorf("attempts = %d, want 1 (4xx is permanent)", n)
	}
}

func TestDoDoesNotRetryResolverErrors(t *testing.T) {
	var attempts atomic.Int64
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts.Add(1)
		fmt.Fprint(w, `{"data":null,"errors":[{"message":"Cannot query field \"posts\""}]}`)
	}))
	defer srv.Close()
	client := New(srv.URL, WithMaxRetries(5))

	_, err := client.Categories(context.Background())
	if err == nil {
		t.Fatal("expected a graphql error")
	}
	if n := attempts.Load(); n != 1 {
		t.Errorf("attempts = %d, want 1 (resolver errors are permanent)", n)
	}
}

func TestDoMalformedResponse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `<html>not json</html>`)
	}))
	defer srv.Close()
	client := New(srv.URL, WithMaxRetries(0))

	if _, err := client.Categories(context.Background()); err == nil {
		t.Fatal("expected an error for a malformed response")
	}
}

func TestDoSendsQueryAndVariables(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if ct := r.Header.Get("Content-Type"); ct != "application/json" {
			t.Errorf("Content-Type = %q, want application/json", ct)
		}
		if r.Method != http.MethodPost {
			t.Errorf("method = %q, want POST", r.Method)
		}
		fmt.Fprint(w, `{"data":{"post":null}}`)
	}))
	defer srv.Close()
	client := New(srv.URL, WithMaxRetries(0))

	if _, err := client.PostBySlug(context.Background(), "anything"); err != nil {
		t.Fatalf("PostBySlug failed: %v", err)
	}
}

func TestDoContextCancellation(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	}))
	defer srv.Close()
	client := New(srv.URL, WithMaxRetries(0))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := client.Categories(ctx); err == nil {
		t.Fatal("expected an error for a cancelled context")
	}
}
