package remote

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestFetchAll(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/jobs" {
			t.Errorf("unexpected path %q", r.URL.Path)
		}
		fmt.Fprint(w, `{
			"jobs": [
				{"id": "1", "title": "Backend Engineer", "company": "Acme", "featured": true},
				{"id": "2", "title": "SRE", "company": "Beta", "requirements": "on-call rotation"}
			],
			"total": 2
		}`)
	}))
	defer server.Close()

	client, err := NewClient(server.URL)
	if err != nil {
		t.Fatalf("NewClient() error = %v", err)
	}

	records, total, err := client.FetchAll(context.Background())
	if err != nil {
		t.Fatalf("FetchAll() error = %v", err)
	}
	if total != 2 || len(records) != 2 {
		t.Fatalf("FetchAll() = %d records, total %d", len(records), total)
	}
	if records[0].ID != "1" || !records[0].Featured {
		t.Fatalf("unexpected first record: %+v", records[0])
	}
	if len(records[1].Requirements) != 1 || records[1].Requirements[0] != "on-call rotation" {
		t.Fatalf("opaque requirements text not preserved: %#v", records[1].Requirements)
	}
}

func TestFetchByID(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/jobs/42" {
			t.Errorf("unexpected path %q", r.URL.Path)
		}
		fmt.Fprint(w, `{
			"id": "42",
			"title": "Platform Engineer",
			"description": "Own the build system.",
			"requirements": ["Go", "Bazel"]
		}`)
	}))
	defer server.Close()

	client, err := NewClient(server.URL)
	if err != nil {
		t.Fatalf("NewClient() error = %v", err)
	}

	record, err := client.FetchByID(context.Background(), "42")
	if err != nil {
		t.Fatalf("FetchByID() error = %v", err)
	}
	if !record.Detailed() {
		t.Fatalf("expected detailed record, got %+v", record)
	}
	if len(record.Requirements) != 2 {
		t.Fatalf("Requirements = %#v", record.Requirements)
	}
}

func TestFetchErrorsWrapSentinel(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusInternalServerError)
	}))
	defer server.Close()

	client, err := NewClient(server.URL)
	if err != nil {
		t.Fatalf("NewClient() error = %v", err)
	}

	if _, _, err := client.FetchAll(context.Background()); !errors.Is(err, ErrFetchFailed) {
		t.Fatalf("FetchAll() error = %v, want ErrFetchFailed", err)
	}
	if _, err := client.FetchByID(context.Background(), "42"); !errors.Is(err, ErrFetchFailed) {
		t.Fatalf("FetchByID() error = %v, want ErrFetchFailed", err)
	}
}

func TestFetchMalformedPayloadWrapsSentinel(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"jobs": "not a list"`)
	}))
	defer server.Close()

	client, err := NewClient(server.URL)
	if err != nil {
		t.Fatalf("NewClient() error = %v", err)
	}

	if _, _, err := client.FetchAll(context.Background()); !errors.Is(err, ErrFetchFailed) {
		t.Fatalf("FetchAll() error = %v, want ErrFetchFailed", err)
	}
}

func TestNewClientValidatesBaseURL(t *testing.T) {
	if _, err := NewClient("   "); err == nil {
		t.Fatalf("expected error for empty base url")
	}
}
