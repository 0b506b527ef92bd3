package main

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
)

func captureOutput(t *testing.T, fn func()) string {
	t.Helper()

	origStdout := os.Stdout
	r, w, err := os.Pipe()
	if err != nil {
		t.Fatalf("failed to create pipe: %v", err)
	}
	os.Stdout = w

	fn()

	_ = w.Close()
	os.Stdout = origStdout

	var buf bytes.Buffer
	if _, err := io.Copy(&buf, r); err != nil {
		t.Fatalf("failed to read stdout: %v", err)
	}
	return buf.String()
}

func TestPrintResponse(t *testing.T) {
	out := captureOutput(t, func() {
		printResponse([]byte(`{"a":1}`))
	})

	expected := "{\n  \"a\": 1\n}\n"
	if out != expected {
		t.Fatalf("unexpected json output:\n%s", out)
	}

	out = captureOutput(t, func() {
		printResponse([]byte("not json"))
	})
	if strings.TrimSpace(out) != "not json" {
		t.Fatalf("expected raw fallback, got %q", out)
	}
}

func TestRequestPostsPayload(t *testing.T) {
	var gotMethod, gotPath, gotBody string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotMethod = r.Method
		gotPath = r.URL.Path
		body, _ := io.ReadAll(r.Body)
		gotBody = string(body)

		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(map[string]string{"id": "acc-1"})
	}))
	defer server.Close()

	origURL := baseURL
	baseURL = server.URL
	defer func() { baseURL = origURL }()

	out := captureOutput(t, func() {
		if err := request(http.MethodPost, "/api/v1/accounts/", map[string]string{"name": "Alice"}); err != nil {
			t.Errorf("request failed: %v", err)
		}
	})

	if gotMethod != http.MethodPost || gotPath != "/api/v1/accounts/" {
		t.Fatalf("unexpected request: %s %s", gotMethod, gotPath)
	}
	if !strings.Contains(gotBody, `"name":"Alice"`) {
		t.Fatalf("unexpected body: %s", gotBody)
	}
	if !strings.Contains(out, "acc-1") {
		t.Fatalf("expected response body in output, got %q", out)
	}
}

func TestRequestReportsErrorStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
		json.NewEncoder(w).Encode(map[string]string{"error": "insufficient funds"})
	}))
	defer server.Close()

	origURL := baseURL
	baseURL = server.URL
	defer func() { baseURL = origURL }()

	captureOutput(t, func() {
		err := request(http.MethodPost, "/api/v1/transfers/", map[string]string{})
		if err == nil {
			t.Errorf("expected error for 422 response")
		}
	})
}
