package http

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestClient_GetSendsHeaders(t *testing.T) {
	var gotAuth, gotAgent string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotAgent = r.Header.Get("User-Agent")
		w.Write([]byte("ok"))
	}))
	defer srv.Close()

	client := NewClient(0)
	body, err := client.GetString(context.Background(), srv.URL, WithBearer("tok"))
	if err != nil {
		t.Fatalf("GetString() error = %v", err)
	}
	if body != "ok" {
		t.Errorf("GetString() = %q, want %q", body, "ok")
	}
	if gotAuth != "Bearer tok" {
		t.Errorf("Authorization = %q, want %q", gotAuth, "Bearer tok")
	}
	if gotAgent != DefaultUserAgent {
		t.Errorf("User-Agent = %q, want %q", gotAgent, DefaultUserAgent)
	}
}

func TestClient_GetStatusError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusUnauthorized)
	}))
	defer srv.Close()

	_, err := NewClientFrom(srv.Client()).Get(context.Background(), srv.URL)
	if err == nil {
		t.Fatal("Get() error = nil, want status error")
	}
	var se *StatusError
	if !errors.As(err, &se) {
		t.Fatalf("Get() error = %T, want *StatusError", err)
	}
	if se.StatusCode != http.StatusUnauthorized {
		t.Errorf("StatusCode = %d, want %d", se.StatusCode, http.StatusUnauthorized)
	}
	if !IsStatusError(err) {
		t.Error("IsStatusError() = false, want true")
	}
}

func TestClient_GetJSON(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Accept") != "application/json" {
			t.Errorf("Accept = %q, want application/json", r.Header.Get("Accept"))
		}
		w.Write([]byte(`{"name":"Road Trip"}`))
	}))
	defer srv.Close()

	var v struct {
		Name string `json:"name"`
	}
	if err := NewClient(0).GetJSON(context.Background(), srv.URL, &v); err != nil {
		t.Fatalf("GetJSON() error = %v", err)
	}
	if v.Name != "Road Trip" {
		t.Errorf("Name = %q, want %q", v.Name, "Road Trip")
	}
}

func TestClient_GetJSONInvalid(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`not json`))
	}))
	defer srv.Close()

	var v map[string]any
	if err := NewClient(0).GetJSON(context.Background(), srv.URL, &v); err == nil {
		t.Error("GetJSON() error = nil, want decode error")
	}
}

func TestProgressWriter(t *testing.T) {
	var sb strings.Builder
	var calls int
	var last int64
	pw := &ProgressWriter{
		Writer: &sb,
		Total:  10,
		OnUpdate: func(written, total int64) {
			calls++
			last = written
		},
	}

	pw.Write([]byte("hello"))
	pw.Write([]byte("world"))

	if sb.String() != "helloworld" {
		t.Errorf("written = %q, want %q", sb.String(), "helloworld")
	}
	if calls != 2 || last != 10 {
		t.Errorf("calls = %d, last = %d; want 2, 10", calls, last)
	}
}

func TestSaveStream(t *testing.T) {
	dest := filepath.Join(t.TempDir(), "Band Song.m4a")

	var last int64
	err := SaveStream(strings.NewReader("audio"), 5, dest, func(written, total int64) {
		last = written
	})
	if err != nil {
		t.Fatalf("SaveStream() error = %v", err)
	}

	data, err := os.ReadFile(dest)
	if err != nil {
		t.Fatalf("ReadFile() error = %v", err)
	}
	if string(data) != "audio" {
		t.Errorf("content = %q, want %q", data, "audio")
	}
	if last != 5 {
		t.Errorf("progress = %d, want 5", last)
	}
	if _, err := os.Stat(dest + ".part"); !os.IsNotExist(err) {
		t.Error("part file left behind")
	}
}

type failingReader struct{ n int }

func (r *failingReader) Read(p []byte) (int, error) {
	if r.n > 0 {
		r.n--
		p[0] = 'x'
		return 1, nil
	}
	return 0, errors.New("connection reset")
}

func TestSaveStream_FailureRemovesPartFile(t *testing.T) {
	dest := filepath.Join(t.TempDir(), "Band Song.m4a")

	if err := SaveStream(&failingReader{n: 3}, 0, dest, nil); err == nil {
		t.Fatal("SaveStream() error = nil, want error")
	}
	if _, err := os.Stat(dest); !os.IsNotExist(err) {
		t.Error("destination file should not exist after failure")
	}
	if _, err := os.Stat(dest + ".part"); !os.IsNotExist(err) {
		t.Error("part file should be removed after failure")
	}
}
