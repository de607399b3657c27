package source

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"

	"github.com/hangyu-feng/myplan-calendar/internal/config"
	"github.com/hangyu-feng/myplan-calendar/internal/extract"
)

const yamlSnapshot = `
items:
  - id: plan-item-1
    title_link:
      text: CSE 142
      label: Computer Science & Engineering 142 Computer Programming I
      primary: true
    spans:
      - text: MWF
        title: Monday Wednesday Friday
    times:
      - datetime: "10:30"
        text: 10:30 AM
      - datetime: "11:20"
        text: 11:20 AM
`

const jsonSnapshot = `[
  {"id": "plan-item-7", "title_link": {"text": "MATH 126", "primary": true},
   "spans": [{"text": "TTh", "title": "Tuesday Thursday"}],
   "times": [{"datetime": "13:30"}, {"datetime": "14:20"}]}
]`

func TestFileYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "plan.yaml")
	if err := os.WriteFile(path, []byte(yamlSnapshot), 0o600); err != nil {
		t.Fatal(err)
	}

	items, err := (&File{Path: path}).Load(context.Background())
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if len(items) != 1 || items[0].ID != "plan-item-1" || items[0].TitleLink == nil {
		t.Fatalf("items = %+v", items)
	}

	res := extract.Extract(items)
	if len(res.Courses) != 1 {
		t.Fatalf("courses = %+v skipped = %+v", res.Courses, res.Skipped)
	}
	c := res.Courses[0]
	if c.Code != "CSE 142" || c.CourseName != "Computer Programming I" || c.Start != 630 || c.End != 680 {
		t.Errorf("course = %+v", c)
	}
}

func TestFileJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "plan.json")
	if err := os.WriteFile(path, []byte(jsonSnapshot), 0o600); err != nil {
		t.Fatal(err)
	}
	items, err := (&File{Path: path}).Load(context.Background())
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if len(items) != 1 || items[0].ID != "plan-item-7" || len(items[0].Times) != 2 {
		t.Errorf("items = %+v", items)
	}
}

func TestSaveThenLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "saved.yaml")
	code := "AA"
	in := []extract.Item{{ID: "plan-item-3", PrimaryCode: &code, Badges: []string{"5 CR"}}}
	if err := Save(path, in); err != nil {
		t.Fatal(err)
	}
	out, err := (&File{Path: path}).Load(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if len(out) != 1 || out[0].PrimaryCode == nil || *out[0].PrimaryCode != "AA" || out[0].Instructor != nil {
		t.Errorf("loaded = %+v", out)
	}
}

func TestFileMissing(t *testing.T) {
	_, err := (&File{Path: filepath.Join(t.TempDir(), "nope.yaml")}).Load(context.Background())
	if !errors.Is(err, os.ErrNotExist) {
		t.Errorf("err = %v, want not-exist", err)
	}
}

func TestHTTPCaching(t *testing.T) {
	var (
		hits    atomic.Int32
		failing atomic.Bool
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		if failing.Load() {
			http.Error(w, "boom", http.StatusBadGateway)
			return
		}
		if r.Header.Get("If-None-Match") == `"v1"` {
			w.WriteHeader(http.StatusNotModified)
			return
		}
		w.Header().Set("ETag", `"v1"`)
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(jsonSnapshot))
	}))
	defer srv.Close()

	h := NewHTTP(srv.URL+"/plan.json", t.TempDir(), 0)
	ctx := context.Background()

	first, err := h.Fetch(ctx)
	if err != nil || first.FromCache {
		t.Fatalf("first fetch: %v fromCache=%v", err, first.FromCache)
	}

	second, err := h.Fetch(ctx)
	if err != nil || !second.FromCache || string(second.Body) != jsonSnapshot {
		t.Fatalf("revalidation: %v fromCache=%v", err, second.FromCache)
	}

	failing.Store(true)
	items, err := h.Load(ctx)
	if err != nil {
		t.Fatalf("fallback to cache failed: %v", err)
	}
	if len(items) != 1 || items[0].ID != "plan-item-7" {
		t.Errorf("items = %+v", items)
	}
	if hits.Load() != 3 {
		t.Errorf("server hits = %d, want 3", hits.Load())
	}
}

func TestHTTPErrorWithoutCache(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	defer srv.Close()

	if _, err := NewHTTP(srv.URL, t.TempDir(), 0).Load(context.Background()); err == nil {
		t.Error("expected error for 404 with empty cache")
	}
}

func TestNew(t *testing.T) {
	tests := []struct {
		cfg     config.SourceConfig
		want    string
		wantErr error
	}{
		{config.SourceConfig{Kind: config.SourceFile, Path: "plan.yaml"}, "*source.File", nil},
		{config.SourceConfig{Kind: config.SourceURL, URL: "https://example.edu/p.json"}, "*source.HTTP", nil},
		{config.SourceConfig{Kind: config.SourceBrowser, URL: "https://example.edu/plan"}, "*source.Browser", nil},
		{config.SourceConfig{Kind: "ftp"}, "", ErrUnknownKind},
	}
	for _, tt := range tests {
		src, err := New(tt.cfg)
		if tt.wantErr != nil {
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("%s: err = %v, want %v", tt.cfg.Kind, err, tt.wantErr)
			}
			continue
		}
		if err != nil {
			t.Errorf("%s: unexpected error %v", tt.cfg.Kind, err)
			continue
		}
		if got := typeName(src); got != tt.want {
			t.Errorf("%s: got %s, want %s", tt.cfg.Kind, got, tt.want)
		}
	}

	if _, err := New(config.SourceConfig{Kind: config.SourceURL}); err == nil {
		t.Error("url kind without url should fail")
	}
}

func TestRedactURL(t *testing.T) {
	if got := redactURL("https://myplan.uw.edu/plan/?token=abc"); got != "https://myplan.uw.edu/...(redacted)" {
		t.Errorf("redactURL = %q", got)
	}
}

func typeName(s Source) string {
	switch s.(type) {
	case *File:
		return "*source.File"
	case *HTTP:
		return "*source.HTTP"
	case *Browser:
		return "*source.Browser"
	}
	return ""
}
