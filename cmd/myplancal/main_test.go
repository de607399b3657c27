package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/hangyu-feng/myplan-calendar/internal/extract"
	"github.com/hangyu-feng/myplan-calendar/internal/web"
)

const snapshot = `
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
      - datetime: "11:20"
  - id: plan-item-2
    title_link:
      text: MATH 126
      primary: true
`

const fallTerm = "term:\n  start: 2024-09-25\n  end: 2024-12-06\n"

func writeFixture(t *testing.T, items string) string {
	t.Helper()
	return writeConfig(t, items, fallTerm)
}

func writeConfig(t *testing.T, items, extra string) string {
	t.Helper()
	dir := t.TempDir()
	itemsPath := filepath.Join(dir, "plan.yaml")
	if err := os.WriteFile(itemsPath, []byte(items), 0o600); err != nil {
		t.Fatal(err)
	}
	cfgPath := filepath.Join(dir, "config.yaml")
	cfg := "source:\n  kind: file\n  path: " + itemsPath + "\n" + extra
	if err := os.WriteFile(cfgPath, []byte(cfg), 0o600); err != nil {
		t.Fatal(err)
	}
	return cfgPath
}

func run(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestRenderJSON(t *testing.T) {
	cfg := writeFixture(t, snapshot)
	out, err := run(t, "", "--config", cfg, "render")
	if err != nil {
		t.Fatalf("render: %v", err)
	}

	var got struct {
		Calendar struct {
			Courses []struct {
				Code string `json:"code"`
			} `json:"courses"`
		} `json:"calendar"`
		Skipped []extract.Skipped `json:"skipped"`
	}
	if err := json.Unmarshal([]byte(out), &got); err != nil {
		t.Fatalf("output is not json: %v\n%s", err, out)
	}
	if len(got.Calendar.Courses) != 1 || got.Calendar.Courses[0].Code != "CSE 142" {
		t.Errorf("courses = %+v", got.Calendar.Courses)
	}
	if len(got.Skipped) != 1 || got.Skipped[0].ID != "plan-item-2" {
		t.Errorf("skipped = %+v", got.Skipped)
	}
}

func TestRenderFormats(t *testing.T) {
	cfg := writeFixture(t, snapshot)

	svg, err := run(t, "", "--config", cfg, "render", "--format", "svg")
	if err != nil || !strings.HasPrefix(svg, "<?xml") {
		t.Errorf("svg render: %v", err)
	}

	out := filepath.Join(t.TempDir(), "plan.ics")
	if _, err := run(t, "", "--config", cfg, "render", "-f", "ics", "-o", out); err != nil {
		t.Fatalf("ics render: %v", err)
	}
	data, err := os.ReadFile(out)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), "BYDAY=MO,WE,FR") {
		t.Errorf("ics output missing rule:\n%s", data)
	}

	if _, err := run(t, "", "--config", cfg, "render", "--format", "pdf"); err == nil {
		t.Error("unknown format should fail")
	}
}

func TestRenderICSWithoutTerm(t *testing.T) {
	cfg := writeConfig(t, snapshot, "")
	out := filepath.Join(t.TempDir(), "plan.ics")
	if _, err := run(t, "", "--config", cfg, "render", "-f", "ics", "-o", out); err == nil {
		t.Fatal("ics without a term should fail")
	}
	if _, err := os.Stat(out); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("output file should not be created, stat err = %v", err)
	}
}

func TestRenderNoCourses(t *testing.T) {
	cfg := writeFixture(t, "items: []\n")
	if _, err := run(t, "", "--config", cfg, "render"); !errors.Is(err, extract.ErrNoCourses) {
		t.Errorf("err = %v, want ErrNoCourses", err)
	}
}

func TestSnapshot(t *testing.T) {
	cfg := writeFixture(t, snapshot)
	out := filepath.Join(t.TempDir(), "copy.yaml")
	msg, err := run(t, "", "--config", cfg, "snapshot", "--out", out)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(msg, "saved 2 plan items") {
		t.Errorf("message = %q", msg)
	}
	if _, err := os.Stat(out); err != nil {
		t.Error(err)
	}
}

func TestHashPassword(t *testing.T) {
	out, err := run(t, "s3cret\n", "hash-password", "-u", "student")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, `username: "student"`) {
		t.Errorf("output = %q", out)
	}

	start := strings.Index(out, `password_hash: "`) + len(`password_hash: "`)
	hash := out[start : len(out)-len("\"\n")]
	ok, err := web.VerifyPassword("s3cret", hash)
	if err != nil || !ok {
		t.Errorf("generated hash does not verify: %v", err)
	}

	if _, err := run(t, "", "hash-password"); err == nil {
		t.Error("empty password should be rejected")
	}
}
