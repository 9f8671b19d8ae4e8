package archive

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/hualin/docpack/internal/batch"
)

func TestWriteDocument(t *testing.T) {
	arch, err := New(filepath.Join(t.TempDir(), "docs"))
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	path, err := arch.WriteDocument("user-guide", "quickstart.md", "# Quickstart\n")
	if err != nil {
		t.Fatalf("WriteDocument: %v", err)
	}

	want := filepath.Join(arch.Root(), "user-guide", "quickstart.md")
	if path != want {
		t.Errorf("path = %s, want %s", path, want)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("document not written: %v", err)
	}
	if string(data) != "# Quickstart\n" {
		t.Errorf("content = %q", data)
	}
}

func TestWriteFailureList(t *testing.T) {
	path := filepath.Join(t.TempDir(), "_failed_urls.txt")
	failures := []batch.Failure{
		{URL: "http://a.example", Title: "Alpha", Error: "status 500"},
		{URL: "http://b.example", Title: "Beta", Error: "timeout"},
	}

	if err := WriteFailureList(path, "Failed downloads", failures); err != nil {
		t.Fatalf("WriteFailureList: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	got := string(data)
	if !strings.HasPrefix(got, "# Failed downloads\n") {
		t.Errorf("missing header:\n%s", got)
	}
	for _, want := range []string{
		"- Alpha\n  URL: http://a.example\n  Error: status 500\n",
		"- Beta\n  URL: http://b.example\n  Error: timeout\n",
	} {
		if !strings.Contains(got, want) {
			t.Errorf("missing block %q:\n%s", want, got)
		}
	}
}

func TestWriteReadme(t *testing.T) {
	arch, err := New(t.TempDir())
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	err = arch.WriteReadme(Summary{
		Source:    "links.txt",
		Time:      time.Date(2025, 3, 14, 9, 30, 0, 0, time.UTC),
		Total:     12,
		Completed: 10,
		Failed:    2,
		Categories: map[string]int{
			"user-guide":    7,
			"api-reference": 5,
		},
	})
	if err != nil {
		t.Fatalf("WriteReadme: %v", err)
	}

	data, err := os.ReadFile(filepath.Join(arch.Root(), ReadmeName))
	if err != nil {
		t.Fatal(err)
	}
	got := string(data)
	for _, want := range []string{
		"**Source**: links.txt",
		"**Total**: 12 documents",
		"**Completed**: 10",
		"**Failed**: 2",
		"**api-reference**: 5",
		"**user-guide**: 7",
	} {
		if !strings.Contains(got, want) {
			t.Errorf("readme missing %q:\n%s", want, got)
		}
	}

	// Categories are listed alphabetically.
	if strings.Index(got, "api-reference") > strings.Index(got, "user-guide") {
		t.Errorf("categories not sorted:\n%s", got)
	}
}
