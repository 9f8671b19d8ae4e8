package notebook

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestBatchName(t *testing.T) {
	testCases := []struct {
		name     string
		batchNum int
		want     string
	}{
		{"Docs", 1, "Docs"},
		{"Docs", 2, "Docs (2)"},
		{"Docs", 10, "Docs (10)"},
	}

	for _, tc := range testCases {
		if got := BatchName(tc.name, tc.batchNum); got != tc.want {
			t.Errorf("BatchName(%q, %d) = %q, want %q", tc.name, tc.batchNum, got, tc.want)
		}
	}
}

func TestParseNotebookID(t *testing.T) {
	testCases := []struct {
		name   string
		output string
		want   string
	}{
		{
			name:   "plain id",
			output: "Created notebook 6ba7b810-9dad-11d1-80b4-00c04fd430c8",
			want:   "6ba7b810-9dad-11d1-80b4-00c04fd430c8",
		},
		{
			name:   "uppercase id",
			output: "ID: 6BA7B810-9DAD-11D1-80B4-00C04FD430C8",
			want:   "6ba7b810-9dad-11d1-80b4-00c04fd430c8",
		},
		{
			name:   "id embedded in noise",
			output: "ok\nnotebook_id=6ba7b810-9dad-11d1-80b4-00c04fd430c8 (created)\n",
			want:   "6ba7b810-9dad-11d1-80b4-00c04fd430c8",
		},
		{
			name:   "no id",
			output: "something went wrong",
			want:   "",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			if got := parseNotebookID(tc.output); got != tc.want {
				t.Errorf("parseNotebookID(%q) = %q, want %q", tc.output, got, tc.want)
			}
		})
	}
}

func TestCreateParsesIDAndRecordsInfo(t *testing.T) {
	infoPath := filepath.Join(t.TempDir(), InfoFileName)
	cli := NewCLI("notebooklm", infoPath, nil)

	var gotArgs []string
	cli.run = func(ctx context.Context, stdin string, name string, args ...string) (string, error) {
		gotArgs = append([]string{name}, args...)
		return "Created notebook 6ba7b810-9dad-11d1-80b4-00c04fd430c8\n", nil
	}

	id, err := cli.Create(context.Background(), "Docs", 2)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if id != "6ba7b810-9dad-11d1-80b4-00c04fd430c8" {
		t.Errorf("id = %q", id)
	}
	want := []string{"notebooklm", "create", "Docs (2)"}
	if len(gotArgs) != len(want) {
		t.Fatalf("command = %v, want %v", gotArgs, want)
	}
	for i := range want {
		if gotArgs[i] != want[i] {
			t.Errorf("command[%d] = %q, want %q", i, gotArgs[i], want[i])
		}
	}

	data, err := os.ReadFile(infoPath)
	if err != nil {
		t.Fatalf("info file not written: %v", err)
	}
	var info map[string]notebookInfo
	if err := json.Unmarshal(data, &info); err != nil {
		t.Fatalf("info file not JSON: %v", err)
	}
	entry, ok := info["batch_2"]
	if !ok {
		t.Fatalf("info file missing batch_2: %v", info)
	}
	if entry.NotebookName != "Docs (2)" || entry.NotebookID != id {
		t.Errorf("info entry = %+v", entry)
	}
}

func TestCreateNoIDInOutput(t *testing.T) {
	cli := NewCLI("", filepath.Join(t.TempDir(), InfoFileName), nil)
	cli.run = func(ctx context.Context, stdin string, name string, args ...string) (string, error) {
		return "done", nil
	}

	if _, err := cli.Create(context.Background(), "Docs", 1); err == nil {
		t.Error("Create should fail when no ID appears in output")
	}
}

func TestAddSourcePipesContentThroughStdin(t *testing.T) {
	cli := NewCLI("", filepath.Join(t.TempDir(), InfoFileName), nil)

	var gotStdin string
	var gotArgs []string
	cli.run = func(ctx context.Context, stdin string, name string, args ...string) (string, error) {
		gotStdin = stdin
		gotArgs = args
		return "", nil
	}

	err := cli.AddSource(context.Background(), "6ba7b810-9dad-11d1-80b4-00c04fd430c8", "Quickstart", "# Quickstart\n")
	if err != nil {
		t.Fatalf("AddSource: %v", err)
	}
	if gotStdin != "# Quickstart\n" {
		t.Errorf("stdin = %q", gotStdin)
	}

	for _, want := range []string{"source", "add", "-n", "6ba7b810-9dad-11d1-80b4-00c04fd430c8", "--title", "Quickstart"} {
		found := false
		for _, a := range gotArgs {
			if a == want {
				found = true
				break
			}
		}
		if !found {
			t.Errorf("args %v missing %q", gotArgs, want)
		}
	}
}

func TestAddSourceCommandFailure(t *testing.T) {
	cli := NewCLI("", filepath.Join(t.TempDir(), InfoFileName), nil)
	cli.run = func(ctx context.Context, stdin string, name string, args ...string) (string, error) {
		return "", errors.New("notebooklm: quota exceeded")
	}

	if err := cli.AddSource(context.Background(), "id", "title", "content"); err == nil {
		t.Error("AddSource should propagate command failure")
	}
}
