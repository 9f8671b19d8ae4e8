package main

import (
	"os"
	"testing"

	"github.com/hualin/docpack/internal/pipeline"
)

func confirmWithInput(t *testing.T, input string, fileCount int, name string, batchSize int) bool {
	t.Helper()

	r, w, err := os.Pipe()
	if err != nil {
		t.Fatalf("os.Pipe() error = %v", err)
	}
	if _, err := w.WriteString(input); err != nil {
		t.Fatalf("WriteString() error = %v", err)
	}
	w.Close()

	orig := os.Stdin
	os.Stdin = r
	defer func() {
		os.Stdin = orig
		r.Close()
	}()

	return confirm(fileCount, name, batchSize)
}

func TestConfirmAnswers(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  bool
	}{
		{"lowercase y", "y\n", true},
		{"full yes", "yes\n", true},
		{"uppercase Y", "Y\n", true},
		{"decline", "n\n", false},
		{"empty answer", "\n", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := confirmWithInput(t, tt.input, 10, "Docs", 50); got != tt.want {
				t.Errorf("confirm() = %v, want %v", got, tt.want)
			}
		})
	}
}

// A zero batch-size flag must be clamped before the prompt computes the
// notebook count, otherwise the estimate divides by zero.
func TestConfirmWithClampedBatchSize(t *testing.T) {
	uploader := pipeline.NewUploader(nil, "Docs", 0, nil)
	if uploader.BatchSize() <= 0 {
		t.Fatalf("BatchSize() = %d, want > 0", uploader.BatchSize())
	}
	if got := confirmWithInput(t, "n\n", 5, "Docs", uploader.BatchSize()); got {
		t.Errorf("confirm() = true, want false for declined prompt")
	}
}
