package console

import (
	"bytes"
	"os"
	"testing"
)

// console_test.go verifies width fallback for non-terminal outputs.

func TestWidth_FallbackForNonFileWriter(t *testing.T) {
	var buf bytes.Buffer
	if got := Width(&buf, 72); got != 72 {
		t.Fatalf("Width = %d, want fallback 72", got)
	}
}

func TestWidth_FallbackForPipe(t *testing.T) {
	r, w, err := os.Pipe()
	if err != nil {
		t.Fatalf("pipe: %v", err)
	}
	defer r.Close()
	defer w.Close()

	if got := Width(w, 64); got != 64 {
		t.Fatalf("Width = %d, want fallback 64", got)
	}
}

func TestIsTerminal_FalseForNonTerminals(t *testing.T) {
	var buf bytes.Buffer
	if IsTerminal(&buf) {
		t.Fatalf("buffer reported as a terminal")
	}

	r, w, err := os.Pipe()
	if err != nil {
		t.Fatalf("pipe: %v", err)
	}
	defer r.Close()
	defer w.Close()

	if IsTerminal(w) {
		t.Fatalf("pipe reported as a terminal")
	}
}
