package logutil

import (
	"bytes"
	"log"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestSanitize(t *testing.T) {
	tests := []struct {
		name, in, want string
	}{
		{"plain", "Selam nasılsın", "Selam nasılsın"},
		{"newlines", "a\nb\r\nc", `a\nb\n\nc`},
		{"tab", "a\tb", `a\tb`},
		{"control", "a\x00b\x7f", "a?b?"},
		{"truncated", strings.Repeat("x", 150), strings.Repeat("x", 100) + "..."},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Sanitize(tt.in); got != tt.want {
				t.Errorf("Sanitize(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestSanitizeKeepsRunesWhole(t *testing.T) {
	in := strings.Repeat("a", 99) + "ışık"
	got := Sanitize(in)
	if !strings.HasSuffix(got, "...") || strings.ContainsRune(got, '�') {
		t.Errorf("Expected clean truncation, got %q", got)
	}
}

func TestRedactKey(t *testing.T) {
	if got := RedactKey("short"); got != "********" {
		t.Errorf("Expected full mask, got %q", got)
	}
	if got := RedactKey("sk-or-v1-abcdef123456"); got != "sk-o...3456" {
		t.Errorf("Unexpected redaction %q", got)
	}
}

func TestRotatingWriter(t *testing.T) {
	path := filepath.Join(t.TempDir(), FileName)
	w, err := NewRotatingWriter(path, 16)
	if err != nil {
		t.Fatalf("NewRotatingWriter: %v", err)
	}
	defer w.Close()

	for _, line := range []string{"0123456789\n", "abcdefghij\n", "KLMNOPQRST\n"} {
		if _, err := w.Write([]byte(line)); err != nil {
			t.Fatalf("Write: %v", err)
		}
	}
	cur, _ := os.ReadFile(path)
	if string(cur) != "KLMNOPQRST\n" {
		t.Errorf("Unexpected current log %q", cur)
	}
	a1, _ := os.ReadFile(path + ".1")
	if string(a1) != "abcdefghij\n" {
		t.Errorf("Unexpected first archive %q", a1)
	}
	a2, _ := os.ReadFile(path + ".2")
	if string(a2) != "0123456789\n" {
		t.Errorf("Unexpected second archive %q", a2)
	}
}

func TestSetupFallback(t *testing.T) {
	defer log.SetOutput(os.Stderr)
	var buf bytes.Buffer
	if p := Setup(false, t.TempDir(), &buf); p != "" {
		t.Errorf("Expected no log file, got %q", p)
	}
	log.Print("hello")
	if !strings.Contains(buf.String(), "hello") {
		t.Errorf("Expected fallback to receive log output, got %q", buf.String())
	}
}

func TestSetupFile(t *testing.T) {
	defer log.SetOutput(os.Stderr)
	dir := filepath.Join(t.TempDir(), "nested")
	p := Setup(true, dir, nil)
	if p != filepath.Join(dir, FileName) {
		t.Fatalf("Unexpected log path %q", p)
	}
	log.Print("to file")
	log.SetOutput(os.Stderr)
	data, err := os.ReadFile(p)
	if err != nil || !strings.Contains(string(data), "to file") {
		t.Errorf("Expected log line in file, got %q, %v", data, err)
	}
}
