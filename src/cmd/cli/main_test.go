package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"copypolish/src/job"
)

type fakeRouter struct {
	kind    job.Kind
	payload string
	reply   string
	err     error
}

func (f *fakeRouter) Route(ctx context.Context, kind job.Kind, payload string) (string, error) {
	f.kind, f.payload = kind, payload
	return f.reply, f.err
}

func TestNormalizeLegacyArgs(t *testing.T) {
	in := []string{"polish-tool", "-file", "a.txt", "-json", "-mode=translate", "-verbose=true", "-api-key-path", "k", "plain"}
	want := []string{"polish-tool", "--file", "a.txt", "--json", "--mode=translate", "--verbose=true", "--api-key-path", "k", "plain"}
	if got := normalizeLegacyArgs(in); !reflect.DeepEqual(got, want) {
		t.Errorf("Expected %v, got %v", want, got)
	}
	if got := normalizeLegacyArgs(nil); got != nil {
		t.Errorf("Expected nil, got %v", got)
	}
}

func TestRootCmdFlags(t *testing.T) {
	opts := &cliOptions{}
	cmd := newRootCmd(opts)
	if err := cmd.ParseFlags([]string{"--file", "-", "--mode", "translate", "--json", "-v", "--model", "m"}); err != nil {
		t.Fatalf("ParseFlags failed: %v", err)
	}
	if opts.filePath != "-" || opts.mode != "translate" || !opts.jsonOutput || !opts.verbose || opts.model != "m" {
		t.Errorf("Unexpected options %+v", opts)
	}
}

func TestRootCmdRequiresFile(t *testing.T) {
	cmd := newRootCmd(&cliOptions{})
	cmd.SetArgs([]string{})
	if err := cmd.Execute(); err == nil {
		t.Fatal("Expected error without --file")
	}
}

func TestParseMode(t *testing.T) {
	tests := []struct {
		mode    string
		want    job.Kind
		wantErr bool
	}{
		{"rewrite", job.Rewrite, false},
		{"Translate", job.Translate, false},
		{"paste-path", 0, true},
		{"summarize", 0, true},
	}
	for _, tt := range tests {
		got, err := parseMode(tt.mode)
		if (err != nil) != tt.wantErr {
			t.Errorf("parseMode(%q) error = %v, wantErr %v", tt.mode, err, tt.wantErr)
			continue
		}
		if !tt.wantErr && got != tt.want {
			t.Errorf("parseMode(%q): expected %v, got %v", tt.mode, tt.want, got)
		}
	}
}

func TestReadInput(t *testing.T) {
	dir := t.TempDir()
	good := filepath.Join(dir, "good.txt")
	if err := os.WriteFile(good, []byte("  Selam nasilsin\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	blank := filepath.Join(dir, "blank.txt")
	if err := os.WriteFile(blank, []byte(" \n\t"), 0o644); err != nil {
		t.Fatal(err)
	}
	binary := filepath.Join(dir, "bin.txt")
	if err := os.WriteFile(binary, []byte{0xff, 0xfe, 0x00}, 0o644); err != nil {
		t.Fatal(err)
	}

	text, err := readInput(good, nil)
	if err != nil || text != "Selam nasilsin" {
		t.Errorf("Expected trimmed text, got %q, %v", text, err)
	}
	if _, err := readInput(blank, nil); err == nil {
		t.Error("Expected error for blank input")
	}
	if _, err := readInput(binary, nil); err == nil {
		t.Error("Expected error for invalid UTF-8")
	}
	if _, err := readInput(filepath.Join(dir, "missing.txt"), nil); err == nil {
		t.Error("Expected error for missing file")
	}

	text, err = readInput("-", strings.NewReader("from stdin"))
	if err != nil || text != "from stdin" {
		t.Errorf("Expected stdin text, got %q, %v", text, err)
	}
	big := strings.NewReader(strings.Repeat("a", maxFileSize+1))
	if _, err := readInput("-", big); err == nil {
		t.Error("Expected error for oversized input")
	}
}

func TestProcessPlainText(t *testing.T) {
	r := &fakeRouter{reply: "Selam, nasılsın?\r\n\r\n"}
	var out bytes.Buffer
	if err := process(context.Background(), r, job.Rewrite, "Selam nasilsin", "-", false, &out); err != nil {
		t.Fatalf("process failed: %v", err)
	}
	if r.kind != job.Rewrite || r.payload != "Selam nasilsin" {
		t.Errorf("Unexpected routed request %v %q", r.kind, r.payload)
	}
	if out.String() != "Selam, nasılsın?\n" {
		t.Errorf("Expected trimmed output, got %q", out.String())
	}
}

func TestProcessJSON(t *testing.T) {
	r := &fakeRouter{reply: "Hello"}
	var out bytes.Buffer
	if err := process(context.Background(), r, job.Translate, "Merhaba", "in.txt", true, &out); err != nil {
		t.Fatalf("process failed: %v", err)
	}
	var res Result
	if err := json.Unmarshal(out.Bytes(), &res); err != nil {
		t.Fatalf("Output is not JSON: %v\n%s", err, out.String())
	}
	if res.Text != "Hello" || res.Mode != "translate" || res.Source != "in.txt" || res.CharCount != 5 {
		t.Errorf("Unexpected result %+v", res)
	}
	if res.Timestamp == "" {
		t.Error("Expected a timestamp")
	}
}

func TestProcessError(t *testing.T) {
	boom := errors.New("upstream 500")
	r := &fakeRouter{err: boom}
	var out bytes.Buffer
	err := process(context.Background(), r, job.Rewrite, "x", "-", false, &out)
	if !errors.Is(err, boom) {
		t.Fatalf("Expected wrapped error, got %v", err)
	}
	if out.Len() != 0 {
		t.Errorf("Expected no output on failure, got %q", out.String())
	}
}
