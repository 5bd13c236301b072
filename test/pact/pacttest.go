//go:build pact
// +build pact

package pacttest

import (
	"encoding/base64"
	"os"
	"path/filepath"
	"runtime"
	"testing"
)

const (
	ProviderName = "banknote-verifier"
	ConsumerName = "vendi-server"

	StateGenuineNote     = "classifier recognizes a genuine 20 taka note"
	StateCounterfeitNote = "classifier rejects a counterfeit note"
)

// ExampleNoteImage returns stable banknote image bytes for pact interactions.
func ExampleNoteImage() []byte {
	return []byte("pact-banknote-image")
}

// ExampleNoteImageBase64 returns the wire form of the example image.
func ExampleNoteImageBase64() string {
	return base64.StdEncoding.EncodeToString(ExampleNoteImage())
}

// PactDir returns the workspace-level directory for generated pact files.
func PactDir(t testing.TB) string {
	t.Helper()
	dir := filepath.Join(projectRoot(t), "pacts")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatalf("create pact dir: %v", err)
	}
	return dir
}

// LogDir returns the log output directory for pact-go.
func LogDir(t testing.TB) string {
	t.Helper()
	dir := filepath.Join(projectRoot(t), "bin", "pact-logs")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatalf("create pact log dir: %v", err)
	}
	return dir
}

// projectRoot walks up from this file to the workspace root.
func projectRoot(t testing.TB) string {
	t.Helper()
	_, file, _, ok := runtime.Caller(0)
	if !ok {
		t.Fatal("cannot determine caller for pact paths")
	}
	return filepath.Clean(filepath.Join(filepath.Dir(file), "..", ".."))
}
