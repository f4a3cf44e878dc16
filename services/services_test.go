package services

import (
	"os"
	"path/filepath"
	"testing"
)

func TestName(t *testing.T) {
	table := New()
	if got := table.Name(22); got != "ssh" {
		t.Fatalf("expected ssh, got %s", got)
	}
	if got := table.Name(65000); got != Unknown {
		t.Fatalf("expected %s for unregistered port, got %s", Unknown, got)
	}
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "services")
	data := []byte("# local services\n" +
		"custom-http   8081/tcp   webalt   # comment\n" +
		"custom-dns    5353/udp\n" +
		"\n" +
		"ssh-alt       22/tcp\n")
	if err := os.WriteFile(path, data, 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}

	table := New()
	builtin := table.Len()
	added, err := table.LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile: %v", err)
	}
	if added != 2 {
		t.Fatalf("expected 2 tcp entries, got %d", added)
	}
	if got := table.Name(8081); got != "custom-http" {
		t.Fatalf("expected custom-http, got %s", got)
	}
	if got := table.Name(5353); got != Unknown {
		t.Fatalf("udp entries must be ignored, got %s", got)
	}
	if got := table.Name(22); got != "ssh-alt" {
		t.Fatalf("file entries should override built-ins, got %s", got)
	}
	// 22 was already registered, only 8081 is new.
	if got := table.Len(); got != builtin+1 {
		t.Fatalf("expected %d entries, got %d", builtin+1, got)
	}
	if got := New().Name(22); got != "ssh" {
		t.Fatalf("new tables must start from the built-ins, got %s", got)
	}
}

func TestLoadFile_Errors(t *testing.T) {
	dir := t.TempDir()
	if _, err := New().LoadFile(filepath.Join(dir, "missing")); err == nil {
		t.Fatal("expected error for missing file")
	}

	bad := filepath.Join(dir, "bad")
	if err := os.WriteFile(bad, []byte("broken 99999/tcp\n"), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	if _, err := New().LoadFile(bad); err == nil {
		t.Fatal("expected error for out-of-range port")
	}
}
