package vfs

import (
	"path/filepath"
	"testing"
)

func TestMemoryVFS_ListsConventionalDefaults(t *testing.T) {
	v := NewMemoryVFS()
	files := v.ListFiles()
	want := []string{"agent_early.txt", "green/agent.txt", "green/spawner.txt", "red/agent.txt", "red/spawner.txt"}
	if len(files) != len(want) {
		t.Fatalf("expected %d default files, got %v", len(want), files)
	}
	for i, w := range want {
		if files[i] != w {
			t.Fatalf("expected sorted default file %q at index %d, got %q", w, i, files[i])
		}
	}
}

func TestMemoryVFS_SaveThenGetRoundTrips(t *testing.T) {
	v := NewMemoryVFS()
	if err := v.SaveFile("green/agent.txt", "Shoot()\r\n"); err != nil {
		t.Fatalf("unexpected error saving: %v", err)
	}
	got, err := v.GetFile("green/agent.txt")
	if err != nil {
		t.Fatalf("unexpected error getting: %v", err)
	}
	if got != "Shoot()\n" {
		t.Fatalf("expected CRLF normalized to LF, got %q", got)
	}
}

func TestMemoryVFS_GetMissingFileFails(t *testing.T) {
	v := NewMemoryVFS()
	if _, err := v.GetFile("does/not/exist.txt"); err == nil {
		t.Fatalf("expected an error for a missing file")
	}
}

func TestFileVFS_SeedsDefaultsIntoMissingRoot(t *testing.T) {
	dir := t.TempDir()
	v, err := NewFileVFS(filepath.Join(dir, "behavior_tree_config"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	got, err := v.GetFile("green/agent.txt")
	if err != nil {
		t.Fatalf("unexpected error reading seeded default: %v", err)
	}
	if got == "" {
		t.Fatalf("expected a non-empty seeded default tree")
	}
}

func TestFileVFS_SaveThenListIncludesNewFile(t *testing.T) {
	dir := t.TempDir()
	v, err := NewFileVFS(dir)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := v.SaveFile("custom/tree.txt", "Drive(direction=forward)\n"); err != nil {
		t.Fatalf("unexpected error saving: %v", err)
	}
	found := false
	for _, f := range v.ListFiles() {
		if f == "custom/tree.txt" {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected saved file to appear in ListFiles, got %v", v.ListFiles())
	}
}
