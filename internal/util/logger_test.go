package util

import (
	"os"
	"path/filepath"
	"testing"
)

func TestCleanOldLogs_KeepsNewest(t *testing.T) {
	dir := t.TempDir()
	names := []string{
		"avista_2024-01-01.log",
		"avista_2024-01-03.log",
		"avista_2024-01-02.log",
		"avista_2024-01-04.log",
		"unrelated.log",
	}
	for _, n := range names {
		if err := os.WriteFile(filepath.Join(dir, n), nil, 0644); err != nil {
			t.Fatal(err)
		}
	}

	cleanOldLogs(dir, 2)

	for n, want := range map[string]bool{
		"avista_2024-01-01.log": false,
		"avista_2024-01-02.log": false,
		"avista_2024-01-03.log": true,
		"avista_2024-01-04.log": true,
		"unrelated.log":         true,
	} {
		_, err := os.Stat(filepath.Join(dir, n))
		if got := err == nil; got != want {
			t.Errorf("%s exists = %v, want %v", n, got, want)
		}
	}
}
