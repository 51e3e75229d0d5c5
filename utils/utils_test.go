package utils

import (
	"os"
	"path/filepath"
	"testing"
)

func TestWriteFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "roster.toml")
	if err := WriteFile(path, []byte("a"), 0600); err != nil {
		t.Fatal(err)
	}
	if err := WriteFile(path, []byte("b"), 0600); err == nil {
		t.Fatal("Expect an existing file not to be overwritten")
	}
	b, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if string(b) != "a" {
		t.Fatal("Unexpected file content", string(b))
	}
}

func TestResolvePath(t *testing.T) {
	for _, tc := range []struct {
		file, other, want string
	}{
		{"roster.toml", "/etc/spymsg/config.toml", "/etc/spymsg/roster.toml"},
		{"/var/lib/ledger", "/etc/spymsg/config.toml", "/var/lib/ledger"},
		{"", "/etc/spymsg/config.toml", ""},
		{"data/ledger", "config.toml", "data/ledger"},
	} {
		if got := ResolvePath(tc.file, tc.other); got != tc.want {
			t.Errorf("ResolvePath(%q, %q) = %q, want %q", tc.file, tc.other, got, tc.want)
		}
	}
}
