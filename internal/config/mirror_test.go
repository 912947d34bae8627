package config

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
)

const validMirrorConfig = `
name: mirror.example.org
update_frequency: 3h
sponsor: Example Networks
sponsor_url: https://example.org
address:
  https: https://mirror.example.org/almalinux
  http: http://mirror.example.org/almalinux
  rsync: rsync://mirror.example.org/almalinux
`

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestLoadMirror(t *testing.T) {
	path := filepath.Join(t.TempDir(), "mirror.example.org.yml")
	if err := os.WriteFile(path, []byte(validMirrorConfig), 0644); err != nil {
		t.Fatalf("failed to write mirror file: %v", err)
	}

	m, err := LoadMirror(path)
	if err != nil {
		t.Fatalf("LoadMirror() failed: %v", err)
	}

	if m.Name != "mirror.example.org" {
		t.Errorf("Name = %q, want %q", m.Name, "mirror.example.org")
	}
	if len(m.URLs) != 3 {
		t.Errorf("expected 3 addresses, got %d", len(m.URLs))
	}
	if m.URLs["https"] != "https://mirror.example.org/almalinux" {
		t.Errorf("https address = %q", m.URLs["https"])
	}
	// Absent optional fields get their defaults.
	if m.Email != "unknown" {
		t.Errorf("Email = %q, want %q", m.Email, "unknown")
	}
	if m.Private || m.CloudType != "" {
		t.Errorf("unexpected flags: private=%v cloud_type=%q", m.Private, m.CloudType)
	}
}

func TestLoadMirrorCloudFlags(t *testing.T) {
	content := validMirrorConfig + `
cloud_type: azure
cloud_regions:
  - eastus
private: true
`
	path := filepath.Join(t.TempDir(), "cloud.yml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write mirror file: %v", err)
	}

	m, err := LoadMirror(path)
	if err != nil {
		t.Fatalf("LoadMirror() failed: %v", err)
	}
	if m.CloudType != "azure" {
		t.Errorf("CloudType = %q, want %q", m.CloudType, "azure")
	}
	if !m.Private {
		t.Error("Private flag was not parsed")
	}
}

func TestLoadMirrorInvalid(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"missing address", "name: broken.example.org\n"},
		{"missing name", "address:\n  https: https://x.example.org/a\n"},
		{"empty address map", "name: x.example.org\naddress: {}\n"},
		{"not yaml", "{{{{\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "mirror.yml")
			if err := os.WriteFile(path, []byte(tt.content), 0644); err != nil {
				t.Fatalf("failed to write mirror file: %v", err)
			}
			if _, err := LoadMirror(path); err == nil {
				t.Fatal("expected an error")
			}
		})
	}
}

func TestLoadMirrorsDir(t *testing.T) {
	dir := t.TempDir()

	files := map[string]string{
		"a.example.org.yml":  "name: a.example.org\naddress:\n  https: https://a.example.org/a\n",
		"sub/b.example.yaml": "name: b.example.org\naddress:\n  http: http://b.example.org/a\n",
		"broken.yml":         "name: broken.example.org\n", // no address, skipped
		"README.md":          "not a mirror config",
	}
	for name, content := range files {
		path := filepath.Join(dir, name)
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			t.Fatalf("failed to create dir: %v", err)
		}
		if err := os.WriteFile(path, []byte(content), 0644); err != nil {
			t.Fatalf("failed to write %s: %v", name, err)
		}
	}

	mirrors, err := LoadMirrorsDir(dir, discardLogger())
	if err != nil {
		t.Fatalf("LoadMirrorsDir() failed: %v", err)
	}

	if len(mirrors) != 2 {
		t.Fatalf("expected 2 mirrors (broken one skipped), got %d", len(mirrors))
	}
	names := map[string]bool{}
	for _, m := range mirrors {
		names[m.Name] = true
	}
	if !names["a.example.org"] || !names["b.example.org"] {
		t.Errorf("unexpected mirror names: %v", names)
	}
}

func TestLoadMirrorsDirMissing(t *testing.T) {
	if _, err := LoadMirrorsDir(filepath.Join(t.TempDir(), "nope"), discardLogger()); err == nil {
		t.Fatal("expected an error for a missing mirrors dir")
	}
}
