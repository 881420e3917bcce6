package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestInitializeAt(t *testing.T) {
	dir := filepath.Join(t.TempDir(), ".curlgen")
	if err := InitializeAt(dir); err != nil {
		t.Fatalf("InitializeAt() error: %v", err)
	}

	if _, err := os.Stat(RequestsDir); err != nil {
		t.Errorf("requests directory not created: %v", err)
	}

	settings, err := LoadFile(ConfigFile)
	if err != nil {
		t.Fatalf("LoadFile() error: %v", err)
	}
	if settings != Defaults() {
		t.Errorf("default config file = %+v, want %+v", settings, Defaults())
	}

	// an existing file is left alone
	if err := os.WriteFile(ConfigFile, []byte("style: monokai\n"), FilePermissions); err != nil {
		t.Fatal(err)
	}
	if err := InitializeAt(dir); err != nil {
		t.Fatalf("second InitializeAt() error: %v", err)
	}
	settings, _ = LoadFile(ConfigFile)
	if settings.Style != "monokai" {
		t.Errorf("Style = %q, want monokai", settings.Style)
	}
}

func TestLoadFile(t *testing.T) {
	dir := t.TempDir()

	tests := []struct {
		name    string
		content string
		check   func(t *testing.T, s Settings)
		wantErr bool
	}{
		{
			name:    "overrides keep unset defaults",
			content: "display: highlight\ntimeout: 15\n",
			check: func(t *testing.T, s Settings) {
				if s.Display != "highlight" || s.Timeout != 15 {
					t.Errorf("got display %q timeout %d", s.Display, s.Timeout)
				}
				if s.Style != "github" || s.Log.Level != "warn" {
					t.Errorf("defaults lost: style %q level %q", s.Style, s.Log.Level)
				}
			},
		},
		{
			name:    "log section",
			content: "log:\n  level: debug\n  file: out.log\n",
			check: func(t *testing.T, s Settings) {
				if s.Log.Level != "debug" || s.Log.File != "out.log" || s.Log.MaxBackups != 3 {
					t.Errorf("Log = %+v", s.Log)
				}
			},
		},
		{
			name:    "invalid yaml",
			content: "display: [unclosed\n",
			wantErr: true,
		},
	}

	for i, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(dir, "config"+string(rune('a'+i))+".yaml")
			if err := os.WriteFile(path, []byte(tt.content), FilePermissions); err != nil {
				t.Fatal(err)
			}
			s, err := LoadFile(path)
			if tt.wantErr {
				if err == nil {
					t.Error("LoadFile() expected error")
				}
				return
			}
			if err != nil {
				t.Fatalf("LoadFile() error: %v", err)
			}
			tt.check(t, s)
		})
	}
}

func TestLoadFile_Missing(t *testing.T) {
	s, err := LoadFile(filepath.Join(t.TempDir(), "absent.yaml"))
	if err != nil {
		t.Fatalf("LoadFile() error: %v", err)
	}
	if s != Defaults() {
		t.Errorf("LoadFile() = %+v, want defaults", s)
	}
}

func TestLogFilePath(t *testing.T) {
	LogDir = "/var/curlgen/logs"
	defer func() { LogDir = "" }()

	tests := []struct {
		file string
		want string
	}{
		{"", ""},
		{"curlgen.log", "/var/curlgen/logs/curlgen.log"},
		{"/tmp/x.log", "/tmp/x.log"},
	}
	for _, tt := range tests {
		s := Settings{Log: LogSettings{File: tt.file}}
		if got := s.LogFilePath(); got != tt.want {
			t.Errorf("LogFilePath(%q) = %q, want %q", tt.file, got, tt.want)
		}
	}
}

func TestGetWorkingDirectory(t *testing.T) {
	if err := InitializeAt(t.TempDir()); err != nil {
		t.Fatal(err)
	}

	got, err := GetWorkingDirectory("")
	if err != nil || got != RequestsDir {
		t.Errorf("GetWorkingDirectory(\"\") = %q, %v, want %q", got, err, RequestsDir)
	}

	got, err = GetWorkingDirectory("/abs/path")
	if err != nil || got != "/abs/path" {
		t.Errorf("GetWorkingDirectory(abs) = %q, %v", got, err)
	}

	got, err = GetWorkingDirectory("team")
	if err != nil {
		t.Fatalf("GetWorkingDirectory(team) error: %v", err)
	}
	if got != filepath.Join(ConfigDir, "team") {
		t.Errorf("GetWorkingDirectory(team) = %q", got)
	}
	if _, err := os.Stat(got); err != nil {
		t.Errorf("working directory not created: %v", err)
	}
}
