package shared

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestConfig(t *testing.T) {
	t.Run("DefaultConfig", func(t *testing.T) {
		config := DefaultConfig()

		if config.Database.Path != "./projarc.db" {
			t.Errorf("expected database path ./projarc.db, got %s", config.Database.Path)
		}

		if config.Archive.ExitDelay.Duration != 3*time.Second {
			t.Errorf("expected exit delay 3s, got %s", config.Archive.ExitDelay)
		}

		if config.Archive.LaunchRate != 0 {
			t.Errorf("expected unlimited launch rate, got %v", config.Archive.LaunchRate)
		}

		want := []string{".ap13", ".ap14", ".ap15", ".ap15_1", ".ap16", ".ap17"}
		if strings.Join(config.Search.Extensions, ",") != strings.Join(want, ",") {
			t.Errorf("expected extensions %v, got %v", want, config.Search.Extensions)
		}

		if config.Backend.Name != "bridge" {
			t.Errorf("expected backend bridge, got %s", config.Backend.Name)
		}

		if err := config.Validate(); err != nil {
			t.Errorf("default config should be valid: %v", err)
		}
	})

	t.Run("CreateConfigFile", func(t *testing.T) {
		tmpDir := t.TempDir()
		configPath := filepath.Join(tmpDir, "config.toml")

		if err := CreateConfigFile(configPath); err != nil {
			t.Fatalf("failed to create config file: %v", err)
		}

		if _, err := os.Stat(configPath); err != nil {
			t.Fatalf("config file should exist: %v", err)
		}

		config, err := LoadConfig(configPath)
		if err != nil {
			t.Fatalf("failed to load created config: %v", err)
		}

		if config.Database.Path != DefaultConfig().Database.Path {
			t.Errorf("created config database path doesn't match default")
		}

		if err := CreateConfigFile(configPath); err == nil {
			t.Error("creating config file again should fail")
		}
	})

	t.Run("LoadConfig", func(t *testing.T) {
		tmpDir := t.TempDir()
		configPath := filepath.Join(tmpDir, "config.toml")

		testConfig := `[search]
paths_file = "/etc/projarc/paths.txt"
default_root = "/srv/projects"
extensions = [".ap16", ".ap17"]

[archive]
output_dir = "/srv/archives"
exit_delay = "250ms"
launch_rate = 2.5

[backend]
name = "bridge"
version = "V16"
command = "/opt/bridge/bin/bridge"
args = ["--quiet"]

[backend.library_paths]
engineering = "/opt/lib/engineering.dll"
`
		if err := os.WriteFile(configPath, []byte(testConfig), 0644); err != nil {
			t.Fatalf("failed to write test config: %v", err)
		}

		config, err := LoadConfig(configPath)
		if err != nil {
			t.Fatalf("failed to load config: %v", err)
		}

		if config.Search.PathsFilePath() != "/etc/projarc/paths.txt" {
			t.Errorf("expected paths file /etc/projarc/paths.txt, got %s", config.Search.PathsFilePath())
		}
		if config.Search.DefaultRootDir() != "/srv/projects" {
			t.Errorf("expected default root /srv/projects, got %s", config.Search.DefaultRootDir())
		}
		if len(config.Search.Extensions) != 2 {
			t.Errorf("expected 2 extensions, got %v", config.Search.Extensions)
		}
		if config.Archive.OutputDirOr("/fallback") != "/srv/archives" {
			t.Errorf("expected output dir /srv/archives, got %s", config.Archive.OutputDirOr("/fallback"))
		}
		if config.Archive.ExitDelay.Duration != 250*time.Millisecond {
			t.Errorf("expected exit delay 250ms, got %s", config.Archive.ExitDelay)
		}
		if config.Archive.LaunchRate != 2.5 {
			t.Errorf("expected launch rate 2.5, got %v", config.Archive.LaunchRate)
		}
		if config.Backend.Version != "V16" || config.Backend.LibraryPaths["engineering"] != "/opt/lib/engineering.dll" {
			t.Errorf("unexpected backend config: %+v", config.Backend)
		}
		if config.Database.Path != "./projarc.db" {
			t.Errorf("expected database default to survive partial file, got %s", config.Database.Path)
		}
	})

	t.Run("LoadConfig rejects invalid values", func(t *testing.T) {
		tt := []struct {
			name    string
			content string
		}{
			{name: "bad duration", content: "[archive]\nexit_delay = \"soon\"\n"},
			{name: "negative rate", content: "[archive]\nlaunch_rate = -1.0\n"},
			{name: "no extensions", content: "[search]\nextensions = []\n"},
			{name: "no backend", content: "[backend]\nname = \"\"\n"},
			{name: "malformed toml", content: "[archive\n"},
		}

		for _, tc := range tt {
			t.Run(tc.name, func(t *testing.T) {
				configPath := filepath.Join(t.TempDir(), "config.toml")
				if err := os.WriteFile(configPath, []byte(tc.content), 0644); err != nil {
					t.Fatalf("failed to write test config: %v", err)
				}

				if _, err := LoadConfig(configPath); err == nil {
					t.Error("expected error")
				}
			})
		}
	})

	t.Run("LoadConfigOrDefault", func(t *testing.T) {
		t.Run("missing file uses defaults", func(t *testing.T) {
			config, err := LoadConfigOrDefault(filepath.Join(t.TempDir(), "missing.toml"))
			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if config.Backend.Name != "bridge" {
				t.Errorf("expected default backend, got %s", config.Backend.Name)
			}
		})

		t.Run("invalid file reports error with defaults", func(t *testing.T) {
			configPath := filepath.Join(t.TempDir(), "config.toml")
			if err := os.WriteFile(configPath, []byte("[search]\nextensions = []\n"), 0644); err != nil {
				t.Fatalf("failed to write test config: %v", err)
			}

			config, err := LoadConfigOrDefault(configPath)
			if !errors.Is(err, ErrInvalidConfig) {
				t.Errorf("expected ErrInvalidConfig, got %v", err)
			}
			if config == nil || len(config.Search.Extensions) == 0 {
				t.Error("expected usable default config")
			}
		})
	})

	t.Run("SaveConfig", func(t *testing.T) {
		configPath := filepath.Join(t.TempDir(), "config.toml")

		config := DefaultConfig()
		config.Archive.ExitDelay = Duration{Duration: 10 * time.Second}
		config.Search.Extensions = []string{".ap18"}

		if err := SaveConfig(configPath, config); err != nil {
			t.Fatalf("failed to save config: %v", err)
		}

		loaded, err := LoadConfig(configPath)
		if err != nil {
			t.Fatalf("failed to reload config: %v", err)
		}
		if loaded.Archive.ExitDelay.Duration != 10*time.Second {
			t.Errorf("expected exit delay 10s, got %s", loaded.Archive.ExitDelay)
		}
		if len(loaded.Search.Extensions) != 1 || loaded.Search.Extensions[0] != ".ap18" {
			t.Errorf("expected [.ap18], got %v", loaded.Search.Extensions)
		}

		if err := SaveConfig(configPath, nil); err == nil {
			t.Error("expected error for nil config")
		}
	})

	t.Run("defaults under home directory", func(t *testing.T) {
		t.Setenv("HOME", "/home/tester")

		var s ScanConfig
		if got := s.DefaultRootDir(); got != filepath.Join("/home/tester", "Desktop") {
			t.Errorf("expected Desktop under home, got %s", got)
		}
		if got := s.PathsFilePath(); got != filepath.Join("/home/tester", "Documents", "paths.txt") {
			t.Errorf("expected paths.txt under Documents, got %s", got)
		}

		var a ArchiveConfig
		if got := a.OutputDirOr("/fallback"); got != "/fallback" {
			t.Errorf("expected fallback output dir, got %s", got)
		}
	})
}
