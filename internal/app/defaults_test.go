package app

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"addrbook/internal/config"
)

func TestGetDefaults(t *testing.T) {
	t.Run("uses env vars when set", func(t *testing.T) {
		t.Setenv("ADDRBOOK_CONFIG_PATH", "/custom/config.toml")
		t.Setenv("ADDRBOOK_HOME", "/custom/addrbook")

		d, err := GetDefaults()
		if err != nil {
			t.Fatalf("GetDefaults() error = %v", err)
		}

		if d.ConfigPath != "/custom/config.toml" {
			t.Errorf("ConfigPath = %q, want %q", d.ConfigPath, "/custom/config.toml")
		}
		if d.BaseDir != "/custom/addrbook" {
			t.Errorf("BaseDir = %q, want %q", d.BaseDir, "/custom/addrbook")
		}
		if d.LogDir != "/custom/addrbook/log" {
			t.Errorf("LogDir = %q, want %q", d.LogDir, "/custom/addrbook/log")
		}
	})

	t.Run("falls back to home dir defaults", func(t *testing.T) {
		t.Setenv("ADDRBOOK_CONFIG_PATH", "")
		t.Setenv("ADDRBOOK_HOME", "")

		d, err := GetDefaults()
		if err != nil {
			t.Fatalf("GetDefaults() error = %v", err)
		}

		homeDir, _ := os.UserHomeDir()

		wantConfig := filepath.Join(homeDir, ".config", "addrbook.toml")
		if d.ConfigPath != wantConfig {
			t.Errorf("ConfigPath = %q, want %q", d.ConfigPath, wantConfig)
		}

		wantBase := filepath.Join(homeDir, ".local", "share", "addrbook")
		if d.BaseDir != wantBase {
			t.Errorf("BaseDir = %q, want %q", d.BaseDir, wantBase)
		}

		wantLog := filepath.Join(wantBase, "log")
		if d.LogDir != wantLog {
			t.Errorf("LogDir = %q, want %q", d.LogDir, wantLog)
		}
	})
}

func TestLoadConfig(t *testing.T) {
	t.Run("missing file", func(t *testing.T) {
		d := Defaults{ConfigPath: filepath.Join(t.TempDir(), "addrbook.toml")}

		_, err := LoadConfig(d)
		if err == nil {
			t.Fatal("LoadConfig() expected error for missing file")
		}
		if !strings.Contains(err.Error(), "config init") {
			t.Errorf("error = %q, want hint to run config init", err)
		}
	})

	t.Run("fills empty log dir", func(t *testing.T) {
		dir := t.TempDir()
		path := filepath.Join(dir, "addrbook.toml")
		cfg := config.NewConfig(dir)
		cfg.LogDir = ""
		if err := config.Init(path, cfg); err != nil {
			t.Fatalf("Init() error = %v", err)
		}

		got, err := LoadConfig(Defaults{ConfigPath: path, LogDir: "/fallback/log"})
		if err != nil {
			t.Fatalf("LoadConfig() error = %v", err)
		}
		if got.LogDir != "/fallback/log" {
			t.Errorf("LogDir = %q, want %q", got.LogDir, "/fallback/log")
		}
		if got.Slot.Type != "filesystem" {
			t.Errorf("Slot.Type = %q, want filesystem", got.Slot.Type)
		}
	})
}
