package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefault(t *testing.T) {
	conf := Default()
	if conf.Bootstrap.Client != "sqlite3" {
		t.Errorf("Bootstrap.Client=%q; expect sqlite3", conf.Bootstrap.Client)
	}
	if conf.Server.Height != 7 || conf.Server.Width != 7 {
		t.Errorf("board %dx%d; expect 7x7", conf.Server.Height, conf.Server.Width)
	}
	if conf.Server.Database != "db/games.db" {
		t.Errorf("Server.Database=%q; expect db/games.db", conf.Server.Database)
	}
}

func TestLoad_File(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "sidestacker.toml")
	contents := `
[server]
addr = "0.0.0.0:9999"
height = 5

[bootstrap]
client = "sqlite3-custom"
`
	if err := os.WriteFile(path, []byte(contents), 0o644); err != nil {
		t.Fatalf("writing config: %v", err)
	}

	wd, err := os.Getwd()
	if err != nil {
		t.Fatalf("Getwd failed: %v", err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatalf("Chdir failed: %v", err)
	}
	defer os.Chdir(wd)

	conf, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if conf.Server.Addr != "0.0.0.0:9999" {
		t.Errorf("Server.Addr=%q; expect 0.0.0.0:9999", conf.Server.Addr)
	}
	if conf.Server.Height != 5 {
		t.Errorf("Server.Height=%d; expect 5", conf.Server.Height)
	}
	if conf.Bootstrap.Client != "sqlite3-custom" {
		t.Errorf("Bootstrap.Client=%q; expect sqlite3-custom", conf.Bootstrap.Client)
	}
	// Unset values keep their defaults.
	if conf.Server.Width != 7 {
		t.Errorf("Server.Width=%d; expect default 7", conf.Server.Width)
	}
}

func TestLoad_NoFileUsesDefaults(t *testing.T) {
	wd, err := os.Getwd()
	if err != nil {
		t.Fatalf("Getwd failed: %v", err)
	}
	if err := os.Chdir(t.TempDir()); err != nil {
		t.Fatalf("Chdir failed: %v", err)
	}
	defer os.Chdir(wd)

	conf, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if conf.Server.Addr != Default().Server.Addr {
		t.Errorf("Server.Addr=%q; expect default", conf.Server.Addr)
	}
}

func TestLoad_EnvOverrides(t *testing.T) {
	wd, err := os.Getwd()
	if err != nil {
		t.Fatalf("Getwd failed: %v", err)
	}
	if err := os.Chdir(t.TempDir()); err != nil {
		t.Fatalf("Chdir failed: %v", err)
	}
	defer os.Chdir(wd)

	t.Setenv("SIDESTACKER_ADDR", "127.0.0.1:7777")
	t.Setenv("SIDESTACKER_HEIGHT", "9")

	conf, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if conf.Server.Addr != "127.0.0.1:7777" {
		t.Errorf("Server.Addr=%q; expect env override", conf.Server.Addr)
	}
	if conf.Server.Height != 9 {
		t.Errorf("Server.Height=%d; expect 9", conf.Server.Height)
	}
}

func TestLoad_BadEnvInt(t *testing.T) {
	t.Setenv("SIDESTACKER_HEIGHT", "tall")
	if _, err := Load(); err == nil {
		t.Errorf("Load with bad SIDESTACKER_HEIGHT succeeded; expect error")
	}
}
