package config

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func lookupMap(m map[string]string) func(string) (string, bool) {
	return func(k string) (string, bool) {
		v, ok := m[k]
		return v, ok
	}
}

func TestFromEnvDefaults(t *testing.T) {
	cfg, err := FromEnv(lookupMap(nil))
	if err != nil {
		t.Fatalf("FromEnv: %v", err)
	}
	if cfg != Default() {
		t.Fatalf("got=%+v want=%+v", cfg, Default())
	}
}

func TestFromEnvOverrides(t *testing.T) {
	cfg, err := FromEnv(lookupMap(map[string]string{
		EnvLogLevel:        "DEBUG",
		EnvLogFormat:       "json",
		EnvHashMB:          "64",
		EnvMoveOverheadMS:  "120",
		EnvDefaultMoveTime: "2500",
	}))
	if err != nil {
		t.Fatalf("FromEnv: %v", err)
	}
	if cfg.Logs.Level != "debug" || cfg.Logs.Format != "json" {
		t.Fatalf("logs: got=%+v", cfg.Logs)
	}
	if cfg.Engine.HashMB != 64 || cfg.Engine.MoveOverhead != 120*time.Millisecond || cfg.Engine.DefaultMoveTime != 2500*time.Millisecond {
		t.Fatalf("engine: got=%+v", cfg.Engine)
	}
}

func TestFromEnvRejectsBadValues(t *testing.T) {
	cases := map[string]string{
		EnvHashMB:          "lots",
		EnvMoveOverheadMS:  "-1",
		EnvDefaultMoveTime: "0",
		EnvLogFormat:       "xml",
	}
	for name, value := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := FromEnv(lookupMap(map[string]string{name: value}))
			if err == nil || !strings.Contains(err.Error(), name) {
				t.Fatalf("got err=%v want error naming %s", err, name)
			}
		})
	}
}

func TestLoadReadsEnvFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sculpin.env")
	if err := os.WriteFile(path, []byte(EnvHashMB+"=32\n"), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	// godotenv 不覆盖已有变量，先清掉
	t.Setenv(EnvHashMB, "")
	os.Unsetenv(EnvHashMB)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Engine.HashMB != 32 {
		t.Fatalf("hash: got=%d want=32", cfg.Engine.HashMB)
	}
}

func TestLoadMissingDefaultEnvFileIsFine(t *testing.T) {
	t.Chdir(t.TempDir())
	if _, err := Load(); err != nil {
		t.Fatalf("Load: %v", err)
	}
}

func TestLoadMissingExplicitEnvFileFails(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.env"))
	if !errors.Is(err, fs.ErrNotExist) {
		t.Fatalf("got err=%v want fs.ErrNotExist", err)
	}
}
