package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
)

func writeTempConfig(t *testing.T, dir string, data map[string]interface{}) string {
	configBytes, err := json.Marshal(data)
	if err != nil {
		t.Fatalf("Failed to marshal config: %v", err)
	}
	configFile := filepath.Join(dir, "config.json")
	if err := os.WriteFile(configFile, configBytes, 0644); err != nil {
		t.Fatalf("Failed to write config file: %v", err)
	}
	return configFile
}

func TestLoad_Local(t *testing.T) {
	dir := t.TempDir()
	cwd, err := os.Getwd()
	if err != nil {
		t.Fatalf("Getwd: %v", err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatalf("Chdir: %v", err)
	}
	defer os.Chdir(cwd)

	configFile := writeTempConfig(t, dir, map[string]interface{}{
		"server_addr": "localhost:9999",
		"redis_addr":  "localhost:6380",
	})
	defer os.Remove(configFile)

	os.Unsetenv("OCP_ENV")
	os.Unsetenv("CONFIG_PATH")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.ServerAddr != "localhost:9999" {
		t.Errorf("ServerAddr = %q, want localhost:9999", cfg.ServerAddr)
	}
	if cfg.RedisAddr != "localhost:6380" {
		t.Errorf("RedisAddr = %q, want localhost:6380", cfg.RedisAddr)
	}
	// Fields absent from the file keep their defaults.
	if cfg.LogDir != "./logs" {
		t.Errorf("LogDir = %q, want default ./logs", cfg.LogDir)
	}
}

func TestLoad_Kubernetes(t *testing.T) {
	dir := t.TempDir()
	configFile := writeTempConfig(t, dir, map[string]interface{}{
		"server_addr": "0.0.0.0:8080",
	})
	defer os.Remove(configFile)

	os.Setenv("OCP_ENV", "true")
	os.Setenv("CONFIG_PATH", dir+string(os.PathSeparator))
	defer os.Unsetenv("OCP_ENV")
	defer os.Unsetenv("CONFIG_PATH")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.ServerAddr != "0.0.0.0:8080" {
		t.Errorf("ServerAddr = %q, want 0.0.0.0:8080", cfg.ServerAddr)
	}
}

func TestLoad_MissingFile(t *testing.T) {
	dir := t.TempDir()
	cwd, err := os.Getwd()
	if err != nil {
		t.Fatalf("Getwd: %v", err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatalf("Chdir: %v", err)
	}
	defer os.Chdir(cwd)

	os.Unsetenv("OCP_ENV")
	os.Unsetenv("CONFIG_PATH")

	if _, err := Load(); err == nil {
		t.Error("Load() with no config.json present: expected error, got nil")
	}
}
