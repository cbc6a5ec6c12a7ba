package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("PAWLOG_PORT", "")
	t.Setenv("PAWLOG_BACKEND", "")
	t.Setenv("PAWLOG_BACKUP_CRON", "")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Port != "8080" || cfg.DBPath != "pawlog.db" || cfg.Backend != BackendLocal {
		t.Errorf("defaults = %+v", cfg)
	}
	if cfg.BackupCron != "0 3 * * *" {
		t.Errorf("backup cron = %q", cfg.BackupCron)
	}
	if cfg.Remote() {
		t.Error("default backend should be local")
	}
}

func TestLoadEnvFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ".env")
	content := "PAWLOG_PORT=9090\nPAWLOG_DB_PATH=/data/pawlog.db\nPAWLOG_S3_BUCKET=pups\n"
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
	// godotenv never overrides variables that are already set.
	t.Setenv("PAWLOG_DB_PATH", "/override.db")
	t.Setenv("PAWLOG_PORT", "")
	os.Unsetenv("PAWLOG_PORT")
	t.Setenv("PAWLOG_S3_BUCKET", "")
	os.Unsetenv("PAWLOG_S3_BUCKET")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Port != "9090" {
		t.Errorf("port = %q, want 9090", cfg.Port)
	}
	if cfg.DBPath != "/override.db" {
		t.Errorf("db path = %q, want environment value", cfg.DBPath)
	}
	if cfg.S3Bucket != "pups" {
		t.Errorf("bucket = %q", cfg.S3Bucket)
	}
}

func TestLoadMissingFileIgnored(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "missing.env")); err != nil {
		t.Errorf("missing env file should be ignored: %v", err)
	}
}

func TestValidateBackend(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{"local", Config{Backend: BackendLocal}, false},
		{"remote complete", Config{Backend: BackendRemote, RemoteURL: "https://db.example.com", RemoteKey: "k"}, false},
		{"remote missing key", Config{Backend: BackendRemote, RemoteURL: "https://db.example.com"}, true},
		{"unknown", Config{Backend: "cloud"}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() err = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
