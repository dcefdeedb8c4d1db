package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestFindConfig_Explicit(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "test.yaml")
	os.WriteFile(path, []byte("eventsub:\n  port: 9999\n"), 0600)

	got, err := FindConfig(path)
	if err != nil {
		t.Fatalf("FindConfig(%q) error: %v", path, err)
	}
	if got != path {
		t.Errorf("FindConfig(%q) = %q, want %q", path, got, path)
	}
}

func TestFindConfig_ExplicitMissing(t *testing.T) {
	_, err := FindConfig("/nonexistent/config.yaml")
	if err == nil {
		t.Fatal("FindConfig with missing explicit path should error")
	}
}

func TestFindConfig_SearchPath(t *testing.T) {
	// Override searchPathsFunc to avoid finding real config files on
	// developer/deploy machines.
	dir := t.TempDir()
	orig := searchPathsFunc
	searchPathsFunc = func() []string {
		return []string{filepath.Join(dir, "config.yaml")}
	}
	defer func() { searchPathsFunc = orig }()

	_, err := FindConfig("")
	if err == nil {
		t.Fatal("FindConfig(\"\") with no config files should error")
	}
}

func TestFindConfig_CWD(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	os.WriteFile(path, []byte("eventsub:\n  port: 443\n"), 0600)

	orig, _ := os.Getwd()
	os.Chdir(dir)
	defer os.Chdir(orig)

	got, err := FindConfig("")
	if err != nil {
		t.Fatalf("FindConfig(\"\") error: %v", err)
	}
	if got != "config.yaml" {
		t.Errorf("FindConfig(\"\") = %q, want %q", got, "config.yaml")
	}
}

func TestLoad_ExpandsEnvVars(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	os.WriteFile(path, []byte("rest:\n  base_url: https://api.twitch.tv/helix\n  client_id: abc\n  access_token: ${EVENTSUB_TEST_TOKEN}\n"), 0600)
	os.Setenv("EVENTSUB_TEST_TOKEN", "secret123")
	defer os.Unsetenv("EVENTSUB_TEST_TOKEN")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}
	if cfg.REST.AccessToken != "secret123" {
		t.Errorf("access_token = %q, want %q", cfg.REST.AccessToken, "secret123")
	}
}

func TestLoad_AppliesDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	os.WriteFile(path, []byte("log_level: debug\n"), 0600)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}
	if cfg.EventSub.Host != "eventsub.wss.twitch.tv" {
		t.Errorf("host = %q, want default", cfg.EventSub.Host)
	}
	if cfg.EventSub.Port != 443 {
		t.Errorf("port = %d, want 443", cfg.EventSub.Port)
	}
	if cfg.Controller.MaxSessions != 3 {
		t.Errorf("max_sessions = %d, want 3", cfg.Controller.MaxSessions)
	}
	if cfg.Controller.BackoffInitial != 2*time.Second {
		t.Errorf("backoff_initial = %v, want 2s", cfg.Controller.BackoffInitial)
	}
}

func TestValidate_BadPort(t *testing.T) {
	cfg := Default()
	cfg.EventSub.Port = 0
	cfg.applyDefaults() // would restore default; simulate post-defaults bad value
	cfg.EventSub.Port = 70000

	if err := cfg.Validate(); err == nil {
		t.Fatal("expected validation error for out-of-range port")
	}
}

func TestValidate_BackoffMaxBelowInitial(t *testing.T) {
	cfg := Default()
	cfg.Controller.BackoffInitial = 10 * time.Second
	cfg.Controller.BackoffMax = 5 * time.Second

	if err := cfg.Validate(); err == nil {
		t.Fatal("expected validation error for backoff_max < backoff_initial")
	}
}

func TestValidate_BadLogLevel(t *testing.T) {
	cfg := Default()
	cfg.LogLevel = "verbose"

	if err := cfg.Validate(); err == nil {
		t.Fatal("expected validation error for unknown log level")
	}
}

func TestRESTConfig_Configured(t *testing.T) {
	tests := []struct {
		name string
		cfg  RESTConfig
		want bool
	}{
		{"all set", RESTConfig{BaseURL: "u", ClientID: "c", AccessToken: "t"}, true},
		{"no token", RESTConfig{BaseURL: "u", ClientID: "c"}, false},
		{"empty", RESTConfig{}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.cfg.Configured(); got != tt.want {
				t.Errorf("Configured() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestDefault_IsValid(t *testing.T) {
	cfg := Default()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Default() should validate cleanly: %v", err)
	}
}
