package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

// isolate points Load at an empty directory so no stray .env or config file
// from the working tree leaks into a test.
func isolate(t *testing.T) string {
	t.Helper()

	dir := t.TempDir()
	t.Chdir(dir)
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(dir, "xdg"))
	t.Setenv("HOME", dir)
	return dir
}

func TestLoad_Defaults(t *testing.T) {
	isolate(t)

	c, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if c.BaseURL != "http://localhost:8080/api" {
		t.Errorf("unexpected base URL: %s", c.BaseURL)
	}
	if c.RefreshPath != "/auth/refresh" {
		t.Errorf("unexpected refresh path: %s", c.RefreshPath)
	}
	if c.Timeout != 10*time.Second {
		t.Errorf("expected 10s timeout, got %s", c.Timeout)
	}
	if c.Retry.Max != 3 || c.Retry.Delay != time.Second {
		t.Errorf("expected 3 retries 1s apart, got %d x %s", c.Retry.Max, c.Retry.Delay)
	}
	if c.Refresh.MaxPending != 256 {
		t.Errorf("unexpected max pending: %d", c.Refresh.MaxPending)
	}
	if !strings.HasSuffix(c.TokenStore.File, "tokens.json") {
		t.Errorf("unexpected token file: %s", c.TokenStore.File)
	}
	if c.Logging.Enabled {
		t.Error("logging should be disabled by default")
	}
}

func TestLoad_Environment(t *testing.T) {
	isolate(t)
	t.Setenv("GYMVIEW_BASE_URL", "https://gym.example.com/api/")
	t.Setenv("GYMVIEW_TIMEOUT", "5s")
	t.Setenv("GYMVIEW_RETRY_MAX", "0")
	t.Setenv("GYMVIEW_TOKEN_STORE_SECRET", "s3cret")
	t.Setenv("GYMVIEW_LOGGING_ENABLED", "true")

	c, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if c.BaseURL != "https://gym.example.com/api" {
		t.Errorf("expected trailing slash trimmed, got %s", c.BaseURL)
	}
	if c.Timeout != 5*time.Second {
		t.Errorf("expected 5s timeout, got %s", c.Timeout)
	}
	if c.Retry.Max != 0 {
		t.Errorf("expected retries disabled, got %d", c.Retry.Max)
	}
	if c.TokenStore.Secret != "s3cret" {
		t.Errorf("unexpected secret: %q", c.TokenStore.Secret)
	}
	if !c.Logging.Enabled {
		t.Error("logging should be enabled")
	}
}

func TestLoad_ConfigFile(t *testing.T) {
	dir := isolate(t)
	path := filepath.Join(dir, "custom.yaml")
	content := "base_url: https://file.example.com/api\nretry:\n  max: 1\n  delay: 250ms\ngrpc:\n  address: gym.example.com:9090\n"
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}

	c, err := Load(WithConfigFile(path))
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if c.BaseURL != "https://file.example.com/api" {
		t.Errorf("unexpected base URL: %s", c.BaseURL)
	}
	if c.Retry.Max != 1 || c.Retry.Delay != 250*time.Millisecond {
		t.Errorf("unexpected retry: %d x %s", c.Retry.Max, c.Retry.Delay)
	}
	if c.GRPC.Address != "gym.example.com:9090" {
		t.Errorf("unexpected gRPC address: %s", c.GRPC.Address)
	}
	if c.Timeout != 10*time.Second {
		t.Errorf("default timeout should survive, got %s", c.Timeout)
	}
}

func TestLoad_DiscoveredConfigFile(t *testing.T) {
	dir := isolate(t)
	if err := os.WriteFile(filepath.Join(dir, "gymview.yaml"), []byte("timeout: 3s\n"), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}

	c, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if c.Timeout != 3*time.Second {
		t.Errorf("expected 3s timeout from gymview.yaml, got %s", c.Timeout)
	}
}

func TestLoad_EnvironmentOverridesFile(t *testing.T) {
	dir := isolate(t)
	path := filepath.Join(dir, "gymview.yaml")
	if err := os.WriteFile(path, []byte("timeout: 3s\n"), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	t.Setenv("GYMVIEW_TIMEOUT", "7s")

	c, err := Load(WithConfigFile(path))
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if c.Timeout != 7*time.Second {
		t.Errorf("expected environment to win, got %s", c.Timeout)
	}
}

func TestLoad_MissingConfigFile(t *testing.T) {
	dir := isolate(t)

	_, err := Load(WithConfigFile(filepath.Join(dir, "missing.yaml")))
	if err == nil {
		t.Fatal("expected error for missing explicit config file")
	}
}

func TestLoad_EnvFile(t *testing.T) {
	dir := isolate(t)
	path := filepath.Join(dir, "gym.env")
	if err := os.WriteFile(path, []byte("GYMVIEW_GRPC_ADDRESS=localhost:9999\nGYMVIEW_GRPC_INSECURE=true\n"), 0o600); err != nil {
		t.Fatalf("write env file: %v", err)
	}
	t.Cleanup(func() {
		os.Unsetenv("GYMVIEW_GRPC_ADDRESS")
		os.Unsetenv("GYMVIEW_GRPC_INSECURE")
	})

	c, err := Load(WithEnvFile(path))
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if c.GRPC.Address != "localhost:9999" || !c.GRPC.Insecure {
		t.Errorf("unexpected gRPC settings: %+v", c.GRPC)
	}
}

func TestLoad_EnvFileDoesNotOverrideEnvironment(t *testing.T) {
	dir := isolate(t)
	if err := os.WriteFile(filepath.Join(dir, ".env"), []byte("GYMVIEW_TIMEOUT=2s\n"), 0o600); err != nil {
		t.Fatalf("write env file: %v", err)
	}
	t.Setenv("GYMVIEW_TIMEOUT", "4s")

	c, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if c.Timeout != 4*time.Second {
		t.Errorf("expected process environment to win, got %s", c.Timeout)
	}
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name string
		key  string
		val  string
		want string
	}{
		{"empty base URL", "GYMVIEW_BASE_URL", " ", "base_url"},
		{"zero timeout", "GYMVIEW_TIMEOUT", "0s", "timeout"},
		{"negative retries", "GYMVIEW_RETRY_MAX", "-1", "retry.max"},
		{"zero delay", "GYMVIEW_RETRY_DELAY", "0s", "retry.delay"},
		{"zero queue", "GYMVIEW_REFRESH_MAX_PENDING", "0", "max_pending"},
		{"cert without key", "GYMVIEW_TLS_CERT_FILE", "/tmp/client.crt", "key_file"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			isolate(t)
			t.Setenv(tt.key, tt.val)

			_, err := Load()
			if err == nil {
				t.Fatal("expected validation error")
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("expected error mentioning %q, got %v", tt.want, err)
			}
		})
	}
}
