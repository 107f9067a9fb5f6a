package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestDefaultSettings(t *testing.T) {
	cfg := DefaultSettings()
	if cfg.ServerAddress() != "127.0.0.1:9898" {
		t.Fatalf("ServerAddress = %q", cfg.ServerAddress())
	}
	if cfg.Variant() != VariantStream {
		t.Fatalf("Variant = %q, want %q", cfg.Variant(), VariantStream)
	}
	if cfg.ReconnectDelay() != 3*time.Second {
		t.Fatalf("ReconnectDelay = %s", cfg.ReconnectDelay())
	}
	if cfg.LogLevel() != "info" {
		t.Fatalf("LogLevel = %q", cfg.LogLevel())
	}
}

func TestServerAddressNormalization(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"", "127.0.0.1:9898"},
		{"   ", "127.0.0.1:9898"},
		{"http://jokes.example:9898", "jokes.example:9898"},
		{"https://jokes.example/", "jokes.example"},
		{"ws://jokes.example:9898", "jokes.example:9898"},
		{"jokes.example:9898/", "jokes.example:9898"},
	}
	for _, tt := range tests {
		cfg := Settings{Server: ServerSettings{Address: tt.in}}
		if got := cfg.ServerAddress(); got != tt.want {
			t.Fatalf("ServerAddress(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestStreamURLEscapesTopic(t *testing.T) {
	cfg := DefaultSettings()
	got := cfg.StreamURL("knock knock & more")
	want := "http://127.0.0.1:9898/sse/article?topic=knock+knock+%26+more"
	if got != want {
		t.Fatalf("StreamURL = %q, want %q", got, want)
	}
}

func TestSocketURL(t *testing.T) {
	cfg := DefaultSettings()
	got := cfg.SocketURL("abc-123")
	if got != "ws://127.0.0.1:9898/ws/abc-123" {
		t.Fatalf("SocketURL = %q", got)
	}
}

func TestVariantNormalization(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"", VariantStream},
		{"sse", VariantStream},
		{"SSE", VariantStream},
		{"socket", VariantSocket},
		{"websocket", VariantSocket},
		{"ws", VariantSocket},
		{"carrier-pigeon", VariantStream},
	}
	for _, tt := range tests {
		cfg := Settings{Transport: TransportSettings{Variant: tt.in}}
		if got := cfg.Variant(); got != tt.want {
			t.Fatalf("Variant(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestLoadSettingsFromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	content := `
[server]
address = "jokes.example:9000"

[transport]
variant = "socket"
reconnect_delay_ms = 500

[logging]
level = "debug"
`
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := loadSettingsFromPath(path)
	if err != nil {
		t.Fatalf("loadSettingsFromPath: %v", err)
	}
	if cfg.ServerAddress() != "jokes.example:9000" {
		t.Fatalf("ServerAddress = %q", cfg.ServerAddress())
	}
	if cfg.Variant() != VariantSocket {
		t.Fatalf("Variant = %q", cfg.Variant())
	}
	if cfg.ReconnectDelay() != 500*time.Millisecond {
		t.Fatalf("ReconnectDelay = %s", cfg.ReconnectDelay())
	}
	if cfg.LogLevel() != "debug" {
		t.Fatalf("LogLevel = %q", cfg.LogLevel())
	}
}

func TestLoadSettingsMissingFileUsesDefaults(t *testing.T) {
	cfg, err := loadSettingsFromPath(filepath.Join(t.TempDir(), "absent.toml"))
	if err != nil {
		t.Fatalf("loadSettingsFromPath: %v", err)
	}
	if cfg.ServerAddress() != "127.0.0.1:9898" || cfg.Variant() != VariantStream {
		t.Fatalf("defaults not applied: %+v", cfg)
	}
}

func TestLoadSettingsRejectsInvalidTOML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	if err := os.WriteFile(path, []byte("[server\naddress"), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	if _, err := loadSettingsFromPath(path); err == nil {
		t.Fatalf("expected error for invalid TOML")
	}
}
