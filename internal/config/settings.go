package config

import (
	"errors"
	"net/url"
	"os"
	"strings"
	"time"

	toml "github.com/pelletier/go-toml/v2"
)

const (
	defaultServerAddress    = "127.0.0.1:9898"
	defaultReconnectDelayMS = 3000
	streamPath              = "/sse/article"
	socketPath              = "/ws"
)

// Transport variants.
const (
	VariantStream = "sse"
	VariantSocket = "socket"
)

type Settings struct {
	Server    ServerSettings    `toml:"server"`
	Transport TransportSettings `toml:"transport"`
	Logging   LoggingSettings   `toml:"logging"`
}

type ServerSettings struct {
	Address string `toml:"address"`
}

type TransportSettings struct {
	Variant          string `toml:"variant"`
	ReconnectDelayMS int    `toml:"reconnect_delay_ms"`
}

type LoggingSettings struct {
	Level string `toml:"level"`
	File  string `toml:"file"`
}

func DefaultSettings() Settings {
	return Settings{
		Server: ServerSettings{
			Address: defaultServerAddress,
		},
		Transport: TransportSettings{
			Variant:          VariantStream,
			ReconnectDelayMS: defaultReconnectDelayMS,
		},
		Logging: LoggingSettings{
			Level: "info",
		},
	}
}

// LoadSettings reads the config file, tolerating a missing file.
func LoadSettings() (Settings, error) {
	path, err := SettingsPath()
	if err != nil {
		return Settings{}, err
	}
	return loadSettingsFromPath(path)
}

func loadSettingsFromPath(path string) (Settings, error) {
	cfg := DefaultSettings()
	if err := readTOML(path, &cfg); err != nil {
		return Settings{}, err
	}
	return cfg, nil
}

func readTOML(path string, out any) error {
	path = strings.TrimSpace(path)
	if path == "" {
		return errors.New("path is required")
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return err
	}
	if len(strings.TrimSpace(string(data))) == 0 {
		return nil
	}
	return toml.Unmarshal(data, out)
}

// ServerAddress returns the host:port of the backend, stripping any scheme
// the user left in.
func (s Settings) ServerAddress() string {
	addr := strings.TrimSpace(s.Server.Address)
	addr = strings.TrimPrefix(addr, "http://")
	addr = strings.TrimPrefix(addr, "https://")
	addr = strings.TrimPrefix(addr, "ws://")
	addr = strings.TrimPrefix(addr, "wss://")
	addr = strings.TrimRight(addr, "/")
	if addr == "" {
		return defaultServerAddress
	}
	return addr
}

// StreamURL builds the per-turn push-stream URL with the topic
// percent-encoded in the query.
func (s Settings) StreamURL(topic string) string {
	return "http://" + s.ServerAddress() + streamPath + "?topic=" + url.QueryEscape(topic)
}

// SocketURL builds the persistent socket URL for the given client session
// id.
func (s Settings) SocketURL(sessionID string) string {
	return "ws://" + s.ServerAddress() + socketPath + "/" + url.PathEscape(sessionID)
}

// Variant returns the normalized transport variant, defaulting to the push
// stream.
func (s Settings) Variant() string {
	switch strings.ToLower(strings.TrimSpace(s.Transport.Variant)) {
	case VariantSocket, "ws", "websocket":
		return VariantSocket
	default:
		return VariantStream
	}
}

// ReconnectDelay returns the fixed socket reconnect delay.
func (s Settings) ReconnectDelay() time.Duration {
	ms := s.Transport.ReconnectDelayMS
	if ms <= 0 {
		ms = defaultReconnectDelayMS
	}
	return time.Duration(ms) * time.Millisecond
}

// LogLevel returns the configured log level name.
func (s Settings) LogLevel() string {
	level := strings.TrimSpace(s.Logging.Level)
	if level == "" {
		return "info"
	}
	return level
}

// LogFile returns the configured log file path, or the default UI log path
// when unset.
func (s Settings) LogFile() (string, error) {
	if path := strings.TrimSpace(s.Logging.File); path != "" {
		return path, nil
	}
	return LogPath()
}
