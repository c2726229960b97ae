package config

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"gopkg.in/yaml.v3"
)

// Config is the main configuration struct.
type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Session  SessionConfig  `yaml:"session"`
	Avatars  AvatarConfig   `yaml:"avatars"`
	Security SecurityConfig `yaml:"security"`
	Logging  LoggingConfig  `yaml:"logging"`
	Sweeper  SweeperConfig  `yaml:"sweeper"`
}

// ServerConfig holds http, engine and archive settings.
type ServerConfig struct {
	Address     string    `yaml:"address"`
	Port        int       `yaml:"port"`
	Engine      string    `yaml:"engine"` // nethttp | fasthttp
	ArchivePath string    `yaml:"archive_path"`
	TLS         TLSConfig `yaml:"tls"`
}

// TLSConfig holds TLS certificate configuration.
type TLSConfig struct {
	CertFile string `yaml:"cert_file"`
	KeyFile  string `yaml:"key_file"`
}

// SessionConfig tunes the timeline engine.
type SessionConfig struct {
	PageSize      int `yaml:"page_size"`
	QueueCapacity int `yaml:"queue_capacity"`
	ItemHeight    int `yaml:"item_height"`
	Overscan      int `yaml:"overscan"`
}

// AvatarConfig tunes the avatar resolver. Endpoint is the profile-picture
// backend; empty disables avatar resolution.
type AvatarConfig struct {
	Endpoint string  `yaml:"endpoint"`
	RPS      float64 `yaml:"rps"`
	Burst    int     `yaml:"burst"`
}

// SecurityConfig holds security related settings.
type SecurityConfig struct {
	CORS struct {
		AllowedOrigins []string `yaml:"allowed_origins"`
	} `yaml:"cors"`
	RateLimit struct {
		RPS   float64 `yaml:"rps"`
		Burst int     `yaml:"burst"`
	} `yaml:"rate_limit"`
	PushTokens      []string  `yaml:"push_tokens"`
	MaxPushBody     SizeBytes `yaml:"max_push_body"`
	MaxSendBodyLen  int       `yaml:"max_send_body_len"`
	ShutdownTimeout Duration  `yaml:"shutdown_timeout"`
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	Level string `yaml:"level"`
	Sink  string `yaml:"sink"` // empty for stdout, or file:<path>
}

// SweeperConfig controls the periodic cache sweep runner.
type SweeperConfig struct {
	Enabled  bool   `yaml:"enabled"`
	Cron     string `yaml:"cron"`
	LockFile string `yaml:"lock_file"`
}

// SizeBytes represents a number of bytes, unmarshaled from human-friendly strings like "256KB" or plain integers.
type SizeBytes int64

func (s *SizeBytes) UnmarshalYAML(node *yaml.Node) error {
	if node == nil {
		*s = 0
		return nil
	}
	raw := strings.TrimSpace(node.Value)
	if raw == "" {
		*s = 0
		return nil
	}
	if v, err := humanize.ParseBytes(raw); err == nil {
		*s = SizeBytes(v)
		return nil
	}
	if i, err := strconv.ParseInt(raw, 10, 64); err == nil {
		*s = SizeBytes(i)
		return nil
	}
	return fmt.Errorf("invalid size value: %q", node.Value)
}

func (s SizeBytes) Int64() int64 { return int64(s) }

// Duration is a wrapper around time.Duration that supports YAML parsing from strings like "100ms" or plain numbers (interpreted as seconds).
type Duration time.Duration

func (d *Duration) UnmarshalYAML(node *yaml.Node) error {
	if node == nil {
		*d = Duration(0)
		return nil
	}
	raw := strings.TrimSpace(node.Value)
	if raw == "" {
		*d = Duration(0)
		return nil
	}
	if td, err := time.ParseDuration(raw); err == nil {
		*d = Duration(td)
		return nil
	}
	// allow numeric seconds
	if f, err := strconv.ParseFloat(raw, 64); err == nil {
		*d = Duration(time.Duration(f * float64(time.Second)))
		return nil
	}
	return fmt.Errorf("invalid duration value: %q", node.Value)
}

func (d Duration) Duration() time.Duration { return time.Duration(d) }
