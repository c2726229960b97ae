package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadParsesYAML(t *testing.T) {
	path := writeConfig(t, `
server:
  address: 127.0.0.1
  port: 9090
  engine: fasthttp
  archive_path: /var/lib/chatsync
session:
  page_size: 25
  item_height: 56
avatars:
  endpoint: http://avatars.internal/lookup
  rps: 5
  burst: 10
security:
  cors:
    allowed_origins: ["https://app.example"]
  push_tokens: ["tok1", "tok2"]
  max_push_body: 512KB
  max_send_body_len: 4096
  shutdown_timeout: 15s
logging:
  level: debug
sweeper:
  enabled: true
  cron: "*/30 * * * *"
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Addr() != "127.0.0.1:9090" {
		t.Errorf("addr = %q", cfg.Addr())
	}
	if cfg.Server.Engine != "fasthttp" || cfg.Server.ArchivePath != "/var/lib/chatsync" {
		t.Errorf("server = %+v", cfg.Server)
	}
	if cfg.Session.PageSize != 25 || cfg.Session.ItemHeight != 56 {
		t.Errorf("session = %+v", cfg.Session)
	}
	if cfg.Avatars.Endpoint == "" || cfg.Avatars.RPS != 5 || cfg.Avatars.Burst != 10 {
		t.Errorf("avatars = %+v", cfg.Avatars)
	}
	if got := cfg.Security.MaxPushBody.Int64(); got != 512_000 {
		t.Errorf("max_push_body = %d, want 512000", got)
	}
	if got := cfg.Security.ShutdownTimeout.Duration(); got != 15*time.Second {
		t.Errorf("shutdown_timeout = %v", got)
	}
	if len(cfg.Security.PushTokens) != 2 {
		t.Errorf("push_tokens = %v", cfg.Security.PushTokens)
	}
	if !cfg.Sweeper.Enabled || cfg.Sweeper.Cron != "*/30 * * * *" {
		t.Errorf("sweeper = %+v", cfg.Sweeper)
	}
}

func TestDurationNumericSeconds(t *testing.T) {
	path := writeConfig(t, "security:\n  shutdown_timeout: 30\n")
	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if got := cfg.Security.ShutdownTimeout.Duration(); got != 30*time.Second {
		t.Errorf("got %v, want 30s", got)
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestAddrDefaults(t *testing.T) {
	cfg := &Config{}
	if cfg.Addr() != "0.0.0.0:8080" {
		t.Errorf("addr = %q", cfg.Addr())
	}
}

func TestParseConfigEnvs(t *testing.T) {
	t.Setenv("CHATSYNC_ADDR", "10.0.0.5:9999")
	t.Setenv("CHATSYNC_ARCHIVE_PATH", "/data/archive")
	t.Setenv("CHATSYNC_HTTP_ENGINE", "FastHTTP")
	t.Setenv("CHATSYNC_PAGE_SIZE", "30")
	t.Setenv("CHATSYNC_PUSH_TOKENS", "a, b ,c")
	t.Setenv("CHATSYNC_CORS_ORIGINS", "https://one.example,https://two.example")

	envCfg, res := ParseConfigEnvs()
	if !res.EnvUsed {
		t.Fatal("env should be detected as used")
	}
	if envCfg.Server.Address != "10.0.0.5" || envCfg.Server.Port != 9999 {
		t.Errorf("server = %+v", envCfg.Server)
	}
	if envCfg.Server.ArchivePath != "/data/archive" || envCfg.Server.Engine != "fasthttp" {
		t.Errorf("server = %+v", envCfg.Server)
	}
	if envCfg.Session.PageSize != 30 {
		t.Errorf("page_size = %d", envCfg.Session.PageSize)
	}
	if len(res.PushTokens) != 3 {
		t.Errorf("tokens = %v", res.PushTokens)
	}
	if _, ok := res.PushTokens["b"]; !ok {
		t.Error("token list not trimmed")
	}
	if len(envCfg.Security.CORS.AllowedOrigins) != 2 {
		t.Errorf("origins = %v", envCfg.Security.CORS.AllowedOrigins)
	}
}

func TestEffectiveConfigExplicitFlagRequiresFile(t *testing.T) {
	flags := Flags{Config: "/nope/config.yaml", Set: map[string]bool{"config": true}}
	if _, err := LoadEffectiveConfig(flags, &Config{}, false, &Config{}, EnvResult{}); err == nil {
		t.Error("explicit --config with a missing file must fail")
	}
}

func TestEffectiveConfigFlagsWinOverFileAndEnv(t *testing.T) {
	flags := Flags{
		Addr: "127.0.0.1:7000", Archive: "/flag/archive",
		Set: map[string]bool{"addr": true, "archive": true},
	}
	fileCfg := &Config{}
	fileCfg.Server.Address = "file-host"
	envCfg := &Config{}
	envCfg.Server.ArchivePath = "/env/archive"

	res, err := LoadEffectiveConfig(flags, fileCfg, true, envCfg, EnvResult{EnvUsed: true})
	if err != nil {
		t.Fatal(err)
	}
	if res.Source != "flags" || res.Addr != "127.0.0.1:7000" || res.ArchivePath != "/flag/archive" {
		t.Errorf("res = %+v", res)
	}
	if res.Config.Server.Port != 7000 {
		t.Errorf("port = %d", res.Config.Server.Port)
	}
}

func TestEffectiveConfigFilePreferredOverEnv(t *testing.T) {
	flags := Flags{Set: map[string]bool{}}
	fileCfg := &Config{}
	fileCfg.Server.Port = 9191
	fileCfg.Server.ArchivePath = "/file/archive"
	envCfg := &Config{}
	envCfg.Server.Port = 4242

	res, err := LoadEffectiveConfig(flags, fileCfg, true, envCfg, EnvResult{EnvUsed: true})
	if err != nil {
		t.Fatal(err)
	}
	if res.Source != "config" || res.Addr != "0.0.0.0:9191" || res.ArchivePath != "/file/archive" {
		t.Errorf("res = %+v", res)
	}

	res, err = LoadEffectiveConfig(flags, &Config{}, false, envCfg, EnvResult{EnvUsed: true})
	if err != nil {
		t.Fatal(err)
	}
	if res.Source != "env" || res.Addr != "0.0.0.0:4242" {
		t.Errorf("res = %+v", res)
	}
}

func TestRuntimePushTokens(t *testing.T) {
	SetRuntime(&RuntimeConfig{PushTokens: map[string]struct{}{"x": {}}})
	t.Cleanup(func() { SetRuntime(nil) })

	tokens := GetPushTokens()
	if _, ok := tokens["x"]; !ok || len(tokens) != 1 {
		t.Errorf("tokens = %v", tokens)
	}
	// the returned map is a copy
	tokens["y"] = struct{}{}
	if len(GetPushTokens()) != 1 {
		t.Error("mutating the returned map leaked into runtime state")
	}
}
