package main

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/danmuck/logowire/internal/protocol"
)

func TestLoadConfigDefaultsAndOverrides(t *testing.T) {
	cfg, err := loadConfig("ex.config.toml")
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.Transport != "unix" || cfg.Address != "/tmp/logowire.sock" {
		t.Fatalf("unexpected endpoint: %s %q", cfg.Transport, cfg.Address)
	}
	if cfg.Dial.Network != "unix" || cfg.Dial.Address != cfg.Address {
		t.Fatalf("dial config not derived: %+v", cfg.Dial)
	}
	if cfg.Limits.MaxFrameBytes != 1<<20 || cfg.Dial.Limits != cfg.Limits {
		t.Fatalf("unexpected limits: %+v", cfg.Limits)
	}
	if cfg.MetricsAddr != "127.0.0.1:9420" {
		t.Fatalf("unexpected metrics address: %q", cfg.MetricsAddr)
	}
	if cfg.OutboxDepth != 16 {
		t.Fatalf("unexpected outbox depth: %d", cfg.OutboxDepth)
	}
	if cfg.Dial.ConnectTimeout != 2*time.Second || cfg.Dial.MaxAttempts != 3 {
		t.Fatalf("unexpected dial config: %+v", cfg.Dial)
	}
	if cfg.Redis.Prefix != "repl" || cfg.Redis.Session != "turtle" || cfg.Redis.PollTimeout != 500*time.Millisecond {
		t.Fatalf("unexpected redis config: %+v", cfg.Redis)
	}
	if cfg.Console.TextSize != 14.5 || cfg.Console.Font != "Monaco" {
		t.Fatalf("unexpected console config: %+v", cfg.Console)
	}
	if cfg.Console.Foreground != protocol.RGB(0, 0xff, 0) {
		t.Fatalf("unexpected foreground: %+v", cfg.Console.Foreground)
	}
	if cfg.Console.Background != (protocol.Color{}) {
		t.Fatalf("unexpected background: %+v", cfg.Console.Background)
	}
}

func TestLoadConfigEmptyPathUsesDefaults(t *testing.T) {
	cfg, err := loadConfig("")
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	def := defaultConfig()
	if cfg.Transport != def.Transport || cfg.Address != def.Address || cfg.Console != def.Console {
		t.Fatalf("expected defaults, got %+v", cfg)
	}
}

func TestLoadConfigRejectsBadValues(t *testing.T) {
	cases := map[string]string{
		"transport": `transport = "carrier-pigeon"`,
		"duration":  `connect_timeout = "soon"`,
		"color":     `foreground = "#12"`,
		"unknown":   `colour = "#ffffff"`,
		"frame":     `max_frame_bytes = 0`,
	}
	for name, body := range cases {
		path := filepath.Join(t.TempDir(), name+".toml")
		if err := os.WriteFile(path, []byte(body+"\n"), 0o600); err != nil {
			t.Fatalf("write: %v", err)
		}
		if _, err := loadConfig(path); err == nil {
			t.Fatalf("%s: expected error", name)
		}
	}
}

func TestParseColor(t *testing.T) {
	c, err := parseColor("#102030")
	if err != nil || c != protocol.RGB(0x10, 0x20, 0x30) {
		t.Fatalf("unexpected %+v %v", c, err)
	}
	c, err = parseColor("10203080")
	if err != nil || c != (protocol.Color{R: 0x10, G: 0x20, B: 0x30, A: 0x80}) {
		t.Fatalf("unexpected %+v %v", c, err)
	}
	if _, err := parseColor("#zzzzzz"); err == nil {
		t.Fatalf("expected hex error")
	}
}
