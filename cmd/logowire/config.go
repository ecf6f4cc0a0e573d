package main

import (
	"encoding/hex"
	"fmt"
	"strings"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/danmuck/logowire/internal/console"
	"github.com/danmuck/logowire/internal/protocol"
	"github.com/danmuck/logowire/internal/protocol/frame"
	"github.com/danmuck/logowire/internal/transport"
)

const (
	transportUnix  = "unix"
	transportTCP   = "tcp"
	transportRedis = "redis"
)

type redisConfig struct {
	Address     string
	Prefix      string
	Session     string
	PollTimeout time.Duration
}

type appConfig struct {
	Transport   string
	Address     string
	MetricsAddr string
	Limits      frame.Limits
	OutboxDepth int
	Dial        transport.DialConfig
	Redis       redisConfig
	Console     console.Settings
}

func defaultConfig() appConfig {
	return appConfig{
		Transport:   transportTCP,
		Address:     "127.0.0.1:7420",
		Limits:      frame.DefaultLimits(),
		OutboxDepth: transport.DefaultOutboxDepth,
		Dial:        transport.DefaultDialConfig(),
		Redis: redisConfig{
			Address:     "127.0.0.1:6379",
			Prefix:      transport.DefaultRedisPrefix,
			Session:     "default",
			PollTimeout: time.Second,
		},
		Console: console.DefaultSettings(),
	}
}

type fileConfig struct {
	Transport          string  `toml:"transport"`
	Address            string  `toml:"address"`
	MetricsAddress     string  `toml:"metrics_address"`
	MaxFrameBytes      uint32  `toml:"max_frame_bytes"`
	OutboxDepth        int     `toml:"outbox_depth"`
	ConnectTimeout     string  `toml:"connect_timeout"`
	MaxConnectAttempts int     `toml:"max_connect_attempts"`
	RedisAddress       string  `toml:"redis_address"`
	RedisPrefix        string  `toml:"redis_prefix"`
	RedisSession       string  `toml:"redis_session"`
	RedisPollTimeout   string  `toml:"redis_poll_timeout"`
	TextSize           float64 `toml:"text_size"`
	Font               string  `toml:"font"`
	Foreground         string  `toml:"foreground"`
	Background         string  `toml:"background"`
}

// loadConfig overlays the keys present in path onto the defaults. An empty
// path yields the defaults.
func loadConfig(path string) (appConfig, error) {
	cfg := defaultConfig()
	if strings.TrimSpace(path) == "" {
		return cfg.derive(), nil
	}

	var raw fileConfig
	meta, err := toml.DecodeFile(path, &raw)
	if err != nil {
		return appConfig{}, fmt.Errorf("load logowire config: %w", err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		return appConfig{}, fmt.Errorf("load logowire config: unknown key %q", undecoded[0].String())
	}

	if meta.IsDefined("transport") {
		kind := strings.ToLower(strings.TrimSpace(raw.Transport))
		switch kind {
		case transportUnix, transportTCP, transportRedis:
			cfg.Transport = kind
		default:
			return appConfig{}, fmt.Errorf("parse transport: unsupported %q", raw.Transport)
		}
	}
	if meta.IsDefined("address") {
		cfg.Address = strings.TrimSpace(raw.Address)
	}
	if meta.IsDefined("metrics_address") {
		cfg.MetricsAddr = strings.TrimSpace(raw.MetricsAddress)
	}
	if meta.IsDefined("max_frame_bytes") {
		if raw.MaxFrameBytes == 0 {
			return appConfig{}, fmt.Errorf("parse max_frame_bytes: must be positive")
		}
		cfg.Limits.MaxFrameBytes = raw.MaxFrameBytes
	}
	if meta.IsDefined("outbox_depth") {
		cfg.OutboxDepth = raw.OutboxDepth
	}
	if meta.IsDefined("connect_timeout") {
		d, err := time.ParseDuration(strings.TrimSpace(raw.ConnectTimeout))
		if err != nil {
			return appConfig{}, fmt.Errorf("parse connect_timeout: %w", err)
		}
		cfg.Dial.ConnectTimeout = d
	}
	if meta.IsDefined("max_connect_attempts") {
		cfg.Dial.MaxAttempts = raw.MaxConnectAttempts
	}
	if meta.IsDefined("redis_address") {
		cfg.Redis.Address = strings.TrimSpace(raw.RedisAddress)
	}
	if meta.IsDefined("redis_prefix") {
		cfg.Redis.Prefix = strings.TrimSpace(raw.RedisPrefix)
	}
	if meta.IsDefined("redis_session") {
		cfg.Redis.Session = strings.TrimSpace(raw.RedisSession)
	}
	if meta.IsDefined("redis_poll_timeout") {
		d, err := time.ParseDuration(strings.TrimSpace(raw.RedisPollTimeout))
		if err != nil {
			return appConfig{}, fmt.Errorf("parse redis_poll_timeout: %w", err)
		}
		cfg.Redis.PollTimeout = d
	}
	if meta.IsDefined("text_size") {
		cfg.Console.TextSize = raw.TextSize
	}
	if meta.IsDefined("font") {
		cfg.Console.Font = strings.TrimSpace(raw.Font)
	}
	if meta.IsDefined("foreground") {
		c, err := parseColor(raw.Foreground)
		if err != nil {
			return appConfig{}, fmt.Errorf("parse foreground: %w", err)
		}
		cfg.Console.Foreground = c
	}
	if meta.IsDefined("background") {
		c, err := parseColor(raw.Background)
		if err != nil {
			return appConfig{}, fmt.Errorf("parse background: %w", err)
		}
		cfg.Console.Background = c
	}

	return cfg.derive(), nil
}

// fileView renders the effective settings back into file form.
func (c appConfig) fileView() fileConfig {
	return fileConfig{
		Transport:          c.Transport,
		Address:            c.Address,
		MetricsAddress:     c.MetricsAddr,
		MaxFrameBytes:      c.Limits.MaxFrameBytes,
		OutboxDepth:        c.OutboxDepth,
		ConnectTimeout:     c.Dial.ConnectTimeout.String(),
		MaxConnectAttempts: c.Dial.MaxAttempts,
		RedisAddress:       c.Redis.Address,
		RedisPrefix:        c.Redis.Prefix,
		RedisSession:       c.Redis.Session,
		RedisPollTimeout:   c.Redis.PollTimeout.String(),
		TextSize:           c.Console.TextSize,
		Font:               c.Console.Font,
		Foreground:         formatColor(c.Console.Foreground),
		Background:         formatColor(c.Console.Background),
	}
}

func (c appConfig) derive() appConfig {
	c.Dial.Network = c.Transport
	c.Dial.Address = c.Address
	c.Dial.Limits = c.Limits
	return c
}

// parseColor accepts #rrggbb (opaque) or #rrggbbaa.
func parseColor(s string) (protocol.Color, error) {
	s = strings.TrimPrefix(strings.TrimSpace(s), "#")
	if len(s) != 6 && len(s) != 8 {
		return protocol.Color{}, fmt.Errorf("want #rrggbb or #rrggbbaa, got %q", s)
	}
	b, err := hex.DecodeString(s)
	if err != nil {
		return protocol.Color{}, err
	}
	c := protocol.RGB(b[0], b[1], b[2])
	if len(b) == 4 {
		c.A = b[3]
	}
	return c, nil
}

func formatColor(c protocol.Color) string {
	if c.A == 0xff {
		return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
	}
	return fmt.Sprintf("#%02x%02x%02x%02x", c.R, c.G, c.B, c.A)
}
