package logging

import (
	"io"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

const (
	EnvLogLevel     = "LOGOWIRE_LOG_LEVEL"
	EnvLogTimestamp = "LOGOWIRE_LOG_TIMESTAMP"
	EnvLogNoColor   = "LOGOWIRE_LOG_NOCOLOR"
)

type Profile int

const (
	ProfileRuntime Profile = iota
	ProfileTest
)

// Config is the resolved logger configuration for one profile.
type Config struct {
	Level     zerolog.Level
	Timestamp bool
	NoColor   bool
	Out       io.Writer
}

var configureOnce sync.Once

func ConfigureRuntime() {
	Configure(ProfileRuntime)
}

func ConfigureTests() {
	Configure(ProfileTest)
}

func Configure(profile Profile) {
	configureOnce.Do(func() {
		cfg := defaultConfig(profile)
		applyEnvOverrides(&cfg)
		apply(cfg)
	})
}

// profileDefaults lists per-profile settings; tests log everything, bare.
var profileDefaults = map[Profile]Config{
	ProfileRuntime: {Level: zerolog.InfoLevel, Timestamp: true},
	ProfileTest:    {Level: zerolog.DebugLevel},
}

func defaultConfig(profile Profile) Config {
	cfg, ok := profileDefaults[profile]
	if !ok {
		cfg = profileDefaults[ProfileRuntime]
	}
	cfg.Out = os.Stderr
	return cfg
}

func apply(cfg Config) {
	out := zerolog.ConsoleWriter{
		Out:        cfg.Out,
		NoColor:    cfg.NoColor,
		TimeFormat: time.RFC3339,
	}
	if !cfg.Timestamp {
		out.PartsExclude = []string{zerolog.TimestampFieldName}
	}
	zerolog.SetGlobalLevel(cfg.Level)
	log.Logger = zerolog.New(out).With().Timestamp().Str("app", "logowire").Logger()
}

// applyEnvOverrides lets the environment win over profile defaults. Values
// that do not parse are ignored.
func applyEnvOverrides(cfg *Config) {
	if lvl, ok := parseLevel(os.Getenv(EnvLogLevel)); ok {
		cfg.Level = lvl
	}
	envBool(EnvLogTimestamp, &cfg.Timestamp)
	envBool(EnvLogNoColor, &cfg.NoColor)
}

// levelAliases maps accepted spellings onto zerolog level names.
var levelAliases = map[string]string{
	"warning": "warn",
	"off":     "disabled",
	"none":    "disabled",
}

func parseLevel(raw string) (zerolog.Level, bool) {
	name := strings.ToLower(strings.TrimSpace(raw))
	if name == "" {
		return zerolog.NoLevel, false
	}
	if alias, ok := levelAliases[name]; ok {
		name = alias
	}
	lvl, err := zerolog.ParseLevel(name)
	if err != nil {
		return zerolog.NoLevel, false
	}
	return lvl, true
}

func envBool(key string, dst *bool) {
	raw, ok := os.LookupEnv(key)
	if !ok {
		return
	}
	if v, err := strconv.ParseBool(strings.TrimSpace(raw)); err == nil {
		*dst = v
	}
}
