package config

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"
)

const (
	HistoryMemory   = "memory"
	HistorySQLite   = "sqlite"
	HistoryPostgres = "postgres"
)

var ErrMissingRequired = errors.New("missing required setting")

type Mirror struct {
	Bucket    string
	Region    string
	Endpoint  string
	Key       string
	PathStyle bool
}

func (m Mirror) Enabled() bool {
	return strings.TrimSpace(m.Bucket) != ""
}

type Config struct {
	WorldSave string
	Output    string
	Host      string
	Port      int
	Token     string
	Listen    string

	PollInterval time.Duration
	RetryBackoff time.Duration
	Watch        bool
	WatchSettle  time.Duration
	IdleWait     time.Duration

	RendererCmd     string
	RendererArgs    []string
	RendererTimeout time.Duration
	TileScale       int

	LogLevel  string
	LogFormat string
	OpsRoutes bool

	HistoryDriver string
	SQLitePath    string
	DBDSN         string

	Mirror Mirror
}

func DefaultConfig() Config {
	return Config{
		Port:          7878,
		Listen:        ":8888",
		PollInterval:  3 * time.Second,
		RetryBackoff:  3 * time.Second,
		Watch:         true,
		WatchSettle:   500 * time.Millisecond,
		IdleWait:      250 * time.Millisecond,
		RendererCmd:   "terramapper",
		TileScale:     1,
		LogLevel:      "info",
		LogFormat:     "console",
		HistoryDriver: HistoryMemory,
		SQLitePath:    "cartographer.db",
		Mirror:        Mirror{Region: "us-east-1", Key: "map.png"},
	}
}

// Load builds the configuration. Environment values replace the defaults and
// command-line flags win over both.
func Load(args []string, getenv func(string) string, output io.Writer) (Config, error) {
	cfg := DefaultConfig()
	applyEnv(&cfg, getenv)

	fs := flag.NewFlagSet("cartographer", flag.ContinueOnError)
	if output != nil {
		fs.SetOutput(output)
	}
	stringVar(fs, &cfg.WorldSave, cfg.WorldSave, "the path of the world save to generate a map for", "f", "world")
	stringVar(fs, &cfg.Host, cfg.Host, "host of the game server REST API", "H", "host")
	stringVar(fs, &cfg.Token, cfg.Token, "token for the game server REST API", "t", "token")
	stringVar(fs, &cfg.Output, cfg.Output, "path where the output image will be placed", "o", "output")
	fs.IntVar(&cfg.Port, "port", cfg.Port, "port of the game server REST API")
	fs.StringVar(&cfg.Listen, "listen", cfg.Listen, "address the map server listens on")
	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) Validate() error {
	var missing []string
	if strings.TrimSpace(c.WorldSave) == "" {
		missing = append(missing, "-f/--world")
	}
	if strings.TrimSpace(c.Host) == "" {
		missing = append(missing, "-H/--host")
	}
	if strings.TrimSpace(c.Token) == "" {
		missing = append(missing, "-t/--token")
	}
	if strings.TrimSpace(c.Output) == "" {
		missing = append(missing, "-o/--output")
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: %s", ErrMissingRequired, strings.Join(missing, ", "))
	}
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("invalid port %d", c.Port)
	}
	if c.PollInterval <= 0 || c.RetryBackoff <= 0 {
		return fmt.Errorf("poll interval and retry backoff must be positive")
	}
	switch c.HistoryDriver {
	case HistoryMemory, HistorySQLite:
	case HistoryPostgres:
		if strings.TrimSpace(c.DBDSN) == "" {
			return fmt.Errorf("%w: CARTOGRAPHER_DB_DSN for the postgres history driver", ErrMissingRequired)
		}
	default:
		return fmt.Errorf("unknown history driver %q", c.HistoryDriver)
	}
	return nil
}

// RemoteURL is the base URL of the game server REST API.
func (c Config) RemoteURL() string {
	host := strings.TrimRight(c.Host, "/")
	if !strings.Contains(host, "://") {
		host = "http://" + host
	}
	return host + ":" + strconv.Itoa(c.Port)
}

func stringVar(fs *flag.FlagSet, p *string, value, usage string, names ...string) {
	for _, name := range names {
		fs.StringVar(p, name, value, usage)
	}
}

func applyEnv(c *Config, getenv func(string) string) {
	env := func(key string) string { return strings.TrimSpace(getenv(key)) }

	c.WorldSave = stringEnv(env, "CARTOGRAPHER_WORLD", c.WorldSave)
	c.Output = stringEnv(env, "CARTOGRAPHER_OUTPUT", c.Output)
	c.Host = stringEnv(env, "CARTOGRAPHER_HOST", c.Host)
	c.Port = intEnv(env, "CARTOGRAPHER_PORT", c.Port)
	c.Token = stringEnv(env, "CARTOGRAPHER_TOKEN", c.Token)
	c.Listen = stringEnv(env, "CARTOGRAPHER_LISTEN", c.Listen)

	c.PollInterval = secondsEnv(env, "CARTOGRAPHER_POLL_INTERVAL_SECONDS", c.PollInterval)
	c.RetryBackoff = secondsEnv(env, "CARTOGRAPHER_RETRY_BACKOFF_SECONDS", c.RetryBackoff)
	c.Watch = boolEnv(env, "CARTOGRAPHER_WATCH", c.Watch)
	c.WatchSettle = millisEnv(env, "CARTOGRAPHER_WATCH_SETTLE_MS", c.WatchSettle)
	c.IdleWait = millisEnv(env, "CARTOGRAPHER_IDLE_WAIT_MS", c.IdleWait)

	c.RendererCmd = stringEnv(env, "CARTOGRAPHER_RENDERER_CMD", c.RendererCmd)
	if raw := env("CARTOGRAPHER_RENDERER_ARGS"); raw != "" {
		c.RendererArgs = strings.Fields(raw)
	}
	c.RendererTimeout = secondsEnv(env, "CARTOGRAPHER_RENDERER_TIMEOUT_SECONDS", c.RendererTimeout)
	c.TileScale = intEnv(env, "CARTOGRAPHER_TILE_SCALE", c.TileScale)

	c.LogLevel = stringEnv(env, "CARTOGRAPHER_LOG_LEVEL", c.LogLevel)
	c.LogFormat = stringEnv(env, "CARTOGRAPHER_LOG_FORMAT", c.LogFormat)
	c.OpsRoutes = boolEnv(env, "CARTOGRAPHER_OPS_ROUTES", c.OpsRoutes)

	c.HistoryDriver = strings.ToLower(stringEnv(env, "CARTOGRAPHER_HISTORY_DRIVER", c.HistoryDriver))
	c.SQLitePath = stringEnv(env, "CARTOGRAPHER_SQLITE_PATH", c.SQLitePath)
	c.DBDSN = stringEnv(env, "CARTOGRAPHER_DB_DSN", c.DBDSN)

	c.Mirror.Bucket = stringEnv(env, "CARTOGRAPHER_MIRROR_S3_BUCKET", c.Mirror.Bucket)
	c.Mirror.Region = stringEnv(env, "CARTOGRAPHER_MIRROR_S3_REGION", c.Mirror.Region)
	c.Mirror.Endpoint = stringEnv(env, "CARTOGRAPHER_MIRROR_S3_ENDPOINT", c.Mirror.Endpoint)
	c.Mirror.Key = stringEnv(env, "CARTOGRAPHER_MIRROR_S3_KEY", c.Mirror.Key)
	c.Mirror.PathStyle = boolEnv(env, "CARTOGRAPHER_MIRROR_S3_PATH_STYLE", c.Mirror.PathStyle)
}

func stringEnv(env func(string) string, key, fallback string) string {
	if v := env(key); v != "" {
		return v
	}
	return fallback
}

func intEnv(env func(string) string, key string, fallback int) int {
	v := env(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}

func boolEnv(env func(string) string, key string, fallback bool) bool {
	v := env(key)
	if v == "" {
		return fallback
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return fallback
	}
	return b
}

func secondsEnv(env func(string) string, key string, fallback time.Duration) time.Duration {
	n := intEnv(env, key, -1)
	if n < 0 {
		return fallback
	}
	return time.Duration(n) * time.Second
}

func millisEnv(env func(string) string, key string, fallback time.Duration) time.Duration {
	n := intEnv(env, key, -1)
	if n < 0 {
		return fallback
	}
	return time.Duration(n) * time.Millisecond
}
