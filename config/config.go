package config

import (
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config represents the overall application configuration.
type Config struct {
	Server       ServerConfig       `yaml:"server"`
	Importer     ImporterConfig     `yaml:"importer"`
	Database     DatabaseConfig     `yaml:"database"`
	Cache        CacheConfig        `yaml:"cache"`
	Availability AvailabilityConfig `yaml:"availability"`
	Resources    ResourcesConfig    `yaml:"resources"`
	Push         PushConfig         `yaml:"push"`
	WorkerPool   WorkerPoolConfig   `yaml:"worker_pool"`
}

// WorkerPoolConfig holds the configuration for the notification worker pool.
type WorkerPoolConfig struct {
	Size      int `yaml:"size"`
	QueueSize int `yaml:"queue_size"`
}

// PushConfig holds the VAPID keys for web push notifications.
type PushConfig struct {
	PublicKey  string `yaml:"vapid_public_key"`
	PrivateKey string `yaml:"vapid_private_key"`
	Subject    string `yaml:"subject"`
	TTL        int    `yaml:"ttl"`
}

// Enabled reports whether both VAPID keys are present.
func (p PushConfig) Enabled() bool {
	return p.PublicKey != "" && p.PrivateKey != ""
}

// ServerConfig holds the server-related configuration.
type ServerConfig struct {
	Port            int      `yaml:"port"`
	RequestIPHeader string   `yaml:"request_ip_header"`
	RateLimitPerSec float64  `yaml:"rate_limit_per_sec"`
	CacheTTLSeconds int      `yaml:"cache_ttl_seconds"`
	AllowedOrigins  []string `yaml:"allowed_origins"`
}

// ImporterConfig holds the spreadsheet importer configuration.
type ImporterConfig struct {
	Enabled         bool              `yaml:"enabled"`
	IntervalSeconds int               `yaml:"interval_seconds"`
	Interval        time.Duration     `yaml:"-"` // Ignored by YAML parser
	TimeoutSeconds  int               `yaml:"timeout_seconds"`
	Timeout         time.Duration     `yaml:"-"`
	HTTPProxy       string            `yaml:"http_proxy"`
	RoomCoordsURL   string            `yaml:"room_coords_url"`
	BookingsURL     string            `yaml:"bookings_url"`
	Headers         map[string]string `yaml:"headers"`
}

// DatabaseConfig holds the database connection configuration.
type DatabaseConfig struct {
	Driver                 string `yaml:"driver"`
	DSN                    string `yaml:"dsn"`
	MaxOpenConns           int    `yaml:"max_open_conns"`
	MaxIdleConns           int    `yaml:"max_idle_conns"`
	ConnMaxLifetimeMinutes int    `yaml:"conn_max_lifetime_minutes"`
	ShadowWrites           bool   `yaml:"shadow_writes"`
	LogLevel               string `yaml:"log_level"`
}

// CacheConfig selects the backend of the query memo.
type CacheConfig struct {
	Backend    string        `yaml:"backend"`
	TTLSeconds int           `yaml:"ttl_seconds"`
	TTL        time.Duration `yaml:"-"`
	Redis      RedisConfig   `yaml:"redis"`
}

// RedisConfig is used when cache.backend is "redis". URI wins over Addr.
type RedisConfig struct {
	URI       string `yaml:"uri"`
	Addr      string `yaml:"addr"`
	Password  string `yaml:"password"`
	DB        int    `yaml:"db"`
	KeyPrefix string `yaml:"key_prefix"`
}

// AvailabilityConfig tunes the availability engine.
type AvailabilityConfig struct {
	// StorageOffsetHours is the shift from the stored UTC clock to the
	// office clock. Unset means 2.
	StorageOffsetHours *int          `yaml:"storage_offset_hours"`
	StorageOffset      time.Duration `yaml:"-"`
	// Overlap is "inclusive" (default) or "half_open".
	Overlap string `yaml:"overlap"`
}

// ResourcesConfig is the static resource pool seeded at startup.
type ResourcesConfig struct {
	Rooms []RoomConfig `yaml:"rooms"`
	Zoom  []string     `yaml:"zoom"`
}

// RoomConfig describes one bookable room.
type RoomConfig struct {
	RoomNo   string  `yaml:"roomno"`
	Capacity int     `yaml:"capacity"`
	X        float64 `yaml:"x"`
	Y        float64 `yaml:"y"`
	Floor    string  `yaml:"floor"`
}

// Load reads the configuration from the given path. A .env file in the
// working directory is loaded first, and secrets in the environment override
// the file.
func Load(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Printf("failed to load .env file: %v", err)
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var cfg Config
	decoder := yaml.NewDecoder(f)
	if err := decoder.Decode(&cfg); err != nil {
		return nil, err
	}

	applyEnv(&cfg)
	if err := applyDefaults(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func applyEnv(cfg *Config) {
	overrides := map[string]*string{
		"DATABASE_DSN":      &cfg.Database.DSN,
		"VAPID_PUBLIC_KEY":  &cfg.Push.PublicKey,
		"VAPID_PRIVATE_KEY": &cfg.Push.PrivateKey,
		"REDIS_URI":         &cfg.Cache.Redis.URI,
	}
	for key, dst := range overrides {
		if v, ok := os.LookupEnv(key); ok && strings.TrimSpace(v) != "" {
			*dst = strings.TrimSpace(v)
		}
	}
}

func applyDefaults(cfg *Config) error {
	if cfg.Server.Port <= 0 {
		cfg.Server.Port = 8080
	}
	if cfg.Server.RateLimitPerSec <= 0 {
		cfg.Server.RateLimitPerSec = 10
	}
	if cfg.Server.CacheTTLSeconds <= 0 {
		cfg.Server.CacheTTLSeconds = 5
	}

	if cfg.Importer.IntervalSeconds <= 0 {
		cfg.Importer.IntervalSeconds = 60
	}
	cfg.Importer.Interval = time.Duration(cfg.Importer.IntervalSeconds) * time.Second
	if cfg.Importer.TimeoutSeconds <= 0 {
		cfg.Importer.TimeoutSeconds = 30
	}
	cfg.Importer.Timeout = time.Duration(cfg.Importer.TimeoutSeconds) * time.Second

	switch cfg.Database.Driver {
	case "":
		cfg.Database.Driver = "postgres"
	case "postgres", "sqlite":
	default:
		return fmt.Errorf("unsupported database.driver %q", cfg.Database.Driver)
	}

	switch cfg.Cache.Backend {
	case "":
		cfg.Cache.Backend = "memory"
	case "memory", "redis":
	default:
		return fmt.Errorf("unsupported cache.backend %q", cfg.Cache.Backend)
	}
	if cfg.Cache.TTLSeconds <= 0 {
		cfg.Cache.TTLSeconds = 60
	}
	cfg.Cache.TTL = time.Duration(cfg.Cache.TTLSeconds) * time.Second
	if cfg.Cache.Redis.KeyPrefix == "" {
		cfg.Cache.Redis.KeyPrefix = "roombooking:"
	}

	offset := 2
	if cfg.Availability.StorageOffsetHours != nil {
		offset = *cfg.Availability.StorageOffsetHours
	}
	cfg.Availability.StorageOffset = time.Duration(offset) * time.Hour

	if cfg.Push.TTL <= 0 {
		cfg.Push.TTL = 3600
	}

	if cfg.WorkerPool.Size <= 0 {
		log.Printf("worker_pool.size is not set or invalid; defaulting to 1")
		cfg.WorkerPool.Size = 1
	}
	if cfg.WorkerPool.QueueSize <= 0 {
		cfg.WorkerPool.QueueSize = 100
	}

	for i, r := range cfg.Resources.Rooms {
		if strings.TrimSpace(r.RoomNo) == "" {
			return fmt.Errorf("resources.rooms[%d]: roomno is required", i)
		}
		if r.Capacity < 0 {
			return fmt.Errorf("resources.rooms[%d]: capacity must not be negative", i)
		}
		if r.Floor == "" {
			cfg.Resources.Rooms[i].Floor = "OG"
		}
	}
	return nil
}
