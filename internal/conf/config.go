// Package conf loads the gateway's environment-variable configuration.
package conf

import (
	"os"
	"path/filepath"
	"strconv"
	"time"

	"gopkg.in/yaml.v2"
)

// Config holds every environment-derived setting described in the
// external interfaces section of the specification.
type Config struct {
	SMTPPort int
	IMAPPort int

	APIBase string

	TLSKeyPath  string
	TLSCertPath string
	Development bool

	APIKeyCacheTTL time.Duration
	APITimeout     time.Duration
	MaxMessageSize int64
	IMAPIdleTimeout time.Duration

	CacheDir            string
	CacheMemoryBytes    int64
	CachePersistentBytes int64

	// FolderAliases overrides the built-in folder-name alias table (§4.7).
	// Populated from CacheDir/folder-aliases.yaml when present.
	FolderAliases map[string]string
}

// Load reads configuration from the environment, applying the defaults
// from the specification's "Environment configuration" table.
func Load() *Config {
	cfg := &Config{
		SMTPPort:             envInt("SMTP_PORT", 587),
		IMAPPort:             envInt("IMAP_PORT", 993),
		APIBase:              envStr("API_BASE", "https://api.xmit.sh"),
		TLSKeyPath:           envStr("TLS_KEY_PATH", ""),
		TLSCertPath:          envStr("TLS_CERT_PATH", ""),
		Development:          envStr("NODE_ENV", "production") == "development",
		APIKeyCacheTTL:       time.Duration(envInt("API_KEY_CACHE_TTL", 300_000)) * time.Millisecond,
		APITimeout:           time.Duration(envInt("API_TIMEOUT", 30_000)) * time.Millisecond,
		MaxMessageSize:       int64(envInt("MAX_MESSAGE_SIZE", 10_485_760)),
		IMAPIdleTimeout:      time.Duration(envInt("IMAP_IDLE_TIMEOUT", 1_800_000)) * time.Millisecond,
		CacheDir:             envStr("CACHE_DIR", "./data/cache"),
		CacheMemoryBytes:     int64(envInt("CACHE_MEMORY_MB", 50)) * 1024 * 1024,
		CachePersistentBytes: int64(envInt("CACHE_PERSISTENT_MB", 500)) * 1024 * 1024,
	}
	cfg.FolderAliases = loadFolderAliases(cfg.CacheDir)
	return cfg
}

func envStr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func envInt(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}

// loadFolderAliases tries a short list of candidate paths the way
// LoadConfig used to try candidate YAML paths, and falls back silently
// to nil (built-in table only) if none is present.
func loadFolderAliases(cacheDir string) map[string]string {
	candidates := []string{
		filepath.Join(cacheDir, "folder-aliases.yaml"),
		"/etc/xmit/folder-aliases.yaml",
		"./folder-aliases.yaml",
	}

	var data []byte
	var err error
	for _, path := range candidates {
		data, err = os.ReadFile(filepath.Clean(path))
		if err == nil {
			break
		}
	}
	if err != nil {
		return nil
	}

	var aliases map[string]string
	if err := yaml.Unmarshal(data, &aliases); err != nil {
		return nil
	}
	return aliases
}
