package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
)

const (
	DefaultDBPath    = "./blog.db"
	DefaultHost      = "127.0.0.1"
	DefaultPort      = 8004
	DefaultLogLevel  = "info"
	DefaultBackupDir = "./backups"
	DefaultSiteName  = "Blog App"

	configFileName = ".quill.toml"
	envFileName    = ".env"

	configDirEnvKey          = "QUILL_CONFIG_DIR"
	trustProjectConfigEnvKey = "QUILL_TRUST_PROJECT_CONFIG"
	envFileEnvKey            = "QUILL_ENV_FILE"
)

// ServerConfig holds the HTTP listener settings.
type ServerConfig struct {
	Host     string `toml:"host"`
	Port     int    `toml:"port"`
	Debug    bool   `toml:"debug"`
	SiteName string `toml:"site_name"`
}

// Config defines runtime configuration for quill.
type Config struct {
	DBPath                   string       `toml:"db_path"`
	BackupDir                string       `toml:"backup_dir"`
	LogLevel                 string       `toml:"log_level"`
	Server                   ServerConfig `toml:"server"`
	TrustedProjectConfigPath string       `toml:"-"`
}

// Default returns default configuration values.
func Default() Config {
	return Config{
		DBPath:    DefaultDBPath,
		BackupDir: DefaultBackupDir,
		LogLevel:  DefaultLogLevel,
		Server: ServerConfig{
			Host:     DefaultHost,
			Port:     DefaultPort,
			Debug:    false,
			SiteName: DefaultSiteName,
		},
	}
}

func loadFile(path string, cfg *Config) error {
	_, err := loadFileIfExists(path, cfg)
	return err
}

func loadFileIfExists(path string, cfg *Config) (bool, error) {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, err
	}
	if info.IsDir() {
		return false, nil
	}
	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return false, fmt.Errorf("failed to parse config %s: %w", path, err)
	}
	return true, nil
}

func overrideConfigPath() (string, bool) {
	dir := strings.TrimSpace(os.Getenv(configDirEnvKey))
	if dir == "" {
		return "", false
	}
	return filepath.Join(dir, configFileName), true
}

func trustProjectConfig() bool {
	raw := strings.TrimSpace(os.Getenv(trustProjectConfigEnvKey))
	if raw == "" {
		return false
	}
	value, err := strconv.ParseBool(raw)
	if err != nil {
		return false
	}
	return value
}

// loadDotEnv reads KEY=value pairs from the .env file into the process
// environment. Variables that are already set win.
func loadDotEnv() error {
	path := strings.TrimSpace(os.Getenv(envFileEnvKey))
	if path == "" {
		path = envFileName
	}
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	if info.IsDir() {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("failed to parse env file %s: %w", path, err)
	}
	return nil
}

var allowedKeys = []string{
	"db_path",
	"backup_dir",
	"log_level",
	"server.host",
	"server.port",
	"server.debug",
	"server.site_name",
}

// AllowedKeys returns the set of valid config keys.
func AllowedKeys() []string {
	return allowedKeys
}

// IsAllowedKey checks if a key is a valid config key.
func IsAllowedKey(key string) bool {
	for _, k := range allowedKeys {
		if k == key {
			return true
		}
	}
	return false
}

// Get returns the value of a config key.
func (c *Config) Get(key string) (string, error) {
	switch key {
	case "db_path":
		return c.DBPath, nil
	case "backup_dir":
		return c.BackupDir, nil
	case "log_level":
		return c.LogLevel, nil
	case "server.host":
		return c.Server.Host, nil
	case "server.port":
		return strconv.Itoa(c.Server.Port), nil
	case "server.debug":
		return strconv.FormatBool(c.Server.Debug), nil
	case "server.site_name":
		return c.Server.SiteName, nil
	default:
		return "", fmt.Errorf("unknown key: %s", key)
	}
}

// GlobalPath returns the path to the global config file.
func GlobalPath() (string, error) {
	if path, ok := overrideConfigPath(); ok {
		return path, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, configFileName), nil
}

// ProjectPath returns the path to the project config file.
func ProjectPath() (string, error) {
	if path, ok := overrideConfigPath(); ok {
		return path, nil
	}
	cwd, err := os.Getwd()
	if err != nil {
		return "", err
	}
	return filepath.Join(cwd, configFileName), nil
}

// SetKey reads the TOML file at path, sets key=value, and writes it back.
func SetKey(path, key, value string) error {
	if !IsAllowedKey(key) {
		return fmt.Errorf("unknown key: %s", key)
	}

	data := make(map[string]any)
	if _, err := os.Stat(path); err == nil {
		if _, err := toml.DecodeFile(path, &data); err != nil {
			return fmt.Errorf("parse %s: %w", path, err)
		}
	}

	parsedValue, err := parseSetValue(key, value)
	if err != nil {
		return err
	}
	if err := setNestedKey(data, strings.Split(key, "."), parsedValue); err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	return toml.NewEncoder(f).Encode(data)
}

// Load reads config from trusted files, then the .env file, and applies
// QUILL_* environment overrides.
func Load() (*Config, error) {
	cfg := Default()

	if overridePath, ok := overrideConfigPath(); ok {
		if err := loadFile(overridePath, &cfg); err != nil {
			return nil, err
		}
	} else {
		if home, err := os.UserHomeDir(); err == nil {
			if err := loadFile(filepath.Join(home, configFileName), &cfg); err != nil {
				return nil, err
			}
		}

		if trustProjectConfig() {
			if cwd, err := os.Getwd(); err == nil {
				projectPath := filepath.Join(cwd, configFileName)
				info, statErr := os.Stat(projectPath)
				switch {
				case statErr == nil && !info.IsDir():
					if err := loadFile(projectPath, &cfg); err != nil {
						return nil, err
					}
					cfg.TrustedProjectConfigPath = projectPath
				case statErr != nil && !os.IsNotExist(statErr):
					return nil, statErr
				}
			}
		}
	}

	if err := loadDotEnv(); err != nil {
		return nil, err
	}

	if dbPath := strings.TrimSpace(os.Getenv("QUILL_DB")); dbPath != "" {
		cfg.DBPath = dbPath
	}
	if backupDir := strings.TrimSpace(os.Getenv("QUILL_BACKUP_DIR")); backupDir != "" {
		cfg.BackupDir = backupDir
	}
	if host := strings.TrimSpace(os.Getenv("QUILL_HOST")); host != "" {
		cfg.Server.Host = host
	}
	if raw := strings.TrimSpace(os.Getenv("QUILL_PORT")); raw != "" {
		port, err := parsePort(raw)
		if err != nil {
			return nil, fmt.Errorf("QUILL_PORT: %w", err)
		}
		cfg.Server.Port = port
	}
	if raw := strings.TrimSpace(os.Getenv("QUILL_DEBUG")); raw != "" {
		if parsed, err := strconv.ParseBool(raw); err == nil {
			cfg.Server.Debug = parsed
		}
	}

	cfg.normalizeDefaults()

	return &cfg, nil
}

func (c *Config) normalizeDefaults() {
	if strings.TrimSpace(c.DBPath) == "" {
		c.DBPath = DefaultDBPath
	}
	if strings.TrimSpace(c.BackupDir) == "" {
		c.BackupDir = DefaultBackupDir
	}
	if strings.TrimSpace(c.LogLevel) == "" {
		c.LogLevel = DefaultLogLevel
	}
	if strings.TrimSpace(c.Server.Host) == "" {
		c.Server.Host = DefaultHost
	}
	if c.Server.Port <= 0 {
		c.Server.Port = DefaultPort
	}
	if strings.TrimSpace(c.Server.SiteName) == "" {
		c.Server.SiteName = DefaultSiteName
	}
}

func parsePort(value string) (int, error) {
	port, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil || port <= 0 || port > 65535 {
		return 0, fmt.Errorf("port must be between 1 and 65535")
	}
	return port, nil
}

func parseSetValue(key, value string) (any, error) {
	value = strings.TrimSpace(value)
	switch key {
	case "server.port":
		port, err := parsePort(value)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", key, err)
		}
		return int64(port), nil
	case "server.debug":
		parsed, err := strconv.ParseBool(value)
		if err != nil {
			return nil, fmt.Errorf("%s must be true or false", key)
		}
		return parsed, nil
	case "log_level":
		switch strings.ToLower(value) {
		case "debug", "info", "warn", "warning", "error":
			return strings.ToLower(value), nil
		default:
			return nil, fmt.Errorf("%s must be one of debug, info, warn, error", key)
		}
	default:
		return value, nil
	}
}

func setNestedKey(data map[string]any, parts []string, value any) error {
	if len(parts) == 0 {
		return fmt.Errorf("invalid config key")
	}
	if len(parts) == 1 {
		data[parts[0]] = value
		return nil
	}
	childRaw, ok := data[parts[0]]
	if !ok {
		child := map[string]any{}
		data[parts[0]] = child
		return setNestedKey(child, parts[1:], value)
	}
	child, ok := childRaw.(map[string]any)
	if !ok {
		return fmt.Errorf("cannot set nested key %q", strings.Join(parts, "."))
	}
	return setNestedKey(child, parts[1:], value)
}
