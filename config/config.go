package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	logger "github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"
)

const (
	defaultEngineEndpoint = "http://127.0.0.1:9418"
	defaultCacheTTL       = 5 * time.Minute
)

// Config is the top-level configuration for reposource.
type Config struct {
	// Repository identifies the repository this instance serves.
	Repository RepositoryConfig `yaml:"repository"`
	// Engine is the git execution engine RPC endpoint.
	Engine EngineConfig `yaml:"engine"`
	// Credentials are per-host tokens for vendor API calls and pushes.
	Credentials []CredentialConfig `yaml:"credentials"`
	// VendorFirst prefers vendor REST reads over the git engine when a
	// remote belongs to a supported vendor. Defaults to true.
	VendorFirst *bool `yaml:"vendor_first"`
	// Cache holds TTL settings for the read caches.
	Cache CacheConfig `yaml:"cache"`
}

// RepositoryConfig names the repository and its candidate remotes.
type RepositoryConfig struct {
	ID         string   `yaml:"id"`
	MainBranch string   `yaml:"main_branch"`
	Remotes    []string `yaml:"remotes"`
}

// EngineConfig holds the engine RPC settings.
type EngineConfig struct {
	Endpoint string `yaml:"endpoint"`
}

// CredentialConfig is one stored token. Token supports inline values,
// ${ENV_VAR} references, and paths to token files.
type CredentialConfig struct {
	Host  string `yaml:"host"`
	Token string `yaml:"token"`
}

// CacheConfig holds per-namespace TTLs.
type CacheConfig struct {
	CommitHistoryTTL time.Duration `yaml:"commit_history_ttl"`
	FileContentTTL   time.Duration `yaml:"file_content_ttl"`
}

// envVarPattern matches ${VAR_NAME} placeholders.
var envVarPattern = regexp.MustCompile(`\$\{([^}]+)}`)

// Load reads and parses a configuration file, expanding environment
// variables and resolving token file paths, then applies defaults.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %q: %w", path, err)
	}

	var cfg Config
	if unmarshalErr := yaml.Unmarshal(data, &cfg); unmarshalErr != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", unmarshalErr)
	}

	for i := range cfg.Credentials {
		cfg.Credentials[i].Token = resolveToken(cfg.Credentials[i].Token)
	}

	cfg.applyDefaults()

	if validateErr := validate(&cfg); validateErr != nil {
		return nil, validateErr
	}

	return &cfg, nil
}

// Default returns a configuration usable without a config file: engine on
// its default endpoint, vendor-first reads, default TTLs. The repository
// id and remotes must then come from flags.
func Default() *Config {
	cfg := &Config{}
	cfg.applyDefaults()
	return cfg
}

// FindConfigFile searches for a configuration file in standard locations.
// Returns the path to the first file found or an error if none is found.
func FindConfigFile() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		homeDir = ""
	}

	locations := []string{
		".",
		".config",
		"configs",
	}
	if homeDir != "" {
		locations = append(
			locations,
			homeDir,
			filepath.Join(homeDir, ".config"),
		)
	}

	patterns := []string{
		".reposource.yaml",
		".reposource.yml",
		"reposource.yaml",
		"reposource.yml",
	}

	for _, loc := range locations {
		for _, pat := range patterns {
			p := filepath.Join(loc, pat)
			if _, statErr := os.Stat(p); statErr == nil {
				return p, nil
			}
		}
	}

	return "", errors.New("config file not found in default locations")
}

// VendorFirstEnabled reports the effective vendor-first setting.
func (c *Config) VendorFirstEnabled() bool {
	return c.VendorFirst == nil || *c.VendorFirst
}

func (c *Config) applyDefaults() {
	if c.Engine.Endpoint == "" {
		c.Engine.Endpoint = defaultEngineEndpoint
	}
	if c.Cache.CommitHistoryTTL <= 0 {
		c.Cache.CommitHistoryTTL = defaultCacheTTL
	}
	if c.Cache.FileContentTTL <= 0 {
		c.Cache.FileContentTTL = defaultCacheTTL
	}
	if c.Repository.MainBranch == "" {
		c.Repository.MainBranch = "main"
	}
}

// resolveToken expands environment variable references (${VAR}) and, if the
// resulting string is a path to an existing file, reads the token from the file.
func resolveToken(raw string) string {
	if raw == "" {
		return raw
	}

	resolved := envVarPattern.ReplaceAllStringFunc(raw, func(match string) string {
		varName := envVarPattern.FindStringSubmatch(match)[1]
		if val := os.Getenv(varName); val != "" {
			return val
		}
		logger.Warnf("Environment variable %q is not set", varName)
		return ""
	})

	if _, statErr := os.Stat(resolved); statErr == nil {
		data, readErr := os.ReadFile(resolved)
		if readErr != nil {
			logger.Warnf("Failed to read token file %q: %v", resolved, readErr)
			return resolved
		}
		logger.Infof("Read token from file %q", resolved)
		return strings.TrimSpace(string(data))
	}

	return resolved
}

// validate checks for required configuration values.
func validate(cfg *Config) error {
	for i, cred := range cfg.Credentials {
		if cred.Host == "" {
			return fmt.Errorf("credentials[%d].host is required", i)
		}
		if cred.Token == "" {
			return fmt.Errorf(
				"credentials[%d].token is required (set inline, via ${ENV_VAR}, or as file path)",
				i,
			)
		}
	}
	return nil
}
