package config

import (
	"os"
	"path/filepath"

	"go.trai.ch/pac/internal/core/domain"
	"go.trai.ch/pac/internal/core/ports"
	"go.trai.ch/zerr"
	"gopkg.in/yaml.v3"
)

// EnvConfigPath names the environment variable overriding the global config location.
const EnvConfigPath = "PAC_CONFIG"

var _ ports.GlobalConfigLoader = (*GlobalLoader)(nil)

// GlobalLoader implements ports.GlobalConfigLoader using a YAML file.
type GlobalLoader struct{}

// NewGlobalLoader creates a new GlobalLoader.
func NewGlobalLoader() *GlobalLoader {
	return &GlobalLoader{}
}

// DefaultPath returns $PAC_CONFIG, or ~/.pac/config.yaml.
func DefaultPath() string {
	if path := os.Getenv(EnvConfigPath); path != "" {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".pac", "config.yaml")
	}
	return filepath.Join(home, ".pac", "config.yaml")
}

// Load reads, defaults and validates the global configuration at path.
func (l *GlobalLoader) Load(path string) (*domain.GlobalConfig, error) {
	data, err := os.ReadFile(path) //nolint:gosec // path is provided by user
	if err != nil {
		return nil, zerr.With(zerr.Wrap(domain.ErrConfiguration, "failed to read config file: "+err.Error()), "path", path)
	}

	var file GlobalFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, zerr.With(zerr.Wrap(domain.ErrConfiguration, "failed to parse config file: "+err.Error()), "path", path)
	}

	cfg := &domain.GlobalConfig{
		TempDir:     os.ExpandEnv(file.TempDir),
		Compiler:    file.Compiler,
		Runtime:     file.Runtime,
		Parallelism: file.Parallelism,
		Retries:     file.Retries,
	}
	for _, dto := range file.Caches {
		entry, err := toCacheEntry(dto)
		if err != nil {
			return nil, zerr.With(err, "path", path)
		}
		cfg.Caches = append(cfg.Caches, entry)
	}

	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, zerr.With(err, "path", path)
	}
	return cfg, nil
}

// toCacheEntry converts the loose credential fields of a DTO into exactly one credential scheme.
func toCacheEntry(dto CacheDTO) (domain.CacheEntry, error) {
	kind, err := domain.ParseBackendKind(dto.Type)
	if err != nil {
		return domain.CacheEntry{}, zerr.With(err, "cache", dto.Name)
	}

	entry := domain.CacheEntry{
		Name:        dto.Name,
		Kind:        kind,
		URL:         os.ExpandEnv(dto.URL),
		Owner:       dto.Owner,
		Credentials: domain.NoCredentials{},
		Push:        dto.Push,
		Provider:    dto.Provider,
		Bucket:      dto.Bucket,
		Region:      dto.Region,
		Prefix:      dto.Prefix,
	}

	password := os.ExpandEnv(dto.Password)
	apiKey := os.ExpandEnv(dto.APIKey)

	switch kind {
	case domain.BackendRemoteRepository:
		// A password wins over an API key when both are set.
		if password == "" && apiKey != "" {
			entry.Credentials = domain.APIKey{Username: dto.Username, Key: apiKey}
		} else {
			entry.Credentials = domain.BasicAuth{Username: dto.Username, Password: password}
		}
	case domain.BackendObjectStore:
		entry.Credentials = domain.AccessKeyPair{
			AccessKeyID:     os.ExpandEnv(dto.AccessKeyID),
			SecretAccessKey: os.ExpandEnv(dto.SecretAccessKey),
		}
	}
	return entry, nil
}
