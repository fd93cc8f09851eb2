package domain

import (
	"strings"

	"go.trai.ch/zerr"
)

// BackendKind is the closed set of cache tier variants.
type BackendKind string

const (
	// BackendLocal is a filesystem tier; the single fast tier of a chain.
	BackendLocal BackendKind = "local"
	// BackendRemoteRepository is an authenticated HTTP artifact repository.
	BackendRemoteRepository BackendKind = "remote-repository"
	// BackendObjectStore is a bucket in an object store.
	BackendObjectStore BackendKind = "object-store"
)

// ParseBackendKind converts a configured type to a BackendKind.
// The legacy names "artifactory" and "s3" are accepted as aliases.
func ParseBackendKind(s string) (BackendKind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case string(BackendLocal):
		return BackendLocal, nil
	case string(BackendRemoteRepository), "artifactory":
		return BackendRemoteRepository, nil
	case string(BackendObjectStore), "s3":
		return BackendObjectStore, nil
	default:
		return "", zerr.With(zerr.Wrap(ErrConfiguration, "unknown cache type"), "type", s)
	}
}

// Object store providers.
const (
	ProviderS3 = "s3"
	ProviderB2 = "b2"
)

// DefaultOwner is the owner component used by tiers that have no user identity.
const DefaultOwner = "pac"

// Credentials is one of BasicAuth, APIKey, AccessKeyPair or NoCredentials.
type Credentials interface {
	scheme() string
}

// BasicAuth authenticates with a username and password.
type BasicAuth struct {
	Username string
	Password string
}

// APIKey authenticates a user with a repository API key.
type APIKey struct {
	Username string
	Key      string
}

// AccessKeyPair authenticates against an object store.
type AccessKeyPair struct {
	AccessKeyID     string
	SecretAccessKey string
}

// NoCredentials is used by tiers that need no authentication.
type NoCredentials struct{}

func (BasicAuth) scheme() string     { return "basic" }
func (APIKey) scheme() string        { return "api-key" }
func (AccessKeyPair) scheme() string { return "access-key" }
func (NoCredentials) scheme() string { return "none" }

// CredentialScheme returns a printable name of the credential variant.
func CredentialScheme(c Credentials) string {
	if c == nil {
		return NoCredentials{}.scheme()
	}
	return c.scheme()
}

// CacheEntry describes one configured cache tier.
type CacheEntry struct {
	Name        string
	Kind        BackendKind
	URL         string
	Owner       string
	Credentials Credentials
	// Push marks a remote tier that receives every freshly built artifact.
	Push bool

	// Object store settings.
	Provider string
	Bucket   string
	Region   string
	Prefix   string
}

// Validate checks that the entry carries everything its kind needs.
func (e *CacheEntry) Validate() error {
	if e.Name == "" {
		return zerr.Wrap(ErrConfiguration, "cache name is required")
	}

	switch e.Kind {
	case BackendLocal:
		if e.URL == "" {
			return e.configErr("url is required")
		}
		return nil
	case BackendRemoteRepository:
		return e.validateRemote()
	case BackendObjectStore:
		return e.validateObjectStore()
	default:
		return zerr.With(e.configErr("unknown cache type"), "type", string(e.Kind))
	}
}

func (e *CacheEntry) validateRemote() error {
	if e.URL == "" {
		return e.configErr("url is required")
	}
	switch c := e.Credentials.(type) {
	case BasicAuth:
		if c.Username == "" {
			return e.configErr("username is required")
		}
		if c.Password == "" {
			return e.configErr("password or api_key required")
		}
	case APIKey:
		if c.Username == "" {
			return e.configErr("username is required")
		}
		if c.Key == "" {
			return e.configErr("password or api_key required")
		}
	default:
		return e.configErr("username and password or api_key required")
	}
	return nil
}

func (e *CacheEntry) validateObjectStore() error {
	if e.Bucket == "" {
		return e.configErr("bucket is required")
	}
	switch e.Provider {
	case "", ProviderS3, ProviderB2:
	default:
		return zerr.With(e.configErr("unknown object store provider"), "provider", e.Provider)
	}
	c, ok := e.Credentials.(AccessKeyPair)
	if !ok || c.AccessKeyID == "" || c.SecretAccessKey == "" {
		return e.configErr("access_key_id and secret_access_key are required")
	}
	return nil
}

func (e *CacheEntry) configErr(msg string) error {
	return zerr.With(zerr.Wrap(ErrConfiguration, msg), "cache", e.Name)
}

// OwnerID returns the owner component of artifact keys stored in this tier.
func (e *CacheEntry) OwnerID() string {
	switch c := e.Credentials.(type) {
	case BasicAuth:
		return c.Username
	case APIKey:
		return c.Username
	}
	if e.Owner != "" {
		return e.Owner
	}
	return DefaultOwner
}

// Secure reports whether the tier is reached over TLS, as inferred from the URL scheme.
func (e *CacheEntry) Secure() bool {
	return strings.HasPrefix(strings.ToLower(e.URL), "https")
}

// ProviderName returns the object store provider, defaulting to s3.
func (e *CacheEntry) ProviderName() string {
	if e.Provider == "" {
		return ProviderS3
	}
	return e.Provider
}
