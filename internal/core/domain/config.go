package domain

import (
	"os"
	"path/filepath"
	"runtime"

	"go.trai.ch/zerr"
)

// DefaultRetries is the number of retries for a failed network transfer.
const DefaultRetries = 3

// DefaultRuntimeCommand queries the OTP release of the installed runtime.
var DefaultRuntimeCommand = []string{
	"erl", "-eval", "erlang:display(erlang:system_info(otp_release)), halt().", "-noshell",
}

// DefaultCompilerCommand builds a package when no compiler is configured.
var DefaultCompilerCommand = []string{"make"}

// GlobalConfig is the machine-wide configuration of the tool.
type GlobalConfig struct {
	TempDir     string
	Compiler    []string
	Runtime     []string
	Parallelism int
	Retries     int
	Caches      []CacheEntry
}

// ApplyDefaults fills unset fields.
func (c *GlobalConfig) ApplyDefaults() {
	if c.TempDir == "" {
		c.TempDir = filepath.Join(os.TempDir(), "pac")
	}
	if len(c.Compiler) == 0 {
		c.Compiler = DefaultCompilerCommand
	}
	if len(c.Runtime) == 0 {
		c.Runtime = DefaultRuntimeCommand
	}
	if c.Parallelism <= 0 {
		c.Parallelism = runtime.NumCPU()
	}
	if c.Retries < 0 {
		c.Retries = 0
	} else if c.Retries == 0 {
		c.Retries = DefaultRetries
	}
}

// Validate checks every cache entry, name uniqueness and that exactly one local tier exists.
func (c *GlobalConfig) Validate() error {
	names := make(map[string]bool, len(c.Caches))
	locals := 0
	for i := range c.Caches {
		entry := &c.Caches[i]
		if err := entry.Validate(); err != nil {
			return err
		}
		if names[entry.Name] {
			return zerr.With(zerr.Wrap(ErrConfiguration, "duplicate cache name"), "cache", entry.Name)
		}
		names[entry.Name] = true
		if entry.Kind == BackendLocal {
			locals++
		}
	}
	if locals != 1 {
		return zerr.With(zerr.Wrap(ErrConfiguration, "exactly one local cache is required"), "local_caches", locals)
	}
	return nil
}

// LocalCache returns the local cache entry.
func (c *GlobalConfig) LocalCache() (CacheEntry, bool) {
	for _, entry := range c.Caches {
		if entry.Kind == BackendLocal {
			return entry, true
		}
	}
	return CacheEntry{}, false
}

// RemoteCaches returns every non-local entry in configuration order.
func (c *GlobalConfig) RemoteCaches() []CacheEntry {
	var remotes []CacheEntry
	for _, entry := range c.Caches {
		if entry.Kind != BackendLocal {
			remotes = append(remotes, entry)
		}
	}
	return remotes
}
