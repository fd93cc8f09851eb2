package domain

import (
	"strings"
	"time"
)

// RuntimeTag identifies the toolchain/runtime release artifacts were built against.
// Artifacts built for different tags are never interchangeable.
type RuntimeTag string

// UnknownRuntime is the tag used when the runtime release could not be detected.
const UnknownRuntime RuntimeTag = ""

// Known reports whether the tag was detected.
func (t RuntimeTag) Known() bool {
	return t != UnknownRuntime
}

// String returns the tag, or "unknown" when it was not detected.
func (t RuntimeTag) String() string {
	if !t.Known() {
		return "unknown"
	}
	return string(t)
}

// ArtifactKey is the backend-agnostic identity of a cached artifact.
// Two artifacts are the same cached object iff all four components are equal.
type ArtifactKey struct {
	Owner   string
	Name    string
	Version string
	Runtime RuntimeTag
}

// NewArtifactKey builds the key of a package for the given owner and runtime.
func NewArtifactKey(owner string, dep Dependency, runtime RuntimeTag) ArtifactKey {
	return ArtifactKey{
		Owner:   owner,
		Name:    dep.Name,
		Version: dep.Version,
		Runtime: runtime,
	}
}

// Dir returns "{owner}/{name}/{version}/{runtime}".
// Components are joined verbatim; cleaning them would let distinct keys collide.
func (k ArtifactKey) Dir() string {
	return strings.Join([]string{k.Owner, k.Name, k.Version, string(k.Runtime)}, "/")
}

// Path returns "{owner}/{name}/{version}/{runtime}/{name}.cp".
// Every backend maps this exact string onto its own layout.
func (k ArtifactKey) Path() string {
	return k.Dir() + "/" + k.FileName()
}

// FileName returns the artifact file name, "{name}.cp".
func (k ArtifactKey) FileName() string {
	return k.Name + "." + ArtifactExt
}

// ArtifactRecord describes an artifact held by the local tier.
type ArtifactRecord struct {
	Path      string    `json:"path"`
	Name      string    `json:"name"`
	Version   string    `json:"version"`
	Runtime   string    `json:"runtime"`
	Checksum  string    `json:"checksum,omitzero"`
	Size      int64     `json:"size,omitzero"`
	Source    string    `json:"source,omitzero"`
	Timestamp time.Time `json:"timestamp,omitzero"`
}

// NewArtifactRecord creates a record for key.
func NewArtifactRecord(key ArtifactKey, checksum string, size int64, source string) ArtifactRecord {
	return ArtifactRecord{
		Path:      key.Path(),
		Name:      key.Name,
		Version:   key.Version,
		Runtime:   string(key.Runtime),
		Checksum:  checksum,
		Size:      size,
		Source:    source,
		Timestamp: time.Now(),
	}
}
