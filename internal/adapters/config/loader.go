// Package config loads the global configuration and package descriptors.
package config

import (
	"bytes"
	"errors"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"go.trai.ch/pac/internal/core/domain"
	"go.trai.ch/pac/internal/core/ports"
	"go.trai.ch/zerr"
	"gopkg.in/yaml.v3"
)

var _ ports.PackageLoader = (*PackageLoader)(nil)

// PackageLoader implements ports.PackageLoader for pac.yaml and pac.hcl descriptors.
type PackageLoader struct{}

// NewPackageLoader creates a new PackageLoader.
func NewPackageLoader() *PackageLoader {
	return &PackageLoader{}
}

// Load reads the first descriptor found in dir.
func (l *PackageLoader) Load(dir string) (*domain.PackageConfig, error) {
	for _, name := range domain.DescriptorFiles {
		path := filepath.Join(dir, name)
		f, err := os.Open(path) //nolint:gosec // Descriptor inside a checkout
		if errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err != nil {
			return nil, zerr.With(zerr.Wrap(err, "failed to open package descriptor"), "path", path)
		}
		cfg, err := l.Decode(name, f)
		_ = f.Close()
		if err != nil {
			return nil, zerr.With(err, "path", path)
		}
		return cfg, nil
	}
	return nil, zerr.With(zerr.Wrap(domain.ErrPackageConfigNotFound, "no package descriptor in directory"), "dir", dir)
}

// Decode parses a descriptor. Files ending in .hcl are read as HCL, everything else as YAML.
func (l *PackageLoader) Decode(filename string, r io.Reader) (*domain.PackageConfig, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, zerr.Wrap(err, "failed to read package descriptor")
	}

	var cfg *domain.PackageConfig
	if strings.EqualFold(filepath.Ext(filename), ".hcl") {
		cfg, err = decodeHCL(filename, data)
	} else {
		cfg, err = decodeYAML(data)
	}
	if err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func decodeYAML(data []byte) (*domain.PackageConfig, error) {
	var file Pacfile
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&file); err != nil && !errors.Is(err, io.EOF) {
		return nil, zerr.Wrap(errors.Join(domain.ErrInvalidPackage, err), "failed to parse package descriptor")
	}

	cfg := &domain.PackageConfig{
		Name:       file.Name,
		Version:    file.Tag,
		AppVersion: file.AppVsn,
		URL:        file.URL,
		BuildVars:  file.BuildVars,
	}
	for _, dep := range file.Deps {
		cfg.Deps = append(cfg.Deps, domain.Dependency{Name: dep.Name, Version: dep.Tag, URL: dep.URL})
	}
	for _, step := range file.Prebuild {
		cfg.Prebuild = append(cfg.Prebuild, prebuildStep(step.Shell, step.Command))
	}
	return cfg, nil
}

func decodeHCL(filename string, data []byte) (*domain.PackageConfig, error) {
	parser := hclparse.NewParser()
	file, diags := parser.ParseHCL(data, filename)
	if diags.HasErrors() {
		return nil, zerr.Wrap(errors.Join(domain.ErrInvalidPackage, diags), "failed to parse package descriptor")
	}

	var parsed hclPacfile
	if diags := gohcl.DecodeBody(file.Body, nil, &parsed); diags.HasErrors() {
		return nil, zerr.Wrap(errors.Join(domain.ErrInvalidPackage, diags), "failed to decode package descriptor")
	}

	cfg := &domain.PackageConfig{
		Name:       parsed.Name,
		Version:    parsed.Tag,
		AppVersion: parsed.AppVsn,
		URL:        parsed.URL,
		BuildVars:  parsed.BuildVars,
	}
	for _, dep := range parsed.Deps {
		cfg.Deps = append(cfg.Deps, domain.Dependency{Name: dep.Name, Version: dep.Tag, URL: dep.URL})
	}
	for _, step := range parsed.Prebuild {
		cfg.Prebuild = append(cfg.Prebuild, prebuildStep(step.Shell, step.Command))
	}
	return cfg, nil
}

func prebuildStep(shell string, command []string) domain.PrebuildStep {
	if shell != "" {
		return domain.PrebuildStep{Command: []string{"sh", "-c", shell}}
	}
	return domain.PrebuildStep{Command: command}
}
