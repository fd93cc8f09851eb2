package config

// GlobalFile represents the structure of the global config.yaml file.
type GlobalFile struct {
	TempDir     string     `yaml:"temp_dir"`
	Compiler    []string   `yaml:"compiler"`
	Runtime     []string   `yaml:"runtime"`
	Parallelism int        `yaml:"parallelism"`
	Retries     int        `yaml:"retries"`
	Caches      []CacheDTO `yaml:"cache"`
}

// CacheDTO represents one cache tier in the global configuration.
type CacheDTO struct {
	Name            string `yaml:"name"`
	Type            string `yaml:"type"`
	URL             string `yaml:"url"`
	Owner           string `yaml:"owner"`
	Username        string `yaml:"username"`
	Password        string `yaml:"password"`
	APIKey          string `yaml:"api_key"`
	AccessKeyID     string `yaml:"access_key_id"`
	SecretAccessKey string `yaml:"secret_access_key"`
	Push            bool   `yaml:"push"`
	Provider        string `yaml:"provider"`
	Bucket          string `yaml:"bucket"`
	Region          string `yaml:"region"`
	Prefix          string `yaml:"prefix"`
}

// Pacfile represents a pac.yaml package descriptor.
type Pacfile struct {
	Name      string          `yaml:"name"`
	Tag       string          `yaml:"tag"`
	AppVsn    string          `yaml:"app_vsn"`
	URL       string          `yaml:"url"`
	Deps      []DependencyDTO `yaml:"deps"`
	BuildVars []string        `yaml:"build_vars"`
	Prebuild  []PrebuildDTO   `yaml:"prebuild"`
}

// DependencyDTO represents a dependency in a pac.yaml descriptor.
type DependencyDTO struct {
	Name string `yaml:"name"`
	Tag  string `yaml:"tag"`
	URL  string `yaml:"url"`
}

// PrebuildDTO represents a prebuild step. It accepts either a shell string or an argv list.
type PrebuildDTO struct {
	Shell   string   `yaml:"shell"`
	Command []string `yaml:"cmd"`
}

// hclPacfile represents a pac.hcl package descriptor.
type hclPacfile struct {
	Name      string             `hcl:"name"`
	Tag       string             `hcl:"tag,optional"`
	AppVsn    string             `hcl:"app_vsn,optional"`
	URL       string             `hcl:"url,optional"`
	BuildVars []string           `hcl:"build_vars,optional"`
	Deps      []*hclDependency   `hcl:"dep,block"`
	Prebuild  []*hclPrebuildStep `hcl:"prebuild,block"`
}

type hclDependency struct {
	Name string `hcl:"name,label"`
	Tag  string `hcl:"tag"`
	URL  string `hcl:"url,optional"`
}

type hclPrebuildStep struct {
	Shell   string   `hcl:"shell,optional"`
	Command []string `hcl:"cmd,optional"`
}
